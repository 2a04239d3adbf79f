package main

import "github.com/chordlab/consonance/pkg/cli"

func main() {
	cli.Execute()
}
