package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chordlab/consonance/pkg/config"
	"github.com/chordlab/consonance/pkg/logging"
	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "consonance"
	appConfigKey = "app-config"

	fileMode = 0600

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	outputFormat = formatJSON

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	HomeDir string
	Conf    *config.Config
	Debug   bool
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 appName,
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "CLI for chord consonance scoring and weight fitting",
		Flags: []urfave.Flag{
			debugFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			fitCmd,
			scoreCmd,
			datasetCmd,
		},
		Before: func(c *urfave.Context) error {
			home, _, err := config.GetOrCreateHomeDir(appName)
			if err != nil {
				return fmt.Errorf("resolving app home: %w", err)
			}

			conf, err := config.ReadOrCreate(home)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			level := conf.LogLevel
			if c.Bool(debugFlag.Name) {
				level = "debug"
			}
			logging.SetDefaultCLILogger(level)

			f := c.String(formatFlag.Name)
			if f == formatYAML || f == "yml" {
				outputFormat = formatYAML
			}

			c.App.Metadata[appConfigKey] = &appConfig{
				HomeDir: home,
				Conf:    conf,
				Debug:   c.Bool(debugFlag.Name),
			}
			return nil
		},
	}
}

// encode writes v to stdout in the selected output format.
func encode(v any) error {
	if outputFormat == formatYAML {
		return yaml.NewEncoder(os.Stdout).Encode(v)
	}
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

// output writes v to the given path, or to stdout when path is empty.
func output(path string, v any) error {
	if path == "" {
		return encode(v)
	}

	var (
		b   []byte
		err error
	)
	if outputFormat == formatYAML {
		b, err = yaml.Marshal(v)
	} else {
		b, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("writing result to %s: %w", path, err)
	}

	slog.Info("result written", "path", path)
	return nil
}
