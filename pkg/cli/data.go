package cli

import (
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"

	"github.com/chordlab/consonance/pkg/chord"
	"github.com/chordlab/consonance/pkg/dataset"
	"github.com/chordlab/consonance/pkg/net"
	urfave "github.com/urfave/cli/v2"
)

var (
	urlFlag = &urfave.StringFlag{
		Name:     "url",
		Usage:    "URL of a published ratings TSV",
		Required: true,
	}

	toFileFlag = &urfave.StringFlag{
		Name:  "to",
		Usage: "Local path to save the dataset (default: app home, name from URL)",
	}

	datasetCmd = &urfave.Command{
		Name:    "dataset",
		Aliases: []string{"d"},
		Usage:   "Ratings dataset utilities",
		Subcommands: []*urfave.Command{
			{
				Name:      "fetch",
				Usage:     "Download a ratings TSV dataset",
				UsageText: "consonance dataset fetch --url https://example.com/ratings.tsv",
				Action:    cmdDatasetFetch,
				Flags: []urfave.Flag{
					urlFlag,
					toFileFlag,
				},
			},
			{
				Name:      "info",
				Usage:     "Summarize a local ratings TSV dataset",
				UsageText: "consonance dataset info --data ratings.tsv",
				Action:    cmdDatasetInfo,
				Flags: []urfave.Flag{
					dataFileFlag,
				},
			},
		},
	}
)

// DatasetInfo is the dataset info command output.
type DatasetInfo struct {
	Path           string    `json:"path" yaml:"path"`
	Chords         int       `json:"chords" yaml:"chords"`
	MinRating      float64   `json:"minRating" yaml:"minRating"`
	MaxRating      float64   `json:"maxRating" yaml:"maxRating"`
	IntervalCounts []float64 `json:"intervalCounts" yaml:"intervalCounts"`
	ClassCounts    []float64 `json:"classCounts" yaml:"classCounts"`
}

func cmdDatasetFetch(c *urfave.Context) error {
	cfg := getConfig(c)

	src := c.String(urlFlag.Name)
	dst := c.String(toFileFlag.Name)
	if dst == "" {
		u, err := url.Parse(src)
		if err != nil || path.Base(u.Path) == "." || path.Base(u.Path) == "/" {
			return fmt.Errorf("cannot derive file name from %q, pass --to", src)
		}
		dst = filepath.Join(cfg.HomeDir, path.Base(u.Path))
	}

	slog.Info("downloading dataset", "url", src, "to", dst)
	if err := net.Download(src, dst); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	// Parse what we fetched so a broken file fails loudly here, not at fit.
	d, err := dataset.LoadTSV(dst)
	if err != nil {
		return fmt.Errorf("downloaded dataset is invalid: %w", err)
	}

	slog.Info("dataset ready", "path", dst, "chords", len(d.Chords))
	return nil
}

func cmdDatasetInfo(c *urfave.Context) error {
	p := c.String(dataFileFlag.Name)

	d, err := dataset.LoadTSV(p)
	if err != nil {
		return err
	}

	info := &DatasetInfo{
		Path:           p,
		Chords:         len(d.Chords),
		MinRating:      d.Ratings[0],
		MaxRating:      d.Ratings[0],
		IntervalCounts: make([]float64, chord.NumIntervals),
		ClassCounts:    make([]float64, chord.NumClasses),
	}

	for i, ch := range d.Chords {
		if d.Ratings[i] < info.MinRating {
			info.MinRating = d.Ratings[i]
		}
		if d.Ratings[i] > info.MaxRating {
			info.MaxRating = d.Ratings[i]
		}
		for j, v := range ch.IntervalCounts() {
			info.IntervalCounts[j] += v
		}
		for j, v := range ch.ClassCounts() {
			info.ClassCounts[j] += v
		}
	}

	return encode(info)
}
