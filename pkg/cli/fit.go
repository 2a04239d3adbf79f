package cli

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/chordlab/consonance/pkg/consonance"
	"github.com/chordlab/consonance/pkg/dataset"
	"github.com/chordlab/consonance/pkg/fit"
	urfave "github.com/urfave/cli/v2"
)

var (
	dataFileFlag = &urfave.StringFlag{
		Name:     "data",
		Usage:    "Path to the ratings TSV file (pitches<TAB>rating per line)",
		Required: true,
	}

	aggFlag = &urfave.StringFlag{
		Name:  "agg",
		Usage: "Aggregation method [sum, type] (default from config)",
	}

	classFlag = &urfave.BoolFlag{
		Name:  "class",
		Usage: "Use interval classes (0-6) instead of octave intervals (1-12)",
	}

	excludeFlag = &urfave.IntSliceFlag{
		Name:  "exclude",
		Usage: "Interval eligible for exclusion (can be specified multiple times)",
	}

	rescaleFlag = &urfave.StringFlag{
		Name:  "rescale",
		Usage: "Rescale ratings onto [-1,1] from the given scale (format: lo:hi, e.g. 1:7)",
	}

	outFileFlag = &urfave.StringFlag{
		Name:  "out",
		Usage: "Write the result to a file instead of stdout",
	}

	fitCmd = &urfave.Command{
		Name:    "fit",
		Aliases: []string{"f"},
		Usage:   "Fit consonance weights to a rated chord dataset",
		UsageText: `consonance fit --data ratings.tsv
   consonance fit --data ratings.tsv --agg sum --class
   consonance fit --data ratings.tsv --exclude 8 --exclude 11 --out weights.json`,
		Action: cmdFit,
		Flags: []urfave.Flag{
			dataFileFlag,
			aggFlag,
			classFlag,
			excludeFlag,
			rescaleFlag,
			outFileFlag,
		},
	}
)

// FitResult is the fit command output. Exactly one of Weights and WeightSet
// is populated: a flat vector without exclusions, one vector per exclusion
// combination (in increasing bitmask order) with them.
type FitResult struct {
	Pipeline    string                  `json:"pipeline" yaml:"pipeline"`
	Aggregation string                  `json:"aggregation" yaml:"aggregation"`
	Chords      int                     `json:"chords" yaml:"chords"`
	Excluded    []int                   `json:"excluded,omitempty" yaml:"excluded,omitempty"`
	Weights     consonance.WeightVector `json:"weights,omitempty" yaml:"weights,omitempty"`
	WeightSet   consonance.WeightSet    `json:"weightSet,omitempty" yaml:"weightSet,omitempty"`
	Duration    string                  `json:"duration" yaml:"duration"`
}

func cmdFit(c *urfave.Context) error {
	cfg := getConfig(c)

	aggTag := c.String(aggFlag.Name)
	if aggTag == "" {
		aggTag = cfg.Conf.Aggregation
	}
	agg, err := consonance.ParseAggregation(aggTag)
	if err != nil {
		return err
	}

	d, err := dataset.LoadTSV(c.String(dataFileFlag.Name))
	if err != nil {
		return err
	}

	ratings := d.Ratings
	if scale := c.String(rescaleFlag.Name); scale != "" {
		lo, hi, err := parseScale(scale)
		if err != nil {
			return err
		}
		if ratings, err = dataset.RescaleRatings(ratings, lo, hi); err != nil {
			return err
		}
	}

	exclude := c.IntSlice(excludeFlag.Name)
	useClass := c.Bool(classFlag.Name)

	res := &FitResult{
		Pipeline:    pipelineInterval,
		Aggregation: agg.String(),
		Chords:      len(d.Chords),
		Excluded:    exclude,
	}
	if useClass {
		res.Pipeline = pipelineClass
	}

	slog.Info("fitting weights",
		"pipeline", res.Pipeline, "aggregation", res.Aggregation,
		"chords", res.Chords, "exclude", exclude)

	start := time.Now()
	switch {
	case len(exclude) == 0 && useClass:
		res.Weights, err = fit.IntervalClassWeights(d.Chords, ratings, agg)
	case len(exclude) == 0:
		res.Weights, err = fit.IntervalWeights(d.Chords, ratings, agg)
	case useClass:
		res.WeightSet, err = fit.IntervalClassWeightsExcluding(d.Chords, ratings, agg, exclude)
	default:
		res.WeightSet, err = fit.IntervalWeightsExcluding(d.Chords, ratings, agg, exclude)
	}
	if err != nil {
		return fmt.Errorf("fit failed: %w", err)
	}
	res.Duration = time.Since(start).Round(time.Millisecond).String()

	return output(c.String(outFileFlag.Name), res)
}

// parseScale parses a "lo:hi" rating scale argument.
func parseScale(s string) (lo, hi float64, err error) {
	loStr, hiStr, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid rescale %q, want lo:hi", s)
	}
	if lo, err = strconv.ParseFloat(strings.TrimSpace(loStr), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid rescale lower bound %q", loStr)
	}
	if hi, err = strconv.ParseFloat(strings.TrimSpace(hiStr), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid rescale upper bound %q", hiStr)
	}
	return lo, hi, nil
}
