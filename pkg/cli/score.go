package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/chordlab/consonance/pkg/consonance"
	"github.com/chordlab/consonance/pkg/dataset"
	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	pipelineInterval = "interval"
	pipelineClass    = "interval-class"
)

var (
	pitchesFlag = &urfave.StringFlag{
		Name:     "pitches",
		Usage:    `Chord MIDI pitches, space separated (e.g. "60 64 67")`,
		Required: true,
	}

	weightsFileFlag = &urfave.StringFlag{
		Name:  "weights",
		Usage: "Path to a fitted weights file (default from config)",
	}

	combinationFlag = &urfave.IntFlag{
		Name:  "combination",
		Usage: "Exclusion combination index when the weights file holds a weight set",
	}

	scoreCmd = &urfave.Command{
		Name:    "score",
		Aliases: []string{"s"},
		Usage:   "Score a chord's consonance with fitted weights",
		UsageText: `consonance score --pitches "60 64 67" --weights weights.json
   consonance score --pitches "60 63 66" --weights weights.json --combination 1`,
		Action: cmdScore,
		Flags: []urfave.Flag{
			pitchesFlag,
			weightsFileFlag,
			combinationFlag,
			aggFlag,
		},
	}
)

// ScoreResult is the score command output.
type ScoreResult struct {
	Pitches     []int   `json:"pitches" yaml:"pitches"`
	Intervals   []int   `json:"intervals" yaml:"intervals"`
	Pipeline    string  `json:"pipeline" yaml:"pipeline"`
	Aggregation string  `json:"aggregation" yaml:"aggregation"`
	Combination *int    `json:"combination,omitempty" yaml:"combination,omitempty"`
	Score       float64 `json:"score" yaml:"score"`
}

func cmdScore(c *urfave.Context) error {
	cfg := getConfig(c)

	ch, err := dataset.ParsePitches(c.String(pitchesFlag.Name))
	if err != nil {
		return err
	}

	path := c.String(weightsFileFlag.Name)
	if path == "" {
		path = cfg.Conf.WeightsPath
	}
	if path == "" {
		return fmt.Errorf("no weights file: pass --weights or set weightsPath in config")
	}

	fr, err := loadFitResult(path)
	if err != nil {
		return err
	}

	aggTag := c.String(aggFlag.Name)
	if aggTag == "" {
		aggTag = fr.Aggregation
	}
	agg, err := consonance.ParseAggregation(aggTag)
	if err != nil {
		return err
	}

	res := &ScoreResult{
		Pitches:     ch,
		Intervals:   ch.OctaveIntervals(),
		Pipeline:    fr.Pipeline,
		Aggregation: agg.String(),
	}

	weights := fr.Weights
	if len(fr.WeightSet) > 0 {
		mask := c.Int(combinationFlag.Name)
		if weights, err = fr.WeightSet.At(mask); err != nil {
			return err
		}
		res.Combination = &mask
	}

	switch fr.Pipeline {
	case pipelineClass:
		res.Score, err = consonance.IntervalClassConsonance(ch, weights, agg)
	default:
		res.Score, err = consonance.IntervalConsonance(ch, weights, agg)
	}
	if err != nil {
		return err
	}

	return encode(res)
}

// loadFitResult reads a weights file written by the fit command, in either
// output format.
func loadFitResult(path string) (*FitResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading weights file: %w", err)
	}

	var fr FitResult
	if jerr := json.Unmarshal(b, &fr); jerr != nil {
		if yerr := yaml.Unmarshal(b, &fr); yerr != nil {
			return nil, fmt.Errorf("error parsing weights file %s: %w", path, yerr)
		}
	}

	if len(fr.Weights) == 0 && len(fr.WeightSet) == 0 {
		return nil, fmt.Errorf("weights file %s holds no weights", path)
	}
	if len(fr.WeightSet) > 0 {
		if err := fr.WeightSet.Validate(); err != nil {
			return nil, fmt.Errorf("invalid weight set in %s: %w", path, err)
		}
	}

	return &fr, nil
}
