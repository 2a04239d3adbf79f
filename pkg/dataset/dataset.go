// Package dataset loads rated chord data for the optimiser. The on-disk
// format is tab-separated: space-separated MIDI pitches, a tab, then the
// rating. Blank lines and lines starting with # are skipped.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chordlab/consonance/pkg/chord"
)

// Dataset holds aligned chords and behavioural ratings. Ratings are expected
// pre-scaled to [-1, +1] (-1 maximally dissonant, +1 maximally consonant);
// use RescaleRatings when the source uses a different scale.
type Dataset struct {
	Chords  []chord.Chord `json:"chords" yaml:"chords"`
	Ratings []float64     `json:"ratings" yaml:"ratings"`
}

// Validate checks that the dataset is non-empty and aligned.
func (d *Dataset) Validate() error {
	if d == nil || len(d.Chords) == 0 {
		return fmt.Errorf("dataset has no chords")
	}
	if len(d.Chords) != len(d.Ratings) {
		return fmt.Errorf("dataset misaligned: %d chords, %d ratings", len(d.Chords), len(d.Ratings))
	}
	return nil
}

// LoadTSV reads a dataset from a TSV file.
func LoadTSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening dataset file: %w", err)
	}
	defer f.Close()

	d, err := ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return d, nil
}

// ReadTSV parses TSV dataset content.
func ReadTSV(r io.Reader) (*Dataset, error) {
	d := &Dataset{}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		parts := strings.Split(text, "\t")
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: want pitches<TAB>rating, got %d fields", line, len(parts))
		}

		c, err := ParsePitches(parts[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rating, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid rating %q", line, parts[1])
		}

		d.Chords = append(d.Chords, c)
		d.Ratings = append(d.Ratings, rating)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning dataset: %w", err)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}

	return d, nil
}

// ParsePitches converts a space-separated pitch list ("60 64 67") to a Chord.
func ParsePitches(s string) (chord.Chord, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty pitch list")
	}

	c := make(chord.Chord, 0, len(fields))
	for _, f := range fields {
		p, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid pitch %q", f)
		}
		c = append(c, p)
	}
	return c, nil
}

// RescaleRatings maps ratings from a known scale [lo, hi] onto [-1, +1].
func RescaleRatings(ratings []float64, lo, hi float64) ([]float64, error) {
	if hi <= lo {
		return nil, fmt.Errorf("invalid rating scale: lo %v, hi %v", lo, hi)
	}

	out := make([]float64, len(ratings))
	for i, r := range ratings {
		out[i] = 2*(r-lo)/(hi-lo) - 1
	}
	return out, nil
}
