// Package prompt collects run parameters interactively when the CLI is
// started without --sources. It asks the same questions the flags answer
// and yields the same parameter set, so both entries feed one validation
// path downstream.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
)

// Params is the raw parameter set gathered from the user. Sources stays
// a comma-separated string here; splitting and validation happen in the
// engine config path shared with flag parsing.
type Params struct {
	Sources      string
	Copies       int
	Output       string
	PerSubfolder int
	Workers      int
	ChunkSize    int
	MaxLimit     int
	DryRun       bool
	Resume       bool
	Randomize    bool
	Zip          bool
}

// Collect walks the user through every run parameter. The seed supplies
// prompt defaults (flag defaults merged with the config file), so a bare
// Enter accepts the same value the flag path would use.
func Collect(seed Params) (Params, error) {
	p := seed

	var err error
	if p.Sources, err = askText("Source file(s) (comma-separated)", ""); err != nil {
		return p, err
	}
	if p.Copies, err = askCount("Copies per source", seed.Copies); err != nil {
		return p, err
	}
	if p.Output, err = askText("Output directory", seed.Output); err != nil {
		return p, err
	}
	if p.PerSubfolder, err = askCount("Files per subfolder (0 = none)", seed.PerSubfolder); err != nil {
		return p, err
	}
	if p.Workers, err = askCount("Parallel workers", seed.Workers); err != nil {
		return p, err
	}
	if p.DryRun, err = askConfirm("Dry-run?", seed.DryRun); err != nil {
		return p, err
	}
	if p.Resume, err = askConfirm("Resume mode?", seed.Resume); err != nil {
		return p, err
	}
	if p.Randomize, err = askConfirm("Randomize filenames?", seed.Randomize); err != nil {
		return p, err
	}
	if p.Zip, err = askConfirm("Zip output?", seed.Zip); err != nil {
		return p, err
	}
	if p.Zip {
		if p.ChunkSize, err = askCount("ZIP chunk size", seed.ChunkSize); err != nil {
			return p, err
		}
	}
	if p.MaxLimit, err = askCount("Max safety limit", seed.MaxLimit); err != nil {
		return p, err
	}

	return p, nil
}

func askText(label, def string) (string, error) {
	input := pterm.DefaultInteractiveTextInput
	if def != "" {
		input = *input.WithDefaultValue(def)
	}
	v, err := input.Show(label)
	if err != nil {
		return "", fmt.Errorf("prompt %q: %w", label, err)
	}
	return strings.TrimSpace(v), nil
}

// askCount re-asks until the answer parses as a non-negative integer.
func askCount(label string, def int) (int, error) {
	input := pterm.DefaultInteractiveTextInput.WithDefaultValue(strconv.Itoa(def))
	for {
		v, err := input.Show(label)
		if err != nil {
			return 0, fmt.Errorf("prompt %q: %w", label, err)
		}
		n, err := parseCount(v)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		return n, nil
	}
}

func askConfirm(label string, def bool) (bool, error) {
	v, err := pterm.DefaultInteractiveConfirm.WithDefaultValue(def).Show(label)
	if err != nil {
		return false, fmt.Errorf("prompt %q: %w", label, err)
	}
	return v, nil
}

// parseCount accepts a non-negative integer, trimming surrounding space.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("enter a whole number >= 0, got %q", s)
	}
	return n, nil
}
