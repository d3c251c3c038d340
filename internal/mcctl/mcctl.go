// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package mcctl reads the flat key-value control file that configures
// an MCMC run (spec section 6): file paths, chain lengths, finetune
// starting values and prior hyperparameters.
package mcctl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/js-arias/msc/internal/mscerr"
)

// Config is a fully parsed control file, with defaults applied for
// every key the file did not set.
type Config struct {
	Seed uint64

	SpeciesTree string
	Alignment   string
	PopMap      string
	OutFile     string
	MCMCFile    string

	Samples     int
	SampleFreq  int
	BurnIn      int

	FinetuneReset bool
	FinetuneGtAge float64
	FinetuneGtSpr float64
	FinetuneTheta float64
	FinetuneTau   float64
	FinetuneMix   float64

	ThetaAlpha, ThetaBeta float64
	TauAlpha, TauBeta     float64

	CleanData bool
	Delimit   bool
	Reorder   bool
}

// Default returns a Config with every numeric key set to the values
// spec section 6 lists as defaults.
func Default() Config {
	return Config{
		Samples:       10000,
		SampleFreq:    10,
		BurnIn:        1000,
		FinetuneGtAge: 0.1,
		FinetuneGtSpr: 0.1,
		FinetuneTheta: 0.5,
		FinetuneTau:   0.5,
		FinetuneMix:   0.3,
		ThetaAlpha:    2,
		ThetaBeta:     2000,
		TauAlpha:      2,
		TauBeta:       2000,
	}
}

// Read parses a control file at path. The returned warnings list one
// unrecognized key per entry, in file order; the caller decides
// whether and how to report them.
func Read(path string) (Config, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, nil, fmt.Errorf("%w: %v", mscerr.ErrResource, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a control file's "key = value" lines from r. Blank lines
// and lines starting with '#' are ignored. An unrecognized key is a
// warning, not a parse failure, matching the permissive key-value
// reader it is modeled on.
func Parse(r io.Reader) (Config, []string, error) {
	cfg := Default()

	var warnings []string
	sc := bufio.NewScanner(r)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return Config{}, nil, fmt.Errorf("%w: line %d: expecting \"key = value\", got %q", mscerr.ErrInputParse, lineNum, line)
		}
		key = strings.TrimSpace(strings.ToLower(key))
		val = strings.TrimSpace(val)

		unknown, err := cfg.set(key, val)
		if err != nil {
			return Config{}, nil, fmt.Errorf("%w: line %d: %v", mscerr.ErrInputParse, lineNum, err)
		}
		if unknown {
			warnings = append(warnings, fmt.Sprintf("line %d: unrecognized key %q", lineNum, key))
		}
	}
	if err := sc.Err(); err != nil {
		return Config{}, nil, fmt.Errorf("%w: %v", mscerr.ErrResource, err)
	}
	return cfg, warnings, nil
}

// set applies key=val to cfg. It reports unknown == true, rather than
// an error, for a key it does not recognize.
func (cfg *Config) set(key, val string) (unknown bool, err error) {
	switch key {
	case "seed":
		v, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return false, fmt.Errorf("seed: %v", err)
		}
		cfg.Seed = v
	case "stree":
		cfg.SpeciesTree = val
	case "msafile":
		cfg.Alignment = val
	case "mapfile":
		cfg.PopMap = val
	case "outfile":
		cfg.OutFile = val
	case "mcmcfile":
		cfg.MCMCFile = val
	case "samples":
		v, err := strconv.Atoi(val)
		if err != nil {
			return false, fmt.Errorf("samples: %v", err)
		}
		cfg.Samples = v
	case "samplefreq":
		v, err := strconv.Atoi(val)
		if err != nil {
			return false, fmt.Errorf("samplefreq: %v", err)
		}
		cfg.SampleFreq = v
	case "burnin":
		v, err := strconv.Atoi(val)
		if err != nil {
			return false, fmt.Errorf("burnin: %v", err)
		}
		cfg.BurnIn = v
	case "finetune_reset":
		v, err := strconv.ParseBool(val)
		if err != nil {
			return false, fmt.Errorf("finetune_reset: %v", err)
		}
		cfg.FinetuneReset = v
	case "finetune_gtage":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return false, fmt.Errorf("finetune_gtage: %v", err)
		}
		cfg.FinetuneGtAge = v
	case "finetune_gtspr":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return false, fmt.Errorf("finetune_gtspr: %v", err)
		}
		cfg.FinetuneGtSpr = v
	case "finetune_theta":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return false, fmt.Errorf("finetune_theta: %v", err)
		}
		cfg.FinetuneTheta = v
	case "finetune_tau":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return false, fmt.Errorf("finetune_tau: %v", err)
		}
		cfg.FinetuneTau = v
	case "finetune_mix":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return false, fmt.Errorf("finetune_mix: %v", err)
		}
		cfg.FinetuneMix = v
	case "theta_alpha":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return false, fmt.Errorf("theta_alpha: %v", err)
		}
		cfg.ThetaAlpha = v
	case "theta_beta":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return false, fmt.Errorf("theta_beta: %v", err)
		}
		cfg.ThetaBeta = v
	case "tau_alpha":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return false, fmt.Errorf("tau_alpha: %v", err)
		}
		cfg.TauAlpha = v
	case "tau_beta":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return false, fmt.Errorf("tau_beta: %v", err)
		}
		cfg.TauBeta = v
	case "cleandata":
		v, err := strconv.ParseBool(val)
		if err != nil {
			return false, fmt.Errorf("cleandata: %v", err)
		}
		cfg.CleanData = v
	case "delimit":
		v, err := strconv.ParseBool(val)
		if err != nil {
			return false, fmt.Errorf("delimit: %v", err)
		}
		cfg.Delimit = v
	case "reorder":
		v, err := strconv.ParseBool(val)
		if err != nil {
			return false, fmt.Errorf("reorder: %v", err)
		}
		cfg.Reorder = v
	default:
		return true, nil
	}
	return false, nil
}
