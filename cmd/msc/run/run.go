// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package run implements a command to drive an MCMC chain under the
// multispecies coalescent model from a control file.
package run

import (
	"fmt"
	"os"
	"time"

	"github.com/js-arias/command"
	"github.com/js-arias/msc/internal/mcctl"
	"github.com/js-arias/msc/internal/mcmc"
	"github.com/js-arias/msc/internal/setup"
)

var Command = &command.Command{
	Usage: "run <control-file>",
	Short: "run an MCMC chain",
	Long: `
Command run reads a control file defining a species tree, a multi-locus
alignment, an individual-to-species map, chain lengths and prior
hyperparameters, and drives a Metropolis-Hastings chain under the
multispecies coalescent model.

The control file is a flat "key = value" file; see the package
documentation in internal/mcctl for the recognized keys and their
defaults. Unrecognized keys are reported as warnings on stderr, not
treated as fatal errors.

Results are written to the file named by the "mcmcfile" key: one row
per sample with every population's tau and theta, every locus's log
likelihood and log-prior contribution, and the chain's overall log
posterior.
	`,
	Run: runE,
}

func runE(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting control file")
	}

	cfg, warnings, err := mcctl.Read(args[0])
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "msc run: warning: %s\n", w)
	}
	if cfg.MCMCFile == "" {
		return c.UsageError("control file does not set \"mcmcfile\"")
	}

	fmt.Fprintf(os.Stderr, "msc run: reading species tree, alignments, population map...\n")
	st, err := setup.New(cfg)
	if err != nil {
		return err
	}
	defer st.Pool.Stop()
	fmt.Fprintf(os.Stderr, "msc run: %d populations, %d loci, seed %d\n", len(st.Species.Populations), st.NumLoci(), st.RNG.Seed())

	out, err := os.Create(cfg.MCMCFile)
	if err != nil {
		return err
	}
	defer out.Close()

	chain := mcmc.New(st, cfg.BurnIn, cfg.Samples, cfg.SampleFreq, cfg.FinetuneReset)

	start := time.Now()
	if err := chain.Run(out); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "msc run: %d samples written to %q in %s\n", cfg.Samples, cfg.MCMCFile, time.Since(start).Round(time.Second))

	fmt.Fprintf(os.Stderr, "msc run: acceptance rates:\n")
	for _, k := range []string{"gtage", "gtspr", "theta", "tau", "mixing"} {
		fmt.Fprintf(os.Stderr, "  %-8s %.3f\n", k, chain.Summary()[k])
	}
	return nil
}
