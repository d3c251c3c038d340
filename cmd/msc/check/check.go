// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package check implements a command to validate every input file a
// control file names, without running an MCMC chain.
package check

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/msc/internal/mcctl"
	"github.com/js-arias/msc/internal/newick"
	"github.com/js-arias/msc/internal/popmap"
	"github.com/js-arias/msc/internal/setup"
)

var Command = &command.Command{
	Usage: "check <control-file>",
	Short: "validate input files without running MCMC",
	Long: `
Command check reads a control file and validates every input it names:
the species tree, the multi-locus alignment, and the individual-to-
species map. It stops at the first error it finds, reports it with
file context, and exits with a nonzero status.

Unlike "msc run", check never runs a chain; it only builds the run
state once, to confirm every sample in the alignment resolves to a
population and every sequence is readable under the JC69 alphabet.
	`,
	Run: runE,
}

func runE(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting control file")
	}

	cfg, warnings, err := mcctl.Read(args[0])
	if err != nil {
		return fmt.Errorf("control file: %v", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "msc check: warning: %s\n", w)
	}

	streeF, err := os.Open(cfg.SpeciesTree)
	if err != nil {
		return fmt.Errorf("species tree: %v", err)
	}
	_, err = newick.Read(streeF)
	streeF.Close()
	if err != nil {
		return fmt.Errorf("species tree %q: %v", cfg.SpeciesTree, err)
	}
	fmt.Fprintf(os.Stderr, "msc check: species tree %q is valid\n", cfg.SpeciesTree)

	pmF, err := os.Open(cfg.PopMap)
	if err != nil {
		return fmt.Errorf("population map: %v", err)
	}
	pm, err := popmap.Read(pmF)
	pmF.Close()
	if err != nil {
		return fmt.Errorf("population map %q: %v", cfg.PopMap, err)
	}
	fmt.Fprintf(os.Stderr, "msc check: population map %q has %d individuals\n", cfg.PopMap, pm.Len())

	loci, err := setup.ReadAlignments(cfg.Alignment)
	if err != nil {
		return fmt.Errorf("alignment %q: %v", cfg.Alignment, err)
	}
	fmt.Fprintf(os.Stderr, "msc check: alignment %q has %d loci\n", cfg.Alignment, len(loci))

	st, err := setup.New(cfg)
	if err != nil {
		return fmt.Errorf("building run state: %v", err)
	}
	st.Pool.Stop()
	fmt.Fprintf(os.Stderr, "msc check: %q is ready for \"msc run\"\n", args[0])
	return nil
}
