// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tree implements a command to parse and normalize the species
// tree named in a control file, as a cheap smoke test of the topology
// and population map before a full run.
package tree

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/msc/internal/mcctl"
	"github.com/js-arias/msc/internal/newick"
	"github.com/js-arias/msc/internal/popmap"
)

var Command = &command.Command{
	Usage: "tree <control-file>",
	Short: "print the normalized species tree",
	Long: `
Command tree reads the species tree and population map named in a
control file, checks that the tree is strictly binary with unique tip
labels and that every mapped individual resolves to one of its tips,
and writes the tree back out in Newick notation.

This performs no alignment reading and no MCMC setup, so it is a cheap
way to validate a species tree and population map before committing to
a full run.
	`,
	Run: runE,
}

func runE(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting control file")
	}

	cfg, _, err := mcctl.Read(args[0])
	if err != nil {
		return err
	}

	streeF, err := os.Open(cfg.SpeciesTree)
	if err != nil {
		return err
	}
	root, err := newick.Read(streeF)
	streeF.Close()
	if err != nil {
		return err
	}

	tips := make(map[string]bool)
	var collect func(n *newick.Node)
	collect = func(n *newick.Node) {
		if n.IsTip() {
			tips[n.Label] = true
			return
		}
		for _, c := range n.Children {
			collect(c)
		}
	}
	collect(root)

	if cfg.PopMap != "" {
		pmF, err := os.Open(cfg.PopMap)
		if err != nil {
			return err
		}
		pm, err := popmap.Read(pmF)
		pmF.Close()
		if err != nil {
			return err
		}
		for _, label := range pm.Samples() {
			sp, _ := pm.Species(label)
			if !tips[sp] {
				return fmt.Errorf("individual %q maps to species %q, which is not a tip of %q", label, sp, cfg.SpeciesTree)
			}
		}
	}

	return newick.Write(os.Stdout, root)
}
