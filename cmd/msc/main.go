// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Msc is a tool for Bayesian inference of species trees under the
// multispecies coalescent model.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/msc/cmd/msc/check"
	"github.com/js-arias/msc/cmd/msc/run"
	"github.com/js-arias/msc/cmd/msc/tree"
)

var app = &command.Command{
	Usage: "msc <command> [<argument>...]",
	Short: "Bayesian inference under the multispecies coalescent",
}

func init() {
	app.Add(run.Command)
	app.Add(tree.Command)
	app.Add(check.Command)
}

func main() {
	app.Main()
}
