package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/signadot/sitepatch/extract"
	"github.com/signadot/sitepatch/libdiff"
)

func diffRun(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires two files", cli.ErrUsage)
	}
	diffCfg := libdiff.DefaultConfig()
	switch cfg.Arrays {
	case "", "atomic":
	case "diff":
		diffCfg.Arrays = libdiff.ArraysDiff
	case "ignore":
		diffCfg.Arrays = libdiff.ArraysIgnore
	default:
		return fmt.Errorf("%w: unknown array policy %q", cli.ErrUsage, cfg.Arrays)
	}
	diffCfg.ExcludeKeys = splitKeys(cfg.Exclude)

	sides := make([]map[string]any, 2)
	for i, arg := range args {
		node, err := readTree(arg)
		if err != nil {
			return err
		}
		res, ok := extract.Extract(node, nil)
		if !ok {
			return fmt.Errorf("%s: no static data to compare", arg)
		}
		sides[i] = res.Data
	}
	for _, ev := range libdiff.Diff(sides[0], sides[1], diffCfg) {
		fmt.Fprintln(cc.Out, ev)
	}
	return nil
}
