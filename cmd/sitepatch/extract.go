package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/scott-cotton/cli"

	"github.com/signadot/sitepatch/extract"
)

func extractRun(cfg *ExtractConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Extract.Parse(cc, args)
	if err != nil {
		cfg.Extract.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	preserved := map[string]bool{}
	for _, k := range cfg.preservedKeys() {
		preserved[k] = true
	}
	for _, arg := range args {
		node, err := readTree(arg)
		if err != nil {
			return err
		}
		res, ok := extract.Extract(node, preserved)
		if !ok {
			fmt.Fprintf(cc.Out, "%s: no static data\n", arg)
			continue
		}
		buf, err := json.MarshalIndent(res.Data, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding %s: %w", arg, err)
		}
		fmt.Fprintf(cc.Out, "%s\n", buf)
		for _, key := range res.Side.Keys() {
			fmt.Fprintf(cc.Out, "# preserved %s\n", key)
		}
	}
	return nil
}
