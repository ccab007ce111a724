package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/scott-cotton/cli"

	"github.com/signadot/sitepatch"
	"github.com/signadot/sitepatch/encode"
)

func applyRun(cfg *ApplyConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Apply.Parse(cc, args)
	if err != nil {
		cfg.Apply.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if cfg.Rules == "" {
		return fmt.Errorf("%w: apply requires -rules", cli.ErrUsage)
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: apply requires one file", cli.ErrUsage)
	}
	if cfg.Write && args[0] == "-" {
		return fmt.Errorf("%w: -w needs a file, not stdin", cli.ErrUsage)
	}
	rs, err := sitepatch.LoadRuleset(cfg.Rules)
	if err != nil {
		return err
	}
	node, err := readTree(args[0])
	if err != nil {
		return err
	}
	site := sitepatch.Site{Component: componentName(cfg.Component), Arg: node}
	rule, ok, err := rs.Match(site)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(cc.Out, "no rule matches %s\n", site.Component)
		return nil
	}
	opts := &sitepatch.Options{Preserved: rs.Preserved, DryRun: cfg.DryRun}
	out, perr := sitepatch.Process(site, rule, opts)
	if out != nil && out.Skipped {
		fmt.Fprintf(cc.Out, "%s: no static data\n", args[0])
		return nil
	}
	if out != nil && out.Result != nil {
		// render the outcome even when patches were left unapplied
		if err := cfg.renderer(cc.Out).Result(out.Result); err != nil {
			return err
		}
	}
	if perr != nil {
		return perr
	}
	if cfg.DryRun {
		if err := cfg.renderer(cc.Out).Plan(out.Plan, out.Extracted); err != nil {
			return err
		}
		buf, err := json.MarshalIndent(out.Preview, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(cc.Out, "%s\n", buf)
		return nil
	}
	if cfg.Write {
		f, err := os.OpenFile(args[0], os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := encode.Encode(site.Arg, f, encode.Wire(cfg.Wire)); err != nil {
			return err
		}
		_, err = f.WriteString("\n")
		return err
	}
	if err := encode.Encode(site.Arg, cc.Out, cfg.encOpts(cc.Out)...); err != nil {
		return err
	}
	_, err = fmt.Fprintln(cc.Out)
	return err
}
