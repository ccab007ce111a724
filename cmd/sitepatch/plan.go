package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/signadot/sitepatch"
)

func planRun(cfg *PlanConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Plan.Parse(cc, args)
	if err != nil {
		cfg.Plan.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if cfg.Rules == "" {
		return fmt.Errorf("%w: plan requires -rules", cli.ErrUsage)
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: plan requires one file", cli.ErrUsage)
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
	out, err := sitepatch.PlanSite(site, rule, &sitepatch.Options{Preserved: rs.Preserved})
	if err != nil {
		return err
	}
	if out.Skipped {
		fmt.Fprintf(cc.Out, "%s: no static data\n", args[0])
		return nil
	}
	if cfg.JSON {
		buf, err := out.Plan.JSONPatch()
		if err != nil {
			return err
		}
		fmt.Fprintf(cc.Out, "%s\n", buf)
		return nil
	}
	return cfg.renderer(cc.Out).Plan(out.Plan, out.Extracted)
}

func componentName(flag string) string {
	if flag == "" {
		return "Component"
	}
	return flag
}
