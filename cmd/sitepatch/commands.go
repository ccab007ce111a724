package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "o",
		Description: "output file (default stdout)",
		Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
	})

	return cli.NewCommandAt(&cfg.Main, "sitepatch").
		WithSynopsis("sitepatch [opts] command [opts]").
		WithDescription("sitepatch refines data embedded in component call sites.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return spMain(cfg, cc, args)
		}).
		WithSubs(
			ExtractCommand(cfg),
			DiffCommand(cfg),
			PlanCommand(cfg),
			ApplyCommand(cfg))
}

func spMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	defer func() {
		if cfg.CloseOut != nil {
			cfg.CloseOut()
		}
	}()
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func ExtractCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ExtractConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("extract").
		WithAliases("x").
		WithSynopsis("extract [-preserved keys] [files]").
		WithDescription("extract plain data from call-site argument files").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return extractRun(cfg, cc, args)
		})
	cfg.Extract = cmd
	return cmd
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("diff").
		WithAliases("d").
		WithSynopsis("diff [-arrays policy] [-exclude keys] <file> <file>").
		WithDescription("structurally diff the data of two call-site argument files").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return diffRun(cfg, cc, args)
		})
	cfg.Diff = cmd
	return cmd
}

func PlanCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PlanConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("plan").
		WithAliases("p").
		WithSynopsis("plan -rules file.yaml [-component name] [-json] <file>").
		WithDescription("show the consolidated patch plan for a call-site argument file").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return planRun(cfg, cc, args)
		})
	cfg.Plan = cmd
	return cmd
}

func ApplyCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ApplyConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("apply").
		WithAliases("a").
		WithSynopsis("apply -rules file.yaml [-component name] [-dry-run] [-w] <file>").
		WithDescription("apply the refined data back into a call-site argument file").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return applyRun(cfg, cc, args)
		})
	cfg.Apply = cmd
	return cmd
}
