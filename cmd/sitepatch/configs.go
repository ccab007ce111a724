package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/signadot/sitepatch"
	"github.com/signadot/sitepatch/encode"
	"github.com/signadot/sitepatch/ir"
	"github.com/signadot/sitepatch/parse"
	"github.com/signadot/sitepatch/report"
)

type MainConfig struct {
	Color bool `cli:"name=color desc='force colored output'"`
	Wire  bool `cli:"name=wire desc='output trees in compact single-line form'"`

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

func (cfg *MainConfig) colored(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	res := []encode.EncodeOption{
		encode.Wire(cfg.Wire),
	}
	if cfg.colored(w) {
		res = append(res, encode.EncodeColors(encode.NewColors()))
	}
	return res
}

func (cfg *MainConfig) renderer(w io.Writer) *report.Renderer {
	return report.New(w, report.Color(cfg.colored(w)))
}

// readTree parses one call-site argument file; "-" reads stdin.
func readTree(arg string) (*ir.Node, error) {
	var r io.Reader
	if arg == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(arg)
		if err != nil {
			return nil, fmt.Errorf("error opening %s: %w", arg, err)
		}
		defer f.Close()
		r = f
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	node, err := parse.Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", arg, err)
	}
	return node, nil
}

func splitKeys(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}

type ExtractConfig struct {
	*MainConfig
	Preserved string `cli:"name=preserved desc='comma-separated preserved keys (default ref)'"`

	Extract *cli.Command
}

func (cfg *ExtractConfig) preservedKeys() []string {
	if cfg.Preserved == "" {
		return sitepatch.DefaultPreserved
	}
	return splitKeys(cfg.Preserved)
}

type DiffConfig struct {
	*MainConfig
	Arrays  string `cli:"name=arrays desc='array policy: atomic, diff, ignore (default atomic)'"`
	Exclude string `cli:"name=exclude desc='comma-separated keys to skip'"`

	Diff *cli.Command
}

type PlanConfig struct {
	*MainConfig
	Rules     string `cli:"name=rules desc='ruleset yaml file'"`
	Component string `cli:"name=component desc='component name for rule matching'"`
	JSON      bool   `cli:"name=json desc='emit the plan as an RFC 6902 document'"`

	Plan *cli.Command
}

type ApplyConfig struct {
	*MainConfig
	Rules     string `cli:"name=rules desc='ruleset yaml file'"`
	Component string `cli:"name=component desc='component name for rule matching'"`
	DryRun    bool   `cli:"name=dry-run desc='compute and show the plan without writing'"`
	Write     bool   `cli:"name=w desc='rewrite the input file in place'"`

	Apply *cli.Command
}
