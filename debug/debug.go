// Package debug provides env-flag controlled debug logging for the
// sitepatch pipeline. Flags are read once at init:
//
//	SITEPATCH_DEBUG_EXTRACT
//	SITEPATCH_DEBUG_DIFF
//	SITEPATCH_DEBUG_PLAN
//	SITEPATCH_DEBUG_PATCH
//	SITEPATCH_DEBUG_RULES
package debug

import (
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Extract bool
	Diff    bool
	Plan    bool
	Patch   bool
	Rules   bool
}

var d *debug

func init() {
	d = &debug{}
	d.Extract = boolEnv("SITEPATCH_DEBUG_EXTRACT")
	d.Diff = boolEnv("SITEPATCH_DEBUG_DIFF")
	d.Plan = boolEnv("SITEPATCH_DEBUG_PLAN")
	d.Patch = boolEnv("SITEPATCH_DEBUG_PATCH")
	d.Rules = boolEnv("SITEPATCH_DEBUG_RULES")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Extract() bool {
	return d.Extract
}

func Diff() bool {
	return d.Diff
}

func Plan() bool {
	return d.Plan
}

func Patch() bool {
	return d.Patch
}

func Rules() bool {
	return d.Rules
}

func Logf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg, args...)
}
