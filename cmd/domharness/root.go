// Package main implements domharness, a thin cobra CLI that replays
// YAML-described scenarios through the harness façade and prints
// colored PASS/FAIL lines. It drives the harness from the outside, the
// way a test author would, rather than being part of it.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// globalState groups the process-external state so tests could substitute
// a buffer for stdout without touching os.Stdout directly. Only the run
// subcommand exists today, so the struct stays small.
type globalState struct {
	stdOut   io.Writer
	isTTY    bool
	noColor  bool
	args     []string
	getwd    func() (string, error)
	exitCode int
}

func newGlobalState() *globalState {
	isDumbTerm := os.Getenv("TERM") == "dumb"
	stdoutTTY := !isDumbTerm && isatty.IsTerminal(os.Stdout.Fd())
	_, noColorSet := os.LookupEnv("NO_COLOR")
	return &globalState{
		stdOut:  colorable.NewColorable(os.Stdout),
		isTTY:   stdoutTTY,
		noColor: noColorSet,
		args:    os.Args,
		getwd:   os.Getwd,
	}
}

func getColor(noColor bool, attrs ...color.Attribute) *color.Color {
	if noColor {
		c := color.New()
		c.DisableColor()
		return c
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

func newRootCmd(gs *globalState) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "domharness",
		Short:         "deterministic browser test harness demo runner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&gs.noColor, "no-color", gs.noColor, "disable colored output")
	rootCmd.SetOut(gs.stdOut)
	rootCmd.AddCommand(newRunCmd(gs))
	return rootCmd
}

func main() {
	gs := newGlobalState()
	if err := newRootCmd(gs).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(gs.exitCode)
}
