package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/dvloznov/smartbudget/internal/report"
	"github.com/dvloznov/smartbudget/internal/tracker"
)

type summaryCmd struct {
	style string
	raw   bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display net worth, debts, accounts and recent activity" }
func (*summaryCmd) Usage() string {
	return `smartbudget summary [-style <style>] [-raw]

  Displays the dashboard computed from the stored ledger.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.style, "style", "dark", "Terminal style (dark, light, notty).")
	f.BoolVar(&c.raw, "raw", false, "Print the markdown without terminal styling.")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	dashboard, err := a.Service.Stats()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	md, err := report.Summary(dashboard, a.Service.Accounts())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return printMarkdown(md, c.style, c.raw)
}

type analysisCmd struct {
	request bool
	goal    float64
	style   string
	raw     bool
}

func (*analysisCmd) Name() string     { return "analysis" }
func (*analysisCmd) Synopsis() string { return "show the last analysis or request a new one" }
func (*analysisCmd) Usage() string {
	return `smartbudget analysis [-request [-goal <UYU>]] [-style <style>] [-raw]

  Shows the cached analysis. With -request, asks the advisor for a fresh
  analysis of every transaction first; the previous one is kept if that
  fails.
`
}

func (c *analysisCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.request, "request", false, "Request a new analysis before displaying it.")
	f.Float64Var(&c.goal, "goal", 0, "Monthly savings goal in UYU for the new analysis.")
	f.StringVar(&c.style, "style", "dark", "Terminal style (dark, light, notty).")
	f.BoolVar(&c.raw, "raw", false, "Print the markdown without terminal styling.")
}

func (c *analysisCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if c.request {
		if _, err := a.Service.RequestAnalysis(ctx, c.goal); err != nil {
			fmt.Fprintln(os.Stderr, tracker.UserMessage(err))
			return subcommands.ExitFailure
		}
	}
	return printMarkdown(report.Analysis(a.Service.Analysis()), c.style, c.raw)
}

func printMarkdown(md, style string, raw bool) subcommands.ExitStatus {
	if raw {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	out, err := report.Render(md, style, 100)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}
