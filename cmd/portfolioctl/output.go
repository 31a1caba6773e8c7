package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"soroban_portfolio/internal/domain/entity"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleTitle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9B5DE5")).Bold(true)
	styleAddress = lipgloss.NewStyle().Foreground(lipgloss.Color("#00B4D8"))
	styleValue   = lipgloss.NewStyle().Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D26A")).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB800")).Bold(true)
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
)

func printKeyValues(w io.Writer, title string, pairs ...string) {
	fmt.Fprintln(w, styleTitle.Render(title))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(tw, "  %s\t%s\n", styleDim.Render(pairs[i]), pairs[i+1])
	}
	_ = tw.Flush()
}

func printPortfolio(w io.Writer, snap *entity.PortfolioSnapshot) {
	fmt.Fprintf(w, "%s %s\n", styleTitle.Render("Portfolio"), styleAddress.Render(snap.Address))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SYMBOL\tBALANCE\tPRICE\tVALUE\tPNL\tALLOC %\t")
	for _, t := range snap.Tokens {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			t.Symbol,
			t.Balance.String(),
			t.CurrentPrice.String(),
			t.TotalValue.StringFixed(2),
			t.UnrealizedPnL.StringFixed(2),
			t.Allocation.StringFixed(2),
		)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "%s %s   %s %s   %s %s%%\n",
		styleDim.Render("total value"), styleValue.Render(snap.TotalValue.StringFixed(2)),
		styleDim.Render("pnl"), styleValue.Render(snap.TotalPnL.StringFixed(2)),
		styleDim.Render("return"), styleValue.Render(snap.PercentageReturn.StringFixed(2)),
	)

	if snap.Incomplete {
		fmt.Fprintln(w, styleWarning.Render("⚠ incomplete: some balances could not be read"))
		for _, warn := range snap.Warnings {
			fmt.Fprintf(w, "  %s %s\n", warn.TokenSymbol, styleDim.Render(warn.Message))
		}
	}
}

func printReceipt(w io.Writer, action string, res entity.InvocationResult) {
	fmt.Fprintln(w, styleSuccess.Render("✓ "+action+" confirmed"))
	printKeyValues(w, "Receipt", "tx hash", styleAddress.Render(res.TxHash), "return value", res.Value.String())
}

func shortAddress(a string) string {
	if len(a) <= 12 {
		return a
	}
	return a[:6] + "…" + a[len(a)-6:]
}

func joinNames(defs []entity.NetworkConfig) string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return strings.Join(names, ", ")
}
