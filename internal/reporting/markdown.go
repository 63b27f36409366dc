package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	title := r.Title
	if title == "" {
		title = "Backtest Report"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Window: %s to %s (%d days)\n\n",
		r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"), r.Days))

	// Performance
	sb.WriteString("## Performance\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Final Value | %.2f |\n", r.FinalValue))
	sb.WriteString(fmt.Sprintf("| Total Invested | %.2f |\n", r.TotalInvested))
	if r.DCAContributions > 0 {
		sb.WriteString(fmt.Sprintf("| DCA Contributions | %.2f |\n", r.DCAContributions))
	}
	sb.WriteString(fmt.Sprintf("| Cumulative Return | %.2f%% |\n", r.CumulativeReturnPct))
	sb.WriteString(fmt.Sprintf("| CAGR | %s |\n", fmtOptPct(r.CAGRPct)))
	sb.WriteString("\n")

	// Risk
	sb.WriteString("## Risk\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Volatility (ann.) | %.2f%% |\n", r.VolatilityPct))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %.2f%% |\n", r.MaxDrawdownPct))
	sb.WriteString(fmt.Sprintf("| Sharpe | %s |\n", fmtOpt(r.Sharpe)))
	sb.WriteString(fmt.Sprintf("| Risk/Reward | %s |\n", fmtOpt(r.RiskReward)))
	sb.WriteString("\n")

	// Assets
	sb.WriteString("## Assets\n\n")
	if len(r.Assets) > 0 {
		sb.WriteString("| Asset | Target | Final | Volatility |\n")
		sb.WriteString("|-------|--------|-------|------------|\n")
		for _, a := range r.Assets {
			sb.WriteString(fmt.Sprintf("| %s | %.1f%% | %.1f%% | %.2f%% |\n",
				a.AssetID, a.TargetWeightPct, a.FinalWeightPct, a.VolatilityPct))
		}
	} else {
		sb.WriteString("No asset data available.\n")
	}
	sb.WriteString("\n")

	// Rebalances
	sb.WriteString("## Rebalances\n\n")
	if len(r.RebalanceDates) > 0 {
		for _, d := range r.RebalanceDates {
			sb.WriteString(fmt.Sprintf("- %s\n", d.Format("2006-01-02")))
		}
	} else {
		sb.WriteString("No rebalances executed.\n")
	}
	sb.WriteString("\n")

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	sb.WriteString(fmt.Sprintf("Integrity score: %d/100\n\n", r.IntegrityScore))
	if len(r.IntegrityIssues) > 0 {
		for _, issue := range r.IntegrityIssues {
			sb.WriteString(fmt.Sprintf("- %s\n", issue))
		}
	} else {
		sb.WriteString("No data issues detected.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", *v)
}

func fmtOptPct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *v)
}
