package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the daily portfolio value series as CSV string.
func RenderCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("date,portfolio_value\n")

	for i, d := range r.Dates {
		sb.WriteString(fmt.Sprintf("%s,%.6f\n", d.Format("2006-01-02"), r.Values[i]))
	}

	return sb.String()
}
