package reporting

import (
	"fmt"

	charts "github.com/vicanso/go-charts/v2"
)

// RenderChart renders the portfolio value series as a PNG line chart.
func RenderChart(r *Report) ([]byte, error) {
	if len(r.Values) == 0 {
		return nil, fmt.Errorf("no series to chart")
	}

	xLabels := make([]string, len(r.Dates))
	for i, d := range r.Dates {
		if len(r.Dates) <= 60 {
			xLabels[i] = d.Format("Jan 02")
		} else {
			xLabels[i] = d.Format("Jan '06")
		}
	}

	// Y-axis range with padding
	minVal, maxVal := r.Values[0], r.Values[0]
	for _, v := range r.Values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	padding := (maxVal - minVal) * 0.05
	if padding == 0 {
		padding = maxVal * 0.05
	}
	yMin := minVal - padding
	yMax := maxVal + padding

	title := r.Title
	if title == "" {
		title = "Portfolio Value"
	}
	subtitle := fmt.Sprintf("Return: %.2f%% | Vol: %.2f%% | MaxDD: %.2f%% | Integrity: %d/100",
		r.CumulativeReturnPct, r.VolatilityPct, r.MaxDrawdownPct, r.IntegrityScore)

	splitNum := 6
	if len(xLabels) <= 30 {
		splitNum = len(xLabels) / 3
		if splitNum < 3 {
			splitNum = 3
		}
	}

	p, err := charts.LineRender(
		[][]float64{r.Values},
		charts.TitleTextOptionFunc(title+"\n"+subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("generate chart bytes: %w", err)
	}
	return buf, nil
}
