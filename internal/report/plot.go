package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/truckfactor/internal/runner"
)

const (
	maxPlottedContributors = 20
	xAxisRotate            = 60
	chartWidth             = "1100px"
	chartHeight            = "500px"
)

// WritePlot renders an HTML bar chart of the knowledge distribution,
// largest holders first, capped at the top twenty.
func WritePlot(w io.Writer, result *runner.Result) error {
	ranking := knowledgeRanking(result)
	if len(ranking) > maxPlottedContributors {
		ranking = ranking[:maxPlottedContributors]
	}

	labels := make([]string, len(ranking))
	data := make([]opts.BarData, len(ranking))

	for i, contributor := range ranking {
		labels[i] = displayIdentity(contributor.Identity)
		data[i] = opts.BarData{Value: contributor.Value}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Knowledge distribution (truck factor %d)", result.TruckFactor()),
			Subtitle: fmt.Sprintf("%d files, knowledge as of %s", result.Files, result.Reference.Format("2006-01-02")),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: xAxisRotate, Interval: "0"},
		}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("Knowledge", data)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render knowledge chart: %w", err)
	}

	return nil
}
