package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/truckfactor/internal/filter"
	"github.com/Sumatoshi-tech/truckfactor/internal/runner"
)

const (
	valueDigits  = 1
	percentScale = 100
)

// RenderConsole writes the human-readable report: the headline truck
// factor followed by the selected contributors.
func RenderConsole(w io.Writer, result *runner.Result) {
	headline := color.New(color.FgHiWhite, color.Bold).SprintfFunc()
	factorColor := color.New(color.FgHiRed, color.Bold).SprintfFunc()

	if result.TruckFactor() > 2 {
		factorColor = color.New(color.FgHiGreen, color.Bold).SprintfFunc()
	}

	fmt.Fprintf(w, "%s %s\n\n",
		headline("Truck factor:"),
		factorColor("%d", result.TruckFactor()))

	fmt.Fprintf(w, "Metric %s over %s files, critical loss %.2f, knowledge as of %s.\n\n",
		result.Metric,
		humanize.Comma(int64(result.Files)),
		result.CriticalLoss,
		result.Reference.Format("2006-01-02"))

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"#", "Contributor", "Value", "Share"})

	doc := NewDocument(result)

	for i, contributor := range doc.Contributors {
		tbl.AppendRow(table.Row{
			i + 1,
			displayIdentity(contributor.Identity),
			humanize.CommafWithDigits(contributor.Value, valueDigits),
			fmt.Sprintf("%.1f%%", contributor.Share*percentScale),
		})
	}

	tbl.Render()

	if doc.Alternate != nil {
		fmt.Fprintf(w, "\nBy %s the truck factor is %d.\n",
			doc.Alternate.Metric, doc.Alternate.TruckFactor)
	}
}

// RenderOmitted writes the extensions the filter rejected, when any.
func RenderOmitted(w io.Writer, omitted []filter.OmittedCount) {
	if len(omitted) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s\n", color.New(color.Faint).Sprint("Omitted from analysis:"))

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Extension", "Files"})

	for _, entry := range omitted {
		tbl.AppendRow(table.Row{entry.Extension, entry.Count})
	}

	tbl.Render()
}

// displayIdentity labels the unattributed bucket in console output.
func displayIdentity(identity string) string {
	if identity == "" {
		return "(unattributed)"
	}

	return identity
}
