// Package output renders a run report for humans (console table), machines
// (JSON), and CI systems (JUnit XML).
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/songquanpeng/ai-probe/probe"
)

// WriteConsole renders the per-scenario table and a one-line verdict.
func WriteConsole(w io.Writer, report *probe.Report, verdict probe.Verdict) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Service", "Scenario", "Status", "HTTP", "Latency", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, res := range report.Results {
		table.Append([]string{
			res.Service,
			res.Scenario,
			statusCell(res),
			httpCell(res),
			latencyCell(res),
			detailCell(res),
		})
	}
	table.Render()

	success, failure, timeout, skipped := report.Counts()
	fmt.Fprintf(w, "\nrun %s: %d passed, %d failed, %d timed out, %d skipped in %s\n",
		report.RunID, success, failure, timeout, skipped,
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	if report.Cancelled {
		fmt.Fprintln(w, "run cancelled before all scenarios executed")
	}
	fmt.Fprintf(w, "verdict: %s\n", verdict)
}

func statusCell(res probe.ScenarioResult) string {
	s := strings.ToUpper(string(res.Status))
	if res.Status == probe.StatusFailure && res.Class != probe.FailureNone {
		s += " (" + string(res.Class) + ")"
	}
	return s
}

func httpCell(res probe.ScenarioResult) string {
	if res.HTTPStatus == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", res.HTTPStatus)
}

func latencyCell(res probe.ScenarioResult) string {
	if res.Status == probe.StatusSkipped {
		return "-"
	}
	return res.Latency.Round(time.Millisecond).String()
}

func detailCell(res probe.ScenarioResult) string {
	parts := make([]string, 0, 2)
	if res.Reason != "" {
		parts = append(parts, res.Reason)
	}
	if res.Message != "" {
		parts = append(parts, res.Message)
	}
	return strings.Join(parts, ": ")
}
