package output

import (
	"encoding/json"
	"io"

	"github.com/Laisky/errors/v2"

	"github.com/songquanpeng/ai-probe/probe"
)

// jsonReport is the machine-readable envelope: the full report plus the
// aggregated verdict so consumers need no knowledge of the ranking rules.
type jsonReport struct {
	Verdict probe.Verdict `json:"verdict"`
	*probe.Report
}

// WriteJSON renders the report as indented JSON.
func WriteJSON(w io.Writer, report *probe.Report, verdict probe.Verdict) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonReport{Verdict: verdict, Report: report}); err != nil {
		return errors.Wrap(err, "encode report")
	}
	return nil
}
