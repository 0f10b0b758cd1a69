package output

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/Laisky/errors/v2"

	"github.com/songquanpeng/ai-probe/probe"
)

// JUnit mapping: one testsuite per service, one testcase per scenario.
// Timeouts render as failures so CI surfaces them; skips keep their reason.

type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Skipped  int             `xml:"skipped,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string        `xml:"name,attr"`
	Time    float64       `xml:"time,attr"`
	Failure *junitMessage `xml:"failure,omitempty"`
	Skipped *junitMessage `xml:"skipped,omitempty"`
}

type junitMessage struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

// WriteJUnit renders the report as JUnit XML.
func WriteJUnit(w io.Writer, report *probe.Report) error {
	var suites junitTestSuites
	index := map[string]int{}

	for _, res := range report.Results {
		i, ok := index[res.Service]
		if !ok {
			i = len(suites.Suites)
			index[res.Service] = i
			suites.Suites = append(suites.Suites, junitTestSuite{Name: res.Service})
		}
		suite := &suites.Suites[i]
		suite.Tests++

		tc := junitTestCase{
			Name: res.Scenario,
			Time: res.Latency.Seconds(),
		}
		switch res.Status {
		case probe.StatusFailure, probe.StatusTimeout:
			suite.Failures++
			tc.Failure = &junitMessage{
				Message: res.Reason,
				Body:    fmt.Sprintf("http_status=%d %s", res.HTTPStatus, res.Message),
			}
		case probe.StatusSkipped:
			suite.Skipped++
			tc.Skipped = &junitMessage{Message: res.Reason}
		}
		suite.Cases = append(suite.Cases, tc)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.Wrap(err, "write xml header")
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(suites); err != nil {
		return errors.Wrap(err, "encode junit report")
	}
	_, err := io.WriteString(w, "\n")
	return errors.Wrap(err, "write trailing newline")
}
