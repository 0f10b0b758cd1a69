package probe

import (
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/songquanpeng/ai-probe/config"
)

func reportWith(results ...ScenarioResult) *Report {
	r := NewReport()
	r.Results = results
	return r
}

func TestAggregateRanking(t *testing.T) {
	success := ScenarioResult{Status: StatusSuccess}
	authFail := ScenarioResult{Status: StatusFailure, Class: FailureAuth}
	netFail := ScenarioResult{Status: StatusFailure, Class: FailureNetwork}
	svcFail := ScenarioResult{Status: StatusFailure, Class: FailureService}
	inputSkip := ScenarioResult{Status: StatusSkipped}
	authSkip := ScenarioResult{Status: StatusSkipped, Class: FailureAuth}

	cases := []struct {
		name     string
		report   *Report
		verdict  Verdict
		exitCode int
	}{
		{"all passed", reportWith(success, success), VerdictAllPassed, 0},
		{"empty report passes", reportWith(), VerdictAllPassed, 0},
		{"input skip does not taint", reportWith(success, inputSkip), VerdictAllPassed, 0},
		{"service failure", reportWith(success, svcFail), VerdictSomeFailed, 1},
		{"network beats service", reportWith(svcFail, netFail), VerdictNetworkFailed, 3},
		{"auth beats network", reportWith(netFail, authFail, svcFail), VerdictAuthFailed, 2},
		{"auth skip counts as auth", reportWith(success, authSkip), VerdictAuthFailed, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			verdict, code := Aggregate(c.report, nil)
			require.Equal(t, c.verdict, verdict)
			require.Equal(t, c.exitCode, code)
		})
	}
}

func TestAggregateCancelledNeverPasses(t *testing.T) {
	r := reportWith(ScenarioResult{Status: StatusSuccess})
	r.Cancelled = true

	verdict, code := Aggregate(r, nil)
	require.Equal(t, VerdictSomeFailed, verdict)
	require.Equal(t, ExitSomeFailed, code)
}

func TestAggregateFatalErrors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		verdict  Verdict
		exitCode int
	}{
		{"config", errors.Wrap(config.ErrInvalid, "bad yaml"), VerdictConfigError, 4},
		{"input", errors.Wrap(config.ErrInputFile, "missing wav"), VerdictInvalidInput, 5},
		{"auth", errors.Wrap(ErrAuthResolution, "rejected"), VerdictAuthFailed, 2},
		{"other", errors.New("disk on fire"), VerdictNetworkFailed, 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			verdict, code := Aggregate(NewReport(), c.err)
			require.Equal(t, c.verdict, verdict)
			require.Equal(t, c.exitCode, code)
		})
	}
}
