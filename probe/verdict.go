package probe

import (
	"errors"

	"github.com/songquanpeng/ai-probe/config"
)

// Verdict is the single-word summary of a whole run.
type Verdict string

const (
	VerdictAllPassed     Verdict = "all_passed"
	VerdictSomeFailed    Verdict = "some_failed"
	VerdictAuthFailed    Verdict = "auth_failed"
	VerdictNetworkFailed Verdict = "network_failed"
	VerdictConfigError   Verdict = "config_error"
	VerdictInvalidInput  Verdict = "invalid_input"
)

// Exit codes for the CLI, one per verdict.
const (
	ExitAllPassed     = 0
	ExitSomeFailed    = 1
	ExitAuthFailed    = 2
	ExitNetworkFailed = 3
	ExitConfigError   = 4
	ExitInvalidInput  = 5
)

// Aggregate condenses a report and an optional fatal error into the run
// verdict and its exit code. Failure classes rank: auth beats network beats
// plain service failure, so a mixed report surfaces the most actionable
// problem first.
func Aggregate(report *Report, fatal error) (Verdict, int) {
	if fatal != nil {
		switch {
		case errors.Is(fatal, config.ErrInputFile):
			return VerdictInvalidInput, ExitInvalidInput
		case errors.Is(fatal, config.ErrInvalid):
			return VerdictConfigError, ExitConfigError
		case errors.Is(fatal, ErrAuthResolution):
			return VerdictAuthFailed, ExitAuthFailed
		default:
			return VerdictNetworkFailed, ExitNetworkFailed
		}
	}

	var sawAuth, sawNetwork, sawOther bool
	for _, res := range report.Results {
		if res.Status == StatusSuccess {
			continue
		}
		// Scenarios skipped for missing optional input carry no failure class
		// and do not taint the verdict.
		if res.Status == StatusSkipped && res.Class == FailureNone {
			continue
		}
		switch res.Class {
		case FailureAuth:
			sawAuth = true
		case FailureNetwork:
			sawNetwork = true
		default:
			sawOther = true
		}
	}
	// A cancelled run cannot claim a clean pass even if everything that did
	// execute succeeded.
	if report.Cancelled {
		sawOther = true
	}

	switch {
	case sawAuth:
		return VerdictAuthFailed, ExitAuthFailed
	case sawNetwork:
		return VerdictNetworkFailed, ExitNetworkFailed
	case sawOther:
		return VerdictSomeFailed, ExitSomeFailed
	default:
		return VerdictAllPassed, ExitAllPassed
	}
}
