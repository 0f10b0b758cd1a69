package config

import (
	"time"

	"github.com/songquanpeng/ai-probe/common/env"
)

var (
	// DebugEnabled toggles verbose structured logging when DEBUG=true.
	DebugEnabled = env.Bool("DEBUG", false)

	// RequestTimeout bounds every single outbound HTTP request (credential
	// acquisition, scenario request, poll iteration). A timeout cancels only
	// that operation, never the whole run.
	RequestTimeout = env.Duration("AIPROBE_REQUEST_TIMEOUT", 30*time.Second)

	// PollInterval is the default wait between status polls for asynchronous
	// scenarios when the service does not dictate its own interval.
	PollInterval = env.Duration("AIPROBE_POLL_INTERVAL", 5*time.Second)

	// PollBudget caps the total wall-clock time spent polling an asynchronous
	// scenario before the soft "endpoint responsive" outcome is reported.
	PollBudget = env.Duration("AIPROBE_POLL_BUDGET", 2*time.Minute)

	// DeviceCodeTimeout caps the interactive device-code flow. The flow's own
	// expires_in still applies when shorter.
	DeviceCodeTimeout = env.Duration("AIPROBE_DEVICE_CODE_TIMEOUT", 15*time.Minute)

	// UserAgent identifies probe traffic to the target services.
	UserAgent = env.String("AIPROBE_USER_AGENT", "ai-probe/"+Version)

	// MaxResponseBodySize limits how much of a response body is read when
	// classifying an outcome.
	MaxResponseBodySize = env.Int("AIPROBE_MAX_RESPONSE_BODY", 1<<20)
)

// Version is stamped by the release build via -ldflags.
var Version = "v0.0.0-dev"
