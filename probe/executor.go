package probe

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Laisky/zap"

	cfg "github.com/songquanpeng/ai-probe/common/config"
	"github.com/songquanpeng/ai-probe/common/logger"
	"github.com/songquanpeng/ai-probe/service"
)

// pollBudgetMessage annotates the soft outcome of an async scenario whose job
// never reached a terminal state while the endpoint kept answering polls.
const pollBudgetMessage = "polling timeout, but endpoint responsive"

// Executor runs one scenario against one target and classifies the result.
// Both dimensions of failure are decided here: the terminal status and, for
// failures, the class that drives verdict aggregation.
type Executor struct {
	PollInterval time.Duration
	PollBudget   time.Duration
}

// NewExecutor applies the configured polling defaults.
func NewExecutor() *Executor {
	return &Executor{
		PollInterval: cfg.PollInterval,
		PollBudget:   cfg.PollBudget,
	}
}

// Run executes a single scenario. Scenarios that declare an input requirement
// are skipped when the target carries none, without touching the network.
func (e *Executor) Run(ctx context.Context, sc service.Scenario, target *service.Target) ScenarioResult {
	result := ScenarioResult{
		Service:  target.Service,
		Scenario: sc.Name(),
	}

	if sc.RequiresInput() && len(target.Input) == 0 {
		result.Status = StatusSkipped
		result.Reason = "no input file configured"
		return result
	}

	start := time.Now()
	switch s := sc.(type) {
	case service.ImmediateScenario:
		out, err := s.Perform(ctx, target)
		e.fill(&result, out, err)
	case service.AsyncScenario:
		e.runAsync(ctx, s, target, &result)
	default:
		result.Status = StatusFailure
		result.Class = FailureService
		result.Reason = "scenario implements no execution interface"
	}
	result.Latency = time.Since(start)

	logger.Logger.Debug("scenario finished",
		zap.String("service", result.Service),
		zap.String("scenario", result.Scenario),
		zap.String("status", string(result.Status)),
		zap.Duration("latency", result.Latency),
	)
	return result
}

// runAsync drives the submit-then-poll loop. The poll budget is a soft limit:
// exhausting it while every poll got answered still proves connectivity, so
// the scenario passes with an annotation instead of failing.
func (e *Executor) runAsync(ctx context.Context, sc service.AsyncScenario, target *service.Target, result *ScenarioResult) {
	job, out, err := sc.Submit(ctx, target)
	if err != nil || !out.OK {
		e.fill(result, out, err)
		return
	}

	deadline := time.Now().Add(e.PollBudget)
	timer := time.NewTimer(e.PollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			e.fill(result, service.Outcome{}, ctx.Err())
			return
		case <-timer.C:
		}

		done, out, err := sc.Poll(ctx, target, job)
		if err != nil || done {
			e.fill(result, out, err)
			return
		}

		if time.Now().After(deadline) {
			result.Status = StatusSuccess
			result.HTTPStatus = out.HTTPStatus
			result.Message = pollBudgetMessage
			return
		}
		timer.Reset(e.PollInterval)
	}
}

// fill classifies one exchange into the result. Transport errors are network
// failures unless the context deadline tripped; HTTP 401/403 are auth
// failures; any other non-2xx, or a 2xx with a malformed body, is a service
// failure.
func (e *Executor) fill(result *ScenarioResult, out service.Outcome, err error) {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			result.Status = StatusTimeout
			result.Class = FailureNetwork
			result.Reason = "request timed out"
			return
		}
		// An operator interrupt is neither an auth nor a network diagnosis;
		// it carries no failure class so the run aggregates to SomeFailed.
		if errors.Is(err, context.Canceled) {
			result.Status = StatusFailure
			result.Reason = "run cancelled"
			return
		}
		result.Status = StatusFailure
		result.Class = FailureNetwork
		result.Reason = "network error"
		result.Message = err.Error()
		return
	}

	result.HTTPStatus = out.HTTPStatus
	result.Message = out.Message
	if out.OK {
		result.Status = StatusSuccess
		return
	}

	result.Status = StatusFailure
	switch out.HTTPStatus {
	case http.StatusUnauthorized, http.StatusForbidden:
		result.Class = FailureAuth
		result.Reason = "authentication rejected"
	default:
		result.Class = FailureService
		result.Reason = "service error"
	}
}
