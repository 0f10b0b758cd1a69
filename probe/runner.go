package probe

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"golang.org/x/sync/errgroup"

	"github.com/songquanpeng/ai-probe/auth"
	"github.com/songquanpeng/ai-probe/common/logger"
	"github.com/songquanpeng/ai-probe/config"
	"github.com/songquanpeng/ai-probe/service"
)

// ErrAuthResolution marks a run that never started because the shared
// credential could not be resolved.
var ErrAuthResolution = errors.New("credential resolution failed")

// Runner walks the configured services in declaration order, resolves each
// service's credential, and hands every scenario to the executor.
type Runner struct {
	Conf   *config.Config
	Auth   *auth.Manager
	Client *http.Client
	Exec   *Executor
}

// plan is one service's resolved execution unit.
type plan struct {
	svc       *config.ServiceConfig
	scenarios []service.Scenario
	target    *service.Target
	// skipReason marks every scenario of this service skipped, set when the
	// service's own credential resolution failed.
	skipReason string
}

// Run executes the whole configuration. The returned report is valid even on
// error: cancellation yields a partial report, and a failed shared credential
// yields an empty one alongside ErrAuthResolution.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.Conf.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.Conf.Timeout))
		defer cancel()
	}

	report := NewReport()
	defer report.finish()

	// With a single shared auth block one resolution serves the whole run,
	// and its failure means no scenario could possibly authenticate.
	if r.Conf.SharedAuthAcrossServices() {
		first := r.firstEnabledService()
		if first != nil {
			if _, err := r.Auth.Resolve(ctx, r.Conf.AuthSpec(first)); err != nil {
				return report, errors.Wrapf(ErrAuthResolution, "%v", err)
			}
		}
	}

	plans, err := r.buildPlans(ctx)
	if err != nil {
		return report, err
	}

	if r.Conf.Parallel > 1 {
		r.runParallel(ctx, plans, report)
	} else {
		r.runSequential(ctx, plans, report)
	}
	return report, nil
}

// buildPlans resolves credentials and input artifacts per service. A failed
// per-service credential does not stop the run; the service's scenarios are
// recorded as skipped instead.
func (r *Runner) buildPlans(ctx context.Context) ([]*plan, error) {
	var plans []*plan
	for i := range r.Conf.Services {
		svc := &r.Conf.Services[i]
		if !svc.IsEnabled() {
			continue
		}

		p := &plan{svc: svc, scenarios: r.scenariosFor(svc)}
		plans = append(plans, p)

		cred, err := r.Auth.Resolve(ctx, r.Conf.AuthSpec(svc))
		if err != nil {
			logger.Logger.Warn("skipping service, credential resolution failed",
				zap.String("service", svc.Name),
				zap.Error(err),
			)
			p.skipReason = "credential resolution failed: " + err.Error()
			continue
		}

		var input []byte
		if svc.InputFile != "" {
			input, err = os.ReadFile(svc.InputFile)
			if err != nil {
				return nil, errors.Wrapf(config.ErrInputFile,
					"service %q input file %s: %v", svc.Name, svc.InputFile, err)
			}
		}

		p.target = &service.Target{
			Service:    svc.Name,
			Cloud:      r.Conf.ResolvedCloud,
			Region:     svc.Region,
			Endpoint:   svc.Endpoint,
			Deployment: svc.Deployment,
			Credential: cred,
			InputPath:  svc.InputFile,
			Input:      input,
			Client:     r.Client,
		}
	}
	return plans, nil
}

// scenariosFor returns the service's scenarios to run. A configured subset
// executes in the order it is declared; otherwise the registry's canonical
// order applies. Names were validated against the registry at config load.
func (r *Runner) scenariosFor(svc *config.ServiceConfig) []service.Scenario {
	if len(svc.Scenarios) == 0 {
		return service.Scenarios(svc.Name)
	}
	out := make([]service.Scenario, 0, len(svc.Scenarios))
	for _, name := range svc.Scenarios {
		if sc, ok := service.Lookup(svc.Name, name); ok {
			out = append(out, sc)
		}
	}
	return out
}

func (r *Runner) firstEnabledService() *config.ServiceConfig {
	for i := range r.Conf.Services {
		if r.Conf.Services[i].IsEnabled() {
			return &r.Conf.Services[i]
		}
	}
	return nil
}

// runSequential executes plans in declaration order. Cancellation is honored
// at scenario boundaries so an in-flight scenario finishes classification
// before the run stops.
func (r *Runner) runSequential(ctx context.Context, plans []*plan, report *Report) {
	for _, p := range plans {
		for _, sc := range p.scenarios {
			if ctx.Err() != nil {
				report.Cancelled = true
				return
			}
			report.Results = append(report.Results, r.runOne(ctx, p, sc))
		}
	}
}

// runParallel fans services out across workers; scenarios within one service
// stay sequential because they share a target. Results are re-assembled in
// declaration order afterwards.
func (r *Runner) runParallel(ctx context.Context, plans []*plan, report *Report) {
	perService := make([][]ScenarioResult, len(plans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Conf.Parallel)
	for i, p := range plans {
		g.Go(func() error {
			for _, sc := range p.scenarios {
				if gctx.Err() != nil {
					return nil
				}
				perService[i] = append(perService[i], r.runOne(gctx, p, sc))
			}
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		report.Cancelled = true
	}
	for _, results := range perService {
		report.Results = append(report.Results, results...)
	}
}

func (r *Runner) runOne(ctx context.Context, p *plan, sc service.Scenario) ScenarioResult {
	if p.skipReason != "" {
		return ScenarioResult{
			Service:  p.svc.Name,
			Scenario: sc.Name(),
			Status:   StatusSkipped,
			Class:    FailureAuth,
			Reason:   p.skipReason,
		}
	}
	return r.Exec.Run(ctx, sc, p.target)
}
