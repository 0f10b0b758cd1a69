// Package netdiag probes the network path to an endpoint layer by layer:
// DNS resolution, TCP connect, TLS handshake, then a full HTTPS round trip.
// It is pure connectivity diagnosis; no credential ever leaves this package
// because it sends none.
package netdiag

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/Laisky/errors/v2"

	cfg "github.com/songquanpeng/ai-probe/common/config"
)

// Step is one layer's measurement.
type Step struct {
	Name    string        `json:"name"`
	OK      bool          `json:"ok"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Detail  string        `json:"detail,omitempty"`
}

// Result is the layered diagnosis for one endpoint.
type Result struct {
	Endpoint string `json:"endpoint"`
	Host     string `json:"host"`
	Steps    []Step `json:"steps"`
}

// Diagnoser runs the layered checks. The zero value is not usable; use New.
type Diagnoser struct {
	resolver *net.Resolver
	dialer   *net.Dialer
	client   *http.Client
}

// New builds a diagnoser with the shared request timeout on every layer.
func New() *Diagnoser {
	return &Diagnoser{
		resolver: net.DefaultResolver,
		dialer:   &net.Dialer{Timeout: cfg.RequestTimeout},
		client:   &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// Diagnose walks the layers for one endpoint URL. Each layer only runs when
// the previous one succeeded; the first failing layer names the culprit.
func (d *Diagnoser) Diagnose(ctx context.Context, endpoint string) (Result, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return Result{}, errors.Errorf("invalid endpoint %q", endpoint)
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		if u.Scheme == "http" {
			port = "80"
		} else {
			port = "443"
		}
	}

	res := Result{Endpoint: endpoint, Host: host}

	addrs, step := d.resolve(ctx, host)
	res.Steps = append(res.Steps, step)
	if !step.OK {
		return res, nil
	}

	step = d.connect(ctx, net.JoinHostPort(addrs[0], port))
	res.Steps = append(res.Steps, step)
	if !step.OK {
		return res, nil
	}

	if u.Scheme != "http" {
		step = d.handshake(ctx, host, net.JoinHostPort(addrs[0], port))
		res.Steps = append(res.Steps, step)
		if !step.OK {
			return res, nil
		}
	}

	res.Steps = append(res.Steps, d.roundTrip(ctx, endpoint))
	return res, nil
}

func (d *Diagnoser) resolve(ctx context.Context, host string) ([]string, Step) {
	start := time.Now()
	addrs, err := d.resolver.LookupHost(ctx, host)
	step := Step{Name: "dns", Elapsed: time.Since(start)}
	if err != nil || len(addrs) == 0 {
		step.Detail = errDetail(err, "no addresses")
		return nil, step
	}
	step.OK = true
	step.Detail = addrs[0]
	return addrs, step
}

func (d *Diagnoser) connect(ctx context.Context, addr string) Step {
	start := time.Now()
	conn, err := d.dialer.DialContext(ctx, "tcp", addr)
	step := Step{Name: "tcp", Elapsed: time.Since(start)}
	if err != nil {
		step.Detail = err.Error()
		return step
	}
	conn.Close()
	step.OK = true
	return step
}

func (d *Diagnoser) handshake(ctx context.Context, serverName, addr string) Step {
	start := time.Now()
	conn, err := d.dialer.DialContext(ctx, "tcp", addr)
	step := Step{Name: "tls", Elapsed: time.Since(start)}
	if err != nil {
		step.Detail = err.Error()
		return step
	}
	defer conn.Close()

	tlsConn := tls.Client(conn, &tls.Config{ServerName: serverName})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		step.Elapsed = time.Since(start)
		step.Detail = err.Error()
		return step
	}
	step.Elapsed = time.Since(start)
	step.OK = true
	step.Detail = tls.VersionName(tlsConn.ConnectionState().Version)
	return step
}

// roundTrip measures an unauthenticated request. Any HTTP status proves the
// service answered; only transport errors fail this layer.
func (d *Diagnoser) roundTrip(ctx context.Context, endpoint string) Step {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Step{Name: "https", Detail: err.Error()}
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := d.client.Do(req)
	step := Step{Name: "https", Elapsed: time.Since(start)}
	if err != nil {
		step.Detail = err.Error()
		return step
	}
	resp.Body.Close()
	step.OK = true
	step.Detail = resp.Status
	return step
}

func errDetail(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
