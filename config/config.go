// Package config loads and validates the probe's run configuration: a YAML
// file with environment-variable overrides for secrets. The engine treats the
// result as fully validated input; anything wrong here aborts the run before
// a single scenario executes.
package config

import (
	"os"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/songquanpeng/ai-probe/auth"
	"github.com/songquanpeng/ai-probe/cloud"
	"github.com/songquanpeng/ai-probe/common/env"
	"github.com/songquanpeng/ai-probe/service"
)

// Sentinel errors drive the exit-code mapping: ErrInvalid is a configuration
// error (exit 4), ErrInputFile an input-validation error (exit 5).
var (
	ErrInvalid   = errors.New("invalid configuration")
	ErrInputFile = errors.New("invalid input file")
)

// Duration accepts both Go duration strings ("90s") and bare integers
// (seconds) in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return errors.Wrapf(ErrInvalid, "bad duration %q", value.Value)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(ErrInvalid, "bad duration %q", s)
	}
	*d = Duration(parsed)
	return nil
}

// AuthConfig selects one credential acquisition strategy. With method "both",
// Primary and Fallback name the two strategies in order.
type AuthConfig struct {
	Method   string `yaml:"method" validate:"required"`
	Primary  string `yaml:"primary"`
	Fallback string `yaml:"fallback"`

	APIKey       string `yaml:"api_key"`
	Token        string `yaml:"token"`
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Scope        string `yaml:"scope"`

	// LoginEndpoint overrides the cloud's AAD authority; used for sovereign
	// setups and tests.
	LoginEndpoint string `yaml:"login_endpoint"`
	// ExchangeEndpoint overrides the STS issueToken URL for token_exchange.
	ExchangeEndpoint string `yaml:"exchange_endpoint"`
	// IMDSEndpoint overrides the instance metadata base for managed_identity.
	IMDSEndpoint string `yaml:"imds_endpoint"`
}

// ServiceConfig declares one service under test. Declaration order in the
// YAML sequence is execution order.
type ServiceConfig struct {
	Name    string `yaml:"name" validate:"required"`
	Enabled *bool  `yaml:"enabled"`
	Region  string `yaml:"region"`
	// Endpoint overrides the canonical host derived from cloud and region.
	Endpoint string `yaml:"endpoint"`
	// Deployment is the Azure OpenAI deployment to exercise.
	Deployment string `yaml:"deployment"`
	// Auth overrides the global auth method for this service.
	Auth *AuthConfig `yaml:"auth"`
	// Scenarios defaults to every registered scenario for the service.
	Scenarios []string `yaml:"scenarios"`
	InputFile string   `yaml:"input_file"`
}

// IsEnabled treats an absent enabled field as true.
func (s ServiceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Config is the fully resolved run configuration.
type Config struct {
	Cloud    string          `yaml:"cloud"`
	Timeout  Duration        `yaml:"timeout"`
	Parallel int             `yaml:"parallel" validate:"min=0"`
	Auth     AuthConfig      `yaml:"auth" validate:"required"`
	Services []ServiceConfig `yaml:"services" validate:"min=1,dive"`

	// ResolvedCloud is populated by Load.
	ResolvedCloud cloud.Cloud `yaml:"-"`
}

// Load reads, overrides, and validates the configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalid, "read config file %s: %v", path, err)
	}

	var conf Config
	if err := yaml.Unmarshal(raw, &conf); err != nil {
		return nil, errors.Wrapf(ErrInvalid, "parse config file %s: %v", path, err)
	}

	conf.applyEnvOverrides()

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// applyEnvOverrides lets secrets come from the environment instead of the
// config file, so the file can be committed without credentials in it.
func (c *Config) applyEnvOverrides() {
	if v := env.String("AIPROBE_API_KEY", ""); v != "" {
		c.Auth.APIKey = v
	}
	if v := env.String("AIPROBE_TOKEN", ""); v != "" {
		c.Auth.Token = v
	}
	if v := env.String("AIPROBE_TENANT_ID", ""); v != "" {
		c.Auth.TenantID = v
	}
	if v := env.String("AIPROBE_CLIENT_ID", ""); v != "" {
		c.Auth.ClientID = v
	}
	if v := env.String("AIPROBE_CLIENT_SECRET", ""); v != "" {
		c.Auth.ClientSecret = v
	}
}

var validate = validator.New()

// Validate checks structure and cross-field constraints. Every failure wraps
// ErrInvalid except unreadable input artifacts, which wrap ErrInputFile.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrapf(ErrInvalid, "%v", err)
	}

	resolved, err := cloud.Parse(c.Cloud)
	if err != nil {
		return errors.Wrapf(ErrInvalid, "%v", err)
	}
	c.ResolvedCloud = resolved

	if err := c.Auth.validate(); err != nil {
		return err
	}

	enabled := 0
	for i := range c.Services {
		svc := &c.Services[i]
		if !svc.IsEnabled() {
			continue
		}
		enabled++

		if !service.Known(svc.Name) {
			return errors.Wrapf(ErrInvalid, "unknown service %q", svc.Name)
		}
		for _, name := range svc.Scenarios {
			if _, ok := service.Lookup(svc.Name, name); !ok {
				return errors.Wrapf(ErrInvalid, "unknown scenario %q for service %q", name, svc.Name)
			}
		}
		if svc.Name == service.ServiceOpenAI && svc.Endpoint == "" {
			return errors.Wrapf(ErrInvalid, "service %q requires an explicit endpoint", svc.Name)
		}
		if svc.Name != service.ServiceOpenAI && svc.Endpoint == "" && svc.Region == "" {
			return errors.Wrapf(ErrInvalid, "service %q requires a region or endpoint", svc.Name)
		}
		if svc.Auth != nil {
			if err := svc.Auth.validate(); err != nil {
				return err
			}
		}
		if svc.InputFile != "" {
			if _, statErr := os.Stat(svc.InputFile); statErr != nil {
				return errors.Wrapf(ErrInputFile, "service %q input file %s: %v", svc.Name, svc.InputFile, statErr)
			}
		}
	}
	if enabled == 0 {
		return errors.Wrapf(ErrInvalid, "no services enabled")
	}

	return nil
}

// validate checks method-specific required fields.
func (a *AuthConfig) validate() error {
	method, err := auth.ParseMethod(a.Method)
	if err != nil {
		return errors.Wrapf(ErrInvalid, "%v", err)
	}

	if method == auth.MethodBoth {
		if a.Primary == "" || a.Fallback == "" {
			return errors.Wrapf(ErrInvalid, "auth method \"both\" requires primary and fallback")
		}
		primary, err := auth.ParseMethod(a.Primary)
		if err != nil {
			return errors.Wrapf(ErrInvalid, "primary: %v", err)
		}
		fallback, err := auth.ParseMethod(a.Fallback)
		if err != nil {
			return errors.Wrapf(ErrInvalid, "fallback: %v", err)
		}
		if primary == auth.MethodBoth || fallback == auth.MethodBoth {
			return errors.Wrapf(ErrInvalid, "auth method \"both\" cannot nest")
		}
		if err := a.validateFieldsFor(primary); err != nil {
			return err
		}
		return a.validateFieldsFor(fallback)
	}

	return a.validateFieldsFor(method)
}

func (a *AuthConfig) validateFieldsFor(method auth.Method) error {
	switch method {
	case auth.MethodAPIKey, auth.MethodTokenExchange:
		if a.APIKey == "" {
			return errors.Wrapf(ErrInvalid, "auth method %q requires api_key", method)
		}
	case auth.MethodToken:
		if a.Token == "" {
			return errors.Wrapf(ErrInvalid, "auth method %q requires token", method)
		}
	case auth.MethodServicePrincipal:
		if a.TenantID == "" || a.ClientID == "" || a.ClientSecret == "" {
			return errors.Wrapf(ErrInvalid,
				"auth method %q requires tenant_id, client_id and client_secret", method)
		}
	case auth.MethodDeviceCode:
		if a.TenantID == "" {
			return errors.Wrapf(ErrInvalid, "auth method %q requires tenant_id", method)
		}
	case auth.MethodManagedIdentity:
		// Nothing required; client_id is optional for user-assigned identities.
	}
	return nil
}

// AuthSpec builds the resolution spec for a service, falling back to the
// global auth block when the service has no override.
func (c *Config) AuthSpec(svc *ServiceConfig) auth.Spec {
	block := &c.Auth
	if svc != nil && svc.Auth != nil {
		block = svc.Auth
	}

	method := auth.Method(block.Method)
	fallback := auth.Method("")
	if method == auth.MethodBoth {
		method = auth.Method(block.Primary)
		fallback = auth.Method(block.Fallback)
	}

	scope := block.Scope
	if scope == "" {
		scope = c.ResolvedCloud.CognitiveScope()
	}
	login := block.LoginEndpoint
	if login == "" {
		login = c.ResolvedCloud.LoginEndpoint()
	}
	exchange := block.ExchangeEndpoint
	if exchange == "" && svc != nil && svc.Region != "" {
		exchange = c.ResolvedCloud.STSEndpoint(svc.Region)
	}

	return auth.Spec{
		Method:   method,
		Fallback: fallback,
		Options: auth.Options{
			LoginEndpoint:    login,
			Scope:            scope,
			TenantID:         block.TenantID,
			ClientID:         block.ClientID,
			ClientSecret:     block.ClientSecret,
			APIKey:           block.APIKey,
			Token:            block.Token,
			ExchangeEndpoint: exchange,
			IMDSEndpoint:     block.IMDSEndpoint,
		},
	}
}

// SharedAuthAcrossServices reports whether every enabled service uses the
// global auth block, in which case one credential resolution can serve the
// whole run.
func (c *Config) SharedAuthAcrossServices() bool {
	for i := range c.Services {
		svc := &c.Services[i]
		if svc.IsEnabled() && svc.Auth != nil {
			return false
		}
	}
	return true
}
