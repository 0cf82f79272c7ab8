package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// APIKeyEnv overrides crm.api_key when set.
	APIKeyEnv = "CRM_API_KEY"

	// Default CRM settings
	defaultRequestTimeout = 30 * time.Second

	// Default sales activity settings
	defaultTypeInternalName = "cphone"
	defaultOutcomeName      = "Interested"
	defaultActivityTitle    = "call"
	defaultTargetableType   = "Contact"
	defaultStepTimeout      = 10 * time.Second

	// Default phone call settings
	defaultCallDirection = "outgoing"

	// Default monitoring settings
	defaultMetricsPrefix = "gocti"
	defaultJobName       = "gocti"

	// Default server settings
	defaultListen             = ":8080"
	defaultProbeSchedule      = "*/15 * * * *"
	defaultNotificationBuffer = 100
	defaultHistorySize        = 50
	defaultDiagnosticsTTL     = 30 * time.Minute

	// Default logging settings
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
	defaultLogOutput = "stdout"
)

// Config represents the complete application configuration
type Config struct {
	CRM           CRMConfig           `yaml:"crm"`
	Operator      OperatorConfig      `yaml:"operator"`
	SalesActivity SalesActivityConfig `yaml:"sales_activity"`
	PhoneCall     PhoneCallConfig     `yaml:"phone_call"`
	Monitoring    MonitoringConfig    `yaml:"monitoring"`
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// CRMConfig holds Freshworks CRM connection settings
type CRMConfig struct {
	// Domain is the CRM bundle URL, e.g. https://acme.myfreshworks.com
	Domain string `yaml:"domain"`

	// APIKey authenticates every request. Overridden by CRM_API_KEY.
	APIKey string `yaml:"api_key"`

	// RequestTimeout bounds each HTTP request to the CRM
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// OperatorConfig identifies the operator on whose behalf activities are logged.
// Exactly one of ID and Email must be set.
type OperatorConfig struct {
	ID    int64  `yaml:"id"`
	Email string `yaml:"email"`
}

// SalesActivityConfig controls how sales activity records are built
type SalesActivityConfig struct {
	TypeInternalName string        `yaml:"type_internal_name"`
	OutcomeName      string        `yaml:"outcome_name"`
	Title            string        `yaml:"title"`
	TargetableType   string        `yaml:"targetable_type"`
	StartDate        time.Time     `yaml:"start_date"`
	EndDate          time.Time     `yaml:"end_date"`
	StepTimeout      time.Duration `yaml:"step_timeout"`

	// DedupeWindow enables in-flight de-duplication when positive
	DedupeWindow time.Duration `yaml:"dedupe_window"`
}

// PhoneCallConfig controls phone call logging
type PhoneCallConfig struct {
	DefaultDirection string `yaml:"default_direction"` // incoming or outgoing
}

// MonitoringConfig holds metrics and monitoring settings
type MonitoringConfig struct {
	VictoriaMetricsURL string `yaml:"victoriametrics_url"`
	MetricsPrefix      string `yaml:"metrics_prefix"`
	JobName            string `yaml:"jobname"`
}

// ServerConfig holds settings for the HTTP server
type ServerConfig struct {
	Listen             string        `yaml:"listen"`
	ProbeSchedule      string        `yaml:"probe_schedule"`
	NotificationBuffer int           `yaml:"notification_buffer"`
	HistorySize        int           `yaml:"history_size"`
	DiagnosticsTTL     time.Duration `yaml:"diagnostics_ttl"`

	// TLSCert and TLSKey enable HTTPS when both are set. The files are
	// re-read when they change on disk.
	TLSCert string `yaml:"tls_cert"`
	TLSKey  string `yaml:"tls_key"`
}

// LoggingConfig defines logging behavior settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Output    string `yaml:"output"`
	AddSource bool   `yaml:"add_source"`
}

// Validate performs basic validation on the configuration
func (c *Config) Validate() error {
	if c.CRM.Domain == "" {
		return fmt.Errorf("CRM domain is required")
	}
	u, err := url.Parse(c.CRM.Domain)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CRM domain must be an absolute URL, got %q", c.CRM.Domain)
	}
	if c.CRM.APIKey == "" {
		return fmt.Errorf("CRM API key is required (set crm.api_key or %s)", APIKeyEnv)
	}
	if c.CRM.RequestTimeout <= 0 {
		return fmt.Errorf("CRM request timeout must be positive")
	}
	if c.Operator.ID == 0 && c.Operator.Email == "" {
		return fmt.Errorf("operator id or email is required")
	}
	if c.Operator.ID != 0 && c.Operator.Email != "" {
		return fmt.Errorf("operator id and email are mutually exclusive")
	}
	if c.SalesActivity.StepTimeout <= 0 {
		return fmt.Errorf("sales activity step timeout must be positive")
	}
	if c.SalesActivity.DedupeWindow < 0 {
		return fmt.Errorf("sales activity dedupe window must not be negative")
	}
	if !c.SalesActivity.StartDate.IsZero() && !c.SalesActivity.EndDate.IsZero() &&
		c.SalesActivity.EndDate.Before(c.SalesActivity.StartDate) {
		return fmt.Errorf("sales activity end date must not be before start date")
	}
	switch c.PhoneCall.DefaultDirection {
	case "incoming", "outgoing":
	default:
		return fmt.Errorf("phone call direction must be incoming or outgoing, got %q", c.PhoneCall.DefaultDirection)
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return fmt.Errorf("server tls_cert and tls_key must be set together")
	}
	if c.Server.NotificationBuffer <= 0 {
		return fmt.Errorf("notification buffer must be positive")
	}
	return nil
}

// SetDefaults sets reasonable default values for optional fields
func (c *Config) SetDefaults() {
	if c.CRM.RequestTimeout == 0 {
		c.CRM.RequestTimeout = defaultRequestTimeout
	}
	if c.SalesActivity.TypeInternalName == "" {
		c.SalesActivity.TypeInternalName = defaultTypeInternalName
	}
	if c.SalesActivity.OutcomeName == "" {
		c.SalesActivity.OutcomeName = defaultOutcomeName
	}
	if c.SalesActivity.Title == "" {
		c.SalesActivity.Title = defaultActivityTitle
	}
	if c.SalesActivity.TargetableType == "" {
		c.SalesActivity.TargetableType = defaultTargetableType
	}
	if c.SalesActivity.StepTimeout == 0 {
		c.SalesActivity.StepTimeout = defaultStepTimeout
	}
	if c.PhoneCall.DefaultDirection == "" {
		c.PhoneCall.DefaultDirection = defaultCallDirection
	}
	if c.Monitoring.MetricsPrefix == "" {
		c.Monitoring.MetricsPrefix = defaultMetricsPrefix
	}
	if c.Monitoring.JobName == "" {
		c.Monitoring.JobName = defaultJobName
	}
	if c.Server.Listen == "" {
		c.Server.Listen = defaultListen
	}
	if c.Server.ProbeSchedule == "" {
		c.Server.ProbeSchedule = defaultProbeSchedule
	}
	if c.Server.NotificationBuffer == 0 {
		c.Server.NotificationBuffer = defaultNotificationBuffer
	}
	if c.Server.HistorySize == 0 {
		c.Server.HistorySize = defaultHistorySize
	}
	if c.Server.DiagnosticsTTL == 0 {
		c.Server.DiagnosticsTTL = defaultDiagnosticsTTL
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Output == "" {
		c.Logging.Output = defaultLogOutput
	}
}

// applyEnv overlays environment overrides onto the configuration
func (c *Config) applyEnv(getenv func(string) string) {
	if key := getenv(APIKeyEnv); key != "" {
		c.CRM.APIKey = key
	}
}

// LoadConfig reads the YAML config file at the given path and returns a Config struct
func LoadConfig(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding %s: %w", path, err)
	}
	cfg.applyEnv(os.Getenv)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
