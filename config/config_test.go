package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Config{
		CRM:      CRMConfig{Domain: "https://acme.myfreshworks.com", APIKey: "secret"},
		Operator: OperatorConfig{ID: 16000123456},
	}
	cfg.SetDefaults()
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:   "operator by email",
			mutate: func(c *Config) { c.Operator = OperatorConfig{Email: "agent@acme.com"} },
		},
		{
			name:    "missing domain",
			mutate:  func(c *Config) { c.CRM.Domain = "" },
			wantErr: "CRM domain is required",
		},
		{
			name:    "domain without scheme",
			mutate:  func(c *Config) { c.CRM.Domain = "acme.myfreshworks.com" },
			wantErr: "absolute URL",
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.CRM.APIKey = "" },
			wantErr: "CRM_API_KEY",
		},
		{
			name:    "no operator",
			mutate:  func(c *Config) { c.Operator = OperatorConfig{} },
			wantErr: "operator id or email is required",
		},
		{
			name:    "both operator id and email",
			mutate:  func(c *Config) { c.Operator.Email = "agent@acme.com" },
			wantErr: "mutually exclusive",
		},
		{
			name:    "negative step timeout",
			mutate:  func(c *Config) { c.SalesActivity.StepTimeout = -time.Second },
			wantErr: "step timeout must be positive",
		},
		{
			name:    "negative dedupe window",
			mutate:  func(c *Config) { c.SalesActivity.DedupeWindow = -time.Second },
			wantErr: "dedupe window",
		},
		{
			name: "end before start",
			mutate: func(c *Config) {
				c.SalesActivity.StartDate = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
				c.SalesActivity.EndDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			},
			wantErr: "end date must not be before start date",
		},
		{
			name:    "tls cert without key",
			mutate:  func(c *Config) { c.Server.TLSCert = "/etc/gocti/tls.crt" },
			wantErr: "must be set together",
		},
		{
			name:    "bad call direction",
			mutate:  func(c *Config) { c.PhoneCall.DefaultDirection = "sideways" },
			wantErr: "incoming or outgoing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()

	assert.Equal(t, defaultRequestTimeout, cfg.CRM.RequestTimeout)
	assert.Equal(t, "cphone", cfg.SalesActivity.TypeInternalName)
	assert.Equal(t, "Interested", cfg.SalesActivity.OutcomeName)
	assert.Equal(t, "call", cfg.SalesActivity.Title)
	assert.Equal(t, "Contact", cfg.SalesActivity.TargetableType)
	assert.Equal(t, defaultStepTimeout, cfg.SalesActivity.StepTimeout)
	assert.Zero(t, cfg.SalesActivity.DedupeWindow)
	assert.Equal(t, "outgoing", cfg.PhoneCall.DefaultDirection)
	assert.Equal(t, "gocti", cfg.Monitoring.MetricsPrefix)
	assert.Equal(t, "gocti", cfg.Monitoring.JobName)
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, defaultProbeSchedule, cfg.Server.ProbeSchedule)
	assert.Equal(t, defaultNotificationBuffer, cfg.Server.NotificationBuffer)
	assert.Equal(t, defaultHistorySize, cfg.Server.HistorySize)
	assert.Equal(t, defaultDiagnosticsTTL, cfg.Server.DiagnosticsTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestConfig_SetDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		SalesActivity: SalesActivityConfig{OutcomeName: "Not Interested", StepTimeout: 3 * time.Second},
		Server:        ServerConfig{Listen: ":9000"},
	}
	cfg.SetDefaults()

	assert.Equal(t, "Not Interested", cfg.SalesActivity.OutcomeName)
	assert.Equal(t, 3*time.Second, cfg.SalesActivity.StepTimeout)
	assert.Equal(t, ":9000", cfg.Server.Listen)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gocti.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	path := writeConfig(t, `
crm:
  domain: https://acme.myfreshworks.com
  api_key: from-file
  request_timeout: 5s
operator:
  email: agent@acme.com
sales_activity:
  outcome_name: Callback
  start_date: 2026-05-01T09:00:00Z
  end_date: 2026-05-01T09:30:00Z
  step_timeout: 2s
  dedupe_window: 1m
monitoring:
  victoriametrics_url: http://vm:8428
logging:
  format: pretty
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.CRM.APIKey)
	assert.Equal(t, 5*time.Second, cfg.CRM.RequestTimeout)
	assert.Equal(t, "agent@acme.com", cfg.Operator.Email)
	assert.Equal(t, "Callback", cfg.SalesActivity.OutcomeName)
	assert.Equal(t, "cphone", cfg.SalesActivity.TypeInternalName)
	assert.True(t, cfg.SalesActivity.StartDate.Equal(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)))
	assert.True(t, cfg.SalesActivity.EndDate.Equal(time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, 2*time.Second, cfg.SalesActivity.StepTimeout)
	assert.Equal(t, time.Minute, cfg.SalesActivity.DedupeWindow)
	assert.Equal(t, "http://vm:8428", cfg.Monitoring.VictoriaMetricsURL)
	assert.Equal(t, "pretty", cfg.Logging.Format)
}

func TestLoadConfig_EnvOverridesAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")
	path := writeConfig(t, `
crm:
  domain: https://acme.myfreshworks.com
  api_key: from-file
operator:
  id: 16000123456
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.CRM.APIKey)
}

func TestLoadConfig_EnvSuppliesMissingAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")
	path := writeConfig(t, `
crm:
  domain: https://acme.myfreshworks.com
operator:
  id: 16000123456
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.CRM.APIKey)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "crm: [unclosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding")
	})

	t.Run("invalid duration", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "crm:\n  request_timeout: soon\n"))
		require.Error(t, err)
	})

	t.Run("fails validation", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "crm:\n  domain: https://acme.myfreshworks.com\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key is required")
	})
}

func TestApplyEnv(t *testing.T) {
	cfg := Config{CRM: CRMConfig{APIKey: "file"}}
	cfg.applyEnv(func(string) string { return "" })
	assert.Equal(t, "file", cfg.CRM.APIKey)

	cfg.applyEnv(func(k string) string {
		if k == APIKeyEnv {
			return "env"
		}
		return ""
	})
	assert.Equal(t, "env", cfg.CRM.APIKey)
}
