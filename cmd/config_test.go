package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/ats-screener/internal/ai"
	"github.com/spigell/ats-screener/internal/notify"
	"github.com/spigell/ats-screener/internal/resume"
	"github.com/spigell/ats-screener/internal/screening"
)

func resetViper(t *testing.T) {
	t.Helper()

	viper.Reset()
	setDefaults()
	t.Cleanup(func() {
		viper.Reset()
		setDefaults()
	})
}

func TestGetConfigDefaults(t *testing.T) {
	resetViper(t)

	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Threshold != screening.DefaultThreshold || config.Concurrency != screening.DefaultConcurrency {
		t.Fatalf("unexpected batch defaults: %+v", config)
	}
	if config.AI.Provider != ai.ProviderGroq {
		t.Fatalf("unexpected provider: %q", config.AI.Provider)
	}
	if config.Timeouts.Probe != resume.DefaultProbeTimeout || config.Timeouts.Notify != notify.DefaultTimeout {
		t.Fatalf("unexpected timeouts: %+v", config.Timeouts)
	}
	if !config.Mail.Enabled || config.Mail.Port != notify.DefaultPort {
		t.Fatalf("unexpected mail defaults: %+v", config.Mail)
	}
	if config.JobDescriptionFile != defaultJobDescriptionFile {
		t.Fatalf("unexpected job description file: %q", config.JobDescriptionFile)
	}
}

func TestGetConfigDecodesFile(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "ats-screener.yaml")
	content := `
threshold: 85
concurrency: 4
cors:
  allowed-origins: "https://a.example.com,https://b.example.com"
timeouts:
  scoring: 15s
  download: 2m
ai:
  provider: " Gemini "
  model: gemini-2.0-flash
mail:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}

	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Threshold != 85 || config.Concurrency != 4 {
		t.Fatalf("unexpected batch settings: %+v", config)
	}
	if config.AI.Provider != ai.ProviderGemini || config.AI.Model != "gemini-2.0-flash" {
		t.Fatalf("unexpected ai settings: %+v", config.AI)
	}
	if config.Timeouts.Scoring != 15*time.Second || config.Timeouts.Download != 2*time.Minute {
		t.Fatalf("unexpected timeouts: %+v", config.Timeouts)
	}
	if len(config.CORS.AllowedOrigins) != 2 || config.CORS.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins: %v", config.CORS.AllowedOrigins)
	}
	if config.Mail.Enabled {
		t.Fatal("expected mail to be disabled")
	}
}

func TestGetConfigRejectsUnknownProvider(t *testing.T) {
	resetViper(t)
	viper.Set("ai.provider", "openai")

	if _, err := getConfig(); err == nil || !strings.Contains(err.Error(), "unsupported ai provider") {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestGetConfigReadsEnvironment(t *testing.T) {
	resetViper(t)
	t.Setenv("EMAIL_USER", "hr@example.com")
	t.Setenv("GROQ_API", "gsk-test")

	if err := viper.BindEnv("mail.username", "EMAIL_USER"); err != nil {
		t.Fatalf("bind env: %v", err)
	}
	if err := viper.BindEnv("ai.api-key", "GROQ_API", "GEMINI_API_KEY"); err != nil {
		t.Fatalf("bind env: %v", err)
	}

	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Mail.Username != "hr@example.com" || config.AI.APIKey != "gsk-test" {
		t.Fatalf("unexpected environment values: user=%q key=%q", config.Mail.Username, config.AI.APIKey)
	}
}

func TestLoadJobDescription(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{name: "kept verbatim", content: "  Senior Go engineer\n\n- Kubernetes\n"},
		{name: "empty file", content: ""},
		{name: "whitespace only", content: " \n"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, fmt.Sprintf("job-%d.txt", i))
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("write brief: %v", err)
			}

			got, err := loadJobDescription(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.content {
				t.Fatalf("expected %q, got %q", tt.content, got)
			}
		})
	}

	for _, path := range []string{"", filepath.Join(dir, "missing.txt")} {
		if _, err := loadJobDescription(path); err == nil {
			t.Fatalf("expected error for %q", path)
		}
	}
}

func TestNewMailerDisabledWithoutCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  MailConfig
	}{
		{name: "switched off", cfg: MailConfig{Enabled: false, Username: "hr@example.com", Password: "secret"}},
		{name: "no password", cfg: MailConfig{Enabled: true, Username: "hr@example.com"}},
		{name: "no username", cfg: MailConfig{Enabled: true, Password: "secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mailer, err := newMailer(&tt.cfg, TimeoutsConfig{}, zap.NewNop())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mailer.Enabled() {
				t.Fatal("expected a disabled mailer")
			}
		})
	}

	mailer, err := newMailer(&MailConfig{Enabled: true, Username: "hr@example.com", Password: "secret"}, TimeoutsConfig{}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mailer.Enabled() {
		t.Fatal("expected an enabled mailer")
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	t.Setenv("GROQ_API", "")

	_, err := newGenerator(t.Context(), &AIConfig{Provider: ai.ProviderGroq})
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("expected missing key error, got %v", err)
	}

	gen, err := newGenerator(t.Context(), &AIConfig{APIKey: "gsk-test", Model: "mixtral"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.Model() != "mixtral" {
		t.Fatalf("unexpected model: %q", gen.Model())
	}
}
