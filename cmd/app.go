package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/ats-screener/internal/ai"
	"github.com/spigell/ats-screener/internal/ai/gemini"
	"github.com/spigell/ats-screener/internal/ai/groq"
	"github.com/spigell/ats-screener/internal/logger"
	"github.com/spigell/ats-screener/internal/metrics"
	"github.com/spigell/ats-screener/internal/notify"
	"github.com/spigell/ats-screener/internal/resume"
	"github.com/spigell/ats-screener/internal/screening"
	"github.com/spigell/ats-screener/internal/secrets"
)

type buildOptions struct {
	// Notify is false when the caller asked not to send e-mails at all.
	Notify   bool
	Registry *prometheus.Registry
}

func newLogger(output string) *zap.Logger {
	l, err := logger.New(logger.Options{
		JSON:   viper.GetBool("json"),
		Debug:  viper.GetBool("debug"),
		Output: output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating a logger: %s\n", err)
		os.Exit(1)
	}
	return l
}

// loadConfig decodes the configuration and fails the process on errors.
func loadConfig(l *zap.Logger) *Config {
	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	l.Info("starting the ats-screener", zap.String("version", version))
	l.Debug("starting with config", zap.Any("config", config))

	return config
}

func buildScreener(ctx context.Context, config *Config, l *zap.Logger, opts buildOptions) (*screening.Screener, error) {
	brief, err := loadJobDescription(config.JobDescriptionFile)
	if err != nil {
		return nil, err
	}

	generator, err := newGenerator(ctx, &config.AI)
	if err != nil {
		return nil, fmt.Errorf("building %s generator: %w", config.AI.Provider, err)
	}

	scorer := ai.NewScorer(generator, brief,
		logger.WithCommonFields(l.Named("scorer"), config.AI.Provider.String(), generator.Model()),
		config.AI.MaxLogLength,
	)
	scorer.Timeout = config.Timeouts.Scoring

	client := resume.New(l.Named("resume"))
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}
	if config.Timeouts.Probe > 0 {
		client.ProbeTimeout = config.Timeouts.Probe
	}
	if config.Timeouts.Download > 0 {
		client.DownloadTimeout = config.Timeouts.Download
	}
	if config.MaxDocumentSize > 0 {
		client.MaxDocumentSize = config.MaxDocumentSize
	}

	deps := screening.Deps{
		Resolver: client,
		Fetcher:  client,
		Scorer:   scorer,
		Logger:   l.Named("screening"),
	}

	if opts.Notify {
		mailer, err := newMailer(&config.Mail, config.Timeouts, l)
		if err != nil {
			return nil, err
		}
		deps.Notifier = mailer
	}

	if opts.Registry != nil {
		deps.Recorder = metrics.NewRecorder(opts.Registry)
	}

	return screening.New(screening.Config{
		Threshold:   &config.Threshold,
		Concurrency: config.Concurrency,
	}, deps)
}

// loadJobDescription returns the brief exactly as written in the file.
func loadJobDescription(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("job description file is not configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading job description: %w", err)
	}

	return string(data), nil
}

func newGenerator(ctx context.Context, cfg *AIConfig) (ai.Generator, error) {
	if cfg.Provider == "" {
		cfg.Provider = ai.DefaultProvider
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  fmt.Sprintf("%s api key", cfg.Provider),
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.api-key-file, GROQ_API or GEMINI_API_KEY)", err)
	}

	switch cfg.Provider {
	case ai.ProviderGemini:
		return gemini.NewGenerator(ctx, apiKey, cfg.Model)
	case ai.ProviderGroq:
		return groq.NewGenerator(apiKey, cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

// newMailer returns a disabled mailer when notifications are switched off or
// credentials are missing. Only a broken SMTP setup is an error.
func newMailer(cfg *MailConfig, timeouts TimeoutsConfig, l *zap.Logger) (*notify.Mailer, error) {
	mailLogger := l.Named("notify")

	if !cfg.Enabled {
		mailLogger.Info("notifications are disabled", zap.String("reason", "mail.enabled is false"))
		return notify.New(notify.Config{}, mailLogger)
	}

	password, err := secrets.Load(secrets.Source{
		Name:  "smtp password",
		Value: cfg.Password,
		File:  cfg.PasswordFile,
	})
	if err != nil && !errors.Is(err, secrets.ErrNotConfigured) {
		return nil, err
	}

	if strings.TrimSpace(cfg.Username) == "" || password == "" {
		mailLogger.Warn("notifications are disabled",
			zap.String("reason", "smtp credentials are not configured"),
			zap.String("hint", "set EMAIL_USER and EMAIL_PASS or the mail section in the configuration file"),
		)
		return notify.New(notify.Config{}, mailLogger)
	}

	return notify.New(notify.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: password,
		From:     cfg.From,
		Timeout:  timeouts.Notify,
	}, mailLogger)
}
