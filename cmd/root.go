package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/spigell/ats-screener/internal/ai"
	"github.com/spigell/ats-screener/internal/notify"
	"github.com/spigell/ats-screener/internal/resume"
	"github.com/spigell/ats-screener/internal/screening"
	"github.com/spigell/ats-screener/internal/server"
)

const (
	app = "ats-screener"

	defaultJobDescriptionFile = "job_description.txt"
	dotEnvFile                = ".env"
)

type Config struct {
	Listen             string         `mapstructure:"listen"`
	Threshold          int            `mapstructure:"threshold"`
	Concurrency        int            `mapstructure:"concurrency"`
	JobDescriptionFile string         `mapstructure:"job-description-file"`
	UserAgent          string         `mapstructure:"user-agent"`
	MaxDocumentSize    int64          `mapstructure:"max-document-size"`
	CORS               CORSConfig     `mapstructure:"cors"`
	Timeouts           TimeoutsConfig `mapstructure:"timeouts"`
	AI                 AIConfig       `mapstructure:"ai"`
	Mail               MailConfig     `mapstructure:"mail"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed-origins"`
}

type TimeoutsConfig struct {
	Probe    time.Duration `mapstructure:"probe"`
	Download time.Duration `mapstructure:"download"`
	Scoring  time.Duration `mapstructure:"scoring"`
	Notify   time.Duration `mapstructure:"notify"`
}

type AIConfig struct {
	Provider     ai.Provider `mapstructure:"provider"`
	Model        string      `mapstructure:"model"`
	APIKey       string      `mapstructure:"api-key" json:"-"`
	APIKeyFile   string      `mapstructure:"api-key-file"`
	BaseURL      string      `mapstructure:"base-url"`
	MaxLogLength int         `mapstructure:"max-log-length"`
}

type MailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password" json:"-"`
	PasswordFile string `mapstructure:"password-file"`
	From         string `mapstructure:"from"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "ats-screener scores PDF resumes against a job description and notifies the candidates who pass",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string][]string{
		"mail.username":        {"EMAIL_USER"},
		"mail.password":        {"EMAIL_PASS"},
		"ai.api-key":           {"GROQ_API", "GEMINI_API_KEY"},
		"job-description-file": {"ATS_JOB_DESCRIPTION_FILE"},
		"listen":               {"ATS_LISTEN"},
	}
	for key, envs := range envBindings {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			log.Fatalf("binding %s environment variables: %v", strings.Join(envs, ", "), err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is ats-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("listen", server.DefaultListen)
	viper.SetDefault("threshold", screening.DefaultThreshold)
	viper.SetDefault("concurrency", screening.DefaultConcurrency)
	viper.SetDefault("job-description-file", defaultJobDescriptionFile)
	viper.SetDefault("max-document-size", resume.DefaultMaxDocumentSize)
	viper.SetDefault("timeouts.probe", resume.DefaultProbeTimeout)
	viper.SetDefault("timeouts.download", resume.DefaultDownloadTimeout)
	viper.SetDefault("timeouts.scoring", 60*time.Second)
	viper.SetDefault("timeouts.notify", notify.DefaultTimeout)
	viper.SetDefault("ai.provider", ai.DefaultProvider.String())
	viper.SetDefault("mail.enabled", true)
	viper.SetDefault("mail.host", notify.DefaultHost)
	viper.SetDefault("mail.port", notify.DefaultPort)
}

func initConfig() {
	// Like python-dotenv, real environment variables win over the file.
	if err := gotenv.Load(dotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading %s: %v", dotEnvFile, err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional, everything can come from the environment.
	// A file that exists but does not parse is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config Config
	err := viper.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &config, nil
}
