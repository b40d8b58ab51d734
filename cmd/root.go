package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/recruit-matcher/internal/notify"
	"github.com/spigell/recruit-matcher/internal/scoring"
	"github.com/spigell/recruit-matcher/internal/shortlist"
)

const (
	app       = "recruit-matcher"
	envPrefix = "RECRUIT"
)

type Config struct {
	Dataset string         `mapstructure:"dataset"`
	Scoring scoring.Config `mapstructure:"scoring"`
	Session *SessionConfig `mapstructure:"session"`
	Store   *StoreConfig   `mapstructure:"store"`
	Notify  notify.Config  `mapstructure:"notify"`
	AI      *AIConfig      `mapstructure:"ai"`
	Server  *ServerConfig  `mapstructure:"server"`
}

type SessionConfig struct {
	Workers int `mapstructure:"workers"`
	// AutoSelectAbove preselects results at or above the threshold. Zero disables it.
	AutoSelectAbove int           `mapstructure:"auto-select-above"`
	TTL             time.Duration `mapstructure:"ttl"`
	SweepSchedule   string        `mapstructure:"sweep-schedule"`
}

type StoreConfig struct {
	shortlist.Config `mapstructure:",squash"`
	DSNFile          string `mapstructure:"dsn-file"`
}

type AIConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Provider   string        `mapstructure:"provider"`
	ExplainTop int           `mapstructure:"explain-top"`
	Gemini     *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "recruit-matcher scores candidates against jobs and keeps per-job shortlists",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is recruit-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().String("dataset", "", "a json file with candidates and jobs")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("dataset", rootCmd.PersistentFlags().Lookup("dataset"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults()
}

func setDefaults() {
	defaults := scoring.DefaultConfig()

	viper.SetDefault("dataset", "data/pool.json")
	viper.SetDefault("scoring.weights.skills", defaults.Weights.Skills)
	viper.SetDefault("scoring.weights.experience", defaults.Weights.Experience)
	viper.SetDefault("scoring.weights.education", defaults.Weights.Education)
	viper.SetDefault("scoring.education-penalty", defaults.EducationPenalty)
	viper.SetDefault("session.ttl", 30*time.Minute)
	viper.SetDefault("session.sweep-schedule", "@every 1m")
	viper.SetDefault("store.backend", "sqlite")
	viper.SetDefault("store.path", "data/shortlist.db")
	viper.SetDefault("notify.backend", "log")
	viper.SetDefault("ai.explain-top", 5)
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("server.addr", ":8080")
}

func initConfig() {
	// A missing .env is fine; it only seeds the environment for local runs.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without an explicit --config every setting has a default.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Session == nil {
		config.Session = &SessionConfig{}
	}
	if config.Store == nil {
		config.Store = &StoreConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}

	return config, nil
}
