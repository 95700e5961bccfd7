package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/applicant-pipeline/internal/store"
)

const (
	app = "applicant-pipeline"
)

type Config struct {
	Airtable  *AirtableConfig  `mapstructure:"airtable"`
	AI        *AIConfig        `mapstructure:"ai"`
	Shortlist *ShortlistConfig `mapstructure:"shortlist"`
	Pipeline  *PipelineConfig  `mapstructure:"pipeline"`
}

type AirtableConfig struct {
	Token             string       `mapstructure:"token"`
	TokenFile         string       `mapstructure:"token-file"`
	BaseID            string       `mapstructure:"base-id"`
	APIURL            string       `mapstructure:"api-url"`
	RequestsPerSecond float64      `mapstructure:"requests-per-second"`
	Tables            store.Tables `mapstructure:"tables"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey          string        `mapstructure:"api-key"`
	APIKeyFile      string        `mapstructure:"api-key-file"`
	Model           string        `mapstructure:"model"`
	MaxOutputTokens int           `mapstructure:"max-output-tokens"`
	Temperature     float32       `mapstructure:"temperature"`
	MaxRetries      int           `mapstructure:"max-retries"`
	RetryDelay      time.Duration `mapstructure:"retry-delay"`
	Throttle        time.Duration `mapstructure:"throttle"`
	MaxLogLength    int           `mapstructure:"max-log-length"`
}

// ShortlistConfig overrides the built-in shortlist criteria. Unset keys keep the defaults.
type ShortlistConfig struct {
	Tier1Companies    []string           `mapstructure:"tier1-companies"`
	CurrencyRates     map[string]float64 `mapstructure:"currency-rates"`
	EligibleCountries []string           `mapstructure:"eligible-countries"`
	MinYears          float64            `mapstructure:"min-years"`
	MaxHourlyRateUSD  float64            `mapstructure:"max-hourly-rate-usd"`
	MinAvailability   float64            `mapstructure:"min-availability"`
}

type PipelineConfig struct {
	PhasePause time.Duration `mapstructure:"phase-pause"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "applicant-pipeline compresses, shortlists and reviews contractor applications stored in Airtable",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"airtable.token":         "AIRTABLE_ACCESS_TOKEN",
		"airtable.token-file":    "AIRTABLE_ACCESS_TOKEN_FILE",
		"airtable.base-id":       "AIRTABLE_BASE_ID",
		"ai.gemini.api-key":      "GEMINI_API_KEY",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"ai.gemini.model":        "GEMINI_MODEL",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is applicant-pipeline.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	tables := store.DefaultTables()

	viper.SetDefault("airtable.requests-per-second", 5)
	viper.SetDefault("airtable.tables.applicants", tables.Applicants)
	viper.SetDefault("airtable.tables.personal", tables.Personal)
	viper.SetDefault("airtable.tables.experience", tables.Experience)
	viper.SetDefault("airtable.tables.salary", tables.Salary)
	viper.SetDefault("airtable.tables.shortlisted", tables.Shortlisted)

	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash-lite")
	viper.SetDefault("ai.gemini.max-output-tokens", 500)
	viper.SetDefault("ai.gemini.temperature", 0.3)
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.retry-delay", time.Second)
	viper.SetDefault("ai.gemini.throttle", time.Second)
	viper.SetDefault("ai.gemini.max-log-length", 2000)

	viper.SetDefault("pipeline.phase-pause", 2*time.Second)
}

func initConfig() {
	// Variables already present in the environment win over the .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		// An explicitly requested config must be readable.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
