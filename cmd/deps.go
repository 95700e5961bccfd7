package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/applicant-pipeline/internal/ai"
	"github.com/spigell/applicant-pipeline/internal/ai/gemini"
	"github.com/spigell/applicant-pipeline/internal/airtable"
	"github.com/spigell/applicant-pipeline/internal/applicant"
	"github.com/spigell/applicant-pipeline/internal/logger"
	"github.com/spigell/applicant-pipeline/internal/pipeline"
	"github.com/spigell/applicant-pipeline/internal/secrets"
	"github.com/spigell/applicant-pipeline/internal/shortlist"
	"github.com/spigell/applicant-pipeline/internal/store"
)

// setup builds the logger and the configuration every command starts with.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
		App:   app,
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.Airtable == nil {
		logger.Fatal("airtable configuration is required")
	}

	logger.Debug("starting with config",
		zap.String("base_id", config.Airtable.BaseID),
		zap.Any("tables", config.Airtable.Tables),
		zap.Float64("requests_per_second", config.Airtable.RequestsPerSecond),
	)

	return logger, config
}

// newPipeline wires the record store, the shortlist criteria and, when withReviewer
// is set, the Gemini reviewer.
func newPipeline(ctx context.Context, config *Config, logger *zap.Logger, withReviewer bool) (*pipeline.Pipeline, error) {
	client, err := newAirtable(config.Airtable, logger)
	if err != nil {
		return nil, err
	}

	records := store.New(client, config.Airtable.Tables, logger.With(zap.String("component", "store")))

	cfg := pipeline.DefaultConfig()
	deps := pipeline.Deps{
		Store:    records,
		Mapper:   applicant.NewMapper(records),
		Criteria: criteria(config.Shortlist),
		Logger:   logger,
	}

	if config.Pipeline != nil && config.Pipeline.PhasePause > 0 {
		cfg.PhasePause = config.Pipeline.PhasePause
	}

	if withReviewer {
		reviewer, err := newReviewer(ctx, config.AI, logger)
		if err != nil {
			return nil, fmt.Errorf("building llm reviewer: %w", err)
		}
		deps.Reviewer = reviewer

		g := config.AI.Gemini
		if g.MaxRetries > 0 {
			cfg.MaxRetries = g.MaxRetries
		}
		if g.RetryDelay > 0 {
			cfg.RetryDelay = g.RetryDelay
		}
		if g.Throttle > 0 {
			cfg.Throttle = g.Throttle
		}
	}

	return pipeline.New(deps, cfg), nil
}

func newAirtable(config *AirtableConfig, logger *zap.Logger) (*airtable.Client, error) {
	token, err := secrets.Load(secrets.Source{
		Name:  "airtable access token",
		Value: config.Token,
		File:  config.TokenFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set AIRTABLE_ACCESS_TOKEN or AIRTABLE_ACCESS_TOKEN_FILE)", err)
	}

	baseID := strings.TrimSpace(config.BaseID)
	if baseID == "" {
		return nil, errors.New("airtable base id is not configured (set AIRTABLE_BASE_ID)")
	}

	client := airtable.New(logger.With(zap.String("component", "airtable")), token, baseID, config.RequestsPerSecond)
	if config.APIURL != "" {
		client.APIURL = strings.TrimRight(config.APIURL, "/")
	}

	return client, nil
}

func newReviewer(ctx context.Context, config *AIConfig, logger *zap.Logger) (ai.Reviewer, error) {
	if config == nil || config.Gemini == nil {
		return nil, errors.New("gemini configuration is required")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.Gemini.APIKey,
		File:  config.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set GEMINI_API_KEY or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gemini.Options{
		Model:       config.Gemini.Model,
		MaxTokens:   config.Gemini.MaxOutputTokens,
		Temperature: config.Gemini.Temperature,
	})
	if err != nil {
		return nil, err
	}

	reviewerLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
		zap.Int("ai_retry_attempts", config.Gemini.MaxRetries),
	)

	return gemini.NewReviewer(generator, reviewerLogger, config.Gemini.MaxLogLength), nil
}

// criteria applies configured overrides on top of the default shortlist criteria.
func criteria(config *ShortlistConfig) shortlist.Criteria {
	c := shortlist.DefaultCriteria()
	if config == nil {
		return c
	}

	if len(config.Tier1Companies) > 0 {
		c.Tier1Companies = config.Tier1Companies
	}
	if len(config.EligibleCountries) > 0 {
		c.EligibleCountries = config.EligibleCountries
	}
	// Viper lower-cases map keys, the rate table is keyed by upper-case codes.
	for code, rate := range config.CurrencyRates {
		c.CurrencyRates[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	if config.MinYears > 0 {
		c.MinYears = config.MinYears
	}
	if config.MaxHourlyRateUSD > 0 {
		c.MaxHourlyRateUSD = config.MaxHourlyRateUSD
	}
	if config.MinAvailability > 0 {
		c.MinAvailability = config.MinAvailability
	}

	return c
}
