package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/recruit-matcher/internal/ai"
	"github.com/spigell/recruit-matcher/internal/ai/gemini"
	"github.com/spigell/recruit-matcher/internal/logger"
	"github.com/spigell/recruit-matcher/internal/notify"
	"github.com/spigell/recruit-matcher/internal/recruit"
	"github.com/spigell/recruit-matcher/internal/scoring"
	"github.com/spigell/recruit-matcher/internal/secrets"
	"github.com/spigell/recruit-matcher/internal/session"
	"github.com/spigell/recruit-matcher/internal/shortlist"
)

// deps are the components shared by every command.
type deps struct {
	config    *Config
	logger    *zap.Logger
	dataset   *recruit.Dataset
	engine    *scoring.Engine
	store     shortlist.Store
	publisher notify.Publisher
	shortlist *shortlist.Service
}

func (d *deps) Close() {
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			d.logger.Warn("closing publisher", zap.Error(err))
		}
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.logger.Warn("closing shortlist store", zap.Error(err))
		}
	}
	_ = d.logger.Sync()
}

// newDeps builds the logger and the shortlist service. The dataset and the
// engine are loaded only when withDataset is set.
func newDeps(ctx context.Context, withDataset bool) (*deps, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}

	d := &deps{config: config, logger: log}

	if withDataset {
		if d.engine, err = scoring.New(config.Scoring); err != nil {
			return nil, fmt.Errorf("scoring config: %w", err)
		}

		if d.dataset, err = recruit.LoadDataset(config.Dataset); err != nil {
			return nil, err
		}
		log.Info("dataset loaded",
			zap.String("path", config.Dataset),
			zap.Int("candidates", d.dataset.Candidates.Len()),
			zap.Int("jobs", d.dataset.Jobs.Len()),
		)
	}

	storeCfg := config.Store.Config
	if strings.EqualFold(storeCfg.Backend, "postgres") || strings.EqualFold(storeCfg.Backend, "postgresql") {
		storeCfg.DSN, err = secrets.Load(secrets.Source{
			Name:  "postgres dsn",
			Value: storeCfg.DSN,
			File:  config.Store.DSNFile,
			Env:   "DATABASE_URL",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set store.dsn, store.dsn-file or DATABASE_URL)", err)
		}
	}

	if d.store, err = shortlist.Open(ctx, storeCfg, log); err != nil {
		return nil, err
	}

	if d.publisher, err = notify.Open(ctx, config.Notify, log); err != nil {
		d.Close()
		return nil, err
	}

	d.shortlist = shortlist.NewService(d.store, d.publisher, log)
	return d, nil
}

func (d *deps) sessionOptions() session.Options {
	return session.Options{
		Workers:         d.config.Session.Workers,
		AutoSelectAbove: d.config.Session.AutoSelectAbove,
		Logger:          d.logger,
	}
}

// newExplainer returns nil when AI annotations are disabled.
func newExplainer(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Explainer, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		cfg.Gemini = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithCommonFields(log, "gemini", cfg.Gemini.Model).With(
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewExplainer(generator, cfg.Gemini.MaxLogLength, log), nil
}
