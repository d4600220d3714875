package main

import (
	"context"
	"fmt"

	"github.com/jonathan/interview-coach/internal/cache"
	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/evaluation"
	"github.com/jonathan/interview-coach/internal/events"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/questions"
	"github.com/jonathan/interview-coach/internal/rendering"
	"github.com/jonathan/interview-coach/internal/scoring"
	"github.com/jonathan/interview-coach/internal/skills"
	"github.com/jonathan/interview-coach/internal/speech"
	"github.com/jonathan/interview-coach/internal/store"
	"go.uber.org/zap"
)

// app holds the collaborators shared by the subcommands.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      store.Store
	vocabulary *skills.Vocabulary
	interviews *interview.Service

	closers []func() error
}

// loadConfig reads the config file and applies the logging flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if debugLog {
		cfg.Log.Debug = true
	}
	if jsonLog {
		cfg.Log.JSON = true
	}
	return cfg, nil
}

// newLogger builds the process logger. Output is "stdout" or "stderr".
func newLogger(cfg *config.Config, output string) (*zap.Logger, error) {
	logger, err := logging.NewWithOutput(cfg.Log.JSON, cfg.Log.Debug, output)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// newApp opens the store and wires the interview service. Optional collaborators that
// fail to start (LLM, speech, Redis) degrade to their disabled variants with a warning.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	vocab := skills.DefaultVocabulary()
	if cfg.Interview.VocabularyFile != "" {
		loaded, err := skills.LoadVocabulary(cfg.Interview.VocabularyFile)
		if err != nil {
			return nil, err
		}
		vocab = loaded
	}
	a.vocabulary = vocab

	policy, err := scoring.ParsePolicy(cfg.Interview.ScorePolicy)
	if err != nil {
		return nil, err
	}

	renderer, err := rendering.New(cfg.Report.Renderer, cfg.Report.Dir, cfg.Report.Timeout, logger)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Database.Driver, err)
	}
	a.store = st
	a.closers = append(a.closers, st.Close)

	client := a.llmClient(ctx)
	a.closers = append(a.closers, client.Close)

	a.interviews = interview.NewService(interview.Deps{
		Store:       st,
		Generator:   questions.NewGenerator(client, logger),
		Evaluator:   evaluation.NewEvaluator(client, logger),
		Transcriber: a.transcriber(ctx),
		Renderer:    renderer,
		Cache:       a.resultCache(ctx),
		Publisher:   a.publisher(),
		Logger:      logger,
	}, interview.Options{
		QuestionCount: cfg.Interview.QuestionCount,
		DefaultType:   cfg.Interview.DefaultType,
		ScorePolicy:   policy,
	})
	return a, nil
}

func (a *app) llmClient(ctx context.Context) llm.Client {
	if !a.cfg.LLM.Enabled {
		a.logger.Info("text generation disabled, using fallback questions and scores")
		return llm.Disabled{}
	}
	llmCfg := llm.FromSettings(a.cfg.LLM.Provider, a.cfg.LLM.Models)
	llmCfg.Project = a.cfg.LLM.Project
	llmCfg.Location = a.cfg.LLM.Location

	client, err := llm.NewClient(ctx, llmCfg, a.cfg.LLM.APIKey)
	if err != nil {
		a.logger.Warn("text generation unavailable, using fallback questions and scores", zap.Error(err))
		return llm.Disabled{}
	}
	a.logger.Info("text generation enabled", logging.ModelFields(string(llmCfg.Provider), llmCfg.GetModel(llm.TierStandard))...)
	return client
}

func (a *app) transcriber(ctx context.Context) interview.Transcriber {
	if !a.cfg.Speech.Enabled {
		return speech.Disabled{}
	}
	t, err := speech.NewGeminiTranscriber(ctx, a.cfg.Speech.APIKey, a.cfg.Speech.Model, a.cfg.Speech.Timeout, a.logger)
	if err != nil {
		a.logger.Warn("transcription unavailable, spoken answers will record empty transcripts", zap.Error(err))
		return speech.Disabled{}
	}
	return t
}

func (a *app) resultCache(ctx context.Context) interview.ResultCache {
	if !a.cfg.Redis.Enabled {
		return cache.Nop{}
	}
	r, err := cache.NewRedis(ctx, cache.Options{
		Addr:      a.cfg.Redis.Addr,
		Password:  a.cfg.Redis.Password,
		DB:        a.cfg.Redis.DB,
		Namespace: a.cfg.Redis.Namespace,
		TTL:       a.cfg.Redis.TTL,
	})
	if err != nil {
		a.logger.Warn("result cache unavailable", zap.Error(err))
		return cache.Nop{}
	}
	a.closers = append(a.closers, r.Close)
	return r
}

func (a *app) publisher() events.Publisher {
	if !a.cfg.RabbitMQ.Enabled {
		return events.Dummy{}
	}
	return events.NewRabbit(a.cfg.RabbitMQ.URL, a.cfg.RabbitMQ.Queue, a.cfg.RabbitMQ.Expiration, a.logger)
}

// Close releases collaborators in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// setup loads configuration, builds the logger and wires the app.
func setup(ctx context.Context, logOutput string) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg, logOutput)
	if err != nil {
		return nil, err
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}
