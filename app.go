package partyhistory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// App wires configuration into the provider, the acquirer and the optional
// journal and transcript. Binaries build one App and create sessions from it.
type App struct {
	Config   *Config
	Logger   *zap.Logger
	Provider ContentProvider
	Acquirer *Acquirer
	Journal  *Journal

	transcript *Transcript
}

// NewApp builds the application graph from cfg.
func NewApp(ctx context.Context, cfg *Config, logger *zap.Logger) (*App, error) {
	logger = orNop(logger)
	app := &App{Config: cfg, Logger: logger}

	if cfg.TranscriptDir != "" {
		t, err := NewTranscript(cfg.TranscriptDir, uuid.NewString(), cfg.Provider.Name)
		if err != nil {
			return nil, err
		}
		app.transcript = t
	}

	pcfg := cfg.ProviderConfig()
	pcfg.Transcript = app.transcript
	pcfg.Logger = logger.Named("provider")
	provider, err := NewProvider(ctx, pcfg)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create content provider: %w", err)
	}
	app.Provider = provider

	opts := []AcquirerOption{WithQuestionCount(cfg.QuestionCount)}
	if cfg.JournalPath != "" {
		journal, err := OpenJournal(cfg.JournalPath)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Journal = journal
		opts = append(opts, WithRecorder(journal))
	}

	app.Acquirer = NewAcquirer(provider, logger.Named("acquirer"), opts...)
	logger.Info("Content provider ready",
		zap.String("provider", provider.Name()),
		zap.Bool("journal", app.Journal != nil))
	return app, nil
}

// NewQuizSession creates a quiz session fed by the app's acquirer.
func (a *App) NewQuizSession() *QuizSession {
	return NewQuizSession(a.Acquirer, a.Logger.Named("quiz"))
}

// NewChatSession creates a tutor transcript backed by the app's provider.
func (a *App) NewChatSession() *ChatSession {
	return NewChatSession(a.Provider, a.Logger.Named("tutor"))
}

// Timeline loads the configured number of timeline events.
func (a *App) Timeline(ctx context.Context) []TimelineEvent {
	return LoadTimeline(ctx, a.Provider, a.Config.TimelineCount, a.Logger.Named("timeline"))
}

// Close releases the journal and transcript.
func (a *App) Close() error {
	var errs []error
	if a.Journal != nil {
		errs = append(errs, a.Journal.Close())
	}
	errs = append(errs, a.transcript.Close())
	return errors.Join(errs...)
}
