package partyhistory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AcquisitionRecorder receives one record per acquisition attempt. *Journal
// implements it.
type AcquisitionRecorder interface {
	RecordAcquisition(ctx context.Context, a Acquisition) error
}

// Acquirer fetches question sets for sessions. It absorbs every provider
// failure and substitutes the fallback set, so callers always get questions.
type Acquirer struct {
	provider ContentProvider
	checker  *QuestionChecker
	recorder AcquisitionRecorder
	count    int
	logger   *zap.Logger
	now      func() time.Time
}

// AcquirerOption customises an Acquirer.
type AcquirerOption func(*Acquirer)

// WithRecorder journals every acquisition attempt.
func WithRecorder(r AcquisitionRecorder) AcquirerOption {
	return func(a *Acquirer) { a.recorder = r }
}

// WithQuestionCount sets how many questions are requested per session.
func WithQuestionCount(n int) AcquirerOption {
	return func(a *Acquirer) {
		if n > 0 {
			a.count = n
		}
	}
}

// NewAcquirer creates an acquirer over provider.
func NewAcquirer(provider ContentProvider, logger *zap.Logger, opts ...AcquirerOption) *Acquirer {
	logger = orNop(logger)
	a := &Acquirer{
		provider: provider,
		checker:  NewQuestionChecker(logger),
		count:    DefaultQuestionCount,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Acquire returns the question set for the given session generation. It
// never fails: any provider failure yields FallbackQuestions.
func (a *Acquirer) Acquire(ctx context.Context, generation uint64) []Question {
	started := a.now()
	log := a.logger.With(zap.Uint64("generation", generation), zap.String("provider", a.provider.Name()))

	questions, err := a.fetch(ctx)
	if err == nil {
		log.Info("Question set acquired", zap.Int("questions", len(questions)))
		a.record(generation, started, OutcomeLive, "", len(questions))
		return questions
	}

	fallback := FallbackQuestions()
	if ctx.Err() != nil {
		log.Debug("Question fetch canceled", zap.Error(err))
		a.record(generation, started, OutcomeCanceled, ctx.Err().Error(), len(fallback))
		return fallback
	}

	reason := failureReason(err)
	log.Warn("Question set unavailable, using fallback set",
		zap.String("reason", reason),
		zap.Error(err))
	a.record(generation, started, OutcomeFallback, reason, len(fallback))
	return fallback
}

func (a *Acquirer) fetch(ctx context.Context) ([]Question, error) {
	raw, err := a.provider.FetchQuestions(ctx, a.count)
	if err != nil {
		return nil, classify(err)
	}

	questions, err := a.checker.CheckQuestions(raw)
	if err != nil {
		return nil, classify(err)
	}
	return questions, nil
}

// classify wraps err in ErrQuestionSetUnavailable, tagging unknown causes as
// provider request failures.
func classify(err error) error {
	if errors.Is(err, ErrEmptyResponse) || errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrProviderRequest) {
		return fmt.Errorf("%w: %w", ErrQuestionSetUnavailable, err)
	}
	return fmt.Errorf("%w: %w: %w", ErrQuestionSetUnavailable, ErrProviderRequest, err)
}

func (a *Acquirer) record(generation uint64, started time.Time, outcome AcquisitionOutcome, reason string, count int) {
	if a.recorder == nil {
		return
	}

	// The fetch context may already be canceled; the journal write is independent of it.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := a.recorder.RecordAcquisition(ctx, Acquisition{
		ID:            uuid.NewString(),
		Generation:    generation,
		Provider:      a.provider.Name(),
		StartedAt:     started,
		FinishedAt:    a.now(),
		Outcome:       outcome,
		Reason:        reason,
		QuestionCount: count,
	})
	if err != nil {
		a.logger.Error("Failed to journal acquisition", zap.Uint64("generation", generation), zap.Error(err))
	}
}
