package partyhistory

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// QuestionSource supplies the question set for one session generation.
// Implementations must always return at least one question; *Acquirer does.
type QuestionSource interface {
	Acquire(ctx context.Context, generation uint64) []Question
}

// QuizSession is the state machine for one quiz attempt and its restarts.
//
// Phases move NotStarted -> Loading -> InProgress -> Finished, and Start
// re-enters Loading from any phase. Every Start bumps the generation; a
// fetch that resolves after a newer Start is discarded.
type QuizSession struct {
	mu     sync.Mutex
	source QuestionSource
	logger *zap.Logger

	generation   uint64
	phase        Phase
	questions    []Question
	currentIndex int
	selected     int
	answered     bool
	score        int

	cancelFetch context.CancelFunc
}

// NewQuizSession creates a session in the NotStarted phase.
func NewQuizSession(source QuestionSource, logger *zap.Logger) *QuizSession {
	return &QuizSession{
		source: source,
		logger: orNop(logger),
		phase:  PhaseNotStarted,
	}
}

// Start begins a new attempt: all progress is reset immediately and the
// question set is fetched in the background. ctx bounds that fetch and must
// outlive the call. The returned channel is closed once this attempt's fetch
// has resolved, whether it was applied or discarded as stale.
func (s *QuizSession) Start(ctx context.Context) <-chan struct{} {
	s.mu.Lock()
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	s.generation++
	generation := s.generation

	s.phase = PhaseLoading
	s.questions = nil
	s.currentIndex = 0
	s.selected = 0
	s.answered = false
	s.score = 0

	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancelFetch = cancel
	s.mu.Unlock()

	s.logger.Debug("Quiz started", zap.Uint64("generation", generation))

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		questions := s.source.Acquire(fetchCtx, generation)
		s.resolve(generation, questions)
	}()
	return done
}

func (s *QuizSession) resolve(generation uint64, questions []Question) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation || s.phase != PhaseLoading {
		s.logger.Debug("Discarding stale question set",
			zap.Uint64("generation", generation),
			zap.Uint64("current", s.generation))
		return
	}

	if len(questions) == 0 {
		s.logger.Warn("Question source returned nothing, using fallback set", zap.Uint64("generation", generation))
		questions = FallbackQuestions()
	}

	s.questions = questions
	s.currentIndex = 0
	s.selected = 0
	s.answered = false
	s.phase = PhaseInProgress
	s.cancelFetch = nil
}

// SelectOption locks in idx as the answer to the current question. It is a
// no-op, returning false, unless the session is in progress, the question is
// unanswered and idx is a valid option.
func (s *QuizSession) SelectOption(idx int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress || s.answered {
		return false
	}
	q := s.questions[s.currentIndex]
	if idx < 0 || idx >= len(q.Options) {
		return false
	}

	s.selected = idx
	s.answered = true
	if idx == q.CorrectOptionIndex {
		s.score++
	}
	return true
}

// Advance moves past an answered question, finishing the quiz after the last
// one. It is a no-op, returning false, while the current question is unanswered.
func (s *QuizSession) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress || !s.answered {
		return false
	}

	if s.currentIndex == len(s.questions)-1 {
		s.phase = PhaseFinished
		s.logger.Debug("Quiz finished",
			zap.Uint64("generation", s.generation),
			zap.Int("score", s.score),
			zap.Int("total", len(s.questions)))
		return true
	}

	s.currentIndex++
	s.selected = 0
	s.answered = false
	return true
}

// Summary returns the result of a finished quiz; ok is false in any other phase.
func (s *QuizSession) Summary() (summary Summary, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseFinished {
		return Summary{}, false
	}
	return Summarize(s.score, len(s.questions)), true
}

// Close cancels any outstanding fetch. The session stays usable.
func (s *QuizSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
}

// SessionState is a point-in-time copy of a QuizSession for rendering.
type SessionState struct {
	Generation     uint64    `json:"generation"`
	Phase          Phase     `json:"phase"`
	CurrentIndex   int       `json:"current_index"`
	Total          int       `json:"total"`
	Current        *Question `json:"current,omitempty"`
	SelectedOption *int      `json:"selected_option"`
	IsAnswered     bool      `json:"is_answered"`
	Score          int       `json:"score"`
	Summary        *Summary  `json:"summary,omitempty"`
}

// IsLast reports whether the current question is the final one.
func (st SessionState) IsLast() bool {
	return st.Total > 0 && st.CurrentIndex == st.Total-1
}

// Snapshot returns a copy of the current state.
func (s *QuizSession) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SessionState{
		Generation:   s.generation,
		Phase:        s.phase,
		CurrentIndex: s.currentIndex,
		Total:        len(s.questions),
		IsAnswered:   s.answered,
		Score:        s.score,
	}

	if s.phase == PhaseInProgress || s.phase == PhaseFinished {
		q := s.questions[s.currentIndex]
		q.Options = append([]string(nil), q.Options...)
		st.Current = &q
	}
	if s.answered {
		selected := s.selected
		st.SelectedOption = &selected
	}
	if s.phase == PhaseFinished {
		summary := Summarize(s.score, len(s.questions))
		st.Summary = &summary
	}
	return st
}
