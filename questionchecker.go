package partyhistory

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// QuestionChecker shape-checks provider output before it reaches a session.
// It never judges content, only structure.
type QuestionChecker struct {
	logger *zap.Logger
}

// NewQuestionChecker creates a new question checker
func NewQuestionChecker(logger *zap.Logger) *QuestionChecker {
	return &QuestionChecker{logger: orNop(logger)}
}

// CheckQuestion reports why a question is structurally unusable, or nil.
func CheckQuestion(q Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question text is empty", ErrMalformedResponse)
	}
	if len(q.Options) < MinOptions || len(q.Options) > MaxOptions {
		return fmt.Errorf("%w: %d options, want %d-%d", ErrMalformedResponse, len(q.Options), MinOptions, MaxOptions)
	}
	if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
		return fmt.Errorf("%w: correct option index %d out of range", ErrMalformedResponse, q.CorrectOptionIndex)
	}
	return nil
}

// CheckQuestions drops structurally invalid questions and renumbers IDs that
// are not positive or repeat an earlier one. Any non-empty remainder is
// accepted, even if shorter than requested.
func (qc *QuestionChecker) CheckQuestions(questions []Question) ([]Question, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyResponse
	}

	accepted := make([]Question, 0, len(questions))
	seen := make(map[int]bool, len(questions))
	var firstErr error

	for i, q := range questions {
		if err := CheckQuestion(q); err != nil {
			qc.logger.Warn("Dropping malformed question",
				zap.Int("position", i),
				zap.Int("id", q.ID),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if q.ID <= 0 || seen[q.ID] {
			renumbered := nextFreeID(seen, i+1)
			qc.logger.Debug("Renumbering question", zap.Int("from", q.ID), zap.Int("to", renumbered))
			q.ID = renumbered
		}
		seen[q.ID] = true

		q.Options = append([]string(nil), q.Options...)
		accepted = append(accepted, q)
	}

	if len(accepted) == 0 {
		return nil, fmt.Errorf("no usable questions in %d received: %w", len(questions), firstErr)
	}
	if dropped := len(questions) - len(accepted); dropped > 0 {
		qc.logger.Info("Accepted partial question set",
			zap.Int("accepted", len(accepted)),
			zap.Int("dropped", dropped))
	}
	return accepted, nil
}

func nextFreeID(seen map[int]bool, start int) int {
	id := start
	for seen[id] {
		id++
	}
	return id
}
