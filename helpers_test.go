package partyhistory

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	timeoutShort = 2 * time.Second
	tick         = 5 * time.Millisecond
)

// sampleQuestions returns n valid questions whose correct index cycles 0..3.
func sampleQuestions(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{
			ID:                 i + 1,
			Text:               fmt.Sprintf("问题 %d", i+1),
			Options:            []string{"甲", "乙", "丙", "丁"},
			CorrectOptionIndex: i % MaxOptions,
			Explanation:        fmt.Sprintf("解析 %d", i+1),
		}
	}
	return qs
}

// wrongOption returns an option index that is not the correct one.
func wrongOption(q Question) int {
	return (q.CorrectOptionIndex + 1) % len(q.Options)
}

// staticSource always returns the same questions.
type staticSource struct {
	questions []Question
}

func (s staticSource) Acquire(ctx context.Context, generation uint64) []Question {
	return s.questions
}

// gatedSource blocks each generation's fetch until the test releases it.
type gatedSource struct {
	mu           sync.Mutex
	gates        map[uint64]chan []Question
	ignoreCancel bool
}

func newGatedSource() *gatedSource {
	return &gatedSource{gates: make(map[uint64]chan []Question)}
}

func (g *gatedSource) gate(generation uint64) chan []Question {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[generation]
	if !ok {
		ch = make(chan []Question, 1)
		g.gates[generation] = ch
	}
	return ch
}

func (g *gatedSource) release(generation uint64, qs []Question) {
	g.gate(generation) <- qs
}

func (g *gatedSource) Acquire(ctx context.Context, generation uint64) []Question {
	if g.ignoreCancel {
		return <-g.gate(generation)
	}
	select {
	case qs := <-g.gate(generation):
		return qs
	case <-ctx.Done():
		return FallbackQuestions()
	}
}

// fakeProvider is a scripted ContentProvider.
type fakeProvider struct {
	mu sync.Mutex

	questions    []Question
	questionsErr error
	events       []TimelineEvent
	eventsErr    error
	reply        string
	replyErr     error

	fetchCalls int
	lastCount  int
	histories  [][]ChatMessage
	block      chan struct{}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) FetchQuestions(ctx context.Context, n int) ([]Question, error) {
	f.mu.Lock()
	f.fetchCalls++
	f.lastCount = n
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrProviderRequest, ctx.Err())
		}
	}
	return f.questions, f.questionsErr
}

func (f *fakeProvider) FetchTimeline(ctx context.Context, n int) ([]TimelineEvent, error) {
	f.mu.Lock()
	f.lastCount = n
	f.mu.Unlock()
	return f.events, f.eventsErr
}

func (f *fakeProvider) ChatReply(ctx context.Context, history []ChatMessage, message string) (string, error) {
	f.mu.Lock()
	f.histories = append(f.histories, history)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return f.reply, f.replyErr
}

// memoryRecorder collects journal rows in memory.
type memoryRecorder struct {
	mu   sync.Mutex
	rows []Acquisition
	err  error
}

func (m *memoryRecorder) RecordAcquisition(ctx context.Context, a Acquisition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, a)
	return m.err
}

func (m *memoryRecorder) all() []Acquisition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Acquisition(nil), m.rows...)
}
