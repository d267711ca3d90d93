package partyhistory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	rows := []Acquisition{
		{ID: "a", Generation: 1, Provider: "gemini:gemini-2.5-flash", StartedAt: base, FinishedAt: base.Add(2 * time.Second), Outcome: OutcomeLive, QuestionCount: 5},
		{ID: "b", Generation: 2, Provider: "gemini:gemini-2.5-flash", StartedAt: base.Add(time.Minute), FinishedAt: base.Add(time.Minute + time.Second), Outcome: OutcomeFallback, Reason: "malformed_response", QuestionCount: 1},
		{ID: "c", Generation: 3, Provider: "openai:gpt-4o", StartedAt: base.Add(2 * time.Minute), FinishedAt: base.Add(2 * time.Minute), Outcome: OutcomeCanceled, Reason: "context canceled", QuestionCount: 1},
	}
	for _, r := range rows {
		require.NoError(t, j.RecordAcquisition(ctx, r))
	}

	recent, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)
	assert.Equal(t, OutcomeFallback, recent[1].Outcome)
	assert.Equal(t, "malformed_response", recent[1].Reason)
	assert.Equal(t, uint64(2), recent[1].Generation)
	assert.True(t, rows[1].StartedAt.Equal(recent[1].StartedAt))
	assert.Equal(t, time.Second, recent[1].FinishedAt.Sub(recent[1].StartedAt))

	all, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	counts, err := j.CountByOutcome(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[AcquisitionOutcome]int{OutcomeLive: 1, OutcomeFallback: 1, OutcomeCanceled: 1}, counts)
}

func TestJournal_DuplicateID(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	now := time.Now()

	a := Acquisition{ID: "dup", Provider: "fake", StartedAt: now, FinishedAt: now, Outcome: OutcomeLive, QuestionCount: 5}
	require.NoError(t, j.RecordAcquisition(ctx, a))
	assert.Error(t, j.RecordAcquisition(ctx, a))
}

func TestJournal_RecordsAcquirerOutcomes(t *testing.T) {
	j := openTestJournal(t)

	NewAcquirer(&fakeProvider{questions: sampleQuestions(5)}, nil, WithRecorder(j)).Acquire(context.Background(), 1)
	NewAcquirer(&fakeProvider{questionsErr: ErrEmptyResponse}, nil, WithRecorder(j)).Acquire(context.Background(), 2)

	counts, err := j.CountByOutcome(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts[OutcomeLive])
	assert.Equal(t, 1, counts[OutcomeFallback])
}

func TestJournal_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	now := time.Now()

	j, err := OpenJournal(path)
	require.NoError(t, err)
	require.NoError(t, j.RecordAcquisition(context.Background(), Acquisition{ID: "x", Provider: "fake", StartedAt: now, FinishedAt: now, Outcome: OutcomeLive}))
	require.NoError(t, j.Close())

	j, err = OpenJournal(path)
	require.NoError(t, err)
	defer j.Close()

	rows, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
