package main

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"partyhistory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource []partyhistory.Question

func (f fixedSource) Acquire(ctx context.Context, generation uint64) []partyhistory.Question {
	return f
}

func startedSession(t *testing.T, qs ...partyhistory.Question) *partyhistory.QuizSession {
	t.Helper()
	session := partyhistory.NewQuizSession(fixedSource(qs), nil)
	t.Cleanup(session.Close)
	<-session.Start(context.Background())
	return session
}

func TestPlayRound(t *testing.T) {
	session := startedSession(t,
		partyhistory.Question{ID: 1, Text: "遵义会议召开于？", Options: []string{"1934年", "1935年"}, CorrectOptionIndex: 1, Explanation: "1935年1月"},
		partyhistory.Question{ID: 2, Text: "改革开放始于？", Options: []string{"1978年", "1992年", "2001年"}, CorrectOptionIndex: 0, Explanation: "十一届三中全会"},
	)

	// Invalid letter first, then B (correct), then C (wrong).
	input := "z\nb\n\nC\n\n"
	var out bytes.Buffer
	require.NoError(t, playRound(session, bufio.NewScanner(strings.NewReader(input)), &out))

	text := out.String()
	assert.Contains(t, text, "请输入 A 到 B 之间的字母。")
	assert.Contains(t, text, "✅ 回答正确！")
	assert.Contains(t, text, "❌ 回答错误，正确答案是 A")
	assert.Contains(t, text, "您的最终得分: 1 / 2 (50%)")

	st := session.Snapshot()
	assert.Equal(t, partyhistory.PhaseFinished, st.Phase)
	assert.Equal(t, 1, st.Score)
}

func TestPlayRound_InputEnds(t *testing.T) {
	session := startedSession(t, partyhistory.FallbackQuestions()...)

	err := playRound(session, bufio.NewScanner(strings.NewReader("")), io.Discard)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, partyhistory.PhaseInProgress, session.Snapshot().Phase)
}
