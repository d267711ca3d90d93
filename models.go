package partyhistory

import "time"

// MaxOptions is the number of answer letters the presentation layers can label (A-D).
const MaxOptions = 4

// MinOptions is the smallest option count that still makes a multiple choice question.
const MinOptions = 2

// Question represents a single quiz question with multiple choice answers
type Question struct {
	ID                 int      `json:"id"`
	Text               string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"` // 0-based index
	Explanation        string   `json:"explanation"`
}

// OptionLabel returns the letter shown next to option idx ("A" for 0).
func OptionLabel(idx int) string {
	return string(rune('A' + idx))
}

// TimelineEvent is one milestone on the history timeline
type TimelineEvent struct {
	Year         string `json:"year"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Significance string `json:"significance"`
}

// ChatRole identifies who wrote a chat message
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is one entry of the tutor transcript
type ChatMessage struct {
	ID     string    `json:"id"`
	Role   ChatRole  `json:"role"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// Phase is the lifecycle state of a quiz session
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseLoading    Phase = "loading"
	PhaseInProgress Phase = "in_progress"
	PhaseFinished   Phase = "finished"
)

// AcquisitionOutcome records how a question-set fetch ended
type AcquisitionOutcome string

const (
	OutcomeLive     AcquisitionOutcome = "live"
	OutcomeFallback AcquisitionOutcome = "fallback"
	OutcomeCanceled AcquisitionOutcome = "canceled"
)

// Acquisition is one journal row describing a question-set fetch
type Acquisition struct {
	ID            string             `json:"id"`
	Generation    uint64             `json:"generation"`
	Provider      string             `json:"provider"`
	StartedAt     time.Time          `json:"started_at"`
	FinishedAt    time.Time          `json:"finished_at"`
	Outcome       AcquisitionOutcome `json:"outcome"`
	Reason        string             `json:"reason,omitempty"`
	QuestionCount int                `json:"question_count"`
}
