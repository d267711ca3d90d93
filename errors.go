package partyhistory

import "errors"

var (
	// ErrQuestionSetUnavailable is the single failure kind of question acquisition.
	// It is absorbed by the Acquirer and never reaches the session.
	ErrQuestionSetUnavailable = errors.New("question set unavailable")

	ErrProviderRequest   = errors.New("provider request failed")
	ErrEmptyResponse     = errors.New("provider returned no data")
	ErrMalformedResponse = errors.New("provider returned malformed data")

	ErrTutorUnavailable = errors.New("tutor unavailable")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrChatBusy         = errors.New("a reply is already pending")

	ErrUnknownProvider = errors.New("unknown content provider")
	ErrMissingAPIKey   = errors.New("missing provider API key")
)

// failureReason names the cause of an acquisition failure for logs and the journal.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrProviderRequest):
		return "provider_request"
	default:
		return "unknown"
	}
}
