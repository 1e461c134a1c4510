package screening

import (
	"encoding/json"
)

// Outcome is the terminal state of one resume in a batch.
type Outcome int

const (
	OutcomeError Outcome = iota
	OutcomeInvalidURL
	OutcomeDownloadFailed
	OutcomeNoEmail
	OutcomePassed
	OutcomeBelowThreshold
)

const (
	StatusInvalidURL     = "Invalid PDF URL"
	StatusDownloadFailed = "Failed to download PDF"
	StatusNoEmail        = "No email found in resume"
	StatusPassed         = "Passed"
	StatusBelowThreshold = "Below threshold"
	statusErrorPrefix    = "Error: "
)

// String returns a stable, label-friendly name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeInvalidURL:
		return "invalid_url"
	case OutcomeDownloadFailed:
		return "download_failed"
	case OutcomeNoEmail:
		return "no_email"
	case OutcomePassed:
		return "passed"
	case OutcomeBelowThreshold:
		return "below_threshold"
	default:
		return "error"
	}
}

// Notification records what happened to the pass notification of a result.
type Notification int

const (
	NotificationNone Notification = iota
	NotificationSent
	NotificationFailed
	NotificationSkipped
)

func (n Notification) String() string {
	switch n {
	case NotificationSent:
		return "sent"
	case NotificationFailed:
		return "failed"
	case NotificationSkipped:
		return "skipped"
	default:
		return "none"
	}
}

// Result describes how one resume went through the pipeline.
type Result struct {
	URL     string
	Outcome Outcome
	// Err is set only for OutcomeError.
	Err   error
	Score *int
	Email *string

	Notification Notification
}

// Status renders the client-facing status string.
func (r Result) Status() string {
	switch r.Outcome {
	case OutcomeInvalidURL:
		return StatusInvalidURL
	case OutcomeDownloadFailed:
		return StatusDownloadFailed
	case OutcomeNoEmail:
		return StatusNoEmail
	case OutcomePassed:
		return StatusPassed
	case OutcomeBelowThreshold:
		return StatusBelowThreshold
	}

	msg := "unknown error"
	if r.Err != nil {
		msg = r.Err.Error()
	}
	return statusErrorPrefix + msg
}

type resultView struct {
	URL    string  `json:"url"`
	Status string  `json:"status"`
	Score  *int    `json:"score"`
	Email  *string `json:"email"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultView{
		URL:    r.URL,
		Status: r.Status(),
		Score:  r.Score,
		Email:  r.Email,
	})
}
