package domain

import "fmt"

// OutcomeKind is the terminal state of one download task
type OutcomeKind string

const (
	OutcomeDownloaded OutcomeKind = "downloaded"
	OutcomeSkipped    OutcomeKind = "skipped"
	OutcomeFailed     OutcomeKind = "failed"
	OutcomeMissed     OutcomeKind = "missed" // every provider exhausted
)

// FailureReason classifies a failed fetch
type FailureReason string

const (
	ReasonNone       FailureReason = ""
	ReasonNotFound   FailureReason = "not_found"
	ReasonHTTPStatus FailureReason = "http_status"
	ReasonTransport  FailureReason = "transport"
	ReasonTimeout    FailureReason = "timeout"
	ReasonWrite      FailureReason = "write"
	ReasonCancelled  FailureReason = "cancelled"
	ReasonExhausted  FailureReason = "exhausted"
)

// Outcome is the result of a fetch attempt or a whole task resolution
type Outcome struct {
	Kind     OutcomeKind
	Reason   FailureReason
	Detail   string
	Provider string
	URL      string
	Path     string
	Bytes    int64
	Digest   string
	Category Category
}

// Downloaded builds a successful outcome
func Downloaded(path string, bytes int64, digest string) Outcome {
	return Outcome{Kind: OutcomeDownloaded, Path: path, Bytes: bytes, Digest: digest}
}

// Skipped builds an outcome for a file that is already present
func Skipped(path string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Path: path}
}

// Failed builds a failed outcome
func Failed(reason FailureReason, format string, args ...any) Outcome {
	return Outcome{Kind: OutcomeFailed, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Missed builds the outcome recorded when no provider could serve a task
func Missed(detail string) Outcome {
	return Outcome{Kind: OutcomeMissed, Reason: ReasonExhausted, Detail: detail}
}

// Succeeded reports whether the outcome ends a provider chain
func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeDownloaded || o.Kind == OutcomeSkipped
}

// CountsAsFailure reports whether the outcome falls in the failure category
func (o Outcome) CountsAsFailure() bool {
	return o.Kind == OutcomeFailed || o.Kind == OutcomeMissed
}

func (o Outcome) String() string {
	if o.Reason != ReasonNone {
		return fmt.Sprintf("%s (%s: %s)", o.Kind, o.Reason, o.Detail)
	}
	return string(o.Kind)
}
