package envelope

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Stream phases carried in place of a numeric status.
const (
	PhaseStarted   = "started"
	PhaseCompleted = "completed"
)

// Status is either an HTTP-like status code or a stream phase.
// It encodes as a JSON number or a JSON string respectively.
type Status struct {
	code  int
	phase string
}

var (
	// StatusOK marks a successful call.
	StatusOK = Code(200)

	// StatusFailed marks a call whose wrapped client returned an error.
	StatusFailed = Code(500)

	// StatusStarted marks the first event of a streaming call.
	StatusStarted = Status{phase: PhaseStarted}

	// StatusCompleted marks the final event of a streaming call.
	StatusCompleted = Status{phase: PhaseCompleted}
)

// Code returns a numeric Status.
func Code(code int) Status {
	return Status{code: code}
}

// Int returns the numeric code and true, or 0 and false for a stream phase.
func (s Status) Int() (int, bool) {
	if s.phase != "" {
		return 0, false
	}
	return s.code, true
}

// Phase returns the stream phase, or "" for a numeric status.
func (s Status) Phase() string {
	return s.phase
}

func (s Status) String() string {
	if s.phase != "" {
		return s.phase
	}
	return strconv.Itoa(s.code)
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	if s.phase != "" {
		return json.Marshal(s.phase)
	}
	return []byte(strconv.Itoa(s.code)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Status) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var phase string
		if err := json.Unmarshal(b, &phase); err != nil {
			return err
		}
		if phase != PhaseStarted && phase != PhaseCompleted {
			return fmt.Errorf("unknown status phase %q", phase)
		}
		*s = Status{phase: phase}
		return nil
	}
	code, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("invalid status %s: %w", b, err)
	}
	*s = Status{code: code}
	return nil
}
