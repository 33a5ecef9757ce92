package envelope

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

const correlationAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// CorrelationIDPattern matches generated correlation ids.
var CorrelationIDPattern = regexp.MustCompile(`^req_\d+_[a-z0-9]{5}$`)

// NewCorrelationID generates an id of the form req_<unixMillis>_<suffix>
// where suffix is 5 lowercase alphanumeric characters.
func NewCorrelationID(now time.Time) string {
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = correlationAlphabet[rand.IntN(len(correlationAlphabet))]
	}
	return fmt.Sprintf("req_%d_%s", now.UnixMilli(), suffix)
}

// EnsureCorrelationID returns q.CorrelationID, generating and storing one
// when the caller did not supply it.
func EnsureCorrelationID(q *Query, now time.Time) string {
	if q.CorrelationID == "" {
		q.CorrelationID = NewCorrelationID(now)
	}
	return q.CorrelationID
}
