package database

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stringError string

func (e stringError) Error() string { return string(e) }

func TestRetryBackoff_StaysWithinJitterBand(t *testing.T) {
	for attempt := 0; attempt < 3; attempt++ {
		base := defaultRetryBaseWait << attempt
		lo := time.Duration(float64(base) * (1 - retryJitterFraction))
		hi := time.Duration(float64(base) * (1 + retryJitterFraction))

		for i := 0; i < 25; i++ {
			d := retryBackoff(attempt)
			assert.GreaterOrEqual(t, d, lo, "attempt %d: %v below band", attempt, d)
			assert.LessOrEqual(t, d, hi, "attempt %d: %v above band", attempt, d)
		}
	}
}

func TestRetryBackoff_GrowsPerAttempt(t *testing.T) {
	const samples = 100
	var sums [3]time.Duration
	for attempt := range sums {
		for i := 0; i < samples; i++ {
			sums[attempt] += retryBackoff(attempt)
		}
	}
	assert.Less(t, sums[0], sums[1])
	assert.Less(t, sums[1], sums[2])
}

func TestIsConnectionError(t *testing.T) {
	transient := []error{
		stringError("dial tcp 127.0.0.1:5432: connection refused"),
		stringError("read tcp: connection reset by peer"),
		stringError("write: broken pipe"),
		stringError("i/o timeout"),
		stringError("EOF"),
		stringError("could not connect to server"),
	}
	for _, err := range transient {
		assert.True(t, isConnectionError(err), "expected transient: %v", err)
	}

	permanent := []error{
		nil,
		stringError("syntax error at or near \"SELCT\""),
		stringError("duplicate key value violates unique constraint \"users_email_key\""),
		stringError("relation \"order_items\" does not exist"),
		errors.New("permission denied for table orders"),
	}
	for _, err := range permanent {
		assert.False(t, isConnectionError(err), "expected permanent: %v", err)
	}
}
