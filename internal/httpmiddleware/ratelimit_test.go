package httpmiddleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterWindow(t *testing.T) {
	l := NewRateLimiter(3)
	now := time.Now()

	for i := 0; i < 3; i++ {
		assert.True(t, l.allow("1.2.3.4", now), "request %d should pass", i+1)
	}
	assert.False(t, l.allow("1.2.3.4", now), "fourth request must be limited")

	// other clients have their own budget
	assert.True(t, l.allow("5.6.7.8", now))

	// a fresh window resets the count
	assert.True(t, l.allow("1.2.3.4", now.Add(time.Minute)))
}
