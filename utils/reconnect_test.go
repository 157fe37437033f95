package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedDelay(t *testing.T) {
	strategy := NewFixedDelay(3 * time.Second)

	assert.Equal(t, 3*time.Second, strategy.NextDelay())
	assert.Equal(t, 3*time.Second, strategy.NextDelay())
	strategy.Reset()
	assert.Equal(t, 3*time.Second, strategy.NextDelay())
}

func TestExponentialBackoffDoublesUpToMax(t *testing.T) {
	strategy := NewExponentialBackoff(1*time.Second, 4*time.Second)

	assert.Equal(t, 1*time.Second, strategy.NextDelay())
	assert.Equal(t, 2*time.Second, strategy.NextDelay())
	assert.Equal(t, 4*time.Second, strategy.NextDelay())
	assert.Equal(t, 4*time.Second, strategy.NextDelay())
}

func TestExponentialBackoffReset(t *testing.T) {
	strategy := NewExponentialBackoff(1*time.Second, 30*time.Second)

	strategy.NextDelay()
	strategy.NextDelay()
	strategy.Reset()
	assert.Equal(t, 1*time.Second, strategy.NextDelay())
}
