package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResultLimit_WithinLimit tests normal operation within the limit.
func TestResultLimit_WithinLimit(t *testing.T) {
	l := NewResultLimit(10, false)

	// Should allow 10 checks
	for i := 0; i < 10; i++ {
		err := l.Check()
		assert.NoError(t, err, "row %d should be allowed", i+1)
	}
}

// TestResultLimit_ExceedsLimit tests the too-large error.
func TestResultLimit_ExceedsLimit(t *testing.T) {
	l := NewResultLimit(5, true)

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Check())
	}

	// 6th should fail
	err := l.Check()
	require.Error(t, err)

	var tooLarge *ResultTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, 6, tooLarge.Count)
	assert.Equal(t, 5, tooLarge.Limit)
	assert.True(t, tooLarge.Grouped)
	assert.Contains(t, err.Error(), "Too many groups")
}

func TestResultLimit_ZeroLimit(t *testing.T) {
	l := NewResultLimit(0, false)
	err := l.Check()
	assert.True(t, IsResultTooLarge(err))
	assert.Contains(t, err.Error(), "Too many records")
}

func TestIsResultTooLarge_Wrapped(t *testing.T) {
	err := fmt.Errorf("query q-1: %w", &ResultTooLargeError{Limit: 5000, Count: 5001})
	assert.True(t, IsResultTooLarge(err))
	assert.False(t, IsContractViolation(err))

	assert.False(t, IsResultTooLarge(fmt.Errorf("plain")))
}

func TestRuntimeError_Error(t *testing.T) {
	err := contractViolation("sections_avg", "ORDER key not found in row %d", 3)
	assert.Equal(t, "CONTRACT_VIOLATION: ORDER key not found in row 3 (key=sections_avg)", err.Error())

	err = contractViolation("", "unknown filter type")
	assert.Equal(t, "CONTRACT_VIOLATION: unknown filter type", err.Error())
}
