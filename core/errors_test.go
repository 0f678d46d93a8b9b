package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreconditionError(t *testing.T) {
	err := NewPreconditionError("start", "Meeting already in progress")

	assert.EqualError(t, err, "start: precondition failed: Meeting already in progress")
	assert.True(t, IsPrecondition(err))
	assert.True(t, IsPrecondition(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsPrecondition(errors.New("plain")))
	assert.False(t, IsPrecondition(nil))
}
