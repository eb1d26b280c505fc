package wiiext

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransportError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("nack")
	err := fmt.Errorf("classic: read failed: %w", &TransportError{Op: "read block", Err: cause})

	var terr *TransportError
	assert.True(t, errors.As(err, &terr))
	assert.Equal(t, "read block", terr.Op)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInvalidInputData)
	assert.Equal(t, "transport: read block: nack", terr.Error())
}
