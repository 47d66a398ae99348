package fault_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"fableweave.dev/internal/sim/fault"
)

func TestCodeOf_WrappedChain(t *testing.T) {
	base := fault.New(fault.NotFound, "entity %q", "npc_000042")
	wrapped := fmt.Errorf("query: %w", base)

	require.Equal(t, fault.NotFound, fault.CodeOf(wrapped))
	require.True(t, fault.IsNotFound(wrapped))
	require.False(t, fault.IsCorruptData(wrapped))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("gob: type mismatch")
	err := fault.Wrap(fault.CorruptData, cause, "decode snapshot")

	require.True(t, fault.IsCorruptData(err))
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "CORRUPT_DATA")
}

func TestCodeOf_PlainError(t *testing.T) {
	require.Equal(t, fault.Code(""), fault.CodeOf(errors.New("plain")))
}
