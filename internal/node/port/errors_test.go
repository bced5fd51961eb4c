package port

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	qerr := &QuorumNotMetError{Operation: OperationWrite, Key: "k", Acks: 1, Required: 2, Replicas: 3, Reason: "deadline exceeded"}
	wrapped := fmt.Errorf("store: %w", qerr)
	assert.ErrorIs(t, wrapped, ErrQuorumNotMet)
	assert.Contains(t, qerr.Error(), "write quorum not met")

	var target *QuorumNotMetError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, 2, target.Required)

	ioErr := &StorageIOError{Op: "write", Folder: "f", Name: "k", Err: os.ErrPermission}
	assert.ErrorIs(t, ioErr, ErrStorageIO)
	assert.ErrorIs(t, ioErr, os.ErrPermission)

	conflict := &ConsistencyConflictError{Key: "k"}
	assert.ErrorIs(t, conflict, ErrConsistencyConflict)
	assert.NotErrorIs(t, conflict, ErrQuorumNotMet)
}
