package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/anthanhphan/go-dynamo-kv/pkg/vclock"
	"github.com/stretchr/testify/assert"
)

func TestStoredObject_Validate(t *testing.T) {
	obj := NewStoredObject("report.txt", []byte("hello"), vclock.VectorClock{1, 0, 0})
	assert.NoError(t, obj.Validate())

	obj.Payload = []byte("tampered")
	assert.ErrorIs(t, obj.Validate(), ErrChecksumMismatch)

	big := NewStoredObject("big", make([]byte, MaxObjectSize+1), vclock.New(3))
	assert.ErrorIs(t, big.Validate(), ErrObjectTooLarge)
}

func TestValidateKey(t *testing.T) {
	valid := []string{"report.txt", "a", "photo 1.png", strings.Repeat("k", MaxKeyLength)}
	for _, k := range valid {
		assert.NoError(t, ValidateKey(k), k)
	}

	invalid := []string{"", ".", "..", "a/b", `a\b`, "nul\x00", "vector_clock_report.txt", strings.Repeat("k", MaxKeyLength+1)}
	for _, k := range invalid {
		assert.True(t, errors.Is(ValidateKey(k), ErrInvalidKey), "%q", k)
	}
}

func TestRetrieveResult_Latest(t *testing.T) {
	var nilResult *RetrieveResult
	_, ok := nilResult.Latest()
	assert.False(t, ok)

	single := &RetrieveResult{Winners: []ReplicaObject{{Found: true}}}
	_, ok = single.Latest()
	assert.True(t, ok)

	conflict := &RetrieveResult{Winners: []ReplicaObject{{}, {}}, Conflict: true}
	_, ok = conflict.Latest()
	assert.False(t, ok)
}
