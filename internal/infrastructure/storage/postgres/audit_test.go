package postgres

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	oldState := map[string]any{"status": "pending", "qty": float64(5), "notes": "x"}
	newState := map[string]any{"status": "accepted", "qty": float64(5), "location": "A"}

	changes := Diff(oldState, newState)

	assert.Equal(t, map[string]any{
		"status":   map[string]any{"old": "pending", "new": "accepted"},
		"notes":    map[string]any{"old": "x", "new": nil},
		"location": map[string]any{"old": nil, "new": "A"},
	}, changes)
}

func TestToState_Nil(t *testing.T) {
	type rec struct {
		Name string `json:"name"`
	}
	var missing *rec

	state, err := toState(missing)
	require.NoError(t, err)
	assert.Empty(t, state)

	state, err = toState(&rec{Name: "bolt"})
	require.NoError(t, err)
	assert.Equal(t, "bolt", state["name"])
}

func TestAuditService_CompressionRoundTrip(t *testing.T) {
	svc, err := NewAuditService(nil)
	require.NoError(t, err)

	large := append([]byte(`"`), bytes.Repeat([]byte("a"), DefaultCompressThreshold+1)...)
	large = append(large, '"')
	e := AuditEntry{Changes: large}

	svc.compress(&e)
	assert.Equal(t, CompressionZstd, e.CompressionAlgo)
	assert.Nil(t, e.Changes)
	assert.Less(t, len(e.ChangesCompressed), len(large))

	require.NoError(t, svc.decompress(&e))
	assert.Equal(t, large, []byte(e.Changes))
}

func TestAuditService_SmallChangesStayPlain(t *testing.T) {
	svc, err := NewAuditService(nil)
	require.NoError(t, err)

	e := AuditEntry{Changes: []byte(`{"qty":1}`)}
	svc.compress(&e)

	assert.Equal(t, CompressionNone, e.CompressionAlgo)
	assert.Nil(t, e.ChangesCompressed)
}
