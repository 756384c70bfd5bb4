// Package persistence stores the full application state as a single blob
// under a fixed key. Every save overwrites the previous blob.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dvloznov/smartbudget/internal/domain"
)

// StorageKey is the key the state blob lives under in every backend.
const StorageKey = "smartbudget_rocio_v2"

// ErrCorruptState is returned when a stored blob cannot be decoded.
var ErrCorruptState = errors.New("corrupt state blob")

// Gateway loads and saves the state blob.
type Gateway interface {
	// LoadState returns the stored state, or nil when nothing was saved yet.
	LoadState(ctx context.Context) (*domain.PersistedState, error)

	// SaveState replaces the stored state.
	SaveState(ctx context.Context, state domain.PersistedState) error
}

// Encode serializes state into the blob format.
func Encode(state domain.PersistedState) ([]byte, error) {
	state.Normalize()
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("Encode: %w", err)
	}
	return data, nil
}

// Decode parses a blob. Missing keys load as empty collections or absent
// advisory fields; unknown keys are ignored.
func Decode(data []byte) (*domain.PersistedState, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("Decode: empty blob: %w", ErrCorruptState)
	}
	var state domain.PersistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("Decode: %w: %w", ErrCorruptState, err)
	}
	state.Normalize()
	return &state, nil
}
