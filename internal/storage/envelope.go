package storage

import (
	"encoding/json"
	"fmt"
)

// CurrentVersion is stamped on every envelope written.
const CurrentVersion = 1

// Envelope is the persisted wrapper around a namespace state.
type Envelope struct {
	State   json.RawMessage `json:"state"`
	Version int             `json:"version"`
}

// Encode wraps state in an envelope at CurrentVersion.
func Encode(state any) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("storage: encode state: %w", err)
	}
	out, err := json.Marshal(Envelope{State: raw, Version: CurrentVersion})
	if err != nil {
		return nil, fmt.Errorf("storage: encode envelope: %w", err)
	}
	return out, nil
}

// Decode unwraps an envelope into state and returns the stored version. An
// envelope without state leaves state untouched.
func Decode(data []byte, state any) (int, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return 0, fmt.Errorf("storage: decode envelope: %w", err)
	}
	if len(env.State) == 0 || string(env.State) == "null" {
		return env.Version, nil
	}
	if err := json.Unmarshal(env.State, state); err != nil {
		return env.Version, fmt.Errorf("storage: decode state: %w", err)
	}
	return env.Version, nil
}
