package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UnwrapList normalizes a collection response. The API answers either with a
// bare array or with an envelope {"data": [...]}. An empty body, a null, or an
// envelope whose data is missing or null all yield an empty, non-nil slice.
func UnwrapList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	var items []T
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
	} else {
		var env struct {
			Data []T `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decode list envelope: %w", err)
		}
		items = env.Data
	}

	if items == nil {
		items = []T{}
	}
	return items, nil
}

// UnwrapOne normalizes a single-object response: either the bare object or an
// envelope {"data": {...}}.
func UnwrapOne[T any](raw json.RawMessage) (*T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("decode object: empty response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	if data, ok := fields["data"]; ok {
		trimmed = data
	}

	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	return &v, nil
}
