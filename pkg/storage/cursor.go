package storage

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidCursor is returned when a page token cannot be decoded. API
// layers map it to a validation error rather than an internal one.
var ErrInvalidCursor = errors.New("storage: invalid cursor")

// EncodeCursor packs a last-evaluated key into an opaque page token. An
// empty key yields an empty token.
func EncodeCursor(key map[string]string) string {
	if len(key) == 0 {
		return ""
	}
	raw, err := json.Marshal(key)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor unpacks a page token produced by EncodeCursor. An empty
// token yields a nil key. Malformed tokens are rejected rather than
// silently restarting the scan from the beginning.
func DecodeCursor(cursor string) (map[string]string, error) {
	if cursor == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var key map[string]string
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return key, nil
}
