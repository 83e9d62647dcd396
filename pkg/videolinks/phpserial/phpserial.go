// Package phpserial decodes the PHP-serialized blobs that WordPress plugins
// store in postmeta values (storage descriptors, download file lists).
package phpserial

import (
	"fmt"

	"github.com/elliotchance/phpserialize"
)

// DecodeError reports a malformed serialized blob. Callers treat it as
// "field absent" rather than failing the request.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("phpserial: malformed blob: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode parses a serialized associative array into a string-keyed map.
// Non-string keys are stringified.
func Decode(raw string) (map[string]any, error) {
	arr, err := phpserialize.UnmarshalAssociativeArray([]byte(raw))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	out := make(map[string]any, len(arr))
	for k, v := range arr {
		key, ok := k.(string)
		if !ok {
			key = fmt.Sprint(k)
		}
		out[key] = v
	}
	return out, nil
}

// DecodeStringList parses a serialized indexed array into its string
// elements, in order. Non-string elements are skipped.
func DecodeStringList(raw string) ([]string, error) {
	items, err := phpserialize.UnmarshalIndexedArray([]byte(raw))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// StringField returns a decoded map's field as a string, or "" when the
// field is missing or not a string.
func StringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
