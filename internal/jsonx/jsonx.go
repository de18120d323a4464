// Package jsonx turns reasoning-engine text into typed values.
//
// Engines asked for "exactly one JSON object" still wrap answers in markdown
// fences, prepend prose, or nest the whole schema under a single key such as
// {"vision": {...}}. Unwrap handles those shapes when told which top-level
// keys the schema is expected to carry, and reports anything else as a
// *ParseError.
package jsonx

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ideaforge/internal/types"
)

// ErrNoObject is wrapped by ParseError when no JSON object was found.
var ErrNoObject = errors.New("no JSON object found")

// ParseError describes why engine output could not be used.
// errors.Is(err, types.ErrMalformedOutput) holds for every ParseError.
type ParseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", types.ErrMalformedOutput, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", types.ErrMalformedOutput, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes every ParseError match types.ErrMalformedOutput.
func (e *ParseError) Is(target error) bool {
	return target == types.ErrMalformedOutput
}

// Object extracts the first JSON object in raw.
func Object(raw string) (map[string]json.RawMessage, error) {
	body := stripFences(raw)

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &obj); err == nil && obj != nil {
		return obj, nil
	}

	for _, candidate := range findObjectCandidates(body) {
		if err := json.Unmarshal([]byte(candidate), &obj); err == nil && obj != nil {
			return obj, nil
		}
	}
	return nil, &ParseError{Reason: "extract object", Raw: truncate(raw), Err: ErrNoObject}
}

// UnwrapInto decodes raw into dst. When keys is non-empty, keys[0] is the
// schema's defining key: the object must carry it at the top level, or be a
// single-key wrapper whose value does. An object holding only the other keys
// is a schema mismatch.
func UnwrapInto(raw string, dst any, keys ...string) error {
	obj, err := Object(raw)
	if err != nil {
		return err
	}

	body, err := selectBody(obj, keys)
	if err != nil {
		return &ParseError{Reason: "unwrap", Raw: truncate(raw), Err: err}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &ParseError{Reason: "decode", Raw: truncate(raw), Err: err}
	}
	return nil
}

// Unwrap is the generic form of UnwrapInto.
func Unwrap[T any](raw string, keys ...string) (T, error) {
	var out T
	err := UnwrapInto(raw, &out, keys...)
	return out, err
}

func selectBody(obj map[string]json.RawMessage, keys []string) (json.RawMessage, error) {
	whole, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return whole, nil
	}
	if _, ok := obj[keys[0]]; ok {
		return whole, nil
	}
	if len(obj) == 1 {
		for wrapper, inner := range obj {
			var nested map[string]json.RawMessage
			if err := json.Unmarshal(inner, &nested); err != nil || nested == nil {
				return nil, fmt.Errorf("wrapper key %q does not hold an object", wrapper)
			}
			if _, ok := nested[keys[0]]; ok {
				return inner, nil
			}
			return nil, fmt.Errorf("wrapper key %q lacks %q (schema %s)", wrapper, keys[0], strings.Join(keys, ", "))
		}
	}
	return nil, fmt.Errorf("%q missing at top level (schema %s)", keys[0], strings.Join(keys, ", "))
}

func truncate(s string) string {
	const max = 512
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
