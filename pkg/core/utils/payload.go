// Package utils decodes hand-written request and input payloads.
package utils

import (
	"encoding/json"
	"errors"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ErrUnparseable is returned when no decoding strategy accepts the input.
var ErrUnparseable = errors.New("payload is not valid JSON, repairable JSON or Hjson")

// RepairJSON fixes the usual hand-editing mistakes: unquoted keys, single
// quotes, trailing commas, comments and unclosed brackets.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("failed to repair JSON: %w", err)
	}
	return repaired, nil
}

// ParseHJSON converts Hjson to standard JSON.
func ParseHJSON(data string) (string, error) {
	var v any
	if err := hjson.Unmarshal([]byte(data), &v); err != nil {
		return "", fmt.Errorf("failed to parse Hjson: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to re-encode Hjson: %w", err)
	}
	return string(out), nil
}

// SmartParse decodes input into dst, trying strict JSON, then repaired JSON,
// then Hjson. It returns the JSON text that was finally accepted. On failure
// the error wraps ErrUnparseable and the last decoding error, so sentinel
// errors raised by dst's own UnmarshalJSON stay visible to errors.Is.
func SmartParse(input string, dst any) (string, error) {
	lastErr := json.Unmarshal([]byte(input), dst)
	if lastErr == nil {
		return input, nil
	}

	attempts := []func(string) (string, error){RepairJSON, ParseHJSON}
	for _, convert := range attempts {
		candidate, err := convert(input)
		if err != nil {
			continue
		}
		if err := json.Unmarshal([]byte(candidate), dst); err != nil {
			lastErr = err
			continue
		}
		return candidate, nil
	}
	return "", fmt.Errorf("%w: %w", ErrUnparseable, lastErr)
}
