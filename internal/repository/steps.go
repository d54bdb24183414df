package repository

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// StepKey is the JSON object key a step index is stored under.
func StepKey(step int) string {
	return strconv.Itoa(step)
}

// DecodeSteps converts a stored steps document into the domain mapping.
// Keys that are not positive integers are skipped.
func DecodeSteps(raw []byte) (map[int]json.RawMessage, error) {
	steps := make(map[int]json.RawMessage)
	if len(raw) == 0 {
		return steps, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode steps: %w", err)
	}
	for key, payload := range doc {
		idx, err := strconv.Atoi(key)
		if err != nil || idx <= 0 {
			continue
		}
		steps[idx] = payload
	}
	return steps, nil
}
