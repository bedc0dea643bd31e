package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/pyrolog/internal/ir"
)

// marshalBindings converts a solution's bindings to canonical JSON TEXT.
func marshalBindings(b ir.IRObject) (string, error) {
	if b == nil {
		b = ir.IRObject{}
	}
	data, err := ir.MarshalCanonical(b)
	if err != nil {
		return "", fmt.Errorf("marshal bindings: %w", err)
	}
	return string(data), nil
}

// unmarshalBindings parses canonical JSON TEXT back into bindings.
func unmarshalBindings(data string) (ir.IRObject, error) {
	if data == "" || data == "{}" {
		return ir.IRObject{}, nil
	}
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal bindings: %w", err)
	}
	return obj, nil
}

// marshalSources converts program source texts to a canonical JSON array.
func marshalSources(sources []string) (string, error) {
	arr := make(ir.IRArray, len(sources))
	for i, s := range sources {
		arr[i] = ir.IRString(s)
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal sources: %w", err)
	}
	return string(data), nil
}

func unmarshalSources(data string) ([]string, error) {
	var sources []string
	if err := json.Unmarshal([]byte(data), &sources); err != nil {
		return nil, fmt.Errorf("unmarshal sources: %w", err)
	}
	if sources == nil {
		sources = []string{}
	}
	return sources, nil
}
