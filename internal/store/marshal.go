package store

import (
	"fmt"

	"github.com/roach88/ontoql/internal/ir"
	"github.com/roach88/ontoql/internal/queryir"
)

// marshalGraph converts q to canonical JSON TEXT for storage.
func marshalGraph(q *queryir.Query) (string, error) {
	data, err := ir.MarshalCanonical(queryir.Encode(q))
	if err != nil {
		return "", fmt.Errorf("marshal graph: %w", err)
	}
	return string(data), nil
}

// unmarshalGraph decodes and revalidates a stored graph.
func unmarshalGraph(data string) (*queryir.Query, error) {
	v, err := ir.UnmarshalIRValue([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal graph: %w", err)
	}
	q, err := queryir.Decode(v)
	if err != nil {
		return nil, fmt.Errorf("unmarshal graph: %w", err)
	}
	return q, nil
}
