package services

import (
	"fmt"

	"github.com/goccy/go-json"
)

// MapCodec encodes the map-valued aggregate fields for storage. Business code
// works on native maps; only stores call the codec.
type MapCodec interface {
	Encode(m map[string]float64) (string, error)
	Decode(s string) (map[string]float64, error)
}

// JSONCodec stores maps as JSON object text.
type JSONCodec struct{}

func (JSONCodec) Encode(m map[string]float64) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("%w: encode map: %v", ErrPersistence, err)
	}
	return string(b), nil
}

func (JSONCodec) Decode(s string) (map[string]float64, error) {
	m := make(map[string]float64)
	if s == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("%w: decode map: %v", ErrPersistence, err)
	}
	return m, nil
}
