package eq

import (
	"encoding/json"
	"fmt"
)

// MarshalState encodes the current parameters as a JSON object keyed by
// parameter name, e.g. {"High Cut":20000,"Low Cut":20,...}.
func (s *Store) MarshalState() ([]byte, error) {
	p := s.Snapshot()

	state := make(map[string]float64, NumParams)
	for _, spec := range layout {
		state[spec.Name] = p.Value(spec.ID)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("eq: marshal state: %w", err)
	}

	return data, nil
}

// RestoreState applies state produced by MarshalState in a single write.
// Missing keys keep their layout default, unknown keys are ignored, and
// out-of-range values are clamped. Malformed JSON or a non-numeric value
// returns an error wrapping ErrInvalidState and leaves the store unchanged.
func (s *Store) RestoreState(data []byte) error {
	var state map[string]float64
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	if state == nil {
		return fmt.Errorf("%w: not a JSON object", ErrInvalidState)
	}

	p := DefaultParameters()
	for _, spec := range layout {
		if v, ok := state[spec.Name]; ok {
			p.Set(spec.ID, v)
		}
	}

	s.SetParameters(p)

	return nil
}
