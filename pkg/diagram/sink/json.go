package sink

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/instrumap/pkg/diagram/layout"
	"github.com/matzehuels/instrumap/pkg/errors"
)

// RenderJSON exports the complete diagram, every coordinate included, for
// external renderers and for caching.
func RenderJSON(d *layout.Diagram) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal diagram: %w", err)
	}
	return append(data, '\n'), nil
}

// ReadJSON parses a diagram written by RenderJSON.
func ReadJSON(data []byte) (*layout.Diagram, error) {
	var d layout.Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse diagram JSON")
	}
	return &d, nil
}
