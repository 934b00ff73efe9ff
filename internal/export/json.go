package export

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// WriteJSON writes the run as an indented JSON document.
func WriteJSON(w io.Writer, run Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// ReadJSON decodes a run written by WriteJSON.
func ReadJSON(r io.Reader) (Run, error) {
	var run Run
	if err := json.NewDecoder(r).Decode(&run); err != nil {
		return Run{}, fmt.Errorf("decoding json: %w", err)
	}
	return run, nil
}
