package export

import (
	"encoding/json"
	"io"

	"github.com/trainerhub/poketrainer/internal"
)

// JSONExporter exports transcripts in JSON format (pretty-printed)
type JSONExporter struct{}

// Export exports a transcript to JSON format
func (e *JSONExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(newDocument(transcript))
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
