package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/trainerhub/poketrainer/internal"
)

// Exporter defines the interface for all transcript formats
type Exporter interface {
	Export(transcript *internal.Transcript, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}

// WriteFile exports transcript into dir as chat_<id>.<ext> and returns the path
func WriteFile(exporter Exporter, transcript *internal.Transcript, dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("chat_%s.%s", transcript.ID, exporter.Extension()))
	fail := func(err error) (string, error) {
		return "", &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fail(err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fail(err)
	}
	if err := exporter.Export(transcript, file); err != nil {
		_ = file.Close()
		return fail(err)
	}
	if err := file.Close(); err != nil {
		return fail(err)
	}
	return path, nil
}
