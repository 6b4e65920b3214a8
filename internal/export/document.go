package export

import (
	"time"

	"github.com/trainerhub/poketrainer/internal"
)

// document is the envelope written by the structured formats
type document struct {
	Transcript   *internal.Transcript `json:"transcript" yaml:"transcript"`
	MessageCount int                  `json:"message_count" yaml:"message_count"`
	Duration     string               `json:"duration,omitempty" yaml:"duration,omitempty"`
}

func newDocument(t *internal.Transcript) document {
	doc := document{Transcript: t, MessageCount: len(t.Messages)}
	if !t.StartedAt.IsZero() && t.EndedAt.After(t.StartedAt) {
		doc.Duration = t.EndedAt.Sub(t.StartedAt).Round(time.Second).String()
	}
	return doc
}
