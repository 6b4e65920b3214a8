package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/trainerhub/poketrainer/internal"
)

func TestJSONExporter_Export(t *testing.T) {
	transcript := internal.CreateTestTranscript("t1")

	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(transcript, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var doc struct {
		Transcript   internal.Transcript `json:"transcript"`
		MessageCount int                 `json:"message_count"`
		Duration     string              `json:"duration"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.Transcript.ID != "t1" || doc.MessageCount != 2 {
		t.Errorf("doc = %+v", doc)
	}
	if doc.Duration != "10m0s" {
		t.Errorf("Duration = %q, want 10m0s", doc.Duration)
	}
	if doc.Transcript.Messages[1].SenderName != "Misty" {
		t.Errorf("messages = %+v", doc.Transcript.Messages)
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n  ")) {
		t.Error("output should be indented")
	}
}

func TestJSONExporter_NoDurationWithoutStart(t *testing.T) {
	transcript := &internal.Transcript{ID: "t2"}

	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(transcript, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if bytes.Contains(buf.Bytes(), []byte("duration")) {
		t.Errorf("duration should be omitted: %s", buf.String())
	}
}
