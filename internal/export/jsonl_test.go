package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/trainerhub/poketrainer/internal"
)

func TestJSONLExporter_Export(t *testing.T) {
	tests := []struct {
		name       string
		transcript *internal.Transcript
		want       []string
	}{
		{
			name:       "empty transcript",
			transcript: internal.CreateTestTranscriptWithMessages("t1", []internal.ChatMessage{}),
			want:       []string{},
		},
		{
			name:       "transcript with messages",
			transcript: internal.CreateTestTranscript("t2"),
			want: []string{
				`"sender":"Ash"`,
				`"sender":"Misty"`,
			},
		},
		{
			name: "message without timestamp",
			transcript: internal.CreateTestTranscriptWithMessages("t3", []internal.ChatMessage{
				{Text: "Hello", SenderName: "Brock", SenderID: "u3"},
			}),
			want: []string{`"text":"Hello"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter := &JSONLExporter{}
			var buf bytes.Buffer

			if err := exporter.Export(tt.transcript, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}

			output := strings.TrimSpace(buf.String())
			if len(tt.want) == 0 {
				if output != "" {
					t.Errorf("Export() output = %q, want empty", output)
				}
				return
			}

			lines := strings.Split(output, "\n")
			if len(lines) != len(tt.want) {
				t.Fatalf("Export() produced %d lines, want %d", len(lines), len(tt.want))
			}
			for i, line := range lines {
				var obj map[string]interface{}
				if err := json.Unmarshal([]byte(line), &obj); err != nil {
					t.Errorf("line %d is not valid JSON: %v", i, err)
				}
				if !strings.Contains(line, tt.want[i]) {
					t.Errorf("line %d = %s, want it to contain %s", i, line, tt.want[i])
				}
			}
		})
	}
}

func TestJSONLExporter_Timestamp(t *testing.T) {
	var buf bytes.Buffer
	withTS := internal.CreateTestTranscript("t1")
	if err := (&JSONLExporter{}).Export(withTS, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"timestamp":"3:04 PM"`) {
		t.Errorf("timestamp missing: %s", buf.String())
	}

	buf.Reset()
	noTS := internal.CreateTestTranscriptWithMessages("t2", []internal.ChatMessage{{Text: "hi"}})
	if err := (&JSONLExporter{}).Export(noTS, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if strings.Contains(buf.String(), "timestamp") {
		t.Errorf("empty timestamp should be omitted: %s", buf.String())
	}
}

func TestJSONLExporter_Extension(t *testing.T) {
	if got := (&JSONLExporter{}).Extension(); got != "jsonl" {
		t.Errorf("Extension() = %q, want jsonl", got)
	}
}
