package json

import (
	"bytes"
	stdjson "encoding/json"
	"strings"
	"testing"
)

type testOptions struct {
	LogFolder string `json:"log_folder" default:"data/logs/"`
	Level     string `json:"level" default:"debug"`
	Strict    bool   `json:"strict"`
	Retention int    `json:"retention" default:"7"`
}

func TestMarshalAppliesDefaults(t *testing.T) {
	opts := &testOptions{Level: "info"}

	data, err := Marshal(opts)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	if opts.LogFolder != "data/logs/" {
		t.Fatalf("expected default LogFolder, got %q", opts.LogFolder)
	}

	var decoded testOptions
	if err := stdjson.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("encoded JSON should be valid, got error: %v", err)
	}
	if decoded != *opts {
		t.Fatalf("expected marshaled JSON to match struct with defaults applied, got %+v", decoded)
	}
}

func TestMarshalSliceSkipsDefaults(t *testing.T) {
	data, err := Marshal([]testOptions{{Level: "warning"}})
	if err != nil {
		t.Fatalf("Marshal of slice returned error: %v", err)
	}
	if !strings.Contains(string(data), `"level":"warning"`) {
		t.Fatalf("unexpected output %s", data)
	}
}

func TestUnmarshalPreservesExplicitValues(t *testing.T) {
	var opts testOptions
	if err := Unmarshal([]byte(`{"level":"error","retention":0}`), &opts); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	if opts.Level != "error" {
		t.Fatalf("expected Level error, got %q", opts.Level)
	}
	if opts.Retention != 0 {
		t.Fatalf("expected explicit Retention=0 to be preserved, got %d", opts.Retention)
	}
	if opts.LogFolder != "data/logs/" {
		t.Fatalf("expected default LogFolder, got %q", opts.LogFolder)
	}
}

func TestConvertFromMap(t *testing.T) {
	var opts testOptions
	err := Convert(map[string]any{"strict": true, "level": "info"}, &opts)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if !opts.Strict || opts.Level != "info" || opts.Retention != 7 {
		t.Fatalf("unexpected result %+v", opts)
	}
}

func TestEncoderSetIndent(t *testing.T) {
	var buf bytes.Buffer
	encoder := NewEncoder(&buf)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(&testOptions{}); err != nil {
		t.Fatalf("Encode with SetIndent failed: %v", err)
	}
	if !strings.Contains(buf.String(), "  \"level\": \"debug\"") {
		t.Fatalf("expected indented output with defaults, got: %s", buf.String())
	}
}
