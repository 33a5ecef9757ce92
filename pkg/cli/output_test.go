package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
)

type summary struct {
	Destination string `json:"destination"`
}

func (s summary) String() string { return "destination: " + s.Destination }

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "text", want: FormatText},
		{in: "json", want: FormatJSON},
		{in: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextFormatter_UsesStringer(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewFormatter(FormatText, false).FormatTo(buf, summary{Destination: "both"}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "destination: both\n" {
		t.Errorf("FormatTo() = %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	tests := []struct {
		name    string
		compact bool
		lines   int
	}{
		{name: "indented", compact: false, lines: 3},
		{name: "compact", compact: true, lines: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := NewFormatter(FormatJSON, tt.compact).FormatTo(buf, summary{Destination: "cloud"}); err != nil {
				t.Fatalf("FormatTo() error = %v", err)
			}
			if got := bytes.Count(buf.Bytes(), []byte("\n")); got != tt.lines {
				t.Errorf("expected %d lines, got %d: %q", tt.lines, got, buf.String())
			}

			var result summary
			if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
				t.Fatalf("FormatTo() produced invalid JSON: %v", err)
			}
			if result.Destination != "cloud" {
				t.Errorf("unexpected result %+v", result)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{format: FormatText, want: "*cli.TextFormatter"},
		{format: FormatJSON, want: "*cli.JSONFormatter"},
		{format: "unknown", want: "*cli.TextFormatter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := fmt.Sprintf("%T", NewFormatter(tt.format, false)); got != tt.want {
				t.Errorf("NewFormatter(%q) type = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}
