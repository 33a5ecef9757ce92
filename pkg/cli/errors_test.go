package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	underlying := errors.New("log_destination: must be one of console, cloud, both")

	tests := []struct {
		name string
		err  *ConfigError
		want string
	}{
		{
			name: "with path",
			err:  NewConfigError("osmosis.yaml", underlying),
			want: "invalid configuration osmosis.yaml: log_destination: must be one of console, cloud, both",
		},
		{
			name: "environment only",
			err:  NewConfigError("", underlying),
			want: "invalid configuration: log_destination: must be one of console, cloud, both",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, underlying) {
				t.Error("expected ConfigError to unwrap to the underlying error")
			}
		})
	}
}

func TestCommandError(t *testing.T) {
	underlying := errors.New("address already in use")
	err := NewCommandError("ingest", underlying)

	expected := "command ingest failed: address already in use"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlying) {
		t.Error("expected CommandError to unwrap to the underlying error")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "config", err: NewConfigError("a.yaml", errors.New("bad")), want: ExitConfig},
		{name: "wrapped config", err: fmt.Errorf("validate: %w", NewConfigError("", errors.New("bad"))), want: ExitConfig},
		{name: "command", err: NewCommandError("hash", errors.New("bad")), want: ExitFailure},
		{name: "plain", err: errors.New("bad"), want: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
