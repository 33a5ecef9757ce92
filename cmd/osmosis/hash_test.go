package main

import (
	"strings"
	"testing"

	"osmosis-ai/osmosis-go/pkg/identity"
)

func TestHashCommand(t *testing.T) {
	hashFlags.seed = identity.DefaultSeed

	out, _, err := execute(t, "hash", "osm-live-1234")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if got := strings.TrimSpace(out); got != identity.OwnerHash("osm-live-1234") {
		t.Errorf("unexpected hash %q", got)
	}
	if len(strings.TrimSpace(out)) != identity.HashLength {
		t.Errorf("expected %d characters, got %q", identity.HashLength, out)
	}
}

func TestHashCommand_FromEnvironment(t *testing.T) {
	hashFlags.seed = identity.DefaultSeed
	t.Setenv("OSMOSIS_CLOUD_API_KEY", "osm-env")

	out, _, err := execute(t, "hash")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if got := strings.TrimSpace(out); got != identity.OwnerHash("osm-env") {
		t.Errorf("unexpected hash %q", got)
	}
}

func TestHashCommand_NoKey(t *testing.T) {
	hashFlags.seed = identity.DefaultSeed
	t.Setenv("OSMOSIS_CLOUD_API_KEY", "")

	if _, _, err := execute(t, "hash"); err == nil {
		t.Error("expected an error without a key")
	}
}
