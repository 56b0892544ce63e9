package module

import (
	"testing"
	"time"

	"murmur/internal/platform/config"
)

func TestFromConfig_Defaults(t *testing.T) {
	opts := FromConfig(config.New().Prefix("UNSET_"))

	if opts.SweepInterval != 10*time.Second {
		t.Fatalf("SweepInterval default got %v", opts.SweepInterval)
	}
	if opts.ImmutabilityThreshold != 30*time.Second {
		t.Fatalf("ImmutabilityThreshold default got %v", opts.ImmutabilityThreshold)
	}
	if opts.HotTTL != time.Hour {
		t.Fatalf("HotTTL default got %v", opts.HotTTL)
	}
	if opts.SpeakerTTL != 24*time.Hour {
		t.Fatalf("SpeakerTTL default got %v", opts.SpeakerTTL)
	}
	if opts.KeyPrefix != "murmur" {
		t.Fatalf("KeyPrefix default got %q", opts.KeyPrefix)
	}
}

func TestFromConfig_HotTierOverrides(t *testing.T) {
	t.Setenv("MURMUR_HOT_TTL", "15m")
	t.Setenv("MURMUR_SPEAKER_TTL", "48h")
	t.Setenv("MURMUR_KEY_PREFIX", "staging")

	opts := FromConfig(config.New())

	if opts.HotTTL != 15*time.Minute {
		t.Fatalf("HotTTL override got %v", opts.HotTTL)
	}
	if opts.SpeakerTTL != 48*time.Hour {
		t.Fatalf("SpeakerTTL override got %v", opts.SpeakerTTL)
	}
	if opts.KeyPrefix != "staging" {
		t.Fatalf("KeyPrefix override got %q", opts.KeyPrefix)
	}
}
