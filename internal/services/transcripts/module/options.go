package module

import (
	"time"

	"murmur/internal/platform/config"
)

// Options holds configuration settings for the transcripts module
type Options struct {
	SweepInterval         time.Duration
	ImmutabilityThreshold time.Duration

	NotifyURL   string
	NotifyDelay time.Duration
	NotifyPoll  time.Duration

	HotTTL     time.Duration
	SpeakerTTL time.Duration
	KeyPrefix  string
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	tf := cfg.Prefix("MURMUR_")
	return Options{
		SweepInterval:         tf.MayDuration("SWEEP_INTERVAL", 10*time.Second),
		ImmutabilityThreshold: tf.MayDuration("IMMUTABILITY_THRESHOLD", 30*time.Second),
		NotifyURL:             tf.MayString("NOTIFY_URL", ""),
		NotifyDelay:           tf.MayDuration("NOTIFY_DELAY", 5*time.Second),
		NotifyPoll:            tf.MayDuration("NOTIFY_POLL", time.Second),
		HotTTL:                tf.MayDuration("HOT_TTL", time.Hour),
		SpeakerTTL:            tf.MayDuration("SPEAKER_TTL", 24*time.Hour),
		KeyPrefix:             tf.MayString("KEY_PREFIX", "murmur"),
	}
}
