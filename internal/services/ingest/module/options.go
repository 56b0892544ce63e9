package module

import (
	"os"
	"strings"
	"time"

	"murmur/internal/platform/config"

	"github.com/google/uuid"
)

// Options holds configuration settings for the ingest module
type Options struct {
	SegmentStream  string
	SpeakerStream  string
	Group          string
	Consumer       string
	Batch          int
	Block          time.Duration
	PendingTimeout time.Duration
	ClaimInterval  time.Duration

	MinLength      int
	MinRealWords   int
	FilterPatterns []string
	Stopwords      map[string][]string
}

// stopwordLangs are the language sections probed for overrides
var stopwordLangs = []string{"en", "es", "de", "fr"}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	inf := cfg.Prefix("MURMUR_")

	stops := map[string][]string{}
	for _, lang := range stopwordLangs {
		if words := inf.MayCSV("STOPWORDS_"+strings.ToUpper(lang), nil); len(words) > 0 {
			stops[lang] = words
		}
	}

	return Options{
		SegmentStream:  inf.MayString("SEGMENT_STREAM", "murmur:segments"),
		SpeakerStream:  inf.MayString("SPEAKER_STREAM", "murmur:speakers"),
		Group:          inf.MayString("GROUP", "murmur-ingest"),
		Consumer:       inf.MayString("CONSUMER", defaultConsumerName()),
		Batch:          inf.MayInt("BATCH", 10),
		Block:          inf.MayDuration("BLOCK", 2*time.Second),
		PendingTimeout: inf.MayDuration("PENDING_TIMEOUT", 60*time.Second),
		ClaimInterval:  inf.MayDuration("CLAIM_INTERVAL", 30*time.Second),
		MinLength:      inf.MayInt("MIN_LENGTH", 3),
		MinRealWords:   inf.MayInt("MIN_WORDS", 1),
		FilterPatterns: inf.MayCSV("FILTER_PATTERNS", nil),
		Stopwords:      stops,
	}
}

// defaultConsumerName makes each process a distinct group member so pending
// entries of a dead consumer are claimable by name
func defaultConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "murmur"
	}
	return host + "-" + uuid.NewString()[:8]
}
