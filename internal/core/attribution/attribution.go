// Package attribution aligns speaker-activity events against a segment's
// time window. Attribution picks the speaker whose speaking window overlaps
// the segment the most; ties go to the earliest event; with no overlapping
// data the speaker stays empty, never guessed
package attribution

import (
	"math"
	"sort"
)

// EventType marks the start or end of a speaking turn
type EventType string

// Speaking turn markers
const (
	EventStart EventType = "start"
	EventEnd   EventType = "end"
)

// Event is a point-in-time speaker activity marker, timestamps relative to
// session start
type Event struct {
	Speaker string
	Type    EventType
	At      float64
}

// window is one contiguous speaking turn; To is +Inf while the turn is open
type window struct {
	speaker string
	from    float64
	to      float64
}

// Attribute returns the speaker for the segment [start, end], or "" when no
// speaker window overlaps it
func Attribute(events []Event, start, end float64) string {
	if len(events) == 0 || end <= start {
		return ""
	}

	ordered := make([]Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].At < ordered[j].At })

	// pair starts with ends per speaker; a start without an end stays open
	open := map[string]float64{}
	var windows []window
	firstEvent := map[string]float64{}
	for _, ev := range ordered {
		if _, seen := firstEvent[ev.Speaker]; !seen {
			firstEvent[ev.Speaker] = ev.At
		}
		switch ev.Type {
		case EventStart:
			if from, ok := open[ev.Speaker]; ok {
				// consecutive starts: close the dangling turn at the new start
				windows = append(windows, window{speaker: ev.Speaker, from: from, to: ev.At})
			}
			open[ev.Speaker] = ev.At
		case EventEnd:
			if from, ok := open[ev.Speaker]; ok {
				windows = append(windows, window{speaker: ev.Speaker, from: from, to: ev.At})
				delete(open, ev.Speaker)
			}
		}
	}
	for speaker, from := range open {
		windows = append(windows, window{speaker: speaker, from: from, to: math.Inf(1)})
	}

	// greatest total overlap wins; ties broken by earliest event
	overlaps := map[string]float64{}
	for _, w := range windows {
		lo := math.Max(w.from, start)
		hi := math.Min(w.to, end)
		if hi > lo {
			overlaps[w.speaker] += hi - lo
		}
	}

	best := ""
	bestOverlap := 0.0
	for speaker, ov := range overlaps {
		switch {
		case ov > bestOverlap:
			best, bestOverlap = speaker, ov
		case ov == bestOverlap && best != "" && firstEvent[speaker] < firstEvent[best]:
			best = speaker
		}
	}
	return best
}
