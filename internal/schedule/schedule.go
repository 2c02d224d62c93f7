// Package schedule decides how long the display may sleep after a refresh.
package schedule

import (
	"time"

	"github.com/cedi/meetingroom-display-epd/internal/calendar"
)

// DriftPad is added to every sleep so a fast clock wakes after, not before,
// the boundary it waits for.
const DriftPad = 10 * time.Second

type Reason string

const (
	ReasonDefault Reason = "default"
	ReasonCurrent Reason = "end of current event"
	ReasonNext    Reason = "start of next event"
)

type Decision struct {
	Duration time.Duration
	Reason   Reason
	Event    *calendar.Entry
	Capped   bool
}

// WakeAt is when the display should refresh again.
func (d Decision) WakeAt(now time.Time) time.Time {
	return now.Add(d.Duration)
}

// SleepDuration sleeps until the running event ends, or else until the next
// one starts, but never longer than base. A nil calendar, as after a failed
// fetch, sleeps base.
func SleepDuration(cal *calendar.Calendar, now time.Time, base time.Duration) Decision {
	d := Decision{Duration: base, Reason: ReasonDefault}
	if cal != nil {
		if cur := cal.CurrentEvent(now); cur != nil {
			d = Decision{Duration: cur.End.Sub(now), Reason: ReasonCurrent, Event: cur}
		} else if next := cal.NextEvent(now); next != nil {
			d = Decision{Duration: next.Start.Sub(now), Reason: ReasonNext, Event: next}
		}
		if d.Duration > base {
			d.Duration = base
			d.Capped = true
		}
	}
	d.Duration = max(d.Duration, 0) + DriftPad
	return d
}
