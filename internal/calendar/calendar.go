// Package calendar holds the list items shown on the display and the
// collaborators that load them.
package calendar

import (
	"fmt"
	"time"
)

// BusyState values match the integers of the wire format.
type BusyState int

const (
	Free BusyState = iota
	Tentative
	Busy
)

func (b BusyState) String() string {
	switch b {
	case Free:
		return "Free"
	case Tentative:
		return "Tentative"
	case Busy:
		return "Busy"
	}
	return fmt.Sprintf("BusyState(%d)", int(b))
}

// Entry is one calendar event.
type Entry struct {
	Title     string
	Start     time.Time
	End       time.Time
	AllDay    bool
	Busy      BusyState
	Important bool
	Message   string
}

// IsPast reports whether the entry ended before now.
func (e Entry) IsPast(now time.Time) bool {
	return e.End.Before(now)
}

// IsCurrent reports whether now falls in [Start, End).
func (e Entry) IsCurrent(now time.Time) bool {
	return !e.Start.After(now) && now.Before(e.End)
}

// StatusText is what the status pane shows for the entry.
func (e Entry) StatusText() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Title
}

// CustomStatus replaces the whole screen with an icon and text. Error
// conditions are reported the same way.
type CustomStatus struct {
	Icon        string
	IconSize    int
	Title       string
	Description string
}

// Active reports whether the status should take over the screen.
func (s *CustomStatus) Active() bool {
	return s != nil && s.Title != ""
}

// Calendar is one refresh cycle worth of data. Entries are sorted by start.
type Calendar struct {
	LastUpdated time.Time
	Entries     []Entry
	Status      *CustomStatus
}

// CurrentEvent returns the first entry running at now, or nil.
func (c *Calendar) CurrentEvent(now time.Time) *Entry {
	for i := range c.Entries {
		if c.Entries[i].IsCurrent(now) {
			return &c.Entries[i]
		}
	}
	return nil
}

// NextEvent returns the first entry starting after now, or nil. Entries are
// sorted, so the first match is the earliest.
func (c *Calendar) NextEvent(now time.Time) *Entry {
	for i := range c.Entries {
		if c.Entries[i].Start.After(now) {
			return &c.Entries[i]
		}
	}
	return nil
}
