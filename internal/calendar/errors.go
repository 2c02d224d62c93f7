package calendar

import (
	"errors"
	"fmt"
	"os"

	"github.com/cedi/meetingroom-display-epd/internal/canvas"
)

var (
	ErrDecode = errors.New("decode calendar")
	// ErrClockNotSet means the clock has not been synchronized yet, so
	// nothing time based can be shown.
	ErrClockNotSet = errors.New("clock not synchronized")
)

const errorIconSize = 128

// StatusForError turns a failure to get data into the full page status shown
// instead of the calendar.
func StatusForError(err error) *CustomStatus {
	s := &CustomStatus{Icon: canvas.IconCloudDown, IconSize: errorIconSize, Description: err.Error()}

	var statusErr *StatusError
	switch {
	case errors.Is(err, ErrClockNotSet):
		s.Icon = canvas.IconTime
		s.Title = "Time Synchronization Failed"
		s.Description = ""
	case errors.Is(err, ErrDecode):
		s.Icon = canvas.IconWarning
		s.Title = "Invalid Calendar Data"
	case errors.Is(err, os.ErrNotExist):
		s.Icon = canvas.IconWarning
		s.Title = "Calendar Data Not Found"
	case errors.As(err, &statusErr):
		s.Title = "Fetching Calendar Failed"
		s.Description = fmt.Sprintf("%d: %s", statusErr.Code, statusText(statusErr.Code))
	default:
		s.Title = "Fetching Calendar Failed"
	}
	return s
}
