package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"
)

type wireEntry struct {
	Title     string `json:"title"`
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
	AllDay    bool   `json:"all_day"`
	Busy      *int   `json:"busy"`
	Important bool   `json:"important"`
	Message   string `json:"message"`
}

type wireStatus struct {
	Icon        string `json:"icon"`
	IconSize    int    `json:"icon_size"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type wireCalendar struct {
	LastUpdated  int64       `json:"last_updated"`
	Entries      []wireEntry `json:"entries"`
	CustomStatus *wireStatus `json:"custom_status,omitempty"`
}

// Decode parses the calendar server's JSON document. Times are Unix seconds,
// a missing busy state means Free. Entries come back sorted by start.
func Decode(r io.Reader) (*Calendar, error) {
	var w wireCalendar
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	cal := &Calendar{Entries: make([]Entry, 0, len(w.Entries))}
	if w.LastUpdated > 0 {
		cal.LastUpdated = time.Unix(w.LastUpdated, 0)
	}
	for _, we := range w.Entries {
		e := Entry{
			Title:     we.Title,
			Start:     time.Unix(we.Start, 0),
			End:       time.Unix(we.End, 0),
			AllDay:    we.AllDay,
			Busy:      Free,
			Important: we.Important,
			Message:   we.Message,
		}
		if we.Busy != nil {
			e.Busy = BusyState(*we.Busy)
		}
		cal.Entries = append(cal.Entries, e)
	}
	slices.SortStableFunc(cal.Entries, func(a, b Entry) int {
		return a.Start.Compare(b.Start)
	})

	if s := w.CustomStatus; s != nil {
		cal.Status = &CustomStatus{Icon: s.Icon, IconSize: s.IconSize, Title: s.Title, Description: s.Description}
	}
	return cal, nil
}

// Encode writes cal in the format Decode reads.
func Encode(wr io.Writer, cal *Calendar) error {
	w := wireCalendar{Entries: make([]wireEntry, 0, len(cal.Entries))}
	if !cal.LastUpdated.IsZero() {
		w.LastUpdated = cal.LastUpdated.Unix()
	}
	for _, e := range cal.Entries {
		busy := int(e.Busy)
		w.Entries = append(w.Entries, wireEntry{
			Title:     e.Title,
			Start:     e.Start.Unix(),
			End:       e.End.Unix(),
			AllDay:    e.AllDay,
			Busy:      &busy,
			Important: e.Important,
			Message:   e.Message,
		})
	}
	if s := cal.Status; s != nil {
		w.CustomStatus = &wireStatus{Icon: s.Icon, IconSize: s.IconSize, Title: s.Title, Description: s.Description}
	}
	enc := json.NewEncoder(wr)
	enc.SetIndent("", "  ")
	return enc.Encode(w)
}

// Load reads a calendar document from disk.
func Load(path string) (*Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// StatusError is a non-200 answer from the calendar server.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("calendar server: %d %s", e.Code, statusText(e.Code))
}

func statusText(code int) string {
	if t := http.StatusText(code); t != "" {
		return t
	}
	return "Unknown Status"
}

// Client fetches the calendar from the calendar server.
type Client struct {
	Endpoint string
	HTTP     *http.Client
	Attempts int
	Timeout  time.Duration
}

func NewClient(endpoint string, attempts int, timeout time.Duration) *Client {
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		Endpoint: strings.TrimRight(endpoint, "/"),
		HTTP:     &http.Client{},
		Attempts: attempts,
		Timeout:  timeout,
	}
}

// Fetch GETs <endpoint>/calendar, retrying failed attempts. The last error
// is returned when every attempt fails.
func (c *Client) Fetch(ctx context.Context) (*Calendar, error) {
	var lastErr error
	for attempt := 1; attempt <= c.Attempts; attempt++ {
		cal, err := c.fetchOnce(ctx)
		if err == nil {
			return cal, nil
		}
		lastErr = err
		log.Printf("[fetch] attempt %d/%d: %v", attempt, c.Attempts, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context) (*Calendar, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint+"/calendar", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return Decode(resp.Body)
}
