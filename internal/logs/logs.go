package logs

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

const defaultCapacity = 200

type LogLevel int

const (
	LevelDebug LogLevel = iota - 1
	LevelInfo
	LevelSuccess
	LevelWarn
	LevelError
)

// LogEntry is one line of render diagnostics. Pass identifies the render
// pass and Widget the component that produced the entry.
type LogEntry struct {
	Time    time.Time
	Pass    string
	Widget  string
	Message string
	Level   LogLevel
}

type RingBuffer struct {
	mu      sync.Mutex
	entries []LogEntry
	head    int
	size    int
	cap     int
	file    *os.File
	debug   bool
}

// NewRingBuffer keeps the last capacity entries in memory. When path is
// non-empty every entry is also appended to that file.
func NewRingBuffer(capacity int, path string) (*RingBuffer, error) {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	rb := &RingBuffer{
		entries: make([]LogEntry, capacity),
		cap:     capacity,
	}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		rb.file = f
	}
	return rb, nil
}

func (r *RingBuffer) SetDebug(on bool) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debug = on
}

func (r *RingBuffer) Debug() bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.debug
}

var levelTag = [...]string{"INFO", " OK ", "WARN", "ERR "}

func tagFor(l LogLevel) string {
	if l == LevelDebug {
		return "DBG "
	}
	if l >= 0 && int(l) < len(levelTag) {
		return levelTag[l]
	}
	return "INFO"
}

// Format renders an entry as one log file line.
func Format(e LogEntry) string {
	msg := strings.ReplaceAll(e.Message, "\n", " ")
	pass := e.Pass
	if pass == "" {
		pass = "-"
	}
	return fmt.Sprintf("%s [%s] %s %s: %s",
		e.Time.Format("2006-01-02 15:04:05"), tagFor(e.Level), pass, e.Widget, msg)
}

// Add stores an entry. A nil buffer discards it.
func (r *RingBuffer) Add(e LogEntry) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.Level == LevelDebug && !r.debug {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	r.entries[r.head] = e
	r.head = (r.head + 1) % r.cap
	if r.size < r.cap {
		r.size++
	}
	if r.file != nil {
		r.file.WriteString(Format(e) + "\n")
	}
}

func (r *RingBuffer) Debugf(pass, widget, format string, args ...any) {
	r.Add(LogEntry{Pass: pass, Widget: widget, Level: LevelDebug, Message: fmt.Sprintf(format, args...)})
}

func (r *RingBuffer) Infof(pass, widget, format string, args ...any) {
	r.Add(LogEntry{Pass: pass, Widget: widget, Level: LevelInfo, Message: fmt.Sprintf(format, args...)})
}

func (r *RingBuffer) Warnf(pass, widget, format string, args ...any) {
	r.Add(LogEntry{Pass: pass, Widget: widget, Level: LevelWarn, Message: fmt.Sprintf(format, args...)})
}

func (r *RingBuffer) Errorf(pass, widget, format string, args ...any) {
	r.Add(LogEntry{Pass: pass, Widget: widget, Level: LevelError, Message: fmt.Sprintf(format, args...)})
}

func (r *RingBuffer) File() *os.File {
	if r == nil {
		return nil
	}
	return r.file
}

func (r *RingBuffer) Close() {
	if r != nil && r.file != nil {
		r.file.Close()
	}
}

func (r *RingBuffer) Snapshot() []LogEntry {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.size == 0 {
		return nil
	}
	result := make([]LogEntry, r.size)
	start := (r.head - r.size + r.cap) % r.cap
	for i := 0; i < r.size; i++ {
		result[i] = r.entries[(start+i)%r.cap]
	}
	return result
}

// ReadLog parses a log file written by a RingBuffer, skipping lines that do
// not match the format.
func ReadLog(path string) ([]LogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []LogEntry
	for _, line := range strings.Split(string(data), "\n") {
		e := parseLogLine(line)
		if e.Time.IsZero() {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseLogLine(line string) LogEntry {
	// Format: 2006-01-02 15:04:05 [TAG ] pass widget: message
	var e LogEntry
	if len(line) < 27 {
		return e
	}

	t, err := time.ParseInLocation("2006-01-02 15:04:05", line[:19], time.Local)
	if err != nil {
		return e
	}

	tag := ""
	if line[20] == '[' {
		end := strings.Index(line[20:], "]")
		if end > 0 {
			tag = strings.TrimSpace(line[21 : 20+end])
		}
	}
	switch tag {
	case "OK":
		e.Level = LevelSuccess
	case "WARN":
		e.Level = LevelWarn
	case "ERR":
		e.Level = LevelError
	case "DBG":
		e.Level = LevelDebug
	case "INFO":
		e.Level = LevelInfo
	default:
		return e
	}
	e.Time = t

	rest := line[27:]
	spIdx := strings.Index(rest, " ")
	if spIdx < 0 {
		e.Message = rest
		return e
	}
	if pass := rest[:spIdx]; pass != "-" {
		e.Pass = pass
	}
	rest = rest[spIdx+1:]
	if colonIdx := strings.Index(rest, ": "); colonIdx >= 0 {
		e.Widget = rest[:colonIdx]
		e.Message = rest[colonIdx+2:]
	} else {
		e.Message = strings.TrimSuffix(rest, ":")
	}
	return e
}
