package preview

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cedi/meetingroom-display-epd/internal/calendar"
	"github.com/cedi/meetingroom-display-epd/internal/config"
	"github.com/cedi/meetingroom-display-epd/internal/logs"
	"github.com/cedi/meetingroom-display-epd/internal/render"
)

var testPalette = color.Palette{color.White, color.Black}

func blankImage(w, h int) *image.Paletted {
	return image.NewPaletted(image.Rect(0, 0, w, h), testPalette)
}

func testOptions(t *testing.T, load LoadFunc) Options {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	rb, err := logs.NewRingBuffer(20, "")
	if err != nil {
		t.Fatal(err)
	}
	env, err := render.NewEnv(cfg, rb)
	if err != nil {
		t.Fatal(err)
	}
	return Options{
		Config: cfg,
		Env:    env,
		Load:   load,
		Log:    rb,
		Now:    func() time.Time { return time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) },
	}
}

func TestDownsample_KeepsThinLines(t *testing.T) {
	img := blankImage(4, 4)
	img.SetColorIndex(1, 1, 1)

	px := Downsample(img, 2, 1)
	if len(px) != 2 || len(px[0]) != 2 {
		t.Fatalf("expected 2x2 pixels, got %dx%d", len(px), len(px[0]))
	}
	if isWhite(px[0][0]) {
		t.Error("block holding ink should not be white")
	}
	if !isWhite(px[0][1]) || !isWhite(px[1][0]) || !isWhite(px[1][1]) {
		t.Error("empty blocks should stay white")
	}
}

func TestDownsample_Degenerate(t *testing.T) {
	if Downsample(blankImage(4, 4), 0, 3) != nil {
		t.Error("expected nil for an empty grid")
	}
}

func TestHalfBlocks_Shape(t *testing.T) {
	out := HalfBlocks(blankImage(8, 8), 4, 2)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for _, l := range lines {
		if n := strings.Count(l, halfBlock); n != 4 {
			t.Errorf("expected 4 cells per line, got %d", n)
		}
	}
}

func TestRenderFrame_LoadError(t *testing.T) {
	opts := testOptions(t, func(ctx context.Context) (*calendar.Calendar, error) {
		return nil, fmt.Errorf("read data: %w", os.ErrNotExist)
	})

	msg, ok := renderFrame(opts)().(frameMsg)
	if !ok {
		t.Fatal("expected a frameMsg")
	}
	if msg.err != nil {
		t.Fatal(msg.err)
	}
	if !msg.pass.FullPage {
		t.Error("load failure should render a full page status")
	}
	found := false
	for _, e := range opts.Log.Snapshot() {
		if e.Widget == "preview" && e.Level == logs.LevelWarn {
			found = true
		}
	}
	if !found {
		t.Error("load failure should be logged")
	}
}

func TestModel_Update(t *testing.T) {
	opts := testOptions(t, func(ctx context.Context) (*calendar.Calendar, error) {
		return &calendar.Calendar{}, nil
	})
	var m tea.Model = NewModel(opts)

	if v := m.View(); !strings.Contains(v, "Loading") {
		t.Errorf("expected loading view, got %q", v)
	}

	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	m, _ = m.Update(renderFrame(opts)())

	pm := m.(Model)
	if pm.frame == nil || pm.frameView == "" {
		t.Fatal("frame should be rendered into the view")
	}
	view := m.View()
	if !strings.Contains(view, "epd-display preview") || !strings.Contains(view, "RENDER LOG") {
		t.Error("view should show the header and log panel")
	}
	if !strings.Contains(view, "shown 0") {
		t.Errorf("status line should report the list balance: %q", pm.statusLine())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	if m.(Model).showLogs {
		t.Error("l should hide the log panel")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_ToggleDebug(t *testing.T) {
	opts := testOptions(t, func(ctx context.Context) (*calendar.Calendar, error) {
		return &calendar.Calendar{}, nil
	})
	m := NewModel(opts)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if !opts.Log.Debug() {
		t.Error("d should enable debug logging")
	}
}

func TestFileWatcher_NotifiesOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	w := newFileWatcher(path)
	go w.run()
	defer w.stop()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"entries":[]}`), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.sub:
	case err := <-w.errc:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification")
	}
}
