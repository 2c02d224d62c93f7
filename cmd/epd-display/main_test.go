package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cedi/meetingroom-display-epd/internal/calendar"
	"github.com/cedi/meetingroom-display-epd/internal/config"
)

func testApp(t *testing.T) *app {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.Data.File = filepath.Join(tmp, "calendar.json")
	path := filepath.Join(tmp, "config.json")
	if err := config.SaveTo(path, cfg); err != nil {
		t.Fatal(err)
	}

	a, err := setup(&rootOptions{configPath: path, now: "2026-03-04T12:00:00Z", batteryMV: 4000, rssi: -60})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.logBuf.Close() })
	return a
}

func TestSetup(t *testing.T) {
	a := testApp(t)
	if !a.now.Equal(time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected now %v", a.now)
	}
	if a.device.RSSI != -60 {
		t.Errorf("expected rssi -60, got %d", a.device.RSSI)
	}
}

func TestSetup_BadNow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := setup(&rootOptions{now: "yesterday"}); err == nil {
		t.Error("expected error for an invalid --now")
	}
}

func TestFrame_MissingData(t *testing.T) {
	a := testApp(t)
	f, err := a.frame(context.Background(), a.now)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist error, got %v", err)
	}
	if !f.Calendar.Status.Active() || f.Calendar.Status.Title != "Calendar Data Not Found" {
		t.Errorf("unexpected status %+v", f.Calendar.Status)
	}
}

func TestFrame_LoadsFile(t *testing.T) {
	a := testApp(t)
	cal := &calendar.Calendar{Entries: []calendar.Entry{
		{Title: "Standup", Start: a.now.Add(-time.Minute), End: a.now.Add(time.Hour)},
	}}
	fh, err := os.Create(a.cfg.Data.File)
	if err != nil {
		t.Fatal(err)
	}
	if err := calendar.Encode(fh, cal); err != nil {
		t.Fatal(err)
	}
	fh.Close()

	f, err := a.frame(context.Background(), a.now)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Calendar.Entries) != 1 || f.Calendar.Status.Active() {
		t.Errorf("unexpected calendar %+v", f.Calendar)
	}
}

func TestFrame_LowBattery(t *testing.T) {
	a := testApp(t)
	a.device.BatteryMilliVolts = 3200
	f, err := a.frame(context.Background(), a.now)
	if err != nil {
		t.Fatal(err)
	}
	if f.Calendar.Status == nil || f.Calendar.Status.Title != "Low Battery" {
		t.Errorf("expected low battery status, got %+v", f.Calendar.Status)
	}
}

func TestLoad_ClockNotSet(t *testing.T) {
	a := testApp(t)
	_, err := a.load(context.Background(), time.Unix(0, 0))
	if !errors.Is(err, calendar.ErrClockNotSet) {
		t.Errorf("expected ErrClockNotSet, got %v", err)
	}
}

func TestUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	if unchanged(path, "abc") {
		t.Error("missing digest should count as changed")
	}
	os.WriteFile(path+".digest", []byte("abc\n"), 0644)
	if !unchanged(path, "abc") {
		t.Error("matching digest should count as unchanged")
	}
	if unchanged(path, "def") {
		t.Error("different digest should count as changed")
	}
}

func TestRenderTo_SkipsUnchanged(t *testing.T) {
	a := testApp(t)
	path := filepath.Join(t.TempDir(), "frame.png")

	cal, err := a.renderTo(context.Background(), path, a.now, true)
	if err != nil {
		t.Fatal(err)
	}
	if cal != nil {
		t.Error("expected nil calendar when the data file is missing")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected frame to be written: %v", err)
	}
	if _, err := os.Stat(path + ".digest"); err != nil {
		t.Fatalf("expected digest to be written: %v", err)
	}

	os.Remove(path)
	if _, err := a.renderTo(context.Background(), path, a.now, true); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected unchanged frame to be skipped, size was %d", info.Size())
	}
}
