package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cedi/meetingroom-display-epd/internal/calendar"
	"github.com/cedi/meetingroom-display-epd/internal/canvas"
	"github.com/cedi/meetingroom-display-epd/internal/config"
	"github.com/cedi/meetingroom-display-epd/internal/logs"
	"github.com/cedi/meetingroom-display-epd/internal/preview"
	"github.com/cedi/meetingroom-display-epd/internal/render"
	"github.com/cedi/meetingroom-display-epd/internal/schedule"
)

var version = "0.3.0"

type rootOptions struct {
	configPath string
	debug      bool
	now        string
	batteryMV  int
	rssi       int
}

// app is everything one command invocation renders with.
type app struct {
	cfg    config.Config
	env    *render.Env
	logBuf *logs.RingBuffer
	now    time.Time
	device render.DeviceStatus
}

func setup(o *rootOptions) (*app, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFrom(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if o.debug {
		cfg.Debug = true
	}

	logBuf, err := logs.NewRingBuffer(200, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	logBuf.SetDebug(cfg.Debug)

	env, err := render.NewEnv(cfg, logBuf)
	if err != nil {
		logBuf.Close()
		return nil, fmt.Errorf("config: %w", err)
	}

	now := time.Now()
	if o.now != "" {
		now, err = time.Parse(time.RFC3339, o.now)
		if err != nil {
			logBuf.Close()
			return nil, fmt.Errorf("--now: %w", err)
		}
	}

	return &app{
		cfg:    cfg,
		env:    env,
		logBuf: logBuf,
		now:    now,
		device: render.DeviceStatus{BatteryMilliVolts: o.batteryMV, RSSI: o.rssi},
	}, nil
}

func (a *app) close() {
	if a.cfg.Debug {
		for _, e := range a.logBuf.Snapshot() {
			fmt.Fprintln(os.Stderr, logs.Format(e))
		}
	}
	a.logBuf.Close()
}

// clockSynced rejects clocks that were obviously never set.
func clockSynced(now time.Time) bool {
	return now.Year() >= 2020
}

func (a *app) load(ctx context.Context, now time.Time) (*calendar.Calendar, error) {
	if !clockSynced(now) {
		return nil, calendar.ErrClockNotSet
	}
	if a.cfg.Data.Endpoint != "" {
		c := calendar.NewClient(a.cfg.Data.Endpoint, a.cfg.Data.FetchAttempts, a.cfg.FetchTimeout())
		cal, err := c.Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", a.cfg.Data.Endpoint, err)
		}
		return cal, nil
	}
	cal, err := calendar.Load(a.cfg.Data.File)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", a.cfg.Data.File, err)
	}
	return cal, nil
}

// frame loads the data for one pass. Failures become the full page status
// the display shows instead of the calendar.
func (a *app) frame(ctx context.Context, now time.Time) (*render.Frame, error) {
	f := &render.Frame{Device: a.device}
	low := a.cfg.Device.LowBatteryMilliVolts
	if mv := a.device.BatteryMilliVolts; mv > 0 && mv <= low {
		log.Printf("[render] low battery: %d mV", mv)
		f.Calendar = &calendar.Calendar{Status: &calendar.CustomStatus{
			Icon:     canvas.IconBatteryX,
			IconSize: 128,
			Title:    "Low Battery",
		}}
		return f, nil
	}

	cal, err := a.load(ctx, now)
	if err != nil {
		log.Printf("[render] %v", err)
		f.Calendar = &calendar.Calendar{Status: calendar.StatusForError(err)}
		return f, err
	}
	f.Calendar = cal
	return f, nil
}

func (a *app) outputPath(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Output
}

// renderTo renders one frame to path and returns the calendar it showed, nil
// when a status replaced it.
func (a *app) renderTo(ctx context.Context, path string, now time.Time, skipUnchanged bool) (*calendar.Calendar, error) {
	f, loadErr := a.frame(ctx, now)
	r, pass, err := render.Draw(a.cfg, a.env, f, now)
	if err != nil {
		return nil, err
	}
	cal := f.Calendar
	if loadErr != nil || pass.FullPage {
		cal = nil
	}

	digest := r.Digest()
	if skipUnchanged && unchanged(path, digest) {
		fmt.Printf("%s unchanged, skipping refresh\n", path)
		return cal, nil
	}
	if err := writePNG(path, r); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path+".digest", []byte(digest+"\n"), 0644); err != nil {
		return nil, err
	}

	if pass.FullPage {
		fmt.Printf("%s written: full page status (pass %s)\n", path, pass.ID)
	} else {
		l := pass.List
		fmt.Printf("%s written: %d entries, %d past hidden, %d future hidden (pass %s)\n",
			path, len(l.Displayable), l.SkippedPast, l.OverflowFuture, pass.ID)
	}
	return cal, nil
}

func writePNG(path string, r *canvas.Raster) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// unchanged reports whether the digest stored next to path matches digest.
func unchanged(path, digest string) bool {
	data, err := os.ReadFile(path + ".digest")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == digest
}

func main() {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "epd-display",
		Short:        "Render the meeting room calendar for an e-paper display",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default ~/.config/epd-display/config.json)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Print render diagnostics")
	rootCmd.PersistentFlags().StringVar(&opts.now, "now", "", "Render at this RFC3339 time instead of the clock")
	rootCmd.PersistentFlags().IntVar(&opts.batteryMV, "battery-mv", 0, "Battery voltage in mV, 0 when not sampled")
	rootCmd.PersistentFlags().IntVar(&opts.rssi, "rssi", 0, "WiFi RSSI in dBm, 0 when disconnected")

	var (
		output        string
		skipUnchanged bool
	)
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render the calendar to a PNG frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.close()

			_, err = a.renderTo(cmd.Context(), a.outputPath(output), a.now, skipUnchanged)
			return err
		},
	}
	renderCmd.Flags().StringVarP(&output, "output", "o", "", "PNG output path (default from config)")
	renderCmd.Flags().BoolVar(&skipUnchanged, "skip-unchanged", false, "Do not rewrite a frame identical to the last one")

	var (
		statusIcon     string
		statusIconSize int
		statusOutput   string
	)
	statusCmd := &cobra.Command{
		Use:   "status [title] [description]",
		Short: "Render a full page status frame",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.close()

			if statusIcon != "" && !canvas.HasIcon(statusIcon) {
				return fmt.Errorf("unknown icon %q, available: %s", statusIcon, strings.Join(canvas.IconNames(), ", "))
			}
			st := &calendar.CustomStatus{Icon: statusIcon, IconSize: statusIconSize, Title: args[0]}
			if len(args) > 1 {
				st.Description = args[1]
			}
			r, _, err := render.Draw(a.cfg, a.env, &render.Frame{Calendar: &calendar.Calendar{Status: st}}, a.now)
			if err != nil {
				return err
			}
			path := a.outputPath(statusOutput)
			if err := writePNG(path, r); err != nil {
				return err
			}
			fmt.Printf("%s written\n", path)
			return nil
		},
	}
	statusCmd.Flags().StringVar(&statusIcon, "icon", canvas.IconWarning, "Icon name")
	statusCmd.Flags().IntVar(&statusIconSize, "icon-size", 128, "Icon size in pixels")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "", "PNG output path (default from config)")

	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the draw operations of a frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.close()

			f, _ := a.frame(cmd.Context(), a.now)
			rec := canvas.NewRecorder(a.cfg.Display.Width, a.cfg.Display.Height)
			pass := render.NewScreen(rec, a.cfg, a.env).Render(rec, f, a.now)
			fmt.Printf("# pass %s, %dx%d, monospace metrics\n", pass.ID, rec.Width(), rec.Height())
			fmt.Print(rec.String())
			return nil
		},
	}

	sleepCmd := &cobra.Command{
		Use:   "sleep",
		Short: "Print how long the display may sleep after this refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.close()

			cal, err := a.load(cmd.Context(), a.now)
			if err != nil {
				log.Printf("[sleep] %v", err)
				cal = nil
			}
			d := schedule.SleepDuration(cal, a.now, a.cfg.SleepDuration())
			reason := string(d.Reason)
			if d.Event != nil {
				reason += ": " + d.Event.Title
			}
			if d.Capped {
				reason += " (capped)"
			}
			fmt.Printf("sleep %s until %s, %s\n", d.Duration, a.env.RefreshString(d.WakeAt(a.now)), reason)
			return nil
		},
	}

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the rendered frame live in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.logBuf.Close()
			// keep log lines from tearing the alt screen
			if f := a.logBuf.File(); f != nil {
				log.SetOutput(f)
			} else {
				log.SetOutput(io.Discard)
			}

			watch := ""
			if a.cfg.Data.Endpoint == "" {
				watch = a.cfg.Data.File
			}
			clock := time.Now
			if opts.now != "" {
				clock = func() time.Time { return a.now }
			}
			return preview.Run(preview.Options{
				Config: a.cfg,
				Env:    a.env,
				Load: func(ctx context.Context) (*calendar.Calendar, error) {
					f, err := a.frame(ctx, clock())
					return f.Calendar, err
				},
				Device:    a.device,
				WatchPath: watch,
				Log:       a.logBuf,
				Now:       clock,
			})
		},
	}

	var runOutput string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Refresh the frame in a loop, sleeping like the device does",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.close()

			path := a.outputPath(runOutput)
			schedule.Run(cmd.Context(), func(ctx context.Context) time.Duration {
				now := time.Now()
				cal, err := a.renderTo(ctx, path, now, true)
				if err != nil {
					log.Printf("[run] %v", err)
				}
				return schedule.SleepDuration(cal, now, a.cfg.SleepDuration()).Duration
			})
			return nil
		},
	}
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "PNG output path (default from config)")

	rootCmd.AddCommand(renderCmd, statusCmd, layoutCmd, sleepCmd, runCmd, previewCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
