// Command lambda-display renders lambda, AFR, temperature and heater-voltage
// readings pushed over MQTT with threshold colors and blink alerts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/lambda-display/internal/channel"
	"github.com/sweeney/lambda-display/internal/clock"
	"github.com/sweeney/lambda-display/internal/config"
	"github.com/sweeney/lambda-display/internal/console"
	"github.com/sweeney/lambda-display/internal/display"
	"github.com/sweeney/lambda-display/internal/history"
	"github.com/sweeney/lambda-display/internal/led"
	"github.com/sweeney/lambda-display/internal/notify"
	"github.com/sweeney/lambda-display/internal/status"
	"github.com/sweeney/lambda-display/internal/web"
)

func main() {
	if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		log.Printf("env: %v", err)
	}

	configPath := flag.String("config", config.Path(os.Getenv), "YAML config file (empty for defaults)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	prefix := flag.String("prefix", "", "MQTT topic prefix (overrides config)")
	httpAddr := flag.String("http", "", `HTTP status address (overrides config, "off" disables)`)
	interval := flag.Duration("interval", 0, "Device update interval (overrides config)")
	ledPin := flag.Int("led-pin", -1, "BCM pin number for the alert LED (0 disables, overrides config)")
	useConsole := flag.Bool("console", false, "Print frames to the terminal")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	config.ApplyEnv(cfg, os.Getenv)

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "broker":
			cfg.MQTT.Broker = *broker
		case "prefix":
			cfg.MQTT.TopicPrefix = *prefix
		case "http":
			cfg.HTTP.Addr = *httpAddr
			if cfg.HTTP.Addr == "off" {
				cfg.HTTP.Addr = ""
			}
		case "interval":
			cfg.Display.UpdateIntervalMs = interval.Milliseconds()
		case "led-pin":
			cfg.LED.Pin = *ledPin
		case "console":
			cfg.Console = *useConsole
		}
	})

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	if err := run(cfg, *configPath); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// run starts every output and the event loop. Settings changed on the web
// page are written back to configPath when it is set.
func run(cfg *config.Config, configPath string) error {
	interval := time.Duration(cfg.Display.UpdateIntervalMs) * time.Millisecond
	prefs := display.Preferences{
		DecimalPlaces:   cfg.Display.DecimalPlaces,
		BlinkingEnabled: cfg.Display.Blinking,
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		Broker:           cfg.MQTT.Broker,
		TopicPrefix:      cfg.MQTT.TopicPrefix,
		HTTPAddr:         cfg.HTTP.Addr,
		UpdateIntervalMs: cfg.Display.UpdateIntervalMs,
		LEDPin:           cfg.LED.Pin,
	}, prefs)
	tracker.SetRecording(cfg.History.Recording)

	screens := []screen{tracker}

	var store history.Store
	var rec *history.Recorder
	if cfg.History.DSN != "" {
		s, err := history.OpenGorm(cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("init history: %w", err)
		}
		store = s
		defer store.Close()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		rec = history.NewRecorder(store, time.Duration(cfg.History.RetentionDays)*24*time.Hour, 64)
		go func() {
			rec.Run(ctx)
			close(done)
		}()
		defer func() {
			cancel()
			<-done
		}()
		log.Printf("history: recording to database, keeping %d days", cfg.History.RetentionDays)
	}

	var dismissals <-chan struct{}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		hub := web.NewHub()
		srv := web.New(cfg.HTTP.Addr, tracker, hub)
		if store != nil {
			srv.SetHistory(store)
		}
		if configPath != "" {
			srv.SetSettingsSaver(func(p display.Preferences) error {
				return config.SaveSettings(configPath, config.Settings{
					DecimalPlaces: p.DecimalPlaces,
					Blinking:      p.BlinkingEnabled,
				})
			})
		}
		dismissals = srv.Dismissals()
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
		screens = append(screens, hub)
	}

	if cfg.Console {
		screens = append(screens, console.New(os.Stdout))
	}

	var sinks []display.Sink
	if cfg.LED.Pin > 0 {
		var w led.Writer
		rw, err := led.NewRealWriter(cfg.LED.Pin)
		if err != nil {
			log.Printf("led: %v, continuing without LED", err)
			w = led.Nop{}
		} else {
			w = rw
		}
		defer w.Close()
		sinks = append(sinks, led.NewBinding(w))
	}

	ch, err := channel.NewRealChannel(channel.Options{
		Broker:     cfg.MQTT.Broker,
		ClientID:   cfg.MQTT.ClientID,
		Prefix:     cfg.MQTT.TopicPrefix,
		BufferSize: cfg.MQTT.BufferSize,
	})
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}

	loop := clock.NewLoop(16)
	defer loop.Close()

	a := newApp(ch, loop, tracker, interval, time.Now, screens, sinks...)
	a.dismiss = dismissals
	if rec != nil {
		a.recorder = rec
	}

	log.Printf("started: broker=%s prefix=%s interval=%v places=%d blinking=%v",
		cfg.MQTT.Broker, cfg.MQTT.TopicPrefix, interval, prefs.DecimalPlaces, prefs.BlinkingEnabled)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(a, loop.C, sigCh)
}

// screen is an output that shows frames and both notification kinds.
type screen interface {
	display.Sink
	notify.InfoDisplay
	notify.ErrorDisplay
}

// recorder stores the values of each update.
type recorder interface {
	Record(at time.Time, s display.Snapshot, recording bool)
}

// app wires the display controller and notification state to a channel.
// All of its methods run on the event loop goroutine.
type app struct {
	ch         channel.Channel
	tracker    *status.Tracker
	controller *display.Controller
	queue      *notify.InfoQueue
	slot       *notify.ErrorSlot
	now        func() time.Time
	recorder   recorder        // nil when history is off
	dismiss    <-chan struct{} // error modal close button; nil without HTTP
}

func newApp(ch channel.Channel, clk clock.Clock, tracker *status.Tracker, interval time.Duration, now func() time.Time, screens []screen, sinks ...display.Sink) *app {
	multi := display.MultiSink{remoteSink{ch: ch, now: now}}
	var infos notify.MultiInfoDisplay
	var errs notify.MultiErrorDisplay
	for _, s := range screens {
		multi = append(multi, s)
		infos = append(infos, s)
		errs = append(errs, s)
	}
	multi = append(multi, sinks...)

	return &app{
		ch:         ch,
		tracker:    tracker,
		controller: display.NewController(multi, clk, interval),
		queue:      notify.NewInfoQueue(clk, infos),
		slot:       notify.NewErrorSlot(errs),
		now:        now,
	}
}

func (a *app) handle(e channel.Event) {
	switch e.Type {
	case channel.EventConnect:
		log.Printf("mqtt: connected")
		a.tracker.SetMQTTConnected(true)
		if err := a.ch.Acknowledge(a.now()); err != nil {
			log.Printf("mqtt: acknowledge: %v", err)
		}

	case channel.EventConnectError:
		log.Printf("mqtt: connect error: %v", e.Err)
		a.tracker.SetMQTTConnected(false)

	case channel.EventDisconnect:
		log.Printf("mqtt: disconnected: %s", e.Reason)
		a.tracker.SetMQTTConnected(false)
		if e.Reason == channel.ServerDisconnect {
			a.tracker.CountReconnect()
			if err := a.ch.Reconnect(); err != nil {
				log.Printf("mqtt: reconnect: %v", err)
			}
		}

	case channel.EventNewValues:
		a.controller.Update(e.Values, a.tracker.Preferences())
		if a.recorder != nil {
			a.recorder.Record(a.now(), e.Values, a.tracker.Recording())
		}

	case channel.EventInfo:
		a.queue.Enqueue(e.Info)

	case channel.EventError:
		log.Printf("device error: type=%s exc=%s", e.Error.Type, e.Error.Exc)
		a.slot.Show(e.Error)

	default:
		log.Printf("ignoring event %q", e.Type)
	}
}

// shutdown restores every channel, clears the info queue and closes the
// channel.
func (a *app) shutdown() {
	a.controller.Stop()
	a.queue.Flush()
	if err := a.ch.Close(); err != nil {
		log.Printf("mqtt: close: %v", err)
	}
}

func runLoop(a *app, timers <-chan func(), sig <-chan os.Signal) error {
	events := a.ch.Events()
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			a.shutdown()
			return nil

		case e, ok := <-events:
			if !ok {
				a.shutdown()
				return errors.New("event channel closed")
			}
			a.handle(e)

		case <-a.dismiss:
			a.slot.Dismiss()

		case f := <-timers:
			f()
		}
	}
}

// remoteSink forwards frames and blinks to remote displays over the channel.
type remoteSink struct {
	ch  channel.Channel
	now func() time.Time
}

func (r remoteSink) Apply(frame display.Frame) {
	if err := r.ch.PublishFrame(frame, r.now()); err != nil {
		log.Printf("publish frame: %v", err)
	}
}

func (r remoteSink) SetVisible(ch display.ChannelID, visible bool) {
	if err := r.ch.PublishVisibility(ch, visible); err != nil {
		log.Printf("publish blink %s: %v", ch, err)
	}
}
