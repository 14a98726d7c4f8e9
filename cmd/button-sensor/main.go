// Command button-sensor reads a debounced pushbutton on a GPIO line and
// publishes press, release and hold events to MQTT.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/button-sensor/internal/button"
	"github.com/sweeney/button-sensor/internal/config"
	"github.com/sweeney/button-sensor/internal/gpio"
	"github.com/sweeney/button-sensor/internal/logger"
	"github.com/sweeney/button-sensor/internal/logic"
	"github.com/sweeney/button-sensor/internal/mqtt"
	"github.com/sweeney/button-sensor/internal/status"
	"github.com/sweeney/button-sensor/internal/web"
)

func main() {
	cfg, err := config.Load(config.Flags("button-sensor"), os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config, log *zap.SugaredLogger) error {
	pin, err := gpio.OpenPin(cfg.Chip, cfg.Pin, log)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer pin.Close()

	if cfg.PrintState {
		high, err := pin.Value()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Printf("pin %d: %s\n", cfg.Pin, levelState(high))
		return nil
	}

	btn := button.New(pin,
		button.WithDebounce(cfg.DebounceMs()),
		button.WithHoldAfter(cfg.HoldAfterMs()),
	)

	publisher := mqtt.NewRealPublisher(mqtt.Options{Broker: cfg.Broker, ClientID: cfg.ClientID}, log)
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Pin:         cfg.Pin,
		ScanMs:      cfg.Scan.Milliseconds(),
		PollMs:      cfg.Poll.Milliseconds(),
		DebounceMs:  cfg.Debounce.Milliseconds(),
		HoldAfterMs: cfg.HoldAfter.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Warnf("failed to publish startup event: %v", err)
	}

	hub := web.NewHub()
	g, ctx := errgroup.WithContext(context.Background())
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Scan context: samples the pin as often as configured.
	scanTicker := time.NewTicker(cfg.Scan)
	defer scanTicker.Stop()
	g.Go(func() error {
		button.ScanEvery(ctx, btn, scanTicker.C)
		return nil
	})

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, hub, log)
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
		log.Infof("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Infof("started: pin=%d scan=%v poll=%v debounce=%v hold-after=%v broker=%s heartbeat=%v",
		cfg.Pin, cfg.Scan, cfg.Poll, cfg.Debounce, cfg.HoldAfter, cfg.Broker, cfg.Heartbeat)

	pollTicker := time.NewTicker(cfg.Poll)
	defer pollTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Consume context: drains the button flags and fans events out.
	l := &loop{
		monitor:    logic.NewMonitor(btn, time.Now()),
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		hub:        hub,
		heartbeat:  cfg.Heartbeat,
		now:        time.Now,
		log:        log,
	}
	g.Go(func() error {
		defer cancel()
		return l.run(ctx, pollTicker.C, sigCh)
	})

	return g.Wait()
}

// loop is the consume side of the daemon. Every collaborator except the
// monitor and publisher is optional.
type loop struct {
	monitor    *logic.Monitor
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	hub        *web.Hub
	heartbeat  time.Duration
	now        func() time.Time
	log        *zap.SugaredLogger
}

func (l *loop) run(ctx context.Context, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case <-ctx.Done():
			l.shutdown("ERROR")
			return nil

		case s := <-sig:
			l.log.Infof("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			l.shutdown(signalName)
			return nil

		case <-tick:
			l.poll(l.now())
		}
	}
}

func (l *loop) poll(t time.Time) {
	for _, event := range l.monitor.Poll(t) {
		l.log.Infof("event: %s pin=%d state=%s press_ms=%d", event.Type, event.Pin, event.State, event.PressMs)
		if err := l.publisher.Publish(event); err != nil {
			// Don't crash on publish failure
			l.log.Warnf("publish error: %v", err)
		}
		if l.hub != nil {
			l.hub.Broadcast(event)
		}
	}

	l.refreshTracker()

	if hbData := l.monitor.CheckHeartbeat(t, l.heartbeat); hbData != nil {
		l.log.Infof("heartbeat: uptime=%v press=%d release=%d hold=%d",
			hbData.Uptime, hbData.Counts.Press, hbData.Counts.Release, hbData.Counts.Hold)

		hbEvent := mqtt.SystemEvent{
			Timestamp: hbData.Timestamp,
			Event:     "HEARTBEAT",
		}
		if l.tracker != nil {
			// Refresh network info for heartbeat
			if net := readNetworkInfo(); net != nil {
				l.tracker.SetNetwork(net)
			}
			hbEvent.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "HEARTBEAT", "")
		}
		if err := l.publisher.PublishSystem(hbEvent); err != nil {
			l.log.Warnf("heartbeat publish error: %v", err)
		}
	}
}

func (l *loop) refreshTracker() {
	if l.tracker == nil {
		return
	}
	state, pressMs := l.monitor.CurrentState()
	l.tracker.Update(state, pressMs, l.monitor.EventCountsSnapshot(), l.monitor.LastEvent())
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
}

func (l *loop) shutdown(reason string) {
	event := mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if l.tracker != nil {
		l.refreshTracker()
		event.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "SHUTDOWN", reason)
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		l.log.Warnf("failed to publish shutdown event: %v", err)
	} else {
		l.log.Infof("published shutdown event")
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// levelState describes a raw pull-up level.
func levelState(high bool) string {
	if high {
		return "HIGH (released)"
	}
	return "LOW (pressed)"
}
