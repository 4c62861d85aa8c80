package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/vfd"
	"github.com/BeatGlow/vfd/conn"
	"github.com/BeatGlow/vfd/internal/clock"
	"github.com/BeatGlow/vfd/internal/config"
	"github.com/BeatGlow/vfd/internal/netstat"
	"github.com/BeatGlow/vfd/internal/ping"
	"github.com/BeatGlow/vfd/internal/weather"
	"github.com/BeatGlow/vfd/report"
)

const wifiFlashInterval = 250 * time.Millisecond

func main() {
	configFlag := flag.String("config", "/etc/vfd-ticker.yaml", "Configuration file")
	locationFlag := flag.String("location", "", "Weather location (overrides the configuration)")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fatal(fmt.Errorf("config load failed: %w", err))
	}
	if *locationFlag != "" {
		cfg.Location = *locationFlag
	}

	if _, err = host.Init(); err != nil {
		fatal(err)
	}

	var (
		members []vfd.Display
		ports   = make(portSet)
		width   int
	)
	defer ports.Close()
	for i, dc := range cfg.Displays {
		term, err := openDisplay(ports, dc)
		if err != nil {
			fatal(fmt.Errorf("display %d: %w", i, err))
		}
		log.Printf("using display: %s", term)
		members = append(members, term)
		if width == 0 || term.Cells() < width {
			width = term.Cells()
		}
	}

	display := vfd.NewBroadcast(members...)
	overlay := vfd.NewStatusOverlay(display, vfd.PT6315StatusAddr)
	if err = start(display); err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		queue    = report.NewQueue(report.DefaultQueueSize)
		network  = netstat.New(cfg.Interface)
		source   = clock.New(time.Duration(cfg.TZOffsetHours) * time.Hour)
		forecast = weather.New(cfg.Location)
		pinger   = ping.New(hosts(cfg.Ping.Hosts))
		busy     = func(fn func() error) error { return overlay.Scoped(vfd.StatusClock, fn) }
		renderer = report.NewRenderer(display, overlay, queue, network, forecast, source)
		wg       sync.WaitGroup
	)
	network.AccessPoint = cfg.AccessPoint
	if cfg.Weather.URL != "" {
		forecast.URL = cfg.Weather.URL
	}
	renderer.Interpreter.ScrollPace = time.Duration(cfg.ScrollPaceMs) * time.Millisecond

	tasks := map[string]func() error{
		"render": func() error { return renderer.Run(ctx) },
		"clock": func() error {
			return source.Run(ctx, clock.SystemSyncer{}, network, busy, clock.Config{
				Interval:  time.Duration(cfg.TimeSyncIntervalS) * time.Second,
				Reconnect: clock.DefaultConfig.Reconnect,
			})
		},
		"weather request": func() error {
			rc := weather.DefaultRequesterConfig
			rc.Period = time.Duration(cfg.Weather.RequestPeriodMin) * time.Minute
			return forecast.Run(ctx, network, busy, rc)
		},
		"weather report": func() error {
			rc := weather.DefaultReporterConfig
			rc.Period = time.Duration(cfg.Weather.PeriodS) * time.Second
			r := weather.Reporter{Source: forecast, Location: cfg.Location, Width: width}
			return r.Run(ctx, queue, rc)
		},
		"wifi": func() error { return flashWifi(ctx, network, overlay, queue) },
	}
	if len(pinger.Hosts) > 0 {
		pc := ping.DefaultConfig
		pc.Period = time.Duration(cfg.Ping.PeriodS) * time.Second
		tasks["ping"] = func() error { return pinger.Run(ctx, network, busy, pc) }
		tasks["ping report"] = func() error {
			r := ping.Reporter{Pinger: pinger, Width: width}
			return r.Run(ctx, queue, pc)
		}
	}

	for name, task := range tasks {
		name, task := name, task
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := task(); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("%s: %v", name, err)
			}
		}()
	}

	<-ctx.Done()
	wg.Wait()
	log.Printf("shutting down")
	if err = errors.Join(display.Clear(true), display.SetPower(false), display.End()); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// portSet holds one bus per physical port, so that displays sharing a port share its frame lock.
type portSet map[string]*openPort

type openPort struct {
	bus   *vfd.Bus
	close func() error
}

func (ps portSet) Close() {
	for _, p := range ps {
		_ = p.close()
	}
}

// bus returns the bus for the display. The first display on a port opens it, and its speed
// and bit order apply to all displays on that port.
func (ps portSet) bus(dc config.DisplayConfig) (*vfd.Bus, error) {
	key := dc.PortKey()
	if p, ok := ps[key]; ok {
		return p.bus.Device(pin(dc.CS))
	}

	var (
		port   vfd.Port
		closer func() error
		lsb    = dc.LSBFirst != nil && *dc.LSBFirst
		swap   bool
	)
	if dc.SPIDev != nil {
		c, err := conn.OpenSPI(dc.SPIDev.Bus, dc.SPIDev.Device)
		if err != nil {
			return nil, err
		}
		if err = c.SetMaxSpeed(int(dc.SpeedHz)); err != nil {
			_ = c.Close()
			return nil, err
		}
		if err = c.SetLSBFirst(lsb); err != nil {
			// Fall back to reversing bits in software.
			log.Printf("%s: controller can not shift LSB first: %v", c, err)
			swap = lsb
		}
		port, closer = c, c.Close
	} else {
		p, err := conn.OpenPort(dc.Port, dc.SpeedHz, lsb)
		if err != nil {
			return nil, err
		}
		port, closer = p, p.Close
	}

	bus, err := vfd.NewBus(port, &vfd.BusConfig{
		CS:        pin(dc.CS),
		LSBFirst:  swap,
		BatchSize: vfd.DefaultBusConfig.BatchSize,
	})
	if err != nil {
		_ = closer()
		return nil, err
	}
	ps[key] = &openPort{bus: bus, close: closer}
	return bus, nil
}

func openDisplay(ports portSet, dc config.DisplayConfig) (*vfd.Terminal, error) {
	bus, err := ports.bus(dc)
	if err != nil {
		return nil, err
	}

	devConfig := &vfd.Config{
		Cells:      dc.Cells,
		Brightness: dc.Brightness,
		Reset:      pin(dc.Reset),
	}
	var dev vfd.Device
	switch dc.Driver {
	case config.DriverPT6315:
		devConfig.Mode = vfd.PT6315Grid7Seg21
		if dc.Mode != nil {
			devConfig.Mode = *dc.Mode
		}
		dev, err = vfd.PT6315(bus, devConfig)
	case config.DriverMD06INKM:
		dev, err = vfd.MD06INKM(bus, devConfig)
	default:
		err = fmt.Errorf("unsupported driver %q", dc.Driver)
	}
	if err == nil {
		err = dev.Reset()
	}
	if err != nil {
		return nil, err
	}

	term := vfd.NewTerminal(dev)
	term.SetDot(dc.Dot)
	return term, nil
}

// pin looks up a GPIO by name; an empty name means the line is not wired.
func pin(name string) gpio.PinOut {
	if name == "" {
		return nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		fatal(fmt.Errorf("unknown GPIO %q", name))
	}
	return p
}

func start(display vfd.Display) error {
	if err := display.Begin(); err != nil {
		return err
	}
	if err := display.SetPower(true); err != nil {
		return err
	}
	if err := display.SetBrightness(report.NightBrightness); err != nil {
		return err
	}
	return display.Clear(true)
}

func hosts(in []config.HostConfig) []ping.Host {
	out := make([]ping.Host, 0, len(in))
	for _, h := range in {
		out = append(out, ping.Host{Addr: h.Host, Label: h.Label, Port: h.Port})
	}
	return out
}

// flashWifi blinks the wifi annunciator while the network is down, and reports why once per
// outage.
func flashWifi(ctx context.Context, network *netstat.Monitor, overlay *vfd.StatusOverlay, queue *report.Queue) error {
	ticker := time.NewTicker(wifiFlashInterval)
	defer ticker.Stop()

	var (
		on       bool
		reported bool
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if network.IsConnected() {
			reported = false
			continue
		}
		on = !on
		if err := overlay.SetWifi(on); err != nil {
			log.Printf("wifi: %v", err)
		}
		if msg, ok := network.ConnectivityMessage(); ok && !reported && !network.IsProvisioning() {
			reported = queue.Put(ctx, "\f"+msg+"~~") == nil
		}
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	os.Exit(1)
}
