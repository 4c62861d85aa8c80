package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if len(cfg.Displays) == 0 {
		return fmt.Errorf("config: no displays")
	}

	ports := make(map[string]int)
	for i, d := range cfg.Displays {
		var maxCells int
		switch strings.ToLower(d.Driver) {
		case DriverPT6315:
			maxCells = 12
		case DriverMD06INKM:
			maxCells = 16
			if d.Mode != nil {
				return fmt.Errorf("display %d: mode is not supported by %s", i, d.Driver)
			}
		default:
			return fmt.Errorf("display %d: unknown driver %q", i, d.Driver)
		}

		if d.Port != "" && d.SPIDev != nil {
			return fmt.Errorf("display %d: port and spidev are mutually exclusive", i)
		}
		if d.SPIDev != nil && (d.SPIDev.Bus < 0 || d.SPIDev.Device < 0) {
			return fmt.Errorf("display %d: invalid spidev %d.%d", i, d.SPIDev.Bus, d.SPIDev.Device)
		}
		if d.SpeedHz < 0 {
			return fmt.Errorf("display %d: negative speed_hz", i)
		}
		if d.Cells < 0 || d.Cells > maxCells {
			return fmt.Errorf("display %d: cells must be within 0..%d, got %d", i, maxCells, d.Cells)
		}
		if d.Brightness > 7 {
			return fmt.Errorf("display %d: brightness must be within 0..7, got %d", i, d.Brightness)
		}

		// Displays sharing a port need distinct chip selects.
		for j, other := range cfg.Displays[:i] {
			if other.PortKey() == d.PortKey() && (other.CS == "" || d.CS == "") {
				return fmt.Errorf("display %d: port %s is shared with display %d, both need cs", i, d.PortKey(), j)
			}
		}
		key := d.PortKey() + "|" + d.CS
		if prev, exists := ports[key]; exists {
			return fmt.Errorf("display %d: port %s with cs %q already used by display %d", i, d.PortKey(), d.CS, prev)
		}
		ports[key] = i
	}

	if cfg.TZOffsetHours < -12 || cfg.TZOffsetHours > 14 {
		return fmt.Errorf("config: tz_offset_hours out of range: %d", cfg.TZOffsetHours)
	}
	if cfg.ScrollPaceMs < 0 || cfg.TimeSyncIntervalS < 0 {
		return fmt.Errorf("config: negative interval")
	}
	if cfg.Weather.PeriodS < 0 || cfg.Weather.RequestPeriodMin < 0 || cfg.Ping.PeriodS < 0 {
		return fmt.Errorf("config: negative period")
	}

	for i, h := range cfg.Ping.Hosts {
		if h.Host == "" {
			return fmt.Errorf("ping host %d: empty host", i)
		}
		if h.Port < 0 || h.Port > 65535 {
			return fmt.Errorf("ping host %q: invalid port %d", h.Host, h.Port)
		}
	}
	return nil
}

// PortKey names the physical port of a display; displays with the same key share one bus.
func (d DisplayConfig) PortKey() string {
	if d.SPIDev != nil {
		return fmt.Sprintf("spidev%d.%d", d.SPIDev.Bus, d.SPIDev.Device)
	}
	if d.Port == "" {
		return "default"
	}
	return d.Port
}
