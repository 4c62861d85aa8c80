package config

import "strings"

// Normalize fills in defaults.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	for i := range cfg.Displays {
		d := &cfg.Displays[i]
		d.Driver = strings.ToLower(d.Driver)
		if d.SpeedHz == 0 {
			d.SpeedHz = DefaultSpeedHz
		}
		if d.LSBFirst == nil {
			// Both controllers shift data in LSB first.
			lsb := true
			d.LSBFirst = &lsb
		}
	}

	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}
	if cfg.ScrollPaceMs == 0 {
		cfg.ScrollPaceMs = DefaultScrollPaceMs
	}
	if cfg.TimeSyncIntervalS == 0 {
		cfg.TimeSyncIntervalS = DefaultTimeSyncIntervalS
	}
	if cfg.Weather.PeriodS == 0 {
		cfg.Weather.PeriodS = DefaultWeatherPeriodS
	}
	if cfg.Weather.RequestPeriodMin == 0 {
		cfg.Weather.RequestPeriodMin = DefaultRequestPeriodMin
	}
	if cfg.Ping.PeriodS == 0 {
		cfg.Ping.PeriodS = DefaultPingPeriodS
	}
	for i := range cfg.Ping.Hosts {
		h := &cfg.Ping.Hosts[i]
		if h.Label == "" {
			h.Label = strings.ToUpper(h.Host)
		}
	}
}
