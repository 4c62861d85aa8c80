// Package config is the configuration file of the ticker.
package config

type Config struct {
	Displays []DisplayConfig `yaml:"displays"`

	// Location is shown in the weather report and sent to the weather service.
	Location string `yaml:"location"`

	// Interface is the network interface watched for connectivity, empty for any.
	Interface string `yaml:"interface"`

	// AccessPoint is the hotspot interface that is up while the network is provisioned.
	AccessPoint string `yaml:"access_point"`

	TZOffsetHours     int `yaml:"tz_offset_hours"`
	ScrollPaceMs      int `yaml:"scroll_pace_ms"`
	TimeSyncIntervalS int `yaml:"time_sync_interval_s"`

	Weather WeatherConfig `yaml:"weather"`
	Ping    PingConfig    `yaml:"ping"`
}

// ---- DISPLAY ----

type DisplayConfig struct {
	// Driver is one of DriverPT6315 or DriverMD06INKM.
	Driver string `yaml:"driver"`

	// Port is the periph SPI port name; when empty, SPIDev selects a spidev device.
	Port   string        `yaml:"port"`
	SPIDev *SPIDevConfig `yaml:"spidev"`

	SpeedHz  int64 `yaml:"speed_hz"`
	LSBFirst *bool `yaml:"lsb_first"`

	CS    string `yaml:"cs"`
	Reset string `yaml:"reset"`

	Cells      int    `yaml:"cells"`
	Mode       *uint8 `yaml:"mode"`
	Brightness uint8  `yaml:"brightness"`

	// Dot merges a '.' into the previous cell on tubes with a decimal point segment.
	Dot bool `yaml:"dot"`
}

type SPIDevConfig struct {
	Bus    int `yaml:"bus"`
	Device int `yaml:"device"`
}

// ---- WEATHER ----

type WeatherConfig struct {
	URL              string `yaml:"url"`
	PeriodS          int    `yaml:"period_s"`
	RequestPeriodMin int    `yaml:"request_period_min"`
}

// ---- PING ----

type PingConfig struct {
	Hosts   []HostConfig `yaml:"hosts"`
	PeriodS int          `yaml:"period_s"`
}

type HostConfig struct {
	Host  string `yaml:"host"`
	Label string `yaml:"label"`
	Port  int    `yaml:"port"`
}

const (
	DriverPT6315   = "pt6315"
	DriverMD06INKM = "8md06inkm"
)

// Defaults applied by Normalize.
const (
	DefaultSpeedHz           = 500_000
	DefaultScrollPaceMs      = 100
	DefaultTimeSyncIntervalS = 8 * 60 * 60
	DefaultWeatherPeriodS    = 5 * 60
	DefaultRequestPeriodMin  = 20
	DefaultPingPeriodS       = 5 * 60
	DefaultLocation          = "Prague"
)
