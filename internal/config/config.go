package config

import (
	"fmt"
	"time"

	"github.com/matjam/inkyslide/internal/types"
	"github.com/spf13/viper"
)

// Config is the resolved configuration handed to the slideshow and the
// collaborator commands. It is decoded from viper, so every field can come
// from the config file, the environment or a default.
type Config struct {
	PhotoDir        string  `mapstructure:"photo_dir"`
	FontPath        string  `mapstructure:"font_path"`
	IntervalSeconds int     `mapstructure:"interval_seconds"`
	FontSize        float64 `mapstructure:"font_size"`
	DateFontSize    float64 `mapstructure:"date_font_size"`
	Margin          int     `mapstructure:"margin"`
	BackgroundPad   int     `mapstructure:"background_padding"`
	TextPad         int     `mapstructure:"text_padding"`
	Contrast        float64 `mapstructure:"contrast"`
	Overlay         string  `mapstructure:"overlay"`

	StateFile        string `mapstructure:"state_file"`
	CounterFile      string `mapstructure:"counter_file"`
	HeartbeatFile    string `mapstructure:"heartbeat_file"`
	HeartbeatOnStart bool   `mapstructure:"heartbeat_on_start"`

	Drivers     []string `mapstructure:"drivers"`
	Width       int      `mapstructure:"width"`
	Height      int      `mapstructure:"height"`
	PreviewPath string   `mapstructure:"preview_path"`

	RetryAttempts     int `mapstructure:"retry_attempts"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds"`
	StallSeconds      int `mapstructure:"stall_seconds"`
	ErrorDelaySeconds int `mapstructure:"error_delay_seconds"`

	LogDir string `mapstructure:"log_dir"`
	Debug  bool   `mapstructure:"debug"`

	RawDir      string `mapstructure:"raw_dir"`
	JPEGQuality int    `mapstructure:"jpeg_quality"`

	NtfyURL                   string `mapstructure:"ntfy_url"`
	ServiceName               string `mapstructure:"service_name"`
	HeartbeatThresholdSeconds int    `mapstructure:"heartbeat_threshold_seconds"`
	Gateway                   string `mapstructure:"gateway"`
	WifiDevice                string `mapstructure:"wifi_device"`
	ThrottleStateFile         string `mapstructure:"throttle_state_file"`
	ThrottleHistoryFile       string `mapstructure:"throttle_history_file"`
}

// SetDefaults registers the default value of every recognized key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("photo_dir", "photos")
	v.SetDefault("font_path", "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf")
	v.SetDefault("interval_seconds", 1800)
	v.SetDefault("font_size", 20)
	v.SetDefault("date_font_size", 24)
	v.SetDefault("margin", 25)
	v.SetDefault("background_padding", 15)
	v.SetDefault("text_padding", 12)
	v.SetDefault("contrast", 1.1)
	v.SetDefault("overlay", string(types.OverlayStatus))

	v.SetDefault("state_file", "~/.cache/slideshow_state_133.json")
	v.SetDefault("counter_file", "~/.logs/slideshow_counter_133.txt")
	v.SetDefault("heartbeat_file", "/tmp/inky_slideshow_heartbeat")
	v.SetDefault("heartbeat_on_start", false)

	v.SetDefault("drivers", []string{"el133uf1", "waveshare2in13v2"})
	v.SetDefault("width", 1600)
	v.SetDefault("height", 1200)
	v.SetDefault("preview_path", "")

	v.SetDefault("retry_attempts", 3)
	v.SetDefault("retry_delay_seconds", 5)
	v.SetDefault("stall_seconds", 60)
	v.SetDefault("error_delay_seconds", 10)

	v.SetDefault("log_dir", "~/.logs/slideshow_logs")
	v.SetDefault("debug", false)

	v.SetDefault("raw_dir", "photos_raw")
	v.SetDefault("jpeg_quality", 90)

	v.SetDefault("ntfy_url", "")
	v.SetDefault("service_name", "inky-slideshow.service")
	v.SetDefault("heartbeat_threshold_seconds", 7200)
	v.SetDefault("gateway", "192.168.3.1")
	v.SetDefault("wifi_device", "wlan0")
	v.SetDefault("throttle_state_file", "~/.cache/throttled_state.json")
	v.SetDefault("throttle_history_file", "~/.logs/throttled_history.jsonl")

	// NTFY_TOPIC_URL is the older name of the variable
	_ = v.BindEnv("ntfy_url", "NTFY_URL", "NTFY_TOPIC_URL")
}

// Load decodes v into a Config, expands "~" in paths and validates the result.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	for _, p := range []*string{
		&cfg.PhotoDir, &cfg.FontPath, &cfg.StateFile, &cfg.CounterFile,
		&cfg.HeartbeatFile, &cfg.PreviewPath, &cfg.LogDir, &cfg.RawDir,
		&cfg.ThrottleStateFile, &cfg.ThrottleHistoryFile,
	} {
		*p = CanonicalPath(*p)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.PhotoDir == "" {
		return fmt.Errorf("photo_dir must not be empty")
	}
	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("interval_seconds must be positive, got %d", c.IntervalSeconds)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be at least 1, got %d", c.RetryAttempts)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid fallback resolution %dx%d", c.Width, c.Height)
	}
	if c.Contrast <= 0 {
		return fmt.Errorf("contrast must be positive, got %v", c.Contrast)
	}
	switch types.OverlayVariant(c.Overlay) {
	case types.OverlayStatus, types.OverlayCounter:
	default:
		return fmt.Errorf("unknown overlay %q (want %q or %q)", c.Overlay, types.OverlayStatus, types.OverlayCounter)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be within 1..100, got %d", c.JPEGQuality)
	}
	return nil
}

func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

func (c Config) StallDelay() time.Duration {
	return time.Duration(c.StallSeconds) * time.Second
}

func (c Config) ErrorDelay() time.Duration {
	return time.Duration(c.ErrorDelaySeconds) * time.Second
}

func (c Config) HeartbeatThreshold() time.Duration {
	return time.Duration(c.HeartbeatThresholdSeconds) * time.Second
}

func (c Config) OverlayVariant() types.OverlayVariant {
	return types.OverlayVariant(c.Overlay)
}
