package biobdriver

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BridgeMQTT = "mqtt"
	BridgeDBus = "dbus"
)

type DeviceConfig struct {
	ID          string        `yaml:"id"`
	OpenRetries int           `yaml:"open_retries"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
}

type MQTTConfig struct {
	Broker   string        `yaml:"broker"`
	ClientID string        `yaml:"client_id"`
	Prefix   string        `yaml:"prefix"`
	Timeout  time.Duration `yaml:"timeout"`
	QoS      byte          `yaml:"qos"`
}

type DBusConfig struct {
	// Bus is "system" or "session".
	Bus  string `yaml:"bus"`
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type BridgeConfig struct {
	Kind string     `yaml:"kind"`
	MQTT MQTTConfig `yaml:"mqtt"`
	DBus DBusConfig `yaml:"dbus"`
}

type TemplatesConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// AcquisitionConfig holds the device properties written before every
// acquisition.
type AcquisitionConfig struct {
	Autocapture          bool `yaml:"autocapture"`
	AutocaptureOverride  bool `yaml:"autocapture_override"`
	SpoofDetection       bool `yaml:"spoof_detection"`
	Resolution           int  `yaml:"resolution"`
	Flex                 bool `yaml:"flex"`
	ContinueOnReplacePad bool `yaml:"continue_on_replace_pad"`
}

type APIConfig struct {
	Addr string `yaml:"addr"`
}

type PreviewConfig struct {
	Enabled bool `yaml:"enabled"`
	Overlay bool `yaml:"overlay"`
}

// Config is the guidanced.yaml file.
type Config struct {
	Device      DeviceConfig      `yaml:"device"`
	Bridge      BridgeConfig      `yaml:"bridge"`
	Templates   TemplatesConfig   `yaml:"templates"`
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	API         APIConfig         `yaml:"api"`
	Preview     PreviewConfig     `yaml:"preview"`
}

func DefaultConfig() Config {
	return Config{
		Device: DeviceConfig{OpenRetries: 3, RetryDelay: 2 * time.Second},
		Bridge: BridgeConfig{
			Kind: BridgeMQTT,
			MQTT: MQTTConfig{
				Broker:   "tcp://127.0.0.1:1883",
				ClientID: "guidanced",
				Prefix:   "biobase",
				Timeout:  30 * time.Second,
				QoS:      2,
			},
			DBus: DBusConfig{
				Bus:  "system",
				Name: "org.biobase.Gateway1",
				Path: "/org/biobase/Gateway1",
			},
		},
		Templates: TemplatesConfig{Dir: "Templates", Watch: true},
		Acquisition: AcquisitionConfig{
			Autocapture:    true,
			SpoofDetection: false,
			Resolution:     500,
		},
		API:     APIConfig{Addr: ":8080"},
		Preview: PreviewConfig{Enabled: true, Overlay: true},
	}
}

// LoadConfig reads path over the defaults and applies the environment
// overrides. An empty path only applies defaults and environment.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GUIDANCE_BRIDGE"); v != "" {
		Sugar.Infof("Setting bridge kind provided in GUIDANCE_BRIDGE env variable: %s", v)
		cfg.Bridge.Kind = v
	}
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		Sugar.Infof("Setting broker provided in MQTT_BROKER env variable: %s", v)
		cfg.Bridge.MQTT.Broker = v
	}
	if v := os.Getenv("TEMPLATES_DIR"); v != "" {
		cfg.Templates.Dir = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.API.Addr = v
	}
	if v := os.Getenv("DEVICE_ID"); v != "" {
		cfg.Device.ID = v
	}
}

func (c Config) Validate() error {
	var errs []error
	switch c.Bridge.Kind {
	case BridgeMQTT:
		if c.Bridge.MQTT.Broker == "" {
			errs = append(errs, errors.New("bridge.mqtt.broker is empty"))
		}
		if c.Bridge.MQTT.QoS > 2 {
			errs = append(errs, fmt.Errorf("bridge.mqtt.qos %d out of range", c.Bridge.MQTT.QoS))
		}
	case BridgeDBus:
		if c.Bridge.DBus.Bus != "system" && c.Bridge.DBus.Bus != "session" {
			errs = append(errs, fmt.Errorf("bridge.dbus.bus must be system or session, got %q", c.Bridge.DBus.Bus))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown bridge kind %q", c.Bridge.Kind))
	}
	switch c.Acquisition.Resolution {
	case 500, 1000:
	default:
		errs = append(errs, fmt.Errorf("acquisition.resolution must be 500 or 1000, got %d", c.Acquisition.Resolution))
	}
	if c.Device.OpenRetries < 1 {
		errs = append(errs, errors.New("device.open_retries must be at least 1"))
	}
	return errors.Join(errs...)
}
