package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TransportHTTPS = "https"
	TransportMQTT  = "mqtt"
)

type Config struct {
	RunAddr  string
	LogLevel string

	IoTEndpoint string
	IoTRegion   string
	ThingName   string

	ApplicationID string

	ShadowTransport string
	ShadowTimeout   time.Duration

	MQTTCertFile string
	MQTTKeyFile  string
	MQTTCAFile   string
	MQTTClientID string
}

// Parse reads flags from args; environment variables (and a .env file in
// the working directory) take precedence over flags.
func Parse(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	fs := flag.NewFlagSet("relay-skill", flag.ContinueOnError)
	fs.StringVar(&cfg.RunAddr, "a", ":8080", "address and port")
	fs.StringVar(&cfg.LogLevel, "l", "debug", "log level")
	fs.StringVar(&cfg.IoTEndpoint, "e", "", "AWS IoT data endpoint")
	fs.StringVar(&cfg.IoTRegion, "r", "us-east-1", "AWS IoT region")
	fs.StringVar(&cfg.ThingName, "t", "EdisonDemo", "thing name of the relay device")
	fs.StringVar(&cfg.ApplicationID, "app-id", "", "accepted skill application id, empty accepts any")
	fs.StringVar(&cfg.ShadowTransport, "shadow-transport", TransportHTTPS, "shadow transport: https or mqtt")
	fs.DurationVar(&cfg.ShadowTimeout, "shadow-timeout", 5*time.Second, "timeout of a single shadow update")
	fs.StringVar(&cfg.MQTTCertFile, "mqtt-cert", "", "device certificate for the mqtt transport")
	fs.StringVar(&cfg.MQTTKeyFile, "mqtt-key", "", "device private key for the mqtt transport")
	fs.StringVar(&cfg.MQTTCAFile, "mqtt-ca", "", "root CA for the mqtt transport")
	fs.StringVar(&cfg.MQTTClientID, "mqtt-client-id", "relay-skill", "mqtt client id")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	envString(&cfg.RunAddr, "RUN_ADDR")
	envString(&cfg.LogLevel, "LOG_LEVEL")
	envString(&cfg.IoTEndpoint, "IOT_BROKER_ENDPOINT")
	envString(&cfg.IoTRegion, "IOT_BROKER_REGION")
	envString(&cfg.ThingName, "IOT_THING_NAME")
	envString(&cfg.ApplicationID, "SKILL_APPLICATION_ID")
	envString(&cfg.ShadowTransport, "SHADOW_TRANSPORT")
	envString(&cfg.MQTTCertFile, "MQTT_CERT_FILE")
	envString(&cfg.MQTTKeyFile, "MQTT_KEY_FILE")
	envString(&cfg.MQTTCAFile, "MQTT_CA_FILE")
	envString(&cfg.MQTTClientID, "MQTT_CLIENT_ID")

	if envTimeout := os.Getenv("SHADOW_TIMEOUT"); envTimeout != "" {
		d, err := time.ParseDuration(envTimeout)
		if err != nil {
			return nil, fmt.Errorf("SHADOW_TIMEOUT: %w", err)
		}
		cfg.ShadowTimeout = d
	}

	cfg.IoTEndpoint = strings.ToLower(cfg.IoTEndpoint)

	return cfg, cfg.Validate()
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	var errs []error

	if c.IoTEndpoint == "" {
		errs = append(errs, errors.New("iot endpoint is required"))
	}
	if c.ThingName == "" {
		errs = append(errs, errors.New("thing name is required"))
	}
	if c.ShadowTimeout < 0 {
		errs = append(errs, errors.New("shadow timeout must not be negative"))
	}

	switch c.ShadowTransport {
	case TransportHTTPS:
	case TransportMQTT:
		if c.MQTTCertFile == "" || c.MQTTKeyFile == "" {
			errs = append(errs, errors.New("mqtt transport needs a certificate and a key"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown shadow transport %q", c.ShadowTransport))
	}

	return errors.Join(errs...)
}
