// Package shadowconn opens the shadow transport selected in the config.
package shadowconn

import (
	"context"
	"fmt"

	"bitbucket.org/sotavant/relay-skill/internal/config"
	"bitbucket.org/sotavant/relay-skill/internal/shadow"
	"bitbucket.org/sotavant/relay-skill/internal/shadow/iotdata"
	"bitbucket.org/sotavant/relay-skill/internal/shadow/mqtt"
	"go.uber.org/zap"
)

// Open returns the shadow client and a func releasing its connection.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (shadow.Client, func(), error) {
	switch cfg.ShadowTransport {
	case config.TransportHTTPS:
		c, err := iotdata.New(ctx, iotdata.Options{
			Endpoint: cfg.IoTEndpoint,
			Region:   cfg.IoTRegion,
		})
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil

	case config.TransportMQTT:
		c, err := mqtt.New(mqtt.Options{
			Endpoint: cfg.IoTEndpoint,
			ClientID: cfg.MQTTClientID,
			CertFile: cfg.MQTTCertFile,
			KeyFile:  cfg.MQTTKeyFile,
			CAFile:   cfg.MQTTCAFile,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown shadow transport %q", cfg.ShadowTransport)
}
