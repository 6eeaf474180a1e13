package biobdriver

import (
	"context"
	"fmt"

	"go-biobase-guidance-driver/guidance"
)

// Gateway is the host of the vendor SDK. Calls block until the device
// answered; vendor return codes come back as *VendorError.
type Gateway interface {
	guidance.OutputPort

	Open(ctx context.Context, id string) (guidance.GuidanceType, error)
	Close(ctx context.Context) error
	SetProperty(ctx context.Context, name, value string) error
	GetProperty(ctx context.Context, name string) (string, error)
	BeginAcquisition(ctx context.Context, pos guidance.Position, imp guidance.Impression) error
	CancelAcquisition(ctx context.Context) error
	AdjustAcquisition(ctx context.Context) error
	// RequestOverride forces the capture of the current frame, bypassing
	// autocapture.
	RequestOverride(ctx context.Context) error

	// Events delivers the vendor callbacks in the order they arrived.
	Events() <-chan Event
	// Run serves the connection until ctx is done.
	Run(ctx context.Context) error
}

// NewGateway connects the bridge selected in cfg.
func NewGateway(cfg BridgeConfig) (Gateway, error) {
	switch cfg.Kind {
	case BridgeMQTT:
		client, err := NewMQTTClient(cfg.MQTT)
		if err != nil {
			return nil, err
		}
		b := NewMQTTBridge(client, cfg.MQTT)
		if err := b.Subscribe(); err != nil {
			client.Disconnect(250)
			return nil, err
		}
		return b, nil
	case BridgeDBus:
		return NewDBusBridge(cfg.DBus)
	}
	return nil, fmt.Errorf("unknown bridge kind %q", cfg.Kind)
}
