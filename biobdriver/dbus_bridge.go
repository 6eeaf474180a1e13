package biobdriver

import (
	"context"
	"fmt"

	"go-biobase-guidance-driver/guidance"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const gatewayIface = "org.biobase.Gateway1"

// DBusBridge talks to a gateway object on the system or session bus.
// Every method returns an int32 vendor code first; callbacks arrive as
// Event(kind, json) signals.
type DBusBridge struct {
	conn   *dbus.Conn
	obj    dbus.BusObject
	path   dbus.ObjectPath
	events chan Event
}

func NewDBusBridge(cfg DBusConfig) (*DBusBridge, error) {
	var (
		conn *dbus.Conn
		err  error
	)
	if cfg.Bus == "session" {
		conn, err = dbus.SessionBus()
	} else {
		conn, err = dbus.SystemBus()
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s bus: %w", cfg.Bus, err)
	}
	path := dbus.ObjectPath(cfg.Path)
	if !path.IsValid() {
		conn.Close()
		return nil, fmt.Errorf("invalid object path %q", cfg.Path)
	}
	return &DBusBridge{
		conn:   conn,
		obj:    conn.Object(cfg.Name, path),
		path:   path,
		events: make(chan Event, 64),
	}, nil
}

func (b *DBusBridge) call(ctx context.Context, method string, out *string, args ...interface{}) error {
	var code int32
	call := b.obj.CallWithContext(ctx, gatewayIface+"."+method, 0, args...)
	if call.Err != nil {
		return fmt.Errorf("%s: %w", method, call.Err)
	}
	var err error
	if out != nil {
		err = call.Store(&code, out)
	} else {
		err = call.Store(&code)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return vendorResult(method, code)
}

func (b *DBusBridge) Open(ctx context.Context, id string) (guidance.GuidanceType, error) {
	var name string
	if err := b.call(ctx, "Open", &name, id); err != nil {
		return guidance.GuidanceNone, err
	}
	return guidance.ParseGuidanceType(name)
}

func (b *DBusBridge) Close(ctx context.Context) error {
	return b.call(ctx, "Close", nil)
}

func (b *DBusBridge) SetProperty(ctx context.Context, name, value string) error {
	return b.call(ctx, "SetProperty", nil, name, value)
}

func (b *DBusBridge) GetProperty(ctx context.Context, name string) (string, error) {
	var value string
	err := b.call(ctx, "GetProperty", &value, name)
	return value, err
}

func (b *DBusBridge) BeginAcquisition(ctx context.Context, pos guidance.Position, imp guidance.Impression) error {
	return b.call(ctx, "BeginAcquisition", nil, string(pos), string(imp))
}

func (b *DBusBridge) CancelAcquisition(ctx context.Context) error {
	return b.call(ctx, "CancelAcquisition", nil)
}

func (b *DBusBridge) AdjustAcquisition(ctx context.Context) error {
	return b.call(ctx, "AdjustAcquisition", nil)
}

func (b *DBusBridge) RequestOverride(ctx context.Context) error {
	return b.call(ctx, "RequestAcquisitionOverride", nil)
}

func (b *DBusBridge) SetOutputData(ctx context.Context, rec guidance.OutputRecord) error {
	return b.call(ctx, "SetOutputData", nil, rec.Data[:rec.Size], int32(rec.Format), rec.TransactionID)
}

func (b *DBusBridge) Events() <-chan Event { return b.events }

// Run forwards gateway signals as events until ctx is done.
func (b *DBusBridge) Run(ctx context.Context) error {
	defer b.conn.Close()

	rule := fmt.Sprintf("type='signal',interface='%s',member='Event',path='%s'", gatewayIface, b.path)
	if call := b.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.AddMatch", 0, rule); call.Err != nil {
		return fmt.Errorf("add match: %w", call.Err)
	}
	sigCh := make(chan *dbus.Signal, 16)
	b.conn.Signal(sigCh)
	defer b.conn.RemoveSignal(sigCh)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-sigCh:
			if !ok {
				return fmt.Errorf("dbus connection closed")
			}
			ev, err := decodeSignal(sig)
			if err != nil {
				Logger.Warn("bad gateway signal", zap.String("name", sig.Name), zap.Error(err))
				continue
			}
			select {
			case b.events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func decodeSignal(sig *dbus.Signal) (Event, error) {
	if sig.Name != gatewayIface+".Event" {
		return Event{}, fmt.Errorf("unexpected signal %s", sig.Name)
	}
	if len(sig.Body) != 2 {
		return Event{}, fmt.Errorf("signal body has %d fields", len(sig.Body))
	}
	kind, ok := sig.Body[0].(string)
	if !ok {
		return Event{}, fmt.Errorf("signal kind is %T", sig.Body[0])
	}
	payload, ok := sig.Body[1].(string)
	if !ok {
		return Event{}, fmt.Errorf("signal payload is %T", sig.Body[1])
	}
	return decodeEvent(kind, []byte(payload))
}
