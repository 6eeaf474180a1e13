package biobdriver

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-biobase-guidance-driver/guidance"

	"github.com/stretchr/testify/require"
)

// fakeGateway records every call and decodes transmitted documents.
type fakeGateway struct {
	mu       sync.Mutex
	gtype    guidance.GuidanceType
	openErrs []error
	beginErr error
	calls    []string
	props    map[string]string
	docs     []guidance.Document

	events chan Event
}

func newFakeGateway(g guidance.GuidanceType) *fakeGateway {
	return &fakeGateway{gtype: g, props: map[string]string{}, events: make(chan Event, 16)}
}

func (g *fakeGateway) record(call string) {
	g.mu.Lock()
	g.calls = append(g.calls, call)
	g.mu.Unlock()
}

func (g *fakeGateway) Open(ctx context.Context, id string) (guidance.GuidanceType, error) {
	g.record("open")
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.openErrs) > 0 {
		err := g.openErrs[0]
		g.openErrs = g.openErrs[1:]
		if err != nil {
			return guidance.GuidanceNone, err
		}
	}
	return g.gtype, nil
}

func (g *fakeGateway) Close(ctx context.Context) error {
	g.record("close")
	return nil
}

func (g *fakeGateway) SetProperty(ctx context.Context, name, value string) error {
	g.record("set_property")
	g.mu.Lock()
	g.props[name] = value
	g.mu.Unlock()
	return nil
}

func (g *fakeGateway) GetProperty(ctx context.Context, name string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.props[name], nil
}

func (g *fakeGateway) BeginAcquisition(ctx context.Context, pos guidance.Position, imp guidance.Impression) error {
	g.record("begin")
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.beginErr
}

func (g *fakeGateway) CancelAcquisition(ctx context.Context) error {
	g.record("cancel")
	return nil
}

func (g *fakeGateway) AdjustAcquisition(ctx context.Context) error {
	g.record("adjust")
	return nil
}

func (g *fakeGateway) RequestOverride(ctx context.Context) error {
	g.record("override")
	return nil
}

func (g *fakeGateway) SetOutputData(ctx context.Context, rec guidance.OutputRecord) error {
	doc, err := guidance.Decode(rec.Data[:rec.Size])
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.docs = append(g.docs, doc)
	g.mu.Unlock()
	return nil
}

func (g *fakeGateway) Events() <-chan Event { return g.events }

func (g *fakeGateway) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (g *fakeGateway) count(call string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (g *fakeGateway) documents() []guidance.Document {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]guidance.Document(nil), g.docs...)
}

func (g *fakeGateway) lastDoc(t *testing.T) guidance.Document {
	t.Helper()
	docs := g.documents()
	require.NotEmpty(t, docs)
	return docs[len(docs)-1]
}

func (g *fakeGateway) clearDocs() {
	g.mu.Lock()
	g.docs = nil
	g.mu.Unlock()
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Device.RetryDelay = time.Millisecond
	cfg.Preview.Enabled = false
	cfg.Templates.Dir = "/opt/biobase/templates"
	return cfg
}

// startDevice runs a device loop for the duration of the test.
func startDevice(t *testing.T, cfg Config, gw Gateway) *Device {
	t.Helper()
	d := NewDevice(cfg, gw)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return d
}

func waitState(t *testing.T, d *Device, want DeviceState) {
	t.Helper()
	require.Eventually(t, func() bool { return d.State().State == want },
		2*time.Second, 5*time.Millisecond, "state %s, want %s", d.State().State, want)
}

func openDevice(t *testing.T, d *Device) {
	t.Helper()
	require.NoError(t, d.Submit(context.Background(), Event{Kind: EventCmdOpen}))
	waitState(t, d, StateOpenedNotLive)
}
