package biobdriver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go-biobase-guidance-driver/guidance"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

// fakeBroker answers gateway commands with the configured codes.
type fakeBroker struct {
	mqtt.Client

	mu        sync.Mutex
	handlers  map[string]mqtt.MessageHandler
	published map[string][][]byte
	codes     map[string]int32
	values    map[string]string
	silent    map[string]bool

	// router, when set, delivers messages one at a time like paho's
	// ordered router
	router chan func()
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{
		handlers:  map[string]mqtt.MessageHandler{},
		published: map[string][][]byte{},
		codes:     map[string]int32{},
		values:    map[string]string{},
		silent:    map[string]bool{},
	}
}

func (b *fakeBroker) Subscribe(topic string, qos byte, cb mqtt.MessageHandler) mqtt.Token {
	b.mu.Lock()
	b.handlers[topic] = cb
	b.mu.Unlock()
	return doneToken{}
}

func (b *fakeBroker) Unsubscribe(topics ...string) mqtt.Token { return doneToken{} }

func (b *fakeBroker) Disconnect(uint) {}

func (b *fakeBroker) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	data := payload.([]byte)
	b.mu.Lock()
	b.published[topic] = append(b.published[topic], data)
	reply := b.handlers["biobase/reply"]
	b.mu.Unlock()

	op, ok := strings.CutPrefix(topic, "biobase/cmd/")
	if !ok || reply == nil {
		return doneToken{}
	}
	var cmd mqttCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return doneToken{err: err}
	}
	b.mu.Lock()
	silent := b.silent[op]
	r := mqttReply{ID: cmd.ID, Code: b.codes[op], Value: b.values[op]}
	b.mu.Unlock()
	if !silent {
		out, _ := json.Marshal(r)
		b.deliver(func() { reply(b, fakeMessage{topic: "biobase/reply", payload: out}) })
	}
	return doneToken{}
}

func (b *fakeBroker) deliver(f func()) {
	if b.router != nil {
		b.router <- f
		return
	}
	go f()
}

// serialize routes every delivery through a single goroutine until the
// test ends.
func (b *fakeBroker) serialize(t *testing.T) {
	b.router = make(chan func(), 512)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for f := range b.router {
			f()
		}
	}()
	t.Cleanup(func() {
		close(b.router)
		<-done
	})
}

func (b *fakeBroker) emit(topic string, payload string) {
	b.mu.Lock()
	h := b.handlers["biobase/event/#"]
	b.mu.Unlock()
	h(b, fakeMessage{topic: topic, payload: []byte(payload)})
}

func (b *fakeBroker) lastPublished(topic string) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	msgs := b.published[topic]
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

func newTestBridge(t *testing.T) (*MQTTBridge, *fakeBroker) {
	t.Helper()
	broker := newFakeBroker()
	cfg := DefaultConfig().Bridge.MQTT
	cfg.Prefix = "biobase/"
	cfg.Timeout = 200 * time.Millisecond
	b := NewMQTTBridge(broker, cfg)
	require.NoError(t, b.Subscribe())
	t.Cleanup(b.stop)
	return b, broker
}

func TestMQTTBridgeCalls(t *testing.T) {
	ctx := context.Background()
	b, broker := newTestBridge(t)
	broker.values["open"] = "touch"
	broker.values["get_property"] = "500"

	g, err := b.Open(ctx, "dev0")
	require.NoError(t, err)
	assert.Equal(t, guidance.GuidanceTouchDisplay, g)

	v, err := b.GetProperty(ctx, PropResolution)
	require.NoError(t, err)
	assert.Equal(t, "500", v)

	require.NoError(t, b.BeginAcquisition(ctx, guidance.PositionRightThumb, guidance.ImpressionRoll))
	var cmd struct {
		Args map[string]string `json:"args"`
	}
	require.NoError(t, json.Unmarshal(broker.lastPublished("biobase/cmd/begin_acquisition"), &cmd))
	assert.Equal(t, map[string]string{"position": "RightThumb", "impression": "Roll"}, cmd.Args)

	require.NoError(t, b.RequestOverride(ctx))
	assert.NotNil(t, broker.lastPublished("biobase/cmd/request_acquisition_override"))
	assert.Empty(t, b.pending)
}

func TestMQTTBridgeVendorCodes(t *testing.T) {
	ctx := context.Background()
	b, broker := newTestBridge(t)
	broker.codes["begin_acquisition"] = int32(guidance.ReplacePad)
	broker.codes["cancel_acquisition"] = int32(guidance.NoCaptureActive)

	err := b.BeginAcquisition(ctx, guidance.PositionRightThumb, guidance.ImpressionFlat)
	assert.True(t, IsWarning(err))
	code, ok := VendorCode(err)
	require.True(t, ok)
	assert.Equal(t, guidance.ReplacePad, code)

	err = b.CancelAcquisition(ctx)
	assert.True(t, IsFailure(err))
}

func TestMQTTBridgeTimeout(t *testing.T) {
	b, broker := newTestBridge(t)
	broker.silent["adjust_acquisition"] = true
	err := b.AdjustAcquisition(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Empty(t, b.pending)
}

func TestMQTTBridgeSetOutputData(t *testing.T) {
	b, broker := newTestBridge(t)
	enc := guidance.NewEncoder(b)
	require.NoError(t, enc.BeepOK(context.Background()))

	var cmd struct {
		Args outputArgs `json:"args"`
	}
	require.NoError(t, json.Unmarshal(broker.lastPublished("biobase/cmd/set_output_data"), &cmd))
	assert.Equal(t, guidance.FormatXML, cmd.Args.Format)
	assert.Equal(t, len(cmd.Args.Data), cmd.Args.Size)
	assert.Contains(t, string(cmd.Args.Data), `<Beeper Pattern="3" Volume="100">`)
}

func TestMQTTBridgeEvents(t *testing.T) {
	b, broker := newTestBridge(t)
	broker.emit("biobase/event/quality", `{"qualities":[0,2,7]}`)
	broker.emit("biobase/event/bogus", `{}`)
	broker.emit("biobase/event/data_available", `{"final":true,"status":1024,"pad_score":0.5}`)

	ev := <-b.Events()
	assert.Equal(t, EventQuality, ev.Kind)
	assert.Equal(t, []guidance.QualityState{guidance.QualityGood, guidance.QualityTooLight, guidance.QualityTrackingNotOK}, ev.Qualities)

	ev = <-b.Events()
	assert.Equal(t, EventDataAvailable, ev.Kind)
	assert.True(t, ev.Final)
	assert.Equal(t, guidance.RollLiftedTip, ev.Status)
	assert.Len(t, b.Events(), 0)
}

func nextEvent(t *testing.T, b *MQTTBridge) Event {
	t.Helper()
	select {
	case ev := <-b.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
		return Event{}
	}
}

func TestMQTTBridgeEventBurstKeepsRepliesFlowing(t *testing.T) {
	b, broker := newTestBridge(t)
	broker.serialize(t)

	// nobody reads events while the loop waits for its reply
	burst := 2 * cap(b.events)
	for i := 1; i <= burst; i++ {
		payload := fmt.Sprintf(`{"object_count":%d}`, i)
		broker.deliver(func() { broker.emit("biobase/event/object_count", payload) })
	}
	require.NoError(t, b.SetProperty(context.Background(), PropAutocapture, "1"))

	// previews are dropped while the loop is behind
	broker.deliver(func() { broker.emit("biobase/event/preview", `{"width":1,"height":1,"data":"AA=="}`) })
	broker.deliver(func() { broker.emit("biobase/event/output_ack", "") })

	for i := 1; i <= burst; i++ {
		ev := nextEvent(t, b)
		require.Equal(t, EventObjectCount, ev.Kind)
		assert.Equal(t, i, ev.ObjectCount)
	}
	assert.Equal(t, EventOutputAck, nextEvent(t, b).Kind)
}

func TestMQTTBridgeRunStops(t *testing.T) {
	b, broker := newTestBridge(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- b.Run(ctx) }()
	cancel()
	require.NoError(t, <-done)

	// handlers no longer block once the bridge stopped
	for i := 0; i < cap(b.events)+1; i++ {
		broker.emit("biobase/event/output_ack", "")
	}
}

func TestPublishState(t *testing.T) {
	b, broker := newTestBridge(t)
	require.NoError(t, b.PublishState(StateMessage{State: StateOpenedLive, Guidance: "tft"}))
	var msg StateMessage
	require.NoError(t, json.Unmarshal(broker.lastPublished("biobase/state"), &msg))
	assert.Equal(t, StateOpenedLive, msg.State)

	require.NoError(t, b.PublishPreview([]byte{0xff, 0xd8}))
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8}), string(broker.lastPublished("biobase/preview")))
}
