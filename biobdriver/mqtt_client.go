/*
 * Copyright (c) 2021 IBM Corp and others.
 *
 * All rights reserved. This program and the accompanying materials
 * are made available under the terms of the Eclipse Public License v2.0
 * and Eclipse Distribution License v1.0 which accompany this distribution.
 *
 * The Eclipse Public License is available at
 *    https://www.eclipse.org/legal/epl-2.0/
 * and the Eclipse Distribution License is available at
 *   http://www.eclipse.org/org/documents/edl-v10.php.
 *
 * Contributors:
 *    Seth Hoenig
 *    Allan Stockdill-Mander
 *    Mike Robertson
 */

package biobdriver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-biobase-guidance-driver/guidance"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var defaultHandler mqtt.MessageHandler = func(client mqtt.Client, msg mqtt.Message) {
	Logger.Debug("unhandled mqtt message", zap.String("topic", msg.Topic()), zap.Int("size", len(msg.Payload())))
}

func NewMQTTClient(cfg MQTTConfig) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.SetKeepAlive(2 * time.Second)
	opts.SetDefaultPublishHandler(defaultHandler)
	opts.SetPingTimeout(1 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		Logger.Warn("mqtt connection lost", zap.Error(err))
	})

	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, token.Error())
	}
	return c, nil
}

type mqttCommand struct {
	ID   string `json:"id"`
	Args any    `json:"args,omitempty"`
}

type mqttReply struct {
	ID    string `json:"id"`
	Code  int32  `json:"code"`
	Value string `json:"value,omitempty"`
}

type outputArgs struct {
	Format        guidance.FormatType `json:"format"`
	Size          int                 `json:"size"`
	TransactionID int32               `json:"transaction_id"`
	Data          []byte              `json:"data"`
}

// MQTTBridge talks to a gateway that exposes the vendor SDK over MQTT.
// Commands go to <prefix>/cmd/<op> with a request id, replies come back
// on <prefix>/reply and vendor callbacks on <prefix>/event/<kind>.
type MQTTBridge struct {
	client  mqtt.Client
	prefix  string
	qos     byte
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]chan mqttReply

	// vendor callbacks wait in backlog until the pump hands them to
	// events, so the paho router never blocks on a slow device loop
	qmu     sync.Mutex
	backlog []Event
	wake    chan struct{}

	events chan Event
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

func NewMQTTBridge(client mqtt.Client, cfg MQTTConfig) *MQTTBridge {
	return &MQTTBridge{
		client:  client,
		prefix:  strings.TrimSuffix(cfg.Prefix, "/"),
		qos:     cfg.QoS,
		timeout: cfg.Timeout,
		pending: make(map[string]chan mqttReply),
		wake:    make(chan struct{}, 1),
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
	}
}

func (b *MQTTBridge) topic(parts ...string) string {
	return b.prefix + "/" + strings.Join(parts, "/")
}

// Subscribe registers the reply and event handlers.
func (b *MQTTBridge) Subscribe() error {
	if token := b.client.Subscribe(b.topic("reply"), b.qos, b.onReply); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe reply: %w", token.Error())
	}
	if token := b.client.Subscribe(b.topic("event", "#"), b.qos, b.onEvent); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe events: %w", token.Error())
	}
	b.wg.Add(1)
	go b.pump()
	return nil
}

func (b *MQTTBridge) onReply(_ mqtt.Client, msg mqtt.Message) {
	var r mqttReply
	if err := json.Unmarshal(msg.Payload(), &r); err != nil {
		Logger.Warn("bad gateway reply", zap.Error(err))
		return
	}
	b.mu.Lock()
	ch, ok := b.pending[r.ID]
	delete(b.pending, r.ID)
	b.mu.Unlock()
	if !ok {
		Logger.Debug("reply without pending request", zap.String("id", r.ID))
		return
	}
	ch <- r
}

func (b *MQTTBridge) onEvent(_ mqtt.Client, msg mqtt.Message) {
	ev, err := decodeEvent(strings.TrimPrefix(msg.Topic(), b.topic("event")+"/"), msg.Payload())
	if err != nil {
		Logger.Warn("bad gateway event", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}
	select {
	case <-b.done:
		return
	default:
	}

	b.qmu.Lock()
	if n := len(b.backlog); ev.Kind == EventPreview && n > 0 {
		// the loop is behind, a later frame replaces this one
		b.qmu.Unlock()
		Logger.Debug("preview frame dropped", zap.Int("backlog", n))
		return
	}
	b.backlog = append(b.backlog, ev)
	b.qmu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// pump moves queued events to the events channel in arrival order.
func (b *MQTTBridge) pump() {
	defer b.wg.Done()
	for {
		b.qmu.Lock()
		if len(b.backlog) == 0 {
			b.qmu.Unlock()
			select {
			case <-b.wake:
				continue
			case <-b.done:
				return
			}
		}
		ev := b.backlog[0]
		b.backlog[0] = Event{}
		b.backlog = b.backlog[1:]
		b.qmu.Unlock()

		select {
		case b.events <- ev:
		case <-b.done:
			return
		}
	}
}

func (b *MQTTBridge) stop() {
	b.once.Do(func() { close(b.done) })
	b.wg.Wait()
}

// decodeEvent builds an event of kind from its JSON payload.
func decodeEvent(kind string, payload []byte) (Event, error) {
	var ev Event
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &ev); err != nil {
			return Event{}, fmt.Errorf("decode %s event: %w", kind, err)
		}
	}
	ev.Kind = EventKind(kind)
	switch ev.Kind {
	case EventDeviceCount, EventPreview, EventQuality, EventObjectCount,
		EventAcquisitionStart, EventAcquisitionComplete, EventDataAvailable,
		EventUserInput, EventOutputAck, EventInitProgress:
		return ev, nil
	}
	return Event{}, fmt.Errorf("unknown event kind %q", kind)
}

func (b *MQTTBridge) call(ctx context.Context, op string, args any) (mqttReply, error) {
	id := uuid.NewString()
	ch := make(chan mqttReply, 1)
	b.mu.Lock()
	b.pending[id] = ch
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
	}()

	if err := publishJsonMsg(b.topic("cmd", op), mqttCommand{ID: id, Args: args}, b.client); err != nil {
		return mqttReply{}, fmt.Errorf("%s: %w", op, err)
	}

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r, vendorResult(op, r.Code)
	case <-timer.C:
		return mqttReply{}, fmt.Errorf("%s: %w", op, ErrTimeout)
	case <-ctx.Done():
		return mqttReply{}, ctx.Err()
	}
}

func (b *MQTTBridge) Open(ctx context.Context, id string) (guidance.GuidanceType, error) {
	r, err := b.call(ctx, "open", map[string]string{"device_id": id})
	if err != nil {
		return guidance.GuidanceNone, err
	}
	return guidance.ParseGuidanceType(r.Value)
}

func (b *MQTTBridge) Close(ctx context.Context) error {
	_, err := b.call(ctx, "close", nil)
	return err
}

func (b *MQTTBridge) SetProperty(ctx context.Context, name, value string) error {
	_, err := b.call(ctx, "set_property", map[string]string{"name": name, "value": value})
	return err
}

func (b *MQTTBridge) GetProperty(ctx context.Context, name string) (string, error) {
	r, err := b.call(ctx, "get_property", map[string]string{"name": name})
	return r.Value, err
}

func (b *MQTTBridge) BeginAcquisition(ctx context.Context, pos guidance.Position, imp guidance.Impression) error {
	_, err := b.call(ctx, "begin_acquisition", map[string]string{
		"position":   string(pos),
		"impression": string(imp),
	})
	return err
}

func (b *MQTTBridge) CancelAcquisition(ctx context.Context) error {
	_, err := b.call(ctx, "cancel_acquisition", nil)
	return err
}

func (b *MQTTBridge) AdjustAcquisition(ctx context.Context) error {
	_, err := b.call(ctx, "adjust_acquisition", nil)
	return err
}

func (b *MQTTBridge) RequestOverride(ctx context.Context) error {
	_, err := b.call(ctx, "request_acquisition_override", nil)
	return err
}

func (b *MQTTBridge) SetOutputData(ctx context.Context, rec guidance.OutputRecord) error {
	_, err := b.call(ctx, "set_output_data", outputArgs{
		Format:        rec.Format,
		Size:          rec.Size,
		TransactionID: rec.TransactionID,
		Data:          rec.Data[:rec.Size],
	})
	return err
}

func (b *MQTTBridge) Events() <-chan Event { return b.events }

func (b *MQTTBridge) Run(ctx context.Context) error {
	<-ctx.Done()
	b.stop()
	if token := b.client.Unsubscribe(b.topic("reply"), b.topic("event", "#")); token.WaitTimeout(time.Second) && token.Error() != nil {
		Logger.Warn("unsubscribe", zap.Error(token.Error()))
	}
	b.client.Disconnect(250)
	return nil
}

func (b *MQTTBridge) PublishState(msg StateMessage) error {
	return publishJsonMsg(b.topic("state"), msg, b.client)
}

func (b *MQTTBridge) PublishPreview(jpeg []byte) error {
	return publishImage(b.topic("preview"), jpeg, b.client)
}

func publishImage(topic string, jpeg []byte, mqttClient mqtt.Client) error {
	// Publish image (jpg/base64)
	var b64bytes []byte = make([]byte, base64.StdEncoding.EncodedLen(len(jpeg)))
	base64.StdEncoding.Encode(b64bytes, jpeg)
	mqttClient.Publish(topic, 0, false, b64bytes)
	return nil
}

func publishJsonMsg(topic string, obj interface{}, mqttClient mqtt.Client) error {
	msg, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	mqttClient.Publish(topic, 2, false, msg)
	return err
}
