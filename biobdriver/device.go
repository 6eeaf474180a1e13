package biobdriver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-biobase-guidance-driver/guidance"

	"go.uber.org/zap"
)

// warnings after which opening the device is retried
var openRetryCodes = map[guidance.ReturnCode]bool{
	guidance.OpticsSurfaceDirty:              true,
	guidance.ReplacePad:                      true,
	guidance.ObjectOnPlatenDuringCalibration: true,
}

// Device runs the acquisition state machine of one device. All state is
// owned by the Run loop; other goroutines talk to it through Post and
// Submit.
type Device struct {
	cfg     Config
	gw      Gateway
	enc     *guidance.Encoder
	preview *PreviewEncoder
	pubs    []Publisher

	posted chan Event
	stop   chan struct{}
	wg     sync.WaitGroup

	// loop state
	state    DeviceState
	gtype    guidance.GuidanceType
	renderer guidance.Renderer
	session  *guidance.AcquisitionSession
	prompt   string

	mu       sync.RWMutex
	snapshot StateMessage
}

func NewDevice(cfg Config, gw Gateway, pubs ...Publisher) *Device {
	d := &Device{
		cfg:    cfg,
		gw:     gw,
		enc:    guidance.NewEncoder(gw),
		pubs:   pubs,
		posted: make(chan Event, 32),
		stop:   make(chan struct{}),
		state:  StateNotConnected,
	}
	if cfg.Preview.Enabled {
		d.preview = NewPreviewEncoder(cfg.Preview.Overlay)
	}
	d.snapshot = d.buildSnapshot()
	return d
}

// Post queues ev for the loop without waiting for it to be handled.
func (d *Device) Post(ev Event) {
	select {
	case d.posted <- ev:
	case <-d.stop:
	}
}

// Submit queues ev and waits until the loop handled it.
func (d *Device) Submit(ctx context.Context, ev Event) error {
	ev.reply = make(chan error, 1)
	select {
	case d.posted <- ev:
	case <-d.stop:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-ev.reply:
		return err
	case <-d.stop:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the last published snapshot.
func (d *Device) State() StateMessage {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

// Run consumes gateway and posted events until ctx is done.
func (d *Device) Run(ctx context.Context) error {
	defer d.wg.Wait()
	defer close(d.stop)

	gwEvents := d.gw.Events()
	for {
		var ev Event
		select {
		case <-ctx.Done():
			return nil
		case ev = <-gwEvents:
		case ev = <-d.posted:
		}
		err := d.handle(ctx, ev)
		if err != nil {
			Logger.Warn("event failed", zap.String("kind", string(ev.Kind)), zap.Error(err))
		}
		if ev.reply != nil {
			ev.reply <- err
		}
	}
}

func (d *Device) handle(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case EventDeviceCount:
		d.onDeviceCount(ev.DeviceCount)
	case EventCmdOpen:
		return d.open(ctx)
	case EventOpenResult:
		d.onOpened(ctx, ev.Guidance, ev.Err)
	case EventCmdClose:
		return d.close(ctx)
	case EventCmdAcquire:
		return d.acquire(ctx, ev.Position, ev.Impression)
	case EventCmdCancel:
		return d.cancel(ctx)
	case EventCmdOverride:
		return d.override(ctx)
	case EventCmdBeep:
		if !d.state.Opened() {
			return ErrNotOpen
		}
		return d.enc.BeepOK(ctx)
	case EventCmdOverlay:
		if !d.state.Opened() {
			return ErrNotOpen
		}
		d.prompt = ev.Text
		return d.enc.Overlay(ctx, ev.Text)
	case EventAcquisitionStart:
		Logger.Debug("acquisition started")
	case EventAcquisitionComplete:
		d.onAcquisitionComplete(ctx)
	case EventQuality:
		d.onQuality(ctx, ev.Qualities)
	case EventObjectCount:
		Logger.Debug("object count", zap.Int("count", ev.ObjectCount))
	case EventDataAvailable:
		d.onDataAvailable(ctx, ev)
	case EventUserInput:
		return d.onUserInput(ctx, ev.Key)
	case EventPreview:
		d.onPreview(ev.Frame)
	case EventOutputAck:
		Logger.Debug("output acknowledged")
	case EventInitProgress:
		Logger.Info("device init progress", zap.Int("percent", ev.Progress))
	case EventTemplatesChanged:
		if r, ok := d.renderer.(guidance.Refresher); ok {
			return r.Refresh(ctx)
		}
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return nil
}

func (d *Device) setState(s DeviceState) {
	if d.state != s {
		Logger.Info("device state", zap.String("from", string(d.state)), zap.String("to", string(s)))
	}
	d.state = s
	d.publish()
}

func (d *Device) buildSnapshot() StateMessage {
	msg := StateMessage{State: d.state, Guidance: d.gtype.String(), Keys: guidance.KeysNone.String()}
	if s := d.session; s != nil {
		msg.SessionID = s.ID
		msg.Position = s.Position
		msg.Impression = s.Impression
		msg.Keys = s.Keys.String()
		msg.Indicators = s.Indicators()
		msg.Status = int32(s.Status)
		msg.Awaiting = s.AwaitingDecision
	}
	return msg
}

func (d *Device) publish() {
	msg := d.buildSnapshot()
	d.mu.Lock()
	d.snapshot = msg
	d.mu.Unlock()
	for _, p := range d.pubs {
		if err := p.PublishState(msg); err != nil {
			Logger.Warn("publish state", zap.Error(err))
		}
	}
}

func (d *Device) onDeviceCount(n int) {
	Logger.Info("device count changed", zap.Int("count", n))
	switch {
	case n == 0:
		// device removed, the handle is gone with it
		d.renderer, d.session = nil, nil
		d.setState(StateNotConnected)
	case d.state == StateNotConnected:
		d.setState(StateConnectedNotOpened)
	}
}

// open starts the open worker. Opening blocks for a long time, so the
// result comes back as an EventOpenResult.
func (d *Device) open(ctx context.Context) error {
	switch {
	case d.state == StateOpening:
		return ErrBusy
	case d.state.Opened():
		return nil
	}
	d.setState(StateOpening)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		g, err := d.openWithRetry(ctx)
		d.Post(Event{Kind: EventOpenResult, Guidance: g, Err: err})
	}()
	return nil
}

func (d *Device) openWithRetry(ctx context.Context) (guidance.GuidanceType, error) {
	var err error
	for attempt := 1; attempt <= d.cfg.Device.OpenRetries; attempt++ {
		var g guidance.GuidanceType
		g, err = d.gw.Open(ctx, d.cfg.Device.ID)
		if err == nil {
			return g, nil
		}
		code, ok := VendorCode(err)
		if !ok || !openRetryCodes[code] {
			return guidance.GuidanceNone, err
		}
		Logger.Warn("open returned a warning, retrying",
			zap.Int("attempt", attempt), zap.Stringer("code", code))
		select {
		case <-time.After(d.cfg.Device.RetryDelay):
		case <-ctx.Done():
			return guidance.GuidanceNone, ctx.Err()
		}
	}
	return guidance.GuidanceNone, err
}

func (d *Device) onOpened(ctx context.Context, g guidance.GuidanceType, err error) {
	if err != nil {
		Logger.Error("open device failed", zap.Error(err))
		d.setState(StateConnectedNotOpened)
		return
	}
	r, err := guidance.NewRenderer(g, d.enc, d.cfg.Templates.Dir)
	if err != nil {
		Logger.Error("no renderer", zap.Error(err))
		g = guidance.GuidanceNone
		r, _ = guidance.NewRenderer(g, d.enc, "")
	}
	d.gtype, d.renderer = g, r
	d.session = guidance.NewAcquisitionSession()
	Logger.Info("device opened", zap.Stringer("guidance", g))
	d.logRender("reset", d.renderer.Reset(ctx))
	d.setState(StateOpenedNotLive)
}

func (d *Device) close(ctx context.Context) error {
	if !d.state.Opened() {
		return ErrNotOpen
	}
	if d.state == StateOpenedLive {
		if err := d.gw.CancelAcquisition(ctx); err != nil {
			Logger.Warn("cancel before close", zap.Error(err))
		}
	}
	if s, ok := d.renderer.(guidance.Stopper); ok {
		d.logRender("stop", s.Stop(ctx))
	}
	err := d.gw.Close(ctx)
	d.renderer, d.session = nil, nil
	d.gtype = guidance.GuidanceNone
	d.setState(StateConnectedNotOpened)
	return err
}

func (d *Device) acquire(ctx context.Context, pos guidance.Position, imp guidance.Impression) error {
	if !d.state.Opened() {
		return ErrNotOpen
	}
	if d.state == StateOpenedLive {
		return ErrBusy
	}
	plan, err := AcquisitionPlan(d.cfg.Acquisition, pos, imp)
	if err != nil {
		return err
	}
	for _, p := range plan {
		if err := d.gw.SetProperty(ctx, p.Name, p.Value); err != nil {
			return fmt.Errorf("set %s: %w", p.Name, err)
		}
	}
	if err := d.gw.BeginAcquisition(ctx, pos, imp); err != nil {
		code, _ := VendorCode(err)
		if code != guidance.ReplacePad {
			return err
		}
		if !d.cfg.Acquisition.ContinueOnReplacePad {
			d.logRender("cancel", d.gw.CancelAcquisition(ctx))
			return err
		}
		Logger.Warn("replace pad, continuing acquisition")
	}

	d.session.Begin(pos, imp)
	d.session.Keys = guidance.KeysOKContrast
	d.setState(StateOpenedLive)
	Logger.Info("acquisition started",
		zap.String("session", d.session.ID.String()),
		zap.String("position", string(pos)),
		zap.String("impression", string(imp)))

	if err := d.renderer.RenderGuidance(ctx, d.session); err != nil {
		d.logRender("guidance", err)
		if errors.Is(err, guidance.ErrUnsupportedCombination) {
			d.logRender("reset", d.renderer.Reset(ctx))
		}
	}
	d.prompt = guidance.Prompt(pos, imp)
	d.logRender("overlay", d.enc.Overlay(ctx, d.prompt))
	return nil
}

func (d *Device) cancel(ctx context.Context) error {
	if d.state != StateOpenedLive {
		return ErrNotLive
	}
	if err := d.gw.CancelAcquisition(ctx); err != nil {
		return err
	}
	d.session.Keys = guidance.KeysNone
	d.session.End()
	d.logRender("reset", d.renderer.Reset(ctx))
	d.setState(StateCaptureCancelled)
	return nil
}

// override forces the capture of the current frame.
func (d *Device) override(ctx context.Context) error {
	if d.state != StateOpenedLive {
		return ErrNotLive
	}
	Logger.Info("force capture with acquisition override")
	return d.gw.RequestOverride(ctx)
}

func (d *Device) onQuality(ctx context.Context, q []guidance.QualityState) {
	if d.session == nil || !d.session.Active() {
		return
	}
	d.session.SetQualities(q)
	d.publish()
	d.logRender("status", d.renderer.RenderStatus(ctx, d.session))
}

func (d *Device) onAcquisitionComplete(ctx context.Context) {
	if d.session == nil || !d.session.Active() {
		return
	}
	if c, ok := d.renderer.(guidance.AcquisitionCompleter); ok {
		d.logRender("acquisition complete", c.AcquisitionComplete(ctx, d.session))
	}
}

func (d *Device) onDataAvailable(ctx context.Context, ev Event) {
	if !ev.Final || d.session == nil || !d.session.Active() {
		return
	}
	s := d.session
	s.Status = ev.Status
	if ev.Status >= 0 {
		d.logRender("beep", d.enc.BeepOK(ctx))
		if ev.Status == guidance.Success {
			s.Keys = guidance.KeysNone
		} else {
			s.AwaitingDecision = true
			s.Keys = guidance.KeysAcceptRecapture
		}
	} else {
		d.logRender("beep", d.enc.BeepError(ctx))
		s.Keys = guidance.KeysNone
	}
	d.logRender("final status", d.renderer.RenderFinalStatus(ctx, s, ev.Status))

	fields := []zap.Field{
		zap.String("session", s.ID.String()),
		zap.Stringer("status", ev.Status),
		zap.Float64("pad_score", ev.PADScore),
	}
	for _, f := range ev.Status.Flags() {
		fields = append(fields, zap.Bool(f.String(), true))
	}
	Logger.Info("data available", fields...)

	if !s.AwaitingDecision {
		s.End()
	}
	d.setState(StateImageCaptured)
}

func (d *Device) onUserInput(ctx context.Context, key string) error {
	Logger.Debug("user input", zap.String("key", key))
	if d.session == nil {
		return ErrNotOpen
	}
	switch key {
	case "OK", "RIGHT", "FOOTSWITCH", "IDButtonConfirmActive":
		if d.session.AwaitingDecision || d.state != StateOpenedLive {
			return d.enc.BeepError(ctx)
		}
		return d.gw.AdjustAcquisition(ctx)
	case "CANCEL", "LEFT", "IDButtonRetryActive":
		if d.session.AwaitingDecision || d.state != StateOpenedLive {
			return d.enc.BeepError(ctx)
		}
		return d.cancel(ctx)
	}
	return fmt.Errorf("unknown key %q", key)
}

func (d *Device) onPreview(frame *PreviewFrame) {
	if d.preview == nil || frame == nil || len(d.pubs) == 0 {
		return
	}
	jpeg, err := d.preview.Encode(*frame, d.prompt)
	if err != nil {
		Logger.Debug("preview encode", zap.Error(err))
		return
	}
	for _, p := range d.pubs {
		if err := p.PublishPreview(jpeg); err != nil {
			Logger.Debug("publish preview", zap.Error(err))
		}
	}
}

// logRender logs output failures. Output is never retried; the next
// event renders again.
func (d *Device) logRender(what string, err error) {
	if err != nil {
		Logger.Warn("guidance output failed", zap.String("output", what), zap.Error(err))
	}
}
