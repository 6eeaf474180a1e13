package guidance

import (
	"context"

	"go.uber.org/zap"
)

// tftRenderer drives the capture progress screen of TFT and TFT-1000
// palm scanners.
type tftRenderer struct {
	enc *Encoder

	// last bottom status and keys transmitted, used to drop redundant
	// status renders. An erased screen without buttons is the start.
	memoStatus StatBottom
	memoKeys   ActiveKeys

	// screens that received a full frame since the last reset
	initialized map[Screen]bool
}

func newTFTRenderer(enc *Encoder) *tftRenderer {
	return &tftRenderer{
		enc:         enc,
		memoStatus:  StatBottomErase,
		memoKeys:    KeysNone,
		initialized: map[Screen]bool{},
	}
}

func (r *tftRenderer) send(ctx context.Context, f Frame) error {
	if !f.Full() && !r.initialized[f.Screen()] {
		return ErrPartialFirstFrame
	}
	if err := r.enc.TftFrame(ctx, f); err != nil {
		return err
	}
	if f.Full() {
		r.initialized[f.Screen()] = true
	}
	return nil
}

func (r *tftRenderer) remember(status StatBottom, keys ActiveKeys) {
	r.memoStatus = status
	r.memoKeys = keys
}

func (r *tftRenderer) shown(status StatBottom, keys ActiveKeys) bool {
	return r.memoStatus == status && r.memoKeys == keys
}

// Reset clears the capture progress screen with a full inactive frame.
func (r *tftRenderer) Reset(ctx context.Context) error {
	clear(r.initialized)
	fields := InactiveFields()
	f, err := NewFullFrame(ScreenCaptureProgress, fields)
	if err != nil {
		return err
	}
	if err := r.send(ctx, f); err != nil {
		return err
	}
	r.remember(fields.StatBottom, KeysNone)
	return nil
}

func (r *tftRenderer) RenderGuidance(ctx context.Context, s *AcquisitionSession) error {
	fields, err := GuidanceFields(s.Position, s.Impression, s.Keys)
	if err != nil {
		return err
	}
	f, err := NewFullFrame(ScreenCaptureProgress, fields)
	if err != nil {
		return err
	}
	if err := r.send(ctx, f); err != nil {
		return err
	}
	if err := r.enc.ActiveButtons(ctx, s.Keys); err != nil {
		return err
	}
	r.remember(fields.StatBottom, s.Keys)
	return nil
}

func (r *tftRenderer) statusFor(s *AcquisitionSession) StatBottom {
	if s.Keys == KeysAcceptRecapture {
		return RecaptureStatus(s.Impression)
	}
	return PositionStatus(s.Qualities)
}

// RenderStatus sends the buttons and bottom status only. Nothing is sent
// when neither changed since the last transmission.
func (r *tftRenderer) RenderStatus(ctx context.Context, s *AcquisitionSession) error {
	status := r.statusFor(s)
	if r.shown(status, s.Keys) {
		logger.Debug("tft status unchanged", zap.String("status", string(status)), zap.Stringer("keys", s.Keys))
		return nil
	}
	keysChanged := r.memoKeys != s.Keys
	if err := r.sendStatus(ctx, s.Keys, status); err != nil {
		return err
	}
	if keysChanged {
		if err := r.enc.ActiveButtons(ctx, s.Keys); err != nil {
			return err
		}
	}
	r.remember(status, s.Keys)
	return nil
}

func (r *tftRenderer) sendStatus(ctx context.Context, keys ActiveKeys, status StatBottom) error {
	return r.sendStatusLines(ctx, keys, StatTopLeaveUnchanged, status)
}

func (r *tftRenderer) sendStatusLines(ctx context.Context, keys ActiveKeys, top StatTop, status StatBottom) error {
	var fields FrameFields
	fields.LeftButton, fields.RightButton = KeyButtons(keys)
	fields.StatTop = top
	fields.StatBottom = status
	f, err := NewPartialFrame(ScreenCaptureProgress, fields)
	if err != nil {
		return err
	}
	return r.send(ctx, f)
}

func (r *tftRenderer) RenderFinalStatus(ctx context.Context, s *AcquisitionSession, status ReturnCode) error {
	bottom := FinalStatus(status)
	if r.shown(bottom, s.Keys) {
		return nil
	}
	keysChanged := r.memoKeys != s.Keys
	if err := r.sendStatus(ctx, s.Keys, bottom); err != nil {
		return err
	}
	if keysChanged {
		if err := r.enc.ActiveButtons(ctx, s.Keys); err != nil {
			return err
		}
	}
	r.remember(bottom, s.Keys)
	return nil
}

// AcquisitionComplete shows the hourglass while the image is processed.
func (r *tftRenderer) AcquisitionComplete(ctx context.Context, s *AcquisitionSession) error {
	if r.shown(StatBottomHourglassAnimated, s.Keys) {
		return nil
	}
	if err := r.sendStatusLines(ctx, s.Keys, StatTopErase, StatBottomHourglassAnimated); err != nil {
		return err
	}
	r.remember(StatBottomHourglassAnimated, s.Keys)
	return nil
}
