package guidance

import (
	"context"
	"errors"
)

var errNoTouchLayout = errors.New("no touch layout for the current acquisition")

// touchRenderer drives the HTML templates of touch display devices.
type touchRenderer struct {
	enc *Encoder
	dir string

	initial    TouchTemplate
	standard   TouchTemplate
	haveLayout bool

	// last template transmitted, re-sent by Refresh
	last     TouchTemplate
	haveLast bool
}

func (r *touchRenderer) show(ctx context.Context, t TouchTemplate) error {
	if err := r.enc.Touch(ctx, t); err != nil {
		return err
	}
	r.last = t.Clone()
	r.haveLast = true
	return nil
}

func (r *touchRenderer) Reset(ctx context.Context) error {
	r.haveLayout = false
	return r.show(ctx, TouchTemplate{URI: TemplateURI(r.dir, TemplateStandby)})
}

// RenderGuidance rebuilds both layouts for the session and shows the
// initial one.
func (r *touchRenderer) RenderGuidance(ctx context.Context, s *AcquisitionSession) error {
	initial, standard, err := TouchLayouts(r.dir, s.Position, s.Impression, s.Keys)
	if err != nil {
		return err
	}
	r.initial, r.standard, r.haveLayout = initial, standard, true
	return r.show(ctx, initial)
}

func (r *touchRenderer) RenderStatus(ctx context.Context, s *AcquisitionSession) error {
	if !r.haveLayout {
		return errNoTouchLayout
	}
	retry, confirm := touchButtons(s.Keys)
	r.standard.Params = r.standard.Params.
		Set(ParamButtonRetry, retry).
		Set(ParamButtonConfirm, confirm)
	return r.show(ctx, r.standard)
}

func (r *touchRenderer) RenderFinalStatus(ctx context.Context, s *AcquisitionSession, status ReturnCode) error {
	if !r.haveLayout {
		return errNoTouchLayout
	}
	retry, confirm := touchButtons(s.Keys)
	r.standard.Params = r.standard.Params.
		Set(ParamButtonRetry, retry).
		Set(ParamButtonConfirm, confirm).
		Set(ParamResult, TouchResult(status))
	return r.show(ctx, r.standard)
}

// Stop tells the device to stop updating the touch display.
func (r *touchRenderer) Stop(ctx context.Context) error {
	r.haveLayout, r.haveLast = false, false
	return r.enc.StopTouch(ctx)
}

func (r *touchRenderer) Refresh(ctx context.Context) error {
	if !r.haveLast {
		return nil
	}
	return r.enc.Touch(ctx, r.last)
}
