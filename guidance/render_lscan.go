package guidance

import "context"

// lscanRenderer drives the fixed OK/CANCEL LEDs of legacy LScan devices.
// These have no per-object slots, so the qualities collapse into one
// LED state.
type lscanRenderer struct {
	enc *Encoder
}

func (r *lscanRenderer) Reset(ctx context.Context) error {
	return r.enc.StatusLEDs(ctx)
}

func (r *lscanRenderer) RenderGuidance(ctx context.Context, s *AcquisitionSession) error {
	return r.enc.StatusLEDs(ctx, LEDOKGreenBlink)
}

func (r *lscanRenderer) RenderStatus(ctx context.Context, s *AcquisitionSession) error {
	return r.enc.StatusLEDs(ctx, lscanStatus(s.Qualities))
}

func (r *lscanRenderer) RenderFinalStatus(ctx context.Context, s *AcquisitionSession, status ReturnCode) error {
	led := LEDCancelFlash
	switch {
	case status == Success:
		led = LEDOKGreen
	case status.IsWarning():
		led = LEDOKYellowFlash
	}
	return r.enc.StatusLEDs(ctx, led)
}

func lscanStatus(qualities []QualityState) LED {
	present, notOK := false, false
	for _, q := range qualities {
		switch _, tier := Classify(q); tier {
		case TierError:
			return LEDCancel
		case TierNotOK:
			present, notOK = true, true
		case TierOK:
			present = true
		}
	}
	switch {
	case notOK:
		return LEDOKYellow
	case present:
		return LEDOKGreen
	}
	return LEDOKGreenBlink
}
