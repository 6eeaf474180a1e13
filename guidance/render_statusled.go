package guidance

import "context"

// statusLEDRenderer drives devices with four quality slots and four
// finger icons.
type statusLEDRenderer struct {
	enc *Encoder
}

func (r *statusLEDRenderer) Reset(ctx context.Context) error {
	return r.enc.StatusLEDs(ctx)
}

func (r *statusLEDRenderer) RenderGuidance(ctx context.Context, s *AcquisitionSession) error {
	icons, err := IconLEDs(s.Position)
	if err != nil {
		return err
	}
	return r.enc.StatusLEDs(ctx, icons...)
}

// RenderStatus lights one slot per reported object followed by the
// position icons.
func (r *statusLEDRenderer) RenderStatus(ctx context.Context, s *AcquisitionSession) error {
	icons, err := IconLEDs(s.Position)
	if err != nil {
		return err
	}
	leds := StatusSlotLEDs(s.Qualities)
	return r.enc.StatusLEDs(ctx, append(leds, icons...)...)
}

// RenderFinalStatus drives all four slots by the capture outcome: blinking
// green on success, flashing yellow on a warning and flashing red on a
// failure. The icons are sent again since NONE clears them.
func (r *statusLEDRenderer) RenderFinalStatus(ctx context.Context, s *AcquisitionSession, status ReturnCode) error {
	icons, err := IconLEDs(s.Position)
	if err != nil {
		return err
	}
	return r.enc.StatusLEDs(ctx, append(FinalSlotLEDs(status), icons...)...)
}

// FinalSlotLEDs returns the slot LEDs shown for a final data status.
func FinalSlotLEDs(status ReturnCode) []LED {
	var leds []LED
	for slot := 1; slot <= statusLEDSlots; slot++ {
		switch {
		case status.IsWarning():
			leds = append(leds, SlotLED(slot, LEDRed, PhaseFlash), SlotLED(slot, LEDGreen, PhaseFlash))
		case status == Success:
			leds = append(leds, SlotLED(slot, LEDGreen, PhaseBlink))
		default:
			leds = append(leds, SlotLED(slot, LEDRed, PhaseFlash))
		}
	}
	return leds
}

// StatusSlotLEDs returns the slot LEDs for qualities, in slot order.
func StatusSlotLEDs(qualities []QualityState) []LED {
	var leds []LED
	for i, q := range qualities {
		if i == statusLEDSlots {
			break
		}
		leds = append(leds, QualityLEDs(q, SlotTargets(i+1))...)
	}
	return leds
}
