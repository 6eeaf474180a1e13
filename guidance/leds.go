package guidance

import "fmt"

// LED is one StatusLeds token. Slot LEDs are S1..S5, icon LEDs I1..I4.
// Setting both blink phases B1 (slow blink) and B2 (flash) of a color
// gives a steady light; RED and GREEN together give yellow.
type LED string

const LEDNone LED = "NONE"

// Legacy LScan LED tokens.
const (
	LEDOKGreenBlink  LED = "OK_GREEN_B1"
	LEDOKGreenFlash  LED = "OK_GREEN_B2"
	LEDOKGreen       LED = "OK_GREEN"
	LEDOKYellowBlink LED = "OK_YELLOW_B1"
	LEDOKYellowFlash LED = "OK_YELLOW_B2"
	LEDOKYellow      LED = "OK_YELLOW"
	LEDCancelBlink   LED = "CANCEL_B1"
	LEDCancelFlash   LED = "CANCEL_B2"
	LEDCancel        LED = "CANCEL"
)

type LEDColor string

const (
	LEDRed   LEDColor = "RED"
	LEDGreen LEDColor = "GREEN"
)

type Phase string

const (
	PhaseBlink Phase = "B1"
	PhaseFlash Phase = "B2"
)

const (
	MaxStatusSlots = 5
	// status LED devices only carry four slots
	statusLEDSlots = 4
)

func SlotLED(slot int, c LEDColor, p Phase) LED {
	return LED(fmt.Sprintf("S%d_%s_%s", slot, c, p))
}

func IconLED(icon int, c LEDColor, p Phase) LED {
	return LED(fmt.Sprintf("I%d_%s_%s", icon, c, p))
}

// steadyIcon lights icon i in steady green.
func steadyIcon(i int) []LED {
	return []LED{IconLED(i, LEDGreen, PhaseBlink), IconLED(i, LEDGreen, PhaseFlash)}
}

// LEDTargets holds the LED codes emitted for each quality tier on one slot.
type LEDTargets struct {
	Unknown []LED
	Error   []LED
	NotOK   []LED
	OK      []LED
}

// SlotTargets returns the standard targets of status slot S<slot>: steady
// red for errors, steady yellow for not-ok, steady green for ok and nothing
// when the object is not present.
func SlotTargets(slot int) LEDTargets {
	red := []LED{SlotLED(slot, LEDRed, PhaseBlink), SlotLED(slot, LEDRed, PhaseFlash)}
	green := []LED{SlotLED(slot, LEDGreen, PhaseBlink), SlotLED(slot, LEDGreen, PhaseFlash)}
	return LEDTargets{
		Unknown: nil,
		Error:   red,
		NotOK:   append(append([]LED{}, red...), green...),
		OK:      green,
	}
}
