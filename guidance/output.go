package guidance

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// FormatType tags the payload of an output record.
type FormatType int32

const FormatXML FormatType = 1

// OutputRecord is the payload handed to the device output primitive.
// Data is only valid for the duration of the SetOutputData call.
type OutputRecord struct {
	Data          []byte
	Size          int
	Format        FormatType
	TransactionID int32
}

// OutputPort is the device output primitive.
type OutputPort interface {
	SetOutputData(ctx context.Context, rec OutputRecord) error
}

var logger = zap.NewNop()

// SetLogger sets the logger used by the package.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// Encoder serializes output categories and transmits them.
type Encoder struct {
	port OutputPort
}

func NewEncoder(port OutputPort) *Encoder {
	return &Encoder{port: port}
}

// Send builds a fresh document for out and hands it to the port. The
// buffer does not outlive the call.
func (e *Encoder) Send(ctx context.Context, out OutputData) error {
	buf, err := Marshal(NewDocument(out))
	if err != nil {
		return err
	}
	defer clear(buf)

	rec := OutputRecord{
		Data:   buf,
		Size:   len(buf),
		Format: FormatXML,
	}
	logger.Debug("SetOutputData", zap.String("category", out.Category()), zap.Int("size", rec.Size))
	if err := e.port.SetOutputData(ctx, rec); err != nil {
		return fmt.Errorf("set output data %s: %w", out.Category(), err)
	}
	return nil
}

func (e *Encoder) Beep(ctx context.Context, pattern, volume string) error {
	return e.Send(ctx, OutputData{Beeper: &Beeper{Pattern: pattern, Volume: volume}})
}

func (e *Encoder) BeepOK(ctx context.Context) error { return e.Beep(ctx, "3", "100") }

func (e *Encoder) BeepError(ctx context.Context) error { return e.Beep(ctx, "1", "100") }

// StatusLEDs sends NONE followed by leds. NONE resets every LED, so it is
// always the first element.
func (e *Encoder) StatusLEDs(ctx context.Context, leds ...LED) error {
	all := make([]LED, 0, len(leds)+1)
	all = append(all, LEDNone)
	for _, l := range leds {
		if l != LEDNone {
			all = append(all, l)
		}
	}
	return e.Send(ctx, OutputData{StatusLeds: &StatusLeds{Leds: all}})
}

func (e *Encoder) TftFrame(ctx context.Context, f Frame) error {
	return e.TftScreen(ctx, f.Screen().Element(), f.Entries())
}

// TftScreen sends an arbitrary TFT screen element, used for screens
// without a segment record (LogoScreen, ModeScreen, ResolutionScreen).
func (e *Encoder) TftScreen(ctx context.Context, element string, entries []KeyValue) error {
	screen := &TftScreen{Entries: entries}
	screen.XMLName.Local = element
	return e.Send(ctx, OutputData{Tft: &Tft{Screen: screen}})
}

// Logo resets the TFT to the company logo screen.
func (e *Encoder) Logo(ctx context.Context) error {
	return e.TftScreen(ctx, "LogoScreen", []KeyValue{
		newKeyValue("Option", "SHOW_FW_VERSION"),
		newKeyValue("ProgressBarPercent", "0"),
	})
}

func (e *Encoder) Touch(ctx context.Context, t TouchTemplate) error {
	return e.Send(ctx, OutputData{TouchDisplay: &TouchDisplay{Template: &DesignTemplate{
		URI:    t.URI,
		Params: t.Params.Clone(),
	}}})
}

// StopTouch sends a template-less TouchDisplay which stops updates.
func (e *Encoder) StopTouch(ctx context.Context) error {
	return e.Send(ctx, OutputData{TouchDisplay: &TouchDisplay{}})
}

func (e *Encoder) Overlay(ctx context.Context, text string) error {
	return e.Send(ctx, OutputData{Overlay: &VisualizationOverlay{Text: OverlayText{
		PosY:           "10",
		PosX:           "10",
		Color:          "0 0 255",
		FontName:       "Arial",
		FontSize:       "10",
		BelongsToImage: "FALSE",
		Value:          text,
	}}})
}

// ActiveButtons tells the device which hardware keys to monitor.
func (e *Encoder) ActiveButtons(ctx context.Context, keys ActiveKeys) error {
	ab := &ActiveDeviceButtons{Keys: []string{"NONE"}}
	if keys != KeysNone {
		ab.Keys = []string{"OK", "CANCEL"}
	}
	return e.Send(ctx, OutputData{ActiveButtons: ab})
}

// WriterPort writes every output document to w, one per line.
type WriterPort struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterPort(w io.Writer) *WriterPort {
	return &WriterPort{w: w}
}

func (p *WriterPort) SetOutputData(_ context.Context, rec OutputRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.w.Write(rec.Data[:rec.Size]); err != nil {
		return err
	}
	_, err := io.WriteString(p.w, "\n")
	return err
}
