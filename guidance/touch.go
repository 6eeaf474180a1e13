package guidance

import (
	"path/filepath"
	"strings"
)

// Touch display template files, resolved below the templates directory.
const (
	TemplateStandby        = "index_standby.html"
	TemplateInitialThumbs  = "index_initial_thumbs.html"
	TemplateInitialRight   = "index_initial_right.html"
	TemplateInitialLeft    = "index_initial_left.html"
	TemplateInitialFour    = "index_initial_four.html"
	TemplateStandardThumbs = "index_standard_thumbs.html"
	TemplateStandardRight  = "index_standard_right.html"
	TemplateStandardLeft   = "index_standard_left.html"
	TemplateStandardFour   = "index_standard_four.html"
	TemplateRoll           = "index_roll.html"
)

// Touch template parameter keys and values.
const (
	ParamButtonRetry   = "ButtonRetry"
	ParamButtonConfirm = "ButtonConfirm"
	ParamResult        = "Result"

	touchButtonActive = "1"
	touchButtonHidden = "2"

	fingerHidden  = "0"
	fingerShown   = "1"
	fingerRolling = "2"
)

// Params is an ordered list of template parameters.
type Params []ExternalParameter

// Set replaces the value of key or appends it.
func (p Params) Set(key, value string) Params {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, ExternalParameter{Key: key, Value: value})
}

func (p Params) Get(key string) (string, bool) {
	for _, e := range p {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	return append(Params(nil), p...)
}

// TouchTemplate is a template URI with its substitution parameters.
type TouchTemplate struct {
	URI    string
	Params Params
}

func (t TouchTemplate) Clone() TouchTemplate {
	return TouchTemplate{URI: t.URI, Params: t.Params.Clone()}
}

// TemplateURI builds the absolute file URI of a template in dir.
func TemplateURI(dir, name string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	p := filepath.ToSlash(filepath.Join(dir, name))
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}

// touchButtons maps the active keys to retry and confirm button states.
func touchButtons(keys ActiveKeys) (retry, confirm string) {
	switch keys {
	case KeysOKContrast:
		return touchButtonHidden, touchButtonActive
	case KeysAcceptRecapture:
		return touchButtonActive, touchButtonActive
	}
	return touchButtonHidden, touchButtonHidden
}

// TouchResult maps a final data status to the template Result parameter.
func TouchResult(status ReturnCode) string {
	switch status {
	case Success:
		return "1"
	case OpticsSurfaceDirty:
		return "3"
	case ReplacePad:
		return "9"
	case BadScan, NoCaptureActive:
		return "4"
	case AutocaptureSegmentation:
		return "6"
	case NoObject, SpoofDetected, SpoofDetectorFail:
		return "2"
	}
	if status.HasRollWarning() {
		return "5"
	}
	return "2"
}
