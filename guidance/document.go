package guidance

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const (
	documentVersion = "4.0"
	xsiNamespace    = "http://www.w3.org/2001/XMLSchema-instance"
	schemaLocation  = "BioBase.xsd"
	xmlDeclaration  = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`
)

// Document is the BioBase output document. A fresh document is built for
// every SetOutputData call.
type Document struct {
	XMLName        xml.Name   `xml:"BioBase"`
	Version        string     `xml:"Version,attr"`
	XSI            string     `xml:"xmlns:xsi,attr,omitempty"`
	SchemaLocation string     `xml:"xsi:noNamespaceSchemaLocation,attr,omitempty"`
	Output         OutputData `xml:"OutputData"`
}

// OutputData holds exactly one output category.
type OutputData struct {
	Beeper        *Beeper               `xml:"Beeper,omitempty"`
	StatusLeds    *StatusLeds           `xml:"StatusLeds,omitempty"`
	Tft           *Tft                  `xml:"Tft,omitempty"`
	TouchDisplay  *TouchDisplay         `xml:"TouchDisplay,omitempty"`
	Overlay       *VisualizationOverlay `xml:"VisualizationOverlay,omitempty"`
	ActiveButtons *ActiveDeviceButtons  `xml:"ActiveDeviceButtons,omitempty"`
}

func (o OutputData) categories() int {
	n := 0
	for _, set := range []bool{
		o.Beeper != nil, o.StatusLeds != nil, o.Tft != nil,
		o.TouchDisplay != nil, o.Overlay != nil, o.ActiveButtons != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// Category returns the element name of the output category.
func (o OutputData) Category() string {
	switch {
	case o.Beeper != nil:
		return "Beeper"
	case o.StatusLeds != nil:
		return "StatusLeds"
	case o.Tft != nil:
		return "Tft"
	case o.TouchDisplay != nil:
		return "TouchDisplay"
	case o.Overlay != nil:
		return "VisualizationOverlay"
	case o.ActiveButtons != nil:
		return "ActiveDeviceButtons"
	}
	return ""
}

type Beeper struct {
	Pattern string `xml:"Pattern,attr"`
	Volume  string `xml:"Volume,attr"`
}

type StatusLeds struct {
	Leds []LED `xml:"Led"`
}

type Tft struct {
	Screen *TftScreen `xml:",any"`
}

// TftScreen is one TFT screen element with its key elements in order.
type TftScreen struct {
	XMLName xml.Name
	Entries []KeyValue `xml:",any"`
}

// KeyValue is a screen key element: <Key>Value</Key>.
type KeyValue struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

func newKeyValue(k, v string) KeyValue {
	return KeyValue{XMLName: xml.Name{Local: k}, Value: v}
}

func (kv KeyValue) Key() string { return kv.XMLName.Local }

// TouchDisplay without a template stops display updates.
type TouchDisplay struct {
	Template *DesignTemplate `xml:"DesignTemplate,omitempty"`
}

type DesignTemplate struct {
	URI    string              `xml:"URI"`
	Params []ExternalParameter `xml:"ExternalParameter"`
}

type ExternalParameter struct {
	Key   string `xml:"Key,attr"`
	Value string `xml:"Value,attr"`
}

type VisualizationOverlay struct {
	Text OverlayText `xml:"Text"`
}

type OverlayText struct {
	PosY           string `xml:"PosY,attr"`
	PosX           string `xml:"PosX,attr"`
	Color          string `xml:"Color,attr"`
	FontName       string `xml:"FontName,attr"`
	FontSize       string `xml:"FontSize,attr"`
	BelongsToImage string `xml:"BelongsToImage,attr"`
	Value          string `xml:"Value,attr"`
}

type ActiveDeviceButtons struct {
	Keys []string `xml:"Key"`
}

// NewDocument wraps out in the fixed BioBase root.
func NewDocument(out OutputData) Document {
	return Document{
		Version:        documentVersion,
		XSI:            xsiNamespace,
		SchemaLocation: schemaLocation,
		Output:         out,
	}
}

// Marshal serializes the document with its XML declaration.
func Marshal(doc Document) ([]byte, error) {
	if n := doc.Output.categories(); n != 1 {
		return nil, fmt.Errorf("output data must carry exactly one category, got %d", n)
	}
	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal output document: %w", err)
	}
	var buf bytes.Buffer
	buf.Grow(len(xmlDeclaration) + len(body))
	buf.WriteString(xmlDeclaration)
	buf.Write(body)
	return buf.Bytes(), nil
}

// Decode parses an output document. The namespace attributes are not
// restored.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode output document: %w", err)
	}
	return doc, nil
}
