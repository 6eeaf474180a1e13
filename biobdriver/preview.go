package biobdriver

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strconv"

	"gocv.io/x/gocv"
)

var (
	PREVIEW_JPEG_QUALITY = 75
	PREVIEW_FONT_SCALE   = 0.8
)

func init() {
	if q := os.Getenv("PREVIEW_JPEG_QUALITY"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v > 0 && v <= 100 {
			PREVIEW_JPEG_QUALITY = v
			Sugar.Infof("Setting PREVIEW_JPEG_QUALITY value provided in PREVIEW_JPEG_QUALITY env variable: %d", v)
		} else {
			Sugar.Warnf("Ignoring PREVIEW_JPEG_QUALITY env variable value: %s", q)
		}
	}
}

var overlayColor = color.RGBA{R: 255, G: 0, B: 0, A: 0}

// PreviewEncoder turns raw preview frames into JPEG images, optionally
// with the current operator prompt drawn on top.
type PreviewEncoder struct {
	Quality int
	Overlay bool
}

func NewPreviewEncoder(overlay bool) *PreviewEncoder {
	return &PreviewEncoder{Quality: PREVIEW_JPEG_QUALITY, Overlay: overlay}
}

func (p *PreviewEncoder) Encode(frame PreviewFrame, text string) ([]byte, error) {
	w, h := frame.Width, frame.Height
	if w <= 0 || h <= 0 || len(frame.Data) < w*h {
		return nil, fmt.Errorf("preview frame %dx%d with %d bytes", w, h, len(frame.Data))
	}
	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, frame.Data[:w*h])
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	out := mat
	if p.Overlay && text != "" {
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(mat, &bgr, gocv.ColorGrayToBGR)
		gocv.PutText(&bgr, text, image.Pt(10, 30), gocv.FontHersheySimplex, PREVIEW_FONT_SCALE, overlayColor, 2)
		out = bgr
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, out, []int{int(gocv.IMWriteJpegQuality), p.Quality})
	if err != nil {
		return nil, err
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}
