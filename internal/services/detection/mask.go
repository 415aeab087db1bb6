package detection

import (
	"image/color"

	"gocv.io/x/gocv"

	"cornerwatch-go/internal/models"
)

var maskFill = color.RGBA{R: 255, G: 255, B: 255, A: 0}

// Mask is a compiled single-channel region mask at one frame resolution.
// A nil *Mask matches the whole frame.
type Mask struct {
	mat   gocv.Mat
	never bool
}

// Geometry maps main-stream coordinates onto a target frame size
type Geometry struct {
	MainWidth, MainHeight     int
	TargetWidth, TargetHeight int
}

// CompileMask ORs rectangles into one mask. An empty list returns nil (whole frame).
func CompileMask(rects []models.Rect, g Geometry) *Mask {
	if len(rects) == 0 {
		return nil
	}

	m := &Mask{mat: gocv.Zeros(g.TargetHeight, g.TargetWidth, gocv.MatTypeCV8U)}
	drawn := 0
	for _, r := range rects {
		scaled := r.Scale(g.MainWidth, g.MainHeight, g.TargetWidth, g.TargetHeight)
		if scaled.Empty() {
			continue
		}
		gocv.Rectangle(&m.mat, scaled, maskFill, -1)
		drawn++
	}
	m.never = drawn == 0
	return m
}

// CompileZoneMask compiles a single zone. An undefined zone never matches.
func CompileZoneMask(r *models.Rect, g Geometry) *Mask {
	if r == nil || r.IsEmpty() {
		return &Mask{mat: gocv.NewMat(), never: true}
	}
	return CompileMask([]models.Rect{*r}, g)
}

// Never reports whether the mask can match no pixel at all
func (m *Mask) Never() bool {
	return m != nil && m.never
}

// Mat exposes the mask for gocv calls; callers must not close it
func (m *Mask) Mat() gocv.Mat {
	return m.mat
}

// Close releases the mask
func (m *Mask) Close() {
	if m == nil {
		return
	}
	m.mat.Close()
}

// ZoneMasks holds the compiled A/B/C masks for one detection session
type ZoneMasks map[models.Zone]*Mask

// CompileZoneMasks compiles all three zones from the settings
func CompileZoneMasks(s models.Settings, g Geometry) ZoneMasks {
	out := make(ZoneMasks, 3)
	for _, z := range []models.Zone{models.ZoneA, models.ZoneB, models.ZoneC} {
		out[z] = CompileZoneMask(s.Zone(z), g)
	}
	return out
}

// Close releases every zone mask
func (zm ZoneMasks) Close() {
	for _, m := range zm {
		m.Close()
	}
}
