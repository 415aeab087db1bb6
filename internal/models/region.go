package models

import (
	"encoding/json"
	"fmt"
	"image"

	"gopkg.in/yaml.v3"
)

// Rect is an axis-aligned rectangle in main-stream pixel coordinates.
// The zero value is the empty rectangle; non-empty values are built with NewRect.
type Rect struct {
	x1, y1, x2, y2 int
}

// NewRect validates the corners and returns the rectangle
func NewRect(x1, y1, x2, y2 int) (Rect, error) {
	if x1 < 0 || y1 < 0 {
		return Rect{}, &ValidationError{Field: "rect", Reason: fmt.Sprintf("negative corner (%d,%d)", x1, y1)}
	}
	if x1 >= x2 || y1 >= y2 {
		return Rect{}, &ValidationError{Field: "rect", Reason: fmt.Sprintf("degenerate or inverted rectangle [%d,%d,%d,%d]", x1, y1, x2, y2)}
	}
	return Rect{x1: x1, y1: y1, x2: x2, y2: y2}, nil
}

// MustRect is NewRect for literals known to be valid
func MustRect(x1, y1, x2, y2 int) Rect {
	r, err := NewRect(x1, y1, x2, y2)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Rect) X1() int { return r.x1 }
func (r Rect) Y1() int { return r.y1 }
func (r Rect) X2() int { return r.x2 }
func (r Rect) Y2() int { return r.y2 }

// IsEmpty reports whether the rectangle covers no pixels
func (r Rect) IsEmpty() bool {
	return r.x2 <= r.x1 || r.y2 <= r.y1
}

// Bounds converts to an image.Rectangle
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.x1, r.y1, r.x2, r.y2)
}

// Within checks the rectangle fits a width x height frame
func (r Rect) Within(width, height int) error {
	if r.x2 > width || r.y2 > height {
		return &ValidationError{
			Field:  "rect",
			Reason: fmt.Sprintf("[%d,%d,%d,%d] exceeds frame %dx%d", r.x1, r.y1, r.x2, r.y2, width, height),
		}
	}
	return nil
}

// Scale maps the rectangle from main-stream coordinates to a frame of another size.
// The result is clipped to the target frame and may be empty.
func (r Rect) Scale(fromW, fromH, toW, toH int) image.Rectangle {
	if fromW <= 0 || fromH <= 0 {
		return image.Rectangle{}
	}
	sx := float64(toW) / float64(fromW)
	sy := float64(toH) / float64(fromH)
	out := image.Rect(
		int(float64(r.x1)*sx),
		int(float64(r.y1)*sy),
		int(float64(r.x2)*sx+0.5),
		int(float64(r.y2)*sy+0.5),
	)
	return out.Intersect(image.Rect(0, 0, toW, toH))
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", r.x1, r.y1, r.x2, r.y2)
}

func (r Rect) corners() []int {
	return []int{r.x1, r.y1, r.x2, r.y2}
}

func rectFromCorners(v []int) (Rect, error) {
	if len(v) != 4 {
		return Rect{}, &ValidationError{Field: "rect", Reason: fmt.Sprintf("expected 4 coordinates, got %d", len(v))}
	}
	return NewRect(v[0], v[1], v[2], v[3])
}

// MarshalJSON encodes the rectangle as [x1,y1,x2,y2]
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.corners())
}

// UnmarshalJSON decodes [x1,y1,x2,y2] through NewRect
func (r *Rect) UnmarshalJSON(data []byte) error {
	var v []int
	if err := json.Unmarshal(data, &v); err != nil {
		return &ValidationError{Field: "rect", Reason: "must be an array of four integers"}
	}
	rect, err := rectFromCorners(v)
	if err != nil {
		return err
	}
	*r = rect
	return nil
}

// MarshalYAML encodes the rectangle as a flow sequence
func (r Rect) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, c := range r.corners() {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(c)})
	}
	return node, nil
}

// UnmarshalYAML decodes a four element sequence through NewRect
func (r *Rect) UnmarshalYAML(value *yaml.Node) error {
	var v []int
	if err := value.Decode(&v); err != nil {
		return &ValidationError{Field: "rect", Reason: "must be a sequence of four integers"}
	}
	rect, err := rectFromCorners(v)
	if err != nil {
		return err
	}
	*r = rect
	return nil
}

// Region is a named detection or calibration rectangle
type Region struct {
	Name    string `json:"name" yaml:"name"`
	Rect    Rect   `json:"rect" yaml:"rect"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// EnabledRects returns the rectangles of enabled regions
func EnabledRects(regions []Region) []Rect {
	out := make([]Rect, 0, len(regions))
	for _, r := range regions {
		if r.Enabled && !r.Rect.IsEmpty() {
			out = append(out, r.Rect)
		}
	}
	return out
}

// Zone names one of the three corner-detection rectangles
type Zone string

const (
	ZoneA Zone = "A"
	ZoneB Zone = "B"
	ZoneC Zone = "C"
)
