package detection

import (
	"image"

	"gocv.io/x/gocv"
)

// BlurKernel is the Gaussian kernel applied before differencing
var BlurKernel = image.Pt(21, 21)

// Detector measures inter-frame change against a blurred grayscale baseline.
// It is owned by a single detection loop and is not safe for concurrent use.
type Detector struct {
	baseline    gocv.Mat
	hasBaseline bool

	gray    gocv.Mat
	blurred gocv.Mat
	delta   gocv.Mat
}

// NewDetector creates a detector without a baseline
func NewDetector() *Detector {
	return &Detector{
		baseline: gocv.NewMat(),
		gray:     gocv.NewMat(),
		blurred:  gocv.NewMat(),
		delta:    gocv.NewMat(),
	}
}

// Diff is the binarized change image of one comparison
type Diff struct {
	bin     gocv.Mat
	scratch gocv.Mat
}

// Compare blurs the frame and diffs it against the baseline, binarizing at
// sensitivity (0-255, lower flags more pixels). The frame always becomes the
// new baseline. The first frame, or a frame whose size differs from the
// baseline, only seeds the baseline and returns ok=false.
func (d *Detector) Compare(frame gocv.Mat, sensitivity int) (*Diff, bool) {
	if frame.Empty() {
		return nil, false
	}

	if frame.Channels() == 1 {
		frame.CopyTo(&d.gray)
	} else {
		gocv.CvtColor(frame, &d.gray, gocv.ColorBGRToGray)
	}
	gocv.GaussianBlur(d.gray, &d.blurred, BlurKernel, 0, 0, gocv.BorderDefault)

	if !d.hasBaseline || d.baseline.Rows() != d.blurred.Rows() || d.baseline.Cols() != d.blurred.Cols() {
		d.blurred.CopyTo(&d.baseline)
		d.hasBaseline = true
		return nil, false
	}

	gocv.AbsDiff(d.baseline, d.blurred, &d.delta)
	d.blurred.CopyTo(&d.baseline)

	diff := &Diff{bin: gocv.NewMat(), scratch: gocv.NewMat()}
	gocv.Threshold(d.delta, &diff.bin, float32(sensitivity), 255, gocv.ThresholdBinary)
	return diff, true
}

// HasBaseline reports whether the next Compare can produce a diff
func (d *Detector) HasBaseline() bool {
	return d.hasBaseline
}

// Reset drops the baseline so the next frame starts a fresh session
func (d *Detector) Reset() {
	d.hasBaseline = false
}

// Close releases the detector buffers
func (d *Detector) Close() {
	d.baseline.Close()
	d.gray.Close()
	d.blurred.Close()
	d.delta.Close()
}

// Count returns the changed pixels inside the mask; nil counts the whole frame
func (df *Diff) Count(mask *Mask) int {
	if mask == nil {
		return gocv.CountNonZero(df.bin)
	}
	if mask.Never() {
		return 0
	}
	gocv.BitwiseAnd(df.bin, mask.Mat(), &df.scratch)
	return gocv.CountNonZero(df.scratch)
}

// Size returns the diff dimensions as width, height
func (df *Diff) Size() (int, int) {
	return df.bin.Cols(), df.bin.Rows()
}

// Close releases the diff
func (df *Diff) Close() {
	if df == nil {
		return
	}
	df.bin.Close()
	df.scratch.Close()
}
