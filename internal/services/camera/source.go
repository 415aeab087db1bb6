package camera

import (
	"context"
	"time"

	"gocv.io/x/gocv"

	"cornerwatch-go/internal/config"
	"cornerwatch-go/internal/models"
)

// Frame is a BGR image owned by the caller for one processing cycle
type Frame struct {
	Mat        gocv.Mat
	CapturedAt time.Time
}

// Close releases the frame
func (f *Frame) Close() {
	if f == nil {
		return
	}
	f.Mat.Close()
}

// Size returns width, height
func (f *Frame) Size() (int, int) {
	return f.Mat.Cols(), f.Mat.Rows()
}

// Source abstracts the camera for the detection loop and the calibration task.
// Implementations serialize device access and are safe for concurrent use.
type Source interface {
	// AnalysisFrame returns a low-resolution frame for motion detection
	AnalysisFrame(ctx context.Context) (*Frame, error)
	// CaptureFrame returns a full-resolution frame
	CaptureFrame(ctx context.Context) (*Frame, error)
	// CaptureStill returns a full-resolution JPEG with the active profile's noise reduction applied
	CaptureStill(ctx context.Context, quality int) (models.Still, error)
	// ApplyProfile writes a profile bundle to the device; models.ErrDeviceBusy if it cannot be applied now
	ApplyProfile(params models.ProfileParams) error
	// MainResolution is the full-resolution frame size rectangles are expressed in
	MainResolution() (int, int)
	// AnalysisResolution is the size of frames returned by AnalysisFrame
	AnalysisResolution() (int, int)
	Close() error
}

// New selects the synthetic scene or the gocv device from configuration
func New(cfg *config.Config) Source {
	if cfg.CameraDevice == SyntheticDevice {
		return NewSynthetic(cfg.MainWidth, cfg.MainHeight, cfg.AnalysisWidth, cfg.AnalysisHeight)
	}
	return NewDevice(cfg)
}
