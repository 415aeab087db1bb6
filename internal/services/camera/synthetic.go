package camera

import (
	"context"
	"image/color"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"cornerwatch-go/internal/helpers"
	"cornerwatch-go/internal/models"
)

// SyntheticDevice is the CAMERA_DEVICE value selecting the synthetic source
const SyntheticDevice = "synthetic"

// Synthetic renders a flat scene with bright rectangles. It backs
// CAMERA_DEVICE=synthetic for running without hardware and drives tests.
type Synthetic struct {
	mu sync.Mutex

	mainW, mainH         int
	analysisW, analysisH int

	level float64
	blobs []models.Rect

	frameErr error
	stillErr error
	busy     bool

	applied []models.ProfileParams
	stills  int
}

// NewSynthetic creates a mid-grey scene
func NewSynthetic(mainW, mainH, analysisW, analysisH int) *Synthetic {
	return &Synthetic{
		mainW: mainW, mainH: mainH,
		analysisW: analysisW, analysisH: analysisH,
		level: 120,
	}
}

// SetScene sets the background level and the bright rectangles (main-stream coordinates)
func (s *Synthetic) SetScene(level float64, blobs ...models.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = level
	s.blobs = append([]models.Rect(nil), blobs...)
}

// FailFrames makes frame reads fail with err until cleared with nil
func (s *Synthetic) FailFrames(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameErr = err
}

// FailStills makes CaptureStill fail with err until cleared with nil
func (s *Synthetic) FailStills(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stillErr = err
}

// SetBusy makes ApplyProfile report ErrDeviceBusy
func (s *Synthetic) SetBusy(busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = busy
}

// Applied returns the profile bundles written so far
func (s *Synthetic) Applied() []models.ProfileParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ProfileParams(nil), s.applied...)
}

// Stills returns how many stills were taken
func (s *Synthetic) Stills() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stills
}

func (s *Synthetic) render(w, h int) gocv.Mat {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(s.level, s.level, s.level, 0), h, w, gocv.MatTypeCV8UC3)
	for _, b := range s.blobs {
		r := b.Scale(s.mainW, s.mainH, w, h)
		if r.Empty() {
			continue
		}
		gocv.Rectangle(&m, r, color.RGBA{R: 255, G: 255, B: 255}, -1)
	}
	return m
}

func (s *Synthetic) frame(ctx context.Context, w, h int) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frameErr != nil {
		return nil, s.frameErr
	}
	return &Frame{Mat: s.render(w, h), CapturedAt: time.Now()}, nil
}

func (s *Synthetic) AnalysisFrame(ctx context.Context) (*Frame, error) {
	return s.frame(ctx, s.analysisW, s.analysisH)
}

func (s *Synthetic) CaptureFrame(ctx context.Context) (*Frame, error) {
	return s.frame(ctx, s.mainW, s.mainH)
}

func (s *Synthetic) CaptureStill(ctx context.Context, quality int) (models.Still, error) {
	if err := ctx.Err(); err != nil {
		return models.Still{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stillErr != nil {
		return models.Still{}, s.stillErr
	}

	m := s.render(s.mainW, s.mainH)
	defer m.Close()
	data, err := helpers.EncodeJPEG(m, quality)
	if err != nil {
		return models.Still{}, err
	}
	s.stills++
	return models.Still{Data: data, CapturedAt: time.Now(), Width: s.mainW, Height: s.mainH}, nil
}

func (s *Synthetic) ApplyProfile(params models.ProfileParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return models.ErrDeviceBusy
	}
	s.applied = append(s.applied, params)
	return nil
}

func (s *Synthetic) MainResolution() (int, int) {
	return s.mainW, s.mainH
}

func (s *Synthetic) AnalysisResolution() (int, int) {
	return s.analysisW, s.analysisH
}

func (s *Synthetic) Close() error {
	return nil
}
