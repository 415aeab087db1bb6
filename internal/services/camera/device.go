package camera

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"cornerwatch-go/internal/config"
	"cornerwatch-go/internal/helpers"
	"cornerwatch-go/internal/logging"
	"cornerwatch-go/internal/models"
)

// Device is the gocv VideoCapture implementation of Source
type Device struct {
	cfg    *config.Config
	logger zerolog.Logger

	mu  sync.Mutex
	cap *gocv.VideoCapture
	raw gocv.Mat

	params    models.ProfileParams
	hasParams bool

	// device defaults read at open; profile contrast and saturation scale these
	baseContrast   float64
	baseSaturation float64

	consecutiveErrors int
	reopenAttempts    int
	nextReopen        time.Time
}

// NewDevice creates a device; the capture is opened lazily on first read
func NewDevice(cfg *config.Config) *Device {
	return &Device{
		cfg:    cfg,
		logger: logging.NewServiceLogger(cfg, "camera"),
		raw:    gocv.NewMat(),
	}
}

// Open opens the capture now so startup reports a missing camera early
func (d *Device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.openLocked()
}

func (d *Device) openLocked() error {
	if d.cap != nil {
		return nil
	}

	var (
		vc  *gocv.VideoCapture
		err error
	)
	if isStreamURL(d.cfg.CameraDevice) {
		configureFFmpegOptions()
		vc, err = gocv.OpenVideoCaptureWithAPI(d.cfg.CameraDevice, gocv.VideoCaptureFFmpeg)
	} else if idx, convErr := strconv.Atoi(d.cfg.CameraDevice); convErr == nil {
		vc, err = gocv.OpenVideoCapture(idx)
	} else {
		vc, err = gocv.OpenVideoCapture(d.cfg.CameraDevice)
	}
	if err != nil {
		return fmt.Errorf("failed to open camera %s: %w", d.cfg.CameraDevice, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("camera %s is not opened", d.cfg.CameraDevice)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(d.cfg.MainWidth))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(d.cfg.MainHeight))
	vc.Set(gocv.VideoCaptureBufferSize, 1)

	d.baseContrast = vc.Get(gocv.VideoCaptureContrast)
	d.baseSaturation = vc.Get(gocv.VideoCaptureSaturation)
	d.cap = vc
	d.consecutiveErrors = 0
	d.reopenAttempts = 0

	if d.hasParams {
		d.writeParamsLocked(d.params)
	}

	d.logger.Info().
		Str("device", d.cfg.CameraDevice).
		Float64("actual_width", vc.Get(gocv.VideoCaptureFrameWidth)).
		Float64("actual_height", vc.Get(gocv.VideoCaptureFrameHeight)).
		Msg("VideoCapture opened")
	return nil
}

// read grabs one full-resolution frame into d.raw. Callers hold d.mu.
func (d *Device) readLocked() error {
	if d.cap == nil {
		if time.Now().Before(d.nextReopen) {
			return fmt.Errorf("%w: waiting to reopen camera", models.ErrFrameUnavailable)
		}
		if err := d.openLocked(); err != nil {
			d.scheduleReopen()
			return fmt.Errorf("%w: %v", models.ErrFrameUnavailable, err)
		}
	}

	if ok := d.cap.Read(&d.raw); !ok || d.raw.Empty() {
		d.consecutiveErrors++
		if d.consecutiveErrors >= d.cfg.MaxReadErrors {
			d.logger.Warn().
				Int("consecutive_errors", d.consecutiveErrors).
				Msg("Resetting VideoCapture due to consecutive errors")
			d.cap.Close()
			d.cap = nil
			d.scheduleReopen()
		}
		return fmt.Errorf("%w: read failed", models.ErrFrameUnavailable)
	}
	d.consecutiveErrors = 0
	return nil
}

// scheduleReopen sets a jittered exponential backoff before the next open attempt
func (d *Device) scheduleReopen() {
	delay := time.Duration(math.Pow(2, float64(d.reopenAttempts))) * time.Second
	if delay < d.cfg.ReconnectBackoffMin {
		delay = d.cfg.ReconnectBackoffMin
	}
	if delay > d.cfg.ReconnectBackoffMax {
		delay = d.cfg.ReconnectBackoffMax
	}
	delay += time.Duration(float64(delay) * 0.2 * (rand.Float64()*2 - 1))

	d.reopenAttempts++
	d.nextReopen = time.Now().Add(delay)
}

func (d *Device) lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	return nil
}

// AnalysisFrame returns the current frame resized to the analysis resolution
func (d *Device) AnalysisFrame(ctx context.Context) (*Frame, error) {
	if err := d.lock(ctx); err != nil {
		return nil, err
	}
	defer d.mu.Unlock()

	if err := d.readLocked(); err != nil {
		return nil, err
	}
	out := gocv.NewMat()
	gocv.Resize(d.raw, &out, image.Pt(d.cfg.AnalysisWidth, d.cfg.AnalysisHeight), 0, 0, gocv.InterpolationArea)
	return &Frame{Mat: out, CapturedAt: time.Now()}, nil
}

// CaptureFrame returns a copy of the current full-resolution frame
func (d *Device) CaptureFrame(ctx context.Context) (*Frame, error) {
	if err := d.lock(ctx); err != nil {
		return nil, err
	}
	defer d.mu.Unlock()

	if err := d.readLocked(); err != nil {
		return nil, err
	}
	return &Frame{Mat: d.raw.Clone(), CapturedAt: time.Now()}, nil
}

// CaptureStill encodes a full-resolution frame with the active noise reduction
func (d *Device) CaptureStill(ctx context.Context, quality int) (models.Still, error) {
	if err := d.lock(ctx); err != nil {
		return models.Still{}, err
	}
	if err := d.readLocked(); err != nil {
		d.mu.Unlock()
		return models.Still{}, err
	}
	frame := d.raw.Clone()
	mode := d.params.NoiseReduction
	d.mu.Unlock()
	defer frame.Close()

	capturedAt := time.Now()
	src := frame
	if denoised, ok := helpers.Denoise(frame, mode); ok {
		defer denoised.Close()
		src = denoised
	}

	data, err := helpers.EncodeJPEG(src, quality)
	if err != nil {
		return models.Still{}, err
	}
	return models.Still{Data: data, CapturedAt: capturedAt, Width: src.Cols(), Height: src.Rows()}, nil
}

// ApplyProfile writes exposure, gain, contrast and saturation to the device.
// It does not wait for a frame read in progress and reports ErrDeviceBusy instead.
func (d *Device) ApplyProfile(params models.ProfileParams) error {
	if !d.mu.TryLock() {
		return models.ErrDeviceBusy
	}
	defer d.mu.Unlock()

	if d.cap == nil {
		return fmt.Errorf("%w: camera not open", models.ErrDeviceBusy)
	}
	d.writeParamsLocked(params)
	d.params = params
	d.hasParams = true
	return nil
}

func (d *Device) writeParamsLocked(p models.ProfileParams) {
	// V4L2 manual exposure mode, exposure in 100us units
	d.cap.Set(gocv.VideoCaptureAutoExposure, 1)
	d.cap.Set(gocv.VideoCaptureExposure, float64(p.ExposureMicros)/100)
	d.cap.Set(gocv.VideoCaptureGain, p.Gain)
	if d.baseContrast > 0 {
		d.cap.Set(gocv.VideoCaptureContrast, d.baseContrast*p.Contrast)
	}
	if d.baseSaturation > 0 {
		d.cap.Set(gocv.VideoCaptureSaturation, d.baseSaturation*p.Saturation)
	}
}

func (d *Device) MainResolution() (int, int) {
	return d.cfg.MainWidth, d.cfg.MainHeight
}

func (d *Device) AnalysisResolution() (int, int) {
	return d.cfg.AnalysisWidth, d.cfg.AnalysisHeight
}

// Close releases the capture
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var err error
	if d.cap != nil {
		err = d.cap.Close()
		d.cap = nil
	}
	d.raw.Close()
	return err
}

func isStreamURL(device string) bool {
	for _, scheme := range []string{"rtsp://", "rtsps://", "http://", "https://"} {
		if strings.HasPrefix(device, scheme) {
			return true
		}
	}
	return false
}

// configureFFmpegOptions sets the low-latency FFmpeg options OpenCV reads for network streams
func configureFFmpegOptions() {
	opts := []string{
		"rtsp_transport;tcp",
		"max_delay;500000",
		"stimeout;5000000",
		"flags;low_delay",
		"fflags;nobuffer",
		"allowed_media_types;video",
	}
	os.Setenv("OPENCV_FFMPEG_CAPTURE_OPTIONS", strings.Join(opts, "|"))
}
