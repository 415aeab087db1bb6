package calibration

import (
	"fmt"

	"gocv.io/x/gocv"

	"cornerwatch-go/internal/models"
	"cornerwatch-go/internal/services/detection"
)

// SelectProfile returns the first profile whose threshold L meets, brightest first.
// A value exactly at a threshold selects the brighter profile.
func SelectProfile(l float64, t models.Thresholds) models.Profile {
	switch {
	case l >= t.DayBright:
		return models.ProfileDayBright
	case l >= t.Day:
		return models.ProfileDay
	case l >= t.DuskBright:
		return models.ProfileDuskBright
	case l >= t.DuskDark:
		return models.ProfileDuskDark
	default:
		return models.ProfileNight
	}
}

// MeasureLuminance returns the mean intensity (0-255) of a BGR frame inside the
// enabled calibration regions, or of the whole frame when none apply.
// Regions are in main-stream coordinates.
func MeasureLuminance(frame gocv.Mat, regions []models.Region, mainW, mainH int) (float64, error) {
	if frame.Empty() {
		return 0, fmt.Errorf("%w: empty frame", models.ErrFrameUnavailable)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() == 1 {
		frame.CopyTo(&gray)
	} else {
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	}

	mask := detection.CompileMask(models.EnabledRects(regions), detection.Geometry{
		MainWidth: mainW, MainHeight: mainH,
		TargetWidth: gray.Cols(), TargetHeight: gray.Rows(),
	})
	defer mask.Close()

	if mask == nil || mask.Never() {
		return gray.Mean().Val1, nil
	}
	return gray.MeanWithMask(mask.Mat()).Val1, nil
}
