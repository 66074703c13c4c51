package quality

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/common"
	"github.com/DandaAkhilReddy/reddy/internal/vision"
)

// Detector assigns a facing angle and a confidence to each photo. Confidence
// degrades with the evidence: an explicit client label beats a filename hint,
// which beats assuming upload order.
type Detector struct {
	logger *slog.Logger
}

func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger}
}

const (
	confLabeled    = 0.90
	confFilename   = 0.75
	confPositional = 0.55
)

// DetectAngles resolves one angle per photo and returns the confidence map.
// Two photos resolving to the same angle is a hard error: the scan cannot
// know which one to trust.
func (d *Detector) DetectAngles(photos []vision.Photo) (map[constants.Angle]float64, error) {
	if len(photos) != len(constants.RequiredAngles) {
		return nil, common.NewAngleDetectionError(
			fmt.Sprintf("expected %d photos, got %d", len(constants.RequiredAngles), len(photos)), nil)
	}

	confs := make(map[constants.Angle]float64, len(photos))
	seen := make(map[constants.Angle]string, len(photos))

	for i, p := range photos {
		angle, conf := resolve(p, i)
		if prev, dup := seen[angle]; dup {
			return nil, common.NewAngleDetectionError(
				fmt.Sprintf("photos %q and %q both resolve to the %s angle", prev, p.Filename, angle), nil)
		}
		seen[angle] = p.Filename
		confs[angle] = conf
		d.logger.Debug("quality.angle.resolved",
			"file", p.Filename, "angle", string(angle), "confidence", conf)
	}

	for _, required := range constants.RequiredAngles {
		if _, ok := confs[required]; !ok {
			return nil, common.NewAngleDetectionError(
				fmt.Sprintf("no photo resolved to the %s angle", required), nil)
		}
	}
	return confs, nil
}

func resolve(p vision.Photo, position int) (constants.Angle, float64) {
	if p.Angle != "" && p.Angle != constants.AngleUnknown {
		return p.Angle, confLabeled
	}
	if angle, ok := angleFromFilename(p.Filename); ok {
		return angle, confFilename
	}
	// fall back to upload order front, side, back
	return constants.RequiredAngles[position%len(constants.RequiredAngles)], confPositional
}

func angleFromFilename(name string) (constants.Angle, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "front"):
		return constants.AngleFront, true
	case strings.Contains(lower, "side"), strings.Contains(lower, "profile"):
		return constants.AngleSide, true
	case strings.Contains(lower, "back"), strings.Contains(lower, "rear"):
		return constants.AngleBack, true
	}
	return constants.AngleUnknown, false
}
