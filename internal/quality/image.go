package quality

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"

	_ "image/jpeg"
	_ "image/png"

	"github.com/DandaAkhilReddy/reddy/internal/common"
	"github.com/DandaAkhilReddy/reddy/internal/vision"
)

// ImageReport is the outcome of checking one photo.
type ImageReport struct {
	Filename string  `json:"filename"`
	Format   string  `json:"format"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Bytes    int     `json:"bytes"`
	Score    float64 `json:"score"`
}

// Checker gates photos on size, format and resolution before any model call.
// A failed check is a hard scan failure: bad input photos poison every
// downstream estimate.
type Checker struct {
	cfg    common.QualityConfig
	logger *slog.Logger
}

func NewChecker(cfg common.QualityConfig, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{cfg: cfg, logger: logger}
}

var (
	magicJPEG = []byte{0xFF, 0xD8, 0xFF}
	magicPNG  = []byte{0x89, 0x50, 0x4E, 0x47}
)

// CheckImage validates one photo and scores it 0-100. An error means the
// photo cannot be used at all; a score below the configured floor is also an
// error.
func (c *Checker) CheckImage(p vision.Photo) (*ImageReport, error) {
	rep := &ImageReport{Filename: p.Filename, Bytes: len(p.Data)}

	if int64(len(p.Data)) < c.cfg.MinImageKB*1024 {
		return rep, common.NewImageQualityError(
			fmt.Sprintf("%s: %d bytes is below the %dKB minimum", p.Filename, len(p.Data), c.cfg.MinImageKB), nil)
	}
	if int64(len(p.Data)) > c.cfg.MaxImageMB*1024*1024 {
		return rep, common.NewImageQualityError(
			fmt.Sprintf("%s: %d bytes exceeds the %dMB maximum", p.Filename, len(p.Data), c.cfg.MaxImageMB), nil)
	}

	switch {
	case bytes.HasPrefix(p.Data, magicJPEG):
		rep.Format = "jpeg"
	case bytes.HasPrefix(p.Data, magicPNG):
		rep.Format = "png"
	default:
		return rep, common.NewImageQualityError(p.Filename+": not a JPEG or PNG image", nil)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(p.Data))
	if err != nil {
		return rep, common.NewImageQualityError(p.Filename+": undecodable image header", err)
	}
	rep.Width, rep.Height = cfg.Width, cfg.Height
	if cfg.Width < c.cfg.MinWidth || cfg.Height < c.cfg.MinHeight {
		return rep, common.NewImageQualityError(
			fmt.Sprintf("%s: %dx%d is below the %dx%d minimum", p.Filename, cfg.Width, cfg.Height, c.cfg.MinWidth, c.cfg.MinHeight), nil)
	}

	rep.Score = c.score(rep)
	if rep.Score < c.cfg.PassScore {
		return rep, common.NewImageQualityError(
			fmt.Sprintf("%s: quality score %.0f below floor %.0f", p.Filename, rep.Score, c.cfg.PassScore), nil)
	}

	c.logger.Debug("quality.image.ok",
		"file", p.Filename,
		"format", rep.Format,
		"dims", fmt.Sprintf("%dx%d", rep.Width, rep.Height),
		"score", rep.Score)
	return rep, nil
}

// score is a cheap heuristic: resolution and file weight are the only signals
// available without decoding pixels. Portrait orientation earns a small bonus
// since body photos are expected upright.
func (c *Checker) score(rep *ImageReport) float64 {
	score := 50.0

	px := rep.Width * rep.Height
	switch {
	case px >= 1920*1080:
		score += 30
	case px >= 1280*720:
		score += 20
	case px >= 800*600:
		score += 10
	}

	kb := rep.Bytes / 1024
	switch {
	case kb >= 500:
		score += 15
	case kb >= 200:
		score += 10
	case kb >= 100:
		score += 5
	}

	if rep.Height > rep.Width {
		score += 5
	}
	if score > 100 {
		score = 100
	}
	return score
}
