package pipeline

import (
	"context"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/confidence"
	"github.com/DandaAkhilReddy/reddy/internal/extraction"
	"github.com/DandaAkhilReddy/reddy/internal/quality"
	"github.com/DandaAkhilReddy/reddy/internal/validation"
	"github.com/DandaAkhilReddy/reddy/internal/vision"
)

// Collaborator interfaces the orchestrator depends on. The concrete types from
// quality, vision, extraction, validation and confidence satisfy them.
type (
	ImageChecker interface {
		CheckImage(p vision.Photo) (*quality.ImageReport, error)
	}

	AngleDetector interface {
		DetectAngles(photos []vision.Photo) (map[constants.Angle]float64, error)
	}

	VisionCaller interface {
		Call(ctx context.Context, photos []vision.Photo, user vision.UserContext) (*vision.RawResponse, error)
	}

	Extractor interface {
		Extract(raw string) (*extraction.Result, error)
	}

	Validator interface {
		Validate(data map[string]any) *validation.Result
	}

	Scorer interface {
		Score(in confidence.Inputs) *confidence.Breakdown
	}
)
