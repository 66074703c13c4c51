package analysis

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/common"
)

// Signature is the human-readable deterministic scan identifier, e.g.
// "VTaper-BF18.2-A3F2C1-AI0.87". Two scans with identical rounded
// measurements produce the identical signature.
type Signature struct {
	BodyType   constants.BodyType
	BodyFat    float64
	Hash       string
	Confidence float64
}

var reSignature = regexp.MustCompile(`^([A-Za-z]+)-BF(\d+\.\d+)-([A-F0-9]{6})-AI(\d+\.\d+)$`)

// NewSignature assembles the identifier from analysis outputs. Body fat is
// rounded to one decimal and confidence to two, matching String.
func NewSignature(bt constants.BodyType, bodyFat float64, hash string, conf float64) Signature {
	return Signature{
		BodyType:   bt,
		BodyFat:    round1(bodyFat),
		Hash:       hash,
		Confidence: round2(conf),
	}
}

func (s Signature) String() string {
	return fmt.Sprintf("%s-BF%.1f-%s-AI%.2f",
		constants.CompactBodyType(s.BodyType), s.BodyFat, s.Hash, s.Confidence)
}

// ParseSignature recovers the components from an identifier string.
func ParseSignature(id string) (Signature, error) {
	m := reSignature.FindStringSubmatch(id)
	if m == nil {
		return Signature{}, common.NewAppError("BAD_SIGNATURE", "malformed scan signature: "+id, common.ErrInvalidInput)
	}
	bt, ok := constants.ParseBodyType(m[1])
	if !ok {
		return Signature{}, common.NewAppError("BAD_SIGNATURE", "unknown body type in signature: "+m[1], common.ErrInvalidInput)
	}
	bf, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Signature{}, common.NewAppError("BAD_SIGNATURE", "bad body fat in signature", err)
	}
	conf, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return Signature{}, common.NewAppError("BAD_SIGNATURE", "bad confidence in signature", err)
	}
	return Signature{BodyType: bt, BodyFat: bf, Hash: m[3], Confidence: conf}, nil
}
