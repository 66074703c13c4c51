package pipeline

import (
	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/analysis"
)

// assemble finalizes the deterministic identity of the report: the content
// hash over rounded measurements and ratios, and the scan signature built
// from it.
func (o *Orchestrator) assemble(report *Report) error {
	hash, err := analysis.ContentHash(report.Measurements, report.Ratios)
	if err != nil {
		return err
	}
	report.ContentHash = hash

	bodyFat := report.Measurements[constants.FieldBodyFat]
	sig := analysis.NewSignature(report.BodyType, bodyFat, hash, report.Confidence.Total)
	report.Signature = sig.String()
	return nil
}
