package service

import (
	"github.com/mentorpay/mentorpay/internal/payout/domain"
)

// Aggregate folds per-session breakdowns into run totals. Sums are taken
// over the unrounded values and rounded once at the end, so totals stay
// within one cent of the sum of the rounded display components. An empty
// input yields the zero aggregate, not an error.
func Aggregate(breakdowns []domain.Breakdown) domain.AggregateResult {
	var (
		totalNet         float64
		totalAdjustments float64
		totalTax         float64
	)
	mentors := make(map[string]struct{}, len(breakdowns))
	perSession := make([]domain.Breakdown, 0, len(breakdowns))

	for _, b := range breakdowns {
		totalNet += b.Net
		totalAdjustments += b.Adjustment
		totalTax += b.GST + b.TDS
		if b.MentorID != "" {
			mentors[b.MentorID] = struct{}{}
		}
		perSession = append(perSession, b.Rounded())
	}

	return domain.AggregateResult{
		TotalNet:            domain.Round2(totalNet),
		TotalAdjustments:    domain.Round2(totalAdjustments),
		TotalTax:            domain.Round2(totalTax),
		AffectedMentorCount: len(mentors),
		SessionCount:        len(breakdowns),
		PerSession:          perSession,
	}
}
