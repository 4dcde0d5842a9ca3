package service

import (
	"fmt"

	"github.com/mentorpay/mentorpay/internal/payout/domain"
	taxdomain "github.com/mentorpay/mentorpay/internal/tax/domain"
)

// Calculate maps one session's gross source, a tax configuration, and an
// optional manual adjustment to a payout breakdown. It is pure and
// deterministic: identical inputs yield bit-for-bit identical output.
//
// The deduction order is a business-rule contract:
//
//	platformFee = gross x platformFeePercent
//	gst         = platformFee x gstPercent   (on the fee, not the gross)
//	tds         = gross x tdsPercent
//
// Net is never floored at zero; a large negative adjustment may push it
// below zero and callers display it as-is.
func Calculate(src domain.GrossSource, cfg taxdomain.Config, adjustment float64) (domain.Breakdown, error) {
	if err := cfg.Validate(); err != nil {
		return domain.Breakdown{}, err
	}

	var gross float64
	switch src.Kind {
	case domain.GrossKindExplicit:
		if src.Gross < 0 {
			return domain.Breakdown{}, fmt.Errorf("%w: negative gross", domain.ErrInvalidSession)
		}
		gross = src.Gross
	case domain.GrossKindComputed:
		if src.DurationMinutes <= 0 || src.DurationMinutes%15 != 0 {
			return domain.Breakdown{}, fmt.Errorf("%w: duration must be a positive multiple of 15 minutes", domain.ErrInvalidSession)
		}
		if src.RatePerHour < 0 {
			return domain.Breakdown{}, fmt.Errorf("%w: negative rate", domain.ErrInvalidSession)
		}
		gross = float64(src.DurationMinutes) / 60 * src.RatePerHour
	default:
		return domain.Breakdown{}, fmt.Errorf("%w: unknown gross source %q", domain.ErrInvalidSession, src.Kind)
	}

	platformFee := gross * cfg.PlatformFeePercent / 100
	gst := platformFee * cfg.GSTPercent / 100
	tds := gross * cfg.TDSPercent / 100
	net := gross - platformFee - gst - tds + adjustment

	return domain.Breakdown{
		Gross:       gross,
		PlatformFee: platformFee,
		GST:         gst,
		TDS:         tds,
		Adjustment:  adjustment,
		Net:         net,
	}, nil
}
