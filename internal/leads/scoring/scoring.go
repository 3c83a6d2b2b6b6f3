// Package scoring derives the completion percentage, tier and priority of
// a lead from its field completeness. Scoring is a pure function invoked
// by the lifecycle service on create and update; the three outputs are
// always consistent with each other because tier and priority derive from
// the same percentage.
package scoring

import (
	"math"
	"strings"

	"leadportal_backend/internal/leads/domain"
)

// Input carries the fields that participate in scoring. Presence is
// binary: an empty string or nil number counts as absent.
type Input struct {
	Name               string
	Email              string
	Phone              string
	TotalDebtAmount    *float64
	DebtCategory       string
	NumberOfCreditors  *int
	MonthlyDebtPayment *float64
	CreditScoreRange   string
}

// Result is the derived triple stored on every save.
type Result struct {
	CompletionPercentage int
	Tier                 domain.Tier
	Priority             domain.Priority
}

// requiredFieldCount is the size of the fixed scoring field list.
const requiredFieldCount = 8

// Score computes the completion percentage and the step-function tiering:
// >= 80 hot/high, >= 50 warm/medium, below that cold/low.
func Score(in Input) Result {
	filled := 0
	for _, present := range []bool{
		present(in.Name),
		present(in.Email),
		present(in.Phone),
		in.TotalDebtAmount != nil,
		present(in.DebtCategory),
		in.NumberOfCreditors != nil,
		in.MonthlyDebtPayment != nil,
		present(in.CreditScoreRange),
	} {
		if present {
			filled++
		}
	}

	percentage := int(math.Round(100 * float64(filled) / float64(requiredFieldCount)))

	tier, priority := tierFor(percentage)
	return Result{
		CompletionPercentage: percentage,
		Tier:                 tier,
		Priority:             priority,
	}
}

func tierFor(percentage int) (domain.Tier, domain.Priority) {
	switch {
	case percentage >= 80:
		return domain.TierHot, domain.PriorityHigh
	case percentage >= 50:
		return domain.TierWarm, domain.PriorityMedium
	default:
		return domain.TierCold, domain.PriorityLow
	}
}

func present(value string) bool {
	return strings.TrimSpace(value) != ""
}
