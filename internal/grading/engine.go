// Package grading implements the grade computation core: subject final
// grades, the MAPEH composite, general averages, and pass classification.
// All functions are pure and total; missing data is carried as nil, never
// zero, and surfaces to callers as an absent result rather than an error.
package grading

import (
	"fmt"
	"math"

	"github.com/mnhs-dev/student-record-api/internal/models"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
)

// PassingMark is the minimum final grade considered passing.
const PassingMark = 75.0

// Rounding normalizes a computed mean to its display precision.
type Rounding func(float64) float64

// RoundWhole rounds to the nearest integer. Used for junior-high subject
// finals and MAPEH quarter composites.
func RoundWhole(v float64) float64 {
	return math.Round(v)
}

// RoundTwoDecimals rounds half-to-even at two decimal places. Used for
// senior-high semester finals and all general averages.
func RoundTwoDecimals(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// SubjectRounding picks the subject-final convention for a grade level.
func SubjectRounding(gradeLevel int) Rounding {
	if gradeLevel <= 10 {
		return RoundWhole
	}
	return RoundTwoDecimals
}

// FinalGrade computes the mean of the valid scores, rounded with the given
// convention. Nil and NaN slots are excluded. Returns nil when no valid
// score remains.
func FinalGrade(scores []*float64, round Rounding) *float64 {
	var sum float64
	var count int
	for _, s := range scores {
		if s == nil || math.IsNaN(*s) {
			continue
		}
		sum += *s
		count++
	}
	if count == 0 {
		return nil
	}
	result := round(sum / float64(count))
	return &result
}

// MAPEHComposite derives the composite quarter scores from the constituent
// subjects' quarter scores. constituents[i][q] is constituent i's score for
// quarter q. A quarter whose constituents are all absent, or all zero, has
// an absent composite. The returned slice has one slot per quarter.
func MAPEHComposite(constituents [][]*float64, quarters int, round Rounding) []*float64 {
	composite := make([]*float64, quarters)
	for q := 0; q < quarters; q++ {
		var sum float64
		var count int
		nonZero := false
		for _, scores := range constituents {
			if q >= len(scores) || scores[q] == nil || math.IsNaN(*scores[q]) {
				continue
			}
			sum += *scores[q]
			count++
			if *scores[q] != 0 {
				nonZero = true
			}
		}
		if count == 0 || !nonZero {
			continue
		}
		value := round(sum / float64(count))
		composite[q] = &value
	}
	return composite
}

// GeneralAverage computes the mean of the present subject finals at two
// decimal places. Absent finals are excluded; an entry with no present
// final has no general average.
func GeneralAverage(finals []*float64) *float64 {
	var sum float64
	var count int
	for _, f := range finals {
		if f == nil {
			continue
		}
		sum += *f
		count++
	}
	if count == 0 {
		return nil
	}
	result := RoundTwoDecimals(sum / float64(count))
	return &result
}

// PassFail classifies a final grade against the passing mark.
func PassFail(final *float64) models.PassStatus {
	if final == nil {
		return models.StatusUndetermined
	}
	if *final >= PassingMark {
		return models.StatusPassed
	}
	return models.StatusFailed
}

// ValidateScores rejects scores outside the 0 to 100 range before they
// enter any averaging. Nil slots pass; they mean no score was entered.
func ValidateScores(subject string, scores []*float64) error {
	for i, s := range scores {
		if s == nil {
			continue
		}
		if math.IsNaN(*s) || math.IsInf(*s, 0) || *s < 0 || *s > 100 {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("%s: score in period %d must be between 0 and 100", subject, i+1))
		}
	}
	return nil
}
