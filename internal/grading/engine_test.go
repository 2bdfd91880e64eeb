package grading

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnhs-dev/student-record-api/internal/models"
)

func score(v float64) *float64 { return &v }

func TestFinalGradeEmptyIsAbsent(t *testing.T) {
	assert.Nil(t, FinalGrade(nil, RoundWhole))
	assert.Nil(t, FinalGrade([]*float64{nil, nil, nil, nil}, RoundWhole))
}

func TestFinalGradeSkipsInvalidEntries(t *testing.T) {
	nan := math.NaN()
	got := FinalGrade([]*float64{score(80), score(90), &nan, score(85)}, RoundWhole)
	require.NotNil(t, got)
	assert.Equal(t, 85.0, *got)
}

func TestFinalGradePartialQuarters(t *testing.T) {
	// a missing quarter reduces the divisor, it does not count as zero
	got := FinalGrade([]*float64{score(80), score(90), nil, score(85)}, RoundWhole)
	require.NotNil(t, got)
	assert.Equal(t, 85.0, *got)
}

func TestFinalGradeSeniorHighPrecision(t *testing.T) {
	got := FinalGrade([]*float64{score(88), score(91)}, SubjectRounding(11))
	require.NotNil(t, got)
	assert.Equal(t, 89.5, *got)
}

func TestSubjectRounding(t *testing.T) {
	assert.Equal(t, 83.0, SubjectRounding(7)(82.5))
	assert.Equal(t, 82.5, SubjectRounding(11)(82.5))
	assert.Equal(t, 82.12, SubjectRounding(12)(82.116))
}

func TestMAPEHComposite(t *testing.T) {
	constituents := [][]*float64{
		{score(80), score(82), nil, score(88)}, // Music
		{score(85), score(84), nil, score(90)}, // Arts
		{score(90), score(88), nil, score(92)}, // PE
		{score(75), score(86), nil, score(94)}, // Health
	}
	composite := MAPEHComposite(constituents, 4, RoundWhole)
	require.Len(t, composite, 4)

	require.NotNil(t, composite[0])
	assert.Equal(t, 83.0, *composite[0]) // mean of 80,85,90,75 = 82.5 rounded

	require.NotNil(t, composite[1])
	assert.Equal(t, 85.0, *composite[1])

	assert.Nil(t, composite[2])

	require.NotNil(t, composite[3])
	assert.Equal(t, 91.0, *composite[3])
}

func TestMAPEHCompositeChangesWithConstituent(t *testing.T) {
	constituents := [][]*float64{
		{score(80)}, {score(85)}, {score(90)}, {score(75)},
	}
	before := MAPEHComposite(constituents, 1, RoundWhole)
	require.NotNil(t, before[0])

	constituents[3] = []*float64{score(95)}
	after := MAPEHComposite(constituents, 1, RoundWhole)
	require.NotNil(t, after[0])
	assert.NotEqual(t, *before[0], *after[0])
}

func TestMAPEHCompositeAllZeroIsAbsent(t *testing.T) {
	constituents := [][]*float64{
		{score(0)}, {score(0)}, {score(0)}, {score(0)},
	}
	composite := MAPEHComposite(constituents, 1, RoundWhole)
	assert.Nil(t, composite[0])
}

func TestMAPEHCompositePartialConstituents(t *testing.T) {
	constituents := [][]*float64{
		{score(80)}, {nil}, {score(90)}, {nil},
	}
	composite := MAPEHComposite(constituents, 1, RoundWhole)
	require.NotNil(t, composite[0])
	assert.Equal(t, 85.0, *composite[0])
}

func TestGeneralAverageExcludesAbsent(t *testing.T) {
	got := GeneralAverage([]*float64{score(80), nil, score(90), score(85)})
	require.NotNil(t, got)
	assert.Equal(t, 85.0, *got)
}

func TestGeneralAverageEmptyIsAbsent(t *testing.T) {
	assert.Nil(t, GeneralAverage(nil))
	assert.Nil(t, GeneralAverage([]*float64{nil, nil}))
}

func TestGeneralAverageTwoDecimals(t *testing.T) {
	got := GeneralAverage([]*float64{score(85), score(86), score(88)})
	require.NotNil(t, got)
	assert.Equal(t, 86.33, *got)
}

func TestPassFail(t *testing.T) {
	assert.Equal(t, models.StatusPassed, PassFail(score(75)))
	assert.Equal(t, models.StatusFailed, PassFail(score(74.9)))
	assert.Equal(t, models.StatusPassed, PassFail(score(100)))
	assert.Equal(t, models.StatusUndetermined, PassFail(nil))
}

func TestValidateScores(t *testing.T) {
	require.NoError(t, ValidateScores("Mathematics", []*float64{score(0), score(100), nil}))

	err := ValidateScores("Mathematics", []*float64{score(101)})
	require.Error(t, err)

	err = ValidateScores("Mathematics", []*float64{score(-1)})
	require.Error(t, err)

	nan := math.NaN()
	err = ValidateScores("Mathematics", []*float64{&nan})
	require.Error(t, err)
}
