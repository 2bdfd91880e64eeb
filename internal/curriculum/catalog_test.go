package curriculum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnhs-dev/student-record-api/internal/models"
)

func strandPtr(s models.Strand) *models.Strand          { return &s }
func subOptPtr(o models.TVLSubOption) *models.TVLSubOption { return &o }

func TestSubjectsForJuniorHigh(t *testing.T) {
	subjects, err := SubjectsFor(7, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, subjects, "Filipino")
	assert.Contains(t, subjects, SubjectMAPEH)
	for _, constituent := range MAPEHConstituents {
		assert.Contains(t, subjects, constituent)
	}

	// strand is ignored below grade 11
	withStrand, err := SubjectsFor(10, strandPtr(models.StrandSTEM), nil)
	require.NoError(t, err)
	assert.Equal(t, subjects, withStrand)
}

func TestSubjectsForSeniorHighStrands(t *testing.T) {
	stem, err := SubjectsFor(11, strandPtr(models.StrandSTEM), nil)
	require.NoError(t, err)
	assert.Contains(t, stem, "General Mathematics")
	assert.Contains(t, stem, "Pre-Calculus")
	assert.NotContains(t, stem, SubjectMAPEH)

	abm, err := SubjectsFor(12, strandPtr(models.StrandABM), nil)
	require.NoError(t, err)
	assert.Contains(t, abm, "Business Finance")
	assert.NotContains(t, abm, "Pre-Calculus")
}

func TestSubjectsForTVLRequiresSpecialization(t *testing.T) {
	_, err := SubjectsFor(11, strandPtr(models.StrandTVL), nil)
	require.Error(t, err)

	css, err := SubjectsFor(11, strandPtr(models.StrandTVL), subOptPtr(models.TVLComputerSystems))
	require.NoError(t, err)
	assert.Contains(t, css, "Computer Hardware Servicing")

	cookery, err := SubjectsFor(12, strandPtr(models.StrandTVL), subOptPtr(models.TVLCookery))
	require.NoError(t, err)
	assert.Contains(t, cookery, "Menu Planning and Food Costing")
}

func TestSubjectsForInvalidInputs(t *testing.T) {
	_, err := SubjectsFor(6, nil, nil)
	require.Error(t, err)

	_, err = SubjectsFor(11, nil, nil)
	require.Error(t, err)
}

func TestSubjectsForReturnsCopy(t *testing.T) {
	first, err := SubjectsFor(8, nil, nil)
	require.NoError(t, err)
	first[0] = "mutated"

	second, err := SubjectsFor(8, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Filipino", second[0])
}

func TestIsMAPEHConstituent(t *testing.T) {
	assert.True(t, IsMAPEHConstituent("Music"))
	assert.True(t, IsMAPEHConstituent("Health"))
	assert.False(t, IsMAPEHConstituent("Mathematics"))
	assert.False(t, IsMAPEHConstituent(SubjectMAPEH))
}

func TestHasMAPEH(t *testing.T) {
	assert.True(t, HasMAPEH(7))
	assert.True(t, HasMAPEH(10))
	assert.False(t, HasMAPEH(11))
}
