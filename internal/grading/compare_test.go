package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"backend/internal/llm"
	"backend/internal/models"
)

func TestExpectedGroundTruth(t *testing.T) {
	tests := []struct {
		name        string
		groundTruth string
		flip        bool
		expected    string
	}{
		{"no flip acceptable", models.GroundTruthAcceptable, false, models.GroundTruthAcceptable},
		{"no flip unacceptable", models.GroundTruthUnacceptable, false, models.GroundTruthUnacceptable},
		{"flip acceptable", models.GroundTruthAcceptable, true, models.GroundTruthUnacceptable},
		{"flip unacceptable", models.GroundTruthUnacceptable, true, models.GroundTruthAcceptable},
		{"ungraded never flips", models.GroundTruthUngraded, true, models.GroundTruthUngraded},
		{"ungraded without flip", models.GroundTruthUngraded, false, models.GroundTruthUngraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpectedGroundTruth(tt.groundTruth, tt.flip))
		})
	}
}

func TestExpectedGroundTruthDoubleFlipRoundTrips(t *testing.T) {
	for _, gt := range []string{models.GroundTruthAcceptable, models.GroundTruthUnacceptable, models.GroundTruthUngraded} {
		assert.Equal(t, gt, ExpectedGroundTruth(ExpectedGroundTruth(gt, true), true))
	}
}

func TestAssessmentFromDecision(t *testing.T) {
	assert.Equal(t, models.AssessmentPass, AssessmentFromDecision(llm.DecisionAcceptable))
	assert.Equal(t, models.AssessmentFail, AssessmentFromDecision(llm.DecisionUnacceptable))
	assert.Equal(t, models.AssessmentUnknown, AssessmentFromDecision(llm.DecisionUnknown))
}

func TestAgreement(t *testing.T) {
	agree := Agreement(models.AssessmentPass, models.GroundTruthAcceptable)
	if assert.NotNil(t, agree) {
		assert.True(t, *agree)
	}

	disagree := Agreement(models.AssessmentPass, models.GroundTruthUnacceptable)
	if assert.NotNil(t, disagree) {
		assert.False(t, *disagree)
	}

	assert.Nil(t, Agreement(models.AssessmentPass, models.GroundTruthUngraded))
	assert.Nil(t, Agreement(models.AssessmentUnknown, models.GroundTruthAcceptable))
	assert.Nil(t, Agreement(models.AssessmentGrading, models.GroundTruthUnacceptable))
}

func TestValidity(t *testing.T) {
	tests := []struct {
		name       string
		assessment string
		expectedGT string
		validity   string
	}{
		{"pass matches acceptable", models.AssessmentPass, models.GroundTruthAcceptable, models.ValidityApproved},
		{"fail matches unacceptable", models.AssessmentFail, models.GroundTruthUnacceptable, models.ValidityApproved},
		{"pass against unacceptable", models.AssessmentPass, models.GroundTruthUnacceptable, models.ValidityDenied},
		{"fail against acceptable", models.AssessmentFail, models.GroundTruthAcceptable, models.ValidityDenied},
		{"unknown assessment is denied", models.AssessmentUnknown, models.GroundTruthAcceptable, models.ValidityDenied},
		{"grading assessment is denied", models.AssessmentGrading, models.GroundTruthUnacceptable, models.ValidityDenied},
		{"ungraded expectation is denied", models.AssessmentPass, models.GroundTruthUngraded, models.ValidityDenied},
		{"unknown against ungraded", models.AssessmentUnknown, models.GroundTruthUngraded, models.ValidityDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validity, Validity(tt.assessment, tt.expectedGT))
		})
	}
}
