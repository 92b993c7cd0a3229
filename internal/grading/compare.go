package grading

import (
	"backend/internal/llm"
	"backend/internal/models"
)

// ExpectedGroundTruth returns the label the AI is expected to produce for a
// transformed statement. Label-flipping criteria invert graded labels;
// ungraded stays ungraded regardless of the flip flag.
func ExpectedGroundTruth(groundTruth string, flipLabel bool) string {
	if !flipLabel || groundTruth == models.GroundTruthUngraded {
		return groundTruth
	}
	switch groundTruth {
	case models.GroundTruthAcceptable:
		return models.GroundTruthUnacceptable
	case models.GroundTruthUnacceptable:
		return models.GroundTruthAcceptable
	}
	return groundTruth
}

// AssessmentFromDecision maps a provider decision to the stored assessment
// vocabulary.
func AssessmentFromDecision(d llm.Decision) string {
	switch d {
	case llm.DecisionAcceptable:
		return models.AssessmentPass
	case llm.DecisionUnacceptable:
		return models.AssessmentFail
	}
	return models.AssessmentUnknown
}

// Matches is the single comparison routine between an AI assessment and a
// ground truth label. Statement agreement and perturbation validity both go
// through here so the two can never drift apart.
func Matches(assessment, groundTruth string) bool {
	switch assessment {
	case models.AssessmentPass:
		return groundTruth == models.GroundTruthAcceptable
	case models.AssessmentFail:
		return groundTruth == models.GroundTruthUnacceptable
	}
	return false
}

// Agreement returns whether the assessment agrees with the user's ground
// truth, or nil when either side is not conclusive.
func Agreement(assessment, groundTruth string) *bool {
	if groundTruth == models.GroundTruthUngraded {
		return nil
	}
	if assessment != models.AssessmentPass && assessment != models.AssessmentFail {
		return nil
	}
	v := Matches(assessment, groundTruth)
	return &v
}

// Validity classifies a perturbation given its assessment and the expected
// (possibly flipped) ground truth. The outcome is two-valued: anything short
// of a definite match, including an unknown assessment or an ungraded
// expectation, is denied. ValidityUngraded is only the seed state of rows
// that have never been compared.
func Validity(assessment, expectedGroundTruth string) string {
	if Matches(assessment, expectedGroundTruth) {
		return models.ValidityApproved
	}
	return models.ValidityDenied
}
