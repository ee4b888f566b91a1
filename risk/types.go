/*
Package risk scores invoice documents for factoring.

PURPOSE:
  Before a funder advances payment against an invoice, they want a view
  of how likely that receivable is to pay out. This package implements a
  deterministic multi-factor credit model over the invoice document text:

  1. Feature extraction (regexp-based, see features.go)
  2. Modified Altman Z-Score over feature proxies
  3. Merton-style distance-to-default
  4. Combined probability of default
  5. Composite 0-100 score across four risk dimensions
  6. S&P-style grade and a factoring valuation

  The model is pure arithmetic: no network calls, no external model
  files, sub-millisecond per document.

KEY CONCEPTS IN THIS FILE (types.go):
  - Grade: S&P-style rating from A+ down to F
  - Features: What was extracted from the document
  - Assessment: The complete scoring result

SEE ALSO:
  - features.go: Text feature extraction
  - scorer.go: The scoring pipeline
*/
package risk

// =============================================================================
// GRADES - S&P-style rating scale
// =============================================================================

type Grade string

const (
	GradeAPlus  Grade = "A+"
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeCMinus Grade = "C-"
	GradeD      Grade = "D"
	GradeF      Grade = "F"
)

// gradeBand maps a probability-of-default range [Low, High) to a grade.
// Bands tile [0, 1) in order.
type gradeBand struct {
	Grade Grade
	Low   float64
	High  float64
}

var gradeBands = []gradeBand{
	{GradeAPlus, 0.00, 0.01},
	{GradeA, 0.01, 0.03},
	{GradeAMinus, 0.03, 0.05},
	{GradeBPlus, 0.05, 0.10},
	{GradeB, 0.10, 0.15},
	{GradeBMinus, 0.15, 0.25},
	{GradeCPlus, 0.25, 0.35},
	{GradeC, 0.35, 0.50},
	{GradeCMinus, 0.50, 0.65},
	{GradeD, 0.65, 0.85},
	{GradeF, 0.85, 1.00},
}

// GradeFromPD converts a probability of default to a grade.
func GradeFromPD(pd float64) Grade {
	for _, b := range gradeBands {
		if pd >= b.Low && pd < b.High {
			return b.Grade
		}
	}
	return GradeF
}

// =============================================================================
// FEATURES - Extracted from the invoice document
// =============================================================================

// Features is the structured view of an invoice document used by the model.
type Features struct {
	// Monetary
	Amount   float64
	Currency string

	// Temporal
	PaymentTermsDays int

	// Document quality
	TextLength     int
	HasLogo        bool
	HasAddress     bool
	HasTaxID       bool
	HasBankDetails bool

	// Derived
	SentimentScore    float64 // -1 to 1
	FormalityScore    float64 // 0 to 1
	CompletenessScore float64 // 0 to 1
}

// =============================================================================
// ASSESSMENT - Complete scoring result
// =============================================================================

// Assessment is the full risk picture for one invoice document.
type Assessment struct {
	Grade                Grade
	ProbabilityOfDefault float64 // 0 to 1
	Valuation            int64   // recommended advance, smallest currency unit
	Confidence           float64 // 0 to 1
	Score                float64 // composite, 0 to 100, higher = lower risk
	Summary              string
	Reasoning            string

	// Component scores, 0 to 100
	CreditRisk      float64
	LiquidityRisk   float64
	MarketRisk      float64
	OperationalRisk float64
}
