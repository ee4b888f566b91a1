/*
scorer.go - The scoring pipeline

PURPOSE:
  Combines three classical credit-risk ideas, each adapted from the
  company level down to a single invoice:

  Z-SCORE (Altman, 1968 coefficients):
    Z' = 1.2(WC) + 1.4(RE) + 3.3(EBIT) + 0.6(MVE) + 1.0(S)
    The five ratios are approximated with invoice-level proxies:
    payment terms for working capital, document quality for retained
    earnings, amount for EBIT, completeness for market value, text
    professionalism for sales.

  DISTANCE-TO-DEFAULT (Merton):
    DD = (ln(V/D) + (r - 0.5*sigma^2)*T) / (sigma*sqrt(T))
    with the invoice amount as V, a minimum-viable-invoice threshold as
    D, incompleteness as the volatility proxy, and payment terms as T.

  PROBABILITY OF DEFAULT:
    PD = 0.4 * Z-mapped PD + 0.6 * logistic(-DD), clipped to [0.01, 0.99].

  The composite score weighs credit 30%, liquidity 25%, market 25%,
  operational 20%. Valuation applies a PD-driven advance rate (80-95%)
  and risk discount to the invoice amount.

SEE ALSO:
  - features.go: Input extraction
  - types.go: Grade bands and result types
*/
package risk

import (
	"fmt"
	"math"
)

// Altman Z-Score coefficients (original 1968 model).
const (
	coefWorkingCapital   = 1.2
	coefRetainedEarnings = 1.4
	coefEBIT             = 3.3
	coefMarketValue      = 0.6
	coefSales            = 1.0
)

const (
	defaultThreshold = 1000 // minimum viable invoice, smallest-unit proxy
	riskFreeRate     = 0.05
)

// Scorer runs the full pipeline. Zero value is ready to use.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Analyze scores an invoice document end to end.
func (s *Scorer) Analyze(documentText string) Assessment {
	f := ExtractFeatures(documentText)

	z := s.zScore(f)
	dd := s.distanceToDefault(f)
	pd := s.probabilityOfDefault(z, dd)

	credit, liquidity, market, operational := s.componentScores(f, z, pd)
	score := credit*0.30 + liquidity*0.25 + market*0.25 + operational*0.20

	grade := GradeFromPD(pd)
	valuation := s.valuation(f, pd)

	return Assessment{
		Grade:                grade,
		ProbabilityOfDefault: pd,
		Valuation:            valuation,
		Confidence:           s.confidence(f, pd),
		Score:                score,
		Summary:              s.summary(grade, valuation),
		Reasoning:            s.reasoning(f, z, dd, pd),
		CreditRisk:           credit,
		LiquidityRisk:        liquidity,
		MarketRisk:           market,
		OperationalRisk:      operational,
	}
}

// zScore computes the modified Altman Z-Score over invoice-level proxies.
func (s *Scorer) zScore(f Features) float64 {
	amountNormalized := 0.3
	if f.Amount > 0 {
		amountNormalized = min(1.0, f.Amount/50000)
	}

	wc := max(0, 1-float64(f.PaymentTermsDays)/90)
	re := f.CompletenessScore*0.7 + f.FormalityScore*0.3
	ebit := 0.5 + amountNormalized*0.5
	mve := f.CompletenessScore
	sales := min(1.0, f.FormalityScore*0.6+float64(f.TextLength)/1000*0.4)

	return coefWorkingCapital*wc +
		coefRetainedEarnings*re +
		coefEBIT*ebit +
		coefMarketValue*mve +
		coefSales*sales
}

// distanceToDefault computes a Merton-style DD for the invoice.
func (s *Scorer) distanceToDefault(f Features) float64 {
	v := f.Amount
	if v <= 0 {
		v = 5000
	}

	// Lower completeness means a noisier document, modeled as volatility.
	sigma := max(0.1, 0.5-f.CompletenessScore*0.3)
	t := max(0.01, float64(f.PaymentTermsDays)/365)

	if v <= defaultThreshold {
		return -1.0
	}
	return (math.Log(v/defaultThreshold) + (riskFreeRate-0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
}

// probabilityOfDefault combines the accounting-based and market-based views.
func (s *Scorer) probabilityOfDefault(z, dd float64) float64 {
	// Empirical Z-Score to PD mapping.
	var zPD float64
	switch {
	case z > 3.0:
		zPD = 0.02
	case z > 2.7:
		zPD = 0.05
	case z > 2.0:
		zPD = 0.10
	case z > 1.8:
		zPD = 0.20
	case z > 1.5:
		zPD = 0.35
	default:
		zPD = 0.50 + (1.5-z)*0.25
	}

	// Logistic approximation of the normal CDF at -DD.
	ddPD := 1 / (1 + math.Exp(dd*1.5))

	pd := 0.4*zPD + 0.6*ddPD
	return max(0.01, min(0.99, pd))
}

func (s *Scorer) componentScores(f Features, z, pd float64) (credit, liquidity, market, operational float64) {
	credit = (1 - pd) * 100

	bank := 0.7
	if f.HasBankDetails {
		bank = 1.0
	}
	liquidity = (min(1.0, f.Amount/20000) +
		max(0, 1-float64(f.PaymentTermsDays)/120) +
		bank) / 3 * 100

	market = (f.CompletenessScore + f.FormalityScore + min(1.0, z/4)) / 3 * 100

	structural := 0.6
	if f.HasTaxID {
		structural += 0.2
	}
	if f.HasAddress {
		structural += 0.2
	}
	operational = (f.CompletenessScore +
		max(0, f.SentimentScore) +
		min(1.0, float64(f.TextLength)/500) +
		structural) / 4 * 100

	return credit, liquidity, market, operational
}

// confidence estimates how much to trust the assessment: richer documents
// and PDs far from 0.5 score higher.
func (s *Scorer) confidence(f Features, pd float64) float64 {
	dataConfidence := f.CompletenessScore*0.4 + 0.6
	textConfidence := min(1.0, float64(f.TextLength)/800)
	modelCertainty := 0.5 + (1-2*math.Abs(pd-0.5))*0.5

	c := dataConfidence*0.4 + textConfidence*0.3 + modelCertainty*0.3
	return min(0.99, max(0.50, c))
}

// valuation computes the recommended advance:
// amount * advanceRate(PD) * (1 - riskDiscount(PD)).
func (s *Scorer) valuation(f Features, pd float64) int64 {
	base := f.Amount
	if base <= 0 {
		// No figure detected; estimate from document quality.
		base = 5000 + f.CompletenessScore*10000
	}

	advanceRate := 0.95 - pd*0.15 // 80% to 95%
	riskDiscount := pd * 0.05

	return int64(base * advanceRate * (1 - riskDiscount))
}

func (s *Scorer) summary(grade Grade, valuation int64) string {
	desc := map[Grade]string{
		GradeAPlus:  "Exceptional creditworthiness with minimal default risk",
		GradeA:      "Strong credit profile with very low default probability",
		GradeAMinus: "Good credit standing with low risk indicators",
		GradeBPlus:  "Satisfactory credit profile with moderate-low risk",
		GradeB:      "Acceptable credit standing with moderate risk factors",
		GradeBMinus: "Fair credit profile requiring standard monitoring",
		GradeCPlus:  "Below average credit with elevated risk indicators",
		GradeC:      "Weak credit profile with significant risk factors",
		GradeCMinus: "Poor credit standing requiring enhanced due diligence",
		GradeD:      "Very high risk profile with substantial default probability",
		GradeF:      "Critical risk level - not recommended for factoring",
	}[grade]
	return fmt.Sprintf("%s. Recommended valuation: %d.", desc, valuation)
}

func (s *Scorer) reasoning(f Features, z, dd, pd float64) string {
	zone := "Distress zone"
	if z > 2.7 {
		zone = "Safe zone"
	} else if z > 1.8 {
		zone = "Grey zone"
	}
	return fmt.Sprintf(
		"Document completeness %.0f%%. Modified Z-Score %.2f (%s). Distance-to-default %.2f. Probability of default %.1f%%.",
		f.CompletenessScore*100, z, zone, dd, pd*100)
}
