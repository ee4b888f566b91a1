/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the ledger's domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNT ENCODING:
  Amounts travel as base-10 integer strings ("112000"), never as JSON
  numbers, so values beyond float64 precision survive the round trip.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/flowfi/factor-engine/factor"
	"github.com/flowfi/factor-engine/risk"
	"github.com/flowfi/factor-engine/store/sqlite"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// InvoiceDTO represents an invoice in API responses.
type InvoiceDTO struct {
	ID        uint64 `json:"id"`
	Owner     string `json:"owner"`
	Amount    string `json:"amount"`
	Reference string `json:"reference"`
	Funded    bool   `json:"is_funded"`
}

func invoiceDTO(inv factor.Invoice) InvoiceDTO {
	return InvoiceDTO{
		ID:        uint64(inv.ID),
		Owner:     string(inv.Owner),
		Amount:    inv.Amount.String(),
		Reference: inv.Reference,
		Funded:    inv.Funded,
	}
}

// MintRequest is the request to mint a new invoice.
type MintRequest struct {
	Amount    string `json:"amount"`
	Reference string `json:"reference"`
}

// FundRequest is the request to fund an invoice. AttachedValue is the
// native value the gateway escrowed with this call.
type FundRequest struct {
	AttachedValue string `json:"attached_value"`
}

// EventDTO represents a notification log entry.
type EventDTO struct {
	Seq       int64  `json:"seq"`
	Kind      string `json:"kind"`
	InvoiceID uint64 `json:"invoice_id"`
	Account   string `json:"account"`
	Amount    string `json:"amount"`
	Reference string `json:"reference,omitempty"`
	CreatedAt string `json:"created_at"`
}

// PayoutDTO represents one value movement to an invoice owner.
type PayoutDTO struct {
	ID        int64  `json:"id"`
	InvoiceID uint64 `json:"invoice_id"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	CreatedAt string `json:"created_at"`
}

func payoutDTO(rec sqlite.PayoutRecord) PayoutDTO {
	return PayoutDTO{
		ID:        rec.ID,
		InvoiceID: rec.InvoiceID,
		Recipient: rec.Recipient,
		Amount:    rec.Amount,
		CreatedAt: rec.CreatedAt.Format(timeFormat),
	}
}

// AnalyzeRequest is the request to score an invoice document.
type AnalyzeRequest struct {
	Document string `json:"document"`
}

// AssessmentDTO represents a risk assessment in API responses.
type AssessmentDTO struct {
	Grade                string  `json:"risk_score"`
	ProbabilityOfDefault float64 `json:"probability_of_default"`
	Valuation            int64   `json:"valuation"`
	Confidence           float64 `json:"confidence"`
	Score                float64 `json:"quantum_score"`
	Summary              string  `json:"summary"`
	Reasoning            string  `json:"reasoning"`
	CreditRisk           float64 `json:"credit_risk"`
	LiquidityRisk        float64 `json:"liquidity_risk"`
	MarketRisk           float64 `json:"market_risk"`
	OperationalRisk      float64 `json:"operational_risk"`
}

func assessmentDTO(a risk.Assessment) AssessmentDTO {
	return AssessmentDTO{
		Grade:                string(a.Grade),
		ProbabilityOfDefault: a.ProbabilityOfDefault,
		Valuation:            a.Valuation,
		Confidence:           a.Confidence,
		Score:                a.Score,
		Summary:              a.Summary,
		Reasoning:            a.Reasoning,
		CreditRisk:           a.CreditRisk,
		LiquidityRisk:        a.LiquidityRisk,
		MarketRisk:           a.MarketRisk,
		OperationalRisk:      a.OperationalRisk,
	}
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

const timeFormat = "2006-01-02T15:04:05Z07:00"
