/*
features.go - Regexp-based feature extraction from invoice text

PURPOSE:
  Turns raw document text into the Features struct the model scores.
  Extraction is pattern matching plus simple word counting; there is no
  tokenizer or external NLP dependency.

WHAT IS EXTRACTED:
  - Largest monetary figure near total/amount/due keywords
  - Currency symbol or code
  - Net-N payment terms
  - Presence signals: street address, tax id, bank details, email, phone
  - Formality from professional vocabulary and company suffixes
  - Sentiment from positive vs negative financial indicators
  - Completeness as the fraction of presence signals found

SEE ALSO:
  - scorer.go: Consumes Features
*/
package risk

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	amountPattern   = regexp.MustCompile(`(?i)(?:total|amount|sum|due|pay)[:\s]*[$€£]?\s*([0-9]{1,3}(?:,?[0-9]{3})*(?:\.[0-9]{2})?)`)
	currencyPattern = regexp.MustCompile(`(?i)(\$|€|£|USD|EUR|GBP)`)
	datePattern     = regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{2,4}|\d{4}[-/]\d{1,2}[-/]\d{1,2}`)
	emailPattern    = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	phonePattern    = regexp.MustCompile(`[+]?[(]?[0-9]{1,3}[)]?[-\s.]?[0-9]{3}[-\s.]?[0-9]{4,6}`)
	taxIDPattern    = regexp.MustCompile(`(?i)(?:tax\s*id|ein|vat)[:\s]*([A-Z0-9-]+)`)
	termsPattern    = regexp.MustCompile(`(?i)(?:net|payment\s*terms?)[:\s]*(\d+)\s*(?:days?)?`)
	addressPattern  = regexp.MustCompile(`(?i)\d{1,5}\s+[\w\s]+(?:street|st|avenue|ave|road|rd|boulevard|blvd)`)
	bankPattern     = regexp.MustCompile(`(?i)bank|account|routing|iban|swift`)

	companyPattern      = regexp.MustCompile(`(?i)\b(Inc\.?|LLC|Ltd\.?|Corp\.?|Corporation|Company|Co\.?|GmbH|S\.A\.)\b`)
	professionalPattern = regexp.MustCompile(`(?i)\b(invoice|receipt|statement|billing|remittance|payable|receivable)\b`)
)

var currencyNames = map[string]string{"$": "USD", "€": "EUR", "£": "GBP"}

var positiveWords = []string{"paid", "approved", "confirmed", "received", "complete", "thank"}
var negativeWords = []string{"overdue", "late", "penalty", "urgent", "final notice", "collection"}

// ExtractFeatures turns invoice document text into model features.
func ExtractFeatures(text string) Features {
	f := Features{
		Currency:         "USD",
		PaymentTermsDays: 30,
		TextLength:       len(text),
	}

	// Largest figure near a total/amount keyword wins.
	for _, m := range amountPattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err == nil && v > f.Amount {
			f.Amount = v
		}
	}

	if m := currencyPattern.FindStringSubmatch(text); m != nil {
		cur := strings.ToUpper(m[1])
		if name, ok := currencyNames[m[1]]; ok {
			cur = name
		}
		f.Currency = cur
	}

	if m := termsPattern.FindStringSubmatch(text); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil {
			f.PaymentTermsDays = days
		}
	}

	f.HasAddress = addressPattern.MatchString(text)
	f.HasTaxID = taxIDPattern.MatchString(text)
	f.HasBankDetails = bankPattern.MatchString(text)
	// Longer documents are assumed to carry letterhead.
	f.HasLogo = strings.Contains(strings.ToLower(text), "logo") || len(text) > 500

	completenessSignals := []bool{
		f.HasAddress,
		f.HasTaxID,
		f.HasBankDetails,
		f.HasLogo,
		emailPattern.MatchString(text),
		phonePattern.MatchString(text),
		datePattern.MatchString(text),
		f.Amount > 0,
	}
	found := 0
	for _, ok := range completenessSignals {
		if ok {
			found++
		}
	}
	f.CompletenessScore = float64(found) / float64(len(completenessSignals))

	professional := len(professionalPattern.FindAllString(text, -1))
	companies := len(companyPattern.FindAllString(text, -1))
	f.FormalityScore = min(1.0, float64(professional+companies)/10)

	lower := strings.ToLower(text)
	pos, neg := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}
	if pos+neg > 0 {
		f.SentimentScore = float64(pos-neg) / float64(pos+neg)
	}

	return f
}
