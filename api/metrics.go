/*
metrics.go - Prometheus instrumentation for ledger operations

PURPOSE:
  Operational counters for the factoring service, exposed on /metrics.
  Fund failures are labeled by reason so the three precondition failure
  modes can be alerted on independently.
*/
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invoicesMinted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flowfi_invoices_minted_total",
		Help: "Number of invoices minted.",
	})

	invoicesFunded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flowfi_invoices_funded_total",
		Help: "Number of invoices funded.",
	})

	fundFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowfi_fund_failures_total",
		Help: "Fund calls rejected, by precondition.",
	}, []string{"reason"})

	documentsAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flowfi_documents_analyzed_total",
		Help: "Invoice documents scored by the risk model.",
	})
)

const (
	reasonNotFound      = "not_found"
	reasonAlreadyFunded = "already_funded"
	reasonInsufficient  = "insufficient_funds"
	reasonInternal      = "internal"
)
