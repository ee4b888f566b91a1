/*
handlers_test.go - Tests for API handlers

Tests the full mint -> fund -> read lifecycle through the real router,
plus the error mapping for each fund precondition.
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flowfi/factor-engine/store/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	router := NewRouter(NewHandler(store), []string{"http://localhost:3000"})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, caller string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set(CallerHeader, caller)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return out
}

func TestMintAndGetInvoice(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, "POST", srv.URL+"/api/invoices", "alice",
		MintRequest{Amount: "1000", Reference: "doc1"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	minted := decodeBody[InvoiceDTO](t, resp)
	if minted.ID != 0 {
		t.Errorf("Expected first id 0, got %d", minted.ID)
	}
	if minted.Owner != "alice" || minted.Amount != "1000" || minted.Reference != "doc1" {
		t.Errorf("Unexpected invoice: %+v", minted)
	}
	if minted.Funded {
		t.Error("Fresh invoice must be unfunded")
	}

	resp = doJSON(t, "GET", fmt.Sprintf("%s/api/invoices/%d", srv.URL, minted.ID), "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	got := decodeBody[InvoiceDTO](t, resp)
	if got != minted {
		t.Errorf("Get returned %+v, want %+v", got, minted)
	}
}

func TestMint_RequiresCaller(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, "POST", srv.URL+"/api/invoices", "",
		MintRequest{Amount: "1000", Reference: "doc1"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400 without %s, got %d", CallerHeader, resp.StatusCode)
	}
	resp.Body.Close()
}

func TestGetInvoice_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, "GET", srv.URL+"/api/invoices/99", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestFundLifecycle(t *testing.T) {
	// Mint as alice, fund as bob, verify the flag, the payout, the events,
	// and that carol's second attempt conflicts.
	srv := newTestServer(t)

	resp := doJSON(t, "POST", srv.URL+"/api/invoices", "alice",
		MintRequest{Amount: "1000", Reference: "doc1"})
	minted := decodeBody[InvoiceDTO](t, resp)

	fundURL := fmt.Sprintf("%s/api/invoices/%d/fund", srv.URL, minted.ID)

	resp = doJSON(t, "POST", fundURL, "bob", FundRequest{AttachedValue: "1000"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, "GET", fmt.Sprintf("%s/api/invoices/%d", srv.URL, minted.ID), "", nil)
	funded := decodeBody[InvoiceDTO](t, resp)
	if !funded.Funded {
		t.Error("Invoice should be funded")
	}

	// The funder's value went to the owner.
	resp = doJSON(t, "GET", srv.URL+"/api/payouts?recipient=alice", "", nil)
	payouts := decodeBody[[]PayoutDTO](t, resp)
	if len(payouts) != 1 {
		t.Fatalf("Expected 1 payout to alice, got %d", len(payouts))
	}
	if payouts[0].Amount != "1000" || payouts[0].InvoiceID != minted.ID {
		t.Errorf("Unexpected payout: %+v", payouts[0])
	}

	// Second fund conflicts.
	resp = doJSON(t, "POST", fundURL, "carol", FundRequest{AttachedValue: "1000"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("Expected 409 on refund, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Event log holds minted then funded.
	resp = doJSON(t, "GET", srv.URL+"/api/events", "", nil)
	events := decodeBody[[]EventDTO](t, resp)
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Kind != "minted" || events[0].Account != "alice" {
		t.Errorf("Unexpected first event: %+v", events[0])
	}
	if events[1].Kind != "funded" || events[1].Account != "bob" || events[1].Amount != "1000" {
		t.Errorf("Unexpected second event: %+v", events[1])
	}
}

func TestFund_Underpayment(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, "POST", srv.URL+"/api/invoices", "alice",
		MintRequest{Amount: "500", Reference: "doc2"})
	minted := decodeBody[InvoiceDTO](t, resp)

	resp = doJSON(t, "POST", fmt.Sprintf("%s/api/invoices/%d/fund", srv.URL, minted.ID),
		"bob", FundRequest{AttachedValue: "499"})
	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("Expected 402, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, "GET", fmt.Sprintf("%s/api/invoices/%d", srv.URL, minted.ID), "", nil)
	got := decodeBody[InvoiceDTO](t, resp)
	if got.Funded {
		t.Error("Underfunded invoice must stay unfunded")
	}
}

func TestFund_UnknownInvoice(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, "POST", srv.URL+"/api/invoices/42/fund", "bob",
		FundRequest{AttachedValue: "1000000"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestListInvoices(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 3; i++ {
		resp := doJSON(t, "POST", srv.URL+"/api/invoices", "alice",
			MintRequest{Amount: "100", Reference: fmt.Sprintf("doc%d", i)})
		resp.Body.Close()
	}

	resp := doJSON(t, "GET", srv.URL+"/api/invoices", "", nil)
	list := decodeBody[[]InvoiceDTO](t, resp)
	if len(list) != 3 {
		t.Fatalf("Expected 3 invoices, got %d", len(list))
	}
	for i, inv := range list {
		if inv.ID != uint64(i) {
			t.Errorf("Expected id %d at position %d, got %d", i, i, inv.ID)
		}
	}
}

func TestAnalyzeDocument(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, "POST", srv.URL+"/api/analyze", "",
		AnalyzeRequest{Document: "Invoice from Acme Corp. Total due: $10,000.00. Net 30. Tax ID: 12-345."})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	assessment := decodeBody[AssessmentDTO](t, resp)
	if assessment.Grade == "" {
		t.Error("Expected a grade")
	}
	if assessment.Valuation <= 0 {
		t.Error("Expected a positive valuation")
	}

	resp = doJSON(t, "POST", srv.URL+"/api/analyze", "", AnalyzeRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400 for empty document, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
