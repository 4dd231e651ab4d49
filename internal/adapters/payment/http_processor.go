// Package payment adapts the external payment processor's HTTP API to
// the PaymentProcessor port. The processor is opaque: this adapter
// forwards charges and classifies outcomes, nothing more.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	portssvc "github.com/splitkit/settlement_app/internal/core/ports/services"
)

// idempotencyKeyHeader carries the settlement id so processor-side
// retries never double-charge.
const idempotencyKeyHeader = "Idempotency-Key"

// chargeRequestBody is the wire form of a charge submission.
type chargeRequestBody struct {
	Amount        int64  `json:"amount"`
	CurrencyCode  string `json:"currencyCode"`
	PaymentMethod string `json:"paymentMethod"`
	FromMemberID  string `json:"fromMemberID"`
	ToMemberID    string `json:"toMemberID"`
}

// chargeResponseBody is the wire form of the processor's verdict.
type chargeResponseBody struct {
	Success        bool   `json:"success"`
	TransactionRef string `json:"transactionRef"`
	FailureReason  string `json:"failureReason"`
}

// HTTPProcessor talks to the payment processor over HTTP JSON.
type HTTPProcessor struct {
	baseURL string
	client  *http.Client
}

var _ portssvc.PaymentProcessor = (*HTTPProcessor)(nil)

// NewHTTPProcessor creates an adapter for the processor at baseURL.
// Per-call deadlines come from the caller's context; the client timeout
// is only a backstop.
func NewHTTPProcessor(baseURL string) *HTTPProcessor {
	return &HTTPProcessor{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Charge submits the payment and returns the processor's verdict.
// Transport and server-side (5xx) failures come back as errors, meaning
// the outcome is unknown and the charge may be retried under the same
// idempotency key. A decoded response is definitive either way.
func (p *HTTPProcessor) Charge(ctx context.Context, req portssvc.ChargeRequest) (*portssvc.ChargeResult, error) {
	body, err := json.Marshal(chargeRequestBody{
		Amount:        req.Amount,
		CurrencyCode:  req.CurrencyCode,
		PaymentMethod: req.PaymentMethod,
		FromMemberID:  req.FromMemberID,
		ToMemberID:    req.ToMemberID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(idempotencyKeyHeader, req.IdempotencyKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("charge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("processor returned status %d", resp.StatusCode)
	}

	var decoded chargeResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode charge response: %w", err)
	}

	result := &portssvc.ChargeResult{
		Success:        decoded.Success,
		TransactionRef: decoded.TransactionRef,
		FailureReason:  decoded.FailureReason,
	}
	if !result.Success && result.FailureReason == "" {
		result.FailureReason = fmt.Sprintf("declined with status %d", resp.StatusCode)
	}
	return result, nil
}
