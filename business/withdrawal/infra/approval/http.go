package approval

import (
	"context"
	"fmt"

	"github.com/fd1az/treasury-bot/business/withdrawal/app"
	"github.com/fd1az/treasury-bot/internal/httpclient"
)

// HTTPApprover delegates the gate decision to an external approval service.
type HTTPApprover struct {
	client httpclient.Client
	url    string
}

// NewHTTPApprover creates an approver posting to the given URL.
func NewHTTPApprover(url string) (*HTTPApprover, error) {
	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("approval"),
	)
	if err != nil {
		return nil, err
	}
	return &HTTPApprover{client: client, url: url}, nil
}

type approvalRequest struct {
	Variant     string `json:"variant"`
	AmountWei   string `json:"amountWei"`
	Destination string `json:"destination"`
}

type approvalResponse struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

// Approve posts the withdrawal summary and returns the service's verdict.
func (a *HTTPApprover) Approve(ctx context.Context, req app.Request) (bool, error) {
	amount := "max"
	if req.Amount != nil && req.Amount.Sign() > 0 {
		amount = req.Amount.String()
	}

	var verdict approvalResponse
	resp, err := a.client.NewRequest().
		SetBody(approvalRequest{
			Variant:     req.Variant.String(),
			AmountWei:   amount,
			Destination: req.Destination.Hex(),
		}).
		SetResult(&verdict).
		Post(ctx, a.url)
	if err != nil {
		return false, err
	}
	if resp.IsError() {
		return false, fmt.Errorf("approval service returned status %d", resp.StatusCode)
	}

	return verdict.Approved, nil
}
