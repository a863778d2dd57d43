package rest

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/treasury-bot/business/withdrawal/app"
	"github.com/fd1az/treasury-bot/business/withdrawal/domain"
	"github.com/fd1az/treasury-bot/internal/apperror"
	"github.com/fd1az/treasury-bot/internal/asset"
)

// withdrawRequest is the caller-facing request body. Amount is a decimal
// ether string; "0" or absent requests a maximum-available sweep.
type withdrawRequest struct {
	Variant        string `json:"variant"`
	Amount         string `json:"amount,omitempty"`
	Destination    string `json:"destination"`
	AuxDestination string `json:"auxDestination,omitempty"`
}

// legView is the per-transfer slice of a withdrawal response.
type legView struct {
	Success    bool   `json:"success"`
	TxHash     string `json:"txHash,omitempty"`
	AmountSent string `json:"amountSent,omitempty"`
	Error      string `json:"error,omitempty"`
}

// withdrawResponse serializes an aggregate withdrawal result.
type withdrawResponse struct {
	Success    bool      `json:"success"`
	TxHash     string    `json:"txHash,omitempty"`
	AmountSent string    `json:"amountSent,omitempty"`
	Error      string    `json:"error,omitempty"`
	Legs       []legView `json:"legs,omitempty"`
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var body withdrawRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, requestBodyLimit)).Decode(&body); err != nil {
		s.writeError(w, apperror.Validation(apperror.CodeInvalidInput, "malformed request body"))
		return
	}

	variant, err := domain.ParseVariant(body.Variant)
	if err != nil {
		s.writeError(w, apperror.New(apperror.CodeUnknownVariant,
			apperror.WithCause(err),
			apperror.WithContext("variant "+body.Variant)))
		return
	}

	req := app.Request{Variant: variant}

	// The destination is required only where the variant uses it: internal
	// redirects ignore it, as does split when paying the configured set.
	usesDestination := variant != domain.VariantInternal &&
		(variant != domain.VariantSplit || body.AuxDestination != "")
	if usesDestination {
		if !common.IsHexAddress(body.Destination) {
			s.writeError(w, apperror.Validation(apperror.CodeInvalidAddress, "destination "+body.Destination))
			return
		}
		req.Destination = common.HexToAddress(body.Destination)
	}

	if body.AuxDestination != "" {
		if !common.IsHexAddress(body.AuxDestination) {
			s.writeError(w, apperror.Validation(apperror.CodeInvalidAddress, "auxDestination "+body.AuxDestination))
			return
		}
		aux := common.HexToAddress(body.AuxDestination)
		req.AuxDestination = &aux
	}

	if body.Amount != "" {
		amount, err := asset.ParseEther(body.Amount)
		if err != nil {
			s.writeError(w, apperror.Validation(apperror.CodeInvalidAmount, "amount "+body.Amount))
			return
		}
		if !amount.IsZero() {
			req.Amount = amount.Raw()
		}
	}

	result, err := s.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toWithdrawResponse(result))
}

func toWithdrawResponse(result domain.Result) withdrawResponse {
	resp := withdrawResponse{Success: result.Succeeded()}

	if hash := result.FirstHash(); hash != (common.Hash{}) {
		resp.TxHash = hash.Hex()
	}
	if resp.Success {
		resp.AmountSent = asset.FormatWei(result.TotalSent())
	}
	if err := result.FirstError(); err != nil {
		resp.Error = err.Error()
	}

	if len(result.Legs) > 1 {
		resp.Legs = make([]legView, 0, len(result.Legs))
		for _, leg := range result.Legs {
			view := legView{Success: leg.Succeeded()}
			if leg.LeftProcess() {
				view.TxHash = leg.TxHash.Hex()
			}
			if leg.Succeeded() {
				view.AmountSent = asset.FormatWei(leg.Amount)
			}
			if leg.Err != nil {
				view.Error = leg.Err.Error()
			}
			resp.Legs = append(resp.Legs, view)
		}
	}

	return resp
}

// statusResponse is the read-only treasury snapshot.
type statusResponse struct {
	Address      string   `json:"address,omitempty"`
	Connected    bool     `json:"connected"`
	NextNonce    int64    `json:"nextNonce"`
	BalanceWei   string   `json:"balanceWei,omitempty"`
	BalanceEther string   `json:"balanceEther,omitempty"`
	Variants     []string `json:"variants"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	report, err := s.treasury.Status(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := statusResponse{
		Connected: report.Connected,
		NextNonce: report.NextNonce,
	}
	if report.Connected {
		resp.Address = report.Address.Hex()
	}
	if report.BalanceWei != nil {
		resp.BalanceWei = report.BalanceWei.String()
		resp.BalanceEther = asset.FormatWei(report.BalanceWei)
	}
	for _, v := range s.dispatcher.Variants() {
		resp.Variants = append(resp.Variants, v.String())
	}

	s.writeJSON(w, http.StatusOK, resp)
}
