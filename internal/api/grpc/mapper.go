package grpc

import (
	"carrental-backend/internal/domain"
	"carrental-backend/internal/lifecycle"
	"carrental-backend/internal/utils"
)

const noRevenueDistributed = "no revenue distributed"

func MapActionRequestToInput(req *ActionRequest) domain.ActionInput {
	return domain.ActionInput{
		Note:        req.Note,
		EvidenceURL: req.EvidenceURL,
		ChargeCents: req.ChargeCents,
	}
}

func MapActionResultToResponse(key domain.ActionKey, res *domain.ActionResult) *ActionResponse {
	if res == nil {
		return nil
	}
	msg := string(key)
	if d, ok := lifecycle.Lookup(key); ok {
		msg = d.SuccessMessage
	}
	return &ActionResponse{
		BookingNumber: res.BookingNumber,
		Status:        res.Status,
		Entry:         res.Entry,
		Replayed:      res.Replayed,
		Message:       msg,
	}
}

func MapActionResponseToResult(resp *ActionResponse) *domain.ActionResult {
	return &domain.ActionResult{
		BookingNumber: resp.BookingNumber,
		Status:        resp.Status,
		Entry:         resp.Entry,
		Replayed:      resp.Replayed,
	}
}

func MapSettlementToResponse(s *domain.SettlementSnapshot) *SettlementResponse {
	if s == nil {
		return nil
	}
	display := SettlementDisplay{
		BasePrice:        utils.FormatCents(s.BasePriceCents),
		TotalCalculated:  utils.FormatCents(s.TotalCalculatedCents),
		Deposit:          utils.FormatCents(s.DepositSnapshotCents),
		RemainingCharged: utils.FormatCents(s.RemainingChargedCents),
		RefundToRenter:   utils.FormatCents(s.RefundToRenterCents),
	}
	if !s.RevenueDistributed {
		display.RevenueNote = noRevenueDistributed
	}
	return &SettlementResponse{Settlement: s, Display: display}
}
