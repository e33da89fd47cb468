package grpc

import (
	"context"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
)

type BookingHandler struct {
	bookingSvc service.BookingService
}

func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

func (h *BookingHandler) GetBookingDetail(ctx context.Context, req *BookingRequest) (*BookingDetailResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireBookingNumber(req.BookingNumber); err != nil {
		return nil, err
	}
	detail, err := h.bookingSvc.GetBookingDetail(ctx, userID, req.BookingNumber)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BookingDetailResponse{Detail: detail}, nil
}

func (h *BookingHandler) ListAvailableActions(ctx context.Context, req *BookingRequest) (*ActionsResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireBookingNumber(req.BookingNumber); err != nil {
		return nil, err
	}
	actions, err := h.bookingSvc.ListAvailableActions(ctx, userID, req.BookingNumber)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ActionsResponse{BookingNumber: req.BookingNumber, Actions: actions}, nil
}

func (h *BookingHandler) GetSettlement(ctx context.Context, req *BookingRequest) (*SettlementResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireBookingNumber(req.BookingNumber); err != nil {
		return nil, err
	}
	snap, err := h.bookingSvc.GetSettlement(ctx, userID, req.BookingNumber)
	if err != nil {
		return nil, toStatus(err)
	}
	return MapSettlementToResponse(snap), nil
}

func (h *BookingHandler) RequestEvidenceUpload(ctx context.Context, req *EvidenceUploadRequest) (*EvidenceUploadResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireBookingNumber(req.BookingNumber); err != nil {
		return nil, err
	}
	upload, err := h.bookingSvc.RequestEvidenceUpload(ctx, userID, req.BookingNumber, req.Filename, req.ContentType)
	if err != nil {
		return nil, toStatus(err)
	}
	return &EvidenceUploadResponse{Upload: upload}, nil
}

func (h *BookingHandler) SubmitAction(ctx context.Context, key domain.ActionKey, req *ActionRequest) (*ActionResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireBookingNumber(req.BookingNumber); err != nil {
		return nil, err
	}
	res, err := h.bookingSvc.SubmitAction(ctx, userID, req.BookingNumber, key, MapActionRequestToInput(req))
	if err != nil {
		return nil, toStatus(err)
	}
	return MapActionResultToResponse(key, res), nil
}
