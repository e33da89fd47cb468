package grpc

import (
	"carrental-backend/internal/domain"
)

type BookingRequest struct {
	BookingNumber string `json:"booking_number"`
}

type BookingDetailResponse struct {
	Detail *domain.BookingDetail `json:"detail"`
}

type ActionsResponse struct {
	BookingNumber string               `json:"booking_number"`
	Actions       []domain.ActionState `json:"actions"`
}

// ActionRequest is shared by the nine action methods.
type ActionRequest struct {
	BookingNumber string `json:"booking_number"`
	Note          string `json:"note"`
	EvidenceURL   string `json:"evidence_url,omitempty"`
	ChargeCents   *int64 `json:"charge_cents,omitempty"`
}

type ActionResponse struct {
	BookingNumber string                     `json:"booking_number"`
	Status        domain.BookingStatus       `json:"status"`
	Entry         *domain.StatusHistoryEntry `json:"entry,omitempty"`
	Replayed      bool                       `json:"replayed"`
	Message       string                     `json:"message"`
}

type SettlementResponse struct {
	Settlement *domain.SettlementSnapshot `json:"settlement"`
	Display    SettlementDisplay          `json:"display"`
}

// SettlementDisplay carries the formatted amounts shown on the booking page.
type SettlementDisplay struct {
	BasePrice        string `json:"base_price"`
	TotalCalculated  string `json:"total_calculated"`
	Deposit          string `json:"deposit"`
	RemainingCharged string `json:"remaining_charged"`
	RefundToRenter   string `json:"refund_to_renter"`
	RevenueNote      string `json:"revenue_note,omitempty"`
}

type EvidenceUploadRequest struct {
	BookingNumber string `json:"booking_number"`
	Filename      string `json:"filename"`
	ContentType   string `json:"content_type"`
}

type EvidenceUploadResponse struct {
	Upload *domain.EvidenceUpload `json:"upload"`
}

type GetNotificationsRequest struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

type GetNotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	TotalCount    int32                 `json:"total_count"`
}

type MarkNotificationReadRequest struct {
	NotificationID int32 `json:"notification_id"`
}

type MarkNotificationReadResponse struct {
	Success bool `json:"success"`
}
