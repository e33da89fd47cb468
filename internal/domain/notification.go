package domain

import "time"

// Notification is an in-app message stored for a booking participant.
type Notification struct {
	ID            int32             `json:"id"`
	UserID        int32             `json:"user_id"`
	BookingNumber string            `json:"booking_number"`
	Title         string            `json:"title"`
	Message       string            `json:"message"`
	IsRead        bool              `json:"is_read"`
	Attributes    map[string]string `json:"attributes"`
	CreatedOn     time.Time         `json:"created_on"`
}

// NoticeKind is the presentation channel a pipeline outcome is shown on.
type NoticeKind string

const (
	NoticeSuccess     NoticeKind = "success"
	NoticeDestructive NoticeKind = "destructive"
	NoticeError       NoticeKind = "error"
	NoticeInfo        NoticeKind = "info"
)

// Notice is a fire-and-forget toast for the user who triggered an action.
type Notice struct {
	Kind          NoticeKind
	Title         string
	Message       string
	BookingNumber string
	Action        ActionKey
}
