package grpc

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

const errorDomain = "carrental.api.v1"

// Reasons attached to rejected calls as google.rpc.ErrorInfo.
const (
	ReasonBookingNotFound    = "BOOKING_NOT_FOUND"
	ReasonNotParticipant     = "NOT_PARTICIPANT"
	ReasonEvidenceRequired   = "EVIDENCE_REQUIRED"
	ReasonEvidenceNotFound   = "EVIDENCE_NOT_FOUND"
	ReasonInvalidCharge      = "INVALID_CHARGE"
	ReasonUnsupportedMedia   = "UNSUPPORTED_MEDIA"
	ReasonUnknownAction      = "UNKNOWN_ACTION"
	ReasonActionNotPermitted = "ACTION_NOT_PERMITTED"
	ReasonActionDisabled     = "ACTION_DISABLED"
	ReasonStaleState         = "STALE_STATE"
	ReasonInFlight           = "SUBMISSION_IN_FLIGHT"
)

var errorTable = []struct {
	err    error
	code   codes.Code
	reason string
}{
	{domain.ErrBookingNotFound, codes.NotFound, ReasonBookingNotFound},
	{domain.ErrUserNotFound, codes.NotFound, ReasonBookingNotFound},
	{domain.ErrForbidden, codes.PermissionDenied, ReasonNotParticipant},
	{domain.ErrEvidenceRequired, codes.InvalidArgument, ReasonEvidenceRequired},
	{domain.ErrEvidenceNotFound, codes.InvalidArgument, ReasonEvidenceNotFound},
	{domain.ErrInvalidCharge, codes.InvalidArgument, ReasonInvalidCharge},
	{domain.ErrUnsupportedMedia, codes.InvalidArgument, ReasonUnsupportedMedia},
	{domain.ErrUnknownAction, codes.InvalidArgument, ReasonUnknownAction},
	{domain.ErrActionNotPermitted, codes.FailedPrecondition, ReasonActionNotPermitted},
	{domain.ErrActionDisabled, codes.FailedPrecondition, ReasonActionDisabled},
	{domain.ErrStaleState, codes.FailedPrecondition, ReasonStaleState},
	{domain.ErrSubmissionInFlight, codes.Aborted, ReasonInFlight},
}

// toStatus converts a service error into a gRPC status error.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return withReason(e.code, err.Error(), e.reason)
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}
	logger.Error("Unmapped service error", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func withReason(code codes.Code, msg, reason string) error {
	st := status.New(code, msg)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: errorDomain})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// reasonOf returns the ErrorInfo reason of a status, if any.
func reasonOf(st *status.Status) string {
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == errorDomain {
			return info.GetReason()
		}
	}
	return ""
}

// fromStatus turns a failed call into a *domain.RemoteError for the pipeline.
func fromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return &domain.RemoteError{Class: domain.ErrorClassTransient, Code: codes.Unknown.String(), Message: err.Error()}
	}
	re := &domain.RemoteError{Class: domain.ErrorClassTransient, Code: st.Code().String(), Message: st.Message()}
	switch st.Code() {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.NotFound, codes.PermissionDenied:
		re.Class = domain.ErrorClassValidation
	}
	switch reasonOf(st) {
	case ReasonActionNotPermitted, ReasonStaleState:
		re.Stale = true
	}
	return re
}
