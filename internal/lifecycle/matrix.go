package lifecycle

import "carrental-backend/internal/domain"

// matrix lists the actions each role may take from each status. Terminal
// statuses are deliberately absent.
var matrix = map[domain.BookingStatus]map[domain.Role][]domain.ActionKey{
	domain.BookingStatusWaitingConfirmed: {
		domain.RoleCustomer: {domain.ActionCustomerCancel},
		domain.RoleOwner:    {domain.ActionOwnerConfirmBooking, domain.ActionOwnerCancelBooking},
	},
	domain.BookingStatusPendingPayment: {
		domain.RoleCustomer: {domain.ActionCustomerRequestReturn},
	},
	domain.BookingStatusPendingDeposit: {
		domain.RoleCustomer: {domain.ActionCustomerCancel},
		domain.RoleOwner:    {domain.ActionOwnerConfirmDeposit, domain.ActionOwnerCancelBooking},
	},
	domain.BookingStatusConfirmed: {
		domain.RoleCustomer: {domain.ActionCustomerConfirmPickup, domain.ActionCustomerCancel},
		domain.RoleOwner:    {domain.ActionOwnerCancelBooking},
	},
	domain.BookingStatusInProgress: {
		domain.RoleCustomer: {domain.ActionCustomerRequestReturn},
	},
	domain.BookingStatusWaitingConfirmReturn: {
		domain.RoleOwner: {domain.ActionOwnerAcceptReturn, domain.ActionOwnerRejectReturn},
	},
	domain.BookingStatusRejectedReturn: {
		domain.RoleCustomer: {domain.ActionCustomerReturnAgain},
	},
}

// PermittedKeys returns the raw matrix entry, before visibility filtering.
func PermittedKeys(status domain.BookingStatus, role domain.Role) []domain.ActionKey {
	if !role.Valid() || status.IsTerminal() {
		return nil
	}
	keys := matrix[status][role]
	out := make([]domain.ActionKey, len(keys))
	copy(out, keys)
	return out
}
