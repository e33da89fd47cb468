// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps methods to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Health - Public
	"/grpc.health.v1.Health/Check": SecurityPublic,
	"/grpc.health.v1.Health/Watch": SecurityPublic,

	// BookingService - Access Protected
	"/carrental.api.v1.BookingService/GetBookingDetail":      SecurityAccess,
	"/carrental.api.v1.BookingService/ListAvailableActions":  SecurityAccess,
	"/carrental.api.v1.BookingService/GetSettlement":         SecurityAccess,
	"/carrental.api.v1.BookingService/RequestEvidenceUpload": SecurityAccess,

	// BookingService actions - Access Protected
	"/carrental.api.v1.BookingService/CustomerCancel":        SecurityAccess,
	"/carrental.api.v1.BookingService/CustomerConfirmPickup": SecurityAccess,
	"/carrental.api.v1.BookingService/CustomerRequestReturn": SecurityAccess,
	"/carrental.api.v1.BookingService/CustomerReturnAgain":   SecurityAccess,
	"/carrental.api.v1.BookingService/OwnerConfirmBooking":   SecurityAccess,
	"/carrental.api.v1.BookingService/OwnerCancelBooking":    SecurityAccess,
	"/carrental.api.v1.BookingService/OwnerConfirmDeposit":   SecurityAccess,
	"/carrental.api.v1.BookingService/OwnerAcceptReturn":     SecurityAccess,
	"/carrental.api.v1.BookingService/OwnerRejectReturn":     SecurityAccess,

	// NotificationService - Access Protected
	"/carrental.api.v1.NotificationService/GetNotifications":     SecurityAccess,
	"/carrental.api.v1.NotificationService/MarkNotificationRead": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
