package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"carrental-backend/internal/api/grpc/interceptor"
	"carrental-backend/internal/security"
	"carrental-backend/internal/service"
)

// NewServer builds the gRPC server with the booking and notification
// services, the auth chain and a health endpoint.
func NewServer(tm security.TokenManager, bookingSvc service.BookingService, noteSvc service.NotificationService, opts ...grpc.ServerOption) *grpc.Server {
	authInterceptor := interceptor.NewAuthInterceptor(tm)
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			interceptor.Recovery(),
			interceptor.Metrics(),
			authInterceptor.Unary(),
		),
	}, opts...)

	s := grpc.NewServer(opts...)
	RegisterBookingServer(s, NewBookingHandler(bookingSvc))
	RegisterNotificationServer(s, NewNotificationHandler(noteSvc))

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(BookingServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, healthSrv)
	return s
}
