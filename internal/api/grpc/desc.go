package grpc

import (
	"context"

	"google.golang.org/grpc"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/lifecycle"
)

const (
	BookingServiceName      = "carrental.api.v1.BookingService"
	NotificationServiceName = "carrental.api.v1.NotificationService"
)

// BookingServer is implemented by BookingHandler.
type BookingServer interface {
	GetBookingDetail(ctx context.Context, req *BookingRequest) (*BookingDetailResponse, error)
	ListAvailableActions(ctx context.Context, req *BookingRequest) (*ActionsResponse, error)
	GetSettlement(ctx context.Context, req *BookingRequest) (*SettlementResponse, error)
	RequestEvidenceUpload(ctx context.Context, req *EvidenceUploadRequest) (*EvidenceUploadResponse, error)
	SubmitAction(ctx context.Context, key domain.ActionKey, req *ActionRequest) (*ActionResponse, error)
}

// NotificationServer is implemented by NotificationHandler.
type NotificationServer interface {
	GetNotifications(ctx context.Context, req *GetNotificationsRequest) (*GetNotificationsResponse, error)
	MarkNotificationRead(ctx context.Context, req *MarkNotificationReadRequest) (*MarkNotificationReadResponse, error)
}

func fullMethod(service, method string) string {
	return "/" + service + "/" + method
}

// unaryMethod builds a method descriptor that decodes Req and dispatches to call
// through the server's interceptor chain.
func unaryMethod[S any, Req any](service, name string, call func(S, context.Context, *Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(service, name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			})
		},
	}
}

func bookingServiceDesc() *grpc.ServiceDesc {
	methods := []grpc.MethodDesc{
		unaryMethod(BookingServiceName, "GetBookingDetail", func(s BookingServer, ctx context.Context, req *BookingRequest) (any, error) {
			return s.GetBookingDetail(ctx, req)
		}),
		unaryMethod(BookingServiceName, "ListAvailableActions", func(s BookingServer, ctx context.Context, req *BookingRequest) (any, error) {
			return s.ListAvailableActions(ctx, req)
		}),
		unaryMethod(BookingServiceName, "GetSettlement", func(s BookingServer, ctx context.Context, req *BookingRequest) (any, error) {
			return s.GetSettlement(ctx, req)
		}),
		unaryMethod(BookingServiceName, "RequestEvidenceUpload", func(s BookingServer, ctx context.Context, req *EvidenceUploadRequest) (any, error) {
			return s.RequestEvidenceUpload(ctx, req)
		}),
	}
	// One method per catalog entry, named after its operation.
	for _, d := range lifecycle.Catalog() {
		key := d.Key
		methods = append(methods, unaryMethod(BookingServiceName, d.Operation, func(s BookingServer, ctx context.Context, req *ActionRequest) (any, error) {
			return s.SubmitAction(ctx, key, req)
		}))
	}
	return &grpc.ServiceDesc{
		ServiceName: BookingServiceName,
		HandlerType: (*BookingServer)(nil),
		Methods:     methods,
		Streams:     []grpc.StreamDesc{},
		Metadata:    "carrental/api/v1/booking",
	}
}

func notificationServiceDesc() *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: NotificationServiceName,
		HandlerType: (*NotificationServer)(nil),
		Methods: []grpc.MethodDesc{
			unaryMethod(NotificationServiceName, "GetNotifications", func(s NotificationServer, ctx context.Context, req *GetNotificationsRequest) (any, error) {
				return s.GetNotifications(ctx, req)
			}),
			unaryMethod(NotificationServiceName, "MarkNotificationRead", func(s NotificationServer, ctx context.Context, req *MarkNotificationReadRequest) (any, error) {
				return s.MarkNotificationRead(ctx, req)
			}),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "carrental/api/v1/notification",
	}
}

func RegisterBookingServer(s grpc.ServiceRegistrar, srv BookingServer) {
	s.RegisterService(bookingServiceDesc(), srv)
}

func RegisterNotificationServer(s grpc.ServiceRegistrar, srv NotificationServer) {
	s.RegisterService(notificationServiceDesc(), srv)
}
