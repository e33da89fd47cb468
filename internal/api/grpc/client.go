package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/lifecycle"
	"carrental-backend/internal/logger"
)

// Client calls BookingService on behalf of one signed-in user. Failures are
// returned as *domain.RemoteError.
type Client struct {
	conn  *grpc.ClientConn
	token string
}

// Dial connects to target without transport security.
func Dial(target, token string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC client: %w", err)
	}
	return NewClient(conn, token), nil
}

func NewClient(conn *grpc.ClientConn, token string) *Client {
	return &Client{conn: conn, token: token}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, service, method string, in, out any) error {
	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	logger.ExternalServiceCall("grpc", method)
	err := c.conn.Invoke(ctx, fullMethod(service, method), in, out, grpc.CallContentSubtype(codecName))
	logger.ExternalServiceResult("grpc", method, err)
	return fromStatus(err)
}

func (c *Client) GetBookingDetail(ctx context.Context, bookingNumber string) (*domain.BookingDetail, error) {
	var resp BookingDetailResponse
	if err := c.invoke(ctx, BookingServiceName, "GetBookingDetail", &BookingRequest{BookingNumber: bookingNumber}, &resp); err != nil {
		return nil, err
	}
	return resp.Detail, nil
}

func (c *Client) ListAvailableActions(ctx context.Context, bookingNumber string) ([]domain.ActionState, error) {
	var resp ActionsResponse
	if err := c.invoke(ctx, BookingServiceName, "ListAvailableActions", &BookingRequest{BookingNumber: bookingNumber}, &resp); err != nil {
		return nil, err
	}
	return resp.Actions, nil
}

// SubmitAction calls the method named after the action's operation.
func (c *Client) SubmitAction(ctx context.Context, bookingNumber string, key domain.ActionKey, in domain.ActionInput) (*domain.ActionResult, error) {
	d, ok := lifecycle.Lookup(key)
	if !ok {
		return nil, &domain.RemoteError{Class: domain.ErrorClassValidation, Code: "InvalidArgument", Message: fmt.Sprintf("%v: %s", domain.ErrUnknownAction, key)}
	}
	req := &ActionRequest{
		BookingNumber: bookingNumber,
		Note:          in.Note,
		EvidenceURL:   in.EvidenceURL,
		ChargeCents:   in.ChargeCents,
	}
	var resp ActionResponse
	if err := c.invoke(ctx, BookingServiceName, d.Operation, req, &resp); err != nil {
		return nil, err
	}
	return MapActionResponseToResult(&resp), nil
}

func (c *Client) GetSettlement(ctx context.Context, bookingNumber string) (*domain.SettlementSnapshot, error) {
	var resp SettlementResponse
	if err := c.invoke(ctx, BookingServiceName, "GetSettlement", &BookingRequest{BookingNumber: bookingNumber}, &resp); err != nil {
		return nil, err
	}
	return resp.Settlement, nil
}

func (c *Client) RequestEvidenceUpload(ctx context.Context, bookingNumber, filename, contentType string) (*domain.EvidenceUpload, error) {
	var resp EvidenceUploadResponse
	req := &EvidenceUploadRequest{BookingNumber: bookingNumber, Filename: filename, ContentType: contentType}
	if err := c.invoke(ctx, BookingServiceName, "RequestEvidenceUpload", req, &resp); err != nil {
		return nil, err
	}
	return resp.Upload, nil
}

func (c *Client) GetNotifications(ctx context.Context, limit, offset int32) ([]domain.Notification, int32, error) {
	var resp GetNotificationsResponse
	if err := c.invoke(ctx, NotificationServiceName, "GetNotifications", &GetNotificationsRequest{Limit: limit, Offset: offset}, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Notifications, resp.TotalCount, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, notificationID int32) error {
	var resp MarkNotificationReadResponse
	return c.invoke(ctx, NotificationServiceName, "MarkNotificationRead", &MarkNotificationReadRequest{NotificationID: notificationID}, &resp)
}
