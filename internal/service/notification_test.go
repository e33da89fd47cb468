package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
)

func TestNotificationService_NotifyTransition(t *testing.T) {
	ctx := context.Background()
	b := newBooking(domain.BookingStatusInProgress)
	tr := domain.Transition{
		BookingNumber: number,
		From:          domain.BookingStatusInProgress,
		To:            domain.BookingStatusWaitingConfirmReturn,
		Action:        domain.ActionCustomerRequestReturn,
		ActorID:       renterID,
		ChangedAt:     time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC),
	}

	t.Run("Success", func(t *testing.T) {
		noteRepo := new(MockNotificationRepo)
		userRepo := new(MockUserRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewNotificationService(noteRepo, userRepo, emailSvc)

		noteRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == ownerID &&
				n.Attributes["action"] == "customer_request_return" &&
				n.Attributes["new_status"] == "waiting_confirm_return"
		})).Return(nil)
		userRepo.On("GetByID", ctx, ownerID).Return(&domain.User{ID: ownerID, Email: "owner@test.com", Name: "Owner"}, nil)
		emailSvc.On("SendStatusChange", ctx, "owner@test.com", "Owner", number, "Return requested", domain.BookingStatusWaitingConfirmReturn, "").Return(nil)

		assert.NoError(t, svc.NotifyTransition(ctx, b, domain.RoleCustomer, tr))
		noteRepo.AssertExpectations(t)
		emailSvc.AssertExpectations(t)
	})

	t.Run("Owner action notifies renter", func(t *testing.T) {
		noteRepo := new(MockNotificationRepo)
		userRepo := new(MockUserRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewNotificationService(noteRepo, userRepo, emailSvc)

		noteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)
		userRepo.On("GetByID", ctx, renterID).Return(nil, domain.ErrUserNotFound)

		err := svc.NotifyTransition(ctx, b, domain.RoleOwner, tr)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		emailSvc.AssertNotCalled(t, "SendStatusChange")
	})

	t.Run("Store failure", func(t *testing.T) {
		noteRepo := new(MockNotificationRepo)
		svc := service.NewNotificationService(noteRepo, new(MockUserRepo), new(MockEmailService))
		noteRepo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

		assert.Error(t, svc.NotifyTransition(ctx, b, domain.RoleCustomer, tr))
	})
}

func TestNotificationService_GetNotifications(t *testing.T) {
	ctx := context.Background()
	noteRepo := new(MockNotificationRepo)
	svc := service.NewNotificationService(noteRepo, new(MockUserRepo), new(MockEmailService))

	noteRepo.On("List", ctx, renterID, int32(20), int32(0)).Return([]domain.Notification{{ID: 1}}, int32(1), nil)
	notes, total, err := svc.GetNotifications(ctx, renterID, 0, 0)
	assert.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.Equal(t, int32(1), total)

	noteRepo.On("MarkAsRead", ctx, int32(1), renterID).Return(nil)
	assert.NoError(t, svc.MarkAsRead(ctx, renterID, 1))
}
