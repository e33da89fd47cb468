package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository/postgres"
)

func TestNotificationRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		n := &domain.Notification{
			UserID:        4,
			BookingNumber: "BK-1",
			Title:         "Return requested",
			Message:       "The renter returned the car",
			Attributes:    map[string]string{"action": "customer_request_return"},
		}
		mock.ExpectQuery("INSERT INTO notifications").
			WithArgs(int32(4), "BK-1", n.Title, n.Message, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		require.NoError(t, repo.Create(ctx, n))
		assert.Equal(t, int32(7), n.ID)
		assert.False(t, n.CreatedOn.IsZero())
	})

	t.Run("List", func(t *testing.T) {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM notifications").
			WithArgs(int32(4)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT (.+) FROM notifications WHERE user_id = \\$1").
			WithArgs(int32(4), int32(20), int32(0)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "booking_number", "title", "message", "is_read", "attributes", "created_on"}).
				AddRow(7, 4, "BK-1", "Return requested", "msg", false, []byte(`{"action":"customer_request_return"}`), time.Now()))

		notes, count, err := repo.List(ctx, 4, 20, 0)
		require.NoError(t, err)
		assert.Equal(t, int32(1), count)
		require.Len(t, notes, 1)
		assert.Equal(t, "customer_request_return", notes[0].Attributes["action"])
	})

	t.Run("MarkAsRead not owned", func(t *testing.T) {
		mock.ExpectExec("UPDATE notifications SET is_read = TRUE").
			WithArgs(int32(7), int32(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.Error(t, repo.MarkAsRead(ctx, 7, 99))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewUserRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, name FROM users WHERE id = \\$1").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name"}).AddRow(3, "a@example.com", "Nguyen Van A"))

		u, err := repo.GetByID(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", u.Email)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, name FROM users").WithArgs(int32(404)).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), 404)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
