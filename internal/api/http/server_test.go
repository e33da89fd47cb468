package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/events"
	"carrental-backend/internal/storage"
)

func newStore(t *testing.T) *storage.MockStorageService {
	t.Helper()
	store, err := storage.NewMockStorageService("http://localhost", t.TempDir())
	require.NoError(t, err)
	return store
}

func upload(router http.Handler, key, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, "/api/v1/upload/tok?key="+url.QueryEscape(key), strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestEvidenceUploadAndDownload(t *testing.T) {
	store := newStore(t)
	router := NewRouter(Options{Files: store, MaxUploadSize: 16})
	key := "bookings/BK-1/pic.png"

	t.Run("Upload", func(t *testing.T) {
		rec := upload(router, key, "image/png", "png-bytes")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

		exists, size, err := store.FileExists(context.Background(), key)
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, int64(9), size)
	})

	t.Run("Download", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/download/pic.png?key="+url.QueryEscape(key), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, "png-bytes", rec.Body.String())
	})

	t.Run("Wrong content type", func(t *testing.T) {
		rec := upload(router, "bookings/BK-1/doc.pdf", "application/pdf", "x")
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("Too large", func(t *testing.T) {
		rec := upload(router, "bookings/BK-1/big.png", "image/png", strings.Repeat("x", 17))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

		exists, _, err := store.FileExists(context.Background(), "bookings/BK-1/big.png")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Escaping key", func(t *testing.T) {
		rec := upload(router, "../outside.png", "image/png", "x")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Missing key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/download/pic.png", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/download/none.png?key=bookings/BK-1/none.png", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	router := NewRouter(Options{EnableMetrics: true})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "carrental_http_requests_total")
}

func TestRequestIDIsKept(t *testing.T) {
	router := NewRouter(Options{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestInvalidationWebSocket(t *testing.T) {
	hub := events.NewHub()
	srv := httptest.NewServer(NewRouter(Options{Hub: hub}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/invalidations"
	dial := func(query string) *websocket.Conn {
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL+query, nil)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return conn
	}

	booking := dial("?booking=BK-1")
	defer booking.Close()
	all := dial("")
	defer all.Close()

	require.Eventually(t, func() bool {
		return hub.Subscribers("BK-1") == 1 && hub.Subscribers(events.AllBookings) == 1
	}, time.Second, 10*time.Millisecond)

	inv := events.Invalidation{
		BookingNumber:  "BK-1",
		Action:         domain.ActionOwnerConfirmBooking,
		PreviousStatus: domain.BookingStatusWaitingConfirmed,
		NewStatus:      domain.BookingStatusPendingDeposit,
	}
	require.NoError(t, hub.Publish(context.Background(), inv))

	for _, conn := range []*websocket.Conn{booking, all} {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		var got events.Invalidation
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "BK-1", got.BookingNumber)
		assert.Equal(t, domain.BookingStatusPendingDeposit, got.NewStatus)
	}

	require.NoError(t, booking.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return hub.Subscribers("BK-1") == 0 }, time.Second, 10*time.Millisecond)
}

func TestRecoverMiddleware(t *testing.T) {
	router := NewRouter(Options{})
	router.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "internal error")
}
