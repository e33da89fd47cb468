package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/domain"
)

type recordingPublisher struct {
	got []Invalidation
	err error
}

func (r *recordingPublisher) Publish(_ context.Context, inv Invalidation) error {
	r.got = append(r.got, inv)
	return r.err
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func sampleInvalidation() Invalidation {
	return NewInvalidation(domain.Transition{
		BookingNumber: "BK-1",
		From:          domain.BookingStatusInProgress,
		To:            domain.BookingStatusWaitingConfirmReturn,
		Action:        domain.ActionCustomerRequestReturn,
		ChangedAt:     time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC),
	})
}

func TestMulti_Publish(t *testing.T) {
	ok := &recordingPublisher{}
	broken := &recordingPublisher{err: errors.New("broker down")}
	m := NewMulti().With("ok", ok).With("broken", broken).With("nil", nil)

	err := m.Publish(context.Background(), sampleInvalidation())

	assert.ErrorContains(t, err, "broker down")
	assert.Len(t, ok.got, 1, "a failing sink must not stop the others")
	assert.Len(t, broken.got, 1)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, timeout: time.Second}

	require.NoError(t, p.Publish(context.Background(), sampleInvalidation()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "BK-1", string(w.msgs[0].Key))

	var decoded Invalidation
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, domain.BookingStatusWaitingConfirmReturn, decoded.NewStatus)
	assert.NoError(t, p.Close())
}

func TestHub_Publish(t *testing.T) {
	hub := NewHub()
	upgrader := websocket.Upgrader{}
	registered := make(chan struct{}, 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Add(r.URL.Query().Get("booking"), conn)
		registered <- struct{}{}
	}))
	defer srv.Close()

	dial := func(channel string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?booking=" + channel
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		<-registered
		return conn
	}

	booking := dial("BK-1")
	defer booking.Close()
	all := dial(AllBookings)
	defer all.Close()
	other := dial("BK-2")
	defer other.Close()

	require.NoError(t, hub.Publish(context.Background(), sampleInvalidation()))

	for _, conn := range []*websocket.Conn{booking, all} {
		var got Invalidation
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "BK-1", got.BookingNumber)
	}

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	var none Invalidation
	assert.Error(t, other.ReadJSON(&none), "unrelated booking must not be signalled")
	assert.Equal(t, 1, hub.Subscribers("BK-2"))
}
