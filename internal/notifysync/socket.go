package notifysync

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/realtime"
)

// Socket keeps a live connection to the event hub and feeds it into a
// Client. Every (re)connect joins all accessible rooms and runs a sync pass,
// since the bus has no replay.
type Socket struct {
	url    string
	token  string
	client *Client
	log    *slog.Logger
	dialer *websocket.Dialer

	MinBackoff time.Duration
	MaxBackoff time.Duration

	// OnMessage, when set, sees every frame including state-only events.
	OnMessage func(realtime.Message)
}

func NewSocket(wsURL, token string, client *Client, log *slog.Logger) *Socket {
	return &Socket{
		url:        wsURL,
		token:      token,
		client:     client,
		log:        log,
		dialer:     &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		MinBackoff: 500 * time.Millisecond,
		MaxBackoff: 30 * time.Second,
	}
}

// Run connects and reconnects until ctx is cancelled.
func (s *Socket) Run(ctx context.Context) error {
	backoff := s.MinBackoff
	for {
		header := http.Header{"Authorization": {"Bearer " + s.token}}
		conn, _, err := s.dialer.DialContext(ctx, s.url, header)
		if err == nil {
			backoff = s.MinBackoff
			err = s.session(ctx, conn)
		}
		if ctx.Err() != nil {
			return nil
		}
		s.log.Warn("notification socket disconnected",
			slog.Any("error", err),
			slog.Duration("retry_in", backoff))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > s.MaxBackoff {
			backoff = s.MaxBackoff
		}
	}
}

func (s *Socket) session(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			conn.Close()
		case <-done:
			conn.Close()
		}
	}()

	join := map[string]any{"event": realtime.MsgJoinAll, "data": map[string]any{}}
	if err := conn.WriteJSON(join); err != nil {
		return err
	}
	if err := s.client.Sync(ctx); err != nil {
		// Logged by the client; the next connect retries.
		s.log.Debug("sync on connect failed", slog.Any("error", err))
	}

	for {
		var msg realtime.Message
		if err := conn.ReadJSON(&msg); err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
				return nil
			}
			return err
		}
		if s.OnMessage != nil {
			s.OnMessage(msg)
		}
		switch msg.Event {
		case realtime.MsgConnected, realtime.MsgRoomJoined, realtime.MsgRoomLeft, realtime.MsgRoomDenied:
			continue
		}
		s.client.HandleLive(msg)
	}
}
