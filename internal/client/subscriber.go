package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mohitdudhat22/Task-Management-App/internal/logger"
	"github.com/mohitdudhat22/Task-Management-App/internal/ws"

	"github.com/gorilla/websocket"
)

// Subscriber feeds the realtime stream into a Reconciler.
type Subscriber struct {
	url    string
	rec    *Reconciler
	dialer *websocket.Dialer

	// OnReady runs once the server confirms the subscription.
	OnReady func()
	// OnFrame runs after each task frame has been applied.
	OnFrame func(ws.Frame, error)
}

func NewSubscriber(baseURL, token string, rec *Reconciler) (*Subscriber, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/ws")
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return &Subscriber{url: u.String(), rec: rec, dialer: websocket.DefaultDialer}, nil
}

// Run reads frames until ctx is cancelled or the connection drops. There is
// no reconnect; callers decide whether to Run again.
func (s *Subscriber) Run(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var f ws.Frame
		if err := conn.ReadJSON(&f); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if f.Event == ws.MsgReady {
			if s.OnReady != nil {
				s.OnReady()
			}
			continue
		}

		err := s.rec.HandleEvent(ctx, f)
		if err != nil {
			logger.Warn("failed to apply task event", "event", f.Event, "error", err)
		}
		if s.OnFrame != nil {
			s.OnFrame(f, err)
		}
	}
}
