package sync

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/Werneck0live/pipeline-crm/internal/broker"
)

// Watcher follows the change feed of the ws server and marks the session's
// working copies stale when another writer moves a record on.
type Watcher struct {
	URL     string // ws://host:8090/ws
	Session *Session
	Dialer  *websocket.Dialer
	Log     *slog.Logger

	// OnEvent, when set, sees every event after it was applied.
	OnEvent func(broker.Event)
}

func NewWatcher(wsURL string, s *Session) *Watcher {
	return &Watcher{URL: wsURL, Session: s, Dialer: websocket.DefaultDialer, Log: slog.Default().With("cmp", "sync.watch")}
}

// Run reads events until ctx is done or the connection fails. It returns
// nil when stopped through ctx.
func (w *Watcher) Run(ctx context.Context) error {
	u, err := url.Parse(w.URL)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("partner", w.Session.Partner())
	u.RawQuery = q.Encode()

	dialer := w.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	w.Log.Info("watch_started", "url", u.String())
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ce *websocket.CloseError
			if errors.As(err, &ce) && ce.Code == websocket.CloseNormalClosure {
				return nil
			}
			return err
		}
		var e broker.Event
		if err := json.Unmarshal(msg, &e); err != nil {
			w.Log.Warn("watch_event_decode_failed", "err", err)
			continue
		}
		w.Session.Notify(e)
		if w.OnEvent != nil {
			w.OnEvent(e)
		}
	}
}

// Notify applies a change event to the session's state. Events for other
// partners are ignored.
func (s *Session) Notify(e broker.Event) {
	if e.PartnerName != s.partner {
		return
	}
	switch e.Action {
	case broker.ActionClientCreated:
		s.listStale.Store(true)
	case broker.ActionClientDeleted:
		s.listStale.Store(true)
		if wc, ok := s.Lookup(e.ClientID); ok {
			wc.gone.Store(true)
			wc.MarkStale()
		}
	case broker.ActionClientUpdated, broker.ActionApplicationsUpdated:
		if wc, ok := s.Lookup(e.ClientID); ok && e.Revision > wc.Revision() {
			wc.MarkStale()
			s.log.Info("client_marked_stale", "id", e.ClientID, "local_revision", wc.Revision(), "stored_revision", e.Revision)
		}
	}
}
