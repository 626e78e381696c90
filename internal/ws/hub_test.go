package ws

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func recv(t *testing.T, c *Client, name string) string {
	t.Helper()
	select {
	case got := <-c.Send:
		return string(got)
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting %s", name)
	}
	return ""
}

func nothing(t *testing.T, c *Client, name string) {
	t.Helper()
	select {
	case got := <-c.Send:
		t.Fatalf("%s got unexpected %q", name, got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_Broadcast(t *testing.T) {
	h := NewHub(quietLog())
	go h.Run()
	defer h.Stop()

	c1 := &Client{Send: make(chan []byte, 1)}
	c2 := &Client{Send: make(chan []byte, 1)}
	h.Register(c1)
	h.Register(c2)
	if c1.ID == "" || c1.ID == c2.ID {
		t.Fatalf("ids: %q %q", c1.ID, c2.ID)
	}

	h.Broadcast([]byte("hello"))
	if got := recv(t, c1, "c1"); got != "hello" {
		t.Fatalf("c1 got %q", got)
	}
	if got := recv(t, c2, "c2"); got != "hello" {
		t.Fatalf("c2 got %q", got)
	}
}

func TestHub_BroadcastEventFiltersByPartner(t *testing.T) {
	h := NewHub(quietLog())
	go h.Run()
	defer h.Stop()

	acme := &Client{Partner: "Acme", Send: make(chan []byte, 1)}
	mondo := &Client{Partner: "Mondo", Send: make(chan []byte, 1)}
	all := &Client{Send: make(chan []byte, 1)}
	h.Register(acme)
	h.Register(mondo)
	h.Register(all)

	ev := `{"action":"client.updated","clientId":"c1","partnerName":"Acme","revision":2}`
	h.BroadcastEvent([]byte(ev))

	if got := recv(t, acme, "acme"); got != ev {
		t.Fatalf("acme got %q", got)
	}
	if got := recv(t, all, "all"); got != ev {
		t.Fatalf("all got %q", got)
	}
	nothing(t, mondo, "mondo")
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := NewHub(quietLog())
	go h.Run()
	defer h.Stop()

	slow := &Client{Send: make(chan []byte)} // never drained
	h.Register(slow)
	h.Broadcast([]byte("x"))

	deadline := time.Now().Add(time.Second)
	for h.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow client still registered")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, ok := <-slow.Send; ok {
		t.Fatal("send channel should be closed")
	}
}

func TestHandler_DeliversOverWebSocket(t *testing.T) {
	h := NewHub(quietLog())
	go h.Run()
	defer h.Stop()

	srv := httptest.NewServer(Handler(h, quietLog()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?partner=Acme"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for h.Count() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	h.BroadcastEvent([]byte(`{"action":"client.deleted","partnerName":"Mondo"}`))
	h.BroadcastEvent([]byte(`{"action":"client.deleted","partnerName":"Acme"}`))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(msg), `"Acme"`) {
		t.Fatalf("got %s", msg)
	}
}
