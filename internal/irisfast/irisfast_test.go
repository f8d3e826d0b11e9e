package irisfast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func TestClientSendMessageAndConfig(t *testing.T) {
	var got ReplyRequest
	var gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.Header.Get("X-User-Id")
		switch r.URL.Path {
		case "/reply":
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{}`))
		case "/config":
			_, _ = w.Write([]byte(`{"bot_http_port":3000,"db_polling_rate":100}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithHeaderProvider(func() map[string]string {
		return map[string]string{"X-User-Id": "u1", "X-Empty": " "}
	}))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.SendMessage(ctx, "room-a", "hi"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if got.Type != "text" || got.Room != "room-a" || got.Data != "hi" {
		t.Fatalf("reply body %+v", got)
	}
	if gotUser != "u1" {
		t.Fatalf("header not injected: %q", gotUser)
	}

	cfg, err := c.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg.Port != 3000 || cfg.PollingSpeed != 100 {
		t.Fatalf("config %+v", cfg)
	}
}

func TestWebSocketDeliversMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Session-Id") != "s1" {
			http.Error(w, "missing header", http.StatusUnauthorized)
			return
		}
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		sender := "kim"
		_ = wsjson.Write(r.Context(), conn, Message{Msg: "!rps rock", Room: "r1", Sender: &sender})
		<-r.Context().Done()
	}))
	defer srv.Close()

	ws := NewWebSocket("ws"+strings.TrimPrefix(srv.URL, "http"), 0, nil)
	ws.SetHeaderProvider(func() map[string]string { return map[string]string{"X-Session-Id": "s1"} })
	received := make(chan *Message, 1)
	ws.OnMessage(func(m *Message) { received <- m })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ws.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if ws.State() != WSStateConnected {
		t.Fatalf("state %s", ws.State())
	}

	select {
	case m := <-received:
		if m.Msg != "!rps rock" || m.Room != "r1" || m.Sender == nil || *m.Sender != "kim" {
			t.Fatalf("message %+v", m)
		}
	case <-ctx.Done():
		t.Fatalf("no message received")
	}

	if err := ws.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestReconnectDelayCapped(t *testing.T) {
	if reconnectDelay(1) != 250*time.Millisecond {
		t.Fatalf("first delay %v", reconnectDelay(1))
	}
	if reconnectDelay(20) != 8*time.Second {
		t.Fatalf("cap %v", reconnectDelay(20))
	}
}
