package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, onConn func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/websocket", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		onConn(conn)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + "/v4/websocket"
}

func TestConnectionAvailableBeforeConnect(t *testing.T) {
	c, _ := NewConnection()
	if c.Available() {
		t.Fatalf("expected a fresh connection to be unavailable")
	}
}

func TestConnectionConnectAndReceiveReady(t *testing.T) {
	srv := newTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"op":"ready","resumed":false,"sessionId":"s1"}`))
		time.Sleep(50 * time.Millisecond)
	})

	c, stream := NewConnection()
	if err := c.Connect(context.Background(), wsURL(srv.URL), http.Header{}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !c.Available() {
		t.Fatalf("expected connection to be available after connect")
	}

	select {
	case res := <-stream:
		if res.Err != nil {
			t.Fatalf("unexpected stream error: %v", res.Err)
		}
		if res.Message == nil {
			t.Fatalf("expected a decoded message")
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for a message")
	}

	c.Disconnect()
	if c.Available() {
		t.Fatalf("expected connection to be unavailable after disconnect")
	}
}

func TestConnectionConnectFailsOnUnreachableHost(t *testing.T) {
	c, _ := NewConnection()
	err := c.Connect(context.Background(), "ws://127.0.0.1:1/v4/websocket", http.Header{})
	if err == nil {
		t.Fatalf("expected connect to an unreachable host to fail")
	}
}

func TestConnectionDisconnectIsIdempotent(t *testing.T) {
	c, _ := NewConnection()
	c.Disconnect()
	c.Disconnect()
	if c.Available() {
		t.Fatalf("expected connection to remain unavailable")
	}
}

// A deliberate Disconnect must not surface a stream error: the caller
// tearing the connection down already knows, and a stray error on the
// channel would make a manager mistake its own intentional disconnect
// for a dropped connection.
func TestConnectionDisconnectProducesNoStreamError(t *testing.T) {
	srv := newTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	c, stream := NewConnection()
	if err := c.Connect(context.Background(), wsURL(srv.URL), http.Header{}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	c.Disconnect()

	select {
	case res := <-stream:
		t.Fatalf("expected no stream result from an intentional disconnect, got %+v", res)
	case <-time.After(100 * time.Millisecond):
	}
}
