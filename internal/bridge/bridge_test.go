package bridge

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/powerpack/internal/routes"
)

func newTestBridge(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Config{})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + ShellPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func waitForHosts(t *testing.T, s *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.HostCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("HostCount() = %d, want %d", s.HostCount(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHostRouteChange(t *testing.T) {
	s, ts := newTestBridge(t)
	conn := dial(t, ts)

	err := conn.WriteJSON(map[string]any{
		"type":  "route",
		"path":  "/users",
		"state": map[string]string{"from": "menu"},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case c := <-s.Changes():
		if c.Path != routes.PathUsers {
			t.Errorf("path = %q, want /users", c.Path)
		}
		if string(c.State) != `{"from":"menu"}` {
			t.Errorf("state = %s", c.State)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no route change delivered")
	}
}

func TestHostMessageRejected(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"malformed", `{"type":`, "malformed"},
		{"relative path", `{"type":"route","path":"users"}`, "must start with /"},
		{"unknown type", `{"type":"launch"}`, "unknown message type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ts := newTestBridge(t)
			conn := dial(t, ts)

			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)); err != nil {
				t.Fatalf("write: %v", err)
			}
			msg := readMessage(t, conn)
			if msg.Type != TypeError || !strings.Contains(msg.Error, tt.want) {
				t.Errorf("reply = %+v, want error containing %q", msg, tt.want)
			}

			select {
			case c := <-s.Changes():
				t.Errorf("rejected message produced change %+v", c)
			default:
			}
		})
	}
}

func TestReadyAndNavigateBroadcast(t *testing.T) {
	s, ts := newTestBridge(t)
	a := dial(t, ts)
	b := dial(t, ts)
	waitForHosts(t, s, 2)

	s.Ready()
	s.Navigated(routes.PathSchedules)

	for _, conn := range []*websocket.Conn{a, b} {
		if msg := readMessage(t, conn); msg.Type != TypeReady {
			t.Errorf("first message = %+v, want ready", msg)
		}
		msg := readMessage(t, conn)
		if msg.Type != TypeNavigate || msg.Path != routes.PathSchedules {
			t.Errorf("second message = %+v, want navigate /schedules", msg)
		}
	}
}

func TestLateHostGetsCurrentState(t *testing.T) {
	s, ts := newTestBridge(t)
	s.Ready()
	s.Navigated(routes.PathEmbed)

	conn := dial(t, ts)
	if msg := readMessage(t, conn); msg.Type != TypeReady {
		t.Errorf("first message = %+v, want ready", msg)
	}
	if msg := readMessage(t, conn); msg.Path != routes.PathEmbed {
		t.Errorf("second message = %+v, want navigate /embed", msg)
	}
}

func TestHostDisconnect(t *testing.T) {
	s, ts := newTestBridge(t)
	conn := dial(t, ts)
	waitForHosts(t, s, 1)

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
	waitForHosts(t, s, 0)
}

func TestHealthz(t *testing.T) {
	s, ts := newTestBridge(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("before ready status = %d, want 503", resp.StatusCode)
	}

	s.Ready()
	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("after ready status = %d, want 200", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, ts := newTestBridge(t)
	dial(t, ts)
	waitForHosts(t, s, 1)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "powerpack_bridge_hosts") {
		t.Error("metrics output missing powerpack_bridge_hosts")
	}
}

func TestStartAndShutdown(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0"})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.Addr() == "127.0.0.1:0" {
		t.Fatal("Addr() should report the bound port")
	}

	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
