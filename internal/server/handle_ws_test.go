package server

import (
	"bufio"
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

func readView(ctx context.Context, t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	for {
		var ev Event
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			t.Fatalf("read: %v", err)
		}
		if ev.Type == "view" {
			return ev
		}
	}
}

func TestWebSocketEvents(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+srv.URL[len("http"):]+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	first := readView(ctx, t, conn)
	if first.View == nil || first.View.City != "Utopia" {
		t.Fatalf("unexpected first view %+v", first.View)
	}

	if err := wsjson.Write(ctx, conn, WSMessage{Type: "search", Term: "tea"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	ev := readView(ctx, t, conn)
	if ev.View.Search != "tea" || len(ev.View.Places) != 1 {
		t.Errorf("search view: %q with %d places", ev.View.Search, len(ev.View.Places))
	}

	if err := wsjson.Write(ctx, conn, WSMessage{Type: "teleport"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var werr WSError
	if err := wsjson.Read(ctx, conn, &werr); err != nil {
		t.Fatalf("read: %v", err)
	}
	if werr.Type != "error" || !strings.Contains(werr.Error, "teleport") {
		t.Errorf("unexpected error frame %+v", werr)
	}

	conn.Close(websocket.StatusNormalClosure, "done")
}

func TestEventsStream(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content-type = %q", got)
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			t.Fatalf("decoding event: %v", err)
		}
		if ev.View == nil || ev.View.City != "Utopia" {
			t.Fatalf("unexpected initial view %+v", ev.View)
		}
		return
	}
	t.Fatalf("stream ended without a view: %v", sc.Err())
}
