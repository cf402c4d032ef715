package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/cityguide/internal/app"
	"github.com/playperu/cityguide/internal/guide"
)

// WSMessage is a UI event sent by the page over the WebSocket.
type WSMessage struct {
	Type     string  `json:"type"`
	City     string  `json:"city,omitempty"`
	Category string  `json:"category,omitempty"`
	Term     string  `json:"term,omitempty"`
	Code     string  `json:"code,omitempty"`
	Lat      float64 `json:"lat,omitempty"`
	Lon      float64 `json:"lon,omitempty"`
}

// WSError reports a rejected event back to the page.
type WSError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// handleWS is a bidirectional alternative to the JSON endpoints plus SSE:
// the page sends UI events and receives every new view.
func handleWS(ctrl *app.Controller, broker *Broker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Hour)
		defer cancel()

		ch := broker.Subscribe()
		defer broker.Unsubscribe(ch)

		v := ctrl.View()
		if err := wsjson.Write(ctx, conn, Event{Type: "view", View: &v}); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}

		go func() {
			defer cancel()
			for {
				var msg WSMessage
				if err := wsjson.Read(ctx, conn, &msg); err != nil {
					logger.Debug("websocket read ended", "error", err)
					return
				}
				if err := dispatch(ctx, ctrl, msg); err != nil {
					if werr := wsjson.Write(ctx, conn, WSError{Type: "error", Error: err.Error()}); werr != nil {
						logger.Debug("websocket write failed", "error", werr)
					}
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case data := <-ch:
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}

type unknownEventError string

func (e unknownEventError) Error() string { return "unknown event type " + string(e) }

// dispatch applies one UI event. The resulting view reaches the page
// through the broker.
func dispatch(ctx context.Context, ctrl *app.Controller, msg WSMessage) error {
	switch msg.Type {
	case "city":
		_, err := ctrl.SelectCity(ctx, msg.City)
		return err
	case "filter":
		ctrl.ToggleFilter(msg.Category)
	case "search":
		ctrl.SetSearch(msg.Term)
	case "unlock":
		_, err := ctrl.Unlock(ctx, msg.City, msg.Code)
		return err
	case "position":
		return ctrl.ReportPosition(guide.Position{Lat: msg.Lat, Lon: msg.Lon})
	case "denied":
		ctrl.ReportDenied()
	case "retry":
		go ctrl.RetryLocation(context.WithoutCancel(ctx))
	default:
		return unknownEventError(msg.Type)
	}
	return nil
}
