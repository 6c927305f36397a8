package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/http/middleware"
)

const (
	feedPingEvery  = 30 * time.Second
	feedPongWait   = 2 * feedPingEvery
	feedWriteWait  = 10 * time.Second
	feedReadLimit  = 4 << 10
	feedQueueDepth = 64
)

var feedTables = map[string]bool{
	feed.TableChatMessages: true,
	feed.TableOrders:       true,
	feed.TableReviews:      true,
	feed.TableVisitors:     true,
	feed.TableContent:      true,
}

// Feed godoc
// @ID          feed
// @Summary     Change feed (WebSocket)
// @Description Upgrades to a WebSocket and streams row changes matching the topic as JSON events.
// @Tags        Feed
// @Param       table   query  string  true  "Table"  Enums(chat_messages, orders, reviews, visitors, content_sections)
// @Param       event   query  string  false "insert, update or *"
// @Param       column  query  string  false "Equality filter column"
// @Param       value   query  string  false "Equality filter value"
// @Success     101  {string} string "Switching Protocols"
// @Failure     400  {object} handlers.ErrorResponse "Bad topic"
// @Router      /feed [get]
func (h *Handlers) Feed(c *gin.Context) {
	topic, err := feed.ParseTopic(c.Query("table"), c.Query("event"), c.Query("column"), c.Query("value"))
	if err != nil || !feedTables[topic.Table] {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "table must name a known table; column and value go together")
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already answered the client
		return
	}
	lg := middleware.LoggerFrom(c).With().Str("table", topic.Table).Logger()

	// a full queue means the client is too slow; the broker counts the drop
	out := make(chan feed.Event, feedQueueDepth)
	sub := h.broker.Subscribe(topic, func(ev feed.Event) {
		select {
		case out <- ev:
		default:
			lg.Warn().Str("type", string(ev.Type)).Msg("feed client lagging, event dropped")
		}
	})
	done := make(chan struct{})

	go func() {
		defer close(done)
		conn.SetReadLimit(feedReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(feedPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
					lg.Debug().Err(err).Msg("feed read ended")
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(feedPingEvery)
	defer func() {
		ticker.Stop()
		sub.Close()
		_ = conn.Close()
	}()
	lg.Debug().Msg("feed subscribed")

	for {
		select {
		case <-done:
			return
		case <-sub.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case ev := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				lg.Debug().Err(err).Msg("feed write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
