package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"user_service/internal/models"
	"user_service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms

	wsTypeEvent = "event"
	wsTypeError = "error"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// eventCursor tracks what a connection has already been sent. Events sharing
// the cursor timestamp are remembered by id because the time filter is inclusive.
type eventCursor struct {
	since time.Time
	seen  map[string]struct{}
}

func newEventCursor(since time.Time) *eventCursor {
	return &eventCursor{since: since, seen: map[string]struct{}{}}
}

// advance returns the events not sent yet and moves the cursor past them.
func (cur *eventCursor) advance(events []models.UserEvent) []models.UserEvent {
	fresh := make([]models.UserEvent, 0, len(events))
	for _, ev := range events {
		if ev.OccurredAt.Before(cur.since) {
			continue
		}
		if _, dup := cur.seen[ev.EventID]; dup {
			continue
		}
		if ev.OccurredAt.After(cur.since) {
			cur.since = ev.OccurredAt
			cur.seen = map[string]struct{}{}
		}
		cur.seen[ev.EventID] = struct{}{}
		fresh = append(fresh, ev)
	}
	return fresh
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Stream audit events
// @Description  WebSocket upgrade. Pushes {"type":"event","data":UserEvent} for every new audit event. Token via Authorization header or ?token=.
// @Tags         logs
// @Param        token        query  string  false  "Bearer token when headers cannot be set"
// @Param        since        query  string  false  "Replay events from this time (RFC3339 or YYYY-MM-DD); default is connect time"
// @Param        type         query  string  false  "Only this event type"
// @Param        interval     query  string  false  "Poll interval, e.g. 500ms (max 10s)"
// @Param        interval_ms  query  int     false  "Poll interval in milliseconds (max 10000)"
// @Success      101
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /ws/events [get]
func (h *Handler) wsEvents(c *gin.Context) {
	interval := h.parseInterval(c)

	since := time.Now().UTC()
	if qs := c.Query("since"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'since' time; use RFC3339 or YYYY-MM-DD"})
			return
		}
		since = t
	}
	eventType := strings.ToUpper(strings.TrimSpace(c.Query("type")))
	userID := c.GetInt(ctxUserID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	if h.log != nil {
		h.log.Infow("ws_connected", "user_id", userID, "interval", interval)
	}

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	ctx := c.Request.Context()
	cur := newEventCursor(since)

	if err := h.sendEvents(ctx, conn, cur, eventType); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendEvents(ctx, conn, cur, eventType); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// Helper: parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := defaultInterval

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return interval
}

// Helper: startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// Helper: sendEvents polls the audit log from the cursor and writes every unseen event.
// A load failure is reported to the client before the error is returned.
func (h *Handler) sendEvents(ctx context.Context, conn *websocket.Conn, cur *eventCursor, eventType string) error {
	events, err := h.services.EventLog.List(ctx, service.LogFilter{From: cur.since, Type: eventType})
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_list_events_failed", "err", err)
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(wsEnvelope{Type: wsTypeError, Error: errLoadLogs})
		return err
	}
	for _, ev := range cur.advance(events) {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(wsEnvelope{Type: wsTypeEvent, Data: ev}); err != nil {
			return err
		}
	}
	return nil
}
