package handler

import (
	"context"
	"net/http"
	"slices"
	"time"

	"cineverse/internal/catalog"
	"cineverse/internal/debounce"
	"cineverse/internal/logger"
	"cineverse/internal/metrics"
	"cineverse/internal/models"
	"cineverse/internal/repository"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// LiveSource opens a live feed of one catalog section.
type LiveSource interface {
	Live(ctx context.Context, t models.ContentType) (repository.Feed, error)
}

type StreamHandler struct {
	live     LiveSource
	upgrader websocket.Upgrader
	debounce time.Duration
}

// NewStreamHandler accepts websocket connections from the given origins;
// "*" allows any origin. Requests without an Origin header are not from a
// browser and are always accepted.
func NewStreamHandler(live LiveSource, origins []string, searchDebounce time.Duration) *StreamHandler {
	return &StreamHandler{
		live:     live,
		debounce: searchDebounce,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  4096,
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
			},
		},
	}
}

// streamMessage is every server to client frame.
type streamMessage struct {
	Type     string               `json:"type"` // "snapshot", "result" or "error"
	Items    []models.ContentItem `json:"items,omitempty"`
	Result   *catalog.Result      `json:"result,omitempty"`
	Criteria *catalog.Criteria    `json:"criteria,omitempty"`
	Error    string               `json:"error,omitempty"`
	Detail   string               `json:"detail,omitempty"`
}

// criteriaPatch is a client to server browse frame; absent fields keep
// their current value.
type criteriaPatch struct {
	SearchText *string `json:"searchText"`
	Genre      *string `json:"genre"`
	Year       *string `json:"year"`
	SortKey    *string `json:"sortKey"`
}

type wsConn struct {
	id       string
	endpoint string
	conn     *websocket.Conn
	log      *logrus.Entry
}

func (h *StreamHandler) open(w http.ResponseWriter, r *http.Request, endpoint string) (*wsConn, models.ContentType, bool) {
	t := models.ContentType(r.URL.Query().Get("type"))
	if t != "" && !t.Valid() {
		writeError(w, http.StatusBadRequest, "invalid content type")
		return nil, "", false
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already wrote the error response
		logger.Get().WithError(err).Warn("websocket upgrade failed")
		return nil, "", false
	}

	id := uuid.NewString()
	c := &wsConn{
		id:       id,
		endpoint: endpoint,
		conn:     conn,
		log: logger.Get().WithFields(logrus.Fields{
			"session":  id,
			"endpoint": endpoint,
			"type":     string(t),
		}),
	}
	metrics.WSConnections.WithLabelValues(endpoint).Inc()
	c.log.Debug("websocket opened")
	return c, t, true
}

func (c *wsConn) close() {
	metrics.WSConnections.WithLabelValues(c.endpoint).Dec()
	_ = c.conn.Close()
	c.log.Debug("websocket closed")
}

func (c *wsConn) send(msg streamMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return err
	}
	metrics.WSMessagesSent.WithLabelValues(c.endpoint).Inc()
	return nil
}

func (c *wsConn) ping() error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// readLoop hands every text frame to onMessage and cancels the session
// when the peer goes away.
func (c *wsConn) readLoop(ctx context.Context, cancel context.CancelFunc, onMessage func([]byte)) {
	defer cancel()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Debug("websocket read")
			}
			return
		}
		if onMessage != nil && ctx.Err() == nil {
			onMessage(data)
		}
	}
}

func errorMessage(err error) streamMessage {
	return streamMessage{Type: "error", Error: "load failed", Detail: err.Error()}
}

// @Summary Live catalog
// @Description Websocket. Sends {"type":"snapshot","items":[...]} on connect and after every catalog change, {"type":"error"} when loading fails.
// @Tags content
// @Param type query string false "movie|anime"
// @Router /ws/content [get]
func (h *StreamHandler) Content(w http.ResponseWriter, r *http.Request) {
	c, t, ok := h.open(w, r, "content")
	if !ok {
		return
	}
	defer c.close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	feed, err := h.live.Live(ctx, t)
	if err != nil {
		_ = c.send(errorMessage(err))
		return
	}
	defer feed.Unsubscribe()

	go c.readLoop(ctx, cancel, nil)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	updates := feed.Updates()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				// feed ended; keep the socket for pings until the client leaves
				updates = nil
				continue
			}
			msg := streamMessage{Type: "snapshot", Items: snap.Items}
			if snap.Err != nil {
				msg = errorMessage(snap.Err)
			}
			if err := c.send(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}

// @Summary Interactive browse session
// @Description Websocket. The client sends criteria patches {"searchText","genre","year","sortKey"}; genre, year and sort apply immediately, search text after a quiet period. The server replies {"type":"result"} for the latest catalog snapshot.
// @Tags content
// @Param type query string false "movie|anime"
// @Router /ws/browse [get]
func (h *StreamHandler) Browse(w http.ResponseWriter, r *http.Request) {
	c, t, ok := h.open(w, r, "browse")
	if !ok {
		return
	}
	defer c.close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	feed, err := h.live.Live(ctx, t)
	if err != nil {
		_ = c.send(errorMessage(err))
		return
	}
	defer feed.Unsubscribe()

	patches := make(chan criteriaPatch)
	searches := make(chan string)

	deb := debounce.New(h.debounce, func(text string) {
		select {
		case searches <- text:
		case <-ctx.Done():
		}
	})
	defer deb.Stop()

	go c.readLoop(ctx, cancel, func(data []byte) {
		var p criteriaPatch
		if err := json.Unmarshal(data, &p); err != nil {
			c.log.WithError(err).Debug("ignoring malformed criteria")
			return
		}
		select {
		case patches <- p:
		case <-ctx.Done():
		}
	})

	s := &browseState{criteria: catalog.Criteria{ContentType: t, Genre: catalog.All, Year: catalog.All, SortKey: catalog.SortRatingDesc}}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	updates := feed.Updates()
	for {
		var msg *streamMessage
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			msg = s.onSnapshot(snap)
		case p := <-patches:
			if p.SearchText != nil {
				deb.Push(*p.SearchText)
			}
			msg = s.onPatch(p)
		case text := <-searches:
			msg = s.onSearch(text)
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
		if msg != nil {
			if err := c.send(*msg); err != nil {
				return
			}
		}
	}
}

// browseState is owned by the session loop. Every method returns the frame
// to send, or nil when nothing visible changed.
type browseState struct {
	criteria catalog.Criteria
	items    []models.ContentItem
	loaded   bool
}

func (s *browseState) result() *streamMessage {
	if !s.loaded {
		return nil
	}
	res := catalog.Derive(s.items, s.criteria)
	crit := s.criteria
	return &streamMessage{Type: "result", Result: &res, Criteria: &crit}
}

func (s *browseState) onSnapshot(snap repository.Snapshot) *streamMessage {
	if snap.Err != nil {
		m := errorMessage(snap.Err)
		return &m
	}
	s.items = snap.Items
	s.loaded = true
	return s.result()
}

// onPatch applies everything but the search text, which is debounced.
func (s *browseState) onPatch(p criteriaPatch) *streamMessage {
	next := s.criteria
	if p.Genre != nil {
		next.Genre = *p.Genre
	}
	if p.Year != nil {
		next.Year = *p.Year
	}
	if p.SortKey != nil {
		next.SortKey = catalog.SortKey(*p.SortKey)
	}
	if next == s.criteria {
		return nil
	}

	norm, err := next.Normalize()
	if err != nil {
		return &streamMessage{Type: "error", Error: "invalid criteria", Detail: err.Error()}
	}
	s.criteria = norm
	return s.result()
}

func (s *browseState) onSearch(text string) *streamMessage {
	if text == s.criteria.SearchText {
		return nil
	}
	s.criteria.SearchText = text
	return s.result()
}
