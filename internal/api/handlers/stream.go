package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"recycling-route-service/internal/api/dto"
	"recycling-route-service/internal/domain"
	"recycling-route-service/internal/platform/obs"
)

const streamWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

// Stream runs an optimization and pushes each day over a WebSocket as soon as it
// is planned, followed by one summary frame. Query: level, max_iterations, days
// (comma separated), workers.
func (h *OptimizeHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := streamRequest(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.resolve(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		log.Printf("req_id=%s websocket upgrade failed: %v", obs.RequestID(r.Context()), err)
		return
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var mu sync.Mutex
	send := func(msg dto.StreamMessage) error {
		mu.Lock()
		defer mu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		return conn.WriteJSON(msg)
	}

	ds, err := h.Source.LoadDataset(ctx)
	if err != nil {
		log.Printf("req_id=%s load dataset failed: %v", obs.RequestID(ctx), err)
		_ = send(dto.StreamMessage{Type: dto.StreamError, Error: "failed to load dataset"})
		closeStream(conn, websocket.CloseInternalServerErr, "load failed")
		return
	}

	res, err := h.run(ctx, ds, p, func(day *domain.DayResult) {
		d := dto.FromDayResult(day)
		if err := send(dto.StreamMessage{Type: dto.StreamDay, Day: &d}); err != nil {
			// Client went away; stop planning the remaining days.
			cancel()
		}
	})
	if err != nil {
		log.Printf("req_id=%s optimize stream failed: %v", obs.RequestID(ctx), err)
		_ = send(dto.StreamMessage{Type: dto.StreamError, Error: err.Error()})
		closeStream(conn, websocket.CloseInternalServerErr, "optimize failed")
		return
	}

	summary := dto.FromOptimizeResult(res, p.level, p.budget)
	summary.Days = []dto.DayResponse{}
	if err := send(dto.StreamMessage{Type: dto.StreamSummary, Result: &summary}); err != nil {
		log.Printf("req_id=%s stream summary failed: %v", obs.RequestID(ctx), err)
		return
	}
	closeStream(conn, websocket.CloseNormalClosure, "done")
}

func streamRequest(r *http.Request) (dto.OptimizeRequest, error) {
	q := r.URL.Query()
	req := dto.OptimizeRequest{Level: q.Get("level")}

	if v := strings.TrimSpace(q.Get("max_iterations")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, &queryError{param: "max_iterations", value: v}
		}
		req.MaxIterations = &n
	}
	if v := strings.TrimSpace(q.Get("workers")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, &queryError{param: "workers", value: v}
		}
		req.Workers = n
	}
	if v := q.Get("days"); v != "" {
		req.Days = strings.Split(v, ",")
	}

	return req, nil
}

type queryError struct {
	param string
	value string
}

func (e *queryError) Error() string {
	return "invalid " + e.param + ": " + strconv.Quote(e.value)
}

func closeStream(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(streamWriteWait))
}
