package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aayush-wiz/doodle-ai-app/internal/domain"
	"github.com/aayush-wiz/doodle-ai-app/internal/middleware"
	"github.com/aayush-wiz/doodle-ai-app/internal/progress"
)

const (
	writeWait      = 10 * time.Second
	descriptorWait = 30 * time.Second
	maxMessageSize = 16 << 10
)

// Generate upgrades the connection to a websocket, reads one generation
// descriptor and streams ordered progress events until the job reaches a
// terminal state. A client disconnect cancels the job; no terminal event is
// fabricated for a connection that is already gone.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     a.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		a.Logger.Warn().Err(err).Msg("generate: upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	var req domain.GenerationRequest
	_ = conn.SetReadDeadline(time.Now().Add(descriptorWait))
	if err := conn.ReadJSON(&req); err != nil {
		a.writeEvent(conn, domain.ProgressEvent{
			Status: domain.ProgressError,
			Detail: "invalid generation request",
		})
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The read pump only watches for the client going away; any further
	// client frame after the descriptor is ignored.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	reporter := progress.NewReporter()
	go func() {
		_ = a.Jobs.Run(ctx, req, middleware.LanguageFromContext(r.Context()), reporter)
	}()

	for ev := range reporter.Events() {
		if err := a.writeEvent(conn, ev); err != nil {
			cancel()
			// Drain so the pipeline is never blocked on a dead consumer.
			for range reporter.Events() {
			}
			return
		}
	}
}

func (a *App) writeEvent(conn *websocket.Conn, ev domain.ProgressEvent) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}

// checkOrigin admits configured origins plus same-origin requests.
func (a *App) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range a.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
