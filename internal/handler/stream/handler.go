package stream

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/shree/backend/internal/handler/chat"
	"github.com/zhouzirui/shree/backend/internal/service/assistant"
	"github.com/zhouzirui/shree/backend/pkg/utils"
)

// SessionFinder 查找会话
type SessionFinder interface {
	GetSession(ctx context.Context, sessionID string) (*assistant.Session, error)
}

// Handler manages snapshot streaming via Server-Sent Events
type Handler struct {
	sessions  SessionFinder
	heartbeat time.Duration
	logger    zerolog.Logger
}

// New creates a new stream handler. heartbeat <= 0 uses 15s.
func New(sessions SessionFinder, heartbeat time.Duration, logger zerolog.Logger) *Handler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &Handler{
		sessions:  sessions,
		heartbeat: heartbeat,
		logger:    logger.With().Str("component", "sse").Logger(),
	}
}

// RegisterRoutes 注册SSE路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

// handleStream pushes every published snapshot until the client leaves or
// the session closes.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, chat.StatusFor(err), err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	snapshots, unsubscribe := session.Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	h.logger.Debug().Str("session", sessionID).Msg("opening snapshot stream")

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug().Str("session", sessionID).Msg("client left snapshot stream")
			return
		case snap, ok := <-snapshots:
			if !ok {
				_ = utils.SendSSEEvent(w, flusher, "closed", map[string]string{"sessionId": sessionID})
				return
			}
			if err := utils.SendSSEEvent(w, flusher, "snapshot", snap); err != nil {
				h.logger.Warn().Err(err).Str("session", sessionID).Msg("failed to write snapshot")
				return
			}
		case t := <-ticker.C:
			if err := utils.SendSSEChunk(w, flusher, map[string]any{
				"event": "heartbeat",
				"time":  t.UTC().Format(time.RFC3339),
			}); err != nil {
				return
			}
		}
	}
}
