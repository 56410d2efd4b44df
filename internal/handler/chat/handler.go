package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/shree/backend/internal/service/assistant"
	"github.com/zhouzirui/shree/backend/pkg/utils"
)

// Sessions 会话管理所需的最小接口
type Sessions interface {
	CreateSession(ctx context.Context, personaID string) (*assistant.Session, error)
	GetSession(ctx context.Context, sessionID string) (*assistant.Session, error)
	CloseSession(sessionID string) error
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	sessions Sessions
	logger   zerolog.Logger
}

// New 创建聊天处理器
func New(sessions Sessions, logger zerolog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		logger:   logger.With().Str("component", "chat-handler").Logger(),
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Delete("/", h.handleCloseSession)
		r.Post("/messages", h.handleSubmit)
		r.Post("/stop", h.withSession(func(s *assistant.Session) { s.Stop() }))
		r.Post("/repeat", h.withSession(func(s *assistant.Session) { s.Repeat() }))
		r.Post("/autovoice", h.withSession(func(s *assistant.Session) { s.ToggleAutoVoice() }))
	})
}

// handleCreateSession 创建会话，返回初始快照
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaID string `json:"personaId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessions.CreateSession(r.Context(), payload.PersonaID)
	if err != nil {
		utils.RespondError(w, StatusFor(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session.Snapshot())
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, session.Snapshot())
}

func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.CloseSession(chi.URLParam(r, "sessionID")); err != nil {
		utils.RespondError(w, StatusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmit 提交用户消息，空白文本返回 422
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !session.Submit(payload.Text) {
		utils.RespondError(w, http.StatusUnprocessableEntity, "text is required")
		return
	}

	utils.RespondJSON(w, http.StatusOK, session.Snapshot())
}

func (h *Handler) withSession(action func(*assistant.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := h.lookup(w, r)
		if !ok {
			return
		}
		action(session)
		utils.RespondJSON(w, http.StatusOK, session.Snapshot())
	}
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*assistant.Session, bool) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		h.logger.Debug().Str("session", sessionID).Err(err).Msg("session lookup failed")
		utils.RespondError(w, StatusFor(err), err.Error())
		return nil, false
	}
	return session, true
}

// StatusFor 将业务错误映射为HTTP状态码
func StatusFor(err error) int {
	switch {
	case errors.Is(err, assistant.ErrPersonaRequired), errors.Is(err, assistant.ErrPersonaNotFound):
		return http.StatusBadRequest
	case errors.Is(err, assistant.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
