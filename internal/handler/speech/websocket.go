package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/shree/backend/internal/handler/chat"
	"github.com/zhouzirui/shree/backend/internal/model/speech"
	"github.com/zhouzirui/shree/backend/internal/service/assistant"
	speechService "github.com/zhouzirui/shree/backend/internal/service/speech"
	"github.com/zhouzirui/shree/backend/pkg/utils"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second
)

// Inbound message types.
const (
	TypeSubmit          = "submit"
	TypeStop            = "stop"
	TypeRepeat          = "repeat"
	TypeToggleAutoVoice = "toggleAutoVoice"
	TypeVoices          = "voices"
	TypePlayback        = "playback"
)

// Outbound message types besides the engine's speak and cancel frames.
const (
	TypeSnapshot = "snapshot"
	TypeError    = "error"
)

// SessionFinder 查找会话
type SessionFinder interface {
	GetSession(ctx context.Context, sessionID string) (*assistant.Session, error)
}

// WebSocketHandler WebSocket语音处理器
type WebSocketHandler struct {
	sessions SessionFinder
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(sessions SessionFinder, logger zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.With().Str("component", "speech-ws").Logger(),
	}
}

// RegisterWebSocketRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/speech/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

// SubmitMessage 文本提交
type SubmitMessage struct {
	Text string `json:"text"`
}

// VoicesMessage 客户端语音能力与可用声音列表
type VoicesMessage struct {
	Supported bool           `json:"supported"`
	Voices    []speech.Voice `json:"voices"`
}

// PlaybackMessage 客户端播放进度
type PlaybackMessage struct {
	Kind        speech.EventKind `json:"kind"`
	UtteranceID string           `json:"utteranceId"`
	Error       string           `json:"error,omitempty"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// conn serializes writes; gorilla connections allow one concurrent writer.
type conn struct {
	ws        *websocket.Conn
	sessionID string
	mu        sync.Mutex
}

// WriteFrame implements speechService.FrameWriter.
func (c *conn) WriteFrame(frameType string, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(outgoingMessage{
		Type:      frameType,
		SessionID: c.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, chat.StatusFor(err), err.Error())
		return
	}

	remote, ok := session.Engine().(*speechService.RemoteEngine)
	if !ok {
		utils.RespondError(w, http.StatusServiceUnavailable, "speech bridge unavailable for this session")
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("session", sessionID).Msg("upgrade failed")
		return
	}
	defer ws.Close()

	logger := h.logger.With().Str("session", sessionID).Logger()
	logger.Info().Msg("client connected")

	c := &conn{ws: ws, sessionID: sessionID}
	remote.Attach(c)
	session.EngineChanged()
	defer func() {
		remote.Detach(c)
		session.EngineChanged()
		logger.Info().Msg("client disconnected")
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	snapshots, unsubscribe := session.Subscribe()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.forwardSnapshots(ctx, c, snapshots, logger)
	}()
	go func() {
		defer wg.Done()
		h.pingLoop(ctx, c)
	}()
	defer func() {
		cancel()
		unsubscribe()
		wg.Wait()
	}()

	_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		var msg inboundMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn().Err(err).Msg("read error")
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.SessionID != "" && msg.SessionID != sessionID {
			h.sendError(c, "session mismatch")
			continue
		}

		if err := h.handleMessage(ctx, session, remote, &msg); err != nil {
			h.sendError(c, err.Error())
		}
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, session *assistant.Session, remote *speechService.RemoteEngine, msg *inboundMessage) error {
	switch msg.Type {
	case TypeSubmit:
		var payload SubmitMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return errors.New("invalid submit payload")
		}
		if !session.Submit(payload.Text) {
			return errors.New("text is required")
		}
	case TypeStop:
		session.Stop()
	case TypeRepeat:
		session.Repeat()
	case TypeToggleAutoVoice:
		session.ToggleAutoVoice()
	case TypeVoices:
		var payload VoicesMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return errors.New("invalid voices payload")
		}
		remote.UpdateCapabilities(payload.Supported, payload.Voices)
		session.VoicesChanged(payload.Voices)
		session.EngineChanged()
	case TypePlayback:
		var payload PlaybackMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return errors.New("invalid playback payload")
		}
		ev := speech.Event{Kind: payload.Kind, UtteranceID: payload.UtteranceID, Error: payload.Error}
		if err := remote.Deliver(ctx, ev); err != nil {
			return err
		}
	default:
		return errors.New("unsupported message type: " + msg.Type)
	}
	return nil
}

func (h *WebSocketHandler) forwardSnapshots(ctx context.Context, c *conn, snapshots <-chan assistant.Snapshot, logger zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := c.WriteFrame(TypeSnapshot, snap); err != nil {
				logger.Debug().Err(err).Msg("snapshot write failed")
				return
			}
		}
	}
}

func (h *WebSocketHandler) sendError(c *conn, message string) {
	if err := c.WriteFrame(TypeError, map[string]string{"message": message}); err != nil {
		h.logger.Debug().Err(err).Msg("write error failed")
	}
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, c *conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}
