package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	chatService "github.com/zhouzirui/assistentes/backend/internal/service/chat"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	writeWait  = 10 * time.Second
)

const (
	frameSession = "sessao"
	frameReply   = "resposta"
	frameError   = "erro"
)

// socketReply is one outgoing frame: the session greeting, a reply or an error.
type socketReply struct {
	Type      string             `json:"type"`
	SessionID string             `json:"sessionId,omitempty"`
	Reply     *chatService.Reply `json:"resposta,omitempty"`
	Error     string             `json:"erro,omitempty"`
}

// handleWebSocket serves chat over a websocket. Frames carry the same JSON as
// POST /chat. The connection session comes from the sessionId query parameter
// or a fresh UUID, is announced in the first frame, and fills frames that omit one.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	defaultSession := r.URL.Query().Get("sessionId")
	if defaultSession == "" {
		defaultSession = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(maxBodyBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(socketReply{Type: frameSession, SessionID: defaultSession}); err != nil {
		logger.Warn().Err(err).Msg("websocket write failed")
		return
	}

	go pingLoop(ctx, conn)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		frame := h.answerFrame(ctx, raw, defaultSession)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(frame); err != nil {
			logger.Warn().Err(err).Msg("websocket write failed")
			return
		}
	}
}

func (h *Handler) answerFrame(ctx context.Context, raw []byte, defaultSession string) socketReply {
	var payload chatPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return socketReply{Type: frameError, Error: msgInvalidBody}
	}
	if payload.SessionID == "" {
		payload.SessionID = defaultSession
	}

	reply, err := h.chatSvc.Ask(ctx, payload.request())
	if err != nil {
		_, message := describeError(err)
		return socketReply{Type: frameError, Error: message}
	}
	return socketReply{Type: frameReply, SessionID: payload.SessionID, Reply: &reply}
}

func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
