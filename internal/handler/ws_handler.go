package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/chernandez90/InsurancePortal/internal/audit"
	"github.com/chernandez90/InsurancePortal/internal/config"
	"github.com/chernandez90/InsurancePortal/internal/domain"
	"github.com/chernandez90/InsurancePortal/internal/hub"
	"github.com/chernandez90/InsurancePortal/pkg/log"
	"github.com/chernandez90/InsurancePortal/pkg/middleware"
	"github.com/chernandez90/InsurancePortal/pkg/response"
)

// WSHandler upgrades authenticated viewers onto the notification hub.
type WSHandler struct {
	hub      *hub.Hub
	auth     *middleware.AuthMiddleware
	wsCfg    config.WebSocketConfig
	upgrader websocket.Upgrader
}

// NewWSHandler creates a websocket handler. Browser origins must appear in
// allowedOrigins; "*" allows any.
func NewWSHandler(h *hub.Hub, auth *middleware.AuthMiddleware, wsCfg config.WebSocketConfig, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimSuffix(o, "/")] = struct{}{}
	}

	return &WSHandler{
		hub:   h,
		auth:  auth,
		wsCfg: wsCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if _, ok := allowed["*"]; ok {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// RegisterRoutes mounts the hub endpoint at path.
func (h *WSHandler) RegisterRoutes(r *mux.Router, path string) {
	r.HandleFunc(path, h.HandleWebSocket).Methods(http.MethodGet)
}

func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	l := log.Ctx(r.Context())

	claims, err := h.auth.Authenticate(r)
	if err != nil {
		l.Warn().Err(err).Msg("websocket auth failed")
		response.WriteError(w, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or missing access token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	session := h.hub.NewSession(claims.UserID, claims.Username)
	if err := h.hub.Register(session); err != nil {
		l.Warn().Err(err).Msg("session register failed")
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()))
		conn.Close()
		return
	}

	sl := log.L().With().
		Str(log.FieldSessionID, session.ID).
		Str(log.FieldUserID, claims.UserID).
		Logger()
	ctx := log.WithLogger(context.Background(), sl)
	sl.Info().Msg("viewer connected")

	client := hub.NewClient(h.hub, conn, session, h.wsCfg)
	go client.WritePump()
	go client.ReadPump(func(c *hub.Client, message []byte) {
		h.handleMessage(ctx, c, message)
	})
}

func (h *WSHandler) handleMessage(ctx context.Context, client *hub.Client, message []byte) {
	l := log.Ctx(ctx)

	var msg domain.ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid message format"))
		return
	}

	switch msg.Type {
	case domain.MsgTypeJoin:
		if err := h.hub.Join(client.Session.ID, msg.Group); err != nil {
			h.replyError(client, err)
			return
		}
		client.SendMessage(&domain.GroupMessage{Type: domain.MsgTypeJoined, Group: strings.TrimSpace(msg.Group)})

	case domain.MsgTypeLeave:
		if err := h.hub.Leave(client.Session.ID, msg.Group); err != nil {
			h.replyError(client, err)
			return
		}
		client.SendMessage(&domain.GroupMessage{Type: domain.MsgTypeLeft, Group: strings.TrimSpace(msg.Group)})

	case domain.MsgTypePing:
		client.SendMessage(map[string]string{"type": domain.MsgTypePong})

	case domain.MsgTypeSendClaimUpdate:
		if strings.TrimSpace(msg.Message) == "" {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "message is required"))
			return
		}
		if err := h.hub.BroadcastToAll(ctx, domain.ClaimUpdatedEvent, msg.Message); err != nil {
			l.Warn().Err(err).Msg("claim update broadcast failed")
			h.replyError(client, err)
			return
		}
		audit.Log(ctx, audit.ActionHubClaimUpdate, client.Session.UserID, "claim update sent")

	default:
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Unknown message type"))
	}
}

func (h *WSHandler) replyError(client *hub.Client, err error) {
	code := domain.ErrCodeInternalError
	if errors.Is(err, hub.ErrInvalidGroup) {
		code = domain.ErrCodeBadRequest
	}
	client.SendMessage(domain.NewErrorMessage(code, err.Error()))
}
