package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatup/chatup-server/internal/core"
)

// WSHandler is the push-channel gateway. It accepts one long-lived
// connection per client, binds it to the user id claimed in the URL
// (identity is asserted here, not verified), and pumps notification
// tokens to the client until the transport goes away.
type WSHandler struct {
	presence *core.Presence
	log      *zerolog.Logger
}

// NewWSHandler builds a new push-channel handler.
func NewWSHandler(presence *core.Presence, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{presence: presence, log: logger}
}

// Handle upgrades the connection and runs it.
// GET /ws/:user_id
func (h *WSHandler) Handle(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || userID == core.GeneralUserID {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	sock, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer sock.Close(websocket.StatusInternalError, "internal error")

	conn := h.presence.Connect(userID)
	// Every exit path drops presence, including a close provoked by a kick
	// notification; Disconnect is keyed by the handle so a replaced
	// connection's teardown cannot evict its replacement.
	defer h.presence.Disconnect(conn)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, sock)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, sock, conn)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Int64("user_id", userID).Msg("ws connection closed with error")
		}
	}

	sock.Close(status, reason)
}

// readLoop drains inbound frames to keep the transport alive. The push
// channel is server-to-client only; whatever the client sends is discarded.
func (h *WSHandler) readLoop(ctx context.Context, sock *websocket.Conn) error {
	for {
		if _, _, err := sock.Read(ctx); err != nil {
			return err
		}
	}
}

// writeLoop forwards queued notifications as bare text tokens.
func (h *WSHandler) writeLoop(ctx context.Context, sock *websocket.Conn, conn *core.Conn) error {
	for {
		select {
		case event := <-conn.Events:
			if err := sock.Write(ctx, websocket.MessageText, []byte(event.Token())); err != nil {
				h.log.Warn().Err(err).Int64("user_id", conn.UserID).Stringer("event", event).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
