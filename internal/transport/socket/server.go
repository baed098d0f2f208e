package socket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	socketio "github.com/googollee/go-socket.io"
	"go.uber.org/zap"

	authsvc "github.com/ivankudzin/matrimony/internal/services/auth"
	"github.com/ivankudzin/matrimony/internal/services/realtime"
)

const (
	namespace = "/"

	eventJoinRoom    = "join-room"
	eventSendMessage = "send-message"
	eventTyping      = "typing"

	tokenCheckTimeout = 3 * time.Second
)

type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, accessToken string) (authsvc.AccessClaims, error)
}

// session is the part of socketio.Conn the relay handlers touch.
type session interface {
	realtime.Conn
	URL() url.URL
	Context() interface{}
	SetContext(v interface{})
}

// connState is kept in the socket context. tokenUserID is zero for
// connections opened without a token; those can never join.
type connState struct {
	tokenUserID int64
}

// Server binds socket.io connections to users in the hub and relays client
// events between them. The hub only delivers to users with a live connection.
type Server struct {
	io     *socketio.Server
	hub    *realtime.Hub
	tokens TokenValidator
	logger *zap.Logger
}

func NewServer(hub *realtime.Hub, tokens TokenValidator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		io:     socketio.NewServer(nil),
		hub:    hub,
		tokens: tokens,
		logger: logger,
	}

	s.io.OnConnect(namespace, func(c socketio.Conn) error {
		return s.connect(c)
	})
	s.io.OnEvent(namespace, eventJoinRoom, func(c socketio.Conn, raw interface{}) {
		s.join(c, raw)
	})
	s.io.OnEvent(namespace, eventSendMessage, func(c socketio.Conn, data map[string]interface{}) {
		s.relay(c, realtime.EventReceiveMessage, data)
	})
	s.io.OnEvent(namespace, eventTyping, func(c socketio.Conn, data map[string]interface{}) {
		s.relay(c, realtime.EventUserTyping, data)
	})
	s.io.OnError(namespace, func(c socketio.Conn, err error) {
		if c != nil {
			s.logger.Debug("socket error", zap.String("conn_id", c.ID()), zap.Error(err))
			return
		}
		s.logger.Debug("socket error", zap.Error(err))
	})
	s.io.OnDisconnect(namespace, func(c socketio.Conn, reason string) {
		s.disconnect(c, reason)
	})

	return s
}

// Run serves the engine.io loop until Close.
func (s *Server) Run() error {
	return s.io.Serve()
}

func (s *Server) Close() error {
	return s.io.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHTTP(w, r)
}

// connect accepts connections without a token, but only a valid token in the
// handshake query pins a user the connection may join as.
func (s *Server) connect(c session) error {
	state := connState{}
	u := c.URL()
	token := strings.TrimSpace(u.Query().Get("token"))
	if token != "" && s.tokens != nil {
		ctx, cancel := context.WithTimeout(context.Background(), tokenCheckTimeout)
		defer cancel()

		claims, err := s.tokens.ValidateAccessToken(ctx, token)
		if err != nil {
			s.logger.Debug("socket token rejected", zap.String("conn_id", c.ID()), zap.Error(err))
			return fmt.Errorf("invalid access token")
		}
		state.tokenUserID = claims.UserID
	}
	c.SetContext(state)
	return nil
}

func (s *Server) join(c session, raw interface{}) {
	userID, ok := parseUserID(raw)
	if !ok {
		c.Emit("error", "invalid user id")
		return
	}
	state, _ := c.Context().(connState)
	if state.tokenUserID == 0 {
		s.logger.Warn("socket join without session", zap.String("conn_id", c.ID()), zap.Int64("requested_user_id", userID))
		c.Emit("error", "access token required")
		return
	}
	if state.tokenUserID != userID {
		s.logger.Warn("socket join rejected",
			zap.String("conn_id", c.ID()),
			zap.Int64("token_user_id", state.tokenUserID),
			zap.Int64("requested_user_id", userID),
		)
		c.Emit("error", "user id does not match token")
		return
	}

	s.hub.Join(c, userID)
	s.logger.Debug("socket joined", zap.String("conn_id", c.ID()), zap.Int64("user_id", userID))
}

// relay forwards a client event to the recipient named in the payload,
// stamped with the sender the connection is bound to.
func (s *Server) relay(c session, event string, data map[string]interface{}) {
	senderID, ok := s.hub.UserOf(c.ID())
	if !ok {
		c.Emit("error", "join a room first")
		return
	}
	recipientID, ok := recipientOf(data)
	if !ok {
		c.Emit("error", "recipient_id is required")
		return
	}

	out := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["sender_id"] = senderID

	delivered := s.hub.Publish(recipientID, event, out)
	s.logger.Debug("socket relay",
		zap.String("event", event),
		zap.Int64("sender_id", senderID),
		zap.Int64("recipient_id", recipientID),
		zap.Int("connections", delivered),
	)
}

func (s *Server) disconnect(c session, reason string) {
	if c == nil {
		return
	}
	s.hub.Leave(c)
	s.logger.Debug("socket disconnected", zap.String("conn_id", c.ID()), zap.String("reason", reason))
}

func recipientOf(data map[string]interface{}) (int64, bool) {
	for _, key := range []string{"recipient_id", "recipientId"} {
		if raw, ok := data[key]; ok {
			return parseUserID(raw)
		}
	}
	return 0, false
}

// parseUserID accepts the JSON number or numeric string clients send.
func parseUserID(raw interface{}) (int64, bool) {
	var id int64
	switch v := raw.(type) {
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		id = int64(v)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		id = parsed
	case map[string]interface{}:
		for _, key := range []string{"user_id", "userId"} {
			if inner, ok := v[key]; ok {
				return parseUserID(inner)
			}
		}
		return 0, false
	default:
		return 0, false
	}
	if id <= 0 {
		return 0, false
	}
	return id, true
}
