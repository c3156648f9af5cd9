package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stratton-prime/certexam-backend/internal/exam"
	"github.com/stratton-prime/certexam-backend/internal/middleware"
	"github.com/stratton-prime/certexam-backend/internal/response"
	"github.com/stratton-prime/certexam-backend/internal/service"
	ws "github.com/stratton-prime/certexam-backend/internal/websocket"
)

const outboxSize = 256

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler runs one exam session per WebSocket connection.
type WSHandler struct {
	sessionService *service.ExamSessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.ExamSessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ExamStream godoc
// WS /ws/v1/exam/stream?token=...
// Opens a session on connect and relays its events. Client actions drive the
// session. Dropping the connection after the countdown forfeits the attempt.
func (h *WSHandler) ExamStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	examinee := claims.Examinee()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("email", examinee.Email).Logger()

	out := newOutbox(wsLog)
	go out.run(conn)
	defer out.close()

	sess, err := h.sessionService.Open(c.Request.Context(), examinee, out)
	if err != nil {
		_, code := sessionErrorStatus(err)
		if code == response.ErrInternal {
			wsLog.Error().Err(err).Msg("Open session failed")
		}
		out.send(ws.ErrorResponse{Event: ws.EventError, Code: string(code), Error: response.GetMessage(code)})
		out.close()
		_ = ws.WriteClose(conn, string(code))
		return
	}

	policy := h.sessionService.Policy()
	view := sess.Snapshot()
	out.send(ws.IntroResponse{
		Event:            ws.EventIntro,
		SessionID:        sess.ID(),
		Total:            view.Total,
		QuestionSeconds:  policy.QuestionSeconds,
		CountdownSeconds: policy.CountdownSeconds,
		PassThreshold:    policy.PassThreshold,
	})
	wsLog = wsLog.With().Str("session_id", sess.ID()).Logger()
	wsLog.Info().Int("questions", view.Total).Msg("Examinee connected")

	readerDone := make(chan struct{})
	go func() {
		select {
		case <-sess.Done():
			out.close()
			_ = ws.WriteClose(conn, "exam finished")
		case <-readerDone:
		}
	}()

	h.readLoop(conn, sess, out, wsLog)
	close(readerDone)

	h.sessionService.Detach(context.Background(), sess)
	wsLog.Info().Str("state", string(sess.State())).Msg("Examinee disconnected")
}

func (h *WSHandler) readLoop(conn *websocket.Conn, sess *exam.Session, out *outbox, log zerolog.Logger) {
	for {
		var req ws.ActionRequest
		if err := ws.ReadJSON(conn, &req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Unexpected close")
			} else {
				log.Debug().Msg("Connection closed")
			}
			return
		}

		var err error
		switch req.Action {
		case ws.ActionStart:
			err = sess.Start()
		case ws.ActionSubmit:
			err = sess.Submit(req.QID, req.Answer, req.Justification)
		case ws.ActionSkip:
			err = sess.Skip(req.QID)
		case ws.ActionPing:
			out.send(ws.PongResponse{Event: ws.EventPong})
			continue
		default:
			log.Warn().Str("action", string(req.Action)).Msg("Unknown action")
			out.send(ws.ErrorResponse{Event: ws.EventError, Code: string(response.ErrInvalidPayload), Error: "unknown action: " + string(req.Action)})
			continue
		}

		if err != nil {
			_, code := sessionErrorStatus(err)
			log.Debug().Err(err).Str("action", string(req.Action)).Msg("Action rejected")
			out.send(ws.ErrorResponse{Event: ws.EventError, Code: string(code), Error: response.GetMessage(code)})
		}
	}
}

// ─── Outbox ─────────────────────────────────────────────────────────

// outbox serialises all writes to one connection. It is the session's event
// sink, so send never blocks: the session calls it with its mutex held.
type outbox struct {
	frames chan interface{}
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once
	log    zerolog.Logger
}

func newOutbox(log zerolog.Logger) *outbox {
	return &outbox{
		frames: make(chan interface{}, outboxSize),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		log:    log,
	}
}

// Publish implements exam.EventSink.
func (o *outbox) Publish(e exam.Event) {
	if frame := ws.FromSessionEvent(e); frame != nil {
		o.send(frame)
	}
}

func (o *outbox) send(frame interface{}) {
	select {
	case <-o.quit:
		return
	default:
	}
	select {
	case o.frames <- frame:
	default:
		o.log.Warn().Msg("Outbound buffer full, frame dropped")
	}
}

func (o *outbox) run(conn *websocket.Conn) {
	defer close(o.done)
	for {
		select {
		case frame := <-o.frames:
			if err := ws.WriteTyped(conn, frame); err != nil {
				o.log.Debug().Err(err).Msg("Write failed")
				return
			}
		case <-o.quit:
			for {
				select {
				case frame := <-o.frames:
					if err := ws.WriteTyped(conn, frame); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

// close stops the writer after flushing queued frames and waits for it.
func (o *outbox) close() {
	o.once.Do(func() { close(o.quit) })
	<-o.done
}
