package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"kmviz/core/eventloop"
	"kmviz/pkg/kmeans"
)

const streamWriteWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API has no browser sessions/cookies to protect.
	CheckOrigin: func(*http.Request) bool { return true },
}

// stream upgrades to a websocket and pushes one StreamMsg per step until the
// session converges, the step limit is hit or the peer goes away. The pause
// between steps is APIConfig.StepDelay, overridable with ?delay=100ms.
func (h *handler) stream(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.cfg.Table.Snapshot(id); err != nil {
		replyErr(c, err)
		return
	}

	delay := h.cfg.StepDelay
	if q := c.Query("delay"); q != "" {
		d, err := time.ParseDuration(q)
		if err != nil || d < 0 {
			reply(c, http.StatusBadRequest, ErrorResp{Error: "invalid delay: " + q})
			return
		}
		delay = d
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already replied.
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	// The hijacked conn keeps the server deadlines.
	conn.SetReadDeadline(time.Time{})
	// Reading is only done to notice the peer closing.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(msg StreamMsg) error {
		conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		return conn.WriteJSON(msg)
	}

	stepper := eventloop.StepperFunc(func() (kmeans.Snapshot, error) {
		var snap kmeans.Snapshot
		err := h.cfg.Table.Access(id, func(e *kmeans.Engine) error {
			var err error
			snap, err = e.Step()
			return err
		})
		return snap, err
	})
	elCfg := eventloop.EventLoopConfig{
		TimeoutStep: delay,
		MaxSteps:    h.cfg.MaxSteps,
		L:           eventloop.NewZapLogger(h.cfg.L.With(zap.String("session", id))),
	}
	res := eventloop.Run(ctx, elCfg, stepper, func(s kmeans.Snapshot) error {
		resp := SnapshotToResp(id, s)
		return write(StreamMsg{Snapshot: &resp})
	})

	final := StreamMsg{Done: true}
	if res.Err != nil {
		final.Error = res.Err.Error()
	}
	if err := write(final); err == nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(streamWriteWait))
	}
}
