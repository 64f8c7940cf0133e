package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vmihailenco/msgpack/v5"

	"kmviz/core/session"
	"kmviz/pkg/kmeans"
)

const mimeMsgpack = "application/x-msgpack"

type handler struct {
	cfg APIConfig
}

type route struct {
	method string
	path   string
	f      gin.HandlerFunc
}

func (h *handler) setRoutes(router gin.IRouter) {
	routes := []route{
		// Shared data set for all sessions.
		{http.MethodGet, "/get_data", h.getData},
		{http.MethodGet, "/new_data", h.newData},

		{http.MethodGet, "/api/sessions", h.listSessions},
		{http.MethodPost, "/api/sessions", h.createSession},
		{http.MethodGet, "/api/sessions/:id", h.getSession},
		{http.MethodDelete, "/api/sessions/:id", h.deleteSession},
		{http.MethodPost, "/api/sessions/:id/reset", h.resetSession},
		{http.MethodPost, "/api/sessions/:id/data", h.setData},
		{http.MethodPost, "/api/sessions/:id/centroids", h.addCentroid},
		{http.MethodPost, "/api/sessions/:id/step", h.step},
		{http.MethodPost, "/api/sessions/:id/converge", h.converge},
		{http.MethodGet, "/api/sessions/:id/stream", h.stream},
	}
	for _, r := range routes {
		router.Handle(r.method, r.path, r.f)
	}
}

// reply writes v as msgpack if the client asks for it, JSON otherwise.
func reply(c *gin.Context, code int, v interface{}) {
	if strings.Contains(c.GetHeader("Accept"), mimeMsgpack) {
		b, err := msgpack.Marshal(v)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResp{Error: err.Error()})
			return
		}
		c.Data(code, mimeMsgpack, b)
		return
	}
	c.JSON(code, v)
}

// statusOf maps errors to http status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, kmeans.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, kmeans.ErrPrecondition):
		return http.StatusConflict
	case errors.Is(err, kmeans.ErrStepLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func replyErr(c *gin.Context, err error) {
	reply(c, statusOf(err), ErrorResp{Error: err.Error()})
}

// tryUnpackRequest will try to unmarshal the request body into <target>. An
// empty body leaves target alone. If unmarshalling fails, then a bad request
// response is sent to the requester and false is returned.
func tryUnpackRequest(c *gin.Context, target interface{}) bool {
	err := c.ShouldBindJSON(target)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	reply(c, http.StatusBadRequest, ErrorResp{Error: "bad request body: " + err.Error()})
	return false
}

// access runs f on the session in the path and replies with the snapshot
// afterwards (or the error).
func (h *handler) access(c *gin.Context, code int, f func(*kmeans.Engine) error) {
	id := c.Param("id")
	var snap kmeans.Snapshot
	err := h.cfg.Table.Access(id, func(e *kmeans.Engine) error {
		err := f(e)
		snap = e.Snapshot()
		return err
	})
	if err != nil {
		resp := ErrorResp{Error: err.Error()}
		if errors.Is(err, kmeans.ErrStepLimit) {
			s := SnapshotToResp(id, snap)
			resp.Snapshot = &s
		}
		reply(c, statusOf(err), resp)
		return
	}
	reply(c, code, SnapshotToResp(id, snap))
}

func (h *handler) getData(c *gin.Context) {
	reply(c, http.StatusOK, DataResp{Data: PointsToPs(h.cfg.Source.Current())})
}

func (h *handler) newData(c *gin.Context) {
	reply(c, http.StatusOK, DataResp{Data: PointsToPs(h.cfg.Source.Regenerate())})
}

func (h *handler) listSessions(c *gin.Context) {
	reply(c, http.StatusOK, gin.H{"ids": h.cfg.Table.IDs()})
}

func (h *handler) createSession(c *gin.Context) {
	var req CreateReq
	if !tryUnpackRequest(c, &req) {
		return
	}

	kcfg := h.cfg.Defaults
	if req.K != 0 {
		kcfg.K = req.K
	}
	if req.Strategy != "" {
		s, err := kmeans.ParseStrategy(req.Strategy)
		if err != nil {
			replyErr(c, err)
			return
		}
		kcfg.Strategy = s
	}
	ds := PsToDataSet(req.Data)
	if ds == nil {
		ds = h.cfg.Source.Current()
	}

	id, err := h.cfg.Table.Create(ds, kcfg)
	if err != nil {
		replyErr(c, err)
		return
	}
	snap, err := h.cfg.Table.Snapshot(id)
	if err != nil {
		replyErr(c, err)
		return
	}
	reply(c, http.StatusCreated, SnapshotToResp(id, snap))
}

func (h *handler) getSession(c *gin.Context) {
	h.access(c, http.StatusOK, func(*kmeans.Engine) error { return nil })
}

func (h *handler) deleteSession(c *gin.Context) {
	if err := h.cfg.Table.Delete(c.Param("id")); err != nil {
		replyErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) resetSession(c *gin.Context) {
	var req ResetReq
	if !tryUnpackRequest(c, &req) {
		return
	}
	h.access(c, http.StatusOK, func(e *kmeans.Engine) error {
		kcfg := e.Config()
		if req.K != nil {
			kcfg.K = *req.K
		}
		if req.Strategy != nil {
			s, err := kmeans.ParseStrategy(*req.Strategy)
			if err != nil {
				return err
			}
			kcfg.Strategy = s
		}
		return e.Reset(kcfg)
	})
}

func (h *handler) setData(c *gin.Context) {
	var req DataReq
	if !tryUnpackRequest(c, &req) {
		return
	}
	h.access(c, http.StatusOK, func(e *kmeans.Engine) error {
		ds := PsToDataSet(req.Data)
		if ds == nil {
			ds = h.cfg.Source.Regenerate()
		}
		return e.SetData(ds)
	})
}

func (h *handler) addCentroid(c *gin.Context) {
	var req CentroidReq
	if err := c.ShouldBindJSON(&req); err != nil {
		reply(c, http.StatusBadRequest, ErrorResp{Error: "bad request body: " + err.Error()})
		return
	}
	h.access(c, http.StatusOK, func(e *kmeans.Engine) error {
		return e.AddManualCentroid(req.toPoint())
	})
}

func (h *handler) step(c *gin.Context) {
	h.access(c, http.StatusOK, func(e *kmeans.Engine) error {
		_, err := e.Step()
		return err
	})
}

func (h *handler) converge(c *gin.Context) {
	h.access(c, http.StatusOK, func(e *kmeans.Engine) error {
		_, err := e.RunToConvergence(c.Request.Context(), nil)
		return err
	})
}
