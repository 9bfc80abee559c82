// Package host exposes a widget Runtime over HTTP: widgets are created,
// driven and observed through REST calls and a per-widget event stream.
package host

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/widgetkit/errors"
	"github.com/kbukum/widgetkit/event"
	"github.com/kbukum/widgetkit/ident"
	"github.com/kbukum/widgetkit/internal/demo"
	"github.com/kbukum/widgetkit/logger"
	"github.com/kbukum/widgetkit/render"
	"github.com/kbukum/widgetkit/server"
	"github.com/kbukum/widgetkit/sse"
	"github.com/kbukum/widgetkit/state"
	"github.com/kbukum/widgetkit/util"
	"github.com/kbukum/widgetkit/webapi"
	"github.com/kbukum/widgetkit/widget"
)

// EventWidget is the stream frame carrying a widget event.
const EventWidget = "widget"

// Handler serves the widget routes.
type Handler struct {
	rt    *widget.Runtime
	hub   *sse.Hub
	login widget.LoginFunc
	opts  []widget.Option
	log   *logger.Logger
}

// New creates a Handler. login is the callback every widget is built with.
func New(rt *widget.Runtime, hub *sse.Hub, login widget.LoginFunc, opts ...widget.Option) *Handler {
	return &Handler{rt: rt, hub: hub, login: login, opts: opts, log: logger.Get("host")}
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/widgets")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.destroy)
	g.GET("/:id/props", h.props)
	g.GET("/:id/events", h.events)
	g.POST("/:id/show", h.show)
	g.POST("/:id/hide", h.hide)
	g.POST("/:id/close", h.close)
	g.POST("/:id/screen", h.screen)
	g.POST("/:id/terms", h.terms)
	g.POST("/:id/submit", h.submit)
	g.POST("/:id/back", h.back)
	g.POST("/:id/captcha", h.captcha)
	g.POST("/:id/hooks/:name", h.runHook)
	g.GET("/:id/profile", h.profile)
	g.POST("/:id/hash", h.parseHash)
	g.GET("/:id/logout", h.logout)
}

type createResponse struct {
	ID          ident.ID `json:"id"`
	ContainerID string   `json:"containerID"`
}

func (h *Handler) create(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		server.RespondWithError(c, errors.InvalidArgument("body", "must be a JSON object"))
		return
	}
	engine := demo.New(demo.Actions{Submit: h.submitLogin, Navigate: h.navigate})
	w, err := h.rt.NewFromMap(raw, h.login, engine, h.opts...)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.forward(w)

	clientID, _ := raw["clientID"].(string)
	h.log.Info("widget created", logger.Fields(
		logger.FieldInstanceID, w.ID().String(),
		"client_id", util.MaskSecret(clientID, 4),
	))
	server.RespondCreated(c, createResponse{ID: w.ID(), ContainerID: w.ContainerID()})
}

// forward relays the widget's events onto its stream.
func (h *Handler) forward(w *widget.Widget) {
	topic := w.ContainerID()
	for _, name := range []string{event.Show, event.Hide, event.SigninReady, event.SignupReady, event.RenderError} {
		w.On(name, func(args ...any) {
			payload := map[string]any{"name": name}
			if len(args) > 0 {
				if err, ok := args[0].(error); ok {
					payload["error"] = err.Error()
				}
			}
			data, _ := json.Marshal(payload)
			h.hub.Broadcast(topic, sse.Frame{Event: EventWidget, Data: data})
		})
	}
}

func (h *Handler) list(c *gin.Context) {
	server.RespondOK(c, h.rt.IDs())
}

func (h *Handler) widget(c *gin.Context) (*widget.Widget, bool) {
	w, err := h.rt.Get(ident.ID(c.Param("id")))
	if err != nil {
		server.RespondWithError(c, err)
		return nil, false
	}
	return w, true
}

func (h *Handler) get(c *gin.Context) {
	w, ok := h.widget(c)
	if !ok {
		return
	}
	t, err := w.State()
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, t)
}

func (h *Handler) destroy(c *gin.Context) {
	w, ok := h.widget(c)
	if !ok {
		return
	}
	if err := w.Destroy(c.Request.Context()); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) props(c *gin.Context) {
	w, ok := h.widget(c)
	if !ok {
		return
	}
	props, mounted := w.Props()
	if !mounted {
		server.RespondWithError(c, errors.NotFound("props", w.ContainerID()))
		return
	}
	server.RespondOK(c, props)
}

func (h *Handler) events(c *gin.Context) {
	w, ok := h.widget(c)
	if !ok {
		return
	}
	var initial []sse.Frame
	if props, mounted := w.Props(); mounted {
		if data, err := json.Marshal(props); err == nil {
			initial = append(initial, sse.Frame{Event: sse.EventMount, Data: data})
		}
	}
	clientID := c.GetString("request_id")
	if clientID == "" {
		clientID = w.ID().String()
	}
	sse.ServeSSE(h.hub, c.Writer, c.Request, clientID, w.ContainerID(), initial...)
}

func (h *Handler) show(c *gin.Context)  { h.act(c, (*widget.Widget).Show) }
func (h *Handler) hide(c *gin.Context)  { h.act(c, (*widget.Widget).Hide) }
func (h *Handler) close(c *gin.Context) { h.act(c, (*widget.Widget).Close) }

func (h *Handler) act(c *gin.Context, op func(*widget.Widget, context.Context) error) {
	w, ok := h.widget(c)
	if !ok {
		return
	}
	if err := op(w, c.Request.Context()); err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.respondState(c, w)
}

func (h *Handler) respondState(c *gin.Context, w *widget.Widget) {
	t, err := w.State()
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, t)
}

type screenRequest struct {
	Screen string `json:"screen" binding:"required"`
}

func (h *Handler) screen(c *gin.Context) {
	w, ok := h.widget(c)
	if !ok {
		return
	}
	var req screenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.InvalidArgument("screen", err.Error()))
		return
	}
	if err := h.navigate(c.Request.Context(), w.ID(), req.Screen); err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.respondState(c, w)
}

type termsRequest struct {
	Accepted bool `json:"accepted"`
}

func (h *Handler) terms(c *gin.Context) {
	w, ok := h.widget(c)
	if !ok {
		return
	}
	var req termsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.InvalidArgument("accepted", err.Error()))
		return
	}
	err := w.Update(c.Request.Context(), func(t state.Tree) state.Tree {
		t.TermsAccepted = req.Accepted
		return t
	})
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.respondState(c, w)
}

type argsRequest struct {
	Args []any `json:"args"`
}

func bindArgs(c *gin.Context) ([]any, error) {
	if c.Request.ContentLength == 0 {
		return nil, nil
	}
	var req argsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errors.InvalidArgument("args", err.Error())
	}
	return req.Args, nil
}

// submit and back invoke the bound handlers of the mounted props, the
// same way a rendered button would.
func (h *Handler) submit(c *gin.Context) {
	h.invoke(c, func(p render.Props) render.BoundHandler { return p.SubmitHandler })
}

func (h *Handler) back(c *gin.Context) {
	h.invoke(c, func(p render.Props) render.BoundHandler { return p.BackHandler })
}

func (h *Handler) invoke(c *gin.Context, pick func(render.Props) render.BoundHandler) {
	w, ok := h.widget(c)
	if !ok {
		return
	}
	args, err := bindArgs(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	props, mounted := w.Props()
	if !mounted {
		server.RespondWithError(c, errors.InvalidArgument("widget", "not on screen"))
		return
	}
	fn := pick(props)
	if fn == nil {
		server.RespondWithError(c, errors.InvalidArgument("action", "not available on screen "+props.ScreenName))
		return
	}
	if err := fn(context.WithoutCancel(c.Request.Context()), args...); err != nil {
		server.RespondWithError(c, err)
		return
	}
	t, err := w.State()
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondAccepted(c, t)
}

func (h *Handler) captcha(c *gin.Context) {
	w, ok := h.widget(c)
	if !ok {
		return
	}
	props, mounted := w.Props()
	if !mounted || props.Captcha.Reload == nil {
		server.RespondWithError(c, errors.InvalidArgument("widget", "not on screen"))
		return
	}
	if err := props.Captcha.Reload(c.Request.Context()); err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.respondState(c, w)
}

func (h *Handler) runHook(c *gin.Context) {
	w, ok := h.widget(c)
	if !ok {
		return
	}
	args, err := bindArgs(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	result, err := w.RunHook(c.Request.Context(), c.Param("name"), args...)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, result)
}

func (h *Handler) profile(c *gin.Context) {
	w, ok := h.widget(c)
	if !ok {
		return
	}
	const prefix = "Bearer "
	auth := c.GetHeader("Authorization")
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		server.RespondWithError(c, errors.InvalidArgument("Authorization", "bearer token required"))
		return
	}
	token := auth[len(prefix):]
	if c.Query("preview") == "true" {
		if _, err := w.LoadProfile(context.WithoutCancel(c.Request.Context()), token); err != nil {
			server.RespondWithError(c, err)
			return
		}
		server.RespondAccepted(c, nil)
		return
	}
	profile, err := w.GetProfile(c.Request.Context(), token)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, profile)
}

type hashRequest struct {
	Hash string `json:"hash" binding:"required"`
}

func (h *Handler) parseHash(c *gin.Context) {
	w, ok := h.widget(c)
	if !ok {
		return
	}
	var req hashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.InvalidArgument("hash", err.Error()))
		return
	}
	result, err := w.ParseHash(c.Request.Context(), req.Hash)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, result)
}

func (h *Handler) logout(c *gin.Context) {
	w, ok := h.widget(c)
	if !ok {
		return
	}
	federated, _ := strconv.ParseBool(c.Query("federated"))
	server.RespondOK(c, gin.H{"url": w.Logout(webapi.LogoutParams{ReturnTo: c.Query("returnTo"), Federated: federated})})
}

func (h *Handler) navigate(ctx context.Context, id ident.ID, screen string) error {
	w, err := h.rt.Get(id)
	if err != nil {
		return err
	}
	return w.Update(ctx, func(t state.Tree) state.Tree {
		t.UI.Screen = screen
		t.GlobalError = ""
		t.GlobalSuccess = ""
		return t
	})
}

// submitLogin runs the login callback in the background. The widget shows
// submitting until the callback returns.
func (h *Handler) submitLogin(ctx context.Context, id ident.ID, args ...any) error {
	w, err := h.rt.Get(id)
	if err != nil {
		return err
	}
	_, err = w.Submit(ctx, func(ctx context.Context) (state.Transform, error) {
		if err := w.Login(ctx, args...); err != nil {
			return nil, err
		}
		return func(t state.Tree) state.Tree { return t.WithGlobalSuccess("logged in") }, nil
	})
	return err
}
