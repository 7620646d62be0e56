package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskflow/client/api/transport"
	"github.com/taskflow/client/pkg/httpcontext"
	"github.com/taskflow/client/repository"
	authUC "github.com/taskflow/client/usecase/auth"
)

// tokenCookie mirrors the session token so the routing guard can decide
// without opening the store. The store stays the source of truth for
// outbound calls.
const tokenCookie = "auth-token"

// Connector lets the handler bring the realtime feed up after sign-in.
type Connector interface {
	Connect(ctx context.Context, token string) error
}

// Refresher triggers the initial cache fill once signed in.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type AuthHandler struct {
	baseHandler
	uc       *authUC.UseCase
	realtime Connector
	tasks    Refresher
}

func NewAuthHandler(uc *authUC.UseCase, realtime Connector, tasks Refresher, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		realtime:    realtime,
		tasks:       tasks,
	}
}

// SignIn handles POST /auth/signin.
func (h *AuthHandler) SignIn(ctx *fasthttp.RequestCtx) {
	var req transport.SignInRequest
	if !h.parseBody(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.uc.SignIn(stdCtx, repository.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.establish(ctx, stdCtx, session.Token)
	h.respondSuccess(ctx, http.StatusOK, session.User)
}

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(ctx *fasthttp.RequestCtx) {
	var req transport.SignUpRequest
	if !h.parseBody(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.uc.SignUp(stdCtx, repository.SignUpInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.establish(ctx, stdCtx, session.Token)
	h.respondSuccess(ctx, http.StatusCreated, session.User)
}

// SignOut handles POST /auth/signout.
func (h *AuthHandler) SignOut(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SignOut(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}

	clearCookie(ctx)
	h.respondSuccess(ctx, http.StatusOK, nil)
}

func (h *AuthHandler) establish(ctx *fasthttp.RequestCtx, stdCtx context.Context, token string) {
	setCookie(ctx, token)

	if h.realtime != nil {
		if err := h.realtime.Connect(stdCtx, token); err != nil {
			h.logger.Warn("realtime connect after sign-in failed", zap.Error(err))
		}
	}
	if h.tasks != nil {
		if err := h.tasks.Refresh(stdCtx); err != nil {
			h.logger.Warn("initial refresh after sign-in failed", zap.Error(err))
		}
	}
}

func setCookie(ctx *fasthttp.RequestCtx, token string) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)
	c.SetKey(tokenCookie)
	c.SetValue(token)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	ctx.Response.Header.SetCookie(c)
}

func clearCookie(ctx *fasthttp.RequestCtx) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)
	c.SetKey(tokenCookie)
	c.SetValue("")
	c.SetPath("/")
	c.SetExpire(time.Unix(0, 0))
	ctx.Response.Header.SetCookie(c)
}
