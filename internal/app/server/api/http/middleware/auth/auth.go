package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/session"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/user"
)

type Auth struct {
	session session.Servicer
	users   user.Servicer
	log     *slog.Logger
}

func New(session session.Servicer, users user.Servicer, log *slog.Logger) *Auth {
	return &Auth{
		session: session,
		users:   users,
		log:     log.With("component", "auth_middleware"),
	}
}

type contextKey string

const (
	sessionKey contextKey = "session"
	tokenKey   contextKey = "token"
)

// Middleware возвращает middleware для Huma с сигнатурой func(ctx Context, next func(Context))
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token, ok := bearer(ctx.Header("Authorization"))
		if !ok {
			deny(ctx, http.StatusUnauthorized, "unauthorized", "Unauthorized")
			return
		}

		// Валидируем токен
		sess, err := a.session.Validate(ctx.Context(), token)
		if err != nil {
			if errors.Is(err, errs.ErrUnauthorized) {
				deny(ctx, http.StatusUnauthorized, "unauthorized", "Unauthorized")
				return
			}
			a.log.Error("validate session", "error", err)
			deny(ctx, http.StatusInternalServerError, "internal", "internal error")
			return
		}

		// lastSeen обновляется не чаще интервала, ошибка не блокирует запрос
		if err := a.users.TouchLastSeen(ctx.Context(), sess.UserID); err != nil {
			a.log.Warn("touch last seen", "user_id", sess.UserID, "error", err)
		}

		next(huma.WithContext(ctx, WithSession(ctx.Context(), sess, token)))
	}
}

// RequireSecondFactor lets the request through only when the secondary
// password was verified with the current token. Must run after Middleware.
func (a *Auth) RequireSecondFactor() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		sess, ok := GetSession(ctx.Context())
		if !ok {
			deny(ctx, http.StatusUnauthorized, "unauthorized", "Unauthorized")
			return
		}
		if sess.SecondFactor {
			next(ctx)
			return
		}

		u, err := a.users.Get(ctx.Context(), sess.UserID)
		if err != nil {
			a.log.Error("load user", "user_id", sess.UserID, "error", err)
			deny(ctx, http.StatusUnauthorized, "unauthorized", "Unauthorized")
			return
		}
		if !u.HasPassword() {
			deny(ctx, http.StatusUnprocessableEntity, user.ErrPasswordNotSet.Code, user.ErrPasswordNotSet.Message)
			return
		}
		deny(ctx, http.StatusUnauthorized, user.ErrSecondFactorRequired.Code, user.ErrSecondFactorRequired.Message)
	}
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func deny(ctx huma.Context, status int, code, msg string) {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.SetStatus(status)
	_ = json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{
		"error": msg,
		"code":  code,
	})
}

func WithSession(ctx context.Context, s session.Session, token string) context.Context {
	ctx = context.WithValue(ctx, sessionKey, s)
	return context.WithValue(ctx, tokenKey, token)
}

// WithUserID is a shortcut for handlers that only need the caller id.
func WithUserID(ctx context.Context, userID int) context.Context {
	return WithSession(ctx, session.Session{UserID: userID}, "")
}

func GetSession(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(session.Session)
	return s, ok
}

func GetUserID(ctx context.Context) (int, bool) {
	s, ok := GetSession(ctx)
	return s.UserID, ok
}

func GetToken(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok && t != ""
}
