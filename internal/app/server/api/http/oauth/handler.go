// Package oauth signs users in with Google and hands out session tokens.
package oauth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/session"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/user"
)

const (
	GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	stateCookie       = "oauth_state"
	stateTTL          = 10 * time.Minute
)

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Endpoint and UserInfoURL default to Google.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

type Handler struct {
	oauth       *oauth2.Config
	userInfoURL string
	users       user.Servicer
	sessions    session.Servicer
	log         *slog.Logger
}

func NewHandler(cfg Config, users user.Servicer, sessions session.Servicer, log *slog.Logger) *Handler {
	if cfg.Endpoint.AuthURL == "" {
		cfg.Endpoint = endpoints.Google
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = GoogleUserInfoURL
	}
	return &Handler{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     cfg.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: cfg.UserInfoURL,
		users:       users,
		sessions:    sessions,
		log:         log.With("component", "oauth_handler"),
	}
}

func (h *Handler) SetupRoutes(r chi.Router) {
	r.Get("/auth/google/login", h.login)
	r.Get("/auth/google/callback", h.callback)
}

type userInfo struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

type loginResponse struct {
	Token               string `json:"token"`
	UserID              int    `json:"userId"`
	Email               string `json:"email"`
	HasPassword         bool   `json:"hasPassword"`
	OnboardingCompleted bool   `json:"onboardingCompleted"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		h.log.Error("generate oauth state", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   strings.HasPrefix(h.oauth.RedirectURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusFound)
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/auth/google", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	info, err := h.fetchUser(r.Context(), code)
	if err != nil {
		h.log.Error("oauth exchange", "error", err)
		writeError(w, http.StatusBadGateway, "identity provider error")
		return
	}
	if !info.EmailVerified {
		writeError(w, http.StatusForbidden, "email is not verified")
		return
	}

	u, err := h.users.LoginOAuth(r.Context(), info.Subject, info.Email, info.Name)
	if err != nil {
		h.log.Error("oauth login", "error", err)
		writeError(w, http.StatusUnprocessableEntity, "cannot sign in with this account")
		return
	}

	token, err := h.sessions.Create(r.Context(), u.ID)
	if err != nil {
		h.log.Error("create session", "user_id", u.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(loginResponse{
		Token:               token,
		UserID:              u.ID,
		Email:               u.Email,
		HasPassword:         u.HasPassword(),
		OnboardingCompleted: u.OnboardingCompleted,
	})
}

func (h *Handler) fetchUser(ctx context.Context, code string) (userInfo, error) {
	tok, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		return userInfo{}, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.userInfoURL, nil)
	if err != nil {
		return userInfo{}, err
	}
	resp, err := h.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return userInfo{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return userInfo{}, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return userInfo{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Subject == "" || info.Email == "" {
		return userInfo{}, fmt.Errorf("userinfo without subject or email")
	}
	return info, nil
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
