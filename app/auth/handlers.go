package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/rivalmap/rivalmap/app/cfg"
)

const stateCookie = "oauth_state"

// Handler implements the OAuth login flow against the configured provider
type Handler struct {
	oauth       *oauth2.Config
	userInfoURL string
}

func NewHandler() *Handler {
	c := cfg.Get()

	return &Handler{
		oauth: &oauth2.Config{
			ClientID:     c.OAuthClientID,
			ClientSecret: c.OAuthClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  c.OAuthAuthURL,
				TokenURL: c.OAuthTokenURL,
			},
			RedirectURL: c.BaseUrl + "/auth/callback",
		},
		userInfoURL: c.OAuthUserInfoURL,
	}
}

// Login redirects to the provider's authorization endpoint with a
// single-use state nonce.
func (h *Handler) Login(c *gin.Context) {
	state := uuid.NewString()
	c.SetCookie(stateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state))
}

// Callback exchanges the authorization code, fetches the user profile and
// sets the session cookie.
func (h *Handler) Callback(c *gin.Context) {
	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		c.String(http.StatusBadRequest, "invalid state")
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.String(http.StatusBadRequest, "missing code")
		return
	}

	token, err := h.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		slog.Error("OAuth code exchange failed", "error", err)
		c.String(http.StatusBadGateway, "login failed")
		return
	}

	username, avatar, err := h.fetchUserInfo(c, token)
	if err != nil {
		slog.Error("Failed to fetch user info", "error", err)
		c.String(http.StatusBadGateway, "login failed")
		return
	}

	session, err := IssueSession(cfg.Get().SessionSecret, username, avatar)
	if err != nil {
		slog.Error("Failed to issue session", "error", err)
		c.String(http.StatusInternalServerError, "login failed")
		return
	}

	c.SetCookie(SessionCookie, session, int(sessionTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// Logout clears the session cookie
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) fetchUserInfo(c *gin.Context, token *oauth2.Token) (string, string, error) {
	client := h.oauth.Client(c.Request.Context(), token)

	resp, err := client.Get(h.userInfoURL)
	if err != nil {
		return "", "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var info struct {
		Username        string `json:"username"`
		ProfileImageURL string `json:"profile_image_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", "", fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.Username == "" {
		return "", "", fmt.Errorf("user info has no username")
	}

	return info.Username, info.ProfileImageURL, nil
}
