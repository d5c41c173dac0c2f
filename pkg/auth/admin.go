package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/matst80/plat-finder/pkg/common/jsoncompat"
)

const (
	tokenCookieName = "plat-admin"
	stateCookieName = "plat-oauth-state"
	RoleAdmin       = "admin"
	RoleApi         = "api"
	RoleViewer      = "viewer"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	AuthCallback(w http.ResponseWriter, r *http.Request)
	User(w http.ResponseWriter, r *http.Request)
	Middleware(next http.HandlerFunc) http.HandlerFunc
}

type ContextValue string

var ContextRole = ContextValue("role")

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(ContextRole).(string)
	return role
}

type MockAuth struct{}

func (m *MockAuth) Login(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:  tokenCookieName,
		Value: "mock-token",
	})
	w.WriteHeader(http.StatusOK)
}

func (m *MockAuth) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:   tokenCookieName,
		Value:  "",
		MaxAge: -1,
	})
	w.WriteHeader(http.StatusOK)
}

func (m *MockAuth) AuthCallback(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

func (m *MockAuth) User(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"username":"mock-user","name":"Mock User","role":"admin"}`)); err != nil {
		log.Printf("error sending user response: %v", err)
	}
}

func (m *MockAuth) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ContextRole, RoleAdmin)))
	}
}

type GoogleConfig struct {
	ClientId     string
	ClientSecret string
	CallbackUrl  string
	TokenHash    string
	ApiKey       string
	AdminEmails  []string
	RedirectTo   string
}

func GoogleConfigFromEnv() GoogleConfig {
	admins := make([]string, 0)
	for _, e := range strings.Split(os.Getenv("PLAT_ADMIN_EMAILS"), ",") {
		if e = strings.TrimSpace(strings.ToLower(e)); e != "" {
			admins = append(admins, e)
		}
	}
	return GoogleConfig{
		ClientId:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		CallbackUrl:  os.Getenv("CALLBACK_URL"),
		TokenHash:    os.Getenv("PLAT_TOKEN_HASH"),
		ApiKey:       os.Getenv("PLAT_API_KEY"),
		AdminEmails:  admins,
		RedirectTo:   "/",
	}
}

// GoogleAuth logs admins in with Google and keeps them in a signed cookie.
// Requests carrying the api key in the Authorization header skip the cookie.
type GoogleAuth struct {
	serverKey    []byte
	serverApiKey string
	admins       []string
	redirectTo   string
	authConfig   *oauth2.Config
}

func NewGoogleAuth(cfg GoogleConfig) (*GoogleAuth, error) {
	if cfg.ClientId == "" || cfg.ClientSecret == "" || cfg.CallbackUrl == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET or CALLBACK_URL environment variable not set")
	}
	if cfg.TokenHash == "" {
		return nil, fmt.Errorf("PLAT_TOKEN_HASH environment variable not set")
	}
	if cfg.ApiKey == "" {
		return nil, fmt.Errorf("PLAT_API_KEY environment variable not set")
	}
	redirectTo := cfg.RedirectTo
	if redirectTo == "" {
		redirectTo = "/"
	}
	return &GoogleAuth{
		serverKey:    []byte(cfg.TokenHash),
		serverApiKey: cfg.ApiKey,
		admins:       cfg.AdminEmails,
		redirectTo:   redirectTo,
		authConfig: &oauth2.Config{
			ClientID:     cfg.ClientId,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackUrl,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}, nil
}

func generateState() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(b)
}

func (a *GoogleAuth) roleFor(email string) string {
	if slices.Contains(a.admins, strings.ToLower(email)) {
		return RoleAdmin
	}
	return RoleViewer
}

func (a *GoogleAuth) createToken(username, name, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{
			"username": username,
			"name":     name,
			"role":     role,
			"exp":      time.Now().Add(time.Hour * 24).Unix(),
		})
	return token.SignedString(a.serverKey)
}

func (a *GoogleAuth) ParseJwt(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.serverKey, nil
	})
}

func (a *GoogleAuth) claims(r *http.Request) (jwt.MapClaims, error) {
	cookie, err := r.Cookie(tokenCookieName)
	if err != nil || cookie.Value == "" {
		return nil, http.ErrNoCookie
	}
	token, err := a.ParseJwt(cookie.Value)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (a *GoogleAuth) Login(w http.ResponseWriter, r *http.Request) {
	state := generateState()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	url := a.authConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (a *GoogleAuth) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:   tokenCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	w.WriteHeader(http.StatusOK)
}

// Middleware only lets admins and api key holders through.
func (a *GoogleAuth) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := RoleApi
		if r.Header.Get("Authorization") != a.serverApiKey {
			claims, err := a.claims(r)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			role, _ = claims["role"].(string)
			if role != RoleAdmin {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
		}
		ctx := context.WithValue(r.Context(), ContextRole, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

type UserData struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Id            string `json:"id"`
	Picture       string `json:"picture"`
}

func (a *GoogleAuth) getUserData(ctx context.Context, token *oauth2.Token) (*UserData, error) {
	resp, err := a.authConfig.Client(ctx, token).Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %d", resp.StatusCode)
	}
	var userData UserData
	if err = jsoncompat.Decode(resp.Body, &userData); err != nil {
		return nil, err
	}
	return &userData, nil
}

func (a *GoogleAuth) AuthCallback(w http.ResponseWriter, r *http.Request) {
	state, err := r.Cookie(stateCookieName)
	if err != nil || state.Value == "" || state.Value != r.FormValue("state") {
		http.Error(w, "invalid oauth state", http.StatusBadRequest)
		return
	}
	token, err := a.authConfig.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	userData, err := a.getUserData(r.Context(), token)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	role := a.roleFor(userData.Email)
	if !userData.VerifiedEmail {
		role = RoleViewer
	}
	ownToken, err := a.createToken(userData.Email, userData.Name, role)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Printf("Admin login %s as %s", userData.Email, role)

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    ownToken,
		Path:     "/",
		Expires:  time.Now().Add(time.Hour * 24),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, a.redirectTo, http.StatusTemporaryRedirect)
}

func (a *GoogleAuth) User(w http.ResponseWriter, r *http.Request) {
	claims, err := a.claims(r)
	if errors.Is(err, http.ErrNoCookie) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = jsoncompat.Encode(w, claims); err != nil {
		log.Printf("error sending user response: %v", err)
	}
}
