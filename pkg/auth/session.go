package auth

import (
	"context"
	"log"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

const sessionCookieName = "__session"

// SessionChecker answers whether a request carries a usable app session.
type SessionChecker interface {
	HasSession(ctx context.Context, r *http.Request) bool
}

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseSessions verifies Firebase id tokens sent by the app, either as a
// bearer token or in the __session cookie. Only verified emails count.
type FirebaseSessions struct {
	client tokenVerifier
}

func NewFirebaseSessions(ctx context.Context, credentialsFile string) (*FirebaseSessions, error) {
	var app *firebase.App
	var err error
	if credentialsFile != "" {
		app, err = firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	} else {
		app, err = firebase.NewApp(ctx, nil)
	}
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &FirebaseSessions{client: client}, nil
}

func idToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

func (f *FirebaseSessions) HasSession(ctx context.Context, r *http.Request) bool {
	raw := idToken(r)
	if raw == "" {
		return false
	}
	token, err := f.client.VerifyIDToken(ctx, raw)
	if err != nil {
		log.Printf("Failed to verify id token: %v", err)
		return false
	}
	verified, _ := token.Claims["email_verified"].(bool)
	return verified
}

// NoSessions is used when no auth provider is configured.
type NoSessions struct{}

func (NoSessions) HasSession(ctx context.Context, r *http.Request) bool {
	return false
}
