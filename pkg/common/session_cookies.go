package common

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matst80/plat-finder/pkg/types"
)

const SessionCookie = "sid"

func generateSessionId() int {
	return int(time.Now().UnixNano() & 0x7fffffff)
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, sessionId int) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    strconv.Itoa(sessionId),
		Domain:   strings.TrimPrefix(r.Host, "."),
		SameSite: http.SameSiteNoneMode,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		MaxAge:   60 * 60 * 24 * 30,
		Path:     "/",
	})
}

// HandleSessionCookie returns the caller's session id, issuing a new cookie
// (and a session event) when none or an unreadable one was sent.
func HandleSessionCookie(trk types.Tracking, w http.ResponseWriter, r *http.Request) int {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if id, err := strconv.Atoi(c.Value); err == nil {
			return id
		}
	}
	sessionId := generateSessionId()
	if trk != nil {
		go trk.TrackSession(sessionId, r)
	}
	setSessionCookie(w, r, sessionId)
	return sessionId
}
