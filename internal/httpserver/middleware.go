package httpserver

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"luxe-storefront/internal/service/identity"
	"luxe-storefront/internal/session"
)

const (
	sessionCookie = "luxe_session"
	sessionHeader = "X-Session-ID"
	adminHeader   = "X-Admin-Key"
	sessionCtxKey = "session"
)

// requestLogger records one line per request once the handler chain is done.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		evt := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			evt = logger.Error()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("session", c.GetString(sessionCtxKey+".id")).
			Msg("request completed")
	}
}

// sessionMiddleware attaches the visitor's session, issuing a new id when the
// request carries none or one that is not a UUID. An unknown session, or an
// anonymous one that now presents a bearer token, is resolved against it.
func sessionMiddleware(sessions *session.Manager, ids identityService, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := sessionID(c)
		if id == "" {
			id = uuid.NewString()
		}
		sess, err := sessions.Start(c.Request.Context(), id)
		if err != nil {
			logger.Error().Err(err).Str("session", id).Msg("start session")
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("internal error"))
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
		c.Header(sessionHeader, id)
		c.Set(sessionCtxKey, sess)
		c.Set(sessionCtxKey+".id", id)

		switch sess.State() {
		case session.StateUnknown:
			resolve(c, sessions, ids, sess)
		case session.StateAnonymous:
			if bearerToken(c) != "" {
				resolve(c, sessions, ids, sess)
			}
		}
		c.Next()
	}
}

func resolve(c *gin.Context, sessions *session.Manager, ids identityService, sess *session.Session) {
	token := bearerToken(c)
	if token == "" {
		sess.MarkAnonymous()
		return
	}
	p, err := ids.Lookup(c.Request.Context(), token)
	switch {
	case err == nil:
		// Authenticate degrades the session itself on failure.
		_ = sessions.Authenticate(c.Request.Context(), sess, *p)
	case errors.Is(err, identity.ErrInvalidToken):
		sess.MarkAnonymous()
	default:
		sess.Fail(err)
	}
}

// guardMiddleware lets only authenticated sessions through. Anonymous
// visitors are told where to sign in and the path is remembered for later.
func guardMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		path := c.Request.URL.Path
		d := sess.Navigate(path)
		switch d.Action {
		case session.ActionRender:
			c.Next()
		case session.ActionRedirect:
			logger.Debug().Str("session", sess.ID).Str("path", path).Msg("redirecting to login")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":  "sign in required",
				"redirect": d.Location + "?next=" + url.QueryEscape(path),
			})
		default:
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorBody("session is still resolving"))
		}
	}
}

func adminMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		given := c.GetHeader(adminHeader)
		if apiKey == "" || subtle.ConstantTimeCompare([]byte(given), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody("forbidden"))
			return
		}
		c.Next()
	}
}

// sessionID returns the caller's session id in canonical form, or "" when
// none was sent or it does not parse as a UUID.
func sessionID(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(sessionHeader))
	if id == "" {
		if v, err := c.Cookie(sessionCookie); err == nil {
			id = strings.TrimSpace(v)
		}
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return ""
	}
	return u.String()
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func currentSession(c *gin.Context) *session.Session {
	v, _ := c.Get(sessionCtxKey)
	sess, _ := v.(*session.Session)
	return sess
}
