package echoapi

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tourney/core"
	"github.com/trezcool/tourney/core/user"
)

const (
	sessionCookieName = "tourney_session"
	contextSessionKey = "session"
)

var errInvalidSession = errors.New("invalid session")

// Session represents the claims of the session cookie, a signed JWT.
type Session struct {
	jwt.StandardClaims
	Username string `json:"username"`
}

type sessionManager struct {
	key    []byte
	issuer string
	maxAge time.Duration
}

func newSessionManager(conf *core.Config) *sessionManager {
	return &sessionManager{
		key:    []byte(conf.SecretKey),
		issuer: conf.AppName,
		maxAge: conf.Server.SessionMaxAge,
	}
}

// token signs a new session for usr.
func (sm *sessionManager) token(usr user.User) (string, error) {
	now := time.Now()
	sess := &Session{
		StandardClaims: jwt.StandardClaims{
			Issuer:    sm.issuer,
			Subject:   usr.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(sm.maxAge).Unix(),
		},
		Username: usr.Username,
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sess).SignedString(sm.key)
	return ss, errors.Wrap(err, "signing session")
}

func (sm *sessionManager) parse(token string) (*Session, error) {
	sess := new(Session)
	tkn, err := jwt.ParseWithClaims(token, sess, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errInvalidSession
		}
		return sm.key, nil
	})
	if err != nil || !tkn.Valid || sess.Subject == "" {
		return nil, errInvalidSession
	}
	return sess, nil
}

// login starts a session for usr.
func (sm *sessionManager) login(ctx echo.Context, usr user.User) error {
	token, err := sm.token(usr)
	if err != nil {
		return err
	}
	ctx.SetCookie(sm.cookie(ctx, token, sm.maxAge))
	return nil
}

func (sm *sessionManager) logout(ctx echo.Context) {
	ctx.SetCookie(sm.cookie(ctx, "", -1))
}

func (sm *sessionManager) cookie(ctx echo.Context, value string, maxAge time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isHTTPS(ctx.Request()),
	}
	if maxAge < 0 {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	} else {
		c.MaxAge = int(maxAge.Seconds())
		c.Expires = time.Now().Add(maxAge)
	}
	return c
}

// middleware puts the request's Session, if valid, in the context.
func (sm *sessionManager) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if c, err := ctx.Cookie(sessionCookieName); err == nil && c.Value != "" {
				if sess, err := sm.parse(c.Value); err == nil {
					ctx.Set(contextSessionKey, sess)
				}
			}
			return next(ctx)
		}
	}
}

func contextSession(ctx echo.Context) (*Session, bool) {
	sess, ok := ctx.Get(contextSessionKey).(*Session)
	return sess, ok && sess != nil
}

// contextUsername returns the username of the logged in user, or "".
func contextUsername(ctx echo.Context) string {
	if sess, ok := contextSession(ctx); ok {
		return sess.Username
	}
	return ""
}

// requireSessionMiddleware rejects anonymous requests: JSON clients get a 401, browsers are sent to
// the login page.
func requireSessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if _, ok := contextSession(ctx); ok {
			return next(ctx)
		}
		if wantsJSON(ctx.Request()) {
			return errUnauthorized
		}
		return ctx.Redirect(http.StatusSeeOther, "/login?next="+url.QueryEscape(ctx.Request().RequestURI))
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) ||
		strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) ||
		r.Header.Get(echo.HeaderXRequestedWith) == "XMLHttpRequest"
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get(echo.HeaderXForwardedProto), "https")
}

// safeNext returns next if it is a path on this site, "/" otherwise.
// An absolute URL pointing at host is reduced to its path and query.
func safeNext(host, next string) string {
	if u, err := url.Parse(next); err == nil && u.IsAbs() {
		if (u.Scheme != "http" && u.Scheme != "https") || u.User != nil || !strings.EqualFold(u.Host, host) {
			return "/"
		}
		next = u.EscapedPath()
		if next == "" {
			next = "/"
		}
		if u.RawQuery != "" {
			next += "?" + u.RawQuery
		}
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
