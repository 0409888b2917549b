package sessions

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	sessionCookieName = "boutique-session"

	userIDSessionKey = "userID"
	roleSessionKey   = "role"
)

type SessionStore interface {
	GetUserID(r *http.Request) string
	SetUser(w http.ResponseWriter, r *http.Request, userID, role string) error
	ClearSession(w http.ResponseWriter, r *http.Request) error
}

type CookieSessionStore struct {
	store *sessions.CookieStore
}

func NewCookieSessionStore(secure bool, keyPairs ...[]byte) *CookieSessionStore {
	store := sessions.NewCookieStore(keyPairs...)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(7 * 24 * time.Hour / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieSessionStore{store: store}
}

// getSession never fails: a cookie that no longer decodes yields a fresh session.
func (c *CookieSessionStore) getSession(r *http.Request) *sessions.Session {
	session, err := c.store.Get(r, sessionCookieName)
	if err != nil {
		session = sessions.NewSession(c.store, sessionCookieName)
		opts := *c.store.Options
		session.Options = &opts
		session.IsNew = true
	}
	return session
}

func (c *CookieSessionStore) GetUserID(r *http.Request) string {
	userID, _ := c.getSession(r).Values[userIDSessionKey].(string)
	return userID
}

func (c *CookieSessionStore) SetUser(w http.ResponseWriter, r *http.Request, userID, role string) error {
	session := c.getSession(r)
	session.Values[userIDSessionKey] = userID
	session.Values[roleSessionKey] = role
	return session.Save(r, w)
}

func (c *CookieSessionStore) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
