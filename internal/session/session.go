// Package session keeps the signed-in admin in an HS256 signed cookie.
package session

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CookieName      = "_session"
	StateCookieName = "_oauth_state"

	stateTTL = 10 * time.Minute
)

var ErrNoSession = errors.New("session: not signed in")

// Session is what the browser carries between requests.
type Session struct {
	Email string
	// APIToken is the bearer token issued by GET /api/login.
	APIToken string
}

type claims struct {
	Email    string `json:"email"`
	APIToken string `json:"jwt"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewManager(secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, secure: secure}
}

func (m *Manager) Save(w http.ResponseWriter, s Session) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email:    s.Email,
		APIToken: s.APIToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(CookieName, signed, int(m.ttl.Seconds())))
	return nil
}

func (m *Manager) Load(r *http.Request) (Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return Session{}, ErrNoSession
	}

	var cl claims
	token, err := jwt.ParseWithClaims(c.Value, &cl, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || cl.Email == "" || cl.APIToken == "" {
		return Session{}, ErrNoSession
	}
	return Session{Email: cl.Email, APIToken: cl.APIToken}, nil
}

func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie(CookieName, "", -1))
}

// NewState stores a random OAuth state in a short lived cookie and returns it.
func (m *Manager) NewState(w http.ResponseWriter) string {
	state := uuid.NewString()
	http.SetCookie(w, m.cookie(StateCookieName, state, int(stateTTL.Seconds())))
	return state
}

// CheckState compares got with the state cookie and always clears the cookie.
func (m *Manager) CheckState(w http.ResponseWriter, r *http.Request, got string) bool {
	http.SetCookie(w, m.cookie(StateCookieName, "", -1))
	c, err := r.Cookie(StateCookieName)
	if err != nil || c.Value == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Value), []byte(got)) == 1
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
