package auth

import (
	"strings"

	"foodreport/internal/pkg/apperr"
)

// Gate admits exactly one configured email.
type Gate struct {
	authorizedEmail string
}

func NewGate(authorizedEmail string) *Gate {
	return &Gate{authorizedEmail: normalize(authorizedEmail)}
}

func (g *Gate) Authorize(email string) error {
	e := normalize(email)
	if e == "" || g.authorizedEmail == "" || e != g.authorizedEmail {
		return apperr.Unauthorized("unauthorized email")
	}
	return nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
