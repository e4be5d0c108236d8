package auth

import (
	"fmt"

	"foodreport/internal/pkg/metrics"

	"github.com/sirupsen/logrus"
)

type tokenIssuer interface {
	GenerateToken(email string) (string, error)
}

type Service struct {
	gate    *Gate
	tokens  tokenIssuer
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

func NewService(gate *Gate, tokens tokenIssuer, log logrus.FieldLogger, m *metrics.Metrics) *Service {
	return &Service{gate: gate, tokens: tokens, log: log, metrics: m}
}

// Login issues a bearer token for the authorized email. The caller has
// already verified the email with the OAuth provider.
func (s *Service) Login(email string) (token string, err error) {
	defer func() { s.metrics.ReportEvent("login", err) }()

	if err := s.gate.Authorize(email); err != nil {
		s.log.WithField("email", email).Warn("login rejected")
		return "", err
	}
	token, err = s.tokens.GenerateToken(normalize(email))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
