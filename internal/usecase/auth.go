package usecase

import (
	"time"

	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/pkg/errs"
	"stay-ledger/internal/pkg/jwt"
)

var ErrTokenGeneration = errs.New("token generation failed")

type IssuedToken struct {
	Subject   string
	Token     string
	ExpiresAt time.Time
}

// TokenIssuer mints bearer tokens for local development. Production tokens
// come from the identity provider that shares the signing secret.
type TokenIssuer interface {
	Issue(subject party.Identity) (*IssuedToken, error)
}

type tokenIssuerImpl struct {
	jwtService *jwt.Service
}

func NewTokenIssuer(jwtService *jwt.Service) TokenIssuer {
	return &tokenIssuerImpl{jwtService: jwtService}
}

func (t *tokenIssuerImpl) Issue(subject party.Identity) (*IssuedToken, error) {
	if subject.IsZero() {
		return nil, party.ErrInvalidIdentity
	}
	token, expiresAt, err := t.jwtService.GenerateToken(subject.String())
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}
	return &IssuedToken{Subject: subject.String(), Token: token, ExpiresAt: expiresAt}, nil
}
