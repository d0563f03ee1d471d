// Package operatortoken authenticates the human operator presenting or
// issuing credentials. Session management lives in the surrounding
// application; this package only mints and validates the HS256 bearer
// tokens that carry an operator's identity and role.
package operatortoken

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"healthpass/internal/credential/authz"
	id "healthpass/pkg/domain"
	dErrors "healthpass/pkg/domain-errors"
)

// Claims are the JWT claims for operator tokens.
type Claims struct {
	OperatorID string `json:"operator_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// Service handles operator token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

func NewService(signingKey string, issuer string, tokenTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

// Generate mints a bearer token for the given operator.
func (s *Service) Generate(operatorID id.OperatorID, role authz.Role) (string, error) {
	if operatorID.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "operator ID cannot be empty")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate token ID")
	}
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		OperatorID: operatorID.String(),
		Role:       string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Subject:   operatorID.String(),
			ID:        hex.EncodeToString(b),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign operator token")
	}
	return signed, nil
}

// Validate parses and verifies a bearer token, returning the operator it
// authenticates.
func (s *Service) Validate(tokenString string) (authz.Operator, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return authz.Operator{}, dErrors.New(dErrors.CodeUnauthorized, "operator token expired")
		}
		return authz.Operator{}, dErrors.New(dErrors.CodeUnauthorized, "invalid operator token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return authz.Operator{}, dErrors.New(dErrors.CodeUnauthorized, "invalid operator token claims")
	}

	operatorID, err := id.ParseOperatorID(claims.OperatorID)
	if err != nil {
		return authz.Operator{}, dErrors.New(dErrors.CodeUnauthorized, "operator token missing operator ID")
	}
	role, err := authz.ParseRole(claims.Role)
	if err != nil {
		return authz.Operator{}, dErrors.New(dErrors.CodeUnauthorized, "operator token carries an unknown role")
	}
	return authz.Operator{ID: operatorID, Role: role}, nil
}
