package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/allisson/phrsdk/internal/errors"
	sandboxDomain "github.com/allisson/phrsdk/internal/sandbox/domain"
)

const tokenIssuer = "phrsdk-sandbox"

// Claims are the JWT claims of a sandbox bearer token. The account id travels as the
// registered subject.
type Claims struct {
	jwt.RegisteredClaims
}

type jwtTokenService struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewTokenService creates a TokenService signing HS256 tokens with secret.
func NewTokenService(secret []byte, expiration time.Duration) TokenService {
	return &jwtTokenService{
		secret:     secret,
		expiration: expiration,
		now:        time.Now,
	}
}

func (s *jwtTokenService) Issue(userID uuid.UUID) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.expiration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(err, "failed to sign token")
	}
	return signed, expiresAt, nil
}

func (s *jwtTokenService) Validate(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, sandboxDomain.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, sandboxDomain.ErrInvalidToken
	}
	return userID, nil
}
