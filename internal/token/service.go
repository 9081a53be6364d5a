package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mehmetcc/libdesk/internal/config"
	"github.com/mehmetcc/libdesk/internal/person"
	"go.uber.org/zap"
)

var (
	ErrNoSecret        = errors.New("jwt secret is not configured")
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidIssuer   = errors.New("invalid issuer")
	ErrInvalidAudience = errors.New("invalid audience")
)

type TokenService interface {
	Issue(username string, role person.Role) (*IssueResult, error)
	ValidateAccess(tokenString string) (*Claims, error)
}

type IssueResult struct {
	AccessToken     string    `json:"access_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

type tokenService struct {
	logger     *zap.Logger
	cfg        *config.JWTConfig
	signingAlg jwt.SigningMethod
	now        func() time.Time
}

func NewTokenService(logger *zap.Logger, cfg *config.JWTConfig) TokenService {
	return &tokenService{
		logger:     logger,
		cfg:        cfg,
		signingAlg: jwt.SigningMethodHS256,
		now:        time.Now,
	}
}

func (s *tokenService) Issue(username string, role person.Role) (*IssueResult, error) {
	if s.cfg.Secret == "" {
		return nil, ErrNoSecret
	}
	if !role.Valid() {
		return nil, person.ErrInvalidRole
	}

	issuedAt := s.now().UTC()
	accessExp := issuedAt.Add(s.cfg.AccessTTL)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(accessExp),
			NotBefore: jwt.NewNumericDate(issuedAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ID:        s.generateJTI(),
		},
	}

	jwtToken := jwt.NewWithClaims(s.signingAlg, claims)
	if s.cfg.KID != "" {
		jwtToken.Header["kid"] = s.cfg.KID
	}
	accessToken, err := jwtToken.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		return nil, err
	}

	return &IssueResult{
		AccessToken:     accessToken,
		AccessExpiresAt: accessExp,
	}, nil
}

func (s *tokenService) ValidateAccess(tokenString string) (*Claims, error) {
	if s.cfg.Secret == "" {
		return nil, ErrNoSecret
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.signingAlg.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	tkn, err := parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != s.cfg.Issuer {
		return nil, ErrInvalidIssuer
	}
	if !slices.Contains(claims.Audience, s.cfg.Audience) {
		return nil, ErrInvalidAudience
	}
	if !claims.Role.Valid() {
		return nil, person.ErrInvalidRole
	}
	return &claims, nil
}

func (s *tokenService) generateJTI() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
