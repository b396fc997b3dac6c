package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/video-summarizer/pkg/errors"
	"github.com/yanqian/video-summarizer/pkg/util"
)

// Service issues and validates API bearer tokens.
type Service interface {
	IssueToken(ctx context.Context, req IssueRequest) (Token, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
}

type service struct {
	cfg    Config
	logger *slog.Logger
	now    util.Clock
}

// NewService constructs the token service.
func NewService(cfg Config, logger *slog.Logger) Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "video-summarizer"
	}
	return &service{
		cfg:    cfg,
		logger: logger.With("component", "auth.service"),
		now:    util.NowUTC,
	}
}

func (s *service) IssueToken(_ context.Context, req IssueRequest) (Token, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return Token{}, apperrors.Wrap(apperrors.CodeInvalidInput, "subject cannot be empty", nil)
	}
	if strings.TrimSpace(s.cfg.Secret) == "" {
		return Token{}, apperrors.Wrap("auth_error", "token secret is not configured", nil)
	}
	ttl := req.TTL
	if ttl <= 0 {
		ttl = s.cfg.TokenTTL
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.cfg.Issuer,
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return Token{}, apperrors.Wrap("auth_error", "failed to sign token", err)
	}
	s.logger.Info("token issued", "subject", subject, "tokenId", claims.ID, "expiresAt", claims.ExpiresAt.Time)
	return Token{Token: signed, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *service) ValidateToken(_ context.Context, token string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token invalid", nil)
	}
	return Claims{
		Subject:   claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
