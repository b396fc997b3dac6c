package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/video-summarizer/pkg/errors"
)

func TestService_IssueAndValidate(t *testing.T) {
	svc := NewService(Config{Secret: "test-secret", TokenTTL: time.Hour}, newTestLogger())

	tok, err := svc.IssueToken(context.Background(), IssueRequest{Subject: " digest-bot "})
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	require.NotEmpty(t, tok.TokenID)
	require.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, time.Minute)

	claims, err := svc.ValidateToken(context.Background(), tok.Token)
	require.NoError(t, err)
	require.Equal(t, "digest-bot", claims.Subject)
	require.Equal(t, tok.TokenID, claims.TokenID)
}

func TestService_RejectsBadTokens(t *testing.T) {
	svc := NewService(Config{Secret: "test-secret"}, newTestLogger())
	other := NewService(Config{Secret: "other-secret"}, newTestLogger())
	foreignIssuer := NewService(Config{Secret: "test-secret", Issuer: "someone-else"}, newTestLogger())

	forged, err := other.IssueToken(context.Background(), IssueRequest{Subject: "x"})
	require.NoError(t, err)
	wrongIssuer, err := foreignIssuer.IssueToken(context.Background(), IssueRequest{Subject: "x"})
	require.NoError(t, err)

	issuer := svc.(*service)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := svc.IssueToken(context.Background(), IssueRequest{Subject: "x", TTL: time.Hour})
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().UTC() }

	cases := map[string]string{
		"garbage":      "not-a-jwt",
		"wrong secret": forged.Token,
		"wrong issuer": wrongIssuer.Token,
		"expired":      expired.Token,
	}
	for name, token := range cases {
		name := name
		token := token
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(context.Background(), token)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, CodeInvalidToken))
		})
	}
}

func TestService_IssueValidation(t *testing.T) {
	svc := NewService(Config{Secret: "s"}, newTestLogger())
	_, err := svc.IssueToken(context.Background(), IssueRequest{Subject: "  "})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	noSecret := NewService(Config{}, newTestLogger())
	_, err = noSecret.IssueToken(context.Background(), IssueRequest{Subject: "x"})
	require.True(t, apperrors.IsCode(err, "auth_error"))
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}
