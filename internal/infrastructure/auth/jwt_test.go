package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/bankist/internal/domain"
	"github.com/iho/bankist/internal/infrastructure/auth"
)

func TestJWTManagerGenerateAndVerify(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)

	token, err := manager.Generate("jd", "01HSESSION")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}

	if claims.Username != "jd" || claims.SessionID != "01HSESSION" {
		t.Fatalf("expected claims to match session, got %+v", claims)
	}
}

func TestJWTManagerVerifyErrors(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	expiredClaims := auth.Claims{
		Username:  "jj",
		SessionID: "expired",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
			NotBefore: jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		},
	}

	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign expired token: %v", err)
	}

	if _, err := manager.Verify(expiredToken); err != domain.ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}

	otherManager := auth.NewJWTManager("other-secret", time.Minute)
	if _, err := otherManager.Verify(expiredToken); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	if _, err := manager.Verify("not-a-token"); err == nil {
		t.Fatalf("expected failure for malformed token")
	}

	noSession, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Username: "jj",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	if _, err := manager.Verify(noSession); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for token without session, got %v", err)
	}
}
