package jwt

import (
	"errors"
	"testing"
	"time"

	"attendance-sync/config"
)

func newTestManager(issuer string) *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret: "test-secret-key-for-unit-testing-2026",
		Issuer:    issuer,
	})
}

func TestGenerateAndParseToken(t *testing.T) {
	m := newTestManager("hr-idp")

	token, err := m.GenerateToken("ops-1", "admin", 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}
	if claims.Subject != "ops-1" {
		t.Errorf("期望 Subject=ops-1，实际=%s", claims.Subject)
	}
	if claims.Role != "admin" {
		t.Errorf("期望 Role=admin，实际=%s", claims.Role)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := newTestManager("")

	token, err := m.GenerateToken("ops-1", "admin", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken 失败: %v", err)
	}

	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m := newTestManager("")
	other := NewManager(&config.AuthConfig{JWTSecret: "another-secret-key-0000000000"})

	token, _ := other.GenerateToken("ops-1", "admin", time.Minute)
	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_WrongIssuer(t *testing.T) {
	signer := newTestManager("someone-else")
	verifier := newTestManager("hr-idp")

	token, _ := signer.GenerateToken("ops-1", "admin", time.Minute)
	if _, err := verifier.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	m := newTestManager("")
	if _, err := m.ParseToken("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestEnabled(t *testing.T) {
	if NewManager(&config.AuthConfig{}).Enabled() {
		t.Error("未配置密钥时不应启用")
	}
	if !newTestManager("").Enabled() {
		t.Error("配置密钥后应启用")
	}
}
