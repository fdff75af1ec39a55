package security_test

import (
	"testing"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	hash, err := security.HashPassword("very-secure-password", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestCheckPasswordPolicy(t *testing.T) {
	if err := security.CheckPasswordPolicy("short"); err == nil {
		t.Fatal("expected short password to be rejected")
	}
	if err := security.CheckPasswordPolicy("        "); err == nil {
		t.Fatal("expected blank password to be rejected")
	}
	if err := security.CheckPasswordPolicy("correct-horse"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNeedsRehash(t *testing.T) {
	cfg := config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	hash, err := security.HashPassword("correct-horse", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if security.NeedsRehash(hash, cfg) {
		t.Fatal("hash built with current params should not need a rehash")
	}

	stronger := cfg
	stronger.ArgonTime = 2
	if !security.NeedsRehash(hash, stronger) {
		t.Fatal("expected rehash after raising time cost")
	}
	if !security.NeedsRehash("garbage", cfg) {
		t.Fatal("malformed hashes always need a rehash")
	}
}

func TestCheckPasswordPolicyMaxLength(t *testing.T) {
	long := make([]byte, security.MaxPasswordLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if err := security.CheckPasswordPolicy(string(long)); err == nil {
		t.Fatal("expected overlong password to be rejected")
	}
}
