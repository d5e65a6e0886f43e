package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	phc, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", phc)
	}

	hash, err := ParseArgon2idHash(phc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !hash.Verify("s3cret") {
		t.Error("correct password rejected")
	}
	if hash.Verify("wrong") {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("empty password must be rejected")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=65536,t=3,p=1$c2FsdA$c3Vt",
		"$argon2id$v=18$m=65536,t=3,p=1$c2FsdA$c3Vt",
		"$argon2id$v=19$m=banana,t=3,p=1$c2FsdA$c3Vt",
		"$argon2id$v=19$m=65536,t=3,p=1$!!!$c3Vt",
	}
	for _, phc := range cases {
		if _, err := ParseArgon2idHash(phc); err == nil {
			t.Errorf("ParseArgon2idHash(%q) must fail", phc)
		}
	}
}

func TestLoadFile(t *testing.T) {
	phc, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	path := filepath.Join(t.TempDir(), "users")
	content := "# comment\n\nalice:" + phc + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	users, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected one user, got %d", len(users))
	}
	if !users["alice"].Verify("pw") {
		t.Error("loaded hash does not verify")
	}
}

func TestLoadFileRejectsMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users")
	if err := os.WriteFile(path, []byte("no-colon-here\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("malformed line must be rejected")
	}
}
