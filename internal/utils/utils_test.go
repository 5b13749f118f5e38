package utils

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	id := GenerateID("jnl")
	if !strings.HasPrefix(id, "jnl-") {
		t.Errorf("expected jnl- prefix, got %s", id)
	}
	if len(id) != len("jnl-")+10 {
		t.Errorf("unexpected length for %s", id)
	}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID("usr")
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret1" {
		t.Error("hash must differ from the raw password")
	}
	if !CheckPassword("secret1", hash) {
		t.Error("correct password must verify")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password must not verify")
	}
}

func TestValidateIDFormats(t *testing.T) {
	if !ValidateUserID("usr-a1B2c3D4e5") {
		t.Error("expected valid user id")
	}
	if ValidateUserID("acc-a1B2c3D4e5") {
		t.Error("expected invalid user id")
	}
	if !ValidateEntryID("jnl-a1B2c3D4e5") {
		t.Error("expected valid entry id")
	}
	if ValidateEntryID("a1B2c3D4e5") {
		t.Error("expected invalid entry id")
	}
}
