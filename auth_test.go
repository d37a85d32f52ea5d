package main

import (
	"strings"
	"testing"
)

func newTestAuth(t *testing.T) (*Auth, *DB) {
	t.Helper()
	db := openTestDB(t)
	return NewAuth(db), db
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	auth, _ := newTestAuth(t)

	ident, token, err := auth.Register("alice", "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if ident.UserID == 0 || ident.Nick != "alice" || ident.Elo != StartingElo {
		t.Errorf("register identity = %+v", ident)
	}
	if token == "" {
		t.Error("register returned empty token")
	}

	ident2, token2, err := auth.Login("alice", "hunter2", "1.2.3.4")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if ident2.UserID != ident.UserID || ident2.Nick != "alice" {
		t.Errorf("login identity = %+v", ident2)
	}
	if token2 == "" {
		t.Error("login returned empty token")
	}

	if _, _, err := auth.Login("alice", "wrongpass", "1.2.3.4"); err == nil {
		t.Error("wrong password accepted")
	}
	if _, _, err := auth.Login("nobody", "hunter2", "1.2.3.4"); err == nil {
		t.Error("unknown user accepted")
	}
}

func TestRegisterValidation(t *testing.T) {
	auth, _ := newTestAuth(t)

	cases := []struct {
		name, username, password string
	}{
		{"short username", "a", "hunter2"},
		{"long username", strings.Repeat("x", 17), "hunter2"},
		{"short password", "alice", "abc"},
	}
	for _, tc := range cases {
		if _, _, err := auth.Register(tc.username, tc.password); err == nil {
			t.Errorf("%s: accepted", tc.name)
		}
	}

	if _, _, err := auth.Register("alice", "hunter2"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := auth.Register("alice", "other"); err == nil {
		t.Error("duplicate username accepted")
	}
}

func TestValidateTokenRefreshesIdentity(t *testing.T) {
	auth, db := newTestAuth(t)

	_, token, err := auth.Register("alice", "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Ratings move between token issue and use; validation must pick up
	// the current value.
	db.ApplyEloDelta("alice", 42)

	ident, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if ident.Nick != "alice" || ident.Elo != StartingElo+42 {
		t.Errorf("identity = %+v, want refreshed elo %d", ident, StartingElo+42)
	}

	if _, err := auth.ValidateToken("not.a.token"); err == nil {
		t.Error("garbage token accepted")
	}
	if _, err := auth.ValidateToken(""); err == nil {
		t.Error("empty token accepted")
	}
}

func TestSecretPersistsAcrossRestarts(t *testing.T) {
	db := openTestDB(t)

	auth1 := NewAuth(db)
	_, token, err := auth1.Register("alice", "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// A second Auth over the same database must load the same secret
	auth2 := NewAuth(db)
	if _, err := auth2.ValidateToken(token); err != nil {
		t.Errorf("token rejected after restart: %v", err)
	}
}

func TestLoginRateLimit(t *testing.T) {
	auth, _ := newTestAuth(t)
	auth.Register("alice", "hunter2")

	for i := 0; i < maxLoginAttempts; i++ {
		auth.Login("alice", "wrongpass", "9.9.9.9")
	}
	if _, _, err := auth.Login("alice", "hunter2", "9.9.9.9"); err == nil {
		t.Error("attempt past limit accepted")
	}
	// Other IPs are unaffected
	if _, _, err := auth.Login("alice", "hunter2", "8.8.8.8"); err != nil {
		t.Errorf("login from fresh ip: %v", err)
	}
}

func TestGuestIdentity(t *testing.T) {
	g := GuestIdentity("  dave  ")
	if g.Nick != "dave" || g.UserID != 0 || g.Elo != StartingElo {
		t.Errorf("guest = %+v", g)
	}

	anon := GuestIdentity("")
	if !strings.HasPrefix(anon.Nick, "Guest_") {
		t.Errorf("anonymous guest nick = %q", anon.Nick)
	}

	long := GuestIdentity(strings.Repeat("z", 40))
	if len(long.Nick) != maxUsernameLen {
		t.Errorf("long nick kept %d chars", len(long.Nick))
	}
}

func TestValidDesign(t *testing.T) {
	if !ValidDesign(DefaultDesign()) {
		t.Error("default design rejected")
	}
	bad := []Design{
		{BodyColor: "39ff14", EyeColor: "#000000"},
		{BodyColor: "#39ff14", EyeColor: "red"},
		{BodyColor: "#39ff1", EyeColor: "#000000"},
		{BodyColor: "#39ff14zz", EyeColor: "#000000"},
	}
	for _, d := range bad {
		if ValidDesign(d) {
			t.Errorf("accepted %+v", d)
		}
	}
}
