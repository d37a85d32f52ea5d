package main

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAndGetUser(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateUser("alice", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	u, err := db.GetUserByUsername("alice")
	if err != nil || u == nil {
		t.Fatalf("get user: %v", err)
	}
	if u.ID != id || u.Elo != StartingElo || u.IsAdmin {
		t.Errorf("user = %+v", u)
	}
	if u.Design != DefaultDesign() {
		t.Errorf("design = %+v, want defaults", u.Design)
	}

	if u, _ := db.GetUserByUsername("nobody"); u != nil {
		t.Error("missing user should be nil")
	}

	exists, err := db.UsernameExists("alice")
	if err != nil || !exists {
		t.Error("alice should exist")
	}

	// Duplicate usernames are rejected by the unique constraint
	if _, err := db.CreateUser("alice", "other"); err == nil {
		t.Error("duplicate username accepted")
	}
}

func TestApplyEloDelta(t *testing.T) {
	db := openTestDB(t)
	db.CreateUser("alice", "h")
	db.CreateUser("bob", "h")

	if err := db.ApplyEloDelta("alice", 16); err != nil {
		t.Fatalf("apply delta: %v", err)
	}
	if err := db.ApplyEloDelta("bob", -16); err != nil {
		t.Fatalf("apply delta: %v", err)
	}

	a, _ := db.GetUserByUsername("alice")
	b, _ := db.GetUserByUsername("bob")
	if a.Elo != StartingElo+16 || b.Elo != StartingElo-16 {
		t.Errorf("elo = %d/%d, want %d/%d", a.Elo, b.Elo, StartingElo+16, StartingElo-16)
	}
}

func TestSaveMatchAndHistory(t *testing.T) {
	db := openTestDB(t)

	recs := []MatchRecord{
		{P1: "alice", P2: "bob", Score1: 20, Score2: 3, Winner: "alice", EloChange: 16, Mode: "pvp"},
		{P1: "carol", P2: "alice", Score1: 20, Score2: 20, Winner: WinnerDraw, Mode: "pvp"},
		{P1: "bob", P2: "carol", Score1: 5, Score2: 20, Winner: "carol", EloChange: 14, Mode: "pvp"},
	}
	for _, rec := range recs {
		if err := db.SaveMatch(rec); err != nil {
			t.Fatalf("save match: %v", err)
		}
	}

	all, err := db.GetHistory(20)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("history = %d matches, want 3", len(all))
	}

	aliceOnly, err := db.GetHistoryFor("alice", 50)
	if err != nil {
		t.Fatalf("history for alice: %v", err)
	}
	if len(aliceOnly) != 2 {
		t.Errorf("alice history = %d, want 2", len(aliceOnly))
	}

	n, err := db.CountMatchesFor("carol")
	if err != nil || n != 2 {
		t.Errorf("carol match count = %d (%v), want 2", n, err)
	}
}

func TestLeaderboardOrder(t *testing.T) {
	db := openTestDB(t)
	db.CreateUser("low", "h")
	db.CreateUser("high", "h")
	db.CreateUser("mid", "h")
	db.ApplyEloDelta("high", 300)
	db.ApplyEloDelta("mid", 100)
	db.ApplyEloDelta("low", -50)

	leaders, err := db.GetLeaderboard(10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(leaders) != 3 {
		t.Fatalf("leaders = %d, want 3", len(leaders))
	}
	wantOrder := []string{"high", "mid", "low"}
	for i, want := range wantOrder {
		if leaders[i].Username != want || leaders[i].Rank != i+1 {
			t.Errorf("rank %d = %+v, want %s", i+1, leaders[i], want)
		}
	}
}

func TestRecordResult(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreateUser("alice", "h")

	db.RecordResult(id, true)
	db.RecordResult(id, true)
	db.RecordResult(id, false)

	u, _ := db.GetUserByID(id)
	if u.Wins != 2 || u.Losses != 1 {
		t.Errorf("record = %d/%d, want 2/1", u.Wins, u.Losses)
	}
}

func TestUnlockAchievementOnce(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreateUser("alice", "h")

	first, err := db.UnlockAchievement(id, "first_win")
	if err != nil || !first {
		t.Errorf("first unlock = %v (%v), want true", first, err)
	}
	again, err := db.UnlockAchievement(id, "first_win")
	if err != nil || again {
		t.Errorf("repeat unlock = %v (%v), want false", again, err)
	}
}

func TestCheckAchievements(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreateUser("alice", "h")
	db.RecordResult(id, true)

	unlocked := CheckAchievements(db, id)
	if len(unlocked) != 1 || unlocked[0].ID != "first_win" {
		t.Fatalf("unlocked = %+v, want first_win", unlocked)
	}

	// Already unlocked: nothing new
	if again := CheckAchievements(db, id); len(again) != 0 {
		t.Errorf("second check unlocked %+v", again)
	}

	db.ApplyEloDelta("alice", 150)
	unlocked = CheckAchievements(db, id)
	if len(unlocked) != 1 || unlocked[0].ID != "rated_1100" {
		t.Errorf("unlocked = %+v, want rated_1100", unlocked)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if v := db.GetSetting("jwt_secret"); v != "" {
		t.Errorf("unset key = %q, want empty", v)
	}
	db.SetSetting("jwt_secret", "aa")
	db.SetSetting("jwt_secret", "bb")
	if v := db.GetSetting("jwt_secret"); v != "bb" {
		t.Errorf("setting = %q, want bb (upsert)", v)
	}
}
