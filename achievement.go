package main

// Achievement definitions
type AchievementDef struct {
	ID          string
	Name        string
	Description string
}

var Achievements = []AchievementDef{
	{"first_win", "First Blood", "Win your first match"},
	{"veteran_10", "Veteran", "Win 10 matches"},
	{"rated_1100", "Climber", "Reach 1100 Elo"},
	{"rated_1300", "Serpent King", "Reach 1300 Elo"},
	{"marathon_50", "Marathon", "Play 50 matches"},
}

// CheckAchievements checks whether the player's current record unlocks
// anything new. Returns the newly unlocked definitions; persistence
// failures simply return nothing.
func CheckAchievements(db *DB, userID int64) []AchievementDef {
	if db == nil {
		return nil
	}

	user, err := db.GetUserByID(userID)
	if err != nil || user == nil {
		return nil
	}
	played, err := db.CountMatchesFor(user.Username)
	if err != nil {
		return nil
	}

	check := func(id string) bool {
		switch id {
		case "first_win":
			return user.Wins >= 1
		case "veteran_10":
			return user.Wins >= 10
		case "rated_1100":
			return user.Elo >= 1100
		case "rated_1300":
			return user.Elo >= 1300
		case "marathon_50":
			return played >= 50
		}
		return false
	}

	var unlocked []AchievementDef
	for _, def := range Achievements {
		if !check(def.ID) {
			continue
		}
		if newlyUnlocked, err := db.UnlockAchievement(userID, def.ID); err == nil && newlyUnlocked {
			unlocked = append(unlocked, def)
		}
	}
	return unlocked
}
