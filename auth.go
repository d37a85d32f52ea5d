package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtExpiry        = 5 * 24 * time.Hour // 5 days
	bcryptCost       = 12
	minPasswordLen   = 4
	minUsernameLen   = 2
	maxUsernameLen   = 16
	loginRateWindow  = 60 * time.Second
	maxLoginAttempts = 10
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Identity is what the engine knows about a participant: display name,
// rating snapshot, cosmetics and the privilege flag. UserID 0 marks a
// guest with no account.
type Identity struct {
	UserID  int64
	Nick    string
	Elo     int
	IsAdmin bool
	Design  Design
}

// Auth handles authentication
type Auth struct {
	db        *DB
	jwtSecret []byte

	// Rate limiting for login attempts (IP -> attempts)
	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// NewAuth creates a new Auth handler
func NewAuth(db *DB) *Auth {
	secret := loadOrCreateSecret(db)
	return &Auth{
		db:        db,
		jwtSecret: secret,
		rateMap:   make(map[string]*rateEntry),
	}
}

// loadOrCreateSecret loads the JWT secret from the database, or generates
// and persists a new one if none exists.
func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting("jwt_secret"); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
			log.Printf("warning: could not persist JWT secret: %v", err)
		}
	}
	return secret
}

// Register creates a new account and returns its identity and token
func (a *Auth) Register(username, password string) (Identity, string, error) {
	username = strings.TrimSpace(username)

	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return Identity{}, "", fmt.Errorf("username must be %d-%d characters", minUsernameLen, maxUsernameLen)
	}
	if len(password) < minPasswordLen {
		return Identity{}, "", fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	exists, err := a.db.UsernameExists(username)
	if err != nil {
		return Identity{}, "", fmt.Errorf("database error")
	}
	if exists {
		return Identity{}, "", fmt.Errorf("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return Identity{}, "", fmt.Errorf("internal error")
	}

	id, err := a.db.CreateUser(username, string(hash))
	if err != nil {
		return Identity{}, "", fmt.Errorf("failed to create account")
	}

	token, err := a.generateToken(id, username)
	if err != nil {
		return Identity{}, "", fmt.Errorf("internal error")
	}

	return Identity{
		UserID: id,
		Nick:   username,
		Elo:    StartingElo,
		Design: DefaultDesign(),
	}, token, nil
}

// Login authenticates a user and returns its identity and a fresh JWT
func (a *Auth) Login(username, password, ip string) (Identity, string, error) {
	if !a.checkRate(ip) {
		return Identity{}, "", fmt.Errorf("too many login attempts, try again later")
	}

	user, err := a.db.GetUserByUsername(username)
	if err != nil {
		return Identity{}, "", fmt.Errorf("database error")
	}
	if user == nil || user.PassHash == "" {
		return Identity{}, "", fmt.Errorf("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return Identity{}, "", fmt.Errorf("invalid username or password")
	}

	token, err := a.generateToken(user.ID, user.Username)
	if err != nil {
		return Identity{}, "", fmt.Errorf("internal error")
	}

	return identityFromUser(user), token, nil
}

// ValidateToken validates a JWT and returns the identity it names,
// refreshed from the database so rating and design are current.
func (a *Auth) ValidateToken(tokenStr string) (Identity, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("invalid token")
	}

	uidFloat, ok := claims["uid"].(float64)
	if !ok {
		return Identity{}, fmt.Errorf("invalid token claims")
	}

	user, err := a.db.GetUserByID(int64(uidFloat))
	if err != nil || user == nil {
		return Identity{}, fmt.Errorf("unknown user")
	}
	return identityFromUser(user), nil
}

func identityFromUser(u *UserRow) Identity {
	return Identity{
		UserID:  u.ID,
		Nick:    u.Username,
		Elo:     u.Elo,
		IsAdmin: u.IsAdmin,
		Design:  u.Design,
	}
}

func (a *Auth) generateToken(userID int64, username string) (string, error) {
	claims := jwt.MapClaims{
		"uid": userID,
		"usr": username,
		"exp": time.Now().Add(jwtExpiry).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

func (a *Auth) checkRate(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := time.Now()
	entry, ok := a.rateMap[ip]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(loginRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxLoginAttempts
}

// ValidDesign checks the cosmetic colors are well-formed hex values
func ValidDesign(d Design) bool {
	return hexColorRe.MatchString(d.BodyColor) && hexColorRe.MatchString(d.EyeColor)
}

// GuestIdentity builds a non-persistent identity for an unauthenticated
// player. Guests play at the starting rating and are never rated.
func GuestIdentity(nick string) Identity {
	nick = strings.TrimSpace(nick)
	if nick == "" {
		nick = generateGuestName()
	}
	if len(nick) > maxUsernameLen {
		nick = nick[:maxUsernameLen]
	}
	return Identity{
		Nick:   nick,
		Elo:    StartingElo,
		Design: DefaultDesign(),
	}
}

// generateGuestName creates a name like "Guest_a3f2"
func generateGuestName() string {
	b := make([]byte, 2)
	rand.Read(b)
	return "Guest_" + hex.EncodeToString(b)
}
