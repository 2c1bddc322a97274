package entity

import (
	"time"
)

// User is the aggregate root for the identity domain. The credential is the
// PasswordHash/PasswordSalt pair; both are opaque hex strings and must never
// leave the credential codec or be serialized to clients.
//
// UsernameLower is the lowercase projection of Username; its unique index is
// what prevents case-collision accounts.
type User struct {
	ID            string
	Username      string
	UsernameLower string
	Email         string
	PasswordHash  string
	PasswordSalt  string
	Pic           string
	Status        string
	StreamKey     string // owner-only secret; empty until first issued
	Stream        StreamProfile
	Points        int64
	ResetToken    string
	ResetExpires  time.Time
	ClientIP      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StreamProfile is the nested stream configuration that shares the user row.
type StreamProfile struct {
	Title       string
	Game        string
	WithGame    bool
	Live        bool
	StreamImage string
	BannedUsers []string
	WithGoal    bool
	Goal        int64 // >= 0
	Received    int64 // cumulative points received
	GoalReward  string
	Twitter     string
	FirstSite   string
	Bio         string
}

// IsBanned reports whether the given username is on the streamer's ban list.
func (p *StreamProfile) IsBanned(username string) bool {
	for _, b := range p.BannedUsers {
		if b == username {
			return true
		}
	}
	return false
}

const (
	DefaultPic    = "/images/default_user.png"
	DefaultStatus = "basic"
)
