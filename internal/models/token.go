package models

import "time"

// Token is the server-side copy of an issued session token. Its presence is a
// secondary validity check beyond signature verification: deleting the row
// revokes the session even while the signature is still valid.
type Token struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the token row has passed its expiry.
func (t *Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
