package models

import "time"

// Chat is a conversation between two users. Participation is tracked through
// the chat_participants join table.
type Chat struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Participants []User    `gorm:"many2many:chat_participants;" json:"participants,omitempty"`
	Messages     []Message `gorm:"foreignKey:ChatID" json:"messages,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasParticipant reports whether the user takes part in the chat. The
// participants slice must be loaded.
func (c *Chat) HasParticipant(userID uint) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// Message is a single chat message. Ordering within a chat is by CreatedAt
// ascending.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    uint      `gorm:"not null;index" json:"chatId"`
	SenderID  uint      `gorm:"not null;index" json:"senderId"`
	Sender    *User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
