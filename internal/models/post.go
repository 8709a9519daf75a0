package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a showcase publication authored by a user. Posts are immutable after
// creation; there is no edit route.
type Post struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Gallery     []string       `gorm:"serializer:json" json:"gallery"`
	Links       []string       `gorm:"serializer:json" json:"links"`
	EmbedCode   string         `gorm:"type:text" json:"embedCode,omitempty"`
	Likes       int            `gorm:"default:0" json:"likes"`
	AuthorID    uint           `gorm:"not null;index" json:"authorId"`
	Author      *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Hashtags    []Hashtag      `gorm:"many2many:post_hashtags;" json:"hashtags,omitempty"`
	Comments    []Comment      `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Hashtag is a free-form tag attached to posts and projects, de-duplicated by name.
type Hashtag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// Comment belongs to either a post or a project, never both.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  uint      `gorm:"not null;index" json:"authorId"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	PostID    *uint     `gorm:"index" json:"postId,omitempty"`
	ProjectID *uint     `gorm:"index" json:"projectId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
