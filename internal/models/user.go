// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User types supported by the marketplace.
const (
	UserTypeWorker = "WORKER"
	UserTypeClient = "CLIENT"
)

// User represents an account in the Worklane marketplace. Workers offer
// services through an attached WorkerProfile; clients post projects.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Username      string         `gorm:"unique;not null" json:"username"`
	Email         string         `gorm:"unique;not null" json:"email"`
	Password      string         `gorm:"not null" json:"-"`
	Name          string         `json:"name"`
	Type          string         `gorm:"not null;default:'CLIENT'" json:"type"`
	ProfilePhoto  string         `json:"profilePhoto"`
	About         string         `gorm:"type:text" json:"about"`
	Instagram     string         `json:"instagram,omitempty"`
	Twitter       string         `json:"twitter,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	WorkerProfile *WorkerProfile `gorm:"foreignKey:UserID" json:"workerProfile,omitempty"`
}

// IsWorker reports whether the user offers freelance services.
func (u *User) IsWorker() bool {
	return u.Type == UserTypeWorker
}

// WorkerProfile is the one-to-one extension record for WORKER users.
type WorkerProfile struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"uniqueIndex;not null" json:"userId"`
	Profession     string          `json:"profession"`
	ContactInfo    string          `json:"contactInfo"`
	Rating         float64         `gorm:"default:0" json:"rating"`
	CompletedTasks int             `gorm:"default:0" json:"completedTasks"`
	Skills         []Skill         `gorm:"many2many:worker_skills;" json:"skills,omitempty"`
	Portfolio      []PortfolioItem `gorm:"foreignKey:WorkerProfileID" json:"portfolio,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Skill is a named tag attached to worker profiles, de-duplicated by name.
type Skill struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// PortfolioItem is a single showcase entry on a worker profile.
type PortfolioItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	WorkerProfileID uint      `gorm:"not null;index" json:"workerProfileId"`
	Title           string    `gorm:"not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	Link            string    `json:"link,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}
