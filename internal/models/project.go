package models

import (
	"time"

	"gorm.io/gorm"
)

// Project is a client's job posting that workers can apply to.
type Project struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Budget       string         `json:"budget"` // free text, often numeric-as-string
	Deadline     time.Time      `json:"deadline"`
	AuthorID     uint           `gorm:"not null;index" json:"authorId"`
	Author       *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Hashtags     []Hashtag      `gorm:"many2many:project_hashtags;" json:"hashtags,omitempty"`
	Comments     []Comment      `gorm:"foreignKey:ProjectID" json:"comments,omitempty"`
	Applications []Application  `gorm:"foreignKey:ProjectID" json:"applications,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Application is a worker's bid on a project. A worker may apply to a given
// project at most once.
type Application struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"not null;uniqueIndex:idx_project_worker" json:"projectId"`
	Project     *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	WorkerID    uint      `gorm:"not null;uniqueIndex:idx_project_worker" json:"workerId"`
	Worker      *User     `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	CoverLetter string    `gorm:"type:text" json:"coverLetter"`
	ProposedFee float64   `gorm:"not null" json:"proposedFee"`
	CreatedAt   time.Time `json:"createdAt"`
}
