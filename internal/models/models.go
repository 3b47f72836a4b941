package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// DemoParticipantID is the id of the single seeded demo participant
const DemoParticipantID = "participant-001"

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Participant represents a program participant with sign-in credentials
// and a synthetic engagement summary
type Participant struct {
	BaseModel
	Name  string `json:"name" gorm:"not null"`
	Email string `json:"email" gorm:"unique;not null"`
	// Plaintext demo password, compared by exact string equality.
	// This service demonstrates the credential protocol, not password
	// storage.
	Password string `json:"-" gorm:"not null"`

	TotalEvents      int `json:"total_events" gorm:"not null;default:0"`
	AttendedSessions int `json:"attended_sessions" gorm:"not null;default:0"`
	Score            int `json:"score" gorm:"not null;default:0"`

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Participant{})
}

// SeedDemoParticipant inserts the single demo identity if it doesn't exist yet
func SeedDemoParticipant(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Participant{}).Where("id = ?", DemoParticipantID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	participant := &Participant{
		BaseModel:        BaseModel{ID: DemoParticipantID},
		Name:             "Neha Tanwar",
		Email:            "neha.tanwar@kornferry.com",
		Password:         "Neha@123",
		TotalEvents:      5,
		AttendedSessions: 4,
		Score:            87,
	}
	return db.Create(participant).Error
}
