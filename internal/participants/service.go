package participants

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/engaged-dev/engaged/internal/auth"
	"github.com/engaged-dev/engaged/internal/models"
)

// ErrNotFound is returned when no participant matches the lookup
var ErrNotFound = errors.New("participant not found")

// Summary is the synthetic engagement summary for a participant
type Summary struct {
	TotalEvents      int `json:"totalEvents"`
	AttendedSessions int `json:"attendedSessions"`
	Score            int `json:"score"`
}

// Service is the participant directory: identity lookup, credential
// verification and engagement summaries
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a new participants service
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// FindByEmail looks up a participant identity by email.
// Returns ErrNotFound when no participant has that email.
func (s *Service) FindByEmail(email string) (*auth.Identity, error) {
	var participant models.Participant
	if err := s.db.Where("email = ?", strings.TrimSpace(email)).First(&participant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &auth.Identity{
		ID:    participant.ID,
		Name:  participant.Name,
		Email: participant.Email,
	}, nil
}

// VerifyCredentials checks an email/password pair and returns the
// matching identity. The email is trimmed; the password is compared
// case-sensitively by exact equality. Wrong email and wrong password
// are indistinguishable to the caller.
func (s *Service) VerifyCredentials(email, password string) (*auth.Identity, bool) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, false
	}

	var participant models.Participant
	if err := s.db.Where("email = ?", email).First(&participant).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error().Err(err).Msg("Failed to query participant")
		}
		return nil, false
	}

	if participant.Password != password {
		return nil, false
	}

	return &auth.Identity{
		ID:    participant.ID,
		Name:  participant.Name,
		Email: participant.Email,
	}, true
}

// Summary returns the engagement summary for a participant id
func (s *Service) Summary(participantID string) (*Summary, error) {
	var participant models.Participant
	if err := s.db.Where("id = ?", participantID).First(&participant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &Summary{
		TotalEvents:      participant.TotalEvents,
		AttendedSessions: participant.AttendedSessions,
		Score:            participant.Score,
	}, nil
}
