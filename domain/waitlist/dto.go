package waitlist

import (
	"github.com/tarslive/waitlist-api/internal/models"
	"github.com/tarslive/waitlist-api/pkg/constants"
)

// Admin listing pagination bounds.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type JoinWaitlistRequest struct {
	Email string `json:"email" binding:"required,max=255"`
	Name  string `json:"name" binding:"required,max=255"`
}

type JoinWaitlistResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Position  int64  `json:"position"`
	CreatedAt string `json:"created_at"`
}

type WaitlistEntryResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type ListWaitlistResponse struct {
	Total   int64                   `json:"total"`
	Entries []WaitlistEntryResponse `json:"entries"`
}

type PagedWaitlistResponse struct {
	Total   int64                   `json:"total"`
	Entries []WaitlistEntryResponse `json:"entries"`
	Page    int                     `json:"page"`
	Limit   int                     `json:"limit"`
}

// ========================================
// Mappers
// ========================================

func ToWaitlistEntryModel(req *JoinWaitlistRequest) *models.WaitlistEntry {
	if req == nil {
		return nil
	}
	return &models.WaitlistEntry{
		Email: req.Email,
		Name:  req.Name,
	}
}

func ToWaitlistEntryResponse(entry *models.WaitlistEntry) WaitlistEntryResponse {
	if entry == nil {
		return WaitlistEntryResponse{}
	}
	return WaitlistEntryResponse{
		ID:        entry.ID,
		Email:     entry.Email,
		Name:      entry.Name,
		CreatedAt: entry.CreatedAt.Format(constants.RFC3339DateTimeFormat),
	}
}

func ToWaitlistEntryResponses(entries []*models.WaitlistEntry) []WaitlistEntryResponse {
	responses := make([]WaitlistEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, ToWaitlistEntryResponse(entry))
	}
	return responses
}

func ToJoinWaitlistResponse(entry *models.WaitlistEntry, position int64) JoinWaitlistResponse {
	return JoinWaitlistResponse{
		ID:        entry.ID,
		Email:     entry.Email,
		Name:      entry.Name,
		Position:  position,
		CreatedAt: entry.CreatedAt.Format(constants.RFC3339DateTimeFormat),
	}
}
