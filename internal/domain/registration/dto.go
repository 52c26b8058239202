package registration

import "time"

// SubmitRegistrationRequest represents a club filing a registration
type SubmitRegistrationRequest struct {
	PlayerID string `json:"player_id" validate:"required,uuid"`
	League   string `json:"league" validate:"required,min=2,max=10"`
}

// RegistrationResponse represents registration data in responses
type RegistrationResponse struct {
	ID                 string     `json:"id"`
	PlayerID           string     `json:"player_id"`
	ClubID             string     `json:"club_id"`
	League             string     `json:"league"`
	Status             Status     `json:"status"`
	RegistrationNumber *string    `json:"registration_number,omitempty"`
	AssignedAt         *time.Time `json:"assigned_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ReportRefResponse carries a freshly minted report reference
type ReportRefResponse struct {
	Reference string    `json:"reference"`
	MintedAt  time.Time `json:"minted_at"`
}

// RegistrationResponseFromEntity converts entity to response DTO
func RegistrationResponseFromEntity(reg *Registration) *RegistrationResponse {
	resp := &RegistrationResponse{
		ID:        reg.ID.String(),
		PlayerID:  reg.PlayerID.String(),
		ClubID:    reg.ClubID.String(),
		League:    reg.League,
		Status:    reg.Status,
		CreatedAt: reg.CreatedAt,
		UpdatedAt: reg.UpdatedAt,
	}
	if reg.RegistrationNumber.Valid {
		resp.RegistrationNumber = &reg.RegistrationNumber.String
	}
	if reg.AssignedAt.Valid {
		resp.AssignedAt = &reg.AssignedAt.Time
	}
	return resp
}
