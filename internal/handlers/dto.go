package handlers

import (
	"encoding/json"
	"strings"

	"github.com/Werneck0live/pipeline-crm/internal/models"
)

type PartnerCreateDTO struct {
	Name string `json:"name" validate:"required,max=200"`
}

// ClientCreateDTO mirrors models.ClientFields field for field so the two
// convert directly.
type ClientCreateDTO struct {
	StartDate       string `json:"startDate" validate:"max=64"`
	ClientName      string `json:"client" validate:"required,max=500"`
	SPOC            string `json:"spoc" validate:"max=500"`
	Location        string `json:"location" validate:"max=500"`
	Roles           string `json:"roles" validate:"max=2000"`
	EngagementType  string `json:"engagement" validate:"max=200"`
	EngagementOther string `json:"engagementOther" validate:"required_if=EngagementType Others,max=500"`
	CurrentStatus   string `json:"currentStatus" validate:"max=2000"`
	Status          string `json:"status" validate:"max=2000"`
	NextSteps       string `json:"nextSteps" validate:"max=5000"`
	Details         string `json:"details" validate:"max=20000"`
}

// ClientReplaceDTO is a partial or whole client document. Read-only fields a
// caller echoes back from a previous read are accepted and ignored.
type ClientReplaceDTO struct {
	models.ClientPatch

	ID        json.RawMessage `json:"id,omitempty"`
	MongoID   json.RawMessage `json:"_id,omitempty"`
	CreatedAt json.RawMessage `json:"createdAt,omitempty"`
	UpdatedAt json.RawMessage `json:"updatedAt,omitempty"`
	Version   json.RawMessage `json:"__v,omitempty"`
}

// clientPatchLimits carries the create limits over to the supplied fields
// of a replace.
type clientPatchLimits struct {
	PartnerName     *string `json:"partnerName" validate:"omitempty,max=200"`
	StartDate       *string `json:"startDate" validate:"omitempty,max=64"`
	ClientName      *string `json:"client" validate:"omitempty,max=500"`
	SPOC            *string `json:"spoc" validate:"omitempty,max=500"`
	Location        *string `json:"location" validate:"omitempty,max=500"`
	Roles           *string `json:"roles" validate:"omitempty,max=2000"`
	EngagementType  *string `json:"engagement" validate:"omitempty,max=200"`
	EngagementOther *string `json:"engagementOther" validate:"omitempty,max=500"`
	CurrentStatus   *string `json:"currentStatus" validate:"omitempty,max=2000"`
	Status          *string `json:"status" validate:"omitempty,max=2000"`
	NextSteps       *string `json:"nextSteps" validate:"omitempty,max=5000"`
	Details         *string `json:"details" validate:"omitempty,max=20000"`
}

func limitsOf(p models.ClientPatch) clientPatchLimits {
	return clientPatchLimits{
		PartnerName:     p.PartnerName,
		StartDate:       p.StartDate,
		ClientName:      p.ClientName,
		SPOC:            p.SPOC,
		Location:        p.Location,
		Roles:           p.Roles,
		EngagementType:  p.EngagementType,
		EngagementOther: p.EngagementOther,
		CurrentStatus:   p.CurrentStatus,
		Status:          p.Status,
		NextSteps:       p.NextSteps,
		Details:         p.Details,
	}
}

type ApplicationsSaveDTO struct {
	Applications []models.Application `json:"applications" validate:"max=1000"`
	Revision     *int64               `json:"revision,omitempty" validate:"omitempty,min=1"`
}

type savedResponse struct {
	OK       bool  `json:"ok"`
	Revision int64 `json:"revision,omitempty"`
}

// idInBody reports the record id the document claims to be, if any.
func (d ClientReplaceDTO) idInBody() string {
	for _, raw := range []json.RawMessage{d.ID, d.MongoID} {
		var s string
		if len(raw) > 0 && json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
