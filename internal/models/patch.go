package models

import "strings"

// ClientPatch is a partial update of a ClientRecord. Nil fields are left
// untouched by the store; a non-nil Requirements replaces the whole nested
// tree. ExpectedRevision, when set, turns the write into a compare-and-swap.
type ClientPatch struct {
	PartnerName     *string        `json:"partnerName,omitempty"`
	StartDate       *string        `json:"startDate,omitempty"`
	ClientName      *string        `json:"client,omitempty"`
	SPOC            *string        `json:"spoc,omitempty"`
	Location        *string        `json:"location,omitempty"`
	Roles           *string        `json:"roles,omitempty"`
	EngagementType  *string        `json:"engagement,omitempty"`
	EngagementOther *string        `json:"engagementOther,omitempty"`
	CurrentStatus   *string        `json:"currentStatus,omitempty"`
	Status          *string        `json:"status,omitempty"`
	NextSteps       *string        `json:"nextSteps,omitempty"`
	Details         *string        `json:"details,omitempty"`
	Requirements    *[]Requirement `json:"requirements,omitempty"`

	ExpectedRevision *int64 `json:"revision,omitempty"`
}

// FullPatch supplies every field of c, including its requirements and
// revision. It is what a whole-record commit sends.
func FullPatch(c ClientRecord) ClientPatch {
	reqs := c.Clone().Requirements
	rev := c.Revision
	return ClientPatch{
		PartnerName:      &c.PartnerName,
		StartDate:        &c.StartDate,
		ClientName:       &c.ClientName,
		SPOC:             &c.SPOC,
		Location:         &c.Location,
		Roles:            &c.Roles,
		EngagementType:   &c.EngagementType,
		EngagementOther:  &c.EngagementOther,
		CurrentStatus:    &c.CurrentStatus,
		Status:           &c.Status,
		NextSteps:        &c.NextSteps,
		Details:          &c.Details,
		Requirements:     &reqs,
		ExpectedRevision: &rev,
	}
}

// Fields maps the supplied fields to their stored names. Requirements are
// not included; callers handle them separately.
func (p ClientPatch) Fields() map[string]string {
	out := map[string]string{}
	add := func(name string, v *string) {
		if v != nil {
			out[name] = *v
		}
	}
	add("partnerName", p.PartnerName)
	add("startDate", p.StartDate)
	add("client", p.ClientName)
	add("spoc", p.SPOC)
	add("location", p.Location)
	add("roles", p.Roles)
	add("engagement", p.EngagementType)
	add("engagementOther", p.EngagementOther)
	add("currentStatus", p.CurrentStatus)
	add("status", p.Status)
	add("nextSteps", p.NextSteps)
	add("details", p.Details)
	return out
}

func (p ClientPatch) Empty() bool {
	return len(p.Fields()) == 0 && p.Requirements == nil
}

// Normalize is ClientFields.Normalize for the supplied fields. A supplied
// engagement other than "Others" also clears EngagementOther. The patch's
// strings are replaced, never written through.
func (p *ClientPatch) Normalize() {
	for _, f := range []**string{&p.PartnerName, &p.ClientName, &p.SPOC, &p.Location, &p.Roles, &p.EngagementOther, &p.Status, &p.NextSteps, &p.Details} {
		if *f != nil {
			v := strings.TrimSpace(**f)
			*f = &v
		}
	}
	if p.EngagementType != nil && *p.EngagementType != EngagementOthers {
		empty := ""
		p.EngagementOther = &empty
	}
}

// Validate rejects patches that would blank a required field or switch the
// engagement to "Others" without saying what it is.
func (p ClientPatch) Validate() error {
	if p.ClientName != nil && trimmedEmpty(*p.ClientName) {
		return Invalid("client", "client name cannot be empty")
	}
	if p.PartnerName != nil && trimmedEmpty(*p.PartnerName) {
		return Invalid("partnerName", "partner name cannot be empty")
	}
	if p.EngagementType != nil && *p.EngagementType == EngagementOthers &&
		(p.EngagementOther == nil || trimmedEmpty(*p.EngagementOther)) {
		return Invalid("engagementOther", "engagement type is required for Others")
	}
	return nil
}

// ApplyTo copies the supplied fields onto c. Used by stores without a
// native partial update.
func (p ClientPatch) ApplyTo(c *ClientRecord) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.PartnerName, p.PartnerName)
	set(&c.StartDate, p.StartDate)
	set(&c.ClientName, p.ClientName)
	set(&c.SPOC, p.SPOC)
	set(&c.Location, p.Location)
	set(&c.Roles, p.Roles)
	set(&c.EngagementType, p.EngagementType)
	set(&c.EngagementOther, p.EngagementOther)
	set(&c.CurrentStatus, p.CurrentStatus)
	set(&c.Status, p.Status)
	set(&c.NextSteps, p.NextSteps)
	set(&c.Details, p.Details)
	if p.Requirements != nil {
		c.Requirements = cloneRequirements(*p.Requirements)
	}
}
