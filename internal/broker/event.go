package broker

import "time"

const (
	ActionPartnerCreated      = "partner.created"
	ActionClientCreated       = "client.created"
	ActionClientUpdated       = "client.updated"
	ActionClientDeleted       = "client.deleted"
	ActionApplicationsUpdated = "applications.updated"
)

// Event announces a stored change so other sessions can tell their working
// copies are stale. Revision is the record revision after the change.
type Event struct {
	Action      string    `json:"action"`
	ClientID    string    `json:"clientId,omitempty"`
	PartnerName string    `json:"partnerName"`
	Revision    int64     `json:"revision,omitempty"`
	At          time.Time `json:"at"`
}
