package model

import "time"

// Organization is a partner agency or donor that users belong to.
type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// Organization types.
const (
	OrganizationTypeAgency    = "Agency Partner"
	OrganizationTypePublic    = "Public Donor"
	OrganizationTypeCorporate = "Corporate Donor"
)

// ValidOrganizationType reports whether t is a known organization type.
func ValidOrganizationType(t string) bool {
	switch t {
	case OrganizationTypeAgency, OrganizationTypePublic, OrganizationTypeCorporate:
		return true
	}
	return false
}
