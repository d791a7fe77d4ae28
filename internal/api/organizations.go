package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/donations/internal/model"
	"github.com/erazemk/donations/internal/store"
)

// OrganizationsHandler handles organization endpoints.
type OrganizationsHandler struct {
	DB *sql.DB
}

type createOrganizationRequest struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required,oneof='Agency Partner' 'Public Donor' 'Corporate Donor'"`
}

// List handles GET /organization/v1.
func (h *OrganizationsHandler) List(w http.ResponseWriter, r *http.Request) {
	orgType := r.URL.Query().Get("type")
	if orgType != "" && !model.ValidOrganizationType(orgType) {
		jsonError(w, r, http.StatusBadRequest, "invalid organization type")
		return
	}

	orgs, err := store.ListOrganizations(r.Context(), h.DB, orgType)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if orgs == nil {
		orgs = []model.Organization{}
	}
	jsonResponse(w, r, http.StatusOK, orgs)
}

// Create handles POST /organization/v1.
func (h *OrganizationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrganizationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	org, err := store.CreateOrganization(r.Context(), h.DB, req.Name, req.Type)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, r, http.StatusCreated, org)
}
