package handlers

import (
	"net/http"

	"github.com/Werneck0live/pipeline-crm/internal/broker"
	"github.com/Werneck0live/pipeline-crm/internal/models"
	"github.com/Werneck0live/pipeline-crm/internal/utils"
)

// {partnerName} in the applications routes is informational; the client id
// alone addresses the record. {req} is a requirement position or key.

func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("clientId")
	ref := models.ParseItemRef(r.PathValue("req"))

	ctx, cancel := h.ctx(r)
	defer cancel()

	c, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		h.writeError(w, r, "applications_list_failed", err)
		return
	}
	req, _, err := c.Requirement(ref)
	if err != nil {
		h.writeError(w, r, "applications_list_failed", err)
		return
	}
	apps := req.Applications
	if apps == nil {
		apps = []models.Application{}
	}
	utils.WriteJSON(w, http.StatusOK, apps)
}

// SaveApplications replaces one requirement's application list.
func (h *Handler) SaveApplications(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("clientId")
	ref := models.ParseItemRef(r.PathValue("req"))

	var dto ApplicationsSaveDTO
	if err := utils.DecodeStrict(r.Body, &dto); err != nil {
		utils.BadRequest(w, utils.FormatDecodeError(err))
		return
	}
	if err := validateDTO(dto); err != nil {
		h.writeError(w, r, "applications_save_invalid", err)
		return
	}
	if dto.Revision == nil {
		rev, err := utils.ParseRevision(r.Header.Get("If-Match"))
		if err != nil {
			utils.BadRequest(w, "If-Match: invalid revision")
			return
		}
		dto.Revision = rev
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	c, err := h.Clients.SetApplications(ctx, id, ref, dto.Applications, dto.Revision)
	if err != nil {
		h.writeError(w, r, "applications_save_failed", err)
		return
	}
	h.publish(broker.ActionApplicationsUpdated, c.PartnerName, c)
	w.Header().Set("ETag", utils.RevisionETag(c.Revision))
	utils.WriteJSON(w, http.StatusOK, savedResponse{OK: true, Revision: c.Revision})
}
