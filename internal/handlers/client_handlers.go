package handlers

import (
	"net/http"
	"strings"

	"github.com/Werneck0live/pipeline-crm/internal/broker"
	"github.com/Werneck0live/pipeline-crm/internal/models"
	"github.com/Werneck0live/pipeline-crm/internal/utils"
)

// ListClients returns the partner's clients, newest first. The partner
// name is matched exactly as given in the path.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	partnerName := r.PathValue("partnerName")

	ctx, cancel := h.ctx(r)
	defer cancel()

	list, err := h.Clients.ListForPartner(ctx, partnerName)
	if err != nil {
		h.writeError(w, r, "clients_list_failed", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	partnerName := strings.TrimSpace(r.PathValue("partnerName"))
	if partnerName == "" {
		utils.BadRequest(w, "partnerName: partner name is required")
		return
	}

	var dto ClientCreateDTO
	if err := utils.DecodeStrict(r.Body, &dto); err != nil {
		utils.BadRequest(w, utils.FormatDecodeError(err))
		return
	}
	f := models.ClientFields(dto)
	f.Normalize()
	if err := validateDTO(ClientCreateDTO(f)); err != nil {
		h.writeError(w, r, "client_create_invalid", err)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	c, err := h.Clients.Create(ctx, partnerName, f)
	if err != nil {
		h.writeError(w, r, "client_create_failed", err)
		return
	}
	h.logger().Info("client_created", "id", c.ID, "partner", c.PartnerName)
	h.publish(broker.ActionClientCreated, c.PartnerName, c)
	w.Header().Set("ETag", utils.RevisionETag(c.Revision))
	utils.WriteJSON(w, http.StatusCreated, c)
}

// ReplaceClient writes the supplied fields of the body. Omitted fields keep
// their stored values; a supplied requirements array replaces the whole
// nested tree. The revision comes from the body or from If-Match; without
// either the write is unconditional.
func (h *Handler) ReplaceClient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var dto ClientReplaceDTO
	if err := utils.DecodeStrict(r.Body, &dto); err != nil {
		utils.BadRequest(w, utils.FormatDecodeError(err))
		return
	}
	if bodyID := dto.idInBody(); bodyID != "" && bodyID != id {
		utils.BadRequest(w, "id in body must match the resource id in path")
		return
	}

	patch := dto.ClientPatch
	if patch.ExpectedRevision == nil {
		rev, err := utils.ParseRevision(r.Header.Get("If-Match"))
		if err != nil {
			utils.BadRequest(w, "If-Match: invalid revision")
			return
		}
		patch.ExpectedRevision = rev
	}
	if patch.ExpectedRevision != nil && *patch.ExpectedRevision < 1 {
		utils.BadRequest(w, "revision: must be at least 1")
		return
	}
	patch.Normalize()
	if err := validateDTO(limitsOf(patch)); err != nil {
		h.writeError(w, r, "client_replace_invalid", err)
		return
	}
	if err := patch.Validate(); err != nil {
		h.writeError(w, r, "client_replace_invalid", err)
		return
	}
	if patch.ExpectedRevision == nil {
		h.logger().Info("client_replace_unconditional", "id", id)
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	c, err := h.Clients.Replace(ctx, id, patch)
	if err != nil {
		event := "client_replace_failed"
		if HTTPStatus(err) == http.StatusConflict {
			event = "client_replace_conflict"
		}
		h.writeError(w, r, event, err)
		return
	}
	h.publish(broker.ActionClientUpdated, c.PartnerName, c)
	w.Header().Set("ETag", utils.RevisionETag(c.Revision))
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ctx, cancel := h.ctx(r)
	defer cancel()

	// fetched first so the event can name the partner
	c, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		h.writeError(w, r, "client_delete_failed", err)
		return
	}
	if err := h.Clients.Delete(ctx, id); err != nil {
		h.writeError(w, r, "client_delete_failed", err)
		return
	}
	h.logger().Info("client_deleted", "id", id, "partner", c.PartnerName)
	h.publish(broker.ActionClientDeleted, c.PartnerName, c)
	utils.WriteJSON(w, http.StatusOK, savedResponse{OK: true})
}
