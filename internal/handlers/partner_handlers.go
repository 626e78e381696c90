package handlers

import (
	"net/http"
	"strings"

	"github.com/Werneck0live/pipeline-crm/internal/broker"
	"github.com/Werneck0live/pipeline-crm/internal/utils"
)

// ListPartners returns the directory sorted by name. An empty directory
// falls back to the partner names found on client records.
func (h *Handler) ListPartners(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	list, err := h.Partners.List(ctx)
	if err != nil {
		h.writeError(w, r, "partners_list_failed", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

// CreatePartner is idempotent: 201 when the name is new, 200 with the
// existing partner otherwise.
func (h *Handler) CreatePartner(w http.ResponseWriter, r *http.Request) {
	var dto PartnerCreateDTO
	if err := utils.DecodeStrict(r.Body, &dto); err != nil {
		utils.BadRequest(w, utils.FormatDecodeError(err))
		return
	}
	dto.Name = strings.TrimSpace(dto.Name)
	if err := validateDTO(dto); err != nil {
		h.writeError(w, r, "partner_create_invalid", err)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	p, created, err := h.Partners.GetOrCreate(ctx, dto.Name)
	if err != nil {
		h.writeError(w, r, "partner_create_failed", err)
		return
	}
	if !created {
		utils.WriteJSON(w, http.StatusOK, p)
		return
	}
	h.logger().Info("partner_created", "name", p.Name, "id", p.ID)
	h.publish(broker.ActionPartnerCreated, p.Name, nil)
	utils.WriteJSON(w, http.StatusCreated, p)
}
