package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pulseboard/pulseboard/internal/api/respond"
	"github.com/pulseboard/pulseboard/internal/model"
	"github.com/pulseboard/pulseboard/internal/services"
)

type MemberHandler struct {
	svc *services.MemberService
}

func NewMemberHandler(svc *services.MemberService) *MemberHandler { return &MemberHandler{svc: svc} }

func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string  `json:"name"`
		Role *string `json:"role,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	out, err := h.svc.CreateMember(r.Context(), &model.Member{Name: in.Name, Role: in.Role})
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	memberID := mux.Vars(r)["memberId"]
	out, err := h.svc.GetMember(r.Context(), memberID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListMembers(r.Context())
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"members": out, "count": len(out)})
}

func (h *MemberHandler) RenameMember(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	out, err := h.svc.RenameMember(r.Context(), mux.Vars(r)["memberId"], in.Name)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *MemberHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteMember(r.Context(), mux.Vars(r)["memberId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MemberHandler) ListIdentifiers(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListIdentifiers(r.Context(), mux.Vars(r)["memberId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"identifiers": out, "count": len(out)})
}

func (h *MemberHandler) AddIdentifier(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Source model.Source `json:"source"`
		Type   string       `json:"type"`
		Value  string       `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	out, err := h.svc.AddIdentifier(r.Context(), mux.Vars(r)["memberId"], in.Source, in.Type, in.Value)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

func (h *MemberHandler) UpdateIdentifier(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Source model.Source `json:"source"`
		Type   string       `json:"type"`
		Value  string       `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	out, err := h.svc.UpdateIdentifier(r.Context(), mux.Vars(r)["memberId"], in.Source, in.Type, in.Value)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *MemberHandler) DeleteIdentifier(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteIdentifier(r.Context(), mux.Vars(r)["identifierId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
