package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/pulseboard/pulseboard/internal/activity"
	"github.com/pulseboard/pulseboard/internal/api/respond"
	"github.com/pulseboard/pulseboard/internal/model"
	"github.com/pulseboard/pulseboard/internal/services"
)

const defaultPageSize = 50

type ActivityHandler struct {
	svc *services.ActivityService
}

func NewActivityHandler(svc *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

type activitiesResponse struct {
	Activities []model.ResolvedActivity `json:"activities"`
	Total      int                      `json:"total"`
	Degraded   []model.Source           `json:"degradedSources,omitempty"`
}

// ListActivities handles GET /api/activities.
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	req, err := parseListRequest(r)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs, total, report := h.svc.List(r.Context(), req)
	writeActivities(w, recs, total, report)
}

// MemberActivities handles GET /api/members/{memberId}/activities.
func (h *ActivityHandler) MemberActivities(w http.ResponseWriter, r *http.Request) {
	req, err := parseListRequest(r)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs, total, report, err := h.svc.ListForMember(r.Context(), mux.Vars(r)["memberId"], req)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	writeActivities(w, recs, total, report)
}

// Resolve handles GET /api/resolve?source=...&id=..., the forward-lookup
// debug endpoint.
func (h *ActivityHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	src := model.Source(r.URL.Query().Get("source"))
	raw := r.URL.Query().Get("id")
	if !model.IsIdentifierSource(src) {
		respond.WriteError(w, http.StatusBadRequest, "source must be one of github, slack, notion, drive")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{
		"source":     string(src),
		"identifier": raw,
		"memberName": h.svc.Resolve(r.Context(), src, raw),
	})
}

func writeActivities(w http.ResponseWriter, recs []model.ResolvedActivity, total int, report activity.Report) {
	if recs == nil {
		recs = []model.ResolvedActivity{}
	}
	respond.WriteJSON(w, http.StatusOK, activitiesResponse{
		Activities: recs,
		Total:      total,
		Degraded:   report.Degraded(),
	})
}

func parseListRequest(r *http.Request) (model.ListActivitiesRequest, error) {
	q := r.URL.Query()
	req := model.ListActivitiesRequest{
		MemberName: q.Get("member"),
		Limit:      defaultPageSize,
	}

	if raw := q.Get("sources"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			src := model.Source(strings.TrimSpace(s))
			if !model.IsActivitySource(src) {
				return req, &badParamError{"sources", s}
			}
			req.Sources = append(req.Sources, src)
		}
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return req, &badParamError{"limit", raw}
		}
		req.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return req, &badParamError{"offset", raw}
		}
		req.Offset = n
	}
	var err error
	if req.From, err = parseTimeParam(q.Get("from")); err != nil {
		return req, err
	}
	if req.To, err = parseTimeParam(q.Get("to")); err != nil {
		return req, err
	}
	return req, nil
}

func parseTimeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, &badParamError{"time", raw}
}

type badParamError struct{ param, value string }

func (e *badParamError) Error() string { return "invalid " + e.param + ": " + e.value }
