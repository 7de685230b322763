package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/brewstock/internal/brewfather"
	"github.com/starford/brewstock/internal/credentials"
	"github.com/starford/brewstock/internal/dashboard"
	"github.com/starford/brewstock/internal/inventory"
)

// Handler holds API route handlers.
type Handler struct {
	svc *dashboard.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{svc: svc}
}

// etag quotes a snapshot checksum.
func etag(sum string) string {
	return `"` + sum + `"`
}

func matchesETag(header, sum string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || strings.Trim(candidate, `"`) == sum {
			return true
		}
	}
	return false
}

// Dashboard handles GET /api/dashboard.
//
//	@Summary		Get both inventory tables
//	@Tags			dashboard
//	@Produce		json
//	@Param			If-None-Match	header		string	false	"Checksum of a snapshot the client already has"
//	@Success		200				{object}	DashboardResponse
//	@Success		304				"Not modified"
//	@Failure		428				{object}	errResponse
//	@Failure		502				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, "dashboard", err)
		return
	}
	w.Header().Set("ETag", etag(snap.Checksum))
	if inm := r.Header.Get("If-None-Match"); inm != "" && matchesETag(inm, snap.Checksum) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	resp := DashboardResponse{Snapshot: snap}
	if cur, lastErr := h.svc.Current(); cur == snap && lastErr != nil {
		_, resp.LastError = statusFor(lastErr)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Table handles GET /api/tables/{kind}.
//
//	@Summary		Get one inventory table
//	@Tags			dashboard
//	@Produce		json
//	@Param			kind	path		string	true	"Ingredient kind"	Enums(fermentables, hops)
//	@Success		200		{object}	TableResponse
//	@Failure		400		{object}	errResponse
//	@Failure		428		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tables/{kind} [get]
func (h *Handler) Table(w http.ResponseWriter, r *http.Request) {
	kind, err := inventory.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, "table", err)
		return
	}
	snap, err := h.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, "table", err)
		return
	}
	w.Header().Set("ETag", etag(snap.Checksum))
	writeJSON(w, http.StatusOK, snap.Table(kind))
}

// Refresh handles POST /api/refresh.
//
//	@Summary		Fetch everything from Brewfather again
//	@Tags			dashboard
//	@Produce		json
//	@Success		200	{object}	DashboardResponse
//	@Failure		428	{object}	errResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Refresh(r.Context())
	if err != nil {
		writeError(w, "refresh", err)
		return
	}
	w.Header().Set("ETag", etag(snap.Checksum))
	writeJSON(w, http.StatusOK, DashboardResponse{Snapshot: snap})
}

// Batch handles GET /api/batches/{id}.
//
//	@Summary		Get details of one batch
//	@Tags			batches
//	@Produce		json
//	@Param			id	path		string	true	"Brewfather batch ID"
//	@Success		200	{object}	BatchResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/batches/{id} [get]
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.svc.Batch(r.Context(), id)
	if err != nil {
		writeError(w, "batch", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// GetCredentials handles GET /api/credentials.
//
//	@Summary		Tell whether Brewfather credentials are configured
//	@Tags			credentials
//	@Produce		json
//	@Success		200	{object}	CredentialsResponse
//	@Security		BearerAuth
//	@Router			/credentials [get]
func (h *Handler) GetCredentials(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.CredentialsStatus(r.Context())
	if err != nil {
		writeError(w, "get credentials", err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// PutCredentials handles PUT /api/credentials.
//
//	@Summary		Save Brewfather credentials and reload the dashboard
//	@Tags			credentials
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CredentialsRequest	true	"Credential pair"
//	@Success		200		{object}	CredentialsSaveResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/credentials [put]
func (h *Handler) PutCredentials(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	c := credentials.Credentials{
		UserID: strings.TrimSpace(req.UserID),
		APIKey: strings.TrimSpace(req.APIKey),
	}

	var resp CredentialsSaveResponse
	if _, err := h.svc.SaveCredentials(r.Context(), c); err != nil {
		if !brewfather.IsUpstream(err) {
			writeError(w, "save credentials", err)
			return
		}
		_, resp.RefreshError = statusFor(err)
		slog.Warn("credentials saved but refresh failed", slog.String("error", err.Error()))
	}

	status, err := h.svc.CredentialsStatus(r.Context())
	if err != nil {
		writeError(w, "save credentials", err)
		return
	}
	resp.Credentials = status
	writeJSON(w, http.StatusOK, resp)
}
