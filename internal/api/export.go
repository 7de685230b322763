package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/starford/brewstock/internal/render"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export handles GET /api/export.xlsx.
//
//	@Summary		Download both tables as a spreadsheet
//	@Tags			dashboard
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Success		200	{file}		binary
//	@Failure		428	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/export.xlsx [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, "export", err)
		return
	}

	// Render fully before writing headers so a failure can still become a 500.
	var buf bytes.Buffer
	if err := render.WriteWorkbook(&buf, snap.Tables()...); err != nil {
		writeError(w, "export", err)
		return
	}

	name := fmt.Sprintf("brewstock-%s.xlsx", snap.FetchedAt.Format("20060102-150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("ETag", etag(snap.Checksum))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
