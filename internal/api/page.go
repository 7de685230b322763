package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/starford/brewstock/internal/apperr"
	"github.com/starford/brewstock/internal/dashboard"
	"github.com/starford/brewstock/internal/render"
)

// PageHandler serves the HTML dashboard at GET /.
func PageHandler(svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := render.Page{Configured: true}

		snap, err := svc.Snapshot(r.Context())
		switch {
		case errors.Is(err, apperr.ErrNoCredentials):
			page.Configured = false
		case err != nil:
			_, page.Error = statusFor(err)
		}
		if snap != nil {
			page.FetchedAt = snap.FetchedAt
			page.Tables = snap.Tables()
			if _, lastErr := svc.Current(); lastErr != nil {
				_, page.Error = statusFor(lastErr)
			}
		}

		var buf bytes.Buffer
		if err := render.WriteHTML(&buf, page); err != nil {
			writeError(w, "render page", err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}
