package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/starford/brewstock/internal/brewfather"
	"github.com/starford/brewstock/internal/credentials"
	"github.com/starford/brewstock/internal/inventory"
	"github.com/starford/brewstock/internal/mcpserver"
	"github.com/starford/brewstock/internal/render"
	"github.com/starford/brewstock/internal/report"
)

// Report output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// KindAll selects both tables in Report.
const KindAll = "all"

// Report fetches everything once and writes the selected tables to w.
func Report(ctx context.Context, w io.Writer, kind, format string, opts ...Option) error {
	kinds := inventory.Kinds
	if kind != KindAll && kind != "" {
		k, err := inventory.ParseKind(kind)
		if err != nil {
			return err
		}
		kinds = []inventory.Kind{k}
	}
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("unknown format %q (want %s or %s)", format, FormatText, FormatJSON)
	}

	c, err := start(opts)
	if err != nil {
		return err
	}
	defer c.close()

	snap, err := c.svc.Refresh(ctx)
	if err != nil {
		return err
	}
	tables := make([]report.Table, 0, len(kinds))
	for _, k := range kinds {
		tables = append(tables, snap.Table(k))
	}

	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(tables) == 1 {
			return enc.Encode(tables[0])
		}
		return enc.Encode(snap)
	}
	return render.WriteText(w, tables...)
}

// Export fetches everything once and writes both tables to an XLSX file.
func Export(ctx context.Context, out string, opts ...Option) error {
	c, err := start(opts)
	if err != nil {
		return err
	}
	defer c.close()

	snap, err := c.svc.Refresh(ctx)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: mkdir: %w", err)
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := render.WriteWorkbook(f, snap.Tables()...); err != nil {
		_ = f.Close()
		_ = os.Remove(out)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	c.logger.Info("workbook exported", slog.String("path", out), slog.String("checksum", snap.Checksum))
	return nil
}

// SetCredentials validates and stores a credential pair, then checks it
// against Brewfather. The pair is kept even if the check fails.
func SetCredentials(ctx context.Context, w io.Writer, creds credentials.Credentials, opts ...Option) error {
	c, err := start(opts)
	if err != nil {
		return err
	}
	defer c.close()

	if err := creds.Validate(); err != nil {
		return fmt.Errorf("credentials: %w", err)
	}
	snap, err := c.svc.SaveCredentials(ctx, creds)
	switch {
	case brewfather.IsUpstream(err):
		_, err = fmt.Fprintf(w, "credentials saved, but loading the dashboard failed: %v\n", err)
		return err
	case err != nil:
		return err
	}
	_, err = fmt.Fprintf(w, "credentials saved; %d planned batches found\n", len(snap.Batches))
	return err
}

// ShowCredentials prints the stored user ID and the masked API key.
func ShowCredentials(ctx context.Context, w io.Writer, opts ...Option) error {
	c, err := start(opts)
	if err != nil {
		return err
	}
	defer c.close()

	status, err := c.svc.CredentialsStatus(ctx)
	if err != nil {
		return err
	}
	if !status.Configured {
		_, err = fmt.Fprintln(w, "credentials not configured")
		return err
	}
	_, err = fmt.Fprintf(w, "user_id: %s\napi_key: %s\n", status.UserID, status.APIKey)
	return err
}

// ShowBatch prints the details of one batch.
func ShowBatch(ctx context.Context, w io.Writer, id string, opts ...Option) error {
	c, err := start(opts)
	if err != nil {
		return err
	}
	defer c.close()

	d, err := c.svc.Batch(ctx, id)
	if err != nil {
		return err
	}
	return writeBatch(w, d)
}

func writeBatch(w io.Writer, d *brewfather.BatchDetail) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Batch\t%d - %s\n", d.Number, d.Name)
	fmt.Fprintf(tw, "Status\t%s\n", d.Status)
	fmt.Fprintf(tw, "Style\t%s\n", d.Style)
	fmt.Fprintf(tw, "OG\t%s\n", optional(d.OriginalGravity, " °P"))
	fmt.Fprintf(tw, "FG\t%s\n", optional(d.FinalGravity, " °P"))
	fmt.Fprintf(tw, "ABV\t%s\n", optional(d.ABV, "%"))
	fmt.Fprintf(tw, "IBU\t%s\n", optional(d.IBU, ""))
	return tw.Flush()
}

func optional(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + unit
}

// ServeMCP runs the MCP server on stdin/stdout until the client disconnects.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := app.bootstrap()
	if err != nil {
		return err
	}
	defer c.close()

	c.logger.Info("MCP server starting on stdio")
	return mcpserver.New(c.svc, app.version).ServeStdio()
}

func start(opts []Option) (*components, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	return app.bootstrap()
}
