// Package dashboard coordinates credentials, the Brewfather client and the
// report builder, and keeps the last good snapshot.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/brewstock/internal/apperr"
	"github.com/starford/brewstock/internal/brewfather"
	"github.com/starford/brewstock/internal/checksum"
	"github.com/starford/brewstock/internal/credentials"
	"github.com/starford/brewstock/internal/inventory"
	"github.com/starford/brewstock/internal/metrics"
	"github.com/starford/brewstock/internal/report"
)

// Source is the remote inventory API as seen by the service.
type Source interface {
	Fermentables(ctx context.Context) ([]inventory.RawItem, error)
	Hops(ctx context.Context) ([]inventory.RawItem, error)
	Batches(ctx context.Context) ([]inventory.RawBatch, error)
	Batch(ctx context.Context, id string) (*brewfather.BatchDetail, error)
}

// SourceFactory builds a Source for a credential pair.
type SourceFactory func(credentials.Credentials) Source

// BrewfatherSource returns a factory producing Brewfather clients.
func BrewfatherSource(opts brewfather.Options) SourceFactory {
	return func(c credentials.Credentials) Source {
		return brewfather.New(c, opts)
	}
}

// BatchSummary identifies an in-scope batch.
type BatchSummary struct {
	Number int    `json:"batchNo"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Snapshot is one complete, consistent dashboard computation.
type Snapshot struct {
	Fermentables report.Table   `json:"fermentables"`
	Hops         report.Table   `json:"hops"`
	Batches      []BatchSummary `json:"batches"`
	FetchedAt    time.Time      `json:"fetchedAt"`
	Checksum     string         `json:"checksum"`
}

// Table returns the table for kind.
func (s *Snapshot) Table(kind inventory.Kind) report.Table {
	if kind == inventory.KindHops {
		return s.Hops
	}
	return s.Fermentables
}

// Tables returns both tables in dashboard order.
func (s *Snapshot) Tables() []report.Table {
	return []report.Table{s.Fermentables, s.Hops}
}

// Listener is notified after every refresh attempt. snap is non-nil only
// when the content changed; err is non-nil when the attempt failed.
type Listener func(snap *Snapshot, err error)

// CredentialsStatus tells whether credentials are configured.
type CredentialsStatus struct {
	Configured bool   `json:"configured"`
	UserID     string `json:"userId,omitempty"`
	APIKey     string `json:"apiKey,omitempty"`
}

// Service owns the current snapshot.
type Service struct {
	store     credentials.Store
	newSource SourceFactory
	logger    *slog.Logger
	metrics   *metrics.Metrics

	refreshMu sync.Mutex

	mu        sync.RWMutex
	snapshot  *Snapshot
	lastErr   error
	listeners []Listener
}

// NewService creates a dashboard service. m may be nil.
func NewService(store credentials.Store, newSource SourceFactory, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, newSource: newSource, logger: logger, metrics: m}
}

// Subscribe registers a listener. Listeners run synchronously and must not block.
func (s *Service) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Current returns the last good snapshot (nil if none) and the error of the
// most recent refresh attempt.
func (s *Service) Current() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.lastErr
}

// Snapshot returns the cached snapshot, refreshing first if there is none.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap, _ := s.Current(); snap != nil {
		return snap, nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches everything again and rebuilds both tables. On failure the
// previous snapshot stays current.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	snap, err := s.compute(ctx)
	s.metrics.ObserveRefresh(err)

	s.mu.Lock()
	prev := s.snapshot
	s.lastErr = err
	changed := false
	if err == nil {
		changed = prev == nil || prev.Checksum != snap.Checksum
		s.snapshot = snap
	}
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("dashboard refresh failed", slog.String("error", err.Error()))
	} else {
		s.logger.Debug("dashboard refreshed",
			slog.String("checksum", snap.Checksum),
			slog.Bool("changed", changed),
			slog.Int("batches", len(snap.Batches)))
	}

	for _, l := range listeners {
		switch {
		case err != nil:
			l(nil, err)
		case changed:
			l(snap, nil)
		}
	}

	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Service) compute(ctx context.Context) (*Snapshot, error) {
	creds, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	src := s.newSource(creds)

	var (
		fermentables []inventory.RawItem
		hops         []inventory.RawItem
		batches      []inventory.RawBatch
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		batches, err = src.Batches(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		fermentables, err = src.Fermentables(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		hops, err = src.Hops(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Fermentables: report.Build(inventory.KindFermentables, fermentables, batches),
		Hops:         report.Build(inventory.KindHops, hops, batches),
		Batches:      make([]BatchSummary, 0, len(batches)),
		FetchedAt:    time.Now().UTC(),
	}
	for _, b := range batches {
		snap.Batches = append(snap.Batches, BatchSummary{Number: b.Number, Name: b.Name, Status: b.Status})
	}
	sum, err := checksum.SumJSON(struct {
		Fermentables report.Table
		Hops         report.Table
		Batches      []BatchSummary
	}{snap.Fermentables, snap.Hops, snap.Batches})
	if err != nil {
		return nil, err
	}
	snap.Checksum = sum
	return snap, nil
}

// SaveCredentials stores a new credential pair and refreshes with it. The
// pair stays saved even when the follow-up refresh fails.
func (s *Service) SaveCredentials(ctx context.Context, c credentials.Credentials) (*Snapshot, error) {
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("credentials saved", slog.String("user_id", c.UserID))
	return s.Refresh(ctx)
}

// CredentialsStatus reports whether credentials are configured, with the key masked.
func (s *Service) CredentialsStatus(ctx context.Context) (CredentialsStatus, error) {
	c, err := s.store.Load(ctx)
	if errors.Is(err, apperr.ErrNoCredentials) {
		return CredentialsStatus{}, nil
	}
	if err != nil {
		return CredentialsStatus{}, err
	}
	return CredentialsStatus{Configured: true, UserID: c.UserID, APIKey: c.Masked()}, nil
}

// Batch fetches details of one batch.
func (s *Service) Batch(ctx context.Context, id string) (*brewfather.BatchDetail, error) {
	creds, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	d, err := s.newSource(creds).Batch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", id, err)
	}
	return d, nil
}

// Run refreshes every interval until ctx is cancelled. A non-positive
// interval disables periodic refreshes.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		<-ctx.Done()
		return
	}
	s.logger.Info("refresher: started", slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("refresher: stopped")
			return
		case <-ticker.C:
			_, _ = s.Refresh(ctx)
		}
	}
}
