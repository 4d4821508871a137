package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"vanguard-backend/internal/api"
	"vanguard-backend/internal/constants"
	"vanguard-backend/internal/domain"
	"vanguard-backend/internal/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	facetKeyPrefix = "facet:"
	genresKey      = "genres"
)

// FacetService incrementally builds the genre facet index from the
// storefront, a bounded slice of the library per scan, paced in small
// batches to stay inside the storefront rate limit.
type FacetService struct {
	sf     Storefront
	store  store.Store
	logger zerolog.Logger
	delay  time.Duration
	busy   atomic.Bool
}

func NewFacetService(sf Storefront, st store.Store, logger zerolog.Logger) *FacetService {
	return &FacetService{sf: sf, store: st, logger: logger, delay: constants.FacetBatchDelay}
}

type ScanReport struct {
	RunID          string `json:"run_id,omitempty"`
	AlreadyRunning bool   `json:"already_running"`
	Candidates     int    `json:"candidates"`
	Cached         int    `json:"cached"`
	Failed         int    `json:"failed"`
}

// Scan processes up to FacetScanLimit uncached games in batches of
// FacetBatchSize, persisting each game's entry the moment it succeeds so
// an interrupted scan loses nothing. Single-flight per process: a scan
// already in progress makes a second call report AlreadyRunning.
func (s *FacetService) Scan(ctx context.Context, games []domain.Game) (*ScanReport, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return &ScanReport{AlreadyRunning: true}, nil
	}
	defer s.busy.Store(false)

	runID, err := gonanoid.New()
	if err != nil {
		runID = "scan"
	}
	log := s.logger.With().Str("scan_id", runID).Logger()

	cached, err := s.store.ListByPrefix(ctx, facetKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list facet cache: %w", err)
	}

	var candidates []int64
	for _, g := range games {
		if _, ok := cached[facetKey(g.AppID)]; !ok {
			candidates = append(candidates, g.AppID)
		}
	}
	if len(candidates) > constants.FacetScanLimit {
		candidates = candidates[:constants.FacetScanLimit]
	}

	genreSet := make(map[string]struct{})
	for _, genre := range s.AvailableGenres(ctx) {
		genreSet[genre] = struct{}{}
	}

	report := &ScanReport{RunID: runID, Candidates: len(candidates)}
	var mu sync.Mutex

	log.Info().Int("candidates", len(candidates)).Msg("facet scan started")

	for i := 0; i < len(candidates); i += constants.FacetBatchSize {
		end := i + constants.FacetBatchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		g, gCtx := errgroup.WithContext(ctx)
		for _, appID := range candidates[i:end] {
			g.Go(func() error {
				details, err := s.sf.GetAppDetails(gCtx, appID)
				if err != nil {
					// Skipped silently; the game stays uncached and is
					// retried on a future scan.
					log.Debug().Err(err).Int64("app_id", appID).Msg("storefront fetch failed")
					mu.Lock()
					report.Failed++
					mu.Unlock()
					return nil
				}

				entry := domain.FacetEntry{
					Genres:          tagDescriptions(details.Genres),
					Categories:      tagDescriptions(details.Categories),
					MetacriticScore: details.Metacritic.Score,
					ReleaseDate:     details.ReleaseDate.Date,
				}

				if err := store.SetJSON(gCtx, s.store, facetKey(appID), entry); err != nil {
					log.Warn().Err(err).Int64("app_id", appID).Msg("failed to persist facet entry")
					mu.Lock()
					report.Failed++
					mu.Unlock()
					return nil
				}

				mu.Lock()
				report.Cached++
				for _, genre := range entry.Genres {
					genreSet[genre] = struct{}{}
				}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		if end < len(candidates) {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	genres := make([]string, 0, len(genreSet))
	for genre := range genreSet {
		genres = append(genres, genre)
	}
	sort.Strings(genres)
	if err := store.SetJSON(ctx, s.store, genresKey, genres); err != nil {
		log.Warn().Err(err).Msg("failed to persist available genres")
	}

	log.Info().Int("cached", report.Cached).Int("failed", report.Failed).Msg("facet scan finished")
	return report, nil
}

// AvailableGenres loads the persisted genre union. It may lag the true
// union of cached entries until a rescan completes.
func (s *FacetService) AvailableGenres(ctx context.Context) []string {
	genres, _ := store.GetJSON[[]string](ctx, s.store, s.logger, genresKey)
	return genres
}

// Entries loads every cached facet entry, skipping corrupt blobs.
func (s *FacetService) Entries(ctx context.Context) map[int64]domain.FacetEntry {
	raw, err := s.store.ListByPrefix(ctx, facetKeyPrefix)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list facet cache")
		return nil
	}

	out := make(map[int64]domain.FacetEntry, len(raw))
	for key := range raw {
		appID, err := strconv.ParseInt(strings.TrimPrefix(key, facetKeyPrefix), 10, 64)
		if err != nil {
			continue
		}
		if entry, ok := store.GetJSON[domain.FacetEntry](ctx, s.store, s.logger, key); ok {
			out[appID] = entry
		}
	}
	return out
}

func facetKey(appID int64) string {
	return fmt.Sprintf("%s%d", facetKeyPrefix, appID)
}

func tagDescriptions(tags []api.AppTag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Description)
	}
	return out
}
