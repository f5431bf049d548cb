package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vilanovax/wibecur-sub000/internal/analytics"
	"github.com/vilanovax/wibecur-sub000/internal/ranking"
	"github.com/vilanovax/wibecur-sub000/internal/report"
	"github.com/vilanovax/wibecur-sub000/internal/rotation"
)

// The tables behind these queries (content_lists, categories,
// engagement_rollups, trending_samples) are owned by the content and
// analytics collaborators; this service only SELECTs from them.

const (
	listCandidatesSQL = `SELECT
        id,
        category_id,
        trending_score,
        save_velocity,
        last_featured_at
    FROM content_lists
    ORDER BY id;`

	listFeaturedEntriesSQL = `SELECT
        c.category_id,
        s.start_at
    FROM featured_slots s
    JOIN content_lists c ON c.id = s.content_id
    WHERE s.start_at >= $1
      AND s.start_at < $2
    ORDER BY s.start_at;`

	listCategoryIDsSQL = `SELECT id FROM categories ORDER BY id;`

	categoryOfSQL = `SELECT
        cat.id,
        cat.name
    FROM content_lists c
    JOIN categories cat ON cat.id = c.category_id
    WHERE c.id = $1;`

	engagementBetweenSQL = `SELECT
        COALESCE(SUM(impressions), 0),
        COALESCE(SUM(clicks), 0),
        COALESCE(SUM(saves), 0)
    FROM engagement_rollups
    WHERE content_id = $1
      AND bucket_ts >= $2
      AND bucket_ts < $3;`

	peakTrendingBetweenSQL = `SELECT COALESCE(MAX(score), 0)
    FROM trending_samples
    WHERE content_id = $1
      AND sampled_at >= $2
      AND sampled_at < $3;`

	contentCreatedAtSQL = `SELECT created_at FROM content_lists WHERE id = $1;`
)

// ListCandidates reads every promotable content list.
func (s *Store) ListCandidates(ctx context.Context) ([]ranking.Candidate, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listCandidatesSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list candidates: %w", queryErr)
	}
	defer rows.Close()

	candidates := make([]ranking.Candidate, 0)
	for rows.Next() {
		var c ranking.Candidate
		if err := rows.Scan(&c.ID, &c.CategoryID, &c.TrendingScore, &c.SaveVelocity, &c.LastFeaturedAt); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return candidates, nil
}

// ListFeaturedEntries returns featuring events whose slot started inside
// [from, to), joined with the category each content list belongs to.
func (s *Store) ListFeaturedEntries(ctx context.Context, from, to time.Time) ([]rotation.FeaturedEntry, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listFeaturedEntriesSQL, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list featured entries: %w", queryErr)
	}
	defer rows.Close()

	entries := make([]rotation.FeaturedEntry, 0)
	for rows.Next() {
		var e rotation.FeaturedEntry
		if err := rows.Scan(&e.CategoryID, &e.StartAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}

// ListCategoryIDs returns every known category id.
func (s *Store) ListCategoryIDs(ctx context.Context) ([]string, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listCategoryIDsSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list categories: %w", queryErr)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return ids, nil
}

// CategoryOf resolves the category a content list belongs to.
func (s *Store) CategoryOf(ctx context.Context, contentID string) (report.Category, error) {
	pool, err := s.getPool()
	if err != nil {
		return report.Category{}, err
	}

	var cat report.Category
	if scanErr := pool.QueryRow(ctx, categoryOfSQL, contentID).Scan(&cat.ID, &cat.Name); scanErr != nil {
		if scanErr == pgx.ErrNoRows {
			return report.Category{}, fmt.Errorf("category of content %s: not found", contentID)
		}
		return report.Category{}, fmt.Errorf("category of content: %w", scanErr)
	}
	return cat, nil
}

// EngagementBetween sums impression, click, and save rollups over a window.
func (s *Store) EngagementBetween(ctx context.Context, contentID string, from, to time.Time) (analytics.EngagementTotals, error) {
	pool, err := s.getPool()
	if err != nil {
		return analytics.EngagementTotals{}, err
	}

	var totals analytics.EngagementTotals
	if scanErr := pool.QueryRow(ctx, engagementBetweenSQL, contentID, from, to).
		Scan(&totals.Impressions, &totals.Clicks, &totals.Saves); scanErr != nil {
		return analytics.EngagementTotals{}, fmt.Errorf("engagement between: %w", scanErr)
	}
	return totals, nil
}

// PeakTrendingBetween returns the highest trending score observed in the
// window, zero when no samples exist.
func (s *Store) PeakTrendingBetween(ctx context.Context, contentID string, from, to time.Time) (float64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	var peak float64
	if scanErr := pool.QueryRow(ctx, peakTrendingBetweenSQL, contentID, from, to).Scan(&peak); scanErr != nil {
		return 0, fmt.Errorf("peak trending between: %w", scanErr)
	}
	return peak, nil
}

// ContentCreatedAt reads the creation instant of a content list.
func (s *Store) ContentCreatedAt(ctx context.Context, contentID string) (time.Time, error) {
	pool, err := s.getPool()
	if err != nil {
		return time.Time{}, err
	}

	var createdAt time.Time
	if scanErr := pool.QueryRow(ctx, contentCreatedAtSQL, contentID).Scan(&createdAt); scanErr != nil {
		if scanErr == pgx.ErrNoRows {
			return time.Time{}, fmt.Errorf("content %s: not found", contentID)
		}
		return time.Time{}, fmt.Errorf("content created at: %w", scanErr)
	}
	return createdAt.UTC(), nil
}

var _ analytics.Source = (*Store)(nil)
var _ report.Directory = (*Store)(nil)
