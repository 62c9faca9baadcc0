package store

import (
	"context"
	"fmt"
	"time"
)

const recentVisitorLimit = 50

// Stats aggregates visitor and contact form activity.
type Stats struct {
	TotalVisitors    int64            `json:"total_visitors"`
	UniqueVisitors   int64            `json:"unique_visitors"`
	VisitorsToday    int64            `json:"visitors_today"`
	VisitorsThisWeek int64            `json:"visitors_this_week"`
	ContactAttempts  map[string]int64 `json:"contact_attempts"`
	RecentVisitors   []Visit          `json:"recent_visitors"`
}

// Stats computes the aggregate view as of now.
func (s *Store) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{ContactAttempts: map[string]int64{}}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE visited_at >= ?`, []any{dayStart.Unix()}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE visited_at >= ?`, []any{weekAgo.Unix()}},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM contact_attempts GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("stats: contact attempts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("stats: contact attempts: %w", err)
		}
		stats.ContactAttempts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stats: contact attempts: %w", err)
	}
	// Release the single connection before the next query.
	rows.Close()

	recent, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), visited_at
		FROM visitors
		ORDER BY visited_at DESC, id DESC
		LIMIT ?`, recentVisitorLimit)
	if err != nil {
		return nil, fmt.Errorf("stats: recent visitors: %w", err)
	}
	defer recent.Close()
	for recent.Next() {
		var v Visit
		var ts int64
		if err := recent.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			return nil, fmt.Errorf("stats: recent visitors: %w", err)
		}
		v.Timestamp = time.Unix(ts, 0).UTC()
		stats.RecentVisitors = append(stats.RecentVisitors, v)
	}
	if err := recent.Err(); err != nil {
		return nil, fmt.Errorf("stats: recent visitors: %w", err)
	}
	return stats, nil
}
