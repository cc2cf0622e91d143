package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Stats returns row counts, the detection confidence average and the most
// recent run.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	var (
		stats Stats
		avg   sql.NullFloat64
		exact sql.NullInt64
		first sql.NullString
		last  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT
        (SELECT COUNT(1) FROM channels),
        (SELECT COUNT(1) FROM spots),
        (SELECT COUNT(1) FROM recordings),
        (SELECT COUNT(1) FROM detections),
        (SELECT SUM(CASE WHEN kind = 'exact' THEN 1 ELSE 0 END) FROM detections),
        (SELECT AVG(confidence) FROM detections),
        (SELECT MIN(recorded_on) FROM recordings),
        (SELECT MAX(recorded_on) FROM recordings)`,
	).Scan(&stats.Channels, &stats.Spots, &stats.Recordings, &stats.Detections, &exact, &avg, &first, &last)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	stats.ExactDetections = int(exact.Int64)
	stats.FuzzyDetections = stats.Detections - stats.ExactDetections
	stats.AverageConfidence = avg.Float64
	stats.FirstRecording = first.String
	stats.LastRecording = last.String

	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		return Stats{}, err
	}
	if len(runs) > 0 {
		stats.LastRun = &runs[0]
	}
	return stats, nil
}
