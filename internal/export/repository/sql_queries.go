package repository

const (
	createExportsTableQuery = `CREATE TABLE IF NOT EXISTS video_exports (
									job_id          TEXT PRIMARY KEY,
									presentation_id TEXT NOT NULL,
									status          TEXT NOT NULL,
									total_slides    INTEGER NOT NULL DEFAULT 0,
									error           TEXT NOT NULL DEFAULT '',
									video_url       TEXT NOT NULL DEFAULT '',
									created_at      TIMESTAMPTZ NOT NULL,
									completed_at    TIMESTAMPTZ NOT NULL
								)`
	createExportsIndexQuery = `CREATE INDEX IF NOT EXISTS video_exports_presentation_idx
									ON video_exports (presentation_id, completed_at DESC)`
	upsertExportQuery = `INSERT INTO video_exports (job_id, presentation_id, status, total_slides, error, video_url, created_at, completed_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
					ON CONFLICT (job_id) DO UPDATE
					SET status = EXCLUDED.status,
					    total_slides = EXCLUDED.total_slides,
					    error = EXCLUDED.error,
					    video_url = EXCLUDED.video_url,
					    completed_at = EXCLUDED.completed_at`
	countExportsQuery = `SELECT COUNT(*) FROM video_exports WHERE presentation_id = $1`
	listExportsQuery  = `SELECT job_id, presentation_id, status, total_slides, error, video_url, created_at, completed_at
					FROM video_exports WHERE presentation_id = $1 ORDER BY completed_at DESC LIMIT $2 OFFSET $3`
)
