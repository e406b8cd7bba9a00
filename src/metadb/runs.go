package metadb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	RUN_STATUS_RUNNING   = "RUNNING"
	RUN_STATUS_COMPLETED = "COMPLETED"
	RUN_STATUS_FAILED    = "FAILED"
)

// RunRecord is one anonymize invocation against a state dir. The salt itself
// is never part of it, only its fingerprint.
type RunRecord struct {
	RunId           string
	StartedAt       time.Time
	FinishedAt      time.Time // zero while running
	Input           string
	Output          string
	Locale          string
	SaltFingerprint string
	ColumnConfig    map[string]string
	RowsProcessed   int64
	Status          string
}

func NewRunId() string {
	return uuid.New().String()
}

// StartRun inserts r with status RUNNING. An empty RunId is filled in.
func (m *MetaDB) StartRun(r *RunRecord) error {
	if r.RunId == "" {
		r.RunId = NewRunId()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	r.Status = RUN_STATUS_RUNNING
	columnConfig, err := json.Marshal(r.ColumnConfig)
	if err != nil {
		return fmt.Errorf("error while marshalling column config: %w", err)
	}
	query := fmt.Sprintf(`INSERT INTO %s
		(run_id, started_at, input, output, locale, salt_fingerprint, column_config, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, RUNS_TABLE_NAME)
	_, err = m.db.Exec(query, r.RunId, r.StartedAt.Unix(), r.Input, r.Output, r.Locale,
		r.SaltFingerprint, string(columnConfig), r.Status)
	if err != nil {
		return fmt.Errorf("error while running query on meta db - %s :%w", query, err)
	}
	log.Infof("started run %s", r.RunId)
	return nil
}

func (m *MetaDB) FinishRun(runId string, status string, rowsProcessed int64) error {
	query := fmt.Sprintf(`UPDATE %s SET finished_at = ?, status = ?, rows_processed = ? WHERE run_id = ?`, RUNS_TABLE_NAME)
	result, err := m.db.Exec(query, time.Now().Unix(), status, rowsProcessed, runId)
	if err != nil {
		return fmt.Errorf("error while running query on meta db - %s :%w", query, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error while getting rows updated -%s :%w", query, err)
	}
	if rowsAffected != 1 {
		return fmt.Errorf("expected 1 run to be updated for %s, got %d", runId, rowsAffected)
	}
	log.Infof("finished run %s: %s, %d rows", runId, status, rowsProcessed)
	return nil
}

// ListRuns returns every recorded run, oldest first.
func (m *MetaDB) ListRuns() ([]*RunRecord, error) {
	query := fmt.Sprintf(`SELECT run_id, started_at, finished_at, input, output, locale,
		salt_fingerprint, column_config, rows_processed, status FROM %s ORDER BY started_at, run_id`, RUNS_TABLE_NAME)
	rows, err := m.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error while running query on meta db - %s :%w", query, err)
	}
	defer rows.Close()

	var runs []*RunRecord
	for rows.Next() {
		var r RunRecord
		var startedAt int64
		var finishedAt sql.NullInt64
		var columnConfig string
		err := rows.Scan(&r.RunId, &startedAt, &finishedAt, &r.Input, &r.Output, &r.Locale,
			&r.SaltFingerprint, &columnConfig, &r.RowsProcessed, &r.Status)
		if err != nil {
			return nil, fmt.Errorf("error while scanning run: %w", err)
		}
		r.StartedAt = time.Unix(startedAt, 0)
		if finishedAt.Valid {
			r.FinishedAt = time.Unix(finishedAt.Int64, 0)
		}
		if err := json.Unmarshal([]byte(columnConfig), &r.ColumnConfig); err != nil {
			return nil, fmt.Errorf("error while unmarshalling column config of run %s: %w", r.RunId, err)
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}
