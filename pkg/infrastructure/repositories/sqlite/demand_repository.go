package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ebirch/rsvdemand/pkg/domain/entities"
	"github.com/ebirch/rsvdemand/pkg/domain/repositories"
	"github.com/shopspring/decimal"
)

// timeLayout is RFC 3339 with a fixed-width fraction so stored timestamps
// sort lexically in chronological order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DemandRepository implements repositories.DemandRepository on a Store
type DemandRepository struct {
	store *Store
}

// Ensure DemandRepository implements the interface
var _ repositories.DemandRepository = (*DemandRepository)(nil)

// NewDemandRepository creates a SQLite-backed demand repository
func NewDemandRepository(store *Store) *DemandRepository {
	return &DemandRepository{store: store}
}

// SaveRun persists a projection run
func (r *DemandRepository) SaveRun(ctx context.Context, run *entities.ProjectionRun) error {
	scenarios, err := json.Marshal(run.Scenarios)
	if err != nil {
		return fmt.Errorf("encoding scenario names: %w", err)
	}

	_, err = r.store.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, scenarios, interval) VALUES (?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.UTC().Format(timeLayout),
		string(scenarios),
		string(run.Interval),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a projection run by ID
func (r *DemandRepository) GetRun(ctx context.Context, id string) (*entities.ProjectionRun, error) {
	row := r.store.QueryRowContext(ctx,
		`SELECT id, created_at, scenarios, interval FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetLatestRun retrieves the most recently created projection run
func (r *DemandRepository) GetLatestRun(ctx context.Context) (*entities.ProjectionRun, error) {
	row := r.store.QueryRowContext(ctx,
		`SELECT id, created_at, scenarios, interval FROM runs
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no runs saved")
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns retrieves all projection runs, oldest first
func (r *DemandRepository) ListRuns(ctx context.Context) ([]*entities.ProjectionRun, error) {
	rows, err := r.store.QueryContext(ctx,
		`SELECT id, created_at, scenarios, interval FROM runs
		 ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*entities.ProjectionRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// SaveRecords persists demand records in a single transaction
func (r *DemandRepository) SaveRecords(ctx context.Context, records []*entities.DemandRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO demand_records (
				run_id, scenario, place, birth_date, risk_level, delay,
				threshold_age, date, dosage_amount, dosage_unit, n_doses, size, doses
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for _, record := range records {
			_, err := stmt.ExecContext(ctx,
				record.RunID,
				record.Scenario,
				string(record.Place),
				record.BirthDate.Format(entities.DateFormat),
				record.RiskLevel.String(),
				record.Delay,
				record.ThresholdAge,
				record.Date.Format(entities.DateFormat),
				record.Dosage.Amount.String(),
				record.Dosage.Unit,
				record.NDoses,
				record.Size.String(),
				record.Doses.String(),
			)
			if err != nil {
				return fmt.Errorf("inserting demand record: %w", err)
			}
		}
		return nil
	})
}

const recordColumns = `run_id, scenario, place, birth_date, risk_level, delay,
	threshold_age, date, dosage_amount, dosage_unit, n_doses, size, doses`

// GetRecords retrieves a run's demand records in insertion order
func (r *DemandRepository) GetRecords(ctx context.Context, runID string) ([]*entities.DemandRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM demand_records WHERE run_id = ? ORDER BY rowid`, recordColumns)
	return r.queryRecords(ctx, query, runID)
}

// GetScenarioRecords retrieves one scenario's demand records in insertion order
func (r *DemandRepository) GetScenarioRecords(ctx context.Context, runID, scenario string) ([]*entities.DemandRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM demand_records WHERE run_id = ? AND scenario = ? ORDER BY rowid`, recordColumns)
	return r.queryRecords(ctx, query, runID, scenario)
}

func (r *DemandRepository) queryRecords(ctx context.Context, query string, args ...any) ([]*entities.DemandRecord, error) {
	rows, err := r.store.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying demand records: %w", err)
	}
	defer rows.Close()

	var records []*entities.DemandRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating demand records: %w", err)
	}
	return records, nil
}

// scanRun scans one runs row
func scanRun(row interface{ Scan(dest ...any) error }) (*entities.ProjectionRun, error) {
	var run entities.ProjectionRun
	var createdStr, scenariosStr, intervalStr string

	if err := row.Scan(&run.ID, &createdStr, &scenariosStr, &intervalStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	created, err := time.Parse(timeLayout, createdStr)
	if err != nil {
		return nil, fmt.Errorf("invalid run timestamp %q: %w", createdStr, err)
	}
	run.CreatedAt = created.UTC()

	if err := json.Unmarshal([]byte(scenariosStr), &run.Scenarios); err != nil {
		return nil, fmt.Errorf("decoding scenario names: %w", err)
	}
	run.Interval = entities.Interval(intervalStr)

	return &run, nil
}

// scanRecord scans one demand_records row
func scanRecord(rows *sql.Rows) (*entities.DemandRecord, error) {
	var record entities.DemandRecord
	var place, birthStr, riskStr, dateStr, amountStr, sizeStr, dosesStr string

	err := rows.Scan(
		&record.RunID,
		&record.Scenario,
		&place,
		&birthStr,
		&riskStr,
		&record.Delay,
		&record.ThresholdAge,
		&dateStr,
		&amountStr,
		&record.Dosage.Unit,
		&record.NDoses,
		&sizeStr,
		&dosesStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning demand record: %w", err)
	}

	record.Place = entities.PlaceID(place)
	if record.RiskLevel, err = entities.ParseRiskLevel(riskStr); err != nil {
		return nil, fmt.Errorf("scanning demand record: %w", err)
	}
	if record.BirthDate, err = entities.ParseDate(birthStr); err != nil {
		return nil, fmt.Errorf("scanning demand record: %w", err)
	}
	if record.Date, err = entities.ParseDate(dateStr); err != nil {
		return nil, fmt.Errorf("scanning demand record: %w", err)
	}
	if record.Dosage.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("invalid dosage amount %q: %w", amountStr, err)
	}
	if record.Size, err = decimal.NewFromString(sizeStr); err != nil {
		return nil, fmt.Errorf("invalid size %q: %w", sizeStr, err)
	}
	if record.Doses, err = decimal.NewFromString(dosesStr); err != nil {
		return nil, fmt.Errorf("invalid doses %q: %w", dosesStr, err)
	}

	return &record, nil
}
