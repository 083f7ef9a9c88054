package refstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/outreach-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite, for local and
// offline runs against a snapshot of the reference collections.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS demographics (
	county              TEXT NOT NULL,
	parcel_id           TEXT NOT NULL,
	customer_name       TEXT NOT NULL DEFAULT '',
	email               TEXT NOT NULL DEFAULT '',
	phone               TEXT NOT NULL DEFAULT '',
	address             TEXT NOT NULL DEFAULT '',
	parcel_zip          TEXT NOT NULL DEFAULT '',
	estimated_income    REAL,
	total_energy_burden REAL,
	PRIMARY KEY (county, parcel_id)
);

CREATE TABLE IF NOT EXISTS residentials (
	county     TEXT NOT NULL,
	parcel_id  TEXT NOT NULL,
	address    TEXT NOT NULL DEFAULT '',
	parcel_zip TEXT NOT NULL DEFAULT '',
	year_built INTEGER,
	PRIMARY KEY (county, parcel_id)
);

CREATE TABLE IF NOT EXISTS match_runs (
	id          TEXT PRIMARY KEY,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	stats       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_demographics_county ON demographics(county);
CREATE INDEX IF NOT EXISTS idx_residentials_county ON residentials(county);
CREATE INDEX IF NOT EXISTS idx_match_runs_finished_at ON match_runs(finished_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Counties(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT county FROM demographics
		UNION
		SELECT county FROM residentials
		ORDER BY county`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list counties")
	}
	defer rows.Close()

	var counties []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan county")
		}
		counties = append(counties, c)
	}
	return counties, eris.Wrap(rows.Err(), "sqlite: iterate counties")
}

func (s *SQLiteStore) Demographics(ctx context.Context, county string) ([]model.DemographicRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT parcel_id, customer_name, email, phone, address, parcel_zip,
		       estimated_income, total_energy_burden
		FROM demographics
		WHERE county = ?`, county)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query %s", DemographicCollection(county))
	}
	defer rows.Close()

	var recs []model.DemographicRecord
	for rows.Next() {
		rec := model.DemographicRecord{County: county}
		var income, burden sql.NullFloat64
		if err := rows.Scan(&rec.ParcelID, &rec.CustomerName, &rec.Email, &rec.Phone,
			&rec.Address, &rec.ParcelZip, &income, &burden); err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan %s", DemographicCollection(county))
		}
		if income.Valid {
			rec.EstimatedIncome = &income.Float64
		}
		if burden.Valid {
			rec.TotalEnergyBurden = &burden.Float64
		}
		normalizeDemographic(&rec)
		recs = append(recs, rec)
	}
	return recs, eris.Wrapf(rows.Err(), "sqlite: iterate %s", DemographicCollection(county))
}

func (s *SQLiteStore) Residentials(ctx context.Context, county string) ([]model.ResidentialRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT parcel_id, address, parcel_zip, year_built
		FROM residentials
		WHERE county = ?`, county)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query %s", ResidentialCollection(county))
	}
	defer rows.Close()

	var recs []model.ResidentialRecord
	for rows.Next() {
		rec := model.ResidentialRecord{County: county}
		var yearBuilt sql.NullInt64
		if err := rows.Scan(&rec.ParcelID, &rec.Address, &rec.ParcelZip, &yearBuilt); err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan %s", ResidentialCollection(county))
		}
		if yearBuilt.Valid {
			yb := int(yearBuilt.Int64)
			rec.YearBuilt = &yb
		}
		normalizeResidential(&rec)
		recs = append(recs, rec)
	}
	return recs, eris.Wrapf(rows.Err(), "sqlite: iterate %s", ResidentialCollection(county))
}

func (s *SQLiteStore) LoadDemographics(ctx context.Context, recs []model.DemographicRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin load demographics")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO demographics
			(county, parcel_id, customer_name, email, phone, address, parcel_zip, estimated_income, total_energy_burden)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (county, parcel_id) DO UPDATE SET
			customer_name = excluded.customer_name,
			email = excluded.email,
			phone = excluded.phone,
			address = excluded.address,
			parcel_zip = excluded.parcel_zip,
			estimated_income = excluded.estimated_income,
			total_energy_burden = excluded.total_energy_burden`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare load demographics")
	}
	defer stmt.Close()

	var n int64
	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.County, r.ParcelID, r.CustomerName, r.Email, r.Phone,
			r.Address, r.ParcelZip, optFloatArg(r.EstimatedIncome), optFloatArg(r.TotalEnergyBurden)); err != nil {
			return 0, eris.Wrapf(err, "sqlite: load demographic %s/%s", r.County, r.ParcelID)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit load demographics")
	}
	return n, nil
}

func (s *SQLiteStore) LoadResidentials(ctx context.Context, recs []model.ResidentialRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin load residentials")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO residentials (county, parcel_id, address, parcel_zip, year_built)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (county, parcel_id) DO UPDATE SET
			address = excluded.address,
			parcel_zip = excluded.parcel_zip,
			year_built = excluded.year_built`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare load residentials")
	}
	defer stmt.Close()

	var n int64
	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.County, r.ParcelID, r.Address, r.ParcelZip, optIntArg(r.YearBuilt)); err != nil {
			return 0, eris.Wrapf(err, "sqlite: load residential %s/%s", r.County, r.ParcelID)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit load residentials")
	}
	return n, nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.MatchRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	statsJSON, err := json.Marshal(run.Stats)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal run stats")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO match_runs (id, started_at, finished_at, stats) VALUES (?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), string(statsJSON),
	)
	return eris.Wrapf(err, "sqlite: insert match run %s", run.ID)
}

func (s *SQLiteStore) LastRun(ctx context.Context) (*model.MatchRun, error) {
	var run model.MatchRun
	var statsJSON string
	var started, finished time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, stats FROM match_runs ORDER BY finished_at DESC LIMIT 1`,
	).Scan(&run.ID, &started, &finished, &statsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query last run")
	}
	run.StartedAt = started
	run.FinishedAt = finished
	if err := json.Unmarshal([]byte(statsJSON), &run.Stats); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal run stats")
	}
	return &run, nil
}

// optFloatArg converts an optional float to a driver argument.
func optFloatArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// optIntArg converts an optional int to a driver argument.
func optIntArg(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
