package refstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/db"
	"github.com/sells-group/outreach-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool. The ping is
// deliberate: a run must fail fast on connectivity problems rather than
// proceed toward a partial index.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS demographics (
	county              TEXT NOT NULL,
	parcel_id           TEXT NOT NULL,
	customer_name       TEXT NOT NULL DEFAULT '',
	email               TEXT NOT NULL DEFAULT '',
	phone               TEXT NOT NULL DEFAULT '',
	address             TEXT NOT NULL DEFAULT '',
	parcel_zip          TEXT NOT NULL DEFAULT '',
	estimated_income    DOUBLE PRECISION,
	total_energy_burden DOUBLE PRECISION,
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
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	stats       JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_demographics_county ON demographics(county);
CREATE INDEX IF NOT EXISTS idx_residentials_county ON residentials(county);
CREATE INDEX IF NOT EXISTS idx_match_runs_finished_at ON match_runs(finished_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Counties(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT county FROM demographics
		UNION
		SELECT county FROM residentials
		ORDER BY county`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list counties")
	}
	defer rows.Close()

	var counties []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, eris.Wrap(err, "postgres: scan county")
		}
		counties = append(counties, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate counties")
	}
	return counties, nil
}

func (s *PostgresStore) Demographics(ctx context.Context, county string) ([]model.DemographicRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT parcel_id, customer_name, email, phone, address, parcel_zip,
		       estimated_income, total_energy_burden
		FROM demographics
		WHERE county = $1`, county)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query %s", DemographicCollection(county))
	}
	defer rows.Close()

	var recs []model.DemographicRecord
	for rows.Next() {
		rec := model.DemographicRecord{County: county}
		if err := rows.Scan(&rec.ParcelID, &rec.CustomerName, &rec.Email, &rec.Phone,
			&rec.Address, &rec.ParcelZip, &rec.EstimatedIncome, &rec.TotalEnergyBurden); err != nil {
			return nil, eris.Wrapf(err, "postgres: scan %s", DemographicCollection(county))
		}
		normalizeDemographic(&rec)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "postgres: iterate %s", DemographicCollection(county))
	}
	return recs, nil
}

func (s *PostgresStore) Residentials(ctx context.Context, county string) ([]model.ResidentialRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT parcel_id, address, parcel_zip, year_built
		FROM residentials
		WHERE county = $1`, county)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query %s", ResidentialCollection(county))
	}
	defer rows.Close()

	var recs []model.ResidentialRecord
	for rows.Next() {
		rec := model.ResidentialRecord{County: county}
		if err := rows.Scan(&rec.ParcelID, &rec.Address, &rec.ParcelZip, &rec.YearBuilt); err != nil {
			return nil, eris.Wrapf(err, "postgres: scan %s", ResidentialCollection(county))
		}
		normalizeResidential(&rec)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "postgres: iterate %s", ResidentialCollection(county))
	}
	return recs, nil
}

var demographicColumns = []string{
	"county", "parcel_id", "customer_name", "email", "phone",
	"address", "parcel_zip", "estimated_income", "total_energy_burden",
}

func (s *PostgresStore) LoadDemographics(ctx context.Context, recs []model.DemographicRecord) (int64, error) {
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []any{
			r.County, r.ParcelID, r.CustomerName, r.Email, r.Phone,
			r.Address, r.ParcelZip, r.EstimatedIncome, r.TotalEnergyBurden,
		})
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "demographics",
		Columns:      demographicColumns,
		ConflictKeys: []string{"county", "parcel_id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: load demographics")
	}
	return n, nil
}

var residentialColumns = []string{
	"county", "parcel_id", "address", "parcel_zip", "year_built",
}

func (s *PostgresStore) LoadResidentials(ctx context.Context, recs []model.ResidentialRecord) (int64, error) {
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []any{r.County, r.ParcelID, r.Address, r.ParcelZip, r.YearBuilt})
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "residentials",
		Columns:      residentialColumns,
		ConflictKeys: []string{"county", "parcel_id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: load residentials")
	}
	return n, nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.MatchRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	statsJSON, err := json.Marshal(run.Stats)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal run stats")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO match_runs (id, started_at, finished_at, stats) VALUES ($1, $2, $3, $4)`,
		run.ID, run.StartedAt, run.FinishedAt, statsJSON,
	)
	return eris.Wrapf(err, "postgres: insert match run %s", run.ID)
}

func (s *PostgresStore) LastRun(ctx context.Context) (*model.MatchRun, error) {
	var run model.MatchRun
	var statsJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, started_at, finished_at, stats FROM match_runs ORDER BY finished_at DESC LIMIT 1`,
	).Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &statsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query last run")
	}
	if err := json.Unmarshal(statsJSON, &run.Stats); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal run stats")
	}
	return &run, nil
}
