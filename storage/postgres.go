package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"wheelfinder/models"
)

// PostgresWriter persists the canonical inventory to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS inventory (
			id          SERIAL PRIMARY KEY,
			model       TEXT          NOT NULL,
			brand       TEXT          NOT NULL,
			year        INT,
			price       NUMERIC(10,2),
			city_mpg    NUMERIC(6,2),
			highway_mpg NUMERIC(6,2),
			seats       INT,
			created_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_inventory_brand ON inventory(brand);
		CREATE INDEX IF NOT EXISTS idx_inventory_price ON inventory(price);
	`)
	return err
}

// Clear deletes all existing inventory rows.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM inventory")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write replaces the stored inventory with the given rows, preserving their
// order through the serial id.
func (pw *PostgresWriter) Write(rows []models.InventoryRow) error {
	if len(rows) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := pw.insertBatch(rows[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []models.InventoryRow) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*7)

	for idx, r := range batch {
		base := idx * 7
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		valueArgs = append(valueArgs,
			r.Model, r.Brand, nullInt(r.Year), nullFloat(r.Price),
			nullFloat(r.CityMPG), nullFloat(r.HighwayMPG), nullInt(r.Seats))
	}

	query := fmt.Sprintf(`
		INSERT INTO inventory (model, brand, year, price, city_mpg, highway_mpg, seats)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves the stored inventory in insertion order.
func (pw *PostgresWriter) FetchAll() ([]models.InventoryRow, error) {
	rows, err := pw.db.Query(`
		SELECT model, brand, year, price, city_mpg, highway_mpg, seats
		FROM inventory
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var out []models.InventoryRow
	for rows.Next() {
		var r models.InventoryRow
		var year, seats sql.NullInt64
		var price, city, highway sql.NullFloat64
		if err := rows.Scan(&r.Model, &r.Brand, &year, &price, &city, &highway, &seats); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		if year.Valid {
			r.Year = models.Int(int(year.Int64))
		}
		if price.Valid {
			r.Price = models.Float(price.Float64)
		}
		if city.Valid {
			r.CityMPG = models.Float(city.Float64)
		}
		if highway.Valid {
			r.HighwayMPG = models.Float(highway.Float64)
		}
		if seats.Valid {
			r.Seats = models.Int(int(seats.Int64))
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
