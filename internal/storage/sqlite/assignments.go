package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/yegors/gateops/pkg/logger"
)

// AssignmentStorage handles storage of assignment event records.
type AssignmentStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewAssignmentStorage creates a new SQLite assignment storage.
func NewAssignmentStorage(db *sql.DB, logger *logger.Logger) (*AssignmentStorage, error) {
	storage := &AssignmentStorage{
		db:     db,
		logger: logger.Named("sqlite-assignments"),
	}
	if err := storage.initDB(); err != nil {
		return nil, err
	}
	return storage, nil
}

// initDB initializes the database tables.
func (s *AssignmentStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS assignments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			flight_number TEXT NOT NULL,
			gate_name TEXT NOT NULL,
			source TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create assignments table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_assignments_flight ON assignments(flight_number)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_gate ON assignments(gate_name)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_created_at ON assignments(created_at)`,
	}
	for _, indexSQL := range indexes {
		if _, err := s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create assignment index: %w", err)
		}
	}
	return nil
}

// StoreAssignment archives one assignment event.
func (s *AssignmentStorage) StoreAssignment(record *AssignmentRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO assignments (flight_number, gate_name, source, created_at)
		VALUES (?, ?, ?, ?)`,
		record.FlightNumber,
		record.GateName,
		record.Source,
		record.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert assignment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// GetAssignmentsByFlight returns archived events for one flight, newest
// first.
func (s *AssignmentStorage) GetAssignmentsByFlight(flightNumber string, limit int) ([]*AssignmentRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, flight_number, gate_name, source, created_at
		FROM assignments
		WHERE flight_number = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		flightNumber, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments by flight: %w", err)
	}
	defer rows.Close()

	return s.scanAssignmentRows(rows)
}

// GetRecentAssignments returns recent events across all flights.
func (s *AssignmentStorage) GetRecentAssignments(limit int) ([]*AssignmentRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, flight_number, gate_name, source, created_at
		FROM assignments
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent assignments: %w", err)
	}
	defer rows.Close()

	return s.scanAssignmentRows(rows)
}

// scanAssignmentRows scans database rows into AssignmentRecord structs.
func (s *AssignmentStorage) scanAssignmentRows(rows *sql.Rows) ([]*AssignmentRecord, error) {
	var records []*AssignmentRecord
	for rows.Next() {
		var record AssignmentRecord
		var createdAt string

		if err := rows.Scan(
			&record.ID,
			&record.FlightNumber,
			&record.GateName,
			&record.Source,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}

		var err error
		record.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		records = append(records, &record)
	}
	return records, rows.Err()
}
