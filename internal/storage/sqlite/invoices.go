package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yegors/gateops/internal/billing"
	"github.com/yegors/gateops/pkg/logger"
)

// InvoiceStorage handles storage of issued invoice records.
type InvoiceStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewInvoiceStorage creates a new SQLite invoice storage.
func NewInvoiceStorage(db *sql.DB, logger *logger.Logger) (*InvoiceStorage, error) {
	storage := &InvoiceStorage{
		db:     db,
		logger: logger.Named("sqlite-invoices"),
	}
	if err := storage.initDB(); err != nil {
		return nil, err
	}
	return storage, nil
}

// initDB initializes the database tables.
func (s *InvoiceStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS invoices (
			id TEXT PRIMARY KEY,
			airline_code TEXT NOT NULL,
			flight_count INTEGER NOT NULL,
			arrival_departure_fees TEXT NOT NULL,
			gate_base_fees TEXT NOT NULL,
			special_request_fees TEXT NOT NULL,
			subtotal TEXT NOT NULL,
			discount_total TEXT NOT NULL,
			total TEXT NOT NULL,
			generated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create invoices table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_invoices_airline ON invoices(airline_code)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_generated_at ON invoices(generated_at)`,
	}
	for _, indexSQL := range indexes {
		if _, err := s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create invoice index: %w", err)
		}
	}
	return nil
}

// StoreInvoice archives one computed invoice and returns its generated ID.
func (s *InvoiceStorage) StoreInvoice(inv *billing.Invoice) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO invoices
		(id, airline_code, flight_count, arrival_departure_fees, gate_base_fees,
		special_request_fees, subtotal, discount_total, total, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		inv.AirlineCode,
		inv.FlightCount,
		inv.ArrivalDepartureFees.String(),
		inv.GateBaseFees.String(),
		inv.SpecialRequestFees.String(),
		inv.Subtotal.String(),
		inv.DiscountTotal.String(),
		inv.Total.String(),
		inv.GeneratedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert invoice: %w", err)
	}
	return id, nil
}

// GetInvoicesByAirline returns archived invoices for one airline, newest
// first.
func (s *InvoiceStorage) GetInvoicesByAirline(airlineCode string, limit int) ([]*InvoiceRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, airline_code, flight_count, arrival_departure_fees, gate_base_fees,
		special_request_fees, subtotal, discount_total, total, generated_at
		FROM invoices
		WHERE airline_code = ?
		ORDER BY generated_at DESC
		LIMIT ?`,
		airlineCode, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices by airline: %w", err)
	}
	defer rows.Close()

	return s.scanInvoiceRows(rows)
}

// GetInvoicesByTimeRange returns archived invoices within a time range.
func (s *InvoiceStorage) GetInvoicesByTimeRange(startTime, endTime time.Time) ([]*InvoiceRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, airline_code, flight_count, arrival_departure_fees, gate_base_fees,
		special_request_fees, subtotal, discount_total, total, generated_at
		FROM invoices
		WHERE generated_at BETWEEN ? AND ?
		ORDER BY generated_at DESC`,
		startTime.Format(time.RFC3339), endTime.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices by time range: %w", err)
	}
	defer rows.Close()

	return s.scanInvoiceRows(rows)
}

// scanInvoiceRows scans database rows into InvoiceRecord structs.
func (s *InvoiceStorage) scanInvoiceRows(rows *sql.Rows) ([]*InvoiceRecord, error) {
	var records []*InvoiceRecord
	for rows.Next() {
		var record InvoiceRecord
		var generatedAt string

		if err := rows.Scan(
			&record.ID,
			&record.AirlineCode,
			&record.FlightCount,
			&record.ArrivalDepartureFees,
			&record.GateBaseFees,
			&record.SpecialRequestFees,
			&record.Subtotal,
			&record.DiscountTotal,
			&record.Total,
			&generatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}

		var err error
		record.GeneratedAt, err = time.Parse(time.RFC3339, generatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse generated_at: %w", err)
		}

		records = append(records, &record)
	}
	return records, rows.Err()
}
