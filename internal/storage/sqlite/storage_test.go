package sqlite

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/gateops/internal/billing"
	"github.com/yegors/gateops/pkg/logger"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAssignmentRoundTrip(t *testing.T) {
	storage, err := NewAssignmentStorage(testDB(t), logger.Nop())
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	id, err := storage.StoreAssignment(&AssignmentRecord{
		FlightNumber: "SQ100",
		GateName:     "G1",
		Source:       SourceManual,
		CreatedAt:    now,
	})
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	records, err := storage.GetAssignmentsByFlight("SQ100", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "G1", records[0].GateName)
	assert.Equal(t, SourceManual, records[0].Source)
	assert.True(t, records[0].CreatedAt.Equal(now))
}

func TestRecentAssignmentsOrder(t *testing.T) {
	storage, err := NewAssignmentStorage(testDB(t), logger.Nop())
	require.NoError(t, err)

	base := time.Now().UTC().Truncate(time.Second)
	for i, flight := range []string{"F1", "F2", "F3"} {
		_, err := storage.StoreAssignment(&AssignmentRecord{
			FlightNumber: flight,
			GateName:     "G1",
			Source:       SourceAuto,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	records, err := storage.GetRecentAssignments(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "F3", records[0].FlightNumber)
	assert.Equal(t, "F2", records[1].FlightNumber)
}

func TestInvoiceRoundTrip(t *testing.T) {
	storage, err := NewInvoiceStorage(testDB(t), logger.Nop())
	require.NoError(t, err)

	dec := func(s string) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		require.NoError(t, err)
		return d
	}
	inv := &billing.Invoice{
		AirlineCode:          "SQ",
		AirlineName:          "Singapore Airlines",
		FlightCount:          1,
		ArrivalDepartureFees: dec("10"),
		GateBaseFees:         dec("5"),
		SpecialRequestFees:   dec("8"),
		Subtotal:             dec("23"),
		DiscountTotal:        dec("4.3"),
		Total:                dec("18.7"),
		GeneratedAt:          time.Now().UTC().Truncate(time.Second),
	}

	id, err := storage.StoreInvoice(inv)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	records, err := storage.GetInvoicesByAirline("SQ", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	// Amounts round-trip as exact decimal strings.
	assert.Equal(t, "18.7", records[0].Total)
	assert.Equal(t, "4.3", records[0].DiscountTotal)
}

func TestInvoicesByTimeRange(t *testing.T) {
	storage, err := NewInvoiceStorage(testDB(t), logger.Nop())
	require.NoError(t, err)

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	zero := decimal.Zero
	for i := 0; i < 3; i++ {
		_, err := storage.StoreInvoice(&billing.Invoice{
			AirlineCode:          "SQ",
			ArrivalDepartureFees: zero,
			GateBaseFees:         zero,
			SpecialRequestFees:   zero,
			Subtotal:             zero,
			DiscountTotal:        zero,
			Total:                zero,
			GeneratedAt:          base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	records, err := storage.GetInvoicesByTimeRange(base.Add(30*time.Minute), base.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
