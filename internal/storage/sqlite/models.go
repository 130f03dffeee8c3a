package sqlite

import "time"

// AssignmentRecord is one archived assignment event.
type AssignmentRecord struct {
	ID           int64     `json:"id"`
	FlightNumber string    `json:"flight_number"`
	GateName     string    `json:"gate_name"`
	Source       string    `json:"source"` // "manual" or "auto"
	CreatedAt    time.Time `json:"created_at"`
}

// Archived assignment sources.
const (
	SourceManual = "manual"
	SourceAuto   = "auto"
)

// InvoiceRecord is one archived invoice. Amount columns hold exact decimal
// strings; the archive never re-does arithmetic.
type InvoiceRecord struct {
	ID                   string    `json:"id"` // uuid
	AirlineCode          string    `json:"airline_code"`
	FlightCount          int       `json:"flight_count"`
	ArrivalDepartureFees string    `json:"arrival_departure_fees"`
	GateBaseFees         string    `json:"gate_base_fees"`
	SpecialRequestFees   string    `json:"special_request_fees"`
	Subtotal             string    `json:"subtotal"`
	DiscountTotal        string    `json:"discount_total"`
	Total                string    `json:"total"`
	GeneratedAt          time.Time `json:"generated_at"`
}
