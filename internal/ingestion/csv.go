// Package ingestion loads airline, flight, and gate seed records from CSV
// files into the registry. It is the caller-side collaborator of the engine:
// the core packages never depend on it.
package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yegors/gateops/internal/core"
	"github.com/yegors/gateops/pkg/logger"
)

// Loader reads CSV seed files and populates a registry. Records that fail
// validation are reported per line and skipped; one bad row never aborts the
// load.
type Loader struct {
	registry *core.Registry
	defaults core.FeeSchedule
	logger   *logger.Logger
}

// NewLoader creates a loader. Airlines with no fee columns inherit the
// default fee schedule.
func NewLoader(registry *core.Registry, defaults core.FeeSchedule, logger *logger.Logger) *Loader {
	return &Loader{
		registry: registry,
		defaults: defaults,
		logger:   logger.Named("ingestion"),
	}
}

// LineError records one rejected CSV row.
type LineError struct {
	Line int    `json:"line"`
	Err  string `json:"error"`
}

// Summary reports the outcome of loading one file.
type Summary struct {
	Loaded int         `json:"loaded"`
	Errors []LineError `json:"errors,omitempty"`
}

// LoadAirlinesFile loads airlines from a CSV file with a header row:
// code,name[,arrival_fee,departure_fee,gate_base_fee].
func (l *Loader) LoadAirlinesFile(path string) (Summary, error) {
	return l.loadFile(path, l.airlineRecord)
}

// LoadGatesFile loads boarding gates from a CSV file with a header row:
// name,supported_codes. Supported codes are pipe-separated, empty for
// ordinary-only gates.
func (l *Loader) LoadGatesFile(path string) (Summary, error) {
	return l.loadFile(path, l.gateRecord)
}

// LoadFlightsFile loads flights from a CSV file with a header row:
// number,airline_code,origin,destination,scheduled_time,status,special_request_code.
// Airlines must already be loaded.
func (l *Loader) LoadFlightsFile(path string) (Summary, error) {
	return l.loadFile(path, l.flightRecord)
}

func (l *Loader) loadFile(path string, handle func(record []string) error) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	summary, err := l.load(f, handle)
	if err != nil {
		return Summary{}, fmt.Errorf("%s: %w", path, err)
	}
	l.logger.Info("Loaded CSV file",
		logger.String("path", path),
		logger.Int("loaded", summary.Loaded),
		logger.Int("rejected", len(summary.Errors)),
	)
	return summary, nil
}

func (l *Loader) load(r io.Reader, handle func(record []string) error) (Summary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // optional trailing columns
	reader.TrimLeadingSpace = true

	var summary Summary
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			summary.Errors = append(summary.Errors, LineError{Line: line, Err: err.Error()})
			continue
		}
		if line == 1 {
			continue // header
		}
		if err := handle(record); err != nil {
			summary.Errors = append(summary.Errors, LineError{Line: line, Err: err.Error()})
			continue
		}
		summary.Loaded++
	}
	return summary, nil
}

func (l *Loader) airlineRecord(record []string) error {
	if len(record) < 2 {
		return fmt.Errorf("want at least code,name: %w", core.ErrValidation)
	}
	airline := core.Airline{
		Code:        strings.TrimSpace(record[0]),
		Name:        strings.TrimSpace(record[1]),
		FeeSchedule: copyDefaults(l.defaults),
	}
	if len(record) >= 5 {
		var err error
		if airline.FeeSchedule.ArrivalFee, err = decimal.NewFromString(record[2]); err != nil {
			return fmt.Errorf("arrival fee: %w", err)
		}
		if airline.FeeSchedule.DepartureFee, err = decimal.NewFromString(record[3]); err != nil {
			return fmt.Errorf("departure fee: %w", err)
		}
		if airline.FeeSchedule.GateBaseFee, err = decimal.NewFromString(record[4]); err != nil {
			return fmt.Errorf("gate base fee: %w", err)
		}
	}
	return l.registry.AddAirline(airline)
}

func (l *Loader) gateRecord(record []string) error {
	if len(record) < 1 {
		return fmt.Errorf("want at least name: %w", core.ErrValidation)
	}
	gate := core.BoardingGate{Name: strings.TrimSpace(record[0])}
	if len(record) >= 2 && strings.TrimSpace(record[1]) != "" {
		for _, raw := range strings.Split(record[1], "|") {
			gate.SupportedRequestCodes = append(gate.SupportedRequestCodes, core.SpecialRequestCode(strings.TrimSpace(raw)))
		}
	}
	return l.registry.AddGate(gate)
}

func (l *Loader) flightRecord(record []string) error {
	if len(record) < 7 {
		return fmt.Errorf("want number,airline,origin,destination,time,status,code: %w", core.ErrValidation)
	}
	scheduled, err := core.ParseDayTime(strings.TrimSpace(record[4]))
	if err != nil {
		return err
	}
	flight := core.Flight{
		Number:             strings.TrimSpace(record[0]),
		AirlineCode:        strings.TrimSpace(record[1]),
		Origin:             strings.TrimSpace(record[2]),
		Destination:        strings.TrimSpace(record[3]),
		ScheduledTime:      scheduled,
		Status:             core.FlightStatus(strings.TrimSpace(record[5])),
		SpecialRequestCode: core.SpecialRequestCode(strings.TrimSpace(record[6])),
	}
	if flight.SpecialRequestCode == "" {
		flight.SpecialRequestCode = core.RequestNone
	}
	return l.registry.AddFlight(flight)
}

func copyDefaults(s core.FeeSchedule) core.FeeSchedule {
	out := s
	if s.SpecialRequestFees != nil {
		out.SpecialRequestFees = make(map[core.SpecialRequestCode]decimal.Decimal, len(s.SpecialRequestFees))
		for k, v := range s.SpecialRequestFees {
			out.SpecialRequestFees[k] = v
		}
	}
	return out
}
