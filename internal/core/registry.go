package core

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Registry owns the authoritative collections of airlines, flights, and
// boarding gates for one operational day. It is the sole owner of all entity
// lifetimes: entities enter via Add*, change via Update*/assignment
// operations, and leave via Remove*. A single RWMutex guards the whole day so
// multi-step operations (assignment, bulk passes) run as one critical section.
//
// Insertion order is preserved per collection for display purposes.
type Registry struct {
	mu sync.RWMutex

	airlines     map[string]*Airline
	flights      map[string]*Flight
	gates        map[string]*BoardingGate
	airlineOrder []string
	flightOrder  []string
	gateOrder    []string
}

// NewRegistry creates an empty registry for one operational day.
func NewRegistry() *Registry {
	return &Registry{
		airlines: make(map[string]*Airline),
		flights:  make(map[string]*Flight),
		gates:    make(map[string]*BoardingGate),
	}
}

// Tx is an unlocked view of the registry, valid only inside the callback
// passed to View or Update. It must not escape the callback.
type Tx struct {
	r        *Registry
	writable bool
}

// View runs fn with shared (read) access. Mutating through a View transaction
// is a programming error and fails.
func (r *Registry) View(fn func(tx *Tx) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fn(&Tx{r: r})
}

// Update runs fn with exclusive (write) access. The whole callback executes as
// one critical section; fn should do no I/O.
func (r *Registry) Update(fn func(tx *Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(&Tx{r: r, writable: true})
}

// Flight returns a copy of the flight with the given number.
func (tx *Tx) Flight(number string) (Flight, error) {
	f, ok := tx.r.flights[number]
	if !ok {
		return Flight{}, fmt.Errorf("flight %q: %w", number, ErrNotFound)
	}
	return *f, nil
}

// Gate returns a copy of the gate with the given name.
func (tx *Tx) Gate(name string) (BoardingGate, error) {
	g, ok := tx.r.gates[name]
	if !ok {
		return BoardingGate{}, fmt.Errorf("gate %q: %w", name, ErrNotFound)
	}
	return copyGate(g), nil
}

// Airline returns a copy of the airline with the given code.
func (tx *Tx) Airline(code string) (Airline, error) {
	a, ok := tx.r.airlines[code]
	if !ok {
		return Airline{}, fmt.Errorf("airline %q: %w", code, ErrNotFound)
	}
	return copyAirline(a), nil
}

// Flights returns copies of all flights in insertion order.
func (tx *Tx) Flights() []Flight {
	out := make([]Flight, 0, len(tx.r.flightOrder))
	for _, number := range tx.r.flightOrder {
		out = append(out, *tx.r.flights[number])
	}
	return out
}

// Gates returns copies of all gates in insertion order.
func (tx *Tx) Gates() []BoardingGate {
	out := make([]BoardingGate, 0, len(tx.r.gateOrder))
	for _, name := range tx.r.gateOrder {
		out = append(out, copyGate(tx.r.gates[name]))
	}
	return out
}

// Airlines returns copies of all airlines in insertion order.
func (tx *Tx) Airlines() []Airline {
	out := make([]Airline, 0, len(tx.r.airlineOrder))
	for _, code := range tx.r.airlineOrder {
		out = append(out, copyAirline(tx.r.airlines[code]))
	}
	return out
}

// AddAirline inserts a new airline. Fails with ErrDuplicateKey if the code is
// taken.
func (tx *Tx) AddAirline(a Airline) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	if err := ValidateAirline(&a); err != nil {
		return err
	}
	if _, exists := tx.r.airlines[a.Code]; exists {
		return fmt.Errorf("airline %q: %w", a.Code, ErrDuplicateKey)
	}
	stored := copyAirline(&a)
	tx.r.airlines[a.Code] = &stored
	tx.r.airlineOrder = append(tx.r.airlineOrder, a.Code)
	return nil
}

// AddFlight inserts a new flight. The airline code must reference an existing
// airline; the flight starts unassigned regardless of the AssignedGate field
// on the argument.
func (tx *Tx) AddFlight(f Flight) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	if err := ValidateFlight(&f); err != nil {
		return err
	}
	if _, exists := tx.r.flights[f.Number]; exists {
		return fmt.Errorf("flight %q: %w", f.Number, ErrDuplicateKey)
	}
	if _, ok := tx.r.airlines[f.AirlineCode]; !ok {
		return fmt.Errorf("airline %q: %w", f.AirlineCode, ErrNotFound)
	}
	f.AssignedGate = ""
	stored := f
	tx.r.flights[f.Number] = &stored
	tx.r.flightOrder = append(tx.r.flightOrder, f.Number)
	return nil
}

// AddGate inserts a new boarding gate, starting free.
func (tx *Tx) AddGate(g BoardingGate) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	if err := ValidateGate(&g); err != nil {
		return err
	}
	if _, exists := tx.r.gates[g.Name]; exists {
		return fmt.Errorf("gate %q: %w", g.Name, ErrDuplicateKey)
	}
	g.AssignedFlight = ""
	stored := copyGate(&g)
	tx.r.gates[g.Name] = &stored
	tx.r.gateOrder = append(tx.r.gateOrder, g.Name)
	return nil
}

// FlightUpdate carries the modifiable flight fields; nil means leave
// unchanged. The gate association is never updated this way; it belongs to
// the assignment operations.
type FlightUpdate struct {
	AirlineCode        *string
	Origin             *string
	Destination        *string
	ScheduledTime      *DayTime
	Status             *FlightStatus
	SpecialRequestCode *SpecialRequestCode
}

// UpdateFlight applies a partial update to an existing flight. All-or-nothing:
// the stored flight is untouched unless every changed field validates.
func (tx *Tx) UpdateFlight(number string, upd FlightUpdate) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	stored, ok := tx.r.flights[number]
	if !ok {
		return fmt.Errorf("flight %q: %w", number, ErrNotFound)
	}
	next := *stored
	if upd.AirlineCode != nil {
		if _, ok := tx.r.airlines[*upd.AirlineCode]; !ok {
			return fmt.Errorf("airline %q: %w", *upd.AirlineCode, ErrNotFound)
		}
		next.AirlineCode = *upd.AirlineCode
	}
	if upd.Origin != nil {
		next.Origin = *upd.Origin
	}
	if upd.Destination != nil {
		next.Destination = *upd.Destination
	}
	if upd.ScheduledTime != nil {
		next.ScheduledTime = *upd.ScheduledTime
	}
	if upd.Status != nil {
		next.Status = *upd.Status
	}
	if upd.SpecialRequestCode != nil {
		next.SpecialRequestCode = *upd.SpecialRequestCode
	}
	if err := ValidateFlight(&next); err != nil {
		return err
	}
	*stored = next
	return nil
}

// RemoveFlight deletes a flight, atomically freeing its gate if one is
// assigned. No operation leaves a dangling one-sided pairing.
func (tx *Tx) RemoveFlight(number string) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	f, ok := tx.r.flights[number]
	if !ok {
		return fmt.Errorf("flight %q: %w", number, ErrNotFound)
	}
	if f.AssignedGate != "" {
		if g, ok := tx.r.gates[f.AssignedGate]; ok {
			g.AssignedFlight = ""
		}
	}
	delete(tx.r.flights, number)
	tx.r.flightOrder = removeKey(tx.r.flightOrder, number)
	return nil
}

// RemoveGate deletes a gate, atomically unassigning its flight if one is
// paired.
func (tx *Tx) RemoveGate(name string) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	g, ok := tx.r.gates[name]
	if !ok {
		return fmt.Errorf("gate %q: %w", name, ErrNotFound)
	}
	if g.AssignedFlight != "" {
		if f, ok := tx.r.flights[g.AssignedFlight]; ok {
			f.AssignedGate = ""
		}
	}
	delete(tx.r.gates, name)
	tx.r.gateOrder = removeKey(tx.r.gateOrder, name)
	return nil
}

// Pair sets the mutual flight↔gate references. Preconditions (both exist,
// both unassigned, gate supports the flight's code) are checked here so the
// pairing can never be half-made.
func (tx *Tx) Pair(flightNumber, gateName string) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	f, ok := tx.r.flights[flightNumber]
	if !ok {
		return fmt.Errorf("flight %q: %w", flightNumber, ErrNotFound)
	}
	g, ok := tx.r.gates[gateName]
	if !ok {
		return fmt.Errorf("gate %q: %w", gateName, ErrNotFound)
	}
	if f.AssignedGate != "" {
		return fmt.Errorf("flight %q is at gate %q: %w", flightNumber, f.AssignedGate, ErrAlreadyAssigned)
	}
	if g.AssignedFlight != "" {
		return fmt.Errorf("gate %q holds flight %q: %w", gateName, g.AssignedFlight, ErrAlreadyAssigned)
	}
	if err := ValidateGateCompatibility(g, f); err != nil {
		return err
	}
	f.AssignedGate = gateName
	g.AssignedFlight = flightNumber
	return nil
}

// Unpair clears an existing flight↔gate pairing.
func (tx *Tx) Unpair(flightNumber string) error {
	if err := tx.mutable(); err != nil {
		return err
	}
	f, ok := tx.r.flights[flightNumber]
	if !ok {
		return fmt.Errorf("flight %q: %w", flightNumber, ErrNotFound)
	}
	if f.AssignedGate == "" {
		return nil
	}
	if g, ok := tx.r.gates[f.AssignedGate]; ok {
		g.AssignedFlight = ""
	}
	f.AssignedGate = ""
	return nil
}

func (tx *Tx) mutable() error {
	if !tx.writable {
		return fmt.Errorf("mutation inside read-only transaction: %w", ErrValidation)
	}
	return nil
}

// Convenience wrappers for single-step operations.

// AddAirline inserts a new airline under the write lock.
func (r *Registry) AddAirline(a Airline) error {
	return r.Update(func(tx *Tx) error { return tx.AddAirline(a) })
}

// AddFlight inserts a new flight under the write lock.
func (r *Registry) AddFlight(f Flight) error {
	return r.Update(func(tx *Tx) error { return tx.AddFlight(f) })
}

// AddGate inserts a new gate under the write lock.
func (r *Registry) AddGate(g BoardingGate) error {
	return r.Update(func(tx *Tx) error { return tx.AddGate(g) })
}

// UpdateFlight applies a partial flight update under the write lock.
func (r *Registry) UpdateFlight(number string, upd FlightUpdate) error {
	return r.Update(func(tx *Tx) error { return tx.UpdateFlight(number, upd) })
}

// RemoveFlight deletes a flight under the write lock.
func (r *Registry) RemoveFlight(number string) error {
	return r.Update(func(tx *Tx) error { return tx.RemoveFlight(number) })
}

// RemoveGate deletes a gate under the write lock.
func (r *Registry) RemoveGate(name string) error {
	return r.Update(func(tx *Tx) error { return tx.RemoveGate(name) })
}

// Flight returns a copy of a flight under the read lock.
func (r *Registry) Flight(number string) (Flight, error) {
	var out Flight
	err := r.View(func(tx *Tx) error {
		var err error
		out, err = tx.Flight(number)
		return err
	})
	return out, err
}

// Gate returns a copy of a gate under the read lock.
func (r *Registry) Gate(name string) (BoardingGate, error) {
	var out BoardingGate
	err := r.View(func(tx *Tx) error {
		var err error
		out, err = tx.Gate(name)
		return err
	})
	return out, err
}

// Airline returns a copy of an airline under the read lock.
func (r *Registry) Airline(code string) (Airline, error) {
	var out Airline
	err := r.View(func(tx *Tx) error {
		var err error
		out, err = tx.Airline(code)
		return err
	})
	return out, err
}

// Snapshot is a consistent point-in-time copy of the whole day, safe to read
// without further locking.
type Snapshot struct {
	Airlines []Airline
	Flights  []Flight
	Gates    []BoardingGate
}

// Snapshot captures the full registry state under the read lock.
func (r *Registry) Snapshot() Snapshot {
	var snap Snapshot
	r.View(func(tx *Tx) error {
		snap.Airlines = tx.Airlines()
		snap.Flights = tx.Flights()
		snap.Gates = tx.Gates()
		return nil
	})
	return snap
}

func copyGate(g *BoardingGate) BoardingGate {
	out := *g
	if g.SupportedRequestCodes != nil {
		out.SupportedRequestCodes = append([]SpecialRequestCode(nil), g.SupportedRequestCodes...)
	}
	return out
}

func copyAirline(a *Airline) Airline {
	out := *a
	out.FeeSchedule = copyFeeSchedule(a.FeeSchedule)
	return out
}

func copyFeeSchedule(s FeeSchedule) FeeSchedule {
	out := s
	if s.SpecialRequestFees != nil {
		out.SpecialRequestFees = make(map[SpecialRequestCode]decimal.Decimal, len(s.SpecialRequestFees))
		for k, v := range s.SpecialRequestFees {
			out.SpecialRequestFees[k] = v
		}
	}
	return out
}

func removeKey(order []string, key string) []string {
	for i, k := range order {
		if k == key {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
