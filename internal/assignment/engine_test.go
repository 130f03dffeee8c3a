package assignment

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/gateops/internal/core"
	"github.com/yegors/gateops/pkg/logger"
)

func newTestEngine(t *testing.T) (*Engine, *core.Registry) {
	t.Helper()
	r := core.NewRegistry()
	require.NoError(t, r.AddAirline(core.Airline{
		Code: "SQ",
		Name: "Singapore Airlines",
		FeeSchedule: core.FeeSchedule{
			ArrivalFee:   decimal.NewFromInt(10),
			DepartureFee: decimal.NewFromInt(12),
			GateBaseFee:  decimal.NewFromInt(5),
		},
	}))
	return NewEngine(r, logger.Nop()), r
}

func addFlight(t *testing.T, r *core.Registry, number string, at core.DayTime, code core.SpecialRequestCode) {
	t.Helper()
	require.NoError(t, r.AddFlight(core.Flight{
		Number:             number,
		AirlineCode:        "SQ",
		Origin:             "SIN",
		Destination:        "NRT",
		ScheduledTime:      at,
		Status:             core.StatusScheduled,
		SpecialRequestCode: code,
	}))
}

func addGate(t *testing.T, r *core.Registry, name string, codes ...core.SpecialRequestCode) {
	t.Helper()
	require.NoError(t, r.AddGate(core.BoardingGate{Name: name, SupportedRequestCodes: codes}))
}

func TestAssignSymmetricAndExclusive(t *testing.T) {
	e, r := newTestEngine(t)
	addFlight(t, r, "SQ100", 8*60, core.RequestNone)
	addGate(t, r, "G1")

	require.NoError(t, e.Assign("SQ100", "G1"))

	flight, err := r.Flight("SQ100")
	require.NoError(t, err)
	gate, err := r.Gate("G1")
	require.NoError(t, err)
	assert.Equal(t, "G1", flight.AssignedGate)
	assert.Equal(t, "SQ100", gate.AssignedFlight)

	// No other flight or gate holds either side.
	for _, f := range r.Snapshot().Flights {
		if f.Number != "SQ100" {
			assert.NotEqual(t, "G1", f.AssignedGate)
		}
	}
}

func TestAssignFailuresAreNonMutating(t *testing.T) {
	e, r := newTestEngine(t)
	addFlight(t, r, "SQ100", 8*60, core.RequestNone)
	addFlight(t, r, "SQ200", 9*60, core.RequestNone)
	addGate(t, r, "G1")
	require.NoError(t, e.Assign("SQ100", "G1"))

	before := r.Snapshot()

	assert.ErrorIs(t, e.Assign("SQ200", "G1"), core.ErrAlreadyAssigned)
	assert.Equal(t, before, r.Snapshot())

	assert.ErrorIs(t, e.Assign("SQ404", "G1"), core.ErrNotFound)
	assert.ErrorIs(t, e.Assign("SQ200", "G404"), core.ErrNotFound)
	assert.Equal(t, before, r.Snapshot())
}

func TestAssignIncompatibleGate(t *testing.T) {
	e, r := newTestEngine(t)
	addFlight(t, r, "SQ300", 7*60, core.RequestOverSize)
	addGate(t, r, "G1") // ordinary only

	assert.ErrorIs(t, e.Assign("SQ300", "G1"), core.ErrIncompatibleGate)

	flight, err := r.Flight("SQ300")
	require.NoError(t, err)
	assert.False(t, flight.Assigned())
}

func TestUnassignFreesGate(t *testing.T) {
	e, r := newTestEngine(t)
	addFlight(t, r, "SQ100", 8*60, core.RequestNone)
	addGate(t, r, "G1")
	require.NoError(t, e.Assign("SQ100", "G1"))

	require.NoError(t, e.Unassign("SQ100"))

	gate, err := r.Gate("G1")
	require.NoError(t, err)
	assert.False(t, gate.Assigned())

	// Unassigning an unassigned flight is a no-op.
	require.NoError(t, e.Unassign("SQ100"))
}

func TestAutoAssignPrefersEarlierFlights(t *testing.T) {
	e, r := newTestEngine(t)
	// F2 (07:30, OverSize) is processed before F1 (08:00, ordinary).
	addFlight(t, r, "F1", 8*60, core.RequestNone)
	addFlight(t, r, "F2", 7*60+30, core.RequestOverSize)
	addGate(t, r, "G1")
	addGate(t, r, "G2", core.RequestOverSize)

	summary, err := e.AutoAssignAll()
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Assigned)
	assert.Empty(t, summary.Skipped)

	f1, _ := r.Flight("F1")
	f2, _ := r.Flight("F2")
	assert.Equal(t, "G1", f1.AssignedGate)
	assert.Equal(t, "G2", f2.AssignedGate)
}

func TestAutoAssignSkipsWithoutError(t *testing.T) {
	e, r := newTestEngine(t)
	addFlight(t, r, "F1", 8*60, core.RequestNone)
	addFlight(t, r, "F2", 7*60+30, core.RequestOverSize)
	addFlight(t, r, "F3", 7*60, core.RequestOverSize)
	addGate(t, r, "G1")
	addGate(t, r, "G2", core.RequestOverSize)

	summary, err := e.AutoAssignAll()
	require.NoError(t, err)

	// F3 (07:00) wins the only OverSize gate; F2 is skipped, not errored.
	assert.Equal(t, 2, summary.Assigned)
	assert.Equal(t, []string{"F2"}, summary.Skipped)

	f3, _ := r.Flight("F3")
	assert.Equal(t, "G2", f3.AssignedGate)
}

func TestAutoAssignTieBreakByFlightNumber(t *testing.T) {
	e, r := newTestEngine(t)
	addFlight(t, r, "B2", 8*60, core.RequestNone)
	addFlight(t, r, "A1", 8*60, core.RequestNone)
	addGate(t, r, "G1")

	summary, err := e.AutoAssignAll()
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Assigned)
	assert.Equal(t, []string{"B2"}, summary.Skipped)

	a1, _ := r.Flight("A1")
	assert.Equal(t, "G1", a1.AssignedGate)
}

func TestAutoAssignIdempotent(t *testing.T) {
	e, r := newTestEngine(t)
	addFlight(t, r, "F1", 8*60, core.RequestNone)
	addFlight(t, r, "F2", 7*60+30, core.RequestOverSize)
	addGate(t, r, "G1")
	addGate(t, r, "G2", core.RequestOverSize)

	first, err := e.AutoAssignAll()
	require.NoError(t, err)
	afterFirst := r.Snapshot()

	second, err := e.AutoAssignAll()
	require.NoError(t, err)

	assert.Equal(t, 2, first.Assigned)
	assert.Equal(t, 0, second.Assigned)
	assert.Empty(t, second.Skipped)
	assert.Equal(t, afterFirst, r.Snapshot())
}

func TestAutoAssignDeterministic(t *testing.T) {
	build := func() (*Engine, *core.Registry) {
		e, r := newTestEngine(t)
		addFlight(t, r, "F1", 8*60, core.RequestNone)
		addFlight(t, r, "F2", 7*60+30, core.RequestOverSize)
		addFlight(t, r, "F3", 7*60, core.RequestOverSize)
		addFlight(t, r, "F4", 8*60, core.RequestNone)
		addGate(t, r, "G3")
		addGate(t, r, "G1")
		addGate(t, r, "G2", core.RequestOverSize)
		return e, r
	}

	e1, r1 := build()
	first, err := e1.AutoAssignAll()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		en, rn := build()
		run, err := en.AutoAssignAll()
		require.NoError(t, err)
		assert.Equal(t, first, run)
		assert.Equal(t, r1.Snapshot(), rn.Snapshot())
	}
}

func TestConcurrentAssignSameGate(t *testing.T) {
	e, r := newTestEngine(t)
	addFlight(t, r, "F1", 8*60, core.RequestNone)
	addFlight(t, r, "F2", 9*60, core.RequestNone)
	addGate(t, r, "G1")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, number := range []string{"F1", "F2"} {
		wg.Add(1)
		go func(i int, number string) {
			defer wg.Done()
			errs[i] = e.Assign(number, "G1")
		}(i, number)
	}
	wg.Wait()

	// Exactly one of the two concurrent calls may win the gate.
	if errs[0] == nil {
		assert.ErrorIs(t, errs[1], core.ErrAlreadyAssigned)
	} else {
		assert.NoError(t, errs[1])
		assert.ErrorIs(t, errs[0], core.ErrAlreadyAssigned)
	}
}
