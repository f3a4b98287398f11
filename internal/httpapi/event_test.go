package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/wire"
)

// Object privacy: a VEN sees exactly the events whose targets are covered
// by the union of its own and its resources' targets.
func TestEventVisibilityByTarget(t *testing.T) {
	test := newAPITest(t, "bl-client", auth.Scopes{auth.ScopeReadAll, auth.ScopeWriteEvents})

	program := test.seedProgram("p1", nil)
	ven := test.seedVen("ven-1-client-id", "ven-1",
		wire.Targets{"GROUP:group-1", "PRIVATE_LABEL:private-value"})
	test.seedResource(ven.ID, "res-1", nil)

	test.seedEvent(program.ID, "e1", wire.Targets{"GROUP:private-1"})
	test.seedEvent(program.ID, "e2", wire.Targets{"GROUP:group-1", "GROUP:group-2"})
	e3 := test.seedEvent(program.ID, "e3", wire.Targets{"GROUP:group-1"})

	ven1 := test.as("ven-1-client-id", auth.Scopes{auth.ScopeReadTargets})
	var events []wire.Event
	status := ven1.request(http.MethodGet, "/events", nil, &events)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, events, 1)
	assert.Equal(t, e3.ID, events[0].ID)

	// read_all sees everything
	var all []wire.Event
	status = test.request(http.MethodGet, "/events", nil, &all)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, all, 3)
}

// A client without a VEN object only sees untargeted events.
func TestEventVisibilityWithoutVen(t *testing.T) {
	test := newAPITest(t, "bl-client", auth.Scopes{auth.ScopeReadAll, auth.ScopeWriteEvents})

	program := test.seedProgram("p1", nil)
	test.seedEvent(program.ID, "targeted", wire.Targets{"GROUP:group-1"})
	untargeted := test.seedEvent(program.ID, "untargeted", nil)

	stranger := test.as("unknown-ven", auth.Scopes{auth.ScopeReadTargets})
	var events []wire.Event
	status := stranger.request(http.MethodGet, "/events", nil, &events)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, events, 1)
	assert.Equal(t, untargeted.ID, events[0].ID)
}

// Hidden objects read by id return 404, not 403.
func TestEventPrivacyHidesById(t *testing.T) {
	test := newAPITest(t, "bl-client", auth.Scopes{auth.ScopeReadAll, auth.ScopeWriteEvents})

	program := test.seedProgram("p1", nil)
	hidden := test.seedEvent(program.ID, "e1", wire.Targets{"GROUP:secret"})

	stranger := test.as("unknown-ven", auth.Scopes{auth.ScopeReadTargets})
	var problem wire.Problem
	status := stranger.request(http.MethodGet, "/events/"+string(hidden.ID), nil, &problem)
	require.Equal(t, http.StatusNotFound, status)
}

func TestEventRequiresExistingProgram(t *testing.T) {
	test := newAPITest(t, "bl-client", auth.Scopes{auth.ScopeWriteEvents})

	var problem wire.Problem
	status := test.request(http.MethodPost, "/events", wire.EventRequest{
		ProgramID: "no-such-program",
		Intervals: []wire.Interval{priceInterval(0, 1.0)},
	}, &problem)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestEventRequiresIntervals(t *testing.T) {
	test := newAPITest(t, "bl-client", auth.Scopes{auth.ScopeReadAll, auth.ScopeWriteEvents})
	program := test.seedProgram("p1", nil)

	var problem wire.Problem
	status := test.request(http.MethodPost, "/events", wire.EventRequest{
		ProgramID: program.ID,
	}, &problem)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, problem.Detail, "interval")
}

// Events order by priority ascending with unspecified last; ties newest
// first.
func TestEventOrderingByPriority(t *testing.T) {
	test := newAPITest(t, "bl-client", auth.Scopes{auth.ScopeReadAll, auth.ScopeWriteEvents})
	program := test.seedProgram("p1", nil)

	post := func(name string, priority wire.Priority) {
		var event wire.Event
		status := test.request(http.MethodPost, "/events", wire.EventRequest{
			ProgramID: program.ID,
			EventName: name,
			Priority:  priority,
			Intervals: []wire.Interval{priceInterval(0, 1.0)},
		}, &event)
		require.Equal(t, http.StatusCreated, status)
	}

	post("low", wire.UnspecifiedPriority)
	post("mid", wire.NewPriority(5))
	post("high", wire.NewPriority(0))

	var events []wire.Event
	status := test.request(http.MethodGet, "/events", nil, &events)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, events, 3)
	assert.Equal(t, "high", events[0].EventName)
	assert.Equal(t, "mid", events[1].EventName)
	assert.Equal(t, "low", events[2].EventName)
}

func TestEventListFilterByProgram(t *testing.T) {
	test := newAPITest(t, "bl-client", auth.Scopes{auth.ScopeReadAll, auth.ScopeWriteEvents})

	p1 := test.seedProgram("p1", nil)
	p2 := test.seedProgram("p2", nil)
	test.seedEvent(p1.ID, "e1", nil)
	e2 := test.seedEvent(p2.ID, "e2", nil)

	var events []wire.Event
	status := test.request(http.MethodGet, "/events?programID="+string(p2.ID), nil, &events)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, events, 1)
	assert.Equal(t, e2.ID, events[0].ID)
}
