package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Priority is a total order: unspecified is the strict minimum and a lower
// numeric value is the higher priority.
func TestPriorityTotalOrder(t *testing.T) {
	assert.Equal(t, 0, UnspecifiedPriority.Compare(UnspecifiedPriority))
	assert.Equal(t, 0, NewPriority(5).Compare(NewPriority(5)))

	assert.Negative(t, UnspecifiedPriority.Compare(NewPriority(1000000)))
	assert.Positive(t, NewPriority(1000000).Compare(UnspecifiedPriority))

	assert.Positive(t, NewPriority(0).Compare(NewPriority(1)))
	assert.Negative(t, NewPriority(1).Compare(NewPriority(0)))

	// exactly one of <, =, > holds for any pair
	pairs := []Priority{UnspecifiedPriority, NewPriority(0), NewPriority(1), NewPriority(42)}
	for _, a := range pairs {
		for _, b := range pairs {
			ab, ba := a.Compare(b), b.Compare(a)
			assert.Equal(t, ab, -ba)
		}
	}

	assert.Equal(t, 0, MaxPriority.Compare(NewPriority(0)))
}

func TestPriorityJSON(t *testing.T) {
	type holder struct {
		Priority Priority `json:"priority"`
	}

	var h holder
	require.NoError(t, json.Unmarshal([]byte(`{"priority": 3}`), &h))
	v, ok := h.Priority.Value()
	require.True(t, ok)
	assert.Equal(t, uint32(3), v)

	require.NoError(t, json.Unmarshal([]byte(`{"priority": null}`), &h))
	assert.False(t, h.Priority.Specified())

	require.NoError(t, json.Unmarshal([]byte(`{}`), &h))
	assert.False(t, h.Priority.Specified())

	assert.Error(t, json.Unmarshal([]byte(`{"priority": -1}`), &h))

	raw, err := json.Marshal(holder{Priority: NewPriority(7)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"priority": 7}`, string(raw))

	raw, err = json.Marshal(holder{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"priority": null}`, string(raw))
}

func TestEventExampleParses(t *testing.T) {
	example := `{
		"id": "object-999",
		"createdDateTime": "2023-06-15T09:30:00Z",
		"modificationDateTime": "2023-06-15T09:30:00Z",
		"objectType": "EVENT",
		"programID": "object-foo",
		"eventName": "price event 11-18-2022",
		"priority": 0,
		"intervalPeriod": {
			"start": "2023-06-15T09:30:00Z",
			"duration": "PT1H"
		},
		"intervals": [{
			"id": 0,
			"payloads": [{"type": "PRICE", "values": [0.17]}]
		}]
	}`

	var event Event
	require.NoError(t, json.Unmarshal([]byte(example), &event))
	assert.Equal(t, Identifier("object-999"), event.ID)
	assert.Equal(t, Identifier("object-foo"), event.ProgramID)
	assert.Equal(t, 0, event.Priority.Compare(MaxPriority))
	require.NotNil(t, event.IntervalPeriod)
	assert.Equal(t, Duration{Hours: 1}, *event.IntervalPeriod.Duration)
	require.Len(t, event.Intervals, 1)

	require.NoError(t, event.EventRequest.Validate())
}

func TestEventRequestValidation(t *testing.T) {
	valid := EventRequest{
		ProgramID: "p-1",
		Intervals: []Interval{{
			ID:       0,
			Payloads: []ValuesMap{{Type: ValueTypePrice, Values: []Value{NumberValue(0.17)}}},
		}},
	}
	require.NoError(t, valid.Validate())

	noIntervals := valid
	noIntervals.Intervals = nil
	assert.Error(t, noIntervals.Validate())

	noPayloads := valid
	noPayloads.Intervals = []Interval{{ID: 0}}
	assert.Error(t, noPayloads.Validate())

	badProgram := valid
	badProgram.ProgramID = "***"
	assert.Error(t, badProgram.Validate())

	wrongObjectType := valid
	wrongObjectType.ObjectType = "PROGRAM"
	assert.Error(t, wrongObjectType.Validate())
}

func TestPayloadTypeValueShapes(t *testing.T) {
	price := Interval{ID: 0, Payloads: []ValuesMap{
		{Type: ValueTypePrice, Values: []Value{StringValue("expensive")}},
	}}
	assert.Error(t, price.Validate(), "PRICE requires numeric values")

	simple := Interval{ID: 0, Payloads: []ValuesMap{
		{Type: ValueTypeSimple, Values: []Value{NumberValue(1.5)}},
	}}
	assert.Error(t, simple.Validate(), "SIMPLE requires integer values")

	curve := Interval{ID: 0, Payloads: []ValuesMap{
		{Type: ValueTypeCurve, Values: []Value{IntValue(3)}},
	}}
	assert.Error(t, curve.Validate(), "CURVE requires point values")

	private := Interval{ID: 0, Payloads: []ValuesMap{
		{Type: "MY_PRIVATE_TYPE", Values: []Value{StringValue("anything")}},
	}}
	assert.NoError(t, private.Validate(), "private types accept any value")
}
