package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueDecodeShapes(t *testing.T) {
	var values []Value
	raw := `[1, 2.5, true, {"x": 1.0, "y": 2.0}, "text"]`
	require.NoError(t, json.Unmarshal([]byte(raw), &values))
	require.Len(t, values, 5)

	i, ok := values[0].AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(1), i)

	f, ok := values[1].AsNumber()
	require.True(t, ok)
	assert.Equal(t, 2.5, f)
	_, isInt := values[1].AsInt()
	assert.False(t, isInt)

	b, ok := values[2].AsBool()
	require.True(t, ok)
	assert.True(t, b)

	p, ok := values[3].AsPoint()
	require.True(t, ok)
	assert.Equal(t, Point{X: 1, Y: 2}, p)

	s, ok := values[4].AsString()
	require.True(t, ok)
	assert.Equal(t, "text", s)
}

func TestValueRoundTrip(t *testing.T) {
	in := []Value{IntValue(42), NumberValue(0.17), BoolValue(false), PointValue(1, 2), StringValue("x")}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out []Value
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestValuesMapJSON(t *testing.T) {
	raw := `{"type": "PRICE", "values": [0.17]}`
	var vm ValuesMap
	require.NoError(t, json.Unmarshal([]byte(raw), &vm))
	assert.Equal(t, ValueTypePrice, vm.Type)
	require.Len(t, vm.Values, 1)
	assert.True(t, vm.Values[0].IsNumeric())
}

func TestIdentifierValidation(t *testing.T) {
	_, err := ParseIdentifier("object-999")
	assert.NoError(t, err)
	_, err = ParseIdentifier("a_b.c~d-e")
	assert.NoError(t, err)

	_, err = ParseIdentifier("")
	assert.Error(t, err)
	_, err = ParseIdentifier("has space")
	assert.Error(t, err)
	_, err = ParseIdentifier("slash/bad")
	assert.Error(t, err)

	long := make([]byte, 129)
	for i := range long {
		long[i] = 'a'
	}
	_, err = ParseIdentifier(string(long))
	assert.Error(t, err)
	_, err = ParseIdentifier(string(long[:128]))
	assert.NoError(t, err)
}

func TestProgramExampleParses(t *testing.T) {
	example := `[{
		"id": "object-999",
		"createdDateTime": "2023-06-15T09:30:00Z",
		"modificationDateTime": "2023-06-15T09:30:00Z",
		"objectType": "PROGRAM",
		"programName": "ResTOU",
		"intervalPeriod": {
			"start": "2023-06-15T09:30:00Z",
			"duration": "PT1H",
			"randomizeStart": "PT1H"
		},
		"programDescriptions": null,
		"payloadDescriptors": null,
		"attributes": null,
		"targets": null
	}]`

	var programs []Program
	require.NoError(t, json.Unmarshal([]byte(example), &programs))
	require.Len(t, programs, 1)
	assert.Equal(t, "ResTOU", programs[0].ProgramName)
	require.NotNil(t, programs[0].IntervalPeriod)
	assert.Empty(t, programs[0].Targets)
	require.NoError(t, programs[0].ProgramRequest.Validate())
}
