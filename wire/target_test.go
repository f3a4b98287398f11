package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetLabelValue(t *testing.T) {
	target := Target("GROUP:group-1")
	assert.Equal(t, "GROUP", target.Label())
	assert.Equal(t, "group-1", target.Value())

	// Everything after the first colon belongs to the value.
	url := Target("LOCATION:https://example.com:8080")
	assert.Equal(t, "LOCATION", url.Label())
	assert.Equal(t, "https://example.com:8080", url.Value())
}

func TestTargetValidate(t *testing.T) {
	assert.NoError(t, Target("GROUP:g").Validate())
	assert.NoError(t, Target("my-private-label:value").Validate())

	assert.Error(t, Target("novalue").Validate())
	assert.Error(t, Target("dotted.label:v").Validate())
	assert.Error(t, Target(":empty-label").Validate())
}

func TestTargetsSubset(t *testing.T) {
	envelope := Targets{"GROUP:group-1", "RESOURCE_NAME:res-1", "PRIVATE:x"}

	assert.True(t, Targets{}.SubsetOf(envelope))
	assert.True(t, Targets{"GROUP:group-1"}.SubsetOf(envelope))
	assert.True(t, Targets{"GROUP:group-1", "PRIVATE:x"}.SubsetOf(envelope))
	assert.False(t, Targets{"GROUP:group-1", "GROUP:group-2"}.SubsetOf(envelope))
	assert.False(t, Targets{"GROUP:other"}.SubsetOf(envelope))

	// Empty envelope admits only untargeted objects.
	assert.True(t, Targets{}.SubsetOf(nil))
	assert.False(t, Targets{"GROUP:g"}.SubsetOf(nil))
}

func TestTargetsSuperset(t *testing.T) {
	row := Targets{"GROUP:a", "GROUP:b"}
	assert.True(t, row.SupersetOf(Targets{"GROUP:a"}))
	assert.True(t, row.SupersetOf(nil))
	assert.False(t, row.SupersetOf(Targets{"GROUP:c"}))
}

func TestTargetsUnion(t *testing.T) {
	a := Targets{"GROUP:b", "GROUP:a"}
	b := Targets{"GROUP:a", "GROUP:c"}
	assert.Equal(t, Targets{"GROUP:a", "GROUP:b", "GROUP:c"}, a.Union(b))

	assert.Equal(t, Targets{"GROUP:a", "GROUP:b"}, a.Union(nil))
}
