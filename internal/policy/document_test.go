package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyscan/internal/policy"
)

func TestSetPathCreatesIntermediateObjects(t *testing.T) {
	doc := policy.Document{}
	doc.SetPath("coverage.liabilityLimits.bodilyInjury", 100000000)

	v, ok := doc.GetPath("coverage.liabilityLimits.bodilyInjury")
	require.True(t, ok)
	assert.Equal(t, 100000000, v)
}

func TestSetPathOverwritesNonObjectOnPath(t *testing.T) {
	doc := policy.Document{}
	doc.SetPath("vehicle", "not an object")
	doc.SetPath("vehicle.makeAndModel", "Toyota Corolla")

	v, ok := doc.GetPath("vehicle.makeAndModel")
	require.True(t, ok)
	assert.Equal(t, "Toyota Corolla", v)
}

func TestSetPathLastWriteWins(t *testing.T) {
	doc := policy.Document{}
	doc.SetPath("policyholder.name", "First")
	doc.SetPath("policyholder.name", "Second")

	v, _ := doc.GetPath("policyholder.name")
	assert.Equal(t, "Second", v)
}

func TestGetPathDistinguishesNilFromAbsent(t *testing.T) {
	doc := policy.Document{}
	doc.SetPath("policyholder.occupation", nil)

	v, ok := doc.GetPath("policyholder.occupation")
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = doc.GetPath("policyholder.missing")
	assert.False(t, ok)
}
