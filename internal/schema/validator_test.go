package schema_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyscan/internal/policy"
	"policyscan/internal/schema"
)

func newValidator(t *testing.T) *schema.Validator {
	t.Helper()
	v, err := schema.NewValidator(policy.BuildPolicySchema(), nil)
	require.NoError(t, err)
	return v
}

func defaultedDocument() policy.Document {
	doc := policy.NewDocument()
	policy.ApplyDefaults(doc)
	return doc
}

func TestValidateDefaultedDocumentIsValid(t *testing.T) {
	v := newValidator(t)

	_, res := v.Validate(defaultedDocument())

	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.MissingFields)
}

func TestValidateUnseededDefaultedDocumentIsValid(t *testing.T) {
	v := newValidator(t)
	doc := policy.Document{}
	policy.ApplyDefaults(doc)

	_, res := v.Validate(doc)

	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.MissingFields)
}

func TestValidateMissingRequiredFieldReported(t *testing.T) {
	v := newValidator(t)
	doc := defaultedDocument()
	vehicle, ok := doc["vehicle"].(map[string]any)
	require.True(t, ok)
	delete(vehicle, "yearOfManufacture")

	_, res := v.Validate(doc)

	assert.False(t, res.IsValid)
	assert.Contains(t, res.MissingFields, "vehicle.yearOfManufacture")
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "yearOfManufacture")
}

func TestValidateNullRequiredFieldScanned(t *testing.T) {
	v := newValidator(t)
	doc := defaultedDocument()
	doc.SetPath("policyholder.name", nil)

	_, res := v.Validate(doc)

	assert.False(t, res.IsValid)
	assert.Contains(t, res.MissingFields, "policyholder.name")
}

func TestValidateTypeViolationErrorFormat(t *testing.T) {
	v := newValidator(t)
	doc := defaultedDocument()
	doc.SetPath("vehicle.yearOfManufacture", "two thousand nineteen")

	_, res := v.Validate(doc)

	assert.False(t, res.IsValid)
	require.NotEmpty(t, res.Errors)
	// Every error reads "<dot-path-or-root>: <message>".
	path, _, found := strings.Cut(res.Errors[0], ": ")
	require.True(t, found)
	assert.Equal(t, "vehicle.yearOfManufacture", path)
}

func TestValidateLevyAcceptsNumberOrIncluded(t *testing.T) {
	v := newValidator(t)

	doc := defaultedDocument()
	doc.SetPath("premiumAndDiscounts.levies.mib", 16.5)
	doc.SetPath("premiumAndDiscounts.levies.ia", "INCLUDED")
	_, res := v.Validate(doc)
	assert.True(t, res.IsValid)

	doc = defaultedDocument()
	doc.SetPath("premiumAndDiscounts.levies.mib", 16.5)
	doc.SetPath("premiumAndDiscounts.levies.ia", 23.1)
	_, res = v.Validate(doc)
	assert.True(t, res.IsValid)
}

func TestValidateMissingSectionScansItsFields(t *testing.T) {
	v := newValidator(t)
	doc := defaultedDocument()
	delete(doc, "policyholder")

	_, res := v.Validate(doc)

	assert.False(t, res.IsValid)
	assert.Contains(t, res.MissingFields, "policyholder")
}

func TestValidateDocumentWithDefaultSentinelsStillValid(t *testing.T) {
	// Defaults are a completeness mechanism, not a validity problem: "UNKNOWN"
	// strings and zero numerics satisfy the schema.
	v := newValidator(t)
	doc := defaultedDocument()
	doc.SetPath("policyholder.hkid", "REDACTED")
	doc.SetPath("additionalEndorsements.endorsements", []string{})

	_, res := v.Validate(doc)

	assert.True(t, res.IsValid)
	assert.Empty(t, res.MissingFields)
}

func TestNewValidatorRejectsMalformedSchema(t *testing.T) {
	_, err := schema.NewValidator(map[string]any{"type": 42}, nil)
	assert.Error(t, err)
}
