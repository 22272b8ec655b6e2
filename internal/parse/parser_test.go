package parse_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyscan/internal/parse"
	"policyscan/internal/policy"
)

func newParser(t *testing.T) *parse.Parser {
	t.Helper()
	return parse.NewParser(policy.NewFieldPolicy(), nil)
}

func TestParseAssignsNestedValue(t *testing.T) {
	doc := newParser(t).Parse("policyholder.name: Jane Tan")

	v, ok := doc.GetPath("policyholder.name")
	require.True(t, ok)
	assert.Equal(t, "Jane Tan", v)
}

func TestParsePreservesRedactedSentinel(t *testing.T) {
	doc := newParser(t).Parse("policyholder.hkid: REDACTED")

	v, ok := doc.GetPath("policyholder.hkid")
	require.True(t, ok)
	assert.Equal(t, "REDACTED", v)
}

func TestParseCoercesCurrencyToFloat(t *testing.T) {
	doc := newParser(t).Parse("premiumAndDiscounts.premiumAmount: HKD 5,500.00")

	v, ok := doc.GetPath("premiumAndDiscounts.premiumAmount")
	require.True(t, ok)
	assert.Equal(t, 5500.0, v)
}

func TestParseCoercesIntegerFields(t *testing.T) {
	raw := strings.Join([]string{
		"vehicle.yearOfManufacture: 2019",
		"coverage.liabilityLimits.bodilyInjury: 100000000",
	}, "\n")
	doc := newParser(t).Parse(raw)

	v, _ := doc.GetPath("vehicle.yearOfManufacture")
	assert.Equal(t, 2019, v)
	v, _ = doc.GetPath("coverage.liabilityLimits.bodilyInjury")
	assert.Equal(t, 100000000, v)
}

func TestParseUnparsableIntegerFallsBackToDefault(t *testing.T) {
	doc := newParser(t).Parse("vehicle.yearOfManufacture: about 2019")

	// Coercion failure yields null, which the completion pass replaces with
	// the typed zero.
	v, ok := doc.GetPath("vehicle.yearOfManufacture")
	require.True(t, ok)
	assert.Equal(t, 0, v)
}

func TestParseSplitsEndorsementList(t *testing.T) {
	doc := newParser(t).Parse("additionalEndorsements.endorsements: No claims bonus protection, Windscreen cover")

	v, ok := doc.GetPath("additionalEndorsements.endorsements")
	require.True(t, ok)
	assert.Equal(t, []string{"No claims bonus protection", "Windscreen cover"}, v)
}

func TestParseEndorsementListNAIsEmpty(t *testing.T) {
	doc := newParser(t).Parse("additionalEndorsements.endorsements: N/A")

	v, ok := doc.GetPath("additionalEndorsements.endorsements")
	require.True(t, ok)
	assert.Equal(t, []string{}, v)
}

func TestParseLevyIncludedToken(t *testing.T) {
	doc := newParser(t).Parse("premiumAndDiscounts.levies.ia: included")

	v, ok := doc.GetPath("premiumAndDiscounts.levies.ia")
	require.True(t, ok)
	assert.Equal(t, "INCLUDED", v)
}

func TestParseLevyNumericValue(t *testing.T) {
	doc := newParser(t).Parse("premiumAndDiscounts.levies.mib: $16.50")

	v, ok := doc.GetPath("premiumAndDiscounts.levies.mib")
	require.True(t, ok)
	assert.Equal(t, 16.5, v)
}

func TestParseSkipsMalformedLines(t *testing.T) {
	raw := strings.Join([]string{
		"",
		"no colon in this line",
		"policyholder.occupation:",
		"vehicle.makeAndModel: Honda Jazz",
	}, "\n")
	doc := newParser(t).Parse(raw)

	v, _ := doc.GetPath("vehicle.makeAndModel")
	assert.Equal(t, "Honda Jazz", v)

	// The empty-value line must not assign; the default pass fills it.
	v, _ = doc.GetPath("policyholder.occupation")
	assert.Equal(t, "UNKNOWN", v)
}

func TestParseSkipsBareNullToken(t *testing.T) {
	doc := newParser(t).Parse("insurerAndPolicyDetails.insurerName: null")

	v, ok := doc.GetPath("insurerAndPolicyDetails.insurerName")
	require.True(t, ok)
	assert.Equal(t, "UNKNOWN", v)
}

func TestParseOptionalStringNAIsNull(t *testing.T) {
	doc := newParser(t).Parse("vehicle.engineNumber: N/A")

	v, ok := doc.GetPath("vehicle.engineNumber")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestParseDuplicatePathLastWriteWins(t *testing.T) {
	raw := "policyholder.name: First Pass\npolicyholder.name: Second Pass"
	doc := newParser(t).Parse(raw)

	v, _ := doc.GetPath("policyholder.name")
	assert.Equal(t, "Second Pass", v)
}

func TestParseValueContainingColonKeepsRemainder(t *testing.T) {
	doc := newParser(t).Parse("insurerAndPolicyDetails.periodOfInsurance.start: 2024-01-01 00:00")

	v, _ := doc.GetPath("insurerAndPolicyDetails.periodOfInsurance.start")
	assert.Equal(t, "2024-01-01 00:00", v)
}

func TestParseUnknownDeepPathIsAssigned(t *testing.T) {
	doc := newParser(t).Parse("coverage.extras.roadside: 24-hour assistance")

	v, ok := doc.GetPath("coverage.extras.roadside")
	require.True(t, ok)
	assert.Equal(t, "24-hour assistance", v)
}

func TestParseEmptyResponseYieldsFullyDefaultedDocument(t *testing.T) {
	doc := newParser(t).Parse("")

	v, _ := doc.GetPath("policyholder.name")
	assert.Equal(t, "UNKNOWN", v)
	v, _ = doc.GetPath("premiumAndDiscounts.noClaimDiscount")
	assert.Equal(t, 0.0, v)
	v, _ = doc.GetPath("coverage.limitationsOnUse")
	assert.Equal(t, "UNKNOWN - standard usage restrictions apply", v)

	// The empty levies object is dropped entirely.
	pd, ok := doc["premiumAndDiscounts"].(map[string]any)
	require.True(t, ok)
	_, present := pd["levies"]
	assert.False(t, present)
}

func TestParseRequiredStringSentinelUppercased(t *testing.T) {
	doc := newParser(t).Parse("policyholder.name: unknown")

	v, _ := doc.GetPath("policyholder.name")
	assert.Equal(t, "UNKNOWN", v)
}
