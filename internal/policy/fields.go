package policy

// CoercionKind selects how a raw line value is typed into the document.
type CoercionKind int

const (
	// KindOptionalString passes the value through as-is; "N/A" becomes nil.
	// This is the fallback for paths not present in the policy table.
	KindOptionalString CoercionKind = iota
	// KindRequiredString normalizes bare sentinel tokens to uppercase and
	// keeps longer sentinel-prefixed messages verbatim.
	KindRequiredString
	// KindInteger parses an integer; absence or parse failure yields nil.
	KindInteger
	// KindCurrency strips currency symbols, separators and the HKD token,
	// then parses integral strings as int and the rest as float64.
	KindCurrency
	// KindLevy is the dual-typed levy: numeric like KindCurrency, but the
	// literal token "INCLUDED" is preserved as a string.
	KindLevy
	// KindStringList splits on commas, trims, drops empties; "N/A" yields
	// an empty list.
	KindStringList
)

// FieldPolicy maps full dotted paths to coercion kinds. Built once at startup
// and read-only afterwards. Keying by full path (rather than the final path
// segment) keeps two parents sharing a leaf name from colliding.
type FieldPolicy struct {
	kinds map[string]CoercionKind
}

// NewFieldPolicy builds the coercion table for car insurance policy documents.
func NewFieldPolicy() *FieldPolicy {
	kinds := map[string]CoercionKind{
		"policyholder.name":         KindRequiredString,
		"policyholder.address":      KindRequiredString,
		"policyholder.occupation":   KindRequiredString,
		"policyholder.namedDrivers": KindStringList,

		"vehicle.registrationMark":  KindRequiredString,
		"vehicle.makeAndModel":      KindRequiredString,
		"vehicle.yearOfManufacture": KindInteger,
		"vehicle.chassisNumber":     KindRequiredString,
		"vehicle.cubicCapacity":     KindCurrency,
		"vehicle.seatingCapacity":   KindInteger,
		"vehicle.bodyType":          KindRequiredString,
		"vehicle.estimatedValue":    KindCurrency,

		"coverage.typeOfCover":                    KindRequiredString,
		"coverage.liabilityLimits.bodilyInjury":   KindCurrency,
		"coverage.liabilityLimits.propertyDamage": KindCurrency,
		"coverage.excess.thirdPartyProperty":      KindCurrency,
		"coverage.excess.youngDriver":             KindCurrency,
		"coverage.excess.inexperiencedDriver":     KindCurrency,
		"coverage.excess.unnamedDriver":           KindCurrency,
		"coverage.limitationsOnUse":               KindRequiredString,
		"coverage.authorizedDrivers":              KindRequiredString,

		"premiumAndDiscounts.premiumAmount":   KindCurrency,
		"premiumAndDiscounts.totalPayable":    KindCurrency,
		"premiumAndDiscounts.noClaimDiscount": KindCurrency,
		"premiumAndDiscounts.levies.mib":      KindCurrency,
		"premiumAndDiscounts.levies.ia":       KindLevy,

		"insurerAndPolicyDetails.insurerName":  KindRequiredString,
		"insurerAndPolicyDetails.policyNumber": KindRequiredString,

		"additionalEndorsements.endorsements": KindStringList,
	}
	return &FieldPolicy{kinds: kinds}
}

// KindFor returns the coercion kind for a full dotted path. Unknown paths
// (including paths deeper than the known schema) get the generic
// optional-string rule.
func (p *FieldPolicy) KindFor(path string) CoercionKind {
	if k, ok := p.kinds[path]; ok {
		return k
	}
	return KindOptionalString
}
