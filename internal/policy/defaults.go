package policy

// requiredDefault is one entry of the default-completion table.
type requiredDefault struct {
	Path  string
	Value any
}

// requiredDefaults lists every required field with its canonical default,
// grouped by section. String defaults are the "UNKNOWN" sentinel (or a richer
// canonical message), numeric defaults are typed zeros.
var requiredDefaults = []requiredDefault{
	{"policyholder.name", SentinelUnknown},
	{"policyholder.address", SentinelUnknown},
	{"policyholder.occupation", SentinelUnknown},

	{"vehicle.registrationMark", SentinelUnknown},
	{"vehicle.makeAndModel", SentinelUnknown},
	{"vehicle.yearOfManufacture", 0},
	{"vehicle.chassisNumber", SentinelUnknown},
	{"vehicle.seatingCapacity", 0},
	{"vehicle.bodyType", SentinelUnknown},

	{"coverage.typeOfCover", SentinelUnknown},
	{"coverage.limitationsOnUse", DefaultLimitationsOnUse},
	{"coverage.authorizedDrivers", DefaultAuthorizedDrivers},
	{"coverage.liabilityLimits.bodilyInjury", 0},
	{"coverage.liabilityLimits.propertyDamage", 0},

	{"premiumAndDiscounts.premiumAmount", 0.0},
	{"premiumAndDiscounts.totalPayable", 0.0},
	{"premiumAndDiscounts.noClaimDiscount", 0.0},

	{"insurerAndPolicyDetails.insurerName", SentinelUnknown},
	{"insurerAndPolicyDetails.policyNumber", SentinelUnknown},
	{"insurerAndPolicyDetails.periodOfInsurance.start", SentinelUnknown},
	{"insurerAndPolicyDetails.periodOfInsurance.end", SentinelUnknown},
}

// requiredObjects are container paths the schema requires but no leaf default
// creates on its own.
var requiredObjects = []string{
	"coverage.excess",
}

// ApplyDefaults injects canonical defaults for every required field that is
// absent or null, then cleans up the levies sub-object. The pass alone makes
// any document structurally complete, whether or not it was seeded by
// NewDocument. It is idempotent: running it on an already complete document
// changes nothing.
func ApplyDefaults(doc Document) {
	for _, d := range requiredDefaults {
		if v, ok := doc.GetPath(d.Path); !ok || v == nil {
			doc.SetPath(d.Path, d.Value)
		}
	}
	for _, p := range requiredObjects {
		if v, ok := doc.GetPath(p); !ok || v == nil {
			doc.SetPath(p, map[string]any{})
		}
	}
	cleanupLevies(doc)
}

// cleanupLevies backfills a still-null levy member to zero, and removes the
// levies object entirely when it carries no value at all.
func cleanupLevies(doc Document) {
	pd, ok := doc["premiumAndDiscounts"].(map[string]any)
	if !ok {
		return
	}
	levies, ok := pd["levies"].(map[string]any)
	if !ok {
		return
	}
	if v, present := levies["mib"]; present && v == nil {
		levies["mib"] = 0.0
	}
	if v, present := levies["ia"]; present && v == nil {
		levies["ia"] = 0.0
	}
	if len(levies) == 0 || (levies["mib"] == nil && levies["ia"] == nil) {
		delete(pd, "levies")
	}
}
