package policy

import "strings"

// Sentinel values standing in for "not determinable" at the data level,
// distinct from null/absent at the schema level.
const (
	SentinelUnknown  = "UNKNOWN"
	SentinelRedacted = "REDACTED"
	SentinelNA       = "N/A"

	DefaultLimitationsOnUse  = "UNKNOWN - standard usage restrictions apply"
	DefaultAuthorizedDrivers = "UNKNOWN - standard driver authorization applies"
)

// Document is a nested policy record keyed by dot-delimited logical paths.
// Leaf values are string, int, float64, []string or nil.
type Document map[string]any

// NewDocument returns a document pre-seeded with the section skeleton so that
// partially extracted responses still land in the expected shape.
func NewDocument() Document {
	return Document{
		"policyholder": map[string]any{},
		"vehicle":      map[string]any{},
		"coverage": map[string]any{
			"liabilityLimits": map[string]any{},
			"excess":          map[string]any{},
		},
		"premiumAndDiscounts": map[string]any{
			"levies": map[string]any{},
		},
		"insurerAndPolicyDetails": map[string]any{
			"periodOfInsurance": map[string]any{},
		},
		"additionalEndorsements": map[string]any{},
	}
}

// SetPath assigns a leaf value at a dotted path, creating intermediate maps
// as needed. An existing non-map value on the way is replaced (last write wins).
func (d Document) SetPath(path string, value any) {
	keys := strings.Split(path, ".")
	current := map[string]any(d)
	for _, k := range keys[:len(keys)-1] {
		next, ok := current[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[k] = next
		}
		current = next
	}
	current[keys[len(keys)-1]] = value
}

// GetPath returns the value at a dotted path. The second return is false when
// any segment of the path is absent.
func (d Document) GetPath(path string) (any, bool) {
	keys := strings.Split(path, ".")
	current := map[string]any(d)
	for i, k := range keys {
		v, ok := current[k]
		if !ok {
			return nil, false
		}
		if i == len(keys)-1 {
			return v, true
		}
		current, ok = v.(map[string]any)
		if !ok {
			return nil, false
		}
	}
	return nil, false
}
