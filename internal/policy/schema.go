package policy

// BuildPolicySchema returns the JSON-Schema (draft 2020-12 subset) for the
// policy document as a generic map. The schema is versioned configuration:
// built once at startup and shared read-only with the validator.
func BuildPolicySchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"policyholder": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":       map[string]any{"type": "string"},
					"address":    map[string]any{"type": "string"},
					"occupation": map[string]any{"type": "string"},
					"namedDrivers": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
				"required": []any{"name", "address", "occupation"},
			},
			"vehicle": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"registrationMark":  map[string]any{"type": "string"},
					"makeAndModel":      map[string]any{"type": "string"},
					"yearOfManufacture": map[string]any{"type": "integer"},
					"chassisNumber":     map[string]any{"type": "string"},
					"engineNumber":      map[string]any{"type": "string"},
					"cubicCapacity":     map[string]any{"type": "number"},
					"seatingCapacity":   map[string]any{"type": "integer"},
					"bodyType":          map[string]any{"type": "string"},
					"estimatedValue":    map[string]any{"type": "number"},
				},
				"required": []any{
					"registrationMark", "makeAndModel", "yearOfManufacture",
					"chassisNumber", "seatingCapacity", "bodyType",
				},
			},
			"coverage": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"typeOfCover": map[string]any{"type": "string"},
					"liabilityLimits": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"bodilyInjury":   map[string]any{"type": "number"},
							"propertyDamage": map[string]any{"type": "number"},
						},
						"required": []any{"bodilyInjury", "propertyDamage"},
					},
					"excess": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"thirdPartyProperty":  map[string]any{"type": "number"},
							"youngDriver":         map[string]any{"type": "number"},
							"inexperiencedDriver": map[string]any{"type": "number"},
							"unnamedDriver":       map[string]any{"type": "number"},
						},
					},
					"limitationsOnUse":  map[string]any{"type": "string"},
					"authorizedDrivers": map[string]any{"type": "string"},
				},
				"required": []any{
					"typeOfCover", "liabilityLimits", "excess",
					"limitationsOnUse", "authorizedDrivers",
				},
			},
			"premiumAndDiscounts": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"premiumAmount":   map[string]any{"type": "number"},
					"totalPayable":    map[string]any{"type": "number"},
					"noClaimDiscount": map[string]any{"type": "number"},
					"levies": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"mib": map[string]any{"type": "number"},
							// IA levy is number or the literal "INCLUDED".
							"ia": map[string]any{
								"oneOf": []any{
									map[string]any{"type": "number"},
									map[string]any{"type": "string"},
								},
							},
						},
					},
				},
				"required": []any{"premiumAmount", "totalPayable", "noClaimDiscount"},
			},
			"insurerAndPolicyDetails": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"insurerName":  map[string]any{"type": "string"},
					"policyNumber": map[string]any{"type": "string"},
					"periodOfInsurance": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"start": map[string]any{"type": "string"},
							"end":   map[string]any{"type": "string"},
						},
						"required": []any{"start", "end"},
					},
					"dateOfIssue": map[string]any{"type": "string"},
				},
				"required": []any{"insurerName", "policyNumber", "periodOfInsurance"},
			},
			"additionalEndorsements": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"endorsements": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"hirePurchaseMortgagee": map[string]any{"type": "string"},
				},
			},
		},
		"required": []any{
			"policyholder", "vehicle", "coverage",
			"premiumAndDiscounts", "insurerAndPolicyDetails",
		},
	}
}
