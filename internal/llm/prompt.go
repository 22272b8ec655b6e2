package llm

import (
	"strings"
	"unicode"
)

// maxPromptChars caps the document text included in the user prompt to stay
// well inside model context limits while keeping multi-page coverage.
const maxPromptChars = 20000

// BuildPolicyPrompt assembles the extraction prompt pair for a policy
// document's text. The system prompt fixes the output contract: one
// `dotted.path: value` assertion per line.
func BuildPolicyPrompt(documentText string) Request {
	return Request{
		System: policySystemPrompt,
		User:   buildUserPrompt(documentText),
	}
}

const policySystemPrompt = `You are an expert at extracting structured information from car insurance policy documents.
Extract all relevant information from the provided policy document text and return it as KEY-VALUE PAIRS, one per line:

KEY: value

For nested objects, use dot notation (e.g. "policyholder.name: John Doe", "coverage.liabilityLimits.bodilyInjury: 100000000").
For arrays, use comma-separated values (e.g. "policyholder.namedDrivers: Driver1, Driver2").

Required fields that MUST be extracted (use "UNKNOWN" if truly not found):
- policyholder.name, policyholder.address, policyholder.occupation, policyholder.namedDrivers (optional)
- vehicle.registrationMark, vehicle.makeAndModel, vehicle.yearOfManufacture, vehicle.chassisNumber, vehicle.engineNumber (optional), vehicle.cubicCapacity (optional), vehicle.seatingCapacity, vehicle.bodyType, vehicle.estimatedValue (optional)
- coverage.typeOfCover, coverage.liabilityLimits.bodilyInjury, coverage.liabilityLimits.propertyDamage, coverage.excess.thirdPartyProperty (optional), coverage.excess.youngDriver (optional), coverage.excess.inexperiencedDriver (optional), coverage.excess.unnamedDriver (optional), coverage.limitationsOnUse, coverage.authorizedDrivers
- premiumAndDiscounts.premiumAmount, premiumAndDiscounts.totalPayable, premiumAndDiscounts.noClaimDiscount (as number, e.g. 60 for 60%), premiumAndDiscounts.levies.mib (optional), premiumAndDiscounts.levies.ia (optional)
- insurerAndPolicyDetails.insurerName, insurerAndPolicyDetails.policyNumber, insurerAndPolicyDetails.periodOfInsurance.start, insurerAndPolicyDetails.periodOfInsurance.end, insurerAndPolicyDetails.dateOfIssue (optional)
- additionalEndorsements.endorsements (optional, comma-separated), additionalEndorsements.hirePurchaseMortgagee (optional)

Special instructions:
1. coverage.limitationsOnUse is always present, even as standard boilerplate ("social, domestic and pleasure", "use only for...", restrictions on use). Extract the full sentence. If truly not found, use "UNKNOWN - standard usage restrictions apply".
2. coverage.authorizedDrivers is always present ("the policyholder", "any person driving with permission", "who may drive"). Extract the full description. If truly not found, use "UNKNOWN - standard driver authorization applies".
3. insurerAndPolicyDetails.insurerName: search headers, footers and all pages for the insurance company name.
4. Vehicle, policyholder and premium details are often in tables, schedules or summary sections; search the entire document.

Redacted documents: if a field is blacked out, masked, or shows as "***" or "[REDACTED]", use "REDACTED" as the value. Never guess redacted values.

Multilingual documents: the text may contain Chinese (繁體中文 or 简体中文). Look for bilingual labels (e.g. "Policyholder / 受保人") and extract values from whichever language they appear in.

Guidelines:
1. For required string fields that cannot be found, use "UNKNOWN" (not null, not empty); if redacted, "REDACTED".
2. For missing optional fields, omit the line entirely.
3. Dates in DD/MM/YYYY format. Monetary values as numbers only. Percentages as numbers (60, not "60%").
4. Return ONLY the key-value pairs, one per line, no additional text.`

func buildUserPrompt(documentText string) string {
	if len(documentText) > maxPromptChars {
		documentText = documentText[:maxPromptChars] + "\n\n[Text truncated due to length...]"
	}

	var notes strings.Builder
	if containsHan(documentText) {
		notes.WriteString("\nNOTE: This document contains Chinese text. Extract information from both English and Chinese sections.\n")
	}
	if containsRedactionMarker(documentText) {
		notes.WriteString("\nNOTE: This document appears to contain REDACTED information. Use \"REDACTED\" for any fields that are blacked out or masked.\n")
	}

	var b strings.Builder
	b.WriteString("Extract all relevant information from the following car insurance policy document text.\n")
	b.WriteString(notes.String())
	b.WriteString("\nPolicy Document Text:\n---\n")
	b.WriteString(documentText)
	b.WriteString("\n---\n\nReturn all extracted information as KEY-VALUE PAIRS (one per line) as described in the system prompt.\n")
	b.WriteString("For required fields that cannot be found, use \"UNKNOWN\". For redacted fields, use \"REDACTED\".")
	return b.String()
}

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

var redactionMarkers = []string{"REDACTED", "***", "BLACKED", "MASKED", "████"}

func containsRedactionMarker(s string) bool {
	up := strings.ToUpper(s)
	for _, m := range redactionMarkers {
		if strings.Contains(up, m) {
			return true
		}
	}
	return false
}
