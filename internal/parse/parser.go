// Package parse turns the generation capability's line-oriented key/value
// output into a typed, nested, null-safe policy document.
package parse

import (
	"log/slog"
	"strconv"
	"strings"

	"policyscan/internal/policy"
)

// Parser converts raw `dotted.path: value` lines into a policy.Document.
// The field policy is read-only shared state; the parser itself is stateless
// across calls and safe for concurrent use.
type Parser struct {
	policy *policy.FieldPolicy
	logger *slog.Logger
}

func NewParser(fp *policy.FieldPolicy, logger *slog.Logger) *Parser {
	if fp == nil {
		fp = policy.NewFieldPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{policy: fp, logger: logger}
}

// Parse runs the single parse-and-fill pass: line-by-line assignment with
// per-path coercion, then the unconditional default-completion pass. Malformed
// lines are skipped, never fatal. Duplicate paths: last write wins.
func (p *Parser) Parse(raw string) policy.Document {
	doc := policy.NewDocument()

	var assigned, skipped int
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, ":") {
			skipped++
			continue
		}
		key, value, _ := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			skipped++
			continue
		}
		// A bare "null" token is dropped unless the value carries an explicit
		// sentinel marker that would otherwise be lost.
		if strings.EqualFold(value, "null") && !containsSentinel(value) {
			skipped++
			continue
		}
		doc.SetPath(key, p.coerce(key, value))
		assigned++
	}

	policy.ApplyDefaults(doc)

	p.logger.Debug("parse.response.ok", "assigned", assigned, "skipped", skipped)
	return doc
}

func containsSentinel(value string) bool {
	up := strings.ToUpper(value)
	return strings.Contains(up, policy.SentinelNA) ||
		strings.Contains(up, policy.SentinelUnknown) ||
		strings.Contains(up, policy.SentinelRedacted)
}

// coerce applies the per-path coercion rule to a raw value.
func (p *Parser) coerce(path, value string) any {
	switch p.policy.KindFor(path) {
	case policy.KindStringList:
		if value == policy.SentinelNA {
			return []string{}
		}
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out

	case policy.KindInteger:
		if value == policy.SentinelNA {
			return nil
		}
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		return nil

	case policy.KindCurrency:
		return coerceNumber(value)

	case policy.KindLevy:
		cleaned := stripCurrency(value)
		if strings.EqualFold(cleaned, "INCLUDED") {
			return "INCLUDED"
		}
		return coerceNumber(value)

	case policy.KindRequiredString:
		up := strings.ToUpper(value)
		switch up {
		case policy.SentinelNA, policy.SentinelUnknown, policy.SentinelRedacted:
			return up
		}
		// Longer sentinel-prefixed messages ("UNKNOWN - standard ... applies")
		// and regular values are kept verbatim.
		return value

	default: // KindOptionalString
		if value == policy.SentinelNA {
			return nil
		}
		return value
	}
}

// stripCurrency removes currency symbols, thousands separators and the HKD
// currency-code token.
func stripCurrency(value string) string {
	cleaned := strings.ReplaceAll(value, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "HKD", "")
	return strings.TrimSpace(cleaned)
}

// coerceNumber parses a currency/number value: integral strings become int,
// the rest float64; absence, "N/A" or parse failure yields nil.
func coerceNumber(value string) any {
	cleaned := stripCurrency(value)
	if cleaned == "" || cleaned == policy.SentinelNA {
		return nil
	}
	if strings.Contains(cleaned, ".") {
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return f
		}
		return nil
	}
	if n, err := strconv.Atoi(cleaned); err == nil {
		return n
	}
	return nil
}
