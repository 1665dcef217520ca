package services

import (
	"fmt"
	"strconv"

	"sitetrack/models"
)

// Field names that only ever appear on records written by older app versions.
// A record carrying any of these, without a canonical "name", is legacy.
var legacyOnlyFields = []string{
	"itemName",
	"totalQuantity",
	"availableQty",
	"unitPrice",
	"itemDescription",
}

// IsLegacyStructure reports whether a raw record still uses the old field
// naming convention. Presence of a usable "name" short-circuits to canonical
// even when legacy markers are also present: older screens sometimes wrote
// both, and those records round-trip fine without coercion. Total function:
// nil, empty and malformed input all classify as not legacy.
func IsLegacyStructure(rec map[string]any) bool {
	if len(rec) == 0 {
		return false
	}
	if hasValue(rec, "name") {
		return false
	}
	for _, f := range legacyOnlyFields {
		if hasField(rec, f) {
			return true
		}
	}
	return false
}

// ClassifyResource recovers the resource kind of a legacy record from field
// presence. The checks are ordered: vehicle markers beat agency markers beat
// inventory markers, so a record carrying both agencyId and itemName resolves
// to an agency material. Material is the fallback for anything unrecognised.
func ClassifyResource(rec map[string]any) models.ResourceKind {
	switch {
	case hasField(rec, "plateNumber") || hasField(rec, "driver"):
		return models.KindVehicle
	case hasField(rec, "agencyId") || hasField(rec, "materialName"):
		return models.KindAgencyMaterial
	case hasField(rec, "itemName") && hasField(rec, "reorderLevel"):
		return models.KindInventoryItem
	default:
		return models.KindMaterial
	}
}

// hasField reports key presence with a non-nil value.
func hasField(rec map[string]any, key string) bool {
	v, ok := rec[key]
	return ok && v != nil
}

// hasValue is hasField plus rejecting empty strings, matching the truthiness
// check the legacy web client applied.
func hasValue(rec map[string]any, key string) bool {
	v, ok := rec[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return true
}

// firstString returns the first non-empty string among the given keys, else
// the fallback. Non-string values are stringified only when scalar.
func firstString(rec map[string]any, fallback string, keys ...string) string {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			if s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		case int:
			return strconv.Itoa(s)
		case bool:
			return strconv.FormatBool(s)
		}
	}
	return fallback
}

// firstNumber returns the first present numeric value among the given keys,
// else the fallback. JSON numbers decode as float64; numeric strings from old
// form inputs are parsed as well. A present-but-unparseable value degrades to
// the fallback rather than aborting the record.
func firstNumber(rec map[string]any, fallback float64, keys ...string) float64 {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		case string:
			if parsed, err := strconv.ParseFloat(n, 64); err == nil {
				return parsed
			}
		}
	}
	return fallback
}

// recordID returns the record's own id when it has one, stringifying numeric
// ids, else empty.
func recordID(rec map[string]any) string {
	v, ok := rec["id"]
	if !ok || v == nil {
		return ""
	}
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	default:
		return fmt.Sprintf("%v", id)
	}
}
