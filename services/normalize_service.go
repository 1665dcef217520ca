package services

import (
	"encoding/json"
	"fmt"
	"time"

	"sitetrack/models"
)

// User-visible fallback names for records that arrive with no usable name at
// all. These strings show up directly on the resource screens.
const (
	unnamedMaterial = "Unnamed Material"
	unnamedVehicle  = "Unnamed Vehicle"
	unnamedItem     = "Unnamed Item"
)

const defaultReorderLevel = 10

// generateResourceID builds an id the way the original client did:
// prefix plus the current epoch millis.
func generateResourceID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixMilli())
}

// NormalizeMaterial coerces a legacy material record into the canonical
// shape. Missing numerics default to 0 (reorder level to 10), the total value
// is derived from quantity * unit cost only when the legacy record did not
// already carry one, and every legacy key outside the canonical field list is
// carried forward untouched. Never panics, whatever the input.
func NormalizeMaterial(rec map[string]any) models.Material {
	quantity := firstNumber(rec, 0, "quantity", "totalQuantity", "qty", "availableQty")
	unitCost := firstNumber(rec, 0, "unitCost", "unitPrice", "rate", "cost")
	totalValue := firstNumber(rec, quantity*unitCost, "totalValue")

	m := models.Material{
		ID:                recordOrGeneratedID(rec, "mat"),
		Name:              firstString(rec, unnamedMaterial, "name", "materialName", "itemName", "description", "itemDescription"),
		Category:          firstString(rec, "General", "category"),
		Unit:              firstString(rec, "nos", "unit", "uom"),
		Quantity:          quantity,
		AvailableQuantity: firstNumber(rec, quantity, "availableQuantity", "availableQty"),
		UnitCost:          unitCost,
		TotalValue:        totalValue,
		ReorderLevel:      firstNumber(rec, defaultReorderLevel, "reorderLevel", "reorderPoint", "minimumStock"),
		Criticality:       firstString(rec, "medium", "criticality"),
		Location:          firstString(rec, "", "location", "deliveryLocation"),
		Status:            firstString(rec, "available", "status"),
		SupplierID:        firstString(rec, "", "supplierId"),
		SupplierRate:      firstNumber(rec, 0, "supplierRate"),
		RateHistory:       rateHistoryOf(rec),
		Tags:              stringSliceOf(rec, "tags"),
		LastUpdated:       firstString(rec, time.Now().UTC().Format(time.RFC3339), "lastUpdated"),
	}
	m.Extras = extrasOf(rec, models.MaterialFieldKeys)
	return m
}

// NormalizeVehicle coerces a legacy vehicle record. Quantity defaults to 1:
// a vehicle row is one vehicle unless the record says otherwise.
func NormalizeVehicle(rec map[string]any) models.Vehicle {
	v := models.Vehicle{
		ID:          recordOrGeneratedID(rec, "veh"),
		Name:        firstString(rec, unnamedVehicle, "name", "vehicleName", "description"),
		PlateNumber: firstString(rec, "", "plateNumber", "vehicleNumber", "registrationNumber"),
		Type:        firstString(rec, "general", "type", "vehicleType"),
		Driver:      firstString(rec, "", "driver", "driverName"),
		Unit:        firstString(rec, "nos", "unit"),
		Quantity:    firstNumber(rec, 1, "quantity"),
		Location:    firstString(rec, "", "location", "chainage"),
		Status:      firstString(rec, "active", "status"),
		AgencyID:    firstString(rec, "", "agencyId"),
		GPSLocation: firstString(rec, "", "gpsLocation"),
		Chainage:    firstString(rec, "", "chainage"),
		LastUpdated: firstString(rec, time.Now().UTC().Format(time.RFC3339), "lastUpdated"),
	}
	v.Extras = extrasOf(rec, models.VehicleFieldKeys)
	return v
}

// NormalizeInventoryItem coerces a legacy store item. Name and ItemName are
// kept equal; older records may carry either one.
func NormalizeInventoryItem(rec map[string]any) models.InventoryItem {
	name := firstString(rec, unnamedItem, "name", "itemName", "description", "itemDescription")
	i := models.InventoryItem{
		ID:               recordOrGeneratedID(rec, "inv"),
		Name:             name,
		ItemName:         name,
		Unit:             firstString(rec, "nos", "unit", "uom"),
		Quantity:         firstNumber(rec, 0, "quantity", "currentQuantity", "availableQty", "totalQuantity"),
		CurrentQuantity:  firstNumber(rec, 0, "currentQuantity", "quantity"),
		RequiredQuantity: firstNumber(rec, 0, "requiredQuantity"),
		ReceivedQuantity: firstNumber(rec, 0, "receivedQuantity"),
		ReorderLevel:     firstNumber(rec, defaultReorderLevel, "reorderLevel", "reorderPoint"),
		Location:         firstString(rec, "", "location"),
		Status:           firstString(rec, "in-stock", "status"),
		LastUpdated:      firstString(rec, time.Now().UTC().Format(time.RFC3339), "lastUpdated"),
	}
	i.Extras = extrasOf(rec, models.InventoryFieldKeys)
	return i
}

// NormalizeAgencyMaterial coerces a legacy agency-supplied material,
// preserving the logistics fields (challan, vehicle, delivery location) the
// agency screens record. Total amount is derived from quantity * rate only
// when the record did not already carry one.
func NormalizeAgencyMaterial(rec map[string]any) models.AgencyMaterial {
	name := firstString(rec, unnamedMaterial, "name", "materialName", "description", "itemDescription")
	quantity := firstNumber(rec, 0, "quantity", "totalQuantity", "qty")
	rate := firstNumber(rec, 0, "rate", "unitPrice", "unitCost")

	a := models.AgencyMaterial{
		ID:               recordOrGeneratedID(rec, "mat"),
		Name:             name,
		MaterialName:     name,
		AgencyID:         firstString(rec, "", "agencyId"),
		Unit:             firstString(rec, "nos", "unit", "uom"),
		Quantity:         quantity,
		Rate:             rate,
		TotalAmount:      firstNumber(rec, quantity*rate, "totalAmount"),
		ReceivedDate:     firstString(rec, "", "receivedDate", "deliveryDate"),
		DeliveryLocation: firstString(rec, "", "deliveryLocation", "location"),
		VehicleNumber:    firstString(rec, "", "vehicleNumber"),
		ChallanNumber:    firstString(rec, "", "challanNumber"),
		Location:         firstString(rec, "", "location", "deliveryLocation"),
		Status:           firstString(rec, "received", "status"),
		LastUpdated:      firstString(rec, time.Now().UTC().Format(time.RFC3339), "lastUpdated"),
	}
	a.Extras = extrasOf(rec, models.AgencyMaterialFieldKeys)
	return a
}

// AutoMigrateResource is the dispatch entry point for a single raw record.
// Canonical records pass through unchanged. Legacy records are classified and
// routed to the matching normalizer, then handed back as a plain JSON object
// so mixed collections keep one element shape.
func AutoMigrateResource(rec map[string]any) map[string]any {
	if !IsLegacyStructure(rec) {
		return rec
	}
	switch ClassifyResource(rec) {
	case models.KindVehicle:
		return toRecord(NormalizeVehicle(rec), rec)
	case models.KindAgencyMaterial:
		return toRecord(NormalizeAgencyMaterial(rec), rec)
	case models.KindInventoryItem:
		return toRecord(NormalizeInventoryItem(rec), rec)
	default:
		return toRecord(NormalizeMaterial(rec), rec)
	}
}

// toRecord flattens a normalized struct back into a JSON object. The raw
// record is the fallback if marshalling somehow fails; normalization must
// never lose a record.
func toRecord(v any, fallback map[string]any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return fallback
	}
	return out
}

func recordOrGeneratedID(rec map[string]any, prefix string) string {
	if id := recordID(rec); id != "" {
		return id
	}
	return generateResourceID(prefix)
}

// extrasOf collects the legacy keys that have no canonical home so they can
// be shallow-merged back onto the serialized record, canonical fields winning.
func extrasOf(rec map[string]any, canonical []string) map[string]any {
	if len(rec) == 0 {
		return nil
	}
	known := make(map[string]struct{}, len(canonical))
	for _, k := range canonical {
		known[k] = struct{}{}
	}
	var extras map[string]any
	for k, v := range rec {
		if _, ok := known[k]; ok {
			continue
		}
		if extras == nil {
			extras = make(map[string]any)
		}
		extras[k] = v
	}
	return extras
}

func rateHistoryOf(rec map[string]any) []models.RateEntry {
	v, ok := rec["rateHistory"]
	if !ok || v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out []models.RateEntry
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func stringSliceOf(rec map[string]any, key string) []string {
	v, ok := rec[key]
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
