package services

import (
	"time"

	"sitetrack/models"
)

// Tags stamped on materials produced by the one-time collection merge, so
// their origin stays visible after migration.
const (
	tagFromAgency    = "migrated-from-agency"
	tagFromInventory = "migrated-from-inventory"
)

// PrepareProjectWithMaterials is the migration entry point, run once when a
// project document is loaded. It only fires while the canonical materials
// collection is still empty; a project that already has any material is
// returned untouched, which is also what makes the migration idempotent.
func PrepareProjectWithMaterials(p models.Project) models.Project {
	if len(p.Materials) > 0 {
		return p
	}
	return MigrateMaterialData(p)
}

// MigrateMaterialData merges the agency-material and inventory collections
// into the canonical materials collection. Pure: the input document is not
// mutated. Concatenation order is existing, then agency, then inventory, and
// deduplication keeps the first occurrence of each (name, unit) pair, so
// pre-existing materials win over agency rows, which win over inventory rows.
func MigrateMaterialData(p models.Project) models.Project {
	merged := make([]models.Material, 0, len(p.Materials)+len(p.AgencyMaterials)+len(p.Inventory))
	merged = append(merged, p.Materials...)

	for _, am := range p.AgencyMaterials {
		merged = append(merged, agencyToMaterial(am))
	}
	for _, item := range p.Inventory {
		merged = append(merged, inventoryToMaterial(item))
	}

	seen := make(map[string]struct{}, len(merged))
	deduped := merged[:0:0]
	for _, m := range merged {
		key := m.Name + "|" + m.Unit
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, m)
	}

	out := p
	out.Materials = deduped
	return out
}

// agencyToMaterial is the dedicated agency-to-material field mapping. It is
// deliberately richer than the generic normalizer: supplier identity and rate
// come across, and the logistics fields (challan, vehicle, received date) are
// kept on the record as carried-forward keys.
func agencyToMaterial(a models.AgencyMaterial) models.Material {
	name := a.Name
	if name == "" {
		name = a.MaterialName
	}
	if name == "" {
		name = unnamedMaterial
	}

	totalValue := a.TotalAmount
	if totalValue == 0 {
		totalValue = a.Quantity * a.Rate
	}

	location := a.DeliveryLocation
	if location == "" {
		location = a.Location
	}

	status := a.Status
	if status == "" {
		status = "available"
	}

	extras := make(map[string]any, len(a.Extras)+4)
	for k, v := range a.Extras {
		extras[k] = v
	}
	if a.ReceivedDate != "" {
		extras["receivedDate"] = a.ReceivedDate
	}
	if a.DeliveryLocation != "" {
		extras["deliveryLocation"] = a.DeliveryLocation
	}
	if a.VehicleNumber != "" {
		extras["vehicleNumber"] = a.VehicleNumber
	}
	if a.ChallanNumber != "" {
		extras["challanNumber"] = a.ChallanNumber
	}
	if len(extras) == 0 {
		extras = nil
	}

	m := models.Material{
		ID:                idOrGenerated(a.ID, "mat"),
		Name:              name,
		Category:          "Agency Supplied",
		Unit:              a.Unit,
		Quantity:          a.Quantity,
		AvailableQuantity: a.Quantity,
		UnitCost:          a.Rate,
		TotalValue:        totalValue,
		ReorderLevel:      defaultReorderLevel,
		Criticality:       "medium",
		Location:          location,
		Status:            status,
		SupplierID:        a.AgencyID,
		SupplierRate:      a.Rate,
		Tags:              []string{tagFromAgency},
		LastUpdated:       orNow(a.LastUpdated),
		Extras:            extras,
	}
	return m
}

// inventoryToMaterial maps a store item onto the material shape. The store
// never tracked cost, so the cost fields are zeroed rather than guessed.
func inventoryToMaterial(item models.InventoryItem) models.Material {
	name := item.Name
	if name == "" {
		name = item.ItemName
	}
	if name == "" {
		name = unnamedItem
	}

	quantity := item.Quantity
	if quantity == 0 {
		quantity = item.CurrentQuantity
	}

	reorder := item.ReorderLevel
	if reorder == 0 {
		reorder = defaultReorderLevel
	}

	status := item.Status
	if status == "" {
		status = "available"
	}

	extras := make(map[string]any, len(item.Extras)+2)
	for k, v := range item.Extras {
		extras[k] = v
	}
	if item.RequiredQuantity != 0 {
		extras["requiredQuantity"] = item.RequiredQuantity
	}
	if item.ReceivedQuantity != 0 {
		extras["receivedQuantity"] = item.ReceivedQuantity
	}
	if len(extras) == 0 {
		extras = nil
	}

	return models.Material{
		ID:                idOrGenerated(item.ID, "mat"),
		Name:              name,
		Category:          "General",
		Unit:              item.Unit,
		Quantity:          quantity,
		AvailableQuantity: quantity,
		UnitCost:          0,
		TotalValue:        0,
		ReorderLevel:      reorder,
		Criticality:       "medium",
		Location:          item.Location,
		Status:            status,
		Tags:              []string{tagFromInventory},
		LastUpdated:       orNow(item.LastUpdated),
		Extras:            extras,
	}
}

func idOrGenerated(id, prefix string) string {
	if id != "" {
		return id
	}
	return generateResourceID(prefix)
}

func orNow(s string) string {
	if s != "" {
		return s
	}
	return time.Now().UTC().Format(time.RFC3339)
}
