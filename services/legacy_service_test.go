package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sitetrack/models"
)

func TestIsLegacyStructure(t *testing.T) {
	assert.False(t, IsLegacyStructure(nil))
	assert.False(t, IsLegacyStructure(map[string]any{}))

	assert.True(t, IsLegacyStructure(map[string]any{"itemName": "Cement"}))
	assert.True(t, IsLegacyStructure(map[string]any{"totalQuantity": 100.0}))
	assert.True(t, IsLegacyStructure(map[string]any{"availableQty": 3.0}))
	assert.True(t, IsLegacyStructure(map[string]any{"unitPrice": 385.0}))
	assert.True(t, IsLegacyStructure(map[string]any{"itemDescription": "20mm aggregate"}))

	// No legacy-only marker at all.
	assert.False(t, IsLegacyStructure(map[string]any{"quantity": 5.0, "unit": "bag"}))
}

func TestIsLegacyStructureNameShortCircuit(t *testing.T) {
	// A usable name makes the record canonical even when legacy markers are
	// also present.
	rec := map[string]any{
		"name":          "OPC 53 Cement",
		"itemName":      "OPC 53 Cement",
		"totalQuantity": 100.0,
	}
	assert.False(t, IsLegacyStructure(rec))

	// An empty or nil name does not count as having one.
	assert.True(t, IsLegacyStructure(map[string]any{"name": "", "itemName": "Cement"}))
	assert.True(t, IsLegacyStructure(map[string]any{"name": nil, "itemName": "Cement"}))
}

func TestClassifyResourcePriority(t *testing.T) {
	assert.Equal(t, models.KindVehicle, ClassifyResource(map[string]any{"plateNumber": "MH-12-AB-1234"}))
	assert.Equal(t, models.KindVehicle, ClassifyResource(map[string]any{"driver": "R. Sharma"}))

	assert.Equal(t, models.KindAgencyMaterial, ClassifyResource(map[string]any{"agencyId": "agy-2"}))
	assert.Equal(t, models.KindAgencyMaterial, ClassifyResource(map[string]any{"materialName": "MS Steel"}))

	assert.Equal(t, models.KindInventoryItem, ClassifyResource(map[string]any{
		"itemName":     "Binding Wire",
		"reorderLevel": 10.0,
	}))
	// itemName alone, with no reorder level, falls through to material.
	assert.Equal(t, models.KindMaterial, ClassifyResource(map[string]any{"itemName": "Binding Wire"}))

	assert.Equal(t, models.KindMaterial, ClassifyResource(map[string]any{}))
	assert.Equal(t, models.KindMaterial, ClassifyResource(nil))
}

func TestClassifyResourceAmbiguousRecords(t *testing.T) {
	// Vehicle markers beat agency markers.
	rec := map[string]any{
		"driver":   "R. Sharma",
		"agencyId": "agy-2",
	}
	assert.Equal(t, models.KindVehicle, ClassifyResource(rec))

	// Agency markers beat inventory markers.
	rec = map[string]any{
		"agencyId":     "agy-2",
		"itemName":     "Binding Wire",
		"reorderLevel": 10.0,
	}
	assert.Equal(t, models.KindAgencyMaterial, ClassifyResource(rec))
}
