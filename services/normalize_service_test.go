package services

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMaterialLegacyFields(t *testing.T) {
	m := NormalizeMaterial(map[string]any{
		"itemName":      "OPC 53 Cement",
		"totalQuantity": 100.0,
		"unitPrice":     385.0,
	})

	assert.Equal(t, "OPC 53 Cement", m.Name)
	assert.Equal(t, 100.0, m.Quantity)
	assert.Equal(t, 100.0, m.AvailableQuantity)
	assert.Equal(t, 385.0, m.UnitCost)
	assert.Equal(t, 38500.0, m.TotalValue)
	assert.Equal(t, 10.0, m.ReorderLevel)
	assert.True(t, strings.HasPrefix(m.ID, "mat-"))
}

func TestNormalizeMaterialPreservesSuppliedValues(t *testing.T) {
	m := NormalizeMaterial(map[string]any{
		"id":         "mat-77",
		"name":       "Admixture",
		"quantity":   10.0,
		"unitCost":   5.0,
		"totalValue": 999.0,
	})

	assert.Equal(t, "mat-77", m.ID)
	// A supplied total value is never re-derived.
	assert.Equal(t, 999.0, m.TotalValue)
}

func TestNormalizeMaterialDefaults(t *testing.T) {
	m := NormalizeMaterial(map[string]any{"availableQty": 3.0})

	assert.Equal(t, "Unnamed Material", m.Name)
	assert.Equal(t, 3.0, m.Quantity)
	assert.Equal(t, 0.0, m.UnitCost)
	assert.Equal(t, 0.0, m.TotalValue)
	assert.Equal(t, 10.0, m.ReorderLevel)

	// Nil input degrades to defaults instead of panicking.
	assert.NotPanics(t, func() { NormalizeMaterial(nil) })
	assert.Equal(t, "Unnamed Material", NormalizeMaterial(nil).Name)
}

func TestNormalizeMaterialCarriesUnknownKeys(t *testing.T) {
	m := NormalizeMaterial(map[string]any{
		"itemName":    "Cement",
		"customField": "keep-me",
	})
	require.NotNil(t, m.Extras)
	assert.Equal(t, "keep-me", m.Extras["customField"])
	// The legacy alias itself is not a canonical material key, so it rides
	// along as well.
	assert.Equal(t, "Cement", m.Extras["itemName"])

	data, err := json.Marshal(m)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "keep-me", out["customField"])
	assert.Equal(t, "Cement", out["name"])
}

func TestMaterialMarshalCanonicalFieldsWin(t *testing.T) {
	m := NormalizeMaterial(map[string]any{"name": "Cement", "quantity": 5.0})
	m.Extras = map[string]any{"name": "stale-legacy-name"}

	data, err := json.Marshal(m)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Cement", out["name"])
}

func TestNormalizeVehicle(t *testing.T) {
	v := NormalizeVehicle(map[string]any{
		"plateNumber": "MH-12-AB-1234",
		"driverName":  "R. Sharma",
	})

	assert.Equal(t, "Unnamed Vehicle", v.Name)
	assert.Equal(t, "MH-12-AB-1234", v.PlateNumber)
	assert.Equal(t, "R. Sharma", v.Driver)
	// One row is one vehicle unless the record says otherwise.
	assert.Equal(t, 1.0, v.Quantity)
	assert.True(t, strings.HasPrefix(v.ID, "veh-"))
}

func TestNormalizeInventoryItem(t *testing.T) {
	i := NormalizeInventoryItem(map[string]any{
		"itemName":        "Binding Wire",
		"currentQuantity": 120.0,
	})

	assert.Equal(t, "Binding Wire", i.Name)
	assert.Equal(t, i.Name, i.ItemName)
	assert.Equal(t, 120.0, i.Quantity)
	assert.Equal(t, 10.0, i.ReorderLevel)
	assert.True(t, strings.HasPrefix(i.ID, "inv-"))

	assert.Equal(t, "Unnamed Item", NormalizeInventoryItem(nil).Name)
}

func TestNormalizeAgencyMaterial(t *testing.T) {
	a := NormalizeAgencyMaterial(map[string]any{
		"materialName":  "MS Reinforcement Steel",
		"agencyId":      "agy-2",
		"quantity":      40.0,
		"rate":          52000.0,
		"challanNumber": "CH-2024-0112",
	})

	assert.Equal(t, "MS Reinforcement Steel", a.Name)
	assert.Equal(t, a.Name, a.MaterialName)
	assert.Equal(t, "agy-2", a.AgencyID)
	assert.Equal(t, 40.0*52000.0, a.TotalAmount)
	assert.Equal(t, "CH-2024-0112", a.ChallanNumber)

	// A supplied total amount is preserved, not re-derived.
	b := NormalizeAgencyMaterial(map[string]any{
		"materialName": "Steel",
		"quantity":     40.0,
		"rate":         52000.0,
		"totalAmount":  1.0,
	})
	assert.Equal(t, 1.0, b.TotalAmount)
}

func TestAutoMigrateResourceIdentityForCanonical(t *testing.T) {
	rec := map[string]any{
		"name":     "OPC 53 Cement",
		"quantity": 100.0,
		"itemName": "OPC 53 Cement",
	}
	out := AutoMigrateResource(rec)
	assert.Equal(t, rec, out)
}

func TestAutoMigrateResourceDispatch(t *testing.T) {
	// Vehicle markers win even with inventory markers present.
	out := AutoMigrateResource(map[string]any{
		"plateNumber":   "MH-12-AB-1234",
		"totalQuantity": 2.0,
	})
	assert.Equal(t, "MH-12-AB-1234", out["plateNumber"])
	assert.Equal(t, "Unnamed Vehicle", out["name"])
	assert.Equal(t, 1.0, out["quantity"])
	// The unconsumed legacy key survives the round trip.
	assert.Equal(t, 2.0, out["totalQuantity"])

	// Agency markers beat inventory markers.
	out = AutoMigrateResource(map[string]any{
		"agencyId":     "agy-2",
		"materialName": "Steel",
		"itemName":     "Steel",
		"reorderLevel": 4.0,
	})
	assert.Equal(t, "Steel", out["name"])
	assert.Equal(t, "agy-2", out["agencyId"])

	// Inventory when item markers are present without agency ones.
	out = AutoMigrateResource(map[string]any{
		"itemName":     "Binding Wire",
		"reorderLevel": 10.0,
	})
	assert.Equal(t, "Binding Wire", out["itemName"])
	id, _ := out["id"].(string)
	assert.True(t, strings.HasPrefix(id, "inv-"))

	// Default fallback is material.
	out = AutoMigrateResource(map[string]any{"unitPrice": 385.0})
	id, _ = out["id"].(string)
	assert.True(t, strings.HasPrefix(id, "mat-"))
}
