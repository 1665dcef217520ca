package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitetrack/models"
)

func ledgerFixture() models.Project {
	return models.Project{
		ID: "prj-1",
		BOQ: []models.BOQItem{
			{ID: "boq-1", ItemNo: "2.04", Quantity: 10, Rate: 100, Amount: 1000},
		},
		Structures: []models.StructureAsset{
			{
				ID:   "str-1",
				Name: "Minor Bridge CH 12+400",
				Components: []models.StructureComponent{
					{
						ID:            "c1",
						Name:          "Pier P2 shaft",
						TotalQuantity: 10,
						BOQItemID:     "boq-1",
					},
				},
			},
		},
	}
}

// assertLedgerConsistent checks the two denormalized counters against the
// work logs they mirror: each component's completed quantity equals the sum
// of its log quantities, and each BOQ line's completed quantity equals the
// sum of all log quantities referencing it across every component.
func assertLedgerConsistent(t *testing.T, p models.Project) {
	t.Helper()
	boqTotals := make(map[string]float64)
	for _, s := range p.Structures {
		for _, c := range s.Components {
			var sum float64
			for _, l := range c.WorkLogs {
				sum += l.Quantity
				if l.BOQItemID != "" {
					boqTotals[l.BOQItemID] += l.Quantity
				}
			}
			assert.Equal(t, sum, c.CompletedQuantity, "component %s counter drifted from its work logs", c.ID)
		}
	}
	for _, item := range p.BOQ {
		assert.Equal(t, boqTotals[item.ID], item.CompletedQuantity, "boq item %s counter drifted from its work logs", item.ID)
	}
}

func TestAddThenDeleteWorkLogRoundTrip(t *testing.T) {
	p := ledgerFixture()

	p1, ok := AddWorkLog(p, models.WorkLogRequest{
		StructureID: "str-1",
		ComponentID: "c1",
		Quantity:    5,
		BOQItemID:   "boq-1",
	})
	require.True(t, ok)

	c1 := p1.Structures[0].Components[0]
	require.Len(t, c1.WorkLogs, 1)
	assert.Equal(t, 5.0, c1.CompletedQuantity)
	assert.Equal(t, 5.0, p1.BOQ[0].CompletedQuantity)
	assert.Equal(t, 50, CalculateOverallProgress(p1.Structures[0]))
	assert.Equal(t, 50, CalculateBOQProgress(p1.BOQ))
	assertLedgerConsistent(t, p1)

	p2, ok := DeleteWorkLog(p1, "str-1", "c1", c1.WorkLogs[0].ID)
	require.True(t, ok)
	assert.Equal(t, 0.0, p2.Structures[0].Components[0].CompletedQuantity)
	assert.Equal(t, 0.0, p2.BOQ[0].CompletedQuantity)
	assert.Empty(t, p2.Structures[0].Components[0].WorkLogs)
	assertLedgerConsistent(t, p2)
}

func TestWorkLogSequencesKeepLedgerConsistent(t *testing.T) {
	p := ledgerFixture()

	var ok bool
	p, ok = AddWorkLog(p, models.WorkLogRequest{StructureID: "str-1", ComponentID: "c1", Quantity: 3, BOQItemID: "boq-1"})
	require.True(t, ok)
	assertLedgerConsistent(t, p)

	p, ok = AddWorkLog(p, models.WorkLogRequest{StructureID: "str-1", ComponentID: "c1", Quantity: 4, BOQItemID: "boq-1"})
	require.True(t, ok)
	assertLedgerConsistent(t, p)

	// A log not linked to any BOQ line moves only the component counter.
	p, ok = AddWorkLog(p, models.WorkLogRequest{StructureID: "str-1", ComponentID: "c1", Quantity: 2})
	require.True(t, ok)
	assertLedgerConsistent(t, p)
	assert.Equal(t, 9.0, p.Structures[0].Components[0].CompletedQuantity)
	assert.Equal(t, 7.0, p.BOQ[0].CompletedQuantity)

	logs := p.Structures[0].Components[0].WorkLogs
	require.Len(t, logs, 3)
	p, ok = DeleteWorkLog(p, "str-1", "c1", logs[1].ID)
	require.True(t, ok)
	assertLedgerConsistent(t, p)
	assert.Equal(t, 5.0, p.Structures[0].Components[0].CompletedQuantity)
	assert.Equal(t, 3.0, p.BOQ[0].CompletedQuantity)
}

func TestAddWorkLogIsPure(t *testing.T) {
	p := ledgerFixture()

	_, ok := AddWorkLog(p, models.WorkLogRequest{
		StructureID: "str-1", ComponentID: "c1", Quantity: 5, BOQItemID: "boq-1",
	})
	require.True(t, ok)

	// The input document is untouched.
	assert.Equal(t, 0.0, p.Structures[0].Components[0].CompletedQuantity)
	assert.Empty(t, p.Structures[0].Components[0].WorkLogs)
	assert.Equal(t, 0.0, p.BOQ[0].CompletedQuantity)
}

func TestAddWorkLogNoOps(t *testing.T) {
	p := ledgerFixture()

	// Missing quantity.
	out, ok := AddWorkLog(p, models.WorkLogRequest{StructureID: "str-1", ComponentID: "c1"})
	assert.False(t, ok)
	assert.Equal(t, p, out)

	// Unknown structure: the BOQ counter must not move either.
	out, ok = AddWorkLog(p, models.WorkLogRequest{StructureID: "str-99", ComponentID: "c1", Quantity: 5, BOQItemID: "boq-1"})
	assert.False(t, ok)
	assert.Equal(t, 0.0, out.BOQ[0].CompletedQuantity)

	// Unknown component.
	out, ok = AddWorkLog(p, models.WorkLogRequest{StructureID: "str-1", ComponentID: "c99", Quantity: 5, BOQItemID: "boq-1"})
	assert.False(t, ok)
	assert.Equal(t, 0.0, out.BOQ[0].CompletedQuantity)
}

func TestAddWorkLogDanglingBOQReference(t *testing.T) {
	p := ledgerFixture()

	out, ok := AddWorkLog(p, models.WorkLogRequest{
		StructureID: "str-1", ComponentID: "c1", Quantity: 5, BOQItemID: "boq-gone",
	})
	// The work log stands; the unresolvable BOQ reference is skipped.
	require.True(t, ok)
	assert.Equal(t, 5.0, out.Structures[0].Components[0].CompletedQuantity)
	assert.Equal(t, 0.0, out.BOQ[0].CompletedQuantity)
}

func TestDeleteWorkLogDanglingBOQReference(t *testing.T) {
	p := ledgerFixture()
	p.Structures[0].Components[0].WorkLogs = []models.StructureWorkLog{
		{ID: "log-1", Quantity: 5, BOQItemID: "boq-gone"},
	}
	p.Structures[0].Components[0].CompletedQuantity = 5

	out, ok := DeleteWorkLog(p, "str-1", "c1", "log-1")
	require.True(t, ok)
	assert.Equal(t, 0.0, out.Structures[0].Components[0].CompletedQuantity)
	assert.Equal(t, 0.0, out.BOQ[0].CompletedQuantity)
}

func TestDeleteWorkLogNeverGoesNegative(t *testing.T) {
	// An externally inconsistent document: the counter is already below the
	// logged quantity. Deletion floors at zero instead of going negative.
	p := ledgerFixture()
	p.Structures[0].Components[0].WorkLogs = []models.StructureWorkLog{
		{ID: "log-1", Quantity: 5, BOQItemID: "boq-1"},
	}
	p.Structures[0].Components[0].CompletedQuantity = 2
	p.BOQ[0].CompletedQuantity = 1

	out, ok := DeleteWorkLog(p, "str-1", "c1", "log-1")
	require.True(t, ok)
	assert.Equal(t, 0.0, out.Structures[0].Components[0].CompletedQuantity)
	assert.Equal(t, 0.0, out.BOQ[0].CompletedQuantity)
}

func TestDeleteWorkLogNoOps(t *testing.T) {
	p := ledgerFixture()

	out, ok := DeleteWorkLog(p, "str-99", "c1", "log-1")
	assert.False(t, ok)
	assert.Equal(t, p, out)

	out, ok = DeleteWorkLog(p, "str-1", "c99", "log-1")
	assert.False(t, ok)
	assert.Equal(t, p, out)

	out, ok = DeleteWorkLog(p, "str-1", "c1", "log-unknown")
	assert.False(t, ok)
	assert.Equal(t, p, out)
}
