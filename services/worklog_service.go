package services

import (
	"time"

	"github.com/google/uuid"

	"sitetrack/models"
)

// The work-log ledger is the only place the two denormalized counters
// (a component's completedQuantity and a BOQ line's completedQuantity) are
// moved, and they always move together by the same quantity. Each operation
// is a pure function from the current document to a new one; the caller never
// sees a half-applied state.

// AddWorkLog appends a work log to the addressed component, increments the
// component counter, and, when the log is linked to a BOQ line, increments
// that line by the same quantity. Returns the updated document and whether
// the operation applied. A missing quantity, structure or component makes the
// whole operation a no-op: the BOQ counter is never touched when the
// structure lookup failed.
func AddWorkLog(p models.Project, req models.WorkLogRequest) (models.Project, bool) {
	if req.Quantity <= 0 {
		return p, false
	}

	si := findStructure(p.Structures, req.StructureID)
	if si < 0 {
		return p, false
	}
	ci := findComponent(p.Structures[si].Components, req.ComponentID)
	if ci < 0 {
		return p, false
	}

	logDate := req.Date
	if logDate == "" {
		logDate = time.Now().Format("2006-01-02")
	}
	entry := models.StructureWorkLog{
		ID:              "log-" + uuid.NewString(),
		Date:            logDate,
		Quantity:        req.Quantity,
		Rate:            req.Rate,
		BOQItemID:       req.BOQItemID,
		SubcontractorID: req.SubcontractorID,
		Remarks:         req.Remarks,
	}

	structures := cloneStructuresAt(p.Structures, si)
	component := &structures[si].Components[ci]
	logs := make([]models.StructureWorkLog, 0, len(component.WorkLogs)+1)
	logs = append(logs, component.WorkLogs...)
	component.WorkLogs = append(logs, entry)
	component.CompletedQuantity += req.Quantity

	out := p
	out.Structures = structures
	if req.BOQItemID != "" {
		// A dangling BOQ reference is skipped silently; the work log stands.
		out.BOQ = adjustBOQItem(p.BOQ, req.BOQItemID, req.Quantity)
	}
	return out, true
}

// DeleteWorkLog removes a work log by id and rolls both counters back by the
// quantity recovered from the log before removal. Counters are floored at
// zero so an already-inconsistent document can never be driven negative. A
// log whose BOQ reference no longer resolves skips the BOQ decrement
// silently. Unknown structure, component or log id is a no-op.
func DeleteWorkLog(p models.Project, structureID, componentID, logID string) (models.Project, bool) {
	si := findStructure(p.Structures, structureID)
	if si < 0 {
		return p, false
	}
	ci := findComponent(p.Structures[si].Components, componentID)
	if ci < 0 {
		return p, false
	}

	logs := p.Structures[si].Components[ci].WorkLogs
	li := -1
	for i, l := range logs {
		if l.ID == logID {
			li = i
			break
		}
	}
	if li < 0 {
		return p, false
	}

	// Recover the original quantity and BOQ link before the log disappears.
	quantity := logs[li].Quantity
	boqItemID := logs[li].BOQItemID

	structures := cloneStructuresAt(p.Structures, si)
	component := &structures[si].Components[ci]

	remaining := make([]models.StructureWorkLog, 0, len(logs)-1)
	remaining = append(remaining, logs[:li]...)
	remaining = append(remaining, logs[li+1:]...)
	component.WorkLogs = remaining
	component.CompletedQuantity = floorZero(component.CompletedQuantity - quantity)

	out := p
	out.Structures = structures
	if boqItemID != "" {
		out.BOQ = adjustBOQItem(p.BOQ, boqItemID, -quantity)
	}
	return out, true
}

// adjustBOQItem returns a copy of the BOQ with the addressed line's completed
// quantity moved by delta, floored at zero. An unknown id returns the input
// unchanged.
func adjustBOQItem(items []models.BOQItem, id string, delta float64) []models.BOQItem {
	for i, item := range items {
		if item.ID != id {
			continue
		}
		out := make([]models.BOQItem, len(items))
		copy(out, items)
		out[i].CompletedQuantity = floorZero(out[i].CompletedQuantity + delta)
		return out
	}
	return items
}

// cloneStructuresAt copies the structures slice with fresh component storage
// for the structure at si, so the mutation path never writes through to the
// caller's document. Untouched structures share their component slices.
func cloneStructuresAt(structures []models.StructureAsset, si int) []models.StructureAsset {
	out := make([]models.StructureAsset, len(structures))
	copy(out, structures)
	components := make([]models.StructureComponent, len(structures[si].Components))
	copy(components, structures[si].Components)
	out[si].Components = components
	return out
}

func findStructure(structures []models.StructureAsset, id string) int {
	for i, s := range structures {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func findComponent(components []models.StructureComponent, id string) int {
	for i, c := range components {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func floorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
