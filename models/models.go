package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// ResourceKind is the classification tag attached to a legacy record by the
// resource classifier. Legacy rows carry no explicit type marker, so the kind
// is recovered from field presence (see services.ClassifyResource).
type ResourceKind int

const (
	KindMaterial ResourceKind = iota
	KindVehicle
	KindAgencyMaterial
	KindInventoryItem
)

func (k ResourceKind) String() string {
	switch k {
	case KindVehicle:
		return "vehicle"
	case KindAgencyMaterial:
		return "agency_material"
	case KindInventoryItem:
		return "inventory_item"
	default:
		return "material"
	}
}

// RateEntry is one historical supplier rate for a material.
type RateEntry struct {
	Date string  `json:"date" example:"2024-01-15"`
	Rate float64 `json:"rate" example:"380.50"`
}

// Material is the canonical material shape. Legacy rows are coerced into this
// by services.NormalizeMaterial; unknown legacy keys survive in Extras and are
// written back at the top level of the JSON object (canonical fields win).
type Material struct {
	ID                string         `json:"id" example:"mat-1705312200000"`
	Name              string         `json:"name" example:"OPC 53 Cement"`
	Category          string         `json:"category" example:"Cement"`
	Unit              string         `json:"unit" example:"bag"`
	Quantity          float64        `json:"quantity" example:"500"`
	AvailableQuantity float64        `json:"availableQuantity" example:"350"`
	UnitCost          float64        `json:"unitCost" example:"385"`
	TotalValue        float64        `json:"totalValue" example:"192500"`
	ReorderLevel      float64        `json:"reorderLevel" example:"50"`
	Criticality       string         `json:"criticality" example:"high"`
	Location          string         `json:"location" example:"Site Store A"`
	Status            string         `json:"status" example:"available"`
	SupplierID        string         `json:"supplierId,omitempty" example:"sup-3"`
	SupplierRate      float64        `json:"supplierRate,omitempty" example:"380"`
	RateHistory       []RateEntry    `json:"rateHistory,omitempty"`
	Tags              []string       `json:"tags,omitempty"`
	LastUpdated       string         `json:"lastUpdated,omitempty" example:"2024-01-15T10:30:00Z"`
	Extras            map[string]any `json:"-"`
}

var MaterialFieldKeys = []string{
	"id", "name", "category", "unit", "quantity", "availableQuantity",
	"unitCost", "totalValue", "reorderLevel", "criticality", "location",
	"status", "supplierId", "supplierRate", "rateHistory", "tags", "lastUpdated",
}

func (m Material) MarshalJSON() ([]byte, error) {
	type alias Material
	return marshalWithExtras(alias(m), m.Extras)
}

func (m *Material) UnmarshalJSON(data []byte) error {
	type alias Material
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*m = Material(a)
	m.Extras = collectExtras(data, MaterialFieldKeys)
	return nil
}

// Vehicle is the canonical vehicle/equipment shape.
type Vehicle struct {
	ID          string         `json:"id" example:"veh-1705312200000"`
	Name        string         `json:"name" example:"Tata Tipper 2518"`
	PlateNumber string         `json:"plateNumber" example:"MH-12-AB-1234"`
	Type        string         `json:"type" example:"tipper"`
	Driver      string         `json:"driver" example:"R. Sharma"`
	Unit        string         `json:"unit" example:"nos"`
	Quantity    float64        `json:"quantity" example:"1"`
	Location    string         `json:"location" example:"Chainage 12+400"`
	Status      string         `json:"status" example:"active"`
	AgencyID    string         `json:"agencyId,omitempty" example:"agy-2"`
	GPSLocation string         `json:"gpsLocation,omitempty" example:"18.5204,73.8567"`
	Chainage    string         `json:"chainage,omitempty" example:"12+400"`
	LastUpdated string         `json:"lastUpdated,omitempty" example:"2024-01-15T10:30:00Z"`
	Extras      map[string]any `json:"-"`
}

var VehicleFieldKeys = []string{
	"id", "name", "plateNumber", "type", "driver", "unit", "quantity",
	"location", "status", "agencyId", "gpsLocation", "chainage", "lastUpdated",
}

func (v Vehicle) MarshalJSON() ([]byte, error) {
	type alias Vehicle
	return marshalWithExtras(alias(v), v.Extras)
}

func (v *Vehicle) UnmarshalJSON(data []byte) error {
	type alias Vehicle
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*v = Vehicle(a)
	v.Extras = collectExtras(data, VehicleFieldKeys)
	return nil
}

// InventoryItem is the canonical store/inventory row. ItemName mirrors Name
// for compatibility with screens that still read the older field.
type InventoryItem struct {
	ID               string         `json:"id" example:"inv-1705312200000"`
	Name             string         `json:"name" example:"Binding Wire"`
	ItemName         string         `json:"itemName" example:"Binding Wire"`
	Unit             string         `json:"unit" example:"kg"`
	Quantity         float64        `json:"quantity" example:"120"`
	CurrentQuantity  float64        `json:"currentQuantity,omitempty" example:"120"`
	RequiredQuantity float64        `json:"requiredQuantity,omitempty" example:"200"`
	ReceivedQuantity float64        `json:"receivedQuantity,omitempty" example:"150"`
	ReorderLevel     float64        `json:"reorderLevel" example:"10"`
	Location         string         `json:"location" example:"Main Store"`
	Status           string         `json:"status" example:"in-stock"`
	LastUpdated      string         `json:"lastUpdated,omitempty" example:"2024-01-15T10:30:00Z"`
	Extras           map[string]any `json:"-"`
}

var InventoryFieldKeys = []string{
	"id", "name", "itemName", "unit", "quantity", "currentQuantity",
	"requiredQuantity", "receivedQuantity", "reorderLevel", "location",
	"status", "lastUpdated",
}

func (i InventoryItem) MarshalJSON() ([]byte, error) {
	type alias InventoryItem
	return marshalWithExtras(alias(i), i.Extras)
}

func (i *InventoryItem) UnmarshalJSON(data []byte) error {
	type alias InventoryItem
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*i = InventoryItem(a)
	i.Extras = collectExtras(data, InventoryFieldKeys)
	return nil
}

// AgencyMaterial is a material supplied by an external agency, with the
// logistics fields the agency delivery screens record.
type AgencyMaterial struct {
	ID               string         `json:"id" example:"mat-1705312200000"`
	Name             string         `json:"name" example:"MS Reinforcement Steel"`
	MaterialName     string         `json:"materialName" example:"MS Reinforcement Steel"`
	AgencyID         string         `json:"agencyId" example:"agy-2"`
	Unit             string         `json:"unit" example:"MT"`
	Quantity         float64        `json:"quantity" example:"40"`
	Rate             float64        `json:"rate" example:"52000"`
	TotalAmount      float64        `json:"totalAmount" example:"2080000"`
	ReceivedDate     string         `json:"receivedDate,omitempty" example:"2024-01-12"`
	DeliveryLocation string         `json:"deliveryLocation,omitempty" example:"Site Yard B"`
	VehicleNumber    string         `json:"vehicleNumber,omitempty" example:"MH-12-CD-5678"`
	ChallanNumber    string         `json:"challanNumber,omitempty" example:"CH-2024-0112"`
	Location         string         `json:"location" example:"Site Yard B"`
	Status           string         `json:"status" example:"received"`
	LastUpdated      string         `json:"lastUpdated,omitempty" example:"2024-01-15T10:30:00Z"`
	Extras           map[string]any `json:"-"`
}

var AgencyMaterialFieldKeys = []string{
	"id", "name", "materialName", "agencyId", "unit", "quantity", "rate",
	"totalAmount", "receivedDate", "deliveryLocation", "vehicleNumber",
	"challanNumber", "location", "status", "lastUpdated",
}

func (a AgencyMaterial) MarshalJSON() ([]byte, error) {
	type alias AgencyMaterial
	return marshalWithExtras(alias(a), a.Extras)
}

func (a *AgencyMaterial) UnmarshalJSON(data []byte) error {
	type alias AgencyMaterial
	var al alias
	if err := json.Unmarshal(data, &al); err != nil {
		return err
	}
	*a = AgencyMaterial(al)
	a.Extras = collectExtras(data, AgencyMaterialFieldKeys)
	return nil
}

// BOQItem is one priced line of the bill of quantities. Amount is fixed at
// creation as quantity * rate; CompletedQuantity is only ever moved by the
// work-log ledger.
type BOQItem struct {
	ID                string  `json:"id" example:"boq-1"`
	ItemNo            string  `json:"itemNo" example:"2.04"`
	Description       string  `json:"description" example:"PCC M15 in foundation"`
	Unit              string  `json:"unit" example:"cum"`
	Quantity          float64 `json:"quantity" example:"120"`
	Rate              float64 `json:"rate" example:"4800"`
	Amount            float64 `json:"amount" example:"576000"`
	CompletedQuantity float64 `json:"completedQuantity" example:"45"`
	Category          string  `json:"category" example:"Civil"`
	Location          string  `json:"location" example:"Abutment A1"`
	SubcontractorID   string  `json:"subcontractorId,omitempty" example:"sub-4"`
}

// StructureWorkLog is an immutable record of quantity executed on a component
// on a given date. It is only ever appended or deleted, never edited.
type StructureWorkLog struct {
	ID              string  `json:"id" example:"log-1705312200000"`
	Date            string  `json:"date" example:"2024-01-15"`
	Quantity        float64 `json:"quantity" example:"5"`
	Rate            float64 `json:"rate,omitempty" example:"4800"`
	BOQItemID       string  `json:"boqItemId,omitempty" example:"boq-1"`
	SubcontractorID string  `json:"subcontractorId,omitempty" example:"sub-4"`
	Remarks         string  `json:"remarks,omitempty" example:"Pour completed, cube samples taken"`
}

// StructureComponent is one measurable part of a structure. CompletedQuantity
// mirrors the sum of its work-log quantities; both are moved together by the
// ledger updater.
type StructureComponent struct {
	ID                string             `json:"id" example:"cmp-1"`
	Name              string             `json:"name" example:"Pier P2 shaft"`
	Unit              string             `json:"unit" example:"cum"`
	TotalQuantity     float64            `json:"totalQuantity" example:"80"`
	CompletedQuantity float64            `json:"completedQuantity" example:"35"`
	VerifiedQuantity  float64            `json:"verifiedQuantity" example:"30"`
	WorkLogs          []StructureWorkLog `json:"workLogs"`
	BOQItemID         string             `json:"boqItemId,omitempty" example:"boq-1"`
	SubcontractorID   string             `json:"subcontractorId,omitempty" example:"sub-4"`
}

// StructureAsset is a physical structure (bridge, culvert, building wing)
// broken down into measurable components.
type StructureAsset struct {
	ID         string               `json:"id" example:"str-1"`
	Name       string               `json:"name" example:"Minor Bridge CH 12+400"`
	Type       string               `json:"type" example:"bridge"`
	Location   string               `json:"location" example:"Chainage 12+400"`
	Status     string               `json:"status" example:"in-progress"`
	Components []StructureComponent `json:"components"`
}

// RFI is a request for inspection raised against executed work.
type RFI struct {
	ID          string `json:"id" example:"rfi-12"`
	Number      string `json:"number" example:"RFI/2024/012"`
	Subject     string `json:"subject" example:"Pier P2 reinforcement check"`
	StructureID string `json:"structureId,omitempty" example:"str-1"`
	Status      string `json:"status" example:"open"`
	RaisedDate  string `json:"raisedDate" example:"2024-01-14"`
	ClosedDate  string `json:"closedDate,omitempty" example:"2024-01-18"`
	Remarks     string `json:"remarks,omitempty"`
}

// LabTest is a material/quality test record.
type LabTest struct {
	ID         string `json:"id" example:"lab-7"`
	TestType   string `json:"testType" example:"cube-compressive"`
	SampleRef  string `json:"sampleRef" example:"CC-P2-07"`
	MaterialID string `json:"materialId,omitempty" example:"mat-1"`
	Date       string `json:"date" example:"2024-01-20"`
	Result     string `json:"result" example:"pass"`
	Value      string `json:"value,omitempty" example:"34.2 MPa"`
	Remarks    string `json:"remarks,omitempty"`
}

// Milestone is one dated target on the project schedule.
type Milestone struct {
	ID         string `json:"id" example:"ms-3"`
	Name       string `json:"name" example:"Superstructure complete"`
	TargetDate string `json:"targetDate" example:"2024-06-30"`
	Status     string `json:"status" example:"pending"`
}

// ScheduleInfo carries the contract dates used for the time-burn rollup.
type ScheduleInfo struct {
	StartDate  string      `json:"startDate" example:"2024-01-01"`
	EndDate    string      `json:"endDate" example:"2024-12-31"`
	Milestones []Milestone `json:"milestones,omitempty"`
}

// Project is the aggregate root. The whole document is replaced on every
// write; nested collections are owned exclusively by their project.
type Project struct {
	ID              string           `json:"id" example:"prj-1"`
	Code            string           `json:"code,omitempty" example:"NH48-2024-7315"`
	Name            string           `json:"name" example:"NH-48 Package 3"`
	Client          string           `json:"client,omitempty" example:"NHAI"`
	Location        string           `json:"location,omitempty" example:"Pune"`
	Status          string           `json:"status" example:"Ongoing"`
	Budget          float64          `json:"budget,omitempty" example:"250000000"`
	BOQ             []BOQItem        `json:"boq"`
	Structures      []StructureAsset `json:"structures"`
	Materials       []Material       `json:"materials"`
	Inventory       []InventoryItem  `json:"inventory"`
	AgencyMaterials []AgencyMaterial `json:"agencyMaterials"`
	Vehicles        []Vehicle        `json:"vehicles"`
	RFIs            []RFI            `json:"rfis"`
	LabTests        []LabTest        `json:"labTests"`
	Schedule        *ScheduleInfo    `json:"schedule,omitempty"`
	CreatedAt       string           `json:"createdAt,omitempty" example:"2024-01-01T09:00:00Z"`
	UpdatedAt       string           `json:"updatedAt,omitempty" example:"2024-01-15T10:30:00Z"`
}

// Value implements driver.Valuer so a Project can be stored in a jsonb column.
func (p Project) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for reading a Project back out of jsonb.
func (p *Project) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported type for Project document: %T", value)
	}
}

// marshalWithExtras marshals the canonical struct first, then lays unknown
// legacy keys alongside it. Canonical fields always win on a key collision.
func marshalWithExtras(canonical any, extras map[string]any) ([]byte, error) {
	base, err := json.Marshal(canonical)
	if err != nil {
		return nil, err
	}
	if len(extras) == 0 {
		return base, nil
	}
	var out map[string]any
	if err := json.Unmarshal(base, &out); err != nil {
		return nil, err
	}
	for k, v := range extras {
		if _, taken := out[k]; !taken {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// collectExtras returns every top-level key of the raw object that is not in
// the canonical key list. Malformed input yields nil rather than an error;
// extras are best-effort carry-forward, never load-blocking.
func collectExtras(data []byte, known []string) map[string]any {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil
	}
	return raw
}

var ErrProjectNotFound = errors.New("project not found")
