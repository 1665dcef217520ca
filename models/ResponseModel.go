package models

import (
	"time"

	_ "github.com/lib/pq"
)

// Swagger / API docs: common request and response models referenced by handler annotations

// ErrorResponse is used in @Failure for error responses
type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid input"`
	Details string `json:"details,omitempty" example:""`
}

// MessageResponse is the generic response for APIs that return only {"message": "..."}
type MessageResponse struct {
	Message string `json:"message" example:"Success"`
}

// SuccessResponse is used in @Success for generic success with a payload
type SuccessResponse struct {
	Message string      `json:"message" example:"Success"`
	Data    interface{} `json:"data,omitempty"`
}

// LoginRequest is used in @Param for login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"password"`
}

// LoginResponse is used in @Success for login
type LoginResponse struct {
	Message     string    `json:"message" example:"User successfully logged in"`
	AccessToken string    `json:"access_token" example:"eyJhbGc..."`
	Role        string    `json:"role" example:"admin"`
	User        LoginUser `json:"user"`
}

// LoginUser is the user object inside LoginResponse
type LoginUser struct {
	ID    int    `json:"id" example:"1"`
	Email string `json:"email" example:"user@example.com"`
}

// User represents a row of the users table (raw SQL path)
type User struct {
	ID        int       `json:"id" example:"1"`
	Email     string    `json:"email" example:"user@example.com"`
	Password  string    `json:"password,omitempty" example:""`
	FirstName string    `json:"first_name" example:"John"`
	LastName  string    `json:"last_name" example:"Doe"`
	Role      string    `json:"role" example:"engineer"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// Session is a row of the session table
type Session struct {
	UserID    int       `json:"user_id" example:"1"`
	SessionID string    `json:"session_id" example:"uuid"`
	Timestamp time.Time `json:"timestp" example:"2024-01-15T10:30:00Z"`
	ExpiresAt time.Time `json:"expires_at" example:"2024-01-16T10:30:00Z"`
}

// CreateUserRequest is used in @Param for create user body
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required" example:"user@example.com"`
	Password  string `json:"password" binding:"required" example:"password"`
	FirstName string `json:"first_name" example:"John"`
	LastName  string `json:"last_name" example:"Doe"`
	Role      string `json:"role" example:"engineer"`
}

// PendingRegistration is a self-registration awaiting admin approval
type PendingRegistration struct {
	ID            int       `json:"id" example:"1"`
	Email         string    `json:"email" example:"new.user@example.com"`
	FirstName     string    `json:"first_name" example:"Asha"`
	LastName      string    `json:"last_name" example:"Patil"`
	RequestedRole string    `json:"requested_role" example:"site-engineer"`
	CreatedAt     time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// WorkLogRequest is the event payload for adding a work log against a
// structure component. Structure and component also appear in the URL; the
// body values win only when the URL segments are absent (internal callers).
type WorkLogRequest struct {
	StructureID     string  `json:"structureId,omitempty" example:"str-1"`
	ComponentID     string  `json:"componentId,omitempty" example:"cmp-1"`
	Quantity        float64 `json:"quantity" binding:"required" example:"5"`
	Date            string  `json:"date,omitempty" example:"2024-01-15"`
	Rate            float64 `json:"rate,omitempty" example:"4800"`
	BOQItemID       string  `json:"boqItemId,omitempty" example:"boq-1"`
	SubcontractorID string  `json:"subcontractorId,omitempty" example:"sub-4"`
	Remarks         string  `json:"remarks,omitempty" example:"Pour completed"`
}

// LegacyImportRequest carries a batch of raw legacy records for auto-dispatch
// migration
type LegacyImportRequest struct {
	Resources []map[string]any `json:"resources" binding:"required"`
}

// StructureProgressResponse is one structure's rollup inside the dashboard
type StructureProgressResponse struct {
	StructureID string                      `json:"structure_id" example:"str-1"`
	Name        string                      `json:"name" example:"Minor Bridge CH 12+400"`
	Progress    int                         `json:"progress" example:"50"`
	Components  []ComponentProgressResponse `json:"components,omitempty"`
}

// ComponentProgressResponse is one component's rollup row
type ComponentProgressResponse struct {
	ComponentID string  `json:"component_id" example:"cmp-1"`
	Name        string  `json:"name" example:"Pier P2 shaft"`
	Progress    float64 `json:"progress" example:"50"`
}

// ProjectProgressResponse bundles the rollups recomputed on every read
type ProjectProgressResponse struct {
	BOQProgress      int                         `json:"boq_progress" example:"50"`
	ScheduleProgress int                         `json:"schedule_progress" example:"42"`
	Structures       []StructureProgressResponse `json:"structures"`
	StockHealth      map[string]int              `json:"stock_health"`
}

// ProjectResponse is a project document plus its freshly computed rollups
type ProjectResponse struct {
	Project  Project                 `json:"project"`
	Progress ProjectProgressResponse `json:"progress"`
}

// MaterialStatusResponse is one material's stock bucket row
type MaterialStatusResponse struct {
	MaterialID   string  `json:"material_id" example:"mat-1"`
	Name         string  `json:"name" example:"OPC 53 Cement"`
	Quantity     float64 `json:"quantity" example:"8"`
	ReorderLevel float64 `json:"reorder_level" example:"10"`
	Status       string  `json:"status" example:"critical"`
}
