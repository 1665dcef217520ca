package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sitetrack/models"
	"sitetrack/storage"
	"sitetrack/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LoginHandler handles user authentication
// @Summary Login user
// @Description Authenticate user with email and password, create a session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/login [post]
func LoginHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var loginData models.LoginRequest
		if err := c.ShouldBindJSON(&loginData); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}

		user, err := storage.GetUserByEmail(db, loginData.Email)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		if !utils.ValidatePassword(user.Password, loginData.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		accessToken, err := utils.GenerateJWT(user.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		session := &models.Session{
			UserID:    user.ID,
			SessionID: uuid.NewString(),
			Timestamp: time.Now(),
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}
		if err := storage.SaveSession(db, session); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":      "User successfully logged in",
			"access_token": accessToken,
			"session_id":   session.SessionID,
			"role":         user.Role,
			"user": gin.H{
				"id":    user.ID,
				"email": user.Email,
			},
		})
	}
}

// LogoutHandler godoc
// @Summary Logout user
// @Tags Authentication
// @Param Authorization header string true "Session ID"
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/logout [post]
func LogoutHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := sessionToken(c)
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing Authorization header"})
			return
		}

		user, err := storage.GetUserBySessionID(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		if err := storage.DeleteSession(db, user.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

// RequireSession resolves the Authorization header to a live session and puts
// the user's email and role on the request context. The only authorization
// model is role equality: a route that names a role admits exactly that role.
func RequireSession(db *sql.DB, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := sessionToken(c)
		if sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing session"})
			return
		}

		user, err := storage.GetUserBySessionID(db, sessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		if role != "" && !strings.EqualFold(user.Role, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}

		c.Set("userEmail", user.Email)
		c.Set("userRole", user.Role)
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	token := strings.TrimSpace(c.GetHeader("Authorization"))
	token = strings.TrimPrefix(token, "Bearer ")
	return strings.TrimSpace(token)
}

// GetUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} models.User
// @Failure 500 {object} models.ErrorResponse
// @Router /api/users [get]
func GetUsers(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		rows, err := db.QueryContext(ctx, `
			SELECT id, email, first_name, last_name, role, created_at, updated_at
			FROM users
			ORDER BY id`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		users := []models.User{}
		for rows.Next() {
			var u models.User
			if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			users = append(users, u)
		}

		c.JSON(http.StatusOK, users)
	}
}

// CreateUser godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.CreateUserRequest true "New user"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/users [post]
func CreateUser(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}

		if _, err := storage.GetUserByEmail(db, req.Email); err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
			return
		}

		hashed, err := utils.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		if req.Role == "" {
			req.Role = "site-engineer"
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		var user models.User
		err = db.QueryRowContext(ctx, `
			INSERT INTO users (email, password, first_name, last_name, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			RETURNING id, email, first_name, last_name, role, created_at, updated_at`,
			req.Email, hashed, req.FirstName, req.LastName, req.Role,
		).Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Role, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, user)
	}
}

// RegisterPending godoc
// @Summary Submit a self-registration for admin approval
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.CreateUserRequest true "Registration"
// @Success 201 {object} models.PendingRegistration
// @Failure 400 {object} models.ErrorResponse
// @Router /api/pending-registrations [post]
func RegisterPending(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}

		hashed, err := utils.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		var reg models.PendingRegistration
		err = db.QueryRowContext(ctx, `
			INSERT INTO pending_registrations (email, password, first_name, last_name, requested_role, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			RETURNING id, email, first_name, last_name, requested_role, created_at`,
			req.Email, hashed, req.FirstName, req.LastName, req.Role,
		).Scan(&reg.ID, &reg.Email, &reg.FirstName, &reg.LastName, &reg.RequestedRole, &reg.CreatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, reg)
	}
}

// GetPendingRegistrations godoc
// @Summary List registrations awaiting approval
// @Tags users
// @Produce json
// @Success 200 {array} models.PendingRegistration
// @Failure 500 {object} models.ErrorResponse
// @Router /api/pending-registrations [get]
func GetPendingRegistrations(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		rows, err := db.QueryContext(ctx, `
			SELECT id, email, first_name, last_name, requested_role, created_at
			FROM pending_registrations
			ORDER BY created_at`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		regs := []models.PendingRegistration{}
		for rows.Next() {
			var r models.PendingRegistration
			if err := rows.Scan(&r.ID, &r.Email, &r.FirstName, &r.LastName, &r.RequestedRole, &r.CreatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			regs = append(regs, r)
		}

		c.JSON(http.StatusOK, regs)
	}
}

// ApprovePendingRegistration godoc
// @Summary Approve a pending registration, creating the user
// @Tags users
// @Produce json
// @Param id path int true "Registration ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /api/pending-registrations/{id}/approve [post]
func ApprovePendingRegistration(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration ID"})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer tx.Rollback()

		var email, password, firstName, lastName, role string
		err = tx.QueryRowContext(ctx, `
			SELECT email, password, first_name, last_name, requested_role
			FROM pending_registrations WHERE id = $1`, id,
		).Scan(&email, &password, &firstName, &lastName, &role)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		err = tx.QueryRowContext(ctx, `
			INSERT INTO users (email, password, first_name, last_name, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			RETURNING id, email, first_name, last_name, role, created_at, updated_at`,
			email, password, firstName, lastName, role,
		).Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Role, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM pending_registrations WHERE id = $1`, id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// RejectPendingRegistration godoc
// @Summary Reject and delete a pending registration
// @Tags users
// @Param id path int true "Registration ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/pending-registrations/{id} [delete]
func RejectPendingRegistration(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration ID"})
			return
		}

		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		res, err := db.ExecContext(ctx, `DELETE FROM pending_registrations WHERE id = $1`, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Registration rejected"})
	}
}
