package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"sitetrack/models"
)

func InitDB() *sql.DB {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")

	connStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable",
		user, password, dbname, host, port)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Set connection pool settings optimized for light server load
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	return db
}

// SaveSession stores a new session row for a user. Only one live session per
// user is kept: older sessions are removed before the insert.
func SaveSession(db *sql.DB, session *models.Session) error {
	deleteQuery := `DELETE FROM session WHERE user_id = $1`
	if _, err := db.Exec(deleteQuery, session.UserID); err != nil {
		return fmt.Errorf("failed to delete existing user sessions: %v", err)
	}

	insertQuery := `INSERT INTO session (user_id, session_id, timestp, expires_at)
                    VALUES ($1, $2, $3, $4)`
	if _, err := db.Exec(insertQuery, session.UserID, session.SessionID, session.Timestamp, session.ExpiresAt); err != nil {
		return fmt.Errorf("failed to insert new session: %v", err)
	}
	return nil
}

// GetUserBySessionID resolves a live (non-expired) session to its user.
func GetUserBySessionID(db *sql.DB, sessionID string) (*models.User, error) {
	var user models.User
	err := db.QueryRow(`
		SELECT u.id, u.email, u.first_name, u.last_name, u.role
		FROM users u
		JOIN session s ON s.user_id = u.id
		WHERE s.session_id = $1 AND s.expires_at > NOW()
	`, sessionID).Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Role)
	if err == sql.ErrNoRows {
		return nil, errors.New("session not found or expired")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByEmail(db *sql.DB, email string) (*models.User, error) {
	var user models.User
	err := db.QueryRow(`
		SELECT id, email, password, first_name, last_name, role
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.Password, &user.FirstName, &user.LastName, &user.Role)
	if err == sql.ErrNoRows {
		return nil, errors.New("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func DeleteSession(db *sql.DB, userID int) error {
	_, err := db.Exec(`DELETE FROM session WHERE user_id = $1`, userID)
	return err
}

func CleanupExpiredSessions(db *sql.DB) error {
	_, err := db.Exec(`DELETE FROM session WHERE expires_at < NOW()`)
	return err
}
