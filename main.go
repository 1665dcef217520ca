// @title           SiteTrack API
// @version         1.0
// @description     SiteTrack Backend API - construction project tracking endpoints.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	_ "sitetrack/docs"
	"sitetrack/handlers"
	"sitetrack/repository"
	"sitetrack/services"
	"sitetrack/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var cronRunning int32

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:9000",
		"http://localhost:8080",
		"http://localhost:3000",
	}
	if origin := os.Getenv("CORS_ORIGIN"); origin != "" {
		corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, origin)
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
		"Access-Control-Request-Method", "Access-Control-Request-Headers",
	}
	corsConfig.AllowMethods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length", "Authorization", "Content-Type", "Content-Disposition",
	}
	return corsConfig
}

func main() {
	db := storage.InitDB()
	gormDB := storage.InitGormDB()
	redisClient := storage.InitRedis()

	store := repository.NewProjectRepository(gormDB, redisClient)
	emailService := services.NewEmailService()

	// Daily maintenance at 06:30: expired-session sweep and the low-stock
	// material digest for the site office.
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)

	_, err := c.AddFunc("30 6 * * *", func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous cron still running. Skipping this run.")
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		log.Println("Starting daily maintenance cron job")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if err := storage.CleanupExpiredSessions(db); err != nil {
			log.Printf("CleanupExpiredSessions failed: %v", err)
		}

		digestTo := os.Getenv("LOW_STOCK_DIGEST_TO")
		if digestTo != "" {
			flagged, err := emailService.SendLowStockDigest(ctx, store, digestTo)
			if err != nil {
				log.Printf("Low stock digest failed: %v", err)
			} else {
				log.Printf("Low stock digest done, %d materials flagged", flagged)
			}
		}

		log.Println("Daily cron cycle completed")
	})
	if err != nil {
		log.Fatalf("Failed to schedule daily maintenance cron job: %v", err)
	}
	c.Start()

	r := gin.Default()
	r.Use(cors.New(CORSConfig()))

	// ==================== 1. AUTH & USERS ====================
	r.POST("/api/login", handlers.LoginHandler(db))
	r.POST("/api/logout", handlers.LogoutHandler(db))
	r.GET("/api/users", handlers.RequireSession(db, "admin"), handlers.GetUsers(db))
	r.POST("/api/users", handlers.RequireSession(db, "admin"), handlers.CreateUser(db))
	r.POST("/api/pending-registrations", handlers.RegisterPending(db))
	r.GET("/api/pending-registrations", handlers.RequireSession(db, "admin"), handlers.GetPendingRegistrations(db))
	r.POST("/api/pending-registrations/:id/approve", handlers.RequireSession(db, "admin"), handlers.ApprovePendingRegistration(db))
	r.DELETE("/api/pending-registrations/:id", handlers.RequireSession(db, "admin"), handlers.RejectPendingRegistration(db))

	// ==================== 2. PROJECTS ====================
	r.GET("/api/projects", handlers.RequireSession(db, ""), handlers.GetProjects(store))
	r.POST("/api/projects", handlers.RequireSession(db, ""), handlers.CreateProject(store))
	r.GET("/api/projects/:id", handlers.RequireSession(db, ""), handlers.GetProject(store))
	r.PUT("/api/projects/:id", handlers.RequireSession(db, ""), handlers.UpdateProject(store))
	r.DELETE("/api/projects/:id", handlers.RequireSession(db, "admin"), handlers.DeleteProject(store))
	r.GET("/api/projects/:id/dashboard", handlers.RequireSession(db, ""), handlers.GetProjectDashboard(store))
	r.GET("/api/projects/:id/activity", handlers.RequireSession(db, ""), handlers.GetActivityLogs(store))

	// ==================== 3. WORK LOGS ====================
	r.POST("/api/projects/:id/structures/:structureId/components/:componentId/worklogs",
		handlers.RequireSession(db, ""), handlers.AddWorkLog(store))
	r.DELETE("/api/projects/:id/structures/:structureId/components/:componentId/worklogs/:logId",
		handlers.RequireSession(db, ""), handlers.DeleteWorkLog(store))

	// ==================== 4. MATERIALS ====================
	r.POST("/api/projects/:id/materials", handlers.RequireSession(db, ""), handlers.AddMaterial(store))
	r.PUT("/api/projects/:id/materials/:materialId", handlers.RequireSession(db, ""), handlers.UpdateMaterial(store))
	r.DELETE("/api/projects/:id/materials/:materialId", handlers.RequireSession(db, ""), handlers.DeleteMaterial(store))
	r.GET("/api/projects/:id/materials/status", handlers.RequireSession(db, ""), handlers.GetMaterialStatus(store))
	r.POST("/api/projects/:id/import/legacy", handlers.RequireSession(db, ""), handlers.ImportLegacyResources(store))

	// ==================== 5. EXPORTS & REPORTS ====================
	r.GET("/api/projects/:id/export/boq", handlers.RequireSession(db, ""), handlers.ExportBOQExcel(store))
	r.GET("/api/projects/:id/report/pdf", handlers.RequireSession(db, ""), handlers.GenerateProgressPDF(store))
	r.GET("/api/structures/:projectId/:structureId/qrcode", handlers.RequireSession(db, ""), handlers.GenerateStructureQRCode(store))

	// ==================== 6. SWAGGER ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}

	portInt, err := strconv.Atoi(port)
	if err != nil {
		log.Fatalf("Invalid PORT environment variable: %s. Must be a number.", port)
	}
	if portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT: %d. Must be between 0 and 65535.", portInt)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cronCtx := c.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(20 * time.Second):
		log.Println("Warning: cron jobs did not finish before shutdown")
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
