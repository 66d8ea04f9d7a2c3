package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/config"
	appHTTP "github.com/teamtrack-app/teamtrack-backend-go/internal/handler/http"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/pkg/cron"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/pkg/database"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/pkg/jwt"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/pkg/metrics"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/pkg/oauth"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/repository/postgresql"
	attendanceService "github.com/teamtrack-app/teamtrack-backend-go/internal/service/attendance"
	serviceAuth "github.com/teamtrack-app/teamtrack-backend-go/internal/service/auth"
	permissionService "github.com/teamtrack-app/teamtrack-backend-go/internal/service/permission"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	metrics.Init()

	userRepo := postgresql.NewUserRepository(db)
	recordRepo := postgresql.NewAttendanceRepository(db)
	exceptionRepo := postgresql.NewAttendanceExceptionRepository(db)
	permissionRepo := postgresql.NewPermissionRepository(db)
	activityRepo := postgresql.NewActivityLogRepository(db)
	projectRepo := postgresql.NewProjectRepository(db)
	refreshTokenRepo := postgresql.NewRefreshTokenRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)

	var googleService oauth.GoogleService
	if cfg.GoogleLoginEnabled() {
		googleService = oauth.NewGoogleService(
			cfg.OAuth2Google.ClientID,
			cfg.OAuth2Google.ClientSecret,
			cfg.OAuth2Google.RedirectURL,
			cfg.OAuth2Google.Scopes,
		)
	}

	permissionSvc := permissionService.NewPermissionService(permissionRepo, activityRepo)
	if err := permissionSvc.Bootstrap(context.Background()); err != nil {
		log.Fatal("Failed to bootstrap permissions: ", err)
	}

	authSvc := serviceAuth.NewAuthService(db, userRepo, jwtService, refreshTokenRepo, googleService)
	attendanceSvc := attendanceService.NewAttendanceService(
		db,
		recordRepo,
		exceptionRepo,
		userRepo,
		projectRepo,
		activityRepo,
		cfg.Attendance,
	)

	authHandler := appHTTP.NewAuthHandler(jwtService, authSvc, cfg.App.FrontendURL)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	permissionHandler := appHTTP.NewPermissionHandler(permissionSvc)

	router := appHTTP.NewRouter(
		cfg,
		jwtService,
		permissionSvc,
		authHandler,
		attendanceHandler,
		permissionHandler,
	)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(recordRepo, activityRepo, cfg.Attendance).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Println("Shutdown error:", err)
	}
}
