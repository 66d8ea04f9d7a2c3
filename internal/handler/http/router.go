package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/teamtrack-app/teamtrack-backend-go/internal/config"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/domain/permission"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/handler/http/middleware"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/pkg/jwt"
	"github.com/teamtrack-app/teamtrack-backend-go/internal/pkg/metrics"
)

func NewRouter(
	cfg *config.Config,
	jwtService jwt.Service,
	resolver permission.Resolver,
	authHandler AuthHandler,
	attendanceHandler AttendanceHandler,
	permissionHandler PermissionHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "teamtrack-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))
	r.Use(metrics.Instrument)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimit(5, 10))

			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)

			r.Get("/login/oauth/google", authHandler.LoginWithGoogle)
			r.Get("/oauth/callback/google", authHandler.OAuthCallbackGoogle)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(resolver, permission.PermAttendanceCheckIn))
					r.Post("/check-in", attendanceHandler.CheckIn)
					r.Post("/check-out", attendanceHandler.CheckOut)
				})

				r.With(middleware.RequirePermission(resolver, permission.PermAttendanceViewOwn)).
					Get("/my", attendanceHandler.GetMyAttendance)

				r.With(middleware.RequirePermission(resolver, permission.PermAnalyticsView)).
					Get("/team/analytics", attendanceHandler.TeamAnalytics)

				r.Route("/exceptions", func(r chi.Router) {
					r.With(middleware.RequirePermission(resolver, permission.PermExceptionsView)).
						Get("/", attendanceHandler.ExceptionReport)
					r.With(middleware.RequirePermission(resolver, permission.PermExceptionsManage)).
						Patch("/{id}", attendanceHandler.UpdateExceptionStatus)
				})

				r.With(middleware.RequirePermission(resolver, permission.PermAttendanceAdjust)).
					Post("/adjust", attendanceHandler.Adjust)
			})

			r.Route("/permissions", func(r chi.Router) {
				r.Get("/me", permissionHandler.MyPermissions)

				r.With(middleware.RequirePermission(resolver, permission.PermPermissionsView)).
					Get("/matrix", permissionHandler.Matrix)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Put("/matrix", permissionHandler.ReplaceMatrix)
					r.Get("/", permissionHandler.ListGrants)
					r.Post("/", permissionHandler.CreateGrant)
					r.Delete("/", permissionHandler.DeleteGrants)
				})
			})
		})
	})
	return r
}
