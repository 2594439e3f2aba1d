package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"task-tracker.com/task-tracker/internal/auth"
	config "task-tracker.com/task-tracker/internal/configs"
	httpapi "task-tracker.com/task-tracker/internal/http"
	repository "task-tracker.com/task-tracker/internal/repositories"
	"task-tracker.com/task-tracker/internal/services"
	"task-tracker.com/task-tracker/internal/sessions"
)

var seedOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the task tracker HTTP API backed by sqlite",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		database := config.NewDatabaseClient(cfg.DatabaseDSN)

		revoker, closeRevoker := newRevoker(cfg)
		defer closeRevoker()

		taskService, authService := newServices(cfg, database, revoker)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if seedOnStart {
			if _, err := authService.SeedUsers(ctx, cfg.SeedPassword); err != nil {
				return err
			}
		}

		e := echo.New()
		e.HideBanner = true
		e.Use(echomw.Recover())
		e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
			LogMethod:   true,
			LogURI:      true,
			LogStatus:   true,
			LogLatency:  true,
			LogError:    true,
			HandleError: true,
			LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
				if v.Error != nil {
					log.Printf("%s %s %d %s: %v", v.Method, v.URI, v.Status, v.Latency, v.Error)
					return nil
				}
				log.Printf("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
				return nil
			},
		}))
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{
				echo.HeaderOrigin,
				echo.HeaderContentType,
				echo.HeaderAccept,
				echo.HeaderAuthorization,
			},
		}))

		httpapi.Register(e, httpapi.NewHandler(taskService, authService), authService, cfg.RateLimit)

		go func() {
			log.Printf("HTTP server listening on %s", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil {
				log.Printf("server stopped: %v", err)
			}
		}()

		<-ctx.Done()

		echoCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		_ = e.Shutdown(echoCtx)

		log.Println("HTTP server shut down gracefully")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&seedOnStart, "seed", false, "create the default users if the database is empty")
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() config.Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}
	return config.Load()
}

// newRevoker picks the logout store: redis when enabled, process memory
// otherwise.
func newRevoker(cfg config.Config) (sessions.Revoker, func()) {
	if !cfg.RedisEnabled {
		log.Println("redis disabled, logged out tokens are tracked in memory")
		return sessions.NewMemoryRevoker(), func() {}
	}

	redisClient := config.NewRedisClient(cfg.RedisAddr)
	return sessions.NewRedisRevoker(redisClient, cfg.RedisRevokedPrefix), redisClient.Close
}

func newServices(cfg config.Config, db *gorm.DB, revoker sessions.Revoker) (*services.TaskService, *services.AuthService) {
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)

	return services.NewTaskService(taskRepo, userRepo, cfg.UpcomingHorizonDays),
		services.NewAuthService(userRepo, issuer, revoker)
}
