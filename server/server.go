package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"gorm.io/gorm"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/caseflowhq/mailroom/api"
	"github.com/caseflowhq/mailroom/config"
	"github.com/caseflowhq/mailroom/internal/cron"
	"github.com/caseflowhq/mailroom/internal/listeners"
	"github.com/caseflowhq/mailroom/internal/logger"
	"github.com/caseflowhq/mailroom/internal/repository"
	"github.com/caseflowhq/mailroom/internal/tracing"
	"github.com/caseflowhq/mailroom/services"
	"github.com/caseflowhq/mailroom/services/events"
)

type Server struct {
	config       *config.Config
	httpServer   *http.Server
	router       *gin.Engine
	services     *services.Services
	repositories *repository.Repositories
	cronManager  *cron.CronManager
	tracerCloser io.Closer
}

func NewServer(cfg *config.Config, db *gorm.DB) (*Server, error) {
	// Initialize logger
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	// Initialize tracing
	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
	if err != nil {
		log.Fatalf("Could not initialize jaeger tracer: %s", err.Error())
	}
	opentracing.SetGlobalTracer(tracer)

	// Initialize repositories
	repos := repository.InitRepositories(db)

	// Initialize services
	svcs, err := services.InitServices(cfg, appLogger, repos)
	if err != nil {
		return nil, err
	}

	// Register queue listeners
	svcs.Subscriber.RegisterListener(listeners.NewPollMailboxListener(appLogger, svcs.IngestionService))

	// Cron scheduler with leader election when running in-cluster
	cronManager := cron.NewCronManager(cfg, appLogger, kubernetesClient(appLogger), repos.MailboxAccountRepository, svcs.Publisher)

	// Initialize Gin
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	return &Server{
		config:       cfg,
		router:       router,
		services:     svcs,
		repositories: repos,
		cronManager:  cronManager,
		tracerCloser: closer,
		httpServer: &http.Server{
			Addr:    ":" + cfg.AppConfig.APIPort,
			Handler: router,
		},
	}, nil
}

// kubernetesClient returns nil outside a cluster, which drops the cron
// manager into local mode without leader election.
func kubernetesClient(appLogger logger.Logger) kubernetes.Interface {
	restConfig, err := rest.InClusterConfig()
	if err != nil {
		appLogger.Infof("Not running in-cluster, cron leader election disabled: %v", err)
		return nil
	}
	k8s, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		appLogger.Warnf("Failed to create kubernetes client: %v", err)
		return nil
	}
	return k8s
}

func (s *Server) Initialize(ctx context.Context) error {
	// Setup API routes
	api.RegisterRoutes(s.router, s.services, s.repositories, s.config.AppConfig.APIKey)

	// Start consuming poll jobs
	if err := s.services.Subscriber.ListenQueue(events.QueuePollMailbox); err != nil {
		return err
	}

	return nil
}

func (s *Server) recoverWithJaeger(name string) {
	if r := recover(); r != nil {
		span := opentracing.GlobalTracer().StartSpan(
			fmt.Sprintf("panic.%s", name),
		)
		defer span.Finish()

		ext.Error.Set(span, true)

		span.LogKV(
			"event", "panic",
			"process", name,
			"error", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)

		log.Printf("Panic in %s: %v\n%s", name, r, debug.Stack())
	}
}

func (s *Server) wrapGoroutine(name string, fn func()) {
	defer s.recoverWithJaeger(name)
	fn()
}

func (s *Server) Run() error {
	// Create root context for the application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize server components
	if err := s.Initialize(ctx); err != nil {
		return err
	}

	// Start the cron scheduler with panic recovery
	log.Println("Starting cron scheduler...")
	s.wrapGoroutine("cron_manager", func() {
		if err := s.cronManager.Start(os.Getenv("POD_NAME"), os.Getenv("POD_NAMESPACE")); err != nil {
			log.Printf("Cron scheduler error: %v", err)
		}
	})

	// Start HTTP server in a goroutine with panic recovery
	go s.wrapGoroutine("http_server", func() {
		log.Println("Starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	})
	log.Println("Mailroom is now running. Press Ctrl+C to exit.")

	return s.waitForShutdown()
}

func (s *Server) waitForShutdown() error {
	defer s.recoverWithJaeger("shutdown")

	// Set up signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Wait for termination signal
	<-stop
	log.Println("Shutting down...")

	// Create a context with timeout for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	log.Println("Stopping cron scheduler...")
	s.cronManager.Stop()

	log.Println("Shutting down HTTP server...")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Closing queue connections...")
	if err := s.services.Subscriber.Close(); err != nil {
		log.Printf("Subscriber shutdown error: %v", err)
	}
	if err := s.services.Publisher.Close(); err != nil {
		log.Printf("Publisher shutdown error: %v", err)
	}

	if s.tracerCloser != nil {
		s.tracerCloser.Close()
	}

	return nil
}
