package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hub3-slips/internal/barcode"
	"hub3-slips/internal/clients"
	"hub3-slips/internal/config"
	"hub3-slips/internal/hub3"
	"hub3-slips/internal/repository"
	"hub3-slips/internal/service"
	"hub3-slips/internal/transport/auth"
	"hub3-slips/internal/transport/rest"
	"hub3-slips/internal/transport/websocket"
	"hub3-slips/pkg/database/postgres"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env or defaults")
	}

	// cancelled on shutdown; stops the websocket hub and the cleaner
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Load()

	db := mustInitPostgres(cfg.Postgres)
	defer postgres.Close(db)

	redisClient := mustInitRedis(cfg.Redis)
	defer redisClient.Close()

	localStorage, err := clients.NewLocalStorage(cfg.ExportDir, cfg.FilesPublicPrefix, cfg.ExternalURL)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}
	files := mustInitFileStore(ctx, cfg, localStorage)

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	wsClient := clients.NewWebSocketClient(wsHub)

	contactRepo := repository.NewContactRepository(db)
	organizationRepo := repository.NewOrganizationRepository(db)
	templateRepo := repository.NewPaymentTemplateRepository(db)
	tokenRepo := repository.NewPersonalAccessTokenRepository(db)

	jobStore := service.NewJobStore(redisClient, cfg.JobCachePrefix)

	slipSvc := service.NewSlipService(service.SlipServiceDeps{
		Contacts:      contactRepo,
		Organizations: organizationRepo,
		Templates:     templateRepo,
		Builder:       hub3.NewBuilder(cfg.Hub3.BankCode, cfg.Hub3.Currency, hub3.LogWarning),
		Barcodes:      barcode.NewRenderer(barcode.DefaultOptions()),
		Jobs:          jobStore,
		Files:         files,
		WS:            wsClient,
		MaxBatch:      int64(cfg.MaxBatchSize),
	})
	jobSvc := service.NewJobService(jobStore)

	handler := rest.NewHandler(slipSvc, jobSvc)
	router := handler.InitRouterWithAuth(auth.SanctumMiddleware(tokenRepo))

	// /files and /health stay public, everything else sits behind the token
	root := chi.NewRouter()

	root.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		rest.Success(w, "ok", nil)
	})

	root.Get(localStorage.PublicPrefix+"/{file}", func(w http.ResponseWriter, r *http.Request) {
		file := chi.URLParam(r, "file")
		path, ok := localStorage.Path(file)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "failed to access file", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", clients.OriginalName(file)))
		http.ServeFile(w, r, path)
	})

	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserID(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		log.Printf("[WS] connected: user_id=%d", userID)
		wsHub.HandleWebSocket(w, r, userID)
	})

	root.Mount("/", router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      withCORS(root),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on :%s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	// registers are kept for an hour
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := localStorage.CleanupOlderThan(time.Hour); err != nil {
					log.Printf("storage cleanup error: %v", err)
				}
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	case sig := <-stop:
		log.Printf("Shutdown signal received: %v", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server Shutdown error: %v", err)
		}

		// running batches still need Postgres, Redis and the file store
		log.Println("waiting for running batches")
		slipSvc.Wait()

		cancel()

		log.Println("Shutdown complete")
	}
}

func mustInitPostgres(cfg config.PostgresConfig) *sql.DB {
	db, err := postgres.NewPostgresConnection(postgres.ConnectionInfo{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.User,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
		Password: cfg.Password,
	})
	if err != nil {
		log.Fatalf("postgres init error: %v", err)
	}
	return db
}

func mustInitRedis(cfg config.RedisConfig) *clients.RedisClient {
	client, err := clients.NewRedisClient(clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Prefix:      cfg.Prefix,
	})
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}
	return client
}

// mustInitFileStore picks where finished registers are written.
func mustInitFileStore(ctx context.Context, cfg config.AppConfig, local *clients.StorageClient) service.FileStore {
	if cfg.StorageDriver != config.StorageS3 {
		return local
	}

	s3, err := clients.NewS3Client(ctx, clients.S3Config{
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Bucket:          cfg.S3.Bucket,
		UseSSL:          cfg.S3.UseSSL,
		Region:          cfg.S3.Region,
		Prefix:          cfg.S3.Prefix,
		URLTTL:          time.Duration(cfg.S3.URLTTLMinutes) * time.Minute,
	})
	if err != nil {
		log.Fatalf("s3 init error: %v", err)
	}
	return s3
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
