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

	"shop-helper/config"
	"shop-helper/internal/api"
	"shop-helper/internal/broker"
	"shop-helper/internal/catalog"
	"shop-helper/internal/ledger"
	"shop-helper/internal/match"
	"shop-helper/internal/reconcile"
	"shop-helper/internal/redisclient"
	"shop-helper/internal/service"
	"shop-helper/internal/store"
	"shop-helper/internal/util"
	"shop-helper/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting shop helper")

	tp, err := util.InitTracer("shop-helper", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.EnsureSchema(); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	cat := catalog.NewStore()
	led := ledger.New()

	snapshotService := service.NewSnapshotService(cat, led, db)

	ctx := context.Background()
	if err := snapshotService.Load(ctx); err != nil {
		log.Fatalf("Failed to load persisted state: %v", err)
	}

	policy := reconcile.Policy{
		Threshold:    cfg.Matching.Threshold,
		AcceptMargin: cfg.Matching.AcceptMargin,
	}
	engine := reconcile.NewEngine(match.NewResolver(cat), cat, policy)

	observationService := service.NewObservationService(engine, led, eventPublisher)
	shopService := service.NewShopService(cat, led, redisClient, eventPublisher, snapshotService)

	if err := shopService.SyncCacheAll(ctx); err != nil {
		log.Printf("Failed to sync price cache: %v", err)
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	captureConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicCapture, cfg.Kafka.ConsumerGroup)
	observationWorker := worker.NewObservationWorker(captureConsumer, observationService)
	go func() {
		if err := observationWorker.Start(workerCtx); err != nil {
			log.Printf("Observation worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	staleWindow := time.Duration(cfg.Matching.StaleDays) * 24 * time.Hour
	handler := api.NewHandler(shopService, observationService, snapshotService, policy, staleWindow)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	observationWorker.Stop()

	// last full save so nothing recorded in the final moments is lost
	if err := snapshotService.Save(shutdownCtx); err != nil {
		log.Printf("Final snapshot save failed: %v", err)
	}

	log.Println("Server exited")
}
