package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	changeStatusHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/change_appointment_status"
	createAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_appointment"
	deleteAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment"
	getAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointments"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_available_slots"
	getCustomerAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_customer_appointments"
	getProfessionalAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_professional_appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	slotCache "github.com/m04kA/SMC-AppointmentService/internal/infra/cache/slots"
	directoryClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	bookAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/book_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-AppointmentService/internal/worker/materializer"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

// businessMetrics метрики, которые пишут use cases и сервис
type businessMetrics interface {
	RecordBooking(result string)
	RecordTransition(operation, result string)
	RecordSlotCache(hit bool)
}

type cache interface {
	getAvailableSlotsUC.SlotCache
	bookAppointmentUC.SlotCache
}

type publisher interface {
	bookAppointmentUC.EventPublisher
	Close() error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from config.toml")

	strategy, _ := domain.ParseStrategy(cfg.Scheduling.Strategy)
	conflictMode, _ := domain.ParseConflictMode(cfg.Scheduling.ConflictMode)
	log.Info("Scheduling: strategy=%s, conflict_mode=%s, release_slot_on_cancel=%t",
		strategy, conflictMode, cfg.Scheduling.ReleaseSlotOnCancel)

	// Инициализируем метрики (если включены)
	var (
		metricsCollector *metrics.Metrics
		dbCollector      dbmetrics.Collector
		recorder         businessMetrics = metrics.Noop{}
	)
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		dbCollector = metricsCollector
		recorder = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаем хранилище
	store, err := openStorage(cfg.Database, dbCollector, stopMetricsCh, log)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.close()

	// Инициализируем клиент справочника
	directory := directoryClient.NewClient(
		cfg.DirectoryService.URL,
		time.Duration(cfg.DirectoryService.Timeout)*time.Second,
		log,
	)
	log.Info("Directory client initialized (url=%s, timeout=%ds)", cfg.DirectoryService.URL, cfg.DirectoryService.Timeout)

	// Кэш свободных слотов
	var slotsCache cache = slotCache.Noop{}
	if cfg.Cache.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		defer redisClient.Close()

		redisCache := slotCache.NewRedisCache(redisClient, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisCache.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Warn("Redis unavailable at %s, slot cache disabled: %v", cfg.Cache.Addr, err)
		} else {
			slotsCache = redisCache
			log.Info("Slot cache enabled (redis=%s, ttl=%ds)", cfg.Cache.Addr, cfg.Cache.TTLSeconds)
		}
	}

	// Публикация событий
	var eventPublisher publisher = events.Noop{}
	if cfg.Events.Enabled {
		eventPublisher = events.NewPublisher(cfg.Events.Brokers, cfg.Events.Topic)
		log.Info("Event publishing enabled (brokers=%v, topic=%s)", cfg.Events.Brokers, cfg.Events.Topic)
	}
	defer eventPublisher.Close()

	// Инициализируем use cases и сервис
	bookAppointmentUseCase := bookAppointmentUC.NewUseCase(
		store.slots,
		store.appointments,
		directory,
		store.tx,
		slotsCache,
		eventPublisher,
		recorder,
		log,
		bookAppointmentUC.Options{ConflictMode: conflictMode},
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		store.slots,
		directory,
		slotsCache,
		recorder,
		log,
		getAvailableSlotsUC.Options{Strategy: strategy, ConflictMode: conflictMode},
	)

	appointmentSvc := appointmentsService.NewService(
		store.appointments,
		store.slots,
		directory,
		store.tx,
		slotsCache,
		eventPublisher,
		recorder,
		log,
		appointmentsService.Options{ReleaseSlotOnCancel: cfg.Scheduling.ReleaseSlotOnCancel},
	)

	// Фоновая материализация слотов
	var slotMaterializer *materializer.Materializer
	if strategy == domain.StrategyMaterialized {
		slotMaterializer = materializer.NewMaterializer(
			directory,
			store.slots,
			slotsCache,
			log,
			materializer.Options{
				Schedule:     cfg.Scheduling.MaterializeCron,
				HorizonDays:  cfg.Scheduling.MaterializeHorizonDays,
				ConflictMode: conflictMode,
			},
		)
		if err := slotMaterializer.Start(); err != nil {
			log.Fatal("Failed to start materializer: %v", err)
		}
	}

	// Инициализируем handlers
	createAppointment := createAppointmentHandler.NewHandler(bookAppointmentUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	getAppointments := getAppointmentsHandler.NewHandler(appointmentSvc, log)
	changeStatus := changeStatusHandler.NewHandler(appointmentSvc, log)
	deleteAppointment := deleteAppointmentHandler.NewHandler(appointmentSvc, log)
	getProfessionalAppointments := getProfessionalAppointmentsHandler.NewHandler(appointmentSvc, log)
	getCustomerAppointments := getCustomerAppointmentsHandler.NewHandler(appointmentSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты профессионала на дату
	api.HandleFunc("/professionals/{professionalId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", getAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}", deleteAppointment.Handle).Methods(http.MethodDelete)

	// approve | reject | cancel | finish
	protected.HandleFunc("/appointments/{appointmentId}/{action}", changeStatus.Handle).Methods(http.MethodPatch)

	// --- Списки ---
	protected.HandleFunc("/professionals/{professionalId}/appointments",
		getProfessionalAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/customers/{customerId}/appointments",
		getCustomerAppointments.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if slotMaterializer != nil {
		slotMaterializer.Stop(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
