package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	createAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_appointment"
	createAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_availability"
	deleteAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_appointment"
	deleteAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_availability"
	getAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_available_slots"
	getClientAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_client_appointments"
	listAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_appointments"
	listAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_availability"
	updateAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	availabilityCache "github.com/m04kA/SMC-AppointmentService/internal/infra/cache/availability"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/kafkabus"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/messaging"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	availabilityService "github.com/m04kA/SMC-AppointmentService/internal/service/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/service/notifications"
	"github.com/m04kA/SMC-AppointmentService/internal/service/scheduling"
	createAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	updateAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/update_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

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

	location, err := cfg.Business.Location()
	if err != nil {
		log.Fatal("Failed to load business timezone: %v", err)
	}
	log.Info("Business timezone: %s", location)

	// Инициализируем метрики (если включены), nil коллектор метрики не пишет
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	availabilityRepository := availabilityRepo.NewRepository(wrappedDB)
	directoryRepository := directoryRepo.NewRepository(wrappedDB)

	// Кэш доступности (опционально)
	var (
		blockFinder      availabilityService.BlockFinder = availabilityRepository
		cacheInvalidator availabilityService.CacheInvalidator
		redisClient      *redis.Client
	)

	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
		}

		cache := availabilityCache.NewCache(
			availabilityRepository,
			redisClient,
			time.Duration(cfg.Redis.TTL)*time.Second,
			log,
		)
		blockFinder = cache
		cacheInvalidator = cache
		log.Info("Availability cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
	}

	// Канал доставки уведомлений
	var (
		sender    notifications.Sender
		publisher *kafkabus.Publisher
	)

	switch cfg.Notifications.Transport {
	case config.TransportHTTP:
		sender = messaging.NewClient(
			cfg.Notifications.Messaging.URL,
			cfg.Notifications.Messaging.Token,
			time.Duration(cfg.Notifications.Messaging.Timeout)*time.Second,
			log,
		)
		log.Info("Notifications via messaging API %s", cfg.Notifications.Messaging.URL)
	case config.TransportKafka:
		publisher, err = kafkabus.NewPublisher(
			cfg.Notifications.Kafka.Brokers,
			cfg.Notifications.Kafka.Topic,
			time.Duration(cfg.Notifications.Kafka.WriteTimeout)*time.Second,
		)
		if err != nil {
			log.Fatal("Failed to create kafka publisher: %v", err)
		}
		sender = publisher
		log.Info("Notifications via kafka topic %s (brokers=%s)", cfg.Notifications.Kafka.Topic, cfg.Notifications.Kafka.Brokers)
	default:
		sender = notifications.NewLogSender(log)
		log.Info("Notifications are written to the log")
	}

	dispatcher := notifications.NewDispatcher(sender, notifications.Config{
		QueueSize:   cfg.Notifications.QueueSize,
		Interval:    cfg.Notifications.Interval(),
		Burst:       cfg.Notifications.Burst,
		SendTimeout: time.Duration(cfg.Notifications.SendTimeout) * time.Second,
	}, metricsCollector, log)
	notifier := notifications.NewNotifier(dispatcher, location, log)

	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		dispatcher.Run(dispatcherCtx)
	}()

	// Сервисы
	availabilitySvc := availabilityService.NewService(
		availabilityRepository,
		blockFinder,
		directoryRepository,
		cacheInvalidator,
		txMgr,
		log,
	)
	conflictCounter := scheduling.NewConflictCounter(appointmentRepository)
	validator := scheduling.NewValidator(
		availabilitySvc,
		conflictCounter,
		scheduling.NewClock(location),
		log,
	)
	appointmentsSvc := appointmentsService.NewService(
		appointmentRepository,
		directoryRepository,
		metricsCollector,
		log,
	)

	// Use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		directoryRepository,
		directoryRepository,
		directoryRepository,
		validator,
		txMgr,
		notifier,
		metricsCollector,
		log,
	)
	updateAppointmentUseCase := updateAppointmentUC.NewUseCase(
		appointmentRepository,
		directoryRepository,
		directoryRepository,
		directoryRepository,
		validator,
		txMgr,
		notifier,
		metricsCollector,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		directoryRepository,
		directoryRepository,
		availabilitySvc,
		appointmentRepository,
		location,
		getAvailableSlotsUC.Options{
			AdvanceBookingDays: cfg.Business.AdvanceBookingDays,
			MinNoticeMinutes:   cfg.Business.MinNoticeMinutes,
		},
		log,
	)

	// Handlers
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	updateAppointment := updateAppointmentHandler.NewHandler(updateAppointmentUseCase, log)
	deleteAppointment := deleteAppointmentHandler.NewHandler(appointmentsSvc, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	listAppointments := listAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getClientAppointments := getClientAppointmentsHandler.NewHandler(appointmentsSvc, log)
	createAvailability := createAvailabilityHandler.NewHandler(availabilitySvc, log)
	listAvailability := listAvailabilityHandler.NewHandler(availabilitySvc, log)
	deleteAvailability := deleteAvailabilityHandler.NewHandler(availabilitySvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)

	// Роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Записи ---
	api.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}", updateAppointment.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{appointmentId}", deleteAppointment.Handle).Methods(http.MethodDelete)
	api.HandleFunc("/clients/{clientId}/appointments", getClientAppointments.Handle).Methods(http.MethodGet)

	// --- Доступность сотрудников ---
	api.HandleFunc("/staff/{staffId}/availability", createAvailability.Handle).Methods(http.MethodPost)
	api.HandleFunc("/staff/{staffId}/availability", listAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/availability/{blockId}", deleteAvailability.Handle).Methods(http.MethodDelete)
	api.HandleFunc("/staff/{staffId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Новых записей больше не будет, останавливаем очередь уведомлений
	stopDispatcher()
	select {
	case <-dispatcherDone:
	case <-shutdownCtx.Done():
		log.Warn("Notification dispatcher did not stop in time, %d messages pending", dispatcher.Pending())
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error("Failed to close kafka publisher: %v", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close redis client: %v", err)
		}
	}

	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
