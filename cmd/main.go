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

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	approveAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/approve_appointment"
	cancelAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_appointment"
	confirmPaymentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/confirm_payment"
	createAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_appointment"
	detectConflictsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/detect_conflicts"
	expireAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/expire_appointments"
	getAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment"
	getAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_availability"
	getBusinessAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_business_appointments"
	getLocationScheduleHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_location_schedule"
	getUserAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_user_appointments"
	listReschedulesHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_reschedules"
	rejectAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/reject_appointment"
	rescheduleAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/reschedule_appointment"
	updateAppointmentStatusHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_appointment_status"
	updateLocationScheduleHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_location_schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	scheduleCache "github.com/m04kA/SMC-AppointmentService/internal/infra/cache/schedule"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifier"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	scheduleService "github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
	createAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	detectConflictsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/detect_conflicts"
	getAvailabilityUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_availability"
	rescheduleAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// maxRequestBodyBytes ограничение размера тела запроса
const maxRequestBodyBytes = 1 << 20

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

	// Инициализируем метрики (если включены)
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

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Без метрик обёртка работает как обычный *sql.DB
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	catalogRepository := catalogRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)

	// Кэш расписаний в Redis (опционально)
	var (
		rdb         redis.Cmdable
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			// Кэш не обязателен: при ошибках store читает из БД
			log.Warn("Redis is unavailable at %s: %v", cfg.Redis.Addr, err)
		} else {
			log.Info("Schedule cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.ScheduleTTL)
		}
		cancelPing()
		rdb = redisClient
	}
	scheduleStore := scheduleCache.NewStore(
		scheduleRepository,
		rdb,
		time.Duration(cfg.Redis.ScheduleTTL)*time.Second,
		log,
	)

	// Публикация событий: Kafka или лог
	var dispatcher notifier.Dispatcher
	var kafkaDispatcher *notifier.KafkaDispatcher
	if cfg.Kafka.Enabled() {
		kafkaDispatcher = notifier.NewKafkaDispatcher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ClientID, log)
		dispatcher = kafkaDispatcher
		log.Info("Kafka event dispatcher enabled (brokers=%v, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		dispatcher = notifier.NewLogDispatcher(log)
		log.Info("Kafka brokers not configured, events are written to log")
	}

	// nil *metrics.Metrics нельзя отдавать как интерфейс
	var (
		conflictCounter detectConflictsUC.ConflictCounter
		eventCounter    notifier.EventCounter
	)
	if metricsCollector != nil {
		conflictCounter = metricsCollector
		eventCounter = metricsCollector
	}
	dispatcher = notifier.WithMetrics(dispatcher, eventCounter)

	detector := detectConflictsUC.NewDetector(appointmentRepository, conflictCounter)

	// Инициализируем сервисы
	appointmentSvc := appointmentsService.NewService(
		appointmentRepository,
		catalogRepository,
		detector,
		dispatcher,
		txMgr,
		log,
	)
	scheduleSvc := scheduleService.NewService(
		scheduleStore,
		scheduleRepository,
		scheduleStore,
		catalogRepository,
		txMgr,
		log,
	)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		catalogRepository,
		scheduleStore,
		detector,
		dispatcher,
		txMgr,
		log,
		cfg.Booking.RejectConflictingRequests,
	)
	rescheduleAppointmentUseCase := rescheduleAppointmentUC.NewUseCase(
		appointmentRepository,
		catalogRepository,
		scheduleStore,
		detector,
		dispatcher,
		txMgr,
		log,
	)
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		catalogRepository,
		scheduleStore,
		detector,
		log,
	)
	detectConflictsUseCase := detectConflictsUC.NewUseCase(detector, catalogRepository, log)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	detectConflicts := detectConflictsHandler.NewHandler(detectConflictsUseCase, log)
	getLocationSchedule := getLocationScheduleHandler.NewHandler(scheduleSvc, log)
	updateLocationSchedule := updateLocationScheduleHandler.NewHandler(scheduleSvc, log)
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(rescheduleAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	listReschedules := listReschedulesHandler.NewHandler(appointmentSvc, log)
	approveAppointment := approveAppointmentHandler.NewHandler(appointmentSvc, log)
	rejectAppointment := rejectAppointmentHandler.NewHandler(appointmentSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	updateAppointmentStatus := updateAppointmentStatusHandler.NewHandler(appointmentSvc, log)
	getUserAppointments := getUserAppointmentsHandler.NewHandler(appointmentSvc, log)
	getBusinessAppointments := getBusinessAppointmentsHandler.NewHandler(appointmentSvc, log)
	confirmPayment := confirmPaymentHandler.NewHandler(appointmentSvc, log)
	expireAppointments := expireAppointmentsHandler.NewHandler(appointmentSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.BodyLimit(maxRequestBodyBytes))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты услуги на дату
	api.HandleFunc("/services/{serviceId}/availability", getAvailability.Handle).Methods(http.MethodGet)

	// Проверка пересечений для интервала
	api.HandleFunc("/services/{serviceId}/conflicts", detectConflicts.Handle).Methods(http.MethodGet)

	// Расписание локации
	api.HandleFunc("/locations/{locationId}/schedule", getLocationSchedule.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/reschedules", listReschedules.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/users/{userId}/appointments", getUserAppointments.Handle).Methods(http.MethodGet)

	// --- Управление бизнесом (для менеджеров) ---
	protected.HandleFunc("/appointments/{appointmentId}/approve", approveAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}/reject", rejectAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}/status", updateAppointmentStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/businesses/{businessId}/appointments", getBusinessAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/locations/{locationId}/schedule", updateLocationSchedule.Handle).Methods(http.MethodPut)

	// ============================================================
	// INTERNAL ROUTES (платежный сервис и планировщик)
	// ============================================================

	internal := r.PathPrefix("/internal").Subrouter()
	internal.Use(middleware.InternalOnly(cfg.Server.InternalToken))
	if cfg.Server.InternalToken == "" {
		log.Warn("Internal token is not configured, /internal routes are disabled")
	}
	internal.HandleFunc("/appointments/expire", expireAppointments.Handle).Methods(http.MethodPost)
	internal.HandleFunc("/appointments/{appointmentId}/payment-confirmed", confirmPayment.Handle).Methods(http.MethodPost)

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

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	if kafkaDispatcher != nil {
		if err := kafkaDispatcher.Close(); err != nil {
			log.Error("Failed to close kafka writer: %v", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close redis client: %v", err)
		}
	}

	log.Info("Server stopped gracefully")
}
