package app

import (
	"context"
	"time"

	"linecheck/config"
	"linecheck/internal/database"
	"linecheck/internal/events"
	"linecheck/internal/handlers/middleware"
	"linecheck/internal/jobs"
	"linecheck/internal/logger"
	"linecheck/internal/models"
	"linecheck/internal/repositories"
	"linecheck/internal/services"
	"linecheck/internal/utils"
	"linecheck/internal/websockets"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Config     config.Config
	Boundary   *utils.DayBoundary

	// Services
	CredentialService *services.CredentialService
	GatewayService    *services.GatewayService
	ResetController   *services.ResetController
	ToggleService     *services.ToggleService
	PollingService    *services.PollingService
	SchedulerService  *services.SchedulerService

	// Repositories
	ChecklistRepo repositories.ChecklistRepository
	MarkerRepo    repositories.MarkerRepository

	pollers []*services.StopHandle
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events)

	boundary := utils.NewDayBoundary(nil)

	// Initialize services
	credentialService := services.NewCredentialService(config)
	gatewayService, err := services.NewGatewayService(config, credentialService)
	if err != nil {
		return &App{}, log.Err("failed to create gateway service", err)
	}

	// Initialize repositories
	checklistRepo := repositories.NewChecklistRepository(db, gatewayService, eventBus)
	markerRepo := repositories.NewMarkerRepository(db)

	resetController := services.NewResetController(markerRepo, checklistRepo, eventBus, boundary)
	toggleService := services.NewToggleService(
		checklistRepo,
		markerRepo,
		resetController,
		eventBus,
		boundary,
	)
	pollingService := services.NewPollingService(
		credentialService,
		checklistRepo,
		boundary,
		time.Duration(config.PollIntervalSeconds)*time.Second,
	)
	schedulerService := services.NewSchedulerService()

	websocket, err := websockets.New(eventBus)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	middleware := middleware.New(db, eventBus, config)

	// Register jobs with scheduler if enabled
	if config.SchedulerEnabled {
		dayRolloverJob := jobs.NewDayRolloverJob(resetController, services.EveryMinute)
		if err := schedulerService.AddJob(dayRolloverJob); err != nil {
			return &App{}, log.Err("failed to register day rollover job", err)
		}
		log.Info("Registered day rollover job with scheduler")
	}

	app := &App{
		Database:          db,
		Config:            config,
		Middleware:        middleware,
		Boundary:          boundary,
		CredentialService: credentialService,
		GatewayService:    gatewayService,
		ResetController:   resetController,
		ToggleService:     toggleService,
		PollingService:    pollingService,
		SchedulerService:  schedulerService,
		ChecklistRepo:     checklistRepo,
		MarkerRepo:        markerRepo,
		Websocket:         websocket,
		EventBus:          eventBus,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	if err := schedulerService.Start(context.Background()); err != nil {
		return &App{}, log.Err("failed to start scheduler", err)
	}

	for _, shift := range models.AllShiftTypes() {
		app.pollers = append(app.pollers, pollingService.Start(shift))
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")

	if a.Database.Cache.Checklist == nil {
		return log.ErrMsg("cache is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Boundary,
		a.CredentialService,
		a.GatewayService,
		a.ResetController,
		a.ToggleService,
		a.PollingService,
		a.SchedulerService,
		a.ChecklistRepo,
		a.MarkerRepo,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	for _, handle := range a.pollers {
		handle.Stop()
	}

	if a.SchedulerService != nil {
		if closeErr := a.SchedulerService.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
