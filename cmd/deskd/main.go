package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"faculty-desk-unit/config"
	"faculty-desk-unit/internal/api"
	"faculty-desk-unit/internal/availability"
	"faculty-desk-unit/internal/codec"
	"faculty-desk-unit/internal/desk"
	"faculty-desk-unit/internal/display"
	"faculty-desk-unit/internal/input"
	"faculty-desk-unit/internal/link"
	"faculty-desk-unit/internal/model"
	"faculty-desk-unit/internal/presence"
	"faculty-desk-unit/internal/queue"
	"faculty-desk-unit/internal/render"
	"faculty-desk-unit/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "deskd ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded for faculty %s", cfg.Faculty.ID)

	// The display is the one collaborator the unit cannot run without.
	sink := display.NewConsoleSink(os.Stdout, cfg.Display.Width)
	if err := sink.Init(); err != nil {
		logger.Fatalf("display init failed: %v", err)
	}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		logger.Fatalf("failed to open state store: %v", err)
	}
	st := store.NewGormStore(db)
	logger.Println("state store initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	willPayload, err := codec.EncodeSystemStatus("offline", time.Now())
	if err != nil {
		logger.Fatalf("failed to encode will payload: %v", err)
	}
	session := link.NewPahoSession(
		cfg.Broker.URL,
		cfg.Broker.ClientID,
		cfg.Broker.Username,
		cfg.Broker.Password,
		link.SystemTopic(cfg.Broker.ClientID),
		willPayload,
	)
	prober, err := link.NewNetProber(cfg.Broker.URL)
	if err != nil {
		logger.Fatalf("invalid broker url: %v", err)
	}

	var mgr *link.Manager
	ctrl := availability.NewController(st, func(s model.AvailabilityStatus) error {
		return mgr.PublishStatus(s)
	})
	if err := ctrl.Load(ctx); err != nil {
		logger.Fatalf("failed to load persisted status: %v", err)
	}
	logger.Printf("resuming availability status %q", ctrl.Current())

	mgr = link.NewManager(session, prober, link.Config{
		FacultyID:     cfg.Faculty.ID,
		Department:    cfg.Faculty.Department,
		ClientID:      cfg.Broker.ClientID,
		RetryInterval: cfg.Broker.RetryInterval,
		AttachTimeout: cfg.Broker.AttachTimeout,
	}, ctrl.Current)
	defer mgr.Close()

	// The radio is an external capability; deployments plug their own Scanner
	// in here. With simulate_ids set the unit sees those identifiers on every
	// scan, which is also how bench units run without a radio.
	var scanner presence.Scanner = &presence.StaticScanner{IDs: cfg.Presence.SimulateIDs}
	if len(cfg.Presence.SimulateIDs) > 0 {
		logger.Printf("presence simulation mode: %v", cfg.Presence.SimulateIDs)
	} else {
		logger.Println("no radio backend configured; presence will stay unavailable")
	}
	tracker := presence.NewTracker(
		cfg.Faculty.BeaconID,
		scanner,
		cfg.Presence.ScanInterval,
		cfg.Presence.ScanDuration,
		cfg.Presence.Timeout,
	)

	bus := input.NewBus()
	identity := render.Identity{
		FacultyID:  cfg.Faculty.ID,
		Name:       cfg.Faculty.Name,
		Department: cfg.Faculty.Department,
	}

	unit := desk.New(desk.Options{
		Identity: identity,
		Width:    cfg.Display.Width,
		Link:     mgr,
		Tracker:  tracker,
		Status:   ctrl,
		Queue:    queue.New(),
		Buttons:  input.NewController(bus, cfg.Input.Debounce),
		Bus:      bus,
		Sink:     sink,
	})

	go unit.Run(ctx, cfg.Unit.TickInterval)

	var server *http.Server
	if cfg.Server.Enabled {
		router := api.NewRouter(unit, identity, cfg.Server.RateLimitPerSec)
		server = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: router,
		}
		go func() {
			logger.Printf("local API listening on port %d", cfg.Server.Port)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatalf("local API ListenAndServe: %v", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Println("shutdown signal received, stopping services...")
	cancel()

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Fatalf("local API shutdown: %v", err)
		}
	}

	logger.Println("desk unit stopped")
}
