// Package main is the entry point for PancyCommands.
// It loads the command scripts and locales, then starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/PancyCommands/pkg/config"
	"github.com/PancyStudios/PancyCommands/pkg/database"
	"github.com/PancyStudios/PancyCommands/pkg/discord"
	"github.com/PancyStudios/PancyCommands/pkg/errors"
	"github.com/PancyStudios/PancyCommands/pkg/langs"
	"github.com/PancyStudios/PancyCommands/pkg/loader"
	"github.com/PancyStudios/PancyCommands/pkg/logger"
	"github.com/PancyStudios/PancyCommands/pkg/mqtt"
	"github.com/PancyStudios/PancyCommands/pkg/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System(fmt.Sprintf("Iniciando PancyCommands %s (%s)...", config.Version, config.BuildTime), "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			_ = discordClient.Stop()
		}
	})
	defer errors.RecoverMiddleware()()

	// Locales
	table := loadLocales(cfg)

	// Initialize database
	var opts []discord.HandlerOption
	var db *database.Database
	if cfg.HasDatabase() {
		db = database.NewDatabase()
		if err := db.Connect(ctx, cfg.MongoDBURL, cfg.DBName); err != nil {
			// writes are queued until the next successful Connect
			logger.Error(fmt.Sprintf("Error connecting to database: %v", err), "Main")
		}
		opts = append(opts, discord.WithHashStore(database.NewHashStore(db)))
		defer func() {
			_ = db.Disconnect(context.Background())
		}()
	}

	handler := discord.NewCommandHandler(loader.New(), table, opts...)

	// Initialize Discord client
	discordClient, err = discord.NewClient(cfg, handler)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	if err := discordClient.Start(ctx); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer func() {
		_ = discordClient.Stop()
	}()

	// Initialize MQTT
	if cfg.HasMQTT() {
		mqttClientID := "pancycommands"
		if !cfg.IsProd() {
			mqttClientID = "pancycommands_canary"
		}
		mqttClient := mqtt.NewMqttCommunicator(cfg.MQTTHost, cfg.MQTTPort, cfg.MQTTUser, cfg.MQTTPassword, mqttClientID)
		defer mqttClient.Destroy()

		if err := mqtt.RegisterCommandHandlers(mqttClient, handler, cfg.ReloadStopIfFail); err != nil {
			logger.Error(fmt.Sprintf("Error registrando handlers MQTT: %v", err), "Main")
		}
	}

	// Initialize web server
	webServer := web.NewServer(cfg.LogsWebhook)
	api := &web.API{Commands: handler, Bot: discordClient, StopIfFail: cfg.ReloadStopIfFail}
	if db != nil {
		api.DB = db
	}
	web.SetupAPIRoutes(webServer, api)
	webServer.StartAsync(cfg.Port)

	logger.Success("PancyCommands iniciado correctamente!", "Main")

	<-ctx.Done()
	logger.System("Apagando PancyCommands...", "Main")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn(fmt.Sprintf("Error cerrando servidor web: %v", err), "Main")
	}
}

// loadLocales reads the locale directory and its alias file. A missing
// directory yields an empty table so commands load without localizations.
func loadLocales(cfg *config.Config) *langs.Table {
	table, err := langs.LoadDir(cfg.LocalesDir, cfg.LocaleAliases)
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudieron cargar los idiomas desde %s: %v", cfg.LocalesDir, err), "Main")
		return langs.New(nil, nil)
	}
	if err := table.LoadAliases(cfg.LocaleAliases); err != nil {
		logger.Warn(fmt.Sprintf("No se pudieron cargar los alias de idioma: %v", err), "Main")
	}
	logger.Info(fmt.Sprintf("Idiomas cargados: %v", table.Locales()), "Main")
	return table
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
