// Package main provides a utility to sync Discord application commands
// from the command scripts without starting the bot.
//
// Usage:
//
//	go run ./cmd/sync-commands [options]
//
// Options:
//
//	-list           List all registered commands
//	-clean          Remove all commands without registering new ones
//	-guild <id>     Target a specific guild instead of global commands
//	-dev            Register the dev commands (implies the dev guild)
//	-dry            Log what sync would change without applying it
//	-sync           Sync commands (remove stale, register current) - default behavior
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/PancyStudios/PancyCommands/pkg/config"
	"github.com/PancyStudios/PancyCommands/pkg/database"
	"github.com/PancyStudios/PancyCommands/pkg/discord"
	"github.com/PancyStudios/PancyCommands/pkg/langs"
	"github.com/PancyStudios/PancyCommands/pkg/loader"
	"github.com/PancyStudios/PancyCommands/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const prefix = "SyncCommands"

func main() {
	// Parse command line flags
	listCmd := flag.Bool("list", false, "List all registered commands")
	cleanCmd := flag.Bool("clean", false, "Remove all commands without registering new ones")
	guildID := flag.String("guild", "", "Target a specific guild (leave empty for global)")
	devCmd := flag.Bool("dev", false, "Register dev commands in the dev guild")
	dryRun := flag.Bool("dry", false, "Only log the changes sync would make")
	flag.Bool("sync", true, "Sync commands (remove stale, register current)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Iniciando utilidad de sincronización de comandos...", prefix)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord session: %v", err), prefix)
		os.Exit(1)
	}

	me, err := session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		logger.Critical(fmt.Sprintf("Error connecting to Discord: %v", err), prefix)
		os.Exit(1)
	}
	logger.Success("Conectado a Discord como "+me.Username, prefix)

	target := *guildID
	if *devCmd && target == "" {
		target = cfg.DevGuildID
	}

	switch {
	case *listCmd:
		err = listCommands(ctx, session, me.ID, target)
	case *cleanCmd:
		err = cleanCommands(ctx, session, me.ID, target)
	default:
		err = syncCommands(ctx, cfg, session, me.ID, target, *devCmd, *dryRun)
	}
	if err != nil {
		logger.Error(err.Error(), prefix)
		os.Exit(1)
	}

	logger.Success("Operación completada exitosamente", prefix)
}

func scope(guildID string) string {
	if guildID == "" {
		return "globales"
	}
	return "del servidor " + guildID
}

// listCommands lists all commands registered with Discord
func listCommands(ctx context.Context, s *discordgo.Session, appID, guildID string) error {
	logger.Info(fmt.Sprintf("📋 Listando comandos %s...", scope(guildID)), prefix)

	cmds, err := s.ApplicationCommands(appID, guildID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("obteniendo comandos: %w", err)
	}
	if len(cmds) == 0 {
		logger.Info("No hay comandos registrados", prefix)
		return nil
	}

	logger.Info(fmt.Sprintf("Comandos encontrados: %d", len(cmds)), prefix)
	for i, cmd := range cmds {
		logger.Info(fmt.Sprintf("  %d. /%s - %s (ID: %s)", i+1, cmd.Name, cmd.Description, cmd.ID), prefix)
	}
	return nil
}

// cleanCommands removes every command in the scope
func cleanCommands(ctx context.Context, s *discordgo.Session, appID, guildID string) error {
	logger.Info(fmt.Sprintf("🧹 Eliminando comandos %s...", scope(guildID)), prefix)

	cmds, err := s.ApplicationCommands(appID, guildID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("obteniendo comandos: %w", err)
	}
	for _, cmd := range cmds {
		if err := s.ApplicationCommandDelete(appID, guildID, cmd.ID, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("eliminando %s: %w", cmd.Name, err)
		}
		logger.Info("Eliminado /"+cmd.Name, prefix)
	}

	logger.Success(fmt.Sprintf("✅ %d comandos eliminados", len(cmds)), prefix)
	return nil
}

// syncCommands loads the scripts and syncs their definitions
func syncCommands(ctx context.Context, cfg *config.Config, s *discordgo.Session, appID, guildID string, dev, dry bool) error {
	logger.Info(fmt.Sprintf("🔄 Sincronizando comandos %s...", scope(guildID)), prefix)

	table, err := langs.LoadDir(cfg.LocalesDir, cfg.LocaleAliases)
	if err != nil {
		logger.Warn(fmt.Sprintf("Sin idiomas: %v", err), prefix)
		table = langs.New(nil, nil)
	} else if err := table.LoadAliases(cfg.LocaleAliases); err != nil {
		logger.Warn(fmt.Sprintf("Sin alias de idioma: %v", err), prefix)
	}

	var opts []discord.HandlerOption
	if cfg.HasDatabase() && !dry {
		db := database.NewDatabase()
		if err := db.Connect(ctx, cfg.MongoDBURL, cfg.DBName); err != nil {
			logger.Warn(fmt.Sprintf("Sin base de datos, se recrearán todos los comandos: %v", err), prefix)
		} else {
			defer func() { _ = db.Disconnect(context.Background()) }()
			opts = append(opts, discord.WithHashStore(database.NewHashStore(db)))
		}
	}

	handler := discord.NewCommandHandler(loader.New(), table, opts...)
	if _, err := handler.Load(ctx, cfg.CommandsDir); err != nil {
		return fmt.Errorf("cargando comandos: %w", err)
	}

	var api discord.ApplicationCommandAPI = s
	if dry {
		api = dryRunAPI{s}
	}

	res, err := handler.Sync(ctx, api, appID, guildID, handler.Definitions(dev))
	if err != nil {
		return err
	}
	logger.Success(fmt.Sprintf("✅ %d creados, %d eliminados, %d sin cambios",
		len(res.Created), len(res.Deleted), len(res.Unchanged)), prefix)
	return nil
}

// dryRunAPI reads from Discord but only logs writes
type dryRunAPI struct {
	*discordgo.Session
}

func (d dryRunAPI) ApplicationCommandCreate(_ string, _ string, cmd *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	logger.Info("[dry] se registraría /"+cmd.Name, prefix)
	return cmd, nil
}

func (d dryRunAPI) ApplicationCommandDelete(_, _, cmdID string, _ ...discordgo.RequestOption) error {
	logger.Info("[dry] se eliminaría el comando "+cmdID, prefix)
	return nil
}
