package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/PancyStudios/PancyCommands/pkg/discord"
	"github.com/PancyStudios/PancyCommands/pkg/logger"
	"github.com/gin-gonic/gin"
)

// BotStatus is the part of the Discord client the API reports on
type BotStatus interface {
	IsReady() bool
	GuildCount() int
	Uptime() time.Duration
}

// DatabaseStatus reports the database connection state
type DatabaseStatus interface {
	Status(ctx context.Context) (string, bool)
}

// API serves the command routes
type API struct {
	Commands   *discord.CommandHandler
	Bot        BotStatus
	DB         DatabaseStatus
	StopIfFail bool
}

type reloadRequest struct {
	StopIfFail *bool `json:"stopIfFail"`
}

// SetupAPIRoutes sets up the API routes. Bot and DB may be nil.
func SetupAPIRoutes(s *Server, a *API) {
	api := s.Group("/api")
	{
		api.GET("/health", a.healthHandler)
		api.GET("/commands", a.listHandler)
		api.POST("/commands/reload", a.reloadAllHandler)
		api.POST("/commands/:name/reload", a.reloadHandler)
	}
}

// healthHandler returns the bot and database status
func (a *API) healthHandler(c *gin.Context) {
	bot := gin.H{"isOnline": false}
	if a.Bot != nil && a.Bot.IsReady() {
		bot = gin.H{
			"isOnline": true,
			"guilds":   a.Bot.GuildCount(),
			"uptime":   a.Bot.Uptime().Round(time.Second).String(),
		}
	}

	database := gin.H{"status": "sin configurar", "isOnline": false}
	if a.DB != nil {
		status, online := a.DB.Status(c.Request.Context())
		database = gin.H{"status": status, "isOnline": online}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"commands": len(a.Commands.Values()),
		"bot":      bot,
		"database": database,
	})
}

func (a *API) listHandler(c *gin.Context) {
	c.JSON(http.StatusOK, a.Commands.Summaries())
}

// reloadAllHandler accepts stopIfFail from the query string or a JSON body
func (a *API) reloadAllHandler(c *gin.Context) {
	stop := a.StopIfFail
	if q := c.Query("stopIfFail"); q != "" {
		v, err := strconv.ParseBool(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stopIfFail debe ser booleano"})
			return
		}
		stop = v
	} else if c.Request.ContentLength > 0 {
		var body reloadRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if body.StopIfFail != nil {
			stop = *body.StopIfFail
		}
	}

	report, err := a.Commands.ReloadAllReport(c.Request.Context(), stop)
	if err != nil {
		logger.Error(fmt.Sprintf("Error recargando comandos: %v", err), webPrefix)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (a *API) reloadHandler(c *gin.Context) {
	name := c.Param("name")
	if a.Commands.Find(name) == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": fmt.Sprintf("El comando %s no existe.", name),
		})
		return
	}

	if err := a.Commands.Reload(c.Request.Context(), name); err != nil {
		logger.Error(fmt.Sprintf("Error recargando %s: %v", name, err), webPrefix)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reloaded": []string{name}})
}
