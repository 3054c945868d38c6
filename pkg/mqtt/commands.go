package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyCommands/pkg/discord"
	"github.com/PancyStudios/PancyCommands/pkg/logger"
)

// Topics answered by RegisterCommandHandlers
const (
	ReloadTopic = "commands/reload"
	ListTopic   = "commands/list"
)

const reloadTimeout = 30 * time.Second

// ReloadHandler reloads one command when the payload names it, or every
// command otherwise. A boolean stopIfFail in the payload overrides the default.
// Reloading every command answers with a discord.ReloadReport.
func ReloadHandler(h *discord.CommandHandler, stopIfFail bool) RequestHandler {
	return func(payload map[string]interface{}) (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()

		if name, ok := payload["name"].(string); ok && name != "" {
			if h.Find(name) == nil {
				return nil, fmt.Errorf("comando no encontrado: %s", name)
			}
			if err := h.Reload(ctx, name); err != nil {
				return nil, err
			}
			logger.Info(fmt.Sprintf("Comando %s recargado por MQTT", name), mqttPrefix)
			return map[string]interface{}{"reloaded": []string{name}}, nil
		}

		stop := stopIfFail
		if v, ok := payload["stopIfFail"].(bool); ok {
			stop = v
		}
		report, err := h.ReloadAllReport(ctx, stop)
		if err != nil {
			return nil, err
		}

		logger.Info(fmt.Sprintf("%d comandos recargados por MQTT, %d fallidos", len(report.Reloaded), len(report.Failed)), mqttPrefix)
		return report, nil
	}
}

// ListHandler answers with the loaded command summaries
func ListHandler(h *discord.CommandHandler) RequestHandler {
	return func(map[string]interface{}) (interface{}, error) {
		return h.Summaries(), nil
	}
}

// RegisterCommandHandlers answers the reload and list topics
func RegisterCommandHandlers(mc *MqttCommunicator, h *discord.CommandHandler, stopIfFail bool) error {
	if err := mc.On(ReloadTopic, ReloadHandler(h, stopIfFail)); err != nil {
		return err
	}
	return mc.On(ListTopic, ListHandler(h))
}
