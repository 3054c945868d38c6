package logger

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// fileHook appends every entry to combined.log and errors to error.log
type fileHook struct {
	mu        sync.Mutex
	formatter logrus.Formatter
	combined  *os.File
	errors    *os.File
}

func newFileHook(dir string) (*fileHook, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating logs directory: %w", err)
	}

	combined, err := os.OpenFile(filepath.Join(dir, "combined.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening combined log file: %w", err)
	}

	errorsFile, err := os.OpenFile(filepath.Join(dir, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		combined.Close()
		return nil, fmt.Errorf("opening error log file: %w", err)
	}

	return &fileHook{
		formatter: &consoleFormatter{colors: false},
		combined:  combined,
		errors:    errorsFile,
	}, nil
}

// Levels implements logrus.Hook
func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook
func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.combined != nil {
		h.combined.Write(line)
	}
	if levelOf(entry) <= LevelError && h.errors != nil {
		h.errors.Write(line)
	}
	return nil
}

// Close closes both files
func (h *fileHook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.combined != nil {
		h.combined.Close()
		h.combined = nil
	}
	if h.errors != nil {
		h.errors.Close()
		h.errors = nil
	}
}

// webhookHook forwards entries to Discord webhooks as embeds
type webhookHook struct {
	errorURL string
	logsURL  string
	client   *http.Client
}

func newWebhookHook(errorURL, logsURL string) *webhookHook {
	return &webhookHook{
		errorURL: errorURL,
		logsURL:  logsURL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Levels implements logrus.Hook
func (h *webhookHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook. Delivery is asynchronous and best effort.
func (h *webhookHook) Fire(entry *logrus.Entry) error {
	level := levelOf(entry)
	url := h.targetFor(level)
	if url == "" {
		return nil
	}

	prefix, _ := entry.Data[fieldPrefix].(string)
	go h.send(url, level, entry.Message, prefix)
	return nil
}

// targetFor picks the webhook for a level
func (h *webhookHook) targetFor(level LogLevel) string {
	if level <= LevelError {
		return h.errorURL
	}
	return h.logsURL
}

func (h *webhookHook) send(url string, level LogLevel, message, prefix string) {
	embed := map[string]interface{}{
		"title":       fmt.Sprintf("[%s] %s", level.String(), prefix),
		"description": fmt.Sprintf("```%s```", message),
		"color":       level.DiscordColor(),
		"timestamp":   time.Now().Format(time.RFC3339),
		"footer": map[string]string{
			"text": "💫 Developed by PancyStudio | PancyCommands",
		},
	}

	payload := map[string]interface{}{
		"embeds": []interface{}{embed},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
}
