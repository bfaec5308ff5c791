package update

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type RuntimeConfig struct {
	DBPath               string
	SchedulerBuffer      int
	RemindersEnabled     bool
	DesktopNotifications bool
	Theme                string
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		DBPath:               defaultDBPath(),
		SchedulerBuffer:      64,
		RemindersEnabled:     true,
		DesktopNotifications: false,
		Theme:                "dark",
	}
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("TODOIT_DB_PATH")); v != "" {
		cfg.DBPath = v
	}
	if v, ok := getEnvInt("TODOIT_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvBool("TODOIT_REMINDERS"); ok {
		cfg.RemindersEnabled = v
	}
	if v, ok := getEnvBool("TODOIT_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("TODOIT_THEME"))); v == "dark" || v == "light" {
		cfg.Theme = v
	}
	return cfg
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "todoit.db"
	}
	return filepath.Join(home, ".todoit", "todoit.db")
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
