// Package logging provides config-driven categorized file-based logging for
// eidos. Logs are written to .eidos/logs/ with a separate file per category.
// Logging is controlled by the logging section of .eidos/config.yaml; when
// debug mode is off, every call is a no-op.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Category identifies a log stream.
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup and wiring
	CategoryRegistry  Category = "registry"  // Primitive registration, capability expansion
	CategorySynthesis Category = "synthesis" // Enumerative search
	CategoryEvolution Category = "evolution" // Genetic engine generations
	CategoryMeta      Category = "meta"      // Strategy selection and stats
	CategoryStore     Category = "store"     // SQLite persistence
	CategoryVerify    Category = "verify"    // Verification outcomes
)

// loggingConfig mirrors config.LoggingConfig to avoid a circular import.
type loggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
}

type configFile struct {
	Logging loggingConfig `yaml:"logging"`
}

// Logger writes to a single category file.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	workspace string
	config    loggingConfig
	configMu  sync.RWMutex
	logLevel  int
)

// Initialize sets up the logging directory and loads config. Call once at
// startup with the workspace path. Missing config means production mode:
// silent no-op.
func Initialize(ws string) error {
	if ws == "" {
		return fmt.Errorf("workspace path required")
	}
	workspace = ws
	logsDir = filepath.Join(workspace, ".eidos", "logs")

	if err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not load config: %v\n", err)
		config.DebugMode = false
	}

	if !config.DebugMode {
		return nil
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== eidos logging initialized ===")
	boot.Info("Workspace: %s", workspace)
	boot.Info("Log level: %s", config.Level)
	return nil
}

func loadConfig() error {
	configMu.Lock()
	defer configMu.Unlock()

	configPath := filepath.Join(workspace, ".eidos", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			config.DebugMode = false
			return nil
		}
		return err
	}

	var cf configFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	config = cf.Logging

	switch config.Level {
	case "debug":
		logLevel = levelDebug
	case "warn", "warning":
		logLevel = levelWarn
	case "error":
		logLevel = levelError
	default:
		logLevel = levelInfo
	}
	return nil
}

// IsCategoryEnabled reports whether a category currently logs anywhere.
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()

	if !config.DebugMode {
		return false
	}
	if config.Categories == nil {
		return true
	}
	enabled, exists := config.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) the logger for a category. Disabled categories
// get a no-op logger.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	path := filepath.Join(logsDir, string(category)+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return &Logger{category: category}
	}
	l := &Logger{
		category: category,
		logger:   log.New(f, "", log.LstdFlags|log.Lmicroseconds),
		file:     f,
	}
	loggers[category] = l
	return l
}

func (l *Logger) write(level int, prefix, format string, args ...interface{}) {
	if l.logger == nil || level < logLevel {
		return
	}
	l.logger.Printf(prefix+format, args...)
}

// Debug logs at debug level.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(levelDebug, "[DEBUG] ", format, args...)
}

// Info logs at info level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(levelInfo, "[INFO] ", format, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(levelWarn, "[WARN] ", format, args...)
}

// Error logs at error level.
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(levelError, "[ERROR] ", format, args...)
}

// CloseAll flushes and closes every open category file.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for cat, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
		delete(loggers, cat)
	}
}

// Convenience helpers, one set per category.

func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }
func BootError(format string, args ...interface{}) {
	Get(CategoryBoot).Error(format, args...)
}

func Registry(format string, args ...interface{}) { Get(CategoryRegistry).Info(format, args...) }
func RegistryDebug(format string, args ...interface{}) {
	Get(CategoryRegistry).Debug(format, args...)
}

func Synthesis(format string, args ...interface{}) { Get(CategorySynthesis).Info(format, args...) }
func SynthesisDebug(format string, args ...interface{}) {
	Get(CategorySynthesis).Debug(format, args...)
}

func Evolution(format string, args ...interface{}) { Get(CategoryEvolution).Info(format, args...) }
func EvolutionDebug(format string, args ...interface{}) {
	Get(CategoryEvolution).Debug(format, args...)
}

func Meta(format string, args ...interface{}) { Get(CategoryMeta).Info(format, args...) }
func MetaDebug(format string, args ...interface{}) {
	Get(CategoryMeta).Debug(format, args...)
}

func Store(format string, args ...interface{}) { Get(CategoryStore).Info(format, args...) }
func StoreError(format string, args ...interface{}) {
	Get(CategoryStore).Error(format, args...)
}

func Verify(format string, args ...interface{}) { Get(CategoryVerify).Info(format, args...) }
func VerifyWarn(format string, args ...interface{}) {
	Get(CategoryVerify).Warn(format, args...)
}

// Timer measures an operation and logs its duration on Stop.
type Timer struct {
	category  Category
	operation string
	start     time.Time
}

// StartTimer begins timing an operation within a category.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, operation: operation, start: time.Now()}
}

// Stop logs the elapsed time at debug level and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s took %v", t.operation, elapsed)
	return elapsed
}
