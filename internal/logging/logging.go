// Package logging sets up the application loggers: a structured JSON logger
// on stdout (mirrored into the rotating main log when enabled), a
// human-readable text logger on stderr and a rotating file logger for the
// detection log.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/tphakala/snore-go/internal/conf"
	"gopkg.in/natefinch/lumberjack.v2"
)

var structuredLogger *slog.Logger
var humanReadableLogger *slog.Logger

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

// Add trace and fatal level names.
var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

func replaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		levelLabel, exists := levelNames[level]
		if !exists {
			levelLabel = level.String()
		}
		a.Value = slog.StringValue(levelLabel)
	}
	return a
}

// Init initializes the logging system with structured and human-readable
// loggers at the given minimum level. When mainLog is enabled, structured
// records are mirrored into the rotating main log file.
func Init(level slog.Level, mainLog *conf.LogConfig) {
	var structuredOut io.Writer = os.Stdout
	if mainLog != nil && mainLog.Enabled {
		structuredOut = io.MultiWriter(os.Stdout, rotatingWriter(mainLog))
	}

	structuredHandler := slog.NewJSONHandler(structuredOut, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	})
	structuredLogger = slog.New(structuredHandler)

	humanReadableHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	})
	humanReadableLogger = slog.New(humanReadableHandler)

	slog.SetDefault(structuredLogger)
}

// Structured returns the JSON logger, initializing the system at info level
// if Init has not been called yet.
func Structured() *slog.Logger {
	if structuredLogger == nil {
		Init(slog.LevelInfo, nil)
	}
	return structuredLogger
}

// HumanReadable returns the text logger.
func HumanReadable() *slog.Logger {
	if humanReadableLogger == nil {
		Init(slog.LevelInfo, nil)
	}
	return humanReadableLogger
}

// FileLogger returns a text logger writing to a rotating log file. Used for
// the detection log so a night of per-window status lines cannot grow a
// file without bound.
func FileLogger(cfg *conf.LogConfig) *slog.Logger {
	handler := slog.NewTextHandler(rotatingWriter(cfg), &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		ReplaceAttr: replaceLevelNames,
	})
	return slog.New(handler)
}

func rotatingWriter(cfg *conf.LogConfig) io.Writer {
	return &lumberjack.Logger{
		Filename: cfg.Path,
		MaxSize:  cfg.MaxSize,
		MaxAge:   cfg.MaxAge,
		Compress: true,
	}
}
