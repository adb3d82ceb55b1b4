package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/JeffStuy/cs-layerfilterutil/internal/config"
)

// LoggerService is the printf-style logger handed to every component.
type LoggerService interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)

	Named(name string) LoggerService
}

// sink is shared by a logger and every logger named from it, so entries from
// different components never interleave mid-line.
type sink struct {
	mu     sync.Mutex
	writer io.Writer
	color  bool
	json   bool
	format string
	exit   func(int)
}

type LoggerServiceImpl struct {
	sink  *sink
	name  string
	level LogLevel
}

type logEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Service   string `json:"service,omitempty"`
	Message   string `json:"message"`
}

// NewLoggerService builds the root logger. Terminal output goes to stderr;
// stdout carries command results.
func NewLoggerService(name string, cfg config.LogConfig) LoggerService {
	return newLoggerService(name, cfg, os.Stderr)
}

func newLoggerService(name string, cfg config.LogConfig, terminal io.Writer) *LoggerServiceImpl {
	return &LoggerServiceImpl{
		sink: &sink{
			writer: openWriter(cfg, terminal),
			color:  !cfg.NoTerminal && !cfg.NoColor && !cfg.JSON,
			json:   cfg.JSON,
			format: cfg.TimeFormat,
			exit:   os.Exit,
		},
		name:  name,
		level: Parse(cfg.Level),
	}
}

// openWriter combines the terminal and the rotated log file. With neither
// configured entries are dropped.
func openWriter(cfg config.LogConfig, terminal io.Writer) io.Writer {
	var writers []io.Writer
	if !cfg.NoTerminal {
		writers = append(writers, terminal)
	}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.Rotation.MaxSize,
			MaxBackups: cfg.Rotation.MaxBackups,
			MaxAge:     cfg.Rotation.MaxAge,
			Compress:   cfg.Rotation.Compress,
		})
	}

	switch len(writers) {
	case 0:
		return io.Discard
	case 1:
		return writers[0]
	default:
		return io.MultiWriter(writers...)
	}
}

func (s *sink) write(level LogLevel, name, msg string) {
	timestamp := time.Now().Format(s.format)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.json {
		line, _ := json.Marshal(logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Service:   name,
			Message:   msg,
		})
		fmt.Fprintf(s.writer, "%s\n", line)
		return
	}

	prefix := fmt.Sprintf("[%s] %-5s", timestamp, level)
	if name != "" {
		prefix += " [" + name + "]"
	}
	if s.color {
		fmt.Fprintf(s.writer, "%s%s %s\033[0m\n", Color(level), prefix, msg)
		return
	}
	fmt.Fprintf(s.writer, "%s %s\n", prefix, msg)
}

func (impl *LoggerServiceImpl) log(level LogLevel, msg string, args ...any) {
	if level < impl.level {
		return
	}
	impl.sink.write(level, impl.name, fmt.Sprintf(msg, args...))

	if level == Fatal {
		impl.sink.exit(1)
	}
}

func (impl *LoggerServiceImpl) Debug(msg string, args ...any) { impl.log(Debug, msg, args...) }
func (impl *LoggerServiceImpl) Info(msg string, args ...any)  { impl.log(Info, msg, args...) }
func (impl *LoggerServiceImpl) Warn(msg string, args ...any)  { impl.log(Warn, msg, args...) }
func (impl *LoggerServiceImpl) Error(msg string, args ...any) { impl.log(Error, msg, args...) }
func (impl *LoggerServiceImpl) Fatal(msg string, args ...any) { impl.log(Fatal, msg, args...) }

// Named returns a logger for a component. Names nest with a slash.
func (impl *LoggerServiceImpl) Named(name string) LoggerService {
	if impl.name != "" {
		name = impl.name + "/" + name
	}
	return &LoggerServiceImpl{
		sink:  impl.sink,
		name:  name,
		level: impl.level,
	}
}
