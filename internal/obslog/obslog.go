package obslog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatLegacy  = "legacy"
	FormatJSON    = "json"
	FormatConsole = "console"
)

var globalLogger = zap.NewNop()

// L는 전역 로거를 반환.
func L() *zap.Logger { return globalLogger }

// Named는 컴포넌트 이름이 붙은 하위 로거를 반환.
func Named(component string) *zap.Logger { return globalLogger.Named(component) }

// Set은 전역 로거를 교체한다. nil이면 no-op 로거를 설치.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	globalLogger = l
}

// Options는 로그 출력 위치와 형식을 정한다.
type Options struct {
	Level   zapcore.Level
	Console bool
	File    string // 비어 있으면 파일 출력 안 함
	Caller  bool
	Format  string
}

// FromEnv는 LOG_LEVEL, LOG_TO_CONSOLE, LOG_TO_FILE, LOG_FILE, LOG_CALLER, LOG_FORMAT을 읽는다.
func FromEnv() Options {
	opts := Options{
		Level:   parseLevel(getenvDefault("LOG_LEVEL", "info")),
		Console: strings.EqualFold(getenvDefault("LOG_TO_CONSOLE", "true"), "true"),
		Caller:  strings.EqualFold(getenvDefault("LOG_CALLER", "false"), "true"),
		Format:  normalizeFormat(getenvDefault("LOG_FORMAT", FormatLegacy)),
	}
	if strings.EqualFold(getenvDefault("LOG_TO_FILE", "false"), "true") {
		opts.File = strings.TrimSpace(getenvDefault("LOG_FILE", filepath.Join("logs", "chess-server.log")))
	}
	return opts
}

// InitFromEnv는 환경설정으로 zap 로거를 초기화.
func InitFromEnv() error {
	l, err := New(FromEnv())
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

// New는 콘솔+파일 동시 출력 로거를 만든다.
func New(opts Options) (*zap.Logger, error) {
	format := normalizeFormat(opts.Format)
	var cores []zapcore.Core
	if opts.Console {
		cores = append(cores, zapcore.NewCore(encoder(format), zapcore.AddSync(os.Stdout), opts.Level))
	}
	if opts.File != "" {
		if err := ensureDir(filepath.Dir(opts.File)); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoder(format), zapcore.AddSync(f), opts.Level))
	}
	if len(cores) == 0 {
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), opts.Level))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	if opts.Caller || format == FormatLegacy {
		logger = logger.WithOptions(zap.AddCaller())
	}
	return logger.WithOptions(zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func normalizeFormat(s string) string {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FormatJSON, FormatConsole:
		return f
	default:
		return FormatLegacy
	}
}

func encoder(format string) zapcore.Encoder {
	switch format {
	case FormatJSON:
		return zapcore.NewJSONEncoder(jsonEncoderConfig())
	case FormatConsole:
		return zapcore.NewConsoleEncoder(consoleEncoderConfig())
	default:
		return zapcore.NewConsoleEncoder(legacyEncoderConfig())
	}
}

func ensureDir(dir string) error {
	if strings.TrimSpace(dir) == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLevel(s string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func legacyEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.ConsoleSeparator = " | "
	return cfg
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}
