// internal/logger/logger.go
package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	Debug bool
	// FilePath enables a rotating JSON log file next to the console output.
	FilePath  string
	MaxSizeMB int
}

var levelStyles = map[zapcore.Level]lipgloss.Style{
	zapcore.DebugLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	zapcore.InfoLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	zapcore.WarnLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	zapcore.ErrorLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	zapcore.FatalLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
}

// PrettyEncoder creates the console encoder used for terminal output.
func PrettyEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		TimeKey:          "time",
		NameKey:          "logger",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      levelEncoder,
		EncodeTime:       timeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	})
}

// levelEncoder formats log levels with colors
func levelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	label := fmt.Sprintf("[%s]", level.CapitalString())
	if style, ok := levelStyles[level]; ok {
		label = style.Render(label)
	}
	enc.AppendString(label)
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05.000"))
}

// New creates the application logger. The returned function flushes and closes the outputs.
func New(opts Options) (*zap.Logger, func() error, error) {
	return newLogger(opts, zapcore.Lock(os.Stdout))
}

func newLogger(opts Options, console zapcore.WriteSyncer) (*zap.Logger, func() error, error) {
	level := zap.InfoLevel
	if opts.Debug {
		level = zap.DebugLevel
	}

	cores := []zapcore.Core{zapcore.NewCore(PrettyEncoder(), console, level)}

	var file *lumberjack.Logger
	if opts.FilePath != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		file = &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    maxSize,
			MaxBackups: 3,
			Compress:   true,
		}
		// the file always gets debug entries
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(file),
			zap.DebugLevel,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	closer := func() error {
		_ = logger.Sync()
		if file != nil {
			if err := file.Close(); err != nil {
				return fmt.Errorf("failed to close log file: %w", err)
			}
		}
		return nil
	}
	return logger, closer, nil
}
