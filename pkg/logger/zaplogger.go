package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ZapLogger struct {
	log *zap.SugaredLogger
}

var zapLogger *ZapLogger

// RotateOption configures the lumberjack writer used by NewFileLogger.
type RotateOption struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func NewLogger(config zap.Config) (*ZapLogger, error) {
	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	defer logger.Sync() //nolint
	return install(logger), nil
}

func NewFileLogger(config zap.Config, opt RotateOption) (*ZapLogger, error) {
	if opt.MaxSizeMB == 0 {
		opt.MaxSizeMB = 100
	}
	if opt.MaxBackups == 0 {
		opt.MaxBackups = 5
	}
	if opt.MaxAgeDays == 0 {
		opt.MaxAgeDays = 28
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   opt.Filename,
		MaxSize:    opt.MaxSizeMB,
		MaxBackups: opt.MaxBackups,
		MaxAge:     opt.MaxAgeDays,
		Compress:   opt.Compress,
	})

	var enc zapcore.Encoder
	if config.Encoding == "json" {
		enc = zapcore.NewJSONEncoder(config.EncoderConfig)
	} else {
		enc = zapcore.NewConsoleEncoder(config.EncoderConfig)
	}
	core := zapcore.NewCore(enc, w, config.Level)
	return install(zap.New(core, zap.AddCaller())), nil
}

func install(l *zap.Logger) *ZapLogger {
	l = l.WithOptions(zap.AddCallerSkip(2))
	zapLogger = &ZapLogger{log: l.Sugar()}
	return zapLogger
}

func GetLogger() *ZapLogger {
	if zapLogger == nil {
		panic("logger not initialized")
	}
	return zapLogger
}

func (l *ZapLogger) With(values ...any) *ZapLogger {
	return &ZapLogger{log: l.log.With(values...)}
}

func (l *ZapLogger) Panic(message string, values ...any) {
	l.log.Panicw(message, values...)
}

func (l *ZapLogger) Fatal(error error, values ...any) {
	l.log.Fatalw(error.Error(), values...)
}

func (l *ZapLogger) Info(message string, values ...any) {
	l.log.Infow(message, values...)
}

func (l *ZapLogger) Warn(message string, values ...any) {
	l.log.Warnw(message, values...)
}

func (l *ZapLogger) Error(message string, values ...any) {
	l.log.Errorw(message, values...)
}

func (l *ZapLogger) Debug(message string, values ...any) {
	l.log.Debugw(message, values...)
}

func (l *ZapLogger) Printf(format string, args ...interface{}) {
	l.log.Infof(format, args...)
}
