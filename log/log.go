package log

import (
	"os"

	"contract-admin/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process wide logger. It starts as a no-op logger so packages
// can log before Init is called (tests, CLI helpers).
var Logger = zap.NewNop()

// Init builds Logger from the log section: json lines to the rotated file and
// console lines to stdout.
func Init(conf config.LogConfig) error {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(conf.Level)); err != nil {
		return err
	}

	encoderConf := zap.NewProductionEncoderConfig()
	encoderConf.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConf), zapcore.AddSync(os.Stdout), level),
	}
	if conf.File != "" {
		writer := &lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    conf.MaxSize,
			MaxBackups: conf.MaxBackups,
			MaxAge:     conf.MaxAge,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConf), zapcore.AddSync(writer), level))
	}

	Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return nil
}

func Sync() {
	_ = Logger.Sync()
}
