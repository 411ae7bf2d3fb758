package common

import (
	"log"
	"os"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// log level used by the internal interfaces
type LOG_LEVEL int

const (
	LEVEL_DEBUG LOG_LEVEL = iota
	LEVEL_INFO
	LEVEL_WARN
	LEVEL_ERROR
)

var (
	LOG_LEVEL_Name = map[LOG_LEVEL]string{
		0: "DEBUG",
		1: "INFO",
		2: "WARN",
		3: "ERROR",
	}
	LOG_LEVEL_Value = map[string]LOG_LEVEL{
		"DEBUG": 0,
		"INFO":  1,
		"WARN":  2,
		"ERROR": 3,
	}
)

// preset rotation modes
const (
	LOG_MODE_DEV  = "DEV"
	LOG_MODE_PROD = "PROD"
)

type LogConfig struct {
	BriefMode          string
	ModuleSpecialLevel map[string]LOG_LEVEL // per-module level override

	LogPath        string // empty: console only
	LogLevel       LOG_LEVEL
	RotationMaxAge int // days a rotated file is kept
	RotationTime   int // hours between rotations
	RotationSize   int // MB before a rotation
	ShowLine       bool
	LogInConsole   bool
}

// DefaultLogConfig is used when no configuration was set.
func DefaultLogConfig(isDEV bool) *LogConfig {
	if isDEV {
		return defaultBriefLogConfigForDEV()
	}

	return defaultBriefLogConfigForPROD()
}

func defaultBriefLogConfigForDEV() *LogConfig {
	return &LogConfig{
		LogPath:        "./npr.dev.log",
		LogLevel:       LEVEL_DEBUG,
		RotationMaxAge: 1,
		RotationTime:   1,
		RotationSize:   10,
		ShowLine:       true,
		LogInConsole:   true,
	}
}

func defaultBriefLogConfigForPROD() *LogConfig {
	return &LogConfig{
		LogPath:        "./npr.prod.log",
		LogLevel:       LEVEL_INFO,
		RotationMaxAge: 1,
		RotationTime:   24,
		RotationSize:   30,
		ShowLine:       true,
		LogInConsole:   false,
	}
}

func adjustLogConfig(name string, lc *LogConfig) *LogConfig {
	ok := true
	if lc.BriefMode != "" {
		if lc.BriefMode == LOG_MODE_PROD {
			ok = false
		}
		return DefaultLogConfig(ok)
	}

	newC := &LogConfig{}
	newC.LogLevel, ok = lc.ModuleSpecialLevel[name]
	if !ok {
		newC.LogLevel = lc.LogLevel
	}
	newC.LogPath = lc.LogPath
	newC.LogInConsole = lc.LogInConsole
	newC.ShowLine = lc.ShowLine
	newC.RotationSize = lc.RotationSize
	newC.RotationTime = lc.RotationTime
	newC.RotationMaxAge = lc.RotationMaxAge

	return newC
}

func zapLevel(l LOG_LEVEL) zapcore.Level {
	switch l {
	case LEVEL_DEBUG:
		return zap.DebugLevel
	case LEVEL_INFO:
		return zap.InfoLevel
	case LEVEL_WARN:
		return zap.WarnLevel
	case LEVEL_ERROR:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func newWriteSyncer(lcc *LogConfig) zapcore.WriteSyncer {
	var syncers []zapcore.WriteSyncer
	if lcc.LogInConsole || lcc.LogPath == "" {
		syncers = append(syncers, zapcore.AddSync(os.Stdout))
	}
	if lcc.LogPath != "" {
		fileName := lcc.LogPath + ".%Y%m%d%H"
		rotationWriter, err := rotatelogs.New(
			fileName,
			rotatelogs.WithRotationTime(time.Duration(lcc.RotationTime)*time.Hour),
			rotatelogs.WithRotationSize(int64(lcc.RotationSize*1024*1024)),
			rotatelogs.WithMaxAge(time.Hour*24*time.Duration(lcc.RotationMaxAge)),
		)
		if err != nil {
			log.Fatalf("new rotation log failed, %s", err)
		}
		syncers = append(syncers, zapcore.AddSync(rotationWriter))
	}
	return zapcore.NewMultiWriteSyncer(syncers...)
}

func NewSugaredLogger(name string, lc *LogConfig) *zap.SugaredLogger {
	lcc := adjustLogConfig(name, lc)
	level := zapLevel(lcc.LogLevel)
	priorityLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= level
	})

	syncer := newWriteSyncer(lcc)

	customLevelEncoder := func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + level.CapitalString() + "]")
	}
	customTimeEncoder := func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
	}
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "line",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	encoder := zapcore.NewConsoleEncoder(encoderConfig)
	core := zapcore.NewCore(encoder, syncer, priorityLevel)
	logger := zap.New(core).Named(name)
	defer logger.Sync()

	var opts []zap.Option
	if lcc.ShowLine {
		opts = append(opts, zap.AddCaller())
	}
	// loggers are wrapped by NPRLogger, skip that frame
	opts = append(opts, zap.AddCallerSkip(1))
	logger = logger.WithOptions(opts...)

	return logger.Sugar()
}

const (
	MODULE_KNN     = "[KNN]"
	MODULE_SVM     = "[SVM]"
	MODULE_ANN     = "[ANN]"
	MODULE_BOOST   = "[AdaBoost]"
	MODULE_DATASET = "[Dataset]"
	MODULE_RUNNER  = "[Runner]"
)

type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

type NPRLogger struct {
	zlog  *zap.SugaredLogger
	name  string
	mutex sync.RWMutex
}

func (l *NPRLogger) Logger() *zap.SugaredLogger {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.zlog
}

func (l *NPRLogger) Debug(args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Debug(args...)
}

func (l *NPRLogger) Debugf(format string, args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Debugf(format, args...)
}

func (l *NPRLogger) Error(args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Error(args...)
}

func (l *NPRLogger) Errorf(format string, args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Errorf(format, args...)
}

func (l *NPRLogger) Info(args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Info(args...)
}

func (l *NPRLogger) Infof(format string, args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Infof(format, args...)
}

func (l *NPRLogger) Warn(args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Warn(args...)
}

func (l *NPRLogger) Warnf(format string, args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Warnf(format, args...)
}

func (l *NPRLogger) SetLogger(logger *zap.SugaredLogger) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.zlog = logger
}

var nopLogger = &NPRLogger{name: "nop", zlog: zap.NewNop().Sugar()}

// NopLogger discards everything. Classifiers fall back to it when no observer is set.
func NopLogger() Logger {
	return nopLogger
}

var (
	nprLoggersMap = make(map[string]*NPRLogger)
	loggerMutex   sync.RWMutex
	nprLogConfig  *LogConfig
)

func GetLogger(name string) *NPRLogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if logger, ok := nprLoggersMap[name]; ok {
		return logger
	}

	if nprLogConfig == nil {
		nprLogConfig = DefaultLogConfig(true)
	}

	logger := &NPRLogger{
		name: name,
		zlog: NewSugaredLogger(name, nprLogConfig),
	}
	nprLoggersMap[name] = logger

	return logger
}

// SetLogConfig applies config to loggers already handed out and to later ones.
func SetLogConfig(config *LogConfig) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	nprLogConfig = config
	for _, logger := range nprLoggersMap {
		logger.SetLogger(NewSugaredLogger(logger.name, nprLogConfig))
	}
}
