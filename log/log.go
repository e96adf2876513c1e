/*
Package log provides module scoped loggers built on zerolog (https://github.com/rs/zerolog).

Loggers are configured from a toml file. Every field is optional:

 # default level for all modules: debug/info/warn/error/fatal/panic
 level = "info"

 # output formatter: console, console_no_color, json
 formatter = "console"

 # print source file and line
 caller = false

 # timestamp layout, see time/format.go
 timefieldformat = "15:04:05"

 # stdout, stderr or a file path
 out = "stderr"

 # per module overrides, only level and out are honoured
 [deployer]
 level = "debug"

 [db]
 out = "/var/log/eosdeploy-db.log"

The file is looked up as eosdeploy-log.toml in the working directory, or at the path
given by the EOSDEPLOY_LOGCONFIG environment variable.
*/
package log

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	colorable "github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	confFilePathKey     = "LOGCONFIG"
	confEnvPrefix       = "EOSDEPLOY"
	defaultConfFileName = "eosdeploy-log"
)

var (
	initLock   sync.Mutex
	initDone   = false
	baseLogger = zerolog.New(os.Stderr)
	baseLevel  = zerolog.InfoLevel
	baseOut    io.Writer
	viperConf  = viper.New()
)

// Logger is a zerolog logger bound to a module name.
type Logger struct {
	*zerolog.Logger
	module string
	level  zerolog.Level
}

type settings struct {
	level     string
	formatter string
	caller    bool
	timeField string
	out       string
}

func readSettings(v *viper.Viper) settings {
	return settings{
		level:     v.GetString("level"),
		formatter: v.GetString("formatter"),
		caller:    v.GetBool("caller"),
		timeField: v.GetString("timefieldformat"),
		out:       v.GetString("out"),
	}
}

func loadConfigFile() {
	viperConf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperConf.SetEnvPrefix(confEnvPrefix)
	viperConf.AutomaticEnv()

	viperConf.SetConfigType("toml")
	viperConf.SetConfigName(defaultConfFileName)
	viperConf.AddConfigPath(".")

	if path := viperConf.GetString(confFilePathKey); path != "" {
		viperConf.SetConfigFile(path)
	}

	if err := viperConf.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			baseLogger.Error().Err(err).Msg("failed to read log config")
		}
	}
}

func parseLevel(level string, fallback zerolog.Level) zerolog.Level {
	if level == "" {
		return fallback
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		baseLogger.Warn().Err(err).Str("level", level).Msg("invalid log level, using fallback")
		return fallback
	}
	return parsed
}

func formatWriter(formatter string, out io.Writer) io.Writer {
	switch strings.ToLower(formatter) {
	case "", "json":
		return out
	case "console":
		if f, ok := out.(*os.File); ok {
			out = colorable.NewColorable(f)
		}
		return zerolog.ConsoleWriter{Out: out, TimeFormat: zerolog.TimeFieldFormat}
	case "console_no_color":
		return zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: zerolog.TimeFieldFormat}
	default:
		baseLogger.Warn().Str("formatter", formatter).Msg("unknown formatter, only console/console_no_color/json are allowed")
		return out
	}
}

func initLog() {
	s := readSettings(viperConf)
	if s.timeField != "" {
		zerolog.TimeFieldFormat = s.timeField
	}

	var out io.Writer = os.Stderr
	if baseOut != nil {
		out = baseOut
	} else if s.out != "" {
		if o, err := getOutput(s.out); err == nil {
			out = o
		} else {
			baseLogger.Warn().Err(err).Str("out", s.out).Msg("failed to open log output, using stderr")
		}
	}

	baseLogger = zerolog.New(formatWriter(s.formatter, out))
	if s.caller {
		baseLogger = baseLogger.With().Caller().Logger()
	}

	baseLevel = parseLevel(s.level, zerolog.InfoLevel)
	baseLogger = baseLogger.With().Timestamp().Logger().Level(baseLevel)
}

func ensureInit(withFile bool) {
	if initDone {
		return
	}
	if withFile {
		loadConfigFile()
	}
	initLog()
	initDone = true
}

// SetOutput redirects every logger created afterwards to w. Loggers already
// handed out keep their writer.
func SetOutput(w io.Writer) {
	initLock.Lock()
	defer initLock.Unlock()
	baseOut = w
	initDone = false
}

// NewLogger returns a logger tagged with module. Module level and output
// overrides are read from the sub table of the same name.
func NewLogger(module string) *Logger {
	initLock.Lock()
	defer initLock.Unlock()
	ensureInit(true)

	zLogger := baseLogger.With().Str("module", module).Logger()
	level := baseLevel

	if sub := viperConf.Sub(module); sub != nil {
		if name := sub.GetString("out"); name != "" && baseOut == nil {
			if out, err := getOutput(name); err == nil {
				zLogger = zLogger.Output(out)
			} else {
				baseLogger.Warn().Err(err).Str("out", name).Str("module", module).Msg("failed to open module log output")
			}
		}
		if name := sub.GetString("level"); name != "" {
			level = parseLevel(name, zerolog.InfoLevel)
			zLogger = zLogger.Level(level)
		}
	}

	return &Logger{Logger: &zLogger, module: module, level: level}
}

// Default returns the base logger without a module tag.
func Default() *Logger {
	initLock.Lock()
	defer initLock.Unlock()
	ensureInit(false)

	l := baseLogger
	return &Logger{Logger: &l, level: baseLevel}
}

var errEmptyName = errors.New("empty output name")

// getOutput resolves stdout, stderr or a file path opened for appending.
func getOutput(name string) (*os.File, error) {
	switch name {
	case "":
		return nil, errEmptyName
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND|os.O_SYNC, 0644)
	}
}

// IsDebugEnabled reports whether debug lines would be written.
func (l *Logger) IsDebugEnabled() bool {
	return l.level <= zerolog.DebugLevel
}

// Level returns the logger level name.
func (l *Logger) Level() string {
	return l.level.String()
}

// Module returns the module tag.
func (l *Logger) Module() string {
	return l.module
}
