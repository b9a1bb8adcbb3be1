package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"vuec.dev/pkg/vuec/internal/adapter"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "vuec"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName     = "output"
	noCacheFlagName    = "no-cache"
	includeFlagName    = "include"
	excludeFlagName    = "exclude"
	compilerFlagName   = "compiler"
	productionFlagName = "production"
	ssrFlagName        = "ssr"
	sourcemapFlagName  = "sourcemap"
	vaporFlagName      = "vapor"
	parallelFlagName   = "parallel"
	verboseFlagName    = "verbose"
	logFileFlagName    = "log-file"

	compilerConfigKey    = "compiler.wasm"
	includeConfigKey     = "filter.include"
	excludeConfigKey     = "filter.exclude"
	productionConfigKey  = "compile.production"
	ssrConfigKey         = "compile.ssr"
	sourcemapConfigKey   = "compile.sourcemap"
	vaporConfigKey       = "compile.vapor"
	runParallelConfigKey = "run.parallel"

	buildOutdirKey   = "build.outdir"
	buildExternalKey = "build.external"
	buildMinifyKey   = "build.minify"
	serveHostKey     = "serve.host"
	serveServedirKey = "serve.servedir"
	watchDebounceKey = "watch.debounce"

	defaultOutputDir   = "dist"
	defaultNoCache     = false
	defaultRunParallel = 4
	defaultBuildOutdir = "dist"
	defaultBuildMinify = true
	defaultServeHost   = "127.0.0.1"

	envPrefix = "VUEC"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".vuec.log"
	defaultLogLevel      = "info"
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(compilerConfigKey, adapter.DefaultCompilerPath)
	viper.SetDefault(outputFlagName, defaultOutputDir)
	viper.SetDefault(noCacheFlagName, defaultNoCache)
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(includeConfigKey, []string{})
	viper.SetDefault(excludeConfigKey, []string{})
	viper.SetDefault(ssrConfigKey, false)
	viper.SetDefault(vaporConfigKey, false)

	// compile.production and compile.sourcemap have no default: unset means
	// "follow the host".

	viper.SetDefault(buildOutdirKey, defaultBuildOutdir)
	viper.SetDefault(buildExternalKey, []string{})
	viper.SetDefault(buildMinifyKey, defaultBuildMinify)
	viper.SetDefault(serveHostKey, defaultServeHost)
	viper.SetDefault(serveServedirKey, "")
	viper.SetDefault(watchDebounceKey, adapter.DefaultDebounce.String())

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		slog.Warn("Ignoring unreadable config file", "file", configFileName, "error", err)
	}
}

// optionalBool returns nil when key was never set by a flag, env or config.
func optionalBool(key string) *bool {
	if !viper.IsSet(key) {
		return nil
	}

	value := viper.GetBool(key)

	return &value
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels are accepted too (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger installs the global slog logger writing to a rotated file.
//
// It logs at log.level, or Debug when verbose is true.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	logLevel := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
