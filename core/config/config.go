package config

import (
	"os"
	"strings"

	"npr/common"
	"npr/core/ml"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configName = "npr_config"
	envPrefix  = "npr"
	cfgPathEnv = "NPR_CFG_PATH"
)

type LogSection struct {
	Mode           string            `mapstructure:"mode"`
	Level          string            `mapstructure:"level"`
	Modules        map[string]string `mapstructure:"modules"`
	Path           string            `mapstructure:"path"`
	RotationMaxAge int               `mapstructure:"rotation_max_age"`
	RotationTime   int               `mapstructure:"rotation_time"`
	RotationSize   int               `mapstructure:"rotation_size"`
	ShowLine       bool              `mapstructure:"show_line"`
	Console        bool              `mapstructure:"console"`
}

type ProblemSection struct {
	Type            string `mapstructure:"type"`
	TrainCount      int    `mapstructure:"train_count"`
	ValidationCount int    `mapstructure:"validation_count"`
	Seed            int64  `mapstructure:"seed"`
}

type KNNSection struct {
	K int `mapstructure:"k"`
}

type SVMSection struct {
	Kernel        string  `mapstructure:"kernel"`
	Gamma         float64 `mapstructure:"gamma"`
	Coef0         float64 `mapstructure:"coef0"`
	Degree        int     `mapstructure:"degree"`
	C             float64 `mapstructure:"c"`
	Tolerance     float64 `mapstructure:"tolerance"`
	Epsilon       float64 `mapstructure:"epsilon"`
	MaxIterations int     `mapstructure:"max_iterations"`
}

type ANNSection struct {
	Hidden           int     `mapstructure:"hidden"`
	MaximumIteration int     `mapstructure:"maximum_iteration"`
	Eta              float64 `mapstructure:"eta"`
	Epsilon          float64 `mapstructure:"epsilon"`
	LogInterval      int     `mapstructure:"log_interval"`
	Seed             int64   `mapstructure:"seed"`
}

type BoostSection struct {
	Rounds int `mapstructure:"rounds"`
}

type LocalConfig struct {
	// Path is the file the configuration was read from, empty when only defaults apply.
	Path string `mapstructure:"-"`

	Log     LogSection     `mapstructure:"log"`
	Problem ProblemSection `mapstructure:"problem"`
	KNN     KNNSection     `mapstructure:"knn"`
	SVM     SVMSection     `mapstructure:"svm"`
	ANN     ANNSection     `mapstructure:"ann"`
	Boost   BoostSection   `mapstructure:"boost"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.mode", "")
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.path", "./npr.log")
	v.SetDefault("log.rotation_max_age", 1)
	v.SetDefault("log.rotation_time", 24)
	v.SetDefault("log.rotation_size", 30)
	v.SetDefault("log.show_line", true)
	v.SetDefault("log.console", true)

	v.SetDefault("problem.type", "chessboard")
	v.SetDefault("problem.train_count", 0)
	v.SetDefault("problem.validation_count", 0)
	v.SetDefault("problem.seed", 1)

	v.SetDefault("knn.k", 7)

	v.SetDefault("svm.kernel", "rbf")
	v.SetDefault("svm.gamma", 0.001)
	v.SetDefault("svm.coef0", 0.0)
	v.SetDefault("svm.degree", 3)
	// the RBF(0.001) chessboard needs a near hard margin
	v.SetDefault("svm.c", 1000.0)
	v.SetDefault("svm.tolerance", ml.DefaultSVMTolerance)
	v.SetDefault("svm.epsilon", ml.DefaultSVMEpsilon)
	v.SetDefault("svm.max_iterations", ml.DefaultSVMMaxIterations)

	v.SetDefault("ann.hidden", 0)
	v.SetDefault("ann.maximum_iteration", ml.DefaultANNMaximumIteration)
	v.SetDefault("ann.eta", ml.DefaultANNEta)
	v.SetDefault("ann.epsilon", ml.DefaultANNEpsilon)
	v.SetDefault("ann.log_interval", ml.DefaultANNLogInterval)
	v.SetDefault("ann.seed", ml.DefaultANNSeed)

	v.SetDefault("boost.rounds", 1000)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// InitLocalConfig reads the file named by the --config flag, or npr_config.yaml
// under $NPR_CFG_PATH (default "."). A missing search-path file leaves the defaults.
func InitLocalConfig(cmd *cobra.Command) (*LocalConfig, error) {
	flag := cmd.Flags().Lookup("config")
	if flag == nil {
		return nil, errors.Errorf("command %s has no config flag", cmd.Name())
	}
	if file := flag.Value.String(); file != "" {
		return LoadFile(file)
	}

	altPath := os.Getenv(cfgPathEnv)
	if altPath == "" {
		altPath = "."
	}
	v := newViper()
	v.AddConfigPath(altPath)
	v.SetConfigName(configName)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}
	return unmarshal(v)
}

// LoadFile reads one explicit configuration file.
func LoadFile(file string) (*LocalConfig, error) {
	v := newViper()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config %s", file)
	}
	return unmarshal(v)
}

// Default returns the configuration with nothing but defaults and environment overrides.
func Default() (*LocalConfig, error) {
	return unmarshal(newViper())
}

func unmarshal(v *viper.Viper) (*LocalConfig, error) {
	lc := &LocalConfig{}
	if err := v.Unmarshal(lc); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	lc.Path = v.ConfigFileUsed()
	return lc, nil
}

func parseLevel(name string) (common.LOG_LEVEL, error) {
	level, ok := common.LOG_LEVEL_Value[strings.ToUpper(name)]
	if !ok {
		return 0, errors.Errorf("unknown log level %q", name)
	}
	return level, nil
}

func (c *LocalConfig) LogConfig() (*common.LogConfig, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	lc := &common.LogConfig{
		BriefMode:          strings.ToUpper(c.Log.Mode),
		ModuleSpecialLevel: make(map[string]common.LOG_LEVEL, len(c.Log.Modules)),
		LogPath:            c.Log.Path,
		LogLevel:           level,
		RotationMaxAge:     c.Log.RotationMaxAge,
		RotationTime:       c.Log.RotationTime,
		RotationSize:       c.Log.RotationSize,
		ShowLine:           c.Log.ShowLine,
		LogInConsole:       c.Log.Console,
	}
	if lc.BriefMode != "" && lc.BriefMode != common.LOG_MODE_DEV && lc.BriefMode != common.LOG_MODE_PROD {
		return nil, errors.Errorf("unknown log mode %q", c.Log.Mode)
	}
	for module, name := range c.Log.Modules {
		l, err := parseLevel(name)
		if err != nil {
			return nil, errors.Wrapf(err, "module %s", module)
		}
		key, ok := moduleLoggerName(module)
		if !ok {
			return nil, errors.Errorf("unknown log module %q", module)
		}
		lc.ModuleSpecialLevel[key] = l
	}
	return lc, nil
}

var knownModules = []string{
	common.MODULE_KNN,
	common.MODULE_SVM,
	common.MODULE_ANN,
	common.MODULE_BOOST,
	common.MODULE_DATASET,
	common.MODULE_RUNNER,
}

// moduleLoggerName maps a config key such as "svm" to the logger name "[SVM]".
// viper lowercases keys, so the match ignores case.
func moduleLoggerName(key string) (string, bool) {
	for _, m := range knownModules {
		if strings.EqualFold(strings.Trim(m, "[]"), key) {
			return m, true
		}
	}
	return "", false
}
