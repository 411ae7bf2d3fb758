package config

import (
	"os"
	"path/filepath"
	"testing"

	"npr/common"
	"npr/core/ml"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
log:
  level: warn
  path: ""
  modules:
    svm: debug
    Dataset: error
problem:
  type: xor
  seed: 4
  train_count: 80
knn:
  k: 3
svm:
  kernel: linear
  c: 2.5
ann:
  hidden: 12
boost:
  rounds: 40
`

func writeConfig(t *testing.T, dir, content string) string {
	file := filepath.Join(dir, configName+".yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	return file
}

func commandWithConfigFlag(value string) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", value, "")
	return cmd
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "", c.Path)
	assert.Equal(t, "INFO", c.Log.Level)
	assert.Equal(t, "chessboard", c.Problem.Type)
	assert.Equal(t, int64(1), c.Problem.Seed)
	assert.Equal(t, 7, c.KNN.K)
	assert.Equal(t, "rbf", c.SVM.Kernel)
	assert.Equal(t, 0.001, c.SVM.Gamma)
	assert.Equal(t, 1000.0, c.SVM.C)
	assert.Equal(t, ml.DefaultSVMMaxIterations, c.SVM.MaxIterations)
	assert.Equal(t, ml.DefaultANNEta, c.ANN.Eta)
	assert.Equal(t, ml.DefaultANNMaximumIteration, c.ANN.MaximumIteration)
	assert.Equal(t, 1000, c.Boost.Rounds)
}

func TestLoadFile(t *testing.T) {
	file := writeConfig(t, t.TempDir(), sampleConfig)
	c, err := LoadFile(file)
	require.NoError(t, err)

	assert.Equal(t, file, c.Path)
	assert.Equal(t, "", c.Log.Path)
	assert.Equal(t, "xor", c.Problem.Type)
	assert.Equal(t, int64(4), c.Problem.Seed)
	assert.Equal(t, 80, c.Problem.TrainCount)
	assert.Equal(t, 3, c.KNN.K)
	assert.Equal(t, "linear", c.SVM.Kernel)
	assert.Equal(t, 2.5, c.SVM.C)
	assert.Equal(t, ml.DefaultSVMTolerance, c.SVM.Tolerance)
	assert.Equal(t, 12, c.ANN.Hidden)
	assert.Equal(t, 40, c.Boost.Rounds)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("NPR_KNN_K", "11")
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 11, c.KNN.K)
}

func TestInitLocalConfig(t *testing.T) {
	dir := t.TempDir()
	file := writeConfig(t, dir, sampleConfig)

	c, err := InitLocalConfig(commandWithConfigFlag(file))
	require.NoError(t, err)
	assert.Equal(t, 3, c.KNN.K)

	t.Setenv(cfgPathEnv, dir)
	c, err = InitLocalConfig(commandWithConfigFlag(""))
	require.NoError(t, err)
	assert.Equal(t, "xor", c.Problem.Type)

	t.Setenv(cfgPathEnv, t.TempDir())
	c, err = InitLocalConfig(commandWithConfigFlag(""))
	require.NoError(t, err)
	assert.Equal(t, "", c.Path)
	assert.Equal(t, 7, c.KNN.K)

	_, err = InitLocalConfig(&cobra.Command{Use: "bare"})
	assert.Error(t, err)
}

func TestLogConfig(t *testing.T) {
	c, err := LoadFile(writeConfig(t, t.TempDir(), sampleConfig))
	require.NoError(t, err)

	lc, err := c.LogConfig()
	require.NoError(t, err)
	assert.Equal(t, common.LEVEL_WARN, lc.LogLevel)
	assert.Equal(t, "", lc.LogPath)
	assert.Equal(t, map[string]common.LOG_LEVEL{
		common.MODULE_SVM:     common.LEVEL_DEBUG,
		common.MODULE_DATASET: common.LEVEL_ERROR,
	}, lc.ModuleSpecialLevel)
}

func TestLogConfig_Errors(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	bad := *c
	bad.Log.Level = "loud"
	_, err = bad.LogConfig()
	assert.Error(t, err)

	bad = *c
	bad.Log.Mode = "test"
	_, err = bad.LogConfig()
	assert.Error(t, err)

	bad = *c
	bad.Log.Modules = map[string]string{"net": "debug"}
	_, err = bad.LogConfig()
	assert.Error(t, err)

	bad = *c
	bad.Log.Modules = map[string]string{"knn": "chatty"}
	_, err = bad.LogConfig()
	assert.Error(t, err)
}
