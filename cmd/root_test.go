package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databirdlab/densitycal/internal/buildinfo"
	"github.com/databirdlab/densitycal/internal/conf"
)

const dataset = `
arus:
  - ref: x
    name: ARU X
    lat: 10.0
    lon: 20.0
surveys:
  - name: Acoustic A
    type: acoustic
    date: 2024-01-01
    assets:
      - file: a1.wav
        aru: x
        acoustic:
          - {class: Tui, count: 6, end: 30}
      - file: a2.wav
        aru: x
        acoustic:
          - {class: Bellbird, count: 4, end: 45}
  - name: Drone D
    type: drone
    date: 2024-01-05
    assets:
      - file: d1.jpg
        bounds: {lat_tl: 10.001, lon_tl: 20.0, lat_br: 10.0, lon_br: 20.001}
        visual:
          - {class: kereru, count: 5}
`

// testEnv writes a config pointing at a fresh database and a dataset file.
func testEnv(t *testing.T) (configPath, datasetPath string) {
	t.Helper()
	dir := t.TempDir()
	configPath = filepath.Join(dir, "config.yaml")
	datasetPath = filepath.Join(dir, "dataset.yaml")

	config := "database:\n  sqlite:\n    path: " + filepath.Join(dir, "densitycal.db") + "\n" +
		"logging:\n  console:\n    enabled: false\n"
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o600))
	require.NoError(t, os.WriteFile(datasetPath, []byte(dataset), 0o600))
	return configPath, datasetPath
}

// execute runs one CLI invocation with fresh global viper state.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	root := RootCommand(&conf.Settings{}, buildinfo.NewContext("test", ""))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestImportRebuildAndList(t *testing.T) {
	configPath, datasetPath := testEnv(t)

	out, err := execute(t, "--config", configPath, "-o", "json", "import", datasetPath, "--rebuild")
	require.NoError(t, err)

	var imported struct {
		Imported struct {
			Surveys            int `json:"surveys"`
			AcousticDetections int `json:"acoustic_detections"`
		} `json:"imported"`
		Rebuild struct {
			CreatedWindows int `json:"created_windows"`
		} `json:"rebuild"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &imported))
	assert.Equal(t, 2, imported.Imported.Surveys)
	assert.Equal(t, 10, imported.Imported.AcousticDetections)
	assert.Equal(t, 1, imported.Rebuild.CreatedWindows)

	out, err = execute(t, "--config", configPath, "--output", "json", "windows")
	require.NoError(t, err)
	var windows []struct {
		DaysApart         int `json:"days_apart"`
		AcousticCallCount int `json:"acoustic_call_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &windows))
	require.Len(t, windows, 1)
	assert.Equal(t, 4, windows[0].DaysApart)
	assert.Equal(t, 10, windows[0].AcousticCallCount)

	out, err = execute(t, "--config", configPath, "windows", "--min-calls", "11")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestWindowsListsSilentWindowsByDefault(t *testing.T) {
	configPath, _ := testEnv(t)
	silent := `
arus:
  - {ref: x, lat: 10.0, lon: 20.0}
surveys:
  - name: Acoustic A
    type: acoustic
    date: 2024-01-01
    assets:
      - {file: a1.wav, aru: x}
  - name: Drone D
    type: drone
    date: 2024-01-05
    assets:
      - file: d1.jpg
        bounds: {lat_tl: 10.001, lon_tl: 20.0, lat_br: 10.0, lon_br: 20.001}
`
	datasetPath := filepath.Join(t.TempDir(), "silent.yaml")
	require.NoError(t, os.WriteFile(datasetPath, []byte(silent), 0o600))

	_, err := execute(t, "--config", configPath, "import", datasetPath)
	require.NoError(t, err)
	_, err = execute(t, "--config", configPath, "rebuild", "--min-acoustic-calls", "0")
	require.NoError(t, err)

	out, err := execute(t, "--config", configPath, "-o", "json", "windows")
	require.NoError(t, err)
	var windows []struct {
		AcousticCallCount int `json:"acoustic_call_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &windows))
	require.Len(t, windows, 1)
	assert.Zero(t, windows[0].AcousticCallCount)

	out, err = execute(t, "--config", configPath, "windows", "--min-calls", "1")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestRebuildFlagsOverrideConfig(t *testing.T) {
	configPath, datasetPath := testEnv(t)
	_, err := execute(t, "--config", configPath, "import", datasetPath)
	require.NoError(t, err)

	out, err := execute(t, "--config", configPath, "-o", "json", "rebuild", "--max-days-apart", "3")
	require.NoError(t, err)

	var result struct {
		CreatedWindows int `json:"created_windows"`
		MaxDaysApart   int `json:"max_days_apart"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 3, result.MaxDaysApart)
	assert.Zero(t, result.CreatedWindows)
}

func TestCurveWithoutWindows(t *testing.T) {
	configPath, _ := testEnv(t)

	out, err := execute(t, "--config", configPath, "curve")
	require.NoError(t, err)
	assert.Contains(t, out, "No calibration windows available. Rebuild windows first.")
}

func TestPredictRequiresIDs(t *testing.T) {
	configPath, _ := testEnv(t)

	_, err := execute(t, "--config", configPath, "predict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestPredictRejectsUnknownModel(t *testing.T) {
	configPath, _ := testEnv(t)

	_, err := execute(t, "--config", configPath, "predict", "--survey", "1", "--aru", "1", "--model", "cubic")
	require.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := execute(t, "--config", path, "config", "init", path)
	require.Error(t, err, "the config file does not exist yet")
	assert.Empty(t, out)

	out, err = execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	out, err = execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "maxdaysapart: 14")
}

func TestConfigSaveKeepsOverrides(t *testing.T) {
	configPath, _ := testEnv(t)
	saved := filepath.Join(t.TempDir(), "saved.yaml")

	_, err := execute(t, "--config", configPath, "--debug", "config", "save", saved)
	require.NoError(t, err)

	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug: true")
	assert.Contains(t, string(data), "maxdaysapart: 14")

	out, err := execute(t, "--config", saved, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "debug: true")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test (built unknown)")
}
