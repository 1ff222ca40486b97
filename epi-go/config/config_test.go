package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) (string, func()) {
	dir, err := ioutil.TempDir("", "config")
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path, func() { os.RemoveAll(dir) }
}

func setenv(t *testing.T, name, value string) func() {
	old, found := os.LookupEnv(name)
	require.NoError(t, os.Setenv(name, value))
	return func() {
		if found {
			os.Setenv(name, old)
		} else {
			os.Unsetenv(name)
		}
	}
}

func TestDefaults(t *testing.T) {
	h, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, h.NFold)
	assert.Equal(t, 3000, h.LayerSize)
	assert.Equal(t, 1, h.NbLayer)
	assert.True(t, h.Oversample)
	assert.True(t, h.Normalize)
}

func TestLoadYAML(t *testing.T) {
	path, cleanup := writeTemp(t, "hparams.yaml", `
category: harmonized_sample_ontology_intermediate
n_fold: 5
labels: [a, b]
oversample: false
normalize: false
`)
	defer cleanup()

	h, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "harmonized_sample_ontology_intermediate", h.Category)
	assert.Equal(t, 5, h.NFold)
	assert.Equal(t, []string{"a", "b"}, h.Labels)
	assert.False(t, h.Oversample)
	assert.False(t, h.Normalize)
	assert.Equal(t, 10, h.MinClassSize)
}

func TestLoadJSON(t *testing.T) {
	path, cleanup := writeTemp(t, "hparams.json", `{"n_fold": 3, "test_ratio": 0.1, "batch_size": 16}`)
	defer cleanup()

	h, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, h.NFold)
	assert.Equal(t, 0.1, h.TestRatio)
	assert.Equal(t, 16, h.BatchSize)
}

func TestEnvOverrides(t *testing.T) {
	defer setenv(t, "MIN_CLASS_SIZE", "3")()
	defer setenv(t, "LAYER_SIZE", "100")()
	defer setenv(t, "NB_LAYER", "2")()

	h, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, h.MinClassSize)
	assert.Equal(t, 100, h.LayerSize)
	assert.Equal(t, 2, h.NbLayer)
}

func TestInvalid(t *testing.T) {
	defer setenv(t, "NB_LAYER", "two")()
	_, err := Load("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindConfig))
}

func TestValidate(t *testing.T) {
	h := Defaults()
	h.NFold = 1
	assert.Error(t, h.Validate())

	h = Defaults()
	h.TestRatio = 1
	assert.Error(t, h.Validate())

	h = Defaults()
	h.LearningRate = 0
	assert.Error(t, h.Validate())

	h = Defaults()
	h.Category = ""
	assert.Error(t, h.Validate())

	assert.NoError(t, Defaults().Validate())
}
