package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	o := Default()

	assert.Equal(t, "robust", o.UseScaler)
	assert.Equal(t, "kbins", o.UseScalerTarget)
	assert.Equal(t, 40, o.CardinalityThreshold)
	assert.Equal(t, 400, o.CardinalityThresholdTarget)
	assert.Equal(t, 42, o.NTopics)
	assert.Equal(t, 7, o.NTopicsTarget)
	assert.Equal(t, 1, o.NGramMin)
	assert.Equal(t, 3, o.NGramMax)
	assert.Equal(t, 0.2, o.MaxDF)
	assert.Equal(t, 3, o.MinDF)
	assert.Equal(t, 0.35, o.Confidence)
	assert.Equal(t, 2.5, o.MinWords)
	assert.Equal(t, "auto", o.FeatureEngine)
	assert.Equal(t, 5, o.KeepNDecimals)
	require.NotNil(t, o.RemoveNodeColumn)
	assert.True(t, *o.RemoveNodeColumn)
	require.NotNil(t, o.Impute)
	assert.True(t, *o.Impute)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	f := false
	o := Options{
		UseScaler:        "minmax",
		NTopics:          10,
		RemoveNodeColumn: &f,
	}
	o.ApplyDefaults()

	assert.Equal(t, "minmax", o.UseScaler)
	assert.Equal(t, 10, o.NTopics)
	assert.False(t, *o.RemoveNodeColumn)
	assert.Equal(t, "kbins", o.UseScalerTarget)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "featurize.yaml")
	raw := []byte("use_scaler: zscale\ncardinality_threshold: 12\nfeature_engine: dirty_cat\nuse_ngrams: true\n")
	require.NoError(t, os.WriteFile(path, raw, 0644))

	o, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "zscale", o.UseScaler)
	assert.Equal(t, 12, o.CardinalityThreshold)
	assert.Equal(t, "dirty_cat", o.FeatureEngine)
	assert.True(t, o.UseNgrams)
	assert.Equal(t, 42, o.NTopics, "unset fields still get defaults")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFileMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("use_scaler: [unclosed"), 0644))
	_, err := LoadFile(path)
	assert.Error(t, err)
}
