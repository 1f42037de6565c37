// Package config carries the resolved featurization options shared by the
// orchestrator and the graph object.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options is the full keyword surface of a featurization call. Zero values
// are normalized by ApplyDefaults before use, so a partially filled struct
// (or YAML file) behaves like the documented defaults.
type Options struct {
	UseScaler                  string  `yaml:"use_scaler"`
	UseScalerTarget            string  `yaml:"use_scaler_target"`
	CardinalityThreshold       int     `yaml:"cardinality_threshold"`
	CardinalityThresholdTarget int     `yaml:"cardinality_threshold_target"`
	NTopics                    int     `yaml:"n_topics"`
	NTopicsTarget              int     `yaml:"n_topics_target"`
	UseNgrams                  bool    `yaml:"use_ngrams"`
	NGramMin                   int     `yaml:"ngram_min"`
	NGramMax                   int     `yaml:"ngram_max"`
	MaxDF                      float64 `yaml:"max_df"`
	MinDF                      int     `yaml:"min_df"`
	Confidence                 float64 `yaml:"confidence"`
	MinWords                   float64 `yaml:"min_words"`
	ModelName                  string  `yaml:"model_name"`
	RemoveNodeColumn           *bool   `yaml:"remove_node_column"`
	FeatureEngine              string  `yaml:"feature_engine"`
	Impute                     *bool   `yaml:"impute"`
	KeepNDecimals              int     `yaml:"keep_n_decimals"`
}

// Default returns the documented defaults for node featurization.
func Default() Options {
	o := Options{}
	o.ApplyDefaults()
	return o
}

// ApplyDefaults fills unset fields in place.
func (o *Options) ApplyDefaults() {
	if o.UseScaler == "" {
		o.UseScaler = "robust"
	}
	if o.UseScalerTarget == "" {
		o.UseScalerTarget = "kbins"
	}
	if o.CardinalityThreshold == 0 {
		o.CardinalityThreshold = 40
	}
	if o.CardinalityThresholdTarget == 0 {
		o.CardinalityThresholdTarget = 400
	}
	if o.NTopics == 0 {
		o.NTopics = 42
	}
	if o.NTopicsTarget == 0 {
		o.NTopicsTarget = 7
	}
	if o.NGramMin == 0 {
		o.NGramMin = 1
	}
	if o.NGramMax == 0 {
		o.NGramMax = 3
	}
	if o.MaxDF == 0 {
		o.MaxDF = 0.2
	}
	if o.MinDF == 0 {
		o.MinDF = 3
	}
	if o.Confidence == 0 {
		o.Confidence = 0.35
	}
	if o.MinWords == 0 {
		o.MinWords = 2.5
	}
	if o.ModelName == "" {
		o.ModelName = "sentence-transformers/paraphrase-MiniLM-L6-v2"
	}
	if o.RemoveNodeColumn == nil {
		t := true
		o.RemoveNodeColumn = &t
	}
	if o.FeatureEngine == "" {
		o.FeatureEngine = "auto"
	}
	if o.Impute == nil {
		t := true
		o.Impute = &t
	}
	if o.KeepNDecimals == 0 {
		o.KeepNDecimals = 5
	}
}

// LoadFile reads options from a YAML file and applies defaults.
func LoadFile(path string) (Options, error) {
	var o Options
	raw, err := os.ReadFile(path)
	if err != nil {
		return o, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return o, fmt.Errorf("parse config %s: %w", path, err)
	}
	o.ApplyDefaults()
	return o, nil
}
