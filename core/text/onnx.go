package text

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"
)

// DefaultModelName is the sentence-embedding model used when none is given.
const DefaultModelName = "sentence-transformers/paraphrase-MiniLM-L6-v2"

// ONNXEmbedder runs a pretrained sentence-embedding model through an ONNX
// runtime session. The model is downloaded on first use and cached on disk.
type ONNXEmbedder struct {
	modelName      string
	cacheDir       string
	modelPath      string
	ortLibraryPath string

	mu        sync.RWMutex
	session   *hugot.Session
	pipeline  *pipelines.FeatureExtractionPipeline
	dimension int
	loaded    bool
}

type ONNXConfig struct {
	ModelName      string
	CacheDir       string
	OrtLibraryPath string
}

func NewONNXEmbedder(cfg ONNXConfig) (*ONNXEmbedder, error) {
	if cfg.ModelName == "" {
		cfg.ModelName = DefaultModelName
	}
	if cfg.CacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		cfg.CacheDir = filepath.Join(home, ".tabgraph", "models")
	}
	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create model cache dir: %w", err)
	}

	return &ONNXEmbedder{
		modelName:      cfg.ModelName,
		cacheDir:       cfg.CacheDir,
		modelPath:      filepath.Join(cfg.CacheDir, filepath.Base(cfg.ModelName)),
		ortLibraryPath: cfg.OrtLibraryPath,
	}, nil
}

func (o *ONNXEmbedder) ModelName() string { return o.modelName }

func (o *ONNXEmbedder) Dimension() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.dimension
}

func (o *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vecs[0], nil
}

func (o *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := o.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	o.mu.RLock()
	defer o.mu.RUnlock()
	output, err := o.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	return output.Embeddings, nil
}

func (o *ONNXEmbedder) ensureLoaded(_ context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.loaded {
		return nil
	}

	if _, err := os.Stat(o.modelPath); os.IsNotExist(err) {
		modelPath, err := hugot.DownloadModel(o.modelName, o.cacheDir, hugot.NewDownloadOptions())
		if err != nil {
			return fmt.Errorf("download model %s: %w", o.modelName, err)
		}
		o.modelPath = modelPath
	}

	sessionOpts := []options.WithOption{
		options.WithIntraOpNumThreads(runtime.NumCPU()),
	}
	if o.ortLibraryPath != "" {
		sessionOpts = append(sessionOpts, options.WithOnnxLibraryPath(o.ortLibraryPath))
	}

	session, err := hugot.NewORTSession(sessionOpts...)
	if err != nil {
		return fmt.Errorf("create onnx session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: o.modelPath,
		Name:      filepath.Base(o.modelName),
	})
	if err != nil {
		session.Destroy()
		return fmt.Errorf("create feature extraction pipeline: %w", err)
	}

	o.session = session
	o.pipeline = pipeline
	o.loaded = true

	// probe the output width once so Dimension is known before any batch
	probe, err := pipeline.RunPipeline([]string{"dimension probe"})
	if err == nil && len(probe.Embeddings) > 0 {
		o.dimension = len(probe.Embeddings[0])
	}
	return nil
}

func (o *ONNXEmbedder) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != nil {
		o.session.Destroy()
		o.session = nil
	}
	o.pipeline = nil
	o.loaded = false
	return nil
}
