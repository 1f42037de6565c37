// Package featurize sequences the column classifier, text encoder, dirty
// encoder, edge encoder and scaling pipelines into fused feature matrices,
// and records everything needed to replay the transform on unseen data.
package featurize

import (
	"fmt"
	"os"
	"path/filepath"
)

// Engine selects how much of the encoder stack runs. The string values are
// part of the public configuration surface.
type Engine string

const (
	// EngineNone and EnginePandas short-circuit to numeric columns only.
	EngineNone   Engine = "none"
	EnginePandas Engine = "pandas"
	// EngineDirtyCat runs the cardinality-gated categorical encoders but
	// skips sentence embeddings.
	EngineDirtyCat Engine = "dirty_cat"
	// EngineTorch is the full stack including the sentence-embedding model.
	EngineTorch Engine = "torch"
	// EngineAuto resolves to the richest engine the host supports.
	EngineAuto Engine = "auto"
)

// Capabilities is the explicit registry of optional encoder backends,
// resolved once at startup instead of sniffing at each call site.
type Capabilities struct {
	// TextEmbedding reports whether an ONNX runtime library was found (or
	// an embedder was injected), enabling the sentence-embedding mode.
	TextEmbedding bool
	// OrtLibraryPath is the shared library that satisfied TextEmbedding.
	OrtLibraryPath string
}

// ortSearchPaths are the usual install locations for the onnxruntime shared
// library.
var ortSearchPaths = []string{
	"/usr/lib/libonnxruntime.so",
	"/usr/lib64/libonnxruntime.so",
	"/usr/local/lib/libonnxruntime.so",
	"/usr/local/lib/libonnxruntime.dylib",
	"/opt/homebrew/lib/libonnxruntime.dylib",
}

// DetectCapabilities probes the host once. ORT_LIBRARY_PATH overrides the
// search.
func DetectCapabilities() Capabilities {
	if path := os.Getenv("ORT_LIBRARY_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return Capabilities{TextEmbedding: true, OrtLibraryPath: path}
		}
	}
	for _, path := range ortSearchPaths {
		if _, err := os.Stat(path); err == nil {
			return Capabilities{TextEmbedding: true, OrtLibraryPath: path}
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".tabgraph", "lib", "libonnxruntime.so")
		if _, err := os.Stat(path); err == nil {
			return Capabilities{TextEmbedding: true, OrtLibraryPath: path}
		}
	}
	return Capabilities{}
}

// ResolveEngine turns a requested engine (possibly "auto") into a concrete
// one. Auto downgrades gracefully when the embedding backend is missing; an
// explicit torch request without the backend is a dependency error carrying a
// remediation hint.
func ResolveEngine(requested Engine, caps Capabilities) (Engine, error) {
	switch requested {
	case EngineNone, EnginePandas, EngineDirtyCat:
		return requested, nil
	case EngineTorch:
		if !caps.TextEmbedding {
			return "", fmt.Errorf(
				"feature engine %q needs an onnxruntime shared library; install onnxruntime or set ORT_LIBRARY_PATH, or inject an Embedder",
				requested)
		}
		return EngineTorch, nil
	case EngineAuto:
		if caps.TextEmbedding {
			return EngineTorch, nil
		}
		return EngineDirtyCat, nil
	default:
		return "", fmt.Errorf(
			`feature_engine must be one of "none", "pandas", "dirty_cat", "torch" or "auto", got %q`, requested)
	}
}
