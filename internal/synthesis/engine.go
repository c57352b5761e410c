package synthesis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"
)

// EngineConfig holds configuration for the offline TTS engine
type EngineConfig struct {
	ModelDir   string
	SpeakerID  int
	Speed      float32
	NumThreads int
}

// Engine wraps a Sherpa-ONNX offline TTS model. It is expensive to create
// and intended to live for the whole process; not safe for concurrent use.
type Engine struct {
	config EngineConfig
	tts    *sherpa.OfflineTts
}

// NewEngine creates a new TTS engine from a VITS model directory
func NewEngine(config EngineConfig) (*Engine, error) {
	modelPath, err := findModelFile(config.ModelDir)
	if err != nil {
		return nil, err
	}

	tokensPath := filepath.Join(config.ModelDir, "tokens.txt")
	if _, err := os.Stat(tokensPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("tokens file not found: %s", tokensPath)
	}

	vits := sherpa.OfflineTtsVitsModelConfig{
		Model:  modelPath,
		Tokens: tokensPath,
	}

	// Optional model assets
	if lexicon := filepath.Join(config.ModelDir, "lexicon.txt"); fileExists(lexicon) {
		vits.Lexicon = lexicon
	}
	if dataDir := filepath.Join(config.ModelDir, "espeak-ng-data"); fileExists(dataDir) {
		vits.DataDir = dataDir
	}

	numThreads := config.NumThreads
	if numThreads <= 0 {
		numThreads = 1
	}

	sherpaConfig := sherpa.OfflineTtsConfig{
		Model: sherpa.OfflineTtsModelConfig{
			Vits:       vits,
			NumThreads: numThreads,
			Debug:      0,
		},
	}

	tts := sherpa.NewOfflineTts(&sherpaConfig)
	if tts == nil {
		return nil, fmt.Errorf("failed to create offline tts from %s", config.ModelDir)
	}

	if config.Speed <= 0 {
		config.Speed = 1.0
	}

	return &Engine{
		config: config,
		tts:    tts,
	}, nil
}

// Render synthesizes one chunk of text and returns raw samples with their
// sample rate
func (e *Engine) Render(text string) ([]float32, int, error) {
	audio := e.tts.Generate(text, e.config.SpeakerID, e.config.Speed)
	if audio == nil || len(audio.Samples) == 0 {
		return nil, 0, &UnavailableError{Err: fmt.Errorf("engine produced no audio")}
	}

	return audio.Samples, audio.SampleRate, nil
}

// Close releases the underlying model resources
func (e *Engine) Close() error {
	if e.tts != nil {
		sherpa.DeleteOfflineTts(e.tts)
		e.tts = nil
	}
	return nil
}

func findModelFile(modelDir string) (string, error) {
	entries, err := os.ReadDir(modelDir)
	if err != nil {
		return "", fmt.Errorf("failed to read model dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".onnx") {
			return filepath.Join(modelDir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("no .onnx model found in %s", modelDir)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
