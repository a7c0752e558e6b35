package predictor

import (
	"fmt"

	"go.uber.org/zap"

	"diseasepredict/ml"
	"diseasepredict/paths"
)

// LoadConfig names the artifacts Load reads, relative to the resolver roots.
type LoadConfig struct {
	DatasetPath string
	ModelType   string
	ModelPath   string
}

// Load resolves and reads the training table and model, then builds a
// Predictor. The returned path is where the model was actually found, for
// use by a ModelWatcher.
func Load(cfg LoadConfig, opts Options) (*Predictor, string, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Resolver == nil {
		opts.Resolver = paths.New(".")
	}
	logger := opts.Logger

	dataset := opts.Resolver.Resolve(cfg.DatasetPath)
	if !dataset.Found {
		logger.Warn("could not find file", zap.String("path", cfg.DatasetPath), zap.Strings("tried", dataset.Tried))
	}
	schema, err := ml.LoadSchema(dataset.Path)
	if err != nil {
		return nil, "", fmt.Errorf("load schema: %w", err)
	}
	logger.Info("symptom schema loaded",
		zap.String("path", dataset.Path),
		zap.Int("symptoms", schema.Width()),
		zap.Int("diseases", len(schema.Diseases)))

	modelRes := opts.Resolver.Resolve(cfg.ModelPath)
	if !modelRes.Found {
		modelRes = opts.Resolver.ResolveDir(cfg.ModelPath)
	}
	if !modelRes.Found {
		logger.Error("could not load model", zap.String("path", cfg.ModelPath), zap.Strings("tried", modelRes.Tried))
	}
	model, err := ml.LoadModel(cfg.ModelType, modelRes.Path)
	if err != nil {
		return nil, "", fmt.Errorf("load model: %w", err)
	}
	logger.Info("model loaded",
		zap.String("path", modelRes.Path),
		zap.Int("classes", model.NumClasses()),
		zap.Int("features", model.NumFeatures()))

	p, err := New(schema, ml.NewModelHolder(model), opts)
	if err != nil {
		return nil, "", err
	}
	return p, modelRes.Path, nil
}
