package ml

import (
	"fmt"
)

const ModelTypeXGBoost = "xgboost"

// LoadModel reads a serialized classifier of the given type.
func LoadModel(modelType, path string) (Classifier, error) {
	switch modelType {
	case ModelTypeXGBoost, "":
		model, err := LoadXGBoost(path)
		if err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, modelType)
	}
}
