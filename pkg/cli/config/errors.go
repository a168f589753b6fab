package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound     = goerr.New("configuration file not found")
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrDuplicateEvaluator = goerr.New("duplicate evaluator name")
	ErrMissingName        = goerr.New("name is required")
	ErrInvalidProvider    = goerr.New("invalid evaluator provider")
	ErrInvalidWeight      = goerr.New("evaluator weight must not be negative")
	ErrInvalidDimension   = goerr.New("invalid dimension")
	ErrUnknownEvaluator   = goerr.New("priority references unknown evaluator")
)

// Context keys for error values
const (
	ConfigPathKey     = "config_path"
	EvaluatorNameKey  = "evaluator_name"
	EvaluatorIndexKey = "evaluator_index"
	ProviderKey       = "provider"
	DimensionKey      = "dimension"
)
