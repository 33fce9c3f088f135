// Package validation checks foldkit configuration and call arguments.
//
// Struct tag validation (using the validator library) is used for loaded
// configuration and reports INVALID_CONFIG. Programmatic validation collects
// argument errors such as concurrency limits and reports INVALID_ARGUMENT.
//
// # Struct Tag Validation
//
//	type EngineConfig struct {
//	    PoolConcurrency int `mapstructure:"pool_concurrency" validate:"gte=1"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	if appErr := validation.New().Min("limit", limit, 1).Validate(); appErr != nil {
//	    return nil, appErr
//	}
package validation
