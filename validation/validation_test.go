package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/foldkit/errors"
)

func TestValidatorMin(t *testing.T) {
	v := New()
	v.Min("limit", 5, 1)
	if v.HasErrors() {
		t.Error("expected no errors")
	}

	v2 := New()
	v2.Min("limit", 0, 1)
	if !v2.HasErrors() {
		t.Error("expected error for value below min")
	}
}

func TestValidatorNotNil(t *testing.T) {
	var nilFunc func()
	var nilMap map[string]any

	v := New()
	v.NotNil("mapper", func() {})
	v.NotNil("value", 0)
	if v.HasErrors() {
		t.Errorf("expected no errors, got %v", v.Errors())
	}

	v2 := New()
	v2.NotNil("a", nil).NotNil("b", nilFunc).NotNil("c", nilMap)
	if len(v2.Errors()) != 3 {
		t.Errorf("expected 3 errors, got %v", v2.Errors())
	}
}

func TestValidatorValidate(t *testing.T) {
	if appErr := New().Min("limit", 3, 1).Validate(); appErr != nil {
		t.Error("expected nil for valid input")
	}

	appErr := New().Min("limit", 0, 1).NotNil("mapper", nil).Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	if appErr.Code != errors.ErrCodeInvalidArgument {
		t.Errorf("expected INVALID_ARGUMENT, got %s", appErr.Code)
	}
	if appErr.Details["fields"] == nil {
		t.Fatal("expected details in error")
	}
	if !strings.Contains(appErr.Message, "limit") || !strings.Contains(appErr.Message, "mapper") {
		t.Errorf("expected both fields in message, got %q", appErr.Message)
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New()
	result := v.Min("limit", 2, 1).NotNil("mapper", func() {})
	if result != v {
		t.Error("expected chaining to return same validator")
	}
	if v.HasErrors() {
		t.Error("expected no errors for valid chained validation")
	}
}

func TestPositive(t *testing.T) {
	if err := Positive("limit", 1); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	err := Positive("limit", 0)
	if err == nil {
		t.Fatal("expected error for zero limit")
	}
	if !errors.IsCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func TestRequired(t *testing.T) {
	type mapper func(any) any
	var nilMapper mapper

	if err := Required("mapper", mapper(func(v any) any { return v })); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	err := Required("mapper", nilMapper)
	if err == nil {
		t.Fatal("expected error for nil callback")
	}
	if !errors.IsCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("expected INVALID_ARGUMENT, got %v", err)
	}
	if !strings.Contains(err.Error(), "mapper: is required") {
		t.Errorf("expected field in message, got %q", err.Error())
	}
}

type engineSection struct {
	PoolConcurrency    int           `mapstructure:"pool_concurrency" validate:"gte=1"`
	FlattenRaceTimeout time.Duration `mapstructure:"flatten_race_timeout" validate:"gte=0"`
}

type testConfig struct {
	Name   string        `mapstructure:"name" validate:"required"`
	Format string        `mapstructure:"format" validate:"oneof=json console"`
	Engine engineSection `mapstructure:"engine"`
}

func TestStructValidateValid(t *testing.T) {
	err := Validate(testConfig{Name: "svc", Format: "json", Engine: engineSection{PoolConcurrency: 4}})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	err := Validate(testConfig{Format: "xml", Engine: engineSection{PoolConcurrency: 0}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"name: is required", "format: must be one of", "engine.pool_concurrency: must be at least 1"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected error to contain %q, got %q", want, msg)
		}
	}
}

func TestStructValidateNegativeDuration(t *testing.T) {
	err := Validate(testConfig{Name: "svc", Format: "json", Engine: engineSection{PoolConcurrency: 1, FlattenRaceTimeout: -time.Second}})
	if err == nil {
		t.Fatal("expected error for negative timeout")
	}
	if !strings.Contains(err.Error(), "engine.flatten_race_timeout") {
		t.Errorf("expected timeout field in message, got %q", err.Error())
	}
}

func TestStructValidateNotStruct(t *testing.T) {
	err := Validate(42)
	if !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG for non-struct, got %v", err)
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("PoolConcurrency"); got != "pool_concurrency" {
		t.Errorf("expected pool_concurrency, got %q", got)
	}
}
