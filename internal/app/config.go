package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Paths are .jv files or directories containing them.
	Paths []string `validate:"required,min=1,dive,required"`
	// Pipeline restricts a run to one pipeline. Empty runs all of them.
	Pipeline string

	// Params are runtime parameters given on the command line. They take
	// precedence over ParamsFile.
	Params     map[string]string
	ParamsFile string

	LogFormat string `validate:"oneof=text json"`
	LogLevel  string `validate:"oneof=debug info warn error"`

	Debug            bool
	DebugGranularity string `validate:"oneof=minimal peek exhaustive"`
	DebugTargets     []string

	MetricsFile string
	TraceFile   string
}

var validate = validator.New()

// NewConfig applies defaults to cfg and validates it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DebugGranularity == "" {
		cfg.DebugGranularity = "peek"
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.DebugGranularity = strings.ToLower(cfg.DebugGranularity)

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describeFieldError(fe))
			}
			return nil, fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "min":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s failed the '%s' check", fe.Field(), fe.Tag())
}
