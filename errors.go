package modelgraph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the three failure kinds of a generation pass.
var (
	// ErrConfiguration is returned when the configuration is invalid,
	// for example an unknown display mode or an empty module list.
	ErrConfiguration = errors.New("modelgraph: invalid configuration")

	// ErrModuleResolution is returned when a model module or the ORM
	// framework package cannot be located or loaded.
	ErrModuleResolution = errors.New("modelgraph: module resolution failed")

	// ErrRender is returned when the rendering backend cannot produce
	// the requested output.
	ErrRender = errors.New("modelgraph: render failed")
)

// ConfigurationError represents an invalid configuration value.
type ConfigurationError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("modelgraph: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("modelgraph: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(option string, value any, message string) *ConfigurationError {
	return &ConfigurationError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// ModuleResolutionError represents a module that could not be loaded.
type ModuleResolutionError struct {
	Module  string // Requested module name.
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ModuleResolutionError) Error() string {
	var b strings.Builder
	b.WriteString("modelgraph: cannot resolve module")
	if e.Module != "" {
		fmt.Fprintf(&b, " %q", e.Module)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ModuleResolutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrModuleResolution.
func (e *ModuleResolutionError) Is(target error) bool {
	return target == ErrModuleResolution
}

// NewModuleResolutionError creates a new ModuleResolutionError.
func NewModuleResolutionError(module, message string, cause error) *ModuleResolutionError {
	return &ModuleResolutionError{
		Module:  module,
		Message: message,
		Cause:   cause,
	}
}

// RenderError represents a failure of the rendering backend.
type RenderError struct {
	Op      string // Step that failed, e.g. "run" or "view".
	Format  string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	var b strings.Builder
	b.WriteString("modelgraph: render error")
	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}
	if e.Format != "" {
		fmt.Fprintf(&b, " (format: %s)", e.Format)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrRender.
func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}

// NewRenderError creates a new RenderError.
func NewRenderError(op, format, message string, cause error) *RenderError {
	return &RenderError{
		Op:      op,
		Format:  format,
		Message: message,
		Cause:   cause,
	}
}

// IsConfigurationError reports whether the error is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsModuleResolutionError reports whether the error is a ModuleResolutionError.
func IsModuleResolutionError(err error) bool {
	var e *ModuleResolutionError
	return errors.As(err, &e)
}

// IsRenderError reports whether the error is a RenderError.
func IsRenderError(err error) bool {
	var e *RenderError
	return errors.As(err, &e)
}
