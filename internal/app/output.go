package app

import (
	"context"
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/databirdlab/densitycal/internal/conf"
	"github.com/databirdlab/densitycal/internal/errors"
)

// Render writes v to w as YAML (the default) or indented JSON.
func Render(w io.Writer, format string, v any) error {
	switch format {
	case conf.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case conf.OutputYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.Newf("unknown output format %q", format).
			Component("app").
			Category(errors.CategoryValidation).
			Build()
	}
}

// Run opens an App, runs fn and renders its result to w in the configured
// output format. The App is closed before Run returns.
func Run(ctx context.Context, settings *conf.Settings, w io.Writer, fn func(ctx context.Context, a *App) (any, error)) (err error) {
	a, err := New(settings)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	result, err := fn(ctx, a)
	if err != nil {
		return err
	}
	return Render(w, settings.Output.Format, result)
}
