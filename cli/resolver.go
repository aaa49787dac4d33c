package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/lusa/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads YAML configuration
// files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.yaml")
//
// Keys name flags. Nested mappings are joined to their parent key with a
// hyphen, and underscores may stand in for hyphens, so the following files
// all set --log-level:
//
//	log-level: debug
//	log_level: debug
//	log:
//	  level: debug
//
// Sequences set repeatable flags such as --include. Command-line flags
// override configuration values. A file that is not valid YAML is ignored
// with a warning.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		var doc map[string]any

		if err := yaml.UnmarshalContext(ctx, data, &doc); err != nil {
			log.WarnContext(ctx, "ignoring invalid configuration",
				slog.Any("error", err))

			return config{}, nil
		}

		cfg := config{}
		cfg.flatten("", doc)

		return cfg, nil
	}
}

// config implements [kong.Resolver] for YAML configuration files.
type config map[string]any

func (r config) flatten(prefix string, m map[string]any) {
	for key, val := range m {
		name := strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			name = prefix + "-" + name
		}

		if sub, ok := val.(map[string]any); ok {
			r.flatten(name, sub)

			continue
		}

		r[name] = scalar(val)
	}
}

// scalar converts decoded YAML values to the forms kong parses. Kong
// expects numbers as strings.
func scalar(val any) any {
	switch v := val.(type) {
	case nil:
		return nil

	case bool, string:
		return v

	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = scalar(e)
		}

		return out

	default:
		return fmt.Sprint(v)
	}
}

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}
