package dynamic

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/patterns"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/scoring"
	"gopkg.in/yaml.v3"
)

// EmbeddedFS holds the guide files compiled into the binary. When it carries
// no YAML files, LoadGuides reads the config directory from disk.
var EmbeddedFS fs.FS

var knownPatterns = map[string]bool{
	patterns.SharedPIIPattern:      true,
	patterns.CollusionPattern:      true,
	patterns.AssetRecyclingPattern: true,
	patterns.VelocityPattern:       true,
	patterns.DoubleDippingPattern:  true,
	patterns.SharedAddressPattern:  true,
}

var knownSeverities = map[string]bool{
	string(patterns.SeverityCritical): true,
	string(patterns.SeverityHigh):     true,
	string(patterns.SeverityMedium):   true,
}

// LoadGuides reads every guide definition, preferring the embedded files.
func LoadGuides(configDir string) ([]*GuideConfig, error) {
	if EmbeddedFS != nil {
		guides, err := walkGuides(EmbeddedFS)
		if err == nil && len(guides) > 0 {
			slog.Debug("loaded guides from embedded filesystem", "count", len(guides))
			return guides, nil
		}
		if err != nil {
			slog.Warn("embedded guides unusable, reading from disk", "error", err)
		}
	}

	if _, err := os.Stat(configDir); errors.Is(err, fs.ErrNotExist) {
		slog.Warn("guide config directory does not exist", "dir", configDir)
		return nil, nil
	}
	return walkGuides(os.DirFS(configDir))
}

func walkGuides(fsys fs.FS) ([]*GuideConfig, error) {
	var guides []*GuideConfig
	seen := make(map[string]string)

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(d.Name()) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		guide, err := parseGuide(data, p)
		if err != nil {
			return err
		}
		if other, dup := seen[guide.Name]; dup {
			return fmt.Errorf("guide %q defined in both %s and %s", guide.Name, other, p)
		}
		seen[guide.Name] = p

		guides = append(guides, guide)
		slog.Debug("loaded guide", "tool", guide.Name, "category", guide.Category, "path", p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load guides: %w", err)
	}
	return guides, nil
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// parseGuide decodes one file and checks it against the rules and detectors the engine knows.
func parseGuide(data []byte, p string) (*GuideConfig, error) {
	var guide GuideConfig
	if err := yaml.Unmarshal(data, &guide); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p, err)
	}
	guide.Category = categoryFromPath(p)

	if guide.Name == "" {
		return nil, fmt.Errorf("guide name is required in %s", p)
	}
	if guide.Description == "" {
		return nil, fmt.Errorf("guide description is required in %s", p)
	}
	if guide.Rule != "" {
		if _, ok := scoring.Weights[patterns.Rule(guide.Rule)]; !ok {
			return nil, fmt.Errorf("unknown rule %q in %s", guide.Rule, p)
		}
	}
	if guide.Pattern != "" && !knownPatterns[guide.Pattern] {
		return nil, fmt.Errorf("unknown pattern %q in %s", guide.Pattern, p)
	}
	if guide.Severity != "" && !knownSeverities[guide.Severity] {
		return nil, fmt.Errorf("unknown severity %q in %s", guide.Severity, p)
	}
	if err := validateParameters(guide.Parameters); err != nil {
		return nil, fmt.Errorf("invalid parameters in %s: %w", p, err)
	}
	return &guide, nil
}

func validateParameters(params []ParameterConfig) error {
	validTypes := map[string]bool{
		"string": true, "integer": true, "number": true,
		"boolean": true, "array": true, "object": true,
	}
	names := make(map[string]bool)

	for i, param := range params {
		if param.Name == "" {
			return fmt.Errorf("parameter[%d] name is required", i)
		}
		if names[param.Name] {
			return fmt.Errorf("duplicate parameter name '%s'", param.Name)
		}
		names[param.Name] = true

		if param.Type != "" && !validTypes[param.Type] {
			return fmt.Errorf("parameter '%s' has invalid type '%s'", param.Name, param.Type)
		}
	}
	return nil
}

// categoryFromPath returns the first directory below any "config" component,
// e.g. "config/fraud/velocity.yaml" and "fraud/velocity.yaml" both give "fraud".
func categoryFromPath(p string) string {
	dir := path.Dir(p)
	for _, part := range strings.Split(dir, "/") {
		if part == "." || part == "config" || part == "" {
			continue
		}
		return part
	}
	return "general"
}
