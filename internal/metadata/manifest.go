package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type manifestInfo struct {
	description string
	keywords    []string
}

// Fields are loosely typed: workspace inheritance (`description.workspace =
// true`) and hand-edited files must not fail the whole decode.
type packageJSON struct {
	Description any `json:"description"`
	Keywords    any `json:"keywords"`
}

type cargoPackage struct {
	Description any `toml:"description"`
	Keywords    any `toml:"keywords"`
}

type cargoToml struct {
	Package   *cargoPackage `toml:"package"`
	Workspace *struct {
		Package *cargoPackage `toml:"package"`
	} `toml:"workspace"`
}

type pyprojectToml struct {
	Project *struct {
		Description string `toml:"description"`
	} `toml:"project"`
	Tool *struct {
		Poetry *struct {
			Description string `toml:"description"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

type pubspecYAML struct {
	Description string `yaml:"description"`
}

type composerJSON struct {
	Description string `json:"description"`
}

// readManifests picks the first non-empty description in manifest order and
// the Cargo keywords, else the package.json keywords.
func (e *Extractor) readManifests(root string) manifestInfo {
	var info manifestInfo

	pkg, pkgOK := readJSON[packageJSON](e, filepath.Join(root, "package.json"))
	cargo, cargoOK := readTOML[cargoToml](e, filepath.Join(root, "Cargo.toml"))

	var cargoPkg *cargoPackage
	if cargoOK {
		cargoPkg = cargo.Package
		if (cargoPkg == nil || asString(cargoPkg.Description) == "") && cargo.Workspace != nil && cargo.Workspace.Package != nil {
			cargoPkg = cargo.Workspace.Package
		}
	}

	candidates := []func() string{
		func() string {
			if pkgOK {
				return asString(pkg.Description)
			}
			return ""
		},
		func() string {
			if cargoPkg != nil {
				return asString(cargoPkg.Description)
			}
			return ""
		},
		func() string {
			py, ok := readTOML[pyprojectToml](e, filepath.Join(root, "pyproject.toml"))
			if !ok {
				return ""
			}
			if py.Project != nil && py.Project.Description != "" {
				return py.Project.Description
			}
			if py.Tool != nil && py.Tool.Poetry != nil {
				return py.Tool.Poetry.Description
			}
			return ""
		},
		func() string {
			pub, ok := readYAML[pubspecYAML](e, filepath.Join(root, "pubspec.yaml"))
			if !ok {
				return ""
			}
			return pub.Description
		},
		func() string {
			comp, ok := readJSON[composerJSON](e, filepath.Join(root, "composer.json"))
			if !ok {
				return ""
			}
			return comp.Description
		},
	}
	for _, candidate := range candidates {
		if desc := strings.TrimSpace(candidate()); desc != "" {
			info.description = desc
			break
		}
	}

	if cargoPkg != nil {
		info.keywords = asStrings(cargoPkg.Keywords)
	}
	if len(info.keywords) == 0 && pkgOK {
		info.keywords = asStrings(pkg.Keywords)
	}

	return info
}

func readManifest(e *Extractor, path string, decode func([]byte) error) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := decode(data); err != nil {
		e.logger.Debug("skipping unreadable manifest", "path", path, "error", err)
		return false
	}
	return true
}

func readJSON[T any](e *Extractor, path string) (T, bool) {
	var v T
	ok := readManifest(e, path, func(data []byte) error { return json.Unmarshal(data, &v) })
	return v, ok
}

func readTOML[T any](e *Extractor, path string) (T, bool) {
	var v T
	ok := readManifest(e, path, func(data []byte) error { return toml.Unmarshal(data, &v) })
	return v, ok
}

func readYAML[T any](e *Extractor, path string) (T, bool) {
	var v T
	ok := readManifest(e, path, func(data []byte) error { return yaml.Unmarshal(data, &v) })
	return v, ok
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
