// Package schemasource loads raw schema definitions from YAML or JSON files.
//
// A schema is either a single file holding name, version, documentation and
// packages, or a directory holding ontology.yaml (name, version,
// documentation) plus one <package>.yaml file per package. Entity names in
// package files may be bare (project) or qualified (designing.project).
package schemasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/osl-core/internal/domain/entities"
)

// HeaderFile is the file naming the ontology in a schema directory.
const HeaderFile = "ontology.yaml"

// Load reads a schema from a file or a directory.
func Load(path string) (*entities.RawSchema, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// LoadFile reads a single-file schema.
func LoadFile(path string) (*entities.RawSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	raw, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}

// Parse decodes a single-file schema.
func Parse(data []byte) (*entities.RawSchema, error) {
	var raw entities.RawSchema
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("schema has no name")
	}
	for pkg, contents := range raw.Packages {
		raw.Packages[pkg] = qualify(pkg, contents)
	}
	return &raw, nil
}

// LoadDir reads a schema directory.
func LoadDir(dir string) (*entities.RawSchema, error) {
	header, err := os.ReadFile(filepath.Join(dir, HeaderFile))
	if err != nil {
		return nil, fmt.Errorf("reading schema header: %w", err)
	}
	var raw entities.RawSchema
	if err := yaml.Unmarshal(header, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", HeaderFile, err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("%s has no name", HeaderFile)
	}
	if raw.Packages == nil {
		raw.Packages = make(map[string]entities.Package)
	}

	files, err := packageFiles(dir)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		pkg := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading package %s: %w", pkg, err)
		}
		var contents entities.Package
		if err := yaml.Unmarshal(data, &contents); err != nil {
			return nil, fmt.Errorf("parsing package %s: %w", pkg, err)
		}
		if _, dup := raw.Packages[pkg]; dup {
			return nil, fmt.Errorf("package %s defined twice", pkg)
		}
		raw.Packages[pkg] = qualify(pkg, contents)
	}
	return &raw, nil
}

// packageFiles lists package files, skipping the header and files whose
// name starts with an underscore.
func packageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing schema directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == HeaderFile || strings.HasPrefix(name, "_") {
			continue
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml", ".json":
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}

// qualify prefixes bare entity names with their package.
func qualify(pkg string, contents entities.Package) entities.Package {
	out := make(entities.Package, len(contents))
	for name, rec := range contents {
		if !strings.Contains(name, ".") {
			name = pkg + "." + name
		}
		out[name] = rec
	}
	return out
}
