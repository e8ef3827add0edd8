package main

import (
	"os"

	"github.com/stoewer/go-strcase"
	"gopkg.in/yaml.v3"

	"github.com/luminalang/lumina/internal/config"
)

// rcPath is the --config flag's destination, read by loadProjectConfig.
var rcPath string

// projectConfig is the shape of an optional .luminarc.yaml project file:
// target selection and wrapper-set extension, per SPEC_FULL.md's ambient
// configuration section.
type projectConfig struct {
	Target        string   `yaml:"target"`
	ExtraWrappers []string `yaml:"extra_wrappers"`
}

// loadProjectConfig reads rcPath if present; a missing file is not an error
// since the project file is optional (falls back to CLI flags/defaults).
func loadProjectConfig() (*projectConfig, error) {
	data, err := os.ReadFile(rcPath)
	if os.IsNotExist(err) {
		return &projectConfig{}, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg projectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// scriptTarget resolves the --target flag against the project config,
// defaulting to ESM.
func (c *projectConfig) scriptTarget(flagValue string) config.ScriptTarget {
	if flagValue != "" {
		return config.ScriptTarget(flagValue)
	}
	if c.Target != "" {
		return config.ScriptTarget(c.Target)
	}
	return config.TargetESM
}

// wrapperSet merges the project config's extra wrapper names into the
// default barrier-occurs-check wrapper set (§4.1). YAML convention is
// snake_case/kebab-case; ADT names in Lumina source are UpperCamelCase, so
// each configured name is normalized before joining the set.
func (c *projectConfig) wrapperSet() map[string]bool {
	wrappers := config.DefaultWrapperSet()
	for _, w := range c.ExtraWrappers {
		wrappers[strcase.UpperCamelCase(w)] = true
	}
	return wrappers
}
