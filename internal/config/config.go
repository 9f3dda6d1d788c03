// Package config contains the configuration of the filter import.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/lootkeeper/lootfilter/filterlist"
	"github.com/lootkeeper/lootfilter/filterutil"
	"gopkg.in/yaml.v3"
)

// Config is the configuration of the import pipeline as stored in the YAML
// file.
type Config struct {
	// InsertionMarker is the text marking the section before which the
	// generated rules are inserted.
	InsertionMarker string `yaml:"insertion_marker"`

	// CustomRulesPath is the path to the file with the user rules.  A relative
	// path is resolved against the directory of the configuration file.  If
	// empty, there are no user rules.
	CustomRulesPath string `yaml:"custom_rules_path"`

	// StackedVariants are the stacked tiers to normalize.
	StackedVariants []*StackedVariant `yaml:"stacked_variants"`

	// ManagementRules adds the rules the show and hide commands work with.
	ManagementRules bool `yaml:"management_rules"`

	// dir is the directory of the loaded file.
	dir string
}

// StackedVariant is the configuration of a stacked tier.
type StackedVariant struct {
	// Type is the type tag of the stacked rules.
	Type string `yaml:"type"`

	// SourceType is the type tag of the rules the BaseType lists are copied
	// from.
	SourceType string `yaml:"source_type"`

	// MinStackSize is the StackSize threshold of the stacked rules.
	MinStackSize int `yaml:"min_stack_size"`
}

// Default returns the default configuration.
func Default() (c *Config) {
	c = &Config{
		InsertionMarker: filterlist.DefaultInsertionMarker,
		ManagementRules: true,
	}

	for _, v := range filterlist.DefaultStackedVariants {
		c.StackedVariants = append(c.StackedVariants, &StackedVariant{
			Type:         v.Type,
			SourceType:   v.SourceType,
			MinStackSize: v.MinStackSize,
		})
	}

	return c
}

// Load reads the configuration from the YAML file at path.  The fields not set
// in the file keep their default values.  If path is empty, the default
// configuration is returned.
func Load(path string) (c *Config, err error) {
	c = Default()
	if path == "" {
		return c, nil
	}

	// #nosec G304 -- Trust the path, since it's provided by the user.
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	err = c.decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decoding config %q: %w", path, err)
	}

	c.dir = filepath.Dir(path)

	err = c.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating config %q: %w", path, err)
	}

	return c, nil
}

// decode decodes the YAML document from r into c.  Unknown fields are an
// error.
func (c *Config) decode(r io.Reader) (err error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	err = dec.Decode(c)
	if errors.Is(err, io.EOF) {
		// An empty file.
		return nil
	}

	return err
}

const (
	// errNoValue is returned when a configuration object is nil.
	errNoValue errors.Error = "no value"

	// errEmptyValue is returned when a required field is empty.
	errEmptyValue errors.Error = "empty value"

	// errNegative is returned when a number is negative.
	errNegative errors.Error = "negative value"
)

// Validate returns an error if c is invalid.
func (c *Config) Validate() (err error) {
	if c == nil {
		return errNoValue
	}

	var errs []error
	if c.InsertionMarker == "" {
		errs = append(errs, fmt.Errorf("insertion_marker: %w", errEmptyValue))
	}

	for i, v := range c.StackedVariants {
		err = v.validate()
		if err != nil {
			errs = append(errs, fmt.Errorf("stacked_variants: at index %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

// validate returns an error if v is invalid.
func (v *StackedVariant) validate() (err error) {
	switch {
	case v == nil:
		return errNoValue
	case v.Type == "":
		return fmt.Errorf("type: %w", errEmptyValue)
	case v.SourceType == "":
		return fmt.Errorf("source_type: %w", errEmptyValue)
	case v.MinStackSize < 0:
		return fmt.Errorf("min_stack_size: %w: %d", errNegative, v.MinStackSize)
	default:
		return nil
	}
}

// DocumentConfig returns the configuration for parsing the filter.
func (c *Config) DocumentConfig() (conf *filterlist.Config) {
	return &filterlist.Config{
		InsertionMarker: c.InsertionMarker,
	}
}

// ImportConfig returns the configuration of the import pipeline.  It reads the
// custom rules file, if any.
func (c *Config) ImportConfig() (conf *filterlist.ImportConfig, err error) {
	conf = &filterlist.ImportConfig{
		ManagementRules: c.ManagementRules,
	}

	for _, v := range c.StackedVariants {
		conf.StackedVariants = append(conf.StackedVariants, filterlist.StackedVariant{
			Type:         v.Type,
			SourceType:   v.SourceType,
			MinStackSize: v.MinStackSize,
		})
	}

	if c.CustomRulesPath == "" {
		return conf, nil
	}

	path := c.CustomRulesPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.dir, path)
	}

	conf.CustomRules, err = filterutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("custom rules: %w", err)
	}

	return conf, nil
}
