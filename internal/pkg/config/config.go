// Copyright 2022 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides the analysis options consulted by the lattice and
// the solver. Options are normally read once from a YAML file named by the
// -config flag; tests inject them with SetBytes or SetConfig.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/formal-methods-js/jsflow/internal/pkg/config/regexp"
)

// FlagSet should be used by analyzer binaries to reuse the -config flag.
var FlagSet flag.FlagSet
var configFile string

func init() {
	FlagSet.StringVar(&configFile, "config", "config.yaml", "path to analysis configuration file")
}

// Config contains the analysis options.
type Config struct {
	// CopyOnWriteDisabled makes abstract object copies eagerly clone their
	// property maps instead of sharing them until the first write.
	CopyOnWriteDisabled bool

	// ContextSensitivity names the call-context abstraction, e.g. "object" or
	// "parameter". The empty string selects context-insensitive analysis.
	ContextSensitivity string

	// Debug enables verbose solver output.
	Debug bool

	// IgnoredLibraries lists host libraries whose flow graph fragments are
	// loaded but not analyzed.
	IgnoredLibraries []libraryMatcher
}

// IsIgnoredLibrary determines whether a library name matches one of the
// configured ignore patterns.
func (c Config) IsIgnoredLibrary(name string) bool {
	for _, m := range c.IgnoredLibraries {
		if m.Name.MatchString(name) {
			return true
		}
	}
	return false
}

type stringMatcher interface {
	MatchString(string) bool
}

type literalMatcher string

func (lm literalMatcher) MatchString(s string) bool {
	return string(lm) == s
}

type vacuousMatcher struct{}

func (vacuousMatcher) MatchString(s string) bool {
	return true
}

// Returns the first non-nil matcher. If all are nil, returns a vacuousMatcher.
func matcherFrom(lm *literalMatcher, r *regexp.Regexp) stringMatcher {
	switch {
	case lm != nil:
		return lm
	case r != nil:
		return r
	default:
		return vacuousMatcher{}
	}
}

// A libraryMatcher matches a library by name, either against a string
// literal Name or against a regexp NameRE.
type libraryMatcher struct {
	Name stringMatcher
}

// this type uses the default unmarshaler and mirrors configuration key-value pairs
type rawLibraryMatcher struct {
	Name   *literalMatcher
	NameRE *regexp.Regexp
}

func (lm *libraryMatcher) UnmarshalJSON(bytes []byte) error {
	raw := rawLibraryMatcher{}
	if err := json.Unmarshal(bytes, &raw); err != nil {
		return err
	}
	if raw.Name != nil && raw.NameRE != nil {
		return fmt.Errorf("expected only one of Name, NameRE to be configured")
	}
	*lm = libraryMatcher{Name: matcherFrom(raw.Name, raw.NameRE)}
	return nil
}

var readFileOnce sync.Once
var readConfigCached *Config
var readConfigCachedErr error

// ReadConfig reads the analysis configuration. The file is read at most once;
// subsequent calls return the cached result.
func ReadConfig() (*Config, error) {
	readFileOnce.Do(func() {
		c := new(Config)
		bytes, err := ioutil.ReadFile(configFile)
		if err != nil {
			readConfigCachedErr = fmt.Errorf("error reading analysis config: %v", err)
			return
		}
		if err := yaml.UnmarshalStrict(bytes, c); err != nil {
			readConfigCachedErr = err
			return
		}
		readConfigCached = c
	})
	return readConfigCached, readConfigCachedErr
}

// SetConfig makes ReadConfig return the given configuration, bypassing the
// config file. Intended for tests and embedding tools.
func SetConfig(c *Config) {
	readFileOnce.Do(func() {})
	readConfigCached = c
	readConfigCachedErr = nil
}

// SetBytes makes ReadConfig return the configuration parsed from the given
// YAML bytes, bypassing the config file. Intended for tests and embedding tools.
func SetBytes(bytes []byte) error {
	c := new(Config)
	if err := yaml.UnmarshalStrict(bytes, c); err != nil {
		return err
	}
	SetConfig(c)
	return nil
}
