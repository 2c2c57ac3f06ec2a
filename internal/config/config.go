// Package config loads the client profiles.
//
// Profiles are read from a YAML file (`~/.rsbx.yaml` by default) and can be overridden
// with `RSBX_*` environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/rsbx/internal/model"
)

const (
	// DefaultFileName is the profiles file name, relative to the home directory.
	DefaultFileName = ".rsbx.yaml"
	// DefaultProfile is the profile used when none is selected.
	DefaultProfile = "default"
	// DefaultServerURL is the service address used when the profile has none.
	DefaultServerURL = "https://api.rsbx.dev"
	// DefaultEnvironment is the environment used when the profile has none.
	DefaultEnvironment = "main"
)

// Environment variables that override the profile values.
const (
	EnvProfile             = "RSBX_PROFILE"
	EnvServerURL           = "RSBX_SERVER_URL"
	EnvTokenID             = "RSBX_TOKEN_ID"
	EnvTokenSecret         = "RSBX_TOKEN_SECRET"
	EnvEnvironment         = "RSBX_ENVIRONMENT"
	EnvImageBuilderVersion = "RSBX_IMAGE_BUILDER_VERSION"
)

// DefaultPath returns the default profiles file path.
func DefaultPath() string {
	return filepath.Join(homedir.HomeDir(), DefaultFileName)
}

// Profile is a named set of client settings.
type Profile struct {
	ServerURL           string `yaml:"server_url"`
	TokenID             string `yaml:"token_id"`
	TokenSecret         string `yaml:"token_secret"`
	Environment         string `yaml:"environment"`
	ImageBuilderVersion string `yaml:"image_builder_version"`
	// TLS selects the scheme of server urls without one, nil uses TLS.
	TLS *bool `yaml:"tls,omitempty"`
}

type profilesFile struct {
	ActiveProfile string             `yaml:"active_profile"`
	Profiles      map[string]Profile `yaml:"profiles"`
}

// Config is the resolved client configuration.
type Config struct {
	// ProfileName is the name of the loaded profile.
	ProfileName string
	Profile
}

// LoadOpts are the options to load the configuration.
type LoadOpts struct {
	// Path is the profiles file, empty uses the default path. A missing file is not an
	// error, the defaults and environment are used.
	Path string
	// Profile selects the profile, empty uses RSBX_PROFILE, the file active profile or
	// the default one, in that order.
	Profile string
	// Getenv looks up environment variables, defaults to os.Getenv.
	Getenv func(string) string
}

// Load loads the configuration of the selected profile.
func Load(opts LoadOpts) (*Config, error) {
	if opts.Path == "" {
		opts.Path = DefaultPath()
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}

	pf := profilesFile{}
	data, err := os.ReadFile(opts.Path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("could not parse %s: %w: %w", opts.Path, model.ErrNotValid, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("could not read %s: %w", opts.Path, err)
	}

	name, explicit := selectProfile(opts, pf)
	profile, ok := pf.Profiles[name]
	if !ok && explicit {
		return nil, fmt.Errorf("profile %q is not in %s, available profiles: [%s]: %w", name, opts.Path, strings.Join(profileNames(pf), ", "), model.ErrNotFound)
	}

	cfg := &Config{ProfileName: name, Profile: profile}
	cfg.applyEnv(opts.Getenv)
	cfg.defaults()

	return cfg, nil
}

func selectProfile(opts LoadOpts, pf profilesFile) (name string, explicit bool) {
	switch {
	case opts.Profile != "":
		return opts.Profile, true
	case opts.Getenv(EnvProfile) != "":
		return opts.Getenv(EnvProfile), true
	case pf.ActiveProfile != "":
		return pf.ActiveProfile, true
	}
	return DefaultProfile, false
}

func profileNames(pf profilesFile) []string {
	names := make([]string, 0, len(pf.Profiles))
	for n := range pf.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (c *Config) applyEnv(getenv func(string) string) {
	overrides := map[string]*string{
		EnvServerURL:           &c.ServerURL,
		EnvTokenID:             &c.TokenID,
		EnvTokenSecret:         &c.TokenSecret,
		EnvEnvironment:         &c.Environment,
		EnvImageBuilderVersion: &c.ImageBuilderVersion,
	}
	for env, field := range overrides {
		if v := getenv(env); v != "" {
			*field = v
		}
	}
}

func (c *Config) defaults() {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}

	if !strings.Contains(c.ServerURL, "://") {
		if c.TLS == nil || *c.TLS {
			c.ServerURL = "https://" + c.ServerURL
		} else {
			c.ServerURL = "http://" + c.ServerURL
		}
	}
}

// EnvironmentName returns the environment to use, the override when set.
func (c *Config) EnvironmentName(override string) string {
	if override != "" {
		return override
	}
	if c.Environment != "" {
		return c.Environment
	}
	return DefaultEnvironment
}

// Validate checks the configuration can be used to call the service.
func (c *Config) Validate() error {
	if c.TokenID == "" || c.TokenSecret == "" {
		return fmt.Errorf("profile %q has no token, set token_id and token_secret or %s and %s: %w", c.ProfileName, EnvTokenID, EnvTokenSecret, model.ErrNotValid)
	}
	return nil
}
