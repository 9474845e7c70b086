// Package rconfig resolves ryu's jj-config-backed configuration.
//
// Configuration lives under the "ryu" namespace of jj config (system,
// user, or repo level, however jj itself layers them) and is read with
// `jj config list`. It's exposed to Kong as a [kong.Resolver] so a CLI
// flag tagged `config:"key"` is filled in from "ryu.key" when the flag
// wasn't passed explicitly; flags always win over configuration.
package rconfig

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"go.ryu.dev/ryu/internal/jj"
	"go.ryu.dev/ryu/internal/maputil"
)

const (
	_configTag     = "config"
	_section       = "ryu"
	_sectionPrefix = _section + "."
)

// Config is the resolved "ryu.*" configuration namespace for the
// current workspace.
type Config struct {
	// items maps a bare key (without the "ryu." prefix) to the values
	// jj reported for it, in the order jj reported them.
	items map[string][]string
}

// Load reads every "ryu.*" entry from cl's configuration.
func Load(ctx context.Context, cl jj.Client) (*Config, error) {
	items := make(map[string][]string)
	for entry, err := range cl.ConfigList(ctx, _section) {
		if err != nil {
			return nil, fmt.Errorf("list jj config: %w", err)
		}
		key := strings.ToLower(entry.Key)
		if !strings.HasPrefix(key, _sectionPrefix) {
			// jj's prefix filter is a plain string match, not scoped
			// to a dotted boundary; guard against e.g. "ryuish.foo".
			continue
		}
		name := strings.TrimPrefix(key, _sectionPrefix)
		items[name] = append(items[name], entry.Value)
	}
	return &Config{items: items}, nil
}

// Get returns the last configured value for key, and whether it was
// set at all.
func (c *Config) Get(key string) (string, bool) {
	values := c.items[key]
	if len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}

// Keys returns the sorted set of configured key names.
func (c *Config) Keys() []string {
	keys := maputil.Keys(c.items)
	sort.Strings(keys)
	return keys
}

// Validate satisfies [kong.Resolver]; unknown configuration keys are
// allowed, since a user may be running an older or newer ryu than the
// one that last wrote a key.
func (*Config) Validate(*kong.Application) error { return nil }

// Resolve resolves a single flag's value from configuration, per
// [kong.Resolver]. Only flags tagged with `config:"..."` participate.
func (c *Config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	key := flag.Tag.Get(_configTag)
	if key == "" {
		return nil, nil
	}

	values := c.items[strings.ToLower(key)]
	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return values[0], nil
	default:
		if flag.IsSlice() {
			if flag.Tag.Sep != -1 {
				return kong.JoinEscaped(values, flag.Tag.Sep), nil
			}
			return nil, fmt.Errorf("key %q has multiple values but no separator is defined", key)
		}
		return values[len(values)-1], nil
	}
}
