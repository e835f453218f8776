// Package profile holds the per-domain extraction rules consulted before
// the generic price finder.
package profile

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

// SiteProfile lists the extraction rules for one domain, grouped by
// priority class. Rules inside a class are tried in order.
type SiteProfile struct {
	Domain         string   `yaml:"domain"`
	Currency       string   `yaml:"currency,omitempty"`
	DataAttributes []string `yaml:"dataAttributes"`
	Primary        []string `yaml:"primary"`
	HiddenInputs   []string `yaml:"hiddenInputs"`
	Alternative    []string `yaml:"alternative"`
}

// Registry maps domains to profiles. It is built once and only read
// afterwards, so lookups need no locking.
type Registry struct {
	profiles map[string]*SiteProfile
	order    []string
}

type fileFormat struct {
	Profiles []SiteProfile `yaml:"profiles"`
}

// NewRegistry builds a registry from profiles, keeping their order for
// the partial-match scan.
func NewRegistry(profiles ...SiteProfile) (*Registry, error) {
	r := &Registry{profiles: make(map[string]*SiteProfile, len(profiles))}
	for i := range profiles {
		p := profiles[i]
		key := normalizeHost(p.Domain)
		if key == "" {
			return nil, fmt.Errorf("profile %d: empty domain", i)
		}
		if _, exists := r.profiles[key]; exists {
			return nil, fmt.Errorf("profile %s: duplicate domain", key)
		}
		p.Domain = key
		r.profiles[key] = &p
		r.order = append(r.order, key)
	}
	return r, nil
}

// LoadFile reads a YAML document of the form
//
//	profiles:
//	  - domain: example.com
//	    primary: [".price"]
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}

	r, err := NewRegistry(doc.Profiles...)
	if err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate compiles every selector so a typo surfaces at startup rather
// than as a silent miss on every page of that site.
func (r *Registry) Validate() error {
	for _, key := range r.order {
		p := r.profiles[key]
		for _, attr := range p.DataAttributes {
			if strings.TrimSpace(attr) == "" || strings.ContainsAny(attr, " []\"'") {
				return fmt.Errorf("profile %s: invalid data attribute %q", key, attr)
			}
		}
		groups := [][]string{p.Primary, p.HiddenInputs, p.Alternative}
		for _, group := range groups {
			for _, sel := range group {
				if _, err := cascadia.Compile(sel); err != nil {
					return fmt.Errorf("profile %s: invalid selector %q: %w", key, sel, err)
				}
			}
		}
	}
	return nil
}

// Lookup finds the profile for rawURL. An exact domain match wins;
// otherwise the first registered domain that the host contains, or that
// contains the host, is used. This lets "shop.example.com" and
// "example.com" share a profile.
func (r *Registry) Lookup(rawURL string) (*SiteProfile, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, false
	}
	host := normalizeHost(u.Hostname())
	if host == "" {
		return nil, false
	}

	if p, ok := r.profiles[host]; ok {
		return p, true
	}
	for _, key := range r.order {
		if strings.Contains(host, key) || strings.Contains(key, host) {
			return r.profiles[key], true
		}
	}
	return nil, false
}

// Domains returns the registered domain keys in registration order.
func (r *Registry) Domains() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered profiles.
func (r *Registry) Len() int {
	return len(r.order)
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}
