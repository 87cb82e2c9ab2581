package center

import (
	"strconv"
	"strings"
)

// Role identifies one of the fixed responsibilities a resolved
// coordination store must fulfil. The set is closed; callers cannot
// define additional roles.
type Role string

const (
	RoleConfig   Role = "configCenter"
	RoleRegistry Role = "registryCenter"
	RoleMetadata Role = "metadataCenter"
)

func (r Role) String() string {
	return string(r)
}

// Roles returns every required role in initialization order.
func Roles() []Role {
	return []Role{RoleConfig, RoleRegistry, RoleMetadata}
}

// Config describes one named candidate coordination-store backend.
// Roles is a comma-separated tag list; whitespace around tags and
// empty segments are ignored. A Config is immutable once handed to
// the facade.
type Config struct {
	Name  string
	Type  string
	Roles string
	Props map[string]string
}

// Pool maps candidate name to its configuration. Key order carries no
// meaning; resolution is defined over sorted names.
type Pool map[string]Config

// ParseRoles splits a comma-separated role tag list, trimming
// whitespace and dropping empty segments.
func ParseRoles(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// HasRole reports whether the candidate is tagged for role. Matching
// is case-exact on the tag string.
func (c Config) HasRole(role Role) bool {
	for _, tag := range ParseRoles(c.Roles) {
		if tag == role.String() {
			return true
		}
	}
	return false
}

// Prop returns the named property, or def when absent or blank.
func (c Config) Prop(key, def string) string {
	if v, ok := c.Props[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

// BoolProp returns the named property parsed as a bool, or def when
// absent or unparsable.
func (c Config) BoolProp(key string, def bool) bool {
	v, ok := c.Props[key]
	if !ok {
		return def
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return parsed
}
