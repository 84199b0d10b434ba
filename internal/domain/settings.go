package domain

import "strings"

// Settings is the stored option set read once per directive invocation.
type Settings struct {
	ClientID        string
	ClientSecret    string
	DebugMode       bool
	TagFilter       string
	GroupTypeFilter string
}

type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Complete reports whether both halves of the Basic auth pair are present.
func (c Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Credentials returns the trimmed client id and secret.
func (s Settings) Credentials() Credentials {
	return Credentials{
		ClientID:     strings.TrimSpace(s.ClientID),
		ClientSecret: strings.TrimSpace(s.ClientSecret),
	}
}

// FilterSettings applies a per-use group type override. An empty override
// keeps the stored default.
func (s Settings) FilterSettings(groupTypeOverride string) FilterSettings {
	groupType := s.GroupTypeFilter
	if groupTypeOverride != "" {
		groupType = groupTypeOverride
	}
	return FilterSettings{
		TagFilter:       s.TagFilter,
		GroupTypeFilter: groupType,
		DebugMode:       s.DebugMode,
	}
}

// FilterSettings drives the group filter. Empty filters are disabled.
type FilterSettings struct {
	TagFilter       string
	GroupTypeFilter string
	DebugMode       bool
}

// Lookup maps an included resource id to its name.
type Lookup map[string]string

// Name returns the resolved name, or "" when id is unknown.
func (l Lookup) Name(id string) string {
	if l == nil {
		return ""
	}
	return l[id]
}
