package settings

import (
	"context"
	"strconv"

	"github.com/kapu/planning-center-groups-go/internal/constants"
	"github.com/kapu/planning-center-groups-go/internal/domain"
)

// Store persists the plugin options. Load must return a fresh copy so callers
// can treat it as invocation-local.
type Store interface {
	Load(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, s domain.Settings) error
	Close() error
}

// ToOptions flattens settings into the stored option map.
func ToOptions(s domain.Settings) map[string]string {
	debug := ""
	if s.DebugMode {
		debug = "1"
	}
	return map[string]string{
		constants.OptionKeys.ClientID:        s.ClientID,
		constants.OptionKeys.ClientSecret:    s.ClientSecret,
		constants.OptionKeys.DebugMode:       debug,
		constants.OptionKeys.TagFilter:       s.TagFilter,
		constants.OptionKeys.GroupTypeFilter: s.GroupTypeFilter,
	}
}

// FromOptions reads settings from an option map. Missing keys fall back to
// the matching field of defaults.
func FromOptions(options map[string]string, defaults domain.Settings) domain.Settings {
	s := defaults
	if v, ok := options[constants.OptionKeys.ClientID]; ok {
		s.ClientID = v
	}
	if v, ok := options[constants.OptionKeys.ClientSecret]; ok {
		s.ClientSecret = v
	}
	if v, ok := options[constants.OptionKeys.DebugMode]; ok {
		s.DebugMode = ParseFlag(v)
	}
	if v, ok := options[constants.OptionKeys.TagFilter]; ok {
		s.TagFilter = v
	}
	if v, ok := options[constants.OptionKeys.GroupTypeFilter]; ok {
		s.GroupTypeFilter = v
	}
	return s
}

// ParseFlag reads a stored checkbox value. "1", "on" and any strconv true
// value count as set.
func ParseFlag(v string) bool {
	if v == "on" {
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
