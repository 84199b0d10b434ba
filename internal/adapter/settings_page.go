package adapter

import (
	"github.com/kapu/planning-center-groups-go/internal/constants"
	"github.com/kapu/planning-center-groups-go/internal/domain"
)

// SettingsPage is the view model of the admin settings form.
type SettingsPage struct {
	Action    string
	// CSRFToken is echoed back in a hidden csrf_token field.
	CSRFToken string
	Settings  domain.Settings
	Saved     bool
	Error     string
}

// Keys exposes the option names used as form field names.
func (p SettingsPage) Keys() any {
	return constants.OptionKeys
}

// RenderSettingsPage renders the full admin settings document.
func RenderSettingsPage(page SettingsPage) (string, error) {
	return executeFormatterTemplate("settings", page)
}
