package server

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/planning-center-groups-go/internal/adapter"
	"github.com/kapu/planning-center-groups-go/internal/constants"
	"github.com/kapu/planning-center-groups-go/internal/domain"
	"github.com/kapu/planning-center-groups-go/internal/service/settings"
	"github.com/kapu/planning-center-groups-go/pkg/errors"
)

const (
	adminPrefix  = "/admin"
	settingsPath = adminPrefix + "/settings"
)

func (s *Server) handleSettingsForm(w http.ResponseWriter, r *http.Request) {
	token, err := csrfToken(w, r)
	if err != nil {
		s.logger.Error("Failed to issue form token", zap.Error(err))
		http.Error(w, "settings page unavailable", http.StatusInternalServerError)
		return
	}

	current, err := s.deps.Settings.Load(r.Context())
	page := adapter.SettingsPage{
		Action:    settingsPath,
		CSRFToken: token,
		Settings:  current,
		Saved:     r.URL.Query().Get("saved") == "1",
	}
	if err != nil {
		s.logger.Error("Failed to load settings for admin page", zap.Error(err))
		page.Error = "Stored settings could not be loaded."
	}
	s.writeSettingsPage(w, http.StatusOK, page)
}

func (s *Server) handleSettingsSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if !validCSRF(r) {
		s.logger.Warn("Rejected settings post with a missing or stale form token",
			zap.String("remote_addr", r.RemoteAddr),
		)
		http.Error(w, "invalid form token", http.StatusForbidden)
		return
	}
	token := r.PostForm.Get(csrfFieldName)

	updated := settingsFromForm(r)
	if err := validateSettings(updated); err != nil {
		s.writeSettingsPage(w, http.StatusBadRequest, adapter.SettingsPage{
			Action:    settingsPath,
			CSRFToken: token,
			Settings:  updated,
			Error:     err.Message,
		})
		return
	}
	if err := s.deps.Settings.Save(r.Context(), updated); err != nil {
		s.logger.Error("Failed to save settings", zap.Error(err))
		s.writeSettingsPage(w, http.StatusInternalServerError, adapter.SettingsPage{
			Action:    settingsPath,
			CSRFToken: token,
			Settings:  updated,
			Error:     "Settings could not be saved.",
		})
		return
	}

	s.logger.Info("Settings saved",
		zap.Bool("credentials_set", updated.Credentials().Complete()),
		zap.Bool("debug_mode", updated.DebugMode),
		zap.String("tag_filter", updated.TagFilter),
		zap.String("group_type_filter", updated.GroupTypeFilter),
	)
	http.Redirect(w, r, settingsPath+"?saved=1", http.StatusSeeOther)
}

// settingsFromForm mirrors a browser form post: an unchecked checkbox is
// simply absent.
func settingsFromForm(r *http.Request) domain.Settings {
	return domain.Settings{
		ClientID:        strings.TrimSpace(r.PostForm.Get(constants.OptionKeys.ClientID)),
		ClientSecret:    strings.TrimSpace(r.PostForm.Get(constants.OptionKeys.ClientSecret)),
		DebugMode:       settings.ParseFlag(r.PostForm.Get(constants.OptionKeys.DebugMode)),
		TagFilter:       r.PostForm.Get(constants.OptionKeys.TagFilter),
		GroupTypeFilter: r.PostForm.Get(constants.OptionKeys.GroupTypeFilter),
	}
}

// validateSettings rejects a half-entered credential pair. Clearing both is
// allowed and brings back the missing-credentials notice.
func validateSettings(updated domain.Settings) *errors.ValidationError {
	creds := updated.Credentials()
	switch {
	case creds.ClientID == "" && creds.ClientSecret != "":
		return errors.NewValidationError("Client ID is required when a Secret is set.", constants.OptionKeys.ClientID, "")
	case creds.ClientID != "" && creds.ClientSecret == "":
		return errors.NewValidationError("Secret is required when a Client ID is set.", constants.OptionKeys.ClientSecret, "")
	}
	return nil
}

func (s *Server) writeSettingsPage(w http.ResponseWriter, status int, page adapter.SettingsPage) {
	html, err := adapter.RenderSettingsPage(page)
	if err != nil {
		s.logger.Error("Failed to render settings page", zap.Error(err))
		http.Error(w, "settings page unavailable", http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, html)
}
