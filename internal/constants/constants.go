package constants

import "time"

var APIConfig = struct {
	PlanningCenterBaseURL string
	GroupsPath            string
	GroupsInclude         string
	DefaultTimeout        time.Duration
	MaxResponseBytes      int64
}{
	PlanningCenterBaseURL: "https://api.planningcenteronline.com",
	GroupsPath:            "/groups/v2/groups",
	GroupsInclude:         "group_tags,group_type",
	DefaultTimeout:        5 * time.Second, // host HTTP client default
	// Larger bodies are rejected; debug output shows the first MaxResponseBytes.
	MaxResponseBytes: 8 << 20,
}

var IncludedTypes = struct {
	GroupTag  string
	GroupType string
}{
	GroupTag:  "GroupTag",
	GroupType: "GroupType",
}

// Option keys used by every settings backend.
var OptionKeys = struct {
	ClientID        string
	ClientSecret    string
	DebugMode       string
	TagFilter       string
	GroupTypeFilter string
}{
	ClientID:        "pcg_client_id",
	ClientSecret:    "pcg_client_secret",
	DebugMode:       "pcg_debug_mode",
	TagFilter:       "pcg_tag_filter",
	GroupTypeFilter: "pcg_group_type_filter",
}

var Shortcode = struct {
	Name               string
	GroupTypeAttribute string
}{
	Name:               "planning_center_groups",
	GroupTypeAttribute: "group_type",
}

var Messages = struct {
	MissingCredentials string
	NoGroups           string
	RenderFailed       string
}{
	MissingCredentials: "<p>Please set your Client ID and Secret in the Planning Center settings.</p>",
	NoGroups:           "<p>No groups found.</p>",
	RenderFailed:       "<p>Groups are unavailable right now.</p>",
}

var RedisConfig = struct {
	OptionsKey   string
	ReadyTimeout time.Duration
}{
	OptionsKey:   "pcg:options",
	ReadyTimeout: 5 * time.Second,
}

var ServerConfig = struct {
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxRenderBody     int64
}{
	ReadHeaderTimeout: 10 * time.Second,
	WriteTimeout:      30 * time.Second,
	IdleTimeout:       120 * time.Second,
	ShutdownTimeout:   10 * time.Second,
	MaxRenderBody:     1 << 20, // 1 MiB of page content
}
