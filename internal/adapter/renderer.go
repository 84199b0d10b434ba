package adapter

import (
	"fmt"
	"strconv"

	"github.com/kapu/planning-center-groups-go/internal/constants"
	"github.com/kapu/planning-center-groups-go/internal/domain"
	"go.uber.org/zap"
)

// Outcome is the closed set of states a directive invocation can end in.
type Outcome interface {
	outcome()
}

// ConfigErrorOutcome means credentials were missing and nothing was fetched.
type ConfigErrorOutcome struct{}

// DebugOutcome shows the raw upstream exchange instead of the grid.
// StatusCode is 0 when the request never produced a response.
type DebugOutcome struct {
	StatusCode int
	Body       string
}

// EmptyOutcome covers both an empty list and a failed fetch outside debug mode.
type EmptyOutcome struct{}

type GroupsOutcome struct {
	Groups []domain.RenderableGroup
}

func (ConfigErrorOutcome) outcome() {}
func (DebugOutcome) outcome()       {}
func (EmptyOutcome) outcome()       {}
func (GroupsOutcome) outcome()      {}

// StatusLabel is the status code as shown in debug output.
func (d DebugOutcome) StatusLabel() string {
	if d.StatusCode == 0 {
		return ""
	}
	return strconv.Itoa(d.StatusCode)
}

// GroupRenderer turns outcomes into HTML fragments.
type GroupRenderer struct {
	logger *zap.Logger
}

func NewGroupRenderer(logger *zap.Logger) *GroupRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupRenderer{logger: logger}
}

// Render never fails: a template error degrades to a fixed advisory.
func (r *GroupRenderer) Render(outcome Outcome) string {
	switch o := outcome.(type) {
	case ConfigErrorOutcome:
		return constants.Messages.MissingCredentials
	case EmptyOutcome:
		return constants.Messages.NoGroups
	case DebugOutcome:
		return r.execute("debug", o)
	case GroupsOutcome:
		return r.execute("groups", o)
	default:
		r.logger.Error("Unknown render outcome", zap.String("type", fmt.Sprintf("%T", outcome)))
		return constants.Messages.RenderFailed
	}
}

func (r *GroupRenderer) execute(name string, data any) string {
	html, err := executeFormatterTemplate(name, data)
	if err != nil {
		r.logger.Error("Template execution failed", zap.String("template", name), zap.Error(err))
		return constants.Messages.RenderFailed
	}
	return html
}
