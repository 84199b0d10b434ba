package embed

import (
	"context"
	stderrors "errors"

	"github.com/kapu/planning-center-groups-go/internal/adapter"
	"github.com/kapu/planning-center-groups-go/internal/constants"
	"github.com/kapu/planning-center-groups-go/internal/domain"
	"github.com/kapu/planning-center-groups-go/internal/groups"
	"github.com/kapu/planning-center-groups-go/internal/service/planningcenter"
	"github.com/kapu/planning-center-groups-go/internal/shortcode"
	"github.com/kapu/planning-center-groups-go/pkg/errors"
	"go.uber.org/zap"
)

// SettingsLoader supplies the stored options for one invocation.
type SettingsLoader interface {
	Load(ctx context.Context) (domain.Settings, error)
}

// GroupsEmbed runs the groups directive: load settings, fetch, resolve,
// filter, render. Nothing is shared between invocations.
type GroupsEmbed struct {
	settings SettingsLoader
	fetcher  planningcenter.GroupsFetcher
	renderer *adapter.GroupRenderer
	logger   *zap.Logger
}

func NewGroupsEmbed(settings SettingsLoader, fetcher planningcenter.GroupsFetcher, renderer *adapter.GroupRenderer, logger *zap.Logger) *GroupsEmbed {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = adapter.NewGroupRenderer(logger)
	}
	return &GroupsEmbed{
		settings: settings,
		fetcher:  fetcher,
		renderer: renderer,
		logger:   logger,
	}
}

func (e *GroupsEmbed) Name() string {
	return constants.Shortcode.Name
}

func (e *GroupsEmbed) Description() string {
	return "Grid of active Planning Center groups, optionally filtered by group_type"
}

// Render implements shortcode.Handler.
func (e *GroupsEmbed) Render(ctx context.Context, attrs map[string]string) string {
	atts := shortcode.Atts(map[string]string{
		constants.Shortcode.GroupTypeAttribute: "",
	}, attrs)
	return e.RenderGroups(ctx, atts[constants.Shortcode.GroupTypeAttribute])
}

// RenderGroups renders the grid with an optional group type override.
func (e *GroupsEmbed) RenderGroups(ctx context.Context, groupTypeOverride string) string {
	return e.renderer.Render(e.Outcome(ctx, groupTypeOverride))
}

// Outcome runs the pipeline up to, but not including, markup generation.
func (e *GroupsEmbed) Outcome(ctx context.Context, groupTypeOverride string) adapter.Outcome {
	stored, err := e.settings.Load(ctx)
	if err != nil {
		e.logger.Error("Failed to load settings", zap.Error(err))
		return adapter.ConfigErrorOutcome{}
	}

	creds := stored.Credentials()
	if !creds.Complete() {
		e.logger.Debug("Planning Center credentials not configured")
		return adapter.ConfigErrorOutcome{}
	}

	filter := stored.FilterSettings(groupTypeOverride)

	resp, err := e.fetcher.FetchGroups(ctx, creds)

	if filter.DebugMode {
		return debugOutcome(resp, err)
	}

	if err != nil {
		e.logger.Warn("Groups fetch failed", zap.Error(err))
		return adapter.EmptyOutcome{}
	}

	doc := resp.Document
	if doc == nil || !doc.HasData {
		return adapter.EmptyOutcome{}
	}

	tags, types := groups.Resolve(doc.Included)
	filtered := groups.Filter(doc.Data, tags, types, filter)

	e.logger.Debug("Groups filtered",
		zap.Int("received", len(doc.Data)),
		zap.Int("rendered", len(filtered)),
		zap.String("tag_filter", filter.TagFilter),
		zap.String("group_type_filter", filter.GroupTypeFilter),
	)

	return adapter.GroupsOutcome{Groups: groups.Renderables(filtered)}
}

// debugOutcome shows whatever raw exchange is available, even when the body
// failed to parse.
func debugOutcome(resp *planningcenter.GroupsResponse, err error) adapter.Outcome {
	if err == nil && resp != nil {
		return adapter.DebugOutcome{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	var transportErr *errors.TransportError
	if stderrors.As(err, &transportErr) {
		return adapter.DebugOutcome{StatusCode: transportErr.StatusCode, Body: transportErr.Body}
	}
	return adapter.DebugOutcome{}
}
