package groups

import (
	"github.com/kapu/planning-center-groups-go/internal/domain"
	"github.com/kapu/planning-center-groups-go/internal/util"
)

// Filter returns the records that survive, in input order. For each record
// the checks run as archived, tag, group type; the first failing check drops
// the record.
func Filter(records []domain.GroupRecord, tags, types domain.Lookup, settings domain.FilterSettings) []domain.GroupRecord {
	result := make([]domain.GroupRecord, 0, len(records))
	for i := range records {
		if Include(&records[i], tags, types, settings) {
			result = append(result, records[i])
		}
	}
	return result
}

// Include reports whether a single record passes every enabled check.
func Include(record *domain.GroupRecord, tags, types domain.Lookup, settings domain.FilterSettings) bool {
	if record.IsArchived() {
		return false
	}
	if settings.TagFilter != "" && !matchesTag(record, tags, settings.TagFilter) {
		return false
	}
	if settings.GroupTypeFilter != "" && !matchesGroupType(record, types, settings.GroupTypeFilter) {
		return false
	}
	return true
}

func matchesTag(record *domain.GroupRecord, tags domain.Lookup, filter string) bool {
	for _, id := range record.TagIDs() {
		if util.ContainsFold(tags.Name(id), filter) {
			return true
		}
	}
	return false
}

func matchesGroupType(record *domain.GroupRecord, types domain.Lookup, filter string) bool {
	return util.ContainsFold(types.Name(record.GroupTypeID()), filter)
}

// Renderables projects filtered records onto cards.
func Renderables(records []domain.GroupRecord) []domain.RenderableGroup {
	cards := make([]domain.RenderableGroup, 0, len(records))
	for i := range records {
		cards = append(cards, records[i].Renderable())
	}
	return cards
}
