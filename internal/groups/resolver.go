package groups

import "github.com/kapu/planning-center-groups-go/internal/domain"

// Resolve builds the tag and group type lookups from the included resources
// in a single pass. Unrecognised kinds are ignored; duplicate ids keep the
// last name seen.
func Resolve(included []domain.IncludedResource) (tags, types domain.Lookup) {
	tags = make(domain.Lookup)
	types = make(domain.Lookup)

	for _, item := range included {
		switch item.Kind {
		case domain.IncludedGroupTag:
			tags[item.ID] = item.Name
		case domain.IncludedGroupType:
			types[item.ID] = item.Name
		case domain.IncludedIgnored:
		}
	}

	return tags, types
}
