package domain

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/kapu/planning-center-groups-go/internal/constants"
)

// GroupsDocument is the decoded body of a groups list response.
type GroupsDocument struct {
	Data     []GroupRecord
	Included []IncludedResource
	// HasData is false when the response carried no usable data list.
	HasData bool
	// Skipped counts records dropped because they could not be decoded.
	Skipped int
}

type GroupRecord struct {
	ID            string             `json:"id"`
	Attributes    GroupAttributes    `json:"attributes"`
	Relationships GroupRelationships `json:"relationships"`
	Links         GroupLinks         `json:"links"`
}

type GroupAttributes struct {
	Name        string       `json:"name"`
	ArchivedAt  *string      `json:"archived_at"`
	HeaderImage *HeaderImage `json:"header_image"`
}

type HeaderImage struct {
	Thumbnail *string `json:"thumbnail"`
}

type GroupRelationships struct {
	GroupTags *ToManyRelationship `json:"group_tags"`
	GroupType *ToOneRelationship  `json:"group_type"`
}

type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type ToManyRelationship struct {
	Data []ResourceIdentifier `json:"data"`
}

type ToOneRelationship struct {
	Data *ResourceIdentifier `json:"data"`
}

type GroupLinks struct {
	HTML string `json:"html"`
}

// UnmarshalJSON decodes a record leniently. Only a value that is not a JSON
// object is an error; members of the wrong type decode as empty.
func (g *GroupRecord) UnmarshalJSON(data []byte) error {
	fields, ok := objectFields(data)
	if !ok {
		return errNotObject
	}

	*g = GroupRecord{ID: stringOrEmpty(fields["id"])}

	if attrs, ok := objectFields(fields["attributes"]); ok {
		g.Attributes.Name = stringOrEmpty(attrs["name"])
		g.Attributes.ArchivedAt = archivedAt(attrs["archived_at"])
		if img, ok := objectFields(attrs["header_image"]); ok {
			g.Attributes.HeaderImage = &HeaderImage{}
			if thumb, ok := looseString(img["thumbnail"]); ok {
				g.Attributes.HeaderImage.Thumbnail = &thumb
			}
		}
	}

	if rels, ok := objectFields(fields["relationships"]); ok {
		if tags, ok := objectFields(rels["group_tags"]); ok {
			g.Relationships.GroupTags = &ToManyRelationship{Data: identifierList(tags["data"])}
		}
		if groupType, ok := objectFields(rels["group_type"]); ok {
			g.Relationships.GroupType = &ToOneRelationship{}
			if ref, ok := identifier(groupType["data"]); ok {
				g.Relationships.GroupType.Data = &ref
			}
		}
	}

	if links, ok := objectFields(fields["links"]); ok {
		g.Links.HTML = stringOrEmpty(links["html"])
	}
	return nil
}

var errNotObject = errors.New("group record is not a JSON object")

// archivedAt keeps string timestamps as given and reduces every other type
// to set or unset.
func archivedAt(raw json.RawMessage) *string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return nil
		}
		return &value
	}
	return truthyLiteral(trimmed)
}

func identifier(raw json.RawMessage) (ResourceIdentifier, bool) {
	fields, ok := objectFields(raw)
	if !ok {
		return ResourceIdentifier{}, false
	}
	return ResourceIdentifier{
		Type: stringOrEmpty(fields["type"]),
		ID:   stringOrEmpty(fields["id"]),
	}, true
}

func identifierList(raw json.RawMessage) []ResourceIdentifier {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	refs := make([]ResourceIdentifier, 0, len(items))
	for _, item := range items {
		if ref, ok := identifier(item); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// IsArchived reports whether archived_at holds a non-empty value.
func (g *GroupRecord) IsArchived() bool {
	switch at := g.Attributes.ArchivedAt; {
	case at == nil:
		return false
	case *at == "":
		return false
	default:
		return true
	}
}

// TagIDs returns the related tag ids in response order.
func (g *GroupRecord) TagIDs() []string {
	rel := g.Relationships.GroupTags
	if rel == nil || len(rel.Data) == 0 {
		return nil
	}
	ids := make([]string, 0, len(rel.Data))
	for _, ref := range rel.Data {
		ids = append(ids, ref.ID)
	}
	return ids
}

// GroupTypeID returns the related group type id, or "" when the relationship
// or its data is missing.
func (g *GroupRecord) GroupTypeID() string {
	switch rel := g.Relationships.GroupType; {
	case rel == nil:
		return ""
	case rel.Data == nil:
		return ""
	default:
		return rel.Data.ID
	}
}

// ThumbnailURL returns the header image thumbnail, or "" when absent.
func (g *GroupRecord) ThumbnailURL() string {
	switch img := g.Attributes.HeaderImage; {
	case img == nil:
		return ""
	case img.Thumbnail == nil:
		return ""
	default:
		return *img.Thumbnail
	}
}

// Renderable projects the record onto the fields a card needs.
func (g *GroupRecord) Renderable() RenderableGroup {
	return RenderableGroup{
		Name:         g.Attributes.Name,
		DetailURL:    g.Links.HTML,
		ThumbnailURL: g.ThumbnailURL(),
	}
}

// RenderableGroup is one card of the output grid.
type RenderableGroup struct {
	Name         string
	DetailURL    string
	ThumbnailURL string
}

// HasThumbnail reports whether the card should show an image.
func (r RenderableGroup) HasThumbnail() bool {
	return r.ThumbnailURL != ""
}

type IncludedKind int

const (
	IncludedIgnored IncludedKind = iota
	IncludedGroupTag
	IncludedGroupType
)

func (k IncludedKind) String() string {
	switch k {
	case IncludedGroupTag:
		return constants.IncludedTypes.GroupTag
	case IncludedGroupType:
		return constants.IncludedTypes.GroupType
	default:
		return "ignored"
	}
}

// IncludedResource is a side-loaded resource from the "included" list. Only
// group tags and group types are recognised; everything else is Ignored.
type IncludedResource struct {
	Kind IncludedKind
	Type string
	ID   string
	Name string
}

// UnmarshalJSON tolerates missing or wrong-typed members: ids and types
// decode as "", and unusable attributes degrade to an empty name.
func (r *IncludedResource) UnmarshalJSON(data []byte) error {
	fields, ok := objectFields(data)
	if !ok {
		return errors.New("included resource is not a JSON object")
	}

	resourceType := stringOrEmpty(fields["type"])
	*r = IncludedResource{
		Kind: kindOf(resourceType),
		Type: resourceType,
		ID:   stringOrEmpty(fields["id"]),
	}

	if r.Kind == IncludedIgnored {
		return nil
	}
	if attrs, ok := objectFields(fields["attributes"]); ok {
		r.Name = stringOrEmpty(attrs["name"])
	}
	return nil
}

func kindOf(resourceType string) IncludedKind {
	switch resourceType {
	case constants.IncludedTypes.GroupTag:
		return IncludedGroupTag
	case constants.IncludedTypes.GroupType:
		return IncludedGroupType
	default:
		return IncludedIgnored
	}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
