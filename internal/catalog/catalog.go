// Package catalog declares the static set of manageable content collections
// together with their field order, validation rules, and display metadata.
package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownCollection is returned when a collection key is not registered.
var ErrUnknownCollection = errors.New("catalog: unknown collection")

// Rule validates collected field data for a collection before it is saved.
type Rule func(data map[string]string) error

// Descriptor describes a single manageable collection. Field order is part of
// the conversational protocol: add/edit prompts walk Fields front to back.
type Descriptor struct {
	Key         string
	Name        string
	Icon        string
	Description string

	// Fields lists field names in prompt order.
	Fields []string
	// Required is the subset of Fields that must be non-empty before save.
	Required []string
	// DisplayFields is an ordered fallback list used to pick a record's
	// human-readable name in list previews.
	DisplayFields []string

	Rules []Rule
}

// Registry holds collection descriptors in declaration order.
type Registry struct {
	order []string
	byKey map[string]Descriptor
}

// NewRegistry builds a registry from the given descriptors, preserving order.
func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{
		order: make([]string, 0, len(descriptors)),
		byKey: make(map[string]Descriptor, len(descriptors)),
	}
	for _, d := range descriptors {
		if _, exists := r.byKey[d.Key]; exists {
			continue
		}
		r.order = append(r.order, d.Key)
		r.byKey[d.Key] = d
	}
	return r
}

// Describe returns the descriptor for key.
func (r *Registry) Describe(key string) (Descriptor, error) {
	d, ok := r.byKey[key]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownCollection, key)
	}
	return d, nil
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.byKey[key]
	return ok
}

// All returns every descriptor in declaration order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.byKey[key])
	}
	return out
}

// Default returns the registry with every collection the admin panel manages.
func Default() *Registry {
	return NewRegistry(
		Descriptor{
			Key:           "books",
			Name:          "Books",
			Icon:          "📚",
			Description:   "Manage veterinary books and publications",
			Fields:        []string{"title", "description", "category", "coverImageUrl", "pdfUrl"},
			Required:      []string{"title", "description", "category"},
			DisplayFields: []string{"title"},
		},
		Descriptor{
			Key:           "words",
			Name:          "Dictionary",
			Icon:          "📖",
			Description:   "Manage veterinary dictionary terms",
			Fields:        []string{"name", "kurdish", "arabic", "description"},
			Required:      []string{"name", "kurdish", "arabic", "description"},
			DisplayFields: []string{"name"},
		},
		Descriptor{
			Key:           "diseases",
			Name:          "Diseases",
			Icon:          "🦠",
			Description:   "Manage animal diseases and conditions",
			Fields:        []string{"name", "kurdish", "symptoms", "cause", "control"},
			Required:      []string{"name", "kurdish", "symptoms"},
			DisplayFields: []string{"name"},
		},
		Descriptor{
			Key:           "drugs",
			Name:          "Drugs",
			Icon:          "💊",
			Description:   "Manage veterinary medications",
			Fields:        []string{"name", "usage", "sideEffect", "otherInfo", "class"},
			Required:      []string{"name", "usage"},
			DisplayFields: []string{"name"},
		},
		Descriptor{
			Key:           "tutorialVideos",
			Name:          "Tutorial Videos",
			Icon:          "🎥",
			Description:   "Manage educational videos",
			Fields:        []string{"Title", "VideoID"},
			Required:      []string{"Title", "VideoID"},
			DisplayFields: []string{"Title"},
		},
		Descriptor{
			Key:           "staff",
			Name:          "Staff",
			Icon:          "👥",
			Description:   "Manage staff members",
			Fields:        []string{"name", "job", "description", "photo", "facebook", "instagram", "snapchat", "twitter"},
			Required:      []string{"name", "job"},
			DisplayFields: []string{"name"},
		},
		Descriptor{
			Key:           "questions",
			Name:          "Questions",
			Icon:          "❓",
			Description:   "Manage user questions",
			Fields:        []string{"text", "userName", "userEmail", "likes"},
			Required:      []string{"text"},
			DisplayFields: []string{"text", "userName"},
		},
		Descriptor{
			Key:           "notifications",
			Name:          "Notifications",
			Icon:          "📱",
			Description:   "Manage system notifications",
			Fields:        []string{"title", "body", "imageUrl"},
			Required:      []string{"title", "body"},
			DisplayFields: []string{"title"},
		},
		Descriptor{
			Key:           "users",
			Name:          "Users",
			Icon:          "👤",
			Description:   "Manage application users",
			Fields:        []string{"username", "today_points", "total_points"},
			Required:      []string{"username"},
			DisplayFields: []string{"username"},
		},
		Descriptor{
			Key:           "normalRanges",
			Name:          "Normal Ranges",
			Icon:          "📊",
			Description:   "Manage normal reference ranges",
			Fields:        []string{"name", "unit", "minValue", "maxValue", "species", "category"},
			Required:      []string{"name", "unit", "minValue", "maxValue"},
			DisplayFields: []string{"name"},
			Rules:         []Rule{NumericRange("minValue", "maxValue")},
		},
		Descriptor{
			Key:           "appLinks",
			Name:          "App Links",
			Icon:          "🔗",
			Description:   "Manage application download links",
			Fields:        []string{"url"},
			Required:      []string{"url"},
			DisplayFields: []string{"url"},
		},
	)
}
