// Package metadata caches linked-data documents, the vocabulary, entity
// lists and the subject IRIs of paths.
package metadata

import "context"

const (
	TypeURI       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	ClassInfixURI = "http://fairspace.io/ontology#classInfix"
)

// JSONLD is an expanded JSON-LD document.
type JSONLD []map[string]any

// Entity is the minimal record of a typed subject.
type Entity struct {
	ID   string   `json:"@id" cbor:"id" msgpack:"id"`
	Type []string `json:"@type" cbor:"type" msgpack:"type"`
}

// Value is one object of a statement: either a resource (ID) or a literal.
type Value struct {
	ID    string `json:"id,omitempty"`
	Value any    `json:"value,omitempty"`
	Label string `json:"label,omitempty"`
}

// Property is a predicate of a subject with its values, as rendered by forms.
type Property struct {
	Key      string  `json:"key"`
	Label    string  `json:"label"`
	Values   []Value `json:"values"`
	Editable bool    `json:"editable"`
}

// Class is a vocabulary class users can create entities of.
type Class struct {
	ID    string
	Label string
	Infix string // path segment used in IRIs of new entities
}

// Vocabulary interprets documents against the workspace shapes.
type Vocabulary interface {
	Combine(doc JSONLD, subject string) []Property
	Classes() []Class
}

// Client is the metadata REST collaborator.
type Client interface {
	Get(ctx context.Context, subject string) (JSONLD, error)
	Update(ctx context.Context, subject, predicate string, values []Value) error
	Vocabulary(ctx context.Context) (Vocabulary, error)
	MetaVocabulary(ctx context.Context) (Vocabulary, error)
	UpdateVocabulary(ctx context.Context, doc JSONLD) error
	EntitiesByType(ctx context.Context, typ string) ([]Entity, error)
	EntitiesByTypes(ctx context.Context, types []string) ([]Entity, error)
	SubjectByPath(ctx context.Context, path string) (string, error)
}

// UpdateMeta accompanies UPDATE_METADATA.
type UpdateMeta struct {
	Subject   string
	Predicate string
	Values    []Value
}

// EntityMeta accompanies CREATE_METADATA_ENTITY.
type EntityMeta struct {
	Subject string
	Type    string
}

// ClassIDs returns the IRIs of cs.
func ClassIDs(cs []Class) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}
