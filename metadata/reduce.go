package metadata

import "github.com/fairspace/mercury"

// State is the metadata part of the cache.
type State struct {
	JSONLDBySubject mercury.Cells[JSONLD]
	Vocabulary      *mercury.Cell[Vocabulary]
	MetaVocabulary  *mercury.Cell[Vocabulary]
	EntitiesByType  mercury.Cells[[]Entity]
	AllEntities     *mercury.Cell[[]Entity]
	SubjectByPath   mercury.Cells[string]
	// BySubject holds the document of a subject combined with the vocabulary.
	BySubject mercury.Cells[[]Property]
}

var (
	jsonLDBase      = mercury.NewKeyedReducer[JSONLD](mercury.FetchMetadata, nil)
	vocabularyBase  = mercury.NewCellReducer[Vocabulary](mercury.FetchVocabulary)
	metaVocabBase   = mercury.NewCellReducer[Vocabulary](mercury.FetchMetaVocabulary)
	entitiesBase    = mercury.NewKeyedReducer[[]Entity](mercury.FetchEntities, nil)
	allEntitiesBase = mercury.NewCellReducer[[]Entity](mercury.FetchAllEntities)
	subjectBase     = mercury.NewKeyedReducer[string](mercury.FetchSubjectByPath, nil)
	combinedBase    = mercury.NewKeyedReducer[[]Property](mercury.CombineMetadata, nil)
)

// Reduce applies the fetch transitions of every metadata slice, then the
// invalidation overlays of metadata mutations.
func Reduce(s State, a mercury.Action) State {
	s.JSONLDBySubject = jsonLDBase(s.JSONLDBySubject, a)
	s.Vocabulary = vocabularyBase(s.Vocabulary, a)
	s.MetaVocabulary = metaVocabBase(s.MetaVocabulary, a)
	s.EntitiesByType = entitiesBase(s.EntitiesByType, a)
	s.AllEntities = allEntitiesBase(s.AllEntities, a)
	s.SubjectByPath = subjectBase(s.SubjectByPath, a)
	s.BySubject = combinedBase(s.BySubject, a)

	switch {
	case a.Is(mercury.FetchMetadata, mercury.PhaseInvalidated):
		s.BySubject = invalidateKey(s.BySubject, a.Key)
	case a.Is(mercury.UpdateMetadata, mercury.PhaseFulfilled):
		if m, ok := a.Meta.(UpdateMeta); ok {
			k := mercury.SubjectKey(m.Subject)
			s.JSONLDBySubject = invalidateKey(s.JSONLDBySubject, k)
			s.BySubject = invalidateKey(s.BySubject, k)
		}
	case a.Is(mercury.UpdateVocabulary, mercury.PhaseFulfilled):
		s.Vocabulary = mercury.MarkInvalidated(s.Vocabulary)
		s.BySubject = s.BySubject.InvalidateWhere(func(mercury.Key) bool { return true })
	case a.Is(mercury.CreateMetadataEntity, mercury.PhaseFulfilled):
		if m, ok := a.Meta.(EntityMeta); ok {
			s = entityCreated(s, m)
		}
	}
	return s
}

// entityCreated appends a minimal record of the new subject to the cached
// entity lists so it shows up before the lists are refetched.
func entityCreated(s State, m EntityMeta) State {
	e := Entity{ID: m.Subject, Type: []string{m.Type}}
	if s.AllEntities != nil {
		next := *s.AllEntities
		next.Data = appendEntity(next.Data, e)
		next.Loaded = true
		next.Invalidated = true
		s.AllEntities = &next
	}
	k := mercury.TypeKey(m.Type)
	if c, ok := s.EntitiesByType[k]; ok {
		c.Data = appendEntity(c.Data, e)
		c.Loaded = true
		c.Invalidated = true
		s.EntitiesByType = s.EntitiesByType.With(k, c)
	}
	return s
}

func appendEntity(list []Entity, e Entity) []Entity {
	out := make([]Entity, 0, len(list)+1)
	out = append(out, list...)
	return append(out, e)
}

func invalidateKey[T any](cs mercury.Cells[T], k mercury.Key) mercury.Cells[T] {
	return cs.InvalidateWhere(func(kk mercury.Key) bool { return kk == k })
}
