package actions

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/fairspace/mercury"
	"github.com/fairspace/mercury/metadata"
	"github.com/fairspace/mercury/state"
)

const genericInfix = "generic"

var errVocabularyPending = errors.New("vocabulary is still loading")

func (a *Actions) metadataClient() (metadata.Client, error) {
	if a.clients.Metadata == nil {
		return nil, ErrNoClient
	}
	return a.clients.Metadata, nil
}

func (a *Actions) fetchMetadataAction(subject string) mercury.PromiseAction {
	return mercury.PromiseAction{
		Kind: mercury.FetchMetadata,
		Key:  mercury.SubjectKey(subject),
		Do: func(ctx context.Context) (any, error) {
			mc, err := a.metadataClient()
			if err != nil {
				return nil, err
			}
			return mc.Get(ctx, subject)
		},
	}
}

func (a *Actions) fetchVocabularyAction() mercury.PromiseAction {
	return mercury.PromiseAction{Kind: mercury.FetchVocabulary, Do: func(ctx context.Context) (any, error) {
		mc, err := a.metadataClient()
		if err != nil {
			return nil, err
		}
		return mc.Vocabulary(ctx)
	}}
}

func (a *Actions) fetchMetadata(ctx context.Context, subject string) (mercury.Result[metadata.JSONLD], error) {
	k := mercury.SubjectKey(subject)
	return ifNeeded(ctx, a, a.fetchMetadataAction(subject), func(s state.AppState) *mercury.Cell[metadata.JSONLD] {
		return s.Metadata.JSONLDBySubject.Get(k)
	})
}

func (a *Actions) fetchVocabulary(ctx context.Context) (mercury.Result[metadata.Vocabulary], error) {
	return ifNeeded(ctx, a, a.fetchVocabularyAction(), func(s state.AppState) *mercury.Cell[metadata.Vocabulary] {
		return s.Metadata.Vocabulary
	})
}

func (a *Actions) FetchMetadataIfNeeded(ctx context.Context, subject string) mercury.Result[metadata.JSONLD] {
	r, err := a.fetchMetadata(ctx, subject)
	return swallow(a, a.fetchMetadataAction(subject), r, err)
}

func (a *Actions) FetchVocabularyIfNeeded(ctx context.Context) mercury.Result[metadata.Vocabulary] {
	r, err := a.fetchVocabulary(ctx)
	return swallow(a, a.fetchVocabularyAction(), r, err)
}

func (a *Actions) FetchMetaVocabularyIfNeeded(ctx context.Context) mercury.Result[metadata.Vocabulary] {
	p := mercury.PromiseAction{Kind: mercury.FetchMetaVocabulary, Do: func(ctx context.Context) (any, error) {
		mc, err := a.metadataClient()
		if err != nil {
			return nil, err
		}
		return mc.MetaVocabulary(ctx)
	}}
	r, err := ifNeeded(ctx, a, p, func(s state.AppState) *mercury.Cell[metadata.Vocabulary] { return s.Metadata.MetaVocabulary })
	return swallow(a, p, r, err)
}

// FetchCombinedMetadataIfNeeded loads the document of subject and the
// vocabulary concurrently (each only when stale) and caches the properties
// the vocabulary derives from them.
func (a *Actions) FetchCombinedMetadataIfNeeded(ctx context.Context, subject string) mercury.Result[[]metadata.Property] {
	k := mercury.SubjectKey(subject)
	p := mercury.PromiseAction{Kind: mercury.CombineMetadata, Key: k, Do: func(ctx context.Context) (any, error) {
		var (
			doc metadata.JSONLD
			voc metadata.Vocabulary
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			r, err := a.fetchMetadata(gctx, subject)
			doc = r.Value
			return err
		})
		g.Go(func() error {
			r, err := a.fetchVocabulary(gctx)
			voc = r.Value
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if voc == nil {
			return nil, errVocabularyPending
		}
		return voc.Combine(doc, subject), nil
	}}
	r, err := ifNeeded(ctx, a, p, func(s state.AppState) *mercury.Cell[[]metadata.Property] {
		return s.Metadata.BySubject.Get(k)
	})
	return swallow(a, p, r, err)
}

func (a *Actions) FetchEntitiesIfNeeded(ctx context.Context, typ string) mercury.Result[[]metadata.Entity] {
	k := mercury.TypeKey(typ)
	p := mercury.PromiseAction{Kind: mercury.FetchEntities, Key: k, Do: func(ctx context.Context) (any, error) {
		mc, err := a.metadataClient()
		if err != nil {
			return nil, err
		}
		return mc.EntitiesByType(ctx, typ)
	}}
	r, err := ifNeeded(ctx, a, p, func(s state.AppState) *mercury.Cell[[]metadata.Entity] {
		return s.Metadata.EntitiesByType.Get(k)
	})
	return swallow(a, p, r, err)
}

// FetchAllEntitiesIfNeeded lists the entities of every class the vocabulary
// declares.
func (a *Actions) FetchAllEntitiesIfNeeded(ctx context.Context) mercury.Result[[]metadata.Entity] {
	p := mercury.PromiseAction{Kind: mercury.FetchAllEntities, Do: func(ctx context.Context) (any, error) {
		mc, err := a.metadataClient()
		if err != nil {
			return nil, err
		}
		voc, err := a.fetchVocabulary(ctx)
		if err != nil {
			return nil, err
		}
		if voc.Value == nil {
			return nil, errVocabularyPending
		}
		return mc.EntitiesByTypes(ctx, metadata.ClassIDs(voc.Value.Classes()))
	}}
	r, err := ifNeeded(ctx, a, p, func(s state.AppState) *mercury.Cell[[]metadata.Entity] { return s.Metadata.AllEntities })
	return swallow(a, p, r, err)
}

func (a *Actions) FetchSubjectByPathIfNeeded(ctx context.Context, p string) mercury.Result[string] {
	k := mercury.PathKey(p)
	pa := mercury.PromiseAction{Kind: mercury.FetchSubjectByPath, Key: k, Do: func(ctx context.Context) (any, error) {
		mc, err := a.metadataClient()
		if err != nil {
			return nil, err
		}
		return mc.SubjectByPath(ctx, string(k))
	}}
	r, err := ifNeeded(ctx, a, pa, func(s state.AppState) *mercury.Cell[string] { return s.Metadata.SubjectByPath.Get(k) })
	return swallow(a, pa, r, err)
}

func (a *Actions) InvalidateMetadata(ctx context.Context, subject string) {
	a.invalidate(ctx, mercury.FetchMetadata, mercury.SubjectKey(subject))
}

// UpdateMetadata replaces the values of predicate on subject. An empty,
// non-nil values deletes the statements.
func (a *Actions) UpdateMetadata(ctx context.Context, subject, predicate string, values []metadata.Value) error {
	m := metadata.UpdateMeta{Subject: subject, Predicate: predicate, Values: values}
	_, err := a.mutate(ctx, mercury.UpdateMetadata, mercury.SubjectKey(subject), m, func(ctx context.Context) (any, error) {
		if subject == "" || predicate == "" || values == nil {
			return nil, ErrNoSubject
		}
		mc, err := a.metadataClient()
		if err != nil {
			return nil, err
		}
		return nil, mc.Update(ctx, subject, predicate, values)
	})
	return err
}

func (a *Actions) UpdateVocabulary(ctx context.Context, doc metadata.JSONLD) error {
	_, err := a.mutate(ctx, mercury.UpdateVocabulary, "", nil, func(ctx context.Context) (any, error) {
		mc, err := a.metadataClient()
		if err != nil {
			return nil, err
		}
		return nil, mc.UpdateVocabulary(ctx, doc)
	})
	return err
}

// CreateMetadataEntity creates an entity of class with the given local id
// and returns its IRI, <origin>/iri/<infix>/<id>. It fails with
// ErrEntityExists when the subject already has statements.
func (a *Actions) CreateMetadataEntity(ctx context.Context, class metadata.Class, id string) (string, error) {
	infix := class.Infix
	if infix == "" {
		a.log.Error("class has no infix", mercury.Fields{"class": class.ID})
		infix = genericInfix
	}
	subject := a.origin + "/iri/" + infix + "/" + id
	m := metadata.EntityMeta{Subject: subject, Type: class.ID}

	_, err := a.mutate(ctx, mercury.CreateMetadataEntity, mercury.SubjectKey(subject), m, func(ctx context.Context) (any, error) {
		mc, err := a.metadataClient()
		if err != nil {
			return nil, err
		}
		existing, err := mc.Get(ctx, subject)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrEntityExists, subject)
		}
		if err := mc.Update(ctx, subject, metadata.TypeURI, []metadata.Value{{ID: class.ID}}); err != nil {
			return nil, err
		}
		return subject, nil
	})
	if err != nil {
		return "", err
	}
	return subject, nil
}
