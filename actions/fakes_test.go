package actions

import (
	"context"
	"sync"

	"github.com/fairspace/mercury"
	"github.com/fairspace/mercury/files"
	"github.com/fairspace/mercury/metadata"
	"github.com/fairspace/mercury/permissions"
	"github.com/fairspace/mercury/state"
)

type fakeFiles struct {
	mu      sync.Mutex
	lists   int
	entries map[string][]files.Entry
	deleted []string
	moved   map[string]string
	copied  map[string]string
	failOn  map[string]error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{
		entries: map[string][]files.Entry{},
		moved:   map[string]string{},
		copied:  map[string]string{},
		failOn:  map[string]error{},
	}
}

func (f *fakeFiles) List(_ context.Context, dir string) ([]files.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if err := f.failOn[dir]; err != nil {
		return nil, err
	}
	return f.entries[dir], nil
}

func (f *fakeFiles) Stat(_ context.Context, p string) (files.Info, error) {
	return files.Info{Entry: files.Entry{Filename: p}}, nil
}

func (f *fakeFiles) CreateDirectory(context.Context, string) error { return nil }

func (f *fakeFiles) Upload(context.Context, string, []files.Upload) error { return nil }

func (f *fakeFiles) Delete(_ context.Context, p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn[p]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, p)
	return nil
}

func (f *fakeFiles) Move(_ context.Context, src, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moved[src] = dst
	return nil
}

func (f *fakeFiles) Copy(_ context.Context, src, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.copied[src] = dst
	return nil
}

type fakeVocabulary struct{ classes []metadata.Class }

func (v fakeVocabulary) Combine(doc metadata.JSONLD, subject string) []metadata.Property {
	return []metadata.Property{{Key: subject, Values: make([]metadata.Value, len(doc))}}
}

func (v fakeVocabulary) Classes() []metadata.Class { return v.classes }

type fakeMetadata struct {
	mu        sync.Mutex
	docs      map[string]metadata.JSONLD
	vocab     fakeVocabulary
	gets      int
	vocabHits int
	updates   []metadata.UpdateMeta
	byTypes   [][]string
}

func newFakeMetadata() *fakeMetadata {
	return &fakeMetadata{docs: map[string]metadata.JSONLD{}}
}

func (m *fakeMetadata) Get(_ context.Context, subject string) (metadata.JSONLD, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	return m.docs[subject], nil
}

func (m *fakeMetadata) Update(_ context.Context, subject, predicate string, values []metadata.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, metadata.UpdateMeta{Subject: subject, Predicate: predicate, Values: values})
	return nil
}

func (m *fakeMetadata) Vocabulary(context.Context) (metadata.Vocabulary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vocabHits++
	return m.vocab, nil
}

func (m *fakeMetadata) MetaVocabulary(context.Context) (metadata.Vocabulary, error) {
	return m.vocab, nil
}

func (m *fakeMetadata) UpdateVocabulary(context.Context, metadata.JSONLD) error { return nil }

func (m *fakeMetadata) EntitiesByType(_ context.Context, typ string) ([]metadata.Entity, error) {
	return []metadata.Entity{{ID: "e1", Type: []string{typ}}}, nil
}

func (m *fakeMetadata) EntitiesByTypes(_ context.Context, types []string) ([]metadata.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byTypes = append(m.byTypes, types)
	out := make([]metadata.Entity, 0, len(types))
	for _, t := range types {
		out = append(out, metadata.Entity{ID: t + "/1", Type: []string{t}})
	}
	return out, nil
}

func (m *fakeMetadata) SubjectByPath(_ context.Context, p string) (string, error) {
	return "http://localhost/iri" + p, nil
}

type fakePermissions struct {
	err error
}

func (p *fakePermissions) List(_ context.Context, resource mercury.Key) ([]permissions.Permission, error) {
	if p.err != nil {
		return nil, p.err
	}
	return []permissions.Permission{{Principal: "u1", Access: permissions.Manage, Resource: resource}}, nil
}

func (p *fakePermissions) Alter(context.Context, string, mercury.Key, permissions.Access) error {
	return p.err
}

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (l *recordingLogger) Debug(string, mercury.Fields) {}
func (l *recordingLogger) Info(string, mercury.Fields)  {}

func (l *recordingLogger) Warn(msg string, _ mercury.Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) Error(msg string, _ mercury.Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func newActions(c Clients) (*Actions, *state.Store, *recordingLogger) {
	st := state.NewStore(mercury.Options{})
	log := &recordingLogger{}
	return New(st, c, Options{Logger: log, Origin: "http://localhost/"}), st, log
}
