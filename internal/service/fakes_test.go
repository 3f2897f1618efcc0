package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sort"
	"strings"
	"sync"
	"time"

	"hub3-slips/internal/domain"
	"hub3-slips/internal/repository"
	"hub3-slips/pkg/cache/redis"
)

type memStore struct {
	mu   sync.Mutex
	kv   map[string]string
	sets map[string]map[string]struct{}
}

func newMemStore() *memStore {
	return &memStore{
		kv:   map[string]string{},
		sets: map[string]map[string]struct{}{},
	}
}

func (m *memStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = fmt.Sprint(value)
	return nil
}

func (m *memStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.kv[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memStore) SAdd(ctx context.Context, key string, members ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sets[key] == nil {
		m.sets[key] = map[string]struct{}{}
	}
	for _, mem := range members {
		m.sets[key][fmt.Sprint(mem)] = struct{}{}
	}
	return nil
}

func (m *memStore) SMembers(ctx context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for mem := range m.sets[key] {
		out = append(out, mem)
	}
	return out, nil
}

func (m *memStore) SRem(ctx context.Context, key string, members ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mem := range members {
		delete(m.sets[key], fmt.Sprint(mem))
	}
	return nil
}

type fakeContacts struct {
	byID    map[int64]domain.Contact
	order   []int64
	listErr error
}

func newFakeContacts(cs ...domain.Contact) *fakeContacts {
	f := &fakeContacts{byID: map[int64]domain.Contact{}}
	for _, c := range cs {
		f.byID[c.ID] = c
		f.order = append(f.order, c.ID)
	}
	return f
}

func (f *fakeContacts) Get(ctx context.Context, id int64) (*domain.Contact, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("contact %d: %w", id, repository.ErrNotFound)
	}
	return &c, nil
}

func (f *fakeContacts) List(ctx context.Context, filter repository.ContactsFilter) ([]domain.Contact, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.matching(filter), nil
}

func (f *fakeContacts) matching(filter repository.ContactsFilter) []domain.Contact {
	var out []domain.Contact
	for _, id := range f.order {
		c := f.byID[id]
		if filter.MemberOnly && !c.IsMember {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (f *fakeContacts) HasMoreThan(ctx context.Context, limit int64, filter repository.ContactsFilter) (bool, error) {
	return int64(len(f.matching(filter))) > limit, nil
}

type fakeOrganizations map[int64]domain.Organization

func (f fakeOrganizations) Get(ctx context.Context, id int64) (*domain.Organization, error) {
	o, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("organization %d: %w", id, repository.ErrNotFound)
	}
	return &o, nil
}

type fakeTemplates map[int64]domain.PaymentTemplate

func (f fakeTemplates) Get(ctx context.Context, id int64) (*domain.PaymentTemplate, error) {
	t, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("payment template %d: %w", id, repository.ErrNotFound)
	}
	return &t, nil
}

func (f fakeTemplates) List(ctx context.Context) ([]domain.PaymentTemplate, error) {
	out := make([]domain.PaymentTemplate, 0, len(f))
	for _, t := range f {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memFiles struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (m *memFiles) Save(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	name := fmt.Sprintf("%d_%s", len(m.files)+1, fileName)
	m.files[name] = data
	return name, nil
}

func (m *memFiles) URL(ctx context.Context, name string) (string, error) {
	return "/files/" + name, nil
}

type event struct {
	kind     string
	jobID    string
	progress float64
	stage    string
	message  string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (r *recordingNotifier) add(e event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingNotifier) NotifyJobProgress(ctx context.Context, userID int64, jobID string, progress float64, stage string) error {
	r.add(event{kind: "progress", jobID: jobID, progress: progress, stage: stage})
	return nil
}

func (r *recordingNotifier) NotifyJobComplete(ctx context.Context, userID int64, jobID, url, filename string) error {
	r.add(event{kind: "complete", jobID: jobID, message: url})
	return nil
}

func (r *recordingNotifier) NotifyJobFailed(ctx context.Context, userID int64, jobID, errMsg string) error {
	r.add(event{kind: "failed", jobID: jobID, message: errMsg})
	return nil
}

func (r *recordingNotifier) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.kind)
	}
	return out
}

// flakyBarcodes renders a fixed image and fails for payloads containing
// failOn.
type flakyBarcodes struct {
	failOn string
}

var errBarcode = errors.New("symbol too large")

var tinyPNG = func() []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 4)))
	return buf.Bytes()
}()

func (f flakyBarcodes) RenderPNG(payload string) ([]byte, error) {
	if f.failOn != "" && strings.Contains(payload, f.failOn) {
		return nil, errBarcode
	}
	return tinyPNG, nil
}
