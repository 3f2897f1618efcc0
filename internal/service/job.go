package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"hub3-slips/pkg/cache/redis"
)

var ErrJobNotFound = errors.New("job not found")

// StatusStore is the key/value store job statuses live in.
type StatusStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	SAdd(ctx context.Context, key string, members ...any) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SRem(ctx context.Context, key string, members ...any) error
}

const (
	JobTypeSlips = "slips"

	StageQueued     = "queued"
	StageGenerating = "generating"
	StageUploading  = "uploading"
	StageReady      = "ready"
	StageFailed     = "failed"

	jobTTL = 2 * time.Hour
)

type JobStatus struct {
	Key      string         `json:"key"`
	Type     string         `json:"type"`
	UserID   int64          `json:"user_id"`
	Filters  map[string]any `json:"filters"`
	Progress float64        `json:"progress"`
	Stage    string         `json:"stage"`
	Total    int            `json:"total"`
	Failed   int            `json:"failed"`
	FileURL  *string        `json:"file_url"`
	FileName string         `json:"file_name,omitempty"`
	Error    string         `json:"error,omitempty"`
	Created  time.Time      `json:"created_at"`
}

// JobStore keeps job statuses under their key plus an index set of all keys.
type JobStore struct {
	store  StatusStore
	setKey string
	ttl    time.Duration
}

func NewJobStore(store StatusStore, prefix string) *JobStore {
	if prefix == "" {
		prefix = "slip_jobs"
	}
	return &JobStore{
		store:  store,
		setKey: prefix + ":ids",
		ttl:    jobTTL,
	}
}

func (j *JobStore) Save(ctx context.Context, st *JobStatus) error {
	if j == nil || j.store == nil {
		return nil
	}

	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := j.store.Set(ctx, st.Key, string(data), j.ttl); err != nil {
		return fmt.Errorf("save job %s: %w", st.Key, err)
	}
	return j.store.SAdd(ctx, j.setKey, st.Key)
}

func (j *JobStore) Load(ctx context.Context, key string) (*JobStatus, error) {
	if j == nil || j.store == nil {
		return nil, errors.New("job store not configured")
	}

	data, err := j.store.Get(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("load job %s: %w", key, err)
	}

	var st JobStatus
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, fmt.Errorf("failed to parse job status: %w", err)
	}
	return &st, nil
}

// List returns every live job. Keys whose status has expired are dropped
// from the index.
func (j *JobStore) List(ctx context.Context) ([]JobStatus, error) {
	if j == nil || j.store == nil {
		return nil, errors.New("job store not configured")
	}

	keys, err := j.store.SMembers(ctx, j.setKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get job keys: %w", err)
	}

	var (
		out     []JobStatus
		expired []any
	)
	for _, key := range keys {
		st, err := j.Load(ctx, key)
		if errors.Is(err, ErrJobNotFound) {
			expired = append(expired, key)
			continue
		}
		if err != nil {
			continue
		}
		out = append(out, *st)
	}

	if len(expired) > 0 {
		_ = j.store.SRem(ctx, j.setKey, expired...)
	}
	return out, nil
}

// JobView is a job status as shown to its owner.
type JobView struct {
	Key      string         `json:"key"`
	Type     string         `json:"type"`
	UserID   int64          `json:"user_id"`
	Progress float64        `json:"progress"`
	Stage    string         `json:"stage"`
	Total    int            `json:"total"`
	Failed   int            `json:"failed"`
	FileURL  *string        `json:"file_url"`
	Error    string         `json:"error,omitempty"`
	Filters  map[string]any `json:"filters"`
	Created  string         `json:"created_at"`
}

type JobService struct {
	jobs *JobStore
	now  func() time.Time
}

func NewJobService(jobs *JobStore) *JobService {
	return &JobService{jobs: jobs, now: time.Now}
}

func (s *JobService) view(st JobStatus) JobView {
	return JobView{
		Key:      st.Key,
		Type:     st.Type,
		UserID:   st.UserID,
		Progress: st.Progress,
		Stage:    st.Stage,
		Total:    st.Total,
		Failed:   st.Failed,
		FileURL:  st.FileURL,
		Error:    st.Error,
		Filters:  st.Filters,
		Created:  humanizeHrAgo(st.Created, s.now()),
	}
}

// GetJobs lists the user's jobs, newest first.
func (s *JobService) GetJobs(ctx context.Context, userID int64) ([]JobView, error) {
	all, err := s.jobs.List(ctx)
	if err != nil {
		return nil, err
	}

	var statuses []JobStatus
	for _, st := range all {
		if st.UserID == userID {
			statuses = append(statuses, st)
		}
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Created.After(statuses[j].Created)
	})

	views := make([]JobView, 0, len(statuses))
	for _, st := range statuses {
		views = append(views, s.view(st))
	}
	return views, nil
}

func (s *JobService) GetJob(ctx context.Context, jobID string, userID int64) (*JobView, error) {
	st, err := s.jobs.Load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if st.UserID != userID {
		return nil, ErrJobNotFound
	}

	v := s.view(*st)
	return &v, nil
}

func humanizeHrAgo(t, now time.Time) string {
	if t.After(now) {
		return "upravo sada"
	}

	minutes := int(now.Sub(t).Minutes())
	if minutes < 1 {
		return "upravo sada"
	}
	if minutes < 60 {
		return fmt.Sprintf("prije %d %s", minutes, hrPlural(minutes, "minutu", "minute", "minuta"))
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("prije %d %s", hours, hrPlural(hours, "sat", "sata", "sati"))
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("prije %d %s", days, hrPlural(days, "dan", "dana", "dana"))
	}
	return t.Format("02.01.2006. 15:04")
}

func hrPlural(n int, one, few, many string) string {
	n = n % 100
	if n >= 11 && n <= 14 {
		return many
	}
	switch n % 10 {
	case 1:
		return one
	case 2, 3, 4:
		return few
	default:
		return many
	}
}
