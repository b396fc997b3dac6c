package video

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/video-summarizer/internal/domain/summarizer"
	apperrors "github.com/yanqian/video-summarizer/pkg/errors"
	"github.com/yanqian/video-summarizer/pkg/metrics"
	"github.com/yanqian/video-summarizer/pkg/util"
)

const testVideoID = "dQw4w9WgXcQ"

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestSummarizeDownloadsAndPersists(t *testing.T) {
	t.Parallel()
	deps := newDeps()
	deps.source.transcript = Transcript{Title: "Never", Language: "en", Text: "[Music] never gonna give you up"}
	svc := deps.service(Config{Model: "gpt-test", ArchivePrefix: "summaries"})

	resp, err := svc.Summarize(context.Background(), Request{Link: "https://youtu.be/" + testVideoID})
	require.NoError(t, err)
	require.False(t, resp.Cached)
	require.Equal(t, testVideoID, resp.VideoID)
	require.Equal(t, "Never", resp.Title)
	require.Equal(t, WatchURL(testVideoID), resp.Link)
	require.Equal(t, []string{"point"}, resp.Summary)
	require.NotNil(t, resp.TokenUsage)
	require.Equal(t, 12, resp.TokenUsage.TotalTokens)

	require.Equal(t, []string{"never gonna give you up"}, deps.summarizer.inputs)
	require.Equal(t, 1, deps.source.calls)

	rec, ok := deps.repo.records[testVideoID]
	require.True(t, ok)
	require.Equal(t, "gpt-test", rec.Model)
	require.Equal(t, fixedNow, rec.CreatedAt)

	cached, ok := deps.cache.items[testVideoID]
	require.True(t, ok)
	require.Equal(t, "never gonna give you up", cached.Text)

	require.Contains(t, deps.archive.objects, "summaries/"+testVideoID+"/20260301T120000Z.json")
}

func TestSummarizeReturnsStoredSummary(t *testing.T) {
	t.Parallel()
	deps := newDeps()
	deps.repo.records[testVideoID] = Record{VideoID: testVideoID, Summary: []string{"stored"}, CreatedAt: fixedNow}
	svc := deps.service(Config{})

	resp, err := svc.Summarize(context.Background(), Request{Link: testVideoID})
	require.NoError(t, err)
	require.True(t, resp.Cached)
	require.Equal(t, []string{"stored"}, resp.Summary)
	require.Nil(t, resp.TokenUsage)
	require.Zero(t, deps.source.calls)
	require.Empty(t, deps.summarizer.inputs)
}

func TestSummarizeRefreshBypassesStoredSummary(t *testing.T) {
	t.Parallel()
	deps := newDeps()
	deps.repo.records[testVideoID] = Record{VideoID: testVideoID, Summary: []string{"stale"}}
	deps.cache.items[testVideoID] = Transcript{VideoID: testVideoID, Text: "cached words"}
	svc := deps.service(Config{})

	resp, err := svc.Summarize(context.Background(), Request{Link: testVideoID, Refresh: true})
	require.NoError(t, err)
	require.False(t, resp.Cached)
	require.Equal(t, []string{"point"}, resp.Summary)
	require.Zero(t, deps.source.calls)
	require.Equal(t, []string{"cached words"}, deps.summarizer.inputs)
	require.Equal(t, []string{"point"}, deps.repo.records[testVideoID].Summary)
}

func TestSummarizeErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		link     string
		setup    func(*testDeps)
		wantCode string
	}{
		{name: "invalid link", link: "https://example.com", wantCode: apperrors.CodeInvalidInput},
		{
			name:     "transcript download fails",
			link:     testVideoID,
			setup:    func(d *testDeps) { d.source.err = errors.New("no captions") },
			wantCode: CodeTranscriptUnavailable,
		},
		{
			name:     "transcript empty after cleaning",
			link:     testVideoID,
			setup:    func(d *testDeps) { d.source.transcript = Transcript{Text: "[Music]"} },
			wantCode: CodeTranscriptUnavailable,
		},
		{
			name: "summarizer fails",
			link: testVideoID,
			setup: func(d *testDeps) {
				d.summarizer.err = apperrors.Wrap(summarizer.CodeValidationExhausted, "exhausted", nil)
			},
			wantCode: summarizer.CodeValidationExhausted,
		},
		{
			name:     "persist fails",
			link:     testVideoID,
			setup:    func(d *testDeps) { d.repo.upsertErr = errors.New("db down") },
			wantCode: CodeStorage,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			deps := newDeps()
			if tc.setup != nil {
				tc.setup(deps)
			}
			_, err := deps.service(Config{}).Summarize(context.Background(), Request{Link: tc.link})
			require.Error(t, err)
			require.Equal(t, tc.wantCode, apperrors.Code(err))
		})
	}
}

func TestSummarizeToleratesSideEffectFailures(t *testing.T) {
	t.Parallel()
	deps := newDeps()
	deps.repo.findErr = errors.New("lookup failed")
	deps.cache.err = errors.New("cache down")
	deps.archive.err = errors.New("bucket missing")
	svc := deps.service(Config{})

	resp, err := svc.Summarize(context.Background(), Request{Link: testVideoID})
	require.NoError(t, err)
	require.Equal(t, []string{"point"}, resp.Summary)
}

func TestGet(t *testing.T) {
	t.Parallel()
	deps := newDeps()
	deps.repo.records[testVideoID] = Record{VideoID: testVideoID, Summary: []string{"stored"}}
	svc := deps.service(Config{})

	resp, err := svc.Get(context.Background(), testVideoID)
	require.NoError(t, err)
	require.True(t, resp.Cached)
	require.Equal(t, []string{"stored"}, resp.Summary)

	_, err = svc.Get(context.Background(), "aaaaaaaaaaa")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = svc.Get(context.Background(), "bad")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestEnqueue(t *testing.T) {
	t.Parallel()
	deps := newDeps()
	svc := deps.service(Config{MaxBatch: 3})

	resp, err := svc.Enqueue(context.Background(), EnqueueRequest{Links: []string{
		testVideoID,
		"https://youtu.be/" + testVideoID,
		"https://www.youtube.com/watch?v=aaaaaaaaaaa",
	}, Refresh: true})
	require.NoError(t, err)
	require.Len(t, resp.Jobs, 2)
	require.Equal(t, testVideoID, resp.Jobs[0].VideoID)
	require.Equal(t, "aaaaaaaaaaa", resp.Jobs[1].VideoID)
	require.NotEqual(t, resp.Jobs[0].JobID, resp.Jobs[1].JobID)

	require.Len(t, deps.queue.jobs, 2)
	require.Equal(t, JobSummarize, deps.queue.jobs[0].name)
	payload := deps.queue.jobs[0].payload.(map[string]any)
	require.Equal(t, testVideoID, payload["videoId"])
	require.Equal(t, true, payload["refresh"])
}

func TestEnqueueRejectsInvalidBatches(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		links []string
	}{
		{name: "empty", links: nil},
		{name: "too many", links: []string{"aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc"}},
		{name: "one invalid", links: []string{testVideoID, "https://example.com/x"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			deps := newDeps()
			_, err := deps.service(Config{MaxBatch: 2}).Enqueue(context.Background(), EnqueueRequest{Links: tc.links})
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
			require.Empty(t, deps.queue.jobs)
		})
	}
}

func TestEnqueueWithoutQueue(t *testing.T) {
	t.Parallel()
	deps := newDeps()
	svc := NewService(Config{}, deps.summarizer, deps.source, deps.cache, deps.repo, nil, nil, discardLogger())
	_, err := svc.Enqueue(context.Background(), EnqueueRequest{Links: []string{testVideoID}})
	require.True(t, apperrors.IsCode(err, CodeQueue))
}

func TestHandleJobRunsSummary(t *testing.T) {
	t.Parallel()
	deps := newDeps()
	svc := deps.service(Config{})

	svc.HandleJob(context.Background(), JobSummarize, map[string]any{"jobId": "j1", "videoId": testVideoID})
	require.Contains(t, deps.repo.records, testVideoID)

	svc.HandleJob(context.Background(), "other.job", map[string]any{"videoId": "aaaaaaaaaaa"})
	svc.HandleJob(context.Background(), JobSummarize, map[string]any{"jobId": "j2"})
	require.Len(t, deps.repo.records, 1)
}

type testDeps struct {
	summarizer *stubSummarizer
	source     *stubSource
	cache      *stubCache
	repo       *stubRepo
	archive    *stubArchive
	queue      *stubQueue
}

func newDeps() *testDeps {
	return &testDeps{
		summarizer: &stubSummarizer{},
		source:     &stubSource{transcript: Transcript{Text: "some words"}},
		cache:      &stubCache{items: map[string]Transcript{}},
		repo:       &stubRepo{records: map[string]Record{}},
		archive:    &stubArchive{objects: map[string][]byte{}},
		queue:      &stubQueue{},
	}
}

func (d *testDeps) service(cfg Config) Service {
	svc := NewService(cfg, d.summarizer, d.source, d.cache, d.repo, d.archive, d.queue, discardLogger())
	svc.(*service).now = util.FixedClock(fixedNow)
	return svc
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubSummarizer struct {
	inputs []string
	err    error
}

func (s *stubSummarizer) Summarize(_ context.Context, transcript string) (summarizer.Result, error) {
	s.inputs = append(s.inputs, transcript)
	if s.err != nil {
		return summarizer.Result{}, s.err
	}
	return summarizer.Result{
		Summary:  []string{"point"},
		Attempts: 1,
		Chunks:   1,
		Usage:    metrics.TokenUsage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12},
	}, nil
}

type stubSource struct {
	transcript Transcript
	err        error
	calls      int
}

func (s *stubSource) Fetch(_ context.Context, _ string) (Transcript, error) {
	s.calls++
	return s.transcript, s.err
}

type stubCache struct {
	items map[string]Transcript
	err   error
}

func (s *stubCache) Get(_ context.Context, id string) (Transcript, bool, error) {
	if s.err != nil {
		return Transcript{}, false, s.err
	}
	t, ok := s.items[id]
	return t, ok, nil
}

func (s *stubCache) Save(_ context.Context, t Transcript, _ time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.items[t.VideoID] = t
	return nil
}

type stubRepo struct {
	records   map[string]Record
	findErr   error
	upsertErr error
}

func (s *stubRepo) Find(_ context.Context, id string) (Record, bool, error) {
	if s.findErr != nil {
		return Record{}, false, s.findErr
	}
	rec, ok := s.records[id]
	return rec, ok, nil
}

func (s *stubRepo) Upsert(_ context.Context, rec Record) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.records[rec.VideoID] = rec
	return nil
}

type stubArchive struct {
	objects map[string][]byte
	err     error
}

func (s *stubArchive) Put(_ context.Context, key string, data []byte, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.objects[key] = data
	return nil
}

type queuedJob struct {
	name    string
	payload any
}

type stubQueue struct {
	mu   sync.Mutex
	jobs []queuedJob
}

func (s *stubQueue) Enqueue(_ context.Context, name string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, queuedJob{name: name, payload: payload})
	return nil
}
