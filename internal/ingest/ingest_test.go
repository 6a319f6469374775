package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/ingest"
	"github.com/hearthledger/hearth/internal/recognition"
)

type stubRecognizer struct {
	results map[string][]candidate.Raw
	errs    map[string]error
	active  int
	maxSeen int
	calls   []string
}

func (s *stubRecognizer) Recognize(_ context.Context, f recognition.File, _ recognition.Hints) ([]candidate.Raw, error) {
	s.active++
	s.maxSeen = max(s.maxSeen, s.active)
	defer func() { s.active-- }()

	s.calls = append(s.calls, f.Name)

	if err := s.errs[f.Name]; err != nil {
		return nil, err
	}

	return s.results[f.Name], nil
}

func files(names ...string) []recognition.File {
	out := make([]recognition.File, len(names))
	for i, n := range names {
		out[i] = recognition.File{Name: n, Kind: recognition.KindImage}
	}

	return out
}

func TestService_Run(t *testing.T) {
	rec := &stubRecognizer{
		results: map[string][]candidate.Raw{
			"a.jpg": {{Description: "Such", Amount: "50000"}, {Description: "Plov", Amount: "50000"}},
			"c.jpg": {{Description: "Taxi", Amount: "12"}},
		},
		errs: map[string]error{"b.jpg": errors.New("503")},
	}

	var seen []ingest.Progress

	svc := ingest.NewService(rec, ingest.Queue{}, nil)
	report, err := svc.Run(context.Background(), files("a.jpg", "b.jpg", "c.jpg", "d.m4a"), recognition.Hints{}, func(p ingest.Progress) {
		seen = append(seen, p)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg", "d.m4a"}, rec.calls)
	assert.Equal(t, 1, rec.maxSeen)
	assert.Len(t, report.Rows, 3)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "b.jpg", report.Failures[0].Name)
	assert.Equal(t, []string{"d.m4a"}, report.Empty)

	require.Len(t, seen, 4)
	assert.Equal(t, ingest.Progress{Current: 2, Total: 4, Name: "b.jpg"}, seen[1])
}

func TestQueue_Delay(t *testing.T) {
	q := ingest.Queue{Delay: 20 * time.Millisecond}

	var starts []time.Time

	task := ingest.Task{Name: "t", Do: func(context.Context) error {
		starts = append(starts, time.Now())
		return nil
	}}

	failures, err := q.Process(context.Background(), []ingest.Task{task, task, task}, nil)
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, starts, 3)

	for i := 1; i < len(starts); i++ {
		assert.GreaterOrEqual(t, starts[i].Sub(starts[i-1]), 20*time.Millisecond)
	}
}

func TestQueue_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var ran int

	tasks := []ingest.Task{
		{Name: "first", Do: func(context.Context) error {
			ran++
			cancel()

			return errors.New("boom")
		}},
		{Name: "second", Do: func(context.Context) error {
			ran++
			return nil
		}},
	}

	failures, err := ingest.Queue{Delay: time.Second}.Process(ctx, tasks, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, ran)
	require.Len(t, failures, 1)
	assert.Equal(t, "first", failures[0].Name)
}
