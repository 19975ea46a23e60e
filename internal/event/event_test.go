package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/wiki-exporter/internal/model"
)

func TestEncodeAddsDiscriminator(t *testing.T) {
	jobID := uuid.New()
	e := NewJobProgressUpdated(jobID, time.Now(), 25, "Retrieving wiki pages")

	raw, err := Encode(e)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "JobProgressUpdated", fields["event_type"])
	assert.Equal(t, jobID.String(), fields["aggregate_id"])
	assert.Equal(t, float64(25), fields["percentage"])
	assert.Equal(t, "Retrieving wiki pages", fields["message"])
}

func TestEncodeEveryVariant(t *testing.T) {
	jobID := uuid.New()
	now := time.Now()
	file := model.NewExportFile(jobID, model.FormatPDF, "repo_wiki.pdf", jobID.String()+"/repo_wiki.pdf", 42)

	cases := []struct {
		event Event
		want  string
	}{
		{NewJobCreated(jobID, now, "https://github.com/o/r"), "JobCreated"},
		{NewJobStarted(jobID, now), "JobStarted"},
		{NewJobProgressUpdated(jobID, now, 60, "Generating Markdown export"), "JobProgressUpdated"},
		{NewJobCompleted(jobID, now), "JobCompleted"},
		{NewJobFailed(jobID, now, "boom"), "JobFailed"},
		{NewJobDeleted(jobID, now), "JobDeleted"},
		{NewFileCreated(file), "FileCreated"},
		{NewFileDeleted(jobID, file.ID, file.Format, file.Filename), "FileDeleted"},
	}
	for _, tc := range cases {
		raw, err := Encode(tc.event)
		require.NoError(t, err)
		var fields map[string]any
		require.NoError(t, json.Unmarshal(raw, &fields))
		assert.Equal(t, tc.want, fields["event_type"])
		assert.Equal(t, string(tc.event.EventType()), tc.want)
	}
}

func TestDispatcherRoutesByType(t *testing.T) {
	d := NewDispatcher()
	jobID := uuid.New()

	var failed, all []Type
	d.Register(TypeJobFailed, func(_ context.Context, e Event) {
		failed = append(failed, e.EventType())
	})
	d.RegisterAll(func(_ context.Context, e Event) {
		all = append(all, e.EventType())
	})

	require.NoError(t, d.Publish(context.Background(), NewJobStarted(jobID, time.Now())))
	require.NoError(t, d.Publish(context.Background(), NewJobFailed(jobID, time.Now(), "boom")))

	assert.Equal(t, []Type{TypeJobFailed}, failed)
	assert.Equal(t, []Type{TypeJobStarted, TypeJobFailed}, all)
}

func TestRecorderKeepsOrder(t *testing.T) {
	r := NewRecorder()
	jobID := uuid.New()

	require.NoError(t, r.Publish(context.Background(), NewJobCreated(jobID, time.Now(), "https://github.com/o/r")))
	require.NoError(t, r.Publish(context.Background(), NewJobStarted(jobID, time.Now())))

	assert.Equal(t, []Type{TypeJobCreated, TypeJobStarted}, r.Types())
	events := r.Events()
	require.Len(t, events, 2)
	assert.Equal(t, jobID, events[0].Aggregate())
}
