package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/phrsdk"
	"github.com/allisson/phrsdk/internal/fhir"
	"github.com/allisson/phrsdk/internal/fhir/fhir4"
)

var pdfPayload = []byte("%PDF-1.4 lab results")

func dataRecord(id string) *phrsdk.Record {
	return &phrsdk.Record{
		ID:          id,
		Resource:    phrsdk.NewDataResource([]byte("hello")),
		Annotations: []string{"steps"},
		Meta:        phrsdk.RecordMeta{CreatedDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		Status:      phrsdk.StatusActive,
	}
}

func documentRecord(id string, withData bool) *phrsdk.Record {
	att := fhir.Attachment{ID: "doc-1", ContentType: "application/pdf", Title: "results"}
	if withData {
		att.Data = pdfPayload
	}
	doc := &fhir4.DocumentReference{Status: "current", Content: []fhir4.DocumentReferenceContent{{Attachment: att}}}
	return &phrsdk.Record{
		ID:          id,
		Resource:    phrsdk.NewFhir4Resource(doc),
		Annotations: []string{"lab"},
		Meta: phrsdk.RecordMeta{
			CreatedDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			UpdatedDate: time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC),
		},
		Status: phrsdk.StatusActive,
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunCreateRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("fhir4-from-file", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", `{"resourceType":"DocumentReference","status":"current"}`)
		client := &mockRecordClient{}
		isDocument := mock.MatchedBy(func(r phrsdk.Resource) bool {
			return r.Kind == phrsdk.KindFhir4 && r.Fhir.ResourceType() == "DocumentReference"
		})
		isDate := mock.MatchedBy(func(d *time.Time) bool {
			return d != nil && d.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
		})
		client.On("CreateRecord", ctx, isDocument, []string{"lab"}, isDate).
			Return(documentRecord("rec-1", false), nil)

		var out bytes.Buffer
		err := RunCreateRecord(ctx, client, testLogger, ResourceInput{Path: path, Kind: "fhir4"},
			[]string{"lab"}, "2024-03-01", FormatText, IOTuple{Writer: &out})

		require.NoError(t, err)
		require.Contains(t, out.String(), "Record rec-1")
		require.Contains(t, out.String(), "fhir4 (DocumentReference)")
		require.Contains(t, out.String(), "Annotations: lab")
		require.Contains(t, out.String(), "Attachment:  doc-1 (application/pdf")
		client.AssertExpectations(t)
	})

	t.Run("data-from-stdin", func(t *testing.T) {
		client := &mockRecordClient{}
		isData := mock.MatchedBy(func(r phrsdk.Resource) bool {
			return r.Kind == phrsdk.KindData && string(r.Data) == "hello"
		})
		client.On("CreateRecord", ctx, isData, []string(nil), (*time.Time)(nil)).
			Return(dataRecord("rec-2"), nil)

		var out bytes.Buffer
		err := RunCreateRecord(ctx, client, testLogger, ResourceInput{Path: "-", Kind: "data"},
			nil, "", FormatJSON, IOTuple{Reader: strings.NewReader("hello"), Writer: &out})

		require.NoError(t, err)
		require.Contains(t, out.String(), `"id": "rec-2"`)
		require.Contains(t, out.String(), `"data": "aGVsbG8="`)
		client.AssertExpectations(t)
	})

	t.Run("invalid-date", func(t *testing.T) {
		path := writeTempFile(t, "data.bin", "hello")
		err := RunCreateRecord(ctx, &mockRecordClient{}, testLogger, ResourceInput{Path: path, Kind: "data"},
			nil, "01/03/2024", FormatText, IOTuple{Writer: &bytes.Buffer{}})

		require.Error(t, err)
		require.Contains(t, err.Error(), "expected YYYY-MM-DD")
	})

	t.Run("invalid-kind", func(t *testing.T) {
		path := writeTempFile(t, "data.bin", "hello")
		err := RunCreateRecord(ctx, &mockRecordClient{}, testLogger, ResourceInput{Path: path, Kind: "fhir5"},
			nil, "", FormatText, IOTuple{Writer: &bytes.Buffer{}})

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid kind")
	})

	t.Run("invalid-fhir", func(t *testing.T) {
		path := writeTempFile(t, "doc.json", `{"status":"current"}`)
		err := RunCreateRecord(ctx, &mockRecordClient{}, testLogger, ResourceInput{Path: path, Kind: "fhir3"},
			nil, "", FormatText, IOTuple{Writer: &bytes.Buffer{}})

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to parse FHIR STU3 resource")
	})

	t.Run("missing-file", func(t *testing.T) {
		err := RunCreateRecord(ctx, &mockRecordClient{}, testLogger,
			ResourceInput{Path: filepath.Join(t.TempDir(), "missing.json")},
			nil, "", FormatText, IOTuple{Writer: &bytes.Buffer{}})

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to read")
	})

	t.Run("client-error", func(t *testing.T) {
		path := writeTempFile(t, "data.bin", "hello")
		client := &mockRecordClient{}
		client.On("CreateRecord", ctx, mock.Anything, []string(nil), (*time.Time)(nil)).
			Return(nil, errors.New("validation: too many tags"))

		err := RunCreateRecord(ctx, client, testLogger, ResourceInput{Path: path, Kind: "data"},
			nil, "", FormatText, IOTuple{Writer: &bytes.Buffer{}})

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create record")
	})
}

func TestRunUpdateRecord(t *testing.T) {
	ctx := context.Background()
	path := writeTempFile(t, "doc.json", `{"resourceType":"DocumentReference","status":"superseded"}`)

	client := &mockRecordClient{}
	client.On("UpdateRecord", ctx, "rec-1", mock.Anything, []string{"final"}).
		Return(documentRecord("rec-1", false), nil)

	var out bytes.Buffer
	err := RunUpdateRecord(ctx, client, testLogger, "rec-1", ResourceInput{Path: path},
		[]string{"final"}, FormatYAML, IOTuple{Writer: &out})

	require.NoError(t, err)
	require.Contains(t, out.String(), "id: rec-1")
	require.Contains(t, out.String(), "resource_type: DocumentReference")
	client.AssertExpectations(t)
}

func TestRunFetchRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("single", func(t *testing.T) {
		client := &mockRecordClient{}
		client.On("FetchRecord", ctx, "rec-1").Return(documentRecord("rec-1", false), nil)

		var out bytes.Buffer
		err := RunFetchRecords(ctx, client, testLogger, &out, []string{"rec-1"}, FormatJSON)

		require.NoError(t, err)
		require.Contains(t, out.String(), `"resource_type": "DocumentReference"`)
		require.Contains(t, out.String(), `"updated_date": "2024-03-02T10:30:00.000000"`)
		require.Contains(t, out.String(), `"resourceType": "DocumentReference"`)
	})

	t.Run("batch-with-failure", func(t *testing.T) {
		client := &mockRecordClient{}
		client.On("FetchRecords", ctx, []string{"rec-1", "rec-2"}).Return(&phrsdk.BatchResult[*phrsdk.Record]{
			Successes: []*phrsdk.Record{dataRecord("rec-1")},
			Failures:  []phrsdk.BatchFailure{{ID: "rec-2", Err: errors.New("not found")}},
		})

		var out bytes.Buffer
		err := RunFetchRecords(ctx, client, testLogger, &out, []string{"rec-1", "rec-2"}, FormatText)

		require.Error(t, err)
		assert.ErrorIs(t, err, errBatchFailures)
		require.Contains(t, out.String(), "Record rec-1")
		require.Contains(t, out.String(), "Failed rec-2: not found")
	})

	t.Run("no-ids", func(t *testing.T) {
		err := RunFetchRecords(ctx, &mockRecordClient{}, testLogger, &bytes.Buffer{}, nil, FormatText)
		require.Error(t, err)
	})
}

func TestRunSearchRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		client := &mockRecordClient{}
		matches := mock.MatchedBy(func(c phrsdk.SearchCriteria) bool {
			return c.Kind == phrsdk.KindFhir4 &&
				c.ResourceType == "DocumentReference" &&
				c.StartDate != nil && c.EndDate != nil &&
				c.Limit == 5 && c.Offset == 10 &&
				assert.ObjectsAreEqual([]string{"lab"}, c.Annotations)
		})
		client.On("SearchRecords", ctx, matches).Return(&phrsdk.SearchResult{
			Records:    []*phrsdk.Record{documentRecord("rec-1", false)},
			TotalCount: 11,
		}, nil)

		var out bytes.Buffer
		err := RunSearchRecords(ctx, client, testLogger, &out, SearchOptions{
			Kind:         "fhir4",
			ResourceType: "DocumentReference",
			Annotations:  []string{"lab"},
			StartDate:    "2024-01-01",
			EndDate:      "2024-12-31",
			Limit:        5,
			Offset:       10,
		}, FormatText)

		require.NoError(t, err)
		require.Contains(t, out.String(), "Found 11 record(s), showing 1")
		require.Contains(t, out.String(), "Record rec-1")
		client.AssertExpectations(t)
	})

	t.Run("invalid-kind", func(t *testing.T) {
		err := RunSearchRecords(ctx, &mockRecordClient{}, testLogger, &bytes.Buffer{},
			SearchOptions{Kind: "xml"}, FormatText)
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid kind")
	})

	t.Run("invalid-date", func(t *testing.T) {
		err := RunSearchRecords(ctx, &mockRecordClient{}, testLogger, &bytes.Buffer{},
			SearchOptions{EndDate: "tomorrow"}, FormatText)
		require.Error(t, err)
		require.Contains(t, err.Error(), "expected YYYY-MM-DD")
	})
}

func TestRunCountRecords(t *testing.T) {
	ctx := context.Background()

	client := &mockRecordClient{}
	client.On("CountRecords", ctx, phrsdk.SearchCriteria{Kind: phrsdk.KindData}).Return(3, nil)

	var out bytes.Buffer
	require.NoError(t, RunCountRecords(ctx, client, testLogger, &out, SearchOptions{Kind: "data"}, FormatJSON))
	require.Contains(t, out.String(), `"count": 3`)

	out.Reset()
	require.NoError(t, RunCountRecords(ctx, client, testLogger, &out, SearchOptions{Kind: "data"}, FormatText))
	require.Contains(t, out.String(), "3 record(s)")
}

func TestRunDeleteRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("all-deleted", func(t *testing.T) {
		client := &mockRecordClient{}
		client.On("DeleteRecords", ctx, []string{"rec-1", "rec-2"}).Return(&phrsdk.BatchResult[string]{
			Successes: []string{"rec-1", "rec-2"},
		})

		var out bytes.Buffer
		require.NoError(t, RunDeleteRecords(ctx, client, testLogger, &out, []string{"rec-1", "rec-2"}, FormatText))
		require.Contains(t, out.String(), "Deleted rec-1")
		require.Contains(t, out.String(), "Deleted rec-2")
	})

	t.Run("partial", func(t *testing.T) {
		client := &mockRecordClient{}
		client.On("DeleteRecords", ctx, []string{"rec-1", "rec-2"}).Return(&phrsdk.BatchResult[string]{
			Successes: []string{"rec-1"},
			Failures:  []phrsdk.BatchFailure{{ID: "rec-2", Err: errors.New("not found")}},
		})

		var out bytes.Buffer
		err := RunDeleteRecords(ctx, client, testLogger, &out, []string{"rec-1", "rec-2"}, FormatJSON)
		require.ErrorIs(t, err, errBatchFailures)
		require.Contains(t, err.Error(), "1 of 2")
		require.Contains(t, out.String(), `"deleted": [`)
		require.Contains(t, out.String(), `"id": "rec-2"`)
	})
}

func TestRunDownloadRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("writes-attachments", func(t *testing.T) {
		outputDir := t.TempDir()
		client := &mockRecordClient{}
		client.On("DownloadRecords", ctx, []string{"rec-1"}, phrsdk.DownloadFull).
			Return(&phrsdk.BatchResult[*phrsdk.Record]{Successes: []*phrsdk.Record{documentRecord("rec-1", true)}})

		var out bytes.Buffer
		err := RunDownloadRecords(ctx, client, testLogger, &out, []string{"rec-1"}, "full", outputDir, FormatText)

		require.NoError(t, err)
		path := filepath.Join(outputDir, "rec-1", "doc-1.pdf")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, pdfPayload, data)
		require.Contains(t, out.String(), "-> "+path)
	})

	t.Run("payload-not-printed", func(t *testing.T) {
		client := &mockRecordClient{}
		client.On("DownloadRecords", ctx, []string{"rec-1"}, phrsdk.DownloadMedium).
			Return(&phrsdk.BatchResult[*phrsdk.Record]{Successes: []*phrsdk.Record{documentRecord("rec-1", true)}})

		var out bytes.Buffer
		err := RunDownloadRecords(ctx, client, testLogger, &out, []string{"rec-1"}, "medium", "", FormatJSON)

		require.NoError(t, err)
		require.Contains(t, out.String(), `"size": 20`)
		require.NotContains(t, out.String(), `"data"`)
	})

	t.Run("invalid-download-type", func(t *testing.T) {
		err := RunDownloadRecords(ctx, &mockRecordClient{}, testLogger, &bytes.Buffer{},
			[]string{"rec-1"}, "huge", "", FormatText)
		require.Error(t, err)
	})
}
