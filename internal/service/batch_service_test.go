package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsight/internal/domain"
	"docsight/internal/extractor"
	"docsight/internal/jsonval"
	"docsight/internal/service"
)

// scriptedExtractor returns a canned JSON result per page image, keyed by
// the image bytes. Unknown images fail.
type scriptedExtractor struct {
	mu      sync.Mutex
	results map[string]string // image bytes -> JSON result
	fail    map[string]error  // image bytes -> forced error
	calls   []string
	delay   map[string]time.Duration
}

func newScriptedExtractor() *scriptedExtractor {
	return &scriptedExtractor{
		results: make(map[string]string),
		fail:    make(map[string]error),
		delay:   make(map[string]time.Duration),
	}
}

func (s *scriptedExtractor) Extract(ctx context.Context, image []byte, _ string) (jsonval.Value, error) {
	key := string(image)
	if d := s.delay[key]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return jsonval.Value{}, ctx.Err()
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, key)
	s.mu.Unlock()

	if err, ok := s.fail[key]; ok {
		return jsonval.Value{}, err
	}
	raw, ok := s.results[key]
	if !ok {
		return jsonval.Value{}, errors.New("no scripted result for " + key)
	}
	return jsonval.Parse([]byte(raw))
}

func (s *scriptedExtractor) Models() []string { return []string{"stub-model"} }

func (s *scriptedExtractor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// pageSplitRasterizer treats the PDF bytes as a comma-separated list of page
// keys and returns one "image" per key.
type pageSplitRasterizer struct {
	err error
}

func (r *pageSplitRasterizer) Rasterize(_ context.Context, pdf []byte) ([][]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	var pages [][]byte
	start := 0
	data := string(pdf)
	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == ',' {
			pages = append(pages, []byte(data[start:i]))
			start = i + 1
		}
	}
	return pages, nil
}

func newRegistry(ext *scriptedExtractor) *extractor.Registry {
	r := extractor.NewRegistry()
	r.Register("Stub", ext)
	return r
}

func contentJSON(t *testing.T, rec domain.FileRecord) string {
	t.Helper()
	out, err := json.Marshal(rec.Content)
	require.NoError(t, err)
	return string(out)
}

func TestProcess_SingleImageUsedVerbatim(t *testing.T) {
	ext := newScriptedExtractor()
	ext.results["img-bytes"] = `{"name":"Jane"}`

	svc := service.NewBatchService(newRegistry(ext), &pageSplitRasterizer{}, 1)

	env, err := svc.Process(context.Background(), service.BatchInput{
		Provider: "Stub",
		Model:    "stub-model",
		Files:    []service.BatchFile{{Filename: "img.jpg", Data: []byte("img-bytes")}},
	})
	require.NoError(t, err)
	require.Len(t, env.Files, 1)
	assert.Equal(t, "img.jpg", env.Files[0].Filename)
	assert.Equal(t, `{"name":"Jane"}`, contentJSON(t, env.Files[0]))
}

// A single image's result is used verbatim, even when it is a bare scalar
// rather than an object.
func TestProcess_SingleImageScalarResult(t *testing.T) {
	ext := newScriptedExtractor()
	ext.results["img-bytes"] = `"just a caption"`

	svc := service.NewBatchService(newRegistry(ext), &pageSplitRasterizer{}, 1)

	env, err := svc.Process(context.Background(), service.BatchInput{
		Provider: "Stub",
		Model:    "stub-model",
		Files:    []service.BatchFile{{Filename: "scan.png", Data: []byte("img-bytes")}},
	})
	require.NoError(t, err)
	assert.Equal(t, `"just a caption"`, contentJSON(t, env.Files[0]))
}

func TestProcess_PDFPagesFoldedInOrder(t *testing.T) {
	ext := newScriptedExtractor()
	ext.results["p1"] = `{"total":"10","items":[1]}`
	ext.results["p2"] = `{"total":"20","items":[2]}`

	svc := service.NewBatchService(newRegistry(ext), &pageSplitRasterizer{}, 1)

	env, err := svc.Process(context.Background(), service.BatchInput{
		Provider: "Stub",
		Model:    "stub-model",
		Files:    []service.BatchFile{{Filename: "doc.pdf", Data: []byte("p1,p2")}},
	})
	require.NoError(t, err)
	require.Len(t, env.Files, 1)
	assert.Equal(t, `{"total":"10 20","items":[1,2]}`, contentJSON(t, env.Files[0]))
	assert.Equal(t, []string{"p1", "p2"}, ext.calls)
}

func TestProcess_MixedBatchPreservesUploadOrder(t *testing.T) {
	ext := newScriptedExtractor()
	ext.results["img-bytes"] = `{"name":"Jane"}`
	ext.results["p1"] = `{"total":"10"}`
	ext.results["p2"] = `{"total":"20"}`

	svc := service.NewBatchService(newRegistry(ext), &pageSplitRasterizer{}, 1)

	env, err := svc.Process(context.Background(), service.BatchInput{
		Provider: "Stub",
		Model:    "stub-model",
		Files: []service.BatchFile{
			{Filename: "img.jpg", Data: []byte("img-bytes")},
			{Filename: "doc.pdf", Data: []byte("p1,p2")},
		},
	})
	require.NoError(t, err)
	require.Len(t, env.Files, 2)
	assert.Equal(t, "img.jpg", env.Files[0].Filename)
	assert.Equal(t, `{"name":"Jane"}`, contentJSON(t, env.Files[0]))
	assert.Equal(t, "doc.pdf", env.Files[1].Filename)
	assert.Equal(t, `{"total":"10 20"}`, contentJSON(t, env.Files[1]))
}

func TestProcess_InvalidProviderBeforeAnyWork(t *testing.T) {
	ext := newScriptedExtractor()
	svc := service.NewBatchService(newRegistry(ext), &pageSplitRasterizer{}, 1)

	_, err := svc.Process(context.Background(), service.BatchInput{
		Provider: "Unknown",
		Model:    "m",
		Files:    []service.BatchFile{{Filename: "a.jpg", Data: []byte("x")}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidProvider)
	assert.Zero(t, ext.callCount())
}

func TestProcess_NoFiles(t *testing.T) {
	svc := service.NewBatchService(newRegistry(newScriptedExtractor()), &pageSplitRasterizer{}, 1)

	_, err := svc.Process(context.Background(), service.BatchInput{Provider: "Stub", Model: "m"})
	assert.ErrorIs(t, err, domain.ErrNoFiles)
}

func TestProcess_ExtractionFailureAbortsBatch(t *testing.T) {
	ext := newScriptedExtractor()
	ext.results["a"] = `{"ok":1}`
	ext.results["b"] = `{"ok":2}`
	ext.fail["c"] = errors.New("boom")

	svc := service.NewBatchService(newRegistry(ext), &pageSplitRasterizer{}, 1)

	env, err := svc.Process(context.Background(), service.BatchInput{
		Provider: "Stub",
		Model:    "m",
		Files: []service.BatchFile{
			{Filename: "a.jpg", Data: []byte("a")},
			{Filename: "b.jpg", Data: []byte("b")},
			{Filename: "c.jpg", Data: []byte("c")},
			{Filename: "d.jpg", Data: []byte("d")},
		},
	})
	require.Error(t, err)
	assert.Nil(t, env)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "c.jpg")
	// Sequential mode stops at the failing file
	assert.Equal(t, 3, ext.callCount())
}

func TestProcess_MidDocumentPageFailureAbortsBatch(t *testing.T) {
	ext := newScriptedExtractor()
	ext.results["p1"] = `{"t":"x"}`
	ext.fail["p2"] = errors.New("transport error")

	svc := service.NewBatchService(newRegistry(ext), &pageSplitRasterizer{}, 1)

	env, err := svc.Process(context.Background(), service.BatchInput{
		Provider: "Stub",
		Model:    "m",
		Files:    []service.BatchFile{{Filename: "doc.pdf", Data: []byte("p1,p2,p3")}},
	})
	require.Error(t, err)
	assert.Nil(t, env)
	assert.Contains(t, err.Error(), "page 2")
}

func TestProcess_RasterizationFailureAbortsBatch(t *testing.T) {
	ext := newScriptedExtractor()
	rast := &pageSplitRasterizer{err: domain.ErrRasterizationFailed}

	svc := service.NewBatchService(newRegistry(ext), rast, 1)

	env, err := svc.Process(context.Background(), service.BatchInput{
		Provider: "Stub",
		Model:    "m",
		Files:    []service.BatchFile{{Filename: "broken.pdf", Data: []byte("p1")}},
	})
	require.Error(t, err)
	assert.Nil(t, env)
	assert.ErrorIs(t, err, domain.ErrRasterizationFailed)
	assert.Zero(t, ext.callCount())
}

func TestProcess_ConcurrentFilesKeepUploadOrder(t *testing.T) {
	ext := newScriptedExtractor()
	ext.results["slow"] = `{"id":1}`
	ext.results["fast"] = `{"id":2}`
	ext.delay["slow"] = 50 * time.Millisecond

	svc := service.NewBatchService(newRegistry(ext), &pageSplitRasterizer{}, 4)

	env, err := svc.Process(context.Background(), service.BatchInput{
		Provider: "Stub",
		Model:    "m",
		Files: []service.BatchFile{
			{Filename: "slow.jpg", Data: []byte("slow")},
			{Filename: "fast.jpg", Data: []byte("fast")},
		},
	})
	require.NoError(t, err)
	require.Len(t, env.Files, 2)
	// Envelope order follows upload order, not completion order.
	assert.Equal(t, "slow.jpg", env.Files[0].Filename)
	assert.Equal(t, `{"id":1}`, contentJSON(t, env.Files[0]))
	assert.Equal(t, "fast.jpg", env.Files[1].Filename)
}

// A batch whose context is already canceled must fail rather than return an
// envelope of empty records.
func TestProcess_CanceledContextReturnsError(t *testing.T) {
	ext := newScriptedExtractor()
	ext.results["img-bytes"] = `{"id":1}`

	svc := service.NewBatchService(newRegistry(ext), &pageSplitRasterizer{}, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env, err := svc.Process(ctx, service.BatchInput{
		Provider: "Stub",
		Model:    "m",
		Files:    []service.BatchFile{{Filename: "img.jpg", Data: []byte("img-bytes")}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, env)
}

func TestProcess_ConcurrentFailureReturnsNoPartialResults(t *testing.T) {
	ext := newScriptedExtractor()
	ext.results["ok1"] = `{"id":1}`
	ext.results["ok2"] = `{"id":2}`
	ext.fail["bad"] = errors.New("boom")

	svc := service.NewBatchService(newRegistry(ext), &pageSplitRasterizer{}, 3)

	env, err := svc.Process(context.Background(), service.BatchInput{
		Provider: "Stub",
		Model:    "m",
		Files: []service.BatchFile{
			{Filename: "ok1.jpg", Data: []byte("ok1")},
			{Filename: "bad.jpg", Data: []byte("bad")},
			{Filename: "ok2.jpg", Data: []byte("ok2")},
		},
	})
	require.Error(t, err)
	assert.Nil(t, env)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
