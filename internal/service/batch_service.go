package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"docsight/internal/domain"
	"docsight/internal/extractor"
	"docsight/internal/jsonval"
	"docsight/internal/merge"
	"docsight/internal/port"
)

// BatchFile is one uploaded file of a batch.
type BatchFile struct {
	Filename string
	Data     []byte
}

// BatchInput carries everything needed to process one batch request.
type BatchInput struct {
	Provider string
	Model    string
	Files    []BatchFile
}

// BatchService processes a batch of uploaded documents into one consolidated
// result per file.
type BatchService interface {
	Process(ctx context.Context, in BatchInput) (*domain.Envelope, error)
}

type batchService struct {
	registry    *extractor.Registry
	rasterizer  port.Rasterizer
	concurrency int
}

// NewBatchService creates a BatchService. Concurrency bounds how many files
// are processed in parallel; values below 1 mean strictly sequential.
func NewBatchService(registry *extractor.Registry, rasterizer port.Rasterizer, concurrency int) BatchService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &batchService{
		registry:    registry,
		rasterizer:  rasterizer,
		concurrency: concurrency,
	}
}

// Process handles each file of the batch in upload order. Any extraction or
// rasterization failure aborts the whole batch; no partial envelope is ever
// returned.
func (s *batchService) Process(ctx context.Context, in BatchInput) (*domain.Envelope, error) {
	if len(in.Files) == 0 {
		return nil, domain.ErrNoFiles
	}

	ext, err := s.registry.Get(in.Provider)
	if err != nil {
		return nil, err
	}

	log.Printf("batchService: processing batch (provider=%s, model=%s, files=%d)",
		in.Provider, in.Model, len(in.Files))

	records := make([]domain.FileRecord, len(in.Files))

	if s.concurrency == 1 {
		for i, f := range in.Files {
			content, err := s.processFile(ctx, ext, in.Model, f)
			if err != nil {
				return nil, err
			}
			records[i] = domain.FileRecord{Filename: f.Filename, Content: content}
		}
		return &domain.Envelope{Files: records}, nil
	}

	// Files are independent, so they may be extracted in parallel. Results
	// land in their upload-order slot; the first failure cancels the rest.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := range in.Files {
		i := i
		f := in.Files[i]

		sem <- struct{}{} // acquire
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }() // release

			if ctx.Err() != nil {
				return
			}
			content, err := s.processFile(ctx, ext, in.Model, f)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				cancel()
				return
			}
			records[i] = domain.FileRecord{Filename: f.Filename, Content: content}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	// A canceled parent context makes goroutines skip their file without
	// recording an error; never return the half-filled envelope.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &domain.Envelope{Files: records}, nil
}

// processFile produces the consolidated content value for one file. PDF
// pages are extracted sequentially in document order and folded into one
// value; any other file is treated as a single page image whose result is
// used verbatim.
func (s *batchService) processFile(ctx context.Context, ext port.PageExtractor, model string, f BatchFile) (jsonval.Value, error) {
	if isPDF(f.Filename) {
		pages, err := s.rasterizer.Rasterize(ctx, f.Data)
		if err != nil {
			return jsonval.Value{}, fmt.Errorf("rasterizing %s: %w", f.Filename, err)
		}

		results := make([]jsonval.Value, 0, len(pages))
		for i, page := range pages {
			log.Printf("batchService: extracting %s page %d/%d", f.Filename, i+1, len(pages))
			v, err := ext.Extract(ctx, page, model)
			if err != nil {
				return jsonval.Value{}, fmt.Errorf("%w: %s page %d: %v", domain.ErrExtractionFailed, f.Filename, i+1, err)
			}
			results = append(results, v)
		}
		return merge.Fold(results), nil
	}

	log.Printf("batchService: extracting image %s", f.Filename)
	v, err := ext.Extract(ctx, f.Data, model)
	if err != nil {
		return jsonval.Value{}, fmt.Errorf("%w: %s: %v", domain.ErrExtractionFailed, f.Filename, err)
	}
	return v, nil
}

func isPDF(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}
