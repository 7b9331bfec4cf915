package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/core/ports/driving"
	"github.com/custodia-labs/passel/internal/dedup"
	"github.com/custodia-labs/passel/internal/logger"
	"github.com/custodia-labs/passel/internal/postprocessors"
	"github.com/custodia-labs/passel/internal/ranking"
	"github.com/custodia-labs/passel/internal/retrieval"
	"github.com/custodia-labs/passel/internal/textproc"
)

// Ensure SelectionService implements the interface.
var _ driving.SelectionService = (*SelectionService)(nil)

// Pipeline states, logged as the run advances.
const (
	StageIngested  = "INGESTED"
	StageRanked    = "DOCUMENT-RANKED"
	StageExtracted = "PER-DOCUMENT PASSAGES EXTRACTED"
	StageMerged    = "GLOBALLY MERGED"
	StageTruncated = "TRUNCATED"
	StageDone      = "DONE"
)

// SelectionService orchestrates one passage selection run: ingestion,
// document retrieval, per-document segmentation, ranking and
// deduplication, then the global merge and truncation.
type SelectionService struct {
	source     driven.DocumentSource
	extractor  driven.TextExtractor
	encoder    driven.EmbeddingService
	reranker   driven.Reranker
	sink       driven.ArtifactSink
	processors *postprocessors.Registry
}

// NewSelectionService creates a selection service.
// The reranker is optional unless external_rerank is configured.
// The sink is optional; it is only used for debug runs.
func NewSelectionService(
	source driven.DocumentSource,
	extractor driven.TextExtractor,
	encoder driven.EmbeddingService,
	reranker driven.Reranker,
	sink driven.ArtifactSink,
) *SelectionService {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	return &SelectionService{
		source:     source,
		extractor:  extractor,
		encoder:    encoder,
		reranker:   reranker,
		sink:       sink,
		processors: registry,
	}
}

// plan holds the strategies chosen for one run.
type plan struct {
	cfg      domain.PipelineConfig
	query    domain.Query
	scorer   driven.DocumentScorer
	ranker   driven.PassageRanker
	pipeline driven.PostProcessorPipeline
	dedup    *dedup.Deduplicator
}

// prepare validates cfg and builds every strategy, so configuration
// problems surface before any document is touched.
func (s *SelectionService) prepare(cfg domain.PipelineConfig) (*plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scorer, err := retrieval.New(cfg.RetrievalAlgorithm)
	if err != nil {
		return nil, err
	}

	ranker, err := ranking.New(cfg.RankingMethod, s.encoder, s.reranker)
	if err != nil {
		return nil, err
	}
	if s.encoder == nil {
		return nil, domain.NewConfigurationError("embedding.provider",
			"an embedding provider is required for deduplication")
	}

	pipeline, err := s.processors.BuildPipeline(postprocessors.DefaultChain, map[string]map[string]any{
		"segmenter": postprocessors.SegmenterConfig(cfg, s.encoder),
	})
	if err != nil {
		return nil, err
	}

	query := domain.Query{Raw: cfg.Query}
	if cfg.PreprocessQuery {
		query.Normalized = textproc.Preprocess(cfg.Query)
		query.Preprocessed = true
		if query.Normalized == "" {
			logger.Warn("query %q is empty after preprocessing", cfg.Query)
		}
	}

	return &plan{
		cfg:      cfg,
		query:    query,
		scorer:   scorer,
		ranker:   ranker,
		pipeline: pipeline,
		dedup:    dedup.New(s.encoder, cfg.SimilarityThreshold),
	}, nil
}

// Select reads the configured folder and runs the pipeline over it.
func (s *SelectionService) Select(ctx context.Context, cfg domain.PipelineConfig) (*domain.SelectionResult, error) {
	start := time.Now()

	p, err := s.prepare(cfg)
	if err != nil {
		return nil, err
	}
	if s.source == nil || s.extractor == nil {
		return nil, fmt.Errorf("select: document source not configured")
	}

	logger.Section("Ingestion")
	raws, err := s.source.Fetch(ctx, cfg.DocumentFolderPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewConfigurationError("document_folder_path",
				"folder %q does not exist", cfg.DocumentFolderPath)
		}
		return nil, fmt.Errorf("fetch documents: %w", err)
	}

	docs, warnings, err := s.extract(ctx, raws, cfg.Workers)
	if err != nil {
		return nil, err
	}

	result, err := s.run(ctx, p, docs, start)
	if err != nil {
		return nil, err
	}
	result.Stats.DocumentsSkipped = len(warnings)
	result.Warnings = append(warnings, result.Warnings...)
	return result, nil
}

// SelectDocuments runs the pipeline over in-memory documents.
func (s *SelectionService) SelectDocuments(ctx context.Context, cfg domain.PipelineConfig,
	docs []domain.Document) (*domain.SelectionResult, error) {
	start := time.Now()

	p, err := s.prepare(cfg)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, p, docs, start)
}

// extract turns raw documents into documents on a bounded worker pool.
// Failures are skipped and reported as warnings; order follows raws.
func (s *SelectionService) extract(ctx context.Context, raws []domain.RawDocument,
	workers int) ([]domain.Document, []string, error) {
	slots := make([]*domain.Document, len(raws))
	errs := make([]error, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range raws {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := s.extractor.Extract(gctx, &raws[i])
			if err != nil {
				errs[i] = &domain.IngestionError{URI: raws[i].URI, Err: err}
				return nil
			}
			slots[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	docs := make([]domain.Document, 0, len(raws))
	var warnings []string
	for i, doc := range slots {
		if errs[i] != nil {
			logger.Warn("skipping document: %v", errs[i])
			warnings = append(warnings, errs[i].Error())
			continue
		}
		docs = append(docs, *doc)
	}
	return docs, warnings, nil
}

// outcome is what one retrieved document contributes to the merge.
type outcome struct {
	candidates []domain.ScoredCandidate
	ranked     int
	warning    string
	failed     bool
}

// run executes retrieval, per-document extraction, merge and truncation.
func (s *SelectionService) run(ctx context.Context, p *plan, docs []domain.Document,
	start time.Time) (*domain.SelectionResult, error) {
	cfg := p.cfg
	result := &domain.SelectionResult{
		RunID: uuid.New().String(),
		Query: p.query,
	}
	result.Stats.DocumentsRead = len(docs)
	logger.Stage(StageIngested, "%d documents, query %q", len(docs), p.query.Text())

	if len(docs) == 0 {
		return s.finish(ctx, cfg, result, start), nil
	}

	// Retrieval barrier: term statistics need every document's text.
	processed := make([]string, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			processed[i] = textproc.Preprocess(docs[i].Content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hits := retrieval.TopK(p.scorer, p.query.Text(), processed, cfg.TopKDocs)
	result.Stats.DocumentsRetrieved = len(hits)
	for rank, h := range hits {
		logger.Debug("retrieved #%d %s (%s %.4f)", rank+1, docs[h.Index].ID, p.scorer.Algorithm(), h.Score)
	}
	logger.Stage(StageRanked, "kept %d of %d documents", len(hits), len(docs))

	outcomes := make([]outcome, len(hits))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, h := range hits {
		g.Go(func() error {
			out, err := s.selectFromDocument(gctx, p, &docs[h.Index])
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []domain.ScoredCandidate
	for _, out := range outcomes {
		result.Stats.PassagesRanked += out.ranked
		if out.failed {
			result.Stats.DocumentsFailed++
		}
		if out.warning != "" {
			result.Warnings = append(result.Warnings, out.warning)
		}
		merged = append(merged, out.candidates...)
	}
	logger.Stage(StageExtracted, "%d candidate passages from %d documents", len(merged), len(hits))

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	logger.Stage(StageMerged, "%d passages", len(merged))

	budget := cfg.OutputBudget()
	final, err := p.dedup.Select(ctx, merged, budget)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("cross-document deduplication failed: %v", err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("cross-document deduplication skipped: %v", err))
		final = merged
	}
	if len(final) > budget {
		final = final[:budget]
	}
	result.Candidates = final
	logger.Stage(StageTruncated, "%d passages (budget %d)", len(final), budget)

	return s.finish(ctx, cfg, result, start), nil
}

// selectFromDocument segments, filters, ranks and deduplicates one document.
// Only cancellation of ctx is returned as an error; every other failure is
// contained in the outcome.
func (s *SelectionService) selectFromDocument(ctx context.Context, p *plan,
	doc *domain.Document) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return outcome{}, err
	}

	passages, err := p.pipeline.Process(ctx, doc)
	if err != nil {
		if ctx.Err() != nil {
			return outcome{}, ctx.Err()
		}
		logger.Warn("segmenting %s: %v", doc.ID, err)
		return outcome{failed: true, warning: fmt.Sprintf("%s: segmentation failed: %v", doc.ID, err)}, nil
	}
	if len(passages) == 0 {
		logger.Debug("%s: no valid passages", doc.ID)
		return outcome{}, nil
	}

	rctx := ctx
	if p.cfg.CapabilityTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, p.cfg.CapabilityTimeout)
		defer cancel()
	}

	ranked, err := p.ranker.Rank(rctx, p.query.Text(), doc.ID, passages)
	if err == nil {
		var selected []domain.ScoredCandidate
		selected, err = p.dedup.Select(rctx, ranked, p.cfg.TopNPassages)
		if err == nil {
			logger.Debug("%s: %d passages ranked, %d selected", doc.ID, len(ranked), len(selected))
			return outcome{candidates: selected, ranked: len(ranked)}, nil
		}
		err = &domain.RankingError{DocumentID: doc.ID, Err: fmt.Errorf("deduplicate: %w", err)}
	}

	if ctx.Err() != nil {
		return outcome{}, ctx.Err()
	}
	logger.Warn("dropping %s: %v", doc.ID, err)
	return outcome{failed: true, warning: err.Error()}, nil
}

// finish records the artifact for debug runs and stamps the duration.
// Sink failures become warnings.
func (s *SelectionService) finish(ctx context.Context, cfg domain.PipelineConfig,
	result *domain.SelectionResult, start time.Time) *domain.SelectionResult {
	if result.Candidates == nil {
		result.Candidates = []domain.ScoredCandidate{}
	}
	if cfg.Debug {
		if err := s.record(ctx, result); err != nil {
			logger.Warn("%v", err)
			result.Warnings = append(result.Warnings, err.Error())
		}
	}
	result.Duration = time.Since(start)
	logger.Stage(StageDone, "%d passages in %s", len(result.Candidates), result.Duration)
	return result
}

// record writes the run to the artifact sink.
func (s *SelectionService) record(ctx context.Context, result *domain.SelectionResult) error {
	if s.sink == nil {
		return nil
	}
	artifact := domain.Artifact{
		RunID:     result.RunID,
		Query:     result.Query.Raw,
		Results:   result.Candidates,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sink.Write(ctx, artifact); err != nil {
		return fmt.Errorf("write artifact to %s: %w", s.sink.Location(), err)
	}
	logger.Info("results written to %s", s.sink.Location())
	return nil
}
