// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentSource: Fetches raw documents from a folder
//   - TextExtractor: Turns raw bytes into document text and metadata
//   - Normaliser / NormaliserRegistry: Per-format extraction
//   - PostProcessor / PostProcessorPipeline: Segmentation and filtering
//   - DocumentScorer: Lexical document retrieval strategy
//   - PassageRanker: Passage scoring strategy
//   - EmbeddingService: Dense vectors for ranking and deduplication
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Reranker: External reranking. Required only by external_rerank.
//   - ArtifactSink: Durable record of a run. Used only in debug runs.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
