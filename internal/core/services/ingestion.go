package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/corpuslabs/corpusd/internal/chunker"
	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
	"github.com/corpuslabs/corpusd/internal/core/ports/driving"
	"github.com/corpuslabs/corpusd/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// defaultEmbedConcurrency bounds the per-chunk embedding fan-out when
// no explicit limit is configured.
const defaultEmbedConcurrency = 4

// IngestionService runs the ingestion pipeline: hash, extract, chunk,
// embed, persist. The document row and its chunk batch land in one
// transaction, so a failed embedding leaves nothing behind.
type IngestionService struct {
	projectStore driven.ProjectStore
	docStore     driven.DocumentStore
	chunkStore   driven.ChunkStore
	extractor    driven.Extractor
	fetcher      driven.URLFetcher
	embedder     driven.Provider
	chunker      *chunker.Chunker
	concurrency  int
}

// NewIngestionService creates an ingestion service. The fetcher may be
// nil when web-crawl ingestion is disabled.
func NewIngestionService(
	projectStore driven.ProjectStore,
	docStore driven.DocumentStore,
	chunkStore driven.ChunkStore,
	extractor driven.Extractor,
	fetcher driven.URLFetcher,
	embedder driven.Provider,
	chunker *chunker.Chunker,
	concurrency int,
) *IngestionService {
	if concurrency <= 0 {
		concurrency = defaultEmbedConcurrency
	}
	return &IngestionService{
		projectStore: projectStore,
		docStore:     docStore,
		chunkStore:   chunkStore,
		extractor:    extractor,
		fetcher:      fetcher,
		embedder:     embedder,
		chunker:      chunker,
		concurrency:  concurrency,
	}
}

// IngestFile ingests uploaded bytes and returns the new document ID.
func (s *IngestionService) IngestFile(ctx context.Context, req driving.IngestFileRequest) (uuid.UUID, error) {
	if err := s.authorize(ctx, req.ProjectID, req.UserID); err != nil {
		return uuid.Nil, err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(req.Filename), "."))
	docType, ok := domain.DocumentTypeForExtension(ext)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: unsupported extension %q", domain.ErrTextExtraction, ext)
	}

	extraction, err := s.extractor.Extract(ctx, req.Data, req.Filename)
	if err != nil {
		return uuid.Nil, err
	}

	return s.ingest(ctx, ingestInput{
		projectID:   req.ProjectID,
		name:        req.Filename,
		docType:     docType,
		contentHash: domain.HashContent(req.Data),
		text:        extraction.Text,
		metadata:    extraction.Metadata,
		bump:        req.Bump,
	})
}

// IngestURL crawls a URL and ingests the page text. The page's URL
// doubles as the document name; crawl provenance flows into every
// chunk's metadata.
func (s *IngestionService) IngestURL(ctx context.Context, req driving.IngestURLRequest) (uuid.UUID, error) {
	if s.fetcher == nil {
		return uuid.Nil, fmt.Errorf("%w: web-crawl ingestion is not configured", domain.ErrValidation)
	}
	if err := s.authorize(ctx, req.ProjectID, req.UserID); err != nil {
		return uuid.Nil, err
	}

	extraction, err := s.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return uuid.Nil, err
	}

	return s.ingest(ctx, ingestInput{
		projectID:   req.ProjectID,
		name:        req.URL,
		docType:     domain.DocTypeWebCrawl,
		contentHash: domain.HashContent([]byte(extraction.Text)),
		text:        extraction.Text,
		metadata:    extraction.Metadata,
		bump:        req.Bump,
	})
}

type ingestInput struct {
	projectID   uuid.UUID
	name        string
	docType     domain.DocumentType
	contentHash string
	text        string
	metadata    map[string]any
	bump        *domain.BumpKind
}

func (s *IngestionService) ingest(ctx context.Context, in ingestInput) (uuid.UUID, error) {
	doc, err := domain.NewDocument(in.projectID, in.name, in.docType, in.contentHash)
	if err != nil {
		return uuid.Nil, err
	}
	if in.bump != nil {
		version, err := s.bumpedVersion(ctx, in.projectID, in.name, *in.bump)
		if err != nil {
			return uuid.Nil, err
		}
		doc.Version = version
	}

	textChunks := s.chunker.Chunk(in.text)

	chunks, err := s.embedChunks(ctx, doc.ID, textChunks, in.metadata)
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.chunkStore.InsertDocumentWithChunks(ctx, doc, chunks); err != nil {
		return uuid.Nil, err
	}

	logger.Info("document ingested",
		zap.String("document_id", doc.ID.String()),
		zap.String("project_id", in.projectID.String()),
		zap.String("type", string(in.docType)),
		zap.String("version", doc.Version),
		zap.Int("chunks", len(chunks)))
	return doc.ID, nil
}

// embedChunks embeds every chunk with a bounded fan-out. The result
// slice is ordered by chunk index regardless of completion order; any
// embedding failure aborts the batch.
func (s *IngestionService) embedChunks(ctx context.Context, documentID uuid.UUID, textChunks []chunker.TextChunk, extra map[string]any) ([]domain.Chunk, error) {
	chunks := make([]domain.Chunk, len(textChunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, tc := range textChunks {
		g.Go(func() error {
			embedding, err := s.embedder.Embed(gctx, tc.Text)
			if err != nil {
				return fmt.Errorf("%w: chunk %d: %w", domain.ErrEmbedding, tc.Index, err)
			}

			metadata := map[string]any{
				domain.MetaChunkIndex: tc.Index,
				domain.MetaStartChar:  tc.StartChar,
				domain.MetaEndChar:    tc.EndChar,
				domain.MetaTokenCount: tc.TokenCount,
			}
			for k, v := range extra {
				metadata[k] = v
			}

			chunks[i] = domain.Chunk{
				ID:         domain.NewChunkID(),
				DocumentID: documentID,
				Text:       tc.Text,
				Index:      tc.Index,
				Embedding:  embedding,
				Metadata:   metadata,
				CreatedAt:  time.Now().UTC(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// bumpedVersion derives the next version from the newest existing one.
// A bump on a document with no prior versions starts at the initial
// version.
func (s *IngestionService) bumpedVersion(ctx context.Context, projectID uuid.UUID, name string, kind domain.BumpKind) (string, error) {
	versions, err := s.docStore.FindVersions(ctx, projectID, name)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return domain.InitialVersion, nil
	}
	return domain.BumpVersion(versions[0].Version, kind)
}

func (s *IngestionService) authorize(ctx context.Context, projectID, userID uuid.UUID) error {
	project, err := s.projectStore.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != userID {
		return fmt.Errorf("%w: project %s is not owned by user %s", domain.ErrUnauthorized, projectID, userID)
	}
	return nil
}
