package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driving"
)

type mockRetrieval struct {
	result *domain.QueryResult
	err    error

	lastProjectID uuid.UUID
	lastUserID    uuid.UUID
	lastQuery     string
	lastOpts      domain.QueryOptions
}

func (m *mockRetrieval) Query(_ context.Context, projectID, userID uuid.UUID, queryText string, opts domain.QueryOptions) (*domain.QueryResult, error) {
	m.lastProjectID = projectID
	m.lastUserID = userID
	m.lastQuery = queryText
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.QueryResult{QueryID: uuid.New()}, nil
}

type mockIngestion struct {
	docID uuid.UUID
	err   error

	lastReq driving.IngestFileRequest
}

func (m *mockIngestion) IngestFile(_ context.Context, req driving.IngestFileRequest) (uuid.UUID, error) {
	m.lastReq = req
	return m.docID, m.err
}

func (m *mockIngestion) IngestURL(_ context.Context, req driving.IngestURLRequest) (uuid.UUID, error) {
	return m.docID, m.err
}

type mockProjects struct {
	driving.ProjectService

	projects []domain.Project
	err      error
}

func (m *mockProjects) List(context.Context, uuid.UUID) ([]domain.Project, error) {
	return m.projects, m.err
}

type mockDocuments struct {
	driving.DocumentService

	docs []domain.Document
	err  error

	lastProjectID uuid.UUID
}

func (m *mockDocuments) List(_ context.Context, projectID, _ uuid.UUID) ([]domain.Document, error) {
	m.lastProjectID = projectID
	return m.docs, m.err
}

// Ensure mocks implement interfaces
var _ driving.RetrievalService = (*mockRetrieval)(nil)
var _ driving.IngestionService = (*mockIngestion)(nil)
