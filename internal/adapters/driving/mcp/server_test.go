package mcp

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("requires a retrieval service", func(t *testing.T) {
		_, err := NewServer(&Ports{UserID: uuid.New()})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingRetrievalService)
	})

	t.Run("requires an acting user", func(t *testing.T) {
		_, err := NewServer(&Ports{Retrieval: &mockRetrieval{}})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("builds with the minimal ports", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrieval{}, UserID: uuid.New()})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}
