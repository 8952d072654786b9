package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	owner := uuid.New()

	p, err := NewProject("docs", "product documentation", []string{"docs", "v2"}, owner)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "docs", p.Name)
	assert.Equal(t, ProjectActive, p.Status)
	assert.Equal(t, owner, p.OwnerID)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestNewProject_Invalid(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name        string
		projectName string
		description string
		tags        []string
	}{
		{
			name:        "empty name",
			projectName: "",
		},
		{
			name:        "whitespace name",
			projectName: "   \t",
		},
		{
			name:        "name too long",
			projectName: strings.Repeat("a", MaxProjectNameLen+1),
		},
		{
			name:        "description too long",
			projectName: "docs",
			description: strings.Repeat("d", MaxProjectDescriptionLen+1),
		},
		{
			name:        "tag with spaces",
			projectName: "docs",
			tags:        []string{"valid", "not valid"},
		},
		{
			name:        "empty tag",
			projectName: "docs",
			tags:        []string{""},
		},
		{
			name:        "tag with punctuation",
			projectName: "docs",
			tags:        []string{"docs!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProject(tt.projectName, tt.description, tt.tags, owner)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestProject_Validate_Status(t *testing.T) {
	p, err := NewProject("docs", "", nil, uuid.New())
	require.NoError(t, err)

	p.Status = ProjectStatus("Deleted")
	err = p.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProject_Archive(t *testing.T) {
	p, err := NewProject("docs", "", nil, uuid.New())
	require.NoError(t, err)

	before := p.UpdatedAt
	p.Archive()

	assert.Equal(t, ProjectArchived, p.Status)
	assert.True(t, !p.UpdatedAt.Before(before))
	assert.NoError(t, p.Validate())
}

func TestProject_OwnedBy(t *testing.T) {
	owner := uuid.New()
	p, err := NewProject("docs", "", nil, owner)
	require.NoError(t, err)

	assert.True(t, p.OwnedBy(owner))
	assert.False(t, p.OwnedBy(uuid.New()))
}
