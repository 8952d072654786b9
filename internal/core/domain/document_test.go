package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	projectID := uuid.New()
	hash := HashContent([]byte("hello world"))

	d, err := NewDocument(projectID, "guide.md", DocTypeMarkdown, hash)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, d.ID)
	assert.Equal(t, projectID, d.ProjectID)
	assert.Equal(t, InitialVersion, d.Version)
	assert.Equal(t, hash, d.ContentHash)
}

func TestNewDocument_Invalid(t *testing.T) {
	projectID := uuid.New()
	validHash := HashContent([]byte("x"))

	tests := []struct {
		name    string
		docName string
		docType DocumentType
		hash    string
	}{
		{
			name:    "empty name",
			docName: "",
			docType: DocTypeText,
			hash:    validHash,
		},
		{
			name:    "unknown type",
			docName: "a.xyz",
			docType: DocumentType("xyz"),
			hash:    validHash,
		},
		{
			name:    "uppercase hash",
			docName: "a.txt",
			docType: DocTypeText,
			hash:    "ABC123",
		},
		{
			name:    "short hash",
			docName: "a.txt",
			docType: DocTypeText,
			hash:    "abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDocument(projectID, tt.docName, tt.docType, tt.hash)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestDocument_Validate_Version(t *testing.T) {
	d, err := NewDocument(uuid.New(), "a.txt", DocTypeText, HashContent([]byte("x")))
	require.NoError(t, err)

	for _, valid := range []string{"1.0.0", "v1.0.0", "v12.34.56"} {
		d.Version = valid
		assert.NoError(t, d.Validate(), valid)
	}

	for _, invalid := range []string{"1.0", "1.0.0.0", "latest", "v1.0", ""} {
		d.Version = invalid
		err := d.Validate()
		require.Error(t, err, invalid)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestHashContent_Stable(t *testing.T) {
	data := []byte("identical bytes")

	first := HashContent(data)
	second := HashContent(data)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.NotEqual(t, first, HashContent([]byte("different bytes")))
}

func TestDocumentTypeForExtension(t *testing.T) {
	tests := []struct {
		ext      string
		expected DocumentType
		ok       bool
	}{
		{"md", DocTypeMarkdown, true},
		{"markdown", DocTypeMarkdown, true},
		{"pdf", DocTypePDF, true},
		{"docx", DocTypeDOCX, true},
		{"html", DocTypeHTML, true},
		{"htm", DocTypeHTML, true},
		{"txt", DocTypeText, true},
		{"exe", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run("ext_"+tt.ext, func(t *testing.T) {
			docType, ok := DocumentTypeForExtension(tt.ext)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, docType)
		})
	}
}
