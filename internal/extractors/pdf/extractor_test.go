package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	output []byte
	err    error
	name   string
	args   []string
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.name = name
	r.args = args
	return r.output, r.err
}

func TestExtractRejectsInvalidPDF(t *testing.T) {
	runner := &recordingRunner{output: []byte("should not run")}

	_, err := NewWithRunner(runner).Extract(context.Background(), []byte("not a pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pdf")
	assert.Empty(t, runner.name, "pdftotext must not run for invalid input")
}

func TestJoinPages(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "form feeds become blank lines",
			raw:  "page one\ftext on page two\f",
			want: "page one\n\ntext on page two",
		},
		{
			name: "blank pages dropped",
			raw:  "first\f\f  \f last",
			want: "first\n\nlast",
		},
		{
			name: "single page trimmed",
			raw:  "  only page \n",
			want: "only page",
		},
		{
			name: "empty output",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinPages(tt.raw))
		})
	}
}
