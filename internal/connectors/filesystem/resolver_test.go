package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveLocalPath(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     string
	}{
		{
			name:     "file:// URI is converted to local path",
			location: "file:///home/test/documents/file.txt",
			want:     "/home/test/documents/file.txt",
		},
		{
			name:     "file:// URI with spaces",
			location: "file:///home/test/my documents/file.txt",
			want:     "/home/test/my documents/file.txt",
		},
		{
			name:     "bare path passes through unchanged",
			location: "/home/test/documents/file.txt",
			want:     "/home/test/documents/file.txt",
		},
		{
			name:     "relative path passes through unchanged",
			location: "relative/path/to/file.txt",
			want:     "relative/path/to/file.txt",
		},
		{
			name:     "empty string passes through",
			location: "",
			want:     "",
		},
		{
			name:     "file:// prefix only",
			location: "file://",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveLocalPath(tt.location)
			assert.Equal(t, tt.want, got)
		})
	}
}
