package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"file URI", "file:///Users/test/documents", "/Users/test/documents"},
		{"file URI with spaces", "file:///Users/test/my documents", "/Users/test/my documents"},
		{"bare absolute path", "/Users/test/documents", "/Users/test/documents"},
		{"relative path", "sample_data", "sample_data"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.uri))
		})
	}
}
