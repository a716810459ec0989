package genre

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Science Fiction", "science-fiction"},
		{"Sci-Fi/Fantasy", "sci-fi-fantasy"},
		{"  Self  Help!! ", "self-help"},
		{"Ficción", "ficcion"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "science-fiction", Canonical("Sci-Fi"))
	assert.Equal(t, "science-fiction", Canonical("Science Fiction"))
	assert.Equal(t, "young-adult", Canonical("YA"))
	assert.Equal(t, "dystopian", Canonical("Dystopian"))
}

func TestSame(t *testing.T) {
	assert.True(t, Same("scifi", "Science Fiction"))
	assert.True(t, Same("Memoir", "Biography"))
	assert.False(t, Same("Fantasy", "Romance"))
}
