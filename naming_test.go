package thumbcrawl_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/thumbcrawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Alpha.jpg", want: "Alpha.jpg"},
		{name: "all forbidden", in: `a\b/c:d?e"f<g>h|i*j`, want: "a_b_c_d_e_f_g_h_i_j"},
		{name: "keeps unicode", in: "動画 タイトル.png", want: "動画 タイトル.png"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, thumbcrawl.SanitizeFileName(tt.in))
		})
	}
}

func TestSanitizeFileName_NeverReturnsForbiddenCharacters(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`C:\videos\clip?.jpg`,
		`"quoted" <tag> | pipe * star`,
		"////",
		`a:b:c`,
		"normal title",
	}
	for _, in := range inputs {
		got := thumbcrawl.SanitizeFileName(in)
		assert.False(t, strings.ContainsAny(got, `\/:?"<>|*`), "got %q for %q", got, in)
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()

	t.Run("title policy uses sanitized title", func(t *testing.T) {
		t.Parallel()

		got := thumbcrawl.FileName("Alpha/Beta", ".jpg", thumbcrawl.NamingOptions{Policy: thumbcrawl.NamingTitle}, 7)

		assert.Equal(t, "Alpha_Beta.jpg", got)
	})

	t.Run("title policy with empty title yields the extension", func(t *testing.T) {
		t.Parallel()

		got := thumbcrawl.FileName("", ".jpg", thumbcrawl.NamingOptions{}, 1)

		assert.Equal(t, ".jpg", got)
	})

	t.Run("sequential policy uses index", func(t *testing.T) {
		t.Parallel()

		got := thumbcrawl.FileName("Alpha", ".png", thumbcrawl.NamingOptions{Policy: thumbcrawl.NamingSequential}, 12)

		assert.Equal(t, "12.png", got)
	})

	t.Run("sequential policy can append title", func(t *testing.T) {
		t.Parallel()

		opts := thumbcrawl.NamingOptions{Policy: thumbcrawl.NamingSequential, AppendTitle: true}
		got := thumbcrawl.FileName("a:b", ".png", opts, 3)

		assert.Equal(t, "3_a_b.png", got)
	})

	t.Run("sequential policy skips empty title", func(t *testing.T) {
		t.Parallel()

		opts := thumbcrawl.NamingOptions{Policy: thumbcrawl.NamingSequential, AppendTitle: true}

		assert.Equal(t, "3.png", thumbcrawl.FileName("", ".png", opts, 3))
	})
}

func TestImageExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{url: "https://cdn.example.com/media/videos/tmb/1/1.jpg", want: ".jpg"},
		{url: "https://cdn.example.com/a/b.PNG?v=2", want: ".png"},
		{url: "https://cdn.example.com/a/b.webp", want: ".jpg"},
		{url: "https://cdn.example.com/a/noext", want: ".jpg"},
		{url: "https://cdn.example.com/a/b.gif#frag", want: ".gif"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, thumbcrawl.ImageExtension(tt.url))
		})
	}
}

func TestParseNamingPolicy(t *testing.T) {
	t.Parallel()

	p, err := thumbcrawl.ParseNamingPolicy("index")
	require.NoError(t, err)
	assert.Equal(t, thumbcrawl.NamingSequential, p)
	assert.Equal(t, "index", p.String())

	p, err = thumbcrawl.ParseNamingPolicy("TITLE")
	require.NoError(t, err)
	assert.Equal(t, thumbcrawl.NamingTitle, p)

	_, err = thumbcrawl.ParseNamingPolicy("random")
	require.Error(t, err)
	assert.Equal(t, thumbcrawl.EINVALID, thumbcrawl.ErrorCode(err))
}
