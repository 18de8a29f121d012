package publisher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parodybot/internal/domain"
	"parodybot/internal/textutil"
)

var samplePost = domain.Post{ID: "1790000000000000000", Author: "saylor", Text: "Bitcoin is hope."}

func TestCompose_TextAndPermalink(t *testing.T) {
	text := "lol sure buddy, source: trust me bro 🚀"

	got, err := Compose(text, samplePost, Options{Limit: 280})
	require.NoError(t, err)

	assert.Equal(t, text+"\n\n"+samplePost.Permalink(), got.Text)
	assert.Empty(t, got.QuoteID)
	assert.LessOrEqual(t, textutil.Len(got.Text), 280)
}

func TestCompose_TagsOnlyWhenTheyFit(t *testing.T) {
	got, err := Compose("wagmi forever", samplePost, Options{
		Tags:    []string{"crypto", "#wagmi", "#ngmi"},
		MaxTags: 2,
		Limit:   280,
	})
	require.NoError(t, err)
	assert.Equal(t, "wagmi forever #crypto #wagmi\n\n"+samplePost.Permalink(), got.Text)

	long := strings.Repeat("a", 220)
	got, err = Compose(long, samplePost, Options{
		Tags:    []string{"#averyveryverylongtag"},
		MaxTags: 2,
		Limit:   280,
	})
	require.NoError(t, err)
	assert.NotContains(t, got.Text, "#averyveryverylongtag")
	assert.LessOrEqual(t, textutil.Len(got.Text), 280)
}

func TestCompose_TruncatesToFit(t *testing.T) {
	text := strings.Repeat("number go up. ", 30)

	got, err := Compose(text, samplePost, Options{Limit: 280})
	require.NoError(t, err)

	assert.LessOrEqual(t, textutil.Len(got.Text), 280)
	assert.True(t, strings.HasSuffix(got.Text, "\n\n"+samplePost.Permalink()))
	body := strings.TrimSuffix(got.Text, "\n\n"+samplePost.Permalink())
	assert.True(t, strings.HasSuffix(body, "up."), "cut should land on a sentence end: %q", body)
}

func TestCompose_QuoteMode(t *testing.T) {
	got, err := Compose("ser this is a casino", samplePost, Options{Quote: true, Limit: 280})
	require.NoError(t, err)

	assert.Equal(t, "ser this is a casino", got.Text)
	assert.Equal(t, samplePost.ID, got.QuoteID)
	assert.NotContains(t, got.Text, "https://")
}

func TestCompose_Rejects(t *testing.T) {
	_, err := Compose("   ", samplePost, Options{Limit: 280})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = Compose("text", samplePost, Options{Limit: 20})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
