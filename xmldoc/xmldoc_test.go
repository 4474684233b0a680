package xmldoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `<?xml version="1.0"?>
<!-- definition -->
<campaign>
  <campaignUrn>  urn:a:b  </campaignUrn>
  <surveys>
    <survey><id>s1</id></survey>
    <survey><id>s2</id></survey>
  </surveys>
</campaign>`

func TestParse(t *testing.T) {
	root, err := ParseString(doc)
	require.NoError(t, err)

	assert.Equal(t, "campaign", root.Name)

	urn, err := root.OneText("campaignUrn")
	require.NoError(t, err)
	assert.Equal(t, "urn:a:b", urn)

	surveys, err := root.One("surveys")
	require.NoError(t, err)
	assert.Len(t, surveys.All("survey"), 2)
}

func TestCardinality(t *testing.T) {
	root, err := ParseString(doc)
	require.NoError(t, err)

	_, err = root.One("campaignName")
	var cardErr *CardinalityError
	require.ErrorAs(t, err, &cardErr)
	assert.Equal(t, 0, cardErr.Found)

	surveys, _ := root.One("surveys")
	_, err = surveys.Optional("survey")
	require.ErrorAs(t, err, &cardErr)
	assert.Equal(t, 2, cardErr.Found)

	text, ok, err := root.OptionalText("iconUrl")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"",
		"<a><b></a>",
		"<a/><b/>",
		"hello <a/>",
	} {
		_, err := ParseString(src)
		assert.Error(t, err, src)
	}
}
