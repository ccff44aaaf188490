package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONMarshalNoHTMLEscape(t *testing.T) {
	raw, err := JSON.Marshal(payload{Name: "<b>&</b>", Count: 2})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"<b>&</b>","count":2}`, string(raw))
}

func TestJSONLenientAllowsUnknownFields(t *testing.T) {
	var p payload
	err := JSON.Unmarshal([]byte(`{"name":"x","count":1,"extra":true}`), &p)
	require.NoError(t, err)
	assert.Equal(t, "x", p.Name)
}

func TestJSONStrictRejectsUnknownFields(t *testing.T) {
	var p payload
	err := JSONStrict.Unmarshal([]byte(`{"name":"x","extra":true}`), &p)
	assert.Error(t, err)
}

func TestJSONRejectsTrailingContent(t *testing.T) {
	var p payload
	err := JSON.Unmarshal([]byte(`{"name":"x"}{"name":"y"}`), &p)
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", JSON.ContentType())
}
