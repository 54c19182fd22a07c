package schema_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/relabs-tech/netpie/core/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemSchema = `
{
  "$id": "https://netpie.test/item.json",
  "type": "object",
  "required": ["alias"],
  "properties": {
    "alias": { "type": "string", "minLength": 1 }
  }
}`

func TestValidate(t *testing.T) {
	v, err := schema.NewValidator(itemSchema)
	require.NoError(t, err)
	require.True(t, v.HasSchema("https://netpie.test/item.json"))

	assert.NoError(t, v.Validate("https://netpie.test/item.json", []byte(`{"alias":"led"}`)))

	err = v.Validate("https://netpie.test/item.json", []byte(`{"alias":""}`))
	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 1)

	err = v.Validate("https://netpie.test/unknown.json", []byte(`{}`))
	assert.Error(t, err)
}

func TestValidateBrokenDocument(t *testing.T) {
	v, err := schema.NewValidator(itemSchema)
	require.NoError(t, err)

	err = v.Validate("https://netpie.test/item.json", []byte(`{"alias":`))
	require.Error(t, err)
	var verr *schema.ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestNewValidatorNeedsID(t *testing.T) {
	_, err := schema.NewValidator(`{"type":"object"}`)
	assert.Error(t, err)

	_, err = schema.NewValidator(`{`)
	assert.Error(t, err)
}

func TestNewValidatorFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"schemas/item.json":  {Data: []byte(itemSchema)},
		"schemas/readme.txt": {Data: []byte("ignored")},
	}
	v, err := schema.NewValidatorFromFS(fsys, "schemas")
	require.NoError(t, err)
	assert.True(t, v.HasSchema("https://netpie.test/item.json"))

	_, err = schema.NewValidatorFromFS(fsys, "missing")
	assert.Error(t, err)
}
