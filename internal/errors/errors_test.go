package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tphakala/raextract/internal/errors"
)

func TestBuilderDefaults(t *testing.T) {
	t.Parallel()

	ee := apperrors.Newf("boom").Build()
	assert.Equal(t, apperrors.ComponentUnknown, ee.Component)
	assert.Equal(t, apperrors.CategoryGeneric, ee.Category)
	assert.Equal(t, "boom", ee.Error())
}

func TestBuilderFieldsAndContext(t *testing.T) {
	t.Parallel()

	ee := apperrors.Newf("rename failed").
		Component("writer").
		Category(apperrors.CategoryWrite).
		FileContext("/tmp/out.ogg", 2048).
		Context("bucket", "short_5-15s").
		Build()

	require.Equal(t, "writer", ee.Component)
	require.Equal(t, apperrors.CategoryWrite, ee.Category)
	ctx := ee.GetContext()
	assert.Equal(t, "/tmp/out.ogg", ctx["path"])
	assert.Equal(t, int64(2048), ctx["size_bytes"])
	assert.Equal(t, "short_5-15s", ctx["bucket"])
}

func TestIsCategory(t *testing.T) {
	t.Parallel()

	ee := apperrors.Newf("timeout").Category(apperrors.CategoryClassify).Build()
	assert.True(t, apperrors.IsCategory(ee, apperrors.CategoryClassify))
	assert.False(t, apperrors.IsCategory(ee, apperrors.CategoryWrite))
}

func TestMarkReported(t *testing.T) {
	t.Parallel()

	ee := apperrors.Newf("x").Build()
	assert.False(t, ee.IsReported())
	ee.MarkReported()
	assert.True(t, ee.IsReported())
}
