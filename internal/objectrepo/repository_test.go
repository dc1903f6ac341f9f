// File: internal/objectrepo/repository_test.go
package objectrepo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/testpilot-qa/testpilot-cli/api/schemas"
	"github.com/testpilot-qa/testpilot-cli/internal/objectrepo"
)

func TestRepository_CreateAndGet(t *testing.T) {
	repo := objectrepo.New(t.TempDir(), zap.NewNop())

	original := schemas.NewLocator(schemas.SelectorXPath, "//button[@id='submit-btn']")
	require.NoError(t, repo.Create("Page_Login/btn_Submit", original))

	loaded, err := repo.GetLocator("Page_Login/btn_Submit")
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestRepository_SetLocatorReplacesSelection(t *testing.T) {
	repo := objectrepo.New(t.TempDir(), zap.NewNop())

	require.NoError(t, repo.Create("btn", schemas.NewLocator(schemas.SelectorXPath, "//button[@id='old']")))

	healed := schemas.NewLocator(schemas.SelectorCSS, "#submit-btn")
	require.NoError(t, repo.SetLocator("btn", healed))

	loaded, err := repo.GetLocator("btn")
	require.NoError(t, err)
	assert.Equal(t, healed, loaded)
}

func TestRepository_SetLocatorKeepsOtherSelectors(t *testing.T) {
	repo := objectrepo.New(t.TempDir(), zap.NewNop())

	require.NoError(t, repo.Create("btn", schemas.NewLocator(schemas.SelectorXPath, "//button[@id='x']")))
	require.NoError(t, repo.SetLocator("btn", schemas.NewLocator(schemas.SelectorCSS, "#x")))

	// Switching back to xpath still finds the original xpath entry.
	require.NoError(t, repo.SetLocator("btn", schemas.NewLocator(schemas.SelectorXPath, "//button[@id='y']")))
	loaded, err := repo.GetLocator("btn")
	require.NoError(t, err)
	assert.Equal(t, schemas.SelectorXPath, loaded.Kind)
	assert.Equal(t, "//button[@id='y']", loaded.Value)
}

func TestRepository_GetMissingObject(t *testing.T) {
	repo := objectrepo.New(t.TempDir(), zap.NewNop())
	_, err := repo.GetLocator("nope")
	assert.ErrorIs(t, err, schemas.ErrObjectNotFound)
}

func TestRepository_SetMissingObject(t *testing.T) {
	repo := objectrepo.New(t.TempDir(), zap.NewNop())
	err := repo.SetLocator("nope", schemas.NewLocator(schemas.SelectorCSS, "#x"))
	assert.ErrorIs(t, err, schemas.ErrObjectNotFound)
}
