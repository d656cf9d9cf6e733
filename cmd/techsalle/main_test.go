package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techsalle/inventory/app/api"
	"github.com/techsalle/inventory/models/memory"
)

func newTestAPI(t *testing.T) string {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memory.New()
	srv := httptest.NewServer(api.NewRouter(context.Background(), api.Deps{
		Products:   store,
		Categories: store,
		Statistics: store,
		Health:     store,
		Log:        log,
	}, api.Options{}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, apiURL, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(append([]string{"--api-url", apiURL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestProductWorkflow(t *testing.T) {
	apiURL := newTestAPI(t)

	out, err := run(t, apiURL, "", "products", "add",
		"--name", "ThinkPad X1", "--price", "999.99", "--stock", "5", "--category", "Laptops")
	require.NoError(t, err)
	assert.Contains(t, out, `Product "ThinkPad X1" saved`)
	assert.Contains(t, out, "Laptops (#1)")

	out, err = run(t, apiURL, "", "products", "list", "--category", "Laptops")
	require.NoError(t, err)
	assert.Contains(t, out, `Filters: category Laptops`)
	assert.Contains(t, out, "ThinkPad X1")
	assert.Contains(t, out, "999.99")

	out, err = run(t, apiURL, "", "products", "update", "1", "--stock", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Stock:")
	assert.Contains(t, out, "7")

	out, err = run(t, apiURL, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "999.99")

	out, err = run(t, apiURL, "n\n", "products", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")

	out, err = run(t, apiURL, "", "products", "delete", "1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	out, err = run(t, apiURL, "", "products", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No products found")
}

func TestCategoryInUseIsReported(t *testing.T) {
	apiURL := newTestAPI(t)

	_, err := run(t, apiURL, "", "categories", "add", "Laptops")
	require.NoError(t, err)
	_, err = run(t, apiURL, "", "products", "add",
		"--name", "X1", "--price", "10", "--stock", "1", "--category", "1")
	require.NoError(t, err)

	_, err = run(t, apiURL, "y\n", "categories", "delete", "1")
	require.Error(t, err)
	assert.Equal(t, "Category cannot be deleted because it has associated products", noticeText(err))

	_, err = run(t, apiURL, "", "categories", "rename", "1", "Notebooks")
	require.NoError(t, err)
	out, err := run(t, apiURL, "", "products", "get", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Notebooks (#1)")
}

func TestInvalidInputIsRejectedLocally(t *testing.T) {
	apiURL := newTestAPI(t)

	_, err := run(t, apiURL, "", "products", "add", "--name", "X1", "--price", "0", "--stock", "1", "--category", "1")
	require.Error(t, err)
	assert.Equal(t, "Price must be a number greater than zero", noticeText(err))

	_, err = run(t, apiURL, "", "products", "get", "abc")
	require.Error(t, err)
	assert.Equal(t, `invalid id "abc"`, noticeText(err))
}
