package docs

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwaggerDocument(t *testing.T) {
	raw := SwaggerInfo.ReadDoc()

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData([]byte(raw))
	require.NoError(t, err, "document must parse and every $ref must resolve")

	assert.Equal(t, "OpsEase Ledger API", doc.Info.Title)
	require.Len(t, doc.Servers, 1)
	assert.Equal(t, "/api/v1", doc.Servers[0].URL)

	for _, path := range []string{
		"/ledger", "/ledger/summary", "/ledger/parties", "/ledger/export", "/ledger/statements",
		"/invoices", "/invoices/{id}",
		"/customers", "/customers/{id}",
		"/suppliers", "/suppliers/{id}",
		"/system/info",
	} {
		assert.NotNil(t, doc.Paths.Value(path), "missing path %s", path)
	}

	ledger := doc.Paths.Value("/ledger")
	require.NotNil(t, ledger)
	require.NotNil(t, ledger.Post)
	assert.Equal(t, "appendLedgerEntry", ledger.Post.OperationID)

	_, ok := doc.Components.SecuritySchemes["BearerAuth"]
	assert.True(t, ok)
	assert.NoError(t, doc.Components.Validate(context.Background()))
}
