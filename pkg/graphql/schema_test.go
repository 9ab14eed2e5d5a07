package graphql

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func greetingSchema(t *testing.T) graphql.Schema {
	t.Helper()
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"greet": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{"name": &graphql.ArgumentConfig{Type: graphql.String}},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "hello " + p.Args["name"].(string), nil
				},
			},
		},
	})
	schema, err := NewSchema(query)
	require.NoError(t, err)
	return schema
}

func TestHandlerExecutesQueryWithVariables(t *testing.T) {
	body := `{"query":"query($n: String){ greet(name: $n) }","variables":{"n":"asha"}}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	rec := httptest.NewRecorder()

	Handler(greetingSchema(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"greet":"hello asha"}}`, rec.Body.String())
}

func TestHandlerRejectsMissingQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	Handler(greetingSchema(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"A GraphQL query is required"}`, rec.Body.String())
}

func TestHandlerReportsUnknownField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ nope }"}`))
	rec := httptest.NewRecorder()

	Handler(greetingSchema(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"errors"`)
}
