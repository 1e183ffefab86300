package schema

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"entity-sync/core/history"
	"entity-sync/core/mapping"
	"entity-sync/core/reconcile"
	reconcilemocks "entity-sync/core/reconcile/mocks"
	"entity-sync/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T, opts ...Option) (*fiber.App, *reconcilemocks.Transport) {
	tr := new(reconcilemocks.Transport)
	tr.On("FetchCatalog", mock.Anything, mapping.UserDefinedType, "address").Return(liveAddress(), nil)
	tr.On("FetchCatalog", mock.Anything, mapping.Table, "users").Return(liveUsers(), nil)

	svc := newTestService(tr, opts...)
	_, err := svc.registry.CompileAll(usersDescriptor(addressDescriptor()))
	require.NoError(t, err)

	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)
	return app, tr
}

func TestHandleListEntities(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/schema/entities", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body []EntityView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 2)
	assert.Equal(t, "address", body[0].Name)
	assert.Equal(t, "type", body[0].Kind)
	assert.Equal(t, "users", body[1].Name)
	assert.Equal(t, PropertyView{Name: "id", Column: "id", Type: "uuid", Role: "partition_key"}, body[1].Properties[0])
}

func TestHandleGetEntity(t *testing.T) {
	app, _ := setupTestApp(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"Found", "/schema/entities/users", 200},
		{"Case Insensitive", "/schema/entities/Users", 200},
		{"Missing", "/schema/entities/orders", 404},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestHandleResolvePath(t *testing.T) {
	app, _ := setupTestApp(t)

	t.Run("Nested", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/schema/entities/users/paths/home.city", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body struct {
			Path    string   `json:"path"`
			Columns []string `json:"columns"`
			Type    string   `json:"type"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "home.city", body.Path)
		assert.Equal(t, []string{"home", "city"}, body.Columns)
		assert.Equal(t, "text", body.Type)
	})

	t.Run("Unknown Property", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/schema/entities/users/paths/home.zip", nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestHandlePlan(t *testing.T) {
	app, tr := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/schema/plan", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Summary reconcile.Summary   `json:"summary"`
		Results []*reconcile.Result `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Summary.Entities)
	assert.Equal(t, 1, body.Summary.Drifted)
	assert.Equal(t, []string{"ALTER TABLE users ADD email text;"}, body.Results[1].Statements)
	tr.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}

func TestHandlePlanTransportFailure(t *testing.T) {
	tr := new(reconcilemocks.Transport)
	tr.On("FetchCatalog", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)
	svc := newTestService(tr)
	_, err := svc.registry.Compile(addressDescriptor())
	require.NoError(t, err)

	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/schema/plan", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestHandleHistory(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		app, _ := setupTestApp(t)
		resp, err := app.Test(httptest.NewRequest("GET", "/schema/history", nil))
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
	})

	t.Run("Invalid Limit", func(t *testing.T) {
		app, _ := setupTestApp(t, WithHistory(&fakeHistory{}))
		resp, err := app.Test(httptest.NewRequest("GET", "/schema/history?limit=x", nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("Listed", func(t *testing.T) {
		app, _ := setupTestApp(t, WithHistory(&fakeHistory{changes: []history.Change{
			{Entity: "users", Kind: "table", Policy: "update", Statement: "ALTER TABLE users ADD email text;"},
		}}))
		resp, err := app.Test(httptest.NewRequest("GET", "/schema/history?entity=users", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body []history.Change
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body, 1)
		assert.Equal(t, "update", body[0].Policy)
	})

	t.Run("Store Failure", func(t *testing.T) {
		app, _ := setupTestApp(t, WithHistory(&fakeHistory{err: assert.AnError}))
		resp, err := app.Test(httptest.NewRequest("GET", "/schema/history", nil))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
	})
}

func TestHandleScripts(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		app, _ := setupTestApp(t)
		for _, path := range []string{"/schema/scripts", "/schema/scripts/users"} {
			resp, err := app.Test(httptest.NewRequest("GET", path, nil))
			require.NoError(t, err)
			assert.Equal(t, 503, resp.StatusCode, path)
		}
	})

	t.Run("List", func(t *testing.T) {
		client := new(mocks.Client)
		ch := make(chan minio.ObjectInfo, 3)
		ch <- minio.ObjectInfo{Key: "schema/users.cql"}
		ch <- minio.ObjectInfo{Key: "schema/address.cql"}
		ch <- minio.ObjectInfo{Key: "schema/README"}
		close(ch)
		client.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

		app, _ := setupTestApp(t, WithPublisher(NewPublisher(client, "bucket", "schema/")))
		resp, err := app.Test(httptest.NewRequest("GET", "/schema/scripts", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body map[string][]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, []string{"address", "users"}, body["entities"])
	})

	t.Run("Get", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "bucket", "schema/users.cql", mock.Anything).
			Return(io.NopCloser(strings.NewReader("ALTER TABLE users ADD email text;\n")), nil)

		app, _ := setupTestApp(t, WithPublisher(NewPublisher(client, "bucket", "schema/")))
		resp, err := app.Test(httptest.NewRequest("GET", "/schema/scripts/users", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "ALTER TABLE users ADD email text;\n", string(body))
	})

	t.Run("Delete", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("RemoveObject", mock.Anything, "bucket", "schema/users.cql", mock.Anything).Return(nil)

		app, _ := setupTestApp(t, WithPublisher(NewPublisher(client, "bucket", "schema/")))
		resp, err := app.Test(httptest.NewRequest("DELETE", "/schema/scripts/users", nil))
		require.NoError(t, err)
		assert.Equal(t, 204, resp.StatusCode)
		client.AssertExpectations(t)
	})

	t.Run("Storage Failure", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)

		app, _ := setupTestApp(t, WithPublisher(NewPublisher(client, "bucket", "schema/")))
		resp, err := app.Test(httptest.NewRequest("GET", "/schema/scripts/users", nil))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
	})
}

