package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/patdaburu/mothergeo/internal/entity"
	"github.com/patdaburu/mothergeo/internal/parser"
	"github.com/patdaburu/mothergeo/internal/pg"
	"github.com/patdaburu/mothergeo/internal/schema"
	"github.com/patdaburu/mothergeo/internal/store/memstore"
	assert "github.com/stretchr/testify/require"
)

const testModel = `{
  "name": "Roads",
  "revision": {"title": "First", "sequence": 3, "authorName": "Pat Blair", "authorEmail": "pat@daburu.net"},
  "spatial": {
    "commonSrid": 4326,
    "defaultIdentity": "srcOID",
    "commonFields": [
      {"name": "srcOID", "type": "int", "source": {}, "target": {"guaranteed": true}, "i18n": {}}
    ],
    "featureTables": [
      {
        "name": "Centerlines",
        "geometryType": "polyline",
        "nena": {"analog": "RCL"},
        "i18n": {
          "default": {"friendlyName": "Road Centerlines"},
          "ja_jp": {"friendlyName": "道路中心線"}
        },
        "fields": [
          {
            "name": "srcFullNam", "type": "text", "preferences": {"length": 100},
            "source": {"requirement": "required", "analogs": ["strnam"]}, "target": {},
            "i18n": {"default": {"friendlyName": "Full Name"}}
          }
        ]
      },
      {
        "name": "Junk",
        "geometryType": "polygon",
        "nena": {},
        "i18n": {},
        "fields": [
          {"name": "guid", "type": "uuid", "source": {}, "target": {}, "i18n": {}}
        ]
      }
    ]
  }
}`

func newTestServer(t *testing.T) (*gin.Engine, *memstore.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	model, err := parser.Parse(testModel)
	assert.NoError(t, err)

	store := memstore.New()
	return newRouter(t, store, model), store
}

func newRouter(t *testing.T, store entity.DataStore, models ...*schema.ModelInfo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := NewServer(models, store)
	assert.NoError(t, err)

	return NewRouter(s)
}

// sitesModel is a model with a single "Sites" table holding one field.
func sitesModel(t *testing.T, name string, field string, fieldType string) *schema.ModelInfo {
	t.Helper()

	model, err := parser.Parse(fmt.Sprintf(`{
	  "name": %q,
	  "revision": {"title": "t", "sequence": 1, "authorName": "a", "authorEmail": "a@b.c"},
	  "spatial": {
	    "defaultIdentity": "id",
	    "featureTables": [{
	      "name": "Sites", "geometryType": "point", "nena": {}, "i18n": {},
	      "fields": [
	        {"name": "id", "type": "int", "source": {}, "target": {}, "i18n": {}},
	        {"name": %q, "type": %q, "source": {}, "target": {}, "i18n": {}}
	      ]
	    }]
	  }
	}`, name, field, fieldType))
	assert.NoError(t, err)

	return model
}

func do(t *testing.T, r *gin.Engine, method string, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	r.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))

	return out
}

func TestModelList(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodGet, "/api/models", "")
	assert.Equal(t, http.StatusOK, w.Code)

	out := decode[[]map[string]any](t, w)
	assert.Len(t, out, 1)
	assert.Equal(t, "Roads", out[0]["name"])
	assert.Equal(t, map[string]any{
		"title":       "First",
		"sequence":    3.0,
		"authorName":  "Pat Blair",
		"authorEmail": "pat@daburu.net",
	}, out[0]["revision"])
}

func TestModel(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodGet, "/api/models/roads", "")
	assert.Equal(t, http.StatusOK, w.Code)

	out := decode[map[string]any](t, w)
	assert.Equal(t, 4326.0, out["commonSrid"])
	assert.Equal(t, "srcOID", out["defaultIdentity"])
	assert.Len(t, out["relations"], 2)

	w = do(t, r, http.MethodGet, "/api/models/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRelationLocales(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodGet, "/api/models/roads/relations/centerlines", "")
	assert.Equal(t, http.StatusOK, w.Code)

	out := decode[relationDetail](t, w)
	assert.Equal(t, "Centerlines", out.Name)
	assert.Equal(t, "POLYLINE", out.GeometryType)
	assert.Equal(t, 4326, out.SRID)
	assert.Equal(t, "srcOID", out.Identity)
	assert.Equal(t, "RCL", *out.NenaAnalog)
	assert.Equal(t, "Road Centerlines", out.Strings["friendlyName"])
	assert.Len(t, out.Fields, 2)
	assert.Equal(t, 100, *out.Fields[0].Length)
	assert.Equal(t, "REQUIRED", out.Fields[0].Requirement)

	w = do(t, r, http.MethodGet, "/api/models/roads/relations/centerlines?locale=ja_jp", "")
	out = decode[relationDetail](t, w)
	assert.Equal(t, "道路中心線", out.Strings["friendlyName"])
	assert.Equal(t, "Full Name", out.Fields[0].Strings["friendlyName"])

	w = do(t, r, http.MethodGet, "/api/models/roads/relations/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDDL(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodGet, "/api/models/roads/relations/centerlines/ddl", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `create table if not exists "public"."centerlines" (`)
	assert.Contains(t, w.Body.String(), `"srcfullnam" varchar(100)`)
	assert.Contains(t, w.Body.String(), `"geometry" geometry(LineString,4326)`)

	w = do(t, r, http.MethodGet, "/api/models/roads/relations/junk/ddl", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "UUID")
}

func TestFeatures(t *testing.T) {
	r, store := newTestServer(t)

	body := `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "properties": {"srcOID": 1, "srcFullNam": "MAIN ST"},
	     "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}},
	    {"type": "Feature", "properties": {"srcOID": 2},
	     "geometry": {"type": "LineString", "coordinates": [[1, 1], [2, 2]]}}
	  ]
	}`

	w := do(t, r, http.MethodPost, "/api/models/roads/relations/centerlines/features", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"added": 2}`, w.Body.String())

	rows := store.Rows(pg.NewTableName("centerlines"))
	assert.Len(t, rows, 2)
	assert.Equal(t, "MAIN ST", rows[0].Values["srcfullnam"])

	bad := `{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "properties": {"srcOID": 3}, "geometry": {"type": "Point", "coordinates": [0, 0]}}
	]}`
	w = do(t, r, http.MethodPost, "/api/models/roads/relations/centerlines/features", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/models/roads/relations/centerlines/features", "nope")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRelationsOfModelsAreSeparate(t *testing.T) {
	r := newRouter(t, memstore.New(), sitesModel(t, "A", "alpha", "text"), sitesModel(t, "B", "beta", "float"))

	w := do(t, r, http.MethodGet, "/api/models/b/relations/sites/ddl", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"beta" double precision`)
	assert.NotContains(t, w.Body.String(), "alpha")

	// Both models want the same table, so the second one can't be made.
	w = do(t, r, http.MethodGet, "/api/models/a/relations/sites/ddl", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "alpha")
}

func TestDuplicateModelNames(t *testing.T) {
	_, err := NewServer([]*schema.ModelInfo{
		sitesModel(t, "A", "alpha", "text"),
		sitesModel(t, "a", "beta", "float"),
	}, memstore.New())

	assert.ErrorIs(t, err, schema.ErrDuplicateName)
}

func uploadBody(ids ...int) string {
	var features []string
	for _, id := range ids {
		features = append(features, fmt.Sprintf(
			`{"type": "Feature", "properties": {"id": %d}, "geometry": {"type": "Point", "coordinates": [0, 0]}}`, id))
	}

	return `{"type": "FeatureCollection", "features": [` + strings.Join(features, ",") + `]}`
}

// plainStore hides the batches of a memstore.
type plainStore struct {
	entity.DataStore
}

func (p plainStore) Rollback(ctx context.Context) error {
	return p.DataStore.(*memstore.Store).Rollback(ctx)
}

func TestConcurrentUploads(t *testing.T) {
	tests := []struct {
		name  string
		store func(*memstore.Store) entity.DataStore
	}{
		{"batches", func(s *memstore.Store) entity.DataStore { return s }},
		{"serialized", func(s *memstore.Store) entity.DataStore { return plainStore{s} }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := memstore.New()
			r := newRouter(t, test.store(store), sitesModel(t, "A", "alpha", "text"))

			const uploads = 20
			codes := make([]int, uploads)

			var wg sync.WaitGroup
			for i := 0; i < uploads; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()

					body := uploadBody(2*i+1, 2*i+2)
					if i%2 == 1 {
						// The second feature repeats the first id.
						body = uploadBody(2*i+1, 2*i+1)
					}

					w := do(t, r, http.MethodPost, "/api/models/a/relations/sites/features", body)
					codes[i] = w.Code
				}(i)
			}
			wg.Wait()

			for i, code := range codes {
				if i%2 == 1 {
					assert.Equal(t, http.StatusBadRequest, code)
				} else {
					assert.Equal(t, http.StatusCreated, code)
				}
			}

			rows := store.Rows(pg.NewTableName("sites"))
			assert.Len(t, rows, uploads)

			for _, row := range rows {
				id := row.Values["id"].(int64)
				assert.Equal(t, int64(0), ((id-1)/2)%2, "row %d of a rejected upload was stored", id)
			}
		})
	}
}
