package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type data map[string]any

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Route("/api/vehicle", func(r chi.Router) {
		r.Get("/brand", func(w http.ResponseWriter, r *http.Request) {
			render.JSON(w, r, data{"data": []data{
				{"name": "Toyota", "_id": "b1"},
				{"name": "Honda", "_id": "b2"},
			}})
		})
		r.Get("/get-with-brand", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("brand") != "b1" {
				render.JSON(w, r, data{"data": []data{}})
				return
			}
			render.JSON(w, r, data{"data": []data{
				{"model": "Corolla", "_id": "m1", "brand": "b1"},
				{"model": "Camry", "_id": "m2", "brand": "b1"},
			}})
		})
		r.Get("/broken", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			switch chi.URLParam(r, "id") {
			case "m1":
				render.JSON(w, r, data{"data": data{
					"_id":   "m1",
					"model": "Corolla",
					"files": data{"side": "http://img/side.png", "front": "http://img/front.png"},
				}})
			case "m2":
				render.JSON(w, r, data{"data": data{
					"_id":   "m2",
					"files": []any{"http://img/a.png", 3, "http://img/b.png"},
				}})
			default:
				http.Error(w, "not found", http.StatusNotFound)
			}
		})
	})
	r.Get("/raw.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes"))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestListBrands(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL+"/api/", time.Second)

	brands, err := c.ListBrands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Item{{Name: "Toyota", ID: "b1"}, {Name: "Honda", ID: "b2"}}, brands)
}

func TestListModelsMapsModelField(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL+"/api", time.Second)

	models, err := c.ListModels(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, []Item{{Name: "Corolla", ID: "m1"}, {Name: "Camry", ID: "m2"}}, models)

	models, err = c.ListModels(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestGetVehicleObjectFiles(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL+"/api", time.Second)

	v, err := c.GetVehicle(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "Corolla", v.Model)

	sources, err := v.ImageSources()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://img/front.png", "http://img/side.png"}, sources)
}

func TestGetVehicleArrayFiles(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL+"/api", time.Second)

	v, err := c.GetVehicle(context.Background(), "m2")
	require.NoError(t, err)

	sources, err := v.ImageSources()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://img/a.png", "http://img/b.png"}, sources)
}

func TestGetVehicleNotFound(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL+"/api", time.Second)

	_, err := c.GetVehicle(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
}

func TestDecodeFailure(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL+"/api", time.Second)

	_, err := c.GetVehicle(context.Background(), "broken")
	assert.ErrorContains(t, err, "decode response")
}

func TestTransportFailure(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL+"/api", time.Second)
	srv.Close()

	_, err := c.ListBrands(context.Background())
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL+"/api", time.Second)

	body, err := c.Fetch(context.Background(), srv.URL+"/raw.png")
	require.NoError(t, err)
	defer body.Close()
	b, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))
}

func TestImageSourcesEmpty(t *testing.T) {
	v := Vehicle{}
	sources, err := v.ImageSources()
	require.NoError(t, err)
	assert.Empty(t, sources)

	v.Files = json.RawMessage(`"nope"`)
	_, err = v.ImageSources()
	assert.Error(t, err)
}

func TestYears(t *testing.T) {
	years := Years(1980, 2025)
	require.Len(t, years, 46)
	assert.Equal(t, Item{Name: "1980", ID: "1980"}, years[0])
	assert.Equal(t, Item{Name: "2025", ID: "2025"}, years[45])
	assert.Nil(t, Years(2000, 1999))
}
