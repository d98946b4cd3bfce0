package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	brand struct {
		Name string `json:"name"`
		ID   string `json:"_id"`
	}

	vehicle struct {
		ID    string          `json:"_id"`
		Brand string          `json:"brand"`
		Model string          `json:"model"`
		Files json.RawMessage `json:"files,omitempty"`
	}

	// fixtures is the catalog served by the mock.
	fixtures struct {
		Brands   []brand   `json:"brands"`
		Vehicles []vehicle `json:"vehicles"`
	}

	modelRecord struct {
		Model string `json:"model"`
		ID    string `json:"_id"`
	}

	envelope struct {
		Data any `json:"data"`
	}
)

// defaultFixtures is served when no fixture file is given. The files point at
// the mock's own /images route.
func defaultFixtures() *fixtures {
	return &fixtures{
		Brands: []brand{
			{Name: "Toyota", ID: "toyota"},
			{Name: "Honda", ID: "honda"},
		},
		Vehicles: []vehicle{
			{ID: "corolla", Brand: "toyota", Model: "Corolla",
				Files: json.RawMessage(`{"front":"/images/corolla-front.png","side":"/images/corolla-side.png"}`)},
			{ID: "camry", Brand: "toyota", Model: "Camry",
				Files: json.RawMessage(`["/images/camry-side.png"]`)},
			{ID: "civic", Brand: "honda", Model: "Civic",
				Files: json.RawMessage(`{"rear":"/images/civic-rear.png"}`)},
		},
	}
}

// loadFixtures reads a fixture file.
func loadFixtures(path string) (*fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeFixtures(f)
}

func decodeFixtures(r io.Reader) (*fixtures, error) {
	var fx fixtures
	if err := render.DecodeJSON(r, &fx); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &fx, nil
}

func setupRouter(fx *fixtures, imageDir string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api/vehicle", func(r chi.Router) {
		r.Get("/brand", handleBrands(fx))
		r.Get("/get-with-brand", handleModels(fx))
		r.Get("/{id}", handleVehicle(fx))
	})

	if imageDir != "" {
		r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(imageDir))))
	}
	return r
}

func handleBrands(fx *fixtures) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, envelope{Data: fx.Brands})
	}
}

func handleModels(fx *fixtures) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("brand")
		models := make([]modelRecord, 0)
		for _, v := range fx.Vehicles {
			if v.Brand == id {
				models = append(models, modelRecord{Model: v.Model, ID: v.ID})
			}
		}
		render.JSON(w, r, envelope{Data: models})
	}
}

func handleVehicle(fx *fixtures) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		for _, v := range fx.Vehicles {
			if v.ID != id {
				continue
			}
			files, err := absoluteFiles(v.Files, baseURL(r))
			if err != nil {
				logrus.WithError(err).WithField("vehicle", id).Error("bad fixture files")
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, map[string]string{"error": "bad fixture"})
				return
			}
			v.Files = files
			render.JSON(w, r, envelope{Data: v})
			return
		}
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "vehicle not found"})
	}
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// absoluteFiles prefixes root-relative file paths with base, keeping the
// object or array shape of files.
func absoluteFiles(files json.RawMessage, base string) (json.RawMessage, error) {
	raw := strings.TrimSpace(string(files))
	if raw == "" || raw == "null" {
		return files, nil
	}

	fix := func(v any) any {
		if s, ok := v.(string); ok && strings.HasPrefix(s, "/") {
			return base + s
		}
		return v
	}

	if strings.HasPrefix(raw, "[") {
		var list []any
		if err := json.Unmarshal(files, &list); err != nil {
			return nil, err
		}
		for i := range list {
			list[i] = fix(list[i])
		}
		return json.Marshal(list)
	}

	var byKey map[string]any
	if err := json.Unmarshal(files, &byKey); err != nil {
		return nil, err
	}
	for k, v := range byKey {
		byKey[k] = fix(v)
	}
	return json.Marshal(byKey)
}
