package routerhelper

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func TestRouteGroup(t *testing.T) {
	router := httprouter.New()
	api := NewRouteGroup(router, "/api")
	v1 := api.Group("/v1")

	hit := ""
	api.GET("/nearest", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		hit = "nearest"
	})
	v1.GET("/ways/:id", func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		hit = "way " + p.ByName("id")
	})
	api.POST("/batch", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		hit = "batch"
	})

	testCases := []struct {
		name    string
		method  string
		target  string
		wantHit string
		status  int
	}{
		{name: "top level", method: http.MethodGet, target: "/api/nearest", wantHit: "nearest", status: http.StatusOK},
		{name: "nested group with param", method: http.MethodGet, target: "/api/v1/ways/42", wantHit: "way 42", status: http.StatusOK},
		{name: "post", method: http.MethodPost, target: "/api/batch", wantHit: "batch", status: http.StatusOK},
		{name: "not registered", method: http.MethodGet, target: "/nearest", wantHit: "", status: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hit = ""
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.target, nil))
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.wantHit, hit)
		})
	}
}
