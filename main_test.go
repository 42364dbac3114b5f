package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/toystacks/toy-server/config"
	"github.com/toystacks/toy-server/models"
)

type emptyStore struct{}

func (emptyStore) FindToys(context.Context, models.ToyQuery) ([]bson.M, error) { return nil, nil }
func (emptyStore) FindToyByID(context.Context, primitive.ObjectID) (bson.M, error) {
	return nil, nil
}
func (emptyStore) InsertToy(context.Context, bson.M) (models.InsertAck, error) {
	return models.InsertAck{Acknowledged: true, InsertedID: primitive.NewObjectID()}, nil
}
func (emptyStore) UpdateToy(context.Context, primitive.ObjectID, bson.M) (models.UpdateAck, error) {
	return models.UpdateAck{Acknowledged: true}, nil
}
func (emptyStore) DeleteToy(context.Context, primitive.ObjectID) (models.DeleteAck, error) {
	return models.DeleteAck{Acknowledged: true}, nil
}
func (emptyStore) Ping(context.Context) error { return nil }

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		DBTimeout:         time.Second,
		AllToysLimit:      config.DefaultAllToysLimit,
		CategoryLimit:     config.DefaultCategoryLimit,
		CategoryAllowList: config.DefaultCategoryAllowList,
	}
	return newRouter(cfg, emptyStore{})
}

func TestRouterAllowsAnyOrigin(t *testing.T) {
	r := testRouter()

	req := httptest.NewRequest(http.MethodOptions, "/update-toy/64b7f0c2a1b2c3d4e5f60718", nil)
	req.Header.Set("Origin", "https://toys.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)

	req = httptest.NewRequest(http.MethodGet, "/all-toys", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "[]", w.Body.String())
}

func TestRouterServesRootAndMetrics(t *testing.T) {
	r := testRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Toy server is running", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "toyserver_http_requests_total")
}

func TestServerBoundsHeaderReads(t *testing.T) {
	srv := newServer(&config.Config{Port: "5000"}, testRouter())
	assert.Equal(t, ":5000", srv.Addr)
	assert.Equal(t, readHeaderTimeout, srv.ReadHeaderTimeout)
	assert.Greater(t, srv.ReadHeaderTimeout, time.Duration(0))
}
