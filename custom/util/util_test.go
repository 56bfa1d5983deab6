package util

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"tailor_shop/model"
)

func TestFetchReqObject(t *testing.T) {
	req := struct {
		ID string `json:"id"`
	}{}
	r := httptest.NewRequest(http.MethodGet, "http://localhosts", bytes.NewBuffer([]byte(`{"id":"abc"}`)))
	assert.Nil(t, FetchReqObject(r, &req))
	assert.Equal(t, "abc", req.ID)

	r = httptest.NewRequest(http.MethodGet, "http://localhosts", nil)
	assert.Nil(t, FetchReqObject(r, &req))
	assert.Equal(t, "abc", req.ID)

	r = httptest.NewRequest(http.MethodGet, "http://localhosts", bytes.NewBuffer([]byte(`{"id":`)))
	assert.Error(t, FetchReqObject(r, &req))

	assert.Error(t, FetchReqObject(nil, &req))
}

func TestIsAllowHttpMethod(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "http://localhosts", nil)
	assert.True(t, IsAllowHttpMethod([]string{http.MethodGet, http.MethodPost}, w, r))

	w = httptest.NewRecorder()
	assert.False(t, IsAllowHttpMethod([]string{http.MethodGet}, w, r))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestObjectsToRowsUsesColumnNames(t *testing.T) {
	eta := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rows, err := ObjectsToRows(&model.Order{ID: "a", TrackingCode: "RT1700000000", EstimatedCompletion: &eta})
	assert.Nil(t, err)
	assert.NotNil(t, rows)

	_, err = ObjectsToRows()
	assert.Error(t, err)
}

func TestToDriverValue(t *testing.T) {
	v, err := toDriverValue((*string)(nil))
	assert.Nil(t, err)
	assert.Nil(t, v)

	s := "x"
	v, err = toDriverValue(&s)
	assert.Nil(t, err)
	assert.Equal(t, "x", v)

	v, err = toDriverValue(model.Customer{}.Measurements)
	assert.Nil(t, err)
	assert.Nil(t, v)
}

func TestGetConfWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	content := []byte(`postgres:
  host: db
  port: 5432
  username: shop
  password: from-file
  database: tailor_shop
replicas:
  - host: replica
    port: 5432
    username: shop
    password: from-file
    database: tailor_shop
shop_port: 9090
jwt_secret: file-secret
enforce_forward_status: true
`)
	assert.Nil(t, os.WriteFile(file, content, 0o600))

	t.Setenv("SHOP_JWT_SECRET", "env-secret")
	t.Setenv("SHOP_DB_PASSWORD", "env-password")

	conf := (&ServerConfig{}).GetConf(file)
	assert.Equal(t, 9090, conf.ShopPort)
	assert.True(t, conf.EnforceForwardStatus)
	assert.Equal(t, "env-secret", conf.JwtSecret)
	assert.Equal(t, "env-password", conf.Postgres.Password)
	assert.Equal(t, "env-password", conf.Replicas[0].Password)
	assert.Equal(t, "host=db port=5432 user=shop password=env-password dbname=tailor_shop sslmode=disable", conf.Postgres.DSN())
}
