package route

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"cafefinder/config"
	"cafefinder/model"
	"cafefinder/store/storetest"
	"cafefinder/transfer"
	"cafefinder/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "12345"

func newTestRouter(t *testing.T, enforce bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server: config.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Access: config.AccessConfig{
			Password:    testPassword,
			Enforce:     enforce,
			TokenSecret: "test-token-secret",
			TokenTTL:    time.Minute,
		},
	}
	router, err := NewRouter(cfg, storetest.NewDB(t), zap.NewNop())
	require.NoError(t, err)
	return router
}

type response struct {
	Code    int
	Header  http.Header
	Body    map[string]interface{}
	RawBody []byte
}

func do(t *testing.T, router *gin.Engine, req *http.Request) response {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	res := response{Code: w.Code, Header: w.Header(), RawBody: w.Body.Bytes()}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res.Body))
	}
	return res
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func cafeForm(name, city, zipcode, price string) url.Values {
	return url.Values{
		"name":         {name},
		"map_url":      {"https://maps.example/" + strings.ReplaceAll(name, " ", "-")},
		"zipcode":      {zipcode},
		"city":         {city},
		"has_sockets":  {"YES"},
		"has_toilet":   {"NO"},
		"has_wifi":     {"YES"},
		"coffee_price": {price},
	}
}

func addCafe(t *testing.T, router *gin.Engine, form url.Values) uint {
	t.Helper()
	res := do(t, router, formRequest(http.MethodPost, "/cafes", form))
	require.Equal(t, http.StatusCreated, res.Code, string(res.RawBody))
	data := res.Body["data"].(map[string]interface{})
	return uint(data["id"].(float64))
}

func listNames(t *testing.T, router *gin.Engine) []string {
	t.Helper()
	res := do(t, router, httptest.NewRequest(http.MethodGet, "/cafes", nil))
	require.Equal(t, http.StatusOK, res.Code)
	items, _ := res.Body["data"].([]interface{})
	var names []string
	for _, item := range items {
		names = append(names, item.(map[string]interface{})["name"].(string))
	}
	return names
}

func TestListCafes(t *testing.T) {
	router := newTestRouter(t, true)

	res := do(t, router, httptest.NewRequest(http.MethodGet, "/cafes", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, true, res.Body["locked"])
	assert.Empty(t, res.Body["data"])

	addCafe(t, router, cafeForm("Java Hut", "Cambridge", "02138", "$1-$2"))
	addCafe(t, router, cafeForm("Blue Bottle", "Boston", "02108", "$3-$4"))
	assert.Equal(t, []string{"Blue Bottle", "Java Hut"}, listNames(t, router))
}

func TestAddCafe(t *testing.T) {
	router := newTestRouter(t, true)

	t.Run("Created", func(t *testing.T) {
		res := do(t, router, formRequest(http.MethodPost, "/cafes", cafeForm("Blue Bottle", "Boston", "02108", "$3-$4")))
		require.Equal(t, http.StatusCreated, res.Code)
		assert.Equal(t, "New place added. Thank you!", res.Body["message"])

		data := res.Body["data"].(map[string]interface{})
		assert.Equal(t, "Blue Bottle", data["name"])
		assert.Equal(t, true, data["has_sockets"])
		assert.Equal(t, false, data["has_toilet"])
		assert.Equal(t, "$3-$4", data["coffee_price"])
	})

	t.Run("JSONBody", func(t *testing.T) {
		res := do(t, router, jsonRequest(http.MethodPost, "/cafes", map[string]string{
			"name": "Tatte", "map_url": "https://maps.example/tatte", "zipcode": "02116", "city": "Boston",
			"has_sockets": "NO", "has_toilet": "YES", "has_wifi": "YES", "coffee_price": "$5-$6",
		}))
		assert.Equal(t, http.StatusCreated, res.Code)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		res := do(t, router, formRequest(http.MethodPost, "/cafes", cafeForm("Blue Bottle", "Cambridge", "02138", "$1-$2")))
		assert.Equal(t, http.StatusConflict, res.Code)
		assert.Equal(t, "duplicate_name", res.Body["code"])
	})

	t.Run("InvalidPrice", func(t *testing.T) {
		res := do(t, router, formRequest(http.MethodPost, "/cafes", cafeForm("Pricey", "Boston", "02108", "$100")))
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "invalid_value", res.Body["code"])
		assert.Equal(t, "coffee_price", res.Body["field"])
	})

	t.Run("MissingField", func(t *testing.T) {
		form := cafeForm("No City", "", "02108", "$1-$2")
		res := do(t, router, formRequest(http.MethodPost, "/cafes", form))
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "missing_field", res.Body["code"])
		assert.Equal(t, "city", res.Body["field"])
	})

	assert.Equal(t, []string{"Blue Bottle", "Tatte"}, listNames(t, router), "failed adds must not persist")
}

func TestSearch(t *testing.T) {
	router := newTestRouter(t, true)
	addCafe(t, router, cafeForm("Blue Bottle", "Boston", "02108", "$3-$4"))
	addCafe(t, router, cafeForm("Java Hut", "Cambridge", "02138", "$1-$2"))

	res := do(t, router, httptest.NewRequest(http.MethodGet, "/search/Boston", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "Cafes near Boston", res.Body["message"])
	data := res.Body["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "Blue Bottle", data[0].(map[string]interface{})["name"])

	res = do(t, router, httptest.NewRequest(http.MethodGet, "/search?location=02138", nil))
	require.Equal(t, http.StatusOK, res.Code)
	data = res.Body["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "Java Hut", data[0].(map[string]interface{})["name"])

	res = do(t, router, httptest.NewRequest(http.MethodGet, "/search/Nowhere", nil))
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "Sorry, nothing found near Nowhere", res.Body["error"])

	res = do(t, router, httptest.NewRequest(http.MethodGet, "/search", nil))
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestGetCafe(t *testing.T) {
	router := newTestRouter(t, true)
	id := addCafe(t, router, cafeForm("Blue Bottle", "Boston", "02108", "$3-$4"))

	res := do(t, router, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/cafes/%d", id), nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, `Update info for "Blue Bottle"`, res.Body["message"])
	assert.Equal(t, true, res.Body["form"])

	res = do(t, router, httptest.NewRequest(http.MethodGet, "/cafes/999", nil))
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, false, res.Body["form"])
	assert.Equal(t, "Sorry, the place wasn't found.", res.Body["error"])

	res = do(t, router, httptest.NewRequest(http.MethodGet, "/cafes/abc", nil))
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestUpdateCafe(t *testing.T) {
	router := newTestRouter(t, true)
	id := addCafe(t, router, cafeForm("Blue Bottle", "Boston", "02108", "$3-$4"))
	target := fmt.Sprintf("/cafes/%d", id)
	update := url.Values{"has_wifi": {"NO"}, "coffee_price": {"$9 and up"}}

	t.Run("GateClosed", func(t *testing.T) {
		res := do(t, router, formRequest(http.MethodPut, target, update))
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("WithPassword", func(t *testing.T) {
		req := formRequest(http.MethodPut, target, update)
		req.Header.Set(utils.PasswordHeader, testPassword)
		res := do(t, router, req)
		require.Equal(t, http.StatusOK, res.Code, string(res.RawBody))
		assert.Equal(t, "/cafes", res.Header.Get("Location"))

		data := res.Body["data"].(map[string]interface{})
		assert.Equal(t, false, data["has_wifi"])
		assert.Equal(t, true, data["has_sockets"])
		assert.Equal(t, "$9 and up", data["coffee_price"])
		assert.Equal(t, "Blue Bottle", data["name"])
	})

	t.Run("InvalidValue", func(t *testing.T) {
		req := formRequest(http.MethodPut, target, url.Values{"has_toilet": {"sometimes"}})
		req.Header.Set(utils.PasswordHeader, testPassword)
		res := do(t, router, req)
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "has_toilet", res.Body["field"])
	})

	t.Run("UnknownID", func(t *testing.T) {
		req := formRequest(http.MethodPut, "/cafes/999", update)
		req.Header.Set(utils.PasswordHeader, testPassword)
		res := do(t, router, req)
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Equal(t, false, res.Body["form"])
		assert.Len(t, listNames(t, router), 1)
	})
}

func TestAccessCheckAndDelete(t *testing.T) {
	router := newTestRouter(t, true)
	id := addCafe(t, router, cafeForm("Blue Bottle", "Boston", "02108", "$3-$4"))
	target := fmt.Sprintf("/cafes/%d", id)

	res := do(t, router, formRequest(http.MethodPost, "/access/check", url.Values{"password": {"wrong"}}))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, false, res.Body["granted"])

	res = do(t, router, formRequest(http.MethodPost, "/access/check", url.Values{}))
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = do(t, router, jsonRequest(http.MethodPost, "/access/check", map[string]string{"password": testPassword}))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, true, res.Body["granted"])
	token := res.Body["token"].(string)

	res = do(t, router, httptest.NewRequest(http.MethodDelete, target, nil))
	assert.Equal(t, http.StatusUnauthorized, res.Code, "delete needs the gate")

	deleteWithToken := func() response {
		req := httptest.NewRequest(http.MethodDelete, target, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return do(t, router, req)
	}

	res = deleteWithToken()
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, true, res.Body["deleted"])
	assert.Equal(t, "/cafes", res.Header.Get("Location"))

	res = deleteWithToken()
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, false, res.Body["deleted"])

	assert.Empty(t, listNames(t, router))
}

func TestGateNotEnforced(t *testing.T) {
	router := newTestRouter(t, false)
	id := addCafe(t, router, cafeForm("Blue Bottle", "Boston", "02108", "$3-$4"))

	res := do(t, router, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/cafes/%d", id), nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, true, res.Body["deleted"])
}

func TestExportAndImport(t *testing.T) {
	source := newTestRouter(t, true)
	addCafe(t, source, cafeForm("Blue Bottle", "Boston", "02108", "$3-$4"))
	addCafe(t, source, cafeForm("Java Hut", "Cambridge", "02138", "$1-$2"))

	res := do(t, source, httptest.NewRequest(http.MethodGet, "/admin/export", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Header.Get("Content-Disposition"), ".xlsx")

	rows, err := transfer.ReadRows(bytes.NewReader(res.RawBody))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Blue Bottle", rows[0].Form.Name)

	upload := func(router *gin.Engine, filename string, content []byte, password string) response {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/admin/import", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		if password != "" {
			req.Header.Set(utils.PasswordHeader, password)
		}
		return do(t, router, req)
	}

	target := newTestRouter(t, true)
	assert.Equal(t, http.StatusUnauthorized, upload(target, "cafes.xlsx", res.RawBody, "").Code)
	assert.Equal(t, http.StatusBadRequest, upload(target, "cafes.csv", res.RawBody, testPassword).Code)
	assert.Equal(t, http.StatusBadRequest, upload(target, "cafes.xlsx", []byte("not a workbook"), testPassword).Code)

	imported := upload(target, "cafes.xlsx", res.RawBody, testPassword)
	require.Equal(t, http.StatusOK, imported.Code, string(imported.RawBody))
	assert.EqualValues(t, 2, imported.Body["count"])
	assert.Equal(t, []string{"Blue Bottle", "Java Hut"}, listNames(t, target))

	again := upload(target, "cafes.xlsx", res.RawBody, testPassword)
	require.Equal(t, http.StatusOK, again.Code)
	assert.EqualValues(t, 0, again.Body["count"])
	skipped := again.Body["data"].(map[string]interface{})["skipped"].([]interface{})
	assert.Len(t, skipped, 2)
	assert.Contains(t, skipped[0].(map[string]interface{})["error"], model.ErrDuplicateName.Error())
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, true)
	res := do(t, router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "ok", res.Body["status"])
}
