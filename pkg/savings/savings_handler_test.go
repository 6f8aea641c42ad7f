package savings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/finmate/finmate/internal/rest"
	"github.com/finmate/finmate/pkg/transaction"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *mux.Router {
	handler := NewHandler(service)
	router := mux.NewRouter()
	router.HandleFunc("/api/savings", handler.GetAll).Methods("GET")
	router.HandleFunc("/api/savings", handler.Create).Methods("POST")
	router.HandleFunc("/api/savings/progress", handler.GetProgress).Methods("GET")
	router.HandleFunc("/api/savings/surplus", handler.GetSurplus).Methods("GET")
	router.HandleFunc("/api/savings/allocation", handler.Allocate).Methods("POST")
	router.HandleFunc("/api/savings/{planId:[0-9]+}", handler.Get).Methods("GET")
	router.HandleFunc("/api/savings/{planId:[0-9]+}", handler.Update).Methods("PUT")
	router.HandleFunc("/api/savings/{planId:[0-9]+}", handler.Delete).Methods("DELETE")
	return router
}

func doRequest(router *mux.Router, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body)).WithContext(ctx)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandler_PlanCrud(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	router := newRouter()

	rr := doRequest(router, "POST", "/api/savings", `{"name":"Dana Darurat","target":"1000000"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created PlanDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	path := "/api/savings/" + strconv.Itoa(created.ID)

	rr = doRequest(router, "PUT", path, `{"name":"Dana Darurat","target":2000000,"icon":"shield"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(router, "GET", path, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var fetched PlanDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&fetched))
	assert.Equal(t, "shield", fetched.Icon)

	rr = doRequest(router, "GET", "/api/savings", "")
	var all []PlanDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&all))
	assert.Len(t, all, 1)

	rr = doRequest(router, "DELETE", path, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = doRequest(router, "DELETE", path, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_CreateInvalidTarget(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	router := newRouter()

	rr := doRequest(router, "POST", "/api/savings", `{"name":"Dana Darurat","target":0}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_Allocate(t *testing.T) {
	t.Run("should allocate and report surplus", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		router := newRouter()

		// given
		record(t, transaction.Income, "Gaji", 600000)
		record(t, transaction.Expense, "Makan", 500000)
		plan, _ := service.CreatePlan(ctx, Plan{Name: "Dana Darurat", Target: money(1000000)})

		// when
		rr := doRequest(router, "POST", "/api/savings/allocation",
			`{"allocations":[{"planId":`+strconv.Itoa(plan.ID)+`,"amount":"40000"}]}`)

		// then
		require.Equal(t, http.StatusCreated, rr.Code)
		var result AllocationResultDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
		assert.Equal(t, "60000", result.RemainingFunds.String())
		require.Len(t, result.Contributions, 1)
		assert.NotEmpty(t, result.Contributions[0].TransactionId)

		rr = doRequest(router, "GET", "/api/savings/surplus", "")
		var surplus SurplusDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&surplus))
		assert.Equal(t, "60000", surplus.AllocatableFunds.String())

		rr = doRequest(router, "GET", "/api/savings/progress", "")
		var progress ProgressDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&progress))
		require.Len(t, progress.Plans, 1)
		assert.Equal(t, 4, progress.Plans[0].Percentage)
	})

	t.Run("should respond 422 when exceeding surplus", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		router := newRouter()

		// given
		record(t, transaction.Income, "Gaji", 100)
		plan, _ := service.CreatePlan(ctx, Plan{Name: "Liburan", Target: money(1000)})

		// when
		rr := doRequest(router, "POST", "/api/savings/allocation",
			`{"allocations":[{"planId":`+strconv.Itoa(plan.ID)+`,"amount":101}]}`)

		// then
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		var errResp rest.ErrorResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&errResp))
		assert.Equal(t, "Insufficient surplus", errResp.Error)
	})

	t.Run("should respond 400 when nothing to allocate", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		router := newRouter()

		rr := doRequest(router, "POST", "/api/savings/allocation", `{"allocations":[]}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
