package customer

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/DATA-DOG/go-sqlmock.v1"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"tailor_shop/custom/derive"
	"tailor_shop/custom/policy"
	"tailor_shop/custom/util"
	"tailor_shop/dal"
	"tailor_shop/model"
)

var (
	testCustomer = model.Customer{
		ID:           "9a4c1f63-2b7e-4d35-9a1d-0f3c8c7e5b21",
		Name:         "Test Customer",
		Phone:        util.GetStringPtr("+91 98000 00000"),
		Email:        util.GetStringPtr("user@mail.com"),
		Measurements: datatypes.JSONMap{"chest": 40.0, "waist": 34.0},
		CreatedAt:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	otherCustomer = model.Customer{
		ID:        "1d7e2c90-8f0a-4b5e-b2a4-3e6f9d1c7a48",
		Name:      "Other Customer",
		CreatedAt: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	admin = policy.Caller{ID: "0b0b0b0b-0000-4000-8000-000000000001", Role: policy.AdminRole}
	owner = policy.Caller{ID: testCustomer.ID}

	selectCustomerSQL = `^SELECT \* FROM \"customers\" WHERE \"customers\"\.\"id\" \= .* .* LIMIT .*`
	now               = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func newHandlerContext(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *HandlerContext) {
	sqlDB, _, mock := util.DbMock(t)
	handlerCtx := HandlerContext{}
	handlerCtx.InitialHandlerContext(dal.Q, policy.Default, derive.NewStamper(func() time.Time { return now }))
	return sqlDB, mock, &handlerCtx
}

func newRequest(method string, body []byte, caller policy.Caller) *http.Request {
	r := httptest.NewRequest(method, "http://localhosts", bytes.NewBuffer(body))
	return r.WithContext(policy.NewContext(r.Context(), caller))
}

func TestQueryCustomerSuccess(t *testing.T) {
	sqlDB, mock, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	returnData, _ := util.ObjectToRows(testCustomer)
	mock.ExpectQuery(selectCustomerSQL).WithArgs(testCustomer.ID, 1).WillReturnRows(returnData)

	w := httptest.NewRecorder()
	r := newRequest(http.MethodGet, []byte(`{"id":"`+testCustomer.ID+`"}`), owner)
	handlerCtx.QueryCustomer(w, r)

	actualResp := model.Customer{}
	json.Unmarshal(w.Body.Bytes(), &actualResp)

	assert.Nil(t, mock.ExpectationsWereMet())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testCustomer.ID, actualResp.ID)
	assert.Equal(t, testCustomer.Name, actualResp.Name)
	assert.Equal(t, *testCustomer.Email, *actualResp.Email)
	assert.Equal(t, 40.0, actualResp.Measurements["chest"])
	assert.True(t, testCustomer.CreatedAt.Equal(actualResp.CreatedAt))
}

func TestQueryCustomerBadHttpMethod(t *testing.T) {
	sqlDB, _, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	w := httptest.NewRecorder()
	r := newRequest(http.MethodPost, []byte(`{}`), admin)
	handlerCtx.QueryCustomer(w, r)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestQueryCustomerWithoutCustomerID(t *testing.T) {
	sqlDB, _, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	w := httptest.NewRecorder()
	r := newRequest(http.MethodGet, []byte(`{}`), admin)
	handlerCtx.QueryCustomer(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryCustomerAnonymousDenied(t *testing.T) {
	sqlDB, mock, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	w := httptest.NewRecorder()
	r := newRequest(http.MethodGet, []byte(`{"id":"`+testCustomer.ID+`"}`), policy.Anon)
	handlerCtx.QueryCustomer(w, r)

	assert.Nil(t, mock.ExpectationsWereMet())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestQueryCustomerOfSomeoneElseIsNotFound(t *testing.T) {
	sqlDB, mock, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	returnData, _ := util.ObjectToRows(otherCustomer)
	mock.ExpectQuery(selectCustomerSQL).WithArgs(otherCustomer.ID, 1).WillReturnRows(returnData)

	w := httptest.NewRecorder()
	r := newRequest(http.MethodGet, []byte(`{"id":"`+otherCustomer.ID+`"}`), owner)
	handlerCtx.QueryCustomer(w, r)

	assert.Nil(t, mock.ExpectationsWereMet())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQueryCustomerNotFound(t *testing.T) {
	sqlDB, mock, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	mock.ExpectQuery(selectCustomerSQL).WithArgs(testCustomer.ID, 1).WillReturnError(gorm.ErrRecordNotFound)

	w := httptest.NewRecorder()
	r := newRequest(http.MethodGet, []byte(`{"id":"`+testCustomer.ID+`"}`), admin)
	handlerCtx.QueryCustomer(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCustomersFiltersRows(t *testing.T) {
	sqlDB, mock, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	listSQL := `^SELECT \* FROM \"customers\" ORDER BY \"customers\"\.\"created_at\" DESC`
	rows, _ := util.ObjectsToRows(&testCustomer, &otherCustomer)
	mock.ExpectQuery(listSQL).WillReturnRows(rows)

	w := httptest.NewRecorder()
	handlerCtx.ListCustomers(w, newRequest(http.MethodGet, nil, owner))

	var actualResp []model.Customer
	json.Unmarshal(w.Body.Bytes(), &actualResp)

	assert.Nil(t, mock.ExpectationsWereMet())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, actualResp, 1)
	assert.Equal(t, testCustomer.ID, actualResp[0].ID)
}

func TestListCustomersAdminSeesAll(t *testing.T) {
	sqlDB, mock, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	listSQL := `^SELECT \* FROM \"customers\" ORDER BY \"customers\"\.\"created_at\" DESC`
	rows, _ := util.ObjectsToRows(&testCustomer, &otherCustomer)
	mock.ExpectQuery(listSQL).WillReturnRows(rows)

	w := httptest.NewRecorder()
	handlerCtx.ListCustomers(w, newRequest(http.MethodGet, nil, admin))

	var actualResp []model.Customer
	json.Unmarshal(w.Body.Bytes(), &actualResp)

	assert.Nil(t, mock.ExpectationsWereMet())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, actualResp, 2)
	assert.Equal(t, otherCustomer.ID, actualResp[1].ID)
}

func TestListCustomersAnonymousDenied(t *testing.T) {
	sqlDB, _, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	w := httptest.NewRecorder()
	handlerCtx.ListCustomers(w, newRequest(http.MethodGet, nil, policy.Anon))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreatCustomerSuccess(t *testing.T) {
	sqlDB, mock, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	creatCustomerSQL := "INSERT INTO \"customers\" .+ VALUES .+"
	mock.ExpectBegin()
	mock.ExpectExec(creatCustomerSQL).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	forged := testCustomer
	forged.ID = ""
	forged.CreatedAt = time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC)

	w := httptest.NewRecorder()
	reqBody, _ := json.Marshal(CreateCustomerRequest{Customers: []model.Customer{forged}})
	handlerCtx.CreateCustomers(w, newRequest(http.MethodPost, reqBody, policy.Anon))

	var actualResp []model.Customer
	json.Unmarshal(w.Body.Bytes(), &actualResp)

	assert.Nil(t, mock.ExpectationsWereMet())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, actualResp, 1)
	assert.NotEmpty(t, actualResp[0].ID)
	assert.True(t, now.Equal(actualResp[0].CreatedAt))
	assert.True(t, now.Equal(actualResp[0].UpdatedAt))
}

func TestCreatCustomerTakesCallerIdentity(t *testing.T) {
	sqlDB, mock, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO \"customers\" .+ VALUES .+").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	w := httptest.NewRecorder()
	reqBody := []byte(`{"customers":[{"name":"Self Registered"}]}`)
	handlerCtx.CreateCustomers(w, newRequest(http.MethodPost, reqBody, owner))

	var actualResp []model.Customer
	json.Unmarshal(w.Body.Bytes(), &actualResp)

	assert.Nil(t, mock.ExpectationsWereMet())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, owner.ID, actualResp[0].ID)
}

func TestCreatCustomerBadHttpMethod(t *testing.T) {
	sqlDB, _, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	w := httptest.NewRecorder()
	reqBody, _ := json.Marshal(CreateCustomerRequest{Customers: []model.Customer{testCustomer}})
	handlerCtx.CreateCustomers(w, newRequest(http.MethodGet, reqBody, admin))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCreatCustomerMissingName(t *testing.T) {
	sqlDB, mock, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	customerWithoutName := testCustomer
	customerWithoutName.Name = ""
	reqBody, _ := json.Marshal(CreateCustomerRequest{Customers: []model.Customer{testCustomer, customerWithoutName}})

	w := httptest.NewRecorder()
	handlerCtx.CreateCustomers(w, newRequest(http.MethodPost, reqBody, admin))

	assert.Nil(t, mock.ExpectationsWereMet())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "The 2 customer name is required.")
}

func TestCreatCustomerBatchIsAllOrNothing(t *testing.T) {
	sqlDB, mock, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	creatCustomerSQL := "INSERT INTO \"customers\" .+ VALUES .+"
	mock.ExpectBegin()
	mock.ExpectExec(creatCustomerSQL).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(creatCustomerSQL).WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	reqBody, _ := json.Marshal(CreateCustomerRequest{Customers: []model.Customer{testCustomer, otherCustomer}})
	handlerCtx.CreateCustomers(w, newRequest(http.MethodPost, reqBody, admin))

	actualResp := util.StoreError{}
	json.Unmarshal(w.Body.Bytes(), &actualResp)

	assert.Nil(t, mock.ExpectationsWereMet())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, util.KindConstraint, actualResp.Kind)
	assert.Equal(t, util.ViolationUnique, actualResp.Violation)
}

func TestUpdateCustomerSuccess(t *testing.T) {
	sqlDB, mock, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	updated := testCustomer
	updated.Name = "Renamed"
	updated.UpdatedAt = now

	before, _ := util.ObjectToRows(testCustomer)
	after, _ := util.ObjectToRows(updated)
	mock.ExpectQuery(selectCustomerSQL).WithArgs(testCustomer.ID, 1).WillReturnRows(before)
	mock.ExpectBegin()
	mock.ExpectExec(`^UPDATE \"customers\" SET \"name\"=\$1,\"updated_at\"=GREATEST\(.+\) WHERE \"customers\"\.\"id\" = \$3`).
		WithArgs("Renamed", now, testCustomer.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(selectCustomerSQL).WithArgs(testCustomer.ID, 1).WillReturnRows(after)

	w := httptest.NewRecorder()
	reqBody := []byte(`{"id":"` + testCustomer.ID + `","name":"Renamed","updated_at":"1999-01-01T00:00:00Z"}`)
	handlerCtx.UpdateCustomer(w, newRequest(http.MethodPost, reqBody, admin))

	actualResp := model.Customer{}
	json.Unmarshal(w.Body.Bytes(), &actualResp)

	assert.Nil(t, mock.ExpectationsWereMet())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed", actualResp.Name)
}

func TestUpdateCustomerByOwnerDenied(t *testing.T) {
	sqlDB, mock, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	w := httptest.NewRecorder()
	reqBody := []byte(`{"id":"` + testCustomer.ID + `","name":"Renamed"}`)
	handlerCtx.UpdateCustomer(w, newRequest(http.MethodPost, reqBody, owner))

	assert.Nil(t, mock.ExpectationsWereMet())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateCustomerNothingToUpdate(t *testing.T) {
	sqlDB, _, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	w := httptest.NewRecorder()
	handlerCtx.UpdateCustomer(w, newRequest(http.MethodPost, []byte(`{"id":"`+testCustomer.ID+`"}`), admin))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteCustomerCascadesOrders(t *testing.T) {
	sqlDB, mock, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	rows, _ := util.ObjectToRows(testCustomer)
	mock.ExpectQuery(selectCustomerSQL).WithArgs(testCustomer.ID, 1).WillReturnRows(rows)
	mock.ExpectBegin()
	mock.ExpectExec(`^DELETE FROM \"orders\" WHERE \"orders\"\.\"customer_id\" = .+`).
		WithArgs(testCustomer.ID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`^DELETE FROM \"customers\" WHERE \"customers\"\.\"id\" = .+`).
		WithArgs(testCustomer.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := httptest.NewRecorder()
	handlerCtx.DeleteCustomer(w, newRequest(http.MethodPost, []byte(`{"id":"`+testCustomer.ID+`"}`), admin))

	actualResp := map[string]interface{}{}
	json.Unmarshal(w.Body.Bytes(), &actualResp)

	assert.Nil(t, mock.ExpectationsWereMet())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, actualResp["deleted_orders"])
}

func TestDeleteCustomerRollsBackOnFailure(t *testing.T) {
	sqlDB, mock, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	rows, _ := util.ObjectToRows(testCustomer)
	mock.ExpectQuery(selectCustomerSQL).WithArgs(testCustomer.ID, 1).WillReturnRows(rows)
	mock.ExpectBegin()
	mock.ExpectExec(`^DELETE FROM \"orders\" WHERE .+`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`^DELETE FROM \"customers\" WHERE .+`).WillReturnError(gorm.ErrInvalidDB)
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	handlerCtx.DeleteCustomer(w, newRequest(http.MethodPost, []byte(`{"id":"`+testCustomer.ID+`"}`), admin))

	assert.Nil(t, mock.ExpectationsWereMet())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCustomerHandlersRejectMalformedID(t *testing.T) {
	sqlDB, mock, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	cases := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		body    string
	}{
		{"query", handlerCtx.QueryCustomer, http.MethodGet, `{"id":"abc"}`},
		{"create", handlerCtx.CreateCustomers, http.MethodPost, `{"customers":[{"id":"abc","name":"Bad Id"}]}`},
		{"update", handlerCtx.UpdateCustomer, http.MethodPost, `{"id":"abc","name":"Renamed"}`},
		{"delete", handlerCtx.DeleteCustomer, http.MethodPost, `{"id":"abc"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c.handler(w, newRequest(c.method, []byte(c.body), admin))

			actualResp := util.StoreError{}
			json.Unmarshal(w.Body.Bytes(), &actualResp)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, util.KindInvalid, actualResp.Kind)
		})
	}
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCreatCustomerSelfRegistrationIsSingle(t *testing.T) {
	sqlDB, mock, handlerCtx := newHandlerContext(t)
	defer sqlDB.Close()

	w := httptest.NewRecorder()
	reqBody := []byte(`{"customers":[{"name":"Self Registered"},{"name":"Second Profile"}]}`)
	handlerCtx.CreateCustomers(w, newRequest(http.MethodPost, reqBody, owner))

	actualResp := util.StoreError{}
	json.Unmarshal(w.Body.Bytes(), &actualResp)

	assert.Nil(t, mock.ExpectationsWereMet())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, util.KindInvalid, actualResp.Kind)
	assert.Contains(t, actualResp.Message, "one profile")
}
