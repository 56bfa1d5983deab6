package util

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"sync"
	"testing"

	"github.com/romana/rlog"
	"gopkg.in/DATA-DOG/go-sqlmock.v1"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"tailor_shop/dal"
)

func IsAllowHttpMethod(methods []string, w http.ResponseWriter, r *http.Request) bool {
	for _, method := range methods {
		if method == r.Method {
			return true
		}
	}
	http.Error(w, "Not allow http method", http.StatusMethodNotAllowed)
	return false
}

// FetchReqObject decodes the JSON request body into reqObj. An empty body leaves
// reqObj untouched, which list endpoints rely on.
func FetchReqObject(r *http.Request, reqObj interface{}) error {
	if r == nil {
		return errors.New("http request is nil")
	}
	if r.Body == nil {
		return nil
	}
	reqBody, err := io.ReadAll(r.Body)
	if err != nil {
		errInfo := "Read request body failed: " + err.Error()
		rlog.Error(errInfo)
		return errors.New(errInfo)
	}
	if len(reqBody) == 0 {
		return nil
	}
	err = json.Unmarshal(reqBody, reqObj)
	if err != nil {
		errInfo := "Unmarshal request body failed: " + err.Error()
		rlog.Error(errInfo)
		return errors.New(errInfo)
	}
	return nil
}

// WriteJSON writes obj with the given status code.
func WriteJSON(w http.ResponseWriter, status int, obj interface{}) {
	respBody, err := json.Marshal(obj)
	if err != nil {
		rlog.Error("Marshal response failed:", err.Error())
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(respBody)
}

func GetStringPtr(s string) *string {
	return &s
}

// DbMock For unit test usage
func DbMock(t *testing.T) (*sql.DB, *gorm.DB, sqlmock.Sqlmock) {
	sqldb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	gormdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqldb,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		t.Fatal(err)
	}

	dal.SetDefault(gormdb)

	return sqldb, gormdb, mock
}

// ObjectToRows For unit test usage
func ObjectToRows(object interface{}) (*sqlmock.Rows, error) {
	return ObjectsToRows(object)
}

// ObjectsToRows builds mock rows keyed by the gorm column names of the model.
// All objects must share the same model type.
func ObjectsToRows(objects ...interface{}) (*sqlmock.Rows, error) {
	if len(objects) == 0 {
		return nil, errors.New("no objects to convert")
	}
	sch, err := schema.Parse(objects[0], &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		return nil, err
	}
	columns := make([]string, 0, len(sch.Fields))
	for _, field := range sch.Fields {
		if field.DBName != "" {
			columns = append(columns, field.DBName)
		}
	}
	rows := sqlmock.NewRows(columns)
	for _, object := range objects {
		rv := reflect.Indirect(reflect.ValueOf(object))
		values := make([]driver.Value, 0, len(columns))
		for _, field := range sch.Fields {
			if field.DBName == "" {
				continue
			}
			v, _ := field.ValueOf(context.Background(), rv)
			dv, err := toDriverValue(v)
			if err != nil {
				return nil, err
			}
			values = append(values, dv)
		}
		rows.AddRow(values...)
	}
	return rows, nil
}

func toDriverValue(v interface{}) (driver.Value, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, nil
	}
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, nil
		}
		v = rv.Elem().Interface()
	}
	if valuer, ok := v.(driver.Valuer); ok {
		return valuer.Value()
	}
	return v, nil
}
