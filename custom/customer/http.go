package customer

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/romana/rlog"
	"gorm.io/datatypes"
	"tailor_shop/constants"
	"tailor_shop/custom/derive"
	"tailor_shop/custom/policy"
	"tailor_shop/custom/util"
	"tailor_shop/dal"
	"tailor_shop/model"
)

type HandlerContext struct {
	db      *dal.Query
	policy  *policy.Engine
	stamper *derive.Stamper
}

type CreateCustomerRequest struct {
	Customers []model.Customer `json:"customers"`
}

type QueryCustomerRequest struct {
	ID string `json:"id"`
}

type UpdateCustomerRequest struct {
	ID           string             `json:"id"`
	Name         *string            `json:"name,omitempty"`
	Phone        *string            `json:"phone,omitempty"`
	Email        *string            `json:"email,omitempty"`
	Measurements *datatypes.JSONMap `json:"measurements,omitempty"`
}

func (ctx *HandlerContext) InitialHandlerContext(db *dal.Query, engine *policy.Engine, stamper *derive.Stamper) {
	ctx.db = db
	ctx.policy = engine
	ctx.stamper = stamper
}

// CreateCustomers inserts all customers of the request or none of them.
func (ctx *HandlerContext) CreateCustomers(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodPost}, w, r) {
		return
	}

	req := CreateCustomerRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}

	// Validate payload
	if len(req.Customers) == 0 {
		util.WriteError(w, util.NewInvalidError("customers is required"))
		return
	}
	validationErr := ""
	for i := range req.Customers {
		if req.Customers[i].Name == "" {
			validationErr += fmt.Sprintf("The %d customer name is required.", i+1)
		}
	}
	if validationErr != "" {
		util.WriteError(w, util.NewInvalidError(validationErr))
		return
	}

	caller := policy.FromContext(r.Context())
	if caller.Class() == policy.Authenticated && len(req.Customers) > 1 {
		util.WriteError(w, util.NewInvalidError(constants.SELF_REGISTER_ONE))
		return
	}
	for i := range req.Customers {
		customer := &req.Customers[i]
		if customer.ID == "" {
			customer.ID = newCustomerID(caller)
		}
		if err := util.CheckID("Customer id", customer.ID); err != nil {
			util.WriteError(w, err)
			return
		}
		if err := ctx.policy.Authorize(policy.Request{
			Caller:    caller,
			Table:     policy.Customers,
			Operation: policy.Insert,
			Row:       customer,
		}); err != nil {
			util.WriteError(w, err)
			return
		}
		ctx.stamper.OnCreate(&customer.CreatedAt, &customer.UpdatedAt)
	}

	err = ctx.db.Transaction(func(tx *dal.Query) error {
		for i := range req.Customers {
			if errCreate := tx.Customer.WithContext(r.Context()).Create(&req.Customers[i]); errCreate != nil {
				rlog.Errorf("Create customer %s failed: %s", req.Customers[i].Name, errCreate.Error())
				return util.TranslateDBError(errCreate)
			}
		}
		return nil
	})
	if err != nil {
		util.WriteError(w, err)
		return
	}

	rlog.Infof("%d customer(s) created", len(req.Customers))
	util.WriteJSON(w, http.StatusOK, req.Customers)
}

// An authenticated non-admin caller registers its own profile, so the row
// takes the caller identity. Everyone else gets a fresh id.
func newCustomerID(caller policy.Caller) string {
	if caller.Class() == policy.Authenticated {
		return caller.ID
	}
	return uuid.NewString()
}

// QueryCustomer Fetch one customer by id
func (ctx *HandlerContext) QueryCustomer(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodGet}, w, r) {
		return
	}

	req := QueryCustomerRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}

	// Validate payload
	if err := util.CheckID("Customer id", req.ID); err != nil {
		util.WriteError(w, err)
		return
	}

	customerInfo, err := ctx.fetchVisible(r, req.ID, policy.Select)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, customerInfo)
}

// ListCustomers returns the customers visible to the caller, newest first.
func (ctx *HandlerContext) ListCustomers(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodGet}, w, r) {
		return
	}

	caller := policy.FromContext(r.Context())
	if !ctx.policy.Permits(caller, policy.Customers, policy.Select) {
		util.WriteError(w, util.NewDeniedError())
		return
	}

	q := ctx.db.ReadDB()
	customers, err := q.Customer.WithContext(r.Context()).Order(q.Customer.CreatedAt.Desc()).Find()
	if err != nil {
		util.WriteError(w, util.TranslateDBError(err))
		return
	}

	visible := make([]*model.Customer, 0, len(customers))
	for _, c := range customers {
		if ctx.policy.Visible(caller, policy.Customers, c) {
			visible = append(visible, c)
		}
	}
	util.WriteJSON(w, http.StatusOK, visible)
}

// UpdateCustomer changes the contact details and measurements of a customer.
func (ctx *HandlerContext) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodPost}, w, r) {
		return
	}

	req := UpdateCustomerRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}

	// Validate payload
	if err := util.CheckID("Customer id", req.ID); err != nil {
		util.WriteError(w, err)
		return
	}
	if req.Name != nil && *req.Name == "" {
		util.WriteError(w, util.NewInvalidError("Customer name must not be empty"))
		return
	}

	values := map[string]interface{}{}
	if req.Name != nil {
		values["name"] = *req.Name
	}
	if req.Phone != nil {
		values["phone"] = *req.Phone
	}
	if req.Email != nil {
		values["email"] = *req.Email
	}
	if req.Measurements != nil {
		values["measurements"] = *req.Measurements
	}
	if len(values) == 0 {
		util.WriteError(w, util.NewInvalidError("Nothing to update"))
		return
	}

	if _, err := ctx.fetchVisible(r, req.ID, policy.Update); err != nil {
		util.WriteError(w, err)
		return
	}

	_, err = ctx.db.Customer.WithContext(r.Context()).
		Where(ctx.db.Customer.ID.Eq(req.ID)).
		Updates(ctx.stamper.OnUpdate(values))
	if err != nil {
		util.WriteError(w, util.TranslateDBError(err))
		return
	}

	customerInfo, err := ctx.db.Customer.WithContext(r.Context()).Where(ctx.db.Customer.ID.Eq(req.ID)).First()
	if err != nil {
		util.WriteError(w, util.TranslateDBError(err))
		return
	}
	util.WriteJSON(w, http.StatusOK, customerInfo)
}

// DeleteCustomer removes a customer together with all of its orders.
func (ctx *HandlerContext) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodPost}, w, r) {
		return
	}

	req := QueryCustomerRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}

	// Validate payload
	if err := util.CheckID("Customer id", req.ID); err != nil {
		util.WriteError(w, err)
		return
	}

	if _, err := ctx.fetchVisible(r, req.ID, policy.Delete); err != nil {
		util.WriteError(w, err)
		return
	}

	var removedOrders int64
	err = ctx.db.Transaction(func(tx *dal.Query) error {
		result, errTx := tx.Order.WithContext(r.Context()).Where(tx.Order.CustomerID.Eq(req.ID)).Delete()
		if errTx != nil {
			return util.TranslateDBError(errTx)
		}
		removedOrders = result.RowsAffected
		if _, errTx = tx.Customer.WithContext(r.Context()).Where(tx.Customer.ID.Eq(req.ID)).Delete(); errTx != nil {
			return util.TranslateDBError(errTx)
		}
		return nil
	})
	if err != nil {
		util.WriteError(w, err)
		return
	}

	rlog.Infof("Customer %s deleted with %d order(s)", req.ID, removedOrders)
	util.WriteJSON(w, http.StatusOK, map[string]interface{}{"id": req.ID, "deleted_orders": removedOrders})
}

// fetchVisible loads a customer for op. A caller without any rule for op is
// denied; a row the caller may not touch is reported as missing.
func (ctx *HandlerContext) fetchVisible(r *http.Request, id string, op policy.Operation) (*model.Customer, error) {
	caller := policy.FromContext(r.Context())
	if !ctx.policy.Permits(caller, policy.Customers, op) {
		return nil, util.NewDeniedError()
	}

	customerInfo, err := ctx.db.Customer.WithContext(r.Context()).Where(ctx.db.Customer.ID.Eq(id)).First()
	if err != nil {
		err = util.TranslateDBError(err)
		if util.IsKind(err, util.KindNotFound) {
			return nil, util.NewNotFoundError(constants.CUSTOMER_NOT_FOUND)
		}
		return nil, err
	}

	req := policy.Request{Caller: caller, Table: policy.Customers, Operation: op, Row: customerInfo}
	if !ctx.policy.Allows(req) {
		if !ctx.policy.Visible(caller, policy.Customers, customerInfo) {
			return nil, util.NewNotFoundError(constants.CUSTOMER_NOT_FOUND)
		}
		return nil, util.NewDeniedError()
	}
	return customerInfo, nil
}
