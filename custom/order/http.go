package order

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/romana/rlog"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gen"
	"tailor_shop/constants"
	"tailor_shop/custom/derive"
	"tailor_shop/custom/policy"
	"tailor_shop/custom/util"
	"tailor_shop/dal"
	"tailor_shop/model"
)

// Attempts at inserting an order whose system issued tracking code collides
// with one stored by another process.
const createAttempts = 3

type HandlerContext struct {
	db             *dal.Query
	policy         *policy.Engine
	stamper        *derive.Stamper
	issuer         *derive.TrackingIssuer
	enforceForward bool
}

type CreateOrderRequest struct {
	TrackingCode        string            `json:"tracking_code,omitempty"`
	CustomerID          string            `json:"customer_id"`
	FabricID            *string           `json:"fabric_id,omitempty"`
	GarmentID           *string           `json:"garment_id,omitempty"`
	Customizations      datatypes.JSONMap `json:"customizations,omitempty"`
	Measurements        datatypes.JSONMap `json:"measurements,omitempty"`
	TotalPrice          decimal.Decimal   `json:"total_price"`
	Status              string            `json:"status,omitempty"`
	IsUrgent            bool              `json:"is_urgent"`
	SpecialInstructions *string           `json:"special_instructions,omitempty"`
	EstimatedCompletion *time.Time        `json:"estimated_completion,omitempty"`
}

type QueryOrderRequest struct {
	ID string `json:"id"`
}

type TrackOrderRequest struct {
	TrackingCode string `json:"tracking_code"`
}

type ListOrdersRequest struct {
	Status     string `json:"status,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
}

type UpdateOrderStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// UpdateOrderRequest carries the mutable order fields. The identifying fields
// are accepted only so that a request trying to change them can be rejected.
type UpdateOrderRequest struct {
	ID                  string     `json:"id"`
	Status              *string    `json:"status,omitempty"`
	SpecialInstructions *string    `json:"special_instructions,omitempty"`
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty"`
	IsUrgent            *bool      `json:"is_urgent,omitempty"`

	TrackingCode *string `json:"tracking_code,omitempty"`
	CustomerID   *string `json:"customer_id,omitempty"`
	FabricID     *string `json:"fabric_id,omitempty"`
	GarmentID    *string `json:"garment_id,omitempty"`
}

func (ctx *HandlerContext) InitialHandlerContext(db *dal.Query, engine *policy.Engine, stamper *derive.Stamper, issuer *derive.TrackingIssuer, enforceForward bool) {
	ctx.db = db
	ctx.policy = engine
	ctx.stamper = stamper
	ctx.issuer = issuer
	ctx.enforceForward = enforceForward
}

// CreateOrder Place a new order
func (ctx *HandlerContext) CreateOrder(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodPost}, w, r) {
		return
	}

	req := CreateOrderRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}

	//Validate payload
	if err := util.CheckID("CustomerId", req.CustomerID); err != nil {
		util.WriteError(w, err)
		return
	}
	if req.FabricID != nil {
		if err := util.CheckID("FabricId", *req.FabricID); err != nil {
			util.WriteError(w, err)
			return
		}
	}
	if req.GarmentID != nil {
		if err := util.CheckID("GarmentId", *req.GarmentID); err != nil {
			util.WriteError(w, err)
			return
		}
	}
	if req.TotalPrice.IsNegative() {
		util.WriteError(w, util.NewInvalidError(constants.NEGATIVE_PRICE))
		return
	}
	if req.TrackingCode != "" && !derive.IsTrackingCode(req.TrackingCode) {
		util.WriteError(w, util.NewConstraintError(util.ViolationCheck, model.ConstraintTrackingCodeFmt, constants.INVALID_TRACKING_CODE))
		return
	}
	if req.Status == "" {
		req.Status = STATUS_CONFIRMED
	}
	if err := CheckTransition("", req.Status, false); err != nil {
		util.WriteError(w, err)
		return
	}

	newOrder := model.Order{
		ID:                  uuid.NewString(),
		TrackingCode:        req.TrackingCode,
		CustomerID:          req.CustomerID,
		FabricID:            req.FabricID,
		GarmentID:           req.GarmentID,
		Customizations:      req.Customizations,
		Measurements:        req.Measurements,
		TotalPrice:          req.TotalPrice,
		Status:              req.Status,
		IsUrgent:            req.IsUrgent,
		SpecialInstructions: req.SpecialInstructions,
		EstimatedCompletion: req.EstimatedCompletion,
	}
	if err := ctx.policy.Authorize(policy.Request{
		Caller:    policy.FromContext(r.Context()),
		Table:     policy.Orders,
		Operation: policy.Insert,
		Row:       &newOrder,
	}); err != nil {
		util.WriteError(w, err)
		return
	}

	issued := ctx.issuer.Assign(&newOrder.TrackingCode)
	for attempt := 1; ; attempt++ {
		ctx.stamper.OnCreate(&newOrder.CreatedAt, &newOrder.UpdatedAt)
		err = ctx.insert(r, &newOrder)
		if err == nil {
			break
		}
		collided := issued && util.IsViolation(err, util.ViolationUnique, model.ConstraintTrackingCodeKey)
		if collided && attempt < createAttempts {
			rlog.Infof("Tracking code %s already taken, issuing another one", newOrder.TrackingCode)
			newOrder.TrackingCode = ctx.issuer.Issue()
			continue
		}
		if collided {
			err = util.NewConstraintError(util.ViolationUnique, model.ConstraintTrackingCodeKey, constants.TRACKING_CODE_EXHAUSTED)
		}
		util.WriteError(w, err)
		return
	}

	rlog.Infof("Order %s was created as state %s", newOrder.TrackingCode, newOrder.Status)
	util.WriteJSON(w, http.StatusOK, newOrder)
}

// insert checks the referenced rows and stores the order in one transaction.
// A missing reference is reported like the foreign key violation the store
// would raise for it.
func (ctx *HandlerContext) insert(r *http.Request, newOrder *model.Order) error {
	return ctx.db.Transaction(func(tx *dal.Query) error {
		customerInfo, errTx := tx.Customer.WithContext(r.Context()).Where(tx.Customer.ID.Eq(newOrder.CustomerID)).First()
		if errTx != nil {
			errTx = util.TranslateDBError(errTx)
			if util.IsKind(errTx, util.KindNotFound) {
				return util.NewConstraintError(util.ViolationForeignKey, model.ConstraintOrderCustomerFKey, constants.CUSTOMER_NOT_FOUND)
			}
			return errTx
		}
		if newOrder.Measurements == nil && customerInfo.Measurements != nil {
			newOrder.Measurements = customerInfo.Measurements
		}

		if newOrder.FabricID != nil {
			count, errTx := tx.Fabric.WithContext(r.Context()).Where(tx.Fabric.ID.Eq(*newOrder.FabricID)).Count()
			if errTx != nil {
				return util.TranslateDBError(errTx)
			}
			if count == 0 {
				return util.NewConstraintError(util.ViolationForeignKey, model.ConstraintOrderFabricFKey, constants.FABRIC_NOT_FOUND)
			}
		}
		if newOrder.GarmentID != nil {
			count, errTx := tx.Garment.WithContext(r.Context()).Where(tx.Garment.ID.Eq(*newOrder.GarmentID)).Count()
			if errTx != nil {
				return util.TranslateDBError(errTx)
			}
			if count == 0 {
				return util.NewConstraintError(util.ViolationForeignKey, model.ConstraintOrderGarmentFKey, constants.GARMENT_NOT_FOUND)
			}
		}

		if errTx := tx.Order.WithContext(r.Context()).Create(newOrder); errTx != nil {
			return util.TranslateDBError(errTx)
		}
		return nil
	})
}

// QueryOrder Fetch order detail by order id
func (ctx *HandlerContext) QueryOrder(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodGet}, w, r) {
		return
	}

	req := QueryOrderRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}

	//Validate payload
	if err := util.CheckID("Order id", req.ID); err != nil {
		util.WriteError(w, err)
		return
	}

	orderDetail, err := ctx.fetch(r, ctx.db.Order.ID.Eq(req.ID), policy.Select)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, orderDetail)
}

// TrackOrder Fetch order detail by tracking code
func (ctx *HandlerContext) TrackOrder(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodGet}, w, r) {
		return
	}

	req := TrackOrderRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}
	if !derive.IsTrackingCode(req.TrackingCode) {
		util.WriteError(w, util.NewInvalidError(constants.INVALID_TRACKING_CODE))
		return
	}

	orderDetail, err := ctx.fetch(r, ctx.db.Order.TrackingCode.Eq(req.TrackingCode), policy.Select)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, orderDetail)
}

// ListOrders returns the orders visible to the caller, newest first.
func (ctx *HandlerContext) ListOrders(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodGet}, w, r) {
		return
	}

	caller := policy.FromContext(r.Context())
	if !ctx.policy.Permits(caller, policy.Orders, policy.Select) {
		util.WriteError(w, util.NewDeniedError())
		return
	}

	req := ListOrdersRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}
	if req.Status != "" && !IsValidStatus(req.Status) {
		util.WriteError(w, util.NewInvalidError(constants.INVALID_ORDER_STATUS+": "+req.Status))
		return
	}
	if req.CustomerID != "" {
		if err := util.CheckID("CustomerId", req.CustomerID); err != nil {
			util.WriteError(w, err)
			return
		}
	}

	q := ctx.db.ReadDB()
	do := q.Order.WithContext(r.Context())
	if req.Status != "" {
		do = do.Where(q.Order.Status.Eq(req.Status))
	}
	if req.CustomerID != "" {
		do = do.Where(q.Order.CustomerID.Eq(req.CustomerID))
	}
	orders, err := do.Order(q.Order.CreatedAt.Desc()).Find()
	if err != nil {
		util.WriteError(w, util.TranslateDBError(err))
		return
	}

	visible := make([]*model.Order, 0, len(orders))
	for _, o := range orders {
		if ctx.policy.Visible(caller, policy.Orders, o) {
			visible = append(visible, o)
		}
	}
	util.WriteJSON(w, http.StatusOK, visible)
}

// UpdateOrderStatus Move an order to another pipeline stage
func (ctx *HandlerContext) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodPost}, w, r) {
		return
	}

	req := UpdateOrderStatusRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}
	if err := util.CheckID("Order id", req.ID); err != nil {
		util.WriteError(w, err)
		return
	}

	orderInfo, err := ctx.fetch(r, ctx.db.Order.ID.Eq(req.ID), policy.Update)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	if err := CheckTransition(orderInfo.Status, req.Status, ctx.enforceForward); err != nil {
		util.WriteError(w, err)
		return
	}

	ctx.applyUpdate(w, r, orderInfo, map[string]interface{}{"status": req.Status})
}

// AdvanceOrder Move an order to the stage following its current one
func (ctx *HandlerContext) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodPost}, w, r) {
		return
	}

	req := QueryOrderRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}
	if err := util.CheckID("Order id", req.ID); err != nil {
		util.WriteError(w, err)
		return
	}

	orderInfo, err := ctx.fetch(r, ctx.db.Order.ID.Eq(req.ID), policy.Update)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	next, ok := NextStatus(orderInfo.Status)
	if !ok {
		util.WriteError(w, util.NewInvalidError(constants.ORDER_ALREADY_COMPLETED))
		return
	}

	ctx.applyUpdate(w, r, orderInfo, map[string]interface{}{"status": next})
}

// UpdateOrder Change the mutable details of an order
func (ctx *HandlerContext) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodPost}, w, r) {
		return
	}

	req := UpdateOrderRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}
	if err := util.CheckID("Order id", req.ID); err != nil {
		util.WriteError(w, err)
		return
	}
	for name, v := range map[string]*string{
		"tracking_code": req.TrackingCode,
		"customer_id":   req.CustomerID,
		"fabric_id":     req.FabricID,
		"garment_id":    req.GarmentID,
	} {
		if v != nil {
			util.WriteError(w, util.NewInvalidError(name+": "+constants.IMMUTABLE_ORDER_FIELD))
			return
		}
	}

	values := map[string]interface{}{}
	if req.SpecialInstructions != nil {
		values["special_instructions"] = *req.SpecialInstructions
	}
	if req.EstimatedCompletion != nil {
		values["estimated_completion"] = req.EstimatedCompletion.UTC()
	}
	if req.IsUrgent != nil {
		values["is_urgent"] = *req.IsUrgent
	}
	if req.Status != nil {
		values["status"] = *req.Status
	}
	if len(values) == 0 {
		util.WriteError(w, util.NewInvalidError("Nothing to update"))
		return
	}

	orderInfo, err := ctx.fetch(r, ctx.db.Order.ID.Eq(req.ID), policy.Update)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	if req.Status != nil {
		if err := CheckTransition(orderInfo.Status, *req.Status, ctx.enforceForward); err != nil {
			util.WriteError(w, err)
			return
		}
	}

	ctx.applyUpdate(w, r, orderInfo, values)
}

// DeleteOrder Remove an order
func (ctx *HandlerContext) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodPost}, w, r) {
		return
	}

	req := QueryOrderRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}
	if err := util.CheckID("Order id", req.ID); err != nil {
		util.WriteError(w, err)
		return
	}

	orderInfo, err := ctx.fetch(r, ctx.db.Order.ID.Eq(req.ID), policy.Delete)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	if _, err := ctx.db.Order.WithContext(r.Context()).Where(ctx.db.Order.ID.Eq(orderInfo.ID)).Delete(); err != nil {
		util.WriteError(w, util.TranslateDBError(err))
		return
	}

	rlog.Infof("Order %s was deleted", orderInfo.TrackingCode)
	util.WriteJSON(w, http.StatusOK, map[string]string{"id": orderInfo.ID, "tracking_code": orderInfo.TrackingCode})
}

// applyUpdate writes values to an order loaded by fetch. A status change only
// lands while the order is still in the status it was loaded with.
func (ctx *HandlerContext) applyUpdate(w http.ResponseWriter, r *http.Request, orderInfo *model.Order, values map[string]interface{}) {
	conds := []gen.Condition{ctx.db.Order.ID.Eq(orderInfo.ID)}
	_, statusChange := values["status"]
	if statusChange {
		conds = append(conds, ctx.db.Order.Status.Eq(orderInfo.Status))
	}
	result, err := ctx.db.Order.WithContext(r.Context()).Where(conds...).Updates(ctx.stamper.OnUpdate(values))
	if err != nil {
		util.WriteError(w, util.TranslateDBError(err))
		return
	}
	if result.RowsAffected == 0 {
		if statusChange {
			util.WriteError(w, util.NewConflictError(constants.ORDER_STATUS_CHANGED))
		} else {
			util.WriteError(w, util.NewNotFoundError(constants.ORDER_NOT_FOUND))
		}
		return
	}

	updated, err := ctx.db.Order.WithContext(r.Context()).Where(ctx.db.Order.ID.Eq(orderInfo.ID)).First()
	if err != nil {
		util.WriteError(w, util.TranslateDBError(err))
		return
	}
	if updated.Status != orderInfo.Status {
		rlog.Infof("Order %s state was set from %s to %s", updated.TrackingCode, orderInfo.Status, updated.Status)
	}
	util.WriteJSON(w, http.StatusOK, updated)
}

// fetch loads one order for op. A caller with no rule for op is denied; an
// order the caller may not see is reported as missing.
func (ctx *HandlerContext) fetch(r *http.Request, cond gen.Condition, op policy.Operation) (*model.Order, error) {
	caller := policy.FromContext(r.Context())
	if !ctx.policy.Permits(caller, policy.Orders, op) {
		return nil, util.NewDeniedError()
	}

	orderInfo, err := ctx.db.Order.WithContext(r.Context()).Where(cond).First()
	if err != nil {
		err = util.TranslateDBError(err)
		if util.IsKind(err, util.KindNotFound) {
			return nil, util.NewNotFoundError(constants.ORDER_NOT_FOUND)
		}
		return nil, err
	}

	if !ctx.policy.Allows(policy.Request{Caller: caller, Table: policy.Orders, Operation: op, Row: orderInfo}) {
		if !ctx.policy.Visible(caller, policy.Orders, orderInfo) {
			return nil, util.NewNotFoundError(constants.ORDER_NOT_FOUND)
		}
		return nil, util.NewDeniedError()
	}
	return orderInfo, nil
}
