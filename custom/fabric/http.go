package fabric

import (
	"fmt"
	"math"
	"net/http"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/romana/rlog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"tailor_shop/constants"
	"tailor_shop/custom/catalog"
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

type CreateFabricsRequest struct {
	Fabrics []model.Fabric `json:"fabrics"`
}

type QueryFabricRequest struct {
	ID string `json:"id"`
}

type ListFabricsRequest struct {
	Featured *bool  `json:"featured,omitempty"`
	Search   string `json:"search,omitempty"`
}

type UpdateFabricRequest struct {
	ID            string           `json:"id"`
	Name          *string          `json:"name,omitempty"`
	Material      *string          `json:"material,omitempty"`
	PricePerMeter *decimal.Decimal `json:"price_per_meter,omitempty"`
	Color         *string          `json:"color,omitempty"`
	Images        *pq.StringArray  `json:"images,omitempty"`
	Description   *string          `json:"description,omitempty"`
}

type AdjustStockRequest struct {
	ID    string `json:"id"`
	Delta int    `json:"delta"`
}

func (ctx *HandlerContext) InitialHandlerContext(db *dal.Query, engine *policy.Engine, stamper *derive.Stamper) {
	ctx.db = db
	ctx.policy = engine
	ctx.stamper = stamper
}

func (ctx *HandlerContext) authorize(r *http.Request, op policy.Operation) error {
	return ctx.policy.Authorize(policy.Request{
		Caller:    policy.FromContext(r.Context()),
		Table:     policy.Fabrics,
		Operation: op,
	})
}

// CreateFabrics Create new fabrics
func (ctx *HandlerContext) CreateFabrics(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodPost}, w, r) {
		return
	}
	if err := ctx.authorize(r, policy.Insert); err != nil {
		util.WriteError(w, err)
		return
	}

	req := CreateFabricsRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}

	// Validate Payload
	if len(req.Fabrics) == 0 {
		util.WriteError(w, util.NewInvalidError("fabrics is required"))
		return
	}
	validationErr := ""
	for i, f := range req.Fabrics {
		if f.Name == "" {
			validationErr += fmt.Sprintf("The %d fabric name is required.", i+1)
		}
		if f.Material == "" {
			validationErr += fmt.Sprintf("The %d fabric material is required.", i+1)
		}
		if f.PricePerMeter.IsNegative() {
			validationErr += fmt.Sprintf("The %d fabric: %s.", i+1, constants.NEGATIVE_PRICE)
		}
		if f.Stock < 0 {
			validationErr += fmt.Sprintf("The %d fabric: %s.", i+1, constants.NEGATIVE_STOCK)
		}
	}
	if validationErr != "" {
		util.WriteError(w, util.NewInvalidError(validationErr))
		return
	}

	for i := range req.Fabrics {
		if req.Fabrics[i].ID == "" {
			req.Fabrics[i].ID = uuid.NewString()
		} else if err := util.CheckID("Fabric id", req.Fabrics[i].ID); err != nil {
			util.WriteError(w, err)
			return
		}
		ctx.stamper.OnCreate(&req.Fabrics[i].CreatedAt, &req.Fabrics[i].UpdatedAt)
	}

	err = ctx.db.Transaction(func(tx *dal.Query) error {
		for i := range req.Fabrics {
			if errCreate := tx.Fabric.WithContext(r.Context()).Create(&req.Fabrics[i]); errCreate != nil {
				rlog.Errorf("Create fabric %s failed: %s", req.Fabrics[i].Name, errCreate.Error())
				return util.TranslateDBError(errCreate)
			}
		}
		return nil
	})
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, req.Fabrics)
}

// QueryFabric Fetch one fabric by id
func (ctx *HandlerContext) QueryFabric(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodGet}, w, r) {
		return
	}
	if err := ctx.authorize(r, policy.Select); err != nil {
		util.WriteError(w, err)
		return
	}

	req := QueryFabricRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}

	// Validate payload
	if err := util.CheckID("Fabric id", req.ID); err != nil {
		util.WriteError(w, err)
		return
	}

	fabricInfo, err := ctx.fetch(r, req.ID)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, fabricInfo)
}

// ListFabrics returns fabrics newest first, optionally only the featured ones
// and those matching the search text.
func (ctx *HandlerContext) ListFabrics(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodGet}, w, r) {
		return
	}
	if err := ctx.authorize(r, policy.Select); err != nil {
		util.WriteError(w, err)
		return
	}

	req := ListFabricsRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}

	q := ctx.db.ReadDB()
	do := q.Fabric.WithContext(r.Context())
	if req.Featured != nil {
		do = do.Where(q.Fabric.Featured.Is(*req.Featured))
	}
	fabrics, err := do.Order(q.Fabric.CreatedAt.Desc()).Find()
	if err != nil {
		util.WriteError(w, util.TranslateDBError(err))
		return
	}

	util.WriteJSON(w, http.StatusOK, catalog.FilterFabrics(fabrics, req.Search))
}

// UpdateFabric Edit the catalog fields of a fabric
func (ctx *HandlerContext) UpdateFabric(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodPost}, w, r) {
		return
	}
	if err := ctx.authorize(r, policy.Update); err != nil {
		util.WriteError(w, err)
		return
	}

	req := UpdateFabricRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}

	// Validate payload
	if err := util.CheckID("Fabric id", req.ID); err != nil {
		util.WriteError(w, err)
		return
	}
	values := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			util.WriteError(w, util.NewInvalidError("Fabric name must not be empty"))
			return
		}
		values["name"] = *req.Name
	}
	if req.Material != nil {
		if *req.Material == "" {
			util.WriteError(w, util.NewInvalidError("Fabric material must not be empty"))
			return
		}
		values["material"] = *req.Material
	}
	if req.PricePerMeter != nil {
		if req.PricePerMeter.IsNegative() {
			util.WriteError(w, util.NewInvalidError(constants.NEGATIVE_PRICE))
			return
		}
		values["price_per_meter"] = *req.PricePerMeter
	}
	if req.Color != nil {
		values["color"] = *req.Color
	}
	if req.Images != nil {
		values["images"] = *req.Images
	}
	if req.Description != nil {
		values["description"] = *req.Description
	}
	if len(values) == 0 {
		util.WriteError(w, util.NewInvalidError("Nothing to update"))
		return
	}

	ctx.update(w, r, req.ID, values)
}

// ToggleFabricFeatured flips the featured flag in a single statement.
func (ctx *HandlerContext) ToggleFabricFeatured(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodPost}, w, r) {
		return
	}
	if err := ctx.authorize(r, policy.Update); err != nil {
		util.WriteError(w, err)
		return
	}

	req := QueryFabricRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}
	if err := util.CheckID("Fabric id", req.ID); err != nil {
		util.WriteError(w, err)
		return
	}

	ctx.update(w, r, req.ID, map[string]interface{}{"featured": gorm.Expr(`NOT "featured"`)})
}

// AdjustFabricStock adds delta to the stock counter. The counter never goes
// below zero.
func (ctx *HandlerContext) AdjustFabricStock(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodPost}, w, r) {
		return
	}
	if err := ctx.authorize(r, policy.Update); err != nil {
		util.WriteError(w, err)
		return
	}

	req := AdjustStockRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}
	if err := util.CheckID("Fabric id", req.ID); err != nil {
		util.WriteError(w, err)
		return
	}

	if req.Delta > math.MaxInt32 || req.Delta < -math.MaxInt32 {
		util.WriteError(w, util.NewInvalidError(constants.STOCK_DELTA_RANGE))
		return
	}

	values := ctx.stamper.OnUpdate(map[string]interface{}{"stock": gorm.Expr(`"stock" + ?`, req.Delta)})
	result, err := ctx.db.Fabric.WithContext(r.Context()).
		Where(ctx.db.Fabric.ID.Eq(req.ID), ctx.db.Fabric.Stock.Gte(-req.Delta)).
		Updates(values)
	if err != nil {
		util.WriteError(w, util.TranslateDBError(err))
		return
	}

	fabricInfo, err := ctx.fetch(r, req.ID)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	if result.RowsAffected == 0 {
		util.WriteError(w, util.NewInvalidError(constants.NEGATIVE_STOCK))
		return
	}
	rlog.Infof("Fabric %s stock adjusted by %d to %d", req.ID, req.Delta, fabricInfo.Stock)
	util.WriteJSON(w, http.StatusOK, fabricInfo)
}

// DeleteFabric Remove a fabric. Orders keep their own snapshot and lose only the reference.
func (ctx *HandlerContext) DeleteFabric(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodPost}, w, r) {
		return
	}
	if err := ctx.authorize(r, policy.Delete); err != nil {
		util.WriteError(w, err)
		return
	}

	req := QueryFabricRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}
	if err := util.CheckID("Fabric id", req.ID); err != nil {
		util.WriteError(w, err)
		return
	}

	result, err := ctx.db.Fabric.WithContext(r.Context()).Where(ctx.db.Fabric.ID.Eq(req.ID)).Delete()
	if err != nil {
		util.WriteError(w, util.TranslateDBError(err))
		return
	}
	if result.RowsAffected == 0 {
		util.WriteError(w, util.NewNotFoundError(constants.FABRIC_NOT_FOUND))
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"id": req.ID})
}

func (ctx *HandlerContext) update(w http.ResponseWriter, r *http.Request, id string, values map[string]interface{}) {
	result, err := ctx.db.Fabric.WithContext(r.Context()).
		Where(ctx.db.Fabric.ID.Eq(id)).
		Updates(ctx.stamper.OnUpdate(values))
	if err != nil {
		util.WriteError(w, util.TranslateDBError(err))
		return
	}
	if result.RowsAffected == 0 {
		util.WriteError(w, util.NewNotFoundError(constants.FABRIC_NOT_FOUND))
		return
	}

	fabricInfo, err := ctx.fetch(r, id)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, fabricInfo)
}

func (ctx *HandlerContext) fetch(r *http.Request, id string) (*model.Fabric, error) {
	fabricInfo, err := ctx.db.Fabric.WithContext(r.Context()).Where(ctx.db.Fabric.ID.Eq(id)).First()
	if err != nil {
		err = util.TranslateDBError(err)
		if util.IsKind(err, util.KindNotFound) {
			return nil, util.NewNotFoundError(constants.FABRIC_NOT_FOUND)
		}
		return nil, err
	}
	return fabricInfo, nil
}
