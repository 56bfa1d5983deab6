package garment

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/romana/rlog"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
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

type CreateGarmentsRequest struct {
	Garments []model.Garment `json:"garments"`
}

type QueryGarmentRequest struct {
	ID string `json:"id"`
}

type ListGarmentsRequest struct {
	Category string `json:"category,omitempty"`
	Search   string `json:"search,omitempty"`
}

type UpdateGarmentRequest struct {
	ID                   string                       `json:"id"`
	Name                 *string                      `json:"name,omitempty"`
	Category             *string                      `json:"category,omitempty"`
	BasePrice            *decimal.Decimal             `json:"base_price,omitempty"`
	Description          *string                      `json:"description,omitempty"`
	ImageURL             *string                      `json:"image_url,omitempty"`
	CustomizationOptions *model.CustomizationOptions `json:"customization_options,omitempty"`
}

func (ctx *HandlerContext) InitialHandlerContext(db *dal.Query, engine *policy.Engine, stamper *derive.Stamper) {
	ctx.db = db
	ctx.policy = engine
	ctx.stamper = stamper
}

func (ctx *HandlerContext) authorize(r *http.Request, op policy.Operation) error {
	return ctx.policy.Authorize(policy.Request{
		Caller:    policy.FromContext(r.Context()),
		Table:     policy.Garments,
		Operation: op,
	})
}

// CreateGarments Create new garments
func (ctx *HandlerContext) CreateGarments(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodPost}, w, r) {
		return
	}
	if err := ctx.authorize(r, policy.Insert); err != nil {
		util.WriteError(w, err)
		return
	}

	req := CreateGarmentsRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}

	// Validate Payload
	if len(req.Garments) == 0 {
		util.WriteError(w, util.NewInvalidError("garments is required"))
		return
	}
	validationErr := ""
	for i, g := range req.Garments {
		if g.Name == "" {
			validationErr += fmt.Sprintf("The %d garment name is required.", i+1)
		}
		if g.Category == "" {
			validationErr += fmt.Sprintf("The %d garment category is required.", i+1)
		}
		if g.BasePrice.IsNegative() {
			validationErr += fmt.Sprintf("The %d garment: %s.", i+1, constants.NEGATIVE_PRICE)
		}
	}
	if validationErr != "" {
		util.WriteError(w, util.NewInvalidError(validationErr))
		return
	}

	for i := range req.Garments {
		if req.Garments[i].ID == "" {
			req.Garments[i].ID = uuid.NewString()
		} else if err := util.CheckID("Garment id", req.Garments[i].ID); err != nil {
			util.WriteError(w, err)
			return
		}
		ctx.stamper.OnCreate(&req.Garments[i].CreatedAt, &req.Garments[i].UpdatedAt)
	}

	err = ctx.db.Transaction(func(tx *dal.Query) error {
		for i := range req.Garments {
			if errCreate := tx.Garment.WithContext(r.Context()).Create(&req.Garments[i]); errCreate != nil {
				rlog.Errorf("Create garment %s failed: %s", req.Garments[i].Name, errCreate.Error())
				return util.TranslateDBError(errCreate)
			}
		}
		return nil
	})
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, req.Garments)
}

// QueryGarment Fetch one garment by id
func (ctx *HandlerContext) QueryGarment(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodGet}, w, r) {
		return
	}
	if err := ctx.authorize(r, policy.Select); err != nil {
		util.WriteError(w, err)
		return
	}

	req := QueryGarmentRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}
	if err := util.CheckID("Garment id", req.ID); err != nil {
		util.WriteError(w, err)
		return
	}

	garmentInfo, err := ctx.fetch(r, req.ID)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, garmentInfo)
}

// ListGarments returns garments newest first. Category is an exact match,
// search a case-insensitive substring over the descriptive fields.
func (ctx *HandlerContext) ListGarments(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodGet}, w, r) {
		return
	}
	if err := ctx.authorize(r, policy.Select); err != nil {
		util.WriteError(w, err)
		return
	}

	req := ListGarmentsRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}

	q := ctx.db.ReadDB()
	do := q.Garment.WithContext(r.Context())
	if req.Category != "" {
		do = do.Where(q.Garment.Category.Eq(req.Category))
	}
	garments, err := do.Order(q.Garment.CreatedAt.Desc()).Find()
	if err != nil {
		util.WriteError(w, util.TranslateDBError(err))
		return
	}

	util.WriteJSON(w, http.StatusOK, catalog.FilterGarments(garments, req.Search, req.Category))
}

// UpdateGarment Edit the catalog fields of a garment
func (ctx *HandlerContext) UpdateGarment(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodPost}, w, r) {
		return
	}
	if err := ctx.authorize(r, policy.Update); err != nil {
		util.WriteError(w, err)
		return
	}

	req := UpdateGarmentRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}
	if err := util.CheckID("Garment id", req.ID); err != nil {
		util.WriteError(w, err)
		return
	}

	values := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			util.WriteError(w, util.NewInvalidError("Garment name must not be empty"))
			return
		}
		values["name"] = *req.Name
	}
	if req.Category != nil {
		if *req.Category == "" {
			util.WriteError(w, util.NewInvalidError("Garment category must not be empty"))
			return
		}
		values["category"] = *req.Category
	}
	if req.BasePrice != nil {
		if req.BasePrice.IsNegative() {
			util.WriteError(w, util.NewInvalidError(constants.NEGATIVE_PRICE))
			return
		}
		values["base_price"] = *req.BasePrice
	}
	if req.Description != nil {
		values["description"] = *req.Description
	}
	if req.ImageURL != nil {
		values["image_url"] = *req.ImageURL
	}
	if req.CustomizationOptions != nil {
		values["customization_options"] = datatypes.NewJSONType(*req.CustomizationOptions)
	}
	if len(values) == 0 {
		util.WriteError(w, util.NewInvalidError("Nothing to update"))
		return
	}

	result, err := ctx.db.Garment.WithContext(r.Context()).
		Where(ctx.db.Garment.ID.Eq(req.ID)).
		Updates(ctx.stamper.OnUpdate(values))
	if err != nil {
		util.WriteError(w, util.TranslateDBError(err))
		return
	}
	if result.RowsAffected == 0 {
		util.WriteError(w, util.NewNotFoundError(constants.GARMENT_NOT_FOUND))
		return
	}

	garmentInfo, err := ctx.fetch(r, req.ID)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, garmentInfo)
}

// DeleteGarment Remove a garment. Orders referencing it keep their snapshot.
func (ctx *HandlerContext) DeleteGarment(w http.ResponseWriter, r *http.Request) {
	// Validate http method
	if !util.IsAllowHttpMethod([]string{http.MethodPost}, w, r) {
		return
	}
	if err := ctx.authorize(r, policy.Delete); err != nil {
		util.WriteError(w, err)
		return
	}

	req := QueryGarmentRequest{}
	err := util.FetchReqObject(r, &req)
	if err != nil {
		util.WriteError(w, util.NewInvalidError(err.Error()))
		return
	}
	if err := util.CheckID("Garment id", req.ID); err != nil {
		util.WriteError(w, err)
		return
	}

	result, err := ctx.db.Garment.WithContext(r.Context()).Where(ctx.db.Garment.ID.Eq(req.ID)).Delete()
	if err != nil {
		util.WriteError(w, util.TranslateDBError(err))
		return
	}
	if result.RowsAffected == 0 {
		util.WriteError(w, util.NewNotFoundError(constants.GARMENT_NOT_FOUND))
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"id": req.ID})
}

func (ctx *HandlerContext) fetch(r *http.Request, id string) (*model.Garment, error) {
	garmentInfo, err := ctx.db.Garment.WithContext(r.Context()).Where(ctx.db.Garment.ID.Eq(id)).First()
	if err != nil {
		err = util.TranslateDBError(err)
		if util.IsKind(err, util.KindNotFound) {
			return nil, util.NewNotFoundError(constants.GARMENT_NOT_FOUND)
		}
		return nil, err
	}
	return garmentInfo, nil
}
