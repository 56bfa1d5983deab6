package dal

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"gorm.io/gen"
	"gorm.io/gen/field"

	"gorm.io/plugin/dbresolver"

	"tailor_shop/model"
)

func newOrder(db *gorm.DB, opts ...gen.DOOption) order {
	_order := order{}

	_order.orderDo.UseDB(db, opts...)
	_order.orderDo.UseModel(&model.Order{})

	tableName := _order.orderDo.TableName()
	_order.ALL = field.NewAsterisk(tableName)
	_order.ID = field.NewString(tableName, "id")
	_order.TrackingCode = field.NewString(tableName, "tracking_code")
	_order.CustomerID = field.NewString(tableName, "customer_id")
	_order.FabricID = field.NewString(tableName, "fabric_id")
	_order.GarmentID = field.NewString(tableName, "garment_id")
	_order.Customizations = field.NewField(tableName, "customizations")
	_order.Measurements = field.NewField(tableName, "measurements")
	_order.TotalPrice = field.NewField(tableName, "total_price")
	_order.Status = field.NewString(tableName, "status")
	_order.IsUrgent = field.NewBool(tableName, "is_urgent")
	_order.SpecialInstructions = field.NewString(tableName, "special_instructions")
	_order.EstimatedCompletion = field.NewTime(tableName, "estimated_completion")
	_order.CreatedAt = field.NewTime(tableName, "created_at")
	_order.UpdatedAt = field.NewTime(tableName, "updated_at")

	_order.fillFieldMap()

	return _order
}

type order struct {
	orderDo

	ALL                 field.Asterisk
	ID                  field.String
	TrackingCode        field.String
	CustomerID          field.String
	FabricID            field.String
	GarmentID           field.String
	Customizations      field.Field
	Measurements        field.Field
	TotalPrice          field.Field
	Status              field.String
	IsUrgent            field.Bool
	SpecialInstructions field.String
	EstimatedCompletion field.Time
	CreatedAt           field.Time
	UpdatedAt           field.Time

	fieldMap map[string]field.Expr
}

func (o order) Table(newTableName string) *order {
	o.orderDo.UseTable(newTableName)
	return o.updateTableName(newTableName)
}

func (o order) As(alias string) *order {
	o.orderDo.DO = *(o.orderDo.As(alias).(*gen.DO))
	return o.updateTableName(alias)
}

func (o *order) updateTableName(table string) *order {
	o.ALL = field.NewAsterisk(table)
	o.ID = field.NewString(table, "id")
	o.TrackingCode = field.NewString(table, "tracking_code")
	o.CustomerID = field.NewString(table, "customer_id")
	o.FabricID = field.NewString(table, "fabric_id")
	o.GarmentID = field.NewString(table, "garment_id")
	o.Customizations = field.NewField(table, "customizations")
	o.Measurements = field.NewField(table, "measurements")
	o.TotalPrice = field.NewField(table, "total_price")
	o.Status = field.NewString(table, "status")
	o.IsUrgent = field.NewBool(table, "is_urgent")
	o.SpecialInstructions = field.NewString(table, "special_instructions")
	o.EstimatedCompletion = field.NewTime(table, "estimated_completion")
	o.CreatedAt = field.NewTime(table, "created_at")
	o.UpdatedAt = field.NewTime(table, "updated_at")

	o.fillFieldMap()

	return o
}

func (o *order) GetFieldByName(fieldName string) (field.OrderExpr, bool) {
	_f, ok := o.fieldMap[fieldName]
	if !ok || _f == nil {
		return nil, false
	}
	_oe, ok := _f.(field.OrderExpr)
	return _oe, ok
}

func (o *order) fillFieldMap() {
	o.fieldMap = make(map[string]field.Expr, 14)
	o.fieldMap["id"] = o.ID
	o.fieldMap["tracking_code"] = o.TrackingCode
	o.fieldMap["customer_id"] = o.CustomerID
	o.fieldMap["fabric_id"] = o.FabricID
	o.fieldMap["garment_id"] = o.GarmentID
	o.fieldMap["customizations"] = o.Customizations
	o.fieldMap["measurements"] = o.Measurements
	o.fieldMap["total_price"] = o.TotalPrice
	o.fieldMap["status"] = o.Status
	o.fieldMap["is_urgent"] = o.IsUrgent
	o.fieldMap["special_instructions"] = o.SpecialInstructions
	o.fieldMap["estimated_completion"] = o.EstimatedCompletion
	o.fieldMap["created_at"] = o.CreatedAt
	o.fieldMap["updated_at"] = o.UpdatedAt
}

func (o order) clone(db *gorm.DB) order {
	o.orderDo.ReplaceConnPool(db.Statement.ConnPool)
	return o
}

func (o order) replaceDB(db *gorm.DB) order {
	o.orderDo.ReplaceDB(db)
	return o
}

type orderDo struct{ gen.DO }

type IOrderDo interface {
	Debug() IOrderDo
	WithContext(ctx context.Context) IOrderDo
	ReadDB() IOrderDo
	WriteDB() IOrderDo
	Clauses(conds ...clause.Expression) IOrderDo
	Not(conds ...gen.Condition) IOrderDo
	Or(conds ...gen.Condition) IOrderDo
	Select(conds ...field.Expr) IOrderDo
	Where(conds ...gen.Condition) IOrderDo
	Order(conds ...field.Expr) IOrderDo
	Limit(limit int) IOrderDo
	Offset(offset int) IOrderDo
	Unscoped() IOrderDo
	Count() (count int64, err error)
	Create(values ...*model.Order) error
	Save(values ...*model.Order) error
	First() (*model.Order, error)
	Take() (*model.Order, error)
	Last() (*model.Order, error)
	Find() ([]*model.Order, error)
	Delete(...*model.Order) (info gen.ResultInfo, err error)
	Update(column field.Expr, value interface{}) (info gen.ResultInfo, err error)
	UpdateSimple(columns ...field.AssignExpr) (info gen.ResultInfo, err error)
	Updates(value interface{}) (info gen.ResultInfo, err error)
	UnderlyingDB() *gorm.DB
	schema.Tabler
}

func (o orderDo) Debug() IOrderDo {
	return o.withDO(o.DO.Debug())
}

func (o orderDo) WithContext(ctx context.Context) IOrderDo {
	return o.withDO(o.DO.WithContext(ctx))
}

func (o orderDo) ReadDB() IOrderDo {
	return o.Clauses(dbresolver.Read)
}

func (o orderDo) WriteDB() IOrderDo {
	return o.Clauses(dbresolver.Write)
}

func (o orderDo) Clauses(conds ...clause.Expression) IOrderDo {
	return o.withDO(o.DO.Clauses(conds...))
}

func (o orderDo) Not(conds ...gen.Condition) IOrderDo {
	return o.withDO(o.DO.Not(conds...))
}

func (o orderDo) Or(conds ...gen.Condition) IOrderDo {
	return o.withDO(o.DO.Or(conds...))
}

func (o orderDo) Select(conds ...field.Expr) IOrderDo {
	return o.withDO(o.DO.Select(conds...))
}

func (o orderDo) Where(conds ...gen.Condition) IOrderDo {
	return o.withDO(o.DO.Where(conds...))
}

func (o orderDo) Order(conds ...field.Expr) IOrderDo {
	return o.withDO(o.DO.Order(conds...))
}

func (o orderDo) Limit(limit int) IOrderDo {
	return o.withDO(o.DO.Limit(limit))
}

func (o orderDo) Offset(offset int) IOrderDo {
	return o.withDO(o.DO.Offset(offset))
}

func (o orderDo) Unscoped() IOrderDo {
	return o.withDO(o.DO.Unscoped())
}

func (o orderDo) Create(values ...*model.Order) error {
	if len(values) == 0 {
		return nil
	}
	return o.DO.Create(values)
}

// Save : !!! underlying implementation is different with GORM
// The method is equivalent to executing the statement: db.Clauses(clause.OnConflict{UpdateAll: true}).Create(values)
func (o orderDo) Save(values ...*model.Order) error {
	if len(values) == 0 {
		return nil
	}
	return o.DO.Save(values)
}

// First retrieve first record
func (o orderDo) First() (*model.Order, error) {
	if result, err := o.DO.First(); err != nil {
		return nil, err
	} else {
		return result.(*model.Order), nil
	}
}

// Take retrieve any record
func (o orderDo) Take() (*model.Order, error) {
	if result, err := o.DO.Take(); err != nil {
		return nil, err
	} else {
		return result.(*model.Order), nil
	}
}

// Last retrieve last record
func (o orderDo) Last() (*model.Order, error) {
	if result, err := o.DO.Last(); err != nil {
		return nil, err
	} else {
		return result.(*model.Order), nil
	}
}

func (o orderDo) Find() ([]*model.Order, error) {
	result, err := o.DO.Find()
	return result.([]*model.Order), err
}

func (o orderDo) Delete(models ...*model.Order) (result gen.ResultInfo, err error) {
	return o.DO.Delete(models)
}

func (o *orderDo) withDO(do gen.Dao) *orderDo {
	o.DO = *do.(*gen.DO)
	return o
}
