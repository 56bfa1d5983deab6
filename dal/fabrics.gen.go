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

func newFabric(db *gorm.DB, opts ...gen.DOOption) fabric {
	_fabric := fabric{}

	_fabric.fabricDo.UseDB(db, opts...)
	_fabric.fabricDo.UseModel(&model.Fabric{})

	tableName := _fabric.fabricDo.TableName()
	_fabric.ALL = field.NewAsterisk(tableName)
	_fabric.ID = field.NewString(tableName, "id")
	_fabric.Name = field.NewString(tableName, "name")
	_fabric.Material = field.NewString(tableName, "material")
	_fabric.PricePerMeter = field.NewField(tableName, "price_per_meter")
	_fabric.Color = field.NewString(tableName, "color")
	_fabric.Stock = field.NewInt(tableName, "stock")
	_fabric.Images = field.NewField(tableName, "images")
	_fabric.Featured = field.NewBool(tableName, "featured")
	_fabric.Description = field.NewString(tableName, "description")
	_fabric.CreatedAt = field.NewTime(tableName, "created_at")
	_fabric.UpdatedAt = field.NewTime(tableName, "updated_at")

	_fabric.fillFieldMap()

	return _fabric
}

type fabric struct {
	fabricDo

	ALL           field.Asterisk
	ID            field.String
	Name          field.String
	Material      field.String
	PricePerMeter field.Field
	Color         field.String
	Stock         field.Int
	Images        field.Field
	Featured      field.Bool
	Description   field.String
	CreatedAt     field.Time
	UpdatedAt     field.Time

	fieldMap map[string]field.Expr
}

func (f fabric) Table(newTableName string) *fabric {
	f.fabricDo.UseTable(newTableName)
	return f.updateTableName(newTableName)
}

func (f fabric) As(alias string) *fabric {
	f.fabricDo.DO = *(f.fabricDo.As(alias).(*gen.DO))
	return f.updateTableName(alias)
}

func (f *fabric) updateTableName(table string) *fabric {
	f.ALL = field.NewAsterisk(table)
	f.ID = field.NewString(table, "id")
	f.Name = field.NewString(table, "name")
	f.Material = field.NewString(table, "material")
	f.PricePerMeter = field.NewField(table, "price_per_meter")
	f.Color = field.NewString(table, "color")
	f.Stock = field.NewInt(table, "stock")
	f.Images = field.NewField(table, "images")
	f.Featured = field.NewBool(table, "featured")
	f.Description = field.NewString(table, "description")
	f.CreatedAt = field.NewTime(table, "created_at")
	f.UpdatedAt = field.NewTime(table, "updated_at")

	f.fillFieldMap()

	return f
}

func (f *fabric) GetFieldByName(fieldName string) (field.OrderExpr, bool) {
	_f, ok := f.fieldMap[fieldName]
	if !ok || _f == nil {
		return nil, false
	}
	_oe, ok := _f.(field.OrderExpr)
	return _oe, ok
}

func (f *fabric) fillFieldMap() {
	f.fieldMap = make(map[string]field.Expr, 11)
	f.fieldMap["id"] = f.ID
	f.fieldMap["name"] = f.Name
	f.fieldMap["material"] = f.Material
	f.fieldMap["price_per_meter"] = f.PricePerMeter
	f.fieldMap["color"] = f.Color
	f.fieldMap["stock"] = f.Stock
	f.fieldMap["images"] = f.Images
	f.fieldMap["featured"] = f.Featured
	f.fieldMap["description"] = f.Description
	f.fieldMap["created_at"] = f.CreatedAt
	f.fieldMap["updated_at"] = f.UpdatedAt
}

func (f fabric) clone(db *gorm.DB) fabric {
	f.fabricDo.ReplaceConnPool(db.Statement.ConnPool)
	return f
}

func (f fabric) replaceDB(db *gorm.DB) fabric {
	f.fabricDo.ReplaceDB(db)
	return f
}

type fabricDo struct{ gen.DO }

type IFabricDo interface {
	Debug() IFabricDo
	WithContext(ctx context.Context) IFabricDo
	ReadDB() IFabricDo
	WriteDB() IFabricDo
	Clauses(conds ...clause.Expression) IFabricDo
	Not(conds ...gen.Condition) IFabricDo
	Or(conds ...gen.Condition) IFabricDo
	Select(conds ...field.Expr) IFabricDo
	Where(conds ...gen.Condition) IFabricDo
	Order(conds ...field.Expr) IFabricDo
	Limit(limit int) IFabricDo
	Offset(offset int) IFabricDo
	Unscoped() IFabricDo
	Count() (count int64, err error)
	Create(values ...*model.Fabric) error
	Save(values ...*model.Fabric) error
	First() (*model.Fabric, error)
	Take() (*model.Fabric, error)
	Last() (*model.Fabric, error)
	Find() ([]*model.Fabric, error)
	Delete(...*model.Fabric) (info gen.ResultInfo, err error)
	Update(column field.Expr, value interface{}) (info gen.ResultInfo, err error)
	UpdateSimple(columns ...field.AssignExpr) (info gen.ResultInfo, err error)
	Updates(value interface{}) (info gen.ResultInfo, err error)
	UnderlyingDB() *gorm.DB
	schema.Tabler
}

func (f fabricDo) Debug() IFabricDo {
	return f.withDO(f.DO.Debug())
}

func (f fabricDo) WithContext(ctx context.Context) IFabricDo {
	return f.withDO(f.DO.WithContext(ctx))
}

func (f fabricDo) ReadDB() IFabricDo {
	return f.Clauses(dbresolver.Read)
}

func (f fabricDo) WriteDB() IFabricDo {
	return f.Clauses(dbresolver.Write)
}

func (f fabricDo) Clauses(conds ...clause.Expression) IFabricDo {
	return f.withDO(f.DO.Clauses(conds...))
}

func (f fabricDo) Not(conds ...gen.Condition) IFabricDo {
	return f.withDO(f.DO.Not(conds...))
}

func (f fabricDo) Or(conds ...gen.Condition) IFabricDo {
	return f.withDO(f.DO.Or(conds...))
}

func (f fabricDo) Select(conds ...field.Expr) IFabricDo {
	return f.withDO(f.DO.Select(conds...))
}

func (f fabricDo) Where(conds ...gen.Condition) IFabricDo {
	return f.withDO(f.DO.Where(conds...))
}

func (f fabricDo) Order(conds ...field.Expr) IFabricDo {
	return f.withDO(f.DO.Order(conds...))
}

func (f fabricDo) Limit(limit int) IFabricDo {
	return f.withDO(f.DO.Limit(limit))
}

func (f fabricDo) Offset(offset int) IFabricDo {
	return f.withDO(f.DO.Offset(offset))
}

func (f fabricDo) Unscoped() IFabricDo {
	return f.withDO(f.DO.Unscoped())
}

func (f fabricDo) Create(values ...*model.Fabric) error {
	if len(values) == 0 {
		return nil
	}
	return f.DO.Create(values)
}

// Save : !!! underlying implementation is different with GORM
// The method is equivalent to executing the statement: db.Clauses(clause.OnConflict{UpdateAll: true}).Create(values)
func (f fabricDo) Save(values ...*model.Fabric) error {
	if len(values) == 0 {
		return nil
	}
	return f.DO.Save(values)
}

// First retrieve first record
func (f fabricDo) First() (*model.Fabric, error) {
	if result, err := f.DO.First(); err != nil {
		return nil, err
	} else {
		return result.(*model.Fabric), nil
	}
}

// Take retrieve any record
func (f fabricDo) Take() (*model.Fabric, error) {
	if result, err := f.DO.Take(); err != nil {
		return nil, err
	} else {
		return result.(*model.Fabric), nil
	}
}

// Last retrieve last record
func (f fabricDo) Last() (*model.Fabric, error) {
	if result, err := f.DO.Last(); err != nil {
		return nil, err
	} else {
		return result.(*model.Fabric), nil
	}
}

func (f fabricDo) Find() ([]*model.Fabric, error) {
	result, err := f.DO.Find()
	return result.([]*model.Fabric), err
}

func (f fabricDo) Delete(models ...*model.Fabric) (result gen.ResultInfo, err error) {
	return f.DO.Delete(models)
}

func (f *fabricDo) withDO(do gen.Dao) *fabricDo {
	f.DO = *do.(*gen.DO)
	return f
}
