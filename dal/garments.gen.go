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

func newGarment(db *gorm.DB, opts ...gen.DOOption) garment {
	_garment := garment{}

	_garment.garmentDo.UseDB(db, opts...)
	_garment.garmentDo.UseModel(&model.Garment{})

	tableName := _garment.garmentDo.TableName()
	_garment.ALL = field.NewAsterisk(tableName)
	_garment.ID = field.NewString(tableName, "id")
	_garment.Name = field.NewString(tableName, "name")
	_garment.Category = field.NewString(tableName, "category")
	_garment.BasePrice = field.NewField(tableName, "base_price")
	_garment.Description = field.NewString(tableName, "description")
	_garment.ImageURL = field.NewString(tableName, "image_url")
	_garment.CustomizationOptions = field.NewField(tableName, "customization_options")
	_garment.CreatedAt = field.NewTime(tableName, "created_at")
	_garment.UpdatedAt = field.NewTime(tableName, "updated_at")

	_garment.fillFieldMap()

	return _garment
}

type garment struct {
	garmentDo

	ALL                  field.Asterisk
	ID                   field.String
	Name                 field.String
	Category             field.String
	BasePrice            field.Field
	Description          field.String
	ImageURL             field.String
	CustomizationOptions field.Field
	CreatedAt            field.Time
	UpdatedAt            field.Time

	fieldMap map[string]field.Expr
}

func (g garment) Table(newTableName string) *garment {
	g.garmentDo.UseTable(newTableName)
	return g.updateTableName(newTableName)
}

func (g garment) As(alias string) *garment {
	g.garmentDo.DO = *(g.garmentDo.As(alias).(*gen.DO))
	return g.updateTableName(alias)
}

func (g *garment) updateTableName(table string) *garment {
	g.ALL = field.NewAsterisk(table)
	g.ID = field.NewString(table, "id")
	g.Name = field.NewString(table, "name")
	g.Category = field.NewString(table, "category")
	g.BasePrice = field.NewField(table, "base_price")
	g.Description = field.NewString(table, "description")
	g.ImageURL = field.NewString(table, "image_url")
	g.CustomizationOptions = field.NewField(table, "customization_options")
	g.CreatedAt = field.NewTime(table, "created_at")
	g.UpdatedAt = field.NewTime(table, "updated_at")

	g.fillFieldMap()

	return g
}

func (g *garment) GetFieldByName(fieldName string) (field.OrderExpr, bool) {
	_f, ok := g.fieldMap[fieldName]
	if !ok || _f == nil {
		return nil, false
	}
	_oe, ok := _f.(field.OrderExpr)
	return _oe, ok
}

func (g *garment) fillFieldMap() {
	g.fieldMap = make(map[string]field.Expr, 9)
	g.fieldMap["id"] = g.ID
	g.fieldMap["name"] = g.Name
	g.fieldMap["category"] = g.Category
	g.fieldMap["base_price"] = g.BasePrice
	g.fieldMap["description"] = g.Description
	g.fieldMap["image_url"] = g.ImageURL
	g.fieldMap["customization_options"] = g.CustomizationOptions
	g.fieldMap["created_at"] = g.CreatedAt
	g.fieldMap["updated_at"] = g.UpdatedAt
}

func (g garment) clone(db *gorm.DB) garment {
	g.garmentDo.ReplaceConnPool(db.Statement.ConnPool)
	return g
}

func (g garment) replaceDB(db *gorm.DB) garment {
	g.garmentDo.ReplaceDB(db)
	return g
}

type garmentDo struct{ gen.DO }

type IGarmentDo interface {
	Debug() IGarmentDo
	WithContext(ctx context.Context) IGarmentDo
	ReadDB() IGarmentDo
	WriteDB() IGarmentDo
	Clauses(conds ...clause.Expression) IGarmentDo
	Not(conds ...gen.Condition) IGarmentDo
	Or(conds ...gen.Condition) IGarmentDo
	Select(conds ...field.Expr) IGarmentDo
	Where(conds ...gen.Condition) IGarmentDo
	Order(conds ...field.Expr) IGarmentDo
	Limit(limit int) IGarmentDo
	Offset(offset int) IGarmentDo
	Unscoped() IGarmentDo
	Count() (count int64, err error)
	Create(values ...*model.Garment) error
	Save(values ...*model.Garment) error
	First() (*model.Garment, error)
	Take() (*model.Garment, error)
	Last() (*model.Garment, error)
	Find() ([]*model.Garment, error)
	Delete(...*model.Garment) (info gen.ResultInfo, err error)
	Update(column field.Expr, value interface{}) (info gen.ResultInfo, err error)
	UpdateSimple(columns ...field.AssignExpr) (info gen.ResultInfo, err error)
	Updates(value interface{}) (info gen.ResultInfo, err error)
	UnderlyingDB() *gorm.DB
	schema.Tabler
}

func (g garmentDo) Debug() IGarmentDo {
	return g.withDO(g.DO.Debug())
}

func (g garmentDo) WithContext(ctx context.Context) IGarmentDo {
	return g.withDO(g.DO.WithContext(ctx))
}

func (g garmentDo) ReadDB() IGarmentDo {
	return g.Clauses(dbresolver.Read)
}

func (g garmentDo) WriteDB() IGarmentDo {
	return g.Clauses(dbresolver.Write)
}

func (g garmentDo) Clauses(conds ...clause.Expression) IGarmentDo {
	return g.withDO(g.DO.Clauses(conds...))
}

func (g garmentDo) Not(conds ...gen.Condition) IGarmentDo {
	return g.withDO(g.DO.Not(conds...))
}

func (g garmentDo) Or(conds ...gen.Condition) IGarmentDo {
	return g.withDO(g.DO.Or(conds...))
}

func (g garmentDo) Select(conds ...field.Expr) IGarmentDo {
	return g.withDO(g.DO.Select(conds...))
}

func (g garmentDo) Where(conds ...gen.Condition) IGarmentDo {
	return g.withDO(g.DO.Where(conds...))
}

func (g garmentDo) Order(conds ...field.Expr) IGarmentDo {
	return g.withDO(g.DO.Order(conds...))
}

func (g garmentDo) Limit(limit int) IGarmentDo {
	return g.withDO(g.DO.Limit(limit))
}

func (g garmentDo) Offset(offset int) IGarmentDo {
	return g.withDO(g.DO.Offset(offset))
}

func (g garmentDo) Unscoped() IGarmentDo {
	return g.withDO(g.DO.Unscoped())
}

func (g garmentDo) Create(values ...*model.Garment) error {
	if len(values) == 0 {
		return nil
	}
	return g.DO.Create(values)
}

// Save : !!! underlying implementation is different with GORM
// The method is equivalent to executing the statement: db.Clauses(clause.OnConflict{UpdateAll: true}).Create(values)
func (g garmentDo) Save(values ...*model.Garment) error {
	if len(values) == 0 {
		return nil
	}
	return g.DO.Save(values)
}

// First retrieve first record
func (g garmentDo) First() (*model.Garment, error) {
	if result, err := g.DO.First(); err != nil {
		return nil, err
	} else {
		return result.(*model.Garment), nil
	}
}

// Take retrieve any record
func (g garmentDo) Take() (*model.Garment, error) {
	if result, err := g.DO.Take(); err != nil {
		return nil, err
	} else {
		return result.(*model.Garment), nil
	}
}

// Last retrieve last record
func (g garmentDo) Last() (*model.Garment, error) {
	if result, err := g.DO.Last(); err != nil {
		return nil, err
	} else {
		return result.(*model.Garment), nil
	}
}

func (g garmentDo) Find() ([]*model.Garment, error) {
	result, err := g.DO.Find()
	return result.([]*model.Garment), err
}

func (g garmentDo) Delete(models ...*model.Garment) (result gen.ResultInfo, err error) {
	return g.DO.Delete(models)
}

func (g *garmentDo) withDO(do gen.Dao) *garmentDo {
	g.DO = *do.(*gen.DO)
	return g
}
