// Package dal is the typed query layer over model, laid out the way cmd/gen
// writes it. Running cmd/gen replaces these files with the full generated set.
package dal

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"gorm.io/gen"

	"gorm.io/plugin/dbresolver"
)

var (
	Q        = new(Query)
	Customer *customer
	Fabric   *fabric
	Garment  *garment
	Order    *order
)

func SetDefault(db *gorm.DB, opts ...gen.DOOption) {
	*Q = *Use(db, opts...)
	Customer = &Q.Customer
	Fabric = &Q.Fabric
	Garment = &Q.Garment
	Order = &Q.Order
}

func Use(db *gorm.DB, opts ...gen.DOOption) *Query {
	return &Query{
		db:       db,
		Customer: newCustomer(db, opts...),
		Fabric:   newFabric(db, opts...),
		Garment:  newGarment(db, opts...),
		Order:    newOrder(db, opts...),
	}
}

type Query struct {
	db *gorm.DB

	Customer customer
	Fabric   fabric
	Garment  garment
	Order    order
}

func (q *Query) Available() bool { return q.db != nil }

func (q *Query) clone(db *gorm.DB) *Query {
	return &Query{
		db:       db,
		Customer: q.Customer.clone(db),
		Fabric:   q.Fabric.clone(db),
		Garment:  q.Garment.clone(db),
		Order:    q.Order.clone(db),
	}
}

func (q *Query) ReadDB() *Query {
	return q.ReplaceDB(q.db.Clauses(dbresolver.Read))
}

func (q *Query) WriteDB() *Query {
	return q.ReplaceDB(q.db.Clauses(dbresolver.Write))
}

func (q *Query) ReplaceDB(db *gorm.DB) *Query {
	return &Query{
		db:       db,
		Customer: q.Customer.replaceDB(db),
		Fabric:   q.Fabric.replaceDB(db),
		Garment:  q.Garment.replaceDB(db),
		Order:    q.Order.replaceDB(db),
	}
}

type queryCtx struct {
	Customer ICustomerDo
	Fabric   IFabricDo
	Garment  IGarmentDo
	Order    IOrderDo
}

func (q *Query) WithContext(ctx context.Context) *queryCtx {
	return &queryCtx{
		Customer: q.Customer.WithContext(ctx),
		Fabric:   q.Fabric.WithContext(ctx),
		Garment:  q.Garment.WithContext(ctx),
		Order:    q.Order.WithContext(ctx),
	}
}

func (q *Query) Transaction(fc func(tx *Query) error, opts ...*sql.TxOptions) error {
	return q.db.Transaction(func(tx *gorm.DB) error { return fc(q.clone(tx)) }, opts...)
}

func (q *Query) Begin(opts ...*sql.TxOptions) *QueryTx {
	tx := q.db.Begin(opts...)
	return &QueryTx{Query: q.clone(tx), Error: tx.Error}
}

type QueryTx struct {
	*Query
	Error error
}

func (q *QueryTx) Commit() error {
	return q.db.Commit().Error
}

func (q *QueryTx) Rollback() error {
	return q.db.Rollback().Error
}

func (q *QueryTx) SavePoint(name string) error {
	return q.db.SavePoint(name).Error
}

func (q *QueryTx) RollbackTo(name string) error {
	return q.db.RollbackTo(name).Error
}
