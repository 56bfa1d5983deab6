package main

import (
	"gorm.io/driver/postgres"

	"gorm.io/gen"
	"gorm.io/gorm"
	"tailor_shop/model"
)

func main() {
	g := gen.NewGenerator(gen.Config{
		OutPath: "./dal",
		Mode:    gen.WithoutContext | gen.WithDefaultQuery | gen.WithQueryInterface, // generate mode
	})

	dsn := "host=localhost user=postgres password=password dbname=tailor_shop sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	g.UseDB(db) // reuse your gorm db

	// Typed DAO for every shop table
	g.ApplyBasic(model.ALL_SHOP_TABLES...)

	g.Execute()
}
