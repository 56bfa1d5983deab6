package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var ALL_SHOP_TABLES []interface{} = []interface{}{
	Customer{}, Fabric{}, Garment{}, Order{},
}

// Timestamps are owned by the derive package, so gorm's own auto time tracking is off.
type Customer struct {
	ID           string            `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string            `json:"name" gorm:"not null"`
	Phone        *string           `json:"phone,omitempty"`
	Email        *string           `json:"email,omitempty" gorm:"index"`
	Measurements datatypes.JSONMap `json:"measurements,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time         `json:"created_at" gorm:"autoCreateTime:false;index"`
	UpdatedAt    time.Time         `json:"updated_at" gorm:"autoUpdateTime:false"`
}

func (c *Customer) OwnerID() string {
	return c.ID
}

type Fabric struct {
	ID            string          `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string          `json:"name" gorm:"not null"`
	Material      string          `json:"material" gorm:"not null"`
	PricePerMeter decimal.Decimal `json:"price_per_meter" gorm:"type:decimal(10,2);not null"`
	Color         *string         `json:"color,omitempty"`
	Stock         int             `json:"stock" gorm:"not null"`
	Images        pq.StringArray  `json:"images,omitempty" gorm:"type:text[]"`
	Featured      bool            `json:"featured" gorm:"not null;index"`
	Description   *string         `json:"description,omitempty" gorm:"type:text"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime:false;index"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"autoUpdateTime:false"`
}

// CustomizationOptions maps an option name (collar, cuff, ...) to its ordered choices.
type CustomizationOptions map[string][]string

type Garment struct {
	ID                   string                                    `json:"id" gorm:"type:uuid;primaryKey"`
	Name                 string                                    `json:"name" gorm:"not null"`
	Category             string                                    `json:"category" gorm:"not null;index"`
	BasePrice            decimal.Decimal                           `json:"base_price" gorm:"type:decimal(10,2);not null"`
	Description          *string                                   `json:"description,omitempty" gorm:"type:text"`
	ImageURL             *string                                   `json:"image_url,omitempty"`
	CustomizationOptions datatypes.JSONType[CustomizationOptions] `json:"customization_options" gorm:"type:jsonb"`
	CreatedAt            time.Time                                 `json:"created_at" gorm:"autoCreateTime:false;index"`
	UpdatedAt            time.Time                                 `json:"updated_at" gorm:"autoUpdateTime:false"`
}

// Order keeps its own price, customization and measurement snapshot, so it stays
// meaningful after the referenced fabric or garment row is deleted.
type Order struct {
	ID                  string            `json:"id" gorm:"type:uuid;primaryKey"`
	TrackingCode        string            `json:"tracking_code" gorm:"size:12;not null;uniqueIndex:orders_tracking_code_key"`
	CustomerID          string            `json:"customer_id" gorm:"type:uuid;not null;index"`
	FabricID            *string           `json:"fabric_id,omitempty" gorm:"type:uuid;index"`
	GarmentID           *string           `json:"garment_id,omitempty" gorm:"type:uuid;index"`
	Customizations      datatypes.JSONMap `json:"customizations,omitempty" gorm:"type:jsonb"`
	Measurements        datatypes.JSONMap `json:"measurements,omitempty" gorm:"type:jsonb"`
	TotalPrice          decimal.Decimal   `json:"total_price" gorm:"type:decimal(10,2);not null"`
	Status              string            `json:"status" gorm:"size:20;not null;index"`
	IsUrgent            bool              `json:"is_urgent" gorm:"not null"`
	SpecialInstructions *string           `json:"special_instructions,omitempty" gorm:"type:text"`
	EstimatedCompletion *time.Time        `json:"estimated_completion,omitempty"`
	CreatedAt           time.Time         `json:"created_at" gorm:"autoCreateTime:false;index"`
	UpdatedAt           time.Time         `json:"updated_at" gorm:"autoUpdateTime:false"`
}

func (o *Order) OwnerID() string {
	return o.CustomerID
}
