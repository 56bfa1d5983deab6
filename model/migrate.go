package model

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Constraint names surfaced to callers when a write is rejected.
const (
	ConstraintOrderStatus       = "orders_status_check"
	ConstraintTrackingCodeFmt   = "orders_tracking_code_format"
	ConstraintTrackingCodeKey   = "orders_tracking_code_key"
	ConstraintOrderCustomerFKey = "orders_customer_id_fkey"
	ConstraintOrderFabricFKey   = "orders_fabric_id_fkey"
	ConstraintOrderGarmentFKey  = "orders_garment_id_fkey"
)

// OrderStatuses is the closed status set stored in orders.status, in pipeline order.
var OrderStatuses = []string{
	"confirmed",
	"fabric_ready",
	"cutting",
	"stitching",
	"embroidery",
	"quality_check",
	"ready",
	"completed",
}

// constraintSQL is applied after AutoMigrate. Each constraint is dropped first so
// the migration can be rerun against an existing schema.
func constraintSQL() []string {
	quoted := make([]string, len(OrderStatuses))
	for i, s := range OrderStatuses {
		quoted[i] = "'" + s + "'"
	}
	return []string{
		"ALTER TABLE orders DROP CONSTRAINT IF EXISTS " + ConstraintOrderStatus,
		fmt.Sprintf("ALTER TABLE orders ADD CONSTRAINT %s CHECK (status IN (%s))",
			ConstraintOrderStatus, strings.Join(quoted, ", ")),

		"ALTER TABLE orders DROP CONSTRAINT IF EXISTS " + ConstraintTrackingCodeFmt,
		fmt.Sprintf("ALTER TABLE orders ADD CONSTRAINT %s CHECK (tracking_code ~ '^RT[0-9]{10}$')",
			ConstraintTrackingCodeFmt),

		"ALTER TABLE orders DROP CONSTRAINT IF EXISTS " + ConstraintOrderCustomerFKey,
		fmt.Sprintf("ALTER TABLE orders ADD CONSTRAINT %s FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE",
			ConstraintOrderCustomerFKey),

		// Catalog rows stay deletable while orders reference them.
		"ALTER TABLE orders DROP CONSTRAINT IF EXISTS " + ConstraintOrderFabricFKey,
		fmt.Sprintf("ALTER TABLE orders ADD CONSTRAINT %s FOREIGN KEY (fabric_id) REFERENCES fabrics(id) ON DELETE SET NULL",
			ConstraintOrderFabricFKey),
		"ALTER TABLE orders DROP CONSTRAINT IF EXISTS " + ConstraintOrderGarmentFKey,
		fmt.Sprintf("ALTER TABLE orders ADD CONSTRAINT %s FOREIGN KEY (garment_id) REFERENCES garments(id) ON DELETE SET NULL",
			ConstraintOrderGarmentFKey),
	}
}

// Migrate creates or updates the shop tables and their constraints.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(ALL_SHOP_TABLES...); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	for _, stmt := range constraintSQL() {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to apply %q: %w", stmt, err)
		}
	}
	return nil
}
