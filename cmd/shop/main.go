package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/romana/rlog"
	"tailor_shop/custom/customer"
	"tailor_shop/custom/derive"
	"tailor_shop/custom/fabric"
	"tailor_shop/custom/garment"
	"tailor_shop/custom/order"
	"tailor_shop/custom/policy"
	"tailor_shop/custom/util"
	"tailor_shop/dal"
	"tailor_shop/model"
)

func main() {
	serverConfig := util.ServerConfig{}
	serverConfig.GetConf("./config/config.yaml")
	if serverConfig.JwtSecret == "" {
		log.Fatal("jwt_secret is not configured, set it in config.yaml or SHOP_JWT_SECRET")
	}

	db, err := util.OpenDB(&serverConfig)
	if err != nil {
		panic(err.Error())
	}

	// Auto migrate table schemas and constraints
	if err = model.Migrate(db); err != nil {
		panic(err.Error())
	}

	// Initialize handler contexts
	dal.SetDefault(db)
	stamper := derive.NewStamper(nil)
	customerCtx := customer.HandlerContext{}
	customerCtx.InitialHandlerContext(dal.Q, policy.Default, stamper)
	fabricCtx := fabric.HandlerContext{}
	fabricCtx.InitialHandlerContext(dal.Q, policy.Default, stamper)
	garmentCtx := garment.HandlerContext{}
	garmentCtx.InitialHandlerContext(dal.Q, policy.Default, stamper)
	orderCtx := order.HandlerContext{}
	orderCtx.InitialHandlerContext(dal.Q, policy.Default, stamper, derive.NewTrackingIssuer(nil), serverConfig.EnforceForwardStatus)

	// Start REST APIs
	handle := func(pattern string, handler http.HandlerFunc) {
		http.HandleFunc(pattern, policy.Authenticate(serverConfig.JwtSecret, handler))
	}

	handle("/shop/create_customer", customerCtx.CreateCustomers)
	handle("/shop/query_customer", customerCtx.QueryCustomer)
	handle("/shop/list_customers", customerCtx.ListCustomers)
	handle("/shop/update_customer", customerCtx.UpdateCustomer)
	handle("/shop/delete_customer", customerCtx.DeleteCustomer)

	handle("/shop/create_fabric", fabricCtx.CreateFabrics)
	handle("/shop/query_fabric", fabricCtx.QueryFabric)
	handle("/shop/list_fabrics", fabricCtx.ListFabrics)
	handle("/shop/update_fabric", fabricCtx.UpdateFabric)
	handle("/shop/toggle_fabric_featured", fabricCtx.ToggleFabricFeatured)
	handle("/shop/adjust_fabric_stock", fabricCtx.AdjustFabricStock)
	handle("/shop/delete_fabric", fabricCtx.DeleteFabric)

	handle("/shop/create_garment", garmentCtx.CreateGarments)
	handle("/shop/query_garment", garmentCtx.QueryGarment)
	handle("/shop/list_garments", garmentCtx.ListGarments)
	handle("/shop/update_garment", garmentCtx.UpdateGarment)
	handle("/shop/delete_garment", garmentCtx.DeleteGarment)

	handle("/shop/create_order", orderCtx.CreateOrder)
	handle("/shop/query_order", orderCtx.QueryOrder)
	handle("/shop/track_order", orderCtx.TrackOrder)
	handle("/shop/list_orders", orderCtx.ListOrders)
	handle("/shop/update_order_status", orderCtx.UpdateOrderStatus)
	handle("/shop/advance_order", orderCtx.AdvanceOrder)
	handle("/shop/update_order", orderCtx.UpdateOrder)
	handle("/shop/delete_order", orderCtx.DeleteOrder)

	rlog.Infof("Shop service listening on port %d", serverConfig.ShopPort)
	log.Fatal(http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", serverConfig.ShopPort), nil))
}
