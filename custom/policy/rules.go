package policy

type Table string

const (
	Customers Table = "customers"
	Fabrics   Table = "fabrics"
	Garments  Table = "garments"
	Orders    Table = "orders"
)

type Operation string

const (
	Select Operation = "select"
	Insert Operation = "insert"
	Update Operation = "update"
	Delete Operation = "delete"
	// All matches every operation.
	All Operation = "all"
)

func Always(Request) bool {
	return true
}

func CallerIsAdmin(req Request) bool {
	return req.Caller.Role == AdminRole
}

func CallerOwnsRow(req Request) bool {
	return req.Row != nil && req.Caller.ID != "" && req.Row.OwnerID() == req.Caller.ID
}

var (
	anyone        = []Class{Anonymous, Authenticated}
	authenticated = []Class{Authenticated}
	admins        = []Class{Administrator}
)

// ShopRules is the row security of the shop tables.
//
// "Anyone can view orders" makes "Customers can view own orders" redundant:
// order tracking by code is public. Both are kept so the table reads like the
// policies it mirrors.
var ShopRules = []Rule{
	{Name: "Anyone can create customer profile", Table: Customers, Operation: Insert, Classes: anyone, Predicate: Always},
	{Name: "Customers can view own data", Table: Customers, Operation: Select, Classes: authenticated, Predicate: CallerOwnsRow},
	{Name: "Admins can manage customers", Table: Customers, Operation: All, Classes: admins, Predicate: CallerIsAdmin},

	{Name: "Anyone can view fabrics", Table: Fabrics, Operation: Select, Classes: anyone, Predicate: Always},
	{Name: "Admins can manage fabrics", Table: Fabrics, Operation: All, Classes: admins, Predicate: CallerIsAdmin},

	{Name: "Anyone can view garments", Table: Garments, Operation: Select, Classes: anyone, Predicate: Always},
	{Name: "Admins can manage garments", Table: Garments, Operation: All, Classes: admins, Predicate: CallerIsAdmin},

	{Name: "Anyone can view orders", Table: Orders, Operation: Select, Classes: anyone, Predicate: Always},
	{Name: "Anyone can create orders", Table: Orders, Operation: Insert, Classes: anyone, Predicate: Always},
	{Name: "Customers can view own orders", Table: Orders, Operation: Select, Classes: authenticated, Predicate: CallerOwnsRow},
	{Name: "Admins can manage orders", Table: Orders, Operation: All, Classes: admins, Predicate: CallerIsAdmin},
}
