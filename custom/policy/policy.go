package policy

import "tailor_shop/custom/util"

// Owned is a row whose owner identity a predicate can compare with the caller.
type Owned interface {
	OwnerID() string
}

type Request struct {
	Caller    Caller
	Table     Table
	Operation Operation
	// Row is the target row; nil when there is none yet (class level checks).
	Row Owned
}

type Predicate func(Request) bool

type Rule struct {
	Name      string
	Table     Table
	Operation Operation
	Classes   []Class
	Predicate Predicate
}

func (r Rule) appliesTo(caller Caller, table Table, op Operation) bool {
	if r.Table != table {
		return false
	}
	if r.Operation != All && r.Operation != op {
		return false
	}
	class := caller.Class()
	for _, c := range r.Classes {
		if class.satisfies(c) {
			return true
		}
	}
	return false
}

// Engine evaluates a rule table. A request is allowed iff at least one
// applicable rule's predicate holds.
type Engine struct {
	rules []Rule
}

func NewEngine(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

var Default = NewEngine(ShopRules)

func (e *Engine) Rules() []Rule {
	return e.rules
}

// Applicable returns the rules covering caller for the table and operation.
func (e *Engine) Applicable(caller Caller, table Table, op Operation) []Rule {
	var rules []Rule
	for _, r := range e.rules {
		if r.appliesTo(caller, table, op) {
			rules = append(rules, r)
		}
	}
	return rules
}

// Permits is the class level check done before touching the store: false means
// no rule could ever allow this caller the operation on the table.
func (e *Engine) Permits(caller Caller, table Table, op Operation) bool {
	for _, r := range e.rules {
		if r.appliesTo(caller, table, op) {
			return true
		}
	}
	return false
}

func (e *Engine) Allows(req Request) bool {
	for _, r := range e.rules {
		if r.appliesTo(req.Caller, req.Table, req.Operation) && r.Predicate(req) {
			return true
		}
	}
	return false
}

func (e *Engine) Authorize(req Request) error {
	if e.Allows(req) {
		return nil
	}
	return util.NewDeniedError()
}

// Visible reports whether caller may read row, the row level filter for
// collection reads.
func (e *Engine) Visible(caller Caller, table Table, row Owned) bool {
	return e.Allows(Request{Caller: caller, Table: table, Operation: Select, Row: row})
}
