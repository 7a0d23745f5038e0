package models

import "github.com/shopspring/decimal"

func init() {
	// API clients read money and quantities as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Route{},
		&Product{},
		&Car{},
		&ExpenseType{},
		&RouteProductPricing{},
		&Expense{},
		&Entry{},
	}
}
