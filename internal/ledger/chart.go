package ledger

import "github.com/cleared-dev/fincore/internal/model"

// DefaultChart returns the default chart of accounts for a small business.
func DefaultChart() []model.Account {
	return []model.Account{
		{ID: 1010, Name: "Business Checking", Type: model.AccountTypeAsset, Description: "Primary checking account"},
		{ID: 1020, Name: "Business Savings", Type: model.AccountTypeAsset, Description: "Savings account"},
		{ID: 1100, Name: "Accounts Receivable", Type: model.AccountTypeAsset, Description: "Amounts owed by customers"},
		{ID: 1200, Name: "Inventory", Type: model.AccountTypeAsset, Description: "Goods held for sale"},
		{ID: 1300, Name: "Prepaid Expenses", Type: model.AccountTypeAsset, Description: "Payments made in advance"},
		{ID: 1500, Name: "Equipment", Type: model.AccountTypeAsset, Description: "Machinery and equipment at cost"},
		{ID: 1510, Name: "Accumulated Depreciation", Type: model.AccountTypeAsset, Description: "Contra-asset for equipment depreciation"},
		{ID: 2010, Name: "Accounts Payable", Type: model.AccountTypeLiability, Description: "Amounts owed to vendors"},
		{ID: 2020, Name: "Credit Card", Type: model.AccountTypeLiability, Description: "Business credit card"},
		{ID: 2100, Name: "Accrued Liabilities", Type: model.AccountTypeLiability, Description: "Expenses incurred but not yet billed"},
		{ID: 2500, Name: "Loan Payable", Type: model.AccountTypeLiability, Description: "Outstanding loan principal"},
		{ID: 3010, Name: "Owner's Equity", Type: model.AccountTypeEquity, Description: "Owner contributions and draws"},
		{ID: 4010, Name: "Service Revenue", Type: model.AccountTypeRevenue},
		{ID: 4020, Name: "Product Revenue", Type: model.AccountTypeRevenue},
		{ID: 5010, Name: "Advertising & Marketing", Type: model.AccountTypeExpense, Description: "Advertising costs"},
		{ID: 5020, Name: "Software & SaaS", Type: model.AccountTypeExpense, Description: "Software subscriptions"},
		{ID: 5030, Name: "Office Supplies", Type: model.AccountTypeExpense, Description: "Office supplies and expenses"},
		{ID: 5040, Name: "Professional Services", Type: model.AccountTypeExpense, Description: "Legal, accounting, consulting"},
		{ID: 5050, Name: "Payroll", Type: model.AccountTypeExpense, Description: "Wages and contractor payments"},
		{ID: 5060, Name: "Rent", Type: model.AccountTypeExpense, Description: "Office and facility rent"},
		{ID: 5900, Name: "Depreciation Expense", Type: model.AccountTypeExpense, Description: "Non-cash depreciation charge"},
		{ID: 5950, Name: "Interest Expense", Type: model.AccountTypeExpense, Description: "Loan interest"},
	}
}
