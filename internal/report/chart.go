package report

// AccountType is the broad classification of a ledger account.
type AccountType string

const (
	AccountAsset     AccountType = "Asset"
	AccountLiability AccountType = "Liability"
	AccountEquity    AccountType = "Equity"
	AccountRevenue   AccountType = "Revenue"
	AccountExpense   AccountType = "Expense"
)

// BalanceSide is the side on which an account's balance normally grows.
type BalanceSide string

const (
	SideDebit  BalanceSide = "Debit"
	SideCredit BalanceSide = "Credit"
)

// Account is one entry of the chart of accounts.
type Account struct {
	Code          string      `json:"code"`
	Name          string      `json:"name"`
	Type          AccountType `json:"type"`
	NormalBalance BalanceSide `json:"normalBalance"`
}

// Well-known account codes referenced by the posting rules.
const (
	AcctCash           = "1000"
	AcctReceivable     = "1100"
	AcctInventory      = "1200"
	AcctEquipment      = "1500"
	AcctSoftware       = "1700"
	AcctPayable        = "2000"
	AcctTaxesPayable   = "2200"
	AcctLoansPayable   = "2500"
	AcctOwnersEquity   = "3000"
	AcctRetained       = "3100"
	AcctSalesRevenue   = "4000"
	AcctServiceRevenue = "4100"
	AcctOtherRevenue   = "4200"
	AcctCOGS           = "5000"
	AcctSalaries       = "5100"
	AcctRent           = "5200"
	AcctUtilities      = "5300"
	AcctMarketing      = "5400"
	AcctProfessional   = "5500"
	AcctTravel         = "5600"
	AcctOfficeSupplies = "5700"
	AcctInsurance      = "5800"
	AcctMiscExpense    = "5900"
)

// ChartOfAccounts is the fixed 23-account chart every posting run uses.
// Downstream consumers key off these codes, so the table must not change
// between runs.
var ChartOfAccounts = map[string]Account{
	AcctCash:           {AcctCash, "Cash", AccountAsset, SideDebit},
	AcctReceivable:     {AcctReceivable, "Accounts Receivable", AccountAsset, SideDebit},
	AcctInventory:      {AcctInventory, "Inventory", AccountAsset, SideDebit},
	AcctEquipment:      {AcctEquipment, "Equipment", AccountAsset, SideDebit},
	AcctSoftware:       {AcctSoftware, "Software & Licenses", AccountAsset, SideDebit},
	AcctPayable:        {AcctPayable, "Accounts Payable", AccountLiability, SideCredit},
	AcctTaxesPayable:   {AcctTaxesPayable, "Taxes Payable", AccountLiability, SideCredit},
	AcctLoansPayable:   {AcctLoansPayable, "Loans Payable", AccountLiability, SideCredit},
	AcctOwnersEquity:   {AcctOwnersEquity, "Owner's Equity", AccountEquity, SideCredit},
	AcctRetained:       {AcctRetained, "Retained Earnings", AccountEquity, SideCredit},
	AcctSalesRevenue:   {AcctSalesRevenue, "Sales Revenue", AccountRevenue, SideCredit},
	AcctServiceRevenue: {AcctServiceRevenue, "Service Revenue", AccountRevenue, SideCredit},
	AcctOtherRevenue:   {AcctOtherRevenue, "Other Revenue", AccountRevenue, SideCredit},
	AcctCOGS:           {AcctCOGS, "Cost of Goods Sold", AccountExpense, SideDebit},
	AcctSalaries:       {AcctSalaries, "Salaries & Wages", AccountExpense, SideDebit},
	AcctRent:           {AcctRent, "Rent Expense", AccountExpense, SideDebit},
	AcctUtilities:      {AcctUtilities, "Utilities Expense", AccountExpense, SideDebit},
	AcctMarketing:      {AcctMarketing, "Marketing Expense", AccountExpense, SideDebit},
	AcctProfessional:   {AcctProfessional, "Professional Services", AccountExpense, SideDebit},
	AcctTravel:         {AcctTravel, "Travel Expense", AccountExpense, SideDebit},
	AcctOfficeSupplies: {AcctOfficeSupplies, "Office Supplies", AccountExpense, SideDebit},
	AcctInsurance:      {AcctInsurance, "Insurance Expense", AccountExpense, SideDebit},
	AcctMiscExpense:    {AcctMiscExpense, "Miscellaneous Expense", AccountExpense, SideDebit},
}

// expenseAccounts maps a transaction category to the account debited for
// an expense. Equipment and Software capitalize to asset accounts; any
// unknown category falls through to miscellaneous expense.
var expenseAccounts = map[string]string{
	"Office":       AcctOfficeSupplies,
	"Rent":         AcctRent,
	"Utilities":    AcctUtilities,
	"Marketing":    AcctMarketing,
	"Professional": AcctProfessional,
	"Travel":       AcctTravel,
	"Insurance":    AcctInsurance,
	"Equipment":    AcctEquipment,
	"Software":     AcctSoftware,
}
