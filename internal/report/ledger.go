package report

import (
	"fmt"
	"math"
	"strings"
)

// Posting is one side of a double-entry pair.
type Posting struct {
	AccountCode string  `json:"accountCode"`
	AccountName string  `json:"accountName"`
	Amount      float64 `json:"amount"`
}

// LedgerEntry records one transaction as a balanced debit/credit pair.
type LedgerEntry struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Debit       Posting `json:"debit"`
	Credit      Posting `json:"credit"`
	Amount      float64 `json:"amount"`
}

// AccountBalance is the derived balance of one chart account after a
// posting run. Balance is debit-total minus credit-total for debit-normal
// accounts and the reverse for credit-normal accounts.
type AccountBalance struct {
	Account     Account `json:"account"`
	DebitTotal  float64 `json:"debitTotal"`
	CreditTotal float64 `json:"creditTotal"`
	Balance     float64 `json:"balance"`
}

// GeneralLedgerLine is one movement on an account with the running
// balance after applying it, replayed in posting order.
type GeneralLedgerLine struct {
	Date           string  `json:"date"`
	Description    string  `json:"description"`
	Debit          float64 `json:"debit"`
	Credit         float64 `json:"credit"`
	RunningBalance float64 `json:"runningBalance"`
}

// TrialBalance is the ledger-wide debits-equal-credits check.
type TrialBalance struct {
	TotalDebits  float64 `json:"totalDebits"`
	TotalCredits float64 `json:"totalCredits"`
	BalanceCheck bool    `json:"balanceCheck"`
}

// LedgerResult is the output of the ledger module.
type LedgerResult struct {
	Entries       []LedgerEntry                  `json:"entries"`
	Balances      map[string]*AccountBalance     `json:"balances"`
	GeneralLedger map[string][]GeneralLedgerLine `json:"generalLedger"`
	TrialBalance  TrialBalance                   `json:"trialBalance"`
	Confidence    int                            `json:"confidence"`
	Alerts        []Alert                        `json:"alerts"`
	Highlights    []Highlight                    `json:"highlights"`
}

// revenueAccountFor picks the credited revenue account for an income
// transaction: service revenue on a keyword match, sales revenue for the
// explicit Income category, other revenue otherwise.
func revenueAccountFor(tx Transaction) string {
	if strings.Contains(strings.ToLower(tx.Description), "service") {
		return AcctServiceRevenue
	}
	if tx.Category == "Income" {
		return AcctSalesRevenue
	}
	return AcctOtherRevenue
}

// expenseAccountFor picks the debited account for an expense transaction
// from its category.
func expenseAccountFor(tx Transaction) string {
	if code, ok := expenseAccounts[tx.Category]; ok {
		return code
	}
	return AcctMiscExpense
}

// ProcessLedger posts every transaction as a balanced debit/credit pair
// against the fixed chart of accounts and derives account balances, the
// per-account general ledger and the trial balance.
//
// Income debits cash and credits a revenue account; expenses debit an
// expense (or capitalized asset) account and credit cash. Because every
// entry is balanced by construction, a failing trial balance indicates a
// bug rather than bad data; it is still surfaced as a high-severity alert.
func ProcessLedger(txs []Transaction) (*LedgerResult, error) {
	txs = skipZero("ledger", txs)

	result := &LedgerResult{
		Entries:       []LedgerEntry{},
		Balances:      make(map[string]*AccountBalance),
		GeneralLedger: make(map[string][]GeneralLedgerLine),
		Alerts:        []Alert{},
		Highlights:    []Highlight{},
	}

	balanceFor := func(code string) (*AccountBalance, error) {
		if ab, ok := result.Balances[code]; ok {
			return ab, nil
		}
		acct, ok := ChartOfAccounts[code]
		if !ok {
			return nil, fmt.Errorf("ledger processing failed: unknown account code %q", code)
		}
		ab := &AccountBalance{Account: acct}
		result.Balances[code] = ab
		return ab, nil
	}

	for _, tx := range txs {
		amount := math.Abs(tx.Amount)

		var debitCode, creditCode string
		if tx.Amount > 0 {
			debitCode = AcctCash
			creditCode = revenueAccountFor(tx)
		} else {
			debitCode = expenseAccountFor(tx)
			creditCode = AcctCash
		}

		debitAcct, err := balanceFor(debitCode)
		if err != nil {
			return nil, err
		}
		creditAcct, err := balanceFor(creditCode)
		if err != nil {
			return nil, err
		}

		entry := LedgerEntry{
			Date:        DayKey(tx.Date),
			Description: tx.Description,
			Debit:       Posting{AccountCode: debitCode, AccountName: debitAcct.Account.Name, Amount: amount},
			Credit:      Posting{AccountCode: creditCode, AccountName: creditAcct.Account.Name, Amount: amount},
			Amount:      amount,
		}
		result.Entries = append(result.Entries, entry)

		debitAcct.DebitTotal += amount
		creditAcct.CreditTotal += amount

		appendLedgerLine(result.GeneralLedger, debitAcct, entry, amount, 0)
		appendLedgerLine(result.GeneralLedger, creditAcct, entry, 0, amount)
	}

	for _, ab := range result.Balances {
		if ab.Account.NormalBalance == SideDebit {
			ab.Balance = ab.DebitTotal - ab.CreditTotal
		} else {
			ab.Balance = ab.CreditTotal - ab.DebitTotal
		}
		// Trial balance columns sum the raw posting totals, not the net
		// balances, so both columns carry every movement.
		result.TrialBalance.TotalDebits += ab.DebitTotal
		result.TrialBalance.TotalCredits += ab.CreditTotal
	}
	result.TrialBalance.BalanceCheck =
		math.Abs(result.TrialBalance.TotalDebits-result.TrialBalance.TotalCredits) < BalanceTolerance

	result.Confidence = dataConfidence(len(result.Entries))

	if !result.TrialBalance.BalanceCheck {
		result.Alerts = append(result.Alerts, Alert{
			Type:     "trial_balance_mismatch",
			Severity: SeverityHigh,
			Message: fmt.Sprintf("Trial balance out of balance: debits %.2f vs credits %.2f",
				result.TrialBalance.TotalDebits, result.TrialBalance.TotalCredits),
		})
	} else if len(result.Entries) > 0 {
		result.Highlights = append(result.Highlights, Highlight{
			Type:    "positive",
			Message: fmt.Sprintf("All %d ledger entries balanced; trial balance checks out", len(result.Entries)),
		})
	}

	return result, nil
}

// appendLedgerLine adds one side of an entry to an account's general
// ledger, computing the running balance according to the account's normal
// balance direction.
func appendLedgerLine(gl map[string][]GeneralLedgerLine, ab *AccountBalance, entry LedgerEntry, debit, credit float64) {
	code := ab.Account.Code
	var prev float64
	if lines := gl[code]; len(lines) > 0 {
		prev = lines[len(lines)-1].RunningBalance
	}
	var running float64
	if ab.Account.NormalBalance == SideDebit {
		running = prev + debit - credit
	} else {
		running = prev + credit - debit
	}
	gl[code] = append(gl[code], GeneralLedgerLine{
		Date:           entry.Date,
		Description:    entry.Description,
		Debit:          debit,
		Credit:         credit,
		RunningBalance: running,
	})
}
