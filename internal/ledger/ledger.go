// Package ledger runs the group ledger operations over a storage.Store:
// balances, integrity, simplification, settle-up, the membership guard and
// the expense and membership workflows.
//
// Nothing is cached. Every call recomputes from the store, and every write
// rechecks what it depends on inside the transaction that performs it.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/notify"
	"github.com/mmynk/splitledger/internal/storage"
)

// DefaultCurrency is used when no other default is configured.
const DefaultCurrency = "USD"

// Engine implements the ledger operations.
type Engine struct {
	store           storage.Store
	notifier        notify.Notifier
	metrics         *metrics.Metrics
	logger          *slog.Logger
	defaultCurrency string
	locks           *keyedLocks
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets where notifications go after a committed write.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithMetrics records settlement and integrity metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the logger for engine events. It defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithDefaultCurrency sets the currency reported for groups without activity.
func WithDefaultCurrency(currency string) Option {
	return func(e *Engine) { e.defaultCurrency = strings.ToUpper(currency) }
}

// New creates an Engine over store.
func New(store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		notifier:        notify.Nop{},
		logger:          slog.Default(),
		defaultCurrency: DefaultCurrency,
		locks:           newKeyedLocks(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultCurrency reports the configured default currency.
func (e *Engine) DefaultCurrency() string {
	return e.defaultCurrency
}

// Currencies lists the currencies with live expenses in a group, sorted.
// A group without activity reports the default currency alone.
func (e *Engine) Currencies(ctx context.Context, groupID string) ([]string, error) {
	if _, err := liveGroup(ctx, e.store, groupID); err != nil {
		return nil, err
	}
	expenses, err := e.store.ListExpenses(ctx, groupID, storage.ExpenseFilter{})
	if err != nil {
		return nil, err
	}
	if currencies := calculator.Currencies(expenses); len(currencies) > 0 {
		return currencies, nil
	}
	return []string{e.defaultCurrency}, nil
}

// NetBalances returns each active member's net balance in currency.
// Members without activity are omitted.
func (e *Engine) NetBalances(ctx context.Context, groupID, currency string) (calculator.Balances, error) {
	currency, err := e.currency(currency)
	if err != nil {
		return nil, err
	}
	if _, err := liveGroup(ctx, e.store, groupID); err != nil {
		return nil, err
	}
	return netBalances(ctx, e.store, groupID, currency)
}

// Balances returns each active member's paid, owed and net totals in currency.
func (e *Engine) Balances(ctx context.Context, groupID, currency string) ([]calculator.MemberBalance, error) {
	currency, err := e.currency(currency)
	if err != nil {
		return nil, err
	}
	if _, err := liveGroup(ctx, e.store, groupID); err != nil {
		return nil, err
	}
	expenses, err := e.store.ListExpenses(ctx, groupID, storage.ExpenseFilter{Currency: currency})
	if err != nil {
		return nil, err
	}
	return calculator.AggregateBalances(expenses, currency), nil
}

// Integrity checks that a currency ledger closes.
func (e *Engine) Integrity(ctx context.Context, groupID, currency string) (calculator.Integrity, error) {
	balances, err := e.NetBalances(ctx, groupID, currency)
	if err != nil {
		return calculator.Integrity{}, err
	}
	currency, _ = e.currency(currency)
	return e.checkIntegrity(ctx, groupID, currency, balances), nil
}

// Simplify returns the transfers that settle a currency ledger.
// A corrupt ledger yields no transfers and a *CorruptError.
func (e *Engine) Simplify(ctx context.Context, groupID, currency string) ([]models.Transfer, error) {
	currency, err := e.currency(currency)
	if err != nil {
		return nil, err
	}
	balances, err := e.NetBalances(ctx, groupID, currency)
	if err != nil {
		return nil, err
	}
	if integrity := e.checkIntegrity(ctx, groupID, currency, balances); integrity.Corrupt {
		return nil, &CorruptError{Currency: currency, Total: integrity.Total}
	}
	return transfers(calculator.Simplify(balances), currency), nil
}

// CurrencySummary is the state of one currency ledger in a group.
type CurrencySummary struct {
	Currency  string
	Balances  []calculator.MemberBalance
	Integrity calculator.Integrity
	// Transfers is empty when the ledger is corrupt.
	Transfers []models.Transfer
}

// GroupSummary is a group with the state of each of its currency ledgers.
type GroupSummary struct {
	Group      *models.Group
	Currencies []CurrencySummary
}

// Summary reports balances, integrity and transfers for every currency of a group.
func (e *Engine) Summary(ctx context.Context, groupID string) (*GroupSummary, error) {
	group, err := liveGroup(ctx, e.store, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := e.store.ListExpenses(ctx, groupID, storage.ExpenseFilter{})
	if err != nil {
		return nil, err
	}

	currencies := calculator.Currencies(expenses)
	if len(currencies) == 0 {
		currencies = []string{e.defaultCurrency}
	}

	summary := &GroupSummary{Group: group}
	for _, currency := range currencies {
		balances := calculator.ComputeNetBalances(expenses, currency)
		cs := CurrencySummary{
			Currency:  currency,
			Balances:  calculator.AggregateBalances(expenses, currency),
			Integrity: e.checkIntegrity(ctx, groupID, currency, balances),
		}
		if cs.Integrity.OK() {
			cs.Transfers = transfers(calculator.Simplify(balances), currency)
		}
		summary.Currencies = append(summary.Currencies, cs)
	}
	return summary, nil
}

func (e *Engine) checkIntegrity(ctx context.Context, groupID, currency string, balances calculator.Balances) calculator.Integrity {
	integrity := calculator.CheckIntegrity(balances)
	if integrity.Corrupt {
		e.metrics.IntegrityFailure(currency)
		e.logger.WarnContext(ctx, "Ledger integrity check failed",
			"group_id", groupID,
			"currency", currency,
			"total", integrity.Total.String())
	}
	return integrity
}

// currency normalizes a currency code, defaulting an empty one.
func (e *Engine) currency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return e.defaultCurrency, nil
	}
	if len(currency) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
		}
	}
	return currency, nil
}

// liveGroup loads a group and treats a deleted one as missing.
func liveGroup(ctx context.Context, l storage.Ledger, groupID string) (*models.Group, error) {
	group, err := l.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Deleted {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return group, nil
}

func netBalances(ctx context.Context, l storage.Ledger, groupID, currency string) (calculator.Balances, error) {
	expenses, err := l.ListExpenses(ctx, groupID, storage.ExpenseFilter{Currency: currency})
	if err != nil {
		return nil, err
	}
	return calculator.ComputeNetBalances(expenses, currency), nil
}

func transfers(edges []calculator.DebtEdge, currency string) []models.Transfer {
	out := make([]models.Transfer, len(edges))
	for i, edge := range edges {
		out[i] = models.Transfer{
			Debtor:   edge.From,
			Creditor: edge.To,
			Amount:   edge.Amount,
			Currency: currency,
		}
	}
	return out
}

// notify delivers notifications for a committed write. Failures are logged only.
func (e *Engine) notify(ctx context.Context, notifications []models.Notification) {
	if len(notifications) == 0 {
		return
	}
	if err := e.notifier.Notify(ctx, notifications); err != nil {
		e.logger.ErrorContext(ctx, "Failed to deliver notifications",
			"count", len(notifications),
			"error", err)
	}
}

func groupLink(groupID string) string {
	return "/groups/" + groupID
}
