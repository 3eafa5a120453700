package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/id"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// state is one snapshot of the store. It is not safe for concurrent use;
// Store guards it.
type state struct {
	groups        map[string]*models.Group
	expenses      map[string]*models.Expense
	expenseOrder  []string
	notifications []*models.Notification
}

func newState() *state {
	return &state{
		groups:   make(map[string]*models.Group),
		expenses: make(map[string]*models.Expense),
	}
}

func (st *state) clone() *state {
	c := &state{
		groups:        make(map[string]*models.Group, len(st.groups)),
		expenses:      make(map[string]*models.Expense, len(st.expenses)),
		expenseOrder:  append([]string(nil), st.expenseOrder...),
		notifications: make([]*models.Notification, len(st.notifications)),
	}
	for k, g := range st.groups {
		c.groups[k] = copyGroup(g)
	}
	for k, e := range st.expenses {
		c.expenses[k] = copyExpense(e)
	}
	for i, n := range st.notifications {
		cp := *n
		c.notifications[i] = &cp
	}
	return c
}

func copyGroup(g *models.Group) *models.Group {
	cp := *g
	cp.Members = append([]string{}, g.Members...)
	return &cp
}

func copyExpense(e *models.Expense) *models.Expense {
	cp := *e
	cp.Payments = append([]models.Payment(nil), e.Payments...)
	cp.Splits = append([]models.Split(nil), e.Splits...)
	return &cp
}

func (st *state) CreateGroup(_ context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if _, exists := st.groups[group.ID]; exists {
		return fmt.Errorf("memory: group %s already exists", group.ID)
	}
	group.Members = uniqueSorted(group.Members)
	st.groups[group.ID] = copyGroup(group)
	return nil
}

func (st *state) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	g, ok := st.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return copyGroup(g), nil
}

func (st *state) ListGroups(_ context.Context, member string) ([]*models.Group, error) {
	var groups []*models.Group
	for _, g := range st.groups {
		if g.Deleted || (member != "" && !g.HasMember(member)) {
			continue
		}
		groups = append(groups, copyGroup(g))
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].CreatedAt != groups[j].CreatedAt {
			return groups[i].CreatedAt > groups[j].CreatedAt
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

func (st *state) AddMember(_ context.Context, groupID, member string) error {
	g, ok := st.groups[groupID]
	if !ok {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	g.Members = uniqueSorted(append(g.Members, member))
	return nil
}

func (st *state) RemoveMember(_ context.Context, groupID, member string) error {
	g, ok := st.groups[groupID]
	if !ok {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	for i, m := range g.Members {
		if m == member {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("member %s: %w", member, storage.ErrNotFound)
}

func (st *state) DeleteGroup(_ context.Context, groupID string) error {
	g, ok := st.groups[groupID]
	if !ok {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	g.Deleted = true
	return nil
}

func (st *state) CreateExpense(_ context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = id.New(id.PrefixExpense)
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Kind == "" {
		expense.Kind = models.ExpenseKindRegular
	}
	if _, ok := st.groups[expense.GroupID]; !ok {
		return fmt.Errorf("group %s: %w", expense.GroupID, storage.ErrNotFound)
	}
	if _, exists := st.expenses[expense.ID]; exists {
		return fmt.Errorf("memory: expense %s already exists", expense.ID)
	}
	assignShareIDs(expense.ID, expense.Payments, expense.Splits)
	st.expenses[expense.ID] = copyExpense(expense)
	st.expenseOrder = append(st.expenseOrder, expense.ID)
	return nil
}

func (st *state) GetExpense(_ context.Context, expenseID string) (*models.Expense, error) {
	e, ok := st.expenses[expenseID]
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return copyExpense(e), nil
}

func (st *state) ListExpenses(_ context.Context, groupID string, filter storage.ExpenseFilter) ([]models.Expense, error) {
	var expenses []models.Expense
	for _, eid := range st.expenseOrder {
		e := st.expenses[eid]
		if e.GroupID != groupID {
			continue
		}
		if filter.Currency != "" && e.Currency != filter.Currency {
			continue
		}
		if e.Deleted && !filter.IncludeDeleted {
			continue
		}
		expenses = append(expenses, *copyExpense(e))
	}
	return expenses, nil
}

func (st *state) UpdateExpense(_ context.Context, expense *models.Expense) error {
	e, ok := st.expenses[expense.ID]
	if !ok {
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
	}
	e.Description = expense.Description
	e.Amount = expense.Amount
	e.Currency = expense.Currency
	return nil
}

func (st *state) ReplaceShares(_ context.Context, expenseID string, payments []models.Payment, splits []models.Split) error {
	e, ok := st.expenses[expenseID]
	if !ok {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	for i := range e.Payments {
		e.Payments[i].Deleted = true
	}
	for i := range e.Splits {
		e.Splits[i].Deleted = true
	}
	assignShareIDs(expenseID, payments, splits)
	e.Payments = append(e.Payments, payments...)
	e.Splits = append(e.Splits, splits...)
	return nil
}

func (st *state) DeleteExpense(_ context.Context, expenseID string) error {
	e, ok := st.expenses[expenseID]
	if !ok {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	e.Deleted = true
	return nil
}

// LockLedger is a no-op: transactions on a memory store already run one at a time.
func (st *state) LockLedger(context.Context, string, string) error {
	return nil
}

func (st *state) LockGroup(context.Context, string) error {
	return nil
}

func (st *state) CreateNotification(_ context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = id.New(id.PrefixNotification)
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().Unix()
	}
	cp := *n
	st.notifications = append(st.notifications, &cp)
	return nil
}

func (st *state) ListNotifications(_ context.Context, member string, unreadOnly bool) ([]models.Notification, error) {
	var list []models.Notification
	for _, n := range st.notifications {
		if n.Member != member || (unreadOnly && n.Read) {
			continue
		}
		list = append(list, *n)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt != list[j].CreatedAt {
			return list[i].CreatedAt > list[j].CreatedAt
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (st *state) MarkNotificationRead(_ context.Context, member, notificationID string) error {
	for _, n := range st.notifications {
		if n.ID == notificationID && n.Member == member {
			n.Read = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", notificationID, storage.ErrNotFound)
}

func (st *state) MarkAllNotificationsRead(_ context.Context, member string) (int64, error) {
	var count int64
	for _, n := range st.notifications {
		if n.Member == member && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func assignShareIDs(expenseID string, payments []models.Payment, splits []models.Split) {
	for i := range payments {
		if payments[i].ID == "" {
			payments[i].ID = id.New(id.PrefixPayment)
		}
		payments[i].ExpenseID = expenseID
	}
	for i := range splits {
		if splits[i].ID == "" {
			splits[i].ID = id.New(id.PrefixSplit)
		}
		splits[i].ExpenseID = expenseID
	}
}

func uniqueSorted(members []string) []string {
	seen := make(map[string]bool, len(members))
	out := make([]string, 0, len(members))
	for _, m := range members {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
