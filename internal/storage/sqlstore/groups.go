package sqlstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

// CreateGroup persists a new group and its members.
func (l *ledger) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	group.Members = uniqueSorted(group.Members)

	return l.atomic(ctx, func(l *ledger) error {
		_, err := l.exec(ctx,
			"INSERT INTO groups (id, name, deleted, created_at) VALUES (?, ?, ?, ?)",
			group.ID, group.Name, group.Deleted, group.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}
		for _, m := range group.Members {
			if err := l.AddMember(ctx, group.ID, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetGroup retrieves a group with its sorted member list.
func (l *ledger) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := l.queryRow(ctx,
		"SELECT id, name, deleted, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.Deleted, &group.CreatedAt)
	if err != nil {
		return nil, notFound(err, "group", groupID)
	}

	members, err := l.members(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members
	return group, nil
}

// ListGroups lists live groups, optionally only those member belongs to.
func (l *ledger) ListGroups(ctx context.Context, member string) ([]*models.Group, error) {
	query := "SELECT id, name, deleted, created_at FROM groups WHERE deleted = ? ORDER BY created_at DESC, id"
	args := []any{false}
	if member != "" {
		query = `SELECT g.id, g.name, g.deleted, g.created_at
			FROM groups g JOIN group_members gm ON gm.group_id = g.id
			WHERE g.deleted = ? AND gm.member = ?
			ORDER BY g.created_at DESC, g.id`
		args = append(args, member)
	}

	rows, err := l.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Deleted, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	rows.Close()

	for _, g := range groups {
		if g.Members, err = l.members(ctx, g.ID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// AddMember inserts member into a group, ignoring duplicates.
func (l *ledger) AddMember(ctx context.Context, groupID, member string) error {
	if err := l.groupExists(ctx, groupID); err != nil {
		return err
	}
	_, err := l.exec(ctx,
		"INSERT INTO group_members (group_id, member) VALUES (?, ?) ON CONFLICT DO NOTHING",
		groupID, member,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group member: %w", err)
	}
	return nil
}

// RemoveMember deletes member from a group's member list.
func (l *ledger) RemoveMember(ctx context.Context, groupID, member string) error {
	if err := l.groupExists(ctx, groupID); err != nil {
		return err
	}
	res, err := l.exec(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND member = ?",
		groupID, member,
	)
	if err != nil {
		return fmt.Errorf("failed to delete group member: %w", err)
	}
	return requireAffected(res, "member", member)
}

// DeleteGroup flags a group deleted.
func (l *ledger) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := l.exec(ctx, "UPDATE groups SET deleted = ? WHERE id = ?", true, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return requireAffected(res, "group", groupID)
}

func (l *ledger) groupExists(ctx context.Context, groupID string) error {
	var exists int
	err := l.queryRow(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
	if err != nil {
		return notFound(err, "group", groupID)
	}
	return nil
}

func (l *ledger) members(ctx context.Context, groupID string) ([]string, error) {
	rows, err := l.query(ctx,
		"SELECT member FROM group_members WHERE group_id = ? ORDER BY member",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	members := []string{}
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return members, nil
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
