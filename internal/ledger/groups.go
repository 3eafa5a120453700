package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateGroup creates a group with creator and members, and tells the
// added members.
func (e *Engine) CreateGroup(ctx context.Context, name, creator string, members []string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	if creator == "" {
		return nil, fmt.Errorf("%w: creator is required", ErrInvalidInput)
	}

	group := &models.Group{
		Name:    name,
		Members: append([]string{creator}, members...),
	}
	if err := e.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Created group",
		"group_id", group.ID,
		"name", group.Name,
		"members", len(group.Members))

	message := fmt.Sprintf("%s added you to %s", creator, group.Name)
	e.notify(ctx, memberNotifications(group.Members, creator, message, models.NotificationGroupAdd, groupLink(group.ID)))
	return group, nil
}

// GetGroup returns a live group.
func (e *Engine) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return liveGroup(ctx, e.store, groupID)
}

// ListGroups returns the live groups member belongs to.
func (e *Engine) ListGroups(ctx context.Context, member string) ([]*models.Group, error) {
	return e.store.ListGroups(ctx, member)
}

// AddMembers adds members to a group on behalf of by, an existing member.
func (e *Engine) AddMembers(ctx context.Context, groupID, by string, members []string) (*models.Group, error) {
	var group *models.Group
	var added []string
	err := e.store.InTx(ctx, func(tx storage.Ledger) error {
		if err := tx.LockGroup(ctx, groupID); err != nil {
			return err
		}
		g, err := liveGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if !g.HasMember(by) {
			return notAMember(by, groupID)
		}
		seen := make(map[string]bool, len(members))
		for _, m := range members {
			m = strings.TrimSpace(m)
			if m == "" || seen[m] || g.HasMember(m) {
				continue
			}
			seen[m] = true
			if err := tx.AddMember(ctx, groupID, m); err != nil {
				return err
			}
			added = append(added, m)
		}
		group, err = tx.GetGroup(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(added) > 0 {
		e.logger.InfoContext(ctx, "Added group members",
			"group_id", groupID,
			"added", added)
	}
	message := fmt.Sprintf("%s added you to %s", by, group.Name)
	e.notify(ctx, memberNotifications(added, by, message, models.NotificationGroupAdd, groupLink(groupID)))
	return group, nil
}

// LeaveGroup removes member from a group once they are settled in every
// currency. The group stays, even when its last member leaves.
func (e *Engine) LeaveGroup(ctx context.Context, groupID, member string) error {
	group, err := e.removeMember(ctx, groupID, member)
	if err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "Member left group",
		"group_id", groupID,
		"member", member)

	message := fmt.Sprintf("%s left the group %s", member, group.Name)
	e.notify(ctx, memberNotifications(group.Members, member, message, models.NotificationSystem, groupLink(groupID)))
	return nil
}

// RemoveMember removes member from a group on behalf of by, once member is
// settled in every currency.
func (e *Engine) RemoveMember(ctx context.Context, groupID, by, member string) error {
	group, err := liveGroup(ctx, e.store, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(by) {
		return notAMember(by, groupID)
	}
	if group, err = e.removeMember(ctx, groupID, member); err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "Removed group member",
		"group_id", groupID,
		"member", member,
		"by", by)

	e.notify(ctx, []models.Notification{{
		Member:  member,
		Message: fmt.Sprintf("%s removed you from %s", by, group.Name),
		Type:    models.NotificationSystem,
	}})
	return nil
}

// removeMember checks the guard and removes member in one transaction.
// It returns the group as it is after the removal.
func (e *Engine) removeMember(ctx context.Context, groupID, member string) (*models.Group, error) {
	var group *models.Group
	err := e.store.InTx(ctx, func(tx storage.Ledger) error {
		if err := tx.LockGroup(ctx, groupID); err != nil {
			return err
		}
		g, err := liveGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if !g.HasMember(member) {
			return notAMember(member, groupID)
		}
		if err := requireSettled(ctx, tx, groupID, []string{member}); err != nil {
			return err
		}
		if err := tx.RemoveMember(ctx, groupID, member); err != nil {
			return err
		}
		group, err = tx.GetGroup(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup soft-deletes a group on behalf of by once every member is
// settled in every currency.
func (e *Engine) DeleteGroup(ctx context.Context, groupID, by string) error {
	err := e.store.InTx(ctx, func(tx storage.Ledger) error {
		if err := tx.LockGroup(ctx, groupID); err != nil {
			return err
		}
		group, err := liveGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if !group.HasMember(by) {
			return notAMember(by, groupID)
		}
		if err := requireSettled(ctx, tx, groupID, group.Members); err != nil {
			return err
		}
		return tx.DeleteGroup(ctx, groupID)
	})
	if err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "Deleted group",
		"group_id", groupID,
		"by", by)
	return nil
}
