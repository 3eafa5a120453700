package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	apiconnect.UnimplementedGroupServiceHandler
	engine *ledger.Engine
}

// NewGroupService creates a GroupService backed by engine.
func NewGroupService(engine *ledger.Engine) *GroupService {
	return &GroupService{engine: engine}
}

// CreateGroup creates a group with the caller as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	member, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	group, err := s.engine.CreateGroup(ctx, req.Msg.Name, member, req.Msg.Members)
	if err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: groupToAPI(group)}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	_, group, err := authorize(ctx, s.engine, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: groupToAPI(group)}), nil
}

// ListGroups retrieves the caller's groups, newest first.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	member, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroups request received", "member", member)

	groups, err := s.engine.ListGroups(ctx, member)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("ListGroups successful", "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: groupsToAPI(groups)}), nil
}

// AddMembers adds members to a group the caller belongs to.
func (s *GroupService) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	slog.Info("AddMembers request received", "group_id", req.Msg.GroupID, "members_count", len(req.Msg.Members))

	member, _, err := authorize(ctx, s.engine, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	group, err := s.engine.AddMembers(ctx, req.Msg.GroupID, member, req.Msg.Members)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.AddMembersResponse{Group: groupToAPI(group)}), nil
}

// LeaveGroup removes the caller from a group once they are settled.
func (s *GroupService) LeaveGroup(ctx context.Context, req *connect.Request[api.LeaveGroupRequest]) (*connect.Response[api.LeaveGroupResponse], error) {
	slog.Info("LeaveGroup request received", "group_id", req.Msg.GroupID)

	member, _, err := authorize(ctx, s.engine, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.LeaveGroup(ctx, req.Msg.GroupID, member); err != nil {
		slog.Warn("LeaveGroup failed", "group_id", req.Msg.GroupID, "member", member, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.LeaveGroupResponse{}), nil
}

// RemoveMember removes a settled member from a group.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "member", req.Msg.Member)

	by, _, err := authorize(ctx, s.engine, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.RemoveMember(ctx, req.Msg.GroupID, by, req.Msg.Member); err != nil {
		slog.Warn("RemoveMember failed", "group_id", req.Msg.GroupID, "member", req.Msg.Member, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// DeleteGroup soft-deletes a group once every member is settled.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	by, _, err := authorize(ctx, s.engine, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.DeleteGroup(ctx, req.Msg.GroupID, by); err != nil {
		slog.Warn("DeleteGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}
