package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/splitledger/pkg/api"
)

// GroupServiceName is the fully-qualified name of the service.
const GroupServiceName = "splitledger.v1.GroupService"

// Procedure paths of the GroupService RPCs.
const (
	GroupServiceCreateGroupProcedure  = "/splitledger.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure     = "/splitledger.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure   = "/splitledger.v1.GroupService/ListGroups"
	GroupServiceAddMembersProcedure   = "/splitledger.v1.GroupService/AddMembers"
	GroupServiceLeaveGroupProcedure   = "/splitledger.v1.GroupService/LeaveGroup"
	GroupServiceRemoveMemberProcedure = "/splitledger.v1.GroupService/RemoveMember"
	GroupServiceDeleteGroupProcedure  = "/splitledger.v1.GroupService/DeleteGroup"
)

// GroupServiceClient is a client for the GroupService.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMembers(context.Context, *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error)
	LeaveGroup(context.Context, *connect.Request[api.LeaveGroupRequest]) (*connect.Response[api.LeaveGroupResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
}

// NewGroupServiceClient constructs a client for the GroupService. baseURL is the
// scheme and host of the server, e.g. http://localhost:8080.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	c := &groupServiceClient{}
	c.createGroup = connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...)
	c.getGroup = connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...)
	c.listGroups = connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...)
	c.addMembers = connect.NewClient[api.AddMembersRequest, api.AddMembersResponse](httpClient, baseURL+GroupServiceAddMembersProcedure, opts...)
	c.leaveGroup = connect.NewClient[api.LeaveGroupRequest, api.LeaveGroupResponse](httpClient, baseURL+GroupServiceLeaveGroupProcedure, opts...)
	c.removeMember = connect.NewClient[api.RemoveMemberRequest, api.RemoveMemberResponse](httpClient, baseURL+GroupServiceRemoveMemberProcedure, opts...)
	c.deleteGroup = connect.NewClient[api.DeleteGroupRequest, api.DeleteGroupResponse](httpClient, baseURL+GroupServiceDeleteGroupProcedure, opts...)
	return c
}

type groupServiceClient struct {
	createGroup  *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup     *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups   *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	addMembers   *connect.Client[api.AddMembersRequest, api.AddMembersResponse]
	leaveGroup   *connect.Client[api.LeaveGroupRequest, api.LeaveGroupResponse]
	removeMember *connect.Client[api.RemoveMemberRequest, api.RemoveMemberResponse]
	deleteGroup  *connect.Client[api.DeleteGroupRequest, api.DeleteGroupResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	return c.addMembers.CallUnary(ctx, req)
}

func (c *groupServiceClient) LeaveGroup(ctx context.Context, req *connect.Request[api.LeaveGroupRequest]) (*connect.Response[api.LeaveGroupResponse], error) {
	return c.leaveGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

// GroupServiceHandler is implemented by the server side of the GroupService.
// It manages groups and their membership.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMembers(context.Context, *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error)
	LeaveGroup(context.Context, *connect.Request[api.LeaveGroupRequest]) (*connect.Response[api.LeaveGroupResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(GroupServiceAddMembersProcedure, connect.NewUnaryHandler(GroupServiceAddMembersProcedure, svc.AddMembers, opts...))
	mux.Handle(GroupServiceLeaveGroupProcedure, connect.NewUnaryHandler(GroupServiceLeaveGroupProcedure, svc.LeaveGroup, opts...))
	mux.Handle(GroupServiceRemoveMemberProcedure, connect.NewUnaryHandler(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts...))
	mux.Handle(GroupServiceDeleteGroupProcedure, connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...))
	return "/" + GroupServiceName + "/", mux
}

// UnimplementedGroupServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedGroupServiceHandler struct{}

func (UnimplementedGroupServiceHandler) CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return nil, unimplemented(GroupServiceCreateGroupProcedure)
}

func (UnimplementedGroupServiceHandler) GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return nil, unimplemented(GroupServiceGetGroupProcedure)
}

func (UnimplementedGroupServiceHandler) ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return nil, unimplemented(GroupServiceListGroupsProcedure)
}

func (UnimplementedGroupServiceHandler) AddMembers(context.Context, *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	return nil, unimplemented(GroupServiceAddMembersProcedure)
}

func (UnimplementedGroupServiceHandler) LeaveGroup(context.Context, *connect.Request[api.LeaveGroupRequest]) (*connect.Response[api.LeaveGroupResponse], error) {
	return nil, unimplemented(GroupServiceLeaveGroupProcedure)
}

func (UnimplementedGroupServiceHandler) RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return nil, unimplemented(GroupServiceRemoveMemberProcedure)
}

func (UnimplementedGroupServiceHandler) DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return nil, unimplemented(GroupServiceDeleteGroupProcedure)
}
