package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/splitledger/pkg/api"
)

// NotificationServiceName is the fully-qualified name of the service.
const NotificationServiceName = "splitledger.v1.NotificationService"

// Procedure paths of the NotificationService RPCs.
const (
	NotificationServiceListNotificationsProcedure = "/splitledger.v1.NotificationService/ListNotifications"
	NotificationServiceMarkReadProcedure          = "/splitledger.v1.NotificationService/MarkRead"
	NotificationServiceMarkAllReadProcedure       = "/splitledger.v1.NotificationService/MarkAllRead"
)

// NotificationServiceClient is a client for the NotificationService.
type NotificationServiceClient interface {
	ListNotifications(context.Context, *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error)
	MarkRead(context.Context, *connect.Request[api.MarkReadRequest]) (*connect.Response[api.MarkReadResponse], error)
	MarkAllRead(context.Context, *connect.Request[api.MarkAllReadRequest]) (*connect.Response[api.MarkAllReadResponse], error)
}

// NewNotificationServiceClient constructs a client for the NotificationService. baseURL is the
// scheme and host of the server, e.g. http://localhost:8080.
func NewNotificationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) NotificationServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	c := &notificationServiceClient{}
	c.listNotifications = connect.NewClient[api.ListNotificationsRequest, api.ListNotificationsResponse](httpClient, baseURL+NotificationServiceListNotificationsProcedure, opts...)
	c.markRead = connect.NewClient[api.MarkReadRequest, api.MarkReadResponse](httpClient, baseURL+NotificationServiceMarkReadProcedure, opts...)
	c.markAllRead = connect.NewClient[api.MarkAllReadRequest, api.MarkAllReadResponse](httpClient, baseURL+NotificationServiceMarkAllReadProcedure, opts...)
	return c
}

type notificationServiceClient struct {
	listNotifications *connect.Client[api.ListNotificationsRequest, api.ListNotificationsResponse]
	markRead          *connect.Client[api.MarkReadRequest, api.MarkReadResponse]
	markAllRead       *connect.Client[api.MarkAllReadRequest, api.MarkAllReadResponse]
}

func (c *notificationServiceClient) ListNotifications(ctx context.Context, req *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error) {
	return c.listNotifications.CallUnary(ctx, req)
}

func (c *notificationServiceClient) MarkRead(ctx context.Context, req *connect.Request[api.MarkReadRequest]) (*connect.Response[api.MarkReadResponse], error) {
	return c.markRead.CallUnary(ctx, req)
}

func (c *notificationServiceClient) MarkAllRead(ctx context.Context, req *connect.Request[api.MarkAllReadRequest]) (*connect.Response[api.MarkAllReadResponse], error) {
	return c.markAllRead.CallUnary(ctx, req)
}

// NotificationServiceHandler is implemented by the server side of the NotificationService.
// It is the caller's notification inbox.
type NotificationServiceHandler interface {
	ListNotifications(context.Context, *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error)
	MarkRead(context.Context, *connect.Request[api.MarkReadRequest]) (*connect.Response[api.MarkReadResponse], error)
	MarkAllRead(context.Context, *connect.Request[api.MarkAllReadRequest]) (*connect.Response[api.MarkAllReadResponse], error)
}

// NewNotificationServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewNotificationServiceHandler(svc NotificationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(NotificationServiceListNotificationsProcedure, connect.NewUnaryHandler(NotificationServiceListNotificationsProcedure, svc.ListNotifications, opts...))
	mux.Handle(NotificationServiceMarkReadProcedure, connect.NewUnaryHandler(NotificationServiceMarkReadProcedure, svc.MarkRead, opts...))
	mux.Handle(NotificationServiceMarkAllReadProcedure, connect.NewUnaryHandler(NotificationServiceMarkAllReadProcedure, svc.MarkAllRead, opts...))
	return "/" + NotificationServiceName + "/", mux
}

// UnimplementedNotificationServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedNotificationServiceHandler struct{}

func (UnimplementedNotificationServiceHandler) ListNotifications(context.Context, *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error) {
	return nil, unimplemented(NotificationServiceListNotificationsProcedure)
}

func (UnimplementedNotificationServiceHandler) MarkRead(context.Context, *connect.Request[api.MarkReadRequest]) (*connect.Response[api.MarkReadResponse], error) {
	return nil, unimplemented(NotificationServiceMarkReadProcedure)
}

func (UnimplementedNotificationServiceHandler) MarkAllRead(context.Context, *connect.Request[api.MarkAllReadRequest]) (*connect.Response[api.MarkAllReadResponse], error) {
	return nil, unimplemented(NotificationServiceMarkAllReadProcedure)
}
