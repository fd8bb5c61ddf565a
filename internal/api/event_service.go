package api

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
)

// EventServiceName is the fully-qualified name of the EventService.
const EventServiceName = "racha.v1.EventService"

// Procedure paths of EventService.
const (
	EventServiceCreateParticipantProcedure    = "/racha.v1.EventService/CreateParticipant"
	EventServiceCreateEventProcedure          = "/racha.v1.EventService/CreateEvent"
	EventServiceAddEventParticipantsProcedure = "/racha.v1.EventService/AddEventParticipants"
	EventServiceCreateExpenseProcedure        = "/racha.v1.EventService/CreateExpense"
	EventServiceUpdateExpenseProcedure        = "/racha.v1.EventService/UpdateExpense"
	EventServiceDeleteExpenseProcedure        = "/racha.v1.EventService/DeleteExpense"
	EventServiceListExpensesProcedure         = "/racha.v1.EventService/ListExpenses"
	EventServiceCreateSubgroupProcedure       = "/racha.v1.EventService/CreateSubgroup"
	EventServiceDeleteSubgroupProcedure       = "/racha.v1.EventService/DeleteSubgroup"
)

// EventServiceHandler writes the records the settlement engine reads.
type EventServiceHandler interface {
	CreateParticipant(context.Context, *connect.Request[CreateParticipantRequest]) (*connect.Response[CreateParticipantResponse], error)
	CreateEvent(context.Context, *connect.Request[CreateEventRequest]) (*connect.Response[CreateEventResponse], error)
	AddEventParticipants(context.Context, *connect.Request[AddEventParticipantsRequest]) (*connect.Response[AddEventParticipantsResponse], error)
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
	CreateSubgroup(context.Context, *connect.Request[CreateSubgroupRequest]) (*connect.Response[CreateSubgroupResponse], error)
	DeleteSubgroup(context.Context, *connect.Request[DeleteSubgroupRequest]) (*connect.Response[DeleteSubgroupResponse], error)
}

// NewEventServiceHandler builds an HTTP handler for svc. It returns the path
// to mount the handler on.
func NewEventServiceHandler(svc EventServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(EventServiceCreateParticipantProcedure,
		connect.NewUnaryHandler(EventServiceCreateParticipantProcedure, svc.CreateParticipant, opts...))
	mux.Handle(EventServiceCreateEventProcedure,
		connect.NewUnaryHandler(EventServiceCreateEventProcedure, svc.CreateEvent, opts...))
	mux.Handle(EventServiceAddEventParticipantsProcedure,
		connect.NewUnaryHandler(EventServiceAddEventParticipantsProcedure, svc.AddEventParticipants, opts...))
	mux.Handle(EventServiceCreateExpenseProcedure,
		connect.NewUnaryHandler(EventServiceCreateExpenseProcedure, svc.CreateExpense, opts...))
	mux.Handle(EventServiceUpdateExpenseProcedure,
		connect.NewUnaryHandler(EventServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...))
	mux.Handle(EventServiceDeleteExpenseProcedure,
		connect.NewUnaryHandler(EventServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(EventServiceListExpensesProcedure,
		connect.NewUnaryHandler(EventServiceListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(EventServiceCreateSubgroupProcedure,
		connect.NewUnaryHandler(EventServiceCreateSubgroupProcedure, svc.CreateSubgroup, opts...))
	mux.Handle(EventServiceDeleteSubgroupProcedure,
		connect.NewUnaryHandler(EventServiceDeleteSubgroupProcedure, svc.DeleteSubgroup, opts...))

	return "/" + EventServiceName + "/", mux
}

// EventServiceClient is a client for racha.v1.EventService.
type EventServiceClient interface {
	CreateParticipant(context.Context, *connect.Request[CreateParticipantRequest]) (*connect.Response[CreateParticipantResponse], error)
	CreateEvent(context.Context, *connect.Request[CreateEventRequest]) (*connect.Response[CreateEventResponse], error)
	AddEventParticipants(context.Context, *connect.Request[AddEventParticipantsRequest]) (*connect.Response[AddEventParticipantsResponse], error)
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
	CreateSubgroup(context.Context, *connect.Request[CreateSubgroupRequest]) (*connect.Response[CreateSubgroupResponse], error)
	DeleteSubgroup(context.Context, *connect.Request[DeleteSubgroupRequest]) (*connect.Response[DeleteSubgroupResponse], error)
}

// NewEventServiceClient constructs a client for the service at baseURL
// (e.g. http://localhost:8080).
func NewEventServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) EventServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &eventServiceClient{
		createParticipant:    connect.NewClient[CreateParticipantRequest, CreateParticipantResponse](httpClient, baseURL+EventServiceCreateParticipantProcedure, opts...),
		createEvent:          connect.NewClient[CreateEventRequest, CreateEventResponse](httpClient, baseURL+EventServiceCreateEventProcedure, opts...),
		addEventParticipants: connect.NewClient[AddEventParticipantsRequest, AddEventParticipantsResponse](httpClient, baseURL+EventServiceAddEventParticipantsProcedure, opts...),
		createExpense:        connect.NewClient[CreateExpenseRequest, CreateExpenseResponse](httpClient, baseURL+EventServiceCreateExpenseProcedure, opts...),
		updateExpense:        connect.NewClient[UpdateExpenseRequest, UpdateExpenseResponse](httpClient, baseURL+EventServiceUpdateExpenseProcedure, opts...),
		deleteExpense:        connect.NewClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL+EventServiceDeleteExpenseProcedure, opts...),
		listExpenses:         connect.NewClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL+EventServiceListExpensesProcedure, opts...),
		createSubgroup:       connect.NewClient[CreateSubgroupRequest, CreateSubgroupResponse](httpClient, baseURL+EventServiceCreateSubgroupProcedure, opts...),
		deleteSubgroup:       connect.NewClient[DeleteSubgroupRequest, DeleteSubgroupResponse](httpClient, baseURL+EventServiceDeleteSubgroupProcedure, opts...),
	}
}

type eventServiceClient struct {
	createParticipant    *connect.Client[CreateParticipantRequest, CreateParticipantResponse]
	createEvent          *connect.Client[CreateEventRequest, CreateEventResponse]
	addEventParticipants *connect.Client[AddEventParticipantsRequest, AddEventParticipantsResponse]
	createExpense        *connect.Client[CreateExpenseRequest, CreateExpenseResponse]
	updateExpense        *connect.Client[UpdateExpenseRequest, UpdateExpenseResponse]
	deleteExpense        *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	listExpenses         *connect.Client[ListExpensesRequest, ListExpensesResponse]
	createSubgroup       *connect.Client[CreateSubgroupRequest, CreateSubgroupResponse]
	deleteSubgroup       *connect.Client[DeleteSubgroupRequest, DeleteSubgroupResponse]
}

func (c *eventServiceClient) CreateParticipant(ctx context.Context, req *connect.Request[CreateParticipantRequest]) (*connect.Response[CreateParticipantResponse], error) {
	return c.createParticipant.CallUnary(ctx, req)
}

func (c *eventServiceClient) CreateEvent(ctx context.Context, req *connect.Request[CreateEventRequest]) (*connect.Response[CreateEventResponse], error) {
	return c.createEvent.CallUnary(ctx, req)
}

func (c *eventServiceClient) AddEventParticipants(ctx context.Context, req *connect.Request[AddEventParticipantsRequest]) (*connect.Response[AddEventParticipantsResponse], error) {
	return c.addEventParticipants.CallUnary(ctx, req)
}

func (c *eventServiceClient) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *eventServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *eventServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *eventServiceClient) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *eventServiceClient) CreateSubgroup(ctx context.Context, req *connect.Request[CreateSubgroupRequest]) (*connect.Response[CreateSubgroupResponse], error) {
	return c.createSubgroup.CallUnary(ctx, req)
}

func (c *eventServiceClient) DeleteSubgroup(ctx context.Context, req *connect.Request[DeleteSubgroupRequest]) (*connect.Response[DeleteSubgroupResponse], error) {
	return c.deleteSubgroup.CallUnary(ctx, req)
}

// UnimplementedEventServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedEventServiceHandler struct{}

func (UnimplementedEventServiceHandler) CreateParticipant(context.Context, *connect.Request[CreateParticipantRequest]) (*connect.Response[CreateParticipantResponse], error) {
	return nil, unimplemented(EventServiceCreateParticipantProcedure)
}

func (UnimplementedEventServiceHandler) CreateEvent(context.Context, *connect.Request[CreateEventRequest]) (*connect.Response[CreateEventResponse], error) {
	return nil, unimplemented(EventServiceCreateEventProcedure)
}

func (UnimplementedEventServiceHandler) AddEventParticipants(context.Context, *connect.Request[AddEventParticipantsRequest]) (*connect.Response[AddEventParticipantsResponse], error) {
	return nil, unimplemented(EventServiceAddEventParticipantsProcedure)
}

func (UnimplementedEventServiceHandler) CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	return nil, unimplemented(EventServiceCreateExpenseProcedure)
}

func (UnimplementedEventServiceHandler) UpdateExpense(context.Context, *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error) {
	return nil, unimplemented(EventServiceUpdateExpenseProcedure)
}

func (UnimplementedEventServiceHandler) DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return nil, unimplemented(EventServiceDeleteExpenseProcedure)
}

func (UnimplementedEventServiceHandler) ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	return nil, unimplemented(EventServiceListExpensesProcedure)
}

func (UnimplementedEventServiceHandler) CreateSubgroup(context.Context, *connect.Request[CreateSubgroupRequest]) (*connect.Response[CreateSubgroupResponse], error) {
	return nil, unimplemented(EventServiceCreateSubgroupProcedure)
}

func (UnimplementedEventServiceHandler) DeleteSubgroup(context.Context, *connect.Request[DeleteSubgroupRequest]) (*connect.Response[DeleteSubgroupResponse], error) {
	return nil, unimplemented(EventServiceDeleteSubgroupProcedure)
}

func unimplemented(procedure string) error {
	return connect.NewError(connect.CodeUnimplemented, errors.New(procedure+" is not implemented"))
}
