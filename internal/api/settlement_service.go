package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// SettlementServiceName is the fully-qualified name of the SettlementService.
const SettlementServiceName = "racha.v1.SettlementService"

// Procedure paths of SettlementService.
const (
	SettlementServiceGetBalancesProcedure           = "/racha.v1.SettlementService/GetBalances"
	SettlementServiceGetSuggestionsProcedure        = "/racha.v1.SettlementService/GetSuggestions"
	SettlementServiceMarkSuggestionPaidProcedure    = "/racha.v1.SettlementService/MarkSuggestionPaid"
	SettlementServiceConfirmSuggestionProcedure     = "/racha.v1.SettlementService/ConfirmSuggestion"
	SettlementServiceClearSuggestionStatusProcedure = "/racha.v1.SettlementService/ClearSuggestionStatus"
)

// SettlementServiceHandler serves balances, transfer suggestions and their
// confirmation status.
type SettlementServiceHandler interface {
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	GetSuggestions(context.Context, *connect.Request[GetSuggestionsRequest]) (*connect.Response[GetSuggestionsResponse], error)
	MarkSuggestionPaid(context.Context, *connect.Request[MarkSuggestionPaidRequest]) (*connect.Response[SuggestionResponse], error)
	ConfirmSuggestion(context.Context, *connect.Request[ConfirmSuggestionRequest]) (*connect.Response[SuggestionResponse], error)
	ClearSuggestionStatus(context.Context, *connect.Request[ClearSuggestionStatusRequest]) (*connect.Response[SuggestionResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler for svc. It returns the
// path to mount the handler on.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(SettlementServiceGetBalancesProcedure,
		connect.NewUnaryHandler(SettlementServiceGetBalancesProcedure, svc.GetBalances, opts...))
	mux.Handle(SettlementServiceGetSuggestionsProcedure,
		connect.NewUnaryHandler(SettlementServiceGetSuggestionsProcedure, svc.GetSuggestions, opts...))
	mux.Handle(SettlementServiceMarkSuggestionPaidProcedure,
		connect.NewUnaryHandler(SettlementServiceMarkSuggestionPaidProcedure, svc.MarkSuggestionPaid, opts...))
	mux.Handle(SettlementServiceConfirmSuggestionProcedure,
		connect.NewUnaryHandler(SettlementServiceConfirmSuggestionProcedure, svc.ConfirmSuggestion, opts...))
	mux.Handle(SettlementServiceClearSuggestionStatusProcedure,
		connect.NewUnaryHandler(SettlementServiceClearSuggestionStatusProcedure, svc.ClearSuggestionStatus, opts...))

	return "/" + SettlementServiceName + "/", mux
}

// SettlementServiceClient is a client for racha.v1.SettlementService.
type SettlementServiceClient interface {
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	GetSuggestions(context.Context, *connect.Request[GetSuggestionsRequest]) (*connect.Response[GetSuggestionsResponse], error)
	MarkSuggestionPaid(context.Context, *connect.Request[MarkSuggestionPaidRequest]) (*connect.Response[SuggestionResponse], error)
	ConfirmSuggestion(context.Context, *connect.Request[ConfirmSuggestionRequest]) (*connect.Response[SuggestionResponse], error)
	ClearSuggestionStatus(context.Context, *connect.Request[ClearSuggestionStatusRequest]) (*connect.Response[SuggestionResponse], error)
}

// NewSettlementServiceClient constructs a client for the service at baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &settlementServiceClient{
		getBalances:    connect.NewClient[GetBalancesRequest, GetBalancesResponse](httpClient, baseURL+SettlementServiceGetBalancesProcedure, opts...),
		getSuggestions: connect.NewClient[GetSuggestionsRequest, GetSuggestionsResponse](httpClient, baseURL+SettlementServiceGetSuggestionsProcedure, opts...),
		markPaid:       connect.NewClient[MarkSuggestionPaidRequest, SuggestionResponse](httpClient, baseURL+SettlementServiceMarkSuggestionPaidProcedure, opts...),
		confirm:        connect.NewClient[ConfirmSuggestionRequest, SuggestionResponse](httpClient, baseURL+SettlementServiceConfirmSuggestionProcedure, opts...),
		clear:          connect.NewClient[ClearSuggestionStatusRequest, SuggestionResponse](httpClient, baseURL+SettlementServiceClearSuggestionStatusProcedure, opts...),
	}
}

type settlementServiceClient struct {
	getBalances    *connect.Client[GetBalancesRequest, GetBalancesResponse]
	getSuggestions *connect.Client[GetSuggestionsRequest, GetSuggestionsResponse]
	markPaid       *connect.Client[MarkSuggestionPaidRequest, SuggestionResponse]
	confirm        *connect.Client[ConfirmSuggestionRequest, SuggestionResponse]
	clear          *connect.Client[ClearSuggestionStatusRequest, SuggestionResponse]
}

func (c *settlementServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *settlementServiceClient) GetSuggestions(ctx context.Context, req *connect.Request[GetSuggestionsRequest]) (*connect.Response[GetSuggestionsResponse], error) {
	return c.getSuggestions.CallUnary(ctx, req)
}

func (c *settlementServiceClient) MarkSuggestionPaid(ctx context.Context, req *connect.Request[MarkSuggestionPaidRequest]) (*connect.Response[SuggestionResponse], error) {
	return c.markPaid.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ConfirmSuggestion(ctx context.Context, req *connect.Request[ConfirmSuggestionRequest]) (*connect.Response[SuggestionResponse], error) {
	return c.confirm.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ClearSuggestionStatus(ctx context.Context, req *connect.Request[ClearSuggestionStatusRequest]) (*connect.Response[SuggestionResponse], error) {
	return c.clear.CallUnary(ctx, req)
}

// UnimplementedSettlementServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedSettlementServiceHandler struct{}

func (UnimplementedSettlementServiceHandler) GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return nil, unimplemented(SettlementServiceGetBalancesProcedure)
}

func (UnimplementedSettlementServiceHandler) GetSuggestions(context.Context, *connect.Request[GetSuggestionsRequest]) (*connect.Response[GetSuggestionsResponse], error) {
	return nil, unimplemented(SettlementServiceGetSuggestionsProcedure)
}

func (UnimplementedSettlementServiceHandler) MarkSuggestionPaid(context.Context, *connect.Request[MarkSuggestionPaidRequest]) (*connect.Response[SuggestionResponse], error) {
	return nil, unimplemented(SettlementServiceMarkSuggestionPaidProcedure)
}

func (UnimplementedSettlementServiceHandler) ConfirmSuggestion(context.Context, *connect.Request[ConfirmSuggestionRequest]) (*connect.Response[SuggestionResponse], error) {
	return nil, unimplemented(SettlementServiceConfirmSuggestionProcedure)
}

func (UnimplementedSettlementServiceHandler) ClearSuggestionStatus(context.Context, *connect.Request[ClearSuggestionStatusRequest]) (*connect.Response[SuggestionResponse], error) {
	return nil, unimplemented(SettlementServiceClearSuggestionStatusProcedure)
}
