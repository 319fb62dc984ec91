package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/expensecmd/internal/command"
	"github.com/mmynk/expensecmd/internal/models"
)

// CommandServiceName is the fully-qualified name of the command service.
const CommandServiceName = "expensecmd.v1.CommandService"

// Procedure paths, as served on the mux.
const (
	CommandServiceProcessProcedure        = "/expensecmd.v1.CommandService/Process"
	CommandServiceDescribeSchemaProcedure = "/expensecmd.v1.CommandService/DescribeSchema"
)

// maxRequestBytes caps request bodies.
const maxRequestBytes = 64 << 10

type ProcessRequest struct {
	Command string `json:"command"`
}

type ProcessResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	ErrorKind string          `json:"error_kind,omitempty"`
	Group     *models.Group   `json:"group,omitempty"`
	Expense   *models.Expense `json:"expense,omitempty"`
}

type DescribeSchemaRequest struct{}

type DescribeSchemaResponse struct {
	Schema command.Schema `json:"schema"`
}

// CommandServiceHandler is implemented by the server side of the service.
type CommandServiceHandler interface {
	Process(context.Context, *connect.Request[ProcessRequest]) (*connect.Response[ProcessResponse], error)
	DescribeSchema(context.Context, *connect.Request[DescribeSchemaRequest]) (*connect.Response[DescribeSchemaResponse], error)
}

// jsonCodec carries plain Go structs as JSON under the Connect "json" codec name.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// NewCommandServiceHandler returns the path prefix and handler for svc.
func NewCommandServiceHandler(svc CommandServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithReadMaxBytes(maxRequestBytes),
	}, opts...)

	process := connect.NewUnaryHandler(CommandServiceProcessProcedure, svc.Process, opts...)
	describe := connect.NewUnaryHandler(CommandServiceDescribeSchemaProcedure, svc.DescribeSchema, opts...)

	return "/" + CommandServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case CommandServiceProcessProcedure:
			process.ServeHTTP(w, r)
		case CommandServiceDescribeSchemaProcedure:
			describe.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// CommandServiceClient calls the command service.
type CommandServiceClient struct {
	process  *connect.Client[ProcessRequest, ProcessResponse]
	describe *connect.Client[DescribeSchemaRequest, DescribeSchemaResponse]
}

// NewCommandServiceClient creates a client for the service at baseURL.
func NewCommandServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CommandServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &CommandServiceClient{
		process:  connect.NewClient[ProcessRequest, ProcessResponse](httpClient, baseURL+CommandServiceProcessProcedure, opts...),
		describe: connect.NewClient[DescribeSchemaRequest, DescribeSchemaResponse](httpClient, baseURL+CommandServiceDescribeSchemaProcedure, opts...),
	}
}

func (c *CommandServiceClient) Process(ctx context.Context, req *connect.Request[ProcessRequest]) (*connect.Response[ProcessResponse], error) {
	return c.process.CallUnary(ctx, req)
}

func (c *CommandServiceClient) DescribeSchema(ctx context.Context, req *connect.Request[DescribeSchemaRequest]) (*connect.Response[DescribeSchemaResponse], error) {
	return c.describe.CallUnary(ctx, req)
}
