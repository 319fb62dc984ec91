package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"connectrpc.com/connect"

	"github.com/mmynk/expensecmd/internal/command"
	"github.com/mmynk/expensecmd/internal/middleware"
	"github.com/mmynk/expensecmd/internal/models"
)

// maxCommandRunes bounds the free text accepted per command.
const maxCommandRunes = 2000

// Processor runs commands. *command.Pipeline implements it.
type Processor interface {
	Process(ctx context.Context, text string, actor command.Actor) command.Result
	DescribeSchema() command.Schema
}

// CommandService implements CommandServiceHandler on top of a Processor.
type CommandService struct {
	processor Processor
	logger    *slog.Logger
}

var _ CommandServiceHandler = (*CommandService)(nil)

// NewCommandService creates a CommandService.
func NewCommandService(processor Processor, logger *slog.Logger) *CommandService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandService{processor: processor, logger: logger}
}

// Process runs one command for the authenticated user. Command failures are
// returned in the response body, not as RPC errors.
func (s *CommandService) Process(ctx context.Context, req *connect.Request[ProcessRequest]) (*connect.Response[ProcessResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("no authenticated user"))
	}
	if n := utf8.RuneCountInString(req.Msg.Command); n > maxCommandRunes {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("command is %d characters, limit is %d", n, maxCommandRunes))
	}

	s.logger.DebugContext(ctx, "Process request received", "user_id", userID)

	result := s.processor.Process(ctx, req.Msg.Command, command.Actor{
		UserID:   userID,
		Location: middleware.GetLocation(ctx),
	})

	resp := &ProcessResponse{
		Success:   result.Success,
		Message:   result.Message,
		ErrorKind: string(result.ErrorKind),
	}
	switch data := result.Data.(type) {
	case *models.Group:
		resp.Group = data
	case *models.Expense:
		resp.Expense = data
	}
	return connect.NewResponse(resp), nil
}

// DescribeSchema returns the intent schema.
func (s *CommandService) DescribeSchema(context.Context, *connect.Request[DescribeSchemaRequest]) (*connect.Response[DescribeSchemaResponse], error) {
	return connect.NewResponse(&DescribeSchemaResponse{Schema: s.processor.DescribeSchema()}), nil
}
