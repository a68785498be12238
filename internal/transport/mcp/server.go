package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-faster/errors"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"clickup-mcp/internal/application/service"
	"clickup-mcp/internal/infrastructure/metrics"
)

// Services are the application services the tools call into.
type Services struct {
	Workspace *service.WorkspaceService
	Folders   *service.FolderService
	Lists     *service.ListService
	Tags      *service.TagService
	Tasks     *service.TaskService
}

// Options configures the MCP server identity.
type Options struct {
	Name    string
	Version string
}

// Server wraps the MCP server with workspace, folder, list, tag and task tools.
type Server struct {
	mcpServer        *server.MCPServer
	workspaceService *service.WorkspaceService
	folderService    *service.FolderService
	listService      *service.ListService
	tagService       *service.TagService
	taskService      *service.TaskService
	metrics          *metrics.Metrics
	tracer           trace.Tracer
	logger           *slog.Logger
	now              func() time.Time
}

// NewServer creates a new MCP server with all tools. m may be nil.
func NewServer(opts Options, services Services, m *metrics.Metrics, logger *slog.Logger) *Server {
	mcpServer := server.NewMCPServer(
		opts.Name,
		opts.Version,
		server.WithLogging(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s := &Server{
		mcpServer:        mcpServer,
		workspaceService: services.Workspace,
		folderService:    services.Folders,
		listService:      services.Lists,
		tagService:       services.Tags,
		taskService:      services.Tasks,
		metrics:          m,
		tracer:           otel.Tracer("clickup-mcp/internal/transport/mcp"),
		logger:           logger,
		now:              time.Now,
	}

	s.registerTools()

	return s
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP serves the streamable HTTP transport on addr until ctx is done.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.mcpServer)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start(addr)
	}()
	s.logger.Info("serving MCP over HTTP", "address", addr)

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http transport")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	// Workspace
	s.registerGetWorkspaceHierarchy()

	// Folders
	s.registerCreateFolder()
	s.registerGetFolder()
	s.registerUpdateFolder()
	s.registerDeleteFolder()

	// Lists
	s.registerCreateList()
	s.registerCreateListInFolder()
	s.registerGetList()
	s.registerUpdateList()
	s.registerDeleteList()

	// Tags
	s.registerGetSpaceTags()
	s.registerCreateSpaceTag()
	s.registerUpdateSpaceTag()
	s.registerDeleteSpaceTag()
	s.registerAddTagToTask()
	s.registerRemoveTagFromTask()

	// Tasks
	s.registerCreateTask()
	s.registerGetTask()
	s.registerGetTasks()
	s.registerGetWorkspaceTasks()
	s.registerUpdateTask()
	s.registerMoveTask()
	s.registerDuplicateTask()
	s.registerDeleteTask()
	s.registerGetTaskComments()
	s.registerCreateTaskComment()

	// Bulk
	s.registerCreateBulkTasks()
	s.registerUpdateBulkTasks()
	s.registerMoveBulkTasks()
	s.registerDeleteBulkTasks()
}
