package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"clickup-mcp/internal/domain/workspace"
)

// textPayload is returned verbatim instead of being JSON encoded.
type textPayload string

type validatable interface {
	Validate() error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// handle adapts a typed tool function to an mcp-go handler. It binds and
// validates arguments, then turns the outcome into a result envelope. Tool
// errors never escape as Go errors.
func handle[T any](s *Server, tool string, fn func(ctx context.Context, in *T) (any, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		requestID := uuid.NewString()

		ctx, span := s.tracer.Start(ctx, "tool "+tool, trace.WithAttributes(
			attribute.String("mcp.tool", tool),
			attribute.String("mcp.request_id", requestID),
		))
		defer span.End()

		payload, err := invoke(ctx, request, fn)
		elapsed := time.Since(start)
		s.metrics.ObserveTool(tool, err != nil, elapsed)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.WarnContext(ctx, "tool call failed",
				"tool", tool,
				"request_id", requestID,
				"duration", elapsed,
				"error", err,
			)
			return errorEnvelope(err), nil
		}

		s.logger.DebugContext(ctx, "tool call",
			"tool", tool,
			"request_id", requestID,
			"duration", elapsed,
		)
		if text, ok := payload.(textPayload); ok {
			return mcp.NewToolResultText(string(text)), nil
		}
		return jsonResult(payload)
	}
}

func invoke[T any](ctx context.Context, request mcp.CallToolRequest, fn func(ctx context.Context, in *T) (any, error)) (any, error) {
	var in T
	if err := request.BindArguments(&in); err != nil {
		return nil, workspace.NewValidationError("arguments", "invalid arguments: %v", err)
	}
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	if v, ok := any(&in).(validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return fn(ctx, &in)
}

// validateInput runs struct tag validation and reports the first failure
// as a ValidationError named after the JSON field.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return workspace.NewValidationError("arguments", "invalid arguments: %v", err)
	}

	fe := verrs[0]
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return workspace.NewValidationError(field, "%s is required", field)
	case "min", "gte":
		return workspace.NewValidationError(field, "%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return workspace.NewValidationError(field, "%s must be at most %s", field, fe.Param())
	case "oneof":
		return workspace.NewValidationError(field, "%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "hexcolor":
		return workspace.NewValidationError(field, "%s must be a hex color such as #ff0000", field)
	}
	return workspace.NewValidationError(field, "%s is invalid", field)
}

// fieldPath turns "CreateBulkTasksInput.tasks[2].TaskFields.priority" into
// "tasks[2].priority".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	out := parts[:0]
	for _, p := range parts[1:] {
		if p == "" || (p[0] >= 'A' && p[0] <= 'Z') {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}

// errorEnvelope renders err as {"error": message, ...context}.
func errorEnvelope(err error) *mcp.CallToolResult {
	env := map[string]interface{}{
		"error": err.Error(),
	}

	var (
		validationErr *workspace.ValidationError
		resolutionErr *workspace.ResolutionError
		apiErr        *workspace.APIError
	)
	switch {
	case errors.As(err, &validationErr):
		env["field"] = validationErr.Field
	case errors.As(err, &resolutionErr):
		env["kind"] = resolutionErr.Kind
		env["name"] = resolutionErr.Name
		if resolutionErr.Scope != "" {
			env["scope"] = resolutionErr.Scope
		}
		if len(resolutionErr.Candidates) > 0 {
			env["candidates"] = resolutionErr.Candidates
		}
		if resolutionErr.Hint != "" {
			env["hint"] = resolutionErr.Hint
		}
	case errors.As(err, &apiErr):
		env["status"] = apiErr.StatusCode
		if apiErr.Code != "" {
			env["code"] = apiErr.Code
		}
	}

	jsonBytes, marshalErr := json.MarshalIndent(env, "", "  ")
	if marshalErr != nil {
		return errorResult(err.Error())
	}
	return errorResult(string(jsonBytes))
}

// Helper functions

func jsonResult(data interface{}) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: message,
			},
		},
		IsError: true,
	}
}

// successResult is the payload of mutations that return no entity.
func successResult(message string) map[string]interface{} {
	return map[string]interface{}{
		"success": true,
		"message": message,
	}
}
