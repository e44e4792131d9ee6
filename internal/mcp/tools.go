// ABOUTME: Tool descriptors, argument coercion, and tools/* dispatch
// ABOUTME: Nine read-only tools over the tenant-scoped tax store

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/taxhelper/tax-gateway/internal/store"
)

// errInvalidArgument marks argument-level failures, distinguishable from
// tool execution failures. Surfaced as CodeInvalidParams.
var errInvalidArgument = errors.New("invalid params")

type toolFunc func(ctx context.Context, args map[string]any) (string, error)

// toolDefinition pairs a tool descriptor with its implementation.
type toolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
	run         toolFunc        `json:"-"`
}

// callToolParams are the params for tools/call.
type callToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// toolResult is the result for tools/call.
type toolResult struct {
	Content []textContent `json:"content"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func textResult(text string) toolResult {
	return toolResult{Content: []textContent{{Type: "text", Text: text}}}
}

var emptySchema = json.RawMessage(`{"type":"object","properties":{}}`)

var yearSchema = json.RawMessage(`{"type":"object","properties":{"year":{"type":"integer","description":"Tax year, e.g. 2023"}},"required":["year"]}`)

// toolDefinitions builds the static tool table. Order is the wire order
// returned by tools/list.
func (s *Server) toolDefinitions() []toolDefinition {
	return []toolDefinition{
		{
			Name:        "get_taxpayer_profile",
			Description: "Get the authenticated taxpayer's profile: name, contact details, and filing status.",
			InputSchema: emptySchema,
			run:         s.runGetTaxpayerProfile,
		},
		{
			Name:        "get_tax_returns",
			Description: "List all of the taxpayer's tax returns, newest year first.",
			InputSchema: emptySchema,
			run:         s.runGetTaxReturns,
		},
		{
			Name:        "get_tax_return_by_year",
			Description: "Get the taxpayer's return for a specific tax year.",
			InputSchema: yearSchema,
			run:         s.runGetTaxReturnByYear,
		},
		{
			Name:        "get_deductions_by_year",
			Description: "List the taxpayer's deductions for a specific tax year.",
			InputSchema: yearSchema,
			run:         s.runGetDeductionsByYear,
		},
		{
			Name:        "get_deductions_by_category",
			Description: "List the taxpayer's deductions in one category across all years.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"category":{"type":"string","description":"Deduction category, e.g. CharitableDonations"}},"required":["category"]}`),
			run:         s.runGetDeductionsByCategory,
		},
		{
			Name:        "get_deduction_totals_by_category",
			Description: "Sum the taxpayer's deduction amounts per category for a tax year.",
			InputSchema: yearSchema,
			run:         s.runGetDeductionTotalsByCategory,
		},
		{
			Name:        "compare_deductions_yearly",
			Description: "Compare the taxpayer's deductions between two tax years.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"year1":{"type":"integer","description":"First tax year"},"year2":{"type":"integer","description":"Second tax year"}},"required":["year1","year2"]}`),
			run:         s.runCompareDeductionsYearly,
		},
		{
			Name:        "get_documents_by_type",
			Description: "List the taxpayer's document metadata of one type, newest upload first.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"type":{"type":"string","description":"Document type, e.g. W2"}},"required":["type"]}`),
			run:         s.runGetDocumentsByType,
		},
		{
			Name:        "get_documents_by_year",
			Description: "List the taxpayer's document metadata for a specific tax year.",
			InputSchema: yearSchema,
			run:         s.runGetDocumentsByYear,
		},
	}
}

// handleToolsList handles tools/list requests.
func (s *Server) handleToolsList(w http.ResponseWriter, req JSONRPCRequest) {
	s.sendResult(w, req.ID, map[string]any{"tools": s.tools})
}

// handleToolsCall handles tools/call requests.
func (s *Server) handleToolsCall(ctx context.Context, w http.ResponseWriter, req JSONRPCRequest) {
	var params callToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.sendError(w, http.StatusOK, req.ID, CodeInvalidParams, "invalid params")
			return
		}
	}
	if params.Name == "" {
		s.sendError(w, http.StatusOK, req.ID, CodeInvalidParams, "tool name is required")
		return
	}

	var tool *toolDefinition
	for i := range s.tools {
		if s.tools[i].Name == params.Name {
			tool = &s.tools[i]
			break
		}
	}
	if tool == nil {
		s.sendError(w, http.StatusOK, req.ID, CodeInvalidParams, "unknown tool: "+params.Name)
		return
	}

	args := params.Arguments
	if args == nil {
		args = map[string]any{}
	}

	text, err := tool.run(ctx, args)
	if err != nil {
		s.handleToolError(w, req.ID, params.Name, err)
		return
	}

	s.logger.Debug("tools/call complete", "tool_name", params.Name)
	s.sendResult(w, req.ID, textResult(text))
}

// handleToolError maps tool failures to JSON-RPC error codes. Argument and
// domain validation problems carry their message through; anything else is
// logged in full and surfaced generically.
func (s *Server) handleToolError(w http.ResponseWriter, id json.RawMessage, toolName string, err error) {
	switch {
	case errors.Is(err, errInvalidArgument),
		errors.Is(err, store.ErrInvalidYear),
		errors.Is(err, store.ErrInvalidCategory),
		errors.Is(err, store.ErrInvalidDocType):
		s.logger.Debug("tool argument rejected", "tool_name", toolName, "error", err)
		s.sendError(w, http.StatusOK, id, CodeInvalidParams, err.Error())
	default:
		s.logger.Error("tool execution failed", "tool_name", toolName, "error", err)
		s.sendError(w, http.StatusOK, id, CodeInternalError, "tool execution failed")
	}
}

// intArg pulls a required integer argument. JSON numbers arrive as float64;
// fractional values are rejected rather than truncated.
func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing required argument %q", errInvalidArgument, key)
	}
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return 0, fmt.Errorf("%w: argument %q must be an integer", errInvalidArgument, key)
	}
	return int(f), nil
}

// stringArg pulls a required string argument.
func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: missing required argument %q", errInvalidArgument, key)
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: argument %q must be a string", errInvalidArgument, key)
	}
	return str, nil
}

func (s *Server) runGetTaxpayerProfile(ctx context.Context, _ map[string]any) (string, error) {
	profile, err := s.store.GetProfile(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return "No taxpayer profile found for your account.", nil
	}
	if err != nil {
		return "", err
	}
	return renderProfile(profile), nil
}

func (s *Server) runGetTaxReturns(ctx context.Context, _ map[string]any) (string, error) {
	returns, err := s.store.GetReturns(ctx)
	if err != nil {
		return "", err
	}
	if len(returns) == 0 {
		return "No tax returns found for your account.", nil
	}
	return renderReturns(returns), nil
}

func (s *Server) runGetTaxReturnByYear(ctx context.Context, args map[string]any) (string, error) {
	year, err := intArg(args, "year")
	if err != nil {
		return "", err
	}
	ret, err := s.store.GetReturnByYear(ctx, year)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("No tax return found for %d.", year), nil
	}
	if err != nil {
		return "", err
	}
	return renderReturn(ret), nil
}

func (s *Server) runGetDeductionsByYear(ctx context.Context, args map[string]any) (string, error) {
	year, err := intArg(args, "year")
	if err != nil {
		return "", err
	}
	deductions, err := s.store.GetDeductionsByYear(ctx, year)
	if err != nil {
		return "", err
	}
	if len(deductions) == 0 {
		return fmt.Sprintf("No deductions found for %d.", year), nil
	}
	return renderDeductions(fmt.Sprintf("Deductions for %d", year), deductions), nil
}

func (s *Server) runGetDeductionsByCategory(ctx context.Context, args map[string]any) (string, error) {
	raw, err := stringArg(args, "category")
	if err != nil {
		return "", err
	}
	category, err := store.ParseCategory(raw)
	if err != nil {
		return "", err
	}
	deductions, err := s.store.GetDeductionsByCategory(ctx, category)
	if err != nil {
		return "", err
	}
	if len(deductions) == 0 {
		return fmt.Sprintf("No %s deductions found.", category), nil
	}
	return renderDeductions(fmt.Sprintf("%s deductions", category), deductions), nil
}

func (s *Server) runGetDeductionTotalsByCategory(ctx context.Context, args map[string]any) (string, error) {
	year, err := intArg(args, "year")
	if err != nil {
		return "", err
	}
	totals, err := s.store.GetDeductionTotalsByCategory(ctx, year)
	if err != nil {
		return "", err
	}
	if len(totals) == 0 {
		return fmt.Sprintf("No deductions found for %d.", year), nil
	}
	return renderTotals(year, totals), nil
}

func (s *Server) runCompareDeductionsYearly(ctx context.Context, args map[string]any) (string, error) {
	year1, err := intArg(args, "year1")
	if err != nil {
		return "", err
	}
	year2, err := intArg(args, "year2")
	if err != nil {
		return "", err
	}
	byYear, err := s.store.CompareDeductionsYearly(ctx, year1, year2)
	if err != nil {
		return "", err
	}
	if len(byYear) == 0 {
		return fmt.Sprintf("No deductions found for %d or %d.", year1, year2), nil
	}
	return renderComparison(year1, year2, byYear), nil
}

func (s *Server) runGetDocumentsByType(ctx context.Context, args map[string]any) (string, error) {
	raw, err := stringArg(args, "type")
	if err != nil {
		return "", err
	}
	docType, err := store.ParseDocumentType(raw)
	if err != nil {
		return "", err
	}
	documents, err := s.store.GetDocumentsByType(ctx, docType)
	if err != nil {
		return "", err
	}
	if len(documents) == 0 {
		return fmt.Sprintf("No %s documents found.", docType), nil
	}
	return renderDocuments(fmt.Sprintf("%s documents", docType), documents), nil
}

func (s *Server) runGetDocumentsByYear(ctx context.Context, args map[string]any) (string, error) {
	year, err := intArg(args, "year")
	if err != nil {
		return "", err
	}
	documents, err := s.store.GetDocumentsByYear(ctx, year)
	if err != nil {
		return "", err
	}
	if len(documents) == 0 {
		return fmt.Sprintf("No documents found for %d.", year), nil
	}
	return renderDocuments(fmt.Sprintf("Documents for %d", year), documents), nil
}
