// ABOUTME: Prompt templates and prompts/* dispatch
// ABOUTME: Static catalog; arguments are substituted into the rendered text

package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// promptArgument describes one prompt argument for the catalog.
type promptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// promptDefinition pairs a prompt descriptor with its template renderer.
type promptDefinition struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Arguments   []promptArgument `json:"arguments"`
	render      func(args map[string]string) string `json:"-"`
}

type getPromptParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments"`
}

type promptMessage struct {
	Role    string      `json:"role"`
	Content textContent `json:"content"`
}

func promptDefinitions() []promptDefinition {
	return []promptDefinition{
		{
			Name:        "analyze-tax-position",
			Description: "Review the taxpayer's overall position for a tax year using their return, deductions, and the year's reference data.",
			Arguments: []promptArgument{
				{Name: "tax_year", Description: "Tax year to analyze, e.g. 2023", Required: true},
				{Name: "focus_area", Description: "Optional area to emphasize, e.g. deductions or withholding", Required: false},
			},
			render: renderAnalyzeTaxPosition,
		},
		{
			Name:        "deduction-checkup",
			Description: "Check the taxpayer's deductions for a year against category rules, limits, and the standard deduction.",
			Arguments: []promptArgument{
				{Name: "tax_year", Description: "Tax year to check, e.g. 2023", Required: true},
				{Name: "filing_status", Description: "Optional filing status override for the standard deduction comparison", Required: false},
			},
			render: renderDeductionCheckup,
		},
		{
			Name:        "filing-walkthrough",
			Description: "Walk through completing a tax form section by section, flagging common mistakes.",
			Arguments: []promptArgument{
				{Name: "form_number", Description: "Form to walk through; defaults to 1040", Required: false},
			},
			render: renderFilingWalkthrough,
		},
	}
}

// handlePromptsList handles prompts/list requests.
func (s *Server) handlePromptsList(w http.ResponseWriter, req JSONRPCRequest) {
	s.sendResult(w, req.ID, map[string]any{"prompts": s.prompts})
}

// handlePromptsGet handles prompts/get requests.
func (s *Server) handlePromptsGet(w http.ResponseWriter, req JSONRPCRequest) {
	var params getPromptParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.sendError(w, http.StatusOK, req.ID, CodeInvalidParams, "invalid params")
			return
		}
	}
	if params.Name == "" {
		s.sendError(w, http.StatusOK, req.ID, CodeInvalidParams, "prompt name is required")
		return
	}

	var prompt *promptDefinition
	for i := range s.prompts {
		if s.prompts[i].Name == params.Name {
			prompt = &s.prompts[i]
			break
		}
	}
	if prompt == nil {
		s.sendError(w, http.StatusOK, req.ID, CodeInvalidParams, "unknown prompt: "+params.Name)
		return
	}

	args := params.Arguments
	if args == nil {
		args = map[string]string{}
	}
	for _, a := range prompt.Arguments {
		if a.Required && strings.TrimSpace(args[a.Name]) == "" {
			s.sendError(w, http.StatusOK, req.ID, CodeInvalidParams,
				fmt.Sprintf("missing required argument %q for prompt %q", a.Name, prompt.Name))
			return
		}
	}

	s.sendResult(w, req.ID, map[string]any{
		"description": prompt.Description,
		"messages": []promptMessage{{
			Role:    "user",
			Content: textContent{Type: "text", Text: prompt.render(args)},
		}},
	})
}

func renderAnalyzeTaxPosition(args map[string]string) string {
	year := args["tax_year"]
	var b strings.Builder
	fmt.Fprintf(&b, "Please analyze my tax position for %s.\n\n", year)
	fmt.Fprintf(&b, "Use get_tax_return_by_year with year %s for my return, ", year)
	fmt.Fprintf(&b, "get_deductions_by_year and get_deduction_totals_by_category for my deductions, ")
	fmt.Fprintf(&b, "and the tax://brackets/%s and tax://standard-deductions/%s resources for the published figures.\n\n", year, year)
	b.WriteString("Cover: whether my deductions beat the standard deduction, my effective and marginal rates, and anything that looks inconsistent or missing.")
	if focus := strings.TrimSpace(args["focus_area"]); focus != "" {
		fmt.Fprintf(&b, "\n\nPay particular attention to: %s.", focus)
	}
	return b.String()
}

func renderDeductionCheckup(args map[string]string) string {
	year := args["tax_year"]
	var b strings.Builder
	fmt.Fprintf(&b, "Please run a deduction checkup for tax year %s.\n\n", year)
	fmt.Fprintf(&b, "Pull my deductions with get_deductions_by_year (year %s), then check each against the tax://deductions/%s rules and tax://limits/%s caps.\n\n", year, year, year)
	if status := strings.TrimSpace(args["filing_status"]); status != "" {
		fmt.Fprintf(&b, "Compare my itemized total against the standard deduction for filing status %s from tax://standard-deductions/%s.\n\n", status, year)
	} else {
		fmt.Fprintf(&b, "Compare my itemized total against the standard deduction for my filing status (from get_taxpayer_profile) using tax://standard-deductions/%s.\n\n", year)
	}
	b.WriteString("Flag: deductions over a cap, categories that need itemization, and any deduction missing a supporting document (cross-check with get_documents_by_year).")
	return b.String()
}

func renderFilingWalkthrough(args map[string]string) string {
	form := strings.TrimSpace(args["form_number"])
	if form == "" {
		form = "1040"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Please walk me through completing form %s.\n\n", form)
	fmt.Fprintf(&b, "Read the tax://forms/%s resource and go section by section: what the section asks for, where my numbers come from, and the common mistakes to avoid.\n\n", form)
	b.WriteString("Where my own records help, use my profile, returns, and documents to pre-fill what you can, and note the filing deadline at the end.")
	return b.String()
}
