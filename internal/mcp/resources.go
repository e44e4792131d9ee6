// ABOUTME: Resource catalog and resources/* dispatch over public reference data
// ABOUTME: URIs follow tax://{kind}/{year} and tax://forms/{form}

package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const resourceMIMEType = "application/json"

// resourceDescriptor is one entry in the resources/list catalog.
type resourceDescriptor struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MIMEType    string `json:"mimeType"`
}

// resourceContents is one entry in the resources/read result.
type resourceContents struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType"`
	Text     string `json:"text"`
}

type readResourceParams struct {
	URI string `json:"uri"`
}

// yearKinds maps URI path kinds to human names, in catalog order.
var yearKinds = []struct {
	kind string
	name string
	desc string
}{
	{"rules", "Tax rules", "Eligibility criteria for deductions and credits for tax year %d"},
	{"brackets", "Tax brackets", "Federal marginal tax brackets for tax year %d"},
	{"standard-deductions", "Standard deductions", "Standard deduction amounts by filing status for tax year %d"},
	{"deductions", "Deduction rules", "Rules for claiming each deduction category for tax year %d"},
	{"limits", "Deduction limits", "Caps and floors on deductions for tax year %d"},
}

// handleResourcesList handles resources/list requests. The catalog is every
// published year crossed with each data kind, plus the known forms.
func (s *Server) handleResourcesList(w http.ResponseWriter, req JSONRPCRequest) {
	var resources []resourceDescriptor
	for _, year := range s.refdata.SupportedYears() {
		for _, k := range yearKinds {
			resources = append(resources, resourceDescriptor{
				URI:         fmt.Sprintf("tax://%s/%d", k.kind, year),
				Name:        fmt.Sprintf("%s (%d)", k.name, year),
				Description: fmt.Sprintf(k.desc, year),
				MIMEType:    resourceMIMEType,
			})
		}
	}
	for _, form := range s.refdata.Forms() {
		resources = append(resources, resourceDescriptor{
			URI:         "tax://forms/" + form,
			Name:        "Form instructions: " + form,
			Description: "Line-by-line guidance and common mistakes for form " + form,
			MIMEType:    resourceMIMEType,
		})
	}
	s.sendResult(w, req.ID, map[string]any{"resources": resources})
}

// handleResourcesRead handles resources/read requests.
func (s *Server) handleResourcesRead(w http.ResponseWriter, req JSONRPCRequest) {
	var params readResourceParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.sendError(w, http.StatusOK, req.ID, CodeInvalidParams, "invalid params")
			return
		}
	}
	if params.URI == "" {
		s.sendError(w, http.StatusOK, req.ID, CodeInvalidParams, "resource uri is required")
		return
	}

	payload, ok := s.resolveResource(params.URI)
	if !ok {
		s.sendError(w, http.StatusOK, req.ID, CodeNotFound, "resource not found: "+params.URI)
		return
	}

	text, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		s.logger.Error("failed to marshal resource", "uri", params.URI, "error", err)
		s.sendError(w, http.StatusOK, req.ID, CodeInternalError, "failed to serialize resource")
		return
	}

	s.sendResult(w, req.ID, map[string]any{
		"contents": []resourceContents{{
			URI:      params.URI,
			MIMEType: resourceMIMEType,
			Text:     string(text),
		}},
	})
}

// resolveResource maps a tax:// URI to its payload. Any malformed or unknown
// URI is a plain miss; the caller reports all misses the same way.
func (s *Server) resolveResource(uri string) (any, bool) {
	rest, ok := strings.CutPrefix(uri, "tax://")
	if !ok {
		return nil, false
	}
	kind, key, ok := strings.Cut(rest, "/")
	if !ok || key == "" || strings.Contains(key, "/") {
		return nil, false
	}

	if kind == "forms" {
		form, ok := s.refdata.FormInstructions(key)
		if !ok {
			return nil, false
		}
		return form, true
	}

	year, err := strconv.Atoi(key)
	if err != nil {
		return nil, false
	}
	data, ok := s.refdata.YearData(year)
	if !ok {
		return nil, false
	}

	switch kind {
	case "rules":
		return map[string]any{"year": data.Year, "eligibilityCriteria": data.EligibilityCriteria}, true
	case "brackets":
		return map[string]any{"year": data.Year, "brackets": data.Brackets}, true
	case "standard-deductions":
		return map[string]any{"year": data.Year, "standardDeductions": data.StandardDeductions}, true
	case "deductions":
		return map[string]any{"year": data.Year, "deductionRules": data.DeductionRules}, true
	case "limits":
		return map[string]any{"year": data.Year, "deductionLimits": data.DeductionLimits}, true
	default:
		return nil, false
	}
}
