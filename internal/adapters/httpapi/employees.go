package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"peopledir/internal/application"
	"peopledir/internal/domain"
	"peopledir/internal/ports"
)

var (
	_ ports.DirectoryAPI   = (*Client)(nil)
	_ ports.HierarchyAPI   = (*Client)(nil)
	_ ports.EmployeeWriter = (*Client)(nil)
)

const (
	pathEmployees   = "/api/employees"
	pathSuggestions = "/api/employees/suggestions"
	pathExport      = "/api/employees/export"
	pathV1Employees = "/api/v1/employees"
)

// listResponse accepts both {data: [...]} and {employees: [...]}
type listResponse struct {
	Data       []domain.Employee `json:"data"`
	Employees  []domain.Employee `json:"employees"`
	Total      *int              `json:"total"`
	Pagination struct {
		TotalItems *int `json:"total_items"`
	} `json:"pagination"`
}

// ListEmployees fetches one page of the directory
func (c *Client) ListEmployees(ctx context.Context, q domain.Query) (domain.DirectoryResult, error) {
	var out listResponse
	if err := c.getJSON(ctx, pathEmployees, q.Values(), &out); err != nil {
		return domain.DirectoryResult{}, err
	}

	items := out.Data
	if items == nil {
		items = out.Employees
	}
	total := len(items)
	switch {
	case out.Pagination.TotalItems != nil:
		total = *out.Pagination.TotalItems
	case out.Total != nil:
		total = *out.Total
	}
	return domain.DirectoryResult{Items: items, TotalCount: total}, nil
}

// Suggestions fetches completions for a partial search term
func (c *Client) Suggestions(ctx context.Context, term string, limit int) ([]domain.Suggestion, error) {
	query := url.Values{}
	query.Set("q", term)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var raw json.RawMessage
	if err := c.getJSON(ctx, pathSuggestions, query, &raw); err != nil {
		return nil, err
	}
	var out []domain.Suggestion
	if err := json.Unmarshal(unwrapData(raw), &out); err != nil {
		return nil, &application.NetworkError{Message: "invalid suggestions: " + err.Error()}
	}
	return out, nil
}

// Export downloads the filtered directory as CSV
func (c *Client) Export(ctx context.Context, q domain.Query, fields []string) (domain.ExportFile, error) {
	query := q.FilterValues()
	if len(fields) > 0 {
		query.Set("fields", strings.Join(fields, ","))
	}
	req, err := c.newRequest(ctx, http.MethodGet, pathExport, query, nil)
	if err != nil {
		return domain.ExportFile{}, err
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.do(req)
	if err != nil {
		return domain.ExportFile{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.ExportFile{}, ctxErr
		}
		return domain.ExportFile{}, &application.NetworkError{Message: err.Error()}
	}

	file := domain.ExportFile{
		Name:        attachmentName(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
		Fields:      fields,
	}
	if file.ContentType == "" {
		file.ContentType = "text/csv"
	}
	if n, err := strconv.Atoi(resp.Header.Get("X-Total-Records")); err == nil {
		file.TotalRecords = n
	}
	if h := resp.Header.Get("X-Exported-Fields"); h != "" {
		file.Fields = splitList(h)
	}
	return file, nil
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Hierarchy fetches the org chart subtree rooted at id
func (c *Client) Hierarchy(ctx context.Context, id domain.EmployeeID, depth int) (*domain.HierarchyNode, error) {
	query := url.Values{}
	if depth > 0 {
		query.Set("depth", strconv.Itoa(depth))
	}
	path := fmt.Sprintf("%s/%s/hierarchy", pathV1Employees, url.PathEscape(id.String()))

	var raw json.RawMessage
	if err := c.getJSON(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	var node domain.HierarchyNode
	if err := json.Unmarshal(unwrapData(raw), &node); err != nil {
		return nil, &application.NetworkError{Message: "invalid hierarchy: " + err.Error()}
	}
	if node.ID == "" {
		node.ID = id
	}
	return &node, nil
}

// SearchEmployees finds employees by name, email or title
func (c *Client) SearchEmployees(ctx context.Context, term string, limit int) ([]domain.Employee, error) {
	query := url.Values{}
	query.Set("q", term)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var raw json.RawMessage
	if err := c.getJSON(ctx, pathV1Employees+"/search", query, &raw); err != nil {
		return nil, err
	}
	var out []domain.Employee
	if err := json.Unmarshal(unwrapData(raw), &out); err != nil {
		return nil, &application.NetworkError{Message: "invalid search results: " + err.Error()}
	}
	return out, nil
}

// CreateEmployee submits a new employee and returns it as stored
func (c *Client) CreateEmployee(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	var raw json.RawMessage
	if err := c.postJSON(ctx, pathEmployees, e, &raw); err != nil {
		return domain.Employee{}, err
	}
	var created domain.Employee
	if err := json.Unmarshal(unwrapData(raw), &created); err != nil {
		return domain.Employee{}, &application.NetworkError{Message: "invalid employee: " + err.Error()}
	}
	return e.Merge(created), nil
}
