package apilint

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// rule adapts a plain check function to the Rule interface so the catalog
// below stays a flat table.
type rule struct {
	id    string
	desc  string
	sev   Severity
	check func(ctx *LintContext) []Violation
}

func (r rule) ID() string                         { return r.id }
func (r rule) Description() string                { return r.desc }
func (r rule) DefaultSeverity() Severity          { return r.sev }
func (r rule) Check(ctx *LintContext) []Violation { return r.check(ctx) }

func init() {
	Register(rule{"PGL001", "every operation declares tags", SeverityError, checkOperationTags})
	Register(rule{"PGL002", "operationId is present and unique", SeverityError, checkOperationIDs})
	Register(rule{"PGL003", "DELETE operations take no request body", SeverityWarning, checkDeleteRequestBody})
	Register(rule{"PGL004", "request and response bodies reference component schemas", SeverityWarning, checkSchemaRefs})
	Register(rule{"PGL005", "paginated GET endpoints take max_results and page_token", SeverityError, checkPaginationParams})
	Register(rule{"PGL006", "GET is declared before POST on collection paths", SeverityInfo, checkCollectionOrder})
	Register(rule{"PGL007", "path parameters are lowerCamelCase", SeverityError, checkPathParamCase})
	Register(rule{"PGL008", "query parameters are snake_case", SeverityError, checkQueryParamCase})
	Register(rule{"PGL009", "secured operations document a 401 response", SeverityWarning, checkSecured401})
	Register(rule{"PGL010", "Paginated* schemas carry data and next_page_token", SeverityError, checkPaginatedShape})
	Register(rule{"PGL011", "local $refs resolve to defined components", SeverityError, checkRefsResolve})
	Register(rule{"PGL012", "POST creation endpoints return 201", SeverityWarning, checkPostCreate201})
	Register(rule{"PGL013", "mutating operations document a 403 response", SeverityWarning, checkMutating403})
	Register(rule{"PGL014", "GET on a resource path documents a 404 response", SeverityWarning, checkResource404})
	Register(rule{"PGL015", "Create*/Register* request schemas declare required fields", SeverityWarning, checkCreateRequired})
	Register(rule{"PGL016", "non-2xx responses reference the Error schema", SeverityWarning, checkErrorSchema})
	Register(rule{"PGL017", "enums carry at least two values", SeverityInfo, checkEnumValues})
	Register(rule{"PGL018", "DELETE operations document a 204 response", SeverityWarning, checkDelete204})
	Register(rule{"PGL019", "pagination parameters imply a Paginated* response", SeverityWarning, checkPaginationMatch})
	Register(rule{"PGL020", "oneOf/anyOf schemas declare a discriminator", SeverityInfo, checkDiscriminator})
	Register(rule{"PGL021", "server-assigned fields are marked readOnly", SeverityInfo, checkReadOnlyFields})
	Register(rule{"PGL022", "path segments are kebab-case", SeverityError, checkPathSegmentCase})
}

// opLabel names an operation for messages, falling back to "method path".
func opLabel(op *yaml.Node, method, path string) string {
	if id := operationID(op); id != "" {
		return id
	}
	return method + " " + path
}

// PGL001: every operation must carry a tags field.
func checkOperationTags(ctx *LintContext) []Violation {
	var vs []Violation
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		if ctx.MapGet(op, "tags") == nil {
			vs = append(vs, ctx.Violation(op.Line, "PGL001", SeverityError,
				fmt.Sprintf("operation %q is missing 'tags' field", opLabel(op, method, path))))
		}
	})
	return vs
}

// PGL002: operationId must be present and unique.
func checkOperationIDs(ctx *LintContext) []Violation {
	var vs []Violation
	seen := map[string]int{} // operationId → first line
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		idNode := ctx.MapGet(op, "operationId")
		if idNode == nil {
			vs = append(vs, ctx.Violation(op.Line, "PGL002", SeverityError,
				fmt.Sprintf("operation %s %s is missing 'operationId'", method, path)))
			return
		}
		if prev, ok := seen[idNode.Value]; ok {
			vs = append(vs, ctx.Violation(idNode.Line, "PGL002", SeverityError,
				fmt.Sprintf("duplicate operationId %q (first seen at line %d)", idNode.Value, prev)))
			return
		}
		seen[idNode.Value] = idNode.Line
	})
	return vs
}

// PGL003: DELETE operations should not take a requestBody.
func checkDeleteRequestBody(ctx *LintContext) []Violation {
	var vs []Violation
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		if method != "delete" {
			return
		}
		if body := ctx.MapGet(op, "requestBody"); body != nil {
			vs = append(vs, ctx.Violation(body.Line, "PGL003", SeverityWarning,
				fmt.Sprintf("DELETE operation %q has a requestBody", opLabel(op, method, path))))
		}
	})
	return vs
}

// inlineJSONSchema returns the schema node of an application/json body that
// does not use $ref, or nil when the body is absent, non-JSON or referenced.
func inlineJSONSchema(ctx *LintContext, obj *yaml.Node) *yaml.Node {
	content := ctx.MapGet(obj, "content")
	appJSON := ctx.MapGet(content, "application/json")
	schema := ctx.MapGet(appJSON, "schema")
	if schema == nil {
		return nil
	}
	if ctx.MapGet(schema, "$ref") == nil {
		return schema
	}
	return nil
}

// PGL004: request and response JSON bodies must reference component schemas
// instead of declaring anonymous inline objects.
func checkSchemaRefs(ctx *LintContext) []Violation {
	var vs []Violation
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		label := opLabel(op, method, path)
		responses := ctx.MapGet(op, "responses")
		if responses != nil {
			for i := 0; i < len(responses.Content)-1; i += 2 {
				statusCode := responses.Content[i].Value
				if n := inlineJSONSchema(ctx, responses.Content[i+1]); n != nil {
					vs = append(vs, ctx.Violation(n.Line, "PGL004", SeverityWarning,
						fmt.Sprintf("operation %q response %s uses inline schema instead of $ref", label, statusCode)))
				}
			}
		}
		if body := ctx.MapGet(op, "requestBody"); body != nil {
			if n := inlineJSONSchema(ctx, body); n != nil {
				vs = append(vs, ctx.Violation(n.Line, "PGL004", SeverityWarning,
					fmt.Sprintf("operation %q requestBody uses inline schema instead of $ref", label)))
			}
		}
	})
	return vs
}

// responseSchemaRef returns the $ref of an operation's response schema for the
// given status code, or "" when there is none.
func responseSchemaRef(ctx *LintContext, op *yaml.Node, status string) string {
	responses := ctx.MapGet(op, "responses")
	resp := ctx.MapGet(responses, status)
	content := ctx.MapGet(resp, "content")
	appJSON := ctx.MapGet(content, "application/json")
	schema := ctx.MapGet(appJSON, "schema")
	ref := ctx.MapGet(schema, "$ref")
	if ref == nil {
		return ""
	}
	return ref.Value
}

// refSchemaName returns the last path segment of a $ref value.
func refSchemaName(ref string) string {
	parts := strings.Split(ref, "/")
	return parts[len(parts)-1]
}

// paginationParams reports whether the operation (or its path item) declares
// the max_results and page_token query parameters, inline or by $ref.
func paginationParams(ctx *LintContext, path string, op *yaml.Node) (hasMaxResults, hasPageToken bool) {
	check := func(params *yaml.Node) {
		if params == nil {
			return
		}
		for _, p := range params.Content {
			if p.Kind != yaml.MappingNode {
				continue
			}
			if nameNode := ctx.MapGet(p, "name"); nameNode != nil {
				if nameNode.Value == "max_results" {
					hasMaxResults = true
				}
				if nameNode.Value == "page_token" {
					hasPageToken = true
				}
			}
			if refNode := ctx.MapGet(p, "$ref"); refNode != nil {
				if strings.HasSuffix(refNode.Value, "/MaxResults") {
					hasMaxResults = true
				}
				if strings.HasSuffix(refNode.Value, "/PageToken") {
					hasPageToken = true
				}
			}
		}
	}
	check(ctx.MapGet(op, "parameters"))
	pathItem := ctx.MapGet(ctx.MapGet(ctx.Root, "paths"), path)
	check(ctx.MapGet(pathItem, "parameters"))
	return
}

// PGL005: GET endpoints returning Paginated* schemas must take the shared
// MaxResults and PageToken parameters.
func checkPaginationParams(ctx *LintContext) []Violation {
	var vs []Violation
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		if method != "get" {
			return
		}
		ref := responseSchemaRef(ctx, op, "200")
		if ref == "" || !strings.HasPrefix(refSchemaName(ref), "Paginated") {
			return
		}
		hasMax, hasPage := paginationParams(ctx, path, op)
		if hasMax && hasPage {
			return
		}
		var missing []string
		if !hasMax {
			missing = append(missing, "MaxResults")
		}
		if !hasPage {
			missing = append(missing, "PageToken")
		}
		vs = append(vs, ctx.Violation(op.Line, "PGL005", SeverityError,
			fmt.Sprintf("paginated endpoint %q missing %s parameters", opLabel(op, method, path), strings.Join(missing, ", "))))
	})
	return vs
}

// PGL006: on collection paths, GET should be declared before POST.
func checkCollectionOrder(ctx *LintContext) []Violation {
	var vs []Violation
	paths := ctx.MapGet(ctx.Root, "paths")
	if paths == nil {
		return nil
	}
	for i := 0; i < len(paths.Content)-1; i += 2 {
		pathItem := paths.Content[i+1]
		getLine, postLine := 0, 0
		for j := 0; j < len(pathItem.Content)-1; j += 2 {
			switch pathItem.Content[j].Value {
			case "get":
				getLine = pathItem.Content[j].Line
			case "post":
				postLine = pathItem.Content[j].Line
			}
		}
		if getLine > 0 && postLine > 0 && postLine < getLine {
			vs = append(vs, ctx.Violation(postLine, "PGL006", SeverityInfo,
				fmt.Sprintf("on %q, POST (line %d) is declared before GET (line %d)", paths.Content[i].Value, postLine, getLine)))
		}
	}
	return vs
}

// forEachParam calls fn for every parameter mapping declared on a path item
// or one of its operations.
func forEachParam(ctx *LintContext, fn func(p *yaml.Node)) {
	visit := func(params *yaml.Node) {
		if params == nil {
			return
		}
		for _, p := range params.Content {
			if p.Kind == yaml.MappingNode {
				fn(p)
			}
		}
	}
	paths := ctx.MapGet(ctx.Root, "paths")
	if paths == nil {
		return
	}
	for i := 0; i < len(paths.Content)-1; i += 2 {
		pathItem := paths.Content[i+1]
		visit(ctx.MapGet(pathItem, "parameters"))
		for j := 0; j < len(pathItem.Content)-1; j += 2 {
			if httpMethods[pathItem.Content[j].Value] {
				visit(ctx.MapGet(pathItem.Content[j+1], "parameters"))
			}
		}
	}
}

// PGL007: path parameters must be lowerCamelCase.
func checkPathParamCase(ctx *LintContext) []Violation {
	var vs []Violation
	forEachParam(ctx, func(p *yaml.Node) {
		inNode := ctx.MapGet(p, "in")
		if inNode == nil || inNode.Value != "path" {
			return
		}
		nameNode := ctx.MapGet(p, "name")
		if nameNode != nil && !camelCaseRe.MatchString(nameNode.Value) {
			vs = append(vs, ctx.Violation(nameNode.Line, "PGL007", SeverityError,
				fmt.Sprintf("path parameter %q is not camelCase", nameNode.Value)))
		}
	})
	return vs
}

// PGL008: query parameters must be snake_case. Shared component parameters
// are checked too since most endpoints declare theirs by $ref.
func checkQueryParamCase(ctx *LintContext) []Violation {
	var vs []Violation
	checkQuery := func(p *yaml.Node) {
		inNode := ctx.MapGet(p, "in")
		if inNode == nil || inNode.Value != "query" {
			return
		}
		nameNode := ctx.MapGet(p, "name")
		if nameNode != nil && !snakeCaseRe.MatchString(nameNode.Value) {
			vs = append(vs, ctx.Violation(nameNode.Line, "PGL008", SeverityError,
				fmt.Sprintf("query parameter %q is not snake_case", nameNode.Value)))
		}
	}
	compParams := ctx.MapGet(ctx.MapGet(ctx.Root, "components"), "parameters")
	if compParams != nil {
		for i := 0; i < len(compParams.Content)-1; i += 2 {
			checkQuery(compParams.Content[i+1])
		}
	}
	forEachParam(ctx, checkQuery)
	return vs
}

// PGL009: operations behind the document-level security requirement should
// document a 401 response.
func checkSecured401(ctx *LintContext) []Violation {
	if !ctx.HasGlobalSecurity() {
		return nil
	}
	var vs []Violation
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		// An explicit empty security block marks a public endpoint.
		sec := ctx.MapGet(op, "security")
		if sec != nil && len(sec.Content) == 0 {
			return
		}
		responses := ctx.MapGet(op, "responses")
		if responses == nil || ctx.MapGet(responses, "401") != nil {
			return
		}
		vs = append(vs, ctx.Violation(responses.Line, "PGL009", SeverityWarning,
			fmt.Sprintf("operation %q has global security but no 401 response", opLabel(op, method, path))))
	})
	return vs
}

// PGL010: Paginated* response schemas must carry data (array) and
// next_page_token (string).
func checkPaginatedShape(ctx *LintContext) []Violation {
	var vs []Violation
	schemas := ctx.MapGet(ctx.MapGet(ctx.Root, "components"), "schemas")
	if schemas == nil {
		return nil
	}
	for i := 0; i < len(schemas.Content)-1; i += 2 {
		name := schemas.Content[i].Value
		if !strings.HasPrefix(name, "Paginated") {
			continue
		}
		schema := schemas.Content[i+1]
		props := ctx.MapGet(schema, "properties")
		if props == nil {
			vs = append(vs, ctx.Violation(schema.Line, "PGL010", SeverityError,
				fmt.Sprintf("paginated schema %q has no properties", name)))
			continue
		}
		if data := ctx.MapGet(props, "data"); data == nil {
			vs = append(vs, ctx.Violation(schema.Line, "PGL010", SeverityError,
				fmt.Sprintf("paginated schema %q missing 'data' field", name)))
		} else if typeNode := ctx.MapGet(data, "type"); typeNode == nil || typeNode.Value != "array" {
			vs = append(vs, ctx.Violation(data.Line, "PGL010", SeverityError,
				fmt.Sprintf("paginated schema %q 'data' field must be type: array", name)))
		}
		if npt := ctx.MapGet(props, "next_page_token"); npt == nil {
			vs = append(vs, ctx.Violation(schema.Line, "PGL010", SeverityError,
				fmt.Sprintf("paginated schema %q missing 'next_page_token' field", name)))
		} else if typeNode := ctx.MapGet(npt, "type"); typeNode == nil || typeNode.Value != "string" {
			vs = append(vs, ctx.Violation(npt.Line, "PGL010", SeverityError,
				fmt.Sprintf("paginated schema %q 'next_page_token' field must be type: string", name)))
		}
	}
	return vs
}

// PGL011: all local $ref values must resolve to defined components.
func checkRefsResolve(ctx *LintContext) []Violation {
	var vs []Violation
	var walk func(n *yaml.Node)
	walk = func(n *yaml.Node) {
		if n == nil {
			return
		}
		if n.Kind == yaml.MappingNode {
			ref := ctx.MapGet(n, "$ref")
			if ref != nil && !ctx.ResolveRef(ref.Value) {
				vs = append(vs, ctx.Violation(ref.Line, "PGL011", SeverityError,
					fmt.Sprintf("unresolved $ref %q", ref.Value)))
			}
		}
		for _, c := range n.Content {
			walk(c)
		}
	}
	walk(ctx.Root)
	return vs
}

// actionVerbs names the POST endpoints that act on existing state instead of
// creating a resource, so a 200 response is the correct shape for them.
var actionVerbs = map[string]bool{
	"login":              true,
	"adjustStock":        true,
	"setProductActive":   true,
	"awardLoyaltyPoints": true,
	"refundTransaction":  true,
}

// PGL012: POST endpoints that create resources should return 201, not 200.
func checkPostCreate201(ctx *LintContext) []Violation {
	var vs []Violation
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		if method != "post" || actionVerbs[operationID(op)] {
			return
		}
		responses := ctx.MapGet(op, "responses")
		if responses == nil {
			return
		}
		has200 := ctx.MapGet(responses, "200") != nil
		has201 := ctx.MapGet(responses, "201") != nil
		if has200 && !has201 {
			vs = append(vs, ctx.Violation(responses.Line, "PGL012", SeverityWarning,
				fmt.Sprintf("POST operation %q returns 200 instead of 201", opLabel(op, method, path))))
		}
	})
	return vs
}

// mutatingMethods is the set of methods that change state.
var mutatingMethods = map[string]bool{
	"post": true, "put": true, "patch": true, "delete": true,
}

// PGL013: mutating operations behind security should document a 403 response.
// Endpoints deliberately open to every authenticated principal waive this
// inline.
func checkMutating403(ctx *LintContext) []Violation {
	if !ctx.HasGlobalSecurity() {
		return nil
	}
	var vs []Violation
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		if !mutatingMethods[method] {
			return
		}
		sec := ctx.MapGet(op, "security")
		if sec != nil && len(sec.Content) == 0 {
			return
		}
		responses := ctx.MapGet(op, "responses")
		if responses == nil || ctx.MapGet(responses, "403") != nil {
			return
		}
		vs = append(vs, ctx.Violation(responses.Line, "PGL013", SeverityWarning,
			fmt.Sprintf("mutating operation %q should include a 403 response", opLabel(op, method, path))))
	})
	return vs
}

// PGL014: GET on a path with parameters should document a 404 response.
func checkResource404(ctx *LintContext) []Violation {
	var vs []Violation
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		if method != "get" || !strings.Contains(path, "{") {
			return
		}
		responses := ctx.MapGet(op, "responses")
		if responses == nil || ctx.MapGet(responses, "404") != nil {
			return
		}
		vs = append(vs, ctx.Violation(responses.Line, "PGL014", SeverityWarning,
			fmt.Sprintf("GET operation %q on resource path should include 404 response", opLabel(op, method, path))))
	})
	return vs
}

// PGL015: Create* and Register* request schemas should declare a required
// array so clients learn the mandatory fields from the contract.
func checkCreateRequired(ctx *LintContext) []Violation {
	var vs []Violation
	schemas := ctx.MapGet(ctx.MapGet(ctx.Root, "components"), "schemas")
	if schemas == nil {
		return nil
	}
	for i := 0; i < len(schemas.Content)-1; i += 2 {
		name := schemas.Content[i].Value
		if !strings.HasSuffix(name, "Request") {
			continue
		}
		if !strings.HasPrefix(name, "Create") && !strings.HasPrefix(name, "Register") {
			continue
		}
		if ctx.MapGet(schemas.Content[i+1], "required") == nil {
			vs = append(vs, ctx.Violation(schemas.Content[i+1].Line, "PGL015", SeverityWarning,
				fmt.Sprintf("schema %q should have a 'required' array", name)))
		}
	}
	return vs
}

// PGL016: non-2xx JSON responses should reference the shared Error schema.
func checkErrorSchema(ctx *LintContext) []Violation {
	var vs []Violation
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		responses := ctx.MapGet(op, "responses")
		if responses == nil {
			return
		}
		label := opLabel(op, method, path)
		for i := 0; i < len(responses.Content)-1; i += 2 {
			statusCode := responses.Content[i].Value
			if strings.HasPrefix(statusCode, "2") {
				continue
			}
			schema := ctx.MapGet(ctx.MapGet(ctx.MapGet(responses.Content[i+1], "content"), "application/json"), "schema")
			if schema == nil {
				continue
			}
			ref := ctx.MapGet(schema, "$ref")
			if ref == nil || !strings.HasSuffix(ref.Value, "/Error") {
				vs = append(vs, ctx.Violation(schema.Line, "PGL016", SeverityWarning,
					fmt.Sprintf("operation %q response %s should reference Error schema", label, statusCode)))
			}
		}
	})
	return vs
}

// PGL017: enums with fewer than two values are either premature or should be
// a constant.
func checkEnumValues(ctx *LintContext) []Violation {
	var vs []Violation
	var walk func(n *yaml.Node, context string)
	walk = func(n *yaml.Node, context string) {
		if n == nil {
			return
		}
		if n.Kind == yaml.MappingNode {
			enumNode := ctx.MapGet(n, "enum")
			if enumNode != nil && enumNode.Kind == yaml.SequenceNode && len(enumNode.Content) < 2 {
				vs = append(vs, ctx.Violation(enumNode.Line, "PGL017", SeverityInfo,
					fmt.Sprintf("enum%s has only %d value(s)", context, len(enumNode.Content))))
			}
		}
		for _, c := range n.Content {
			walk(c, context)
		}
	}
	schemas := ctx.MapGet(ctx.MapGet(ctx.Root, "components"), "schemas")
	if schemas != nil {
		for i := 0; i < len(schemas.Content)-1; i += 2 {
			walk(schemas.Content[i+1], fmt.Sprintf(" in schema %q", schemas.Content[i].Value))
		}
	}
	walk(ctx.MapGet(ctx.Root, "paths"), "")
	return vs
}

// PGL018: DELETE operations should document a 204 response.
func checkDelete204(ctx *LintContext) []Violation {
	var vs []Violation
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		if method != "delete" {
			return
		}
		responses := ctx.MapGet(op, "responses")
		if responses == nil || ctx.MapGet(responses, "204") != nil {
			return
		}
		vs = append(vs, ctx.Violation(responses.Line, "PGL018", SeverityWarning,
			fmt.Sprintf("DELETE operation %q should include a 204 response", opLabel(op, method, path))))
	})
	return vs
}

// PGL019: a GET that takes pagination parameters should return a Paginated*
// schema; the reverse of PGL005.
func checkPaginationMatch(ctx *LintContext) []Violation {
	var vs []Violation
	ctx.ForEachOperation(func(path, method string, op *yaml.Node) {
		if method != "get" {
			return
		}
		hasMax, hasPage := paginationParams(ctx, path, op)
		if !hasMax && !hasPage {
			return
		}
		ref := responseSchemaRef(ctx, op, "200")
		if ref == "" {
			return
		}
		if name := refSchemaName(ref); !strings.HasPrefix(name, "Paginated") {
			vs = append(vs, ctx.Violation(op.Line, "PGL019", SeverityWarning,
				fmt.Sprintf("GET operation %q has pagination params but response references %q (not Paginated*)", opLabel(op, method, path), name)))
		}
	})
	return vs
}

// PGL020: oneOf/anyOf with two or more branches need a discriminator so
// clients can dispatch without trial decoding.
func checkDiscriminator(ctx *LintContext) []Violation {
	var vs []Violation
	schemas := ctx.MapGet(ctx.MapGet(ctx.Root, "components"), "schemas")
	if schemas == nil {
		return nil
	}
	for i := 0; i < len(schemas.Content)-1; i += 2 {
		name := schemas.Content[i].Value
		schema := schemas.Content[i+1]
		for _, combiner := range []string{"oneOf", "anyOf"} {
			list := ctx.MapGet(schema, combiner)
			if list == nil || list.Kind != yaml.SequenceNode || len(list.Content) < 2 {
				continue
			}
			if ctx.MapGet(schema, "discriminator") == nil {
				vs = append(vs, ctx.Violation(schema.Line, "PGL020", SeverityInfo,
					fmt.Sprintf("schema %q uses %s without a discriminator", name, combiner)))
			}
		}
	}
	return vs
}

// systemFields are assigned by the server and never accepted from clients.
var systemFields = map[string]bool{
	"id": true, "created_at": true, "updated_at": true,
}

// PGL021: server-assigned fields should be marked readOnly so the schemas
// stay safe to reuse in request bodies.
func checkReadOnlyFields(ctx *LintContext) []Violation {
	var vs []Violation
	schemas := ctx.MapGet(ctx.MapGet(ctx.Root, "components"), "schemas")
	if schemas == nil {
		return nil
	}
	for i := 0; i < len(schemas.Content)-1; i += 2 {
		name := schemas.Content[i].Value
		props := ctx.MapGet(schemas.Content[i+1], "properties")
		if props == nil || props.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j < len(props.Content)-1; j += 2 {
			propName := props.Content[j].Value
			if !systemFields[propName] {
				continue
			}
			roNode := ctx.MapGet(props.Content[j+1], "readOnly")
			if roNode == nil || roNode.Value != "true" {
				vs = append(vs, ctx.Violation(props.Content[j].Line, "PGL021", SeverityInfo,
					fmt.Sprintf("schema %q property %q should be readOnly: true", name, propName)))
			}
		}
	}
	return vs
}

// PGL022: static path segments must be kebab-case; {parameters} are exempt.
func checkPathSegmentCase(ctx *LintContext) []Violation {
	var vs []Violation
	paths := ctx.MapGet(ctx.Root, "paths")
	if paths == nil {
		return nil
	}
	for i := 0; i < len(paths.Content)-1; i += 2 {
		keyNode := paths.Content[i]
		for _, seg := range strings.Split(keyNode.Value, "/") {
			if seg == "" || strings.HasPrefix(seg, "{") {
				continue
			}
			if !kebabCaseRe.MatchString(seg) {
				vs = append(vs, ctx.Violation(keyNode.Line, "PGL022", SeverityError,
					fmt.Sprintf("path %q segment %q is not kebab-case", keyNode.Value, seg)))
			}
		}
	}
	return vs
}
