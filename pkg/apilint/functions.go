package apilint

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/daveshanley/vacuum/model"
	"go.yaml.in/yaml/v4"
)

// This file mirrors the convention rules as vacuum custom functions so the
// same checks run inside a vacuum ruleset next to its built-in OpenAPI
// rules. Only the checks vacuum cannot express natively are duplicated
// here; PGL001/002/003/007/008/011/022 map onto vacuum's own operation,
// casing and resolver rules. vacuum hands rule functions go.yaml.in/yaml/v4
// nodes rather than the engine's yaml.v3 ones, hence the y-prefixed second
// set of node helpers.

// specRule adapts a plain check function to vacuum's RuleFunction
// interface, so each mirrored check below is just a function over the
// spec root.
type specRule struct {
	name     string
	category string
	check    func(root *yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult
}

func (r *specRule) GetSchema() model.RuleFunctionSchema {
	return model.RuleFunctionSchema{Name: r.name}
}

func (r *specRule) GetCategory() string { return r.category }

func (r *specRule) RunRule(nodes []*yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult {
	root := rootNode(nodes)
	if root == nil {
		return nil
	}
	return r.check(root, ctx)
}

// CustomFunctions returns the custom vacuum rule functions keyed by the
// name a ruleset references in its then.function field.
func CustomFunctions() map[string]model.RuleFunction {
	rules := []*specRule{
		{"checkSchemaRef", model.CategoryOperations, vacuumSchemaRef},
		{"checkPaginationParams", model.CategoryOperations, vacuumPaginationParams},
		{"checkCollectionOrdering", model.CategoryOperations, vacuumCollectionOrdering},
		{"checkSecuredEndpoint401", model.CategorySecurity, vacuumSecuredEndpoint401},
		{"checkPaginatedSchema", model.CategorySchemas, vacuumPaginatedSchema},
		{"checkPostCreateStatus", model.CategoryOperations, vacuumPostCreateStatus},
		{"checkMutatingOps403", model.CategorySecurity, vacuumMutatingOps403},
		{"checkGetResource404", model.CategoryOperations, vacuumGetResource404},
		{"checkCreateRequestRequired", model.CategorySchemas, vacuumCreateRequestRequired},
		{"checkErrorSchemaRef", model.CategoryOperations, vacuumErrorSchemaRef},
		{"checkEnumMinValues", model.CategorySchemas, vacuumEnumMinValues},
		{"checkDeleteReturns204", model.CategoryOperations, vacuumDeleteReturns204},
		{"checkPaginationSchemaMatch", model.CategoryOperations, vacuumPaginationSchemaMatch},
		{"checkDiscriminatorRequired", model.CategorySchemas, vacuumDiscriminatorRequired},
		{"checkReadOnlySystemFields", model.CategorySchemas, vacuumReadOnlySystemFields},
	}
	out := make(map[string]model.RuleFunction, len(rules))
	for _, r := range rules {
		out[r.name] = r
	}
	return out
}

// vacuumSeverities mirrors the engine's default severities per vacuum rule id.
var vacuumSeverities = map[string]Severity{
	"check-schema-ref":              SeverityWarning,
	"check-pagination-params":       SeverityError,
	"check-collection-ordering":     SeverityInfo,
	"check-secured-endpoint-401":    SeverityWarning,
	"check-paginated-schema":        SeverityError,
	"check-post-create-status":      SeverityWarning,
	"check-mutating-ops-403":        SeverityWarning,
	"check-get-resource-404":        SeverityWarning,
	"check-create-request-required": SeverityWarning,
	"check-error-schema-ref":        SeverityWarning,
	"check-enum-min-values":         SeverityInfo,
	"check-delete-returns-204":      SeverityWarning,
	"check-pagination-schema-match": SeverityWarning,
	"check-discriminator-required":  SeverityInfo,
	"check-read-only-system-fields": SeverityInfo,
}

// RunVacuum applies every custom vacuum function to the spec at path and
// returns the findings as Violations sorted by line. Inline apilint:ignore
// comments are an engine feature and are not honoured on this path.
func RunVacuum(path string) ([]Violation, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the caller
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	var vs []Violation
	for _, fn := range CustomFunctions() {
		for _, r := range fn.RunRule([]*yaml.Node{&doc}, model.RuleFunctionContext{}) {
			line := 0
			if r.StartNode != nil {
				line = int(r.StartNode.Line)
			}
			sev, ok := vacuumSeverities[r.RuleId]
			if !ok {
				sev = SeverityWarning
			}
			vs = append(vs, Violation{File: path, Line: line, RuleID: r.RuleId, Severity: sev, Message: r.Message})
		}
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].Line < vs[j].Line })
	return vs, nil
}

// === yaml/v4 helpers ===

func yGet(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// eachPair visits every key/value pair of a mapping node. Non-mapping
// nodes are silently skipped.
func eachPair(m *yaml.Node, fn func(key string, keyNode, val *yaml.Node)) {
	if m == nil || m.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		fn(m.Content[i].Value, m.Content[i], m.Content[i+1])
	}
}

func forEachOp(root *yaml.Node, fn func(path, method string, op *yaml.Node)) {
	eachPair(yGet(root, "paths"), func(path string, _, item *yaml.Node) {
		eachPair(item, func(method string, _, op *yaml.Node) {
			if httpMethods[method] {
				fn(path, method, op)
			}
		})
	})
}

// yOpLabel names an operation for a finding: the operationId when
// present, otherwise "method /path".
func yOpLabel(op *yaml.Node, method, path string) string {
	if id := yGet(op, "operationId"); id != nil && id.Value != "" {
		return id.Value
	}
	return method + " " + path
}

func hasGlobalSecurity(root *yaml.Node) bool {
	sec := yGet(root, "security")
	return sec != nil && len(sec.Content) > 0
}

// optsOutOfSecurity reports whether the operation disables auth with an
// explicit empty security array.
func optsOutOfSecurity(op *yaml.Node) bool {
	sec := yGet(op, "security")
	return sec != nil && len(sec.Content) == 0
}

func rootNode(nodes []*yaml.Node) *yaml.Node {
	if len(nodes) == 0 {
		return nil
	}
	n := nodes[0]
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return n.Content[0]
	}
	return n
}

// refLeaf returns the schema name at the end of a $ref pointer.
func refLeaf(ref string) string {
	parts := strings.Split(ref, "/")
	return parts[len(parts)-1]
}

func makeResult(msg, path, ruleID string, node *yaml.Node, ctx model.RuleFunctionContext) model.RuleFunctionResult {
	return model.RuleFunctionResult{
		Message:   msg,
		Path:      path,
		RuleId:    ruleID,
		StartNode: node,
		EndNode:   node,
		Rule:      ctx.Rule,
	}
}

// findInlineSchema digs into content/application+json and returns the
// schema node when it is declared inline rather than via $ref.
func findInlineSchema(obj *yaml.Node) *yaml.Node {
	schema := yGet(yGet(yGet(obj, "content"), "application/json"), "schema")
	if schema == nil || yGet(schema, "$ref") != nil {
		return nil
	}
	return schema
}

func getResponseSchemaRef(op *yaml.Node, status string) string {
	resp := yGet(yGet(op, "responses"), status)
	ref := yGet(yGet(yGet(yGet(resp, "content"), "application/json"), "schema"), "$ref")
	if ref == nil {
		return ""
	}
	return ref.Value
}

// yPaginationParams reports whether the operation (or its path item)
// declares the max_results and page_token query parameters, directly or
// through component refs.
func yPaginationParams(root *yaml.Node, path string, op *yaml.Node) (hasMaxResults, hasPageToken bool) {
	scan := func(params *yaml.Node) {
		if params == nil {
			return
		}
		for _, p := range params.Content {
			if p.Kind != yaml.MappingNode {
				continue
			}
			if name := yGet(p, "name"); name != nil {
				if name.Value == "max_results" {
					hasMaxResults = true
				}
				if name.Value == "page_token" {
					hasPageToken = true
				}
			}
			if ref := yGet(p, "$ref"); ref != nil {
				if strings.HasSuffix(ref.Value, "/MaxResults") {
					hasMaxResults = true
				}
				if strings.HasSuffix(ref.Value, "/PageToken") {
					hasPageToken = true
				}
			}
		}
	}
	scan(yGet(op, "parameters"))
	scan(yGet(yGet(yGet(root, "paths"), path), "parameters"))
	return
}

// === mirrored checks ===

// PGL004: response and request schemas must use $ref.
func vacuumSchemaRef(root *yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult {
	var results []model.RuleFunctionResult
	forEachOp(root, func(path, method string, op *yaml.Node) {
		label := yOpLabel(op, method, path)
		eachPair(yGet(op, "responses"), func(status string, _, resp *yaml.Node) {
			if n := findInlineSchema(resp); n != nil {
				results = append(results, makeResult(
					fmt.Sprintf("operation %q response %s uses inline schema instead of $ref", label, status),
					fmt.Sprintf("$.paths.%s.%s.responses.%s", path, method, status),
					"check-schema-ref", n, ctx))
			}
		})
		if n := findInlineSchema(yGet(op, "requestBody")); n != nil {
			results = append(results, makeResult(
				fmt.Sprintf("operation %q requestBody uses inline schema instead of $ref", label),
				fmt.Sprintf("$.paths.%s.%s.requestBody", path, method),
				"check-schema-ref", n, ctx))
		}
	})
	return results
}

// PGL005: endpoints returning Paginated* must take MaxResults and PageToken.
func vacuumPaginationParams(root *yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult {
	var results []model.RuleFunctionResult
	forEachOp(root, func(path, method string, op *yaml.Node) {
		if method != "get" {
			return
		}
		ref := getResponseSchemaRef(op, "200")
		if ref == "" || !strings.HasPrefix(refLeaf(ref), "Paginated") {
			return
		}
		hasMax, hasPage := yPaginationParams(root, path, op)
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
		results = append(results, makeResult(
			fmt.Sprintf("paginated endpoint %q missing %s parameters", yOpLabel(op, method, path), strings.Join(missing, ", ")),
			fmt.Sprintf("$.paths.%s.get", path),
			"check-pagination-params", op, ctx))
	})
	return results
}

// PGL006: on collection paths, GET is declared before POST.
func vacuumCollectionOrdering(root *yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult {
	var results []model.RuleFunctionResult
	eachPair(yGet(root, "paths"), func(path string, _, item *yaml.Node) {
		var getLine, postLine int
		var postKey *yaml.Node
		eachPair(item, func(method string, key, _ *yaml.Node) {
			switch method {
			case "get":
				getLine = int(key.Line)
			case "post":
				postLine = int(key.Line)
				postKey = key
			}
		})
		if getLine > 0 && postLine > 0 && postLine < getLine {
			results = append(results, makeResult(
				fmt.Sprintf("on %q, POST (line %d) is declared before GET (line %d)", path, postLine, getLine),
				fmt.Sprintf("$.paths.%s", path),
				"check-collection-ordering", postKey, ctx))
		}
	})
	return results
}

// PGL009: with global security in force, operations must document 401.
func vacuumSecuredEndpoint401(root *yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult {
	if !hasGlobalSecurity(root) {
		return nil
	}
	var results []model.RuleFunctionResult
	forEachOp(root, func(path, method string, op *yaml.Node) {
		if optsOutOfSecurity(op) {
			return
		}
		responses := yGet(op, "responses")
		if responses == nil || yGet(responses, "401") != nil {
			return
		}
		results = append(results, makeResult(
			fmt.Sprintf("operation %q has global security but no 401 response", yOpLabel(op, method, path)),
			fmt.Sprintf("$.paths.%s.%s.responses", path, method),
			"check-secured-endpoint-401", responses, ctx))
	})
	return results
}

// PGL010: Paginated* schemas carry data (array) and next_page_token (string).
func vacuumPaginatedSchema(root *yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult {
	var results []model.RuleFunctionResult
	eachPair(yGet(yGet(root, "components"), "schemas"), func(name string, _, schema *yaml.Node) {
		if !strings.HasPrefix(name, "Paginated") {
			return
		}
		props := yGet(schema, "properties")
		if props == nil {
			results = append(results, makeResult(
				fmt.Sprintf("paginated schema %q has no properties", name),
				fmt.Sprintf("$.components.schemas.%s", name),
				"check-paginated-schema", schema, ctx))
			return
		}
		if data := yGet(props, "data"); data == nil {
			results = append(results, makeResult(
				fmt.Sprintf("paginated schema %q missing 'data' field", name),
				fmt.Sprintf("$.components.schemas.%s", name),
				"check-paginated-schema", schema, ctx))
		} else if typeNode := yGet(data, "type"); typeNode == nil || typeNode.Value != "array" {
			results = append(results, makeResult(
				fmt.Sprintf("paginated schema %q 'data' field must be type: array", name),
				fmt.Sprintf("$.components.schemas.%s.properties.data", name),
				"check-paginated-schema", data, ctx))
		}
		if npt := yGet(props, "next_page_token"); npt == nil {
			results = append(results, makeResult(
				fmt.Sprintf("paginated schema %q missing 'next_page_token' field", name),
				fmt.Sprintf("$.components.schemas.%s", name),
				"check-paginated-schema", schema, ctx))
		} else if typeNode := yGet(npt, "type"); typeNode == nil || typeNode.Value != "string" {
			results = append(results, makeResult(
				fmt.Sprintf("paginated schema %q 'next_page_token' field must be type: string", name),
				fmt.Sprintf("$.components.schemas.%s.properties.next_page_token", name),
				"check-paginated-schema", npt, ctx))
		}
	})
	return results
}

// PGL012: POST creates return 201, action verbs excepted.
func vacuumPostCreateStatus(root *yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult {
	var results []model.RuleFunctionResult
	forEachOp(root, func(path, method string, op *yaml.Node) {
		if method != "post" {
			return
		}
		opID := yGet(op, "operationId")
		if opID != nil && actionVerbs[opID.Value] {
			return
		}
		responses := yGet(op, "responses")
		if responses == nil {
			return
		}
		if yGet(responses, "200") != nil && yGet(responses, "201") == nil {
			results = append(results, makeResult(
				fmt.Sprintf("POST operation %q returns 200 instead of 201", yOpLabel(op, method, path)),
				fmt.Sprintf("$.paths.%s.post.responses", path),
				"check-post-create-status", responses, ctx))
		}
	})
	return results
}

// PGL013: secured mutating operations document 403.
func vacuumMutatingOps403(root *yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult {
	if !hasGlobalSecurity(root) {
		return nil
	}
	var results []model.RuleFunctionResult
	forEachOp(root, func(path, method string, op *yaml.Node) {
		if !mutatingMethods[method] || optsOutOfSecurity(op) {
			return
		}
		responses := yGet(op, "responses")
		if responses == nil || yGet(responses, "403") != nil {
			return
		}
		results = append(results, makeResult(
			fmt.Sprintf("mutating operation %q should include a 403 response", yOpLabel(op, method, path)),
			fmt.Sprintf("$.paths.%s.%s.responses", path, method),
			"check-mutating-ops-403", responses, ctx))
	})
	return results
}

// PGL014: GETs on parameterised paths document 404.
func vacuumGetResource404(root *yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult {
	var results []model.RuleFunctionResult
	forEachOp(root, func(path, method string, op *yaml.Node) {
		if method != "get" || !strings.Contains(path, "{") {
			return
		}
		responses := yGet(op, "responses")
		if responses == nil || yGet(responses, "404") != nil {
			return
		}
		results = append(results, makeResult(
			fmt.Sprintf("GET operation %q on resource path should include 404 response", yOpLabel(op, method, path)),
			fmt.Sprintf("$.paths.%s.get.responses", path),
			"check-get-resource-404", responses, ctx))
	})
	return results
}

// PGL015: Create*/Register* request schemas declare required fields.
func vacuumCreateRequestRequired(root *yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult {
	var results []model.RuleFunctionResult
	eachPair(yGet(yGet(root, "components"), "schemas"), func(name string, _, schema *yaml.Node) {
		if !strings.HasSuffix(name, "Request") {
			return
		}
		if !strings.HasPrefix(name, "Create") && !strings.HasPrefix(name, "Register") {
			return
		}
		if yGet(schema, "required") == nil {
			results = append(results, makeResult(
				fmt.Sprintf("schema %q should have a 'required' array", name),
				fmt.Sprintf("$.components.schemas.%s", name),
				"check-create-request-required", schema, ctx))
		}
	})
	return results
}

// PGL016: non-2xx responses reference the shared Error schema.
func vacuumErrorSchemaRef(root *yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult {
	var results []model.RuleFunctionResult
	forEachOp(root, func(path, method string, op *yaml.Node) {
		label := yOpLabel(op, method, path)
		eachPair(yGet(op, "responses"), func(status string, _, resp *yaml.Node) {
			if strings.HasPrefix(status, "2") {
				return
			}
			schema := yGet(yGet(yGet(resp, "content"), "application/json"), "schema")
			if schema == nil {
				return
			}
			ref := yGet(schema, "$ref")
			if ref == nil || !strings.HasSuffix(ref.Value, "/Error") {
				results = append(results, makeResult(
					fmt.Sprintf("operation %q response %s should reference Error schema", label, status),
					fmt.Sprintf("$.paths.%s.%s.responses.%s", path, method, status),
					"check-error-schema-ref", schema, ctx))
			}
		})
	})
	return results
}

// PGL017: enums declare at least two values.
func vacuumEnumMinValues(root *yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult {
	var results []model.RuleFunctionResult

	var walk func(n *yaml.Node, context string)
	walk = func(n *yaml.Node, context string) {
		if n == nil {
			return
		}
		if n.Kind == yaml.MappingNode {
			enumNode := yGet(n, "enum")
			if enumNode != nil && enumNode.Kind == yaml.SequenceNode && len(enumNode.Content) < 2 {
				results = append(results, makeResult(
					fmt.Sprintf("enum%s has only %d value(s)", context, len(enumNode.Content)),
					"$",
					"check-enum-min-values", enumNode, ctx))
			}
		}
		for _, c := range n.Content {
			walk(c, context)
		}
	}

	eachPair(yGet(yGet(root, "components"), "schemas"), func(name string, _, schema *yaml.Node) {
		walk(schema, fmt.Sprintf(" in schema %q", name))
	})
	walk(yGet(root, "paths"), "")
	return results
}

// PGL018: DELETE operations document 204.
func vacuumDeleteReturns204(root *yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult {
	var results []model.RuleFunctionResult
	forEachOp(root, func(path, method string, op *yaml.Node) {
		if method != "delete" {
			return
		}
		responses := yGet(op, "responses")
		if responses == nil || yGet(responses, "204") != nil {
			return
		}
		results = append(results, makeResult(
			fmt.Sprintf("DELETE operation %q should include a 204 response", yOpLabel(op, method, path)),
			fmt.Sprintf("$.paths.%s.delete.responses", path),
			"check-delete-returns-204", responses, ctx))
	})
	return results
}

// PGL019: operations taking pagination params return a Paginated* schema.
func vacuumPaginationSchemaMatch(root *yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult {
	var results []model.RuleFunctionResult
	forEachOp(root, func(path, method string, op *yaml.Node) {
		if method != "get" {
			return
		}
		hasMax, hasPage := yPaginationParams(root, path, op)
		if !hasMax && !hasPage {
			return
		}
		ref := getResponseSchemaRef(op, "200")
		if ref == "" {
			return
		}
		if schemaName := refLeaf(ref); !strings.HasPrefix(schemaName, "Paginated") {
			results = append(results, makeResult(
				fmt.Sprintf("GET operation %q has pagination params but response references %q (not Paginated*)", yOpLabel(op, method, path), schemaName),
				fmt.Sprintf("$.paths.%s.get", path),
				"check-pagination-schema-match", op, ctx))
		}
	})
	return results
}

// PGL020: oneOf/anyOf unions carry a discriminator.
func vacuumDiscriminatorRequired(root *yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult {
	var results []model.RuleFunctionResult
	eachPair(yGet(yGet(root, "components"), "schemas"), func(name string, _, schema *yaml.Node) {
		if schema.Kind != yaml.MappingNode {
			return
		}
		for _, combiner := range []string{"oneOf", "anyOf"} {
			list := yGet(schema, combiner)
			if list == nil || list.Kind != yaml.SequenceNode || len(list.Content) < 2 {
				continue
			}
			if yGet(schema, "discriminator") == nil {
				results = append(results, makeResult(
					fmt.Sprintf("schema %q uses %s without a discriminator", name, combiner),
					fmt.Sprintf("$.components.schemas.%s", name),
					"check-discriminator-required", schema, ctx))
			}
		}
	})
	return results
}

// PGL021: server-owned fields are marked readOnly.
func vacuumReadOnlySystemFields(root *yaml.Node, ctx model.RuleFunctionContext) []model.RuleFunctionResult {
	var results []model.RuleFunctionResult
	eachPair(yGet(yGet(root, "components"), "schemas"), func(name string, _, schema *yaml.Node) {
		eachPair(yGet(schema, "properties"), func(propName string, propKey, propSchema *yaml.Node) {
			if !systemFields[propName] || propSchema.Kind != yaml.MappingNode {
				return
			}
			ro := yGet(propSchema, "readOnly")
			if ro == nil || ro.Value != "true" {
				results = append(results, makeResult(
					fmt.Sprintf("schema %q property %q should be readOnly: true", name, propName),
					fmt.Sprintf("$.components.schemas.%s.properties.%s", name, propName),
					"check-read-only-system-fields", propKey, ctx))
			}
		})
	})
	return results
}
