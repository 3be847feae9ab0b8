// Package openapi renders markdown reference docs from the posgate
// OpenAPI contract: one page per tag, one per schema, plus an error-code
// index aggregated across every operation.
package openapi

import (
	"cmp"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// tagDoc groups the endpoints rendered onto one page.
type tagDoc struct {
	Name        string
	Description string
	Endpoints   []endpointDoc
}

// endpointDoc is one operation, flattened to strings so the rendering
// code never touches kin-openapi types.
type endpointDoc struct {
	Method      string
	Path        string
	OperationID string
	Summary     string
	Description string
	Public      bool
	PathParams  []paramDoc
	QueryParams []paramDoc
	RequestBody *requestBodyDoc
	Responses   []responseDoc
}

type paramDoc struct {
	Name        string
	Required    bool
	Type        string
	Description string
}

type requestBodyDoc struct {
	Required     bool
	ContentTypes []string
}

type responseDoc struct {
	Code        string
	Description string
}

// Generate renders the spec at specPath into a markdown tree under
// outDir. The output directory is wiped first; everything in it is
// regenerated output.
func Generate(specPath, outDir string) error {
	spec, err := openapi3.NewLoader().LoadFromFile(specPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", specPath, err)
	}

	if err := os.RemoveAll(outDir); err != nil {
		return fmt.Errorf("reset output dir: %w", err)
	}
	for _, dir := range []string{"endpoints", "schemas"} {
		if err := os.MkdirAll(filepath.Join(outDir, dir), 0o750); err != nil {
			return fmt.Errorf("create %s dir: %w", dir, err)
		}
	}

	tags := collectTags(spec)
	schemaNames := sortedKeys(spec.Components.Schemas)

	for _, tag := range tags {
		if err := writeTagPage(filepath.Join(outDir, "endpoints", fileSlug(tag.Name)+".md"), tag); err != nil {
			return err
		}
	}
	for _, name := range schemaNames {
		if err := writeSchemaPage(filepath.Join(outDir, "schemas", fileSlug(name)+".md"), name, spec.Components.Schemas[name]); err != nil {
			return err
		}
	}
	if err := writeIndexPage(filepath.Join(outDir, "index.md"), spec, tags, schemaNames); err != nil {
		return err
	}
	return writeErrorsPage(filepath.Join(outDir, "errors.md"), tags)
}

// collectTags groups every operation under its tags. Groups come back
// sorted by name, endpoints within a group by path then method.
func collectTags(spec *openapi3.T) []tagDoc {
	descriptions := map[string]string{}
	for _, tag := range spec.Tags {
		descriptions[tag.Name] = strings.TrimSpace(tag.Description)
	}

	grouped := map[string][]endpointDoc{}
	for path, pathItem := range spec.Paths.Map() {
		for method, op := range pathItem.Operations() {
			tags := op.Tags
			if len(tags) == 0 {
				tags = []string{"Untagged"}
			}
			doc := newEndpointDoc(path, method, pathItem, op)
			for _, tag := range tags {
				grouped[tag] = append(grouped[tag], doc)
			}
		}
	}

	out := make([]tagDoc, 0, len(grouped))
	for _, name := range sortedKeys(grouped) {
		endpoints := grouped[name]
		slices.SortFunc(endpoints, compareEndpoints)
		out = append(out, tagDoc{Name: name, Description: descriptions[name], Endpoints: endpoints})
	}
	return out
}

func newEndpointDoc(path, method string, pathItem *openapi3.PathItem, op *openapi3.Operation) endpointDoc {
	doc := endpointDoc{
		Method:      strings.ToUpper(method),
		Path:        path,
		OperationID: strings.TrimSpace(op.OperationID),
		Summary:     strings.TrimSpace(op.Summary),
		Description: strings.TrimSpace(op.Description),
		// An explicit empty security block opts the operation out of the
		// document-level bearer/API-key requirement.
		Public: op.Security != nil && len(*op.Security) == 0,
	}

	for _, p := range slices.Concat(pathItem.Parameters, op.Parameters) {
		if p == nil || p.Value == nil {
			continue
		}
		pd := paramDoc{
			Name:        p.Value.Name,
			Required:    p.Value.Required,
			Type:        typeOfRef(p.Value.Schema),
			Description: cleanInline(p.Value.Description),
		}
		switch p.Value.In {
		case "path":
			doc.PathParams = append(doc.PathParams, pd)
		case "query":
			doc.QueryParams = append(doc.QueryParams, pd)
		}
	}
	byName := func(a, b paramDoc) int { return strings.Compare(a.Name, b.Name) }
	slices.SortFunc(doc.PathParams, byName)
	slices.SortFunc(doc.QueryParams, byName)

	if body := op.RequestBody; body != nil && body.Value != nil {
		doc.RequestBody = &requestBodyDoc{
			Required:     body.Value.Required,
			ContentTypes: sortedKeys(body.Value.Content),
		}
	}

	for code, response := range op.Responses.Map() {
		desc := ""
		if response != nil && response.Value != nil && response.Value.Description != nil {
			desc = cleanInline(*response.Value.Description)
		}
		doc.Responses = append(doc.Responses, responseDoc{Code: code, Description: desc})
	}
	slices.SortFunc(doc.Responses, compareResponses)

	return doc
}

var methodRank = map[string]int{"GET": 0, "POST": 1, "PUT": 2, "PATCH": 3, "DELETE": 4}

func compareEndpoints(a, b endpointDoc) int {
	if c := strings.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	if c := cmp.Compare(methodRank[a.Method], methodRank[b.Method]); c != 0 {
		return c
	}
	return strings.Compare(a.OperationID, b.OperationID)
}

// compareResponses orders status codes lexically with "default" last.
func compareResponses(a, b responseDoc) int {
	switch {
	case a.Code == b.Code:
		return 0
	case a.Code == "default":
		return 1
	case b.Code == "default":
		return -1
	}
	return strings.Compare(a.Code, b.Code)
}

func writeIndexPage(path string, spec *openapi3.T, tags []tagDoc, schemaNames []string) error {
	var b strings.Builder
	b.WriteString(generatedHeader())
	b.WriteString("# API Reference\n\n")
	if spec.Info != nil && spec.Info.Description != "" {
		b.WriteString(strings.TrimSpace(spec.Info.Description))
		b.WriteString("\n\n")
	}
	b.WriteString("Generated from `internal/api/openapi.yaml`. The live server serves the same contract at `/openapi.json`.\n\n")
	b.WriteString("- [Error Responses](./errors)\n\n")
	b.WriteString("## Endpoint Groups\n\n")
	for _, tag := range tags {
		fmt.Fprintf(&b, "- [%s](./endpoints/%s) (%d operations)\n", tag.Name, fileSlug(tag.Name), len(tag.Endpoints))
	}
	b.WriteString("\n## Schemas\n\n")
	for _, schema := range schemaNames {
		fmt.Fprintf(&b, "- [%s](./schemas/%s)\n", schema, fileSlug(schema))
	}
	return writeFile(path, b.String())
}

// writeErrorsPage aggregates every non-2xx response across the contract
// into one table per status code, so the error surface of the gateway
// can be reviewed in a single place.
func writeErrorsPage(path string, tags []tagDoc) error {
	type occurrence struct {
		Operation   string
		Description string
	}
	byCode := map[string][]occurrence{}
	for _, tag := range tags {
		for _, endpoint := range tag.Endpoints {
			for _, response := range endpoint.Responses {
				if strings.HasPrefix(response.Code, "2") {
					continue
				}
				byCode[response.Code] = append(byCode[response.Code], occurrence{
					Operation:   endpoint.Method + " " + endpoint.Path,
					Description: response.Description,
				})
			}
		}
	}

	var b strings.Builder
	b.WriteString(generatedHeader())
	b.WriteString("# Error Responses\n\n")
	b.WriteString("Non-2xx responses across the whole API, grouped by status code. All error bodies share the `Error` schema.\n\n")

	for _, code := range sortedKeys(byCode) {
		occurrences := byCode[code]
		slices.SortFunc(occurrences, func(a, b occurrence) int { return strings.Compare(a.Operation, b.Operation) })
		fmt.Fprintf(&b, "## %s\n\n", code)
		b.WriteString("| Operation | When |\n| --- | --- |\n")
		for _, o := range occurrences {
			fmt.Fprintf(&b, "| `%s` | %s |\n", o.Operation, tableSafe(o.Description))
		}
		b.WriteString("\n")
	}

	return writeFile(path, b.String())
}

func writeTagPage(path string, tag tagDoc) error {
	var b strings.Builder
	b.WriteString(generatedHeader())
	fmt.Fprintf(&b, "# %s Endpoints\n\n", tag.Name)
	if tag.Description != "" {
		b.WriteString(tag.Description)
		b.WriteString("\n\n")
	}
	for _, endpoint := range tag.Endpoints {
		writeEndpointSection(&b, endpoint)
	}
	return writeFile(path, b.String())
}

func writeEndpointSection(b *strings.Builder, endpoint endpointDoc) {
	fmt.Fprintf(b, "## `%s %s`\n\n", endpoint.Method, endpoint.Path)

	if endpoint.Summary != "" {
		b.WriteString(endpoint.Summary)
		b.WriteString("\n\n")
	}
	if endpoint.Description != "" {
		b.WriteString(endpoint.Description)
		b.WriteString("\n\n")
	}

	if endpoint.OperationID != "" {
		fmt.Fprintf(b, "- Operation ID: `%s`\n", endpoint.OperationID)
	}
	if endpoint.Public {
		b.WriteString("- Auth: none (public endpoint)\n")
	} else {
		b.WriteString("- Auth: bearer token or API key\n")
	}
	b.WriteString("\n")

	if len(endpoint.PathParams) > 0 {
		writeParamTable(b, "Path Parameters", endpoint.PathParams)
	}
	if len(endpoint.QueryParams) > 0 {
		writeParamTable(b, "Query Parameters", endpoint.QueryParams)
	}

	if body := endpoint.RequestBody; body != nil {
		b.WriteString("### Request Body\n\n")
		fmt.Fprintf(b, "- Required: `%t`\n", body.Required)
		if len(body.ContentTypes) > 0 {
			fmt.Fprintf(b, "- Content types: %s\n", codeList(body.ContentTypes))
		}
		b.WriteString("\n")
	}

	if len(endpoint.Responses) > 0 {
		b.WriteString("### Responses\n\n")
		b.WriteString("| Code | Description |\n| --- | --- |\n")
		for _, response := range endpoint.Responses {
			fmt.Fprintf(b, "| `%s` | %s |\n", response.Code, tableSafe(response.Description))
		}
		b.WriteString("\n")
	}
}

func writeSchemaPage(path, name string, ref *openapi3.SchemaRef) error {
	var b strings.Builder
	b.WriteString(generatedHeader())
	fmt.Fprintf(&b, "# Schema: `%s`\n\n", name)

	if ref == nil || ref.Value == nil {
		b.WriteString("Schema definition is missing.\n")
		return writeFile(path, b.String())
	}

	schema := ref.Value
	if schema.Description != "" {
		b.WriteString(cleanInline(schema.Description))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "- Type: `%s`\n", typeOf(schema))
	if len(schema.Required) > 0 {
		required := slices.Sorted(slices.Values(schema.Required))
		fmt.Fprintf(&b, "- Required fields: %s\n", codeList(required))
	}
	b.WriteString("\n")

	if len(schema.Properties) > 0 {
		b.WriteString("## Properties\n\n")
		b.WriteString("| Name | Type | Required | Description |\n| --- | --- | --- | --- |\n")
		for _, propName := range sortedKeys(schema.Properties) {
			propRef := schema.Properties[propName]
			desc := ""
			if propRef != nil && propRef.Value != nil {
				desc = cleanInline(propRef.Value.Description)
			}
			fmt.Fprintf(&b, "| `%s` | `%s` | `%t` | %s |\n",
				propName, typeOfRef(propRef), slices.Contains(schema.Required, propName), tableSafe(desc))
		}
		b.WriteString("\n")
	}

	return writeFile(path, b.String())
}

func writeParamTable(b *strings.Builder, title string, params []paramDoc) {
	fmt.Fprintf(b, "### %s\n\n", title)
	b.WriteString("| Name | Type | Required | Description |\n| --- | --- | --- | --- |\n")
	for _, param := range params {
		fmt.Fprintf(b, "| `%s` | `%s` | `%t` | %s |\n", param.Name, param.Type, param.Required, tableSafe(param.Description))
	}
	b.WriteString("\n")
}

// codeList renders values as a comma-separated run of backticked spans.
func codeList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "`" + v + "`"
	}
	return strings.Join(quoted, ", ")
}

func typeOfRef(ref *openapi3.SchemaRef) string {
	switch {
	case ref == nil:
		return "unknown"
	case ref.Ref != "":
		// Leaf of "#/components/schemas/Name".
		return ref.Ref[strings.LastIndexByte(ref.Ref, '/')+1:]
	case ref.Value == nil:
		return "unknown"
	}
	return typeOf(ref.Value)
}

func typeOf(schema *openapi3.Schema) string {
	if schema == nil || schema.Type == nil || len(*schema.Type) == 0 {
		return "object"
	}
	if (*schema.Type)[0] == "array" {
		if schema.Items != nil {
			return "array[" + typeOfRef(schema.Items) + "]"
		}
		return "array"
	}
	return (*schema.Type)[0]
}

func sortedKeys[T any](m map[string]T) []string {
	return slices.Sorted(maps.Keys(m))
}

// fileSlug turns a tag or schema name into a link-stable file name.
func fileSlug(value string) string {
	isSep := func(r rune) bool {
		return r == ' ' || r == '/' || r == '_' || r == '.' || r == '-'
	}
	return strings.Join(strings.FieldsFunc(strings.ToLower(value), isSep), "-")
}

func generatedHeader() string {
	return "<!-- Code generated by cmd/docsgen. DO NOT EDIT. -->\n\n"
}

// writeFile assumes Generate already created the directory tree.
func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

func cleanInline(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func tableSafe(value string) string {
	value = strings.ReplaceAll(cleanInline(value), "|", "\\|")
	if value == "" {
		return "-"
	}
	return value
}
