package apilint

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// specHeader is a minimal valid document that individual tests extend with a
// paths block. It carries the shared security scheme, pagination parameters
// and schemas most rules look for.
const specHeader = `openapi: 3.1.0
info:
  title: posgate API
  version: "1.0"
security:
  - bearerAuth: []
components:
  securitySchemes:
    bearerAuth:
      type: http
      scheme: bearer
      bearerFormat: JWT
  parameters:
    MaxResults:
      name: max_results
      in: query
      schema:
        type: integer
    PageToken:
      name: page_token
      in: query
      schema:
        type: string
  schemas:
    Error:
      type: object
      properties:
        code:
          type: string
        message:
          type: string
    User:
      type: object
      properties:
        name:
          type: string
    PaginatedUsers:
      type: object
      properties:
        data:
          type: array
          items:
            $ref: '#/components/schemas/User'
        next_page_token:
          type: string
`

func writeTempSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func mustLint(t *testing.T, spec string) []Violation {
	t.Helper()
	l, err := New(writeTempSpec(t, spec))
	require.NoError(t, err)
	return l.Run()
}

func mustLintWithConfig(t *testing.T, spec string, cfg *Config) []Violation {
	t.Helper()
	l, err := New(writeTempSpec(t, spec))
	require.NoError(t, err)
	return l.RunWithConfig(cfg)
}

// findRule returns the violations a single rule produced.
func findRule(vs []Violation, ruleID string) []Violation {
	var out []Violation
	for _, v := range vs {
		if v.RuleID == ruleID {
			out = append(out, v)
		}
	}
	return out
}

func TestNew_FileMissing(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestNew_InvalidYAML(t *testing.T) {
	_, err := New(writeTempSpec(t, "key: [unclosed"))
	require.Error(t, err)
}

func TestNew_EmptyDocument(t *testing.T) {
	_, err := New(writeTempSpec(t, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty or invalid")
}

func TestRun_SparseDocument(t *testing.T) {
	vs := mustLint(t, "openapi: 3.1.0\ninfo:\n  title: t\n  version: \"1\"\n")
	assert.Empty(t, vs)
}

func TestRun_SortedByLine(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      responses:
        "200":
          description: OK
  /v1/groups:
    get:
      responses:
        "200":
          description: OK
`)
	require.NotEmpty(t, vs)
	assert.True(t, sort.SliceIsSorted(vs, func(i, j int) bool { return vs[i].Line < vs[j].Line }))
}

func TestOperationTags(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      operationId: listUsers
      responses:
        "200":
          description: OK
`)
	got := findRule(vs, "PGL001")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "listUsers")
	assert.Equal(t, SeverityError, got[0].Severity)

	vs = mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      operationId: listUsers
      tags: [users]
      responses:
        "200":
          description: OK
`)
	assert.Empty(t, findRule(vs, "PGL001"))
}

func TestOperationIDs_Missing(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      tags: [users]
      responses:
        "200":
          description: OK
`)
	got := findRule(vs, "PGL002")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "missing 'operationId'")
}

func TestOperationIDs_Duplicate(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      operationId: listUsers
      tags: [users]
      responses:
        "200":
          description: OK
  /v1/groups:
    get:
      operationId: listUsers
      tags: [groups]
      responses:
        "200":
          description: OK
`)
	got := findRule(vs, "PGL002")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, `duplicate operationId "listUsers"`)
	assert.Contains(t, got[0].Message, "first seen at line")
}

func TestDeleteRequestBody(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users/{userId}:
    delete:
      operationId: removeUser
      tags: [users]
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/User'
      responses:
        "204":
          description: removed
`)
	got := findRule(vs, "PGL003")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "removeUser")
}

func TestSchemaRefs_InlineResponse(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      operationId: listUsers
      tags: [users]
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                type: object
                properties:
                  name:
                    type: string
`)
	got := findRule(vs, "PGL004")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "response 200 uses inline schema")
}

func TestSchemaRefs_InlineRequestBody(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    post:
      operationId: createUser
      tags: [users]
      requestBody:
        content:
          application/json:
            schema:
              type: object
      responses:
        "201":
          description: created
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/User'
`)
	got := findRule(vs, "PGL004")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "requestBody uses inline schema")
}

func TestSchemaRefs_TextPlainIgnored(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/receipts/{receiptId}:
    get:
      operationId: getReceipt
      tags: [store]
      responses:
        "200":
          description: rendered receipt
          content:
            text/plain:
              schema:
                type: string
        "401":
          description: unauthorized
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Error'
        "404":
          description: not found
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Error'
`)
	assert.Empty(t, findRule(vs, "PGL004"))
}

func TestPaginationParams_Missing(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      operationId: listUsers
      tags: [users]
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/PaginatedUsers'
`)
	got := findRule(vs, "PGL005")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "MaxResults, PageToken")
}

func TestPaginationParams_ByRef(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      operationId: listUsers
      tags: [users]
      parameters:
        - $ref: '#/components/parameters/MaxResults'
        - $ref: '#/components/parameters/PageToken'
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/PaginatedUsers'
`)
	assert.Empty(t, findRule(vs, "PGL005"))
}

func TestPaginationParams_InlineNames(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      operationId: listUsers
      tags: [users]
      parameters:
        - name: max_results
          in: query
          schema:
            type: integer
        - name: page_token
          in: query
          schema:
            type: string
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/PaginatedUsers'
`)
	assert.Empty(t, findRule(vs, "PGL005"))
}

func TestPaginationParams_PathLevel(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    parameters:
      - $ref: '#/components/parameters/MaxResults'
      - $ref: '#/components/parameters/PageToken'
    get:
      operationId: listUsers
      tags: [users]
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/PaginatedUsers'
`)
	assert.Empty(t, findRule(vs, "PGL005"))
}

func TestCollectionOrder(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    post:
      operationId: createUser
      tags: [users]
      responses:
        "201":
          description: created
    get:
      operationId: listUsers
      tags: [users]
      responses:
        "200":
          description: OK
`)
	got := findRule(vs, "PGL006")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "POST")
	assert.Contains(t, got[0].Message, "declared before GET")
	assert.Equal(t, SeverityInfo, got[0].Severity)
}

func TestPathParamCase(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users/{user_id}:
    get:
      operationId: getUser
      tags: [users]
      parameters:
        - name: user_id
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: OK
`)
	got := findRule(vs, "PGL007")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, `"user_id" is not camelCase`)

	vs = mustLint(t, specHeader+`paths:
  /v1/users/{userId}:
    get:
      operationId: getUser
      tags: [users]
      parameters:
        - name: userId
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: OK
`)
	assert.Empty(t, findRule(vs, "PGL007"))
}

func TestQueryParamCase(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      operationId: listUsers
      tags: [users]
      parameters:
        - name: maxResults
          in: query
          schema:
            type: integer
      responses:
        "200":
          description: OK
`)
	got := findRule(vs, "PGL008")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, `"maxResults" is not snake_case`)
}

func TestQueryParamCase_ComponentParameters(t *testing.T) {
	vs := mustLint(t, `openapi: 3.1.0
info:
  title: t
  version: "1"
paths: {}
components:
  parameters:
    BadName:
      name: pageToken
      in: query
      schema:
        type: string
`)
	got := findRule(vs, "PGL008")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, `"pageToken"`)
}

func TestSecured401(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      operationId: listUsers
      tags: [users]
      responses:
        "200":
          description: OK
`)
	got := findRule(vs, "PGL009")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "no 401 response")
}

func TestSecured401_PublicEndpointExempt(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/health:
    get:
      operationId: getHealth
      tags: [system]
      security: []
      responses:
        "200":
          description: OK
`)
	assert.Empty(t, findRule(vs, "PGL009"))
}

func TestSecured401_NoGlobalSecurity(t *testing.T) {
	vs := mustLint(t, `openapi: 3.1.0
info:
  title: t
  version: "1"
paths:
  /v1/users:
    get:
      operationId: listUsers
      tags: [users]
      responses:
        "200":
          description: OK
`)
	assert.Empty(t, findRule(vs, "PGL009"))
}

func TestPaginatedShape(t *testing.T) {
	vs := mustLint(t, `openapi: 3.1.0
info:
  title: t
  version: "1"
paths: {}
components:
  schemas:
    PaginatedProducts:
      type: object
      properties:
        data:
          type: string
`)
	got := findRule(vs, "PGL010")
	require.Len(t, got, 2)
	assert.Contains(t, got[0].Message, "missing 'next_page_token' field")
	assert.Contains(t, got[1].Message, "'data' field must be type: array")
}

func TestPaginatedShape_NoProperties(t *testing.T) {
	vs := mustLint(t, `openapi: 3.1.0
info:
  title: t
  version: "1"
paths: {}
components:
  schemas:
    PaginatedProducts:
      type: object
`)
	got := findRule(vs, "PGL010")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "has no properties")
}

func TestRefsResolve(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      operationId: listUsers
      tags: [users]
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Missing'
`)
	got := findRule(vs, "PGL011")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, `unresolved $ref "#/components/schemas/Missing"`)
}

func TestRefsResolve_ExternalRefIgnored(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      operationId: listUsers
      tags: [users]
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: './common.yaml#/components/schemas/User'
`)
	assert.Empty(t, findRule(vs, "PGL011"))
}

func TestPostCreate201(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    post:
      operationId: createUser
      tags: [users]
      responses:
        "200":
          description: OK
`)
	got := findRule(vs, "PGL012")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, `"createUser" returns 200 instead of 201`)
}

func TestPostCreate201_ActionVerbExempt(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/transactions/{transactionId}/refund:
    post:
      operationId: refundTransaction
      tags: [store]
      responses:
        "200":
          description: refunded
`)
	assert.Empty(t, findRule(vs, "PGL012"))
}

func TestMutating403(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    post:
      operationId: createUser
      tags: [users]
      responses:
        "201":
          description: created
`)
	got := findRule(vs, "PGL013")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "should include a 403 response")
}

func TestMutating403_PublicEndpointExempt(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/auth/login:
    post:
      operationId: login
      tags: [auth]
      security: []
      responses:
        "200":
          description: token issued
`)
	assert.Empty(t, findRule(vs, "PGL013"))
}

func TestResource404(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users/{userId}:
    get:
      operationId: getUser
      tags: [users]
      responses:
        "200":
          description: OK
`)
	got := findRule(vs, "PGL014")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "should include 404 response")
}

func TestResource404_CollectionPathExempt(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      operationId: listUsers
      tags: [users]
      responses:
        "200":
          description: OK
`)
	assert.Empty(t, findRule(vs, "PGL014"))
}

func TestCreateRequired(t *testing.T) {
	vs := mustLint(t, `openapi: 3.1.0
info:
  title: t
  version: "1"
paths: {}
components:
  schemas:
    CreateUserRequest:
      type: object
      properties:
        username:
          type: string
    RegisterTerminalRequest:
      type: object
      properties:
        label:
          type: string
    UpdateUserRequest:
      type: object
      properties:
        username:
          type: string
`)
	got := findRule(vs, "PGL015")
	require.Len(t, got, 2)
	assert.Contains(t, got[0].Message, `"CreateUserRequest"`)
	assert.Contains(t, got[1].Message, `"RegisterTerminalRequest"`)
}

func TestCreateRequired_Declared(t *testing.T) {
	vs := mustLint(t, `openapi: 3.1.0
info:
  title: t
  version: "1"
paths: {}
components:
  schemas:
    CreateUserRequest:
      type: object
      required: [username]
      properties:
        username:
          type: string
`)
	assert.Empty(t, findRule(vs, "PGL015"))
}

func TestErrorSchema(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      operationId: listUsers
      tags: [users]
      responses:
        "200":
          description: OK
        "400":
          description: bad request
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/User'
`)
	got := findRule(vs, "PGL016")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "response 400 should reference Error schema")
}

func TestErrorSchema_ErrorRefClean(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      operationId: listUsers
      tags: [users]
      responses:
        "200":
          description: OK
        "400":
          description: bad request
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Error'
`)
	assert.Empty(t, findRule(vs, "PGL016"))
}

func TestEnumValues(t *testing.T) {
	vs := mustLint(t, `openapi: 3.1.0
info:
  title: t
  version: "1"
paths: {}
components:
  schemas:
    Transaction:
      type: object
      properties:
        kind:
          type: string
          enum: [sale]
`)
	got := findRule(vs, "PGL017")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, `in schema "Transaction"`)
	assert.Contains(t, got[0].Message, "only 1 value(s)")
}

func TestDelete204(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users/{userId}:
    delete:
      operationId: removeUser
      tags: [users]
      responses:
        "200":
          description: removed
`)
	got := findRule(vs, "PGL018")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "should include a 204 response")
}

func TestPaginationMatch(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    get:
      operationId: listUsers
      tags: [users]
      parameters:
        - $ref: '#/components/parameters/MaxResults'
        - $ref: '#/components/parameters/PageToken'
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/User'
`)
	got := findRule(vs, "PGL019")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, `response references "User" (not Paginated*)`)
}

func TestDiscriminator(t *testing.T) {
	vs := mustLint(t, `openapi: 3.1.0
info:
  title: t
  version: "1"
paths: {}
components:
  schemas:
    Alpha:
      type: object
    Beta:
      type: object
    Either:
      oneOf:
        - $ref: '#/components/schemas/Alpha'
        - $ref: '#/components/schemas/Beta'
`)
	got := findRule(vs, "PGL020")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, `"Either" uses oneOf without a discriminator`)
}

func TestDiscriminator_Declared(t *testing.T) {
	vs := mustLint(t, `openapi: 3.1.0
info:
  title: t
  version: "1"
paths: {}
components:
  schemas:
    Alpha:
      type: object
    Beta:
      type: object
    Either:
      oneOf:
        - $ref: '#/components/schemas/Alpha'
        - $ref: '#/components/schemas/Beta'
      discriminator:
        propertyName: kind
`)
	assert.Empty(t, findRule(vs, "PGL020"))
}

func TestReadOnlyFields(t *testing.T) {
	vs := mustLint(t, `openapi: 3.1.0
info:
  title: t
  version: "1"
paths: {}
components:
  schemas:
    Product:
      type: object
      properties:
        id:
          type: string
        created_at:
          type: string
          readOnly: true
        name:
          type: string
`)
	got := findRule(vs, "PGL021")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, `property "id" should be readOnly: true`)
}

func TestPathSegmentCase(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/userProfiles:
    get:
      operationId: listUserProfiles
      tags: [users]
      responses:
        "200":
          description: OK
`)
	got := findRule(vs, "PGL022")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, `segment "userProfiles" is not kebab-case`)
}

func TestPathSegmentCase_ParamsExempt(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/audit-entries/{entryId}:
    get:
      operationId: getAuditEntry
      tags: [audit]
      parameters:
        - name: entryId
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: OK
        "401":
          description: unauthorized
        "404":
          description: not found
`)
	assert.Empty(t, findRule(vs, "PGL022"))
}

// === Inline suppression ===

func TestSuppression_KeyLineComment(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    post:
      operationId: createUser
      tags: [users]
      responses: # apilint:ignore PGL012
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/User'
        "401":
          description: unauthorized
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Error'
        "403":
          description: forbidden
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Error'
`)
	assert.Empty(t, findRule(vs, "PGL012"))
}

func TestSuppression_MultipleIDs(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    post: # apilint:ignore PGL012 PGL013
      operationId: createUser
      tags: [users]
      responses:
        "200":
          description: OK
        "401":
          description: unauthorized
`)
	assert.Empty(t, findRule(vs, "PGL012"))
	assert.Empty(t, findRule(vs, "PGL013"))
}

func TestSuppression_OtherRulesStillFire(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    post: # apilint:ignore PGL013
      operationId: createUser
      tags: [users]
      responses:
        "200":
          description: OK
        "401":
          description: unauthorized
`)
	assert.Empty(t, findRule(vs, "PGL013"))
	assert.Len(t, findRule(vs, "PGL012"), 1)
}

func TestSuppression_OnlyCoversItsOperation(t *testing.T) {
	vs := mustLint(t, specHeader+`paths:
  /v1/users:
    post: # apilint:ignore PGL013
      operationId: createUser
      tags: [users]
      responses:
        "201":
          description: created
        "401":
          description: unauthorized
  /v1/groups:
    post:
      operationId: createGroup
      tags: [groups]
      responses:
        "201":
          description: created
        "401":
          description: unauthorized
`)
	got := findRule(vs, "PGL013")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "createGroup")
}

// === Config ===

func TestConfig_SeverityOverride(t *testing.T) {
	spec := specHeader + `paths:
  /v1/users:
    post:
      operationId: createUser
      tags: [users]
      responses:
        "200":
          description: OK
`
	vs := mustLintWithConfig(t, spec, &Config{Rules: map[string]string{"PGL012": "error"}})
	got := findRule(vs, "PGL012")
	require.Len(t, got, 1)
	assert.Equal(t, SeverityError, got[0].Severity)
	assert.True(t, HasErrors(got))
}

func TestConfig_RuleOff(t *testing.T) {
	spec := specHeader + `paths:
  /v1/users:
    post:
      operationId: createUser
      tags: [users]
      responses:
        "200":
          description: OK
`
	vs := mustLintWithConfig(t, spec, &Config{Rules: map[string]string{"PGL012": "off"}})
	assert.Empty(t, findRule(vs, "PGL012"))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".apilint.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  PGL012: \"off\"\n  PGL006: error\n"), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "off", cfg.Rules["PGL012"])
	assert.Equal(t, "error", cfg.Rules["PGL006"])
}

func TestLoadConfig_UnknownSeverity(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".apilint.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  PGL012: shout\n"), 0o644))
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown severity "shout"`)
}

// === Registry and helpers ===

func TestRegisteredRules(t *testing.T) {
	rules := RegisteredRules()
	require.Len(t, rules, 22)
	seen := map[string]bool{}
	for _, r := range rules {
		assert.NotEmpty(t, r.ID())
		assert.NotEmpty(t, r.Description())
		assert.NotEmpty(t, r.DefaultSeverity())
		assert.False(t, seen[r.ID()], "duplicate rule id %s", r.ID())
		seen[r.ID()] = true
	}
}

func TestFilter_BySeverity(t *testing.T) {
	vs := []Violation{
		{RuleID: "PGL006", Severity: SeverityInfo},
		{RuleID: "PGL012", Severity: SeverityWarning},
		{RuleID: "PGL001", Severity: SeverityError},
	}
	assert.Len(t, Filter(vs, SeverityInfo), 3)
	assert.Len(t, Filter(vs, SeverityWarning), 2)
	assert.Len(t, Filter(vs, SeverityError), 1)
}

func TestHasErrors(t *testing.T) {
	assert.False(t, HasErrors(nil))
	assert.False(t, HasErrors([]Violation{{Severity: SeverityWarning}}))
	assert.True(t, HasErrors([]Violation{{Severity: SeverityWarning}, {Severity: SeverityError}}))
}

func TestViolation_String(t *testing.T) {
	v := Violation{File: "api.yaml", Line: 12, RuleID: "PGL001", Severity: SeverityError, Message: "boom"}
	assert.Equal(t, "api.yaml:12: PGL001 error: boom", v.String())
}

// TestLintActualSpec runs every rule against the repository's real contract.
// The file carries inline waivers for its deliberate exceptions, so a clean
// run is the expected state.
func TestLintActualSpec(t *testing.T) {
	l, err := New(filepath.Join("..", "..", "internal", "api", "openapi.yaml"))
	require.NoError(t, err)
	for _, v := range l.Run() {
		t.Errorf("unexpected violation: %s", v)
	}
}
