package apidoc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-yaml"
)

// Document はSwagger 2.0ドキュメント。
type Document struct {
	Swagger             string                    `json:"swagger" yaml:"swagger"`
	Info                Info                      `json:"info" yaml:"info"`
	BasePath            string                    `json:"basePath" yaml:"basePath"`
	Consumes            []string                  `json:"consumes" yaml:"consumes"`
	Produces            []string                  `json:"produces" yaml:"produces"`
	SecurityDefinitions map[string]SecurityScheme `json:"securityDefinitions" yaml:"securityDefinitions"`
	Security            []map[string][]string     `json:"security" yaml:"security"`
	Paths               map[string]PathItem       `json:"paths" yaml:"paths"`
	Definitions         map[string]Schema         `json:"definitions" yaml:"definitions"`
}

// Info はドキュメントのinfoオブジェクト。
type Info struct {
	Title          string   `json:"title" yaml:"title"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	TermsOfService string   `json:"termsOfService,omitempty" yaml:"termsOfService,omitempty"`
	Contact        *Contact `json:"contact,omitempty" yaml:"contact,omitempty"`
	License        *License `json:"license,omitempty" yaml:"license,omitempty"`
	Version        string   `json:"version" yaml:"version"`
}

// Contact は連絡先。
type Contact struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// License はライセンス。
type License struct {
	Name string `json:"name" yaml:"name"`
}

// SecurityScheme はセキュリティ定義。
type SecurityScheme struct {
	Type string `json:"type" yaml:"type"`
	Name string `json:"name" yaml:"name"`
	In   string `json:"in" yaml:"in"`
}

// PathItem はHTTPメソッド（小文字）ごとのオペレーション。
type PathItem map[string]Operation

// Operation は1つのAPIオペレーション。
type Operation struct {
	OperationID string              `json:"operationId" yaml:"operationId"`
	Tags        []string            `json:"tags" yaml:"tags"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Responses   map[string]Response `json:"responses" yaml:"responses"`
}

// Parameter はオペレーションのパラメータ。
type Parameter struct {
	Name     string  `json:"name" yaml:"name"`
	In       string  `json:"in" yaml:"in"`
	Required bool    `json:"required" yaml:"required"`
	Type     string  `json:"type,omitempty" yaml:"type,omitempty"`
	Schema   *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Response はレスポンス定義。
type Response struct {
	Description string  `json:"description" yaml:"description"`
	Schema      *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Schema はJSONスキーマの部分集合。
type Schema struct {
	Ref        string            `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Type       string            `json:"type,omitempty" yaml:"type,omitempty"`
	Format     string            `json:"format,omitempty" yaml:"format,omitempty"`
	Required   []string          `json:"required,omitempty" yaml:"required,omitempty"`
	Properties map[string]Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items      *Schema           `json:"items,omitempty" yaml:"items,omitempty"`
	MaxLength  int               `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	ReadOnly   bool              `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
}

// resource はドキュメント化するAPIリソース。
type resource struct {
	// tag はリソース名（posts, users）。
	tag string
	// definition はスキーマ定義名。
	definition string
}

var resources = []resource{
	{tag: "posts", definition: "Post"},
	{tag: "users", definition: "User"},
}

var definitions = map[string]Schema{
	"Post": {
		Type:     "object",
		Required: []string{"title", "content", "pub_date"},
		Properties: map[string]Schema{
			"id":       {Type: "integer", ReadOnly: true},
			"title":    {Type: "string", MaxLength: 200},
			"content":  {Type: "string"},
			"pub_date": {Type: "string", Format: "date-time"},
		},
	},
	"User": {
		Type:     "object",
		Required: []string{"username"},
		Properties: map[string]Schema{
			"url":      {Type: "string", Format: "uri", ReadOnly: true},
			"username": {Type: "string", MaxLength: 150},
			"email":    {Type: "string", Format: "email", MaxLength: 254},
			"is_staff": {Type: "boolean"},
		},
	},
	"TokenRequest": {
		Type:     "object",
		Required: []string{"username", "password"},
		Properties: map[string]Schema{
			"username": {Type: "string"},
			"password": {Type: "string"},
		},
	},
	"Token": {
		Type: "object",
		Properties: map[string]Schema{
			"token": {Type: "string"},
		},
	},
}

// Build はプロジェクト情報と登録済みルートからSwaggerドキュメントを生成する。
// basePath配下のposts・usersリソースと token エンドポイントのみを対象とする。
func Build(p Project, basePath string, routes gin.RoutesInfo) *Document {
	info := Info{
		Title:       p.Name,
		Description: p.Description,
		Version:     p.Version,
	}
	if len(p.Authors) > 0 {
		info.Contact = &Contact{Name: p.Authors[0].Name, Email: p.Authors[0].Email}
	}
	if p.License != "" {
		info.License = &License{Name: p.License}
	}

	doc := &Document{
		Swagger:  "2.0",
		Info:     info,
		BasePath: strings.TrimSuffix(basePath, "/"),
		Consumes: []string{"application/json"},
		Produces: []string{"application/json"},
		SecurityDefinitions: map[string]SecurityScheme{
			"Bearer": {Type: "apiKey", Name: "Authorization", In: "header"},
		},
		Security:    []map[string][]string{{"Bearer": {}}},
		Paths:       map[string]PathItem{},
		Definitions: definitions,
	}

	sorted := make(gin.RoutesInfo, len(routes))
	copy(sorted, routes)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Method < sorted[j].Method
	})

	for _, r := range sorted {
		rel, ok := strings.CutPrefix(r.Path, doc.BasePath)
		if !ok {
			continue
		}
		op, ok := operationFor(r.Method, rel)
		if !ok {
			continue
		}
		path := swaggerPath(rel)
		if doc.Paths[path] == nil {
			doc.Paths[path] = PathItem{}
		}
		doc.Paths[path][strings.ToLower(r.Method)] = op
	}
	return doc
}

// operationFor はルートに対応するオペレーションを返す。
// ドキュメント対象外のルートの場合はfalseを返す。
func operationFor(method, rel string) (Operation, bool) {
	if rel == "/token/" && method == http.MethodPost {
		return Operation{
			OperationID: "token_create",
			Tags:        []string{"token"},
			Description: "ユーザー名とパスワードからBearerトークンを発行する。",
			Parameters: []Parameter{
				{Name: "data", In: "body", Required: true, Schema: &Schema{Ref: "#/definitions/TokenRequest"}},
			},
			Responses: map[string]Response{
				"200": {Description: "", Schema: &Schema{Ref: "#/definitions/Token"}},
				"401": {Description: "認証に失敗"},
			},
		}, true
	}

	for _, res := range resources {
		ref := &Schema{Ref: "#/definitions/" + res.definition}
		list := "/" + res.tag + "/"
		detail := "/" + res.tag + "/:id/"
		idParam := Parameter{Name: "id", In: "path", Required: true, Type: "integer"}
		body := Parameter{Name: "data", In: "body", Required: true, Schema: ref}

		switch {
		case rel == list && method == http.MethodGet:
			return Operation{
				OperationID: res.tag + "_list",
				Tags:        []string{res.tag},
				Responses: map[string]Response{
					"200": {Description: "", Schema: &Schema{Type: "array", Items: ref}},
				},
			}, true
		case rel == list && method == http.MethodPost:
			return Operation{
				OperationID: res.tag + "_create",
				Tags:        []string{res.tag},
				Parameters:  []Parameter{body},
				Responses: map[string]Response{
					"201": {Description: "", Schema: ref},
				},
			}, true
		case rel == detail:
			suffix, hasBody, status := detailOperation(method)
			if suffix == "" {
				return Operation{}, false
			}
			params := []Parameter{idParam}
			if hasBody {
				params = append(params, body)
			}
			resp := Response{Description: "", Schema: ref}
			if status == "204" {
				resp.Schema = nil
			}
			return Operation{
				OperationID: fmt.Sprintf("%s_%s", res.tag, suffix),
				Tags:        []string{res.tag},
				Parameters:  params,
				Responses:   map[string]Response{status: resp},
			}, true
		}
	}
	return Operation{}, false
}

// detailOperation は詳細エンドポイントのメソッドに対応する
// オペレーションIDの接尾辞、リクエストボディの有無、成功ステータスを返す。
func detailOperation(method string) (string, bool, string) {
	switch method {
	case http.MethodGet:
		return "read", false, "200"
	case http.MethodPut:
		return "update", true, "200"
	case http.MethodPatch:
		return "partial_update", true, "200"
	case http.MethodDelete:
		return "delete", false, "204"
	default:
		return "", false, ""
	}
}

// swaggerPath はGinのパスパラメータ表記をSwagger表記に変換する。
func swaggerPath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		if strings.HasPrefix(s, ":") || strings.HasPrefix(s, "*") {
			segs[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segs, "/")
}

// JSON はドキュメントをインデント付きJSONに変換する。
func (d *Document) JSON() ([]byte, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("SwaggerドキュメントのJSON変換に失敗: %w", err)
	}
	return b, nil
}

// YAML はドキュメントをYAMLに変換する。
func (d *Document) YAML() ([]byte, error) {
	b, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("SwaggerドキュメントのYAML変換に失敗: %w", err)
	}
	return b, nil
}
