package content

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/page.schema.yaml
var pageSchemaYAML []byte

// PageValidator 校验构建出的页面文档结构。
type PageValidator struct {
	schema *gojsonschema.Schema
}

// NewPageValidator 将内嵌的 YAML schema 转为 JSON 后编译。
func NewPageValidator() (*PageValidator, error) {
	var raw interface{}
	if err := yaml.Unmarshal(pageSchemaYAML, &raw); err != nil {
		return nil, fmt.Errorf("parse page schema: %w", err)
	}
	jsonBytes, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode page schema: %w", err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonBytes))
	if err != nil {
		return nil, fmt.Errorf("compile page schema: %w", err)
	}
	return &PageValidator{schema: schema}, nil
}

// Validate 返回所有违反 schema 的字段描述；文档合法时返回 nil。
func (v *PageValidator) Validate(doc []byte) ([]string, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate page: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		field := verr.Field()
		if field == "" {
			field = "root"
		}
		problems = append(problems, field+": "+verr.Description())
	}
	return problems, nil
}

func joinProblems(problems []string) string {
	return strings.Join(problems, "; ")
}
