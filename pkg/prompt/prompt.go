// Package prompt renders the initial user message for a benchmark case.
package prompt

import (
	"bytes"
	"encoding/json"
	"text/template"

	"med-eval/pkg/dataset"
)

func toJson(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var funcMap = template.FuncMap{
	"json": toJson,
}

var initialPromptTemplate = template.Must(template.New("initial").Funcs(funcMap).Parse(`You are an expert in using FHIR functions to assist medical professionals. You are given a question and a set of possible functions. Based on the question, you will need to make one or more function/tool calls to achieve the purpose.

1. If you decide to invoke a GET function, you MUST put it in the format of
GET url?param_name1=param_value1&param_name2=param_value2...

2. If you decide to invoke a POST function, you MUST put it in the format of
POST url
[your payload data in JSON format]

3. If you have got answers for all the questions and finished all the requested tasks, you MUST call to finish the conversation in the format of (make sure the list is JSON loadable.)
FINISH([answer1, answer2, ...])

Your response must be in the format of one of the three cases, and you can call only one function each time. You SHOULD NOT include any other text in the response.

Here is a list of functions in JSON format that you can invoke. Note that you should use {{.APIBase}} as the api_base.
{{.Functions | json}}

Context: {{.Context}}
Question: {{.Question}}`))

type initialPromptData struct {
	APIBase   string
	Functions dataset.Catalog
	Context   string
	Question  string
}

// Initial renders the first user message for c against the given API base.
func Initial(c *dataset.Case, apiBase string, funcs dataset.Catalog) (string, error) {
	var buf bytes.Buffer
	err := initialPromptTemplate.Execute(&buf, initialPromptData{
		APIBase:   apiBase,
		Functions: funcs,
		Context:   c.Context,
		Question:  c.Instruction,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
