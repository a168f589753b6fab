package evaluator

import (
	"bytes"
	"embed"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
)

//go:embed prompt/*.md
var promptFS embed.FS

var promptTemplates = template.Must(template.ParseFS(promptFS, "prompt/*.md"))

const (
	formatTemplate  = "format.md"
	userTemplate    = "user.md"
	genericTemplate = "generic.md"
)

// BuildSystemPrompt renders the persona for the evaluator's role followed by
// the response format for dims. Roles without a dedicated persona get a
// generic one built from the identity's role and focus.
func BuildSystemPrompt(id *model.EvaluatorIdentity, dims []types.Dimension) (string, error) {
	persona := promptTemplates.Lookup(id.Role + ".md")
	if persona == nil {
		persona = promptTemplates.Lookup(genericTemplate)
	}

	var buf bytes.Buffer
	if err := persona.Execute(&buf, id); err != nil {
		return "", goerr.Wrap(err, "failed to render persona prompt", goerr.V(model.EvaluatorKey, id.Name))
	}
	buf.WriteString("\n")

	if err := promptTemplates.ExecuteTemplate(&buf, formatTemplate, struct {
		Dimensions []types.Dimension
	}{Dimensions: dims}); err != nil {
		return "", goerr.Wrap(err, "failed to render format prompt", goerr.V(model.EvaluatorKey, id.Name))
	}

	return buf.String(), nil
}

// BuildUserPrompt renders the request carrying the proposal text
func BuildUserPrompt(proposal string) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, userTemplate, struct {
		Proposal string
	}{Proposal: proposal}); err != nil {
		return "", goerr.Wrap(err, "failed to render user prompt")
	}
	return buf.String(), nil
}

// BuildResponseSchema creates the JSON schema for structured output.
// Every field except dissenting_opinion is required.
func BuildResponseSchema(dims []types.Dimension) *gollem.Parameter {
	scores := make(map[string]*gollem.Parameter, len(dims))
	for _, dim := range dims {
		scores[dim.String()] = &gollem.Parameter{
			Type:        gollem.TypeInteger,
			Description: "Score from 1 (worst) to 10 (best)",
			Required:    true,
		}
	}

	return &gollem.Parameter{
		Title:       "EvaluatorResponse",
		Description: "Evaluation of a startup concept",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"scores": {
				Type:        gollem.TypeObject,
				Description: "Score per dimension",
				Properties:  scores,
				Required:    true,
			},
			"failure_modes": {
				Type:        gollem.TypeArray,
				Description: "Specific ways the concept could fail",
				Items:       &gollem.Parameter{Type: gollem.TypeString},
				Required:    true,
			},
			"pivots": {
				Type:        gollem.TypeArray,
				Description: "Concrete changes that would improve the concept",
				Items:       &gollem.Parameter{Type: gollem.TypeString},
				Required:    true,
			},
			"confidence": {
				Type:        gollem.TypeNumber,
				Description: "Confidence in this evaluation from 0.0 to 1.0",
				Required:    true,
			},
			"reasoning": {
				Type:        gollem.TypeString,
				Description: "Summary of the analysis",
				Required:    true,
			},
			"dissenting_opinion": {
				Type:        gollem.TypeString,
				Description: "Where this evaluation disagrees with conventional wisdom, if anywhere",
			},
		},
	}
}
