package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// outputDoc is the Firestore representation of model.EvaluatorOutput
type outputDoc struct {
	Evaluator         string         `firestore:"Evaluator"`
	Role              string         `firestore:"Role"`
	Scores            map[string]int `firestore:"Scores"`
	FailureModes      []string       `firestore:"FailureModes"`
	Pivots            []string       `firestore:"Pivots"`
	Confidence        float64        `firestore:"Confidence"`
	DissentingOpinion string         `firestore:"DissentingOpinion"`
	Reasoning         string         `firestore:"Reasoning"`
}

// dimensionDoc is the Firestore representation of model.DimensionVerdict.
// Contributors are stored by evaluator name and relinked on read.
type dimensionDoc struct {
	Dimension    string   `firestore:"Dimension"`
	Score        int      `firestore:"Score"`
	Reasoning    string   `firestore:"Reasoning"`
	FailureModes []string `firestore:"FailureModes"`
	Perspective  string   `firestore:"Perspective"`
	Evaluators   []string `firestore:"Evaluators"`
}

type experimentDoc struct {
	Title           string `firestore:"Title"`
	Hypothesis      string `firestore:"Hypothesis"`
	Method          string `firestore:"Method"`
	SuccessCriteria string `firestore:"SuccessCriteria"`
	EstimatedCost   string `firestore:"EstimatedCost"`
	EstimatedTime   string `firestore:"EstimatedTime"`
}

// verdictDoc is the Firestore document representation of model.RunVerdict
type verdictDoc struct {
	ID                string          `firestore:"ID"`
	Proposal          string          `firestore:"Proposal"`
	ConsensusScore    float64         `firestore:"ConsensusScore"`
	Decision          string          `firestore:"Decision"`
	Evaluations       []outputDoc     `firestore:"Evaluations"`
	DimensionVerdicts []dimensionDoc  `firestore:"DimensionVerdicts"`
	Debates           []string        `firestore:"Debates"`
	Pivots            []string        `firestore:"Pivots"`
	Experiments       []experimentDoc `firestore:"Experiments"`
	CriticalRisks     []string        `firestore:"CriticalRisks"`
	MinorityReport    string          `firestore:"MinorityReport"`
	RefinedProposal   string          `firestore:"RefinedProposal"`
	CreatedAt         time.Time       `firestore:"CreatedAt"`
}

func toOutputDoc(o *model.EvaluatorOutput) outputDoc {
	scores := make(map[string]int, len(o.Scores))
	for dim, s := range o.Scores {
		scores[dim.String()] = s
	}
	return outputDoc{
		Evaluator:         o.Evaluator,
		Role:              o.Role,
		Scores:            scores,
		FailureModes:      o.FailureModes,
		Pivots:            o.Pivots,
		Confidence:        o.Confidence,
		DissentingOpinion: o.DissentingOpinion,
		Reasoning:         o.Reasoning,
	}
}

func fromOutputDoc(d *outputDoc) *model.EvaluatorOutput {
	scores := make(map[types.Dimension]int, len(d.Scores))
	for dim, s := range d.Scores {
		scores[types.Dimension(dim)] = s
	}
	return &model.EvaluatorOutput{
		Evaluator:         d.Evaluator,
		Role:              d.Role,
		Scores:            scores,
		FailureModes:      d.FailureModes,
		Pivots:            d.Pivots,
		Confidence:        d.Confidence,
		DissentingOpinion: d.DissentingOpinion,
		Reasoning:         d.Reasoning,
	}
}

func toVerdictDoc(v *model.RunVerdict) *verdictDoc {
	evaluations := make([]outputDoc, 0, len(v.Evaluations))
	for _, o := range v.Evaluations {
		evaluations = append(evaluations, toOutputDoc(o))
	}

	dims := make([]dimensionDoc, 0, len(v.DimensionVerdicts))
	for _, d := range v.DimensionVerdicts {
		names := make([]string, 0, len(d.Evaluations))
		for _, o := range d.Evaluations {
			names = append(names, o.Evaluator)
		}
		dims = append(dims, dimensionDoc{
			Dimension:    d.Dimension.String(),
			Score:        d.Score,
			Reasoning:    d.Reasoning,
			FailureModes: d.FailureModes,
			Perspective:  d.Perspective,
			Evaluators:   names,
		})
	}

	experiments := make([]experimentDoc, 0, len(v.Experiments))
	for _, e := range v.Experiments {
		experiments = append(experiments, experimentDoc(e))
	}

	return &verdictDoc{
		ID:                v.ID.String(),
		Proposal:          v.Proposal,
		ConsensusScore:    v.ConsensusScore,
		Decision:          v.Decision.String(),
		Evaluations:       evaluations,
		DimensionVerdicts: dims,
		Debates:           v.Debates,
		Pivots:            v.Pivots,
		Experiments:       experiments,
		CriticalRisks:     v.CriticalRisks,
		MinorityReport:    v.MinorityReport,
		RefinedProposal:   v.RefinedProposal,
		CreatedAt:         v.CreatedAt,
	}
}

func fromVerdictDoc(d *verdictDoc) *model.RunVerdict {
	evaluations := make([]*model.EvaluatorOutput, 0, len(d.Evaluations))
	byName := make(map[string]*model.EvaluatorOutput, len(d.Evaluations))
	for i := range d.Evaluations {
		o := fromOutputDoc(&d.Evaluations[i])
		evaluations = append(evaluations, o)
		byName[o.Evaluator] = o
	}

	dims := make([]*model.DimensionVerdict, 0, len(d.DimensionVerdicts))
	for _, dd := range d.DimensionVerdicts {
		contributors := make([]*model.EvaluatorOutput, 0, len(dd.Evaluators))
		for _, name := range dd.Evaluators {
			if o, ok := byName[name]; ok {
				contributors = append(contributors, o)
			}
		}
		dims = append(dims, &model.DimensionVerdict{
			Dimension:    types.Dimension(dd.Dimension),
			Score:        dd.Score,
			Reasoning:    dd.Reasoning,
			FailureModes: dd.FailureModes,
			Perspective:  dd.Perspective,
			Evaluations:  contributors,
		})
	}

	experiments := make([]model.Experiment, 0, len(d.Experiments))
	for _, e := range d.Experiments {
		experiments = append(experiments, model.Experiment(e))
	}

	return &model.RunVerdict{
		ID:                model.VerdictID(d.ID),
		Proposal:          d.Proposal,
		ConsensusScore:    d.ConsensusScore,
		Decision:          types.Decision(d.Decision),
		Evaluations:       evaluations,
		DimensionVerdicts: dims,
		Debates:           d.Debates,
		Pivots:            d.Pivots,
		Experiments:       experiments,
		CriticalRisks:     d.CriticalRisks,
		MinorityReport:    d.MinorityReport,
		RefinedProposal:   d.RefinedProposal,
		CreatedAt:         d.CreatedAt,
	}
}

type verdictRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newVerdictRepository(client *firestore.Client) *verdictRepository {
	return &verdictRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *verdictRepository) verdictsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_verdicts"
	}
	return "verdicts"
}

func (r *verdictRepository) Put(ctx context.Context, verdict *model.RunVerdict) error {
	if verdict.ID == "" {
		return goerr.New("verdict ID is required")
	}

	docRef := r.client.Collection(r.verdictsCollection()).Doc(verdict.ID.String())
	if _, err := docRef.Set(ctx, toVerdictDoc(verdict)); err != nil {
		return goerr.Wrap(err, "failed to put verdict", goerr.V("verdictID", verdict.ID))
	}
	return nil
}

func (r *verdictRepository) Get(ctx context.Context, id model.VerdictID) (*model.RunVerdict, error) {
	doc, err := r.client.Collection(r.verdictsCollection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrVerdictNotFound, "verdict not found", goerr.V("verdictID", id))
		}
		return nil, goerr.Wrap(err, "failed to get verdict", goerr.V("verdictID", id))
	}

	var d verdictDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal verdict", goerr.V("verdictID", id))
	}
	return fromVerdictDoc(&d), nil
}

func (r *verdictRepository) List(ctx context.Context, limit int) ([]*model.RunVerdict, error) {
	query := r.client.Collection(r.verdictsCollection()).OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	verdicts := make([]*model.RunVerdict, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate verdicts")
		}

		var d verdictDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal verdict", goerr.V("docID", doc.Ref.ID))
		}
		verdicts = append(verdicts, fromVerdictDoc(&d))
	}

	return verdicts, nil
}
