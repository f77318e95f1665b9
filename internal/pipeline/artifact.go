// Package pipeline loads and evaluates the pre-trained compatibility
// artifact: a one-hot feature transform plus a gradient-boosted tree
// ensemble, exported offline as a single JSON document. The artifact is
// loaded once, validated against the fixed candidate-row column set,
// and treated as immutable afterwards, so concurrent prediction calls
// need no locking.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"

	"sharespace/internal/matching"
)

var (
	ErrArtifactMissing = errors.New("pipeline artifact missing")
	ErrArtifactInvalid = errors.New("pipeline artifact invalid")
)

const featureKindOneHot = "onehot"

// featureSpec describes one model input: either the raw numeric value
// of a column, or a 0/1 indicator for one category of a column.
type featureSpec struct {
	Column   string `json:"column"`
	Kind     string `json:"kind"` // "numeric" | "onehot"
	Category string `json:"category,omitempty"`
}

type treeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
}

type tree struct {
	Nodes []treeNode `json:"nodes"`
}

type artifactDoc struct {
	Version   int           `json:"version"`
	BaseScore float64       `json:"base_score"`
	Columns   []string      `json:"columns"`
	Features  []featureSpec `json:"features"`
	Trees     []tree        `json:"trees"`
}

type Pipeline struct {
	version   int
	baseScore float64
	features  []featureSpec
	trees     []tree
}

// Load reads and validates an artifact. A missing file is reported as
// ErrArtifactMissing so callers can fall back to "personalization
// unavailable" instead of failing startup.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrArtifactMissing
		}
		return nil, err
	}

	var doc artifactDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactInvalid, err)
	}

	if err := validate(doc); err != nil {
		return nil, err
	}

	return &Pipeline{
		version:   doc.Version,
		baseScore: doc.BaseScore,
		features:  doc.Features,
		trees:     doc.Trees,
	}, nil
}

func validate(doc artifactDoc) error {
	if doc.Version <= 0 {
		return fmt.Errorf("%w: missing version", ErrArtifactInvalid)
	}
	if len(doc.Features) == 0 || len(doc.Trees) == 0 {
		return fmt.Errorf("%w: empty features or trees", ErrArtifactInvalid)
	}

	// The artifact must be trained on exactly the columns candidate
	// rows carry; anything else would mis-score silently.
	if !sameColumnSet(doc.Columns, matching.Columns()) {
		return fmt.Errorf("%w: column set does not match candidate rows", ErrArtifactInvalid)
	}

	known := make(map[string]struct{}, len(doc.Columns))
	for _, c := range doc.Columns {
		known[c] = struct{}{}
	}
	for i, f := range doc.Features {
		if _, ok := known[f.Column]; !ok {
			return fmt.Errorf("%w: feature %d references unknown column %q", ErrArtifactInvalid, i, f.Column)
		}
		if f.Kind != "numeric" && f.Kind != featureKindOneHot {
			return fmt.Errorf("%w: feature %d has kind %q", ErrArtifactInvalid, i, f.Kind)
		}
	}

	for ti, t := range doc.Trees {
		for ni, n := range t.Nodes {
			if n.Leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= len(doc.Features) {
				return fmt.Errorf("%w: tree %d node %d feature out of range", ErrArtifactInvalid, ti, ni)
			}
			if n.Left < 0 || n.Left >= len(t.Nodes) || n.Right < 0 || n.Right >= len(t.Nodes) {
				return fmt.Errorf("%w: tree %d node %d child out of range", ErrArtifactInvalid, ti, ni)
			}
		}
	}

	return nil
}

func sameColumnSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func (p *Pipeline) Version() int { return p.version }

// PredictBatch encodes each candidate row through the transform and
// sums tree outputs on top of the base score. Null numeric cells encode
// as 0; null categoricals match no one-hot bucket. The raw output is an
// unbounded regression value; clamping is the scorer's job.
func (p *Pipeline) PredictBatch(rows []matching.Row) ([]float64, error) {
	if p == nil {
		return nil, ErrArtifactMissing
	}

	out := make([]float64, len(rows))
	vec := make([]float64, len(p.features))
	for i, row := range rows {
		if err := p.encode(row, vec); err != nil {
			return nil, err
		}
		out[i] = p.evaluate(vec)
	}
	return out, nil
}

func (p *Pipeline) encode(row matching.Row, vec []float64) error {
	for i, f := range p.features {
		cell, ok := row[f.Column]
		if !ok {
			return fmt.Errorf("%w: row missing column %q", ErrArtifactInvalid, f.Column)
		}

		if f.Kind == featureKindOneHot {
			vec[i] = 0
			if label, ok := cell.Label(); ok && label == f.Category {
				vec[i] = 1
			}
			continue
		}

		n, ok := cell.Num()
		if !ok {
			// Categorical value in a numeric column; zero-fill rather
			// than fail, matching the neutral-default policy.
			n = 0
		}
		vec[i] = n
	}
	return nil
}

func (p *Pipeline) evaluate(vec []float64) float64 {
	sum := p.baseScore
	for _, t := range p.trees {
		sum += evalTree(t, vec)
	}
	return sum
}

func evalTree(t tree, vec []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}
	i := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if vec[n.Feature] < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	// Cycle guard tripped; treat as neutral.
	return 0
}
