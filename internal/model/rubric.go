package model

// Rubric dimension names, in report order.
const (
	DimClarity          = "clarity"
	DimStructure        = "structure"
	DimDepthSpecificity = "depth_specificity"
	DimRoleFit          = "role_fit"
	DimTechnical        = "technical"
	DimCommunication    = "communication"
	DimOwnership        = "ownership"
)

// RubricDimensions lists the seven scored facets of a text answer.
var RubricDimensions = []string{
	DimClarity,
	DimStructure,
	DimDepthSpecificity,
	DimRoleFit,
	DimTechnical,
	DimCommunication,
	DimOwnership,
}

// RubricScore is the seven-dimension text assessment plus the prose the
// scorer derives from it. Every dimension is bounded to [0,5].
type RubricScore struct {
	Clarity          float64 `json:"clarity" bson:"clarity"`
	Structure        float64 `json:"structure" bson:"structure"`
	DepthSpecificity float64 `json:"depthSpecificity" bson:"depth_specificity"`
	RoleFit          float64 `json:"roleFit" bson:"role_fit"`
	Technical        float64 `json:"technical" bson:"technical"`
	Communication    float64 `json:"communication" bson:"communication"`
	Ownership        float64 `json:"ownership" bson:"ownership"`

	Rationale       string   `json:"rationale" bson:"rationale"`
	ActionItems     []string `json:"actionItems" bson:"action_items"`
	ExemplarSnippet string   `json:"exemplarSnippet,omitempty" bson:"exemplar_snippet,omitempty"`
}

// Dimensions returns the scored facets keyed by dimension name.
func (r *RubricScore) Dimensions() map[string]float64 {
	return map[string]float64{
		DimClarity:          r.Clarity,
		DimStructure:        r.Structure,
		DimDepthSpecificity: r.DepthSpecificity,
		DimRoleFit:          r.RoleFit,
		DimTechnical:        r.Technical,
		DimCommunication:    r.Communication,
		DimOwnership:        r.Ownership,
	}
}

// Mean is the unweighted average across the seven dimensions.
func (r *RubricScore) Mean() float64 {
	sum := r.Clarity + r.Structure + r.DepthSpecificity + r.RoleFit +
		r.Technical + r.Communication + r.Ownership
	return sum / float64(len(RubricDimensions))
}
