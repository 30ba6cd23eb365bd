package domain

// Layer represents one stage of the production pipeline. Layers execute
// in a fixed total order; there is no branching and no skipping.
type Layer string

const (
	LayerIdea              Layer = "idea"
	LayerPromptEngineering Layer = "prompt_engineering"
	LayerVideoGeneration   Layer = "video_generation"
	LayerComposition       Layer = "composition"
	LayerReview            Layer = "review"
	LayerDistribution      Layer = "distribution"
)

// LayerOrder is the fixed execution order of pipeline layers.
var LayerOrder = []Layer{
	LayerIdea,
	LayerPromptEngineering,
	LayerVideoGeneration,
	LayerComposition,
	LayerReview,
	LayerDistribution,
}

// layerTargets maps each layer to the content status reached when the
// layer completes successfully.
var layerTargets = map[Layer]ContentStatus{
	LayerIdea:              ContentStatusIdeaReady,
	LayerPromptEngineering: ContentStatusPromptsReady,
	LayerVideoGeneration:   ContentStatusVideoGenerated,
	LayerComposition:       ContentStatusComposed,
	LayerReview:            ContentStatusReviewPending,
	LayerDistribution:      ContentStatusPosted,
}

// LayerTarget returns the content status a layer moves content to on success.
// Parameters:
//   - layer: pipeline layer to look up.
// Returns:
//   - ContentStatus: target status for the layer.
//   - bool: false if the layer is unknown.
func LayerTarget(layer Layer) (ContentStatus, bool) {
	s, ok := layerTargets[layer]
	return s, ok
}

// NextLayer returns the layer that follows lastCompleted in the pipeline
// order. An empty lastCompleted means nothing has run yet, so the first
// layer is returned.
// Parameters:
//   - lastCompleted: most recently completed layer, or "" for none.
// Returns:
//   - Layer: next layer to execute.
//   - bool: false when lastCompleted is the final layer or unknown.
func NextLayer(lastCompleted Layer) (Layer, bool) {
	if lastCompleted == "" {
		return LayerOrder[0], true
	}
	for i, l := range LayerOrder {
		if l == lastCompleted {
			if i+1 < len(LayerOrder) {
				return LayerOrder[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// transitions is the authoritative status edge list. Every status write
// in the system is validated against this table.
var transitions = map[ContentStatus][]ContentStatus{
	ContentStatusCreated:        {ContentStatusIdeaReady, ContentStatusFailed},
	ContentStatusIdeaReady:      {ContentStatusPromptsReady, ContentStatusFailed},
	ContentStatusPromptsReady:   {ContentStatusVideoGenerated, ContentStatusFailed},
	ContentStatusVideoGenerated: {ContentStatusComposed, ContentStatusFailed},
	ContentStatusComposed:       {ContentStatusReviewPending, ContentStatusFailed},
	ContentStatusReviewPending:  {ContentStatusApproved, ContentStatusRejected, ContentStatusFailed},
	ContentStatusApproved:       {ContentStatusPosted, ContentStatusFailed},
	// Reopen edges. Used only by the operator resume path, which restores
	// the status of the last completed layer before normal execution.
	ContentStatusFailed: {
		ContentStatusCreated,
		ContentStatusIdeaReady,
		ContentStatusPromptsReady,
		ContentStatusVideoGenerated,
		ContentStatusComposed,
		ContentStatusReviewPending,
		ContentStatusApproved,
	},
	ContentStatusRejected: {},
	ContentStatusPosted:   {},
}

// CanTransition reports whether moving content from one status to another
// is a legal edge. Terminal statuses (posted, rejected) have no outgoing
// edges.
// Parameters:
//   - from: current content status.
//   - to: requested content status.
// Returns:
//   - bool: true when the edge exists in the transition table.
func CanTransition(from, to ContentStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no outgoing edges.
func IsTerminal(s ContentStatus) bool {
	return len(transitions[s]) == 0
}
