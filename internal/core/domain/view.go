package domain

import (
	"fmt"
	"strings"
)

// ViewID enumerates the dashboard views. Exactly one is rendered per request.
type ViewID int

const (
	ViewOverview ViewID = iota
	ViewEvaluation
	ViewPCA
	ViewFeatures
	ViewMoods
	ViewPredict
	ViewInsights
)

// DefaultView is shown when no view is selected.
const DefaultView = ViewOverview

// Views lists every view in navigation order.
var Views = []ViewID{ViewOverview, ViewEvaluation, ViewPCA, ViewFeatures, ViewMoods, ViewPredict, ViewInsights}

var viewSlugs = map[ViewID]string{
	ViewOverview:   "overview",
	ViewEvaluation: "evaluation",
	ViewPCA:        "pca",
	ViewFeatures:   "features",
	ViewMoods:      "moods",
	ViewPredict:    "predict",
	ViewInsights:   "insights",
}

// viewLabels is presentation only; dispatch never looks at it.
var viewLabels = map[ViewID]string{
	ViewOverview:   "📊 Dataset Overview",
	ViewEvaluation: "🎯 Cluster Evaluation",
	ViewPCA:        "📈 PCA Visualization",
	ViewFeatures:   "🎼 Feature Analysis",
	ViewMoods:      "🎶 Mood Recommendation",
	ViewPredict:    "🎧 Predict New Song",
	ViewInsights:   "🧠 Final Insights",
}

// ParseView resolves a URL slug.
func ParseView(slug string) (ViewID, error) {
	want := strings.ToLower(strings.TrimSpace(slug))
	for _, v := range Views {
		if viewSlugs[v] == want {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownView, slug)
}

func (v ViewID) Slug() string  { return viewSlugs[v] }
func (v ViewID) Label() string { return viewLabels[v] }

func (v ViewID) String() string {
	if s, ok := viewSlugs[v]; ok {
		return s
	}
	return fmt.Sprintf("view(%d)", int(v))
}
