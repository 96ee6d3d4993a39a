package rest

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type navItem struct {
	Slug   string
	Label  string
	Active bool
}

type selectOption struct {
	Value    string
	Label    string
	Selected bool
}

type sliderField struct {
	Name  domain.FeatureName
	Label string
	Range domain.Range
	Value float64
}

// page is everything the layout can render. Only the section of the active
// view is populated.
type page struct {
	Title        string
	Nav          []navItem
	View         string
	Error        string
	Chart        *chartSnippet
	FeatureNames []domain.FeatureName

	Overview       *domain.Overview
	Evaluation     *domain.Evaluation
	Projection     *domain.Projection
	FeatureOptions []selectOption
	Distribution   *domain.FeatureDistribution
	MoodOptions    []selectOption
	Recommendation *domain.Recommendation
	Sliders        []sliderField
	Prediction     *domain.Prediction
	Description    string
	Profiles       []domain.ClusterProfile
}

func newPage(view domain.ViewID) *page {
	nav := make([]navItem, 0, len(domain.Views))
	for _, v := range domain.Views {
		nav = append(nav, navItem{Slug: v.Slug(), Label: v.Label(), Active: v == view})
	}
	return &page{
		Title:        view.Label(),
		Nav:          nav,
		View:         view.Slug(),
		FeatureNames: domain.FeatureNames[:],
	}
}

// fail records err on the page and returns the status it maps to.
func (p *page) fail(err error) int {
	status, _ := statusFor(err)
	p.Error = err.Error()
	return status
}

// Index handles GET / by redirecting to the default view.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/views/"+domain.ViewOverview.Slug(), http.StatusSeeOther)
}

// View handles GET /views/{view}. Every navigation renders the view from its
// defaults; nothing is carried over from a previous page.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	view, err := domain.ParseView(r.PathValue("view"))
	if err != nil {
		p := newPage(domain.ViewOverview)
		p.Title = "Not found"
		h.render(w, p.fail(err), p)
		return
	}

	ctx := r.Context()
	p := newPage(view)
	status := http.StatusOK

	switch view {
	case domain.ViewOverview:
		overview, err := h.svc.Overview(ctx)
		if err != nil {
			status = p.fail(err)
			break
		}
		p.Overview = &overview

	case domain.ViewEvaluation:
		ev, err := h.svc.Evaluate(ctx)
		if err != nil {
			status = p.fail(err)
			break
		}
		p.Evaluation = &ev

	case domain.ViewPCA:
		proj, err := h.svc.Project(ctx)
		if err != nil {
			status = p.fail(err)
			break
		}
		p.Projection = &proj
		chart := projectionChart(proj)
		p.Chart = &chart

	case domain.ViewFeatures:
		selected := r.URL.Query().Get("feature")
		if selected == "" {
			selected = string(domain.FeatureNames[0])
		}
		p.FeatureOptions = featureOptions(selected)
		dist, err := h.svc.Distribution(ctx, selected)
		if err != nil {
			status = p.fail(err)
			break
		}
		p.Distribution = &dist
		chart := distributionChart(dist)
		p.Chart = &chart

	case domain.ViewMoods:
		selected := r.URL.Query().Get("mood")
		if selected == "" {
			selected = string(domain.Moods[0])
		}
		p.MoodOptions = moodOptions(selected)
		rec, err := h.svc.Recommend(ctx, selected)
		if err != nil {
			status = p.fail(err)
			break
		}
		p.Recommendation = &rec

	case domain.ViewPredict:
		p.Sliders = sliders(domain.DefaultFeatures())

	case domain.ViewInsights:
		profiles, err := h.svc.Insights(ctx)
		if err != nil {
			status = p.fail(err)
			break
		}
		p.Profiles = profiles
		chart := profileChart(profiles)
		p.Chart = &chart
	}

	h.render(w, status, p)
}

// PredictForm handles POST /views/predict with one form field per feature.
func (h *Handler) PredictForm(w http.ResponseWriter, r *http.Request) {
	p := newPage(domain.ViewPredict)
	p.Sliders = sliders(domain.DefaultFeatures())

	if err := r.ParseForm(); err != nil {
		p.Error = "invalid form"
		h.render(w, http.StatusBadRequest, p)
		return
	}

	vector := make([]float64, domain.FeatureCount)
	for i, f := range domain.FeatureNames {
		raw := r.PostForm.Get(string(f))
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			p.Error = fmt.Sprintf("%s: %q is not a number", f.Label(), raw)
			h.render(w, http.StatusBadRequest, p)
			return
		}
		vector[i] = v
	}
	features, err := domain.FeaturesFromVector(vector)
	if err != nil {
		h.render(w, p.fail(err), p)
		return
	}
	p.Sliders = sliders(features)

	prediction, err := h.svc.PredictFeatures(r.Context(), features)
	if err != nil {
		h.render(w, p.fail(err), p)
		return
	}
	p.Prediction = &prediction
	p.Description = domain.DescribeCluster(prediction.Cluster)
	h.render(w, http.StatusOK, p)
}

func (h *Handler) render(w http.ResponseWriter, status int, p *page) {
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "layout.html", p); err != nil {
		logrus.WithError(err).WithField("view", p.View).Error("rest: failed to render view")
		http.Error(w, "failed to render view", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func featureOptions(selected string) []selectOption {
	out := make([]selectOption, 0, domain.FeatureCount)
	for _, f := range domain.FeatureNames {
		out = append(out, selectOption{Value: string(f), Label: f.Label(), Selected: string(f) == selected})
	}
	return out
}

func moodOptions(selected string) []selectOption {
	chosen, _ := domain.ParseMood(selected)
	out := make([]selectOption, 0, len(domain.Moods))
	for _, m := range domain.Moods {
		out = append(out, selectOption{Value: string(m), Label: m.Label(), Selected: m == chosen})
	}
	return out
}

func sliders(values domain.AudioFeatures) []sliderField {
	vector := values.Vector()
	out := make([]sliderField, 0, domain.FeatureCount)
	for i, f := range domain.FeatureNames {
		out = append(out, sliderField{Name: f, Label: f.Label(), Range: domain.FeatureBounds[f], Value: vector[i]})
	}
	return out
}
