package domain

// Overview summarizes the loaded dataset.
type Overview struct {
	TotalTracks  int     `json:"total_tracks"`
	FeatureCount int     `json:"feature_count"`
	ClusterCount int     `json:"cluster_count"`
	Sample       []Track `json:"sample"`
}

// Evaluation holds the cluster-quality indices.
// Silhouette is in [-1, 1], higher is better; DaviesBouldin is >= 0, lower is better.
type Evaluation struct {
	Silhouette    float64 `json:"silhouette"`
	DaviesBouldin float64 `json:"davies_bouldin"`
	Rows          int     `json:"rows"`
	Clusters      int     `json:"clusters"`
}

// ProjectedPoint is one row projected onto the first two principal components.
type ProjectedPoint struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Cluster int     `json:"cluster"`
}

// Projection is the 2D view of the feature matrix.
type Projection struct {
	Points            []ProjectedPoint `json:"points"`
	ExplainedVariance [2]float64       `json:"explained_variance"`
}

// Summary is a five-number summary plus the sample count.
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// ClusterSummary is the distribution of one feature within one cluster.
type ClusterSummary struct {
	Cluster int     `json:"cluster"`
	Summary Summary `json:"summary"`
}

// FeatureDistribution groups a feature's distribution by cluster, ascending cluster id.
type FeatureDistribution struct {
	Feature  FeatureName      `json:"feature"`
	Clusters []ClusterSummary `json:"clusters"`
}

// Recommendation is the result of a mood lookup.
type Recommendation struct {
	Mood    Mood    `json:"mood"`
	Label   string  `json:"label"`
	Cluster int     `json:"cluster"`
	Tracks  []Track `json:"tracks"`
}

// Prediction is a classified track.
type Prediction struct {
	Track   Track `json:"track"`
	Cluster int   `json:"cluster"`
}

// ClusterProfile is the mean feature vector of one cluster.
type ClusterProfile struct {
	Cluster     int           `json:"cluster"`
	Size        int           `json:"size"`
	Mean        AudioFeatures `json:"mean"`
	Description string        `json:"description,omitempty"`
}

var clusterDescriptions = map[int]string{
	0: "Chill / Acoustic / Low Energy",
	1: "Party / High Energy / Fast Tempo",
	2: "Rap / Live / Speech Dominant",
}

// DescribeCluster returns the curated description of a cluster, if any.
func DescribeCluster(cluster int) string {
	return clusterDescriptions[cluster]
}
