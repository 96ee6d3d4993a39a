package ports

// Scaler is a fitted feature transform.
type Scaler interface {
	Transform(x []float64) ([]float64, error)
	Dims() int
}

// ClusterModel assigns a standardized vector to a cluster.
type ClusterModel interface {
	Predict(x []float64) (int, error)
	K() int
	Dims() int
}
