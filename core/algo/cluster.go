package algo

// WeightedPoint is one sample in a 3-dimensional space with a weight,
// typically a unique color with its pixel count.
type WeightedPoint struct {
	P [3]float64
	W float64
}

// Cluster is one k-means result: a center and the summed weight of its
// member points.
type Cluster struct {
	Center [3]float64
	Weight float64
}

// KMeans clusters weighted points into at most k clusters with Lloyd
// iterations. Seeding is deterministic: the heaviest point first, then
// farthest-point selection with ties broken by weight and input order, so
// identical input always yields identical clusters. Clusters that end up
// empty are dropped.
func KMeans(points []WeightedPoint, k, maxIter int) []Cluster {
	if len(points) == 0 || k <= 0 {
		return nil
	}
	if k > len(points) {
		k = len(points)
	}

	centers := seedCenters(points, k)
	assign := make([]int, len(points))

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, pt := range points {
			best, bestDist := 0, distSq(pt.P, centers[0])
			for c := 1; c < len(centers); c++ {
				if d := distSq(pt.P, centers[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Recompute weighted means. Empty clusters keep their center.
		sums := make([][3]float64, len(centers))
		weights := make([]float64, len(centers))
		for i, pt := range points {
			c := assign[i]
			for d := range 3 {
				sums[c][d] += pt.P[d] * pt.W
			}
			weights[c] += pt.W
		}
		for c := range centers {
			if weights[c] > 0 {
				for d := range 3 {
					centers[c][d] = sums[c][d] / weights[c]
				}
			}
		}
	}

	// Collect final weights per cluster.
	weights := make([]float64, len(centers))
	for i, pt := range points {
		weights[assign[i]] += pt.W
	}

	clusters := make([]Cluster, 0, len(centers))
	for c, center := range centers {
		if weights[c] > 0 {
			clusters = append(clusters, Cluster{Center: center, Weight: weights[c]})
		}
	}
	return clusters
}

// seedCenters picks k starting centers: the heaviest point, then the point
// maximizing the distance to its nearest chosen center.
func seedCenters(points []WeightedPoint, k int) [][3]float64 {
	first := 0
	for i, pt := range points {
		if pt.W > points[first].W {
			first = i
		}
	}

	centers := make([][3]float64, 0, k)
	centers = append(centers, points[first].P)

	minDist := make([]float64, len(points))
	for i, pt := range points {
		minDist[i] = distSq(pt.P, centers[0])
	}

	for len(centers) < k {
		next := 0
		for i := 1; i < len(points); i++ {
			switch {
			case minDist[i] > minDist[next]:
				next = i
			case minDist[i] == minDist[next] && points[i].W > points[next].W:
				next = i
			}
		}
		if minDist[next] == 0 {
			break // all remaining points coincide with a center
		}
		centers = append(centers, points[next].P)
		for i, pt := range points {
			if d := distSq(pt.P, centers[len(centers)-1]); d < minDist[i] {
				minDist[i] = d
			}
		}
	}
	return centers
}

// distSq returns the squared Euclidean distance between two points.
func distSq(a, b [3]float64) float64 {
	var sum float64
	for d := range 3 {
		diff := a[d] - b[d]
		sum += diff * diff
	}
	return sum
}
