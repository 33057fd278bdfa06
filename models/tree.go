// Package models implements the candidate regression model families. Every
// family embeds core/model.BaseEstimator and satisfies core/model.Regressor:
// Fit(X, y) trains on a design matrix, Predict(X) returns an n×1 matrix.
// Model fitting is on the log1p target scale throughout the pipeline; the
// models themselves are scale-agnostic.
package models

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// treeParams controls a single regression tree fit.
type treeParams struct {
	maxDepth    int     // <= 0 means unlimited
	minNodeSize int     // minimum samples per leaf
	mtry        int     // features sampled per split; <= 0 means all
	minGain     float64 // loss-reduction threshold for accepting a split
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// regressionTree is a CART tree minimizing squared error, shared by the
// random forest and the boosting families.
type regressionTree struct {
	root *treeNode
}

func fitTree(X *mat.Dense, y []float64, indices []int, p treeParams, rng *rand.Rand) *regressionTree {
	return &regressionTree{root: buildNode(X, y, indices, 0, p, rng)}
}

func nodeMean(y []float64, indices []int) float64 {
	var sum float64
	for _, i := range indices {
		sum += y[i]
	}
	return sum / float64(len(indices))
}

func buildNode(X *mat.Dense, y []float64, indices []int, depth int, p treeParams, rng *rand.Rand) *treeNode {
	mean := nodeMean(y, indices)
	if len(indices) < 2*p.minNodeSize || (p.maxDepth > 0 && depth >= p.maxDepth) {
		return &treeNode{leaf: true, value: mean}
	}

	var sse float64
	for _, i := range indices {
		dev := y[i] - mean
		sse += dev * dev
	}
	if sse == 0 {
		return &treeNode{leaf: true, value: mean}
	}

	feature, threshold, gain := bestSplit(X, y, indices, p, rng)
	if feature < 0 || gain <= p.minGain {
		return &treeNode{leaf: true, value: mean}
	}

	left := make([]int, 0, len(indices))
	right := make([]int, 0, len(indices))
	for _, i := range indices {
		if X.At(i, feature) < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < p.minNodeSize || len(right) < p.minNodeSize {
		return &treeNode{leaf: true, value: mean}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      buildNode(X, y, left, depth+1, p, rng),
		right:     buildNode(X, y, right, depth+1, p, rng),
	}
}

// bestSplit scans mtry candidate features for the split maximizing the
// reduction in sum of squared errors. Returns feature -1 when no valid
// split exists.
func bestSplit(X *mat.Dense, y []float64, indices []int, p treeParams, rng *rand.Rand) (int, float64, float64) {
	_, nFeatures := X.Dims()

	candidates := make([]int, nFeatures)
	for j := range candidates {
		candidates[j] = j
	}
	if p.mtry > 0 && p.mtry < nFeatures {
		rng.Shuffle(nFeatures, func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		candidates = candidates[:p.mtry]
	}

	n := len(indices)
	var totalSum, totalSumSq float64
	for _, i := range indices {
		totalSum += y[i]
		totalSumSq += y[i] * y[i]
	}
	parentSSE := totalSumSq - totalSum*totalSum/float64(n)

	type pair struct {
		x, y float64
	}
	pairs := make([]pair, n)

	bestFeature := -1
	var bestThreshold, bestGain float64

	for _, j := range candidates {
		for k, i := range indices {
			pairs[k] = pair{x: X.At(i, j), y: y[i]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].x < pairs[b].x })

		var leftSum, leftSumSq float64
		for k := 0; k < n-1; k++ {
			leftSum += pairs[k].y
			leftSumSq += pairs[k].y * pairs[k].y

			if pairs[k].x == pairs[k+1].x {
				continue
			}
			nLeft := k + 1
			nRight := n - nLeft
			if nLeft < p.minNodeSize || nRight < p.minNodeSize {
				continue
			}

			rightSum := totalSum - leftSum
			rightSumSq := totalSumSq - leftSumSq
			leftSSE := leftSumSq - leftSum*leftSum/float64(nLeft)
			rightSSE := rightSumSq - rightSum*rightSum/float64(nRight)

			gain := parentSSE - leftSSE - rightSSE
			if gain > bestGain {
				bestGain = gain
				bestFeature = j
				bestThreshold = (pairs[k].x + pairs[k+1].x) / 2
			}
		}
	}
	return bestFeature, bestThreshold, bestGain
}

func (t *regressionTree) predictRow(X *mat.Dense, row int) float64 {
	node := t.root
	for !node.leaf {
		if X.At(row, node.feature) < node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}
