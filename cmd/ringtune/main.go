// Command ringtune runs the full abalone ring-count workflow: split the
// labeled data, tune every candidate family with cross-validated racing,
// select and finalize the best configuration per family, blend the tuned
// fits into a sparse non-negative ensemble, and write submission files on
// the original ring scale.
//
// All pipeline settings are script-time constants below; there are no
// flags.
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/YuminosukeSato/ringtune/dataset"
	"github.com/YuminosukeSato/ringtune/ensemble"
	"github.com/YuminosukeSato/ringtune/metrics"
	"github.com/YuminosukeSato/ringtune/pipeline"
	"github.com/YuminosukeSato/ringtune/pkg/errors"
	"github.com/YuminosukeSato/ringtune/pkg/log"
	"github.com/YuminosukeSato/ringtune/recipe"
	"github.com/YuminosukeSato/ringtune/tune"
)

const (
	seed        = 402
	splitProp   = 0.8
	foldCount   = 10
	defaultGrid = 10
	workers     = 3

	trainPath = "data/train.csv"
	scorePath = "data/test.csv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ringtune: %+v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := log.GetLogger("ringtune")

	full, err := dataset.Load(trainPath, true)
	if err != nil {
		return err
	}
	scoring, err := dataset.Load(scorePath, false)
	if err != nil {
		return err
	}
	logger.Info("data loaded",
		log.SamplesKey, full.Len(),
		"scoring_rows", scoring.Len(),
	)

	train, test, err := dataset.InitialSplit(full, splitProp, seed)
	if err != nil {
		return err
	}
	folds := dataset.NewKFold(foldCount, true, seed).Split(train.Len())

	cands := candidates(seed)
	grids := gridSizes()
	selector := tune.NewSelector(metrics.RMSELog1p)
	races := make(map[string]*tune.RaceResult, len(cands))

	for _, cand := range cands {
		grid := defaultGrid
		if g, ok := grids[cand.Family]; ok {
			grid = g
		}
		tuner := tune.NewRacingTuner(folds, grid, seed)
		tuner.Workers = workers
		tuner.KeepOOF = true

		rr, err := tuner.Run(train, cand)
		if err != nil {
			return err
		}
		selector.Add(rr)
		races[cand.Family] = rr
	}

	logRankedTable(logger, selector)

	// Finalize the best configuration of every family on the full training
	// partition and score it on the held-out split.
	bestFamily := ""
	bestScore := math.Inf(1)
	var bestPipeline *pipeline.Pipeline
	for _, cand := range cands {
		cfg, err := selector.BestConfig(cand.Family)
		if err != nil {
			logger.Warn("family skipped", log.ModelNameKey, cand.Family, "error", err)
			continue
		}
		p := pipeline.New(recipe.New(cand.Variant), cand.Build(cfg))
		if err := p.Fit(train); err != nil {
			return err
		}
		score, err := p.EvaluateRMSLE(test)
		if err != nil {
			return err
		}
		logger.Info("finalized",
			log.ModelNameKey, cand.Family,
			log.MetricNameKey, "rmsle",
			log.MetricKey, score,
		)
		if score < bestScore {
			bestFamily = cand.Family
			bestScore = score
			bestPipeline = p
		}
	}
	if bestPipeline == nil {
		return errors.New("no family produced a usable model")
	}
	logger.Info("best single model",
		log.ModelNameKey, bestFamily,
		log.MetricKey, bestScore,
	)

	preds, err := bestPipeline.PredictRings(scoring)
	if err != nil {
		return err
	}
	if err := dataset.WriteSubmission("submission_"+bestFamily+".csv", scoring.IDs(), preds); err != nil {
		return err
	}

	// Blend every configuration with a complete out-of-fold column; the
	// non-negative lasso zeroes most of them.
	var blendCands []ensemble.Candidate
	for _, cand := range cands {
		for _, r := range races[cand.Family].Results {
			if !r.CompleteOOF() {
				continue
			}
			blendCands = append(blendCands, ensemble.Candidate{
				Name:     fmt.Sprintf("%s/%d", cand.Family, r.ConfigIndex),
				OOF:      r.OOF,
				Pipeline: pipeline.New(recipe.New(cand.Variant), cand.Build(r.Config)),
			})
		}
	}

	blend, err := ensemble.NewBlender(seed).Blend(blendCands, train)
	if err != nil {
		return err
	}
	blendScore, err := blend.EvaluateRMSLE(test)
	if err != nil {
		return err
	}
	logger.Info("blend evaluated",
		log.MetricNameKey, "rmsle",
		log.MetricKey, blendScore,
		"members", len(blend.Members),
		"penalty", blend.Penalty,
	)

	blendPreds, err := blend.PredictRings(scoring)
	if err != nil {
		return err
	}
	return dataset.WriteSubmission("submission_blend.csv", scoring.IDs(), blendPreds)
}

// logRankedTable reports the tuning summary: one row per evaluated
// configuration, best first.
func logRankedTable(logger log.Logger, selector *tune.Selector) {
	for _, family := range selector.Families() {
		ranked, err := selector.Rank(family)
		if err != nil {
			continue
		}
		for rank, entry := range ranked {
			logger.Info("tuning result",
				log.ModelNameKey, family,
				"rank", rank+1,
				log.ConfigKey, entry.ConfigIndex,
				"mean", entry.Mean,
				"std_err", entry.StdErr,
				"folds", entry.Folds,
			)
		}
	}
}
