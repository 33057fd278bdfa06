package main

import (
	"github.com/YuminosukeSato/ringtune/core/model"
	"github.com/YuminosukeSato/ringtune/dataset"
	"github.com/YuminosukeSato/ringtune/models"
	"github.com/YuminosukeSato/ringtune/recipe"
	"github.com/YuminosukeSato/ringtune/tune"
)

// candidates declares the model families in the race. Declaration only: no
// model is trained until the tuner invokes a Build.
func candidates(seed int64) []tune.Candidate {
	return []tune.Candidate{
		{
			Family:  "elasticnet",
			Variant: recipe.Normalized,
			Space: tune.Space{
				{Name: "penalty", Kind: tune.Continuous, Min: 1e-4, Max: 1, Log: true},
				{Name: "mixture", Kind: tune.Continuous, Min: 0, Max: 1},
			},
			Build: func(cfg tune.Config) model.Regressor {
				return models.NewElasticNet(cfg.Float("penalty"), cfg.Float("mixture"))
			},
		},
		{
			Family:  "knn",
			Variant: recipe.Normalized,
			Space: tune.Space{
				{Name: "neighbors", Kind: tune.Integer, Min: 1, Max: 50},
			},
			Build: func(cfg tune.Config) model.Regressor {
				return models.NewKNNRegressor(cfg.Int("neighbors"))
			},
		},
		{
			Family:  "random_forest",
			Variant: recipe.Raw,
			Space: tune.Space{
				{Name: "mtry", Kind: tune.Integer, Min: 1, Max: 1 + dataset.NumNumericFeatures},
				{Name: "min_n", Kind: tune.Integer, Min: 2, Max: 40},
			},
			Build: func(cfg tune.Config) model.Regressor {
				rf := models.NewRandomForestRegressor()
				rf.Trees = 500
				rf.MTry = cfg.Int("mtry")
				rf.MinNodeSize = cfg.Int("min_n")
				rf.Seed = seed
				return rf
			},
		},
		{
			Family:  "svm_rbf",
			Variant: recipe.Normalized,
			Space: tune.Space{
				{Name: "cost", Kind: tune.Continuous, Min: 0.03125, Max: 32, Log: true},
				{Name: "rbf_sigma", Kind: tune.Continuous, Min: 1e-4, Max: 1e-1, Log: true},
			},
			Build: func(cfg tune.Config) model.Regressor {
				return models.NewSVR(cfg.Float("cost"), cfg.Float("rbf_sigma"))
			},
		},
		{
			Family:  "gbt_light",
			Variant: recipe.Encoded,
			Space: tune.Space{
				{Name: "tree_depth", Kind: tune.Integer, Min: 3, Max: 12},
				{Name: "learn_rate", Kind: tune.Continuous, Min: 1e-3, Max: 0.3, Log: true},
				{Name: "min_n", Kind: tune.Integer, Min: 2, Max: 40},
				{Name: "sample_size", Kind: tune.Continuous, Min: 0.5, Max: 1},
				{Name: "trees", Kind: tune.Integer, Min: 500, Max: 1500},
			},
			Build: func(cfg tune.Config) model.Regressor {
				gb := models.NewGBTRegressor()
				gb.MaxDepth = cfg.Int("tree_depth")
				gb.LearnRate = cfg.Float("learn_rate")
				gb.MinNodeSize = cfg.Int("min_n")
				gb.Subsample = cfg.Float("sample_size")
				gb.Trees = cfg.Int("trees")
				gb.Seed = seed
				return gb
			},
		},
		{
			Family:  "gbt_xtree",
			Variant: recipe.Encoded,
			Space: tune.Space{
				{Name: "tree_depth", Kind: tune.Integer, Min: 3, Max: 12},
				{Name: "learn_rate", Kind: tune.Continuous, Min: 1e-3, Max: 0.3, Log: true},
				{Name: "min_n", Kind: tune.Integer, Min: 2, Max: 40},
				{Name: "sample_size", Kind: tune.Continuous, Min: 0.5, Max: 1},
				{Name: "trees", Kind: tune.Integer, Min: 500, Max: 1500},
				{Name: "mtry_prop", Kind: tune.Continuous, Min: 0.5, Max: 1},
				{Name: "loss_reduction", Kind: tune.Continuous, Min: 1e-8, Max: 1e-1, Log: true},
			},
			Build: func(cfg tune.Config) model.Regressor {
				gb := models.NewGBTRegressor()
				gb.MaxDepth = cfg.Int("tree_depth")
				gb.LearnRate = cfg.Float("learn_rate")
				gb.MinNodeSize = cfg.Int("min_n")
				gb.Subsample = cfg.Float("sample_size")
				gb.Trees = cfg.Int("trees")
				gb.ColSample = cfg.Float("mtry_prop")
				gb.Gamma = cfg.Float("loss_reduction")
				gb.Seed = seed
				return gb
			},
		},
		{
			Family:  "mlp",
			Variant: recipe.Normalized,
			Space: tune.Space{
				{Name: "hidden_units", Kind: tune.Integer, Min: 2, Max: 32},
				{Name: "penalty", Kind: tune.Continuous, Min: 1e-5, Max: 1e-1, Log: true},
				{Name: "epochs", Kind: tune.Integer, Min: 50, Max: 500},
				{Name: "learn_rate", Kind: tune.Continuous, Min: 1e-3, Max: 1e-1, Log: true},
			},
			Build: func(cfg tune.Config) model.Regressor {
				nn := models.NewMLPRegressor(cfg.Int("hidden_units"))
				nn.WeightDecay = cfg.Float("penalty")
				nn.Epochs = cfg.Int("epochs")
				nn.LearnRate = cfg.Float("learn_rate")
				nn.Seed = seed
				return nn
			},
		},
	}
}

// gridSizes gives each family its random-design size. The boosting spaces
// are wider, so they get a larger draw.
func gridSizes() map[string]int {
	return map[string]int{
		"gbt_light": 15,
		"gbt_xtree": 15,
	}
}
