package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphscape/pkg/config"
	"github.com/matzehuels/graphscape/pkg/label"
	"github.com/matzehuels/graphscape/pkg/layout"
	"github.com/matzehuels/graphscape/pkg/layout/force"
	"github.com/matzehuels/graphscape/pkg/sizing"
)

// pipelineFlags holds the command-line flags shared by every command that
// runs the pipeline. Flags the user sets override the configuration file.
type pipelineFlags struct {
	configPath  string   // configuration file (TOML, YAML or JSON)
	layoutType  string   // layout type, e.g. "treeTd2d"
	sizing      string   // sizing strategy
	sizeAttr    string   // data attribute for attribute sizing
	minSize     float64  // lower bound of the size range
	maxSize     float64  // upper bound of the size range
	defaultSize float64  // size for nodes without a score
	labels      string   // label mode
	cluster     string   // clustering attribute
	clusterType string   // cluster centroid strategy: force or treemap
	collapse    []string // initially collapsed node IDs
}

// register adds the pipeline flags to cmd.
func (f *pipelineFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "configuration file (toml, yaml or json)")
	fs.StringVarP(&f.layoutType, "type", "t", string(layout.DefaultType),
		"layout type: forceDirected2d, forceDirected3d, treeTd2d, treeLr2d, treeTd3d, treeLr3d, radialOut2d, radialOut3d, circular2d, hierarchicalTd, hierarchicalLr, nooverlap, forceatlas2")
	fs.StringVar(&f.sizing, "sizing", string(sizing.Default), "node sizing: none, default, pagerank, centrality, attribute")
	fs.StringVar(&f.sizeAttr, "size-attr", "", "data attribute for attribute sizing")
	fs.Float64Var(&f.minSize, "min-size", sizing.DefaultMinSize, "smallest rescaled node size")
	fs.Float64Var(&f.maxSize, "max-size", sizing.DefaultMaxSize, "largest rescaled node size")
	fs.Float64Var(&f.defaultSize, "default-size", sizing.DefaultSize, "size of nodes without a score")
	fs.StringVar(&f.labels, "labels", string(label.DefaultMode), "label visibility: all, none, nodes, edges, auto")
	fs.StringVar(&f.cluster, "cluster", "", "group nodes by this data attribute (force layouts)")
	fs.StringVar(&f.clusterType, "cluster-type", string(force.ClusterForce), "cluster placement: force, treemap")
	fs.StringSliceVar(&f.collapse, "collapse", nil, "node IDs to collapse (comma-separated)")
}

// load reads the configuration file, when given, and applies every flag
// the user set on top of it. The result is validated.
func (f *pipelineFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	f.apply(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// apply copies the flags the user changed into cfg.
func (f *pipelineFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	opts := &cfg.Pipeline

	if changed("type") {
		opts.Layout.Type = layout.Type(f.layoutType)
	}
	if changed("sizing") {
		opts.Sizing.Type = sizing.Type(f.sizing)
	}
	if changed("size-attr") {
		opts.Sizing.Attribute = f.sizeAttr
		if !changed("sizing") {
			opts.Sizing.Type = sizing.Attribute
		}
	}
	if changed("min-size") {
		opts.Sizing.MinSize = f.minSize
	}
	if changed("max-size") {
		opts.Sizing.MaxSize = f.maxSize
	}
	if changed("default-size") {
		opts.Sizing.DefaultSize = f.defaultSize
	}
	if changed("labels") {
		opts.Labels.Mode = label.Mode(f.labels)
	}
	if changed("cluster") {
		opts.Cluster = f.cluster
	}
	if changed("cluster-type") {
		if opts.Layout.Force == nil {
			opts.Layout.Force = &force.Options{}
		}
		opts.Layout.Force.ClusterType = force.ClusterType(f.clusterType)
	}
	if changed("collapse") {
		opts.Collapsed = f.collapse
	}
}
