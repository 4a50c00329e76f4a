// Package sizing computes node sizes.
//
// A strategy scores every node, then the scores are rescaled linearly into
// [MinSize, MaxSize], rounded when both bounds are whole numbers. The "none" strategy skips rescaling. When
// all scores are equal every node gets the midpoint of the range.
//
// Strategies:
//
//   - none: the node's own size, or DefaultSize
//   - default: the node's own size, or DefaultSize, rescaled
//   - pagerank: PageRank (damping 0.85) times 80
//   - centrality: degree / (n - 1) times 20
//   - attribute: the numeric value of a node data attribute
//
// Attribute values that are missing or not numeric are logged and replaced
// by DefaultSize before rescaling.
package sizing

import (
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/network"

	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
)

// Type selects a sizing strategy.
type Type string

const (
	None       Type = "none"
	Default    Type = "default"
	PageRank   Type = "pagerank"
	Centrality Type = "centrality"
	Attribute  Type = "attribute"
)

// ValidTypes is the set of supported sizing strategies.
var ValidTypes = map[Type]bool{
	None:       true,
	Default:    true,
	PageRank:   true,
	Centrality: true,
	Attribute:  true,
}

const (
	DefaultSize    = 7.0
	DefaultMinSize = 5.0
	DefaultMaxSize = 15.0

	pageRankDamping   = 0.85
	pageRankTolerance = 1e-6
	pageRankScale     = 80.0
	centralityScale   = 20.0
)

// Options configures sizing. Zero fields take defaults.
type Options struct {
	Type        Type    `json:"type,omitempty" toml:"type" yaml:"type,omitempty"`
	Attribute   string  `json:"attribute,omitempty" toml:"attribute" yaml:"attribute,omitempty"`
	DefaultSize float64 `json:"default_size,omitempty" toml:"default_size" yaml:"default_size,omitempty"`
	MinSize     float64 `json:"min_size,omitempty" toml:"min_size" yaml:"min_size,omitempty"`
	MaxSize     float64 `json:"max_size,omitempty" toml:"max_size" yaml:"max_size,omitempty"`
}

// WithDefaults returns o with zero fields replaced by package defaults.
func (o Options) WithDefaults() Options {
	if o.Type == "" {
		o.Type = Default
	}
	if o.DefaultSize == 0 {
		o.DefaultSize = DefaultSize
	}
	if o.MinSize == 0 {
		o.MinSize = DefaultMinSize
	}
	if o.MaxSize == 0 {
		o.MaxSize = DefaultMaxSize
	}
	return o
}

// Validate checks the strategy and the size range.
func (o Options) Validate() error {
	o = o.WithDefaults()
	if !ValidTypes[o.Type] {
		return errors.New(errors.ErrCodeInvalidSizingType, "unknown sizing type %q", o.Type)
	}
	if o.Type == Attribute && o.Attribute == "" {
		return errors.New(errors.ErrCodeInvalidOptions, "attribute sizing requires an attribute name")
	}
	if err := errors.ValidateAttributeName(o.Attribute); err != nil {
		return err
	}
	if o.MinSize < 0 || o.MaxSize < o.MinSize {
		return errors.New(errors.ErrCodeInvalidOptions, "invalid size range [%v, %v]", o.MinSize, o.MaxSize)
	}
	if o.DefaultSize < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "default size must not be negative")
	}
	return nil
}

// Compute returns a size for every node of s.
func Compute(s *graph.Structure, opts Options, logger *log.Logger) (map[string]float64, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	var raw map[string]float64
	switch opts.Type {
	case None, Default:
		raw = ownSizes(s, opts.DefaultSize)
	case PageRank:
		raw = pageRank(s)
	case Centrality:
		raw = centrality(s)
	case Attribute:
		raw = attribute(s, opts, logger)
	}

	if opts.Type != None {
		Rescale(raw, opts.MinSize, opts.MaxSize)
	}
	return raw, nil
}

// Rescale maps the values of scores linearly onto [lo, hi]. The smallest
// score maps to lo and the largest to hi. When every score is equal they all
// map to the midpoint. Results are rounded to whole numbers only when both
// bounds are whole, so they never leave the range.
func Rescale(scores map[string]float64, lo, hi float64) {
	if len(scores) == 0 {
		return
	}
	vals := make([]float64, 0, len(scores))
	for _, v := range scores {
		vals = append(vals, v)
	}
	dMin, dMax := floats.Min(vals), floats.Max(vals)
	whole := lo == math.Trunc(lo) && hi == math.Trunc(hi)
	for id, v := range scores {
		var size float64
		switch {
		case dMax == dMin:
			size = (lo + hi) / 2
		case v == dMax:
			size = hi
		case v == dMin:
			size = lo
		default:
			t := (v - dMin) / (dMax - dMin)
			size = lo*(1-t) + hi*t
		}
		if whole {
			size = math.Round(size)
		}
		scores[id] = math.Min(math.Max(size, lo), hi)
	}
}

func ownSizes(s *graph.Structure, def float64) map[string]float64 {
	out := make(map[string]float64, s.NodeCount())
	for _, n := range s.Nodes() {
		out[n.ID] = def
		if n.Size > 0 {
			out[n.ID] = n.Size
		}
	}
	return out
}

func pageRank(s *graph.Structure) map[string]float64 {
	out := make(map[string]float64, s.NodeCount())
	if s.NodeCount() == 0 {
		return out
	}
	for gid, rank := range network.PageRank(s.Directed(), pageRankDamping, pageRankTolerance) {
		if id, ok := s.NodeName(gid); ok {
			out[id] = rank * pageRankScale
		}
	}
	return out
}

func centrality(s *graph.Structure) map[string]float64 {
	n := s.NodeCount()
	out := make(map[string]float64, n)
	for _, id := range s.NodeIDs() {
		if n < 2 {
			out[id] = 0
			continue
		}
		out[id] = float64(s.Degree(id)) / float64(n-1) * centralityScale
	}
	return out
}

func attribute(s *graph.Structure, opts Options, logger *log.Logger) map[string]float64 {
	out := make(map[string]float64, s.NodeCount())
	for _, n := range s.Nodes() {
		v, ok := numeric(n.Data[opts.Attribute])
		if !ok {
			logger.Warn("non-numeric size attribute, using default size",
				"node", n.ID, "attribute", opts.Attribute, "value", n.Data[opts.Attribute])
			v = opts.DefaultSize
		}
		out[n.ID] = v
	}
	return out
}

// numeric converts decoded JSON/YAML scalars to a finite float.
func numeric(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		p, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
