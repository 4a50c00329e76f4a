package label

import (
	"testing"

	"github.com/matzehuels/graphscape/pkg/errors"
)

func TestPolicy_Node(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		size   float64
		z      float64
		nodes  int
		cam    Camera
		want   bool
	}{
		{"AllFarAway", Policy{Mode: All}, 1, 0, 100, Distance(1e6), true},
		{"NodesMode", Policy{Mode: Nodes}, 1, 0, 100, nil, true},
		{"EdgesMode", Policy{Mode: Edges}, 50, 0, 100, nil, false},
		{"NoneMode", Policy{Mode: None}, 50, 0, 100, Distance(1), false},
		{"AutoLargeNode", Policy{Mode: Auto}, 8, 0, 100, nil, true},
		{"AutoThresholdIsExclusive", Policy{Mode: Auto}, 7, 0, 100, Distance(4000), false},
		{"AutoSmallNoCameraCountsAsNear", Policy{Mode: Auto}, 5, 0, 100, nil, true},
		{"NoneModeNoCamera", Policy{Mode: None}, 5, 0, 100, nil, false},
		{"AutoSmallNearCamera", Policy{Mode: Auto}, 5, 0, 100, Distance(2999), true},
		{"AutoSmallMidCamera", Policy{Mode: Auto}, 5, 0, 100, Distance(4000), false},
		{"AutoLargeTooFar", Policy{Mode: Auto}, 50, 0, 100, Distance(6001), false},
		{"AutoDepthBringsNodeCloser", Policy{Mode: Auto}, 5, 2000, 100, Distance(4000), true},
		{"DefaultModeIsAuto", Policy{}, 8, 0, 100, nil, true},
		{"SmallGraphShowsAll", Policy{Mode: Auto, SmallGraphNodes: 10}, 1, 0, 10, nil, true},
		{"SmallGraphDisabled", Policy{Mode: Auto}, 1, 0, 1, Distance(4000), false},
		{"SmallGraphStillFarCutoff", Policy{Mode: Auto, SmallGraphNodes: 10}, 1, 0, 5, Distance(7000), false},
		{"CustomThresholds", Policy{Mode: Auto, SizeThreshold: 20, NearDistance: 100}, 15, 0, 100, Distance(150), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Node(tt.size, tt.z, tt.nodes, tt.cam); got != tt.want {
				t.Errorf("Node() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolicy_Edge(t *testing.T) {
	tests := []struct {
		mode Mode
		want bool
	}{
		{All, true},
		{Edges, true},
		{Nodes, false},
		{None, false},
		{Auto, false},
	}
	for _, tt := range tests {
		if got := (Policy{Mode: tt.mode}).Edge(); got != tt.want {
			t.Errorf("Policy{%s}.Edge() = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestPolicy_Validate(t *testing.T) {
	if err := (Policy{}).Validate(); err != nil {
		t.Errorf("Validate() zero policy error: %v", err)
	}
	if err := (Policy{Mode: "some"}).Validate(); !errors.Is(err, errors.ErrCodeInvalidLabelType) {
		t.Errorf("Validate() = %v, want %s", err, errors.ErrCodeInvalidLabelType)
	}
	if err := (Policy{SmallGraphNodes: -1}).Validate(); !errors.Is(err, errors.ErrCodeInvalidOptions) {
		t.Errorf("Validate() = %v, want %s", err, errors.ErrCodeInvalidOptions)
	}
}
