package evo

import "fmt"

// OpKind is the closed set of mutation operators. Selection logic returns a
// kind; per-kind handlers live in the driver.
type OpKind uint8

const (
	OpNone OpKind = iota
	OpAddNode
	OpSubNode
	OpAddConn
	OpSubConn
	OpModWeight
	OpModBias
	OpModActivation
	OpAddGate
	OpSubGate
	OpAddSelfConn
	OpSubSelfConn
	OpAddBackConn
	OpSubBackConn
	OpSwapNodes
)

var opNames = map[OpKind]string{
	OpNone:          "none",
	OpAddNode:       "add_node",
	OpSubNode:       "sub_node",
	OpAddConn:       "add_conn",
	OpSubConn:       "sub_conn",
	OpModWeight:     "mod_weight",
	OpModBias:       "mod_bias",
	OpModActivation: "mod_activation",
	OpAddGate:       "add_gate",
	OpSubGate:       "sub_gate",
	OpAddSelfConn:   "add_self_conn",
	OpSubSelfConn:   "sub_self_conn",
	OpAddBackConn:   "add_back_conn",
	OpSubBackConn:   "sub_back_conn",
	OpSwapNodes:     "swap_nodes",
}

func (k OpKind) String() string {
	if name, ok := opNames[k]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", uint8(k))
}

func OpKindFromString(name string) (OpKind, error) {
	for kind, n := range opNames {
		if n == name {
			return kind, nil
		}
	}
	return OpNone, fmt.Errorf("unknown operator: %q", name)
}

// AllFeedforward is the sentinel pool of every operator legal in a strictly
// feedforward genome. Identity-sensitive callers receive it verbatim from
// the selector; everyone else samples from it.
var AllFeedforward = []OpKind{
	OpAddNode,
	OpSubNode,
	OpAddConn,
	OpSubConn,
	OpModWeight,
	OpModBias,
	OpModActivation,
	OpSwapNodes,
}

var additionKinds = []OpKind{OpAddNode, OpAddConn, OpAddGate, OpAddSelfConn, OpAddBackConn}

var removalKinds = []OpKind{OpSubNode, OpSubConn, OpSubGate, OpSubSelfConn, OpSubBackConn}

func isRecurrentKind(kind OpKind) bool {
	switch kind {
	case OpAddSelfConn, OpSubSelfConn, OpAddBackConn, OpSubBackConn:
		return true
	default:
		return false
	}
}

// shapeChangingKinds alter the graph's topology through the generic path and
// therefore invalidate position-dependent caches. The reuse-aware adds
// handle their own invalidation.
func isShapeChangingKind(kind OpKind) bool {
	switch kind {
	case OpAddGate, OpSubNode, OpSubConn, OpAddSelfConn, OpAddBackConn:
		return true
	default:
		return false
	}
}
