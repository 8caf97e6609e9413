// Package chain composes a detector head with consumer stages.
package chain

import (
	"fmt"
	"strings"

	"github.com/ayusman/mocap-replay/internal/detector"
)

// Stage is one node in a replay chain.
//
// The head stage produces a tree per call and returns nil once its input is
// exhausted. Consumer stages receive the caller's tree and frame number;
// their return values are not interpreted by the chain.
type Stage interface {
	Update(buf *detector.Tree, frame int) (*detector.Tree, int)
}

// StageFunc adapts a function to the Stage interface.
type StageFunc func(buf *detector.Tree, frame int) (*detector.Tree, int)

// Update calls f(buf, frame).
func (f StageFunc) Update(buf *detector.Tree, frame int) (*detector.Tree, int) {
	return f(buf, frame)
}

// Chain is an ordered list of stages whose first element is the source.
type Chain struct {
	nodes []Stage
}

// New builds a chain from a head stage and its consumers.
func New(head Stage, consumers ...Stage) *Chain {
	nodes := make([]Stage, 0, len(consumers)+1)
	nodes = append(nodes, head)
	nodes = append(nodes, consumers...)
	return &Chain{nodes: nodes}
}

// Head returns the source stage.
func (c *Chain) Head() Stage {
	return c.nodes[0]
}

// Consumers returns the stages after the head.
func (c *Chain) Consumers() []Stage {
	return c.nodes[1:]
}

// Len returns the number of stages including the head.
func (c *Chain) Len() int {
	return len(c.nodes)
}

// Update pulls one result from the head and hands ctx, unchanged, to every
// consumer. It returns nil without calling consumers when the head is
// exhausted.
func (c *Chain) Update(ctx *detector.Tree, frame int) (*detector.Tree, int) {
	result, frame := c.nodes[0].Update(nil, frame)
	if result == nil {
		return nil, frame
	}

	c.Flush(ctx, frame)
	return result, frame
}

// Flush invokes every consumer with buf.
func (c *Chain) Flush(buf *detector.Tree, frame int) {
	for _, s := range c.nodes[1:] {
		s.Update(buf, frame)
	}
}

func (c *Chain) String() string {
	names := make([]string, len(c.nodes))
	for i, s := range c.nodes {
		names[i] = fmt.Sprintf("%T", s)
	}
	return "Chain(" + strings.Join(names, " -> ") + ")"
}
