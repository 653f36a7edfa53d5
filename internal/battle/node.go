package battle

// NodeFlagTarget marks a node the AI should shoot at during base defence.
const NodeFlagTarget = 1

// Node is a patrol waypoint. Links are ids of reachable neighbour nodes.
type Node struct {
	ID       int
	Position Position
	Rank     int
	Priority int
	Flags    int
	Links    []int

	// Small nodes only fit units of size 1.
	Small bool
	// Dummy nodes are spawn points that patrols never walk to.
	Dummy bool

	allocated bool
}

// Allocated reports whether some unit has claimed this node as its goal.
func (n *Node) Allocated() bool { return n.allocated }

// Allocate claims the node.
func (n *Node) Allocate() { n.allocated = true }

// Free releases a claimed node.
func (n *Node) Free() { n.allocated = false }

// IsTarget reports whether the node carries the base defence target flag.
func (n *Node) IsTarget() bool { return n.Flags&NodeFlagTarget != 0 }

// LinksTo reports whether id is one of the node's neighbours.
func (n *Node) LinksTo(id int) bool {
	for _, l := range n.Links {
		if l == id {
			return true
		}
	}
	return false
}

// fits reports whether a unit can use the node as a patrol goal.
func (n *Node) fits(u *Unit) bool {
	if n.Dummy || n.allocated {
		return false
	}
	if u.Size > 1 && n.Small {
		return false
	}
	return true
}
