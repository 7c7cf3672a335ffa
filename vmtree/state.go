package vmtree

// NodeState is the per-node interaction state: whether the node's children
// are folded away and whether its description is hidden.
type NodeState struct {
	Folded     bool
	DescHidden bool
}

// State maps identity keys to interaction state. Each diagram instance
// owns exactly one State; it survives re-renders so toggles persist, and a
// node whose key changes (reorder, retitle) simply starts fresh.
type State struct {
	m map[string]NodeState
}

func NewState() *State {
	return &State{m: make(map[string]NodeState)}
}

func (s *State) Get(key string) NodeState {
	return s.m[key]
}

// SeedDescHidden records the default hidden flag for a key that has no
// recorded state yet. Nodes without a description default to hidden.
func (s *State) SeedDescHidden(key string, hidden bool) {
	if _, ok := s.m[key]; ok {
		return
	}
	s.m[key] = NodeState{DescHidden: hidden}
}

// SetFolded forces the fold flag for a key, used when a recursive toggle
// pushes one node's new state onto its whole subtree.
func (s *State) SetFolded(key string, folded bool) {
	st := s.m[key]
	st.Folded = folded
	s.m[key] = st
}

func (s *State) ToggleFold(key string) NodeState {
	st := s.m[key]
	st.Folded = !st.Folded
	s.m[key] = st
	return st
}

func (s *State) ToggleDescHidden(key string) NodeState {
	st := s.m[key]
	st.DescHidden = !st.DescHidden
	s.m[key] = st
	return st
}
