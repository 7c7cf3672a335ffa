package vmscene

// Join is the keyed diff at the heart of reconciliation: match the
// previous render's elements against the next render's data by key and
// split them into entering, updating, and exiting sets. Every visual
// category (node groups, connectors, glyphs, edges, paragraphs) reuses
// this one primitive with its own apply callbacks.
type Join[D any, E any] struct {
	// Enter holds data with no previous element, in data order.
	Enter []D
	// Update pairs surviving elements with their new data, in data order.
	Update []Pair[D, E]
	// Exit holds elements whose key is gone, keyed as before.
	Exit map[string]E
}

type Pair[D any, E any] struct {
	Data D
	El   E
}

// NewJoin diffs prev against next. prev is not mutated.
func NewJoin[D any, E any](prev map[string]E, next []D, key func(D) string) Join[D, E] {
	j := Join[D, E]{Exit: make(map[string]E, len(prev))}
	for k, e := range prev {
		j.Exit[k] = e
	}
	for _, d := range next {
		k := key(d)
		if el, ok := j.Exit[k]; ok {
			j.Update = append(j.Update, Pair[D, E]{Data: d, El: el})
			delete(j.Exit, k)
		} else {
			j.Enter = append(j.Enter, d)
		}
	}
	return j
}
