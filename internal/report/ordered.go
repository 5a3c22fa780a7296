package report

// ordered is a map that remembers first-insertion order, so aggregated rows
// come out in the order the store returned them.
type ordered[K comparable, V any] struct {
	keys []K
	vals map[K]*V
}

func newOrdered[K comparable, V any]() *ordered[K, V] {
	return &ordered[K, V]{vals: make(map[K]*V)}
}

// upsert folds into the entry for k, creating it with init first when absent.
func (o *ordered[K, V]) upsert(k K, init func() V, fold func(*V)) {
	v, ok := o.vals[k]
	if !ok {
		nv := init()
		v = &nv
		o.vals[k] = v
		o.keys = append(o.keys, k)
	}
	fold(v)
}

func (o *ordered[K, V]) each(fn func(K, *V)) {
	for _, k := range o.keys {
		fn(k, o.vals[k])
	}
}

func (o *ordered[K, V]) len() int { return len(o.keys) }
