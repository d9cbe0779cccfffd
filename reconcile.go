package webio

import (
	logp "github.com/charmbracelet/log"
	"golang.org/x/exp/slices"
)

// reconciler merges the descriptors of one entity category into the
// entities retained from previous updates.
type reconciler[T any] struct {
	kind   string
	log    *logp.Logger
	index  func(*T) int
	reset  func(*T)
	create func(index int) *T
	apply  func(*T, object)
}

// reconcile updates retained in place and returns the resulting collection
// along with the entities it had to create.
//
// Every retained entity is first marked unavailable, so entities missing
// from descriptors stay unavailable. They are only dropped when at least one
// valid descriptor was received, which keeps the model intact across empty
// updates.
func (r reconciler[T]) reconcile(retained []*T, descriptors []object) ([]*T, []*T) {
	for _, e := range retained {
		r.reset(e)
	}

	var created []*T
	seen := make(map[int]struct{}, len(descriptors))
	for _, d := range descriptors {
		index, state := d.intField(keyIndex)
		if state != fieldPresent || index < 0 {
			r.log.Error("descriptor has no index", "kind", r.kind, "index", state, "value", index)
			continue
		}
		seen[index] = struct{}{}

		var entity *T
		if i := slices.IndexFunc(retained, func(e *T) bool { return r.index(e) == index }); i >= 0 {
			entity = retained[i]
		} else {
			entity = r.create(index)
			retained = append(retained, entity)
			created = append(created, entity)
			r.log.Debug("new entity", "kind", r.kind, "index", index)
		}
		r.apply(entity, d)
	}

	if len(seen) > 0 {
		retained = slices.DeleteFunc(retained, func(e *T) bool {
			_, ok := seen[r.index(e)]
			if !ok {
				r.log.Debug("removing entity", "kind", r.kind, "index", r.index(e))
			}
			return !ok
		})
	}
	return retained, created
}

func (c *Client) outputReconciler() reconciler[Output] {
	return reconciler[Output]{
		kind:  "output",
		log:   c.log,
		index: func(o *Output) int { return o.Index },
		reset: func(o *Output) {
			o.State = nil
			o.Available = false
		},
		create: func(index int) *Output {
			return &Output{
				Index:     index,
				Serial:    c.serial(),
				transport: c.transport,
			}
		},
		apply: func(o *Output, d object) {
			status, _ := d.stringField(keyStatus)
			o.State = outputState(status)
			o.Available = o.State != nil
		},
	}
}

func (c *Client) zoneReconciler() reconciler[Zone] {
	return reconciler[Zone]{
		kind:  "zone",
		log:   c.log,
		index: func(z *Zone) int { return z.Index },
		reset: func(z *Zone) {
			z.State = ZoneUnknown
			z.Available = false
		},
		create: func(index int) *Zone {
			return &Zone{
				Index:     index,
				PassType:  DefaultPassType,
				Serial:    c.serial(),
				transport: c.transport,
			}
		},
		apply: func(z *Zone, d object) {
			z.Name = nil
			if name, state := d.stringField(keyName); state == fieldPresent {
				z.Name = &name
			}
			status, _ := d.stringField(keyStatus)
			z.State = zoneState(status)
			z.Available = z.State.Known()
			z.PassType = DefaultPassType
			if passType, state := d.intField(keyPassType); state == fieldPresent {
				z.PassType = passType
			}
		},
	}
}
