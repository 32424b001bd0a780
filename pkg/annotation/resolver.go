package annotation

import (
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/weaver/pkg/editor"
)

// Resolver turns the annotations of a symbol into an ordered editor list.
type Resolver[P, A any] struct {
	registry *Registry[P, A]
	log      *logrus.Logger
}

// NewResolver creates a resolver over registry
func NewResolver[P, A any](registry *Registry[P, A], log *logrus.Logger) *Resolver[P, A] {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Resolver[P, A]{registry: registry, log: log}
}

type produced[P, A any] struct {
	order  int
	editor editor.Editor[P, A]
}

// Resolve constructs every marker declared on sym and returns the editors
// they produce, stably sorted by ascending order.
func (r *Resolver[P, A]) Resolve(sym Symbol) Resolution[P, A] {
	var res Resolution[P, A]
	if sym == nil {
		return res
	}

	var all []produced[P, A]
	for _, decl := range sym.Annotations() {
		factory, ok := r.registry.FactoryFor(decl.Type)
		if !ok {
			r.log.WithFields(logrus.Fields{
				"annotation": decl.Type,
				"location":   decl.Location.String(),
			}).Debug("Skipping annotation that is not a marker")
			continue
		}

		order, editors, err := construct(factory, decl)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"annotation": decl.Type,
				"location":   decl.Location.String(),
			}).WithError(err).Debug("Annotation construction failed")
			res.Failures = append(res.Failures, Failure{Annotation: decl, Err: err})
			continue
		}

		for _, ed := range editors {
			if editor.IsNil(ed) {
				continue
			}
			all = append(all, produced[P, A]{order: order, editor: ed})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].order < all[j].order
	})

	res.Editors = make([]editor.Editor[P, A], len(all))
	for i, p := range all {
		res.Editors[i] = p.editor
	}
	return res
}

// construct runs the factory and reads the marker, converting panics in
// plugin code into errors.
func construct[P, A any](factory Factory[P, A], decl Declared) (order int, editors []editor.Editor[P, A], err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	marker, err := factory(decl)
	if err != nil {
		return 0, nil, err
	}
	if marker == nil {
		return 0, nil, fmt.Errorf("factory returned no marker")
	}
	return marker.Order(), marker.Editors(), nil
}
