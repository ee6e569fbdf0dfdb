// Package annotators provides the built-in annotation extensions:
// transcription, respelling, frequency, normalize, and stats.
//
// Between them they exercise every extension behavior the engine
// supports: normalize restructures the tree with a transform, stats
// mutates container nodes with visitors, and the other three enhance
// word nodes via data providers.
//
// These are ordinary extension descriptors; nothing here is special to
// the engine. Callers compose their own registries the same way.
package annotators

import (
	"github.com/fustilio/glost/pkg/extension"
	"github.com/fustilio/glost/pkg/provider"
)

// Default builds a registry with every built-in extension. dict backs
// transcription lookups and freq backs frequency lookups; either may be
// nil to omit the corresponding extension.
func Default(dict, freq provider.Provider) *extension.Registry {
	reg := extension.NewRegistry()
	reg.MustRegister(Normalize())
	if dict != nil {
		reg.MustRegister(Transcription(dict))
		reg.MustRegister(Respelling())
	}
	if freq != nil {
		reg.MustRegister(Frequency(freq))
	}
	reg.MustRegister(Stats())
	return reg
}
