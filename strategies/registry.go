// Package strategies holds the closed set of decision variants the
// engine can run. Each variant owns its indicator streams and decides
// one signal per bar; a registration table maps variant names and
// named numeric parameters to per-instrument constructors.
package strategies

import (
	"fmt"
	"sort"

	"tradegeek/services/engine"
)

// Params are the named numeric parameters from the caller (CLI flags,
// request payload). Unknown keys are ignored; missing keys fall back
// to the variant's defaults.
type Params map[string]float64

func (p Params) get(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

func (p Params) period(key string, def int) (int, error) {
	v := int(p.get(key, float64(def)))
	if v < 1 {
		return 0, fmt.Errorf("parameter %q must be a positive period, got %d", key, v)
	}
	return v, nil
}

// Factory builds one strategy instance per instrument. Instances are
// never shared: indicator state is per-instrument.
type Factory func() engine.Strategy

var builders = map[string]func(Params) (Factory, error){
	"SmaCross":      buildSmaCross,
	"Rsi":           buildRsi,
	"SmaRsiCombo":   buildSmaRsiCombo,
	"Bollinger":     buildBollinger,
	"Macd":          buildMacd,
	"StochasticSma": buildStochasticSma,
}

// Names lists the registered variants in stable order.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build resolves a variant by name. Unknown names and invalid
// parameters are configuration errors.
func Build(name string, p Params) (Factory, error) {
	builder, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (have %v)", name, Names())
	}
	if p == nil {
		p = Params{}
	}
	factory, err := builder(p)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", name, err)
	}
	return factory, nil
}
