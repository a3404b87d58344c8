package forecast

import "context"

// Algorithm names used as output column identifiers.
const (
	AlgoSMA           = "sma"
	AlgoES            = "es"
	AlgoHoltWinters   = "hw"
	AlgoARIMA         = "arima"
	AlgoSARIMA        = "sarima"
	AlgoTheta         = "theta"
	AlgoProphet       = "prophet"
	AlgoNeuralProphet = "neural_prophet"
	AlgoDarts         = "darts"
	AlgoEnsemble      = "ensemble"
)

// Diagnostic is a structured, non-fatal notice attached to a forecast
// result, e.g. a disabled backend or a degraded computation. The caller
// decides how to surface it.
type Diagnostic struct {
	Algorithm string `json:"algorithm"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// Result holds one algorithm's forecast, aligned 1:1 with the horizon.
// A missing entry means the algorithm has no value for that position.
type Result struct {
	Algorithm   string       `json:"algorithm"`
	Values      []Value      `json:"values"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// AllMissing builds a Result whose every position is absent, with an
// optional diagnostic explaining why.
func AllMissing(algorithm string, n int, diags ...Diagnostic) Result {
	return Result{
		Algorithm:   algorithm,
		Values:      make([]Value, n),
		Diagnostics: diags,
	}
}

// Forecaster maps (series, horizon) to an aligned forecast. The four
// self-contained implementations (SMA, ES, HoltWinters, Theta) are pure
// and never return an error; adapter-backed implementations may block on
// an external call but must degrade to missing values instead of failing.
type Forecaster interface {
	Name() string
	Forecast(ctx context.Context, s Series, h Horizon) (Result, error)
}

// Registry is the ordered set of forecasters for one pipeline run.
// Registration order is the column order of the output table.
type Registry struct {
	names       []string
	forecasters map[string]Forecaster
}

func NewRegistry() *Registry {
	return &Registry{forecasters: make(map[string]Forecaster)}
}

// Register adds a forecaster. Registering the same name twice replaces
// the earlier entry but keeps its position.
func (r *Registry) Register(f Forecaster) {
	if _, ok := r.forecasters[f.Name()]; !ok {
		r.names = append(r.names, f.Name())
	}
	r.forecasters[f.Name()] = f
}

// Names returns algorithm names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Get returns the forecaster registered under name.
func (r *Registry) Get(name string) (Forecaster, bool) {
	f, ok := r.forecasters[name]
	return f, ok
}
