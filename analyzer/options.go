package analyzer

// Option configures a [New] scopelint analyzer.
type Option interface {
	apply(r *runOptions)
}

// Options is a list of [Option] values that itself satisfies the [Option] interface.
type Options []Option

func (o Options) apply(r *runOptions) {
	for _, opt := range o {
		if opt == nil {
			continue
		}
		opt.apply(r)
	}
}

// WithDisabled is an [Option] that turns the named rules off.
func WithDisabled(ids ...string) Option { return disabledOption{ids: ids} }

type disabledOption struct{ ids []string }

func (o disabledOption) apply(r *runOptions) {
	for _, id := range o.ids {
		r.disabled[id] = true
	}
}

// WithStrict is an [Option] to report suppression markers that silence nothing.
func WithStrict(strict bool) Option { return strictOption{strict: strict} }

type strictOption struct{ strict bool }

func (o strictOption) apply(r *runOptions) { r.strict = o.strict }

// WithGenerated is an [Option] to configure diagnostics in generated files.
func WithGenerated(generated bool) Option { return generatedOption{generated: generated} }

type generatedOption struct{ generated bool }

func (o generatedOption) apply(r *runOptions) { r.generated = o.generated }
