package gclplugin

import "github.com/gnolang/scopelint/analyzer"

// Settings represents the configuration options for an instance of the [Plugin].
type Settings struct {
	// Disable lists rule ids that do not run.
	Disable []string `json:"disable,omitempty"`
	// Strict reports suppression markers that silence nothing.
	Strict *bool `json:"strict,omitempty"`
}

// Options converts [Settings] into a list of [analyzer.Option].
func (s Settings) Options() []analyzer.Option {
	var opts []analyzer.Option
	if len(s.Disable) > 0 {
		opts = append(opts, analyzer.WithDisabled(s.Disable...))
	}
	if s.Strict != nil {
		opts = append(opts, analyzer.WithStrict(*s.Strict))
	}
	return opts
}
