package filter

import "fmt"

// Pipeline is an ordered sequence of filters.
type Pipeline struct {
	filters []Filter
}

// NewPipeline creates a pipeline from filter specs, in encoding order.
func NewPipeline(specs ...string) (*Pipeline, error) {
	p := &Pipeline{filters: make([]Filter, 0, len(specs))}
	for i, spec := range specs {
		f, err := New(spec)
		if err != nil {
			return nil, fmt.Errorf("creating filter %d: %w", i, err)
		}
		p.filters = append(p.filters, f)
	}
	return p, nil
}

// Specs returns the specs that recreate the pipeline.
func (p *Pipeline) Specs() []string {
	if p == nil || len(p.filters) == 0 {
		return nil
	}
	specs := make([]string, len(p.filters))
	for i, f := range p.filters {
		specs[i] = f.Spec()
	}
	return specs
}

// Encode applies the filters in order.
func (p *Pipeline) Encode(input []byte) ([]byte, error) {
	data := input
	for _, f := range p.filters {
		var err error
		if data, err = f.Encode(data); err != nil {
			return nil, fmt.Errorf("filter %s encode: %w", f.Spec(), err)
		}
	}
	return data, nil
}

// Decode applies the filters in reverse order.
func (p *Pipeline) Decode(input []byte) ([]byte, error) {
	data := input
	for i := len(p.filters) - 1; i >= 0; i-- {
		var err error
		if data, err = p.filters[i].Decode(data); err != nil {
			return nil, fmt.Errorf("filter %s decode: %w", p.filters[i].Spec(), err)
		}
	}
	return data, nil
}

// Empty returns true if the pipeline has no filters.
func (p *Pipeline) Empty() bool {
	return p == nil || len(p.filters) == 0
}

// Len returns the number of filters in the pipeline.
func (p *Pipeline) Len() int {
	if p == nil {
		return 0
	}
	return len(p.filters)
}
