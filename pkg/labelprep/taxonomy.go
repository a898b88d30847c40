package labelprep

// Label describes one canonical label.
type Label struct {
	Code        int
	Name        string
	Description string
	Forms       []string // accepted surface forms, separator-folded
}

// Taxonomy returns the labels in code order. The result is a copy.
func (p *Preparer) Taxonomy() []Label {
	labels := p.taxonomy.Labels()
	out := make([]Label, len(labels))
	for i, l := range labels {
		out[i] = Label{
			Code:        int(l.Code),
			Name:        l.Name,
			Description: l.Desc,
			Forms:       p.taxonomy.Forms(l.Code),
		}
	}
	return out
}
