package model

// Counts holds the four activity counters.
type Counts struct {
	Intakes    int `json:"intakes"`
	Interviews int `json:"interviews"`
	Placements int `json:"placements"`
	Prospects  int `json:"prospects"`
}

// Add returns the element-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		Intakes:    c.Intakes + o.Intakes,
		Interviews: c.Interviews + o.Interviews,
		Placements: c.Placements + o.Placements,
		Prospects:  c.Prospects + o.Prospects,
	}
}

// IsZero reports whether all counters are zero.
func (c Counts) IsZero() bool {
	return c == Counts{}
}

// Aggregate is one consultant's summed counts over a filtered entry set.
type Aggregate struct {
	Name string `json:"name"`
	Counts
}
