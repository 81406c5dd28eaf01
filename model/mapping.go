package model

// Mapping is an ordered list of step maps. Mapping a position applies each
// map in turn.
type Mapping struct {
	maps []PosMap
}

// NewMapping creates a mapping over the given maps.
func NewMapping(maps ...PosMap) *Mapping {
	return &Mapping{maps: append([]PosMap(nil), maps...)}
}

// Append adds a map to the end of the mapping.
func (m *Mapping) Append(pm PosMap) {
	m.maps = append(m.maps, pm)
}

// AppendMapping adds all maps of other.
func (m *Mapping) AppendMapping(other *Mapping) {
	if other == nil {
		return
	}
	m.maps = append(m.maps, other.maps...)
}

// Len returns the number of maps.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.maps)
}

// Map translates pos through every step.
func (m *Mapping) Map(pos Position, bias Bias) Position {
	if m == nil {
		return pos
	}
	for _, pm := range m.maps {
		pos = pm.Map(pos, bias)
	}
	return pos
}

// MapRange translates both endpoints of r into newDoc. The start sticks to
// content after it and the end to content before it, so inserted content at
// either boundary stays outside. A range whose content was deleted collapses
// at its mapped start.
func (m *Mapping) MapRange(r Range, newDoc *Document) Range {
	start := m.Map(r.Start, BiasRight)
	end := m.Map(r.End, BiasLeft)
	if r.Collapsed() {
		end = m.Map(r.End, BiasRight)
	}
	if Compare(start, end) > 0 {
		end = start
	}
	return Range{Start: start, End: end, doc: newDoc}
}
