package ecs

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// entityDump is the JSON shape of DumpEntity.
type entityDump struct {
	ID         EntityID             `json:"id"`
	Generation uint32               `json:"generation"`
	Signature  string               `json:"signature"`
	Tag        string               `json:"tag,omitempty"`
	Group      string               `json:"group,omitempty"`
	Components map[string]Component `json:"components"`
}

// DumpEntity renders an entity and its components as JSON. Components are keyed by name.
func (r *Registry) DumpEntity(e Entity) ([]byte, error) {
	if err := r.validate(e); err != nil {
		return nil, eris.Wrap(err, "failed to dump entity")
	}

	sig := r.signatures[e.ID]
	dump := entityDump{
		ID:         e.ID,
		Generation: e.Generation,
		Signature:  sig.String(),
		Tag:        r.tags.tagByEntity[e.ID],
		Group:      r.groups.groupByEntity[e.ID],
		Components: make(map[string]Component, sig.Count()),
	}
	for cid := range sig.Bits() {
		comp, ok := r.pools[cid].getAbstract(e.ID)
		if !ok {
			continue
		}
		dump.Components[comp.Name()] = comp
	}

	data, err := json.Marshal(dump)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to marshal entity %s", e)
	}
	return data, nil
}
