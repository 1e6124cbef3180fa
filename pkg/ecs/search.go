package ecs

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rotisserie/eris"
)

// SearchParam contains paramters for a search query.
// We use expr lang for the where clause to filter the entities, please refer to its documentation
// for more details: https://expr-lang.org/docs/getting-started.
type SearchParam struct {
	Find  []string    // List of component names to search for
	Match SearchMatch // A match type to use for the search
	Where string      // Optional expr language string to filter the results.
}

// SearchMatch is the type of match to use for the search.
type SearchMatch string

const (
	// MatchExact matches entities that have exactly the specified components.
	MatchExact SearchMatch = "exact"
	// MatchContains matches entities that contains the specified components, but may have other
	// components as well.
	MatchContains SearchMatch = "contains"
)

// validateAndGetFilter validates the search parameters and returns an expr VM program compiled
// from the where clause. The program is nil when there is no where clause.
func (s *SearchParam) validateAndGetFilter() (*vm.Program, error) {
	if len(s.Find) == 0 {
		return nil, eris.New("component list cannot be empty")
	}

	if s.Match != MatchExact && s.Match != MatchContains {
		return nil, eris.Errorf("invalid `match` value: must be either '%s' or '%s'", MatchExact, MatchContains)
	}

	if len(s.Where) == 0 {
		return nil, nil //nolint:nilnil // no filter
	}

	filter, err := expr.Compile(s.Where, expr.AsBool())
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse where clause")
	}
	return filter, nil
}

// Search returns the live entities matching the search parameters, ordered by entity ID. Each
// result maps component names to component values, plus "_id" holding the entity ID.
func (r *Registry) Search(params SearchParam) ([]map[string]any, error) {
	filter, err := params.validateAndGetFilter()
	if err != nil {
		return nil, eris.Wrap(err, "invalid search params")
	}

	var find Signature
	for _, name := range params.Find {
		cid, err := r.components.getID(name)
		if err != nil {
			return nil, eris.Wrap(err, "invalid search params")
		}
		err = find.Set(cid, true)
		if err != nil {
			return nil, err
		}
	}

	results := make([]map[string]any, 0)
	for id := range r.entities.capacity() {
		e, ok := r.entities.entity(EntityID(id))
		if !ok {
			continue
		}

		sig := r.signatures[e.ID]
		switch params.Match {
		case MatchExact:
			if !sig.Equal(find) {
				continue
			}
		case MatchContains:
			if !sig.Contains(find) {
				continue
			}
		}

		entityMap := r.toMap(e)
		if filter == nil {
			results = append(results, entityMap)
			continue
		}

		// Run the filter expression with the entity map as the environment so the program has
		// access to the entity's components.
		output, err := expr.Run(filter, entityMap)
		if err != nil {
			return nil, eris.Wrap(err, "failed to run filter expression")
		}

		// expr.AsBool can't fully check the result type at compile time because the environment
		// only exists while iterating, e.g. the type of Health.Value is unknown when compiling.
		isMatch, ok := output.(bool)
		if !ok {
			return nil, eris.New("invalid where clause")
		}
		if isMatch {
			results = append(results, entityMap)
		}
	}

	return results, nil
}

// toMap converts an entity to a map of its components keyed by component name. A "_id" key is
// added to the map to store the entity ID.
func (r *Registry) toMap(e Entity) map[string]any {
	sig := r.signatures[e.ID]
	data := make(map[string]any, sig.Count()+1)

	// Stored as uint32 so expressions can compare it with integer literals.
	data["_id"] = uint32(e.ID)

	for cid := range sig.Bits() {
		comp, ok := r.pools[cid].getAbstract(e.ID)
		if !ok {
			continue
		}
		data[comp.Name()] = comp
	}
	return data
}
