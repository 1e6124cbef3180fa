package ecs

import (
	"cmp"
	"slices"

	"github.com/rotisserie/eris"
)

// tagIndex is a one-to-one mapping between tags and entities.
type tagIndex struct {
	entityByTag map[string]Entity
	tagByEntity map[EntityID]string
}

func newTagIndex() tagIndex {
	return tagIndex{
		entityByTag: make(map[string]Entity),
		tagByEntity: make(map[EntityID]string),
	}
}

func (t *tagIndex) remove(e Entity) {
	tag, ok := t.tagByEntity[e.ID]
	if !ok {
		return
	}
	delete(t.tagByEntity, e.ID)
	delete(t.entityByTag, tag)
}

// groupIndex maps each entity to at most one group, and each group to many entities.
type groupIndex struct {
	entitiesByGroup map[string]map[EntityID]Entity
	groupByEntity   map[EntityID]string
}

func newGroupIndex() groupIndex {
	return groupIndex{
		entitiesByGroup: make(map[string]map[EntityID]Entity),
		groupByEntity:   make(map[EntityID]string),
	}
}

func (g *groupIndex) remove(e Entity) {
	group, ok := g.groupByEntity[e.ID]
	if !ok {
		return
	}
	delete(g.groupByEntity, e.ID)

	members := g.entitiesByGroup[group]
	delete(members, e.ID)
	if len(members) == 0 {
		delete(g.entitiesByGroup, group)
	}
}

// TagEntity gives the entity a unique tag. An entity has at most one tag and a tag names at most
// one entity: retagging the entity drops its old tag, and reusing a tag takes it from its previous
// owner.
func (r *Registry) TagEntity(e Entity, tag string) error {
	if err := r.validate(e); err != nil {
		return eris.Wrap(err, "failed to tag entity")
	}
	if tag == "" {
		return eris.New("tag cannot be empty")
	}

	if owner, ok := r.tags.entityByTag[tag]; ok {
		r.tags.remove(owner)
	}
	r.tags.remove(e)

	r.tags.entityByTag[tag] = e
	r.tags.tagByEntity[e.ID] = tag
	return nil
}

// EntityHasTag reports whether the entity carries the tag.
func (r *Registry) EntityHasTag(e Entity, tag string) bool {
	owner, ok := r.tags.entityByTag[tag]
	return ok && owner == e
}

// EntityByTag returns the entity carrying the tag.
func (r *Registry) EntityByTag(tag string) (Entity, error) {
	e, ok := r.tags.entityByTag[tag]
	if !ok {
		return Entity{}, eris.Wrapf(ErrTagNotFound, "tag %q", tag)
	}
	return e, nil
}

// RemoveEntityTag drops the entity's tag, if any.
func (r *Registry) RemoveEntityTag(e Entity) {
	if !r.entities.isAlive(e) {
		return
	}
	r.tags.remove(e)
}

// GroupEntity puts the entity in a group, taking it out of its previous group if any.
func (r *Registry) GroupEntity(e Entity, group string) error {
	if err := r.validate(e); err != nil {
		return eris.Wrap(err, "failed to group entity")
	}
	if group == "" {
		return eris.New("group cannot be empty")
	}

	r.groups.remove(e)

	members, ok := r.groups.entitiesByGroup[group]
	if !ok {
		members = make(map[EntityID]Entity)
		r.groups.entitiesByGroup[group] = members
	}
	members[e.ID] = e
	r.groups.groupByEntity[e.ID] = group
	return nil
}

// EntityBelongsToGroup reports whether the entity is in the group.
func (r *Registry) EntityBelongsToGroup(e Entity, group string) bool {
	member, ok := r.groups.entitiesByGroup[group][e.ID]
	return ok && member == e
}

// EntitiesByGroup returns the members of a group ordered by ID. Unknown groups are empty.
func (r *Registry) EntitiesByGroup(group string) []Entity {
	members := r.groups.entitiesByGroup[group]
	out := make([]Entity, 0, len(members))
	for _, e := range members {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entity) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// RemoveEntityGroup takes the entity out of its group, if any.
func (r *Registry) RemoveEntityGroup(e Entity) {
	if !r.entities.isAlive(e) {
		return
	}
	r.groups.remove(e)
}
