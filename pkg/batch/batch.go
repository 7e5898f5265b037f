package batch

import "fmt"

// Object is a single remote object scheduled for transfer. Key is the
// object's full path within its container. A negative Size marks a size
// that has not been resolved yet.
type Object struct {
	Key  string
	Size int64
}

// Group is an ordered run of objects transferred as one unit. Size is the
// sum of the member sizes, counting unresolved (negative) sizes as zero.
type Group struct {
	Objects []Object
	Size    int64
}

// Len returns the number of objects in the group.
func (g Group) Len() int {
	return len(g.Objects)
}

// Pack splits objects into groups whose combined size stays within
// maxGroupBytes. It is greedy and single-pass: the current group is sealed
// as soon as the next object would push it past the budget. Objects keep
// their input order, groups are ordered by their first member, and an
// object larger than the budget forms a group of its own. Empty input
// yields no groups.
//
// A non-positive maxGroupBytes disables packing and returns one group per
// object. Pack panics if any object has an unresolved (negative) size.
func Pack(objects []Object, maxGroupBytes int64) []Group {
	if maxGroupBytes <= 0 {
		return Singletons(objects)
	}

	var groups []Group
	var current Group
	for _, obj := range objects {
		if obj.Size < 0 {
			panic(fmt.Sprintf("batch: unresolved size for object %q", obj.Key))
		}
		if len(current.Objects) > 0 && current.Size+obj.Size > maxGroupBytes {
			groups = append(groups, current)
			current = Group{}
		}
		current.Objects = append(current.Objects, obj)
		current.Size += obj.Size
	}
	if len(current.Objects) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// Singletons returns one group per object, preserving order. Unresolved
// (negative) sizes are tolerated and count as zero, so Singletons works on
// listings that skipped size resolution.
func Singletons(objects []Object) []Group {
	if len(objects) == 0 {
		return nil
	}
	groups := make([]Group, len(objects))
	for i, obj := range objects {
		g := Group{Objects: []Object{obj}}
		if obj.Size > 0 {
			g.Size = obj.Size
		}
		groups[i] = g
	}
	return groups
}

// Total tallies the object count and byte total across groups.
func Total(groups []Group) (objects int, bytes int64) {
	for _, g := range groups {
		objects += len(g.Objects)
		bytes += g.Size
	}
	return objects, bytes
}
