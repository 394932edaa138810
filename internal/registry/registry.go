// Package registry maps loosely-typed entity references (numeric kind id,
// "namespace.name" string, or an already-resolved Kind) onto the closed set
// of domain types that polymorphic rows may point at. Every kind that wants
// owner notifications or payload labels registers an explicit resolver at
// startup; there is no reflection-based dispatch.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// ErrUnknownKind is returned when a reference does not match any registered kind.
var ErrUnknownKind = errors.New("unknown entity kind")

// Kind identifies one concrete domain type.
type Kind struct {
	ID        uint
	Namespace string
	Name      string
}

// Key returns the canonical "namespace.name" representation used in API
// payloads and websocket messages.
func (k Kind) Key() string {
	return k.Namespace + "." + k.Name
}

// OwnerResolver returns the user id owning the object, false when the row is
// gone or the kind has no owner notion.
type OwnerResolver func(db *gorm.DB, objectID uint) (uint, bool)

// LabelResolver returns a human-readable label for the object (e.g. an
// animal's name).
type LabelResolver func(db *gorm.DB, objectID uint) (string, bool)

// Registry is a fixed lookup table over the recognized entity kinds.
type Registry struct {
	byID   map[uint]Kind
	byKey  map[string]Kind
	byName map[string]Kind
	owners map[uint]OwnerResolver
	labels map[uint]LabelResolver
}

func New() *Registry {
	return &Registry{
		byID:   make(map[uint]Kind),
		byKey:  make(map[string]Kind),
		byName: make(map[string]Kind),
		owners: make(map[uint]OwnerResolver),
		labels: make(map[uint]LabelResolver),
	}
}

// Register adds a kind to the registry. Panics on duplicate registration:
// the kind table is assembled once at startup and a clash is a programming
// error.
func (r *Registry) Register(k Kind) Kind {
	if _, exists := r.byID[k.ID]; exists {
		panic(fmt.Sprintf("registry: duplicate kind id %d", k.ID))
	}
	if _, exists := r.byKey[k.Key()]; exists {
		panic(fmt.Sprintf("registry: duplicate kind key %q", k.Key()))
	}
	r.byID[k.ID] = k
	r.byKey[k.Key()] = k
	r.byName[k.Name] = k
	return k
}

// SetOwnerResolver attaches the owner lookup for a registered kind.
func (r *Registry) SetOwnerResolver(key string, fn OwnerResolver) {
	kind, ok := r.byKey[key]
	if !ok {
		panic(fmt.Sprintf("registry: owner resolver for unregistered kind %q", key))
	}
	r.owners[kind.ID] = fn
}

// SetLabelResolver attaches the label lookup for a registered kind.
func (r *Registry) SetLabelResolver(key string, fn LabelResolver) {
	kind, ok := r.byKey[key]
	if !ok {
		panic(fmt.Sprintf("registry: label resolver for unregistered kind %q", key))
	}
	r.labels[kind.ID] = fn
}

// Resolve accepts a Kind, an integer id, a numeric string, or a
// "namespace.name" string and returns the canonical Kind.
func (r *Registry) Resolve(value any) (Kind, error) {
	switch v := value.(type) {
	case Kind:
		if _, ok := r.byID[v.ID]; ok {
			return v, nil
		}
	case int:
		return r.byIDOrErr(uint(v))
	case int64:
		return r.byIDOrErr(uint(v))
	case uint:
		return r.byIDOrErr(v)
	case float64:
		// JSON numbers decode as float64 when bound through an any field.
		return r.byIDOrErr(uint(v))
	case string:
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			return r.byIDOrErr(uint(id))
		}
		if strings.Contains(v, ".") {
			if kind, ok := r.byKey[strings.ToLower(v)]; ok {
				return kind, nil
			}
		}
	}
	return Kind{}, fmt.Errorf("%w: %v", ErrUnknownKind, value)
}

func (r *Registry) byIDOrErr(id uint) (Kind, error) {
	if kind, ok := r.byID[id]; ok {
		return kind, nil
	}
	return Kind{}, fmt.Errorf("%w: %d", ErrUnknownKind, id)
}

// ByName looks a kind up by its bare model name (the Notification.TargetType
// convention).
func (r *Registry) ByName(name string) (Kind, bool) {
	kind, ok := r.byName[strings.ToLower(name)]
	return kind, ok
}

// Kinds returns every registered kind ordered by id, for the content-types
// listing endpoint.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.byID))
	for _, kind := range r.byID {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i].ID < kinds[j].ID })
	return kinds
}

// ResolveOwner runs the owner resolver for the kind, when one is registered.
func (r *Registry) ResolveOwner(db *gorm.DB, kind Kind, objectID uint) (uint, bool) {
	fn, ok := r.owners[kind.ID]
	if !ok {
		return 0, false
	}
	return fn(db, objectID)
}

// ResolveLabel runs the label resolver for the kind, when one is registered.
func (r *Registry) ResolveLabel(db *gorm.DB, kind Kind, objectID uint) (string, bool) {
	fn, ok := r.labels[kind.ID]
	if !ok {
		return "", false
	}
	return fn(db, objectID)
}
