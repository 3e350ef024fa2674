package ecs

import (
	"errors"
	"reflect"
	"strings"
)

var (
	ErrDuplicateComponent   = errors.New("component already present on entity")
	ErrComponentNotFound    = errors.New("component not found on entity")
	ErrInvalidComponentType = errors.New("type is not a registered component")
	ErrEntityNotFound       = errors.New("entity not found in pool")
	ErrEntityRegistered     = errors.New("entity is registered in another pool")
	ErrNilEntity            = errors.New("entity is nil")
	ErrIndependentEntity    = errors.New("entity has no owning pool")
	ErrNullPool             = errors.New("pool is nil")
)

// Error is returned by every failing pool, entity and system operation.
// It carries the pool and entity involved so callers can inspect them;
// use errors.Is against the Err* sentinels to classify it.
type Error struct {
	Op     string
	Pool   *EntityPool
	Entity *Entity
	Type   reflect.Type
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("ecs: ")
	b.WriteString(e.Op)
	if e.Pool != nil {
		b.WriteString(" pool=")
		b.WriteString(e.Pool.id)
	}
	if e.Entity != nil {
		b.WriteString(" entity=")
		b.WriteString(e.Entity.id)
	}
	if e.Type != nil {
		b.WriteString(" type=")
		b.WriteString(e.Type.String())
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}
