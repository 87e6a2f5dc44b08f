package domain

import (
	"github.com/aretw0/screengraph/pkg/automation"
)

// Env is what effects, mutators and conditions run against.
type Env struct {
	Driver automation.Driver
	State  *UserState
	// Params are the arguments of the action being performed, if any.
	Params map[string]any
}

// Param returns an action argument.
func (e *Env) Param(name string) (any, bool) {
	if e == nil || e.Params == nil {
		return nil, false
	}
	v, ok := e.Params[name]
	return v, ok
}

func (e *Env) driver() (automation.Driver, error) {
	if e == nil || e.Driver == nil {
		return nil, ErrNoDriver
	}
	return e.Driver, nil
}
