package servicer

import (
	"errors"
	"fmt"

	"github.com/aretw0/twentyfive/pkg/domain"
)

var (
	// ErrUnknownVerb is returned when no route exists for a verb or request type.
	ErrUnknownVerb = errors.New("unknown verb")

	// ErrBadRequest is returned when a request does not match its verb's payload type.
	ErrBadRequest = errors.New("bad request")
)

// readFunc projects a response from a snapshot.
type readFunc func(rules domain.Rules, state domain.ListState, req any) (any, error)

// writeFunc computes the effect of a writer: the new state and the response.
type writeFunc func(rules domain.Rules, state domain.ListState, req any) (domain.ListState, any, error)

// route binds a verb to exactly one of read or write.
type route struct {
	mode  domain.Mode
	read  readFunc
	write writeFunc
}

// reader adapts a typed Reader handler. Its signature (no state in the result) fixes the mode.
func reader[Req, Resp any](h func(domain.Rules, domain.ListState, Req) (Resp, error)) route {
	return route{
		mode: domain.ModeReader,
		read: func(rules domain.Rules, state domain.ListState, req any) (any, error) {
			typed, ok := req.(Req)
			if !ok {
				return nil, fmt.Errorf("%w: got %T", ErrBadRequest, req)
			}
			return h(rules, state, typed)
		},
	}
}

// writer adapts a typed Writer handler. Its signature (new state in the result) fixes the mode.
func writer[Req, Resp any](h func(domain.Rules, domain.ListState, Req) (domain.ListState, Resp, error)) route {
	return route{
		mode: domain.ModeWriter,
		write: func(rules domain.Rules, state domain.ListState, req any) (domain.ListState, any, error) {
			typed, ok := req.(Req)
			if !ok {
				return state, nil, fmt.Errorf("%w: got %T", ErrBadRequest, req)
			}
			return h(rules, state, typed)
		},
	}
}

var routes = map[domain.Verb]route{
	domain.VerbCreate: writer(domain.Rules.Create),
	domain.VerbList:   reader(domain.Rules.List),
	domain.VerbAdd:    writer(domain.Rules.Add),
	domain.VerbMove:   writer(domain.Rules.Move),
	domain.VerbDelete: writer(domain.Rules.Delete),
}

// ModeOf reports the access mode of a verb.
func ModeOf(verb domain.Verb) (domain.Mode, error) {
	rt, ok := routes[verb]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVerb, verb)
	}
	return rt.mode, nil
}

// VerbOf maps a request value to its verb.
func VerbOf(req any) (domain.Verb, error) {
	switch req.(type) {
	case domain.CreateRequest:
		return domain.VerbCreate, nil
	case domain.ListRequest:
		return domain.VerbList, nil
	case domain.AddRequest:
		return domain.VerbAdd, nil
	case domain.MoveRequest:
		return domain.VerbMove, nil
	case domain.DeleteRequest:
		return domain.VerbDelete, nil
	}
	return "", fmt.Errorf("%w: request type %T", ErrUnknownVerb, req)
}
