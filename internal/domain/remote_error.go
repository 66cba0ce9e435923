package domain

import (
	"errors"
	"strings"
)

type ErrorKind int

const (
	ErrorKindNone ErrorKind = iota
	ErrorKindNetwork
	ErrorKindInvalidCart
	ErrorKindOther
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "none"
	case ErrorKindNetwork:
		return "network"
	case ErrorKindInvalidCart:
		return "invalid_cart"
	default:
		return "other"
	}
}

// invalidCartMessage is the prefix the cart service uses when a cart id no longer resolves.
const invalidCartMessage = "Could not find a cart"

type GraphQLError struct {
	Message  string
	Path     string
	Category string
}

// RemoteError is the failure of one cart service call. Network is set when the call never
// produced a GraphQL response; GraphQL holds the structured error entries otherwise.
type RemoteError struct {
	Network error
	GraphQL []GraphQLError
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}
	if e.Network != nil {
		return "network error: " + e.Network.Error()
	}

	messages := make([]string, 0, len(e.GraphQL))
	for _, entry := range e.GraphQL {
		messages = append(messages, entry.Message)
	}
	if len(messages) == 0 {
		return "graphql error"
	}

	return "graphql error: " + strings.Join(messages, "; ")
}

func (e *RemoteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Network
}

func NewNetworkError(err error) *RemoteError {
	return &RemoteError{Network: err}
}

func NewGraphQLError(entries ...GraphQLError) *RemoteError {
	return &RemoteError{GraphQL: entries}
}

// Classify sorts a failure into the recovery taxonomy. Only ErrorKindInvalidCart is ever
// recovered automatically. A network failure wins over any message content, and errors that
// did not come back as a RemoteError are treated as network failures because they say nothing
// about whether the cart is still valid.
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}

	var remote *RemoteError
	if !errors.As(err, &remote) || remote == nil {
		return ErrorKindNetwork
	}
	if remote.Network != nil {
		return ErrorKindNetwork
	}
	for _, entry := range remote.GraphQL {
		if strings.Contains(entry.Message, invalidCartMessage) {
			return ErrorKindInvalidCart
		}
	}

	return ErrorKindOther
}

func IsInvalidCart(err error) bool {
	return Classify(err) == ErrorKindInvalidCart
}
