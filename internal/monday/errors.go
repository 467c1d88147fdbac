package monday

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// ErrAuthMissing is returned before any network call when the client holds no token.
var ErrAuthMissing = errors.New("monday.com token not set")

// TransportError reports a non-2xx HTTP response from the API.
type TransportError struct {
	Status     int
	StatusText string
	// Body holds the start of the response body for diagnostics.
	Body string
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("monday API error: %d %s", e.Status, e.StatusText)
}

// GraphQLError reports a response whose errors array was non-empty.
// Message is the first error; Raw keeps the full list.
type GraphQLError struct {
	Message string
	Raw     gqlerror.List
}

// Error implements the error interface.
func (e *GraphQLError) Error() string {
	if len(e.Raw) > 1 {
		return fmt.Sprintf("monday GraphQL error: %s (and %d more)", e.Message, len(e.Raw)-1)
	}
	return "monday GraphQL error: " + e.Message
}

// IsTransport reports whether err is or wraps a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsGraphQL reports whether err is or wraps a *GraphQLError.
func IsGraphQL(err error) bool {
	var ge *GraphQLError
	return errors.As(err, &ge)
}
