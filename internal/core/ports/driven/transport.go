package driven

import "context"

// FeedTransport posts an encoded feed document and returns the server's
// response document. Implementations do not retry; retry policy belongs
// to the caller.
type FeedTransport interface {
	Post(ctx context.Context, url string, body []byte) ([]byte, error)
}
