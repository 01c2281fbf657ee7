package hubsdk

import "context"

// Operation is a single unit of work in a sequential batch, typically a
// closure over one of the client verbs.
type Operation func(ctx context.Context) (*Response, error)

// Result pairs an operation's response with its error. Exactly one of
// the two fields is meaningful.
type Result struct {
	Response *Response
	Err      error
}

// ExecuteSequentially runs ops strictly in order, one at a time, each
// operation starting only after the previous one has finished. Failures
// do not stop the batch; every operation runs and the returned slice has
// one Result per operation, in input order.
//
// Rate limiting applies per operation as usual, so a long batch paces
// itself across windows without any coordination by the caller.
func (c *Client) ExecuteSequentially(ctx context.Context, ops []Operation) []Result {
	results := make([]Result, len(ops))
	for i, op := range ops {
		resp, err := op(ctx)
		results[i] = Result{Response: resp, Err: err}
	}
	return results
}
