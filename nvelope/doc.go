// Stuff

/*

Package nvelope provides the steps that make building HTTP endpoints
out of nphase middleware simple.  In combination with npoint and
nhttp it provides an API endpoint framework.

The main things it provides are a request decoder and a response
encoder.

The request decoder will fill in a struct to capture all the
parts of the request: path parameters, query parameters, headers,
cookies, and the body.  The decoding is driven by struct tags that
are interpreted once, when NewRequestDecoder is called.  Decode turns
a decoder into a step that never writes.

The response encoder is comparatively simpler: Respond runs a step
that stays in StatusOpen and encodes its value or its error.

Deferred writer allows output to be buffered and then abandoned.
nhttp uses it so that OrElse can discard a failed branch's writes.

NotFound, Forbidden, BadRequest, and friends provide easy ways to
annotate an error to cause a specific HTTP status code to be sent.

CatchPanic makes it easy to turn panics into failures.

RateLimit and RateLimitBy fail with 429 when a token bucket is
empty.

Int, Bool, JSONBody, and the other value decoders plug into the
nphase Decode* steps.

*/
package nvelope
