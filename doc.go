// Obligatory // comment

/*

Package nphase builds HTTP responses out of small steps whose types
record how far the response has progressed.  Writing a body before a
status, adding a header after the header section was closed, or
answering twice does not compile.

Phases

A response moves through four phases, always forward:

	StatusOpen -> HeadersOpen -> BodyOpen -> ResponseEnded

A Conn[P] is a handle on a connection in phase P.  The mutators are
functions that take a Conn of one phase and return a Conn of the next:

	func SetStatus(c Conn[StatusOpen], code int) Conn[HeadersOpen]
	func EndHeaders(c Conn[HeadersOpen]) Conn[BodyOpen]
	func SetBody(c Conn[BodyOpen], body []byte) Conn[ResponseEnded]

Go cannot stop a caller from keeping an old handle around, so every
handle also carries a run-time tag.  Using a handle after its
connection moved on panics with *ProtocolViolation.

Middleware

Pipelines are not usually written against Conn directly.  A
Middleware[I, O, E, A] is a step that starts in phase I, ends in phase
O, and either fails with an E or produces an A.  Steps are values:
building one does nothing, and the same step can be run against any
number of connections.

	hello := nphase.Then(
		nphase.Status[error](http.StatusOK),
		nphase.Then(
			nphase.CloseHeaders[error](),
			nphase.Send[error]("hello"),
		),
	)

IChain feeds the value of one step into a function that picks the
next step.  Its phases must line up: the output phase of the first
step is the input phase of the second.

Errors

A failed step skips everything after it.  Writes it already made are
not undone.  OrElse and Alt recover by running another step that
starts where the failed pipeline started and ends where it was going
to end, so a recovered pipeline still finishes the response.

Adapters

Connection is implemented by adapters over real servers.  See the
nhttp package for net/http and nfast for fasthttp.  The nmock package
records what a pipeline did, for tests.

*/
package nphase
