/*
Package nhttp runs nphase pipelines under net/http.

ToHandler turns a pipeline that starts in StatusOpen and ends in
ResponseEnded into an http.Handler.  The status and headers of each
response are buffered in an nvelope.DeferredWriter until the body is
sent.  Until then a failed recovery branch or a failed pipeline
leaves no trace: OrElse drops what the failed branch wrote and the
handler's fallback answers a failed pipeline from a clean slate.

FromHandler lifts existing func(http.Handler) http.Handler middleware
into a step.  Path parameters are read with gorilla/mux.  NewMetrics
counts requests with Prometheus.
*/
package nhttp
