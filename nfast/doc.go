/*
Package nfast runs nphase pipelines under fasthttp.

ToHandler turns a pipeline into a fasthttp.RequestHandler.  Path
parameters are read from the request's string user values.
*/
package nfast
