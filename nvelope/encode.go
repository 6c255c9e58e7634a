package nvelope

import (
	"encoding/json"
	"encoding/xml"
	"net/http"
	"reflect"

	"code.hybscloud.com/kont"
	"gopkg.in/yaml.v3"

	"github.com/muir/nphase"
)

// Response is the value a handler step produces for encoding.
type Response interface{}

// EncodeJSON is a JSON encoder manufactured by MakeResponseEncoder with default options.
var EncodeJSON = MakeResponseEncoder("JSON", nphase.ApplicationJSON, json.Marshal)

// EncodeXML is a XML encoder manufactured by MakeResponseEncoder with default options.
var EncodeXML = MakeResponseEncoder("XML", nphase.ApplicationXML, xml.Marshal)

// EncodeYAML is a YAML encoder manufactured by MakeResponseEncoder with default options.
var EncodeYAML = MakeResponseEncoder("YAML", nphase.ApplicationYAML, yaml.Marshal)

type encoderOptions struct {
	errorEncoder func(BasicLogger, error) []byte
	apiEnforcer  func(enc []byte, r nphase.Request) error
	log          BasicLogger
	nil204       bool
}

type ResponseEncoderFuncArg func(*encoderOptions)

// WithErrorEncoder specifies how to encode error responses.  The default
// encoding is to simply send err.Error() as plain text.  Error encoding
// is not allowed to return error itself nor is it allowed to panic.
func WithErrorEncoder(errorEncoder func(BasicLogger, error) []byte) ResponseEncoderFuncArg {
	return func(o *encoderOptions) {
		o.errorEncoder = errorEncoder
	}
}

// WithAPIEnforcer specifies
// a function that can check if the encoded API response is valid
// for the endpoint that is generating the response.  This is where
// swagger enforcement could be added.  The default is not not verify
// API conformance.
func WithAPIEnforcer(apiEnforcer func(enc []byte, r nphase.Request) error) ResponseEncoderFuncArg {
	return func(o *encoderOptions) {
		o.apiEnforcer = apiEnforcer
	}
}

// WithEncoderLogger sets where encoding failures are logged.
func WithEncoderLogger(log BasicLogger) ResponseEncoderFuncArg {
	return func(o *encoderOptions) {
		o.log = log
	}
}

// Nil204 causes a nil value to be answered with a 204 and no body.
func Nil204() ResponseEncoderFuncArg {
	return func(o *encoderOptions) {
		o.nil204 = true
	}
}

// ResponseEncoder finishes a pipeline by encoding its value or its
// error.
type ResponseEncoder struct {
	name        string
	contentType nphase.MediaType
	marshaller  func(interface{}) ([]byte, error)
	o           encoderOptions
}

// MakeResponseEncoder builds a ResponseEncoder.  With modifies an
// existing one.
func MakeResponseEncoder(
	name string,
	contentType nphase.MediaType,
	marshaller func(interface{}) ([]byte, error),
	encoderFuncArgs ...ResponseEncoderFuncArg,
) *ResponseEncoder {
	e := &ResponseEncoder{
		name:        name,
		contentType: contentType,
		marshaller:  marshaller,
		o: encoderOptions{
			errorEncoder: func(_ BasicLogger, err error) []byte { return []byte(err.Error()) },
			apiEnforcer:  func(_ []byte, _ nphase.Request) error { return nil },
			log:          NoLogger(),
		},
	}
	for _, fa := range encoderFuncArgs {
		fa(&e.o)
	}
	return e
}

// With returns a copy of the encoder with more options applied.
func (e *ResponseEncoder) With(encoderFuncArgs ...ResponseEncoderFuncArg) *ResponseEncoder {
	c := *e
	for _, fa := range encoderFuncArgs {
		fa(&c.o)
	}
	return &c
}

type encoded struct {
	status      int
	contentType nphase.MediaType
	body        []byte
}

func (e *ResponseEncoder) encode(model Response, err error, r nphase.Request) encoded {
	fields := func(err error) map[string]interface{} {
		return map[string]interface{}{
			"error":   err.Error(),
			"method":  r.Method(),
			"uri":     r.OriginalURL(),
			"encoder": e.name,
		}
	}
	if err != nil {
		return encoded{
			status:      GetReturnCode(err),
			contentType: nphase.TextPlain,
			body:        e.o.errorEncoder(e.o.log, err),
		}
	}
	if e.o.nil204 && isNil(model) {
		return encoded{status: http.StatusNoContent}
	}
	enc, err := e.marshaller(model)
	if err != nil {
		e.o.log.Error("Cannot marshal response", fields(err))
		return encoded{
			status:      http.StatusInternalServerError,
			contentType: nphase.TextPlain,
			body:        e.o.errorEncoder(e.o.log, err),
		}
	}
	err = e.o.apiEnforcer(enc, r)
	if err != nil {
		e.o.log.Error("Invalid API response", fields(err))
		return encoded{
			status:      http.StatusInternalServerError,
			contentType: nphase.TextPlain,
			body:        e.o.errorEncoder(e.o.log, err),
		}
	}
	return encoded{status: http.StatusOK, contentType: e.contentType, body: enc}
}

// Respond runs m and always answers: its value is encoded with a 200
// (or 204, see Nil204) and its error is sent with the status from
// GetReturnCode.  Because m cannot leave StatusOpen, a failure of m
// never leaves a half written response behind.
func Respond[A any](e *ResponseEncoder, m nphase.Middleware[nphase.StatusOpen, nphase.StatusOpen, error, A]) nphase.Middleware[nphase.StatusOpen, nphase.ResponseEnded, error, struct{}] {
	return nphase.FromFunc(func(c nphase.Conn[nphase.StatusOpen]) kont.Either[error, nphase.Result[nphase.ResponseEnded, struct{}]] {
		var model Response
		var err error
		r := m.Run(c)
		if failure, ok := r.GetLeft(); ok {
			err = failure
		} else {
			out, _ := r.GetRight()
			c = out.Conn
			model = out.Value
		}
		enc := e.encode(model, err, c.Request())
		return writeEncoded(enc).Run(c)
	})
}

func writeEncoded(enc encoded) nphase.Middleware[nphase.StatusOpen, nphase.ResponseEnded, error, struct{}] {
	if enc.body == nil {
		return nphase.Then(nphase.Status[error](enc.status),
			nphase.Then(nphase.CloseHeaders[error](), nphase.End[error]()))
	}
	return nphase.Then(nphase.Status[error](enc.status),
		nphase.Then(nphase.ContentType[error](enc.contentType),
			nphase.Then(nphase.CloseHeaders[error](), nphase.SendBytes[error](enc.body))))
}

func isNil(model Response) bool {
	if model == nil {
		return true
	}
	v := reflect.ValueOf(model)
	// nolint:exhaustive
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return v.IsNil()
	}
	return false
}
