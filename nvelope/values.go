package nvelope

import (
	"encoding/json"
	"encoding/xml"
	"io"
	"reflect"
	"strconv"

	"code.hybscloud.com/kont"
	"github.com/muir/reflectutils"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// The functions here are decoders for nphase.DecodeParam,
// nphase.DecodeHeader, and nphase.DecodeBody.  Failures are
// annotated as BadRequest and keep the parser's error as their
// cause.

// ReadBody turns an opaque request body into bytes.  It accepts
// []byte, string, io.Reader, and nil.
func ReadBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	case io.Reader:
		data, err := io.ReadAll(b)
		return data, errors.Wrap(err, "read body")
	default:
		return nil, errors.Errorf("body is a %T, not bytes", body)
	}
}

func Int(s string) kont.Either[error, int] {
	i, err := strconv.Atoi(s)
	if err != nil {
		return kont.Left[error, int](BadRequest(errors.WithStack(err)))
	}
	return kont.Right[error](i)
}

func Int64(s string) kont.Either[error, int64] {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return kont.Left[error, int64](BadRequest(errors.WithStack(err)))
	}
	return kont.Right[error](i)
}

func Float64(s string) kont.Either[error, float64] {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return kont.Left[error, float64](BadRequest(errors.WithStack(err)))
	}
	return kont.Right[error](f)
}

func Bool(s string) kont.Either[error, bool] {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return kont.Left[error, bool](BadRequest(errors.WithStack(err)))
	}
	return kont.Right[error](b)
}

// NonEmpty fails when the value is missing.
func NonEmpty(what string) func(string) kont.Either[error, string] {
	return func(s string) kont.Either[error, string] {
		if s == "" {
			return kont.Left[error, string](BadRequest(errors.Errorf("%s is required", what)))
		}
		return kont.Right[error](s)
	}
}

func unmarshalBody[A any](format string, unmarshal func([]byte, interface{}) error) func(any) kont.Either[error, A] {
	return func(body any) kont.Either[error, A] {
		var a A
		data, err := ReadBody(body)
		if err == nil {
			err = unmarshal(data, &a)
		}
		if err != nil {
			return kont.Left[error, A](BadRequest(errors.Wrapf(err, "decode %s body into %s",
				format, reflectutils.TypeName(reflect.TypeOf((*A)(nil)).Elem()))))
		}
		return kont.Right[error](a)
	}
}

// JSONBody decodes a JSON body.  A body that is already an A is
// used as is.
func JSONBody[A any](body any) kont.Either[error, A] {
	if a, ok := body.(A); ok {
		return kont.Right[error](a)
	}
	return unmarshalBody[A]("JSON", json.Unmarshal)(body)
}

// XMLBody decodes an XML body.
func XMLBody[A any](body any) kont.Either[error, A] {
	return unmarshalBody[A]("XML", xml.Unmarshal)(body)
}

// YAMLBody decodes a YAML body.
func YAMLBody[A any](body any) kont.Either[error, A] {
	return unmarshalBody[A]("YAML", yaml.Unmarshal)(body)
}
