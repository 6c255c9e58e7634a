package nvelope

import (
	"encoding"
	"encoding/json"
	"encoding/xml"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/muir/reflectutils"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/muir/nphase"
)

// Decoder is the signature for decoders: take bytes and
// a pointer to something and deserialize it.
type Decoder func([]byte, interface{}) error

type decodeOptions struct {
	tag                string
	decoders           map[string]Decoder
	defaultContentType string
}

// DecodeOpt are functional arguments for NewRequestDecoder
type DecodeOpt func(*decodeOptions)

// WithDecoder maps conent types (eg "application/json") to
// decode functions (eg json.Unmarshal).  If a Content-Type header
// is used in the requet, then the value of that header will be
// used to pick a decoder.
func WithDecoder(contentType string, decoder Decoder) DecodeOpt {
	return func(o *decodeOptions) {
		o.decoders[contentType] = decoder
	}
}

// WithDefaultContentType specifies which model decoder to use when
// no "Content-Type" header was sent.
func WithDefaultContentType(contentType string) DecodeOpt {
	return func(o *decodeOptions) {
		o.defaultContentType = contentType
	}
}

// WithTag overrides the tag for specifying fields to be filled
// from the http request.  The default is "nvelope"
func WithTag(tag string) DecodeOpt {
	return func(o *decodeOptions) {
		o.tag = tag
	}
}

// RequestDecoder fills a struct of type A (or *A's target when A is
// a pointer to a struct) from a request.  All the reflection is done
// once by NewRequestDecoder.
//
// The following tags are recognized:
//
// `nvelope:"model"` causes the POST or PUT body to be decoded
// using a decoder like json.Unmarshal.
//
// `nvelope:"path,name=xxx"` causes part of the URL path to
// be extracted and written to the tagged field.
//
// `nvelope:"query,name=xxx"` causes the named URL query
// parameters to be extracted and written to the tagged field.
//
// `nvelope:"header,name=xxx"` causes the named HTTP header
// to be extracted and written to the tagged field.
//
// `nvelope:"cookie,name=xxx"` cause the named HTTP cookie to be
// extracted and writted to the tagged field.
//
// Path, query, header, and cookie support options described
// in https://swagger.io/docs/specification/serialization/ for
// controlling how to serialize.  The following are supported
// as appropriate.
//
//	explode=true			# default for query
//	explode=false			# default for path, header
//	delimiter=comma			# default
//	delimiter=space			# query parameters only
//	delimiter=pipe			# query parameters only
//	allowReserved=false		# default
//	allowReserved=true		# query parameters only
//	deepObject=true			# query parameters only, for maps and structs
//	content=application/json	# specifies that the value should be decoded with JSON
//	content=application/xml		# specifies that the value should be decoded with XML
//	content=application/yaml	# specifies that the value should be decoded with YAML
//
// "style=label" and "style=matrix" are NOT yet supported for path parameters.
//
// Generally setting "content" to something should be paired with "explode=false"
//
// Parameters that are absent from the request leave their fields
// untouched.
type RequestDecoder[A any] struct {
	options       decodeOptions
	model         reflect.Type
	returnAddress bool
	varsFillers   []func(model reflect.Value, vars map[string]string) error
	headerFillers []func(model reflect.Value, r nphase.Request) error
	queryFillers  []func(model reflect.Value, query url.Values) error
	cookieFillers []func(model reflect.Value, r *http.Request) error
	bodyFillers   []func(model reflect.Value, body []byte, r nphase.Request) error
}

// NewRequestDecoder examines the struct tags of A.  A must be a struct
// or a pointer to a struct.  JSON, XML, and YAML body decoders are
// registered by default and JSON is the default content type.
func NewRequestDecoder[A any](opts ...DecodeOpt) (*RequestDecoder[A], error) {
	d := &RequestDecoder[A]{
		options: decodeOptions{
			tag: "nvelope",
			decoders: map[string]Decoder{
				"application/json": json.Unmarshal,
				"application/xml":  xml.Unmarshal,
				"application/yaml": yaml.Unmarshal,
			},
			defaultContentType: "application/json",
		},
	}
	for _, opt := range opts {
		opt(&d.options)
	}
	d.model = reflect.TypeOf((*A)(nil)).Elem()
	// nolint:exhaustive
	switch d.model.Kind() {
	case reflect.Struct:
	case reflect.Ptr:
		if d.model.Elem().Kind() != reflect.Struct {
			return nil, errors.Errorf("cannot decode into %s, not a pointer to a struct", reflectutils.TypeName(d.model))
		}
		d.returnAddress = true
		d.model = d.model.Elem()
	default:
		return nil, errors.Errorf("cannot decode into %s, not a struct", reflectutils.TypeName(d.model))
	}
	var returnError error
	reflectutils.WalkStructElements(d.model, func(field reflect.StructField) bool {
		if returnError != nil {
			return false
		}
		tag, ok := field.Tag.Lookup(d.options.tag)
		if !ok {
			return true
		}
		base, tags, err := parseTag(tag)
		if err != nil {
			returnError = errors.Wrap(err, field.Name)
			return false
		}
		tags.tag = d.options.tag
		if base == "model" {
			d.bodyFillers = append(d.bodyFillers, d.modelFiller(field))
			return false
		}

		name := field.Name // not used by model, but used by the rest
		if tags.name != "" {
			name = tags.name
		}
		unpack, multiUnpack, err := getUnpacker(field.Type, field.Name, name, base, tags, d.options.decoders)
		if err != nil {
			returnError = errors.Wrap(err, field.Name)
			return false
		}
		switch base {
		case "path":
			d.varsFillers = append(d.varsFillers, func(model reflect.Value, vars map[string]string) error {
				value, ok := vars[name]
				if !ok {
					return nil
				}
				f := model.FieldByIndex(field.Index)
				return errors.Wrapf(
					unpack("path", f, value),
					"path element %s into field %s",
					name, field.Name)
			})
		case "header":
			d.headerFillers = append(d.headerFillers, func(model reflect.Value, r nphase.Request) error {
				value := r.Header(name)
				if value == "" {
					return nil
				}
				f := model.FieldByIndex(field.Index)
				if multiUnpack != nil {
					return errors.Wrapf(
						multiUnpack("header", f, splitHeader(value)),
						"header %s into field %s",
						name, field.Name)
				}
				return errors.Wrapf(
					unpack("header", f, value),
					"header %s into field %s",
					name, field.Name)
			})
		case "query":
			d.queryFillers = append(d.queryFillers, func(model reflect.Value, query url.Values) error {
				var values []string
				if tags.deepObject {
					values = deepObjectPairs(query, name)
				} else {
					values = query[name]
				}
				if len(values) == 0 {
					return nil
				}
				f := model.FieldByIndex(field.Index)
				if multiUnpack != nil {
					return errors.Wrapf(
						multiUnpack("query", f, values),
						"query parameter %s into field %s",
						name, field.Name)
				}
				return errors.Wrapf(
					unpack("query", f, values[0]),
					"query parameter %s into field %s",
					name, field.Name)
			})
		case "cookie":
			d.cookieFillers = append(d.cookieFillers, func(model reflect.Value, r *http.Request) error {
				cookie, err := r.Cookie(name)
				if err != nil {
					if errors.Is(err, http.ErrNoCookie) {
						return nil
					}
					return errors.Wrapf(err, "cookie parameter %s into field %s", name, field.Name)
				}
				f := model.FieldByIndex(field.Index)
				return errors.Wrapf(
					unpack("cookie", f, cookie.Value),
					"cookie parameter %s into field %s",
					name, field.Name)
			})
		}
		return false
	})
	if returnError != nil {
		return nil, errors.Wrapf(returnError, "decoder for %s", reflectutils.TypeName(d.model))
	}
	return d, nil
}

// MustRequestDecoder is NewRequestDecoder for package level variables.
// It panics if the struct tags of A are invalid.
func MustRequestDecoder[A any](opts ...DecodeOpt) *RequestDecoder[A] {
	d, err := NewRequestDecoder[A](opts...)
	if err != nil {
		panic(err.Error())
	}
	return d
}

func (d *RequestDecoder[A]) modelFiller(field reflect.StructField) func(reflect.Value, []byte, nphase.Request) error {
	return func(model reflect.Value, body []byte, r nphase.Request) error {
		if len(body) == 0 {
			return nil
		}
		f := model.FieldByIndex(field.Index)
		ct := r.Header("Content-Type")
		if ct == "" {
			ct = d.options.defaultContentType
		}
		ct, _, _ = strings.Cut(ct, ";")
		ct = strings.TrimSpace(ct)
		exactDecoder, ok := d.options.decoders[ct]
		if !ok {
			return errors.Errorf("No body decoder for content type %s", ct)
		}
		err := exactDecoder(body, f.Addr().Interface())
		return errors.Wrapf(err, "Could not decode %s into %s", ct, field.Type)
	}
}

// Decode fills a new A from r.  Errors are annotated as BadRequest.
func (d *RequestDecoder[A]) Decode(r nphase.Request) (A, error) {
	mp := reflect.New(d.model)
	model := mp.Elem()
	var err error
	setError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}
	if len(d.bodyFillers) != 0 {
		body, e := ReadBody(r.Body())
		setError(e)
		if e == nil {
			for _, bf := range d.bodyFillers {
				setError(bf(model, body, r))
			}
		}
	}
	if len(d.varsFillers) != 0 {
		vars := r.Params()
		for _, vf := range d.varsFillers {
			setError(vf(model, vars))
		}
	}
	for _, hf := range d.headerFillers {
		setError(hf(model, r))
	}
	if len(d.queryFillers) != 0 {
		vals := r.Query()
		for _, qf := range d.queryFillers {
			setError(qf(model, vals))
		}
	}
	if len(d.cookieFillers) != 0 {
		cr := &http.Request{Header: http.Header{"Cookie": {r.Header("Cookie")}}}
		for _, cf := range d.cookieFillers {
			setError(cf(model, cr))
		}
	}
	var zero A
	if err != nil {
		return zero, errors.Wrapf(BadRequest(err), "%s model", reflectutils.TypeName(d.model))
	}
	var a A
	if d.returnAddress {
		a, _ = mp.Interface().(A)
	} else {
		a, _ = model.Interface().(A)
	}
	return a, nil
}

// Decode is a step that decodes the request into an A.  It never
// writes to the connection.
func Decode[P nphase.Phase, A any](d *RequestDecoder[A]) nphase.Middleware[P, P, error, A] {
	return nphase.TryCatch[P](d.Decode, func(err error) error { return err })
}

// generateStructUnpacker generates a function to deal with filling a struct from
// an array of key, value pairs.  Fields without a tag are filled by
// field name.
func generateStructUnpacker(
	fieldType reflect.Type,
	tagName string,
) (
	func(from string, f reflect.Value, values []string) error,
	error,
) {
	type fillTarget struct {
		field  reflect.StructField
		filler func(from string, target reflect.Value, value string) error
	}
	targets := make(map[string]fillTarget)
	var anyErr error
	reflectutils.WalkStructElements(fieldType, func(field reflect.StructField) bool {
		if anyErr != nil {
			return false
		}
		name := field.Name
		var tags tags
		if tag, ok := field.Tag.Lookup(tagName); ok {
			var err error
			name, tags, err = parseNestedTag(tag)
			if err != nil {
				anyErr = errors.Wrap(err, field.Name)
				return false
			}
		}
		if _, ok := targets[name]; ok {
			anyErr = errors.Errorf("Only one field can be filled with the same name.  '%s' is duplicated.  One example is %s",
				name, field.Name)
			return false
		}
		unpacker, _, err := getUnpacker(field.Type, field.Name, name, "nested", tags.WithoutExplode(), nil)
		if err != nil {
			anyErr = errors.Wrap(err, field.Name)
			return false
		}
		targets[name] = fillTarget{
			field:  field,
			filler: unpacker,
		}
		return false
	})
	if anyErr != nil {
		return nil, anyErr
	}
	return func(from string, model reflect.Value, values []string) error {
		for i := 0; i < len(values); i += 2 {
			keyString := values[i]
			var valueString string
			if i+1 < len(values) {
				valueString = values[i+1]
			}
			target, ok := targets[keyString]
			if !ok {
				return errors.Errorf("No struct member to receive key '%s'", keyString)
			}
			f := model.FieldByIndex(target.field.Index)
			err := target.filler(from, f, valueString)
			if err != nil {
				return errors.Wrap(err, target.field.Name)
			}
		}
		return nil
	}, nil
}

func mapUnpack(
	from string, f reflect.Value,
	keyUnpack func(from string, target reflect.Value, value string) error,
	valueUnpack func(from string, target reflect.Value, value string) error,
	values []string,
) error {
	m := reflect.MakeMap(f.Type())
	for i := 0; i < len(values); i += 2 {
		keyString := values[i]
		var valueString string
		if i+1 < len(values) {
			valueString = values[i+1]
		}
		key := reflect.New(f.Type().Key()).Elem()
		err := keyUnpack(from, key, keyString)
		if err != nil {
			return err
		}
		value := reflect.New(f.Type().Elem()).Elem()
		err = valueUnpack(from, value, valueString)
		if err != nil {
			return err
		}
		m.SetMapIndex(key, value)
	}
	f.Set(m)
	return nil
}

func arrayUnpack(
	from string, f reflect.Value,
	singleUnpack func(from string, target reflect.Value, value string) error,
	values []string,
) error {
	a := reflect.MakeSlice(f.Type(), len(values), len(values))
	for i, value := range values {
		err := singleUnpack(from, a.Index(i), value)
		if err != nil {
			return err
		}
	}
	f.Set(a)
	return nil
}

// getUnpacker is used for unpacking headers, query parameters, and path elements
func getUnpacker(
	fieldType reflect.Type,
	fieldName string,
	name string,
	base string, // "path", "query", etc.
	tags tags,
	decoders map[string]Decoder,
) (
	func(from string, target reflect.Value, value string) error,
	func(from string, target reflect.Value, values []string) error,
	error) {
	if fieldType.Kind() == reflect.Ptr {
		vu, mu, err := getUnpacker(fieldType.Elem(), fieldName, name, base, tags, decoders)
		if err != nil {
			return nil, nil, err
		}
		if mu != nil {
			return nil, func(from string, target reflect.Value, values []string) error {
				p := reflect.New(fieldType.Elem())
				target.Set(p)
				return mu(from, target.Elem(), values)
			}, nil
		}
		return func(from string, target reflect.Value, value string) error {
			p := reflect.New(fieldType.Elem())
			target.Set(p)
			return vu(from, target.Elem(), value)
		}, nil, nil
	}
	if reflect.PointerTo(fieldType).Implements(textUnmarshallerType) {
		return func(from string, target reflect.Value, value string) error {
			return errors.Wrapf(
				target.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(value)),
				"decode %s %s", from, name)
		}, nil, nil
	}
	if tags.content != "" {
		return contentUnpacker(fieldType, fieldName, name, base, tags, decoders)
	}

	switch fieldType.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(from string, target reflect.Value, value string) error {
			i, err := strconv.ParseInt(value, 10, fieldType.Bits())
			if err != nil {
				return errors.Wrapf(err, "decode %s %s", from, name)
			}
			target.SetInt(i)
			return nil
		}, nil, nil
	case reflect.Uint, reflect.Uintptr, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(from string, target reflect.Value, value string) error {
			i, err := strconv.ParseUint(value, 10, fieldType.Bits())
			if err != nil {
				return errors.Wrapf(err, "decode %s %s", from, name)
			}
			target.SetUint(i)
			return nil
		}, nil, nil
	case reflect.Float32, reflect.Float64:
		return func(from string, target reflect.Value, value string) error {
			f, err := strconv.ParseFloat(value, fieldType.Bits())
			if err != nil {
				return errors.Wrapf(err, "decode %s %s", from, name)
			}
			target.SetFloat(f)
			return nil
		}, nil, nil
	case reflect.String:
		return func(_ string, target reflect.Value, value string) error {
			target.SetString(value)
			return nil
		}, nil, nil
	case reflect.Complex64, reflect.Complex128:
		return func(from string, target reflect.Value, value string) error {
			c, err := strconv.ParseComplex(value, fieldType.Bits())
			if err != nil {
				return errors.Wrapf(err, "decode %s %s", from, name)
			}
			target.SetComplex(c)
			return nil
		}, nil, nil
	case reflect.Bool:
		return func(from string, target reflect.Value, value string) error {
			b, err := strconv.ParseBool(value)
			if err != nil {
				return errors.Wrapf(err, "decode %s %s", from, name)
			}
			target.SetBool(b)
			return nil
		}, nil, nil

	case reflect.Slice:
		switch base {
		case "cookie", "path":
			if tags.delimiter != "," {
				return nil, nil, errors.New("delimiter setting is only allowed for 'query' parameters")
			}
		}
		singleUnpack, _, err := getUnpacker(fieldType.Elem(), fieldName, name, base, tags.WithoutExplode(), decoders)
		if err != nil {
			return nil, nil, err
		}
		switch base {
		case "query", "header":
			if tags.explode {
				return nil, func(from string, target reflect.Value, values []string) error {
					return arrayUnpack(from, target, singleUnpack, values)
				}, nil
			}
		}
		return func(from string, target reflect.Value, value string) error {
			values := strings.Split(value, tags.delimiter)
			return arrayUnpack(from, target, singleUnpack, values)
		}, nil, nil

	case reflect.Struct:
		structUnpacker, err := generateStructUnpacker(fieldType, tags.tag)
		if err != nil {
			return nil, nil, err
		}
		if tags.deepObject {
			return nil, structUnpacker, nil
		}
		switch base {
		case "query", "header":
			if tags.explode {
				return nil, func(from string, target reflect.Value, values []string) error {
					return structUnpacker(from, target, resplitOnEquals(values))
				}, nil
			}
		}
		return func(from string, target reflect.Value, value string) error {
			values := strings.Split(value, tags.delimiter)
			return structUnpacker(from, target, values)
		}, nil, nil

	case reflect.Map:
		switch base {
		case "cookie", "path":
			if tags.delimiter != "," {
				return nil, nil, errors.New("delimiter setting is only allowed for 'query' parameters")
			}
		}
		keyUnpack, _, err := getUnpacker(fieldType.Key(), fieldName, name, base, tags.WithoutExplode(), decoders)
		if err != nil {
			return nil, nil, err
		}
		elementUnpack, _, err := getUnpacker(fieldType.Elem(), fieldName, name, base, tags.WithoutExplode(), decoders)
		if err != nil {
			return nil, nil, err
		}
		if tags.deepObject {
			return nil, func(from string, target reflect.Value, values []string) error {
				return mapUnpack(from, target, keyUnpack, elementUnpack, values)
			}, nil
		}
		switch base {
		case "query", "header":
			if tags.explode {
				return nil, func(from string, target reflect.Value, values []string) error {
					return mapUnpack(from, target, keyUnpack, elementUnpack, resplitOnEquals(values))
				}, nil
			}
		}
		return func(from string, target reflect.Value, value string) error {
			values := strings.Split(value, tags.delimiter)
			return mapUnpack(from, target, keyUnpack, elementUnpack, values)
		}, nil, nil

	case reflect.Array, reflect.Chan, reflect.Interface, reflect.UnsafePointer, reflect.Func, reflect.Invalid:
		fallthrough
	default:
		return nil, nil, errors.Errorf(
			"Cannot decode into %s, %s does not implement UnmarshalText",
			fieldName, reflectutils.TypeName(fieldType))
	}
}

// contentUnpacker generates an unpacker to use when something has
// been tagged "content=application/json" or such.  We bypass our
// regular unpackers and instead use a regular decoder.  The interesting
// case is where this is combined with "explode=true" because then
// we have to decode many times
func contentUnpacker(
	fieldType reflect.Type,
	fieldName string,
	name string,
	base string, // "path", "query", etc.
	tags tags,
	decoders map[string]Decoder,
) (
	func(from string, target reflect.Value, value string) error,
	func(from string, target reflect.Value, values []string) error,
	error) {

	decoder, ok := decoders[tags.content]
	if !ok {
		// tags.content can provide access to decoders beyond what
		// is specified for NewRequestDecoder
		switch tags.content {
		case "application/json":
			decoder = json.Unmarshal
		case "application/xml":
			decoder = xml.Unmarshal
		case "application/yaml":
			decoder = yaml.Unmarshal
		default:
			return nil, nil, errors.Errorf("No decoder provided for content type '%s'", tags.content)
		}
	}
	kind := fieldType.Kind()
	if tags.explode &&
		(base == "query" || base == "header") &&
		(kind == reflect.Map || kind == reflect.Slice) {
		valueUnpack, _, err := getUnpacker(fieldType.Elem(), fieldName, name, base, tags.WithoutExplode(), decoders)
		if err != nil {
			return nil, nil, err
		}
		if kind == reflect.Slice {
			return nil, func(from string, target reflect.Value, values []string) error {
				return arrayUnpack(from, target, valueUnpack, values)
			}, nil
		}
		keyUnpack, _, err := getUnpacker(fieldType.Key(), fieldName, name, base, tags.WithoutExplode().WithoutContent(), decoders)
		if err != nil {
			return nil, nil, err
		}
		return nil, func(from string, target reflect.Value, values []string) error {
			return mapUnpack(from, target, keyUnpack, valueUnpack, resplitOnEquals(values))
		}, nil
	}

	return func(from string, target reflect.Value, value string) error {
		i := target.Addr().Interface()
		err := decoder([]byte(value), i)
		return errors.Wrap(err, fieldName)
	}, nil, nil
}

var textUnmarshallerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

var delimiters = map[string]string{
	"comma": ",",
	"pipe":  "|",
	"space": " ",
}

type tags struct {
	name          string
	tag           string
	explode       bool
	delimiter     string
	allowReserved bool
	deepObject    bool
	content       string
}

func (tags tags) WithoutExplode() tags {
	tags.explode = false
	return tags
}

func (tags tags) WithoutContent() tags {
	tags.content = ""
	return tags
}

func parseTag(s string) (string, tags, error) {
	a := strings.Split(s, ",")
	switch a[0] {
	case "path":
	case "query":
	case "header":
	case "cookie":
	case "model":
	case "":
		return "", tags{}, errors.New("must specify the source of the data ('path', 'query', etc)")
	default:
		return "", tags{}, errors.Errorf("'%s' is not a valid source of the data use ('model', 'path', 'query', etc)", a[0])
	}
	t, err := parseTagOptions(a[1:], a[0] == "query")
	if err != nil {
		return "", t, err
	}
	if t.deepObject && a[0] != "query" {
		return "", t, errors.New("deepObject is only allowed for 'query' parameters")
	}
	return a[0], t, nil
}

// parseNestedTag parses the tag of a field inside a struct that is
// itself filled from a parameter.  The first element is the key.
func parseNestedTag(s string) (string, tags, error) {
	a := strings.Split(s, ",")
	t, err := parseTagOptions(a[1:], false)
	return a[0], t, err
}

func parseTagOptions(a []string, explode bool) (tags, error) {
	tags := tags{
		delimiter: ",",
		explode:   explode,
		tag:       "nvelope",
	}
	for _, v := range a {
		kvs := strings.SplitN(v, "=", 2)
		k := kvs[0]
		var val string
		if len(kvs) == 2 {
			val = kvs[1]
		}
		var err error
		switch k {
		case "name":
			tags.name = val
		case "explode":
			tags.explode, err = strconv.ParseBool(val)
		case "delimiter":
			var ok bool
			tags.delimiter, ok = delimiters[val]
			if !ok {
				err = errors.Errorf("Invalid delimiter value (must be 'comma', 'space', or 'pipe')")
			}
		case "allowReserved":
			tags.allowReserved, err = strconv.ParseBool(val)
		case "deepObject":
			tags.deepObject, err = strconv.ParseBool(val)
		case "content":
			tags.content = val
		}
		if err != nil {
			return tags, errors.Wrap(err, k)
		}
	}
	return tags, nil
}

func resplitOnEquals(values []string) []string {
	nv := make([]string, len(values)*2)
	for i, v := range values {
		a := strings.SplitN(v, "=", 2)
		nv[i*2] = a[0]
		if len(a) == 2 {
			nv[i*2+1] = a[1]
		}
	}
	return nv
}

// deepObjectPairs collects name[key]=value query parameters as
// key, value pairs.
func deepObjectPairs(query url.Values, name string) []string {
	var pairs []string
	prefix := name + "["
	for k, vs := range query {
		if !strings.HasPrefix(k, prefix) || !strings.HasSuffix(k, "]") {
			continue
		}
		key := k[len(prefix) : len(k)-1]
		for _, v := range vs {
			pairs = append(pairs, key, v)
		}
	}
	return pairs
}

func splitHeader(value string) []string {
	values := strings.Split(value, ",")
	for i, v := range values {
		values[i] = strings.TrimSpace(v)
	}
	return values
}
