package nvelope_test

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muir/nphase"
	"github.com/muir/nphase/nmock"
	"github.com/muir/nphase/nvelope"
)

type Complex128 complex128

func (c Complex128) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprint(complex128(c))), nil
}

type Complex64 complex64

func (c Complex64) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprint(complex64(c))), nil
}

type simpleParameters struct {
	Int        int         `json:",omitempty" nvelope:"query,name=int"`
	Int8       int8        `json:",omitempty" nvelope:"query,name=int8"`
	Int16      int16       `json:",omitempty" nvelope:"query,name=int16"`
	Int32      int32       `json:",omitempty" nvelope:"query,name=int32"`
	Int64      int64       `json:",omitempty" nvelope:"query,name=int64"`
	Uint       uint        `json:",omitempty" nvelope:"query,name=uint"`
	Uint8      uint8       `json:",omitempty" nvelope:"query,name=uint8"`
	Uint16     uint16      `json:",omitempty" nvelope:"query,name=uint16"`
	Uint32     uint32      `json:",omitempty" nvelope:"query,name=uint32"`
	Uint64     uint64      `json:",omitempty" nvelope:"query,name=uint64"`
	Float32    float32     `json:",omitempty" nvelope:"query,name=float32"`
	Float64    float64     `json:",omitempty" nvelope:"query,name=float64"`
	String     string      `json:",omitempty" nvelope:"query,name=string"`
	IntP       *int        `json:",omitempty" nvelope:"query,name=intp"`
	Int8P      *int8       `json:",omitempty" nvelope:"query,name=int8p"`
	Int16P     *int16      `json:",omitempty" nvelope:"query,name=int16p"`
	Int32P     *int32      `json:",omitempty" nvelope:"query,name=int32p"`
	Int64P     *int64      `json:",omitempty" nvelope:"query,name=int64p"`
	UintP      *uint       `json:",omitempty" nvelope:"query,name=uintp"`
	Uint8P     *uint8      `json:",omitempty" nvelope:"query,name=uint8p"`
	Uint16P    *uint16     `json:",omitempty" nvelope:"query,name=uint16p"`
	Uint32P    *uint32     `json:",omitempty" nvelope:"query,name=uint32p"`
	Uint64P    *uint64     `json:",omitempty" nvelope:"query,name=uint64p"`
	Float32P   *float32    `json:",omitempty" nvelope:"query,name=float32p"`
	Float64P   *float64    `json:",omitempty" nvelope:"query,name=float64p"`
	StringP    *string     `json:",omitempty" nvelope:"query,name=stringp"`
	Complex64  *Complex64  `json:",omitempty" nvelope:"query,name=complex64"`
	Complex128 *Complex128 `json:",omitempty" nvelope:"query,name=complex128"`
	BoolP      *bool       `json:",omitempty" nvelope:"query,name=boolp"`
}

func TestDecodeQuerySimpleParameters(t *testing.T) {
	do := queryDecoder(nvelope.MustRequestDecoder[simpleParameters]())
	assert.Equal(t, `{"Int":135}`, do("/x?int=135"))
	assert.Equal(t, `{"Int8":-5}`, do("/x?int8=-5"))
	assert.Equal(t, `{"Int16":127}`, do("/x?int16=127"))
	assert.Equal(t, `{"Int32":11}`, do("/x?int32=11"))
	assert.Equal(t, `{"Int64":-38}`, do("/x?int64=-38"))
	assert.Equal(t, `{"Uint":135}`, do("/x?uint=135"))
	assert.Equal(t, `{"Uint8":5}`, do("/x?uint8=5"))
	assert.Equal(t, `{"Uint16":127}`, do("/x?uint16=127"))
	assert.Equal(t, `{"Uint32":11}`, do("/x?uint32=11"))
	assert.Equal(t, `{"Uint64":38}`, do("/x?uint64=38"))
	assert.Equal(t, `{"Float64":38.7}`, do("/x?float64=38.7"))
	assert.Equal(t, `{"Float32":11.1}`, do("/x?float32=11.1"))
	assert.Equal(t, `{"String":"fred"}`, do("/x?string=fred"))
	assert.Equal(t, `{"IntP":135}`, do("/x?intp=135"))
	assert.Equal(t, `{"Int8P":-5}`, do("/x?int8p=-5"))
	assert.Equal(t, `{"Int16P":127}`, do("/x?int16p=127"))
	assert.Equal(t, `{"Int32P":11}`, do("/x?int32p=11"))
	assert.Equal(t, `{"Int64P":-38}`, do("/x?int64p=-38"))
	assert.Equal(t, `{"UintP":135}`, do("/x?uintp=135"))
	assert.Equal(t, `{"Uint8P":5}`, do("/x?uint8p=5"))
	assert.Equal(t, `{"Uint16P":127}`, do("/x?uint16p=127"))
	assert.Equal(t, `{"Uint32P":11}`, do("/x?uint32p=11"))
	assert.Equal(t, `{"Uint64P":38}`, do("/x?uint64p=38"))
	assert.Equal(t, `{"Float64P":38.7}`, do("/x?float64p=38.7"))
	assert.Equal(t, `{"Float32P":11.1}`, do("/x?float32p=11.1"))
	assert.Equal(t, `{"StringP":"fred"}`, do("/x?stringp=fred"))
	assert.Equal(t, `{"Complex64":"(38.7-9.3i)"}`, do("/x?complex64="+url.QueryEscape("38.7-9.3i")))
	assert.Equal(t, `{"Complex128":"(11.1+22.1i)"}`, do("/x?complex128="+url.QueryEscape("11.1+22.1i")))
	assert.Equal(t, `{"BoolP":false}`, do("/x?boolp=false"))
	assert.Equal(t, `{}`, do("/x"), "absent parameters are skipped")
}

type complexParameters struct {
	IntSlice     []int          `json:",omitempty" nvelope:"query,name=intslice,explode=false"`
	Int8Slice    []*int8        `json:",omitempty" nvelope:"query,name=int8slice,explode=true"`
	Int16Slice   []*int8        `json:",omitempty" nvelope:"query,name=int16slice,explode=false,delimiter=space"`
	Int32Slice   *[]*int8       `json:",omitempty" nvelope:"query,name=int32slice,explode=false,delimiter=pipe"`
	MapIntBool   map[int]bool   `json:",omitempty" nvelope:"query,name=mapintbool,explode=false"`
	MapIntString map[int]string `json:",omitempty" nvelope:"query,name=mapintstring,deepObject=true"`
	Emb1         *struct {
		Int    int    `json:",omitempty" nvelope:"eint"`
		Int8   int8   `json:",omitempty" nvelope:"eint8"`
		Int16  int16  `json:",omitempty" nvelope:"eint16"`
		String string `json:",omitempty"`
	} `json:",omitempty" nvelope:"query,name=emb1,explode=false"`
	Emb2 *struct {
		Int    int    `json:",omitempty" nvelope:"eint"`
		Int8   int8   `json:",omitempty" nvelope:"eint8"`
		Int16  int16  `json:",omitempty" nvelope:"eint16"`
		String string `json:",omitempty"`
	} `json:",omitempty" nvelope:"query,name=emb2,deepObject=true"`
}

func TestDecodeQueryComplexParameters(t *testing.T) {
	do := queryDecoder(nvelope.MustRequestDecoder[complexParameters]())
	assert.Equal(t, `{"IntSlice":[1,7]}`, do("/x?intslice=1,7"))
	assert.Equal(t, `{"Int8Slice":[10,11,12]}`, do("/x?int8slice=10&int8slice=11&int8slice=12"))
	assert.Equal(t, `{"Int16Slice":[8,22,-3]}`, do("/x?int16slice=8%2022%20-3"))
	assert.Equal(t, `{"Int32Slice":[7,11,13]}`, do("/x?int32slice=7|11|13"))
	assert.Equal(t, `{"MapIntBool":{"-9":false,"7":true}}`, do("/x?mapintbool=7,true,-9,false"))
	assert.Equal(t, `{"MapIntString":{"-9":"hi","7":"bye"}}`, do("/x?mapintstring[7]=bye&mapintstring[-9]=hi"))
	assert.Equal(t, `{"Emb1":{"Int":192,"Int8":-3,"String":"foo"}}`, do("/x?emb1=eint,192,eint8,-3,String,foo"))
	assert.Equal(t, `{"Emb2":{"Int":193,"Int8":-4,"String":"bar"}}`, do("/x?emb2[eint]=193&emb2[eint8]=-4&emb2[String]=bar"))
}

type Foo string

func (fp *Foo) UnmarshalText(b []byte) error {
	*fp = Foo("~" + string(b) + "~")
	return nil
}

type contentParameters struct {
	Foo  Foo      `json:",omitempty" nvelope:"query,name=foo,explode=false"`
	FooP *Foo     `json:",omitempty" nvelope:"query,name=foop,explode=false"`
	FooA []Foo    `json:",omitempty" nvelope:"query,name=fooa,explode=true"`
	FooB *[]*Foo  `json:",omitempty" nvelope:"query,name=foob,explode=false"`
	S1   string   `json:",omitempty" nvelope:"query,name=s1,content=application/json"`
	S2   *string  `json:",omitempty" nvelope:"query,name=s2,content=application/json"`
	S3   **string `json:",omitempty" nvelope:"query,name=s3,content=application/json"`
	Y    []string `json:",omitempty" nvelope:"query,name=y,explode=false,content=application/yaml"`
}

func TestDecodeQueryJSONParameters(t *testing.T) {
	do := queryDecoder(nvelope.MustRequestDecoder[contentParameters]())
	assert.Equal(t, `{"Foo":"~bar~"}`, do("/x?foo=bar"))
	assert.Equal(t, `{"FooP":"~baz~"}`, do("/x?foop=baz"))
	assert.Equal(t, `{"FooA":["~bar~","~baz~"]}`, do("/x?fooa=bar&fooa=baz"))
	assert.Equal(t, `{"FooB":["~bing~","~baz~"]}`, do("/x?foob=bing,baz"))
	assert.Equal(t, `{"S1":"doof"}`, do(`/x?s1="doof"`))
	assert.Equal(t, `{"S2":"boor"}`, do(`/x?s2="boor"`))
	assert.Equal(t, `{"S3":"ppp"}`, do(`/x?s3="ppp"`))
	assert.Equal(t, `{"Y":["a","b"]}`, do("/x?y="+url.QueryEscape("[a, b]")))
}

type bodyModel struct {
	Use  string `json:"use" xml:"use"`
	Name string `json:"name" xml:"name"`
}

type requestBundle struct {
	Request     bodyModel `nvelope:"model"`
	With        string    `nvelope:"path,name=with"`
	Parameters  int64     `nvelope:"path,name=parameters"`
	Friends     []int     `nvelope:"query,name=friends"`
	Accept      []string  `nvelope:"header,name=Accept,explode=true"`
	ContentType string    `nvelope:"header,name=Content-Type"`
	Session     string    `nvelope:"cookie,name=session"`
}

func TestDecodeBundle(t *testing.T) {
	d := nvelope.MustRequestDecoder[*requestBundle]()
	req := nmock.Request{
		URL:    "/a/path/joe/37?friends=3&friends=5",
		Params: map[string]string{"with": "joe", "parameters": "37"},
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
			"Accept":       "text/plain, application/json",
			"Cookie":       "other=1; session=s3cr3t",
		},
		Body: strings.NewReader(`{"use":"yeah","name":"uh hu"}`),
	}
	b, err := d.Decode(nmock.New(req))
	require.NoError(t, err)
	assert.Equal(t, &requestBundle{
		Request:     bodyModel{Use: "yeah", Name: "uh hu"},
		With:        "joe",
		Parameters:  37,
		Friends:     []int{3, 5},
		Accept:      []string{"text/plain", "application/json"},
		ContentType: "application/json; charset=utf-8",
		Session:     "s3cr3t",
	}, b)

	req.Headers = map[string]string{"Content-Type": "application/xml"}
	req.Body = []byte(`<bodyModel><use>x</use><name>y</name></bodyModel>`)
	b, err = d.Decode(nmock.New(req))
	require.NoError(t, err)
	assert.Equal(t, bodyModel{Use: "x", Name: "y"}, b.Request)

	req.Params = map[string]string{"parameters": "thirty-seven"}
	req.Body = nil
	_, err = d.Decode(nmock.New(req))
	require.Error(t, err)
	assert.Equal(t, 400, nvelope.GetReturnCode(err))
	assert.Contains(t, err.Error(), "path element parameters into field Parameters")

	req.Params = nil
	req.Headers = map[string]string{"Content-Type": "text/csv"}
	req.Body = "a,b"
	_, err = d.Decode(nmock.New(req))
	assert.Contains(t, err.Error(), "No body decoder for content type text/csv")
}

func TestDecoderTagErrors(t *testing.T) {
	_, err := nvelope.NewRequestDecoder[struct {
		X int `nvelope:"body"`
	}]()
	assert.Error(t, err, "unknown source")

	_, err = nvelope.NewRequestDecoder[struct {
		X []int `nvelope:"path,delimiter=pipe"`
	}]()
	assert.Error(t, err, "delimiter on a path")

	_, err = nvelope.NewRequestDecoder[struct {
		X chan int `nvelope:"query"`
	}]()
	assert.Error(t, err, "undecodable type")

	_, err = nvelope.NewRequestDecoder[struct {
		X map[string]int `nvelope:"header,deepObject=true"`
	}]()
	assert.Error(t, err, "deepObject outside the query")

	_, err = nvelope.NewRequestDecoder[int]()
	assert.Error(t, err, "not a struct")

	assert.Panics(t, func() {
		nvelope.MustRequestDecoder[struct {
			X int `nvelope:"query,content=text/csv"`
		}]()
	})
}

func TestDecodeWithTag(t *testing.T) {
	type custom struct {
		N int `req:"query,name=n"`
		M int `nvelope:"query,name=m"`
	}
	d := nvelope.MustRequestDecoder[custom](nvelope.WithTag("req"))
	c, err := d.Decode(nmock.New(nmock.Request{URL: "/?n=1&m=2"}))
	require.NoError(t, err)
	assert.Equal(t, custom{N: 1}, c)
}

func TestDecodeStepFailureDoesNotWrite(t *testing.T) {
	d := nvelope.MustRequestDecoder[simpleParameters]()
	conn := nmock.New(nmock.Request{URL: "/?int=many"})
	r := nvelope.Decode[nphase.HeadersOpen](d).Run(nphase.OpenAt[nphase.HeadersOpen](conn))
	err, ok := r.GetLeft()
	require.True(t, ok)
	assert.Equal(t, 400, nvelope.GetReturnCode(err))
	assert.Empty(t, conn.Actions())
}
