package nvelope_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muir/nphase"
	"github.com/muir/nphase/nmock"
	"github.com/muir/nphase/nvelope"
)

func TestTypedDecoders(t *testing.T) {
	n, ok := nvelope.Int("42").GetRight()
	require.True(t, ok)
	assert.Equal(t, 42, n)

	err, ok := nvelope.Int("forty").GetLeft()
	require.True(t, ok)
	assert.Equal(t, 400, nvelope.GetReturnCode(err))

	i64, _ := nvelope.Int64("-9").GetRight()
	assert.Equal(t, int64(-9), i64)
	f, _ := nvelope.Float64("2.5").GetRight()
	assert.Equal(t, 2.5, f)
	b, _ := nvelope.Bool("true").GetRight()
	assert.True(t, b)
	assert.True(t, nvelope.Bool("maybe").IsLeft())

	assert.True(t, nvelope.NonEmpty("name")("").IsLeft())
	s, _ := nvelope.NonEmpty("name")("x").GetRight()
	assert.Equal(t, "x", s)
}

func TestBodyDecoders(t *testing.T) {
	conn := nmock.New(nmock.Request{Body: bytes.NewBufferString(`{"use":"a","name":"b"}`)})
	m, ok := nphase.Eval(nphase.DecodeBody[nphase.StatusOpen](nvelope.JSONBody[bodyModel]), nphase.Open(conn)).GetRight()
	require.True(t, ok)
	assert.Equal(t, bodyModel{Use: "a", Name: "b"}, m)
	assert.Empty(t, conn.Actions())

	parsed := bodyModel{Use: "already"}
	m, _ = nvelope.JSONBody[bodyModel](parsed).GetRight()
	assert.Equal(t, parsed, m, "parsed bodies are used as they are")

	err, ok := nvelope.JSONBody[bodyModel]("{").GetLeft()
	require.True(t, ok)
	assert.Equal(t, 400, nvelope.GetReturnCode(err))
	assert.Contains(t, err.Error(), "decode JSON body into")

	y, _ := nvelope.YAMLBody[bodyModel]("use: c\nname: d\n").GetRight()
	assert.Equal(t, "c", y.Use)

	x, _ := nvelope.XMLBody[bodyModel]([]byte("<m><use>e</use></m>")).GetRight()
	assert.Equal(t, "e", x.Use)

	assert.True(t, nvelope.JSONBody[bodyModel](42).IsLeft(), "not bytes")
}
