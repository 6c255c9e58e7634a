package nvelope_test

import (
	"encoding/json"

	"github.com/muir/nphase"
	"github.com/muir/nphase/nmock"
	"github.com/muir/nphase/nvelope"
)

// decodeJSON decodes req into an A and returns the JSON encoding of
// the result, or "error: ..." when decoding fails.
func decodeJSON[A any](d *nvelope.RequestDecoder[A], req nmock.Request) string {
	conn := nmock.New(req)
	r := nphase.Eval(nvelope.Decode[nphase.StatusOpen](d), nphase.Open(conn))
	if err, ok := r.GetLeft(); ok {
		return "error: " + err.Error()
	}
	if len(conn.Actions()) != 0 {
		return "decoding wrote to the connection"
	}
	a, _ := r.GetRight()
	enc, err := json.Marshal(a)
	if err != nil {
		return "marshal: " + err.Error()
	}
	return string(enc)
}

func queryDecoder[A any](d *nvelope.RequestDecoder[A]) func(string) string {
	return func(url string) string {
		return decodeJSON(d, nmock.Request{URL: url})
	}
}
