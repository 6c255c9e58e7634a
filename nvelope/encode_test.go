package nvelope_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muir/nphase"
	"github.com/muir/nphase/nmock"
	"github.com/muir/nphase/nvelope"
)

type exampleResponse struct {
	Stuff string `json:"stuff"`
	Here  string `json:"here,omitempty"`
}

func respond[A any](e *nvelope.ResponseEncoder, m nphase.Middleware[nphase.StatusOpen, nphase.StatusOpen, error, A]) []nmock.Action {
	conn := nmock.New(nmock.Request{URL: "/thing"})
	r := nvelope.Respond(e, m).Run(nphase.Open(conn))
	if !r.IsRight() || !conn.Ended() {
		return nil
	}
	return conn.Actions()
}

func TestRespondValue(t *testing.T) {
	actions := respond(nvelope.EncodeJSON, nphase.Succeed[nphase.StatusOpen, error](exampleResponse{Stuff: "something useful"}))
	assert.Equal(t, []nmock.Action{
		{Type: nmock.SetStatus, Status: 200},
		{Type: nmock.SetHeader, Name: "Content-Type", Value: "application/json"},
		{Type: nmock.SetBody, Body: `{"stuff":"something useful"}`},
	}, actions)

	actions = respond(nvelope.EncodeYAML, nphase.Succeed[nphase.StatusOpen, error](exampleResponse{Stuff: "s"}))
	require.Len(t, actions, 3)
	assert.Equal(t, "application/yaml", actions[1].Value)
	assert.Equal(t, "stuff: s\nhere: \"\"\n", actions[2].Body)
}

func TestRespondError(t *testing.T) {
	failing := nphase.Fail[nphase.StatusOpen, error, *exampleResponse](nvelope.NotFound(errors.New("no such thing")))
	assert.Equal(t, []nmock.Action{
		{Type: nmock.SetStatus, Status: 404},
		{Type: nmock.SetHeader, Name: "Content-Type", Value: "text/plain"},
		{Type: nmock.SetBody, Body: "no such thing"},
	}, respond(nvelope.EncodeJSON, failing))

	custom := nvelope.EncodeJSON.With(nvelope.WithErrorEncoder(func(_ nvelope.BasicLogger, err error) []byte {
		return []byte(`{"error":"` + err.Error() + `"}`)
	}))
	actions := respond(custom, failing)
	require.Len(t, actions, 3)
	assert.Equal(t, `{"error":"no such thing"}`, actions[2].Body)
}

func TestRespondNil204(t *testing.T) {
	var none *exampleResponse
	assert.Equal(t, []nmock.Action{
		{Type: nmock.SetStatus, Status: 204},
		{Type: nmock.EndResponse},
	}, respond(nvelope.EncodeJSON.With(nvelope.Nil204()), nphase.Succeed[nphase.StatusOpen, error](none)))

	actions := respond(nvelope.EncodeJSON, nphase.Succeed[nphase.StatusOpen, error](none))
	require.Len(t, actions, 3)
	assert.Equal(t, "null", actions[2].Body, "without Nil204 nil is encoded")
}

func TestRespondMarshalFailure(t *testing.T) {
	actions := respond(nvelope.EncodeJSON, nphase.Succeed[nphase.StatusOpen, error](map[string]interface{}{"f": func() {}}))
	require.Len(t, actions, 3)
	assert.Equal(t, 500, actions[0].Status)
	assert.Contains(t, actions[2].Body, "unsupported type")
}

func TestRespondAPIEnforcer(t *testing.T) {
	strict := nvelope.EncodeJSON.With(nvelope.WithAPIEnforcer(func(enc []byte, r nphase.Request) error {
		if r.OriginalURL() == "/thing" && len(enc) > 10 {
			return errors.New("response too large")
		}
		return nil
	}))
	actions := respond(strict, nphase.Succeed[nphase.StatusOpen, error](exampleResponse{Stuff: "much too long"}))
	require.Len(t, actions, 3)
	assert.Equal(t, 500, actions[0].Status)
	assert.Equal(t, "response too large", actions[2].Body)
}
