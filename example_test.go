package nphase_test

import (
	"fmt"
	"net/http"
	"strconv"

	"code.hybscloud.com/kont"

	"github.com/muir/nphase"
	"github.com/muir/nphase/nmock"
)

// Example shows a pipeline that decodes a path parameter, answers
// with JSON, and falls back to a 400 when decoding fails.
func Example() {
	type user struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	atoi := func(s string) kont.Either[error, int] {
		n, err := strconv.Atoi(s)
		if err != nil {
			return kont.Left[error, int](err)
		}
		return kont.Right[error](n)
	}
	found := func(id int) nphase.Middleware[nphase.StatusOpen, nphase.ResponseEnded, error, struct{}] {
		return nphase.Then(
			nphase.Status[error](http.StatusOK),
			nphase.JSON(user{ID: id, Name: "joe"}, func(err error) error { return err }),
		)
	}
	badRequest := func(err error) nphase.Middleware[nphase.StatusOpen, nphase.ResponseEnded, error, struct{}] {
		return nphase.Then(
			nphase.Status[error](http.StatusBadRequest),
			nphase.Then(nphase.CloseHeaders[error](), nphase.Send[error](err.Error())),
		)
	}
	getUser := nphase.OrElse(
		nphase.IChain(nphase.DecodeParam[nphase.StatusOpen]("id", atoi), found),
		badRequest)

	for _, id := range []string{"7", "seven"} {
		conn := nmock.New(nmock.Request{Params: map[string]string{"id": id}})
		getUser.Run(nphase.Open(conn))
		for _, a := range conn.Actions() {
			switch a.Type {
			case nmock.SetStatus:
				fmt.Println(a.Type, a.Status)
			case nmock.SetHeader:
				fmt.Println(a.Type, a.Name, a.Value)
			default:
				fmt.Println(a.Type, a.Body)
			}
		}
	}
	// Output: setStatus 200
	// setHeader Content-Type application/json
	// setBody {"id":7,"name":"joe"}
	// setStatus 400
	// setBody strconv.Atoi: parsing "seven": invalid syntax
}

func ExampleIChain() {
	greet := nphase.IChain(
		nphase.Gets[nphase.StatusOpen, error](func(r nphase.Request) string { return r.Header("X-Name") }),
		func(name string) nphase.Middleware[nphase.StatusOpen, nphase.HeadersOpen, error, string] {
			return nphase.Map(nphase.Status[error](http.StatusOK), func(struct{}) string { return "hello " + name })
		})
	conn := nmock.New(nmock.Request{Headers: map[string]string{"X-Name": "sam"}})
	v, _ := nphase.Eval(greet, nphase.Open(conn)).GetRight()
	fmt.Println(v, conn.Status())
	// Output: hello sam 200
}
