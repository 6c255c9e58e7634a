package nvelope_test

import (
	"fmt"

	"github.com/muir/nphase"
	"github.com/muir/nphase/nmock"
	"github.com/muir/nphase/nvelope"
)

func ExampleCatchPanic() {
	step := nvelope.CatchPanic(
		nphase.Gets[nphase.StatusOpen, error](func(nphase.Request) int {
			panic("zero")
		}), nvelope.NoLogger())
	conn := nmock.New(nmock.Request{Method: "GET", URL: "/"})
	err, _ := nphase.Eval(step, nphase.Open(conn)).GetLeft()
	fmt.Println(err)
	fmt.Println(nvelope.RecoverInterface(err))
	fmt.Println(len(nvelope.RecoverStack(err)) > 1000)
	fmt.Println(len(conn.Actions()), "writes")
	// Output: panic: zero
	// zero
	// true
	// 0 writes
}
