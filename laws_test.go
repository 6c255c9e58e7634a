package nphase_test

import (
	"fmt"
	"reflect"
	"strconv"
	"testing"
	"testing/quick"

	"github.com/muir/nphase"
	"github.com/muir/nphase/nmock"
)

type headerStep = nphase.Middleware[nphase.HeadersOpen, nphase.HeadersOpen, string, int]

type outcome struct {
	Failed  bool
	Err     string
	Value   int
	Actions []nmock.Action
}

func runHeaders(m headerStep) outcome {
	conn := nmock.New(nmock.Request{})
	r := nphase.Eval(m, nphase.OpenAt[nphase.HeadersOpen](conn))
	o := outcome{Actions: conn.Actions()}
	if e, ok := r.GetLeft(); ok {
		o.Failed = true
		o.Err = e
		return o
	}
	o.Value, _ = r.GetRight()
	return o
}

// step returns a family of steps that write a header and sometimes fail,
// so that the laws are checked on both effects and errors.
func step(k int) func(int) headerStep {
	return func(x int) headerStep {
		if (x+k)%7 == 0 {
			return nphase.Fail[nphase.HeadersOpen, string, int](fmt.Sprintf("step %d rejected %d", k, x))
		}
		return nphase.Then(
			nphase.Header[string](fmt.Sprintf("X-Step-%d", k), strconv.Itoa(x)),
			nphase.Succeed[nphase.HeadersOpen, string](x*3+k),
		)
	}
}

func TestPropertyIChainAssociative(t *testing.T) {
	f, g := step(2), step(3)
	associative := func(seed int) bool {
		a := step(1)(seed)
		left := nphase.IChain(nphase.IChain(a, f), g)
		right := nphase.IChain(a, func(x int) headerStep { return nphase.IChain(f(x), g) })
		return reflect.DeepEqual(runHeaders(left), runHeaders(right))
	}
	if err := quick.Check(associative, nil); err != nil {
		t.Error(err)
	}
}

func TestPropertyLeftIdentity(t *testing.T) {
	f := step(4)
	leftIdentity := func(x int) bool {
		return reflect.DeepEqual(
			runHeaders(nphase.IChain(nphase.Succeed[nphase.HeadersOpen, string](x), f)),
			runHeaders(f(x)))
	}
	if err := quick.Check(leftIdentity, nil); err != nil {
		t.Error(err)
	}
}

func TestPropertyRightIdentity(t *testing.T) {
	rightIdentity := func(seed int) bool {
		a := step(5)(seed)
		return reflect.DeepEqual(
			runHeaders(nphase.IChain(a, func(x int) headerStep { return nphase.Succeed[nphase.HeadersOpen, string](x) })),
			runHeaders(a))
	}
	if err := quick.Check(rightIdentity, nil); err != nil {
		t.Error(err)
	}
}

func TestPropertyMapComposition(t *testing.T) {
	f := func(x int) int { return x*2 + 1 }
	g := func(x int) int { return x - 7 }
	composition := func(seed int) bool {
		a := step(6)(seed)
		return reflect.DeepEqual(
			runHeaders(nphase.Map(nphase.Map(a, f), g)),
			runHeaders(nphase.Map(a, func(x int) int { return g(f(x)) })),
		) && reflect.DeepEqual(
			runHeaders(nphase.Map(a, func(x int) int { return x })),
			runHeaders(a))
	}
	if err := quick.Check(composition, nil); err != nil {
		t.Error(err)
	}
}

// A failure is never followed by more writes, wherever it happens.
func TestPropertyShortCircuit(t *testing.T) {
	shortCircuit := func(failAt uint8, n uint8) bool {
		steps := int(n%6) + 1
		at := int(failAt) % steps
		m := nphase.Succeed[nphase.HeadersOpen, string](0)
		for i := 0; i < steps; i++ {
			i := i
			m = nphase.IChain(m, func(x int) headerStep {
				if i == at {
					return nphase.Fail[nphase.HeadersOpen, string, int]("stop")
				}
				return nphase.Then(
					nphase.Header[string]("X-N", strconv.Itoa(i)),
					nphase.Succeed[nphase.HeadersOpen, string](x+1))
			})
		}
		o := runHeaders(m)
		return o.Failed && o.Err == "stop" && len(o.Actions) == at
	}
	if err := quick.Check(shortCircuit, nil); err != nil {
		t.Error(err)
	}
}

// Recovering from a failure is the same as running the recovery on
// its error.
func TestPropertyOrElseFailIdentity(t *testing.T) {
	f := func(e string) headerStep {
		if len(e)%3 == 0 {
			return nphase.Fail[nphase.HeadersOpen, string, int](e + "!")
		}
		return step(4)(len(e))
	}
	failIdentity := func(e string) bool {
		return reflect.DeepEqual(
			runHeaders(nphase.OrElse(nphase.Fail[nphase.HeadersOpen, string, int](e), f)),
			runHeaders(f(e)))
	}
	if err := quick.Check(failIdentity, nil); err != nil {
		t.Error(err)
	}
}

func TestPropertyIChainWMatchesMapLeft(t *testing.T) {
	lift1 := func(s string) error { return fmt.Errorf("one: %s", s) }
	lift2 := func(n int) error { return fmt.Errorf("two: %d", n) }
	toStrings := func(m nphase.Middleware[nphase.HeadersOpen, nphase.HeadersOpen, error, int]) headerStep {
		return nphase.MapLeft(m, func(err error) string { return err.Error() })
	}
	widened := func(seed int) bool {
		a := step(7)(seed)
		f := func(x int) nphase.Middleware[nphase.HeadersOpen, nphase.HeadersOpen, int, int] {
			if x%2 == 0 {
				return nphase.Fail[nphase.HeadersOpen, int, int](x)
			}
			return nphase.Succeed[nphase.HeadersOpen, int](x + 1)
		}
		w := nphase.IChainW(a, f, lift1, lift2)
		manual := nphase.IChain(nphase.MapLeft(a, lift1), func(x int) nphase.Middleware[nphase.HeadersOpen, nphase.HeadersOpen, error, int] {
			return nphase.MapLeft(f(x), lift2)
		})
		return reflect.DeepEqual(runHeaders(toStrings(w)), runHeaders(toStrings(manual)))
	}
	if err := quick.Check(widened, nil); err != nil {
		t.Error(err)
	}
}
