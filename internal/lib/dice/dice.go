// Package dice evaluates inline roll expressions such as "1d20+5" or
// "4d6kh3 # strength".
//
// # Grammar
//
//	expr   := term (('+' | '-') term)*
//	term   := factor (('*' | '/') factor)*
//	factor := '-' factor | '(' expr ')' | dice | number
//	dice   := [number] 'd' number [('kh' | 'kl') number]
//
// Anything after a complete expression that is separated from it by
// whitespace is the comment; a leading '#' on the comment is dropped.
//
// # Criticals
//
// The first d20 term of an expression decides the crit tier: a kept
// natural 1 is a critical failure, a kept natural 20 is a critical
// success, and failure wins when both were rolled.
package dice

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrSyntax indicates the expression could not be parsed.
var ErrSyntax = errors.New("invalid roll syntax")

// ErrDivideByZero indicates a division by zero while evaluating.
var ErrDivideByZero = errors.New("division by zero")

// ErrTooManyDice indicates a dice term exceeds the per-term limits.
var ErrTooManyDice = errors.New("too many dice")

const (
	maxDiceCount = 1000
	maxDiceSides = 10000
)

// Crit tiers. Failure takes precedence over success.
const (
	CritNone    = 0
	CritSuccess = 1
	CritFail    = 2
)

// Result is the outcome of a single evaluated expression.
type Result struct {
	Total int
	// Crit is one of CritNone, CritSuccess or CritFail.
	Crit int
	// Comment is the trailing free text, without the '#' marker.
	Comment string
	// Expression is the rendered expression with every die shown,
	// e.g. "1d20 (**20**) + 5".
	Expression string
}

// String renders the result the way inline rolls are usually shown in chat:
// "1d20 (**20**) + 5 = `25`".
func (r Result) String() string {
	return r.Expression + " = `" + itoa(r.Total) + "`"
}

// Roller evaluates expressions with its own random source.
type Roller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller returns a Roller seeded from the current time.
func NewRoller() *Roller {
	return NewSeededRoller(time.Now().UnixNano())
}

// NewSeededRoller returns a deterministic Roller: the same seed and the same
// sequence of expressions always produce the same results.
func NewSeededRoller(seed int64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// Roll parses and evaluates expression.
func (r *Roller) Roll(expression string) (Result, error) {
	node, comment, err := parse(expression)
	if err != nil {
		return Result{}, err
	}

	r.mu.Lock()
	ev := &evaluator{rng: r.rng}
	total, err := ev.eval(node)
	r.mu.Unlock()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Total:      total,
		Crit:       ev.crit,
		Comment:    comment,
		Expression: render(node),
	}, nil
}

// rollDie rolls a single die with the provided number of sides.
func rollDie(rng *rand.Rand, sides int) int {
	return rng.Intn(sides) + 1
}
