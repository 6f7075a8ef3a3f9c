// Package captcha implements the arithmetic human verification challenge
// that gates document downloads.
package captcha

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Operator is the arithmetic operation of a challenge.
type Operator string

const (
	// OpAdd adds two numbers in [1,20].
	OpAdd Operator = "+"
	// OpSub subtracts a number in [1,10] from one in [10,29].
	OpSub Operator = "-"
	// OpMul multiplies two numbers in [1,10].
	OpMul Operator = "×"
)

var (
	// ErrAnswerRequired is returned for an empty answer.
	ErrAnswerRequired = errors.New("please solve the security question")

	// ErrAnswerNotNumber is returned when the answer is not an integer.
	ErrAnswerNotNumber = errors.New("the answer must be a number")

	// ErrAnswerMismatch is returned for a wrong numeric answer.
	ErrAnswerMismatch = errors.New("incorrect answer, please try the new question")
)

var operators = []Operator{OpAdd, OpSub, OpMul} //nolint:gochecknoglobals

// Challenge is one arithmetic question and its answer.
type Challenge struct {
	Num1     int
	Num2     int
	Operator Operator
	Answer   int
}

// Question renders the challenge, e.g. "7 × 3 = ?".
func (c Challenge) Question() string {
	return fmt.Sprintf("%d %s %d = ?", c.Num1, c.Operator, c.Num2)
}

// Verify checks an answer typed by a user.
func (c Challenge) Verify(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return ErrAnswerRequired
	}

	n, err := strconv.Atoi(input)
	if err != nil {
		return ErrAnswerNotNumber
	}

	if n != c.Answer {
		return ErrAnswerMismatch
	}

	return nil
}

// Eval computes num1 <op> num2.
func Eval(num1 int, op Operator, num2 int) (int, error) {
	switch op {
	case OpAdd:
		return num1 + num2, nil
	case OpSub:
		return num1 - num2, nil
	case OpMul:
		return num1 * num2, nil
	default:
		return 0, fmt.Errorf("unknown operator %q", op)
	}
}

// Generator produces random challenges. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator returns a generator seeded from the clock.
func NewGenerator() *Generator {
	seed := uint64(time.Now().UnixNano()) //nolint:gosec
	return NewGeneratorWithSource(rand.NewPCG(seed, seed>>1|1))
}

// NewGeneratorWithSource returns a generator drawing from src.
func NewGeneratorWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)} //nolint:gosec
}

// Generate returns a fresh challenge with a uniformly chosen operator.
func (g *Generator) Generate() Challenge {
	g.mu.Lock()
	defer g.mu.Unlock()

	c := Challenge{Operator: operators[g.rnd.IntN(len(operators))]}

	switch c.Operator {
	case OpAdd:
		c.Num1 = g.between(1, 20) //nolint:mnd
		c.Num2 = g.between(1, 20) //nolint:mnd
	case OpSub:
		c.Num1 = g.between(10, 29) //nolint:mnd
		c.Num2 = g.between(1, 10)  //nolint:mnd
	case OpMul:
		c.Num1 = g.between(1, 10) //nolint:mnd
		c.Num2 = g.between(1, 10) //nolint:mnd
	}

	c.Answer, _ = Eval(c.Num1, c.Operator, c.Num2)

	return c
}

// between returns a uniform int in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rnd.IntN(hi-lo+1)
}
