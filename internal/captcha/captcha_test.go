package captcha

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCorrectness(t *testing.T) {
	g := NewGeneratorWithSource(rand.NewPCG(42, 1))
	seen := map[Operator]int{}

	for range 1000 {
		c := g.Generate()
		seen[c.Operator]++

		want, err := Eval(c.Num1, c.Operator, c.Num2)
		require.NoError(t, err)
		assert.Equal(t, want, c.Answer, c.Question())

		switch c.Operator {
		case OpAdd:
			assert.True(t, c.Num1 >= 1 && c.Num1 <= 20, c.Question())
			assert.True(t, c.Num2 >= 1 && c.Num2 <= 20, c.Question())
		case OpSub:
			assert.True(t, c.Num1 >= 10 && c.Num1 <= 29, c.Question())
			assert.True(t, c.Num2 >= 1 && c.Num2 <= 10, c.Question())
			assert.GreaterOrEqual(t, c.Answer, 0)
		case OpMul:
			assert.True(t, c.Num1 >= 1 && c.Num1 <= 10, c.Question())
			assert.True(t, c.Num2 >= 1 && c.Num2 <= 10, c.Question())
		default:
			t.Fatalf("unexpected operator %q", c.Operator)
		}
	}

	assert.Len(t, seen, 3, "all operators are used")
}

func TestVerify(t *testing.T) {
	c := Challenge{Num1: 7, Num2: 3, Operator: OpMul, Answer: 21}

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"correct", "21", nil},
		{"correct with spaces", " 21 ", nil},
		{"empty", "", ErrAnswerRequired},
		{"blank", "   ", ErrAnswerRequired},
		{"not a number", "twenty", ErrAnswerNotNumber},
		{"decimal", "21.0", ErrAnswerNotNumber},
		{"off by one", "22", ErrAnswerMismatch},
		{"negative", "-21", ErrAnswerMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Verify(tt.input)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestQuestion(t *testing.T) {
	assert.Equal(t, "12 - 4 = ?", Challenge{Num1: 12, Num2: 4, Operator: OpSub, Answer: 8}.Question())
}

func TestEvalUnknownOperator(t *testing.T) {
	_, err := Eval(1, "/", 1)
	require.Error(t, err)
}
