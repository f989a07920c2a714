package model_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"q.log/gomory/model"
)

func TestRelation(t *testing.T) {
	assert.Equal(t, model.GreaterEqual, model.LessEqual.Flip())
	assert.Equal(t, model.LessEqual, model.GreaterEqual.Flip())
	assert.Equal(t, model.Equal, model.Equal.Flip())

	one, two := r(1, 1), r(2, 1)
	assert.True(t, model.LessEqual.Holds(one, two))
	assert.False(t, model.GreaterEqual.Holds(one, two))
	assert.True(t, model.Equal.Holds(two, r(4, 2)))
	assert.Equal(t, "Relation(7)", model.Relation(7).String())
}

func TestConstraintString(t *testing.T) {
	c := model.Constraint{
		Coeffs:   []*big.Rat{r(2, 1), r(0, 1), r(-3, 2)},
		Relation: model.GreaterEqual,
		RHS:      r(-1, 1),
	}
	assert.Equal(t, "2x_1 - 3/2x_3 >= -1", c.String())
	assert.True(t, c.Satisfied([]*big.Rat{r(1, 1), r(5, 1), r(2, 1)}))
	assert.False(t, c.Satisfied([]*big.Rat{r(0, 1), r(0, 1), r(2, 1)}))

	assert.Equal(t, "-1x_1 + 1x_2", model.LinearForm(rats(-1, 1)))
	assert.Equal(t, "0", model.LinearForm([]*big.Rat{r(0, 1), nil}))
}

func TestObjective(t *testing.T) {
	o := model.Objective{Direction: model.Maximize, Coeffs: rats(8, 6)}
	assert.Equal(t, "maximize 8x_1 + 6x_2", o.String())
	assert.Zero(t, o.Value(rats(3, 2)).Cmp(r(36, 1)))
	assert.Equal(t, "minimize", model.Minimize.String())
}

func TestValidate(t *testing.T) {
	ok := &model.Problem{
		NumVars:     2,
		Objective:   model.Objective{Coeffs: rats(1, 1)},
		Constraints: []model.Constraint{{Coeffs: rats(1, 1), RHS: r(1, 1)}},
	}
	assert.NoError(t, ok.Validate())

	cases := []struct {
		name string
		p    *model.Problem
	}{
		{name: "no vars", p: &model.Problem{}},
		{
			name: "short objective",
			p:    &model.Problem{NumVars: 2, Objective: model.Objective{Coeffs: rats(1)}},
		},
		{
			name: "short constraint",
			p: &model.Problem{
				NumVars:     2,
				Objective:   model.Objective{Coeffs: rats(1, 1)},
				Constraints: []model.Constraint{{Coeffs: rats(1), RHS: r(1, 1)}},
			},
		},
		{
			name: "missing rhs",
			p: &model.Problem{
				NumVars:     2,
				Objective:   model.Objective{Coeffs: rats(1, 1)},
				Constraints: []model.Constraint{{Coeffs: rats(1, 1)}},
			},
		},
	}
	for _, tc := range cases {
		assert.ErrorIs(t, tc.p.Validate(), model.ErrDimension, tc.name)
	}
}
