package gomory_test

import (
	"fmt"

	"q.log/gomory/gomory"
	"q.log/gomory/instance"
)

func ExampleSolver_Solve() {
	p, err := instance.ParseProblem(2,
		[]string{"2x_1 + 5x_2 <= 19", "4x_1 + 1x_2 <= 16"},
		"max", "8x_1 + 6x_2")
	if err != nil {
		panic(err)
	}
	res, err := gomory.NewSolver().Solve(p)
	if err != nil {
		panic(err)
	}
	fmt.Println("relaxation:", res.Relaxation.Optimum.RatString())
	fmt.Println("optimum:", res.Optimum.RatString())
	fmt.Println("x_1 =", res.Solution["x_1"].RatString(), "x_2 =", res.Solution["x_2"].RatString())
	fmt.Println(res.Cuts[0])
	// Output:
	// relaxation: 376/9
	// optimum: 36
	// x_1 = 3 x_2 = 2
	// cut 1 from row 1: 2/9x_3 + 8/9x_4 >= 4/9
}
