package fixtures

func FuncTwo() {}

func FuncThree() {
	nested := func() {}
	nested()
}
