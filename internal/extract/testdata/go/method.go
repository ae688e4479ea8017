package fixtures

type x struct{}

func (x) FuncOne() {}
func (y *x) FuncTwo() {
	nested := func() {}
	nested()
}
func (z *x) FuncThree() {}
