package fixtures

func FuncOne() {}
